package seo

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/polything/go-wpmigrate/content"
)

// Options configures fallback generation and the recommended length ranges.
type Options struct {
	SiteURL              string
	Paths                Paths
	MinTitleLength       int
	MaxTitleLength       int
	MinDescriptionLength int
	MaxDescriptionLength int
	// EnforceDescription warns when no description can be derived.
	EnforceDescription bool
}

// DefaultOptions returns the production domain, the /work route for projects
// and the 30-60 / 120-160 recommended length ranges.
func DefaultOptions() Options {
	return Options{
		SiteURL:              DefaultSiteURL,
		Paths:                RoutePaths(),
		MinTitleLength:       30,
		MaxTitleLength:       60,
		MinDescriptionLength: 120,
		MaxDescriptionLength: 160,
		EnforceDescription:   true,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.SiteURL == "" {
		o.SiteURL = def.SiteURL
	}
	if o.Paths == (Paths{}) {
		o.Paths = def.Paths
	}
	if o.MinTitleLength <= 0 {
		o.MinTitleLength = def.MinTitleLength
	}
	if o.MaxTitleLength <= 0 {
		o.MaxTitleLength = def.MaxTitleLength
	}
	if o.MinDescriptionLength <= 0 {
		o.MinDescriptionLength = def.MinDescriptionLength
	}
	if o.MaxDescriptionLength <= 0 {
		o.MaxDescriptionLength = def.MaxDescriptionLength
	}
	return o
}

// Fallbacks holds the SEO values a record resolves to. Empty means none could
// be derived.
type Fallbacks struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Canonical   string `json:"canonical,omitempty"`
}

// Result is the outcome of ValidateAndGenerateFallbacks.
type Result struct {
	Valid     bool      `json:"valid"`
	Errors    []string  `json:"errors"`
	Warnings  []string  `json:"warnings"`
	Fallbacks Fallbacks `json:"fallbacks"`
}

// ValidateAndGenerateFallbacks resolves the SEO title, description and
// canonical URL of rec in priority order and checks any explicit SEO block.
// Length problems are warnings; malformed explicit values are errors.
func ValidateAndGenerateFallbacks(rec content.Record, opts Options) Result {
	opts = opts.withDefaults()
	result := Result{Errors: []string{}, Warnings: []string{}}
	explicit := rec.SEO
	if explicit == nil {
		explicit = &content.SEO{}
	}

	title, titleSource := firstNonEmpty(
		source{"seo.title", explicit.Title},
		source{"hero.title", rec.Hero.Title},
		source{"title", rec.Title},
	)
	switch {
	case title == "":
		result.Errors = append(result.Errors, "SEO title is missing and no fallback (hero.title, title) is available")
	case titleSource != "seo.title":
		result.Warnings = append(result.Warnings, fmt.Sprintf("Using %s as SEO title fallback", titleSource))
	}
	if title != "" {
		result.Warnings = append(result.Warnings, TitleLengthWarnings(title, opts.MinTitleLength, opts.MaxTitleLength)...)
	}
	result.Fallbacks.Title = title

	description, descriptionSource := firstNonEmpty(
		source{"seo.description", explicit.Description},
		source{"hero.subtitle", rec.Hero.Subtitle},
	)
	switch {
	case description == "" && opts.EnforceDescription:
		result.Warnings = append(result.Warnings, "SEO description is missing and no fallback (hero.subtitle) is available")
	case description != "" && descriptionSource != "seo.description":
		result.Warnings = append(result.Warnings, fmt.Sprintf("Using %s as SEO description fallback", descriptionSource))
	}
	if description != "" {
		result.Warnings = append(result.Warnings, DescriptionLengthWarnings(description, opts.MinDescriptionLength, opts.MaxDescriptionLength)...)
	}
	result.Fallbacks.Description = description

	if explicit.Canonical != "" {
		result.Fallbacks.Canonical = explicit.Canonical
		if !IsValidURL(explicit.Canonical) {
			result.Errors = append(result.Errors, fmt.Sprintf("Invalid canonical URL: %s", explicit.Canonical))
		}
	} else if rec.Slug != "" {
		result.Fallbacks.Canonical = CanonicalURL(opts.SiteURL, opts.Paths, rec)
	}

	result.Errors = append(result.Errors, schemaErrors(explicit.Schema)...)
	if schema := explicit.Schema; schema != nil && schema.Type.Valid() && rec.Type.Valid() {
		if expected := content.DefaultSchemaType(rec.Type); schema.Type != expected {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Schema type %s differs from the %s convention for %s content", schema.Type, expected, rec.Type))
		}
	}

	result.Valid = len(result.Errors) == 0
	return result
}

func schemaErrors(schema *content.Schema) []string {
	if schema == nil {
		return nil
	}
	errs := []string{}
	if schema.Type != "" && !schema.Type.Valid() {
		errs = append(errs, fmt.Sprintf("Invalid schema type: %s", schema.Type))
	}
	if schema.PublishDate != "" && !content.IsStrictISO(schema.PublishDate) {
		errs = append(errs, fmt.Sprintf("Invalid schema publishDate: %s", schema.PublishDate))
	}
	if schema.ModifiedDate != "" && !content.IsStrictISO(schema.ModifiedDate) {
		errs = append(errs, fmt.Sprintf("Invalid schema modifiedDate: %s", schema.ModifiedDate))
	}
	for i, crumb := range schema.Breadcrumbs {
		if strings.TrimSpace(crumb.Name) == "" || strings.TrimSpace(crumb.URL) == "" {
			errs = append(errs, fmt.Sprintf("Breadcrumb %d is missing name or url", i+1))
		}
	}
	return errs
}

// TitleLengthWarnings reports an SEO title outside [min, max] characters.
func TitleLengthWarnings(title string, min, max int) []string {
	return lengthWarnings("SEO title", title, min, max)
}

// DescriptionLengthWarnings reports an SEO description outside [min, max]
// characters.
func DescriptionLengthWarnings(description string, min, max int) []string {
	return lengthWarnings("SEO description", description, min, max)
}

func lengthWarnings(label, value string, min, max int) []string {
	n := utf8.RuneCountInString(value)
	switch {
	case n < min:
		return []string{fmt.Sprintf("%s (%d chars) is shorter than recommended %d characters", label, n, min)}
	case n > max:
		return []string{fmt.Sprintf("%s (%d chars) exceeds recommended %d characters", label, n, max)}
	}
	return nil
}

type source struct {
	name  string
	value string
}

func firstNonEmpty(sources ...source) (string, string) {
	for _, s := range sources {
		if strings.TrimSpace(s.value) != "" {
			return s.value, s.name
		}
	}
	return "", ""
}
