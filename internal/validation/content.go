package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/polything/go-wpmigrate/content"
	"github.com/polything/go-wpmigrate/internal/mdx"
	"github.com/polything/go-wpmigrate/internal/seo"
)

// EmptyContentMessage is reported when a record has no body.
const EmptyContentMessage = "Content body is empty"

// Options configures ValidateContent.
type Options struct {
	// SEO drives fallback generation. Canonical fallbacks use SEO.Paths,
	// which defaults to the breadcrumb sections (/projects for projects).
	SEO               seo.Options
	AllowEmptyContent bool
	Lengths           LengthLimits
	// Now stamps Metadata.ValidatedAt; nil uses time.Now.
	Now func() time.Time
}

// LengthLimits are the recommended maxima (and content word minimum) used by
// ValidateFieldLengths.
type LengthLimits struct {
	Title          int
	SEOTitle       int
	MinDescription int
	MaxDescription int
	MinWords       int
	MaxWords       int
	HeroTitle      int
	HeroSubtitle   int
	LinkURL        int
}

// DefaultLengthLimits returns the recommended limits.
func DefaultLengthLimits() LengthLimits {
	return LengthLimits{
		Title:          60,
		SEOTitle:       60,
		MinDescription: 120,
		MaxDescription: 160,
		MinWords:       100,
		MaxWords:       3000,
		HeroTitle:      80,
		HeroSubtitle:   200,
		LinkURL:        200,
	}
}

// DefaultOptions returns the content validator defaults.
func DefaultOptions() Options {
	seoOpts := seo.DefaultOptions()
	seoOpts.Paths = seo.BreadcrumbPaths()
	return Options{
		SEO:     seoOpts,
		Lengths: DefaultLengthLimits(),
	}
}

// Metadata describes the validated record.
type Metadata struct {
	Type        content.Type `json:"type"`
	Slug        string       `json:"slug"`
	WordCount   int          `json:"wordCount"`
	ValidatedAt string       `json:"validatedAt"`
}

// ContentResult is the accumulated outcome of every validation stage.
type ContentResult struct {
	Valid        bool           `json:"valid"`
	Errors       []string       `json:"errors"`
	Warnings     []string       `json:"warnings"`
	SEOFallbacks seo.Fallbacks  `json:"seoFallbacks"`
	FieldLengths map[string]int `json:"fieldLengths"`
	Metadata     Metadata       `json:"metadata"`
}

// NewContentResult returns an empty, valid result.
func NewContentResult() ContentResult {
	return ContentResult{
		Valid:        true,
		Errors:       []string{},
		Warnings:     []string{},
		FieldLengths: map[string]int{},
	}
}

// Add merges errs and warnings into the result, skipping messages it already
// holds so overlapping stages do not repeat themselves.
func (r *ContentResult) Add(errs, warnings []string) {
	r.Errors = appendUnique(r.Errors, errs)
	r.Warnings = appendUnique(r.Warnings, warnings)
	r.Valid = len(r.Errors) == 0
}

func appendUnique(dst, src []string) []string {
	for _, msg := range src {
		dup := false
		for _, existing := range dst {
			if existing == msg {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, msg)
		}
	}
	return dst
}

// Subject is the input of a validation stage. Fields is the raw front matter
// (the record's projection when validating a record built in memory) and
// Record is its typed form.
type Subject struct {
	Record content.Record
	Fields map[string]any
}

// RecordSubject validates rec through its own front matter projection.
func RecordSubject(rec content.Record) Subject {
	return Subject{Record: rec, Fields: rec.Fields()}
}

// DocumentSubject validates a front matter map loaded from disk together with
// its body. The raw map is kept so wrongly typed values still get reported.
func DocumentSubject(fields map[string]any, body string) Subject {
	return Subject{Record: content.FromFields(fields, body), Fields: fields}
}

// Stage is one step of the content validation pipeline.
type Stage struct {
	Name string
	Run  func(Subject, *ContentResult)
}

// Stages returns the pipeline in its fixed order: schema, front matter, SEO,
// field lengths, MDX body, empty content. A failing stage never skips later
// ones; callers that want to stop early inspect the result between stages.
func Stages(opts Options) []Stage {
	return []Stage{
		{Name: "schema", Run: func(s Subject, r *ContentResult) {
			res := ValidateContentSchema(s.Fields)
			r.Add(res.Errors, res.Warnings)
		}},
		{Name: "frontmatter", Run: func(s Subject, r *ContentResult) {
			res := ValidateFrontMatter(s.Fields)
			r.Add(res.Errors, res.Warnings)
		}},
		{Name: "seo", Run: func(s Subject, r *ContentResult) {
			seoStage(s, opts, r)
		}},
		{Name: "field-lengths", Run: func(s Subject, r *ContentResult) {
			lengths, warnings := ValidateFieldLengths(s.Record, opts.Lengths)
			for key, n := range lengths {
				r.FieldLengths[key] = n
			}
			r.Add(nil, warnings)
		}},
		{Name: "mdx", Run: func(s Subject, r *ContentResult) {
			if strings.TrimSpace(s.Record.Content) == "" {
				return
			}
			res := mdx.Validate(s.Record.Content)
			r.Add(res.Errors, res.Warnings)
		}},
		{Name: "empty-content", Run: func(s Subject, r *ContentResult) {
			if strings.TrimSpace(s.Record.Content) == "" && !opts.AllowEmptyContent {
				r.Add([]string{EmptyContentMessage}, nil)
			}
		}},
	}
}

func seoStage(s Subject, opts Options, r *ContentResult) {
	seoOpts := opts.SEO
	seoOpts.EnforceDescription = false
	res := seo.ValidateAndGenerateFallbacks(s.Record, seoOpts)
	r.Add(res.Errors, res.Warnings)
	r.SEOFallbacks = res.Fallbacks

	if res.Fallbacks.Description != "" {
		return
	}
	if excerpt, ok := ExtractDescriptionFromContent(s.Record.Content); ok {
		r.SEOFallbacks.Description = excerpt
		r.Add(nil, []string{"Using content excerpt as SEO description fallback"})
		return
	}
	if opts.SEO.EnforceDescription {
		r.Add(nil, []string{"SEO description is missing and could not be generated from content"})
	}
}

// ValidateContent runs every stage over rec and returns the combined result.
func ValidateContent(rec content.Record, opts Options) ContentResult {
	return Validate(RecordSubject(rec), opts)
}

// Validate runs every stage over subject.
func Validate(subject Subject, opts Options) ContentResult {
	result := NewContentResult()
	for _, stage := range Stages(opts) {
		stage.Run(subject, &result)
	}
	Finish(&result, subject, opts)
	return result
}

// Finish stamps the result metadata.
func Finish(result *ContentResult, subject Subject, opts Options) {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	result.Metadata = Metadata{
		Type:        subject.Record.Type,
		Slug:        subject.Record.Slug,
		WordCount:   WordCount(subject.Record.Content),
		ValidatedAt: content.FormatISO(now()),
	}
	result.Valid = len(result.Errors) == 0
}

// ValidateFieldLengths measures the length-sensitive fields of rec and warns
// about values outside the recommended limits. It never reports errors.
func ValidateFieldLengths(rec content.Record, limits LengthLimits) (map[string]int, []string) {
	if limits == (LengthLimits{}) {
		limits = DefaultLengthLimits()
	}
	lengths := map[string]int{}
	warnings := []string{}
	over := func(label string, n, max int) {
		if max > 0 && n > max {
			warnings = append(warnings, fmt.Sprintf("%s (%d chars) exceeds recommended %d characters", label, n, max))
		}
	}

	lengths["title"] = utf8.RuneCountInString(rec.Title)
	over("Title", lengths["title"], limits.Title)

	if rec.SEO != nil {
		if rec.SEO.Title != "" {
			lengths["seo_title"] = utf8.RuneCountInString(rec.SEO.Title)
			warnings = append(warnings, seo.TitleLengthWarnings(rec.SEO.Title, 0, limits.SEOTitle)...)
		}
		if rec.SEO.Description != "" {
			lengths["seo_description"] = utf8.RuneCountInString(rec.SEO.Description)
			warnings = append(warnings, seo.DescriptionLengthWarnings(rec.SEO.Description, limits.MinDescription, limits.MaxDescription)...)
		}
	}

	if strings.TrimSpace(rec.Content) != "" {
		words := WordCount(rec.Content)
		lengths["content_words"] = words
		switch {
		case words < limits.MinWords:
			warnings = append(warnings, fmt.Sprintf("Content is short (%d words, recommended at least %d)", words, limits.MinWords))
		case limits.MaxWords > 0 && words > limits.MaxWords:
			warnings = append(warnings, fmt.Sprintf("Content is long (%d words, recommended at most %d)", words, limits.MaxWords))
		}
	}

	lengths["hero_title"] = utf8.RuneCountInString(rec.Hero.Title)
	over("Hero title", lengths["hero_title"], limits.HeroTitle)
	lengths["hero_subtitle"] = utf8.RuneCountInString(rec.Hero.Subtitle)
	over("Hero subtitle", lengths["hero_subtitle"], limits.HeroSubtitle)

	if rec.Links != nil {
		for _, link := range []struct{ key, label, value string }{
			{"links_url", "Project link URL", rec.Links.URL},
			{"links_image", "Project link image URL", rec.Links.Image},
			{"links_video", "Project link video URL", rec.Links.Video},
		} {
			if link.value == "" {
				continue
			}
			lengths[link.key] = utf8.RuneCountInString(link.value)
			over(link.label, lengths[link.key], limits.LinkURL)
		}
	}
	return lengths, warnings
}

var (
	htmlTagPattern     = regexp.MustCompile(`<[^>]*>`)
	mdLinkPattern      = regexp.MustCompile(`!?\[([^\]]*)\]\([^)]*\)`)
	mdMarkerPattern    = regexp.MustCompile("(?m)^\\s*(#{1,6}|>|[-*+]|\\d+\\.)\\s+")
	mdEmphasisPattern  = regexp.MustCompile("[*_`]+")
	fencedCodePattern  = regexp.MustCompile("(?s)```.*?```")
	whitespacePattern  = regexp.MustCompile(`\s+`)
	sentenceEndPattern = regexp.MustCompile(`[.!?](\s|$)`)
)

// plainText reduces an MDX body to collapsed prose.
func plainText(body string) string {
	text := fencedCodePattern.ReplaceAllString(body, " ")
	text = htmlTagPattern.ReplaceAllString(text, " ")
	text = mdLinkPattern.ReplaceAllString(text, "$1")
	text = mdMarkerPattern.ReplaceAllString(text, "")
	text = mdEmphasisPattern.ReplaceAllString(text, "")
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
}

// ExtractDescriptionFromContent derives a description from body: the first
// sentence when it is 50 to 160 characters long, otherwise the first 150
// characters followed by an ellipsis. Bodies too short for either yield false.
func ExtractDescriptionFromContent(body string) (string, bool) {
	text := plainText(body)
	if text == "" {
		return "", false
	}
	if loc := sentenceEndPattern.FindStringIndex(text); loc != nil {
		sentence := strings.TrimSpace(text[:loc[0]+1])
		if n := utf8.RuneCountInString(sentence); n >= 50 && n <= 160 {
			return sentence, true
		}
	}
	runes := []rune(text)
	if len(runes) > 150 {
		return strings.TrimSpace(string(runes[:150])) + "...", true
	}
	return "", false
}

// WordCount counts whitespace separated words of the plain text of body.
func WordCount(body string) int {
	return len(strings.Fields(plainText(body)))
}
