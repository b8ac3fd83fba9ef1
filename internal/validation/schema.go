// Package validation checks migrated content records: required fields and
// formats, the front matter shape, SEO fallbacks, field lengths and the MDX
// body. Problems are reported as error and warning strings; nothing here
// returns a Go error for invalid content.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/polything/go-wpmigrate/content"
	"github.com/polything/go-wpmigrate/internal/seo"
)

// Result is the outcome of ValidateContentSchema.
type Result struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

var (
	schemaSlugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)
	hexColorPattern   = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

	requiredFields = []string{"title", "slug", "date", "updated"}
	heroFields     = []string{"title", "subtitle", "image", "video", "text_color", "background_color"}
	linkFields     = []string{"url", "image", "video"}

	errNotArray   = errors.New("must be an array")
	errNotBoolean = errors.New("must be a boolean")
)

// ValidateContentSchema checks a front matter map against the content schema.
// It never modifies fields.
func ValidateContentSchema(fields map[string]any) Result {
	v := &schemaValidator{fields: fields}
	if fields == nil {
		v.fail("Content is missing")
		return v.result()
	}

	v.checkRequired()
	v.checkType()
	v.checkLists()
	v.checkHero()
	v.checkLinks()
	v.checkFeatured()
	v.checkSEO()
	return v.result()
}

type schemaValidator struct {
	fields   map[string]any
	ctype    content.Type
	errors   []string
	warnings []string
}

func (v *schemaValidator) fail(format string, args ...any) {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
}

func (v *schemaValidator) warn(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *schemaValidator) result() Result {
	out := Result{Errors: v.errors, Warnings: v.warnings}
	if out.Errors == nil {
		out.Errors = []string{}
	}
	if out.Warnings == nil {
		out.Warnings = []string{}
	}
	out.Valid = len(out.Errors) == 0
	return out
}

func (v *schemaValidator) checkRequired() {
	for _, key := range requiredFields {
		value := strings.TrimSpace(content.StringValue(v.fields[key]))
		if validation.Validate(value, validation.Required) != nil {
			v.fail("Missing required field: %s", key)
			continue
		}
		switch key {
		case "slug":
			if validation.Validate(value, validation.Match(schemaSlugPattern)) != nil {
				v.fail("Invalid slug format: %s (must contain only lowercase letters, numbers, and hyphens)", value)
			}
		case "date", "updated":
			if validation.Validate(value, validation.By(isoDate)) != nil {
				v.fail("Invalid %s format: %s (must be ISO 8601)", key, value)
			}
		}
	}
}

func (v *schemaValidator) checkType() {
	raw, ok := v.fields["type"]
	if !ok || raw == nil || content.StringValue(raw) == "" {
		v.fail("Missing required field: type")
		return
	}
	t := content.Type(content.StringValue(raw))
	if !t.Valid() {
		v.fail("Invalid content type: %s", t)
		return
	}
	v.ctype = t
}

func (v *schemaValidator) checkLists() {
	for _, key := range []string{"categories", "tags"} {
		if validation.Validate(v.fields[key], validation.NotNil, validation.By(isArray)) != nil {
			v.fail("Field '%s' must be an array", key)
		}
	}
}

func (v *schemaValidator) checkHero() {
	hero, ok := asMap(v.fields["hero"])
	if !ok {
		v.fail("Missing hero section")
		return
	}
	for _, key := range missingKeys(hero, heroFields) {
		v.fail("Missing hero field: %s", key)
	}
	for _, key := range []string{"text_color", "background_color"} {
		color := content.StringValue(hero[key])
		if color != "" && validation.Validate(color, validation.Match(hexColorPattern)) != nil {
			v.warn("Invalid hex color for hero.%s: %s", key, color)
		}
	}
	for _, key := range []string{"image", "video"} {
		v.checkMediaPath("hero."+key, content.StringValue(hero[key]))
	}
}

func (v *schemaValidator) checkLinks() {
	if v.ctype != content.TypeProject {
		return
	}
	links, ok := asMap(v.fields["links"])
	if !ok {
		v.fail("Missing links section for project")
		return
	}
	for _, key := range missingKeys(links, linkFields) {
		v.fail("Missing links field: %s", key)
	}
	if url := content.StringValue(links["url"]); url != "" && !seo.IsValidURL(url) {
		v.warn("Invalid URL for links.url: %s", url)
	}
	for _, key := range []string{"image", "video"} {
		v.checkMediaPath("links."+key, content.StringValue(links[key]))
	}
}

func (v *schemaValidator) checkFeatured() {
	if v.ctype != content.TypePost {
		return
	}
	if validation.Validate(v.fields["featured"], validation.NotNil, validation.By(isBoolean)) != nil {
		v.fail("Field 'featured' must be a boolean for posts")
	}
}

func (v *schemaValidator) checkSEO() {
	raw, present := v.fields["seo"]
	if !present || raw == nil {
		return
	}
	block, ok := asMap(raw)
	if !ok {
		v.fail("Field 'seo' must be an object")
		return
	}

	if title := content.StringValue(block["title"]); title != "" {
		v.warnings = append(v.warnings, seo.TitleLengthWarnings(title, 0, 60)...)
	}
	if description := content.StringValue(block["description"]); description != "" {
		v.warnings = append(v.warnings, seo.DescriptionLengthWarnings(description, 120, 160)...)
	}
	if canonical := content.StringValue(block["canonical"]); canonical != "" && !seo.IsValidURL(canonical) {
		v.warn("Invalid URL for seo.canonical: %s", canonical)
	}

	schema, ok := asMap(block["schema"])
	if !ok {
		return
	}
	if kind := content.StringValue(schema["type"]); kind != "" {
		if validation.Validate(content.SchemaType(kind), validation.By(isSchemaType)) != nil {
			v.fail("Invalid schema type: %s", kind)
		}
	}
	for _, key := range []string{"publishDate", "modifiedDate"} {
		if value := content.StringValue(schema[key]); value != "" && validation.Validate(value, validation.By(isoDate)) != nil {
			v.fail("Invalid schema %s: %s", key, value)
		}
	}
	v.checkMediaPath("seo.schema.image", content.StringValue(schema["image"]))

	crumbs, ok := schema["breadcrumbs"].([]any)
	if !ok {
		return
	}
	for i, entry := range crumbs {
		crumb, _ := asMap(entry)
		name := strings.TrimSpace(content.StringValue(crumb["name"]))
		url := strings.TrimSpace(content.StringValue(crumb["url"]))
		if name == "" || url == "" {
			v.fail("Breadcrumb %d is missing name or url", i+1)
			continue
		}
		if !strings.HasPrefix(url, "/") && !seo.IsValidURL(url) {
			v.warn("Invalid URL for breadcrumb %d: %s", i+1, url)
		}
	}
}

// checkMediaPath warns about media values that are neither local images nor
// remote URLs. Bare media IDs are accepted; they are resolved later.
func (v *schemaValidator) checkMediaPath(field, value string) {
	if value == "" || strings.HasPrefix(value, "/images/") || strings.HasPrefix(value, "http") {
		return
	}
	if isMediaID(value) {
		return
	}
	v.warn("Media path for %s should start with /images/ or http: %s", field, value)
}

var mediaIDPattern = regexp.MustCompile(`^[1-9]\d*$`)

func isMediaID(value string) bool {
	return mediaIDPattern.MatchString(value)
}

func isoDate(value any) error {
	s, _ := value.(string)
	if !content.IsStrictISO(s) {
		return validation.NewError("validation_iso_date", "must be an ISO 8601 timestamp")
	}
	return nil
}

func isArray(value any) error {
	switch value.(type) {
	case []any, []int, []string:
		return nil
	}
	return errNotArray
}

func isBoolean(value any) error {
	if _, ok := value.(bool); ok {
		return nil
	}
	return errNotBoolean
}

func isSchemaType(value any) error {
	if kind, ok := value.(content.SchemaType); ok && kind.Valid() {
		return nil
	}
	return validation.NewError("validation_schema_type", "must be a known schema.org type")
}

func asMap(value any) (map[string]any, bool) {
	typed, ok := value.(map[string]any)
	return typed, ok
}

// missingKeys returns the keys of required absent from values, using ozzo's
// map rule so presence (not emptiness) is what counts.
func missingKeys(values map[string]any, required []string) []string {
	keys := make([]*validation.KeyRules, 0, len(required))
	for _, key := range required {
		keys = append(keys, validation.Key(key))
	}
	err := validation.Validate(values, validation.Map(keys...).AllowExtraKeys())
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return nil
	}
	missing := []string{}
	for _, key := range required {
		if _, ok := errs[key]; ok {
			missing = append(missing, key)
		}
	}
	return missing
}
