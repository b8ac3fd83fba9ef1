package content

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Fields projects the record into the front-matter map consumed by the schema
// validator and the MDX writer. Optional sections are omitted when unset so
// that missing data stays distinguishable from empty data.
func (r Record) Fields() map[string]any {
	out := map[string]any{
		"type":    string(r.Type),
		"title":   r.Title,
		"slug":    r.Slug,
		"date":    r.Date,
		"updated": r.Updated,
		"hero": map[string]any{
			"title":            r.Hero.Title,
			"subtitle":         r.Hero.Subtitle,
			"image":            r.Hero.Image,
			"video":            r.Hero.Video,
			"text_color":       r.Hero.TextColor,
			"background_color": r.Hero.BackgroundColor,
		},
	}
	if r.ID != 0 {
		out["id"] = r.ID
	}
	if r.Categories != nil {
		out["categories"] = intsToAny(r.Categories)
	}
	if r.Tags != nil {
		out["tags"] = intsToAny(r.Tags)
	}
	if r.Links != nil {
		out["links"] = map[string]any{
			"url":   r.Links.URL,
			"image": r.Links.Image,
			"video": r.Links.Video,
		}
	}
	if r.Featured != nil {
		out["featured"] = *r.Featured
	}
	if r.SEO != nil {
		out["seo"] = seoFields(r.SEO)
	}
	return out
}

func seoFields(seo *SEO) map[string]any {
	out := map[string]any{}
	if seo.Title != "" {
		out["title"] = seo.Title
	}
	if seo.Description != "" {
		out["description"] = seo.Description
	}
	if seo.Canonical != "" {
		out["canonical"] = seo.Canonical
	}
	if seo.Schema == nil {
		return out
	}
	schema := map[string]any{}
	if seo.Schema.Type != "" {
		schema["type"] = string(seo.Schema.Type)
	}
	if seo.Schema.Image != "" {
		schema["image"] = seo.Schema.Image
	}
	if seo.Schema.Author != "" {
		schema["author"] = seo.Schema.Author
	}
	if seo.Schema.PublishDate != "" {
		schema["publishDate"] = seo.Schema.PublishDate
	}
	if seo.Schema.ModifiedDate != "" {
		schema["modifiedDate"] = seo.Schema.ModifiedDate
	}
	if seo.Schema.Breadcrumbs != nil {
		crumbs := make([]any, 0, len(seo.Schema.Breadcrumbs))
		for _, crumb := range seo.Schema.Breadcrumbs {
			crumbs = append(crumbs, map[string]any{"name": crumb.Name, "url": crumb.URL})
		}
		schema["breadcrumbs"] = crumbs
	}
	out["schema"] = schema
	return out
}

func intsToAny(values []int) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}

// FromFields decodes a loaded front-matter map into a Record. Decoding is
// lenient: values of the wrong type are left at their zero value so the
// schema validator, which runs against the raw map, can report them.
func FromFields(fields map[string]any, body string) Record {
	rec := Record{Content: body}
	if fields == nil {
		return rec
	}
	if id, ok := toInt(fields["id"]); ok {
		rec.ID = id
	}
	rec.Type = Type(StringValue(fields["type"]))
	rec.Title = StringValue(fields["title"])
	rec.Slug = StringValue(fields["slug"])
	rec.Date = StringValue(fields["date"])
	rec.Updated = StringValue(fields["updated"])
	rec.Categories = IntList(fields["categories"])
	rec.Tags = IntList(fields["tags"])

	if hero, ok := fields["hero"].(map[string]any); ok {
		rec.Hero = Hero{
			Title:           StringValue(hero["title"]),
			Subtitle:        StringValue(hero["subtitle"]),
			Image:           StringValue(hero["image"]),
			Video:           StringValue(hero["video"]),
			TextColor:       StringValue(hero["text_color"]),
			BackgroundColor: StringValue(hero["background_color"]),
		}
	}
	if links, ok := fields["links"].(map[string]any); ok {
		rec.Links = &Links{
			URL:   StringValue(links["url"]),
			Image: StringValue(links["image"]),
			Video: StringValue(links["video"]),
		}
	}
	if featured, ok := fields["featured"].(bool); ok {
		rec.Featured = Bool(featured)
	}
	if seo, ok := fields["seo"].(map[string]any); ok {
		rec.SEO = seoFromFields(seo)
	}
	return rec
}

func seoFromFields(fields map[string]any) *SEO {
	seo := &SEO{
		Title:       StringValue(fields["title"]),
		Description: StringValue(fields["description"]),
		Canonical:   StringValue(fields["canonical"]),
	}
	schema, ok := fields["schema"].(map[string]any)
	if !ok {
		return seo
	}
	seo.Schema = &Schema{
		Type:         SchemaType(StringValue(schema["type"])),
		Image:        StringValue(schema["image"]),
		Author:       StringValue(schema["author"]),
		PublishDate:  StringValue(schema["publishDate"]),
		ModifiedDate: StringValue(schema["modifiedDate"]),
	}
	if crumbs, ok := schema["breadcrumbs"].([]any); ok {
		seo.Schema.Breadcrumbs = make([]Breadcrumb, 0, len(crumbs))
		for _, raw := range crumbs {
			entry, _ := raw.(map[string]any)
			seo.Schema.Breadcrumbs = append(seo.Schema.Breadcrumbs, Breadcrumb{
				Name: StringValue(entry["name"]),
				URL:  StringValue(entry["url"]),
			})
		}
	}
	return seo
}

// StringValue renders scalar front-matter values as strings. Timestamps that a
// YAML decoder already turned into time.Time are formatted back to ISOLayout.
func StringValue(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case time.Time:
		return FormatISO(typed)
	case json.Number:
		return typed.String()
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(typed)
	default:
		return fmt.Sprint(typed)
	}
}

// IntList converts a decoded list of numeric IDs. Non-list values yield nil.
func IntList(value any) []int {
	switch typed := value.(type) {
	case []int:
		return append([]int{}, typed...)
	case []any:
		out := make([]int, 0, len(typed))
		for _, item := range typed {
			if n, ok := toInt(item); ok {
				out = append(out, n)
			}
		}
		return out
	default:
		return nil
	}
}

func toInt(value any) (int, bool) {
	switch typed := value.(type) {
	case int:
		return typed, true
	case int64:
		return int(typed), true
	case uint64:
		return int(typed), true
	case float64:
		if typed != math.Trunc(typed) {
			return 0, false
		}
		return int(typed), true
	case json.Number:
		n, err := typed.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	case string:
		n, err := strconv.Atoi(typed)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}
