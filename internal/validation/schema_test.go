package validation_test

import (
	"slices"
	"testing"

	"github.com/polything/go-wpmigrate/content"
	"github.com/polything/go-wpmigrate/internal/validation"
)

const isoDate = "2024-03-05T10:15:00.000Z"

func validPost() content.Record {
	return content.Record{
		ID:         42,
		Type:       content.TypePost,
		Title:      "Designing calmer dashboards",
		Slug:       "designing-calmer-dashboards",
		Date:       isoDate,
		Updated:    isoDate,
		Categories: []int{3},
		Tags:       []int{},
		Hero: content.Hero{
			Title:     "Calmer dashboards",
			Subtitle:  "Notes from a redesign",
			Image:     "/images/2024/03/hero.jpg",
			TextColor: "#fff",
		},
		Featured: content.Bool(false),
		Content:  "A short body paragraph about dashboards.",
	}
}

func validProject() content.Record {
	rec := validPost()
	rec.Type = content.TypeProject
	rec.Featured = nil
	rec.Links = &content.Links{URL: "https://example.com/case-study"}
	return rec
}

func TestValidateContentSchemaAcceptsValidRecords(t *testing.T) {
	for _, rec := range []content.Record{validPost(), validProject()} {
		result := validation.ValidateContentSchema(rec.Fields())
		if !result.Valid {
			t.Fatalf("%s: expected valid, got %v", rec.Type, result.Errors)
		}
		if len(result.Warnings) != 0 {
			t.Fatalf("%s: unexpected warnings %v", rec.Type, result.Warnings)
		}
	}
}

func TestValidateContentSchemaErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(map[string]any)
		want   string
	}{
		{"missing title", func(f map[string]any) { delete(f, "title") }, "Missing required field: title"},
		{"blank slug", func(f map[string]any) { f["slug"] = "  " }, "Missing required field: slug"},
		{"bad slug", func(f map[string]any) { f["slug"] = "Hello World" }, "Invalid slug format: Hello World (must contain only lowercase letters, numbers, and hyphens)"},
		{"bad date", func(f map[string]any) { f["date"] = "2024-03-05" }, "Invalid date format: 2024-03-05 (must be ISO 8601)"},
		{"missing type", func(f map[string]any) { delete(f, "type") }, "Missing required field: type"},
		{"bad type", func(f map[string]any) { f["type"] = "product" }, "Invalid content type: product"},
		{"categories not array", func(f map[string]any) { f["categories"] = "news" }, "Field 'categories' must be an array"},
		{"tags missing", func(f map[string]any) { delete(f, "tags") }, "Field 'tags' must be an array"},
		{"hero missing", func(f map[string]any) { delete(f, "hero") }, "Missing hero section"},
		{"hero field missing", func(f map[string]any) { delete(f["hero"].(map[string]any), "video") }, "Missing hero field: video"},
		{"featured not bool", func(f map[string]any) { f["featured"] = "yes" }, "Field 'featured' must be a boolean for posts"},
		{"seo not object", func(f map[string]any) { f["seo"] = "title" }, "Field 'seo' must be an object"},
		{"bad schema type", func(f map[string]any) {
			f["seo"] = map[string]any{"schema": map[string]any{"type": "Recipe"}}
		}, "Invalid schema type: Recipe"},
		{"bad schema date", func(f map[string]any) {
			f["seo"] = map[string]any{"schema": map[string]any{"publishDate": "yesterday"}}
		}, "Invalid schema publishDate: yesterday"},
		{"empty breadcrumb", func(f map[string]any) {
			f["seo"] = map[string]any{"schema": map[string]any{"breadcrumbs": []any{map[string]any{"name": "Home"}}}}
		}, "Breadcrumb 1 is missing name or url"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fields := validPost().Fields()
			tc.mutate(fields)
			result := validation.ValidateContentSchema(fields)
			if result.Valid {
				t.Fatalf("expected invalid result")
			}
			if !slices.Contains(result.Errors, tc.want) {
				t.Fatalf("expected %q in %v", tc.want, result.Errors)
			}
		})
	}
}

func TestValidateContentSchemaProjectLinks(t *testing.T) {
	fields := validProject().Fields()
	delete(fields, "links")
	if got := validation.ValidateContentSchema(fields); !slices.Contains(got.Errors, "Missing links section for project") {
		t.Fatalf("expected missing links error, got %v", got.Errors)
	}

	fields = validProject().Fields()
	delete(fields["links"].(map[string]any), "image")
	if got := validation.ValidateContentSchema(fields); !slices.Contains(got.Errors, "Missing links field: image") {
		t.Fatalf("expected missing links field error, got %v", got.Errors)
	}

	post := validPost().Fields()
	if got := validation.ValidateContentSchema(post); !got.Valid {
		t.Fatalf("posts do not need links, got %v", got.Errors)
	}
}

func TestValidateContentSchemaWarnings(t *testing.T) {
	rec := validProject()
	rec.Hero.BackgroundColor = "blue"
	rec.Hero.Video = "uploads/clip.mp4"
	rec.Hero.Image = "128"
	rec.Links.URL = "not a url"
	rec.SEO = &content.SEO{
		Description: "Seventeen chars!!",
		Canonical:   "/relative",
		Schema: &content.Schema{
			Breadcrumbs: []content.Breadcrumb{{Name: "Home", URL: "/"}, {Name: "Bad", URL: "nowhere"}},
		},
	}

	result := validation.ValidateContentSchema(rec.Fields())

	if !result.Valid {
		t.Fatalf("warnings must not invalidate, got %v", result.Errors)
	}
	want := []string{
		"Invalid hex color for hero.background_color: blue",
		"Media path for hero.video should start with /images/ or http: uploads/clip.mp4",
		"Invalid URL for links.url: not a url",
		"SEO description (17 chars) is shorter than recommended 120 characters",
		"Invalid URL for seo.canonical: /relative",
		"Invalid URL for breadcrumb 2: nowhere",
	}
	for _, msg := range want {
		if !slices.Contains(result.Warnings, msg) {
			t.Fatalf("expected warning %q in %v", msg, result.Warnings)
		}
	}
	if len(result.Warnings) != len(want) {
		t.Fatalf("unexpected warnings %v", result.Warnings)
	}
}

func TestValidateContentSchemaDoesNotModifyInput(t *testing.T) {
	fields := validPost().Fields()
	delete(fields, "tags")
	validation.ValidateContentSchema(fields)
	if _, ok := fields["tags"]; ok {
		t.Fatalf("validator must not fill missing fields")
	}
}

func TestValidateContentSchemaNil(t *testing.T) {
	result := validation.ValidateContentSchema(nil)
	if result.Valid || len(result.Errors) != 1 {
		t.Fatalf("expected single error for nil fields, got %+v", result)
	}
}
