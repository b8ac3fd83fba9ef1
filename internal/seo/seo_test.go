package seo

import (
	"slices"
	"strings"
	"testing"

	"github.com/polything/go-wpmigrate/content"
)

func TestFallbackPriority(t *testing.T) {
	rec := content.Record{
		Type:  content.TypeProject,
		Title: "Record title",
		Slug:  "brand-refresh",
		Hero:  content.Hero{Title: "Hero title", Subtitle: "Hero subtitle"},
	}

	result := ValidateAndGenerateFallbacks(rec, DefaultOptions())

	if !result.Valid {
		t.Fatalf("expected valid result, got %v", result.Errors)
	}
	want := Fallbacks{
		Title:       "Hero title",
		Description: "Hero subtitle",
		Canonical:   "https://polything.co.uk/work/brand-refresh",
	}
	if result.Fallbacks != want {
		t.Fatalf("unexpected fallbacks %+v", result.Fallbacks)
	}
	for _, notice := range []string{"Using hero.title as SEO title fallback", "Using hero.subtitle as SEO description fallback"} {
		if !slices.Contains(result.Warnings, notice) {
			t.Fatalf("expected notice %q in %v", notice, result.Warnings)
		}
	}

	rec.SEO = &content.SEO{Title: "Explicit", Canonical: "https://polything.co.uk/custom"}
	explicit := ValidateAndGenerateFallbacks(rec, DefaultOptions())
	if explicit.Fallbacks.Title != "Explicit" || explicit.Fallbacks.Canonical != "https://polything.co.uk/custom" {
		t.Fatalf("expected explicit values to win, got %+v", explicit.Fallbacks)
	}

	rec.SEO = nil
	rec.Hero = content.Hero{}
	if got := ValidateAndGenerateFallbacks(rec, DefaultOptions()).Fallbacks.Title; got != "Record title" {
		t.Fatalf("expected record title fallback, got %q", got)
	}
}

func TestMissingTitleIsAnError(t *testing.T) {
	result := ValidateAndGenerateFallbacks(content.Record{Type: content.TypePage, Slug: "about"}, DefaultOptions())

	if result.Valid || len(result.Errors) != 1 {
		t.Fatalf("expected a single title error, got %+v", result)
	}
	if result.Fallbacks.Canonical != "https://polything.co.uk/about" {
		t.Fatalf("unexpected page canonical %q", result.Fallbacks.Canonical)
	}
	if !slices.Contains(result.Warnings, "SEO description is missing and no fallback (hero.subtitle) is available") {
		t.Fatalf("expected missing description warning, got %v", result.Warnings)
	}
}

func TestLengthWarnings(t *testing.T) {
	rec := content.Record{
		Type:  content.TypePost,
		Slug:  "hello",
		Title: "Hello",
		SEO:   &content.SEO{Title: strings.Repeat("t", 61), Description: "Short description"},
	}

	result := ValidateAndGenerateFallbacks(rec, DefaultOptions())

	for _, want := range []string{
		"SEO title (61 chars) exceeds recommended 60 characters",
		"SEO description (17 chars) is shorter than recommended 120 characters",
	} {
		if !slices.Contains(result.Warnings, want) {
			t.Fatalf("expected warning %q in %v", want, result.Warnings)
		}
	}
	if !result.Valid {
		t.Fatalf("length problems must not invalidate, got %v", result.Errors)
	}
	if result.Fallbacks.Canonical != "https://polything.co.uk/blog/hello" {
		t.Fatalf("unexpected post canonical %q", result.Fallbacks.Canonical)
	}
}

func TestExplicitSchemaErrors(t *testing.T) {
	rec := content.Record{
		Type:  content.TypePost,
		Title: "A perfectly reasonable post title here",
		Slug:  "p",
		SEO: &content.SEO{
			Canonical: "not a url",
			Schema: &content.Schema{
				Type:         "Event",
				PublishDate:  "2024-01-01",
				ModifiedDate: "2024-01-02T00:00:00.000Z",
				Breadcrumbs:  []content.Breadcrumb{{Name: "Home", URL: "/"}, {Name: "Missing"}},
			},
		},
	}

	result := ValidateAndGenerateFallbacks(rec, DefaultOptions())

	want := []string{
		"Invalid canonical URL: not a url",
		"Invalid schema type: Event",
		"Invalid schema publishDate: 2024-01-01",
		"Breadcrumb 2 is missing name or url",
	}
	if !slices.Equal(result.Errors, want) {
		t.Fatalf("unexpected errors:\n%v\nwant\n%v", result.Errors, want)
	}
}

func TestSchemaTypeMismatchIsWarning(t *testing.T) {
	rec := content.Record{
		Type:  content.TypePost,
		Title: "Post",
		Slug:  "post",
		SEO:   &content.SEO{Schema: &content.Schema{Type: content.SchemaArticle}},
	}

	result := ValidateAndGenerateFallbacks(rec, DefaultOptions())

	if !result.Valid || !slices.Contains(result.Warnings, "Schema type Article differs from the BlogPosting convention for post content") {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestEnforceSchemaDefaultsProject(t *testing.T) {
	rec := content.Record{
		Type:    content.TypeProject,
		Title:   "Brand Refresh",
		Slug:    "brand-refresh",
		Date:    "2024-01-01T00:00:00.000Z",
		Updated: "2024-02-01T00:00:00.000Z",
	}

	out := EnforceSchemaDefaults(rec, DefaultDefaultsOptions())

	schema := out.SchemaBlock()
	if schema == nil {
		t.Fatalf("expected schema block")
	}
	if schema.Type != content.SchemaCreativeWork || schema.Author != "Polything" {
		t.Fatalf("unexpected schema %+v", schema)
	}
	if schema.PublishDate != rec.Date || schema.ModifiedDate != rec.Updated {
		t.Fatalf("expected dates copied, got %+v", schema)
	}
	want := []content.Breadcrumb{
		{Name: "Home", URL: "/"},
		{Name: "Projects", URL: "/projects"},
		{Name: "Brand Refresh", URL: "/projects/brand-refresh"},
	}
	if !slices.Equal(schema.Breadcrumbs, want) {
		t.Fatalf("unexpected breadcrumbs %+v", schema.Breadcrumbs)
	}
	if out.Links == nil || out.Categories == nil || out.Tags == nil {
		t.Fatalf("expected required fields filled, got %+v", out)
	}
	if rec.SEO != nil || rec.Links != nil {
		t.Fatalf("input record was mutated")
	}
}

func TestEnforceSchemaDefaultsNeverOverwrites(t *testing.T) {
	rec := content.Record{
		Type:     content.TypePost,
		Title:    "Post",
		Slug:     "post",
		Date:     "2024-01-01T00:00:00.000Z",
		Featured: content.Bool(true),
		SEO: &content.SEO{Schema: &content.Schema{
			Type:        content.SchemaArticle,
			Author:      "Someone",
			PublishDate: "2023-01-01T00:00:00.000Z",
			Breadcrumbs: []content.Breadcrumb{{Name: "Custom", URL: "/c"}},
		}},
	}

	out := EnforceSchemaDefaults(rec, DefaultDefaultsOptions())

	schema := out.SchemaBlock()
	if schema.Type != content.SchemaArticle || schema.Author != "Someone" || schema.PublishDate != "2023-01-01T00:00:00.000Z" {
		t.Fatalf("explicit values were overwritten: %+v", schema)
	}
	if len(schema.Breadcrumbs) != 1 || !*out.Featured {
		t.Fatalf("explicit values were overwritten: %+v", out)
	}
}

func TestEnforceSchemaDefaultsPassesAreIndependent(t *testing.T) {
	rec := content.Record{Type: content.TypePage, Title: "About", Slug: "about"}

	onlySchemaType := EnforceSchemaDefaults(rec, DefaultsOptions{SchemaType: true})
	schema := onlySchemaType.SchemaBlock()
	if schema == nil || schema.Type != content.SchemaWebPage || len(schema.Breadcrumbs) != 0 {
		t.Fatalf("expected only schema type, got %+v", schema)
	}
	if onlySchemaType.Categories != nil {
		t.Fatalf("required-field pass should be disabled")
	}

	page := EnforceSchemaDefaults(rec, DefaultDefaultsOptions())
	crumbs := page.SchemaBlock().Breadcrumbs
	if !slices.Equal(crumbs, []content.Breadcrumb{{Name: "Home", URL: "/"}, {Name: "About", URL: "/about"}}) {
		t.Fatalf("unexpected page breadcrumbs %+v", crumbs)
	}
	if page.SchemaBlock().Author != "" {
		t.Fatalf("pages do not get a default author")
	}
}

func TestNormalizeSchemaType(t *testing.T) {
	rec := content.Record{Type: content.TypePost, SEO: &content.SEO{Schema: &content.Schema{}}}

	out := NormalizeSchemaType(rec)

	if out.SEO.Schema.Type != content.SchemaBlogPosting {
		t.Fatalf("expected BlogPosting, got %q", out.SEO.Schema.Type)
	}
	if rec.SEO.Schema.Type != "" {
		t.Fatalf("input record was mutated")
	}
	if bare := NormalizeSchemaType(content.Record{Type: content.TypePage}); bare.SEO != nil {
		t.Fatalf("expected no schema block to be created, got %+v", bare.SEO)
	}
}

func TestCanonicalPathConventionsDiffer(t *testing.T) {
	rec := content.Record{Type: content.TypeProject, Slug: "x"}
	if got := RoutePaths().PathFor(rec.Type, rec.Slug); got != "/work/x" {
		t.Fatalf("unexpected route path %q", got)
	}
	if got := BreadcrumbPaths().PathFor(rec.Type, rec.Slug); got != "/projects/x" {
		t.Fatalf("unexpected breadcrumb path %q", got)
	}
}

func TestIsValidURL(t *testing.T) {
	cases := map[string]bool{
		"https://polything.co.uk/a": true,
		"mailto:a@b.co":             true,
		"/relative":                 false,
		"https://":                  false,
		"":                          false,
		"not a url":                 false,
	}
	for input, want := range cases {
		if got := IsValidURL(input); got != want {
			t.Fatalf("IsValidURL(%q) = %v, want %v", input, got, want)
		}
	}
}
