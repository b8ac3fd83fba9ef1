package wordpress_test

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/polything/go-wpmigrate/content"
	"github.com/polything/go-wpmigrate/internal/wordpress"
	"github.com/polything/go-wpmigrate/pkg/interfaces"
)

func samplePost() interfaces.WPPost {
	return interfaces.WPPost{
		ID:          7,
		DateGMT:     "2024-03-05T10:15:00",
		Date:        "2024-03-05T11:15:00",
		ModifiedGMT: "2024-04-01T08:00:00",
		Slug:        "calmer-dashboards",
		Link:        "https://example.com/calmer-dashboards/",
		Sticky:      true,
		Title:       interfaces.Rendered{Rendered: "Designer&#8217;s <em>calmer</em> dashboards"},
		Content: interfaces.Rendered{
			Rendered: `<!-- wp:paragraph --><p class="wp-block-paragraph">Hello <strong>world</strong></p><!-- /wp:paragraph -->`,
		},
		Categories: []int{3},
		Meta: map[string]any{
			"themerain_hero_title": "Calm &amp; quiet",
			"themerain_hero_image": "123",
		},
	}
}

func TestAssemblePost(t *testing.T) {
	rec, assembly, err := wordpress.NewAssembler(wordpress.DefaultAssemblerOptions()).Assemble(samplePost(), content.TypePost)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	if rec.Title != "Designer’s calmer dashboards" {
		t.Fatalf("unexpected title %q", rec.Title)
	}
	if rec.Slug != "calmer-dashboards" || rec.Type != content.TypePost || rec.ID != 7 {
		t.Fatalf("unexpected identity %+v", rec)
	}
	if rec.Date != "2024-03-05T10:15:00.000Z" || rec.Updated != "2024-04-01T08:00:00.000Z" {
		t.Fatalf("unexpected dates %q %q", rec.Date, rec.Updated)
	}
	if rec.Featured == nil || !*rec.Featured {
		t.Fatalf("sticky posts should be featured")
	}
	if rec.Tags == nil || len(rec.Tags) != 0 || !slices.Equal(rec.Categories, []int{3}) {
		t.Fatalf("unexpected taxonomy %v %v", rec.Categories, rec.Tags)
	}
	if rec.Hero.Title != "Calm & quiet" || rec.Hero.Image != "123" {
		t.Fatalf("unexpected hero %+v", rec.Hero)
	}
	if !strings.Contains(rec.Content, "Hello **world**") || strings.Contains(rec.Content, "wp:") {
		t.Fatalf("unexpected body %q", rec.Content)
	}
	if !slices.Equal(assembly.MediaIDs, []string{"123"}) {
		t.Fatalf("unexpected media ids %v", assembly.MediaIDs)
	}
	if assembly.Source != "https://example.com/calmer-dashboards/" || len(assembly.Errors) != 0 {
		t.Fatalf("unexpected assembly %+v", assembly)
	}
}

func TestAssembleProjectMapsLinks(t *testing.T) {
	post := samplePost()
	post.Meta["themerain_project_link_url"] = "https://example.com/case-study"
	post.Meta["themerain_project_link_image"] = []any{"456"}

	rec, assembly, err := wordpress.NewAssembler(wordpress.DefaultAssemblerOptions()).Assemble(post, content.TypeProject)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if rec.Links == nil || rec.Links.URL != "https://example.com/case-study" || rec.Links.Image != "456" {
		t.Fatalf("unexpected links %+v", rec.Links)
	}
	if rec.Featured != nil {
		t.Fatalf("featured is only taken from sticky for posts")
	}
	if !slices.Equal(assembly.MediaIDs, []string{"123", "456"}) {
		t.Fatalf("unexpected media ids %v", assembly.MediaIDs)
	}
}

func TestAssembleDerivesMissingSlug(t *testing.T) {
	post := samplePost()
	post.Slug = ""

	rec, assembly, err := wordpress.NewAssembler(wordpress.DefaultAssemblerOptions()).Assemble(post, content.TypePage)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if rec.Slug == "" {
		t.Fatalf("expected a slug derived from the title")
	}
	if !slices.Contains(assembly.Warnings, `Derived slug "`+rec.Slug+`" from title`) {
		t.Fatalf("expected derivation warning, got %v", assembly.Warnings)
	}
}

func TestAssembleReportsMissingData(t *testing.T) {
	post := samplePost()
	post.Slug = ""
	post.Title.Rendered = ""
	post.DateGMT, post.Date, post.ModifiedGMT = "", "", ""
	post.Content.Rendered = "  "

	rec, assembly, err := wordpress.NewAssembler(wordpress.DefaultAssemblerOptions()).Assemble(post, content.TypePage)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	want := []string{
		"Post 7 has no slug and none could be derived from its title",
		"Post 7 has no parseable publish date",
	}
	if !slices.Equal(assembly.Errors, want) {
		t.Fatalf("unexpected errors %v", assembly.Errors)
	}
	if !slices.Contains(assembly.Warnings, "Post has no content") || rec.Content != "" {
		t.Fatalf("expected empty body warning, got %v", assembly.Warnings)
	}
}

func TestAssembleDecodesPercentEncodedSlug(t *testing.T) {
	post := samplePost()
	post.Slug = "caf%C3%A9-notes"

	rec, assembly, err := wordpress.NewAssembler(wordpress.DefaultAssemblerOptions()).Assemble(post, content.TypePost)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if rec.Slug != "café-notes" {
		t.Fatalf("unexpected slug %q", rec.Slug)
	}
	if !slices.Contains(assembly.Warnings, `Slug "café-notes" is not lowercase words joined by hyphens`) {
		t.Fatalf("expected slug format warning, got %v", assembly.Warnings)
	}
}

func TestAssembleRejectsUnknownType(t *testing.T) {
	_, _, err := wordpress.NewAssembler(wordpress.DefaultAssemblerOptions()).Assemble(samplePost(), content.Type("product"))
	if !errors.Is(err, content.ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestAssembleAllKeepsOrder(t *testing.T) {
	first, second := samplePost(), samplePost()
	second.ID, second.Slug = 8, "second"
	page := samplePost()
	page.ID, page.Slug = 9, "about"

	records, assemblies, errs := wordpress.NewAssembler(wordpress.DefaultAssemblerOptions()).AssembleAll(
		map[content.Type][]interfaces.WPPost{
			content.TypePost: {first, second},
			content.TypePage: {page},
		},
		[]content.Type{content.TypePage, content.TypePost, content.Type("product")},
	)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors %v", errs)
	}
	if len(records) != 3 || len(assemblies) != 3 {
		t.Fatalf("expected 3 records, got %d/%d", len(records), len(assemblies))
	}
	var slugs []string
	for _, rec := range records {
		slugs = append(slugs, rec.Slug)
	}
	if !slices.Equal(slugs, []string{"about", "calmer-dashboards", "second"}) {
		t.Fatalf("unexpected order %v", slugs)
	}
}

func TestPlainText(t *testing.T) {
	cases := map[string]string{
		"Plain  title":                                  "Plain title",
		"Tom &amp; Jerry":                               "Tom & Jerry",
		"<p>One</p><p>Two</p>":                          "One Two",
		"Bold<strong>ly</strong> go":                    "Boldly go",
		"<style>p{}</style>Visible<script>x()</script>": "Visible",
	}
	for input, want := range cases {
		if got := wordpress.PlainText(input); got != want {
			t.Fatalf("PlainText(%q) = %q, want %q", input, got, want)
		}
	}
}
