package seo

import (
	"github.com/polything/go-wpmigrate/content"
)

// DefaultsOptions toggles the defaulting passes and supplies the values they
// fill in.
type DefaultsOptions struct {
	ContentTypeDefaults bool
	SchemaType          bool
	RequiredFields      bool

	// Paths are the section paths used for generated breadcrumbs.
	Paths         Paths
	DefaultAuthor string
	HomeLabel     string
	ProjectsLabel string
	BlogLabel     string
}

// DefaultDefaultsOptions enables every pass and uses the /projects breadcrumb
// section for projects.
func DefaultDefaultsOptions() DefaultsOptions {
	return DefaultsOptions{
		ContentTypeDefaults: true,
		SchemaType:          true,
		RequiredFields:      true,
		Paths:               BreadcrumbPaths(),
		DefaultAuthor:       "Polything",
		HomeLabel:           "Home",
		ProjectsLabel:       "Projects",
		BlogLabel:           "Blog",
	}
}

// EnforceSchemaDefaults returns a copy of rec with missing SEO and schema.org
// values filled in. Every pass is additive: present, non-empty values are
// never replaced.
func EnforceSchemaDefaults(rec content.Record, opts DefaultsOptions) content.Record {
	out := rec.Clone()
	if opts.ContentTypeDefaults {
		applyContentTypeDefaults(&out, opts)
	}
	if opts.SchemaType {
		out = applySchemaType(out, true)
	}
	if opts.RequiredFields {
		applyRequiredFields(&out)
	}
	return out
}

// NormalizeSchemaType returns a copy of rec whose existing schema block gets
// the conventional schema.org type when none is set. Records without a schema
// block are returned unchanged.
func NormalizeSchemaType(rec content.Record) content.Record {
	return applySchemaType(rec.Clone(), false)
}

func applySchemaType(rec content.Record, create bool) content.Record {
	if !rec.Type.Valid() {
		return rec
	}
	if create {
		ensureSchema(&rec)
	}
	schema := rec.SchemaBlock()
	if schema != nil && schema.Type == "" {
		schema.Type = content.DefaultSchemaType(rec.Type)
	}
	return rec
}

func ensureSchema(rec *content.Record) *content.Schema {
	if rec.SEO == nil {
		rec.SEO = &content.SEO{}
	}
	if rec.SEO.Schema == nil {
		rec.SEO.Schema = &content.Schema{}
	}
	return rec.SEO.Schema
}

func applyContentTypeDefaults(rec *content.Record, opts DefaultsOptions) {
	if !rec.Type.Valid() {
		return
	}
	schema := ensureSchema(rec)
	if schema.Type == "" {
		schema.Type = content.DefaultSchemaType(rec.Type)
	}
	if schema.PublishDate == "" {
		schema.PublishDate = rec.Date
	}
	if schema.ModifiedDate == "" {
		schema.ModifiedDate = rec.Updated
	}
	if schema.Author == "" && rec.Type != content.TypePage {
		schema.Author = opts.DefaultAuthor
	}
	if len(schema.Breadcrumbs) == 0 && rec.Slug != "" {
		schema.Breadcrumbs = GenerateBreadcrumbs(*rec, opts)
	}
}

// GenerateBreadcrumbs builds the breadcrumb trail for rec: Home, the section
// (projects and posts only) and the record itself.
func GenerateBreadcrumbs(rec content.Record, opts DefaultsOptions) []content.Breadcrumb {
	paths := opts.Paths
	if paths == (Paths{}) {
		paths = BreadcrumbPaths()
	}
	crumbs := []content.Breadcrumb{{Name: label(opts.HomeLabel, "Home"), URL: "/"}}
	switch rec.Type {
	case content.TypeProject:
		crumbs = append(crumbs, content.Breadcrumb{Name: label(opts.ProjectsLabel, "Projects"), URL: paths.Project})
	case content.TypePost:
		crumbs = append(crumbs, content.Breadcrumb{Name: label(opts.BlogLabel, "Blog"), URL: paths.Post})
	}
	return append(crumbs, content.Breadcrumb{Name: rec.Title, URL: paths.PathFor(rec.Type, rec.Slug)})
}

func applyRequiredFields(rec *content.Record) {
	if rec.Categories == nil {
		rec.Categories = []int{}
	}
	if rec.Tags == nil {
		rec.Tags = []int{}
	}
	if rec.Updated == "" {
		rec.Updated = rec.Date
	}
	if rec.Slug == "" {
		if slug, err := content.SlugFromTitle(rec.Title); err == nil {
			rec.Slug = slug
		}
	}
	switch rec.Type {
	case content.TypeProject:
		if rec.Links == nil {
			rec.Links = &content.Links{}
		}
	case content.TypePost:
		if rec.Featured == nil {
			rec.Featured = content.Bool(false)
		}
	}
}

func label(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
