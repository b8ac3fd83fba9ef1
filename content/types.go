package content

import (
	"strings"
	"time"
)

// Type identifies the WordPress content type a record was migrated from.
type Type string

const (
	TypeProject Type = "project"
	TypePost    Type = "post"
	TypePage    Type = "page"
)

// Types lists the supported content types in precedence order (highest first).
var Types = []Type{TypePage, TypeProject, TypePost}

// Valid reports whether t is one of the supported content types.
func (t Type) Valid() bool {
	switch t {
	case TypeProject, TypePost, TypePage:
		return true
	}
	return false
}

// Dir returns the export directory name used for the content type.
func (t Type) Dir() string {
	switch t {
	case TypeProject:
		return "projects"
	case TypePost:
		return "posts"
	case TypePage:
		return "pages"
	}
	return "misc"
}

// ParseType converts a WordPress post type (or a plural directory name) into a Type.
func ParseType(value string) (Type, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "project", "projects":
		return TypeProject, true
	case "post", "posts":
		return TypePost, true
	case "page", "pages":
		return TypePage, true
	}
	return "", false
}

// SchemaType is the schema.org type emitted in the SEO block.
type SchemaType string

const (
	SchemaWebPage      SchemaType = "WebPage"
	SchemaArticle      SchemaType = "Article"
	SchemaBlogPosting  SchemaType = "BlogPosting"
	SchemaCreativeWork SchemaType = "CreativeWork"
)

// SchemaTypes enumerates the accepted schema.org types.
var SchemaTypes = []SchemaType{SchemaWebPage, SchemaArticle, SchemaBlogPosting, SchemaCreativeWork}

// Valid reports whether s is part of the accepted schema.org enum.
func (s SchemaType) Valid() bool {
	for _, candidate := range SchemaTypes {
		if s == candidate {
			return true
		}
	}
	return false
}

// DefaultSchemaType returns the schema.org type conventionally used for t.
func DefaultSchemaType(t Type) SchemaType {
	switch t {
	case TypePost:
		return SchemaBlogPosting
	case TypeProject:
		return SchemaCreativeWork
	default:
		return SchemaWebPage
	}
}

// Hero is the normalised hero block shared by every content type.
type Hero struct {
	Title           string `json:"title" yaml:"title"`
	Subtitle        string `json:"subtitle" yaml:"subtitle"`
	Image           string `json:"image" yaml:"image"`
	Video           string `json:"video" yaml:"video"`
	TextColor       string `json:"text_color" yaml:"text_color"`
	BackgroundColor string `json:"background_color" yaml:"background_color"`
}

// Links carries the external project link block. Only projects have one.
type Links struct {
	URL   string `json:"url" yaml:"url"`
	Image string `json:"image" yaml:"image"`
	Video string `json:"video" yaml:"video"`
}

// Breadcrumb is a single schema.org breadcrumb entry.
type Breadcrumb struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// Schema is the schema.org block nested under SEO.
type Schema struct {
	Type         SchemaType   `json:"type,omitempty" yaml:"type,omitempty"`
	Image        string       `json:"image,omitempty" yaml:"image,omitempty"`
	Author       string       `json:"author,omitempty" yaml:"author,omitempty"`
	PublishDate  string       `json:"publishDate,omitempty" yaml:"publishDate,omitempty"`
	ModifiedDate string       `json:"modifiedDate,omitempty" yaml:"modifiedDate,omitempty"`
	Breadcrumbs  []Breadcrumb `json:"breadcrumbs,omitempty" yaml:"breadcrumbs,omitempty"`
}

// SEO holds explicit SEO overrides. Empty strings mean "not provided".
type SEO struct {
	Title       string  `json:"title,omitempty" yaml:"title,omitempty"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Canonical   string  `json:"canonical,omitempty" yaml:"canonical,omitempty"`
	Schema      *Schema `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// Record is the normalised content record produced by the migration. Links is
// only set for projects and Featured only for posts; Content holds the MDX body
// and is not part of the front matter.
type Record struct {
	ID         int    `json:"id,omitempty" yaml:"id,omitempty"`
	Type       Type   `json:"type" yaml:"type"`
	Title      string `json:"title" yaml:"title"`
	Slug       string `json:"slug" yaml:"slug"`
	Date       string `json:"date" yaml:"date"`
	Updated    string `json:"updated" yaml:"updated"`
	Categories []int  `json:"categories" yaml:"categories"`
	Tags       []int  `json:"tags" yaml:"tags"`
	Hero       Hero   `json:"hero" yaml:"hero"`
	Links      *Links `json:"links,omitempty" yaml:"links,omitempty"`
	Featured   *bool  `json:"featured,omitempty" yaml:"featured,omitempty"`
	SEO        *SEO   `json:"seo,omitempty" yaml:"seo,omitempty"`
	Content    string `json:"-" yaml:"-"`
}

// SchemaBlock returns the schema block when present.
func (r Record) SchemaBlock() *Schema {
	if r.SEO == nil {
		return nil
	}
	return r.SEO.Schema
}

// Clone returns a deep copy of the record so callers can mutate it freely.
func (r Record) Clone() Record {
	out := r
	out.Categories = cloneInts(r.Categories)
	out.Tags = cloneInts(r.Tags)
	if r.Links != nil {
		links := *r.Links
		out.Links = &links
	}
	if r.Featured != nil {
		featured := *r.Featured
		out.Featured = &featured
	}
	if r.SEO != nil {
		seo := *r.SEO
		if r.SEO.Schema != nil {
			schema := *r.SEO.Schema
			if r.SEO.Schema.Breadcrumbs != nil {
				schema.Breadcrumbs = append([]Breadcrumb(nil), r.SEO.Schema.Breadcrumbs...)
			}
			seo.Schema = &schema
		}
		out.SEO = &seo
	}
	return out
}

func cloneInts(values []int) []int {
	if values == nil {
		return nil
	}
	return append([]int{}, values...)
}

// Bool returns a pointer to v; handy for Record.Featured literals.
func Bool(v bool) *bool {
	return &v
}

// ISOLayout matches the millisecond precision UTC format produced by
// JavaScript's Date.prototype.toISOString.
const ISOLayout = "2006-01-02T15:04:05.000Z"

// FormatISO renders t in ISOLayout.
func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// IsStrictISO reports whether value parses as a date and formats back to the
// exact same string.
func IsStrictISO(value string) bool {
	if value == "" {
		return false
	}
	parsed, err := time.Parse(ISOLayout, value)
	if err != nil {
		return false
	}
	return FormatISO(parsed) == value
}

// ParseWordPressDate parses WordPress REST timestamps (GMT variants carry no
// zone designator) and returns them in ISOLayout.
func ParseWordPressDate(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	for _, layout := range []string{
		ISOLayout,
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		time.DateTime,
		time.DateOnly,
	} {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return FormatISO(t), true
		}
	}
	return "", false
}
