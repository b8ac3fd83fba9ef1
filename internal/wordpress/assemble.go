package wordpress

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/polything/go-wpmigrate/content"
	"github.com/polything/go-wpmigrate/internal/fields"
	"github.com/polything/go-wpmigrate/internal/mdx"
	"github.com/polything/go-wpmigrate/internal/media"
	"github.com/polything/go-wpmigrate/internal/sanitize"
	"github.com/polything/go-wpmigrate/pkg/interfaces"
)

// AssemblerOptions configures the HTML pipeline applied to post bodies.
type AssemblerOptions struct {
	Sanitize sanitize.Options
	Convert  mdx.Options
}

// DefaultAssemblerOptions enables every sanitizer step and the default
// converter behaviour.
func DefaultAssemblerOptions() AssemblerOptions {
	return AssemblerOptions{
		Sanitize: sanitize.DefaultOptions(),
		Convert:  mdx.DefaultOptions(),
	}
}

// Assembly reports what happened while assembling one post.
type Assembly struct {
	Source          string               `json:"source,omitempty"`
	MediaIDs        []string             `json:"mediaIds"`
	MediaReferences []mdx.MediaReference `json:"mediaReferences"`
	RemovedClasses  []string             `json:"removedClasses,omitempty"`
	FixedLinks      []sanitize.LinkFix   `json:"fixedLinks,omitempty"`
	Warnings        []string             `json:"warnings"`
	Errors          []string             `json:"errors"`
}

// Assembler turns raw WordPress posts into content records.
type Assembler struct {
	opts AssemblerOptions
}

// NewAssembler builds an Assembler.
func NewAssembler(opts AssemblerOptions) *Assembler {
	return &Assembler{opts: opts}
}

// Assemble maps post onto a record of type t: rendered title to plain text,
// the WordPress slug (or one derived from the title), GMT dates in ISO form,
// taxonomy IDs, theme meta, the sanitised and converted body and, for posts,
// the featured flag from sticky. Problems are reported on the Assembly; only
// an unknown content type is an error.
func (a *Assembler) Assemble(post interfaces.WPPost, t content.Type) (content.Record, Assembly, error) {
	assembly := Assembly{
		Source:          post.Link,
		MediaIDs:        []string{},
		MediaReferences: []mdx.MediaReference{},
		Warnings:        []string{},
		Errors:          []string{},
	}
	if !t.Valid() {
		return content.Record{}, assembly, fmt.Errorf("%w: %q", content.ErrUnknownType, t)
	}

	rec := content.Record{
		ID:         post.ID,
		Type:       t,
		Title:      PlainText(post.Title.Rendered),
		Categories: append([]int{}, post.Categories...),
		Tags:       append([]int{}, post.Tags...),
	}

	rec.Slug = decodeSlug(post.Slug)
	if rec.Slug == "" {
		slug, err := content.SlugFromTitle(rec.Title)
		if err != nil {
			assembly.Errors = append(assembly.Errors, fmt.Sprintf("Post %d has no slug and none could be derived from its title", post.ID))
		} else {
			rec.Slug = slug
			assembly.Warnings = append(assembly.Warnings, fmt.Sprintf("Derived slug %q from title", slug))
		}
	}
	if rec.Slug != "" && !content.IsValidSlug(rec.Slug) {
		assembly.Warnings = append(assembly.Warnings, fmt.Sprintf("Slug %q is not lowercase words joined by hyphens", rec.Slug))
	}

	if date, ok := firstDate(post.DateGMT, post.Date); ok {
		rec.Date = date
	} else {
		assembly.Errors = append(assembly.Errors, fmt.Sprintf("Post %d has no parseable publish date", post.ID))
	}
	if updated, ok := firstDate(post.ModifiedGMT, post.Modified); ok {
		rec.Updated = updated
	} else {
		rec.Updated = rec.Date
	}

	rec = fields.MapThemerainFields(post.Meta, t).Apply(rec)
	rec.Hero.Title = PlainText(rec.Hero.Title)
	if t == content.TypePost {
		rec.Featured = content.Bool(post.Sticky)
	}

	rec.Content = a.body(post.Content.Rendered, &assembly)
	assembly.MediaIDs = media.ExtractMediaIDs(rec)
	return rec, assembly, nil
}

func (a *Assembler) body(rendered string, assembly *Assembly) string {
	if strings.TrimSpace(rendered) == "" {
		assembly.Warnings = append(assembly.Warnings, "Post has no content")
		return ""
	}

	sanitized := sanitize.Sanitize(rendered, a.opts.Sanitize)
	assembly.RemovedClasses = sanitized.RemovedClasses
	assembly.FixedLinks = sanitized.FixedLinks
	assembly.Warnings = append(assembly.Warnings, sanitized.Warnings...)
	assembly.Errors = append(assembly.Errors, sanitized.Errors...)
	if strings.TrimSpace(sanitized.Content) == "" {
		return ""
	}

	converted := mdx.Convert(sanitized.Content, a.opts.Convert)
	assembly.MediaReferences = append(assembly.MediaReferences, converted.MediaReferences...)
	assembly.Warnings = append(assembly.Warnings, converted.Warnings...)
	assembly.Errors = append(assembly.Errors, converted.Errors...)
	return converted.Content
}

func firstDate(values ...string) (string, bool) {
	for _, value := range values {
		if parsed, ok := content.ParseWordPressDate(value); ok {
			return parsed, true
		}
	}
	return "", false
}

// decodeSlug undoes the percent encoding WordPress applies to non-ASCII
// slugs.
func decodeSlug(slug string) string {
	slug = strings.TrimSpace(slug)
	if decoded, err := url.PathUnescape(slug); err == nil {
		return decoded
	}
	return slug
}

// PlainText returns the text content of a rendered HTML fragment with
// entities decoded and whitespace collapsed.
func PlainText(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return strings.Join(strings.Fields(fragment), " ")
	}
	var b strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(fragment))
	skip := 0
	for {
		token := tokenizer.Next()
		switch token {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			if skip == 0 {
				b.Write(tokenizer.Text())
			}
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := tokenizer.TagName()
			tag := string(name)
			if isHidden(tag) {
				if token == html.StartTagToken {
					skip++
				} else if token == html.EndTagToken && skip > 0 {
					skip--
				}
			}
			if isBlock(tag) {
				b.WriteByte(' ')
			}
		}
	}
}

func isHidden(tag string) bool {
	return tag == "script" || tag == "style"
}

func isBlock(tag string) bool {
	switch tag {
	case "p", "br", "div", "li", "ul", "ol", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "figcaption":
		return true
	}
	return false
}

// AssembleAll assembles every fetched collection in types order, keeping the
// API order within a type. Records and assemblies are index aligned; posts
// that cannot be assembled are reported as errors instead.
func (a *Assembler) AssembleAll(posts map[content.Type][]interfaces.WPPost, types []content.Type) ([]content.Record, []Assembly, []error) {
	var (
		records    []content.Record
		assemblies []Assembly
		errs       []error
	)
	for _, t := range types {
		for _, post := range posts[t] {
			rec, assembly, err := a.Assemble(post, t)
			if err != nil {
				errs = append(errs, fmt.Errorf("wordpress: assemble post %d: %w", post.ID, err))
				continue
			}
			records = append(records, rec)
			assemblies = append(assemblies, assembly)
		}
	}
	return records, assemblies, errs
}
