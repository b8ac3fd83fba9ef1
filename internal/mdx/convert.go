// Package mdx rewrites sanitized WordPress HTML into markdown that the MDX
// pipeline accepts, and checks existing MDX bodies for syntax that would break
// the build.
package mdx

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
	"sync"

	htmlconv "github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/polything/go-wpmigrate/internal/media"
	"github.com/polything/go-wpmigrate/internal/sanitize"
)

// Options controls the HTML to MDX conversion.
type Options struct {
	// PreserveEmbeds keeps <iframe> and <embed> markup verbatim.
	PreserveEmbeds bool
	// NumberOrderedLists renders <ol> items as "1.", "2.", ... instead of "-".
	NumberOrderedLists bool
	// StripWordPressArtifacts removes block comments, WordPress classes and
	// data attributes before converting.
	StripWordPressArtifacts bool
	// AllowedTags are rendered back as HTML instead of markdown. Nil selects
	// DefaultAllowedTags; an empty slice converts or drops everything.
	AllowedTags []string
}

// DefaultAllowedTags are the tags left in place after conversion.
var DefaultAllowedTags = []string{"img", "iframe", "embed", "video", "source"}

// DefaultOptions preserves embeds and strips WordPress artifacts. Ordered lists
// keep the historical "-" rendering.
func DefaultOptions() Options {
	return Options{
		PreserveEmbeds:          true,
		StripWordPressArtifacts: true,
		AllowedTags:             append([]string(nil), DefaultAllowedTags...),
	}
}

// MediaReference is a media URL found in the converted HTML.
type MediaReference struct {
	OriginalURL string `json:"originalUrl"`
	LocalPath   string `json:"localPath"`
	Kind        string `json:"kind"`
}

// Result is the conversion output. Content holds the best-effort markdown even
// when Errors is non-empty.
type Result struct {
	Content         string           `json:"content"`
	MediaReferences []MediaReference `json:"mediaReferences"`
	Errors          []string         `json:"errors"`
	Warnings        []string         `json:"warnings"`
}

// Convert rewrites html into MDX-safe markdown. Artifact stripping, media
// extraction and embed protection run on the raw HTML. The remaining markup
// goes through html-to-markdown before cleanup and placeholder restore.
func Convert(input string, opts Options) (result Result) {
	result = Result{
		MediaReferences: []MediaReference{},
		Errors:          []string{},
		Warnings:        []string{},
	}
	if strings.TrimSpace(input) == "" {
		result.Errors = append(result.Errors, "Invalid HTML content provided")
		return result
	}

	c := &converter{opts: opts}
	content := input
	defer func() {
		if r := recover(); r != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Conversion failed: %v", r))
			result.Content = content
		}
	}()

	if opts.StripWordPressArtifacts {
		content = sanitize.RemoveBlockComments(content)
		content, _ = sanitize.RemoveWordPressClasses(content)
		content = sanitize.RemoveDataAttributes(content)
	}

	content, result.MediaReferences = extractMedia(content)

	if opts.PreserveEmbeds {
		content = c.protectEmbeds(content)
	}

	converted, dropped, err := c.toMarkdown(content)
	for _, tag := range dropped {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Removed unsupported <%s> markup", tag))
	}
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Conversion failed: %v", err))
		result.Content = content
		return result
	}
	content = converted
	content = selfClosingImgPattern.ReplaceAllString(content, "<img$1 />")
	content = cleanup(content)
	content = c.restore(content)

	result.Content = content
	return result
}

type protectedBlock struct {
	token string
	raw   string
}

type converter struct {
	opts      Options
	protected []protectedBlock
}

// placeholder stores raw and returns a token that no later pass rewrites.
func (c *converter) placeholder(kind, raw string) string {
	token := fmt.Sprintf("%%%%MDX%s%d%%%%", kind, len(c.protected))
	c.protected = append(c.protected, protectedBlock{token: token, raw: raw})
	return token
}

// restore puts protected blocks back, newest first, so a block captured
// inside another one is restored too.
func (c *converter) restore(content string) string {
	for i := len(c.protected) - 1; i >= 0; i-- {
		block := c.protected[i]
		content = strings.Replace(content, block.token, block.raw, 1)
	}
	return content
}

var (
	mediaTagPattern = regexp.MustCompile(`(?i)<(img|video|source)\b[^>]*>`)
	srcAttrPattern  = regexp.MustCompile(`(?i)(\ssrc\s*=\s*)(["'])([^"']*)(["'])`)
)

// extractMedia records every img/video/source URL and rewrites WordPress
// upload URLs to their local path in place.
func extractMedia(content string) (string, []MediaReference) {
	refs := []MediaReference{}
	out := mediaTagPattern.ReplaceAllStringFunc(content, func(tag string) string {
		kind := strings.ToLower(mediaTagPattern.FindStringSubmatch(tag)[1])
		return srcAttrPattern.ReplaceAllStringFunc(tag, func(attr string) string {
			match := srcAttrPattern.FindStringSubmatch(attr)
			original := match[3]
			if original == "" {
				return attr
			}
			local := media.ConvertToLocalPath(original)
			refs = append(refs, MediaReference{OriginalURL: original, LocalPath: local, Kind: kind})
			return match[1] + match[2] + local + match[4]
		})
	})
	return out, refs
}

var (
	iframePattern = regexp.MustCompile(`(?is)<iframe\b.*?</iframe>`)
	embedPattern  = regexp.MustCompile(`(?is)<embed\b[^>]*>(\s*</embed>)?`)
)

func (c *converter) protectEmbeds(content string) string {
	protect := func(raw string) string {
		return "\n\n" + c.placeholder("EMBED", raw) + "\n\n"
	}
	content = iframePattern.ReplaceAllStringFunc(content, protect)
	return embedPattern.ReplaceAllStringFunc(content, protect)
}

// reportedTags are structural tags whose content loses meaning when dropped.
var reportedTags = map[string]struct{}{
	"table":  {},
	"form":   {},
	"script": {},
	"style":  {},
	"iframe": {},
	"embed":  {},
	"object": {},
	"svg":    {},
}

// inlineTags lists the allow-listable tags that render inline. Anything else
// kept as HTML is emitted as its own block.
var inlineTags = map[string]struct{}{
	"img":    {},
	"source": {},
}

func allowedSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
			set[tag] = struct{}{}
		}
	}
	return set
}

// unsupportedTags returns the distinct reported tags in doc that are not in
// allowed, in encounter order.
func unsupportedTags(doc *xhtml.Node, allowed map[string]struct{}) []string {
	found := []string{}
	seen := map[string]struct{}{}
	var walk func(n *xhtml.Node)
	walk = func(n *xhtml.Node) {
		if n.Type == xhtml.ElementNode {
			name := strings.ToLower(n.Data)
			_, reported := reportedTags[name]
			_, kept := allowed[name]
			_, dup := seen[name]
			if reported && !kept && !dup {
				seen[name] = struct{}{}
				found = append(found, name)
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return found
}

// flattenOrderedLists renders <ol> like <ul> so items keep the "-" marker.
func flattenOrderedLists(n *xhtml.Node) {
	if n.Type == xhtml.ElementNode && n.DataAtom == atom.Ol {
		n.Data = "ul"
		n.DataAtom = atom.Ul
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		flattenOrderedLists(child)
	}
}

var converters sync.Map

// markdownConverter returns the shared converter for an allow list. Allowed
// tags are rendered back as HTML, ahead of the base plugin removing them.
func markdownConverter(allowed map[string]struct{}) *htmlconv.Converter {
	names := slices.Sorted(maps.Keys(allowed))
	key := strings.Join(names, ",")
	if cached, ok := converters.Load(key); ok {
		return cached.(*htmlconv.Converter)
	}

	conv := htmlconv.NewConverter(
		htmlconv.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(
				commonmark.WithBulletListMarker("-"),
				commonmark.WithEmDelimiter("*"),
				commonmark.WithStrongDelimiter("**"),
				commonmark.WithCodeBlockFence("```"),
				commonmark.WithListEndComment(false),
			),
		),
	)
	for _, name := range names {
		tagType := htmlconv.TagTypeBlock
		if _, ok := inlineTags[name]; ok {
			tagType = htmlconv.TagTypeInline
		}
		conv.Register.RendererFor(name, tagType, base.RenderAsHTML, htmlconv.PriorityEarly)
	}

	actual, _ := converters.LoadOrStore(key, conv)
	return actual.(*htmlconv.Converter)
}

var nbspReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&#160;", " ",
	"\u00a0", " ",
)

// toMarkdown converts the tag structure of content. Text is escaped by the
// converter, so entities such as &lt;div&gt; never come back as raw tags.
func (c *converter) toMarkdown(content string) (string, []string, error) {
	doc, err := xhtml.Parse(strings.NewReader(nbspReplacer.Replace(content)))
	if err != nil {
		return "", nil, err
	}

	allowed := c.opts.AllowedTags
	if allowed == nil {
		allowed = DefaultAllowedTags
	}
	set := allowedSet(allowed)
	dropped := unsupportedTags(doc, set)
	if !c.opts.NumberOrderedLists {
		flattenOrderedLists(doc)
	}

	out, err := markdownConverter(set).ConvertNode(doc)
	if err != nil {
		return "", dropped, err
	}
	return string(out), dropped, nil
}

var selfClosingImgPattern = regexp.MustCompile(`(?i)<img\b((?:[^>"']|"[^"]*"|'[^']*')*?)\s*/?>`)

var (
	trailingSpacePattern = regexp.MustCompile(`[ \t]+\n`)
	blankRunPattern      = regexp.MustCompile(`\n{3,}`)
)

func cleanup(content string) string {
	content = trailingSpacePattern.ReplaceAllString(content, "\n")
	content = blankRunPattern.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}
