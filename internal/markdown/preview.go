package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
)

// PreviewOptions tune HTML rendering.
type PreviewOptions struct {
	HardWraps bool
	// Unsafe passes raw HTML (the self-closing <img> tags kept by the
	// converter, embeds) through to the output.
	Unsafe     bool
	Extensions []string
}

// DefaultPreviewOptions renders GFM with raw HTML allowed.
func DefaultPreviewOptions() PreviewOptions {
	return PreviewOptions{Unsafe: true}
}

// Previewer renders MDX bodies to HTML with goldmark. It is stateless and
// safe for concurrent use.
type Previewer struct {
	engine goldmark.Markdown
}

// NewPreviewer builds a Previewer.
func NewPreviewer(opts PreviewOptions) *Previewer {
	return &Previewer{engine: newGoldmarkEngine(opts)}
}

// Render converts body into HTML.
func (p *Previewer) Render(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.engine.Convert(body, &buf); err != nil {
		return nil, fmt.Errorf("markdown: render preview: %w", err)
	}
	return buf.Bytes(), nil
}

func newGoldmarkEngine(opts PreviewOptions) goldmark.Markdown {
	rendererOptions := []renderer.Option{}
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}
	if opts.Unsafe {
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}

	engineOptions := []goldmark.Option{
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithExtensions(collectExtensions(opts.Extensions)...),
	}
	if len(rendererOptions) > 0 {
		engineOptions = append(engineOptions, goldmark.WithRendererOptions(rendererOptions...))
	}
	return goldmark.New(engineOptions...)
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"tasklist":      extension.TaskList,
	"footnote":      extension.Footnote,
}

func collectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return []goldmark.Extender{extension.GFM}
	}
	var extenders []goldmark.Extender
	seen := map[string]struct{}{}
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		ext, ok := extensionRegistry[key]
		if !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		extenders = append(extenders, ext)
	}
	return extenders
}
