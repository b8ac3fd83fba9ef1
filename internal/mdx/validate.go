package mdx

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// BodyResult reports problems found in an MDX body.
type BodyResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

var (
	fenceLinePattern   = regexp.MustCompile("(?m)^\\s*```")
	fencedBlockPattern = regexp.MustCompile("(?s)```.*?```")
	boldPattern        = regexp.MustCompile(`\*\*`)
	bulletPattern      = regexp.MustCompile(`(?m)^\s*\*\s`)
	excessBlankPattern = regexp.MustCompile(`\n{4,}`)
)

// Validate checks body for unbalanced code fences and inline code (errors),
// unbalanced emphasis, runs of blank lines and structural markdown issues
// (warnings).
func Validate(body string) BodyResult {
	result := BodyResult{Errors: []string{}, Warnings: []string{}}

	if len(fenceLinePattern.FindAllStringIndex(body, -1))%2 != 0 {
		result.Errors = append(result.Errors, "Unclosed code block (```)")
	}

	prose := fencedBlockPattern.ReplaceAllString(body, "")
	if i := strings.Index(prose, "```"); i >= 0 {
		prose = prose[:i]
	}
	if strings.Count(prose, "`")%2 != 0 {
		result.Errors = append(result.Errors, "Unclosed inline code (`)")
	}

	prose = stripInlineCode(prose)
	if len(boldPattern.FindAllStringIndex(prose, -1))%2 != 0 {
		result.Warnings = append(result.Warnings, "Possible unclosed bold formatting (**)")
	}
	italics := bulletPattern.ReplaceAllString(boldPattern.ReplaceAllString(prose, ""), "")
	if strings.Count(italics, "*")%2 != 0 {
		result.Warnings = append(result.Warnings, "Possible unclosed italic formatting (*)")
	}

	if excessBlankPattern.MatchString(body) {
		result.Warnings = append(result.Warnings, "Excessive blank lines found")
	}

	result.Warnings = append(result.Warnings, structuralWarnings(body)...)
	result.Valid = len(result.Errors) == 0
	return result
}

var inlineCodeSpanPattern = regexp.MustCompile("`[^`\n]*`")

func stripInlineCode(value string) string {
	return inlineCodeSpanPattern.ReplaceAllString(value, "")
}

var rawTagPattern = regexp.MustCompile(`</?([a-z][a-z0-9-]*)`)

// rawTagWarnings flags lowercase HTML tags outside DefaultAllowedTags. MDX
// reads them as JSX, so stray markup breaks the build.
func rawTagWarnings(raw string, seen map[string]struct{}) []string {
	warnings := []string{}
	for _, match := range rawTagPattern.FindAllStringSubmatch(raw, -1) {
		name := match[1]
		if slices.Contains(DefaultAllowedTags, name) {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		warnings = append(warnings, fmt.Sprintf("Raw <%s> markup will be parsed as JSX", name))
	}
	return warnings
}

func segmentsText(segments *text.Segments, source []byte) string {
	var b strings.Builder
	for i := 0; i < segments.Len(); i++ {
		segment := segments.At(i)
		b.Write(segment.Value(source))
	}
	return b.String()
}

// structuralWarnings walks the goldmark AST of body and flags heading level
// jumps, links without a destination, images without alt text and raw HTML
// tags MDX cannot take.
func structuralWarnings(body string) []string {
	source := []byte(body)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	warnings := []string{}
	lastLevel := 0
	rawSeen := map[string]struct{}{}
	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := node.(type) {
		case *ast.Heading:
			if lastLevel > 0 && n.Level > lastLevel+1 {
				warnings = append(warnings, fmt.Sprintf("Heading level jumps from h%d to h%d", lastLevel, n.Level))
			}
			lastLevel = n.Level
		case *ast.Link:
			if strings.TrimSpace(string(n.Destination)) == "" {
				warnings = append(warnings, fmt.Sprintf("Link %q has an empty destination", nodeText(n, source)))
			}
		case *ast.Image:
			if strings.TrimSpace(nodeText(n, source)) == "" {
				warnings = append(warnings, fmt.Sprintf("Image %s is missing alt text", n.Destination))
			}
			return ast.WalkSkipChildren, nil
		case *ast.RawHTML:
			warnings = append(warnings, rawTagWarnings(segmentsText(n.Segments, source), rawSeen)...)
		case *ast.HTMLBlock:
			warnings = append(warnings, rawTagWarnings(segmentsText(n.Lines(), source), rawSeen)...)
		}
		return ast.WalkContinue, nil
	})
	return warnings
}

func nodeText(node ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(node, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if t, ok := child.(*ast.Text); ok {
				b.Write(t.Segment.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
