// Package sanitize strips WordPress markup artifacts from rendered post HTML
// and repairs links that would break once the content leaves WordPress.
//
// Every step works on the raw HTML text. Nothing builds a DOM, which keeps
// the output byte-for-byte predictable and lets the steps be toggled
// independently.
package sanitize

import (
	"fmt"
	"regexp"
	"strings"
)

// Options toggles individual sanitizer steps. A disabled step is a
// passthrough; every other step still runs.
type Options struct {
	RemoveBlockComments    bool
	RemoveWordPressClasses bool
	RemoveDataAttributes   bool
	RemoveWordPressIDs     bool
	FixLinks               bool
	RemoveEmptyElements    bool
	NormalizeWhitespace    bool
	// BaseURL absolutises root-relative links. Leave empty to keep them relative.
	BaseURL string
}

// DefaultOptions enables every step.
func DefaultOptions() Options {
	return Options{
		RemoveBlockComments:    true,
		RemoveWordPressClasses: true,
		RemoveDataAttributes:   true,
		RemoveWordPressIDs:     true,
		FixLinks:               true,
		RemoveEmptyElements:    true,
		NormalizeWhitespace:    true,
	}
}

// LinkFix records a rewritten href.
type LinkFix struct {
	Original string `json:"original"`
	Fixed    string `json:"fixed"`
	Reason   string `json:"reason"`
}

// Result is the sanitizer output. Content always holds the best-effort
// result, even when Errors is non-empty.
type Result struct {
	Content        string    `json:"content"`
	RemovedClasses []string  `json:"removed_classes"`
	FixedLinks     []LinkFix `json:"fixed_links"`
	Warnings       []string  `json:"warnings"`
	Errors         []string  `json:"errors"`
}

// Sanitize runs the enabled steps over html in a fixed order: block comments,
// classes, data attributes, ids, links, empty elements, whitespace.
func Sanitize(html string, opts Options) (result Result) {
	result = Result{
		RemovedClasses: []string{},
		FixedLinks:     []LinkFix{},
		Warnings:       []string{},
		Errors:         []string{},
	}
	if strings.TrimSpace(html) == "" {
		result.Warnings = append(result.Warnings, "Empty HTML content provided")
		return result
	}

	content := html
	defer func() {
		if r := recover(); r != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Sanitization failed: %v", r))
			result.Content = content
		}
	}()

	if opts.RemoveBlockComments {
		content = RemoveBlockComments(content)
	}
	if opts.RemoveWordPressClasses {
		var removed []string
		content, removed = RemoveWordPressClasses(content)
		result.RemovedClasses = append(result.RemovedClasses, removed...)
	}
	if opts.RemoveDataAttributes {
		content = RemoveDataAttributes(content)
	}
	if opts.RemoveWordPressIDs {
		content = RemoveWordPressIDs(content)
	}
	if opts.FixLinks {
		var fixes []LinkFix
		var warnings []string
		content, fixes, warnings = FixLinks(content, opts.BaseURL)
		result.FixedLinks = append(result.FixedLinks, fixes...)
		result.Warnings = append(result.Warnings, warnings...)
	}
	if opts.RemoveEmptyElements {
		content = RemoveEmptyElements(content)
	}
	if opts.NormalizeWhitespace {
		content = NormalizeWhitespace(content)
	}

	result.Content = content
	return result
}

var blockCommentPattern = regexp.MustCompile(`<!--\s*/?wp:[\s\S]*?-->`)

// RemoveBlockComments drops Gutenberg block delimiters (<!-- wp:* --> and
// their closing counterparts).
func RemoveBlockComments(html string) string {
	return blockCommentPattern.ReplaceAllString(html, "")
}

var (
	classAttrPattern = regexp.MustCompile(`\s+class\s*=\s*("[^"]*"|'[^']*')`)

	wordPressClassPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^wp-`),
		regexp.MustCompile(`^has-`),
		regexp.MustCompile(`^align`),
		regexp.MustCompile(`^size-`),
		regexp.MustCompile(`^gutenberg`),
		regexp.MustCompile(`^is-(style|layout|type|content|provider)-`),
		regexp.MustCompile(`^attachment-`),
		regexp.MustCompile(`^blocks-gallery`),
		regexp.MustCompile(`^items-justified-`),
		regexp.MustCompile(`^columns-\d+$`),
		regexp.MustCompile(`^screen-reader-text$`),
	}
)

// IsWordPressClass reports whether class is a WordPress/Gutenberg artifact.
func IsWordPressClass(class string) bool {
	for _, pattern := range wordPressClassPatterns {
		if pattern.MatchString(class) {
			return true
		}
	}
	return false
}

// RemoveWordPressClasses removes WordPress artifact classes from every class
// attribute, dropping the attribute once it is empty. The removed class names
// are returned in encounter order, without duplicates.
func RemoveWordPressClasses(html string) (string, []string) {
	removed := []string{}
	seen := map[string]struct{}{}

	out := classAttrPattern.ReplaceAllStringFunc(html, func(attr string) string {
		match := classAttrPattern.FindStringSubmatch(attr)
		value := strings.Trim(match[1], `"'`)

		kept := make([]string, 0)
		for _, class := range strings.Fields(value) {
			if !IsWordPressClass(class) {
				kept = append(kept, class)
				continue
			}
			if _, ok := seen[class]; !ok {
				seen[class] = struct{}{}
				removed = append(removed, class)
			}
		}
		if len(kept) == 0 {
			return ""
		}
		return ` class="` + strings.Join(kept, " ") + `"`
	})
	return out, removed
}

var dataAttrPattern = regexp.MustCompile(`\s+data-[\w-]+(\s*=\s*("[^"]*"|'[^']*'|[^\s>]+))?`)

// RemoveDataAttributes strips every data-* attribute.
func RemoveDataAttributes(html string) string {
	return dataAttrPattern.ReplaceAllString(html, "")
}

var wordPressIDPattern = regexp.MustCompile(`\s+id\s*=\s*["'](wp-|block-|post-|attachment_|more-)[^"']*["']`)

// RemoveWordPressIDs strips id attributes generated by WordPress
// (wp-*, block-*, post-*, attachment_*, more-*).
func RemoveWordPressIDs(html string) string {
	return wordPressIDPattern.ReplaceAllString(html, "")
}

var (
	whitespaceRunPattern = regexp.MustCompile(`[ \t]+`)
	blankLinesPattern    = regexp.MustCompile(`\n[ \t]*\n(?:[ \t]*\n)+`)
)

// NormalizeWhitespace collapses runs of spaces and tabs, keeps at most one
// blank line between blocks and trims the result.
func NormalizeWhitespace(html string) string {
	out := whitespaceRunPattern.ReplaceAllString(html, " ")
	out = blankLinesPattern.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}
