package markdown

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adrg/frontmatter"

	"github.com/polything/go-wpmigrate/content"
)

var ErrNoFrontMatter = errors.New("markdown: document has no front matter")

// ParseFrontMatter splits source into its front-matter map and body. Nested
// maps are normalised to map[string]any and YAML timestamps are rendered back
// to ISO strings, so the result can be validated exactly as it was written.
func ParseFrontMatter(source []byte) (map[string]any, string, error) {
	var raw map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(source), &raw)
	if err != nil {
		return nil, "", fmt.Errorf("markdown: parse front matter: %w", err)
	}
	if raw == nil {
		return nil, "", ErrNoFrontMatter
	}

	fields := make(map[string]any, len(raw))
	for key, value := range raw {
		fields[key] = normalizeValue(value)
	}
	return fields, trimBody(string(body)), nil
}

func normalizeValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = normalizeValue(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[fmt.Sprint(key)] = normalizeValue(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalizeValue(item)
		}
		return out
	case time.Time:
		return content.FormatISO(v)
	default:
		return value
	}
}

func trimBody(body string) string {
	return strings.Trim(body, "\r\n")
}
