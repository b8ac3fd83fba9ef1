package content

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-slug"
)

// SlugFromTitle derives a slug from a WordPress title for items that were
// exported without one. go-slug transliterates non-ASCII titles, which the
// stricter slug manager normaliser would otherwise drop.
func SlugFromTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrSlugRequired
	}
	normalized, err := slug.Normalize(title)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSlugDerivation, err)
	}
	if normalized == "" {
		return "", fmt.Errorf("%w: %q", ErrSlugDerivation, title)
	}
	return normalized, nil
}

// IsValidSlug reports whether value satisfies go-slug's default rules.
func IsValidSlug(value string) bool {
	return slug.IsValid(value)
}
