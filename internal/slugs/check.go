package slugs

import (
	"github.com/polything/go-wpmigrate/content"
)

// InvalidSlugs returns the slugs in items that fail IsValidSlug, in input
// order and without duplicates.
func InvalidSlugs(items []content.Record) []string {
	invalid := []string{}
	seen := map[string]struct{}{}
	for _, item := range items {
		if IsValidSlug(item.Slug) {
			continue
		}
		if _, ok := seen[item.Slug]; ok {
			continue
		}
		seen[item.Slug] = struct{}{}
		invalid = append(invalid, item.Slug)
	}
	return invalid
}

// Loss describes a record that gives up its slug in a batch.
type Loss struct {
	Index     int
	Slug      string
	RenamedTo string
	Err       *content.SlugConflictError
}

// CheckConflicts reports, in input order, every record of items that
// ResolveSlugConflicts would rename. Records without a slug are ignored and a
// single record never conflicts.
func CheckConflicts(items []content.Record) []Loss {
	indexes := make([]int, 0, len(items))
	filtered := make([]content.Record, 0, len(items))
	for i, item := range items {
		if item.Slug == "" {
			continue
		}
		indexes = append(indexes, i)
		filtered = append(filtered, item)
	}

	result := ResolveSlugConflicts(filtered)
	losses := []Loss{}
	for pos, final := range result.Order {
		original := filtered[pos]
		if final == original.Slug {
			continue
		}
		losses = append(losses, Loss{
			Index:     indexes[pos],
			Slug:      original.Slug,
			RenamedTo: final,
			Err: &content.SlugConflictError{
				Slug:     original.Slug,
				Type:     original.Type,
				Existing: result.Resolved[original.Slug].Type,
			},
		})
	}
	return losses
}
