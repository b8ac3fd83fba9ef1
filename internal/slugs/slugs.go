// Package slugs detects and resolves slug collisions between content types.
//
// When several records share a slug the highest precedence type keeps it
// (page, then project, then post); ties keep their input order. Every other
// record is renamed to "<slug>-<type>", with a numeric suffix when that name
// is taken as well.
package slugs

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/polything/go-wpmigrate/content"
	"github.com/polything/go-wpmigrate/internal/seo"
)

// Precedence returns the weight of t; higher weights keep contested slugs.
func Precedence(t content.Type) int {
	switch t {
	case content.TypePage:
		return 3
	case content.TypeProject:
		return 2
	case content.TypePost:
		return 1
	}
	return 0
}

// Rename records a slug change applied to a losing record.
type Rename struct {
	ID      int          `json:"id,omitempty"`
	Type    content.Type `json:"type"`
	Title   string       `json:"title"`
	OldSlug string       `json:"oldSlug"`
	NewSlug string       `json:"newSlug"`
}

// Conflict describes a group of records that shared a slug.
type Conflict struct {
	Slug      string           `json:"slug"`
	Items     []content.Record `json:"items"`
	Primary   content.Record   `json:"primary"`
	Conflicts []content.Record `json:"conflicts"`
	Renamed   []Rename         `json:"renamed"`
}

// Stats summarises a resolution run.
type Stats struct {
	Total     int `json:"total"`
	Unique    int `json:"unique"`
	Conflicts int `json:"conflicts"`
	Renamed   int `json:"renamed"`
}

// Result maps every final slug to its record. Order lists the final slugs in
// input order of the records they belong to.
type Result struct {
	Resolved  map[string]content.Record `json:"resolved"`
	Order     []string                  `json:"order"`
	Conflicts []Conflict                `json:"conflicts"`
	Stats     Stats                     `json:"stats"`
}

// Records returns the resolved records in input order.
func (r Result) Records() []content.Record {
	out := make([]content.Record, 0, len(r.Order))
	for _, slug := range r.Order {
		out = append(out, r.Resolved[slug])
	}
	return out
}

// ResolveSlugConflicts assigns every record a unique slug. Input records are
// not modified; renamed records are copies.
func ResolveSlugConflicts(items []content.Record) Result {
	result := Result{
		Resolved:  make(map[string]content.Record, len(items)),
		Order:     make([]string, len(items)),
		Conflicts: []Conflict{},
		Stats:     Stats{Total: len(items)},
	}

	groups, order := groupBySlug(items)
	taken := make(map[string]struct{}, len(items))
	for _, slug := range order {
		taken[slug] = struct{}{}
	}

	for _, slug := range order {
		members := groups[slug]
		if len(members) == 1 {
			idx := members[0]
			result.Resolved[slug] = items[idx]
			result.Order[idx] = slug
			result.Stats.Unique++
			continue
		}

		ranked := rank(members, items)
		conflict := Conflict{
			Slug:      slug,
			Items:     make([]content.Record, 0, len(members)),
			Primary:   items[ranked[0]],
			Conflicts: make([]content.Record, 0, len(ranked)-1),
			Renamed:   make([]Rename, 0, len(ranked)-1),
		}
		for _, idx := range members {
			conflict.Items = append(conflict.Items, items[idx])
		}

		result.Resolved[slug] = items[ranked[0]]
		result.Order[ranked[0]] = slug
		for _, idx := range ranked[1:] {
			loser := items[idx].Clone()
			newSlug := nextFreeSlug(slug, loser.Type, taken)
			taken[newSlug] = struct{}{}

			conflict.Conflicts = append(conflict.Conflicts, items[idx])
			conflict.Renamed = append(conflict.Renamed, Rename{
				ID:      loser.ID,
				Type:    loser.Type,
				Title:   loser.Title,
				OldSlug: slug,
				NewSlug: newSlug,
			})

			loser.Slug = newSlug
			result.Resolved[newSlug] = loser
			result.Order[idx] = newSlug
			result.Stats.Renamed++
		}
		result.Conflicts = append(result.Conflicts, conflict)
		result.Stats.Conflicts++
	}
	return result
}

// groupBySlug returns member indexes per slug and the slugs in first-seen order.
func groupBySlug(items []content.Record) (map[string][]int, []string) {
	groups := make(map[string][]int, len(items))
	order := make([]string, 0, len(items))
	for i, item := range items {
		if _, ok := groups[item.Slug]; !ok {
			order = append(order, item.Slug)
		}
		groups[item.Slug] = append(groups[item.Slug], i)
	}
	return groups, order
}

// rank orders member indexes by precedence, highest first. Equal weights fall
// back to the input index, so the order is stable regardless of the sort.
func rank(members []int, items []content.Record) []int {
	ranked := slices.Clone(members)
	slices.SortFunc(ranked, func(a, b int) int {
		if diff := Precedence(items[b].Type) - Precedence(items[a].Type); diff != 0 {
			return diff
		}
		return a - b
	})
	return ranked
}

func nextFreeSlug(slug string, t content.Type, taken map[string]struct{}) string {
	candidate := slug + "-" + string(t)
	if _, used := taken[candidate]; !used {
		return candidate
	}
	for n := 2; ; n++ {
		next := fmt.Sprintf("%s-%d", candidate, n)
		if _, used := taken[next]; !used {
			return next
		}
	}
}

var validSlugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// IsValidSlug reports whether value is lowercase alphanumeric words joined by
// single hyphens.
func IsValidSlug(value string) bool {
	return validSlugPattern.MatchString(value)
}

var (
	slugDisallowed = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugWhitespace = regexp.MustCompile(`\s+`)
	slugHyphenRuns = regexp.MustCompile(`-+`)
)

// NormalizeSlug lowercases value, drops anything but letters, digits,
// whitespace and hyphens, turns whitespace into hyphens and trims hyphens.
func NormalizeSlug(value string) string {
	out := strings.TrimSpace(strings.ToLower(value))
	out = slugDisallowed.ReplaceAllString(out, "")
	out = slugWhitespace.ReplaceAllString(out, "-")
	out = slugHyphenRuns.ReplaceAllString(out, "-")
	return strings.Trim(out, "-")
}

// CanonicalPath returns the public route of rec: /work/<slug> for projects,
// /blog/<slug> for posts and /<slug> for pages.
func CanonicalPath(rec content.Record) string {
	return seo.RoutePaths().PathFor(rec.Type, rec.Slug)
}
