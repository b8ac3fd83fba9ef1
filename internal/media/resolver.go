package media

import (
	"context"

	"github.com/polything/go-wpmigrate/content"
)

// MissingMediaMessage is recorded for IDs absent from the library.
const MissingMediaMessage = "Media not found in media data"

// ResolveError records an ID that could not be resolved.
type ResolveError struct {
	MediaID string `json:"mediaId"`
	Error   string `json:"error"`
}

// Stats counts the outcome of a resolution call.
type Stats struct {
	Total    int `json:"total"`
	Resolved int `json:"resolved"`
	Failed   int `json:"failed"`
}

// Result is the outcome of resolving a set of media IDs.
type Result struct {
	Resolved map[string]Reference `json:"resolved"`
	Errors   []ResolveError       `json:"errors"`
	Stats    Stats                `json:"stats"`
}

// ProgressFunc is invoked after every item of a batch with the 1-based
// position and the total count.
type ProgressFunc func(current, total int)

// ResolveMediaIDs resolves every ID against lib. Missing IDs are reported in
// Errors and never abort the call.
func ResolveMediaIDs(ids []string, lib Library) Result {
	result := newResult(len(ids))
	for _, id := range ids {
		resolveOne(&result, id, lib)
	}
	return result
}

// BatchResolveMediaIDs resolves ids one at a time in input order, calling
// progress after each item. The context is checked between items; on
// cancellation the partial result is returned together with ctx.Err().
func BatchResolveMediaIDs(ctx context.Context, ids []string, lib Library, progress ProgressFunc) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	result := newResult(len(ids))
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		resolveOne(&result, id, lib)
		if progress != nil {
			progress(i+1, len(ids))
		}
	}
	return result, nil
}

func newResult(total int) Result {
	return Result{
		Resolved: make(map[string]Reference, total),
		Errors:   []ResolveError{},
		Stats:    Stats{Total: total},
	}
}

func resolveOne(result *Result, id string, lib Library) {
	item, ok := lib[id]
	if !ok {
		result.Errors = append(result.Errors, ResolveError{MediaID: id, Error: MissingMediaMessage})
		result.Stats.Failed++
		return
	}
	result.Resolved[id] = NewReference(id, item)
	result.Stats.Resolved++
}

// UpdateContentWithResolvedMedia returns a copy of rec whose media fields
// (hero image/video, links image/video, schema image) are replaced by the
// local path of their resolved reference. Values without a resolution are
// left untouched.
func UpdateContentWithResolvedMedia(rec content.Record, resolved map[string]Reference) content.Record {
	out := rec.Clone()
	swap := func(value *string) {
		if ref, ok := resolved[*value]; ok && *value != "" {
			*value = ref.LocalPath
		}
	}

	swap(&out.Hero.Image)
	swap(&out.Hero.Video)
	if out.Links != nil {
		swap(&out.Links.Image)
		swap(&out.Links.Video)
	}
	if schema := out.SchemaBlock(); schema != nil {
		swap(&schema.Image)
	}
	return out
}

// ExtractMediaIDs collects the media IDs referenced by rec's media fields, in
// field order and without duplicates. Paths and URLs are ignored.
func ExtractMediaIDs(rec content.Record) []string {
	candidates := []string{rec.Hero.Image, rec.Hero.Video}
	if rec.Links != nil {
		candidates = append(candidates, rec.Links.Image, rec.Links.Video)
	}
	if schema := rec.SchemaBlock(); schema != nil {
		candidates = append(candidates, schema.Image)
	}

	ids := []string{}
	seen := map[string]struct{}{}
	for _, candidate := range candidates {
		if !IsValidMediaID(candidate) {
			continue
		}
		if _, ok := seen[candidate]; ok {
			continue
		}
		seen[candidate] = struct{}{}
		ids = append(ids, candidate)
	}
	return ids
}
