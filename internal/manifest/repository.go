// Package manifest records what an export wrote so later runs can skip
// documents whose rendered output has not changed.
package manifest

import (
	"context"
	"errors"
	"time"

	"github.com/polything/go-wpmigrate/content"
)

var (
	ErrEntryNotFound = errors.New("manifest: entry not found")
	ErrPathRequired  = errors.New("manifest: entry path is required")
)

// Entry is one exported document. Path is relative to the output directory
// and identifies the entry.
type Entry struct {
	Path       string       `json:"path"`
	Type       content.Type `json:"type"`
	Slug       string       `json:"slug"`
	Checksum   string       `json:"checksum"`
	ExportedAt time.Time    `json:"exportedAt"`
}

// Repository persists manifest entries.
type Repository interface {
	Get(ctx context.Context, path string) (Entry, error)
	Upsert(ctx context.Context, entry Entry) (Entry, error)
	Delete(ctx context.Context, path string) error
	// List returns every entry ordered by path.
	List(ctx context.Context) ([]Entry, error)
}

// Unchanged reports whether repo already holds checksum for path.
func Unchanged(ctx context.Context, repo Repository, path, checksum string) (bool, error) {
	entry, err := repo.Get(ctx, path)
	if errors.Is(err, ErrEntryNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return entry.Checksum == checksum, nil
}
