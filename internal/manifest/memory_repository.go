package manifest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryRepository stores entries in-memory. Dry runs and tests use it.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries map[string]Entry
	now     func() time.Time
}

// NewMemoryRepository constructs an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		entries: map[string]Entry{},
		now:     time.Now,
	}
}

// Get returns the entry stored for path or ErrEntryNotFound.
func (r *MemoryRepository) Get(_ context.Context, path string) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[path]
	if !ok {
		return Entry{}, ErrEntryNotFound
	}
	return entry, nil
}

// Upsert stores entry, stamping ExportedAt when it is zero.
func (r *MemoryRepository) Upsert(_ context.Context, entry Entry) (Entry, error) {
	if strings.TrimSpace(entry.Path) == "" {
		return Entry{}, ErrPathRequired
	}
	if entry.ExportedAt.IsZero() {
		entry.ExportedAt = r.now().UTC()
	}
	r.mu.Lock()
	r.entries[entry.Path] = entry
	r.mu.Unlock()
	return entry, nil
}

// Delete removes the entry for path.
func (r *MemoryRepository) Delete(_ context.Context, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[path]; !ok {
		return ErrEntryNotFound
	}
	delete(r.entries, path)
	return nil
}

// List returns a snapshot of every entry ordered by path.
func (r *MemoryRepository) List(context.Context) ([]Entry, error) {
	r.mu.RLock()
	out := make([]Entry, 0, len(r.entries))
	for _, entry := range r.entries {
		out = append(out, entry)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}
