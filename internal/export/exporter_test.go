package export_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/polything/go-wpmigrate/content"
	"github.com/polything/go-wpmigrate/internal/export"
	"github.com/polything/go-wpmigrate/internal/manifest"
	"github.com/polything/go-wpmigrate/internal/markdown"
	"github.com/polything/go-wpmigrate/pkg/interfaces"
)

type eventLogger struct {
	mu     *sync.Mutex
	events *[]string
}

func newEventLogger() eventLogger {
	return eventLogger{mu: &sync.Mutex{}, events: &[]string{}}
}

func (l eventLogger) record(msg string) {
	l.mu.Lock()
	*l.events = append(*l.events, msg)
	l.mu.Unlock()
}

func (l eventLogger) Trace(msg string, _ ...any) { l.record(msg) }
func (l eventLogger) Debug(msg string, _ ...any) { l.record(msg) }
func (l eventLogger) Info(msg string, _ ...any)  { l.record(msg) }
func (l eventLogger) Warn(msg string, _ ...any)  { l.record(msg) }
func (l eventLogger) Error(msg string, _ ...any) { l.record(msg) }
func (l eventLogger) Fatal(msg string, _ ...any) { l.record(msg) }

func (l eventLogger) WithContext(context.Context) interfaces.Logger { return l }

func (l eventLogger) has(msg string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, event := range *l.events {
		if event == msg {
			return true
		}
	}
	return false
}

func records() []content.Record {
	return []content.Record{
		{Type: content.TypePost, Slug: "hello", Title: "Hello", Categories: []int{1}, Tags: []int{}, Content: "Hello body"},
		{Type: content.TypePage, Slug: "about", Title: "About", Categories: []int{}, Tags: []int{}},
		{Type: content.TypeProject, Slug: "", Title: "No slug"},
	}
}

func newExporter(t *testing.T, repo manifest.Repository, logger interfaces.Logger) (*export.Exporter, string) {
	t.Helper()
	dir := t.TempDir()
	writer, err := markdown.NewWriter(dir)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	exporter, err := export.New(writer, repo,
		export.WithLogger(logger),
		export.WithClock(func() time.Time { return time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC) }),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return exporter, dir
}

func TestExportWritesFilesAndManifest(t *testing.T) {
	repo := manifest.NewMemoryRepository()
	logger := newEventLogger()
	exporter, dir := newExporter(t, repo, logger)

	result, err := exporter.Export(context.Background(), records(), export.Options{})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if result.Summary.Written != 2 || result.Summary.Failed != 1 || result.Summary.OutputDir != dir {
		t.Fatalf("unexpected summary %+v", result.Summary)
	}
	if got := result.Outcomes[2]; got.Status != export.StatusFailed || got.Error == "" {
		t.Fatalf("slugless record should fail, got %+v", got)
	}

	data, err := os.ReadFile(filepath.Join(dir, "posts", "hello.mdx"))
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if markdown.Checksum(data) != result.Outcomes[0].Checksum {
		t.Fatalf("checksum mismatch")
	}

	entry, err := repo.Get(context.Background(), "pages/about.mdx")
	if err != nil {
		t.Fatalf("manifest Get: %v", err)
	}
	if entry.Slug != "about" || !entry.ExportedAt.Equal(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected manifest entry %+v", entry)
	}
	if !logger.has("export.run.completed") || !logger.has("export.write.failed") {
		t.Fatalf("expected export events, got %v", *logger.events)
	}
}

func TestIncrementalExportSkipsUnchanged(t *testing.T) {
	repo := manifest.NewMemoryRepository()
	exporter, dir := newExporter(t, repo, newEventLogger())
	input := records()[:2]
	ctx := context.Background()

	if _, err := exporter.Export(ctx, input, export.Options{Incremental: true}); err != nil {
		t.Fatalf("first Export: %v", err)
	}

	input[0].Title = "Hello again"
	result, err := exporter.Export(ctx, input, export.Options{Incremental: true})
	if err != nil {
		t.Fatalf("second Export: %v", err)
	}
	if result.Outcomes[0].Status != export.StatusWritten || result.Outcomes[1].Status != export.StatusUnchanged {
		t.Fatalf("unexpected outcomes %+v", result.Outcomes)
	}

	if err := os.Remove(filepath.Join(dir, "pages", "about.mdx")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	result, err = exporter.Export(ctx, input, export.Options{Incremental: true})
	if err != nil {
		t.Fatalf("third Export: %v", err)
	}
	if result.Outcomes[1].Status != export.StatusWritten {
		t.Fatalf("deleted files must be rewritten, got %+v", result.Outcomes[1])
	}

	result, err = exporter.Export(ctx, input, export.Options{})
	if err != nil {
		t.Fatalf("full Export: %v", err)
	}
	if result.Summary.Written != 2 || result.Summary.Unchanged != 0 {
		t.Fatalf("non-incremental runs rewrite everything, got %+v", result.Summary)
	}
}

func TestDryRunWritesNothing(t *testing.T) {
	repo := manifest.NewMemoryRepository()
	exporter, dir := newExporter(t, repo, newEventLogger())

	result, err := exporter.Export(context.Background(), records()[:2], export.Options{DryRun: true})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !result.Summary.DryRun || result.Summary.Written != 2 || result.Outcomes[0].Status != export.StatusPlanned {
		t.Fatalf("unexpected dry run result %+v", result)
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Fatalf("dry run wrote %d entries", len(entries))
	}
	if list, _ := repo.List(context.Background()); len(list) != 0 {
		t.Fatalf("dry run touched the manifest: %v", list)
	}
}

func TestExportStopsOnCancel(t *testing.T) {
	exporter, _ := newExporter(t, nil, newEventLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := exporter.Export(ctx, records(), export.Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestExportAcceptsNilContext(t *testing.T) {
	exporter, _ := newExporter(t, manifest.NewMemoryRepository(), newEventLogger())

	var ctx context.Context
	result, err := exporter.Export(ctx, records()[:1], export.Options{DryRun: true})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if result.Summary.Written != 1 {
		t.Fatalf("expected one planned record, got %+v", result.Summary)
	}
}

func TestNewRequiresWriter(t *testing.T) {
	if _, err := export.New(nil, nil); !errors.Is(err, export.ErrWriterRequired) {
		t.Fatalf("expected ErrWriterRequired, got %v", err)
	}
}
