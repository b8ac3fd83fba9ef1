// Package export writes content records to disk as MDX files and keeps the
// manifest in step with what was written.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/polything/go-wpmigrate/content"
	"github.com/polything/go-wpmigrate/internal/logging"
	"github.com/polything/go-wpmigrate/internal/manifest"
	"github.com/polything/go-wpmigrate/internal/markdown"
	"github.com/polything/go-wpmigrate/internal/report"
	"github.com/polything/go-wpmigrate/pkg/interfaces"
)

var ErrWriterRequired = errors.New("export: markdown writer is required")

// Status describes what happened to one record.
type Status string

const (
	StatusWritten   Status = "written"
	StatusUnchanged Status = "unchanged"
	StatusFailed    Status = "failed"
	// StatusPlanned marks records a dry run would have written.
	StatusPlanned Status = "planned"
)

// Options controls a single export run.
type Options struct {
	// Incremental skips records whose rendered checksum matches the manifest
	// and whose file is still on disk.
	Incremental bool
	DryRun      bool
}

// Outcome is the per-record result of an export run.
type Outcome struct {
	Index    int          `json:"index"`
	Type     content.Type `json:"type"`
	Slug     string       `json:"slug"`
	Path     string       `json:"path,omitempty"`
	Checksum string       `json:"checksum,omitempty"`
	Status   Status       `json:"status"`
	Error    string       `json:"error,omitempty"`
}

// Result gathers the outcomes of a run in input order.
type Result struct {
	Summary  report.ExportSummary `json:"summary"`
	Outcomes []Outcome            `json:"outcomes"`
}

// Exporter renders records through a markdown.Writer and records them in a
// manifest.Repository.
type Exporter struct {
	writer   *markdown.Writer
	manifest manifest.Repository
	logger   interfaces.Logger
	now      func() time.Time
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithLogger sets the exporter logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(e *Exporter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock overrides the clock used to stamp manifest entries.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) {
		if now != nil {
			e.now = now
		}
	}
}

// New builds an Exporter. A nil repository falls back to an in-memory one.
func New(writer *markdown.Writer, repo manifest.Repository, opts ...Option) (*Exporter, error) {
	if writer == nil {
		return nil, ErrWriterRequired
	}
	if repo == nil {
		repo = manifest.NewMemoryRepository()
	}
	e := &Exporter{
		writer:   writer,
		manifest: repo,
		logger:   logging.NoOp(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Export writes records in order. Failures are reported per record and do
// not stop the run; only cancellation or a manifest lookup failure aborts.
func (e *Exporter) Export(ctx context.Context, records []content.Record, opts Options) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	result := Result{
		Summary:  report.ExportSummary{OutputDir: e.writer.Root(), DryRun: opts.DryRun},
		Outcomes: make([]Outcome, 0, len(records)),
	}

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		outcome, err := e.exportOne(ctx, i, rec, opts)
		if err != nil {
			return result, err
		}
		result.Outcomes = append(result.Outcomes, outcome)
		switch outcome.Status {
		case StatusWritten, StatusPlanned:
			result.Summary.Written++
		case StatusUnchanged:
			result.Summary.Unchanged++
		case StatusFailed:
			result.Summary.Failed++
		}
	}

	e.logger.Info("export.run.completed",
		"output_dir", result.Summary.OutputDir,
		"written", result.Summary.Written,
		"unchanged", result.Summary.Unchanged,
		"failed", result.Summary.Failed,
		"dry_run", opts.DryRun,
	)
	return result, nil
}

func (e *Exporter) exportOne(ctx context.Context, index int, rec content.Record, opts Options) (Outcome, error) {
	outcome := Outcome{Index: index, Type: rec.Type, Slug: rec.Slug}
	logger := logging.WithRecordContext(e.logger, string(rec.Type), rec.Slug, "")

	doc, err := e.writer.Prepare(rec)
	if err != nil {
		outcome.Status = StatusFailed
		outcome.Error = err.Error()
		logger.Warn("export.write.failed", "error", err)
		return outcome, nil
	}
	outcome.Path = doc.Path
	outcome.Checksum = doc.Checksum
	logger = logging.WithRecordContext(logger, "", "", doc.Path)

	if opts.Incremental {
		same, err := manifest.Unchanged(ctx, e.manifest, doc.Path, doc.Checksum)
		if err != nil {
			return outcome, fmt.Errorf("export: manifest lookup %s: %w", doc.Path, err)
		}
		if same && e.onDisk(doc.Path) {
			outcome.Status = StatusUnchanged
			logger.Debug("export.write.skipped")
			return outcome, nil
		}
	}

	if opts.DryRun {
		outcome.Status = StatusPlanned
		logger.Debug("export.write.planned")
		return outcome, nil
	}

	if err := e.writer.Write(doc); err != nil {
		outcome.Status = StatusFailed
		outcome.Error = err.Error()
		logger.Error("export.write.failed", "error", err)
		return outcome, nil
	}
	if _, err := e.manifest.Upsert(ctx, manifest.Entry{
		Path:       doc.Path,
		Type:       rec.Type,
		Slug:       rec.Slug,
		Checksum:   doc.Checksum,
		ExportedAt: e.now().UTC(),
	}); err != nil {
		outcome.Status = StatusFailed
		outcome.Error = err.Error()
		logger.Error("export.manifest.failed", "error", err)
		return outcome, nil
	}

	outcome.Status = StatusWritten
	logger.Debug("export.write.completed", "checksum", doc.Checksum)
	return outcome, nil
}

func (e *Exporter) onDisk(rel string) bool {
	_, err := os.Stat(filepath.Join(e.writer.Root(), filepath.FromSlash(rel)))
	return err == nil
}
