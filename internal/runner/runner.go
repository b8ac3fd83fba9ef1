// Package runner drives content validation over single records and batches.
// Each record is normalised, optionally completed with schema defaults and
// then passed through the content validation stages; batches finish with a
// slug conflict check across every item.
package runner

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/polything/go-wpmigrate/content"
	"github.com/polything/go-wpmigrate/internal/logging"
	"github.com/polything/go-wpmigrate/internal/seo"
	"github.com/polything/go-wpmigrate/internal/slugs"
	"github.com/polything/go-wpmigrate/internal/validation"
	"github.com/polything/go-wpmigrate/pkg/interfaces"
)

// Options configures a validation run.
type Options struct {
	Validation validation.Options
	Defaults   seo.DefaultsOptions
	// EnforceDefaults fills schema defaults before validating records. It has
	// no effect on documents loaded from disk, which are validated as written.
	EnforceDefaults bool
	// StopOnFirstError ends an item's validation after the first stage that
	// reports an error.
	StopOnFirstError bool
}

// DefaultOptions returns the validation defaults with schema defaults enabled.
func DefaultOptions() Options {
	return Options{
		Validation:      validation.DefaultOptions(),
		Defaults:        seo.DefaultDefaultsOptions(),
		EnforceDefaults: true,
	}
}

// Item is one unit of a batch. Source identifies where it came from (a file
// path or WordPress URL) and only feeds reports and logs.
type Item struct {
	Subject validation.Subject
	Source  string
	// Conflict is set when PrepareBatch renamed the record.
	Conflict *SlugConflict
}

// ItemReport is the validation outcome of a single item.
type ItemReport struct {
	Index     int                      `json:"index"`
	Source    string                   `json:"source,omitempty"`
	ID        int                      `json:"id,omitempty"`
	Type      content.Type             `json:"type"`
	Slug      string                   `json:"slug"`
	Title     string                   `json:"title"`
	Stages    []string                 `json:"stages"`
	StoppedAt string                   `json:"stoppedAt,omitempty"`
	Result    validation.ContentResult `json:"result"`
	Record    content.Record           `json:"-"`
}

// Valid reports whether the item passed validation.
func (r ItemReport) Valid() bool {
	return r.Result.Valid
}

// SlugConflict is a batch level slug collision. Slug is the contested value
// and RenamedTo the slug the losing record is exported under.
type SlugConflict struct {
	Index     int          `json:"index"`
	Slug      string       `json:"slug"`
	Type      content.Type `json:"type"`
	Existing  content.Type `json:"existing"`
	RenamedTo string       `json:"renamedTo"`
}

// Summary counts the outcome of a batch.
type Summary struct {
	Total     int `json:"total"`
	Valid     int `json:"valid"`
	Invalid   int `json:"invalid"`
	Errors    int `json:"errors"`
	Warnings  int `json:"warnings"`
	Conflicts int `json:"conflicts"`
}

// BatchReport is the outcome of RunBatch and RunItems.
type BatchReport struct {
	RunID      string         `json:"runId"`
	StartedAt  time.Time      `json:"startedAt"`
	FinishedAt time.Time      `json:"finishedAt"`
	Items      []ItemReport   `json:"items"`
	Conflicts  []SlugConflict `json:"conflicts"`
	Summary    Summary        `json:"summary"`
}

// Valid reports whether every item passed validation.
func (b BatchReport) Valid() bool {
	return b.Summary.Invalid == 0
}

// Runner validates records and batches.
type Runner struct {
	logger interfaces.Logger
	now    func() time.Time
	newID  func() string
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the runner logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithClock overrides the clock used for report timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// WithIDGenerator overrides the run identifier generator.
func WithIDGenerator(fn func() string) Option {
	return func(r *Runner) {
		if fn != nil {
			r.newID = fn
		}
	}
}

// New constructs a Runner.
func New(opts ...Option) *Runner {
	r := &Runner{
		logger: logging.NoOp(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Prepare applies the explicit normalisation steps that precede validation:
// the conventional schema type is set on existing schema blocks and, when
// enabled, schema defaults are enforced. rec is not modified.
func Prepare(rec content.Record, opts Options) content.Record {
	prepared := seo.NormalizeSchemaType(rec)
	if opts.EnforceDefaults {
		prepared = seo.EnforceSchemaDefaults(prepared, opts.Defaults)
	}
	return prepared
}

// Run validates a single record.
func (r *Runner) Run(ctx context.Context, rec content.Record, opts Options) ItemReport {
	prepared := Prepare(rec, opts)
	return r.runItem(ctx, 0, Item{Subject: validation.RecordSubject(prepared)}, opts)
}

// PrepareBatch renames the records that lose a slug conflict and then
// prepares each one, so schema defaults built from the slug (breadcrumbs,
// canonical fallbacks) use the final value. records is not modified.
func PrepareBatch(records []content.Record, opts Options) []Item {
	renamed := slices.Clone(records)
	conflicts := map[int]*SlugConflict{}
	for _, loss := range slugs.CheckConflicts(renamed) {
		renamed[loss.Index].Slug = loss.RenamedTo
		conflict := conflictFor(loss)
		conflicts[loss.Index] = &conflict
	}

	items := make([]Item, len(renamed))
	for i, rec := range renamed {
		items[i] = Item{
			Subject:  validation.RecordSubject(Prepare(rec, opts)),
			Conflict: conflicts[i],
		}
	}
	return items
}

func conflictFor(loss slugs.Loss) SlugConflict {
	return SlugConflict{
		Index:     loss.Index,
		Slug:      loss.Slug,
		Type:      loss.Err.Type,
		Existing:  loss.Err.Existing,
		RenamedTo: loss.RenamedTo,
	}
}

// RunBatch prepares every record, renaming slug conflict losers, and
// validates the batch. One failing record never stops the others.
func (r *Runner) RunBatch(ctx context.Context, records []content.Record, opts Options) BatchReport {
	return r.RunItems(ctx, PrepareBatch(records, opts), opts)
}

// RunItems validates prepared items as a batch.
func (r *Runner) RunItems(ctx context.Context, items []Item, opts Options) BatchReport {
	if ctx == nil {
		ctx = context.Background()
	}
	runID := r.newID()
	ctx = logging.ContextWithFields(ctx, map[string]any{"run_id": runID})
	logger := logging.WithFields(r.logger.WithContext(ctx), map[string]any{"run_id": runID})

	report := BatchReport{
		RunID:     runID,
		StartedAt: r.now(),
		Items:     make([]ItemReport, 0, len(items)),
		Conflicts: []SlugConflict{},
	}
	logger.Info("validation.batch.started", "items", len(items))

	records := make([]content.Record, 0, len(items))
	for i, item := range items {
		report.Items = append(report.Items, r.runItem(ctx, i, item, opts))
		records = append(records, item.Subject.Record)
	}

	// Renamed items carry their conflict; anything still colliding (documents
	// loaded from disk) is detected here and gets a suggested slug.
	for i, item := range items {
		if item.Conflict != nil {
			conflict := *item.Conflict
			conflict.Index = i
			noteConflict(&report, conflict, logger)
		}
	}
	for _, loss := range slugs.CheckConflicts(records) {
		noteConflict(&report, conflictFor(loss), logger)
	}

	report.Summary = summarize(report)
	report.FinishedAt = r.now()
	logger.Info("validation.batch.completed",
		"total", report.Summary.Total,
		"valid", report.Summary.Valid,
		"invalid", report.Summary.Invalid,
		"conflicts", report.Summary.Conflicts,
	)
	return report
}

func (r *Runner) runItem(ctx context.Context, index int, item Item, opts Options) ItemReport {
	subject := item.Subject
	rec := subject.Record
	report := ItemReport{
		Index:  index,
		Source: item.Source,
		ID:     rec.ID,
		Type:   rec.Type,
		Slug:   rec.Slug,
		Title:  rec.Title,
		Stages: []string{},
		Record: rec,
	}
	logger := logging.WithRecordContext(r.logger, string(rec.Type), rec.Slug, item.Source)

	result := validation.NewContentResult()
	for _, stage := range validation.Stages(opts.Validation) {
		if ctx != nil {
			if err := ctx.Err(); err != nil {
				result.Add([]string{fmt.Sprintf("Validation cancelled before %s stage: %v", stage.Name, err)}, nil)
				report.StoppedAt = stage.Name
				break
			}
		}
		stage.Run(subject, &result)
		report.Stages = append(report.Stages, stage.Name)
		if opts.StopOnFirstError && len(result.Errors) > 0 {
			report.StoppedAt = stage.Name
			break
		}
	}
	validation.Finish(&result, subject, opts.Validation)
	report.Result = result

	if result.Valid {
		logger.Debug("validation.item.valid", "warnings", len(result.Warnings))
	} else {
		logger.Warn("validation.item.invalid", "errors", len(result.Errors), "stopped_at", report.StoppedAt)
	}
	return report
}

// noteConflict records conflict on the batch and warns on the losing item.
// A deterministic rename is not a validation failure.
func noteConflict(report *BatchReport, conflict SlugConflict, logger interfaces.Logger) {
	err := &content.SlugConflictError{Slug: conflict.Slug, Type: conflict.Type, Existing: conflict.Existing}
	warning := fmt.Sprintf("%s renamed_to=%s", err.Error(), conflict.RenamedTo)
	report.Items[conflict.Index].Result.Add(nil, []string{warning})
	report.Conflicts = append(report.Conflicts, conflict)
	logger.Warn("validation.batch.slug_conflict",
		"slug", conflict.Slug,
		"type", conflict.Type,
		"existing", conflict.Existing,
		"renamed_to", conflict.RenamedTo,
	)
}

func summarize(report BatchReport) Summary {
	summary := Summary{Total: len(report.Items), Conflicts: len(report.Conflicts)}
	for _, item := range report.Items {
		if item.Result.Valid {
			summary.Valid++
		} else {
			summary.Invalid++
		}
		summary.Errors += len(item.Result.Errors)
		summary.Warnings += len(item.Result.Warnings)
	}
	return summary
}
