package wpmigrate

import (
	"context"
	"fmt"

	"github.com/polything/go-wpmigrate/content"
	"github.com/polything/go-wpmigrate/internal/export"
	"github.com/polything/go-wpmigrate/internal/media"
	"github.com/polything/go-wpmigrate/internal/report"
	"github.com/polything/go-wpmigrate/internal/runner"
	"github.com/polything/go-wpmigrate/internal/slugs"
	"github.com/polything/go-wpmigrate/internal/wordpress"
)

// MigrateOptions tunes a single Migrate call. Zero values defer to Config.
type MigrateOptions struct {
	// Types limits the run to these content types.
	Types  []content.Type
	DryRun bool
	// Full rewrites every file even when incremental export is configured.
	Full bool
	// MediaProgress is called after each media ID is resolved.
	MediaProgress media.ProgressFunc
}

// Redirect maps a WordPress permalink to the route the record is served from.
type Redirect struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// MigrateResult gathers everything a run produced.
type MigrateResult struct {
	Report     report.Document      `json:"report"`
	Export     export.Result        `json:"export"`
	Assemblies []wordpress.Assembly `json:"assemblies"`
	// AssembleErrors lists posts that could not be turned into records.
	AssembleErrors []string   `json:"assembleErrors,omitempty"`
	Redirects      []Redirect `json:"redirects"`
	// Skipped counts invalid records kept out of the export.
	Skipped int `json:"skipped"`
}

// Migrate fetches every configured content type, assembles records, resolves
// media references, validates the batch and exports the result.
func (m *Module) Migrate(ctx context.Context, opts MigrateOptions) (MigrateResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if m.source == nil {
		return MigrateResult{}, ErrSourceRequired
	}
	types := opts.Types
	if len(types) == 0 {
		types = m.types
	}
	logger := m.logger
	logger.Info("migrate.run.started", "types", types, "dry_run", opts.DryRun)

	posts, err := m.source.FetchAll(ctx, types)
	if err != nil {
		return MigrateResult{}, fmt.Errorf("wpmigrate: fetch content: %w", err)
	}
	items, err := m.source.FetchMedia(ctx)
	if err != nil {
		return MigrateResult{}, fmt.Errorf("wpmigrate: fetch media: %w", err)
	}

	records, assemblies, assembleErrs := m.assembler.AssembleAll(posts, types)
	result := MigrateResult{Assemblies: assemblies, Redirects: []Redirect{}}
	for _, err := range assembleErrs {
		result.AssembleErrors = append(result.AssembleErrors, err.Error())
		logger.Warn("migrate.assemble.failed", "error", err)
	}
	for i, assembly := range assemblies {
		if len(assembly.Warnings) > 0 || len(assembly.Errors) > 0 {
			logger.Debug("migrate.assemble.notes",
				"source", assembly.Source,
				"slug", records[i].Slug,
				"warnings", len(assembly.Warnings),
				"errors", len(assembly.Errors),
			)
		}
	}

	if invalid := slugs.InvalidSlugs(records); len(invalid) > 0 {
		logger.Warn("migrate.assemble.invalid_slugs", "slugs", invalid)
	}

	mediaReport, err := m.resolveMedia(ctx, records, media.NewLibrary(items), opts.MediaProgress)
	if err != nil {
		return result, err
	}

	runOpts := runnerOptions(m.cfg)
	runOpts.Validation.Now = m.now
	batchItems := runner.PrepareBatch(records, runOpts)
	for i := range batchItems {
		batchItems[i].Source = assemblies[i].Source
	}
	batch := m.runner.RunItems(ctx, batchItems, runOpts)
	if err := ctx.Err(); err != nil {
		return result, err
	}

	exportable, skipped := exportRecords(batch, m.cfg.Validation.SkipInvalid)
	result.Skipped = skipped

	exported, err := m.exporter.Export(ctx, exportable, export.Options{
		Incremental: m.cfg.Export.Incremental && !opts.Full,
		DryRun:      opts.DryRun,
	})
	result.Export = exported
	if err != nil {
		return result, err
	}

	routes := routePaths(m.cfg.Site)
	for _, item := range batch.Items {
		if item.Source == "" || item.Record.Slug == "" {
			continue
		}
		if m.cfg.Validation.SkipInvalid && !item.Valid() {
			continue
		}
		result.Redirects = append(result.Redirects, Redirect{
			From: item.Source,
			To:   routes.PathFor(item.Type, item.Record.Slug),
		})
	}

	summary := exported.Summary
	result.Report = report.Document{
		Title:      "WordPress migration report",
		Validation: batch,
		Media:      &mediaReport,
		Export:     &summary,
	}
	logger.Info("migrate.run.completed",
		"run_id", batch.RunID,
		"records", len(records),
		"invalid", batch.Summary.Invalid,
		"skipped", skipped,
		"written", summary.Written,
		"unchanged", summary.Unchanged,
		"failed", summary.Failed,
	)
	return result, nil
}

// resolveMedia resolves every media ID referenced by records against lib and
// rewrites the records in place with local paths.
func (m *Module) resolveMedia(ctx context.Context, records []content.Record, lib media.Library, progress media.ProgressFunc) (media.Report, error) {
	seen := map[string]struct{}{}
	ids := []string{}
	for _, rec := range records {
		for _, id := range media.ExtractMediaIDs(rec) {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	resolved, err := media.BatchResolveMediaIDs(ctx, ids, lib, progress)
	if err != nil {
		return media.Summarize(resolved), fmt.Errorf("wpmigrate: resolve media: %w", err)
	}
	for i := range records {
		records[i] = media.UpdateContentWithResolvedMedia(records[i], resolved.Resolved)
	}

	summary := media.Summarize(resolved)
	if summary.Failed > 0 {
		m.mediaLog.Warn("media.resolve.missing", "missing_ids", summary.MissingIDs)
	}
	m.mediaLog.Info("media.resolve.completed", "total", summary.Total, "resolved", summary.Resolved)
	return summary, nil
}

// exportRecords returns the prepared records of batch in order. Slug conflict
// losers already carry their renamed slug; with skipInvalid, invalid records
// are left out.
func exportRecords(batch runner.BatchReport, skipInvalid bool) ([]content.Record, int) {
	records := make([]content.Record, 0, len(batch.Items))
	skipped := 0
	for _, item := range batch.Items {
		if skipInvalid && !item.Valid() {
			skipped++
			continue
		}
		records = append(records, item.Record)
	}
	return records, skipped
}
