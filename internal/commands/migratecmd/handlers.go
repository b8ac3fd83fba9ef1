package migratecmd

import (
	"context"
	"io"

	command "github.com/goliatone/go-command"

	wpmigrate "github.com/polything/go-wpmigrate"
	"github.com/polything/go-wpmigrate/internal/commands"
	"github.com/polything/go-wpmigrate/internal/logging"
	"github.com/polything/go-wpmigrate/internal/report"
	"github.com/polything/go-wpmigrate/pkg/interfaces"
)

const (
	migrateOperation  = "migrate.run"
	validateOperation = "validate.directory"
)

// Service is the part of *wpmigrate.Module the handlers drive.
type Service interface {
	Migrate(ctx context.Context, opts wpmigrate.MigrateOptions) (wpmigrate.MigrateResult, error)
	ValidateDirectory(ctx context.Context, dir string, opts wpmigrate.ValidateOptions) (wpmigrate.ValidateResult, error)
}

var (
	_ command.Commander[MigrateCommand]           = (*MigrateHandler)(nil)
	_ command.Commander[ValidateDirectoryCommand] = (*ValidateDirectoryHandler)(nil)
	_ Service                                     = (*wpmigrate.Module)(nil)
)

// MigrateHandler runs migrations through the shared command handler.
type MigrateHandler struct {
	inner *commands.Handler[MigrateCommand]
}

// NewMigrateHandler creates a handler bound to service. When out is non-nil
// the report of every successful run is rendered to it.
func NewMigrateHandler(service Service, logger interfaces.Logger, out io.Writer, opts ...commands.HandlerOption[MigrateCommand]) *MigrateHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg MigrateCommand) error {
		result, err := service.Migrate(ctx, wpmigrate.MigrateOptions{
			Types:  msg.ContentTypes(),
			DryRun: msg.DryRun,
			Full:   msg.Full,
		})
		if err != nil {
			return err
		}
		logging.WithFields(baseLogger, map[string]any{
			"run_id":    result.Report.Validation.RunID,
			"written":   result.Export.Summary.Written,
			"unchanged": result.Export.Summary.Unchanged,
			"failed":    result.Export.Summary.Failed,
			"skipped":   result.Skipped,
			"dry_run":   msg.DryRun,
		}).Info("migrate.command.run.completed")
		if msg.ResultCallback != nil {
			msg.ResultCallback(result)
		}
		return render(out, msg.ReportFormat, result.Report)
	}

	handlerOpts := []commands.HandlerOption[MigrateCommand]{
		commands.WithLogger[MigrateCommand](baseLogger),
		commands.WithOperation[MigrateCommand](migrateOperation),
	}
	handlerOpts = append(handlerOpts, opts...)
	return &MigrateHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute implements command.Commander.
func (h *MigrateHandler) Execute(ctx context.Context, msg MigrateCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ValidateDirectoryHandler validates exported files through the shared
// command handler. Invalid content makes Execute fail with ErrInvalidContent.
type ValidateDirectoryHandler struct {
	inner *commands.Handler[ValidateDirectoryCommand]
}

// NewValidateDirectoryHandler creates a handler bound to service.
func NewValidateDirectoryHandler(service Service, logger interfaces.Logger, out io.Writer, opts ...commands.HandlerOption[ValidateDirectoryCommand]) *ValidateDirectoryHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg ValidateDirectoryCommand) error {
		result, err := service.ValidateDirectory(ctx, msg.Directory, wpmigrate.ValidateOptions{
			StopOnFirstError:  msg.StopOnFirstError,
			AllowEmptyContent: msg.AllowEmptyContent,
			NonRecursive:      msg.NonRecursive,
		})
		if err != nil {
			return err
		}
		summary := result.Report.Validation.Summary
		logging.WithFields(baseLogger, map[string]any{
			"directory":   msg.Directory,
			"total":       summary.Total,
			"invalid":     summary.Invalid,
			"load_errors": len(result.LoadErrors),
		}).Info("migrate.command.validate.completed")

		if err := render(out, msg.ReportFormat, result.Report); err != nil {
			return err
		}
		if !result.Valid() {
			return invalidContentError(summary.Invalid, len(result.LoadErrors))
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[ValidateDirectoryCommand]{
		commands.WithLogger[ValidateDirectoryCommand](baseLogger),
		commands.WithOperation[ValidateDirectoryCommand](validateOperation),
	}
	handlerOpts = append(handlerOpts, opts...)
	return &ValidateDirectoryHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute implements command.Commander.
func (h *ValidateDirectoryHandler) Execute(ctx context.Context, msg ValidateDirectoryCommand) error {
	return h.inner.Execute(ctx, msg)
}

func render(out io.Writer, format string, doc report.Document) error {
	if out == nil {
		return nil
	}
	parsed, err := report.ParseFormat(format)
	if err != nil {
		return err
	}
	return report.Write(out, parsed, doc)
}
