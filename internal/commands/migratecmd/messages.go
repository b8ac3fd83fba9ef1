package migratecmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	wpmigrate "github.com/polything/go-wpmigrate"
	"github.com/polything/go-wpmigrate/content"
	"github.com/polything/go-wpmigrate/internal/report"
)

const (
	migrateMessageType           = "wpmigrate.migrate.run"
	validateDirectoryMessageType = "wpmigrate.validate.directory"
)

// MigrateCommand runs a full WordPress to MDX migration.
type MigrateCommand struct {
	// Types limits the run to these content types (post, page, project).
	Types []string `json:"types,omitempty"`
	// DryRun plans the export without touching disk or the manifest.
	DryRun bool `json:"dry_run,omitempty"`
	// Full ignores the manifest and rewrites every file.
	Full bool `json:"full,omitempty"`
	// ReportFormat selects how the report is rendered (text, markdown, json).
	ReportFormat string `json:"report_format,omitempty"`
	// ResultCallback receives the result of a successful run.
	ResultCallback func(wpmigrate.MigrateResult) `json:"-"`
}

// Type implements command.Message.
func (MigrateCommand) Type() string { return migrateMessageType }

// Validate ensures content types and report format are known.
func (cmd MigrateCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Types, validation.Each(validation.By(contentTypeRule))),
		validation.Field(&cmd.ReportFormat, validation.By(reportFormatRule)),
	)
}

// ContentTypes parses Types. Unknown names are skipped; Validate reports them.
func (cmd MigrateCommand) ContentTypes() []content.Type {
	out := make([]content.Type, 0, len(cmd.Types))
	for _, raw := range cmd.Types {
		if t, ok := content.ParseType(raw); ok {
			out = append(out, t)
		}
	}
	return out
}

// ValidateDirectoryCommand validates previously exported MDX files.
type ValidateDirectoryCommand struct {
	Directory         string `json:"directory"`
	StopOnFirstError  bool   `json:"stop_on_first_error,omitempty"`
	AllowEmptyContent bool   `json:"allow_empty_content,omitempty"`
	NonRecursive      bool   `json:"non_recursive,omitempty"`
	ReportFormat      string `json:"report_format,omitempty"`
}

// Type implements command.Message.
func (ValidateDirectoryCommand) Type() string { return validateDirectoryMessageType }

// Validate ensures directory input is present before handlers execute.
func (cmd ValidateDirectoryCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Directory, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("wpmigrate.validate.directory.directory_required", "directory is required")
			}
			return nil
		})),
		validation.Field(&cmd.ReportFormat, validation.By(reportFormatRule)),
	)
}

func contentTypeRule(value any) error {
	raw, _ := value.(string)
	if _, ok := content.ParseType(raw); !ok {
		return validation.NewError("wpmigrate.migrate.type_unknown", "unknown content type "+raw)
	}
	return nil
}

func reportFormatRule(value any) error {
	raw, _ := value.(string)
	if _, err := report.ParseFormat(raw); err != nil {
		return validation.NewError("wpmigrate.report.format_unknown", err.Error())
	}
	return nil
}
