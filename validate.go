package wpmigrate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/polything/go-wpmigrate/internal/markdown"
	"github.com/polything/go-wpmigrate/internal/report"
	"github.com/polything/go-wpmigrate/internal/runner"
	"github.com/polything/go-wpmigrate/internal/validation"
)

// ValidateOptions overrides Config.Validation for one ValidateDirectory call.
type ValidateOptions struct {
	StopOnFirstError  bool
	AllowEmptyContent bool
	// NonRecursive only reads files directly inside the directory.
	NonRecursive bool
}

// ValidateResult is the outcome of validating exported files.
type ValidateResult struct {
	Report report.Document `json:"report"`
	// LoadErrors lists files whose front matter could not be parsed.
	LoadErrors []error `json:"-"`
}

// Valid reports whether every file loaded and passed validation.
func (r ValidateResult) Valid() bool {
	return len(r.LoadErrors) == 0 && r.Report.Validation.Valid()
}

// ValidateDirectory loads the MDX and Markdown files under dir and validates
// their front matter and bodies exactly as written.
func (m *Module) ValidateDirectory(ctx context.Context, dir string, opts ValidateOptions) (ValidateResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return ValidateResult{}, fmt.Errorf("wpmigrate: resolve %s: %w", dir, err)
	}
	if info, err := os.Stat(abs); err != nil {
		return ValidateResult{}, fmt.Errorf("wpmigrate: validate %s: %w", dir, err)
	} else if !info.IsDir() {
		return ValidateResult{}, fmt.Errorf("wpmigrate: validate %s: not a directory", dir)
	}

	loaderCfg := markdown.DefaultLoaderConfig()
	loaderCfg.Recursive = !opts.NonRecursive
	loader := markdown.NewLoader(os.DirFS(abs), loaderCfg)
	docs, loadErrs, err := loader.LoadDirectory(ctx, ".")
	if err != nil {
		return ValidateResult{}, err
	}
	for _, loadErr := range loadErrs {
		m.logger.Warn("validate.load.failed", "error", loadErr)
	}

	runOpts := runnerOptions(m.cfg)
	runOpts.Validation.Now = m.now
	runOpts.StopOnFirstError = runOpts.StopOnFirstError || opts.StopOnFirstError
	runOpts.Validation.AllowEmptyContent = runOpts.Validation.AllowEmptyContent || opts.AllowEmptyContent

	items := make([]runner.Item, len(docs))
	for i, doc := range docs {
		items[i] = runner.Item{
			Subject: validation.DocumentSubject(doc.Fields, doc.Body),
			Source:  doc.Path,
		}
	}
	batch := m.runner.RunItems(ctx, items, runOpts)

	return ValidateResult{
		Report: report.Document{
			Title:      "Content validation report",
			Validation: batch,
		},
		LoadErrors: loadErrs,
	}, nil
}

// Preview renders the body of an MDX document to HTML.
func (m *Module) Preview(source []byte) ([]byte, error) {
	_, body, err := markdown.ParseFrontMatter(source)
	if err != nil {
		return nil, err
	}
	return m.previewer.Render([]byte(body))
}

// PreviewFile reads path and renders its body.
func (m *Module) PreviewFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("wpmigrate: preview %s: %w", path, err)
	}
	return m.Preview(data)
}
