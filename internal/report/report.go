// Package report renders validation and export results as plain text,
// Markdown or JSON. Items are listed in the order they were processed.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/polything/go-wpmigrate/internal/media"
	"github.com/polything/go-wpmigrate/internal/runner"
)

// Format selects a renderer.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

var ErrUnknownFormat = errors.New("report: unknown format")

// ParseFormat accepts text, markdown (or md) and json.
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, value)
}

// ExportSummary counts the files an export run touched.
type ExportSummary struct {
	OutputDir string `json:"outputDir"`
	Written   int    `json:"written"`
	Unchanged int    `json:"unchanged"`
	Failed    int    `json:"failed"`
	DryRun    bool   `json:"dryRun,omitempty"`
}

// Document is everything a report can describe. Media and Export are
// optional sections.
type Document struct {
	Title      string             `json:"title"`
	Validation runner.BatchReport `json:"validation"`
	Media      *media.Report      `json:"media,omitempty"`
	Export     *ExportSummary     `json:"export,omitempty"`
}

func (d Document) title() string {
	if strings.TrimSpace(d.Title) == "" {
		return "Migration report"
	}
	return d.Title
}

// Write renders doc in format to w.
func Write(w io.Writer, format Format, doc Document) error {
	switch format {
	case FormatText, "":
		_, err := io.WriteString(w, Text(doc))
		return err
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(doc))
		return err
	case FormatJSON:
		payload, err := JSON(doc)
		if err != nil {
			return err
		}
		_, err = w.Write(append(payload, '\n'))
		return err
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// JSON renders doc as indented JSON.
func JSON(doc Document) ([]byte, error) {
	doc.Title = doc.title()
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("report: encode json: %w", err)
	}
	return payload, nil
}

// Text renders doc for terminals.
func Text(doc Document) string {
	var b strings.Builder
	batch := doc.Validation
	s := batch.Summary

	fmt.Fprintf(&b, "%s\n", doc.title())
	fmt.Fprintf(&b, "%s\n", strings.Repeat("=", len(doc.title())))
	if batch.RunID != "" {
		fmt.Fprintf(&b, "Run: %s\n", batch.RunID)
	}
	fmt.Fprintf(&b, "Items: %d  Valid: %d  Invalid: %d  Errors: %d  Warnings: %d  Slug conflicts: %d\n",
		s.Total, s.Valid, s.Invalid, s.Errors, s.Warnings, s.Conflicts)

	if m := doc.Media; m != nil {
		fmt.Fprintf(&b, "\n%s\n", m.String())
	}
	if e := doc.Export; e != nil {
		fmt.Fprintf(&b, "\nExport: %d written, %d unchanged, %d failed", e.Written, e.Unchanged, e.Failed)
		if e.OutputDir != "" {
			fmt.Fprintf(&b, " (%s)", e.OutputDir)
		}
		if e.DryRun {
			b.WriteString(" [dry run]")
		}
		b.WriteString("\n")
	}

	for _, item := range batch.Items {
		if len(item.Result.Errors) == 0 && len(item.Result.Warnings) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n[%s] %s\n", status(item), itemLabel(item))
		for _, msg := range item.Result.Errors {
			fmt.Fprintf(&b, "  error: %s\n", msg)
		}
		for _, msg := range item.Result.Warnings {
			fmt.Fprintf(&b, "  warning: %s\n", msg)
		}
	}

	if len(batch.Conflicts) > 0 {
		b.WriteString("\nSlug conflicts:\n")
		for _, c := range batch.Conflicts {
			fmt.Fprintf(&b, "  %s: %s loses to %s (renamed to %s)\n", c.Slug, c.Type, c.Existing, c.RenamedTo)
		}
	}
	return b.String()
}

// Markdown renders doc as a Markdown document.
func Markdown(doc Document) string {
	var b strings.Builder
	batch := doc.Validation
	s := batch.Summary

	fmt.Fprintf(&b, "# %s\n\n", doc.title())
	if batch.RunID != "" {
		fmt.Fprintf(&b, "Run `%s`\n\n", batch.RunID)
	}
	b.WriteString("| Metric | Count |\n|---|---|\n")
	for _, row := range []struct {
		name  string
		value int
	}{
		{"Items", s.Total},
		{"Valid", s.Valid},
		{"Invalid", s.Invalid},
		{"Errors", s.Errors},
		{"Warnings", s.Warnings},
		{"Slug conflicts", s.Conflicts},
	} {
		fmt.Fprintf(&b, "| %s | %d |\n", row.name, row.value)
	}

	if m := doc.Media; m != nil {
		b.WriteString("\n## Media\n\n")
		fmt.Fprintf(&b, "- Resolved %d of %d (%.1f%%)\n", m.Resolved, m.Total, m.SuccessRate)
		if len(m.MissingIDs) > 0 {
			fmt.Fprintf(&b, "- Missing IDs: %s\n", strings.Join(m.MissingIDs, ", "))
		}
	}
	if e := doc.Export; e != nil {
		b.WriteString("\n## Export\n\n")
		if e.OutputDir != "" {
			fmt.Fprintf(&b, "- Output: `%s`\n", e.OutputDir)
		}
		fmt.Fprintf(&b, "- Written: %d\n- Unchanged: %d\n- Failed: %d\n", e.Written, e.Unchanged, e.Failed)
		if e.DryRun {
			b.WriteString("- Dry run: nothing was written\n")
		}
	}

	if len(batch.Conflicts) > 0 {
		b.WriteString("\n## Slug conflicts\n\n| Slug | Type | Kept by | Renamed to |\n|---|---|---|---|\n")
		for _, c := range batch.Conflicts {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", c.Slug, c.Type, c.Existing, c.RenamedTo)
		}
	}

	var flagged []runner.ItemReport
	for _, item := range batch.Items {
		if len(item.Result.Errors) > 0 || len(item.Result.Warnings) > 0 {
			flagged = append(flagged, item)
		}
	}
	if len(flagged) == 0 {
		return b.String()
	}
	b.WriteString("\n## Items\n")
	for _, item := range flagged {
		fmt.Fprintf(&b, "\n### %s (%s)\n\n", itemLabel(item), strings.ToLower(status(item)))
		for _, msg := range item.Result.Errors {
			fmt.Fprintf(&b, "- **Error:** %s\n", escapeMarkdown(msg))
		}
		for _, msg := range item.Result.Warnings {
			fmt.Fprintf(&b, "- Warning: %s\n", escapeMarkdown(msg))
		}
	}
	return b.String()
}

func status(item runner.ItemReport) string {
	if item.Valid() {
		return "VALID"
	}
	return "INVALID"
}

func itemLabel(item runner.ItemReport) string {
	label := fmt.Sprintf("%s/%s", orDash(string(item.Type)), orDash(item.Slug))
	if item.Source != "" {
		label += " " + item.Source
	}
	return label
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}

var markdownEscaper = strings.NewReplacer("`", "\\`", "*", "\\*", "_", "\\_", "|", "\\|")

func escapeMarkdown(value string) string {
	return markdownEscaper.Replace(value)
}
