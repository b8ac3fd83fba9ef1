package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	wpmigrate "github.com/polything/go-wpmigrate"
	"github.com/polything/go-wpmigrate/cmd/wpmigrate/internal/bootstrap"
	"github.com/polything/go-wpmigrate/internal/commands"
	"github.com/polything/go-wpmigrate/internal/commands/migratecmd"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("wpmigrate migrate: %v", err)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("wpmigrate-migrate", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to a YAML configuration file")
	outputDir := fs.String("out", "", "Directory MDX files are written to (overrides export.output_dir)")
	dryRun := fs.Bool("dry-run", false, "Plan the export without writing files")
	full := fs.Bool("full", false, "Rewrite every file even when it is unchanged")
	types := fs.String("types", "", "Comma separated content types to migrate (post, page, project)")
	reportPath := fs.String("report", "", "Write the report to this file instead of stdout")
	format := fs.String("format", "text", "Report format: text, markdown or json")
	redirectsPath := fs.String("redirects", "", "Write a JSON redirect map from WordPress links to new routes")
	timeout := fs.Duration("timeout", commands.DefaultCommandTimeout, "Abort the run after this long")

	if err := fs.Parse(args); err != nil {
		return err
	}

	resources, err := moduleBuilder(bootstrap.Options{
		ConfigPath: *configPath,
		OutputDir:  *outputDir,
	})
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer resources.Close()

	out := stdout
	if *reportPath != "" {
		file, err := os.Create(*reportPath)
		if err != nil {
			return fmt.Errorf("create report: %w", err)
		}
		defer file.Close()
		out = file
	}

	var result wpmigrate.MigrateResult
	handler := migratecmd.NewMigrateHandler(resources.Module, resources.Logger, out,
		commands.WithTimeout[migratecmd.MigrateCommand](*timeout),
	)
	cmd := migratecmd.MigrateCommand{
		Types:        bootstrap.SplitList(*types),
		DryRun:       *dryRun,
		Full:         *full,
		ReportFormat: *format,
		ResultCallback: func(r wpmigrate.MigrateResult) {
			result = r
		},
	}
	if err := handler.Execute(ctx, cmd); err != nil {
		return fmt.Errorf("execute migrate command: %w", err)
	}

	if *redirectsPath != "" {
		if err := writeRedirects(*redirectsPath, result.Redirects); err != nil {
			return err
		}
	}
	if !result.Report.Validation.Valid() {
		fmt.Fprintf(os.Stderr, "%d of %d records failed validation\n",
			result.Report.Validation.Summary.Invalid, result.Report.Validation.Summary.Total)
	}
	return nil
}

func writeRedirects(path string, redirects []wpmigrate.Redirect) error {
	payload, err := json.MarshalIndent(redirects, "", "  ")
	if err != nil {
		return fmt.Errorf("encode redirects: %w", err)
	}
	if err := os.WriteFile(path, append(payload, '\n'), 0o644); err != nil {
		return fmt.Errorf("write redirects: %w", err)
	}
	return nil
}
