package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/polything/go-wpmigrate/cmd/wpmigrate/internal/bootstrap"
	"github.com/polything/go-wpmigrate/internal/commands/migratecmd"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	err := run(context.Background(), os.Args[1:], os.Stdout)
	if errors.Is(err, migratecmd.ErrInvalidContent) {
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("wpmigrate validate: %v", err)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("wpmigrate-validate", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to a YAML configuration file")
	dir := fs.String("dir", "content", "Directory of exported MDX files")
	format := fs.String("format", "text", "Report format: text, markdown or json")
	stopOnFirstError := fs.Bool("stop-on-first-error", false, "Stop validating a file after the first failing stage")
	allowEmpty := fs.Bool("allow-empty", false, "Accept files with an empty body")
	nonRecursive := fs.Bool("non-recursive", false, "Only read files directly inside -dir")

	if err := fs.Parse(args); err != nil {
		return err
	}

	resources, err := moduleBuilder(bootstrap.Options{ConfigPath: *configPath})
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer resources.Close()

	handler := migratecmd.NewValidateDirectoryHandler(resources.Module, resources.Logger, stdout)
	return handler.Execute(ctx, migratecmd.ValidateDirectoryCommand{
		Directory:         *dir,
		StopOnFirstError:  *stopOnFirstError,
		AllowEmptyContent: *allowEmpty,
		NonRecursive:      *nonRecursive,
		ReportFormat:      *format,
	})
}
