package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/polything/go-wpmigrate/cmd/wpmigrate/internal/bootstrap"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("wpmigrate preview: %v", err)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("wpmigrate-preview", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to a YAML configuration file")
	filePath := fs.String("file", "", "MDX file to render")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *filePath == "" {
		return fmt.Errorf("-file is required")
	}

	resources, err := moduleBuilder(bootstrap.Options{ConfigPath: *configPath})
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer resources.Close()

	html, err := resources.Module.PreviewFile(*filePath)
	if err != nil {
		return err
	}
	_, err = stdout.Write(html)
	return err
}
