package bootstrap

import (
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	wpmigrate "github.com/polything/go-wpmigrate"
	"github.com/polything/go-wpmigrate/internal/logging"
	"github.com/polything/go-wpmigrate/pkg/interfaces"
)

// Options captures configuration shared by the wpmigrate CLIs.
type Options struct {
	// ConfigPath points at a YAML config file. Empty uses the defaults.
	ConfigPath string
	// OutputDir overrides Export.OutputDir when set.
	OutputDir      string
	Types          []string
	LoggerProvider interfaces.LoggerProvider
	// Configure runs after flags are applied and before validation.
	Configure func(*wpmigrate.Config)
}

// Module wraps the migration module and the command logger.
type Module struct {
	Module *wpmigrate.Module
	Logger interfaces.Logger
}

// Close releases the module resources.
func (m *Module) Close() error {
	if m == nil || m.Module == nil {
		return nil
	}
	return m.Module.Close()
}

// LoadConfig reads path over the defaults, or returns the defaults when path
// is empty.
func LoadConfig(path string) (wpmigrate.Config, error) {
	if strings.TrimSpace(path) == "" {
		return wpmigrate.DefaultConfig(), nil
	}
	return wpmigrate.LoadConfig(path)
}

// BuildModule constructs a migration module for CLI use.
func BuildModule(opts Options) (*Module, error) {
	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if dir := strings.TrimSpace(opts.OutputDir); dir != "" {
		cfg.Export.OutputDir = dir
	}
	if len(opts.Types) > 0 {
		cfg.WordPress.Types = cloneStrings(opts.Types)
	}
	if opts.Configure != nil {
		opts.Configure(&cfg)
	}

	moduleOpts := []wpmigrate.Option{}
	if opts.LoggerProvider != nil {
		moduleOpts = append(moduleOpts, wpmigrate.WithLoggerProvider(opts.LoggerProvider))
	}

	module, err := wpmigrate.New(cfg, moduleOpts...)
	if err != nil {
		return nil, fmt.Errorf("initialise migration module: %w", err)
	}

	return &Module{
		Module: module,
		Logger: logging.CommandLogger(module.LoggerProvider(), "cli"),
	}, nil
}

// SplitList parses a comma separated list into a trimmed slice.
func SplitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func cloneStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}
