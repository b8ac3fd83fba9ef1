package migratecmd

import (
	"errors"
	"io"

	"github.com/polything/go-wpmigrate/internal/commands"
	"github.com/polything/go-wpmigrate/internal/logging"
	"github.com/polything/go-wpmigrate/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// HandlerSet groups the handlers produced by RegisterCommands.
type HandlerSet struct {
	Migrate  *MigrateHandler
	Validate *ValidateDirectoryHandler
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	out          io.Writer
	migrateOpts  []commands.HandlerOption[MigrateCommand]
	validateOpts []commands.HandlerOption[ValidateDirectoryCommand]
}

// WithReportWriter renders command reports to out.
func WithReportWriter(out io.Writer) Option {
	return func(cfg *options) {
		cfg.out = out
	}
}

// WithMigrateHandlerOptions forwards options to the MigrateHandler constructor.
func WithMigrateHandlerOptions(opts ...commands.HandlerOption[MigrateCommand]) Option {
	return func(cfg *options) {
		cfg.migrateOpts = append(cfg.migrateOpts, opts...)
	}
}

// WithValidateHandlerOptions forwards options to the ValidateDirectoryHandler constructor.
func WithValidateHandlerOptions(opts ...commands.HandlerOption[ValidateDirectoryCommand]) Option {
	return func(cfg *options) {
		cfg.validateOpts = append(cfg.validateOpts, opts...)
	}
}

// RegisterCommands builds the migration handlers and registers them with reg
// when one is supplied.
func RegisterCommands(reg CommandRegistry, service Service, provider interfaces.LoggerProvider, opts ...Option) (*HandlerSet, error) {
	if service == nil {
		return nil, errors.New("migrate command registration: service is nil")
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := logging.CommandLogger(provider, "migrate")
	set := &HandlerSet{
		Migrate:  NewMigrateHandler(service, logger, cfg.out, cfg.migrateOpts...),
		Validate: NewValidateDirectoryHandler(service, logger, cfg.out, cfg.validateOpts...),
	}

	if reg != nil {
		if err := reg.RegisterCommand(set.Migrate); err != nil {
			return nil, err
		}
		if err := reg.RegisterCommand(set.Validate); err != nil {
			return nil, err
		}
	}
	return set, nil
}
