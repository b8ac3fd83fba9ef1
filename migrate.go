// Package wpmigrate moves WordPress content into MDX files for a static site.
// Module wires the REST client, the HTML pipeline, validation and the
// exporter from a single Config.
package wpmigrate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/polything/go-wpmigrate/content"
	"github.com/polything/go-wpmigrate/internal/export"
	"github.com/polything/go-wpmigrate/internal/logging"
	"github.com/polything/go-wpmigrate/internal/logging/gologger"
	"github.com/polything/go-wpmigrate/internal/manifest"
	"github.com/polything/go-wpmigrate/internal/markdown"
	"github.com/polything/go-wpmigrate/internal/mdx"
	"github.com/polything/go-wpmigrate/internal/runner"
	"github.com/polything/go-wpmigrate/internal/sanitize"
	"github.com/polything/go-wpmigrate/internal/seo"
	"github.com/polything/go-wpmigrate/internal/validation"
	"github.com/polything/go-wpmigrate/internal/wordpress"
	"github.com/polything/go-wpmigrate/pkg/interfaces"
)

// ErrSourceRequired is returned by Migrate when neither an API URL nor a
// Source was configured.
var ErrSourceRequired = errors.New("wpmigrate: wordpress api url or source is required")

// Source supplies raw WordPress data. *wordpress.Client implements it.
type Source interface {
	FetchAll(ctx context.Context, types []content.Type) (map[content.Type][]interfaces.WPPost, error)
	FetchMedia(ctx context.Context) ([]interfaces.WPMedia, error)
}

// Module is the migration runtime facade.
type Module struct {
	cfg       Config
	types     []content.Type
	provider  interfaces.LoggerProvider
	logger    interfaces.Logger
	mediaLog  interfaces.Logger
	source    Source
	assembler *wordpress.Assembler
	runner    *runner.Runner
	writer    *markdown.Writer
	exporter  *export.Exporter
	previewer *markdown.Previewer
	now       func() time.Time
	closers   []func() error
}

type moduleOptions struct {
	provider    interfaces.LoggerProvider
	httpClient  *http.Client
	source      Source
	manifest    manifest.Repository
	now         func() time.Time
	newID       func() string
	hasProvider bool
}

// Option customises New.
type Option func(*moduleOptions)

// WithLoggerProvider overrides the provider built from Config.Logging. A nil
// provider silences logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(o *moduleOptions) {
		o.provider = provider
		o.hasProvider = true
	}
}

// WithHTTPClient sets the HTTP client used for WordPress requests.
func WithHTTPClient(client *http.Client) Option {
	return func(o *moduleOptions) {
		o.httpClient = client
	}
}

// WithSource replaces the WordPress REST client.
func WithSource(source Source) Option {
	return func(o *moduleOptions) {
		o.source = source
	}
}

// WithManifest replaces the repository selected by Config.Export.Manifest.
func WithManifest(repo manifest.Repository) Option {
	return func(o *moduleOptions) {
		o.manifest = repo
	}
}

// WithClock fixes the clock used for report and manifest timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *moduleOptions) {
		o.now = now
	}
}

// WithRunIDGenerator overrides the validation run identifier generator.
func WithRunIDGenerator(fn func() string) Option {
	return func(o *moduleOptions) {
		o.newID = fn
	}
}

// New validates cfg and constructs a Module. The caller owns Close.
func New(cfg Config, opts ...Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	types, err := cfg.ContentTypes()
	if err != nil {
		return nil, err
	}

	options := moduleOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	provider := options.provider
	if !options.hasProvider {
		provider, err = newLoggerProvider(cfg.Logging)
		if err != nil {
			return nil, err
		}
	}

	m := &Module{
		cfg:       cfg,
		types:     types,
		provider:  provider,
		logger:    logging.RootLogger(provider),
		mediaLog:  logging.MediaLogger(provider),
		previewer: markdown.NewPreviewer(markdown.DefaultPreviewOptions()),
		now:       options.now,
	}

	m.source = options.source
	if m.source == nil && strings.TrimSpace(cfg.WordPress.APIURL) != "" {
		clientOpts := []wordpress.ClientOption{wordpress.WithLogger(logging.WordPressLogger(provider))}
		if options.httpClient != nil {
			clientOpts = append(clientOpts, wordpress.WithHTTPClient(options.httpClient))
		}
		client, err := wordpress.NewClient(clientConfig(cfg.WordPress), clientOpts...)
		if err != nil {
			return nil, err
		}
		m.source = client
	}

	m.assembler = wordpress.NewAssembler(assemblerOptions(cfg))

	runnerOpts := []runner.Option{runner.WithLogger(logging.ValidationLogger(provider))}
	if options.now != nil {
		runnerOpts = append(runnerOpts, runner.WithClock(options.now))
	}
	if options.newID != nil {
		runnerOpts = append(runnerOpts, runner.WithIDGenerator(options.newID))
	}
	m.runner = runner.New(runnerOpts...)

	m.writer, err = markdown.NewWriter(cfg.Export.OutputDir)
	if err != nil {
		return nil, err
	}

	repo := options.manifest
	if repo == nil {
		repo, err = m.openManifest(cfg.Export.Manifest)
		if err != nil {
			return nil, err
		}
	}

	exportOpts := []export.Option{export.WithLogger(logging.ExportLogger(provider))}
	if options.now != nil {
		exportOpts = append(exportOpts, export.WithClock(options.now))
	}
	m.exporter, err = export.New(m.writer, repo, exportOpts...)
	if err != nil {
		_ = m.Close()
		return nil, err
	}
	return m, nil
}

// Config returns the configuration the module was built with.
func (m *Module) Config() Config {
	return m.cfg
}

// LoggerProvider returns the provider components log through. It is nil when
// logging is disabled.
func (m *Module) LoggerProvider() interfaces.LoggerProvider {
	return m.provider
}

// Close releases the manifest database, if one was opened.
func (m *Module) Close() error {
	var errs []error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	m.closers = nil
	return errors.Join(errs...)
}

func (m *Module) openManifest(cfg ManifestConfig) (manifest.Repository, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "sqlite", "sqlite3":
		repo, closeFn, err := manifest.OpenSQLite(context.Background(), cfg.DSN)
		if err != nil {
			return nil, err
		}
		m.closers = append(m.closers, closeFn)
		return repo, nil
	default:
		return manifest.NewMemoryRepository(), nil
	}
}

func newLoggerProvider(cfg LoggingConfig) (interfaces.LoggerProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "none":
		return nil, nil
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
		if err != nil {
			return nil, fmt.Errorf("wpmigrate: logging provider: %w", err)
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, cfg.Provider)
	}
}

func clientConfig(cfg WordPressConfig) wordpress.Config {
	endpoints := wordpress.DefaultEndpoints()
	for key, name := range cfg.Endpoints {
		if t, ok := content.ParseType(key); ok && strings.TrimSpace(name) != "" {
			endpoints[t] = strings.TrimSpace(name)
		}
	}
	return wordpress.Config{
		APIURL:      cfg.APIURL,
		PerPage:     cfg.PerPage,
		MaxPages:    cfg.MaxPages,
		Timeout:     cfg.Timeout,
		Retries:     cfg.Retries,
		RetryDelay:  cfg.RetryDelay,
		Concurrency: cfg.Concurrency,
		Endpoints:   endpoints,
	}
}

func assemblerOptions(cfg Config) wordpress.AssemblerOptions {
	sanitizeOpts := sanitize.DefaultOptions()
	if cfg.Conversion.AbsolutizeLinks {
		sanitizeOpts.BaseURL = strings.TrimRight(cfg.Site.SourceURL, "/")
	}
	convertOpts := mdx.DefaultOptions()
	convertOpts.PreserveEmbeds = cfg.Conversion.PreserveEmbeds
	convertOpts.NumberOrderedLists = cfg.Conversion.NumberOrderedLists
	return wordpress.AssemblerOptions{Sanitize: sanitizeOpts, Convert: convertOpts}
}

// routePaths are the public routes content is served from.
func routePaths(site SiteConfig) seo.Paths {
	paths := seo.RoutePaths()
	if site.ProjectPath != "" {
		paths.Project = site.ProjectPath
	}
	if site.BlogPath != "" {
		paths.Post = site.BlogPath
	}
	return paths
}

// breadcrumbPaths are the sections used by breadcrumbs and canonical fallbacks.
func breadcrumbPaths(site SiteConfig) seo.Paths {
	paths := seo.BreadcrumbPaths()
	if site.ProjectBreadcrumbPath != "" {
		paths.Project = site.ProjectBreadcrumbPath
	}
	if site.BlogPath != "" {
		paths.Post = site.BlogPath
	}
	return paths
}

func runnerOptions(cfg Config) runner.Options {
	v := cfg.Validation

	seoOpts := seo.DefaultOptions()
	seoOpts.SiteURL = cfg.Site.SiteURL
	seoOpts.Paths = breadcrumbPaths(cfg.Site)
	seoOpts.MinTitleLength = v.SEOTitleMin
	seoOpts.MaxTitleLength = v.SEOTitleMax
	seoOpts.MinDescriptionLength = v.DescriptionMin
	seoOpts.MaxDescriptionLength = v.DescriptionMax

	lengths := validation.DefaultLengthLimits()
	lengths.Title = v.TitleMax
	lengths.SEOTitle = v.SEOTitleMax
	lengths.MinDescription = v.DescriptionMin
	lengths.MaxDescription = v.DescriptionMax
	lengths.MinWords = v.MinWords
	lengths.MaxWords = v.MaxWords

	defaults := seo.DefaultDefaultsOptions()
	defaults.Paths = breadcrumbPaths(cfg.Site)
	if author := strings.TrimSpace(cfg.Site.DefaultAuthor); author != "" {
		defaults.DefaultAuthor = author
	}

	return runner.Options{
		Validation: validation.Options{
			SEO:               seoOpts,
			AllowEmptyContent: v.AllowEmptyContent,
			Lengths:           lengths,
		},
		Defaults:         defaults,
		EnforceDefaults:  v.EnforceDefaults,
		StopOnFirstError: v.StopOnFirstError,
	}
}
