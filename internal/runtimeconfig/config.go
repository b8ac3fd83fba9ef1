package runtimeconfig

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/polything/go-wpmigrate/content"
)

var (
	ErrSiteURLInvalid         = errors.New("wpmigrate config: site url must be an absolute http(s) url")
	ErrSourceURLInvalid       = errors.New("wpmigrate config: source url must be an absolute http(s) url")
	ErrAPIURLInvalid          = errors.New("wpmigrate config: wordpress api url must be an absolute http(s) url")
	ErrContentTypeUnknown     = errors.New("wpmigrate config: unknown content type")
	ErrWordPressLimitsInvalid = errors.New("wpmigrate config: wordpress paging, retry and concurrency values must not be negative")
	ErrValidationLimitInvalid = errors.New("wpmigrate config: validation length limits must be positive and ordered")
	ErrOutputDirRequired      = errors.New("wpmigrate config: export output directory is required")
	ErrManifestDriverUnknown  = errors.New("wpmigrate config: manifest driver is invalid")
	ErrManifestDSNRequired    = errors.New("wpmigrate config: manifest dsn is required for sqlite")
	ErrLoggingProviderUnknown = errors.New("wpmigrate config: logging provider is invalid")
	ErrLoggingLevelInvalid    = errors.New("wpmigrate config: logging level is invalid")
	ErrLoggingFormatInvalid   = errors.New("wpmigrate config: logging format is invalid")
	ErrPathPrefixInvalid      = errors.New("wpmigrate config: site path prefixes must start with /")
)

// Config aggregates everything a migration run needs. Values are plain so
// they can come from YAML, flags or code.
type Config struct {
	Site       SiteConfig       `yaml:"site"`
	WordPress  WordPressConfig  `yaml:"wordpress"`
	Conversion ConversionConfig `yaml:"conversion"`
	Validation ValidationConfig `yaml:"validation"`
	Export     ExportConfig     `yaml:"export"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// SiteConfig describes the target site. ProjectPath is the public project
// route; ProjectBreadcrumbPath is the section used by breadcrumbs and the
// content validator's canonical fallback.
type SiteConfig struct {
	SiteURL               string `yaml:"site_url"`
	SourceURL             string `yaml:"source_url"`
	ProjectPath           string `yaml:"project_path"`
	ProjectBreadcrumbPath string `yaml:"project_breadcrumb_path"`
	BlogPath              string `yaml:"blog_path"`
	DefaultAuthor         string `yaml:"default_author"`
}

// WordPressConfig configures the REST client.
type WordPressConfig struct {
	APIURL      string            `yaml:"api_url"`
	PerPage     int               `yaml:"per_page"`
	MaxPages    int               `yaml:"max_pages"`
	Timeout     time.Duration     `yaml:"timeout"`
	Retries     int               `yaml:"retries"`
	RetryDelay  time.Duration     `yaml:"retry_delay"`
	Concurrency int               `yaml:"concurrency"`
	Types       []string          `yaml:"types"`
	Endpoints   map[string]string `yaml:"endpoints"`
}

// ConversionConfig toggles HTML to MDX behaviour.
type ConversionConfig struct {
	PreserveEmbeds     bool `yaml:"preserve_embeds"`
	NumberOrderedLists bool `yaml:"number_ordered_lists"`
	AbsolutizeLinks    bool `yaml:"absolutize_links"`
}

// ValidationConfig mirrors the content validator thresholds and runner flags.
type ValidationConfig struct {
	TitleMax          int  `yaml:"title_max"`
	SEOTitleMin       int  `yaml:"seo_title_min"`
	SEOTitleMax       int  `yaml:"seo_title_max"`
	DescriptionMin    int  `yaml:"description_min"`
	DescriptionMax    int  `yaml:"description_max"`
	MinWords          int  `yaml:"min_words"`
	MaxWords          int  `yaml:"max_words"`
	AllowEmptyContent bool `yaml:"allow_empty_content"`
	StopOnFirstError  bool `yaml:"stop_on_first_error"`
	EnforceDefaults   bool `yaml:"enforce_defaults"`
	// SkipInvalid keeps records that fail validation out of the export.
	SkipInvalid       bool `yaml:"skip_invalid"`
}

// ExportConfig controls where and how MDX files are written.
type ExportConfig struct {
	OutputDir   string         `yaml:"output_dir"`
	Incremental bool           `yaml:"incremental"`
	Manifest    ManifestConfig `yaml:"manifest"`
}

// ManifestConfig selects the export ledger backend.
type ManifestConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// DefaultConfig returns defaults matching the production site.
func DefaultConfig() Config {
	return Config{
		Site: SiteConfig{
			SiteURL:               "https://polything.co.uk",
			ProjectPath:           "/work",
			ProjectBreadcrumbPath: "/projects",
			BlogPath:              "/blog",
			DefaultAuthor:         "Polything",
		},
		WordPress: WordPressConfig{
			PerPage:     100,
			MaxPages:    100,
			Timeout:     30 * time.Second,
			Retries:     3,
			RetryDelay:  time.Second,
			Concurrency: 3,
			Types:       []string{"post", "page", "project"},
		},
		Conversion: ConversionConfig{
			PreserveEmbeds: true,
		},
		Validation: ValidationConfig{
			TitleMax:        60,
			SEOTitleMin:     30,
			SEOTitleMax:     60,
			DescriptionMin:  120,
			DescriptionMax:  160,
			MinWords:        100,
			MaxWords:        3000,
			EnforceDefaults: true,
		},
		Export: ExportConfig{
			OutputDir:   "content",
			Incremental: true,
			Manifest: ManifestConfig{
				Driver: "memory",
			},
		},
		Logging: LoggingConfig{
			Provider: "gologger",
			Level:    "info",
			Format:   "console",
		},
	}
}

// Load reads a YAML file over DefaultConfig and validates the result. Unknown
// keys are rejected.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	file, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("wpmigrate config: open %s: %w", path, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("wpmigrate config: decode %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate performs consistency checks.
func (cfg Config) Validate() error {
	if !isHTTPURL(cfg.Site.SiteURL) {
		return fmt.Errorf("%w: %q", ErrSiteURLInvalid, cfg.Site.SiteURL)
	}
	if source := strings.TrimSpace(cfg.Site.SourceURL); source != "" && !isHTTPURL(source) {
		return fmt.Errorf("%w: %q", ErrSourceURLInvalid, source)
	}
	for _, prefix := range []string{cfg.Site.ProjectPath, cfg.Site.ProjectBreadcrumbPath, cfg.Site.BlogPath} {
		if prefix != "" && !strings.HasPrefix(prefix, "/") {
			return fmt.Errorf("%w: %q", ErrPathPrefixInvalid, prefix)
		}
	}

	wp := cfg.WordPress
	if api := strings.TrimSpace(wp.APIURL); api != "" && !isHTTPURL(api) {
		return fmt.Errorf("%w: %q", ErrAPIURLInvalid, api)
	}
	if wp.PerPage < 0 || wp.MaxPages < 0 || wp.Retries < 0 || wp.RetryDelay < 0 || wp.Concurrency < 0 || wp.Timeout < 0 {
		return ErrWordPressLimitsInvalid
	}
	if _, err := cfg.ContentTypes(); err != nil {
		return err
	}
	for key := range wp.Endpoints {
		if _, ok := content.ParseType(key); !ok {
			return fmt.Errorf("%w: endpoint %q", ErrContentTypeUnknown, key)
		}
	}

	v := cfg.Validation
	for _, limit := range []int{v.TitleMax, v.SEOTitleMin, v.SEOTitleMax, v.DescriptionMin, v.DescriptionMax, v.MinWords, v.MaxWords} {
		if limit < 0 {
			return ErrValidationLimitInvalid
		}
	}
	if misordered(v.SEOTitleMin, v.SEOTitleMax) || misordered(v.DescriptionMin, v.DescriptionMax) || misordered(v.MinWords, v.MaxWords) {
		return ErrValidationLimitInvalid
	}

	if strings.TrimSpace(cfg.Export.OutputDir) == "" {
		return ErrOutputDirRequired
	}
	switch normalize(cfg.Export.Manifest.Driver) {
	case "", "memory":
	case "sqlite", "sqlite3":
		if strings.TrimSpace(cfg.Export.Manifest.DSN) == "" {
			return ErrManifestDSNRequired
		}
	default:
		return fmt.Errorf("%w: %s", ErrManifestDriverUnknown, cfg.Export.Manifest.Driver)
	}

	provider := normalize(cfg.Logging.Provider)
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if provider == "gologger" {
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

// ContentTypes parses WordPress.Types, defaulting to every content type.
func (cfg Config) ContentTypes() ([]content.Type, error) {
	if len(cfg.WordPress.Types) == 0 {
		return []content.Type{content.TypePost, content.TypePage, content.TypeProject}, nil
	}
	out := make([]content.Type, 0, len(cfg.WordPress.Types))
	seen := map[content.Type]struct{}{}
	for _, raw := range cfg.WordPress.Types {
		t, ok := content.ParseType(raw)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrContentTypeUnknown, raw)
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out, nil
}

// misordered reports a min/max pair where both are set and min exceeds max.
func misordered(minimum, maximum int) bool {
	return minimum > 0 && maximum > 0 && minimum > maximum
}

func isHTTPURL(value string) bool {
	parsed, err := url.Parse(strings.TrimSpace(value))
	if err != nil || parsed.Host == "" {
		return false
	}
	return parsed.Scheme == "http" || parsed.Scheme == "https"
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "gologger", "none", "":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
