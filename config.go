package wpmigrate

import "github.com/polything/go-wpmigrate/internal/runtimeconfig"

var (
	ErrSiteURLInvalid         = runtimeconfig.ErrSiteURLInvalid
	ErrSourceURLInvalid       = runtimeconfig.ErrSourceURLInvalid
	ErrAPIURLInvalid          = runtimeconfig.ErrAPIURLInvalid
	ErrContentTypeUnknown     = runtimeconfig.ErrContentTypeUnknown
	ErrWordPressLimitsInvalid = runtimeconfig.ErrWordPressLimitsInvalid
	ErrValidationLimitInvalid = runtimeconfig.ErrValidationLimitInvalid
	ErrOutputDirRequired      = runtimeconfig.ErrOutputDirRequired
	ErrManifestDriverUnknown  = runtimeconfig.ErrManifestDriverUnknown
	ErrManifestDSNRequired    = runtimeconfig.ErrManifestDSNRequired
	ErrLoggingProviderUnknown = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid    = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid   = runtimeconfig.ErrLoggingFormatInvalid
	ErrPathPrefixInvalid      = runtimeconfig.ErrPathPrefixInvalid
)

type (
	Config           = runtimeconfig.Config
	SiteConfig       = runtimeconfig.SiteConfig
	WordPressConfig  = runtimeconfig.WordPressConfig
	ConversionConfig = runtimeconfig.ConversionConfig
	ValidationConfig = runtimeconfig.ValidationConfig
	ExportConfig     = runtimeconfig.ExportConfig
	ManifestConfig   = runtimeconfig.ManifestConfig
	LoggingConfig    = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a YAML configuration file over DefaultConfig.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.Load(path)
}
