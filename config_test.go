package wpmigrate_test

import (
	"errors"
	"testing"

	wpmigrate "github.com/polything/go-wpmigrate"
)

func TestConfigValidateRejectsRelativeSiteURL(t *testing.T) {
	cfg := wpmigrate.DefaultConfig()
	cfg.Site.SiteURL = "/blog"

	if err := cfg.Validate(); !errors.Is(err, wpmigrate.ErrSiteURLInvalid) {
		t.Fatalf("expected ErrSiteURLInvalid, got %v", err)
	}
}

func TestConfigValidateSQLiteManifestRequiresDSN(t *testing.T) {
	cfg := wpmigrate.DefaultConfig()
	cfg.Export.Manifest.Driver = "sqlite3"

	if err := cfg.Validate(); !errors.Is(err, wpmigrate.ErrManifestDSNRequired) {
		t.Fatalf("expected ErrManifestDSNRequired, got %v", err)
	}

	cfg.Export.Manifest.DSN = "file:manifest.db"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestConfigValidateLoggingFormat(t *testing.T) {
	cfg := wpmigrate.DefaultConfig()
	cfg.Logging.Format = "xml"

	if err := cfg.Validate(); !errors.Is(err, wpmigrate.ErrLoggingFormatInvalid) {
		t.Fatalf("expected ErrLoggingFormatInvalid, got %v", err)
	}
}
