package sitecontent_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	sitecontent "github.com/goliatone/go-sitecontent"
)

func TestConfigValidateRequiresContentURL(t *testing.T) {
	cfg := sitecontent.DefaultConfig()
	cfg.Content.BaseURL = ""
	if err := cfg.Validate(); !errors.Is(err, sitecontent.ErrContentBaseURLRequired) {
		t.Fatalf("expected ErrContentBaseURLRequired, got %v", err)
	}
}

func TestConfigValidateSnapshotDSNRequiresFeature(t *testing.T) {
	cfg := sitecontent.DefaultConfig()
	cfg.Snapshots.DSN = "file:snapshots.db"

	if err := cfg.Validate(); !errors.Is(err, sitecontent.ErrSnapshotsFeatureMissing) {
		t.Fatalf("expected ErrSnapshotsFeatureMissing, got %v", err)
	}
}

func TestConfigValidateLoggingProviderUnknown(t *testing.T) {
	cfg := sitecontent.DefaultConfig()
	cfg.Logging.Provider = "invalid"

	if err := cfg.Validate(); !errors.Is(err, sitecontent.ErrLoggingProviderUnknown) {
		t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
	}
}

func TestLoadConfigOverlaysFileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	raw := []byte("content:\n  base_url: http://cms.internal\nquery:\n  stale_time: 2m\n")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SITECONTENT_QUERY_RETRY", "1")

	cfg, err := sitecontent.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Content.BaseURL != "http://cms.internal" || cfg.Query.StaleTime != 2*time.Minute {
		t.Fatalf("expected file values, got %+v", cfg.Content)
	}
	if cfg.Query.Retry != 1 {
		t.Fatalf("expected env retry override, got %d", cfg.Query.Retry)
	}
	if cfg.Site.ServicesPerPage != 6 {
		t.Fatalf("expected defaults to survive, got %d", cfg.Site.ServicesPerPage)
	}
}
