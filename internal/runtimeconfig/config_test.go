package runtimeconfig_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-sitecontent/internal/runtimeconfig"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
	if cfg.Query.Retry != 3 || cfg.Query.StaleTime != 5*time.Minute || cfg.Query.GCTime != 10*time.Minute {
		t.Fatalf("unexpected query defaults %+v", cfg.Query)
	}
}

func TestStaleTimeForUsesOverrides(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig().Query
	if got := cfg.StaleTimeFor("navigation-links"); got != 10*time.Minute {
		t.Fatalf("expected navigation override, got %s", got)
	}
	if got := cfg.StaleTimeFor("site-setting"); got != 15*time.Minute {
		t.Fatalf("expected settings override, got %s", got)
	}
	if got := cfg.StaleTimeFor("services"); got != 5*time.Minute {
		t.Fatalf("expected default stale time, got %s", got)
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*runtimeconfig.Config)
		want   error
	}{
		{"missing base url", func(c *runtimeconfig.Config) { c.Content.BaseURL = " " }, runtimeconfig.ErrContentBaseURLRequired},
		{"relative base url", func(c *runtimeconfig.Config) { c.Content.BaseURL = "/cms" }, runtimeconfig.ErrContentBaseURLInvalid},
		{"negative retry", func(c *runtimeconfig.Config) { c.Query.Retry = -1 }, runtimeconfig.ErrQueryRetryInvalid},
		{"inverted delays", func(c *runtimeconfig.Config) { c.Query.RetryMaxDelay = time.Millisecond }, runtimeconfig.ErrQueryRetryDelayInvalid},
		{"dsn without feature", func(c *runtimeconfig.Config) { c.Snapshots.DSN = "file::memory:" }, runtimeconfig.ErrSnapshotsFeatureMissing},
		{"unknown driver", func(c *runtimeconfig.Config) {
			c.Features.Snapshots = true
			c.Snapshots.Driver = "mongo"
			c.Snapshots.DSN = "x"
		}, runtimeconfig.ErrSnapshotDriverUnknown},
		{"missing dsn", func(c *runtimeconfig.Config) { c.Features.Snapshots = true }, runtimeconfig.ErrSnapshotDSNRequired},
		{"missing provider", func(c *runtimeconfig.Config) { c.Logging.Provider = "" }, runtimeconfig.ErrLoggingProviderRequired},
		{"unknown provider", func(c *runtimeconfig.Config) { c.Logging.Provider = "syslog" }, runtimeconfig.ErrLoggingProviderUnknown},
		{"bad level", func(c *runtimeconfig.Config) { c.Logging.Level = "loud" }, runtimeconfig.ErrLoggingLevelInvalid},
		{"bad format", func(c *runtimeconfig.Config) {
			c.Logging.Provider = "gologger"
			c.Logging.Format = "xml"
		}, runtimeconfig.ErrLoggingFormatInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := runtimeconfig.DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestConfigValidateRejectsZeroPageSize(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Site.ServicesPerPage = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected page size validation error")
	}
}

func TestLoadFileOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	doc := []byte(`
content:
  base_url: https://cms.example.com
  token: secret
query:
  stale_time: 2m
  retry: 1
site:
  services_per_page: 9
`)
	if err := os.WriteFile(path, doc, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := runtimeconfig.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Content.BaseURL != "https://cms.example.com" || cfg.Content.Token != "secret" {
		t.Fatalf("unexpected content config %+v", cfg.Content)
	}
	if cfg.Content.APIPrefix != "/api" {
		t.Fatalf("expected default api prefix to survive, got %q", cfg.Content.APIPrefix)
	}
	if cfg.Query.StaleTime != 2*time.Minute || cfg.Query.Retry != 1 {
		t.Fatalf("unexpected query config %+v", cfg.Query)
	}
	if cfg.Site.ServicesPerPage != 9 || cfg.Site.TeamPerSlide != 3 {
		t.Fatalf("unexpected site config %+v", cfg.Site)
	}
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	_, err := runtimeconfig.Decode([]byte("content:\n  base: x\n"), runtimeconfig.DefaultConfig())
	if err == nil {
		t.Fatal("expected unknown key error")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		runtimeconfig.EnvContentURL:   "https://cms.example.org",
		runtimeconfig.EnvContentToken: "tok",
		runtimeconfig.EnvRetry:        "0",
		runtimeconfig.EnvStaleTime:    "30s",
		runtimeconfig.EnvSnapshotDSN:  "file:snap.db",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
	cfg, err := runtimeconfig.ApplyEnv(runtimeconfig.DefaultConfig(), lookup)
	if err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.Content.BaseURL != "https://cms.example.org" || cfg.Content.Token != "tok" {
		t.Fatalf("unexpected content %+v", cfg.Content)
	}
	if cfg.Query.Retry != 0 || cfg.Query.StaleTime != 30*time.Second {
		t.Fatalf("unexpected query %+v", cfg.Query)
	}
	if !cfg.Features.Snapshots || cfg.Snapshots.DSN != "file:snap.db" {
		t.Fatalf("expected snapshots enabled, got %+v", cfg.Snapshots)
	}

	env[runtimeconfig.EnvRetry] = "many"
	if _, err := runtimeconfig.ApplyEnv(runtimeconfig.DefaultConfig(), lookup); err == nil {
		t.Fatal("expected malformed retry to fail")
	}
}
