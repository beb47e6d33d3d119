package runtimeconfig

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	ErrContentBaseURLRequired  = errors.New("site config: content base URL is required")
	ErrContentBaseURLInvalid   = errors.New("site config: content base URL must be an absolute http(s) URL")
	ErrQueryRetryInvalid       = errors.New("site config: query retry count must be zero or positive")
	ErrQueryRetryDelayInvalid  = errors.New("site config: retry max delay must not be lower than the base delay")
	ErrSnapshotsFeatureMissing = errors.New("site config: snapshots feature must be enabled to configure a snapshot DSN")
	ErrSnapshotDriverUnknown   = errors.New("site config: snapshot driver is invalid")
	ErrSnapshotDSNRequired     = errors.New("site config: snapshot DSN is required when snapshots are enabled")
	ErrLoggingProviderRequired = errors.New("site config: logging provider is required when logging feature is enabled")
	ErrLoggingProviderUnknown  = errors.New("site config: logging provider is invalid")
	ErrLoggingLevelInvalid     = errors.New("site config: logging level is invalid")
	ErrLoggingFormatInvalid    = errors.New("site config: logging format is invalid")
)

// Config aggregates every runtime knob of the site content module.
type Config struct {
	Content   ContentConfig  `yaml:"content"`
	Query     QueryConfig    `yaml:"query"`
	Site      SiteConfig     `yaml:"site"`
	Snapshots SnapshotConfig `yaml:"snapshots"`
	Server    ServerConfig   `yaml:"server"`
	Logging   LoggingConfig  `yaml:"logging"`
	Features  Features       `yaml:"features"`
}

// ContentConfig points the transport at the Strapi instance.
type ContentConfig struct {
	BaseURL   string        `yaml:"base_url"`
	APIPrefix string        `yaml:"api_prefix"`
	Token     string        `yaml:"token"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

// QueryConfig holds cache defaults. StaleTimes overrides StaleTime per
// resource name (services, navigation-links, ...).
type QueryConfig struct {
	StaleTime      time.Duration            `yaml:"stale_time"`
	GCTime         time.Duration            `yaml:"gc_time"`
	Retry          int                      `yaml:"retry"`
	RetryBaseDelay time.Duration            `yaml:"retry_base_delay"`
	RetryMaxDelay  time.Duration            `yaml:"retry_max_delay"`
	StaleTimes     map[string]time.Duration `yaml:"stale_times"`
}

// SiteConfig captures presentation constants.
type SiteConfig struct {
	PublicBaseURL   string `yaml:"public_base_url"`
	ServicesPerPage int    `yaml:"services_per_page"`
	TeamPerSlide    int    `yaml:"team_per_slide"`
	DefaultAvatar   string `yaml:"default_avatar"`
	WarmCron        string `yaml:"warm_cron"`
}

// SnapshotConfig configures last-known-good persistence.
type SnapshotConfig struct {
	Driver   string        `yaml:"driver"`
	DSN      string        `yaml:"dsn"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// ServerConfig configures the view API listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	BasePath        string        `yaml:"base_path"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LoggingConfig captures provider-specific logging options.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// Features toggles optional subsystems.
type Features struct {
	Logger    bool `yaml:"logger"`
	Snapshots bool `yaml:"snapshots"`
	Metrics   bool `yaml:"metrics"`
	Markdown  bool `yaml:"markdown"`
	KeepAlive bool `yaml:"keep_alive"`
}

// DefaultConfig mirrors the values the public site ships with.
func DefaultConfig() Config {
	return Config{
		Content: ContentConfig{
			BaseURL:   "http://localhost:1337",
			APIPrefix: "/api",
			Timeout:   10 * time.Second,
			UserAgent: "go-sitecontent",
		},
		Query: QueryConfig{
			StaleTime:      5 * time.Minute,
			GCTime:         10 * time.Minute,
			Retry:          3,
			RetryBaseDelay: time.Second,
			RetryMaxDelay:  30 * time.Second,
			StaleTimes: map[string]time.Duration{
				"navigation-links": 10 * time.Minute,
				"site-setting":     15 * time.Minute,
			},
		},
		Site: SiteConfig{
			PublicBaseURL:   "http://localhost:3000",
			ServicesPerPage: 6,
			TeamPerSlide:    3,
			DefaultAvatar:   "/avatar.png",
			WarmCron:        "@every 5m",
		},
		Snapshots: SnapshotConfig{
			Driver:   "sqlite3",
			CacheTTL: time.Minute,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			BasePath:        "/api",
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
		Features: Features{
			Logger:    true,
			Markdown:  true,
			KeepAlive: true,
		},
	}
}

// StaleTimeFor resolves the staleness window for resource.
func (cfg QueryConfig) StaleTimeFor(resource string) time.Duration {
	if d, ok := cfg.StaleTimes[resource]; ok {
		return d
	}
	return cfg.StaleTime
}

// Validate performs field and cross-section checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Content.BaseURL) == "" {
		return ErrContentBaseURLRequired
	}
	if !isHTTPURL(cfg.Content.BaseURL) {
		return fmt.Errorf("%w: %s", ErrContentBaseURLInvalid, cfg.Content.BaseURL)
	}
	if cfg.Query.Retry < 0 {
		return ErrQueryRetryInvalid
	}
	if cfg.Query.RetryMaxDelay > 0 && cfg.Query.RetryMaxDelay < cfg.Query.RetryBaseDelay {
		return ErrQueryRetryDelayInvalid
	}
	if err := validation.ValidateStruct(&cfg.Query,
		validation.Field(&cfg.Query.StaleTime, validation.Min(time.Duration(0))),
		validation.Field(&cfg.Query.RetryBaseDelay, validation.Min(time.Duration(0))),
	); err != nil {
		return fmt.Errorf("site config: query: %w", err)
	}
	if err := validation.ValidateStruct(&cfg.Site,
		validation.Field(&cfg.Site.ServicesPerPage, validation.Required, validation.Min(1)),
		validation.Field(&cfg.Site.TeamPerSlide, validation.Required, validation.Min(1)),
	); err != nil {
		return fmt.Errorf("site config: site: %w", err)
	}
	if err := cfg.validateSnapshots(); err != nil {
		return err
	}
	return cfg.validateLogging()
}

func (cfg Config) validateSnapshots() error {
	if !cfg.Features.Snapshots {
		if strings.TrimSpace(cfg.Snapshots.DSN) != "" {
			return ErrSnapshotsFeatureMissing
		}
		return nil
	}
	switch normalize(cfg.Snapshots.Driver) {
	case "sqlite3", "sqlite", "postgres":
	default:
		return fmt.Errorf("%w: %s", ErrSnapshotDriverUnknown, cfg.Snapshots.Driver)
	}
	if strings.TrimSpace(cfg.Snapshots.DSN) == "" {
		return ErrSnapshotDSNRequired
	}
	return nil
}

func (cfg Config) validateLogging() error {
	if !cfg.Features.Logger {
		return nil
	}
	provider := normalize(cfg.Logging.Provider)
	if provider == "" {
		return ErrLoggingProviderRequired
	}
	if provider != "console" && provider != "gologger" {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := normalize(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		switch format := normalize(cfg.Logging.Format); format {
		case "", "json", "console", "pretty":
		default:
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedLevel(level string) bool {
	switch level {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isHTTPURL(raw string) bool {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
