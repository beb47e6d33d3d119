package runtimeconfig

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables recognised by ApplyEnv.
const (
	EnvContentURL   = "STRAPI_URL"
	EnvContentToken = "STRAPI_API_TOKEN"
	EnvServerAddr   = "SITECONTENT_ADDR"
	EnvLogLevel     = "SITECONTENT_LOG_LEVEL"
	EnvRetry        = "SITECONTENT_QUERY_RETRY"
	EnvStaleTime    = "SITECONTENT_QUERY_STALE_TIME"
	EnvSnapshotDSN  = "SITECONTENT_SNAPSHOT_DSN"
)

// LoadFile decodes a YAML document on top of DefaultConfig. An empty path
// returns the defaults.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("site config: read %s: %w", path, err)
	}
	return Decode(raw, cfg)
}

// Decode overlays YAML onto base. Unknown keys are rejected.
func Decode(raw []byte, base Config) (Config, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)
	if err := decoder.Decode(&base); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("site config: decode: %w", err)
	}
	return base, nil
}

// ApplyEnv overlays environment variables read through lookup, usually
// os.LookupEnv. Malformed numeric values are reported rather than ignored.
func ApplyEnv(cfg Config, lookup func(string) (string, bool)) (Config, error) {
	if lookup == nil {
		return cfg, nil
	}
	get := func(key string) (string, bool) {
		value, ok := lookup(key)
		value = strings.TrimSpace(value)
		return value, ok && value != ""
	}

	if v, ok := get(EnvContentURL); ok {
		cfg.Content.BaseURL = v
	}
	if v, ok := get(EnvContentToken); ok {
		cfg.Content.Token = v
	}
	if v, ok := get(EnvServerAddr); ok {
		cfg.Server.Addr = v
	}
	if v, ok := get(EnvLogLevel); ok {
		cfg.Logging.Level = v
	}
	if v, ok := get(EnvRetry); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("site config: %s: %w", EnvRetry, err)
		}
		cfg.Query.Retry = n
	}
	if v, ok := get(EnvStaleTime); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("site config: %s: %w", EnvStaleTime, err)
		}
		cfg.Query.StaleTime = d
	}
	if v, ok := get(EnvSnapshotDSN); ok {
		cfg.Snapshots.DSN = v
		cfg.Features.Snapshots = true
	}
	return cfg, nil
}
