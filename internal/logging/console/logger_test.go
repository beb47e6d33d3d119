package console_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-sitecontent/internal/logging"
	"github.com/goliatone/go-sitecontent/internal/logging/console"
)

func TestConsoleLogger_WritesSortedFields(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2025, 2, 3, 10, 4, 5, 0, time.UTC)
	minLevel := console.LevelDebug
	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		TimeFunc: func() time.Time { return now },
		MinLevel: &minLevel,
	})

	logger := provider.GetLogger("site.transport").WithFields(map[string]any{"module": "site.transport"})
	ctx := logging.ContextWithFields(context.Background(), map[string]any{"request_id": "req-7"})
	logger = logger.WithContext(ctx)

	logger.Warn("strapi.request.failed",
		"endpoint", "/services",
		"status", 503,
		"error", errors.New("service unavailable"),
		"elapsed", 1500*time.Millisecond,
	)

	got := strings.TrimSpace(buf.String())
	want := `2025-02-03T10:04:05Z WARN strapi.request.failed elapsed=1.5s endpoint=/services error="service unavailable" logger=site.transport module=site.transport request_id=req-7 status=503`
	if got != want {
		t.Fatalf("unexpected entry\nwant: %s\ngot:  %s", want, got)
	}
}

func TestConsoleLogger_FiltersBelowMinLevel(t *testing.T) {
	var buf bytes.Buffer
	minLevel := console.LevelInfo
	provider := console.NewProvider(console.Options{Writer: &buf, MinLevel: &minLevel})

	logger := provider.GetLogger("site.query")
	logger.Debug("query.cache.hit")
	logger.Info("query.fetch.success")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 || !strings.Contains(lines[0], "query.fetch.success") {
		t.Fatalf("expected only info entry, got %q", buf.String())
	}
}

func TestConsoleLogger_DanglingArgumentIsKept(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{Writer: &buf})
	provider.GetLogger("x").Info("msg", "key", "value", "orphan")

	if !strings.Contains(buf.String(), "field_2=orphan") {
		t.Fatalf("expected positional field, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]console.Level{
		"trace":   console.LevelTrace,
		"DEBUG":   console.LevelDebug,
		"warning": console.LevelWarn,
		"error":   console.LevelError,
	}
	for name, want := range cases {
		got, ok := console.ParseLevel(name)
		if !ok || got != want {
			t.Fatalf("ParseLevel(%q) = %v,%v want %v", name, got, ok, want)
		}
	}
	if _, ok := console.ParseLevel("verbose"); ok {
		t.Fatal("expected unknown level to be rejected")
	}
}
