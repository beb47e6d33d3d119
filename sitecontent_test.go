package sitecontent_test

import (
	"context"
	"errors"
	"testing"
	"time"

	sitecontent "github.com/goliatone/go-sitecontent"
	"github.com/goliatone/go-sitecontent/internal/di"
	"github.com/goliatone/go-sitecontent/internal/site"
	"github.com/goliatone/go-sitecontent/internal/snapshot"
)

func TestModuleStartHydratesSnapshots(t *testing.T) {
	repo := snapshot.NewMemoryRepository()
	fetchedAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	if _, err := repo.Upsert(context.Background(), &snapshot.Snapshot{
		Key:       site.ServicesAll().String(),
		Resource:  site.ResourceServices,
		Payload:   `[{"id":1,"title":"Family Law","slug":"family-law"}]`,
		FetchedAt: fetchedAt,
	}); err != nil {
		t.Fatalf("seed snapshot: %v", err)
	}

	cfg := sitecontent.DefaultConfig()
	cfg.Features.Logger = false
	cfg.Features.KeepAlive = false

	module, err := sitecontent.New(cfg, di.WithSnapshotRepository(repo))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := module.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := module.Start(context.Background()); !errors.Is(err, site.ErrAlreadyStarted) {
		t.Fatalf("expected ErrAlreadyStarted, got %v", err)
	}

	state, ok := module.Site().State(site.ResourceServices)
	if !ok || !state.HasData() || !state.LastFetchedAt.Equal(fetchedAt) {
		t.Fatalf("expected hydrated services, got %+v", state)
	}
	statuses := module.Statuses()
	if len(statuses) == 0 || statuses[0].Resource != site.ResourceServices || statuses[0].Status != "success" {
		t.Fatalf("unexpected statuses %+v", statuses)
	}

	if err := module.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := sitecontent.DefaultConfig()
	cfg.Query.Retry = -1
	if _, err := sitecontent.New(cfg); !errors.Is(err, sitecontent.ErrQueryRetryInvalid) {
		t.Fatalf("expected ErrQueryRetryInvalid, got %v", err)
	}
}
