package snapshot_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"

	"github.com/goliatone/go-sitecontent/internal/snapshot"
	"github.com/goliatone/go-sitecontent/pkg/testsupport"
)

func TestRepositories(t *testing.T) {
	cases := map[string]func(t *testing.T) snapshot.Repository{
		"memory": func(*testing.T) snapshot.Repository { return snapshot.NewMemoryRepository() },
		"bun":    func(t *testing.T) snapshot.Repository { return snapshot.NewBunRepository(testsupport.NewSQLiteMemoryDB(t)) },
		"bun+cache": func(t *testing.T) snapshot.Repository {
			cfg := repocache.DefaultConfig()
			cfg.TTL = time.Minute
			svc, err := repocache.NewCacheService(cfg)
			if err != nil {
				t.Fatalf("new cache service: %v", err)
			}
			return snapshot.NewBunRepositoryWithCache(testsupport.NewSQLiteMemoryDB(t), svc, repocache.NewDefaultKeySerializer())
		},
	}
	for name, build := range cases {
		t.Run(name, func(t *testing.T) {
			exerciseRepository(t, build(t))
		})
	}
}

func exerciseRepository(t *testing.T, repo snapshot.Repository) {
	ctx := context.Background()
	fetched := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	if _, err := repo.Get(ctx, `["services","all"]`); !errors.Is(err, snapshot.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	created, err := repo.Upsert(ctx, &snapshot.Snapshot{
		Key:       `["services","all"]`,
		Resource:  "services",
		Payload:   `[{"id":1,"title":"Corporate Law"}]`,
		FetchedAt: fetched,
	})
	if err != nil {
		t.Fatalf("upsert create: %v", err)
	}
	if created.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Fatalf("expected generated id")
	}

	updated, err := repo.Upsert(ctx, &snapshot.Snapshot{
		Key:       `["services","all"]`,
		Resource:  "services",
		Payload:   `[{"id":1,"title":"Corporate Law"},{"id":2,"title":"Tax"}]`,
		FetchedAt: fetched.Add(time.Minute),
	})
	if err != nil {
		t.Fatalf("upsert update: %v", err)
	}
	if updated.ID != created.ID {
		t.Fatalf("expected update to keep id %s, got %s", created.ID, updated.ID)
	}

	got, err := repo.Get(ctx, `["services","all"]`)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !strings.Contains(got.Payload, "Tax") || !got.FetchedAt.Equal(fetched.Add(time.Minute)) {
		t.Fatalf("expected updated snapshot, got %+v", got)
	}

	if _, err := repo.Upsert(ctx, &snapshot.Snapshot{Key: `["siteSettings"]`, Resource: "siteSettings", Payload: `{}`, FetchedAt: fetched}); err != nil {
		t.Fatalf("upsert settings: %v", err)
	}
	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(all))
	}

	if err := repo.Delete(ctx, `["siteSettings"]`); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, `["siteSettings"]`); !errors.Is(err, snapshot.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestOpenRejectsUnknownDrivers(t *testing.T) {
	if _, err := snapshot.Open("mysql", "user@/db"); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
	if _, err := snapshot.Open("sqlite3", " "); err == nil {
		t.Fatalf("expected missing dsn error")
	}
}
