package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	cache "github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-sitecontent/internal/identity"
)

const snapshotNamespace = "site_snapshot"

// BunRepository persists snapshots through go-repository-bun with optional
// read caching.
type BunRepository struct {
	repo         repository.Repository[*Snapshot]
	cacheService cache.CacheService
	cachePrefix  string
}

var _ Repository = (*BunRepository)(nil)

// NewRepository builds the generic repository for Snapshot rows.
func NewRepository(db *bun.DB) repository.Repository[*Snapshot] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Snapshot]{
		NewRecord: func() *Snapshot { return &Snapshot{} },
		GetID: func(s *Snapshot) uuid.UUID {
			return s.ID
		},
		SetID: func(s *Snapshot, id uuid.UUID) {
			s.ID = id
		},
		GetIdentifier: func() string {
			return "key"
		},
		GetIdentifierValue: func(s *Snapshot) string {
			return s.Key
		},
	})
}

// NewBunRepository creates a snapshot repository without caching.
func NewBunRepository(db *bun.DB) *BunRepository {
	return NewBunRepositoryWithCache(db, nil, nil)
}

// NewBunRepositoryWithCache wraps reads with go-repository-cache when both
// cacheService and serializer are given.
func NewBunRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunRepository {
	base := NewRepository(db)
	var svc cache.CacheService
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
		svc = cacheService
	}
	prefix := ""
	if svc != nil {
		prefix = snapshotNamespace + cache.KeySeparator
	}
	return &BunRepository{
		repo:         base,
		cacheService: svc,
		cachePrefix:  prefix,
	}
}

// List returns every stored snapshot.
func (r *BunRepository) List(ctx context.Context) ([]*Snapshot, error) {
	records, _, err := r.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot repository error: %w", err)
	}
	return records, nil
}

// Get returns the snapshot stored under key.
func (r *BunRepository) Get(ctx context.Context, key string) (*Snapshot, error) {
	record, err := r.repo.GetByIdentifier(ctx, key)
	if err != nil {
		return nil, mapRepositoryError(err, key)
	}
	return record, nil
}

// Upsert creates the row for snap.Key or updates its payload.
func (r *BunRepository) Upsert(ctx context.Context, snap *Snapshot) (*Snapshot, error) {
	if snap == nil {
		return nil, errors.New("snapshot: nil snapshot")
	}
	now := time.Now().UTC()

	existing, err := r.Get(ctx, snap.Key)
	switch {
	case errors.Is(err, ErrNotFound):
		record := clone(snap)
		if record.ID == uuid.Nil {
			record.ID = identity.SnapshotUUID(record.Key)
		}
		record.CreatedAt = now
		record.UpdatedAt = now
		created, err := r.repo.Create(ctx, record)
		if err != nil {
			return nil, fmt.Errorf("snapshot repository error: %w", err)
		}
		return created, r.InvalidateCache(ctx)
	case err != nil:
		return nil, err
	}

	existing.Resource = snap.Resource
	existing.Payload = snap.Payload
	existing.FetchedAt = snap.FetchedAt
	existing.UpdatedAt = now
	updated, err := r.repo.Update(ctx, existing)
	if err != nil {
		return nil, fmt.Errorf("snapshot repository error: %w", err)
	}
	return updated, r.InvalidateCache(ctx)
}

// Delete removes key.
func (r *BunRepository) Delete(ctx context.Context, key string) error {
	existing, err := r.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := r.repo.Delete(ctx, existing); err != nil {
		return fmt.Errorf("snapshot repository error: %w", err)
	}
	return r.InvalidateCache(ctx)
}

// InvalidateCache drops cached reads after a write.
func (r *BunRepository) InvalidateCache(ctx context.Context) error {
	if r.cacheService == nil || r.cachePrefix == "" {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, r.cachePrefix)
}

func mapRepositoryError(err error, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Key: key}
	}
	return fmt.Errorf("snapshot repository error: %w", err)
}
