package snapshot

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-sitecontent/internal/identity"
)

// MemoryRepository keeps snapshots in process memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]*Snapshot
	now   func() time.Time
}

var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		items: make(map[string]*Snapshot),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// List returns every snapshot ordered by key.
func (r *MemoryRepository) List(context.Context) ([]*Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Snapshot, 0, len(r.items))
	for _, snap := range r.items {
		out = append(out, clone(snap))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Get returns the snapshot stored under key.
func (r *MemoryRepository) Get(_ context.Context, key string) (*Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap, ok := r.items[key]
	if !ok {
		return nil, &NotFoundError{Key: key}
	}
	return clone(snap), nil
}

// Upsert creates or replaces the snapshot for snap.Key.
func (r *MemoryRepository) Upsert(_ context.Context, snap *Snapshot) (*Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	stored := clone(snap)
	if existing, ok := r.items[snap.Key]; ok {
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
	} else {
		if stored.ID == uuid.Nil {
			stored.ID = identity.SnapshotUUID(stored.Key)
		}
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	r.items[snap.Key] = stored
	return clone(stored), nil
}

// Delete removes key.
func (r *MemoryRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[key]; !ok {
		return &NotFoundError{Key: key}
	}
	delete(r.items, key)
	return nil
}
