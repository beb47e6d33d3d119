package di

import (
	"context"
	"sync"

	"github.com/goliatone/go-sitecontent/internal/snapshot"
)

// snapshotRepositoryProxy routes calls to the current snapshot repository so
// the backing store can change after the site service was built.
type snapshotRepositoryProxy struct {
	mu   sync.RWMutex
	repo snapshot.Repository
}

var _ snapshot.Repository = (*snapshotRepositoryProxy)(nil)

func newSnapshotRepositoryProxy(repo snapshot.Repository) *snapshotRepositoryProxy {
	return &snapshotRepositoryProxy{repo: repo}
}

func (p *snapshotRepositoryProxy) swap(repo snapshot.Repository) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if repo != nil {
		p.repo = repo
	}
}

func (p *snapshotRepositoryProxy) current() snapshot.Repository {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.repo
}

func (p *snapshotRepositoryProxy) List(ctx context.Context) ([]*snapshot.Snapshot, error) {
	return p.current().List(ctx)
}

func (p *snapshotRepositoryProxy) Get(ctx context.Context, key string) (*snapshot.Snapshot, error) {
	return p.current().Get(ctx, key)
}

func (p *snapshotRepositoryProxy) Upsert(ctx context.Context, snap *snapshot.Snapshot) (*snapshot.Snapshot, error) {
	return p.current().Upsert(ctx, snap)
}

func (p *snapshotRepositoryProxy) Delete(ctx context.Context, key string) error {
	return p.current().Delete(ctx, key)
}
