// Package snapshot stores the last successfully fetched payload of every
// cached resource so a restarted process can serve content before the CMS
// answers.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ErrNotFound is returned for unknown keys.
var ErrNotFound = errors.New("snapshot: not found")

// Snapshot is one persisted cache slot. Payload holds the JSON encoded view
// models.
type Snapshot struct {
	bun.BaseModel `bun:"table:site_snapshots,alias:ss"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Key       string    `bun:"key,notnull,unique" json:"key"`
	Resource  string    `bun:"resource,notnull" json:"resource"`
	Payload   string    `bun:"payload,notnull,type:text" json:"payload"`
	FetchedAt time.Time `bun:"fetched_at,notnull" json:"fetched_at"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Repository persists snapshots keyed by query key.
type Repository interface {
	List(ctx context.Context) ([]*Snapshot, error)
	Get(ctx context.Context, key string) (*Snapshot, error)
	Upsert(ctx context.Context, snap *Snapshot) (*Snapshot, error)
	Delete(ctx context.Context, key string) error
}

// NotFoundError reports a missing key and matches ErrNotFound.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("snapshot %q not found", e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func clone(snap *Snapshot) *Snapshot {
	if snap == nil {
		return nil
	}
	copied := *snap
	return &copied
}
