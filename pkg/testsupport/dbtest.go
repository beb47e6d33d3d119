package testsupport

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-sitecontent/internal/snapshot"
)

var dbCounter atomic.Int64

// NewSQLiteMemoryDB opens a private in-memory SQLite database with the
// snapshot table migrated. The database is closed when the test ends.
func NewSQLiteMemoryDB(t testing.TB) *bun.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:sitecontent_test_%d?mode=memory&cache=shared", dbCounter.Add(1))
	db, err := snapshot.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := snapshot.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
