package identity

import (
	"testing"

	"github.com/google/uuid"
)

func TestSnapshotUUIDIsStable(t *testing.T) {
	first := SnapshotUUID(`["services","all"]`)
	if first == uuid.Nil {
		t.Fatalf("expected a non-nil id")
	}
	if again := SnapshotUUID(` ["services","all"] `); again != first {
		t.Fatalf("expected surrounding space to be ignored, got %s and %s", first, again)
	}
	if other := SnapshotUUID(`["teamMembers","all"]`); other == first {
		t.Fatalf("expected distinct keys to produce distinct ids")
	}
	if UUID("  ") != uuid.Nil {
		t.Fatalf("expected an empty key to map to uuid.Nil")
	}
}
