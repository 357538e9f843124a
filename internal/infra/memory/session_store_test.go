package memory

import (
	"testing"
	"time"

	"study-aid-service/internal/app"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()

	store.Add(app.NewSession("s1", "alice", time.Now))
	if _, ok := store.Get("s1"); !ok {
		t.Fatalf("expected session present")
	}

	store.DeleteIfIdle("s1")
	if _, ok := store.Get("s1"); ok {
		t.Fatalf("expected idle session removed")
	}
}

func TestSessionStoreEvictsExpired(t *testing.T) {
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewSessionStore()
	store.Add(app.NewSession("old", "alice", func() time.Time { return start }))
	store.Add(app.NewSession("fresh", "bob", func() time.Time { return start.Add(20 * time.Minute) }))

	if n := store.EvictExpired(start.Add(25*time.Minute), 10*time.Minute); n != 1 {
		t.Fatalf("expected one eviction, got %d", n)
	}
	if _, ok := store.Get("old"); ok {
		t.Fatalf("expected old session evicted")
	}
	if _, ok := store.Get("fresh"); !ok {
		t.Fatalf("expected fresh session kept")
	}
}
