package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"study-aid-service/internal/store"
)

func TestSlotRoundTrip(t *testing.T) {
	ctx := context.Background()
	slot := NewSlot()

	if _, err := slot.Get(ctx, "k"); !errors.Is(err, store.ErrSlotEmpty) {
		t.Fatalf("expected empty slot, got %v", err)
	}
	value := []byte("v1")
	if err := slot.Set(ctx, "k", value); err != nil {
		t.Fatalf("set: %v", err)
	}
	value[0] = 'x'
	got, err := slot.Get(ctx, "k")
	if err != nil || string(got) != "v1" {
		t.Fatalf("expected stored copy v1, got %q (%v)", got, err)
	}
	if err := slot.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := slot.Get(ctx, "k"); !errors.Is(err, store.ErrSlotEmpty) {
		t.Fatalf("expected empty after delete, got %v", err)
	}
}

func TestCachedSlotCachesReads(t *testing.T) {
	ctx := context.Background()
	backing := &countingSlot{Slot: NewSlot()}
	_ = backing.Slot.Set(ctx, "k", []byte("v1"))
	cached := NewCachedSlot(backing, time.Minute)

	for i := 0; i < 3; i++ {
		got, err := cached.Get(ctx, "k")
		if err != nil || string(got) != "v1" {
			t.Fatalf("get %d: %q %v", i, got, err)
		}
	}
	if backing.gets != 1 {
		t.Fatalf("expected one backing read, got %d", backing.gets)
	}

	if err := cached.Set(ctx, "k", []byte("v2")); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, _ := cached.Get(ctx, "k")
	if string(got) != "v2" {
		t.Fatalf("expected write-through value v2, got %q", got)
	}
	if backing.gets != 1 {
		t.Fatalf("expected cached read after write, backing gets %d", backing.gets)
	}
}

func TestCachedSlotCachesMisses(t *testing.T) {
	ctx := context.Background()
	backing := &countingSlot{Slot: NewSlot()}
	cached := NewCachedSlot(backing, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := cached.Get(ctx, "missing"); !errors.Is(err, store.ErrSlotEmpty) {
			t.Fatalf("expected empty slot, got %v", err)
		}
	}
	if backing.gets != 1 {
		t.Fatalf("expected miss cached, backing gets %d", backing.gets)
	}

	if err := cached.Delete(ctx, "missing"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, _ = cached.Get(ctx, "missing")
	if backing.gets != 2 {
		t.Fatalf("expected delete to drop cache entry, backing gets %d", backing.gets)
	}
}

func TestCachedSlotUpdateReadsBackingSlot(t *testing.T) {
	ctx := context.Background()
	backing := NewSlot()
	a := NewCachedSlot(backing, time.Minute)
	b := NewCachedSlot(backing, time.Minute)

	_ = a.Set(ctx, "k", []byte("1"))
	_ = b.Set(ctx, "k", []byte("2"))

	var seen string
	err := a.Update(ctx, "k", func(current []byte, found bool) ([]byte, error) {
		seen = string(current)
		return append(current, '3'), nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if seen != "2" {
		t.Fatalf("expected update to see backing value 2, saw %q", seen)
	}
	got, _ := a.Get(ctx, "k")
	if string(got) != "23" {
		t.Fatalf("expected cached value 23, got %q", got)
	}
}

func TestCachedSlotUpdateWithoutAtomicBacking(t *testing.T) {
	ctx := context.Background()
	backing := plainSlot{NewSlot()}
	cached := NewCachedSlot(backing, time.Minute)

	err := cached.Update(ctx, "k", func(current []byte, found bool) ([]byte, error) {
		if found {
			t.Fatalf("expected empty slot")
		}
		return []byte("v"), nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got, _ := backing.Get(ctx, "k"); string(got) != "v" {
		t.Fatalf("expected write to backing, got %q", got)
	}
}

// plainSlot hides Slot.Update.
type plainSlot struct {
	s *Slot
}

func (p plainSlot) Get(ctx context.Context, key string) ([]byte, error) { return p.s.Get(ctx, key) }
func (p plainSlot) Set(ctx context.Context, key string, v []byte) error  { return p.s.Set(ctx, key, v) }
func (p plainSlot) Delete(ctx context.Context, key string) error         { return p.s.Delete(ctx, key) }

type countingSlot struct {
	*Slot
	gets int
}

func (s *countingSlot) Get(ctx context.Context, key string) ([]byte, error) {
	s.gets++
	return s.Slot.Get(ctx, key)
}
