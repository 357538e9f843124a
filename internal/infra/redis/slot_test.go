package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"study-aid-service/internal/domain"
	"study-aid-service/internal/store"
)

func TestSlotRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	slot := NewSlot(newClient(mr), "test:", 0)

	if _, err := slot.Get(ctx, "k"); !errors.Is(err, store.ErrSlotEmpty) {
		t.Fatalf("expected empty slot, got %v", err)
	}
	if err := slot.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !mr.Exists("test:k") {
		t.Fatalf("expected prefixed key")
	}
	got, err := slot.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Fatalf("expected v, got %q (%v)", got, err)
	}
	if err := slot.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mr.Exists("test:k") {
		t.Fatalf("expected key removed")
	}
}

func TestStudySetsOverRedisDiscardCorruptSlot(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	sets := store.NewStudySets(NewSlot(newClient(mr), "", time.Hour), nil)

	if err := mr.Set("studyaid:studysets:alice", "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	loaded, err := sets.LoadAll(ctx, "alice")
	if err != nil {
		t.Fatalf("expected corrupt slot to be swallowed, got %v", err)
	}
	if len(loaded) != 0 {
		t.Fatalf("expected empty collection, got %d", len(loaded))
	}
	if mr.Exists("studyaid:studysets:alice") {
		t.Fatalf("expected corrupt key removed")
	}

	if _, err := sets.Upsert(ctx, "alice", domain.StudySet{ID: "set-1", FileName: "a.pdf"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	loaded, _ = sets.LoadAll(ctx, "alice")
	if len(loaded) != 1 || loaded[0].ID != "set-1" {
		t.Fatalf("expected stored set, got %+v", loaded)
	}
	if ttl := mr.TTL("studyaid:studysets:alice"); ttl != time.Hour {
		t.Fatalf("expected ttl applied, got %v", ttl)
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}

func TestConcurrentUpsertsFromTwoInstances(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	instances := []*store.StudySets{
		store.NewStudySets(NewSlot(newClient(mr), "", 0), nil),
		store.NewStudySets(NewSlot(newClient(mr), "", 0), nil),
	}

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for n, sets := range instances {
		wg.Add(1)
		go func(n int, sets *store.StudySets) {
			defer wg.Done()
			for i := 0; i < 5; i++ {
				if _, err := sets.Upsert(ctx, "alice", domain.StudySet{ID: fmt.Sprintf("%d-%d", n, i)}); err != nil {
					errs <- err
				}
			}
		}(n, sets)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("upsert: %v", err)
	}

	got, _ := instances[0].LoadAll(ctx, "alice")
	if len(got) != 10 {
		t.Fatalf("expected 10 study sets, got %d", len(got))
	}
}
