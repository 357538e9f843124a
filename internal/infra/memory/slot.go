package memory

import (
	"context"
	"sync"

	"study-aid-service/internal/store"
)

// Slot is an in-memory store.Slot. Values are copied on the way in and out.
type Slot struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewSlot() *Slot {
	return &Slot{values: make(map[string][]byte)}
}

func (s *Slot) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return nil, store.ErrSlotEmpty
	}
	return append([]byte(nil), v...), nil
}

func (s *Slot) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = append([]byte(nil), value...)
	return nil
}

func (s *Slot) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// Update runs fn under the slot lock.
func (s *Slot) Update(_ context.Context, key string, fn store.UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, found := s.values[key]
	next, err := fn(append([]byte(nil), current...), found)
	if err != nil {
		return err
	}
	s.values[key] = append([]byte(nil), next...)
	return nil
}
