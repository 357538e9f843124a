package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"study-aid-service/internal/domain"
)

// StudySets keeps each owner's collection as a single serialized slot.
type StudySets struct {
	slot Slot
	log  *zap.Logger

	// mu serializes read-modify-write cycles within this process.
	mu sync.Mutex
}

func NewStudySets(slot Slot, log *zap.Logger) *StudySets {
	if log == nil {
		log = zap.NewNop()
	}
	return &StudySets{slot: slot, log: log}
}

// LoadAll returns the owner's collection. A corrupt slot is discarded and an
// empty collection returned; decode errors never reach the caller.
func (s *StudySets) LoadAll(ctx context.Context, owner string) ([]domain.StudySet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx, owner)
}

// SaveAll replaces the owner's collection wholesale.
func (s *StudySets) SaveAll(ctx context.Context, owner string, sets []domain.StudySet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx, owner, sets)
}

// Upsert replaces the set with the same id in place, or appends it. Slots
// that implement Updater merge against the value they hold, so a stale read
// elsewhere cannot drop entries written by another instance.
func (s *StudySets) Upsert(ctx context.Context, owner string, set domain.StudySet) ([]domain.StudySet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := studySetsKey(owner)
	updater, ok := s.slot.(Updater)
	if !ok {
		sets, err := s.loadLocked(ctx, owner)
		if err != nil {
			return nil, err
		}
		sets = mergeSet(sets, set)
		if err := s.saveLocked(ctx, owner, sets); err != nil {
			return nil, err
		}
		return sets, nil
	}

	var merged []domain.StudySet
	err := updater.Update(ctx, key, func(current []byte, found bool) ([]byte, error) {
		sets := []domain.StudySet{}
		if found {
			if err := json.Unmarshal(current, &sets); err != nil {
				s.log.Warn("discarding corrupt study set slot", zap.String("key", key), zap.Error(err))
				sets = []domain.StudySet{}
			}
		}
		merged = mergeSet(sets, set)
		return json.Marshal(merged)
	})
	if err != nil {
		return nil, fmt.Errorf("save study sets: %w", err)
	}
	return merged, nil
}

func mergeSet(sets []domain.StudySet, set domain.StudySet) []domain.StudySet {
	if sets == nil {
		sets = []domain.StudySet{}
	}
	for i := range sets {
		if sets[i].ID == set.ID {
			sets[i] = set
			return sets
		}
	}
	return append(sets, set)
}

func (s *StudySets) loadLocked(ctx context.Context, owner string) ([]domain.StudySet, error) {
	key := studySetsKey(owner)
	raw, err := s.slot.Get(ctx, key)
	if errors.Is(err, ErrSlotEmpty) {
		return []domain.StudySet{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load study sets: %w", err)
	}

	var sets []domain.StudySet
	if err := json.Unmarshal(raw, &sets); err != nil {
		s.log.Warn("discarding corrupt study set slot", zap.String("key", key), zap.Error(err))
		if delErr := s.slot.Delete(ctx, key); delErr != nil {
			s.log.Warn("failed to clear corrupt slot", zap.String("key", key), zap.Error(delErr))
		}
		return []domain.StudySet{}, nil
	}
	if sets == nil {
		sets = []domain.StudySet{}
	}
	return sets, nil
}

func (s *StudySets) saveLocked(ctx context.Context, owner string, sets []domain.StudySet) error {
	if sets == nil {
		sets = []domain.StudySet{}
	}
	data, err := json.Marshal(sets)
	if err != nil {
		return fmt.Errorf("marshal study sets: %w", err)
	}
	if err := s.slot.Set(ctx, studySetsKey(owner), data); err != nil {
		return fmt.Errorf("save study sets: %w", err)
	}
	return nil
}
