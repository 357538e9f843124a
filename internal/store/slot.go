// Package store persists study sets and preferences in named key/value slots.
package store

import (
	"context"
	"errors"
)

// ErrSlotEmpty is returned by Slot.Get when nothing is stored under the key.
var ErrSlotEmpty = errors.New("slot is empty")

// Slot is a durable key/value cell. Every write replaces the previous value.
type Slot interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

const defaultOwner = "default"

func ownerOrDefault(owner string) string {
	if owner == "" {
		return defaultOwner
	}
	return owner
}

func studySetsKey(owner string) string {
	return "studysets:" + ownerOrDefault(owner)
}

func themeKey(owner string) string {
	return "prefs:" + ownerOrDefault(owner) + ":theme"
}

func countKey(owner string) string {
	return "prefs:" + ownerOrDefault(owner) + ":count"
}

// UpdateFunc receives the current value (found is false for an empty slot)
// and returns the value to store.
type UpdateFunc func(current []byte, found bool) ([]byte, error)

// Updater is implemented by slots that can read-modify-write a key without
// losing concurrent writers, including writers in other processes.
type Updater interface {
	Update(ctx context.Context, key string, fn UpdateFunc) error
}
