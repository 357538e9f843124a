package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"study-aid-service/internal/store"
)

// Slot stores each key as a plain Redis string under a namespace prefix.
// A zero ttl keeps values forever.
type Slot struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewSlot(client *redis.Client, prefix string, ttl time.Duration) *Slot {
	if prefix == "" {
		prefix = "studyaid:"
	}
	return &Slot{client: client, prefix: prefix, ttl: ttl}
}

func (s *Slot) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, store.ErrSlotEmpty
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *Slot) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, s.key(key), value, s.ttl).Err()
}

func (s *Slot) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}

func (s *Slot) key(key string) string {
	return s.prefix + key
}

const maxUpdateAttempts = 8

// Update is an optimistic WATCH/MULTI read-modify-write, retried when another
// client changes the key in between.
func (s *Slot) Update(ctx context.Context, key string, fn store.UpdateFunc) error {
	k := s.key(key)
	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, k).Bytes()
		found := true
		if errors.Is(err, redis.Nil) {
			found = false
		} else if err != nil {
			return err
		}
		next, err := fn(current, found)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, next, s.ttl)
			return nil
		})
		return err
	}

	for i := 0; i < maxUpdateAttempts; i++ {
		err := s.client.Watch(ctx, txf, k)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("update %s: too much contention", key)
}
