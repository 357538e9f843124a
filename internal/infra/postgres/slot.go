package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"study-aid-service/internal/store"
)

// Slot persists slots as rows of the slots table.
type Slot struct {
	pool *pgxpool.Pool
}

func NewSlot(pool *pgxpool.Pool) *Slot {
	return &Slot{pool: pool}
}

func (s *Slot) Get(ctx context.Context, key string) ([]byte, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT value FROM slots WHERE key=$1`, key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrSlotEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("load slot %s: %w", key, err)
	}
	return raw, nil
}

func (s *Slot) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO slots (key, value, updated_at) VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, updated_at=EXCLUDED.updated_at`, key, value)
	if err != nil {
		return fmt.Errorf("save slot %s: %w", key, err)
	}
	return nil
}

func (s *Slot) Delete(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM slots WHERE key=$1`, key); err != nil {
		return fmt.Errorf("delete slot %s: %w", key, err)
	}
	return nil
}

// Update serializes writers on key with a transaction-scoped advisory lock, so
// instances sharing the table merge against the latest row.
func (s *Slot) Update(ctx context.Context, key string, fn store.UpdateFunc) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin slot update %s: %w", key, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		return fmt.Errorf("lock slot %s: %w", key, err)
	}

	var current []byte
	found := true
	err = tx.QueryRow(ctx, `SELECT value FROM slots WHERE key=$1`, key).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		found = false
	} else if err != nil {
		return fmt.Errorf("load slot %s: %w", key, err)
	}

	next, err := fn(current, found)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `INSERT INTO slots (key, value, updated_at) VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, updated_at=EXCLUDED.updated_at`, key, next); err != nil {
		return fmt.Errorf("save slot %s: %w", key, err)
	}
	return tx.Commit(ctx)
}
