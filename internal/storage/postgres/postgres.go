// Package postgres implements the key-value Store over a pgx connection
// pool. Values live in a single kv_entries table; the database serializes
// writers from concurrently running instances.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/gallerytab/server/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("postgres store: pool is nil")
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	const query = `SELECT value FROM kv_entries WHERE key = $1`
	var value []byte
	if err := s.pool.QueryRow(ctx, query, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	const query = `
INSERT INTO kv_entries (key, value, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	if _, err := s.pool.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	const query = `DELETE FROM kv_entries WHERE key = $1`
	if _, err := s.pool.Exec(ctx, query, key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}
