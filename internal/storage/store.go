// Package storage defines the narrow key-value contract the history and
// settings services persist through. Backends serialize concurrent access;
// last-write-wins is the accepted consistency model.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has never been written or has
// been deleted.
var ErrNotFound = errors.New("storage: key not found")

// Store is a minimal key-value store holding JSON-serialized values.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
