package postgres

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/gallerytab/server/internal/storage"
)

// setupStore starts a throwaway Postgres container, runs the migrations,
// and returns a ready store. Requires Docker; skipped with -short.
func setupStore(t *testing.T) *Store {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(cancel)

	container, err := tcpostgres.Run(
		ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("gallerytab"),
		tcpostgres.WithUsername("gallerytab"),
		tcpostgres.WithPassword("gallerytab_test"),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	dbURL, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, migrateWithRetry(dbURL, migrationsDir(t), 15*time.Second))

	pool, err := pgxpool.New(ctx, dbURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	store, err := New(pool)
	require.NoError(t, err)
	return store
}

func migrationsDir(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(thisFile), "migrations")
}

// migrateWithRetry absorbs the short window where the container accepts
// TCP connections but is not ready for queries yet.
func migrateWithRetry(dbURL, migrationsPath string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	var err error
	for {
		err = MigrateUp(dbURL, migrationsPath)
		if err == nil || time.Now().After(deadline) {
			return err
		}
		time.Sleep(500 * time.Millisecond)
	}
}

func TestStoreRoundTrip(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("v1")))

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	// Upsert replaces the value in place.
	require.NoError(t, s.Set(ctx, "k", []byte("v2")))
	got, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)
}

func TestStoreMissingKey(t *testing.T) {
	s := setupStore(t)

	_, err := s.Get(context.Background(), "absent")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStoreDelete(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("v")))
	require.NoError(t, s.Delete(ctx, "k"))
	_, err := s.Get(ctx, "k")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestNewRequiresPool(t *testing.T) {
	t.Parallel()

	_, err := New(nil)
	require.Error(t, err)
}
