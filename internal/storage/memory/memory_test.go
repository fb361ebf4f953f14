package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gallerytab/server/internal/storage"
)

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("v1")))

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	require.NoError(t, s.Set(ctx, "k", []byte("v2")))
	got, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)
}

func TestStoreMissingKey(t *testing.T) {
	t.Parallel()

	_, err := New().Get(context.Background(), "absent")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStoreDelete(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("v")))
	require.NoError(t, s.Delete(ctx, "k"))
	_, err := s.Get(ctx, "k")
	require.ErrorIs(t, err, storage.ErrNotFound)

	// Deleting an absent key is not an error.
	require.NoError(t, s.Delete(ctx, "k"))
}

func TestStoreCopiesValues(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	value := []byte("original")
	require.NoError(t, s.Set(ctx, "k", value))
	value[0] = 'X'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), got)
}
