package history

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gallerytab/server/internal/artwork"
	"github.com/gallerytab/server/internal/storage/memory"
)

func testRecord(n int) artwork.Record {
	return artwork.Record{
		ImagePath:       fmt.Sprintf("https://example.org/image/%d.jpg", n),
		Title:           fmt.Sprintf("Artwork %d", n),
		ArtistOrCulture: "Tester",
		ObjectURL:       fmt.Sprintf("https://example.org/objects/%d", n),
		SourceName:      "Test Museum",
		SourceShortCode: "tst",
		ObjectID:        fmt.Sprintf("%d", n),
	}
}

func TestRecordPrependsMostRecentFirst(t *testing.T) {
	t.Parallel()

	s := New(memory.New(), zerolog.Nop())

	for n := 1; n <= 3; n++ {
		entry, ok := s.Record(context.Background(), testRecord(n))
		require.True(t, ok)
		assert.NotEmpty(t, entry.ID)
	}

	snapshot := s.Snapshot()
	require.Len(t, snapshot, 3)
	assert.Equal(t, "Artwork 3", snapshot[0].Title)
	assert.Equal(t, "Artwork 1", snapshot[2].Title)
}

func TestRecordDeduplicatesByObjectURL(t *testing.T) {
	t.Parallel()

	s := New(memory.New(), zerolog.Nop())
	s.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

	s.Record(context.Background(), testRecord(1))
	s.Record(context.Background(), testRecord(2))

	s.now = func() time.Time { return time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC) }
	_, ok := s.Record(context.Background(), testRecord(1))
	require.True(t, ok)

	snapshot := s.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, "Artwork 1", snapshot[0].Title)
	assert.Equal(t, time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC), snapshot[0].Timestamp)
	assert.Equal(t, "Artwork 2", snapshot[1].Title)
}

func TestRecordCapsAtMaxEntries(t *testing.T) {
	t.Parallel()

	s := New(memory.New(), zerolog.Nop())

	for n := 1; n <= MaxEntries+1; n++ {
		s.Record(context.Background(), testRecord(n))
	}

	snapshot := s.Snapshot()
	require.Len(t, snapshot, MaxEntries)
	assert.Equal(t, fmt.Sprintf("Artwork %d", MaxEntries+1), snapshot[0].Title)
	// Artwork 1 fell off the end.
	for _, entry := range snapshot {
		assert.NotEqual(t, "Artwork 1", entry.Title)
	}
}

func TestRecordRejectsImageless(t *testing.T) {
	t.Parallel()

	s := New(memory.New(), zerolog.Nop())

	rec := testRecord(1)
	rec.ImagePath = ""
	_, ok := s.Record(context.Background(), rec)
	assert.False(t, ok)
	assert.Empty(t, s.Snapshot())
}

func TestPersistenceRoundTrip(t *testing.T) {
	t.Parallel()

	kv := memory.New()

	first := New(kv, zerolog.Nop())
	first.Record(context.Background(), testRecord(1))
	first.Record(context.Background(), testRecord(2))
	first.Flush()

	second := New(kv, zerolog.Nop())
	second.Load(context.Background())

	snapshot := second.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, "Artwork 2", snapshot[0].Title)
}

func TestLoadToleratesCorruption(t *testing.T) {
	t.Parallel()

	kv := memory.New()
	require.NoError(t, kv.Set(context.Background(), "history:viewed", []byte("{broken")))

	s := New(kv, zerolog.Nop())
	s.Load(context.Background())
	assert.Empty(t, s.Snapshot())
}

func TestLoadTruncatesOversizedList(t *testing.T) {
	t.Parallel()

	entries := make([]artwork.HistoryEntry, MaxEntries+5)
	for i := range entries {
		entries[i] = artwork.HistoryEntry{ID: fmt.Sprintf("id-%d", i), ObjectURL: fmt.Sprintf("https://example.org/%d", i)}
	}
	data, err := json.Marshal(entries)
	require.NoError(t, err)

	kv := memory.New()
	require.NoError(t, kv.Set(context.Background(), "history:viewed", data))

	s := New(kv, zerolog.Nop())
	s.Load(context.Background())
	assert.Len(t, s.Snapshot(), MaxEntries)
}

func TestClearIsIdempotent(t *testing.T) {
	t.Parallel()

	kv := memory.New()
	s := New(kv, zerolog.Nop())
	s.Record(context.Background(), testRecord(1))
	s.Flush()

	require.NoError(t, s.Clear(context.Background()))
	assert.Empty(t, s.Snapshot())
	require.NoError(t, s.Clear(context.Background()))

	data, err := kv.Get(context.Background(), "history:viewed")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
}
