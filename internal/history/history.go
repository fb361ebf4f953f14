// Package history keeps the bounded, deduplicated, most-recent-first log of
// viewed artworks. The in-memory list is authoritative for the owning
// instance; persistence to the key-value store happens asynchronously, so
// other instances observe recordings eventually.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gallerytab/server/internal/artwork"
	"github.com/gallerytab/server/internal/storage"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

const (
	storageKey = "history:viewed"

	// MaxEntries caps the history length; the oldest entry beyond the cap
	// is dropped.
	MaxEntries = 10

	persistTimeout = 5 * time.Second
)

type Store struct {
	kv     storage.Store
	logger zerolog.Logger
	now    func() time.Time

	mu      sync.Mutex
	entries []artwork.HistoryEntry
	pending sync.WaitGroup
}

func New(kv storage.Store, logger zerolog.Logger) *Store {
	return &Store{kv: kv, logger: logger, now: time.Now}
}

// Load reads the persisted list. Absence, corruption, or a storage failure
// initialize an empty history; loading is never fatal.
func (s *Store) Load(ctx context.Context) {
	data, err := s.kv.Get(ctx, storageKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn().Err(err).Msg("history read failed, starting empty")
		}
		return
	}

	var entries []artwork.HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		s.logger.Warn().Err(err).Msg("history corrupted, starting empty")
		return
	}
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}

	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()
}

// Record projects an accepted artwork into a history entry, removes any
// prior entry with the same object URL, prepends, truncates to MaxEntries,
// and persists the list in the background. Records without an image are
// ignored; they are the retry signal, never history.
func (s *Store) Record(ctx context.Context, rec artwork.Record) (artwork.HistoryEntry, bool) {
	if !rec.HasImage() {
		return artwork.HistoryEntry{}, false
	}

	entry := artwork.HistoryEntry{
		ID:              ulid.Make().String(),
		Title:           rec.Title,
		Artist:          rec.ArtistOrCulture,
		Museum:          rec.SourceName,
		ObjectURL:       rec.ObjectURL,
		Timestamp:       s.now().UTC(),
		IsPublicDomain:  rec.IsPublicDomain,
		SourceShortCode: rec.SourceShortCode,
		ObjectID:        rec.ObjectID,
	}

	s.mu.Lock()
	kept := make([]artwork.HistoryEntry, 0, len(s.entries)+1)
	kept = append(kept, entry)
	for _, existing := range s.entries {
		if existing.ObjectURL == entry.ObjectURL {
			continue
		}
		kept = append(kept, existing)
	}
	if len(kept) > MaxEntries {
		kept = kept[:MaxEntries]
	}
	s.entries = kept
	snapshot := make([]artwork.HistoryEntry, len(kept))
	copy(snapshot, kept)
	s.mu.Unlock()

	s.persistAsync(snapshot)
	return entry, true
}

// Snapshot returns a copy of the current list, most recent first.
func (s *Store) Snapshot() []artwork.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]artwork.HistoryEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Clear empties the history and persists the empty list synchronously.
// Idempotent.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.entries = nil
	s.mu.Unlock()

	if err := s.kv.Set(ctx, storageKey, []byte("[]")); err != nil {
		return err
	}
	return nil
}

// Flush waits for in-flight background persists. Used at shutdown and in
// tests.
func (s *Store) Flush() {
	s.pending.Wait()
}

// persistAsync writes the list without blocking the caller. A write failure
// is logged and dropped; history persistence never fails the artwork
// pipeline.
func (s *Store) persistAsync(entries []artwork.HistoryEntry) {
	data, err := json.Marshal(entries)
	if err != nil {
		s.logger.Warn().Err(err).Msg("history marshal failed, dropping write")
		return
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := s.kv.Set(ctx, storageKey, data); err != nil {
			s.logger.Warn().Err(err).Msg("history write failed, dropping")
		}
	}()
}
