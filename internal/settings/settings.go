// Package settings manages the per-source enable flags. Flags persist
// under a single key in the key-value store; independent instances observe
// each other's changes eventually, last-write-wins.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gallerytab/server/internal/sources"
	"github.com/gallerytab/server/internal/storage"
	"github.com/rs/zerolog"
)

const storageKey = "settings:sources"

var (
	// ErrLastSource rejects a mutation that would leave zero sources
	// enabled. The active set must never be empty.
	ErrLastSource = errors.New("settings: cannot disable the last enabled source")

	ErrUnknownSource = errors.New("settings: unknown source")
)

// Flags maps source short codes to their enabled state.
type Flags map[string]bool

// DefaultFlags mirrors the shipped defaults: every museum API on, the
// noisier Wikimedia search off.
func DefaultFlags() Flags {
	return Flags{
		sources.CodeWhitney:      true,
		sources.CodeArtInstitute: true,
		sources.CodeCleveland:    true,
		sources.CodeMet:          true,
		sources.CodeWikimedia:    false,
	}
}

func (f Flags) anyEnabled() bool {
	for _, enabled := range f {
		if enabled {
			return true
		}
	}
	return false
}

func (f Flags) clone() Flags {
	out := make(Flags, len(f))
	for code, enabled := range f {
		out[code] = enabled
	}
	return out
}

// Service reads and mutates the persisted flags.
type Service struct {
	store  storage.Store
	logger zerolog.Logger
}

func NewService(store storage.Store, logger zerolog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Flags returns the persisted flags merged over the defaults. Absence,
// corruption, or a storage failure all fall back to the defaults; reading
// settings is never fatal.
func (s *Service) Flags(ctx context.Context) Flags {
	flags := DefaultFlags()

	data, err := s.store.Get(ctx, storageKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn().Err(err).Msg("settings read failed, using defaults")
		}
		return flags
	}

	var stored map[string]bool
	if err := json.Unmarshal(data, &stored); err != nil {
		s.logger.Warn().Err(err).Msg("settings corrupted, using defaults")
		return flags
	}

	// Unknown codes in storage are dropped; codes missing from storage
	// keep their defaults.
	for code, enabled := range stored {
		if _, known := flags[code]; known {
			flags[code] = enabled
		}
	}
	return flags
}

// Update applies the given flag changes and persists the result. The whole
// update is rejected with ErrLastSource when it would disable every source,
// and with ErrUnknownSource when any key is not a known short code.
func (s *Service) Update(ctx context.Context, changes map[string]bool) (Flags, error) {
	flags := s.Flags(ctx)

	for code := range changes {
		if _, known := flags[code]; !known {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSource, code)
		}
	}

	next := flags.clone()
	for code, enabled := range changes {
		next[code] = enabled
	}
	if !next.anyEnabled() {
		return nil, ErrLastSource
	}

	data, err := json.Marshal(next)
	if err != nil {
		return nil, fmt.Errorf("marshal settings: %w", err)
	}
	if err := s.store.Set(ctx, storageKey, data); err != nil {
		return nil, fmt.Errorf("persist settings: %w", err)
	}
	return next, nil
}

// SetFlag updates a single source's enabled state.
func (s *Service) SetFlag(ctx context.Context, code string, enabled bool) (Flags, error) {
	return s.Update(ctx, map[string]bool{code: enabled})
}
