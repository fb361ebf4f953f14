// Package handlers implements the JSON API endpoints.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/gallerytab/server/internal/artwork"
	"github.com/gallerytab/server/internal/settings"
)

// Fetcher runs the artwork pipeline once.
type Fetcher interface {
	Fetch(ctx context.Context) (artwork.Record, error)
}

// History is the viewed-artwork log the handlers read and mutate.
type History interface {
	Record(ctx context.Context, rec artwork.Record) (artwork.HistoryEntry, bool)
	Snapshot() []artwork.HistoryEntry
	Clear(ctx context.Context) error
}

// Settings exposes the per-source enable flags.
type Settings interface {
	Flags(ctx context.Context) settings.Flags
	Update(ctx context.Context, changes map[string]bool) (settings.Flags, error)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("encode response")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}
