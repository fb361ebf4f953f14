package handlers

import (
	"errors"
	"net/http"

	"github.com/gallerytab/server/internal/api/problem"
	"github.com/gallerytab/server/internal/artwork"
	"github.com/gallerytab/server/internal/fetch"
)

// ArtworkHandler serves the random-artwork endpoint.
type ArtworkHandler struct {
	fetcher Fetcher
	history History
	env     string
}

func NewArtworkHandler(fetcher Fetcher, history History, env string) *ArtworkHandler {
	return &ArtworkHandler{fetcher: fetcher, history: history, env: env}
}

type postcardRef struct {
	Source   string `json:"source"`
	ObjectID string `json:"object_id"`
}

type artworkResponse struct {
	Artwork  artwork.Record         `json:"artwork"`
	Postcard *postcardRef           `json:"postcard,omitempty"`
	History  []artwork.HistoryEntry `json:"history"`
}

// Get fetches a fresh random artwork, records it in the history, and
// returns the record together with the updated history snapshot.
func (h *ArtworkHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.fetcher.Fetch(r.Context())
	if err != nil {
		if errors.Is(err, fetch.ErrNoArtwork) {
			problem.Write(w, r, http.StatusServiceUnavailable,
				"https://gallerytab.dev/problems/no-artwork",
				"No artwork available", err, h.env,
				problem.WithDetail("no source produced a displayable artwork; try again shortly"))
			return
		}
		problem.Write(w, r, http.StatusInternalServerError,
			"https://gallerytab.dev/problems/internal-error",
			"Internal server error", err, h.env)
		return
	}

	h.history.Record(r.Context(), rec)

	resp := artworkResponse{
		Artwork: rec,
		History: h.history.Snapshot(),
	}
	if code, objectID, ok := rec.PostcardRef(); ok {
		resp.Postcard = &postcardRef{Source: code, ObjectID: objectID}
	}
	writeJSON(w, r, http.StatusOK, resp)
}
