package handlers

import (
	"net/http"

	"github.com/gallerytab/server/internal/api/problem"
	"github.com/gallerytab/server/internal/artwork"
)

// HistoryHandler serves the viewed-artwork log.
type HistoryHandler struct {
	history History
	env     string
}

func NewHistoryHandler(history History, env string) *HistoryHandler {
	return &HistoryHandler{history: history, env: env}
}

type historyResponse struct {
	Entries []artwork.HistoryEntry `json:"entries"`
}

// List returns the history, most recent first.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	entries := h.history.Snapshot()
	if entries == nil {
		entries = []artwork.HistoryEntry{}
	}
	writeJSON(w, r, http.StatusOK, historyResponse{Entries: entries})
}

// Clear empties the history. Clearing an already-empty history succeeds.
func (h *HistoryHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.history.Clear(r.Context()); err != nil {
		problem.Write(w, r, http.StatusInternalServerError,
			"https://gallerytab.dev/problems/internal-error",
			"Failed to clear history", err, h.env)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
