package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gallerytab/server/internal/storage"
)

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	store storage.Store
}

func NewHealthHandler(store storage.Store) *HealthHandler {
	return &HealthHandler{store: store}
}

// Healthz reports process liveness.
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz probes the backing store. A missing probe key still means the
// store answered, so it counts as ready.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if _, err := h.store.Get(ctx, "health:probe"); err != nil && !errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"reason": "storage unreachable",
		})
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}
