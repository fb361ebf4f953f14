package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gallerytab/server/internal/api/problem"
	"github.com/gallerytab/server/internal/settings"
	"github.com/gallerytab/server/internal/sources"
)

// Catalog lists the built-in sources in presentation order.
type Catalog interface {
	All() []sources.Source
}

// SourcesHandler serves the source list and the enable/disable flags.
type SourcesHandler struct {
	catalog  Catalog
	settings Settings
	env      string
}

func NewSourcesHandler(catalog Catalog, s Settings, env string) *SourcesHandler {
	return &SourcesHandler{catalog: catalog, settings: s, env: env}
}

type sourceInfo struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	DocsURL string `json:"docs_url"`
	Enabled bool   `json:"enabled"`
}

type sourcesResponse struct {
	Sources []sourceInfo `json:"sources"`
}

func (h *SourcesHandler) list(flags map[string]bool) []sourceInfo {
	all := h.catalog.All()
	out := make([]sourceInfo, 0, len(all))
	for _, src := range all {
		out = append(out, sourceInfo{
			Code:    src.ShortCode(),
			Name:    src.Name(),
			DocsURL: src.DocsURL(),
			Enabled: flags[src.ShortCode()],
		})
	}
	return out
}

// List returns every source with its current enabled flag.
func (h *SourcesHandler) List(w http.ResponseWriter, r *http.Request) {
	flags := h.settings.Flags(r.Context())
	writeJSON(w, r, http.StatusOK, sourcesResponse{Sources: h.list(flags)})
}

// Update applies a partial flag update, e.g. {"wmc": true, "met": false}.
// Disabling every source is rejected so the pipeline always has a pool.
func (h *SourcesHandler) Update(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest,
			"https://gallerytab.dev/problems/invalid-request",
			"Failed to read request body", err, h.env)
		return
	}

	var changes map[string]bool
	if err := json.Unmarshal(body, &changes); err != nil {
		problem.Write(w, r, http.StatusBadRequest,
			"https://gallerytab.dev/problems/invalid-request",
			"Request body must be a JSON object of source codes to booleans", err, h.env)
		return
	}
	if len(changes) == 0 {
		problem.Write(w, r, http.StatusBadRequest,
			"https://gallerytab.dev/problems/invalid-request",
			"No source flags provided", nil, h.env,
			problem.WithDetail("supply at least one source code with a boolean value"))
		return
	}

	flags, err := h.settings.Update(r.Context(), changes)
	if err != nil {
		switch {
		case errors.Is(err, settings.ErrUnknownSource):
			problem.Write(w, r, http.StatusBadRequest,
				"https://gallerytab.dev/problems/unknown-source",
				"Unknown source code", err, h.env)
		case errors.Is(err, settings.ErrLastSource):
			problem.Write(w, r, http.StatusConflict,
				"https://gallerytab.dev/problems/last-source",
				"At least one source must stay enabled", err, h.env)
		default:
			problem.Write(w, r, http.StatusInternalServerError,
				"https://gallerytab.dev/problems/internal-error",
				"Failed to update sources", err, h.env)
		}
		return
	}

	writeJSON(w, r, http.StatusOK, sourcesResponse{Sources: h.list(flags)})
}
