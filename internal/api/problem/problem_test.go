package problem

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteIncludesDetailOutsideProduction(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/v1/artwork", nil)

	Write(w, r, http.StatusServiceUnavailable,
		"https://gallerytab.dev/problems/no-artwork", "No artwork available",
		errors.New("pool exhausted"), "development")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	var p ProblemDetails
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, "https://gallerytab.dev/problems/no-artwork", p.Type)
	assert.Equal(t, "No artwork available", p.Title)
	assert.Equal(t, http.StatusServiceUnavailable, p.Status)
	assert.Equal(t, "pool exhausted", p.Detail)
	assert.Equal(t, "/api/v1/artwork", p.Instance)
}

func TestWriteHidesDetailInProduction(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/v1/artwork", nil)

	Write(w, r, http.StatusInternalServerError,
		"https://gallerytab.dev/problems/internal-error", "Internal server error",
		errors.New("pgx: connection refused"), "production")

	var p ProblemDetails
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.NotContains(t, p.Detail, "pgx")
	assert.Equal(t, http.StatusText(http.StatusInternalServerError), p.Detail)
}

func TestWriteWithDetailOption(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPatch, "/api/v1/sources", nil)

	Write(w, r, http.StatusConflict,
		"https://gallerytab.dev/problems/last-source", "At least one source must stay enabled",
		errors.New("internal wording"), "production",
		WithDetail("enable another source first"))

	var p ProblemDetails
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, "enable another source first", p.Detail)
}
