package sources

import (
	"context"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhitneyRandomRequest(t *testing.T) {
	t.Parallel()

	w := NewWhitney()
	rng := rand.New(rand.NewPCG(1, 2))
	for range 50 {
		req := w.RandomRequest(rng)
		assert.True(t, strings.HasPrefix(req.URL, "https://whitney.org/api/artworks/"))
	}
}

func TestWhitneyNormalize(t *testing.T) {
	t.Parallel()

	artistServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/42") {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"data":{"attributes":{"display_name":"Edward Hopper"}}}`))
	}))
	t.Cleanup(artistServer.Close)

	w := NewWhitney()
	w.artistEndpoint = artistServer.URL + "/"

	payload := `{
		"data": {
			"attributes": {
				"title": "Early Sunday Morning",
				"display_date": "1930",
				"description": "<p>Storefronts on Seventh Avenue.</p>",
				"tms_id": 1929,
				"images": [{"url": "https://whitney.org/image/1929.jpg"}]
			},
			"relationships": {
				"artists": {"data": [{"id": 42}]}
			}
		}
	}`

	rec, err := w.Normalize(context.Background(), []byte(payload), http.DefaultClient)
	require.NoError(t, err)

	assert.Equal(t, "https://whitney.org/image/1929.jpg", rec.ImagePath)
	assert.Equal(t, "Early Sunday Morning", rec.Title)
	assert.Equal(t, "Edward Hopper", rec.ArtistOrCulture)
	assert.Equal(t, "1930", rec.ObjectDate)
	assert.Equal(t, "https://whitney.org/collection/works/1929", rec.ObjectURL)
	assert.Equal(t, "1929", rec.ObjectID)
	assert.Equal(t, "Whitney Museum of American Art", rec.SourceName)
	assert.Equal(t, CodeWhitney, rec.SourceShortCode)
	assert.False(t, rec.IsPublicDomain)
	assert.Contains(t, rec.Description, "Storefronts")
	assert.NotContains(t, rec.Description, "<p>")
}

func TestWhitneyNormalizeArtistFetchFailure(t *testing.T) {
	t.Parallel()

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(failing.Close)

	w := NewWhitney()
	w.artistEndpoint = failing.URL + "/"

	payload := `{
		"data": {
			"attributes": {
				"title": "Untitled",
				"images": [{"url": "https://whitney.org/image/x.jpg"}]
			},
			"relationships": {"artists": {"data": [{"id": "7"}]}}
		}
	}`

	rec, err := w.Normalize(context.Background(), []byte(payload), http.DefaultClient)
	require.NoError(t, err)
	assert.Equal(t, "", rec.ArtistOrCulture)
	assert.Equal(t, "https://whitney.org/image/x.jpg", rec.ImagePath)
}

func TestWhitneyNormalizeMissingFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
	}{
		{"empty data", `{"data": null}`},
		{"no images", `{"data": {"attributes": {"title": "No Image"}}}`},
		{"empty object", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec, err := NewWhitney().Normalize(context.Background(), []byte(tt.payload), nil)
			require.NoError(t, err)
			assert.False(t, rec.HasImage())
			assert.Equal(t, "Whitney Museum of American Art", rec.SourceName)
		})
	}
}

func TestWhitneyNormalizeMalformed(t *testing.T) {
	t.Parallel()

	_, err := NewWhitney().Normalize(context.Background(), []byte(`not json`), nil)
	require.ErrorIs(t, err, ErrMalformed)
}
