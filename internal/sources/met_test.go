package sources

import (
	"context"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetRandomRequest(t *testing.T) {
	t.Parallel()

	m := NewMet()
	rng := rand.New(rand.NewPCG(7, 8))
	req := m.RandomRequest(rng)
	assert.True(t, strings.HasPrefix(req.URL, "https://collectionapi.metmuseum.org/public/collection/v1/objects/"))
}

func TestMetNormalize(t *testing.T) {
	t.Parallel()

	payload := `{
		"objectID": 436535,
		"primaryImageSmall": "https://images.metmuseum.org/CRDImages/ep/web-large/DT1567.jpg",
		"title": "Wheat Field with Cypresses",
		"artistDisplayName": "Vincent van Gogh",
		"artistNationality": "Dutch",
		"objectDate": "1889",
		"objectURL": "https://www.metmuseum.org/art/collection/search/436535",
		"isPublicDomain": true
	}`

	rec, err := NewMet().Normalize(context.Background(), []byte(payload), nil)
	require.NoError(t, err)

	assert.Equal(t, "https://images.metmuseum.org/CRDImages/ep/web-large/DT1567.jpg", rec.ImagePath)
	assert.Equal(t, "Wheat Field with Cypresses", rec.Title)
	assert.Equal(t, "Vincent van Gogh", rec.ArtistOrCulture)
	assert.Equal(t, "Dutch", rec.Nationality)
	assert.Equal(t, "1889", rec.ObjectDate)
	assert.Equal(t, "https://www.metmuseum.org/art/collection/search/436535", rec.ObjectURL)
	assert.Equal(t, "436535", rec.ObjectID)
	assert.True(t, rec.IsPublicDomain)
}

func TestMetNormalizeFallbacks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		payload    string
		wantArtist string
		wantID     string
		wantImage  bool
	}{
		{
			name:       "culture fallback when artist empty",
			payload:    `{"objectID": 1, "primaryImageSmall": "https://x/y.jpg", "culture": "Tang dynasty"}`,
			wantArtist: "Tang dynasty",
			wantID:     "1",
			wantImage:  true,
		},
		{
			name:      "not-found gap object has no image",
			payload:   `{"message": "ObjectID not found"}`,
			wantImage: false,
		},
		{
			name:      "zero object id is dropped",
			payload:   `{"objectID": 0, "primaryImageSmall": "https://x/y.jpg"}`,
			wantID:    "",
			wantImage: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec, err := NewMet().Normalize(context.Background(), []byte(tt.payload), nil)
			require.NoError(t, err)
			assert.Equal(t, tt.wantArtist, rec.ArtistOrCulture)
			assert.Equal(t, tt.wantID, rec.ObjectID)
			assert.Equal(t, tt.wantImage, rec.HasImage())
		})
	}
}

func TestMetNormalizeMalformed(t *testing.T) {
	t.Parallel()

	_, err := NewMet().Normalize(context.Background(), []byte(`"just a string"`), nil)
	require.ErrorIs(t, err, ErrMalformed)
}
