package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"

	"github.com/gallerytab/server/internal/artwork"
	"github.com/gallerytab/server/internal/sanitize"
)

// ArtInstitute serves artworks from the Art Institute of Chicago API. A
// random page of size one stands in for a random object. The image URL is
// composed from the IIIF base URL the response itself carries; an artwork
// without an image id normalizes to an empty image path.
type ArtInstitute struct {
	identity
	maxPage int
}

func NewArtInstitute() *ArtInstitute {
	return &ArtInstitute{
		identity: identity{
			name:      "Art Institute of Chicago",
			shortCode: CodeArtInstitute,
			docsURL:   "https://api.artic.edu/docs/",
			endpoint:  "https://api.artic.edu/api/v1/artworks",
		},
		maxPage: 10487,
	}
}

func (a *ArtInstitute) RandomRequest(rng *rand.Rand) Request {
	return Request{URL: fmt.Sprintf("%s?limit=1&page=%d", a.endpoint, rng.IntN(a.maxPage))}
}

type artInstituteEnvelope struct {
	Data []struct {
		ID            json.RawMessage `json:"id"`
		Title         string          `json:"title"`
		ArtistDisplay string          `json:"artist_display"`
		PlaceOfOrigin string          `json:"place_of_origin"`
		DateDisplay   string          `json:"date_display"`
		Description   string          `json:"description"`
		ImageID       string          `json:"image_id"`
		PublicDomain  bool            `json:"is_public_domain"`
	} `json:"data"`
	Config struct {
		IIIFURL string `json:"iiif_url"`
	} `json:"config"`
}

func (a *ArtInstitute) Normalize(_ context.Context, payload []byte, _ Doer) (artwork.Record, error) {
	var env artInstituteEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return artwork.Record{}, fmt.Errorf("artinstitute: decode envelope: %w", ErrMalformed)
	}

	rec := a.record()
	if len(env.Data) == 0 {
		return rec, nil
	}

	item := env.Data[0]
	if item.ImageID != "" && env.Config.IIIFURL != "" {
		rec.ImagePath = fmt.Sprintf("%s/%s/full/843,/0/default.jpg", env.Config.IIIFURL, item.ImageID)
	}
	rec.Title = item.Title
	rec.ArtistOrCulture = item.ArtistDisplay
	rec.Nationality = item.PlaceOfOrigin
	rec.ObjectDate = item.DateDisplay
	rec.Description = sanitize.HTML(item.Description)
	rec.IsPublicDomain = item.PublicDomain
	if id := stringValue(item.ID); id != "" {
		rec.ObjectURL = "https://www.artic.edu/artworks/" + id
		rec.ObjectID = id
	}
	return rec, nil
}
