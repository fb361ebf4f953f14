package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"

	"github.com/gallerytab/server/internal/artwork"
	"github.com/gallerytab/server/internal/sanitize"
)

// Cleveland serves artworks from the Cleveland Museum of Art open-access
// API using a random skip offset over the has-image subset. Two quirks of
// that API are handled here: the wall description field carries the literal
// string "null" for absent descriptions, and public-domain status is keyed
// off the CC0 share-license code.
type Cleveland struct {
	identity
	maxSkip int
}

func NewCleveland() *Cleveland {
	return &Cleveland{
		identity: identity{
			name:      "Cleveland Museum of Art",
			shortCode: CodeCleveland,
			docsURL:   "https://openaccess-api.clevelandart.org/",
			endpoint:  "https://openaccess-api.clevelandart.org/api/artworks/",
		},
		maxSkip: 29144,
	}
}

func (c *Cleveland) RandomRequest(rng *rand.Rand) Request {
	return Request{URL: fmt.Sprintf("%s?has_image=1&limit=1&skip=%d", c.endpoint, rng.IntN(c.maxSkip))}
}

type clevelandEnvelope struct {
	Data []struct {
		ID           json.RawMessage `json:"id"`
		Title        string          `json:"title"`
		CreationDate string          `json:"creation_date"`
		URL          string          `json:"url"`
		WallDesc     string          `json:"wall_description"`
		ShareLicense string          `json:"share_license_status"`
		Culture      []string        `json:"culture"`
		Creators     []struct {
			Description string `json:"description"`
		} `json:"creators"`
		Images struct {
			Web struct {
				URL string `json:"url"`
			} `json:"web"`
		} `json:"images"`
	} `json:"data"`
}

func (c *Cleveland) Normalize(_ context.Context, payload []byte, _ Doer) (artwork.Record, error) {
	var env clevelandEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return artwork.Record{}, fmt.Errorf("cleveland: decode envelope: %w", ErrMalformed)
	}

	rec := c.record()
	if len(env.Data) == 0 {
		return rec, nil
	}

	item := env.Data[0]
	rec.ImagePath = item.Images.Web.URL
	rec.Title = item.Title
	rec.ObjectDate = item.CreationDate
	rec.ObjectURL = item.URL
	rec.IsPublicDomain = item.ShareLicense == "CC0"
	if id := stringValue(item.ID); id != "" {
		rec.ObjectID = id
	}

	// The API encodes "no wall text" as the literal string "null".
	if item.WallDesc != "" && item.WallDesc != "null" {
		rec.Description = sanitize.HTML(item.WallDesc)
	}

	var creator string
	if len(item.Creators) > 0 {
		creator = item.Creators[0].Description
	}
	var culture string
	if len(item.Culture) > 0 {
		culture = item.Culture[0]
	}
	rec.ArtistOrCulture = firstNonEmpty(creator, culture)
	return rec, nil
}
