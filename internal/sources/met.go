package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"

	"github.com/gallerytab/server/internal/artwork"
)

// Met serves artworks from the Metropolitan Museum of Art collection API.
// The API is addressed by numeric object id directly, with no listing
// step, so a random draw frequently lands on a gap; the API answers those
// with a not-found message that normalizes to an empty image path.
type Met struct {
	identity
	maxObjectID int
}

func NewMet() *Met {
	return &Met{
		identity: identity{
			name:      "Metropolitan Museum of Art",
			shortCode: CodeMet,
			docsURL:   "https://metmuseum.github.io/",
			endpoint:  "https://collectionapi.metmuseum.org/public/collection/v1/objects/",
		},
		maxObjectID: 471581,
	}
}

func (m *Met) RandomRequest(rng *rand.Rand) Request {
	return Request{URL: fmt.Sprintf("%s%d", m.endpoint, rng.IntN(m.maxObjectID))}
}

type metObject struct {
	ObjectID          json.RawMessage `json:"objectID"`
	PrimaryImageSmall string          `json:"primaryImageSmall"`
	Title             string          `json:"title"`
	ArtistDisplayName string          `json:"artistDisplayName"`
	ArtistNationality string          `json:"artistNationality"`
	ObjectDate        string          `json:"objectDate"`
	ObjectURL         string          `json:"objectURL"`
	Culture           string          `json:"culture"`
	IsPublicDomain    bool            `json:"isPublicDomain"`
}

func (m *Met) Normalize(_ context.Context, payload []byte, _ Doer) (artwork.Record, error) {
	var obj metObject
	if err := json.Unmarshal(payload, &obj); err != nil {
		return artwork.Record{}, fmt.Errorf("met: decode object: %w", ErrMalformed)
	}

	rec := m.record()
	rec.ImagePath = obj.PrimaryImageSmall
	rec.Title = obj.Title
	rec.ArtistOrCulture = firstNonEmpty(obj.ArtistDisplayName, obj.Culture)
	rec.Nationality = obj.ArtistNationality
	rec.ObjectDate = obj.ObjectDate
	rec.ObjectURL = obj.ObjectURL
	rec.IsPublicDomain = obj.IsPublicDomain
	if id := stringValue(obj.ObjectID); id != "" && id != "0" {
		rec.ObjectID = id
	}
	return rec, nil
}
