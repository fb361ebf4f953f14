package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"

	"github.com/gallerytab/server/internal/artwork"
	"github.com/gallerytab/server/internal/sanitize"
	"github.com/rs/zerolog"
)

// Whitney serves artworks from the Whitney Museum's JSON:API. Its listing
// is paged, and the artist name lives behind a second, dependent artist
// lookup; that lookup is best-effort, so a failed artist fetch yields an
// empty artist name rather than a failed normalization.
type Whitney struct {
	identity
	artistEndpoint string
	maxPage        int
}

func NewWhitney() *Whitney {
	return &Whitney{
		identity: identity{
			name:      "Whitney Museum of American Art",
			shortCode: CodeWhitney,
			docsURL:   "https://whitney.org/about/website/api",
			endpoint:  "https://whitney.org/api/artworks/",
		},
		artistEndpoint: "https://whitney.org/api/artists/",
		maxPage:        909,
	}
}

func (w *Whitney) RandomRequest(rng *rand.Rand) Request {
	return Request{URL: fmt.Sprintf("%s%d", w.endpoint, rng.IntN(w.maxPage))}
}

type whitneyEnvelope struct {
	Data *struct {
		Attributes struct {
			Title       string          `json:"title"`
			DisplayDate string          `json:"display_date"`
			Description string          `json:"description"`
			TMSID       json.RawMessage `json:"tms_id"`
			Images      []struct {
				URL string `json:"url"`
			} `json:"images"`
		} `json:"attributes"`
		Relationships struct {
			Artists struct {
				Data []struct {
					ID json.RawMessage `json:"id"`
				} `json:"data"`
			} `json:"artists"`
		} `json:"relationships"`
	} `json:"data"`
}

func (w *Whitney) Normalize(ctx context.Context, payload []byte, client Doer) (artwork.Record, error) {
	var env whitneyEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return artwork.Record{}, fmt.Errorf("whitney: decode envelope: %w", ErrMalformed)
	}

	rec := w.record()
	rec.IsPublicDomain = false
	if env.Data == nil {
		return rec, nil
	}

	attrs := env.Data.Attributes
	if len(attrs.Images) > 0 {
		rec.ImagePath = attrs.Images[0].URL
	}
	rec.Title = attrs.Title
	rec.ObjectDate = attrs.DisplayDate
	rec.Description = sanitize.HTML(attrs.Description)
	if tmsID := stringValue(attrs.TMSID); tmsID != "" {
		rec.ObjectURL = "https://whitney.org/collection/works/" + tmsID
		rec.ObjectID = tmsID
	}

	if artists := env.Data.Relationships.Artists.Data; len(artists) > 0 {
		if id := stringValue(artists[0].ID); id != "" {
			rec.ArtistOrCulture = w.fetchArtist(ctx, client, id)
		}
	}
	return rec, nil
}

// fetchArtist resolves an artist id to a display name. Any failure is
// logged and reported as an empty name.
func (w *Whitney) fetchArtist(ctx context.Context, client Doer, id string) string {
	if client == nil {
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.artistEndpoint+id, nil)
	if err != nil {
		return ""
	}
	resp, err := client.Do(req)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Str("artist_id", id).Msg("whitney artist fetch failed")
		return ""
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		zerolog.Ctx(ctx).Debug().Int("status", resp.StatusCode).Str("artist_id", id).Msg("whitney artist fetch failed")
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return ""
	}

	var env struct {
		Data *struct {
			Attributes struct {
				DisplayName string `json:"display_name"`
			} `json:"attributes"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil || env.Data == nil {
		return ""
	}
	return env.Data.Attributes.DisplayName
}
