// Package sources holds the adapters that translate each collection API's
// payload into the canonical artwork record, plus the registry of known
// sources.
//
// Adapters are immutable, constructed once at startup, and shared read-only.
// Each one knows how to aim a request at a pseudo-random member of its
// collection and how to normalize that collection's response shape.
// Collection-size bounds are hardcoded best-known approximations; an
// out-of-range draw degrades to an empty result, never a failure.
package sources

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"
	"strings"

	"github.com/gallerytab/server/internal/artwork"
)

// ErrMalformed reports a payload whose top-level shape is not the expected
// container. Missing fields inside a well-formed container never trigger
// it; those degrade to empty canonical fields.
var ErrMalformed = errors.New("malformed source payload")

// Request describes one HTTP GET against a collection API. The URL fully
// determines the request; no bodies, no auth headers.
type Request struct {
	URL string
}

// Doer performs HTTP requests for adapters that need a dependent second
// fetch during normalization (currently only Whitney's artist lookup).
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Source is one external collection.
type Source interface {
	Name() string
	ShortCode() string
	DocsURL() string

	// RandomRequest builds a request aimed at a uniformly random member of
	// the collection.
	RandomRequest(rng *rand.Rand) Request

	// Normalize maps the collection's raw response onto the canonical
	// record. A record with an empty ImagePath means "no usable result";
	// ErrMalformed means the payload was not the expected container.
	Normalize(ctx context.Context, payload []byte, client Doer) (artwork.Record, error)
}

// identity carries the static fields every adapter shares.
type identity struct {
	name      string
	shortCode string
	docsURL   string
	endpoint  string
}

func (id identity) Name() string      { return id.name }
func (id identity) ShortCode() string { return id.shortCode }
func (id identity) DocsURL() string   { return id.docsURL }

// record returns a canonical record pre-filled with the adapter's
// attribution fields.
func (id identity) record() artwork.Record {
	return artwork.Record{
		SourceName:      id.name,
		SourceDocsURL:   id.docsURL,
		SourceShortCode: id.shortCode,
	}
}

// stringValue decodes a RawMessage that may be a JSON string, a number, or
// absent, into its string form. Anything else yields "".
func stringValue(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// firstNonEmpty returns the first non-empty string, or "".
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
