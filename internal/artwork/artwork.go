// Package artwork holds the canonical artwork shapes shared by the source
// adapters, the fetch pipeline, and the viewing history.
package artwork

import "time"

// Record is the canonical artwork produced by every source adapter.
// Adapters never fail on missing optional fields; every field defaults to
// the empty string (or false) when the source payload does not supply it.
// A Record with an empty ImagePath is the "try again" signal: it is never
// displayed and never recorded in history.
type Record struct {
	ImagePath       string `json:"image_path"`
	Title           string `json:"title"`
	ArtistOrCulture string `json:"artist_or_culture"`
	Nationality     string `json:"nationality"`
	ObjectDate      string `json:"object_date"`
	ObjectURL       string `json:"object_url"`
	Description     string `json:"description"`
	SourceName      string `json:"source_name"`
	SourceDocsURL   string `json:"source_docs_url"`
	IsPublicDomain  bool   `json:"is_public_domain"`
	SourceShortCode string `json:"source_short_code,omitempty"`
	ObjectID        string `json:"object_id,omitempty"`
}

// HasImage reports whether the record carries a usable image and may be
// displayed or recorded.
func (r Record) HasImage() bool {
	return r.ImagePath != ""
}

// PostcardRef returns the {source, object} identifier pair used to build an
// external "create postcard" deep link. ok is false when the record does
// not qualify: not public domain, or either identifier is missing.
func (r Record) PostcardRef() (shortCode, objectID string, ok bool) {
	if !r.IsPublicDomain || r.SourceShortCode == "" || r.ObjectID == "" {
		return "", "", false
	}
	return r.SourceShortCode, r.ObjectID, true
}

// HistoryEntry is the reduced projection of a Record kept in the viewing
// history. Entries are unique by ObjectURL.
type HistoryEntry struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Artist          string    `json:"artist"`
	Museum          string    `json:"museum"`
	ObjectURL       string    `json:"object_url"`
	Timestamp       time.Time `json:"timestamp"`
	IsPublicDomain  bool      `json:"is_public_domain"`
	SourceShortCode string    `json:"source_short_code,omitempty"`
	ObjectID        string    `json:"object_id,omitempty"`
}
