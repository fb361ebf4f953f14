package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gallerytab/server/internal/artwork"
	"github.com/gallerytab/server/internal/sanitize"
)

// Wikimedia serves images from Wikimedia Commons through a full-text search
// over a rotating set of art-related terms plus a random result offset.
// Commons metadata is a loosely structured bag of HTML fragments, so every
// field goes through an ordered fallback chain and HTML unwrapping, and the
// result set is filtered down to plausible artwork scans: raster files
// whose dimensions are neither icon-sized nor oversized.
type Wikimedia struct {
	identity
	maxOffset int
}

// Dimension band and truncation limits for Commons results.
const (
	wmMinDimension = 400
	wmMaxDimension = 5000
	wmMaxTitleLen  = 200
	wmMaxArtistLen = 200
	wmMaxDescLen   = 300

	// Artworks first published before this year are treated as old enough
	// for the public-domain age heuristic.
	wmPublicDomainYear = 1928
)

// wikimediaSearchTerms is the fixed rotation of art-related queries.
var wikimediaSearchTerms = []string{
	"oil painting",
	"portrait painting",
	"landscape painting",
	"still life",
	"watercolor painting",
	"fresco",
	"impressionist painting",
	"renaissance painting",
	"woodblock print",
	"engraving art",
	"tapestry",
	"sculpture museum",
}

var rasterExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".tif", ".tiff"}

func NewWikimedia() *Wikimedia {
	return &Wikimedia{
		identity: identity{
			name:      "Wikimedia Commons",
			shortCode: CodeWikimedia,
			docsURL:   "https://commons.wikimedia.org/w/api.php",
			endpoint:  "https://commons.wikimedia.org/w/api.php",
		},
		maxOffset: 9000,
	}
}

func (wm *Wikimedia) RandomRequest(rng *rand.Rand) Request {
	term := wikimediaSearchTerms[rng.IntN(len(wikimediaSearchTerms))]
	params := url.Values{
		"action":       {"query"},
		"format":       {"json"},
		"generator":    {"search"},
		"gsrsearch":    {term + " filetype:bitmap"},
		"gsrnamespace": {"6"},
		"gsrlimit":     {"20"},
		"gsroffset":    {strconv.Itoa(rng.IntN(wm.maxOffset))},
		"prop":         {"imageinfo"},
		"iiprop":       {"url|size|extmetadata"},
	}
	return Request{URL: wm.endpoint + "?" + params.Encode()}
}

type wmEnvelope struct {
	Query *struct {
		Pages map[string]wmPage `json:"pages"`
	} `json:"query"`
}

type wmPage struct {
	PageID    json.RawMessage `json:"pageid"`
	Title     string          `json:"title"`
	ImageInfo []wmImageInfo   `json:"imageinfo"`
}

type wmImageInfo struct {
	URL            string `json:"url"`
	DescriptionURL string `json:"descriptionurl"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	ExtMetadata    map[string]struct {
		Value json.RawMessage `json:"value"`
	} `json:"extmetadata"`
}

func (wm *Wikimedia) Normalize(_ context.Context, payload []byte, _ Doer) (artwork.Record, error) {
	var env wmEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return artwork.Record{}, fmt.Errorf("wikimedia: decode envelope: %w", ErrMalformed)
	}

	rec := wm.record()
	if env.Query == nil || len(env.Query.Pages) == 0 {
		return rec, nil
	}

	// Map iteration order is randomized; sort page keys so the same payload
	// always yields the same pick.
	keys := make([]string, 0, len(env.Query.Pages))
	for k := range env.Query.Pages {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		page := env.Query.Pages[k]
		info, ok := acceptableImage(page)
		if !ok {
			continue
		}
		return wm.normalizePage(page, info), nil
	}
	return rec, nil
}

// acceptableImage returns the page's image info when it passes the artwork
// filters: a recognized raster extension and both dimensions inside the
// [wmMinDimension, wmMaxDimension] band.
func acceptableImage(page wmPage) (wmImageInfo, bool) {
	if len(page.ImageInfo) == 0 {
		return wmImageInfo{}, false
	}
	info := page.ImageInfo[0]
	if info.URL == "" || !hasRasterExtension(info.URL) {
		return wmImageInfo{}, false
	}
	if info.Width < wmMinDimension || info.Height < wmMinDimension {
		return wmImageInfo{}, false
	}
	if info.Width > wmMaxDimension || info.Height > wmMaxDimension {
		return wmImageInfo{}, false
	}
	return info, true
}

func (wm *Wikimedia) normalizePage(page wmPage, info wmImageInfo) artwork.Record {
	meta := func(key string) string {
		entry, ok := info.ExtMetadata[key]
		if !ok {
			return ""
		}
		return stringValue(entry.Value)
	}

	rec := wm.record()
	rec.ImagePath = info.URL
	rec.ObjectURL = firstNonEmpty(info.DescriptionURL, commonsPageURL(page.Title))
	if id := stringValue(page.PageID); id != "" {
		rec.ObjectID = id
	}

	// Fallback chains are ordered most-authoritative first.
	// Title: structured object name, then the generic title field, then the
	// file page title itself.
	rec.Title = truncateRunes(firstNonEmpty(
		metaText(meta("ObjectName")),
		metaText(meta("Title")),
		fileTitleToName(page.Title),
	), wmMaxTitleLen)

	// Artist: credited artist, then explicit attribution, then the upload
	// credit line.
	rec.ArtistOrCulture = truncateRunes(firstNonEmpty(
		metaText(meta("Artist")),
		metaText(meta("Attribution")),
		metaText(meta("Credit")),
	), wmMaxArtistLen)

	// Date: original creation date, then file timestamp.
	rec.ObjectDate = firstNonEmpty(
		metaDate(meta("DateTimeOriginal")),
		metaDate(meta("DateTime")),
	)

	rec.Description = truncateRunes(metaText(meta("ImageDescription")), wmMaxDescLen)

	licenseOK := compatibleLicense(meta("LicenseShortName"), meta("UsageTerms"), meta("LicenseUrl"))
	notCopyrighted := strings.EqualFold(strings.TrimSpace(meta("Copyrighted")), "false")
	year := firstYear(rec.ObjectDate)
	oldEnough := year > 0 && year < wmPublicDomainYear
	rec.IsPublicDomain = (licenseOK || notCopyrighted) && (licenseOK || oldEnough)

	return rec
}

func hasRasterExtension(imageURL string) bool {
	lower := strings.ToLower(imageURL)
	for _, ext := range rasterExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func commonsPageURL(pageTitle string) string {
	if pageTitle == "" {
		return ""
	}
	return "https://commons.wikimedia.org/wiki/" + url.PathEscape(strings.ReplaceAll(pageTitle, " ", "_"))
}

// fileTitleToName turns a Commons page title ("File:The_Milkmaid.jpg") into
// a display name ("The Milkmaid").
func fileTitleToName(pageTitle string) string {
	name := strings.TrimPrefix(pageTitle, "File:")
	if idx := strings.LastIndex(name, "."); idx > 0 {
		name = name[:idx]
	}
	return strings.TrimSpace(strings.ReplaceAll(name, "_", " "))
}

// machineDateRE matches the machine-readable date micro-syntax Commons
// embeds in metadata values, e.g. "+1503-00-00T00:00:00Z".
var machineDateRE = regexp.MustCompile(`\+0*(\d{1,4})-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z?`)

// metaDate extracts a display date. A machine-readable date sub-string is
// preferred over the raw display text and unwrapped to its year.
func metaDate(value string) string {
	if value == "" {
		return ""
	}
	if m := machineDateRE.FindStringSubmatch(value); m != nil {
		return m[1]
	}
	text := metaText(value)
	if m := machineDateRE.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return text
}

// metaText unwraps a metadata value that may be an HTML fragment. A hidden
// machine-readable span is preferred over the visible display text.
func metaText(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if !strings.Contains(value, "<") {
		return collapseSpace(value)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(value))
	if err != nil {
		return collapseSpace(sanitize.Text(value))
	}
	if hidden := strings.TrimSpace(doc.Find(`span[style*="display: none"]`).First().Text()); hidden != "" {
		return collapseSpace(hidden)
	}
	return collapseSpace(doc.Text())
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// compatibleLicense reports whether any of the license fields names a
// public-domain-compatible license, by short name or by a Creative Commons
// public-domain URL.
func compatibleLicense(shortName, usageTerms, licenseURL string) bool {
	for _, name := range []string{shortName, usageTerms} {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "cc0", "public domain", "pd", "pd-old", "pd-us", "no restrictions":
			return true
		}
	}
	return strings.Contains(strings.ToLower(licenseURL), "creativecommons.org/publicdomain")
}

var yearRE = regexp.MustCompile(`\b(\d{3,4})\b`)

// firstYear pulls the first plausible year out of free-text date prose.
// Returns 0 when none is found.
func firstYear(s string) int {
	m := yearRE.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return year
}
