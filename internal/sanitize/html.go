package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// strictPolicy removes all HTML tags and attributes.
	// Used for fields that must be plain text (titles, artists, dates).
	strictPolicy = bluemonday.StrictPolicy()

	// ugcPolicy allows basic formatting tags and safe links.
	// Used for artwork descriptions, which several collection APIs ship
	// with embedded markup.
	ugcPolicy = bluemonday.UGCPolicy()
)

// Text strips all HTML from source-supplied text and trims whitespace.
func Text(input string) string {
	return strings.TrimSpace(strictPolicy.Sanitize(input))
}

// HTML sanitizes description markup, keeping basic formatting but removing
// scripts, event handlers, and style attributes.
func HTML(input string) string {
	return strings.TrimSpace(ugcPolicy.Sanitize(input))
}
