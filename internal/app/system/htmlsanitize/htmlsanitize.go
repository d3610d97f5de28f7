// Package htmlsanitize strips unsafe markup from user-supplied text before it
// is stored. Replacement-request reasons and team descriptions are free text
// that later renders in admin views, so everything but plain text is removed.
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Plain removes all HTML from s, returning trimmed plain text.
func Plain(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}
