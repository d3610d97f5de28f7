// Package normalize provides input normalization functions used by stores
// and handlers. Normalization happens in exactly one place (here) so the
// unique indexes see consistent values.
package normalize

import (
	"regexp"
	"strings"
)

var hexColorRe = regexp.MustCompile(`^#([0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)

// ChestNumber trims whitespace and upper-cases a chest number. The students
// collection has a unique index on the normalized form, so "a12" and "A12 "
// collide as intended.
func ChestNumber(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Name trims surrounding whitespace but preserves case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// HexColor validates a #RGB or #RRGGBB color, returning fallback when the
// value is empty or malformed.
func HexColor(s, fallback string) string {
	s = strings.TrimSpace(s)
	if hexColorRe.MatchString(s) {
		return s
	}
	return fallback
}
