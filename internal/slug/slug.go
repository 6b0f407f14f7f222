// Package slug derives URL slugs from human-readable names and titles.
package slug

import (
	"regexp"
	"strings"
)

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)

// Make lowercases s, collapses every run of non-alphanumeric characters into
// a single hyphen, and strips leading and trailing hyphens.
func Make(s string) string {
	out := nonAlnumRe.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(out, "-")
}
