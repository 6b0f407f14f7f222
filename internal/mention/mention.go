// Package mention extracts @username tokens from free text.
package mention

import "regexp"

var mentionRe = regexp.MustCompile(`@(\w+)`)

// Extract returns every @username capture in order of appearance. Case is
// preserved and duplicates are kept; callers that need at-most-once handling
// must dedupe themselves.
func Extract(text string) []string {
	matches := mentionRe.FindAllStringSubmatch(text, -1)
	var out []string
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}
