// Package slug derives URL-safe catalogue identifiers from human-entered
// names. The derivation is deterministic so a retried request with the same
// name maps to the same slug.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Make converts a catalogue name into its slug: accents stripped, lowered,
// runs of non-alphanumerics collapsed to single hyphens.
func Make(name string) string {
	flat, _, err := transform.String(deaccent, name)
	if err != nil {
		flat = name
	}
	var b strings.Builder
	b.Grow(len(flat))
	lastHyphen := true
	for _, r := range strings.ToLower(flat) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
