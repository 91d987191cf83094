// Package normalize converts provider display strings into the canonical
// matching keys and vocabularies shared across the pipeline.
package normalize

import (
	"strings"
	"unicode"

	"github.com/gosimple/slug"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// asciiFold decomposes accented characters and strips the combining marks,
// so "Pokémon" folds to "Pokemon" before the alphanumeric filter runs.
var asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Title converts a raw display title into the canonical matching key:
// ASCII-folded, lower-cased, everything but [a-z0-9] stripped. The key is
// never displayed. Idempotent by construction.
func Title(raw string) string {
	folded, _, err := transform.String(asciiFold, raw)
	if err != nil {
		folded = raw
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Slug builds a URL-safe display slug for a title
func Slug(raw string) string {
	return slug.Make(raw)
}
