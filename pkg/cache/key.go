package cache

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"
)

// maxKeyLen is the normalized-key length above which keys are reduced to a
// content hash.
const maxKeyLen = 1000

var (
	// A short leading "prefix:" namespace segment, stripped before
	// normalization. The whole segment stays under 20 characters.
	keyPrefixRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]{0,17}:`)

	whitespaceRe = regexp.MustCompile(`\s+`)
	bracketRe    = regexp.MustCompile(`\s*([{}])\s*`)
)

// Key canonicalizes query text into a cache key. Queries differing only in
// case, whitespace or bracket spacing map to the same key. Normalized keys
// longer than 1000 characters are reduced to a short FNV content hash; the
// hash is for key compression only, not integrity.
func Key(query string) string {
	s := keyPrefixRe.ReplaceAllString(strings.TrimSpace(query), "")
	s = whitespaceRe.ReplaceAllString(s, " ")
	s = bracketRe.ReplaceAllString(s, "$1")
	s = strings.ToLower(strings.TrimSpace(s))

	if len(s) > maxKeyLen {
		h := fnv.New64a()
		_, _ = h.Write([]byte(s))
		return fmt.Sprintf("h:%x", h.Sum64())
	}
	return s
}
