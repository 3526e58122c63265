package indexer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// trailingPunct is stripped from the end of every token, repeatedly.
const trailingPunct = ".,:;?*"

// Filter recognizes corpus metadata tokens that must not be indexed.
type Filter struct {
	// MarkerPrefixes drop any token starting with one of them ("#start", "#end").
	MarkerPrefixes []string
	// Labels drop tokens equal to one of them ("Section-1").
	Labels []string
	// IdentityPrefix drops bare document names: the prefix followed by a digit.
	IdentityPrefix string
}

// DefaultFilter matches the markers and "url<digit>" names of the standard corpus layout.
func DefaultFilter() Filter {
	return Filter{
		MarkerPrefixes: []string{"#start", "#end"},
		Labels:         []string{"Section-1", "Section-2"},
		IdentityPrefix: "url",
	}
}

// IsMetadata reports whether the raw token is a structural marker, a section
// label, or a document name.
func (f Filter) IsMetadata(tok string) bool {
	for _, p := range f.MarkerPrefixes {
		if strings.HasPrefix(tok, p) {
			return true
		}
	}
	for _, l := range f.Labels {
		if tok == l {
			return true
		}
	}
	if f.IdentityPrefix != "" && strings.HasPrefix(tok, f.IdentityPrefix) {
		rest := tok[len(f.IdentityPrefix):]
		if rest != "" && rest[0] >= '0' && rest[0] <= '9' {
			return true
		}
	}
	return false
}

// Normalize lowercases tok and strips trailing punctuation. It returns "" when
// nothing is left or the result does not start with a letter.
func Normalize(tok string) string {
	tok = strings.TrimRight(strings.ToLower(tok), trailingPunct)
	if tok == "" {
		return ""
	}
	if r, _ := utf8.DecodeRuneInString(tok); !unicode.IsLetter(r) {
		return ""
	}
	return tok
}

// Terms returns the normalized, indexable terms of body in text order.
// Repeats are kept; the term table deduplicates.
func (f Filter) Terms(body string) []string {
	fields := strings.Fields(body)
	terms := make([]string, 0, len(fields))
	for _, tok := range fields {
		if f.IsMetadata(tok) {
			continue
		}
		if term := Normalize(tok); term != "" {
			terms = append(terms, term)
		}
	}
	return terms
}
