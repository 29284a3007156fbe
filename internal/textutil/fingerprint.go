package textutil

import (
	"math"
	"regexp"
	"strings"
)

// tokenSplitPattern matches runs of characters that separate tokens.
var tokenSplitPattern = regexp.MustCompile(`[^a-z0-9]+`)

// stopWords carry no meaning when matching practice names.
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "your": true,
	"you": true, "about": true, "into": true, "from": true, "this": true,
	"that": true, "some": true, "more": true, "try": true, "practice": true,
}

// Fingerprint is the set of distinct content tokens in a phrase.
type Fingerprint struct {
	tokens map[string]struct{}
	norm   float64
}

// NewFingerprint builds a fingerprint from text. It returns nil when the text
// has no content tokens.
func NewFingerprint(text string) *Fingerprint {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		set[token] = struct{}{}
	}
	return &Fingerprint{tokens: set, norm: math.Sqrt(float64(len(set)))}
}

// Tokenize lowercases text, splits on anything that is not a letter or digit,
// and drops stop words and tokens shorter than three characters.
func Tokenize(text string) []string {
	raw := tokenSplitPattern.Split(strings.ToLower(text), -1)
	terms := make([]string, 0, len(raw))
	for _, token := range raw {
		if len(token) < 3 || stopWords[token] {
			continue
		}
		terms = append(terms, token)
	}
	return terms
}

// TokenCount returns the number of distinct tokens.
func (f *Fingerprint) TokenCount() int {
	if f == nil {
		return 0
	}
	return len(f.tokens)
}
