package confidence

import (
	"regexp"
	"sort"
	"strings"
)

// Vocabulary groups marker phrases that signal one register of certainty.
type Vocabulary string

const (
	VocabularyDefinite    Vocabulary = "definite"
	VocabularyExploratory Vocabulary = "exploratory"
	VocabularyUncertainty Vocabulary = "uncertainty"
)

// DefinitePercentThreshold is the smallest "<N>% confident" claim counted as a
// definite marker.
const DefinitePercentThreshold = 90

var markers = map[Vocabulary][]string{
	VocabularyDefinite: {
		"clearly",
		"definitely",
		"certainly",
		"obviously",
		"undoubtedly",
		"unquestionably",
		"absolutely",
		"proven",
		"must",
		"always",
		"without a doubt",
		"it is certain",
		"there is no doubt",
	},
	VocabularyExploratory: {
		"might",
		"may",
		"possibly",
		"perhaps",
		"seems",
		"seem",
		"could be",
		"worth exploring",
		"potentially",
		"one possibility",
		"it's possible",
	},
	VocabularyUncertainty: {
		"unclear",
		"not sure",
		"uncertain",
		"needs more evidence",
		"more data needed",
		"too early to tell",
		"hard to say",
		"limited data",
	},
}

// Markers returns a copy of the phrases in a vocabulary.
func Markers(v Vocabulary) []string {
	return append([]string(nil), markers[v]...)
}

var (
	vocabularyPatterns = compileVocabularies()
	percentClaim       = regexp.MustCompile(`(?i)\b(\d{1,3}(?:\.\d+)?)\s*%\s*(?:confident|sure|certain)\b`)
)

func compileVocabularies() map[Vocabulary]*regexp.Regexp {
	out := make(map[Vocabulary]*regexp.Regexp, len(markers))
	for vocab, phrases := range markers {
		out[vocab] = PhrasePattern(phrases)
	}
	return out
}

// PhrasePattern compiles phrases into one case-insensitive, word-bounded
// alternation. Longer phrases are tried first so "could be" wins over "could".
func PhrasePattern(phrases []string) *regexp.Regexp {
	sorted := append([]string(nil), phrases...)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	quoted := make([]string, 0, len(sorted))
	for _, p := range sorted {
		quoted = append(quoted, regexp.QuoteMeta(p))
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}
