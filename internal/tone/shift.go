package tone

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"lumen/internal/confidence"
)

const (
	// ExploratoryLead opens exploratory text.
	ExploratoryLead = "I'm noticing patterns worth exploring."
	// ExploratoryDisclaimer closes exploratory text.
	ExploratoryDisclaimer = "More sessions will help clarify whether this pattern holds."
	// EvidenceFootnote closes observational text below footnoteThreshold.
	EvidenceFootnote = "(Based on the patterns in your sessions so far.)"

	footnoteThreshold = 0.65
)

// ShiftResult is the rewritten text and an audit trail of what changed.
type ShiftResult struct {
	Text    string   `json:"text"`
	Tone    Tone     `json:"tone"`
	Changes []string `json:"changes,omitempty"`
}

// Changed reports whether Shift altered the text.
func (r ShiftResult) Changed() bool {
	return len(r.Changes) > 0
}

type substitution struct {
	pattern *regexp.Regexp
	targets map[string]string // lower-case phrase -> replacement
}

var (
	qualifierPattern = regexp.MustCompile(`(?i)\b(?:` + strings.Join(absoluteQualifiers, "|") + `)\b,?\s*`)
	percentPattern   = regexp.MustCompile(`(?i)\b(?:(?:i am|i'm|we are|we're)\s+)?\d{1,3}(?:\.\d+)?\s*%\s*(?:confident|sure|certain)\b(?:\s+that)?,?\s*`)
	spaceRun         = regexp.MustCompile(`[ \t]{2,}`)
	spaceBeforePunct = regexp.MustCompile(`\s+([,.;:!?])`)
	emptySentence    = regexp.MustCompile(`([.!?])(?:\s+[.!?])+`)
	substitutions    = buildSubstitutions()
	tonePatterns     = buildTonePatterns()
)

func buildTonePatterns() map[Tone]*regexp.Regexp {
	out := make(map[Tone]*regexp.Regexp, len(vocabularies))
	for t, v := range vocabularies {
		out[t] = confidence.PhrasePattern(append(append([]string(nil), v.certainty...), v.action...))
	}
	return out
}

// buildSubstitutions precompiles, for every (source, target) pair of distinct
// tones, a pattern matching the source's phrases and their replacements.
func buildSubstitutions() map[[2]Tone]substitution {
	out := make(map[[2]Tone]substitution)
	for source, sv := range vocabularies {
		for target, tv := range vocabularies {
			if source == target {
				continue
			}
			targets := make(map[string]string)
			for _, w := range sv.certainty {
				targets[w] = tv.certainty[0]
			}
			for _, w := range sv.action {
				targets[w] = tv.action[0]
			}
			phrases := make([]string, 0, len(targets))
			for w := range targets {
				phrases = append(phrases, w)
			}
			sort.Strings(phrases)
			out[[2]Tone{source, target}] = substitution{
				pattern: confidence.PhrasePattern(phrases),
				targets: targets,
			}
		}
	}
	return out
}

// Shift rewrites text so its certainty matches the target confidence. current
// overrides tone detection when non-nil. Shifting already-shifted text to the
// same target changes nothing.
func Shift(text string, target float64, current *Tone) ShiftResult {
	result := Adjust(text, target, current)
	result.frame(result.Tone, target)
	return result
}

// Adjust performs the stripping and vocabulary steps of Shift without adding
// framing sentences. It suits short fragments such as recommendation
// rationales.
func Adjust(text string, target float64, current *Tone) ShiftResult {
	want := Determine(target)
	result := ShiftResult{Text: text, Tone: want}

	if want != Definitive {
		result.strip(percentPattern, "removed percentage certainty claim")
		result.strip(qualifierPattern, "removed absolute qualifiers")
	}

	detected := Detect(result.Text)
	if current != nil {
		detected = *current
	}
	for _, source := range []Tone{Definitive, Observational, Exploratory} {
		if source == want {
			continue
		}
		// Words more certain than the target always go; the rest only when
		// the text as a whole sits in a different register.
		if source.rank() > want.rank() || detected != want {
			result.replace(source, want)
		}
	}
	return result
}

func (r *ShiftResult) strip(pattern *regexp.Regexp, change string) {
	locs := pattern.FindAllStringIndex(r.Text, -1)
	if len(locs) == 0 {
		return
	}
	var b strings.Builder
	last := 0
	capitalize := false
	write := func(segment string) {
		if capitalize && segment != "" {
			first, size := utf8.DecodeRuneInString(segment)
			b.WriteRune(unicode.ToUpper(first))
			segment = segment[size:]
			capitalize = false
		}
		b.WriteString(segment)
	}
	for _, loc := range locs {
		write(r.Text[last:loc[0]])
		// A removed span that opened a sentence hands its capital on.
		if first, _ := utf8.DecodeRuneInString(r.Text[loc[0]:]); unicode.IsUpper(first) {
			capitalize = true
		}
		last = loc[1]
	}
	write(r.Text[last:])
	r.Text = tidy(b.String())
	r.Changes = append(r.Changes, change)
}

func (r *ShiftResult) replace(source, target Tone) {
	sub := substitutions[[2]Tone{source, target}]
	seen := map[string]bool{}
	var changes []string
	r.Text = sub.pattern.ReplaceAllStringFunc(r.Text, func(match string) string {
		lower := strings.ToLower(match)
		repl := matchCase(match, sub.targets[lower])
		if !seen[lower] {
			seen[lower] = true
			changes = append(changes, fmt.Sprintf("replaced %s %q with %q", source, lower, sub.targets[lower]))
		}
		return repl
	})
	r.Changes = append(r.Changes, changes...)
}

func (r *ShiftResult) frame(want Tone, target float64) {
	switch want {
	case Exploratory:
		if !strings.Contains(r.Text, ExploratoryLead) {
			r.Text = joinSentences(ExploratoryLead, r.Text)
			r.Changes = append(r.Changes, "added exploratory lead-in")
		}
		if !strings.Contains(r.Text, ExploratoryDisclaimer) {
			r.Text = joinSentences(r.Text, ExploratoryDisclaimer)
			r.Changes = append(r.Changes, "added exploratory disclaimer")
		}
	case Observational:
		if target < footnoteThreshold && !strings.Contains(r.Text, EvidenceFootnote) {
			r.Text = joinSentences(r.Text, EvidenceFootnote)
			r.Changes = append(r.Changes, "added evidence footnote")
		}
	}
}

// Detect reports the tone whose vocabulary appears most often in text. Ties go
// to the more certain tone. Text with no tone words yields "".
func Detect(text string) Tone {
	best, bestCount := Tone(""), 0
	for _, t := range []Tone{Definitive, Observational, Exploratory} {
		if n := len(tonePatterns[t].FindAllStringIndex(text, -1)); n > bestCount {
			best, bestCount = t, n
		}
	}
	return best
}

func matchCase(original, replacement string) string {
	first, _ := utf8.DecodeRuneInString(original)
	if !unicode.IsUpper(first) || replacement == "" {
		return replacement
	}
	r, size := utf8.DecodeRuneInString(replacement)
	return string(unicode.ToUpper(r)) + replacement[size:]
}

func joinSentences(a, b string) string {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}

func tidy(s string) string {
	s = spaceRun.ReplaceAllString(s, " ")
	s = emptySentence.ReplaceAllString(s, "$1")
	s = spaceBeforePunct.ReplaceAllString(s, "$1")
	return strings.TrimSpace(s)
}
