package tone_test

import (
	"strings"
	"testing"

	"lumen/internal/confidence"
	"lumen/internal/tone"
)

func TestDetermine(t *testing.T) {
	tests := map[float64]tone.Tone{
		0.30: tone.Exploratory,
		0.49: tone.Exploratory,
		0.50: tone.Observational,
		0.74: tone.Observational,
		0.75: tone.Definitive,
		0.95: tone.Definitive,
	}
	for c, want := range tests {
		if got := tone.Determine(c); got != want {
			t.Fatalf("Determine(%v) = %s, want %s", c, got, want)
		}
	}
}

func TestShiftRemovesClearlyAtLowConfidence(t *testing.T) {
	score := confidence.Compute(1, 0, 0, nil)
	got := tone.Shift("You clearly avoid conflict when stakes rise.", score.Value, nil)

	if got.Tone != tone.Exploratory {
		t.Fatalf("expected exploratory tone, got %s", got.Tone)
	}
	if strings.Contains(strings.ToLower(got.Text), "clearly") {
		t.Fatalf("expected clearly to be removed, got %q", got.Text)
	}
	want := "I'm noticing patterns worth exploring. You possibly avoid conflict when stakes rise. More sessions will help clarify whether this pattern holds."
	if got.Text != want {
		t.Fatalf("unexpected text:\n got %q\nwant %q", got.Text, want)
	}
	if !got.Changed() {
		t.Fatal("expected changes to be recorded")
	}
}

func TestShiftStripsPercentClaims(t *testing.T) {
	got := tone.Shift("I am 95% confident you have social anxiety.", 0.4, nil)
	want := "I'm noticing patterns worth exploring. You have social anxiety. More sessions will help clarify whether this pattern holds."
	if got.Text != want {
		t.Fatalf("unexpected text:\n got %q\nwant %q", got.Text, want)
	}
}

func TestShiftStripsQualifiersAndAddsFootnote(t *testing.T) {
	got := tone.Shift("This is absolutely a pattern.", 0.6, nil)
	want := "This is a pattern. (Based on the patterns in your sessions so far.)"
	if got.Text != want {
		t.Fatalf("unexpected text:\n got %q\nwant %q", got.Text, want)
	}
	if got.Tone != tone.Observational {
		t.Fatalf("expected observational, got %s", got.Tone)
	}
}

func TestShiftObservationalAboveFootnoteThreshold(t *testing.T) {
	got := tone.Shift("You must rest more.", 0.7, nil)
	if got.Text != "You may want to rest more." {
		t.Fatalf("unexpected text %q", got.Text)
	}
}

func TestShiftPreservesCapitalisation(t *testing.T) {
	got := tone.Shift("Clearly, you avoid conflict.", 0.3, nil)
	if !strings.Contains(got.Text, "Possibly, you avoid conflict.") {
		t.Fatalf("expected capitalised replacement, got %q", got.Text)
	}
}

func TestShiftDefinitiveLeavesDirectTextAlone(t *testing.T) {
	got := tone.Shift("You should protect your mornings.", 0.9, nil)
	if got.Changed() {
		t.Fatalf("expected no changes, got %v", got.Changes)
	}
	if got.Text != "You should protect your mornings." {
		t.Fatalf("unexpected text %q", got.Text)
	}
}

func TestShiftHonoursExplicitCurrentTone(t *testing.T) {
	current := tone.Exploratory
	got := tone.Shift("You might want to journal.", 0.6, &current)
	if strings.Contains(got.Text, "might") {
		t.Fatalf("expected exploratory phrasing to be replaced, got %q", got.Text)
	}
}

func TestShiftIsIdempotent(t *testing.T) {
	texts := []string{
		"You clearly avoid conflict. You must always say yes.",
		"This might be a pattern. You could try journaling.",
		"Your sessions suggest a pattern; consider resting.",
		"I'm 99% sure that you definitely need to rest.",
		"Plain text with no markers.",
		"There is no doubt you should act, perhaps today.",
	}
	for _, text := range texts {
		for _, c := range []float64{0.3, 0.45, 0.55, 0.7, 0.8, 0.95} {
			first := tone.Shift(text, c, nil)
			second := tone.Shift(first.Text, c, nil)
			if second.Changed() {
				t.Fatalf("re-shift of %q at %v changed text: %v\nfirst:  %q\nsecond: %q", text, c, second.Changes, first.Text, second.Text)
			}
		}
	}
}

func TestShiftNeverOverclaimsWhenExploratory(t *testing.T) {
	texts := []string{
		"You clearly, obviously and undoubtedly avoid conflict.",
		"It is certain that you must always rest. This is proven.",
		"WITHOUT A DOUBT you should act. I am 97% certain.",
		"There is no doubt: you have to stop. Definitely.",
		"We're 92.5% confident this is unquestionably true.",
	}
	for _, text := range texts {
		for _, c := range []float64{0.30, 0.35, 0.49} {
			got := tone.Shift(text, c, nil)
			if d := confidence.Detect(got.Text); d.Definite != 0 {
				t.Fatalf("shifted text still carries definite markers %v: %q", d.Matches, got.Text)
			}
		}
	}
}

func TestDefinitiveWordsCoverDefiniteMarkers(t *testing.T) {
	certainty, action := tone.Words(tone.Definitive)
	known := map[string]bool{}
	for _, w := range append(certainty, action...) {
		known[w] = true
	}
	for _, marker := range confidence.Markers(confidence.VocabularyDefinite) {
		if !known[marker] {
			t.Fatalf("definite marker %q missing from definitive tone words", marker)
		}
	}
}

func TestToneVocabulariesAreDisjoint(t *testing.T) {
	owner := map[string]tone.Tone{}
	for _, tn := range []tone.Tone{tone.Exploratory, tone.Observational, tone.Definitive} {
		certainty, action := tone.Words(tn)
		for _, w := range append(certainty, action...) {
			if prev, ok := owner[w]; ok {
				t.Fatalf("%q appears in both %s and %s", w, prev, tn)
			}
			owner[w] = tn
		}
	}
}

func TestDetectTone(t *testing.T) {
	if got := tone.Detect("Your sessions suggest this; consider rest."); got != tone.Observational {
		t.Fatalf("expected observational, got %s", got)
	}
	if got := tone.Detect("nothing here"); got != "" {
		t.Fatalf("expected no tone, got %s", got)
	}
}

func TestAdjustSkipsFraming(t *testing.T) {
	got := tone.Adjust("You should clearly try this.", 0.4, nil)
	want := "You could possibly try this."
	if got.Text != want {
		t.Fatalf("unexpected text:\n got %q\nwant %q", got.Text, want)
	}
	if strings.Contains(got.Text, tone.ExploratoryLead) {
		t.Fatal("Adjust must not add framing")
	}
}
