package confidence_test

import (
	"testing"

	"lumen/internal/confidence"
)

func TestDetectClassification(t *testing.T) {
	tests := []struct {
		name string
		text string
		want confidence.Level
	}{
		{name: "nothing", text: "You completed three sessions.", want: confidence.LevelUnknown},
		{name: "definite only", text: "This is clearly a pattern.", want: confidence.LevelHigh},
		{name: "hedged only", text: "This might be a pattern worth exploring.", want: confidence.LevelLow},
		{name: "uncertainty only", text: "It is unclear what drives this.", want: confidence.LevelLow},
		{name: "definite wins", text: "You clearly and definitely avoid conflict, perhaps.", want: confidence.LevelHigh},
		{name: "hedged wins", text: "You clearly might possibly avoid conflict.", want: confidence.LevelLow},
		{name: "tie is medium", text: "You clearly might avoid conflict.", want: confidence.LevelMedium},
		{name: "high percent claim", text: "I am 92% confident this holds.", want: confidence.LevelHigh},
		{name: "word boundary", text: "Mayonnaise is mustard adjacent.", want: confidence.LevelUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := confidence.Detect(tt.text).ClaimedLevel; got != tt.want {
				t.Fatalf("Detect(%q) = %s, want %s", tt.text, got, tt.want)
			}
		})
	}
}

func TestDetectLowPercentIsNotDefinite(t *testing.T) {
	d := confidence.Detect("I am 60% sure about this")
	if d.Definite != 0 {
		t.Fatalf("expected 60%% claim not to count as definite, got %d", d.Definite)
	}
	if !d.HasPercentClaim || d.PercentClaim != 60 {
		t.Fatalf("expected percent claim 60, got %+v", d)
	}
}

func TestValidateScenarioPercentOverclaim(t *testing.T) {
	got := confidence.Validate("I am 95% confident you have social anxiety", 0.4, nil)
	if got.Valid {
		t.Fatal("expected invalid result")
	}
	if got.MismatchType != confidence.MismatchOverconfident {
		t.Fatalf("expected overconfident, got %s", got.MismatchType)
	}
	if got.SuggestedReduction != 55 {
		t.Fatalf("expected suggested reduction 55, got %v", got.SuggestedReduction)
	}
	if got.Suggestion == "" {
		t.Fatal("expected a suggestion")
	}
}

func TestValidateSmallSampleGuard(t *testing.T) {
	n := 2
	got := confidence.Validate("You may notice this sometimes.", 0.8, &n)
	if got.Valid || got.MismatchType != confidence.MismatchOverconfident {
		t.Fatalf("expected small-sample overconfidence, got %+v", got)
	}

	n = 3
	if got := confidence.Validate("You may notice this sometimes.", 0.8, &n); got.MismatchType == confidence.MismatchOverconfident {
		t.Fatalf("three data points should pass the guard, got %+v", got)
	}
}

func TestValidateMismatchTable(t *testing.T) {
	const (
		high   = "This is clearly true."
		medium = "This is clearly true, though it might shift."
		low    = "This might be true."
	)
	tests := []struct {
		name   string
		text   string
		actual float64
		want   confidence.MismatchType
	}{
		{name: "high vs medium", text: high, actual: 0.6, want: confidence.MismatchOverconfident},
		{name: "high vs low", text: high, actual: 0.3, want: confidence.MismatchOverconfident},
		{name: "medium vs low", text: medium, actual: 0.3, want: confidence.MismatchOverconfident},
		{name: "low vs high", text: low, actual: 0.9, want: confidence.MismatchUnderconfident},
		{name: "medium vs high", text: medium, actual: 0.9, want: confidence.MismatchNone},
		{name: "low vs medium", text: low, actual: 0.6, want: confidence.MismatchNone},
		{name: "equal high", text: high, actual: 0.9, want: confidence.MismatchNone},
		{name: "equal low", text: low, actual: 0.3, want: confidence.MismatchNone},
		{name: "unknown", text: "Plain words.", actual: 0.3, want: confidence.MismatchNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := confidence.Validate(tt.text, tt.actual, nil)
			if got.MismatchType != tt.want {
				t.Fatalf("Validate(%q, %v) = %s, want %s", tt.text, tt.actual, got.MismatchType, tt.want)
			}
			if got.Valid != (tt.want == confidence.MismatchNone) {
				t.Fatalf("valid flag inconsistent with mismatch: %+v", got)
			}
			if !got.Valid && got.Suggestion == "" {
				t.Fatal("expected suggestion for invalid result")
			}
		})
	}
}
