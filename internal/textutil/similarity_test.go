package textutil

import (
	"math"
	"testing"
)

func TestCosineSimilarityNil(t *testing.T) {
	tests := []struct {
		name string
		a    *Fingerprint
		b    *Fingerprint
	}{
		{"both nil", nil, nil},
		{"a nil", nil, NewFingerprint("body scan")},
		{"b nil", NewFingerprint("body scan"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CosineSimilarity(tt.a, tt.b); got != 0 {
				t.Errorf("CosineSimilarity() = %v, want 0", got)
			}
		})
	}
}

func TestCosineSimilarityIgnoresOrderAndFiller(t *testing.T) {
	a := NewFingerprint("a compass for your values")
	b := NewFingerprint("values-compass")
	if got := CosineSimilarity(a, b); math.Abs(got-1) > 1e-9 {
		t.Fatalf("expected identical content to score 1, got %v", got)
	}
}

func TestCosineSimilarityPartialOverlap(t *testing.T) {
	a := NewFingerprint("shadow journaling")
	b := NewFingerprint("3-2-1 shadow process")
	want := 1 / (math.Sqrt(2) * math.Sqrt(2))
	if got := CosineSimilarity(a, b); math.Abs(got-want) > 1e-9 {
		t.Fatalf("CosineSimilarity = %v, want %v", got, want)
	}
}

func TestCosineSimilarityDisjoint(t *testing.T) {
	if got := CosineSimilarity(NewFingerprint("skydiving lessons"), NewFingerprint("body scan")); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}

func TestTokenizeDropsShortAndStopWords(t *testing.T) {
	got := Tokenize("Try the 3-2-1 Shadow Process, for you!")
	if len(got) != 2 || got[0] != "shadow" || got[1] != "process" {
		t.Fatalf("unexpected tokens %v", got)
	}
	if NewFingerprint("to be or not") != nil {
		t.Fatal("expected nil fingerprint for text without content tokens")
	}
}

func TestBestMatchPrefersEarlierOnTie(t *testing.T) {
	candidates := []*Fingerprint{
		NewFingerprint("daily meditation"),
		NewFingerprint("meditation daily"),
		NewFingerprint("body scan"),
	}
	idx, score := BestMatch("meditation", candidates)
	if idx != 0 {
		t.Fatalf("expected first candidate, got %d", idx)
	}
	if score <= 0 {
		t.Fatalf("expected positive score, got %v", score)
	}
	if idx, _ := BestMatch("skydiving", candidates); idx != -1 {
		t.Fatalf("expected no match, got %d", idx)
	}
}
