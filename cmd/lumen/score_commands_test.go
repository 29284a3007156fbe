package main

import (
	"strings"
	"testing"

	"lumen/internal/confidence"
	"lumen/internal/tone"
)

func TestScoreCommandNeedsNoConfig(t *testing.T) {
	out, _, err := runCLI(t, []string{"score", "--total", "12", "--last-week", "6", "--json"}, "/nonexistent/dir/config.toml")
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	got := decodeOutput[scoreView](t, out)
	if got.Value != 0.75 {
		t.Fatalf("expected 0.75, got %v", got.Value)
	}
	if got.Level != confidence.LevelHigh || got.Tone != tone.Definitive {
		t.Fatalf("unexpected level/tone %s/%s", got.Level, got.Tone)
	}
	if got.DataPoints != 12 {
		t.Fatalf("expected 12 data points, got %d", got.DataPoints)
	}
}

func TestScoreCommandSingleSessionFloor(t *testing.T) {
	out, _, err := runCLI(t, []string{"score", "--total", "1"}, "")
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	requireContains(t, out, "Confidence: 0.30")
	requireContains(t, out, "Tone:       exploratory")
}

func TestScoreCommandRejectsNegativeCounts(t *testing.T) {
	if _, _, err := runCLI(t, []string{"score", "--total", "-1"}, ""); err == nil {
		t.Fatal("expected negative total to be rejected")
	}
}

func TestToneShiftCommand(t *testing.T) {
	out, _, err := runCLI(t, []string{"tone", "shift", "--confidence", "0.3", "You clearly avoid conflict when stakes rise."}, "")
	if err != nil {
		t.Fatalf("tone shift: %v", err)
	}
	want := "I'm noticing patterns worth exploring. You possibly avoid conflict when stakes rise. More sessions will help clarify whether this pattern holds.\n"
	if out != want {
		t.Fatalf("unexpected output:\n got %q\nwant %q", out, want)
	}
}

func TestToneCheckFlagsOverconfidentClaims(t *testing.T) {
	out, _, err := runCLI(t, []string{"tone", "check", "--confidence", "0.3", "--json", "I am 95% confident you have social anxiety."}, "")
	if err != nil {
		t.Fatalf("tone check: %v", err)
	}
	got := decodeOutput[toneCheckView](t, out)
	if got.Valid || got.MismatchType != confidence.MismatchOverconfident {
		t.Fatalf("expected overconfident result, got %+v", got.Result)
	}
	if strings.Contains(got.Calibrated.Text, "95%") {
		t.Fatalf("calibrated text kept the percentage: %q", got.Calibrated.Text)
	}
}

func TestToneCheckRejectsOutOfRangeConfidence(t *testing.T) {
	if _, _, err := runCLI(t, []string{"tone", "check", "--confidence", "1.5", "text"}, ""); err == nil {
		t.Fatal("expected confidence above 1 to be rejected")
	}
}

func TestToneShiftHonoursCurrentTone(t *testing.T) {
	text := "You might avoid conflict when stakes rise."
	out, _, err := runCLI(t, []string{"tone", "shift", "--confidence", "0.9", "--current", "Definitive", text}, "")
	if err != nil {
		t.Fatalf("tone shift: %v", err)
	}
	if out != text+"\n" {
		t.Fatalf("text already in the target register should be left alone, got %q", out)
	}
}

func TestToneShiftRejectsUnknownCurrentTone(t *testing.T) {
	if _, _, err := runCLI(t, []string{"tone", "shift", "--current", "smug", "text"}, ""); err == nil {
		t.Fatal("expected unknown tone to be rejected")
	}
}
