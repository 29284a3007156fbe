package synthesis

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"lumen/internal/catalog"
)

func targetIDs(p parsed) []string {
	ids := make([]string, 0, len(p.Recommendations))
	for _, r := range p.Recommendations {
		ids = append(ids, r.Target.ID)
	}
	return ids
}

func TestParseResponseCanonical(t *testing.T) {
	text := `PATTERN: You keep returning to the same fear of being judged.
It shows up across shadow and bias sessions.
---
- shadow-journal | Rationale: Writing helps you see the projection.
- Limiting Belief Audit | Rationale: The judgement fear rests on a belief.
- the shadow journal | Rationale: duplicate should be ignored.
- Unknown Thing | Rationale: not in the catalog.`

	got, ok := parseResponse(text, catalog.Default())
	if !ok {
		t.Fatal("expected canonical response to parse")
	}
	wantPattern := "You keep returning to the same fear of being judged. It shows up across shadow and bias sessions."
	if got.Pattern != wantPattern {
		t.Fatalf("pattern = %q", got.Pattern)
	}
	if diff := cmp.Diff([]string{"shadow-journal", "belief-audit"}, targetIDs(got)); diff != "" {
		t.Fatalf("targets mismatch (-want +got):\n%s", diff)
	}
	if got.Recommendations[0].Rationale != "Writing helps you see the projection." {
		t.Fatalf("rationale = %q", got.Recommendations[0].Rationale)
	}
	if diff := cmp.Diff([]string{"Unknown Thing"}, got.Dropped); diff != "" {
		t.Fatalf("dropped mismatch (-want +got):\n%s", diff)
	}
}

func TestParseResponseTolerantFormatting(t *testing.T) {
	text := "```markdown\n**PATTERN:** Rest matters more than you admit.\n\n---\n1. `body-scan` | **Rationale:** Notice tension early.\n```"
	got, ok := parseResponse(text, catalog.Default())
	if !ok {
		t.Fatal("expected fenced response to parse")
	}
	if got.Pattern != "Rest matters more than you admit." {
		t.Fatalf("pattern = %q", got.Pattern)
	}
	if diff := cmp.Diff([]string{"body-scan"}, targetIDs(got)); diff != "" {
		t.Fatalf("targets mismatch (-want +got):\n%s", diff)
	}
}

func TestParseResponseUnparseable(t *testing.T) {
	for _, text := range []string{
		"",
		"I'm sorry, I can't help with that.",
		"---\n- body-scan | Rationale: no pattern given",
	} {
		if _, ok := parseResponse(text, catalog.Default()); ok {
			t.Fatalf("expected %q to be unparseable", text)
		}
	}
}

func TestParseResponsePatternWithoutRecommendations(t *testing.T) {
	got, ok := parseResponse("PATTERN: Nothing actionable yet.", catalog.Default())
	if !ok || got.Pattern != "Nothing actionable yet." || len(got.Recommendations) != 0 {
		t.Fatalf("unexpected result %+v ok=%v", got, ok)
	}
}
