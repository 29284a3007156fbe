package analysis_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"lumen/internal/analysis"
	"lumen/internal/insight"
	"lumen/internal/session"
)

var base = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func summary(id string, kind session.Kind, daysAgo int, facts ...string) session.Summary {
	if len(facts) == 0 {
		facts = []string{session.GenericFact(kind)}
	}
	return session.Summary{ID: id, Kind: kind, OccurredAt: base.AddDate(0, 0, -daysAgo), KeyFacts: facts}
}

func TestAggregateOrdersAndDerives(t *testing.T) {
	older := summary("att-old", session.KindAttachmentAssessment, 20)
	older.Markers = map[string]string{session.MarkerAttachmentStyle: "avoidant"}
	newer := summary("att-new", session.KindAttachmentAssessment, 2)
	newer.Markers = map[string]string{session.MarkerAttachmentStyle: "anxious"}
	med := summary("med", session.KindMeditation, 1)

	insights := []insight.Insight{
		{PatternDescription: "Avoids conflict", Status: insight.StatusPending},
		{PatternDescription: "Avoids conflict", Status: insight.StatusPending},
		{PatternDescription: "Overworks", Status: insight.StatusAddressed},
		{PatternDescription: "Seeks reassurance"},
	}
	practices := []insight.PracticeRef{{ID: "journal"}, {ID: "breath"}, {ID: "journal"}, {ID: " "}}

	ctx := analysis.Aggregate([]session.Summary{older, med, newer}, practices, insights)

	gotIDs := []string{ctx.Sessions[0].ID, ctx.Sessions[1].ID, ctx.Sessions[2].ID}
	if diff := cmp.Diff([]string{"med", "att-new", "att-old"}, gotIDs); diff != "" {
		t.Fatalf("session order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Avoids conflict", "Seeks reassurance"}, ctx.PendingPatterns); diff != "" {
		t.Fatalf("pending patterns mismatch (-want +got):\n%s", diff)
	}
	if got := ctx.DevelopmentalMarkers[session.MarkerAttachmentStyle]; got != "anxious" {
		t.Fatalf("expected most recent attachment style, got %q", got)
	}
	if diff := cmp.Diff([]string{"breath", "journal"}, ctx.PracticeIDs()); diff != "" {
		t.Fatalf("practice ids mismatch (-want +got):\n%s", diff)
	}
}

func TestHashStability(t *testing.T) {
	sessions := []session.Summary{
		summary("a", session.KindShadowWork, 1),
		summary("b", session.KindPartsWork, 3),
		summary("c", session.KindMeditation, 5),
	}
	practices := []insight.PracticeRef{{ID: "x"}, {ID: "y"}}

	h1 := analysis.Hash(analysis.Aggregate(sessions, practices, nil))
	h2 := analysis.Hash(analysis.Aggregate(sessions, practices, nil))
	if h1 != h2 {
		t.Fatalf("hash not stable: %s vs %s", h1, h2)
	}

	reorderedPractices := []insight.PracticeRef{{ID: "y"}, {ID: "x"}}
	if got := analysis.Hash(analysis.Aggregate(sessions, reorderedPractices, nil)); got != h1 {
		t.Fatal("practice order should not affect the hash")
	}

	olderSwapped := []session.Summary{sessions[0], sessions[2], sessions[1]}
	olderSwapped[1].OccurredAt, olderSwapped[2].OccurredAt = sessions[1].OccurredAt, sessions[2].OccurredAt
	if got := analysis.Hash(analysis.Aggregate(olderSwapped, practices, nil)); got != h1 {
		t.Fatal("reordering older sessions should not affect the hash")
	}

	changedLatest := append([]session.Summary(nil), sessions...)
	changedLatest[0].ID = "a2"
	if got := analysis.Hash(analysis.Aggregate(changedLatest, practices, nil)); got == h1 {
		t.Fatal("changing the latest session id must change the hash")
	}

	fewer := sessions[:2]
	if got := analysis.Hash(analysis.Aggregate(fewer, practices, nil)); got == h1 {
		t.Fatal("changing the session count must change the hash")
	}

	pending := []insight.Insight{{PatternDescription: "p", Status: insight.StatusPending}}
	if got := analysis.Hash(analysis.Aggregate(sessions, practices, pending)); got == h1 {
		t.Fatal("pending patterns must participate in the hash")
	}
}

func TestStatsAndScore(t *testing.T) {
	var sessions []session.Summary
	for i := 0; i < 25; i++ {
		sessions = append(sessions, summary(string(rune('a'+i)), session.KindMeditation, i))
	}
	ctx := analysis.Aggregate(sessions, nil, nil)

	stats := ctx.Stats(base)
	if stats.Total != 25 || stats.LastWeek != 7 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	score := ctx.Score(base, false)
	if score.Value != 0.95 {
		t.Fatalf("expected saturated score with recency bonus, got %v", score.Value)
	}
	if score.DataPoints != 25 {
		t.Fatalf("expected 25 data points, got %d", score.DataPoints)
	}
}

func TestConsistency(t *testing.T) {
	ctx := analysis.Aggregate([]session.Summary{
		summary("1", session.KindBiasDetection, 1, "Identified biases: anchoring"),
		summary("2", session.KindBiasDetection, 2, "Identified biases: anchoring", "Reframe: x"),
		summary("3", session.KindMeditation, 3),
		summary("4", session.KindBiasDetection, 4, "Identified biases: anchoring"),
	}, nil, nil)

	got, ok := ctx.Consistency()
	if !ok || got != 0.75 {
		t.Fatalf("expected consistency 0.75, got %v (ok=%v)", got, ok)
	}

	short := analysis.Aggregate(ctx.Sessions[:2], nil, nil)
	if _, ok := short.Consistency(); ok {
		t.Fatal("expected consistency to need three sessions")
	}
}

func TestDescribe(t *testing.T) {
	ctx := analysis.Aggregate([]session.Summary{summary("a", session.KindShadowWork, 0)}, nil, nil)
	want := "1 session(s) across 1 kind(s); 0 practice(s); 0 pending pattern(s); latest: shadow work on 2026-03-10"
	if got := ctx.Describe(); got != want {
		t.Fatalf("Describe() = %q, want %q", got, want)
	}
}
