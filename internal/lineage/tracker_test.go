package lineage_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"lumen/internal/insight"
	"lumen/internal/lineage"
	"lumen/internal/services"
)

type storeFactory func(t *testing.T) lineage.Store

func stores() map[string]storeFactory {
	return map[string]storeFactory{
		"memory": func(t *testing.T) lineage.Store { return lineage.NewMemoryStore() },
		"sqlite": func(t *testing.T) lineage.Store {
			store, err := lineage.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "lineage.db"))
			if err != nil {
				t.Fatalf("OpenSQLite: %v", err)
			}
			return store
		},
	}
}

func newTracker(t *testing.T, factory storeFactory, now time.Time) *lineage.Tracker {
	t.Helper()
	tracker := lineage.NewTracker(factory(t), lineage.WithClock(func() time.Time { return now }))
	t.Cleanup(func() { _ = tracker.Close() })
	return tracker
}

func recordInput(id string, sources []string, primary string, score float64) lineage.RecordInput {
	return lineage.RecordInput{
		Recommendation: insight.Recommendation{ID: id, TargetID: "body-scan", Label: "Body Scan", Rationale: primary},
		UserID:         "user-1",
		Sources:        sources,
		Reasoning:      lineage.Reasoning{Primary: primary, Secondary: []string{"", "Completed a meditation session"}, Patterns: []string{"rest avoidance", "rest avoidance"}},
		Confidence:     score,
		GeneratedBy:    "openrouter",
	}
}

func TestRecordAndExplain(t *testing.T) {
	now := time.Date(2026, 3, 12, 8, 30, 0, 0, time.UTC)
	for name, factory := range stores() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			tracker := newTracker(t, factory, now)

			rec, err := tracker.Record(ctx, recordInput("rec-1", []string{"s1", "s2", "s1"}, "Tension keeps showing up.", 0.62))
			if err != nil {
				t.Fatalf("Record: %v", err)
			}
			if diff := cmp.Diff([]string{"s1", "s2"}, rec.ContributingSessionIDs); diff != "" {
				t.Fatalf("sources not deduplicated (-want +got):\n%s", diff)
			}

			got, err := tracker.Lineage(ctx, "rec-1")
			if err != nil {
				t.Fatalf("Lineage: %v", err)
			}
			if diff := cmp.Diff(rec, got); diff != "" {
				t.Fatalf("stored lineage mismatch (-want +got):\n%s", diff)
			}

			exp, err := tracker.ExplainRecommendation(ctx, "rec-1")
			if err != nil {
				t.Fatalf("ExplainRecommendation: %v", err)
			}
			if exp.ConfidenceLevel != "medium" || exp.SessionCount != 2 || exp.Exploratory {
				t.Fatalf("unexpected explanation %+v", exp)
			}
			if !strings.Contains(exp.Summary, "because Tension keeps showing up") {
				t.Fatalf("summary missing reason: %q", exp.Summary)
			}

			if _, err := tracker.Record(ctx, recordInput("rec-1", []string{"s9"}, "again", 0.9)); !errors.Is(err, lineage.ErrDuplicate) {
				t.Fatalf("expected duplicate error, got %v", err)
			}
			after, _ := tracker.Lineage(ctx, "rec-1")
			if diff := cmp.Diff(rec, after); diff != "" {
				t.Fatalf("record mutated by duplicate write (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRecordSynthesisAndHistory(t *testing.T) {
	for name, factory := range stores() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			clock := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
			store := factory(t)
			t.Cleanup(func() { _ = store.Close() })
			tracker := lineage.NewTracker(store, lineage.WithClock(func() time.Time { return clock }))

			var ids []string
			for i, recID := range []string{"a", "b", "c"} {
				clock = clock.Add(time.Hour)
				syn, err := tracker.RecordSynthesis(ctx, lineage.SynthesisInput{
					UserID:            "user-1",
					ContextSummary:    "3 session(s)",
					ContextHash:       "hash",
					PatternSummary:    "pattern",
					OverallConfidence: 0.4 + float64(i)*0.1,
					GeneratedBy:       "gemini",
					Recommendations: []lineage.RecordInput{
						recordInput(recID+"-1", []string{"s1"}, "reason one", 0.5),
						recordInput(recID+"-2", []string{"s2"}, "reason two", 0.5),
					},
				})
				if err != nil {
					t.Fatalf("RecordSynthesis: %v", err)
				}
				if syn.Trigger != lineage.TriggerRequest || syn.Recommendations[0].SynthesisID != syn.ID {
					t.Fatalf("unexpected synthesis %+v", syn)
				}
				ids = append(ids, syn.ID)
			}

			exp, err := tracker.ExplainSynthesis(ctx, ids[0])
			if err != nil {
				t.Fatalf("ExplainSynthesis: %v", err)
			}
			if len(exp.Recommendations) != 2 || exp.Recommendations[1].Lineage.RecommendationID != "a-2" {
				t.Fatalf("unexpected synthesis explanation %+v", exp)
			}
			if exp.ConfidenceLevel != "low" {
				t.Fatalf("expected low level, got %s", exp.ConfidenceLevel)
			}

			page, err := tracker.History(ctx, "user-1", 2, 0)
			if err != nil {
				t.Fatalf("History: %v", err)
			}
			if page.Total != 3 || len(page.Syntheses) != 2 || page.Syntheses[0].ID != ids[2] || page.Syntheses[1].ID != ids[1] {
				t.Fatalf("unexpected first page %+v", page)
			}
			page, err = tracker.History(ctx, "user-1", 2, 2)
			if err != nil {
				t.Fatalf("History: %v", err)
			}
			if len(page.Syntheses) != 1 || page.Syntheses[0].ID != ids[0] || len(page.Syntheses[0].Recommendations) != 2 {
				t.Fatalf("unexpected second page %+v", page)
			}
			empty, err := tracker.History(ctx, "nobody", 0, 0)
			if err != nil || empty.Total != 0 || empty.Limit != lineage.DefaultHistoryLimit {
				t.Fatalf("unexpected empty history %+v err=%v", empty, err)
			}
		})
	}
}

func TestVerify(t *testing.T) {
	ctx := context.Background()
	tracker := lineage.NewTracker(lineage.NewMemoryStore())

	if _, err := tracker.Record(ctx, recordInput("orphan", nil, "", 0.4)); err != nil {
		t.Fatalf("Record: %v", err)
	}
	got, err := tracker.Verify(ctx, "orphan")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	want := lineage.VerifyResult{
		RecommendationID: "orphan",
		IsValid:          false,
		Issues:           []string{lineage.IssueNoSources, lineage.IssueNoPrimary},
		Warnings:         []string{lineage.WarningExploratory},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("verify mismatch (-want +got):\n%s", diff)
	}

	if _, err := tracker.Record(ctx, recordInput("sound", []string{"s1"}, "reason", 0.8)); err != nil {
		t.Fatalf("Record: %v", err)
	}
	got, _ = tracker.Verify(ctx, "sound")
	if !got.IsValid || len(got.Issues) != 0 || len(got.Warnings) != 0 {
		t.Fatalf("expected valid lineage, got %+v", got)
	}

	got, err = tracker.Verify(ctx, "missing")
	if err != nil {
		t.Fatalf("Verify missing: %v", err)
	}
	if got.IsValid || len(got.Issues) != 1 || got.Issues[0] != lineage.IssueNotFound {
		t.Fatalf("unexpected missing result %+v", got)
	}
}

func TestLookupErrors(t *testing.T) {
	ctx := context.Background()
	tracker := lineage.NewTracker(nil)
	if _, err := tracker.ExplainRecommendation(ctx, "nope"); !lineage.IsNotFound(err) || !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := tracker.ExplainSynthesis(ctx, ""); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := tracker.History(ctx, "user", -1, 0); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSQLiteReopenKeepsRecords(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "lineage.db")
	store, err := lineage.OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	tracker := lineage.NewTracker(store)
	if _, err := tracker.Record(ctx, recordInput("keep", []string{"s1"}, "reason", 0.7)); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := tracker.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := lineage.OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.GetRecommendation(ctx, "keep"); err != nil {
		t.Fatalf("expected persisted record, got %v", err)
	}
}

func TestVerifyBlankID(t *testing.T) {
	tracker := lineage.NewTracker(lineage.NewMemoryStore())
	got, err := tracker.Verify(context.Background(), " ")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got.IsValid || len(got.Issues) != 1 || got.Issues[0] != lineage.IssueMissingID {
		t.Fatalf("unexpected result %+v", got)
	}
}
