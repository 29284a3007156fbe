package api_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"lumen/internal/api"
	"lumen/internal/guidance"
	"lumen/internal/insight"
	"lumen/internal/lineage"
	"lumen/internal/testsupport"
	"lumen/internal/textgen"
)

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		status    int
		kind      string
		retryable bool
		message   string
	}{
		{"missing lineage", lineage.ErrNotFound, http.StatusNotFound, "not_found", false, "Lineage record not found"},
		{"unavailable", &textgen.UnavailableError{Attempts: []textgen.Attempt{{Provider: "p", Err: errors.New("down")}}}, http.StatusServiceUnavailable, "unavailable", true, "guidance generation is temporarily unavailable"},
		{"plain", errors.New("boom"), http.StatusInternalServerError, "internal", false, "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := api.ErrorStatus(tt.err)
			if status != tt.status {
				t.Fatalf("status %d, want %d", status, tt.status)
			}
			want := api.ErrorResponse{Error: tt.message, Kind: tt.kind, Retryable: tt.retryable}
			if diff := cmp.Diff(want, body); diff != "" {
				t.Fatalf("body mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParsePage(t *testing.T) {
	limit, offset, err := api.ParsePage("10", "")
	if err != nil || limit != 10 || offset != 0 {
		t.Fatalf("ParsePage = %d, %d, %v", limit, offset, err)
	}
	for _, bad := range [][2]string{{"-1", ""}, {"abc", ""}, {"", "-5"}} {
		if _, _, err := api.ParsePage(bad[0], bad[1]); err == nil {
			t.Fatalf("expected error for %v", bad)
		} else if status, _ := api.ErrorStatus(err); status != http.StatusBadRequest {
			t.Fatalf("status %d for %v, want 400", status, bad)
		}
	}
}

func TestExplainServiceVerifyMissingRecord(t *testing.T) {
	svc := api.NewExplainService(testsupport.NewMemoryTracker(t))
	res, err := svc.Verify(context.Background(), api.VerifyRequest{RecommendationID: "nope"})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if res.IsValid || len(res.Issues) != 1 || res.Issues[0] != lineage.IssueNotFound {
		t.Fatalf("unexpected verify result %+v", res)
	}
	res, err = svc.Verify(context.Background(), api.VerifyRequest{RecommendationID: "  "})
	if err != nil {
		t.Fatalf("Verify empty id: %v", err)
	}
	if res.IsValid || len(res.Issues) != 1 || res.Issues[0] != lineage.IssueMissingID {
		t.Fatalf("unexpected verify result for empty id %+v", res)
	}
}

func TestExplainServiceHistoryNeverNil(t *testing.T) {
	svc := api.NewExplainService(testsupport.NewMemoryTracker(t))
	page, err := svc.History(context.Background(), "u1", 0, 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if page.Syntheses == nil {
		t.Fatal("expected empty, non-nil syntheses")
	}
	if page.Limit != lineage.DefaultHistoryLimit {
		t.Fatalf("limit %d, want default", page.Limit)
	}
}

type resolverFunc func(context.Context, []insight.PracticeRef, []insight.Insight, guidance.Options) (guidance.Result, error)

func (f resolverFunc) GuidanceFromHistory(ctx context.Context, p []insight.PracticeRef, i []insight.Insight, o guidance.Options) (guidance.Result, error) {
	return f(ctx, p, i, o)
}

func TestGuidanceServiceResolve(t *testing.T) {
	cachedAt := time.Date(2026, 3, 12, 9, 30, 0, 0, time.UTC)
	var gotOpts guidance.Options
	svc := api.NewGuidanceService(resolverFunc(func(_ context.Context, _ []insight.PracticeRef, _ []insight.Insight, o guidance.Options) (guidance.Result, error) {
		gotOpts = o
		return guidance.Result{
			Insight:     insight.Insight{ID: "i1", PatternDescription: "p"},
			FromCache:   true,
			ContextHash: "h",
			CachedAt:    cachedAt,
		}, nil
	}))

	resp, err := svc.Resolve(context.Background(), api.GuidanceRequest{UserID: "u1", ForceRefresh: true})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if gotOpts.UserID != "u1" || !gotOpts.ForceRefresh {
		t.Fatalf("options not forwarded: %+v", gotOpts)
	}
	if resp.CachedAt != "2026-03-12T09:30:00.000Z" {
		t.Fatalf("cachedAt %q", resp.CachedAt)
	}
	if resp.Insight.Recommendations == nil {
		t.Fatal("recommendations should render as an empty list")
	}

	var nilSvc *api.GuidanceService
	if _, err := nilSvc.Resolve(context.Background(), api.GuidanceRequest{}); !errors.Is(err, textgen.ErrGenerationUnavailable) {
		t.Fatalf("expected unavailable from nil service, got %v", err)
	}
}
