package synthesis_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"lumen/internal/analysis"
	"lumen/internal/catalog"
	"lumen/internal/confidence"
	"lumen/internal/insight"
	"lumen/internal/session"
	"lumen/internal/synthesis"
	"lumen/internal/textgen"
	"lumen/internal/tone"
)

type recordingProvider struct {
	text string
	err  error
	req  textgen.Request
}

func (p *recordingProvider) Name() string { return "scripted" }

func (p *recordingProvider) Complete(_ context.Context, req textgen.Request) (textgen.Response, error) {
	p.req = req
	if p.err != nil {
		return textgen.Response{}, p.err
	}
	return textgen.Response{Success: true, Text: p.text, Provider: "scripted"}, nil
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func sampleContext() analysis.Context {
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	sessions := []session.Summary{
		session.Normalize(map[string]any{"id": "s1", "completedAt": at.Format(time.RFC3339)}, session.KindShadowWork),
	}
	return analysis.Aggregate(sessions, []insight.PracticeRef{{ID: "meditation", Name: "Morning sit"}}, nil)
}

func TestSynthesizeBuildsInsight(t *testing.T) {
	provider := &recordingProvider{text: "PATTERN: You might be avoiding rest.\n---\n- body-scan | Rationale: Notice tension."}
	now := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	s := synthesis.New(provider, catalog.Default(),
		synthesis.WithClock(func() time.Time { return now }),
		synthesis.WithIDGenerator(sequentialIDs()),
		synthesis.WithGeneration("", 900, 0.5),
	)
	score := confidence.Compute(1, 0, 0, nil)

	got, err := s.Synthesize(context.Background(), sampleContext(), score)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if got.ID != "id-1" || got.GeneratedBy != "scripted" || !got.CreatedAt.Equal(now) {
		t.Fatalf("unexpected insight header %+v", got)
	}
	if got.Tone != tone.Exploratory || got.Degraded || got.Status != insight.StatusPending {
		t.Fatalf("unexpected insight state %+v", got)
	}
	if len(got.Recommendations) != 1 || got.Recommendations[0].ID != "id-2" || got.Recommendations[0].TargetID != "body-scan" {
		t.Fatalf("unexpected recommendations %+v", got.Recommendations)
	}

	if provider.req.MaxTokens != 900 || provider.req.Temperature != 0.5 {
		t.Fatalf("generation options not forwarded: %+v", provider.req)
	}
	if !strings.Contains(provider.req.SystemPrompt, tone.Exploratory.Instruction()) {
		t.Fatal("system prompt missing tone instruction")
	}
	for _, id := range catalog.Default().IDs() {
		if !strings.Contains(provider.req.SystemPrompt, id) {
			t.Fatalf("system prompt missing catalog id %q", id)
		}
	}
	if len(provider.req.Messages) != 1 || !strings.Contains(provider.req.Messages[0].Content, "shadow work") {
		t.Fatalf("user prompt missing session history: %+v", provider.req.Messages)
	}
}

func TestSynthesizeDegradedOnUnparseable(t *testing.T) {
	provider := &recordingProvider{text: "Here are some thoughts without structure."}
	got, err := synthesis.New(provider, nil).Synthesize(context.Background(), sampleContext(), confidence.Compute(5, 0, 0, nil))
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if !got.Degraded || got.PatternDescription != insight.UnparsedPattern || len(got.Recommendations) != 0 {
		t.Fatalf("expected degraded insight, got %+v", got)
	}
}

func TestSynthesizePropagatesUnavailable(t *testing.T) {
	chain := textgen.NewChain(&recordingProvider{err: errors.New("down")}, &recordingProvider{err: errors.New("down too")})
	_, err := synthesis.New(chain, nil).Synthesize(context.Background(), sampleContext(), confidence.Compute(3, 0, 0, nil))
	if !errors.Is(err, textgen.ErrGenerationUnavailable) {
		t.Fatalf("expected ErrGenerationUnavailable, got %v", err)
	}
}

func TestSynthesizeWithoutProvider(t *testing.T) {
	_, err := synthesis.New(nil, nil).Synthesize(context.Background(), sampleContext(), confidence.Compute(3, 0, 0, nil))
	if !textgen.IsUnavailable(err) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}
