package lineage

import (
	"context"
	"fmt"
	"strings"

	"lumen/internal/confidence"
)

// Explanation answers "why was I told this" for one recommendation.
type Explanation struct {
	Lineage         RecommendationLineage `json:"lineage"`
	ConfidenceLevel confidence.Level      `json:"confidenceLevel"`
	Summary         string                `json:"summary"`
	SessionCount    int                   `json:"sessionCount"`
	Exploratory     bool                  `json:"exploratory"`
}

// SynthesisExplanation explains a whole synthesis result.
type SynthesisExplanation struct {
	Synthesis       SynthesisLineage `json:"synthesis"`
	ConfidenceLevel confidence.Level `json:"confidenceLevel"`
	Summary         string           `json:"summary"`
	Recommendations []Explanation    `json:"recommendations"`
}

// ExplainRecommendation reads the lineage for id and renders it. It never
// writes.
func (t *Tracker) ExplainRecommendation(ctx context.Context, id string) (Explanation, error) {
	rec, err := t.Lineage(ctx, id)
	if err != nil {
		return Explanation{}, err
	}
	return explain(rec), nil
}

// ExplainSynthesis reads a synthesis and explains each recommendation in it.
func (t *Tracker) ExplainSynthesis(ctx context.Context, id string) (SynthesisExplanation, error) {
	syn, err := t.Synthesis(ctx, id)
	if err != nil {
		return SynthesisExplanation{}, err
	}
	out := SynthesisExplanation{
		Synthesis:       syn,
		ConfidenceLevel: confidence.LevelFor(syn.OverallConfidence),
		Recommendations: make([]Explanation, 0, len(syn.Recommendations)),
	}
	for _, rec := range syn.Recommendations {
		out.Recommendations = append(out.Recommendations, explain(rec))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Generated %d recommendation(s) from %s", len(syn.Recommendations), orDefault(syn.ContextSummary, "your session history"))
	fmt.Fprintf(&b, " at %s confidence (%.2f)", out.ConfidenceLevel, syn.OverallConfidence)
	if syn.PatternSummary != "" {
		fmt.Fprintf(&b, ". Pattern: %s", syn.PatternSummary)
	}
	b.WriteString(".")
	out.Summary = b.String()
	return out, nil
}

func explain(rec RecommendationLineage) Explanation {
	level := confidence.LevelFor(rec.ConfidenceScore)
	var b strings.Builder
	fmt.Fprintf(&b, "Recommended %s", orDefault(rec.Label, rec.TargetID))
	if rec.PrimaryReason != "" {
		fmt.Fprintf(&b, " because %s", strings.TrimRight(rec.PrimaryReason, "."))
	}
	fmt.Fprintf(&b, ". Based on %d session(s) and %d detected pattern(s) at %s confidence (%.2f).",
		len(rec.ContributingSessionIDs), len(rec.DetectedPatterns), level, rec.ConfidenceScore)
	exploratory := rec.ConfidenceScore < lowConfidenceThreshold
	if exploratory {
		b.WriteString(" This is an exploratory suggestion.")
	}
	return Explanation{
		Lineage:         rec,
		ConfidenceLevel: level,
		Summary:         b.String(),
		SessionCount:    len(rec.ContributingSessionIDs),
		Exploratory:     exploratory,
	}
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
