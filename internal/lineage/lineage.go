package lineage

import (
	"fmt"
	"time"

	"lumen/internal/services"
)

var (
	// ErrNotFound reports a missing lineage record.
	ErrNotFound = fmt.Errorf("%w: lineage record", services.ErrNotFound)
	// ErrDuplicate reports an attempt to overwrite an immutable record.
	ErrDuplicate = fmt.Errorf("%w: lineage record already exists", services.ErrValidation)
)

// Trigger describes what caused a synthesis.
type Trigger string

const (
	TriggerRequest Trigger = "guidance_request"
	TriggerRefresh Trigger = "forced_refresh"
)

// RecommendationLineage is the evidence behind one recommendation. Records
// are immutable once stored.
type RecommendationLineage struct {
	RecommendationID       string    `json:"recommendationId"`
	SynthesisID            string    `json:"synthesisId,omitempty"`
	UserID                 string    `json:"userId"`
	TargetID               string    `json:"targetId"`
	Label                  string    `json:"label"`
	ContributingSessionIDs []string  `json:"contributingSessionIds"`
	DetectedPatterns       []string  `json:"detectedPatterns"`
	PrimaryReason          string    `json:"primaryReason"`
	SecondaryReasons       []string  `json:"secondaryReasons"`
	ConfidenceScore        float64   `json:"confidenceScore"`
	GeneratedBy            string    `json:"generatedBy"`
	CreatedAt              time.Time `json:"createdAt"`
}

// SynthesisLineage groups the recommendations produced by one synthesis call.
type SynthesisLineage struct {
	ID                string                  `json:"id"`
	UserID            string                  `json:"userId"`
	Trigger           Trigger                 `json:"trigger"`
	ContextSummary    string                  `json:"contextSummary"`
	ContextHash       string                  `json:"contextHash"`
	PatternSummary    string                  `json:"patternSummary,omitempty"`
	RecommendationIDs []string                `json:"recommendationIds"`
	Recommendations   []RecommendationLineage `json:"recommendations"`
	OverallConfidence float64                 `json:"overallConfidence"`
	GeneratedBy       string                  `json:"generatedBy"`
	CreatedAt         time.Time               `json:"createdAt"`
}

func cloneRecommendation(r RecommendationLineage) RecommendationLineage {
	r.ContributingSessionIDs = cloneStrings(r.ContributingSessionIDs)
	r.DetectedPatterns = cloneStrings(r.DetectedPatterns)
	r.SecondaryReasons = cloneStrings(r.SecondaryReasons)
	return r
}

func cloneSynthesis(s SynthesisLineage) SynthesisLineage {
	s.RecommendationIDs = cloneStrings(s.RecommendationIDs)
	recs := make([]RecommendationLineage, 0, len(s.Recommendations))
	for _, r := range s.Recommendations {
		recs = append(recs, cloneRecommendation(r))
	}
	s.Recommendations = recs
	return s
}

// cloneStrings copies values, normalizing nil to an empty slice so JSON
// renders [] rather than null.
func cloneStrings(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	return out
}
