package lineage

import (
	"context"
	"errors"
	"strings"
)

const lowConfidenceThreshold = 0.5

// Integrity messages reported by Verify.
const (
	IssueNoSources     = "No contributing insights found"
	IssueNoPrimary     = "Primary reason is missing"
	IssueNotFound      = "Lineage record not found"
	IssueMissingID     = "Recommendation id is missing"
	WarningExploratory = "Low confidence: exploratory only"
)

// VerifyResult reports lineage integrity. Issues make a record invalid;
// warnings do not.
type VerifyResult struct {
	RecommendationID string   `json:"recommendationId"`
	IsValid          bool     `json:"isValid"`
	Issues           []string `json:"issues"`
	Warnings         []string `json:"warnings"`
}

// Verify checks the lineage for id. Integrity problems, including a missing
// record, are returned as data; only store failures produce an error.
func (t *Tracker) Verify(ctx context.Context, id string) (VerifyResult, error) {
	result := VerifyResult{RecommendationID: strings.TrimSpace(id), Issues: []string{}, Warnings: []string{}}
	if result.RecommendationID == "" {
		result.Issues = append(result.Issues, IssueMissingID)
		return result, nil
	}
	rec, err := t.store.GetRecommendation(ctx, result.RecommendationID)
	if errors.Is(err, ErrNotFound) {
		result.Issues = append(result.Issues, IssueNotFound)
		return result, nil
	}
	if err != nil {
		return VerifyResult{}, err
	}
	return check(rec), nil
}

func check(rec RecommendationLineage) VerifyResult {
	result := VerifyResult{RecommendationID: rec.RecommendationID, Issues: []string{}, Warnings: []string{}}
	if len(rec.ContributingSessionIDs) == 0 {
		result.Issues = append(result.Issues, IssueNoSources)
	}
	if strings.TrimSpace(rec.PrimaryReason) == "" {
		result.Issues = append(result.Issues, IssueNoPrimary)
	}
	if rec.ConfidenceScore < lowConfidenceThreshold {
		result.Warnings = append(result.Warnings, WarningExploratory)
	}
	result.IsValid = len(result.Issues) == 0
	return result
}
