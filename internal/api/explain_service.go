package api

import (
	"context"
	"strings"

	"lumen/internal/lineage"
)

// LineageReader abstracts the read-only lineage queries the API exposes.
type LineageReader interface {
	ExplainRecommendation(ctx context.Context, id string) (lineage.Explanation, error)
	ExplainSynthesis(ctx context.Context, id string) (lineage.SynthesisExplanation, error)
	Lineage(ctx context.Context, id string) (lineage.RecommendationLineage, error)
	History(ctx context.Context, userID string, limit, offset int) (lineage.HistoryPage, error)
	Verify(ctx context.Context, id string) (lineage.VerifyResult, error)
}

// ExplainService exposes lineage queries. None of its methods write.
type ExplainService struct {
	reader LineageReader
}

// NewExplainService constructs an ExplainService around reader.
func NewExplainService(reader LineageReader) *ExplainService {
	if reader == nil {
		return nil
	}
	return &ExplainService{reader: reader}
}

// Recommendation explains why a recommendation was made.
func (s *ExplainService) Recommendation(ctx context.Context, id string) (lineage.Explanation, error) {
	if s == nil {
		return lineage.Explanation{}, lineage.ErrNotFound
	}
	return s.reader.ExplainRecommendation(ctx, id)
}

// Synthesis explains a whole synthesis.
func (s *ExplainService) Synthesis(ctx context.Context, id string) (lineage.SynthesisExplanation, error) {
	if s == nil {
		return lineage.SynthesisExplanation{}, lineage.ErrNotFound
	}
	return s.reader.ExplainSynthesis(ctx, id)
}

// Lineage returns the raw record behind a recommendation.
func (s *ExplainService) Lineage(ctx context.Context, id string) (lineage.RecommendationLineage, error) {
	if s == nil {
		return lineage.RecommendationLineage{}, lineage.ErrNotFound
	}
	return s.reader.Lineage(ctx, id)
}

// History pages through a user's syntheses.
func (s *ExplainService) History(ctx context.Context, userID string, limit, offset int) (lineage.HistoryPage, error) {
	if s == nil {
		return lineage.HistoryPage{UserID: userID, Syntheses: []lineage.SynthesisLineage{}}, nil
	}
	page, err := s.reader.History(ctx, userID, limit, offset)
	if err != nil {
		return lineage.HistoryPage{}, err
	}
	if page.Syntheses == nil {
		page.Syntheses = []lineage.SynthesisLineage{}
	}
	return page, nil
}

// Verify checks a recommendation's lineage. A missing id or record is
// reported in the result, not as an error.
func (s *ExplainService) Verify(ctx context.Context, req VerifyRequest) (lineage.VerifyResult, error) {
	id := strings.TrimSpace(req.RecommendationID)
	if id == "" {
		return lineage.VerifyResult{Issues: []string{lineage.IssueMissingID}, Warnings: []string{}}, nil
	}
	if s == nil {
		return lineage.VerifyResult{RecommendationID: id, Issues: []string{lineage.IssueNotFound}, Warnings: []string{}}, nil
	}
	return s.reader.Verify(ctx, id)
}
