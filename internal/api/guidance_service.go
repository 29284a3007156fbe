package api

import (
	"context"

	"lumen/internal/guidance"
	"lumen/internal/insight"
	"lumen/internal/textgen"
)

// GuidanceResolver produces guidance from the stored session history.
type GuidanceResolver interface {
	GuidanceFromHistory(ctx context.Context, practices []insight.PracticeRef, insights []insight.Insight, opts guidance.Options) (guidance.Result, error)
}

// GuidanceService adapts a resolver to the wire format.
type GuidanceService struct {
	resolver GuidanceResolver
}

// NewGuidanceService constructs a GuidanceService around resolver.
func NewGuidanceService(resolver GuidanceResolver) *GuidanceService {
	if resolver == nil {
		return nil
	}
	return &GuidanceService{resolver: resolver}
}

// Resolve answers a guidance request.
func (s *GuidanceService) Resolve(ctx context.Context, req GuidanceRequest) (GuidanceResponse, error) {
	if s == nil {
		return GuidanceResponse{}, textgen.ErrGenerationUnavailable
	}
	res, err := s.resolver.GuidanceFromHistory(ctx, req.Practices, req.Insights, guidance.Options{
		UserID:       req.UserID,
		ForceRefresh: req.ForceRefresh,
	})
	if err != nil {
		return GuidanceResponse{}, err
	}
	return FromGuidanceResult(res), nil
}
