package synthesis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"lumen/internal/analysis"
	"lumen/internal/catalog"
	"lumen/internal/confidence"
	"lumen/internal/insight"
	"lumen/internal/logging"
	"lumen/internal/telemetry"
	"lumen/internal/textgen"
	"lumen/internal/tone"
)

// Synthesizer turns an analysis context into an insight via a text provider.
type Synthesizer struct {
	provider    textgen.Provider
	catalog     *catalog.Catalog
	logger      *slog.Logger
	tracer      trace.Tracer
	now         func() time.Time
	newID       func() string
	model       string
	maxTokens   int
	temperature float64
}

// Option customizes a Synthesizer.
type Option func(*Synthesizer)

// WithLogger sets the synthesizer logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Synthesizer) {
		if logger != nil {
			s.logger = logging.NewComponentLogger(logger, "synthesis")
		}
	}
}

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Synthesizer) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides insight and recommendation id generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Synthesizer) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithGeneration sets request-level model, token and temperature overrides.
// Zero values defer to the provider configuration.
func WithGeneration(model string, maxTokens int, temperature float64) Option {
	return func(s *Synthesizer) {
		s.model = model
		s.maxTokens = maxTokens
		s.temperature = temperature
	}
}

// New constructs a Synthesizer. A nil catalog uses catalog.Default().
func New(provider textgen.Provider, cat *catalog.Catalog, opts ...Option) *Synthesizer {
	if cat == nil {
		cat = catalog.Default()
	}
	s := &Synthesizer{
		provider: provider,
		catalog:  cat,
		logger:   logging.NewComponentLogger(nil, "synthesis"),
		tracer:   telemetry.Tracer("synthesis"),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the target catalog recommendations are resolved against.
func (s *Synthesizer) Catalog() *catalog.Catalog {
	return s.catalog
}

// Synthesize generates an insight for actx. Generation failures are returned
// unchanged (textgen.ErrGenerationUnavailable or the context error). A
// response that cannot be parsed is not an error: the insight comes back with
// Degraded set, no recommendations and insight.UnparsedPattern.
func (s *Synthesizer) Synthesize(ctx context.Context, actx analysis.Context, score confidence.Score) (*insight.Insight, error) {
	if s.provider == nil {
		return nil, fmt.Errorf("synthesize: %w", textgen.ErrGenerationUnavailable)
	}
	target := tone.Determine(score.Value)

	ctx, span := s.tracer.Start(ctx, "synthesis.synthesize", trace.WithAttributes(
		attribute.Int("synthesis.sessions", len(actx.Sessions)),
		attribute.Float64("synthesis.confidence", score.Value),
		attribute.String("synthesis.tone", string(target)),
	))
	defer span.End()

	req := textgen.Request{
		SystemPrompt: buildSystemPrompt(target, s.catalog.Targets()),
		Messages:     []textgen.Message{{Role: textgen.RoleUser, Content: buildUserPrompt(actx, score)}},
		Model:        s.model,
		MaxTokens:    s.maxTokens,
		Temperature:  s.temperature,
	}
	resp, err := s.provider.Complete(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		return nil, fmt.Errorf("synthesize: %w", err)
	}

	result := &insight.Insight{
		ID:          s.newID(),
		Confidence:  score,
		GeneratedBy: resp.Provider,
		CreatedAt:   s.now().UTC(),
		Status:      insight.StatusPending,
		Tone:        target,
	}

	logger := logging.WithContext(ctx, s.logger)
	parsedResp, ok := parseResponse(resp.Text, s.catalog)
	if !ok {
		result.PatternDescription = insight.UnparsedPattern
		result.Recommendations = []insight.Recommendation{}
		result.Degraded = true
		span.SetAttributes(attribute.Bool("synthesis.degraded", true))
		logging.WarnWithContext(logger, "generated response could not be parsed", "synthesis_parse_degraded",
			logging.String("provider", resp.Provider),
			logging.Int("response_chars", len(resp.Text)),
			logging.String(logging.FieldErrorHint, "inspect the provider output format"),
			logging.String(logging.FieldImpact, "user receives a generic pattern without recommendations"),
		)
		return result, nil
	}

	result.PatternDescription = parsedResp.Pattern
	result.Recommendations = make([]insight.Recommendation, 0, len(parsedResp.Recommendations))
	for _, rec := range parsedResp.Recommendations {
		result.Recommendations = append(result.Recommendations, insight.Recommendation{
			ID:        s.newID(),
			TargetID:  rec.Target.ID,
			Label:     rec.Label,
			Rationale: rec.Rationale,
		})
	}
	if len(parsedResp.Dropped) > 0 {
		logger.Info("dropped unknown recommendation targets",
			logging.String(logging.FieldEventType, "recommendation_dropped"),
			logging.Any("labels", parsedResp.Dropped),
		)
	}
	span.SetAttributes(attribute.Int("synthesis.recommendations", len(result.Recommendations)))
	return result, nil
}
