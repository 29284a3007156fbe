package guidance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"lumen/internal/analysis"
	"lumen/internal/guidancecache"
	"lumen/internal/insight"
	"lumen/internal/lineage"
	"lumen/internal/logging"
	"lumen/internal/metrics"
	"lumen/internal/session"
	"lumen/internal/synthesis"
	"lumen/internal/telemetry"
	"lumen/internal/textgen"
)

// DefaultUser is attributed to lineage when a call carries no user id.
const DefaultUser = "default"

// Options controls a single guidance call.
type Options struct {
	UserID       string
	ForceRefresh bool
	Trigger      lineage.Trigger
}

// Result is the guidance returned to a caller.
type Result struct {
	Insight     insight.Insight `json:"insight"`
	FromCache   bool            `json:"fromCache"`
	Shared      bool            `json:"shared,omitempty"`
	ContextHash string          `json:"contextHash"`
	CachedAt    time.Time       `json:"cachedAt,omitzero"`
}

// Service resolves guidance through the cache, the synthesizer and the
// lineage tracker.
type Service struct {
	synth          *synthesis.Synthesizer
	cache          *guidancecache.Cache
	tracker        *lineage.Tracker
	source         session.Source
	metrics        *metrics.Metrics
	logger         *slog.Logger
	tracer         trace.Tracer
	now            func() time.Time
	useConsistency bool
	defaultUser    string
	group          singleflight.Group
}

// Option customizes a Service.
type Option func(*Service)

// WithCache enables the guidance cache.
func WithCache(cache *guidancecache.Cache) Option {
	return func(s *Service) { s.cache = cache }
}

// WithTracker enables lineage recording.
func WithTracker(tracker *lineage.Tracker) Option {
	return func(s *Service) { s.tracker = tracker }
}

// WithSource sets where GuidanceFromHistory loads sessions from.
func WithSource(src session.Source) Option {
	return func(s *Service) { s.source = src }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logging.NewComponentLogger(logger, "guidance")
		}
	}
}

// WithClock overrides the time source used for scoring.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithConsistency enables the consistency term when scoring.
func WithConsistency(enabled bool) Option {
	return func(s *Service) { s.useConsistency = enabled }
}

// WithDefaultUser sets the user lineage is attributed to when none is given.
func WithDefaultUser(userID string) Option {
	return func(s *Service) {
		if userID != "" {
			s.defaultUser = userID
		}
	}
}

// New constructs a Service around synth.
func New(synth *synthesis.Synthesizer, opts ...Option) *Service {
	s := &Service{
		synth:       synth,
		logger:      logging.NewComponentLogger(nil, "guidance"),
		tracer:      telemetry.Tracer("guidance"),
		now:         time.Now,
		defaultUser: DefaultUser,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Cache returns the configured cache, or nil.
func (s *Service) Cache() *guidancecache.Cache { return s.cache }

// Tracker returns the configured lineage tracker, or nil.
func (s *Service) Tracker() *lineage.Tracker { return s.tracker }

// GuidanceFromHistory loads sessions from the configured source, aggregates
// them with the practice stack and prior insights, and resolves guidance.
func (s *Service) GuidanceFromHistory(ctx context.Context, practices []insight.PracticeRef, insights []insight.Insight, opts Options) (Result, error) {
	sessions, err := session.Load(ctx, s.source)
	if err != nil {
		return Result{}, fmt.Errorf("guidance: %w", err)
	}
	return s.Guidance(ctx, analysis.Aggregate(sessions, practices, insights), opts)
}

// Guidance returns a valid cached insight for actx or synthesizes a new one.
// Concurrent calls for the same user and context share one synthesis. When
// the caller that started a shared synthesis is cancelled, waiters whose own
// context is still live start a fresh one.
func (s *Service) Guidance(ctx context.Context, actx analysis.Context, opts Options) (Result, error) {
	if opts.UserID == "" {
		opts.UserID = s.defaultUser
	}
	if opts.Trigger == "" {
		opts.Trigger = lineage.TriggerRequest
		if opts.ForceRefresh {
			opts.Trigger = lineage.TriggerRefresh
		}
	}
	hash := analysis.Hash(actx)
	ctx = logging.WithUserID(ctx, opts.UserID)

	if s.cache != nil && !opts.ForceRefresh {
		if entry, ok := s.cache.Get(ctx, opts.UserID, hash); ok {
			attrs := append(logging.DecisionAttrs("guidance_source", "cache", "context unchanged within ttl"),
				logging.String(logging.FieldEventType, "cache_hit"),
				logging.String(logging.FieldContextHash, hash),
			)
			logging.WithContext(ctx, s.logger).Debug("guidance served from cache", logging.Args(attrs...)...)
			return Result{Insight: cloneInsight(entry.Insight), FromCache: true, ContextHash: hash, CachedAt: entry.CachedAt}, nil
		}
	}

	key := opts.UserID + "\x00" + hash
	for {
		ch := s.group.DoChan(key, func() (any, error) {
			return s.resolve(ctx, actx, hash, opts)
		})
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case res := <-ch:
			if res.Err != nil {
				if isCancellation(res.Err) && ctx.Err() == nil {
					continue
				}
				return Result{}, res.Err
			}
			ins := res.Val.(insight.Insight)
			return Result{Insight: cloneInsight(ins), Shared: res.Shared, ContextHash: hash}, nil
		}
	}
}

func (s *Service) resolve(ctx context.Context, actx analysis.Context, hash string, opts Options) (insight.Insight, error) {
	start := s.now()
	ctx, span := s.tracer.Start(ctx, "guidance.resolve", trace.WithAttributes(
		attribute.String("guidance.context_hash", hash),
		attribute.Int("guidance.sessions", len(actx.Sessions)),
		attribute.Bool("guidance.force_refresh", opts.ForceRefresh),
	))
	defer span.End()
	logger := logging.WithContext(ctx, s.logger).With(logging.String(logging.FieldContextHash, hash))

	if s.synth == nil {
		return insight.Insight{}, fmt.Errorf("guidance: %w", textgen.ErrGenerationUnavailable)
	}
	score := actx.Score(s.now(), s.useConsistency)
	span.SetAttributes(attribute.Float64("guidance.confidence", score.Value))

	fail := func(err error) (insight.Insight, error) {
		outcome := metrics.OutcomeFailure
		switch {
		case isCancellation(err):
			outcome = metrics.OutcomeCancelled
		case textgen.IsUnavailable(err):
			outcome = metrics.OutcomeUnavailable
		}
		s.metrics.RecordSynthesis(outcome, s.now().Sub(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		return insight.Insight{}, err
	}

	generated, err := s.synth.Synthesize(ctx, actx, score)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return fail(err)
	}
	ins := *generated
	ins.ContextHash = hash

	if !ins.Degraded {
		if changes := calibrate(&ins, score); len(changes) > 0 {
			ins.Adjustments = changes
			s.metrics.RecordToneAdjustment(string(ins.Tone))
			attrs := append(logging.DecisionAttrs("tone_calibration", string(ins.Tone), "generated wording did not match the evidence"),
				logging.String(logging.FieldEventType, "tone_adjusted"),
				logging.Confidence(score.Value),
				logging.Int("changes", len(changes)),
			)
			logger.Info("tone adjusted to match evidence", logging.Args(attrs...)...)
		}
		// A caller cancelled after generation gets nothing recorded or cached.
		if err := ctx.Err(); err != nil {
			return fail(err)
		}
		s.recordLineage(ctx, logger, &ins, actx, opts, hash)
		if err := ctx.Err(); err != nil {
			return fail(err)
		}
		s.store(ctx, logger, opts.UserID, hash, ins)
	}

	outcome := metrics.OutcomeSuccess
	if ins.Degraded {
		outcome = metrics.OutcomeDegraded
	}
	s.metrics.RecordSynthesis(outcome, s.now().Sub(start))
	span.SetAttributes(
		attribute.String("guidance.outcome", outcome),
		attribute.String("guidance.synthesis_id", ins.SynthesisID),
	)
	logger.Info("guidance synthesized",
		logging.String(logging.FieldEventType, "guidance_synthesized"),
		logging.String("generated_by", ins.GeneratedBy),
		logging.Int("recommendations", len(ins.Recommendations)),
		logging.Bool("degraded", ins.Degraded),
		logging.Duration("elapsed", s.now().Sub(start)),
	)
	return ins, nil
}

func (s *Service) recordLineage(ctx context.Context, logger *slog.Logger, ins *insight.Insight, actx analysis.Context, opts Options, hash string) {
	if s.tracker == nil || len(actx.Sessions) == 0 {
		return
	}
	in := synthesisInput(ins, actx, s.synth.Catalog(), opts.UserID, opts.Trigger, hash)
	syn, err := s.tracker.RecordSynthesis(ctx, in)
	if err != nil {
		s.metrics.RecordLineageFailure()
		logging.WarnWithContext(logger, "lineage write failed", "lineage_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the lineage store"),
			logging.String(logging.FieldImpact, "recommendations cannot be explained later"),
		)
		return
	}
	ins.SynthesisID = syn.ID
}

func (s *Service) store(ctx context.Context, logger *slog.Logger, userID, hash string, ins insight.Insight) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.Put(ctx, userID, hash, ins); err != nil {
		logging.WarnWithContext(logger, "guidance cache write failed", "cache_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the cache backend"),
			logging.String(logging.FieldImpact, "next request will regenerate guidance"),
		)
	}
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func cloneInsight(in insight.Insight) insight.Insight {
	out := in
	out.Recommendations = append([]insight.Recommendation(nil), in.Recommendations...)
	if out.Recommendations == nil {
		out.Recommendations = []insight.Recommendation{}
	}
	out.Adjustments = append([]string(nil), in.Adjustments...)
	return out
}
