package textgen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"lumen/internal/logging"
	"lumen/internal/metrics"
	"lumen/internal/telemetry"
)

// Chain calls a primary provider and, when it fails, a fallback provider
// exactly once.
type Chain struct {
	primary  Provider
	fallback Provider
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
	now      func() time.Time
}

// ChainOption customizes a Chain.
type ChainOption func(*Chain)

// WithLogger sets the chain logger.
func WithLogger(logger *slog.Logger) ChainOption {
	return func(c *Chain) {
		if logger != nil {
			c.logger = logging.NewComponentLogger(logger, "textgen")
		}
	}
}

// WithMetrics records provider outcomes into m.
func WithMetrics(m *metrics.Metrics) ChainOption {
	return func(c *Chain) { c.metrics = m }
}

// NewChain builds a chain. Either provider may be nil; a chain with no
// providers always reports ErrGenerationUnavailable.
func NewChain(primary, fallback Provider, opts ...ChainOption) *Chain {
	chain := &Chain{
		primary:  primary,
		fallback: fallback,
		logger:   logging.NewComponentLogger(nil, "textgen"),
		tracer:   telemetry.Tracer("textgen"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(chain)
	}
	return chain
}

// Name describes the configured providers, e.g. "openrouter>gemini".
func (c *Chain) Name() string {
	if c == nil {
		return ""
	}
	names := make([]string, 0, 2)
	for _, p := range []Provider{c.primary, c.fallback} {
		if p != nil {
			names = append(names, p.Name())
		}
	}
	return strings.Join(names, ">")
}

// Complete returns the first usable response. Cancellation of ctx is returned
// as-is and stops the chain before the fallback is tried.
func (c *Chain) Complete(ctx context.Context, req Request) (Response, error) {
	ctx, span := c.tracer.Start(ctx, "textgen.complete")
	defer span.End()

	var attempts []Attempt
	for _, provider := range []Provider{c.primary, c.fallback} {
		if provider == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			span.SetStatus(codes.Error, "cancelled")
			return Response{}, err
		}
		resp, err := c.attempt(ctx, provider, req)
		if err == nil {
			span.SetAttributes(attribute.String("textgen.provider", resp.Provider))
			return resp, nil
		}
		if ctx.Err() != nil {
			c.metrics.RecordProviderRequest(provider.Name(), metrics.OutcomeCancelled)
			span.SetStatus(codes.Error, "cancelled")
			return Response{}, ctx.Err()
		}
		attempts = append(attempts, Attempt{Provider: provider.Name(), Err: err})
		logging.WarnWithContext(logging.WithContext(ctx, c.logger), "text generation provider failed", "provider_failed",
			logging.String("provider", provider.Name()),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check provider credentials and availability"),
			logging.String(logging.FieldImpact, "falling back to next provider if configured"),
		)
	}
	if len(attempts) == 0 {
		attempts = append(attempts, Attempt{Err: errors.New("no provider configured")})
	}
	unavailable := &UnavailableError{Attempts: attempts}
	span.RecordError(unavailable)
	span.SetStatus(codes.Error, "unavailable")
	return Response{}, unavailable
}

func (c *Chain) attempt(ctx context.Context, provider Provider, req Request) (Response, error) {
	ctx, span := c.tracer.Start(ctx, "textgen.provider", trace.WithAttributes(
		attribute.String("textgen.provider", provider.Name()),
	))
	defer span.End()

	started := c.now()
	resp, err := provider.Complete(ctx, req)
	elapsed := c.now().Sub(started)
	if err == nil && !resp.Usable() {
		reason := strings.TrimSpace(resp.Error)
		if reason == "" {
			reason = "empty response text"
		}
		err = fmt.Errorf("%s: %s", provider.Name(), reason)
	}
	if err != nil {
		c.metrics.RecordProviderRequest(provider.Name(), metrics.OutcomeFailure)
		span.RecordError(err)
		span.SetStatus(codes.Error, "provider failed")
		return Response{}, err
	}
	if resp.Provider == "" {
		resp.Provider = provider.Name()
	}
	c.metrics.RecordProviderRequest(provider.Name(), metrics.OutcomeSuccess)
	c.logger.Debug("text generation complete",
		logging.String("provider", resp.Provider),
		logging.String("model", resp.Model),
		logging.Duration("elapsed", elapsed),
	)
	return resp, nil
}
