package lineage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"lumen/internal/insight"
	"lumen/internal/logging"
	"lumen/internal/services"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// Reasoning explains why a recommendation was made.
type Reasoning struct {
	Primary   string
	Secondary []string
	Patterns  []string
}

// RecordInput describes one recommendation to record.
type RecordInput struct {
	Recommendation insight.Recommendation
	UserID         string
	SynthesisID    string
	Sources        []string
	Reasoning      Reasoning
	Confidence     float64
	GeneratedBy    string
}

// SynthesisInput describes a synthesis and the recommendations it produced.
type SynthesisInput struct {
	ID                string
	UserID            string
	Trigger           Trigger
	ContextSummary    string
	ContextHash       string
	PatternSummary    string
	OverallConfidence float64
	GeneratedBy       string
	Recommendations   []RecordInput
}

// HistoryPage is one page of a user's synthesis history.
type HistoryPage struct {
	UserID    string             `json:"userId"`
	Syntheses []SynthesisLineage `json:"syntheses"`
	Total     int                `json:"total"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
}

// Tracker is the single source of truth for why a recommendation was made.
type Tracker struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// TrackerOption customizes a Tracker.
type TrackerOption func(*Tracker)

// WithLogger sets the tracker logger.
func WithLogger(logger *slog.Logger) TrackerOption {
	return func(t *Tracker) {
		if logger != nil {
			t.logger = logging.NewComponentLogger(logger, "lineage")
		}
	}
}

// WithClock overrides the record timestamp source.
func WithClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// NewTracker wraps store. A nil store falls back to an in-memory store.
func NewTracker(store Store, opts ...TrackerOption) *Tracker {
	if store == nil {
		store = NewMemoryStore()
	}
	t := &Tracker{
		store:  store,
		logger: logging.NewComponentLogger(nil, "lineage"),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Close releases the underlying store.
func (t *Tracker) Close() error {
	return t.store.Close()
}

// Record stores lineage for a single recommendation.
func (t *Tracker) Record(ctx context.Context, in RecordInput) (RecommendationLineage, error) {
	rec, err := t.build(in, t.now().UTC())
	if err != nil {
		return RecommendationLineage{}, err
	}
	if err := t.store.PutRecommendation(ctx, rec); err != nil {
		return RecommendationLineage{}, fmt.Errorf("record lineage: %w", err)
	}
	return rec, nil
}

// RecordSynthesis stores a synthesis and all of its recommendations in one
// write.
func (t *Tracker) RecordSynthesis(ctx context.Context, in SynthesisInput) (SynthesisLineage, error) {
	now := t.now().UTC()
	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = t.newID()
	}
	if strings.TrimSpace(in.UserID) == "" {
		return SynthesisLineage{}, services.Wrap(services.ErrValidation, "lineage", "record synthesis", "user id required", nil)
	}
	trigger := in.Trigger
	if trigger == "" {
		trigger = TriggerRequest
	}
	syn := SynthesisLineage{
		ID:                id,
		UserID:            in.UserID,
		Trigger:           trigger,
		ContextSummary:    in.ContextSummary,
		ContextHash:       in.ContextHash,
		PatternSummary:    in.PatternSummary,
		RecommendationIDs: make([]string, 0, len(in.Recommendations)),
		Recommendations:   make([]RecommendationLineage, 0, len(in.Recommendations)),
		OverallConfidence: in.OverallConfidence,
		GeneratedBy:       in.GeneratedBy,
		CreatedAt:         now,
	}
	for _, recIn := range in.Recommendations {
		recIn.SynthesisID = id
		if recIn.UserID == "" {
			recIn.UserID = in.UserID
		}
		if recIn.GeneratedBy == "" {
			recIn.GeneratedBy = in.GeneratedBy
		}
		rec, err := t.build(recIn, now)
		if err != nil {
			return SynthesisLineage{}, err
		}
		syn.RecommendationIDs = append(syn.RecommendationIDs, rec.RecommendationID)
		syn.Recommendations = append(syn.Recommendations, rec)
	}
	if err := t.store.PutSynthesis(ctx, syn); err != nil {
		return SynthesisLineage{}, fmt.Errorf("record synthesis lineage: %w", err)
	}
	t.logger.Debug("synthesis lineage recorded",
		logging.String(logging.FieldSynthesisID, syn.ID),
		logging.Int("recommendations", len(syn.Recommendations)),
	)
	return syn, nil
}

func (t *Tracker) build(in RecordInput, now time.Time) (RecommendationLineage, error) {
	id := strings.TrimSpace(in.Recommendation.ID)
	if id == "" {
		return RecommendationLineage{}, services.Wrap(services.ErrValidation, "lineage", "record", "recommendation id required", nil)
	}
	return RecommendationLineage{
		RecommendationID:       id,
		SynthesisID:            in.SynthesisID,
		UserID:                 in.UserID,
		TargetID:               in.Recommendation.TargetID,
		Label:                  in.Recommendation.Label,
		ContributingSessionIDs: uniqueStrings(in.Sources),
		DetectedPatterns:       uniqueStrings(in.Reasoning.Patterns),
		PrimaryReason:          strings.TrimSpace(in.Reasoning.Primary),
		SecondaryReasons:       nonEmpty(in.Reasoning.Secondary),
		ConfidenceScore:        in.Confidence,
		GeneratedBy:            in.GeneratedBy,
		CreatedAt:              now,
	}, nil
}

// Lineage returns the raw recommendation record.
func (t *Tracker) Lineage(ctx context.Context, id string) (RecommendationLineage, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return RecommendationLineage{}, services.Wrap(services.ErrValidation, "lineage", "lookup", "recommendation id required", nil)
	}
	return t.store.GetRecommendation(ctx, id)
}

// Synthesis returns the raw synthesis record with its recommendations.
func (t *Tracker) Synthesis(ctx context.Context, id string) (SynthesisLineage, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return SynthesisLineage{}, services.Wrap(services.ErrValidation, "lineage", "lookup", "synthesis id required", nil)
	}
	return t.store.GetSynthesis(ctx, id)
}

// History pages through a user's syntheses, newest first. A zero limit uses
// DefaultHistoryLimit; larger limits are capped at MaxHistoryLimit.
func (t *Tracker) History(ctx context.Context, userID string, limit, offset int) (HistoryPage, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return HistoryPage{}, services.Wrap(services.ErrValidation, "lineage", "history", "user id required", nil)
	}
	if limit < 0 || offset < 0 {
		return HistoryPage{}, services.Wrap(services.ErrValidation, "lineage", "history", "limit and offset must be non-negative", nil)
	}
	if limit == 0 {
		limit = DefaultHistoryLimit
	}
	limit = min(limit, MaxHistoryLimit)
	items, total, err := t.store.ListSyntheses(ctx, userID, limit, offset)
	if err != nil {
		return HistoryPage{}, fmt.Errorf("lineage history: %w", err)
	}
	return HistoryPage{UserID: userID, Syntheses: items, Total: total, Limit: limit, Offset: offset}, nil
}

// IsNotFound reports whether err is a missing-record error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
