package api

import (
	"time"

	"lumen/internal/guidance"
	"lumen/internal/insight"
)

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

// VerifyRequest asks for an integrity check of one recommendation's lineage.
type VerifyRequest struct {
	RecommendationID string `json:"recommendationId"`
}

// GuidanceRequest asks for guidance over the stored session history.
type GuidanceRequest struct {
	UserID       string                `json:"userId"`
	ForceRefresh bool                  `json:"forceRefresh"`
	Practices    []insight.PracticeRef `json:"practices"`
	Insights     []insight.Insight     `json:"insights"`
}

// GuidanceResponse carries the insight plus where it came from.
type GuidanceResponse struct {
	Insight     insight.Insight `json:"insight"`
	FromCache   bool            `json:"fromCache"`
	ContextHash string          `json:"contextHash"`
	CachedAt    string          `json:"cachedAt,omitempty"`
}

// DaemonStatus summarizes the running daemon for health checks.
type DaemonStatus struct {
	Status         string   `json:"status"`
	Running        bool     `json:"running"`
	PID            int      `json:"pid"`
	StartedAt      string   `json:"startedAt,omitempty"`
	LockFilePath   string   `json:"lockFilePath,omitempty"`
	Generator      string   `json:"generator,omitempty"`
	Providers      []string `json:"providers"`
	LineageBackend string   `json:"lineageBackend"`
	CacheBackend   string   `json:"cacheBackend"`
}

// FromGuidanceResult converts a guidance result to its wire form.
func FromGuidanceResult(res guidance.Result) GuidanceResponse {
	out := GuidanceResponse{
		Insight:     res.Insight,
		FromCache:   res.FromCache,
		ContextHash: res.ContextHash,
	}
	if out.Insight.Recommendations == nil {
		out.Insight.Recommendations = []insight.Recommendation{}
	}
	out.CachedAt = formatTime(res.CachedAt)
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}

// FormatTime renders t the way API payloads do. Zero times render empty.
func FormatTime(t time.Time) string {
	return formatTime(t)
}
