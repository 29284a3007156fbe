package session

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Summary is the uniform view of one completed session. It is immutable once
// built.
type Summary struct {
	ID         string            `json:"id"`
	Kind       Kind              `json:"kind"`
	OccurredAt time.Time         `json:"occurredAt"`
	KeyFacts   []string          `json:"keyFacts"`
	Markers    map[string]string `json:"markers,omitempty"`
	Raw        json.RawMessage   `json:"raw,omitempty"`
}

// HasFact reports whether the summary carries fact verbatim.
func (s Summary) HasFact(fact string) bool {
	for _, f := range s.KeyFacts {
		if f == fact {
			return true
		}
	}
	return false
}

// GenericFact is the fallback key fact for sessions with nothing extractable.
func GenericFact(kind Kind) string {
	return "Completed a " + kind.Label() + " session"
}

var (
	idKeys   = []string{"id", "sessionId", "session_id", "_id"}
	timeKeys = []string{"completedAt", "completed_at", "createdAt", "created_at", "timestamp", "date"}
)

// Normalize converts one raw session into a Summary. It never fails: absent or
// malformed fields collapse to the generic fact for the kind.
func Normalize(raw map[string]any, kind Kind) Summary {
	summary := Summary{
		Kind:       kind,
		OccurredAt: occurredAt(raw),
	}
	if encoded, err := json.Marshal(raw); err == nil && raw != nil {
		summary.Raw = encoded
	}
	summary.ID = sessionID(raw, kind, summary.Raw)

	for _, rule := range kindRules[kind] {
		fact, markerValue, ok := rule.apply(raw)
		if !ok {
			continue
		}
		summary.KeyFacts = append(summary.KeyFacts, fact)
		if rule.marker != "" && markerValue != "" {
			if summary.Markers == nil {
				summary.Markers = make(map[string]string)
			}
			summary.Markers[rule.marker] = markerValue
		}
		if len(summary.KeyFacts) == maxKeyFacts {
			break
		}
	}
	if len(summary.KeyFacts) == 0 {
		summary.KeyFacts = []string{GenericFact(kind)}
	}
	return summary
}

// NormalizeAll normalizes every raw session and orders the result
// most-recent-first. Ties keep input order.
func NormalizeAll(raws []RawSession) []Summary {
	out := make([]Summary, 0, len(raws))
	for _, r := range raws {
		out = append(out, Normalize(r.Data, r.Kind))
	}
	SortRecentFirst(out)
	return out
}

// SortRecentFirst orders summaries newest first, keeping input order on ties.
func SortRecentFirst(summaries []Summary) {
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].OccurredAt.After(summaries[j].OccurredAt)
	})
}

func sessionID(raw map[string]any, kind Kind, encoded []byte) string {
	for _, key := range idKeys {
		switch v := raw[key].(type) {
		case string:
			if id := strings.TrimSpace(v); id != "" {
				return id
			}
		case float64:
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				return strconv.FormatFloat(v, 'f', -1, 64)
			}
		}
	}
	// Records without an id get a content-derived one so hashing stays stable.
	sum := sha256.Sum256(append([]byte(string(kind)+":"), encoded...))
	return string(kind) + "-" + hex.EncodeToString(sum[:6])
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

func occurredAt(raw map[string]any) time.Time {
	for _, key := range timeKeys {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		if ts, ok := parseTimestamp(v); ok {
			return ts
		}
	}
	return time.Time{}
}

func parseTimestamp(v any) (time.Time, bool) {
	switch value := v.(type) {
	case string:
		s := strings.TrimSpace(value)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range timeLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts.UTC(), true
			}
		}
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return fromEpoch(n)
		}
	case float64:
		return fromEpoch(value)
	case int64:
		return fromEpoch(float64(value))
	}
	return time.Time{}, false
}

// fromEpoch accepts unix milliseconds, falling back to seconds for small values.
func fromEpoch(n float64) (time.Time, bool) {
	if math.IsNaN(n) || math.IsInf(n, 0) || n <= 0 {
		return time.Time{}, false
	}
	if n < 1e11 {
		return time.Unix(int64(n), 0).UTC(), true
	}
	return time.UnixMilli(int64(n)).UTC(), true
}
