package analysis

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"lumen/internal/insight"
	"lumen/internal/session"
)

// Context is everything synthesis needs about a user's history. It is built
// fresh per request and never mutated afterwards.
type Context struct {
	PracticeStack        []insight.PracticeRef `json:"practiceStack"`
	Sessions             []session.Summary     `json:"sessions"`
	PendingPatterns      []string              `json:"pendingPatterns"`
	DevelopmentalMarkers map[string]string     `json:"developmentalMarkers,omitempty"`
}

// markerKinds are the session kinds allowed to set developmental markers.
var markerKinds = map[session.Kind]bool{
	session.KindAttachmentAssessment:    true,
	session.KindDevelopmentalAssessment: true,
	session.KindSubjectObject:           true,
}

// Aggregate builds a Context. Sessions are ordered most-recent-first, practices
// are deduplicated by id, and pending patterns are the sorted union of every
// pending insight's pattern description.
func Aggregate(sessions []session.Summary, practices []insight.PracticeRef, insights []insight.Insight) Context {
	ordered := append([]session.Summary(nil), sessions...)
	session.SortRecentFirst(ordered)

	ctx := Context{
		PracticeStack:   dedupePractices(practices),
		Sessions:        ordered,
		PendingPatterns: pendingPatterns(insights),
	}

	for _, s := range ordered {
		if !markerKinds[s.Kind] {
			continue
		}
		for key, value := range s.Markers {
			if ctx.DevelopmentalMarkers == nil {
				ctx.DevelopmentalMarkers = make(map[string]string)
			}
			if _, taken := ctx.DevelopmentalMarkers[key]; !taken {
				ctx.DevelopmentalMarkers[key] = value
			}
		}
	}
	return ctx
}

func dedupePractices(practices []insight.PracticeRef) []insight.PracticeRef {
	seen := make(map[string]bool, len(practices))
	out := make([]insight.PracticeRef, 0, len(practices))
	for _, p := range practices {
		id := strings.TrimSpace(p.ID)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		p.ID = id
		out = append(out, p)
	}
	return out
}

func pendingPatterns(insights []insight.Insight) []string {
	set := make(map[string]struct{})
	for _, in := range insights {
		if !in.Pending() {
			continue
		}
		if pattern := strings.TrimSpace(in.PatternDescription); pattern != "" {
			set[pattern] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Latest returns the most recent session.
func (c Context) Latest() (session.Summary, bool) {
	if len(c.Sessions) == 0 {
		return session.Summary{}, false
	}
	return c.Sessions[0], true
}

// PracticeIDs returns the sorted practice identifiers.
func (c Context) PracticeIDs() []string {
	ids := make([]string, 0, len(c.PracticeStack))
	for _, p := range c.PracticeStack {
		ids = append(ids, p.ID)
	}
	sort.Strings(ids)
	return ids
}

// Describe renders a one-line summary used in lineage records and logs.
func (c Context) Describe() string {
	kinds := make(map[session.Kind]bool)
	for _, s := range c.Sessions {
		kinds[s.Kind] = true
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d session(s) across %d kind(s); %d practice(s); %d pending pattern(s)",
		len(c.Sessions), len(kinds), len(c.PracticeStack), len(c.PendingPatterns))
	if latest, ok := c.Latest(); ok {
		fmt.Fprintf(&b, "; latest: %s", latest.Kind.Label())
		if !latest.OccurredAt.IsZero() {
			b.WriteString(" on " + latest.OccurredAt.Format(time.DateOnly))
		}
	}
	return b.String()
}

type hashInput struct {
	Practices []string          `json:"practices"`
	Count     int               `json:"count"`
	Latest    *latestRef        `json:"latest,omitempty"`
	Pending   []string          `json:"pending"`
	Markers   map[string]string `json:"markers,omitempty"`
}

type latestRef struct {
	ID         string       `json:"id"`
	Kind       session.Kind `json:"kind"`
	OccurredAt string       `json:"occurredAt"`
}

// Hash fingerprints the parts of a context that decide whether cached guidance
// is still current: practice ids, session count, the latest session, pending
// patterns and markers. Reordering older sessions leaves it unchanged.
func Hash(c Context) string {
	input := hashInput{
		Practices: c.PracticeIDs(),
		Count:     len(c.Sessions),
		Pending:   append([]string{}, c.PendingPatterns...),
		Markers:   c.DevelopmentalMarkers,
	}
	sort.Strings(input.Pending)
	if latest, ok := c.Latest(); ok {
		input.Latest = &latestRef{
			ID:         latest.ID,
			Kind:       latest.Kind,
			OccurredAt: latest.OccurredAt.UTC().Format(time.RFC3339Nano),
		}
	}
	// encoding/json writes map keys sorted, so the encoding is canonical.
	encoded, err := json.Marshal(input)
	if err != nil {
		encoded = []byte(fmt.Sprintf("%v", input))
	}
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:])
}
