package analysis

import (
	"time"

	"lumen/internal/confidence"
	"lumen/internal/session"
)

const (
	recentWindow           = 7 * 24 * time.Hour
	minConsistencySessions = 3
)

// Stats are the evidence counts fed to the confidence scorer.
type Stats struct {
	Total    int `json:"total"`
	LastWeek int `json:"lastWeek"`
	Related  int `json:"related"`
}

// Stats counts sessions overall and within the seven days before now.
// Related is the number of pending patterns already surfaced to the user.
func (c Context) Stats(now time.Time) Stats {
	s := Stats{Total: len(c.Sessions), Related: len(c.PendingPatterns)}
	cutoff := now.Add(-recentWindow)
	for _, summary := range c.Sessions {
		at := summary.OccurredAt
		if at.IsZero() || at.After(now) {
			continue
		}
		if at.After(cutoff) {
			s.LastWeek++
		}
	}
	return s
}

// Consistency is the share of sessions carrying the most repeated key fact.
// Generic "Completed a ..." facts are ignored. It needs at least three sessions.
func (c Context) Consistency() (float64, bool) {
	if len(c.Sessions) < minConsistencySessions {
		return 0, false
	}
	counts := make(map[string]int)
	best := 0
	for _, s := range c.Sessions {
		seen := make(map[string]bool, len(s.KeyFacts))
		for _, fact := range s.KeyFacts {
			if seen[fact] || fact == session.GenericFact(s.Kind) {
				continue
			}
			seen[fact] = true
			counts[fact]++
			best = max(best, counts[fact])
		}
	}
	return float64(best) / float64(len(c.Sessions)), true
}

// Score computes the confidence for this context at now.
func (c Context) Score(now time.Time, useConsistency bool) confidence.Score {
	stats := c.Stats(now)
	var consistency *float64
	if useConsistency {
		if v, ok := c.Consistency(); ok {
			consistency = &v
		}
	}
	return confidence.Compute(stats.Total, stats.LastWeek, stats.Related, consistency)
}
