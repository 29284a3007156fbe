package guidance

import (
	"lumen/internal/analysis"
	"lumen/internal/catalog"
	"lumen/internal/insight"
	"lumen/internal/lineage"
	"lumen/internal/session"
)

const (
	maxFallbackSources = 5
	maxSecondary       = 3
)

// synthesisInput assembles lineage for ins. Each recommendation cites the
// sessions whose kind relates to its target, or the most recent sessions
// when none do.
func synthesisInput(ins *insight.Insight, actx analysis.Context, cat *catalog.Catalog, userID string, trigger lineage.Trigger, hash string) lineage.SynthesisInput {
	in := lineage.SynthesisInput{
		ID:                ins.SynthesisID,
		UserID:            userID,
		Trigger:           trigger,
		ContextSummary:    actx.Describe(),
		ContextHash:       hash,
		PatternSummary:    ins.PatternDescription,
		OverallConfidence: ins.Confidence.Value,
		GeneratedBy:       ins.GeneratedBy,
	}
	for _, rec := range ins.Recommendations {
		sources := contributingSessions(actx.Sessions, cat, rec.TargetID)
		in.Recommendations = append(in.Recommendations, lineage.RecordInput{
			Recommendation: rec,
			UserID:         userID,
			Sources:        sessionIDs(sources),
			Reasoning: lineage.Reasoning{
				Primary:   rec.Rationale,
				Secondary: secondaryReasons(sources),
				Patterns:  []string{ins.PatternDescription},
			},
			Confidence:  ins.Confidence.Value,
			GeneratedBy: ins.GeneratedBy,
		})
	}
	return in
}

func contributingSessions(sessions []session.Summary, cat *catalog.Catalog, targetID string) []session.Summary {
	var related []session.Summary
	if target, ok := cat.Get(targetID); ok {
		for _, s := range sessions {
			if target.RelatedTo(s.Kind) {
				related = append(related, s)
			}
		}
	}
	if len(related) > 0 {
		return related
	}
	return sessions[:min(len(sessions), maxFallbackSources)]
}

func sessionIDs(sessions []session.Summary) []string {
	ids := make([]string, 0, len(sessions))
	for _, s := range sessions {
		ids = append(ids, s.ID)
	}
	return ids
}

// secondaryReasons lifts the first specific key fact from each contributing
// session.
func secondaryReasons(sessions []session.Summary) []string {
	var out []string
	seen := make(map[string]bool)
	for _, s := range sessions {
		if len(out) == maxSecondary {
			break
		}
		for _, fact := range s.KeyFacts {
			if fact == session.GenericFact(s.Kind) || seen[fact] {
				continue
			}
			seen[fact] = true
			out = append(out, fact)
			break
		}
	}
	return out
}
