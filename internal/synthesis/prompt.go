package synthesis

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"lumen/internal/analysis"
	"lumen/internal/catalog"
	"lumen/internal/confidence"
	"lumen/internal/tone"
)

// maxPromptSessions bounds how much history is sent to the generator.
const maxPromptSessions = 25

// systemPreamble is shared by every synthesis request. Keep edits here so the
// parser and the instructions stay in sync.
const systemPreamble = `You help a person make sense of their completed self-reflection sessions.

Read the session history and identify the single most important pattern across it. Then recommend up to three next steps drawn ONLY from the list of available practices below.

Respond in exactly this format and nothing else:

PATTERN: <two to four sentences describing the pattern>
---
- <practice id> | Rationale: <one sentence explaining why this practice fits>

Rules:

- Use the practice id exactly as listed.
- Do not repeat a practice.
- Do not mention confidence percentages.`

func buildSystemPrompt(t tone.Tone, targets []catalog.Target) string {
	var b strings.Builder
	b.WriteString(systemPreamble)
	b.WriteString("\n\nTone: ")
	b.WriteString(t.Instruction())
	b.WriteString("\n\nAvailable practices:\n")
	for _, target := range targets {
		fmt.Fprintf(&b, "\n- %s: %s", target.ID, target.Name)
	}
	return b.String()
}

func buildUserPrompt(actx analysis.Context, score confidence.Score) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Evidence: %d session(s), %d open pattern(s), confidence %s.\n",
		score.DataPoints, score.RelatedInsights, score.Level())

	if len(actx.PracticeStack) > 0 {
		b.WriteString("\nCurrent practices:\n")
		for _, p := range actx.PracticeStack {
			name := p.Name
			if name == "" {
				name = p.ID
			}
			fmt.Fprintf(&b, "- %s\n", name)
		}
	}

	if len(actx.PendingPatterns) > 0 {
		b.WriteString("\nPatterns already raised and not yet addressed (avoid repeating them):\n")
		for _, p := range actx.PendingPatterns {
			fmt.Fprintf(&b, "- %s\n", p)
		}
	}

	if len(actx.DevelopmentalMarkers) > 0 {
		keys := make([]string, 0, len(actx.DevelopmentalMarkers))
		for k := range actx.DevelopmentalMarkers {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("\nDevelopmental markers:\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "- %s: %s\n", strings.ReplaceAll(k, "_", " "), actx.DevelopmentalMarkers[k])
		}
	}

	b.WriteString("\nSession history (most recent first):\n")
	sessions := actx.Sessions
	if len(sessions) > maxPromptSessions {
		sessions = sessions[:maxPromptSessions]
	}
	for _, s := range sessions {
		date := "undated"
		if !s.OccurredAt.IsZero() {
			date = s.OccurredAt.UTC().Format(time.DateOnly)
		}
		fmt.Fprintf(&b, "- %s, %s: %s\n", date, s.Kind.Label(), strings.Join(s.KeyFacts, "; "))
	}
	if omitted := len(actx.Sessions) - len(sessions); omitted > 0 {
		fmt.Fprintf(&b, "(%d older session(s) omitted)\n", omitted)
	}
	return strings.TrimSpace(b.String())
}
