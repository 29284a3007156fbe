// Package insight defines the synthesized pattern and recommendation types
// produced by the guidance pipeline.
package insight

import (
	"time"

	"lumen/internal/confidence"
	"lumen/internal/tone"
)

// Status tracks whether the user has acted on an insight.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAddressed Status = "addressed"
)

// UnparsedPattern is the pattern description used when a generated response
// could not be split into a pattern and recommendations.
const UnparsedPattern = "We reviewed your recent sessions but could not summarise a clear pattern this time."

// PracticeRef identifies a practice in the user's active stack.
type PracticeRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Recommendation is one suggested action. ID doubles as its lineage id.
type Recommendation struct {
	ID        string `json:"id"`
	TargetID  string `json:"targetId"`
	Label     string `json:"label"`
	Rationale string `json:"rationale"`
}

// Insight is the result of one synthesis call.
type Insight struct {
	ID                 string           `json:"id"`
	PatternDescription string           `json:"patternDescription"`
	Recommendations    []Recommendation `json:"recommendations"`
	Confidence         confidence.Score `json:"confidence"`
	GeneratedBy        string           `json:"generatedBy"`
	CreatedAt          time.Time        `json:"createdAt"`
	Status             Status           `json:"status"`
	Tone               tone.Tone        `json:"tone,omitempty"`
	Adjustments        []string         `json:"adjustments,omitempty"`
	Degraded           bool             `json:"degraded,omitempty"`
	SynthesisID        string           `json:"synthesisId,omitempty"`
	ContextHash        string           `json:"contextHash,omitempty"`
}

// MarkAddressed moves a pending insight to addressed. It reports whether the
// status changed.
func (i *Insight) MarkAddressed() bool {
	if i == nil || i.Status == StatusAddressed {
		return false
	}
	i.Status = StatusAddressed
	return true
}

// Pending reports whether the insight still awaits action.
func (i Insight) Pending() bool {
	return i.Status == "" || i.Status == StatusPending
}
