package guidance

import (
	"fmt"

	"lumen/internal/confidence"
	"lumen/internal/insight"
	"lumen/internal/tone"
)

// calibrate validates every generated text against the score and rewrites it
// when the wording claims more (or less) than the evidence supports. The
// pattern description gets full framing; rationales only get vocabulary
// adjustment. It returns the audit trail of applied changes.
func calibrate(ins *insight.Insight, score confidence.Score) []string {
	target := tone.Determine(score.Value)
	ins.Tone = target

	var changes []string
	text, notes := calibrateText(ins.PatternDescription, score, target, tone.Shift)
	ins.PatternDescription = text
	for _, note := range notes {
		changes = append(changes, "pattern: "+note)
	}
	for i := range ins.Recommendations {
		rec := &ins.Recommendations[i]
		text, notes := calibrateText(rec.Rationale, score, target, tone.Adjust)
		rec.Rationale = text
		for _, note := range notes {
			changes = append(changes, rec.TargetID+": "+note)
		}
	}
	return changes
}

type shiftFunc func(text string, target float64, current *tone.Tone) tone.ShiftResult

func calibrateText(text string, score confidence.Score, target tone.Tone, shift shiftFunc) (string, []string) {
	if text == "" {
		return text, nil
	}
	dataPoints := score.DataPoints
	result := confidence.Validate(text, score.Value, &dataPoints)
	if result.Valid && target == tone.Definitive {
		return text, nil
	}

	var notes []string
	if !result.Valid {
		notes = append(notes, fmt.Sprintf("%s (claimed %s, supported %s)", result.MismatchType, result.ClaimedLevel, result.ActualLevel))
	}
	shifted := shift(text, score.Value, nil)
	if !shifted.Changed() {
		return text, notes
	}
	return shifted.Text, append(notes, shifted.Changes...)
}
