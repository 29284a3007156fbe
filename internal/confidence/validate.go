package confidence

import (
	"fmt"
	"math"
)

// MismatchType names how claimed certainty departs from the evidence.
type MismatchType string

const (
	MismatchNone           MismatchType = "none"
	MismatchOverconfident  MismatchType = "overconfident"
	MismatchUnderconfident MismatchType = "underconfident"
)

const (
	minDataPoints         = 3
	smallSampleCeiling    = 0.70
	percentClaimTolerance = 15.0
)

// Result is the outcome of validating text against a computed confidence.
type Result struct {
	Valid              bool         `json:"valid"`
	MismatchType       MismatchType `json:"mismatchType"`
	ClaimedLevel       Level        `json:"claimedLevel"`
	ActualLevel        Level        `json:"actualLevel"`
	Suggestion         string       `json:"suggestion,omitempty"`
	SuggestedReduction float64      `json:"suggestedReduction,omitempty"`
	Detection          Detection    `json:"detection"`
}

// Validate compares the certainty claimed by text with the actual confidence.
// dataPoints is optional; when fewer than three support a confidence above
// 0.70 the result is overconfident regardless of wording.
func Validate(text string, actual float64, dataPoints *int) Result {
	detection := Detect(text)
	result := Result{
		Valid:        true,
		MismatchType: MismatchNone,
		ClaimedLevel: detection.ClaimedLevel,
		ActualLevel:  LevelFor(actual),
		Detection:    detection,
	}

	if dataPoints != nil && *dataPoints < minDataPoints && actual > smallSampleCeiling {
		result.Valid = false
		result.MismatchType = MismatchOverconfident
		result.Suggestion = fmt.Sprintf(
			"Only %d data point(s) support this; confidence above %.2f needs at least %d sessions. Use exploratory language.",
			*dataPoints, smallSampleCeiling, minDataPoints)
		return result
	}

	actualPercent := actual * 100
	if detection.HasPercentClaim && detection.PercentClaim > actualPercent+percentClaimTolerance {
		reduction := math.Round(detection.PercentClaim - actualPercent)
		result.Valid = false
		result.MismatchType = MismatchOverconfident
		result.SuggestedReduction = reduction
		result.Suggestion = fmt.Sprintf(
			"Reduce the stated certainty by about %.0f points; the data supports roughly %.0f%%.",
			reduction, actualPercent)
		return result
	}

	switch mismatch(detection.ClaimedLevel, result.ActualLevel) {
	case MismatchOverconfident:
		result.Valid = false
		result.MismatchType = MismatchOverconfident
		result.Suggestion = fmt.Sprintf(
			"Language claims %s certainty but evidence supports %s; soften definite phrasing.",
			detection.ClaimedLevel, result.ActualLevel)
	case MismatchUnderconfident:
		result.Valid = false
		result.MismatchType = MismatchUnderconfident
		result.Suggestion = "Evidence is strong; hedged phrasing undersells it. Use more direct language."
	}
	return result
}

func mismatch(claimed, actual Level) MismatchType {
	if claimed == LevelUnknown || claimed == actual {
		return MismatchNone
	}
	switch {
	case claimed == LevelLow && actual == LevelHigh:
		return MismatchUnderconfident
	case claimed.rank() > actual.rank():
		return MismatchOverconfident
	default:
		return MismatchNone
	}
}
