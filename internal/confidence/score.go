package confidence

import "math"

const (
	// Floor is the minimum score once any data exists.
	Floor = 0.30
	// Ceiling keeps every score short of certainty.
	Ceiling = 0.95

	saturatedBase     = 0.85
	recencyThreshold  = 5
	recencyBonus      = 0.10
	consistencyWeight = 0.3
)

// Score is a scalar confidence plus the evidence counts it was derived from.
type Score struct {
	Value           float64 `json:"value"`
	DataPoints      int     `json:"dataPoints"`
	RelatedInsights int     `json:"relatedInsights"`
}

// Level returns the validation level for the score value.
func (s Score) Level() Level {
	return LevelFor(s.Value)
}

// Compute derives a confidence score from session volume, recent activity and
// an optional consistency signal in [0, 1]. It is pure: equal inputs always
// produce equal scores, and without a consistency signal the value never
// decreases as total or lastWeek grow.
func Compute(total, lastWeek, related int, consistency *float64) Score {
	score := Score{DataPoints: max(total, 0), RelatedInsights: max(related, 0)}
	if total < 2 {
		score.Value = Floor
		return score
	}

	base := volumeBase(total)
	if consistency != nil && !math.IsNaN(*consistency) {
		c := math.Min(1, math.Max(0, *consistency))
		base = base*(1-consistencyWeight) + c*consistencyWeight
	}
	if lastWeek >= recencyThreshold {
		base = math.Min(Ceiling, base+recencyBonus)
	}
	score.Value = round4(math.Min(Ceiling, math.Max(Floor, base)))
	return score
}

func volumeBase(total int) float64 {
	switch {
	case total < 5:
		return 0.40
	case total < 10:
		return 0.50
	case total < 20:
		return 0.65
	default:
		return math.Min(saturatedBase, 0.50+0.02*float64(total))
	}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
