package confidence

// Level is a coarse confidence band shared by detection and validation.
type Level string

const (
	LevelHigh    Level = "high"
	LevelMedium  Level = "medium"
	LevelLow     Level = "low"
	LevelUnknown Level = "unknown"
)

const (
	// HighThreshold is the lowest value treated as high confidence.
	HighThreshold = 0.75
	// MediumThreshold is the lowest value treated as medium confidence.
	MediumThreshold = 0.50
)

// LevelFor maps a numeric confidence onto a level.
func LevelFor(value float64) Level {
	switch {
	case value >= HighThreshold:
		return LevelHigh
	case value >= MediumThreshold:
		return LevelMedium
	default:
		return LevelLow
	}
}

func (l Level) rank() int {
	switch l {
	case LevelHigh:
		return 3
	case LevelMedium:
		return 2
	case LevelLow:
		return 1
	default:
		return 0
	}
}
