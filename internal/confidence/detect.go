package confidence

import (
	"strconv"
	"strings"
)

// Detection reports which certainty markers a text contains and the level it
// claims.
type Detection struct {
	ClaimedLevel    Level    `json:"claimedLevel"`
	Definite        int      `json:"definite"`
	Exploratory     int      `json:"exploratory"`
	Uncertainty     int      `json:"uncertainty"`
	Matches         []string `json:"matches,omitempty"`
	PercentClaim    float64  `json:"percentClaim,omitempty"`
	HasPercentClaim bool     `json:"hasPercentClaim"`
}

// Hedged is the combined exploratory and uncertainty count.
func (d Detection) Hedged() int {
	return d.Exploratory + d.Uncertainty
}

// Detect classifies text by counting marker matches. Only one side matching
// wins outright; when both match the larger count wins, and an equal nonzero
// count is medium. Definite maps to high and hedged to low.
func Detect(text string) Detection {
	var d Detection
	for _, vocab := range []Vocabulary{VocabularyDefinite, VocabularyExploratory, VocabularyUncertainty} {
		found := vocabularyPatterns[vocab].FindAllString(text, -1)
		for _, m := range found {
			d.Matches = append(d.Matches, strings.ToLower(m))
		}
		switch vocab {
		case VocabularyDefinite:
			d.Definite += len(found)
		case VocabularyExploratory:
			d.Exploratory += len(found)
		case VocabularyUncertainty:
			d.Uncertainty += len(found)
		}
	}

	for _, sub := range percentClaim.FindAllStringSubmatch(text, -1) {
		n, err := strconv.ParseFloat(sub[1], 64)
		if err != nil {
			continue
		}
		if !d.HasPercentClaim || n > d.PercentClaim {
			d.PercentClaim = n
		}
		d.HasPercentClaim = true
		if n >= DefinitePercentThreshold {
			d.Definite++
			d.Matches = append(d.Matches, strings.ToLower(sub[0]))
		}
	}

	d.ClaimedLevel = classify(d.Definite, d.Hedged())
	return d
}

func classify(definite, hedged int) Level {
	switch {
	case definite == 0 && hedged == 0:
		return LevelUnknown
	case definite > hedged:
		return LevelHigh
	case hedged > definite:
		return LevelLow
	default:
		return LevelMedium
	}
}
