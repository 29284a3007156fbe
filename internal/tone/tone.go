package tone

import "lumen/internal/confidence"

// Tone is the rhetorical certainty register of generated text.
type Tone string

const (
	Exploratory   Tone = "exploratory"
	Observational Tone = "observational"
	Definitive    Tone = "definitive"
)

// Determine picks the tone a confidence value supports, using the same
// thresholds as confidence.LevelFor.
func Determine(c float64) Tone {
	switch confidence.LevelFor(c) {
	case confidence.LevelHigh:
		return Definitive
	case confidence.LevelMedium:
		return Observational
	default:
		return Exploratory
	}
}

// Parse maps a string onto a Tone.
func Parse(value string) (Tone, bool) {
	switch Tone(value) {
	case Exploratory, Observational, Definitive:
		return Tone(value), true
	default:
		return "", false
	}
}

func (t Tone) rank() int {
	switch t {
	case Exploratory:
		return 1
	case Observational:
		return 2
	case Definitive:
		return 3
	default:
		return 0
	}
}

// Instruction is the register guidance handed to the text generator.
func (t Tone) Instruction() string {
	switch t {
	case Definitive:
		return "The evidence is strong. Speak directly and state the pattern plainly, without percentages."
	case Observational:
		return "The evidence is moderate. Describe what the sessions suggest or indicate, and frame actions as things the user may want to consider."
	default:
		return "The evidence is thin. Use tentative language such as might, possibly or perhaps, and frame actions as things the user could try. Never use words like clearly, definitely or always."
	}
}
