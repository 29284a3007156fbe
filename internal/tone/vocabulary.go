package tone

// wordList holds a tone's certainty and action phrases. The first entry of each
// list is the substitute used when text is moved into that tone.
type wordList struct {
	certainty []string
	action    []string
}

// The three lists are disjoint. Definitive certainty and action words together
// cover every definite marker known to the confidence validator.
var vocabularies = map[Tone]wordList{
	Exploratory: {
		certainty: []string{"possibly", "might", "perhaps", "potentially"},
		action:    []string{"could", "might want to"},
	},
	Observational: {
		certainty: []string{"likely", "suggests", "appears", "indicates", "tends to"},
		action:    []string{"may want to", "consider", "would benefit from"},
	},
	Definitive: {
		certainty: []string{
			"clearly",
			"definitely",
			"certainly",
			"obviously",
			"undoubtedly",
			"unquestionably",
			"absolutely",
			"proven",
			"always",
			"without a doubt",
			"it is certain",
			"there is no doubt",
		},
		action: []string{"should", "must", "need to", "have to"},
	},
}

// Words returns copies of a tone's certainty and action phrases.
func Words(t Tone) (certainty, action []string) {
	v := vocabularies[t]
	return append([]string(nil), v.certainty...), append([]string(nil), v.action...)
}

// absoluteQualifiers are stripped whenever the target is not definitive.
var absoluteQualifiers = []string{"absolutely", "definitely", "certainly", "unquestionably"}
