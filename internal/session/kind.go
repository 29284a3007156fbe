package session

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind identifies which guided exercise produced a session record.
type Kind string

const (
	KindBiasDetection           Kind = "bias_detection"
	KindPartsWork               Kind = "parts_work"
	KindShadowWork              Kind = "shadow_work"
	KindMemoryReconsolidation   Kind = "memory_reconsolidation"
	KindAttachmentAssessment    Kind = "attachment_assessment"
	KindDevelopmentalAssessment Kind = "developmental_assessment"
	KindSubjectObject           Kind = "subject_object"
	KindPerspectiveShifter      Kind = "perspective_shifter"
	KindPolarityMapping         Kind = "polarity_mapping"
	KindValuesClarification     Kind = "values_clarification"
	KindEmotionRegulation       Kind = "emotion_regulation"
	KindSomaticInquiry          Kind = "somatic_inquiry"
	KindLimitingBelief          Kind = "limiting_belief"
	KindThreeTwoOne             Kind = "three_two_one"
	KindMeditation              Kind = "meditation"
)

var allKinds = []Kind{
	KindBiasDetection,
	KindPartsWork,
	KindShadowWork,
	KindMemoryReconsolidation,
	KindAttachmentAssessment,
	KindDevelopmentalAssessment,
	KindSubjectObject,
	KindPerspectiveShifter,
	KindPolarityMapping,
	KindValuesClarification,
	KindEmotionRegulation,
	KindSomaticInquiry,
	KindLimitingBelief,
	KindThreeTwoOne,
	KindMeditation,
}

var kindAliases = map[string]Kind{
	"bias":                    KindBiasDetection,
	"ifs":                     KindPartsWork,
	"internal_family_systems": KindPartsWork,
	"shadow":                  KindShadowWork,
	"memory":                  KindMemoryReconsolidation,
	"attachment":              KindAttachmentAssessment,
	"developmental":           KindDevelopmentalAssessment,
	"perspective":             KindPerspectiveShifter,
	"polarity":                KindPolarityMapping,
	"values":                  KindValuesClarification,
	"emotion":                 KindEmotionRegulation,
	"somatic":                 KindSomaticInquiry,
	"belief":                  KindLimitingBelief,
	"321":                     KindThreeTwoOne,
	"3_2_1":                   KindThreeTwoOne,
	"three_two_one_process":   KindThreeTwoOne,
	"meditation_session":      KindMeditation,
}

// Kinds returns every known session kind in a stable order.
func Kinds() []Kind {
	return append([]Kind(nil), allKinds...)
}

// ParseKind maps camelCase, snake_case and kebab-case spellings onto a Kind.
func ParseKind(value string) (Kind, bool) {
	key := snakeCase(value)
	if key == "" {
		return "", false
	}
	for _, k := range allKinds {
		if string(k) == key {
			return k, true
		}
	}
	if k, ok := kindAliases[key]; ok {
		return k, true
	}
	return "", false
}

// Label renders the kind as lower-case words, e.g. "bias detection".
func (k Kind) Label() string {
	if k == "" {
		return "guided"
	}
	return strings.ReplaceAll(string(k), "_", " ")
}

// Title renders the kind for display, e.g. "Bias Detection".
func (k Kind) Title() string {
	return cases.Title(language.English).String(k.Label())
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	for _, known := range allKinds {
		if k == known {
			return true
		}
	}
	return false
}

func snakeCase(value string) string {
	value = strings.TrimSpace(value)
	var b strings.Builder
	var prev rune
	for i, r := range value {
		switch {
		case r == '-' || r == ' ' || r == '.' || r == '_':
			if b.Len() > 0 && prev != '_' {
				b.WriteByte('_')
				prev = '_'
			}
			continue
		case unicode.IsUpper(r):
			if i > 0 && prev != '_' && (unicode.IsLower(prev) || unicode.IsDigit(prev)) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(r)
		prev = r
	}
	return strings.Trim(cases.Fold().String(b.String()), "_")
}
