package session

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	maxKeyFacts  = 6
	maxListItems = 5
	maxTextRunes = 140
)

// Marker keys written into Summary.Markers.
const (
	MarkerAttachmentStyle    = "attachment_style"
	MarkerDevelopmentalStage = "developmental_stage"
	MarkerSubjectObjectStage = "subject_object_stage"
)

type extractKind int

const (
	extractText extractKind = iota
	extractList
	extractNumber
	extractPair
)

// factRule pulls one key fact out of a raw record. Keys are tried in order and
// the first usable value wins.
type factRule struct {
	label  string
	kind   extractKind
	keys   []string
	second []string // extractPair only
	suffix string   // extractNumber only
	marker string
}

func text(label string, keys ...string) factRule {
	return factRule{label: label, kind: extractText, keys: keys}
}

func list(label string, keys ...string) factRule {
	return factRule{label: label, kind: extractList, keys: keys}
}

func number(label, suffix string, keys ...string) factRule {
	return factRule{label: label, kind: extractNumber, keys: keys, suffix: suffix}
}

func pair(label string, first, second []string) factRule {
	return factRule{label: label, kind: extractPair, keys: first, second: second}
}

func (r factRule) withMarker(key string) factRule {
	r.marker = key
	return r
}

var kindRules = map[Kind][]factRule{
	KindBiasDetection: {
		list("Identified biases", "identifiedBiases", "biases", "detectedBiases"),
		text("Decision examined", "decision", "situation"),
		text("Reframe", "reframe", "alternativePerspective"),
		number("Bias awareness", "/10", "awarenessRating", "awareness"),
	},
	KindPartsWork: {
		list("Parts identified", "parts", "identifiedParts"),
		text("Part role", "partRole", "role"),
		text("Part need", "partNeed", "need"),
		text("Message from part", "message", "partMessage"),
	},
	KindShadowWork: {
		list("Shadow traits", "shadowTraits", "traits", "projections"),
		text("Trigger", "trigger", "triggerSituation"),
		text("Integration", "integration", "integrationPractice"),
	},
	KindMemoryReconsolidation: {
		text("Target belief", "targetBelief", "belief"),
		text("Disconfirming knowledge", "disconfirmingKnowledge", "contradiction"),
		number("Belief intensity before", "/10", "intensityBefore"),
		number("Belief intensity after", "/10", "intensityAfter"),
	},
	KindAttachmentAssessment: {
		text("Attachment style", "attachmentStyle", "style").withMarker(MarkerAttachmentStyle),
		number("Anxiety score", "", "anxietyScore", "anxiety"),
		number("Avoidance score", "", "avoidanceScore", "avoidance"),
	},
	KindDevelopmentalAssessment: {
		text("Developmental stage", "developmentalStage", "stage").withMarker(MarkerDevelopmentalStage),
		text("Growth edge", "growthEdge", "edge"),
		list("Strengths", "strengths"),
	},
	KindSubjectObject: {
		text("Subject-object stage", "stage", "order").withMarker(MarkerSubjectObjectStage),
		text("Subject to", "subjectTo", "subject"),
		text("Now held as object", "objectOf", "object"),
	},
	KindPerspectiveShifter: {
		text("Situation", "situation", "scenario"),
		list("Perspectives explored", "perspectives", "viewpoints"),
		text("Shift", "insight", "shift"),
	},
	KindPolarityMapping: {
		pair("Polarity", []string{"poleA", "leftPole", "pole1"}, []string{"poleB", "rightPole", "pole2"}),
		list("Early warnings", "earlyWarnings", "warningSigns"),
		list("Action steps", "actionSteps", "actions"),
	},
	KindValuesClarification: {
		list("Core values", "coreValues", "topValues", "values"),
		text("Values conflict", "conflict", "valuesConflict"),
		text("Committed action", "committedAction", "action"),
	},
	KindEmotionRegulation: {
		text("Emotion", "primaryEmotion", "emotion"),
		text("Strategy", "regulationStrategy", "strategy"),
		number("Intensity before", "/10", "intensityBefore"),
		number("Intensity after", "/10", "intensityAfter"),
	},
	KindSomaticInquiry: {
		text("Body location", "bodyLocation", "location"),
		text("Sensation", "sensation", "sensations"),
		text("Felt meaning", "feltSense", "meaning"),
	},
	KindLimitingBelief: {
		text("Limiting belief", "limitingBelief", "belief"),
		text("Evidence against", "evidenceAgainst", "counterEvidence"),
		text("New belief", "newBelief", "empoweringBelief"),
	},
	KindThreeTwoOne: {
		text("Disowned quality", "disownedQuality", "quality"),
		text("Projected onto", "person", "target"),
		text("Reowned as", "reownedStatement", "integration"),
	},
	KindMeditation: {
		text("Practice", "technique", "practice", "type"),
		number("Duration", " min", "durationMinutes", "duration"),
		text("Reflection", "reflection", "notes"),
	},
}

// nestedKeys are object fields that some wizards wrap their answers in.
var nestedKeys = []string{"data", "results", "answers", "responses"}

func lookup(raw map[string]any, key string) (any, bool) {
	if raw == nil {
		return nil, false
	}
	if v, ok := raw[key]; ok && v != nil {
		return v, true
	}
	for _, nk := range nestedKeys {
		inner, ok := raw[nk].(map[string]any)
		if !ok {
			continue
		}
		if v, ok := inner[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func (r factRule) apply(raw map[string]any) (string, string, bool) {
	switch r.kind {
	case extractText:
		for _, key := range r.keys {
			v, ok := lookup(raw, key)
			if !ok {
				continue
			}
			if s, ok := scalarString(v); ok {
				return r.label + ": " + s, s, true
			}
		}
	case extractList:
		for _, key := range r.keys {
			v, ok := lookup(raw, key)
			if !ok {
				continue
			}
			if items := stringItems(v); len(items) > 0 {
				return r.label + ": " + strings.Join(items, ", "), "", true
			}
		}
	case extractNumber:
		for _, key := range r.keys {
			v, ok := lookup(raw, key)
			if !ok {
				continue
			}
			if n, ok := numeric(v); ok {
				return r.label + ": " + strconv.FormatFloat(n, 'f', -1, 64) + r.suffix, "", true
			}
		}
	case extractPair:
		first := firstString(raw, r.keys)
		second := firstString(raw, r.second)
		if first != "" && second != "" {
			return fmt.Sprintf("%s: %s vs %s", r.label, first, second), "", true
		}
	}
	return "", "", false
}

func firstString(raw map[string]any, keys []string) string {
	for _, key := range keys {
		if v, ok := lookup(raw, key); ok {
			if s, ok := scalarString(v); ok {
				return s
			}
		}
	}
	return ""
}

func scalarString(v any) (string, bool) {
	switch value := v.(type) {
	case string:
		s := clip(strings.Join(strings.Fields(value), " "))
		return s, s != ""
	case map[string]any:
		for _, key := range []string{"name", "label", "title", "value"} {
			if s, ok := value[key].(string); ok {
				s = clip(strings.TrimSpace(s))
				if s != "" {
					return s, true
				}
			}
		}
	}
	return "", false
}

func stringItems(v any) []string {
	switch value := v.(type) {
	case []any:
		items := make([]string, 0, len(value))
		for _, item := range value {
			if s, ok := scalarString(item); ok {
				items = append(items, s)
			}
			if len(items) == maxListItems {
				break
			}
		}
		return items
	case []string:
		items := make([]string, 0, len(value))
		for _, item := range value {
			if s, ok := scalarString(item); ok {
				items = append(items, s)
			}
			if len(items) == maxListItems {
				break
			}
		}
		return items
	case string:
		if s, ok := scalarString(value); ok {
			return []string{s}
		}
	}
	return nil
}

func numeric(v any) (float64, bool) {
	var n float64
	switch value := v.(type) {
	case float64:
		n = value
	case int:
		n = float64(value)
	case int64:
		n = float64(value)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return 0, false
		}
		n = parsed
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return math.Round(n*100) / 100, true
}

func clip(s string) string {
	runes := []rune(s)
	if len(runes) <= maxTextRunes {
		return s
	}
	return strings.TrimSpace(string(runes[:maxTextRunes-1])) + "…"
}
