package synthesis

import (
	"regexp"
	"strings"

	"lumen/internal/catalog"
)

var (
	separatorLine = regexp.MustCompile(`^\s*-{3,}\s*$`)
	patternPrefix = regexp.MustCompile(`(?i)^\W*pattern\W*:\**\s*`)
	recommendLine = regexp.MustCompile(`(?i)^\s*(?:[-*•]|\d+[.)])\s*(.+?)\s*\|\s*\**rationale\**\s*:\**\s*(.+?)\s*$`)
)

// parsedRecommendation is a recommendation line whose label resolved to a
// catalog target.
type parsedRecommendation struct {
	Target    catalog.Target
	Label     string
	Rationale string
}

type parsed struct {
	Pattern         string
	Recommendations []parsedRecommendation
	// Dropped holds labels that matched no catalog target.
	Dropped []string
}

// parseResponse splits generated text into a pattern and recommendations. It
// reports false when no pattern can be recovered.
func parseResponse(text string, cat *catalog.Catalog) (parsed, bool) {
	lines := strings.Split(stripCodeFence(text), "\n")

	var (
		patternLines []string
		recLines     []string
		separated    bool
		prefixed     bool
	)
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case separatorLine.MatchString(line):
			separated = true
		case recommendLine.MatchString(line):
			recLines = append(recLines, line)
		case separated:
			// prose after the separator is ignored
		case trimmed == "":
			if len(patternLines) > 0 {
				patternLines = append(patternLines, "")
			}
		default:
			if len(patternLines) == 0 && patternPrefix.MatchString(trimmed) {
				prefixed = true
				trimmed = patternPrefix.ReplaceAllString(trimmed, "")
				if trimmed == "" {
					continue
				}
			}
			patternLines = append(patternLines, trimmed)
		}
	}

	var out parsed
	out.Pattern = joinParagraphs(patternLines)
	if out.Pattern == "" || !(separated || prefixed || len(recLines) > 0) {
		return parsed{}, false
	}

	seen := make(map[string]bool)
	for _, line := range recLines {
		m := recommendLine.FindStringSubmatch(line)
		label, rationale := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		target, ok := cat.Resolve(label)
		if !ok {
			out.Dropped = append(out.Dropped, label)
			continue
		}
		if seen[target.ID] {
			continue
		}
		seen[target.ID] = true
		out.Recommendations = append(out.Recommendations, parsedRecommendation{
			Target:    target,
			Label:     target.Name,
			Rationale: rationale,
		})
	}
	return out, true
}

func joinParagraphs(lines []string) string {
	var paragraphs []string
	var current []string
	flush := func() {
		if len(current) > 0 {
			paragraphs = append(paragraphs, strings.Join(current, " "))
			current = nil
		}
	}
	for _, line := range lines {
		if line == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()
	return strings.Join(paragraphs, "\n\n")
}

func stripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	body := strings.TrimPrefix(trimmed, "```")
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		body = ""
	}
	if idx := strings.LastIndex(body, "```"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}
