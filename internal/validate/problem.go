package validate

import (
	"regexp"
	"strings"
)

// ProblemType steers answer extraction and normalization.
type ProblemType string

const (
	// ProblemMultipleChoice marks problems answered with an option letter A-D.
	ProblemMultipleChoice ProblemType = "multiple_choice"
	// ProblemMath marks problems answered with a number, optionally with a unit.
	ProblemMath ProblemType = "math"
	// ProblemGeneral marks everything else.
	ProblemGeneral ProblemType = "general"
)

// choiceLineRe matches option lines such as "a) first option" at the start of
// a line, which marks a multiple-choice problem even without inline markers.
var choiceLineRe = regexp.MustCompile(`(?m)^\s*[a-d]\)`)

var choiceMarkers = []string{"a)", "b)", "c)", "d)", "a.", "b.", "c.", "d."}

var mathKeywords = []string{"calculate", "equal", "value", "trinket", "blinket", "solve for", "what is"}

// DetectProblemType classifies a problem statement so extraction can apply
// the right pattern set. Detection is heuristic: option markers win over
// math keywords, and anything unrecognized is treated as general.
func DetectProblemType(problem string) ProblemType {
	lower := strings.ToLower(problem)

	for _, marker := range choiceMarkers {
		if strings.Contains(lower, marker) {
			return ProblemMultipleChoice
		}
	}
	if choiceLineRe.MatchString(lower) {
		return ProblemMultipleChoice
	}

	for _, keyword := range mathKeywords {
		if strings.Contains(lower, keyword) {
			return ProblemMath
		}
	}

	return ProblemGeneral
}
