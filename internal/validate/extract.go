package validate

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	boxedChoiceRe = regexp.MustCompile(`(?i)boxed\[([A-D])\]`)
	boxedValueRe  = regexp.MustCompile(`(?i)boxed\[([^\[\]]+)\]`)

	choiceMarkerRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:the\s+)?(?:final\s+)?answer\s+is\s*:?\s*([A-D])\b`),
		regexp.MustCompile(`(?i)\banswer\s*:?\s*([A-D])\b`),
		regexp.MustCompile(`(?i)\bchoice\s*:?\s*([A-D])\b`),
		regexp.MustCompile(`(?i)\boption\s*:?\s*([A-D])\b`),
		regexp.MustCompile(`(?i)\bselect\s*:?\s*([A-D])\b`),
	}
	standaloneLetterRe = regexp.MustCompile(`\b([A-D])\b`)
	choiceIndexRe      = regexp.MustCompile(`\b([0-3])\b`)

	// solution/result require the colon: "Solution ready" is a status line,
	// not an answer marker.
	valueMarkerRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:the\s+)?(?:correct\s+)?(?:final\s+)?answer\s+is\s*:?\s*([^\n.]+(?:\.\d+)?)`),
		regexp.MustCompile(`(?i)\bfinal\s+answer\s*:?\s*([^\n.]+(?:\.\d+)?)`),
		regexp.MustCompile(`(?i)\bsolution\s*:\s*([^\n.]+(?:\.\d+)?)`),
		regexp.MustCompile(`(?i)\bresult\s*:\s*([^\n.]+(?:\.\d+)?)`),
	}
	trailingPunctRe = regexp.MustCompile(`[.,;]+$`)
	numberUnitRe    = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*([A-Za-z]+)`)
	numberRe        = regexp.MustCompile(`\d+(?:\.\d+)?`)

	// "N/A" is a no-answer sentinel, not an answer. Stripped before the
	// search so its A cannot surface as a multiple-choice letter.
	notApplicableRe = regexp.MustCompile(`(?i)\bn/a\b`)
)

// ExtractAnswer pulls a final answer out of free text using an ordered,
// deterministic pattern search. ok is false when no pattern matches, which
// is an expected outcome rather than an error. Matching is case-insensitive
// but the returned value keeps the casing of the source text.
func ExtractAnswer(text string, problemType ProblemType) (answer string, ok bool) {
	if text == "" {
		return "", false
	}
	text = notApplicableRe.ReplaceAllString(text, "")
	if problemType == ProblemMultipleChoice {
		return extractChoice(text)
	}
	return extractValue(text, problemType)
}

// extractChoice searches, in order: boxed letter, explicit answer phrasing,
// the last standalone letter, and finally a numeric option index.
func extractChoice(text string) (string, bool) {
	if m := boxedChoiceRe.FindStringSubmatch(text); m != nil {
		return strings.ToUpper(m[1]), true
	}

	for _, re := range choiceMarkerRes {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.ToUpper(m[1]), true
		}
	}

	letters := standaloneLetterRe.FindAllStringSubmatch(strings.ToUpper(text), -1)
	if len(letters) > 0 {
		return letters[len(letters)-1][1], true
	}

	indices := choiceIndexRe.FindAllStringSubmatch(text, -1)
	if len(indices) > 0 {
		idx, _ := strconv.Atoi(indices[len(indices)-1][1])
		return indexToLetter(idx), true
	}

	return "", false
}

// extractValue searches, in order: boxed value, explicit answer phrasing,
// the last number-with-unit pair (math only), and the last bare number.
func extractValue(text string, problemType ProblemType) (string, bool) {
	if m := boxedValueRe.FindStringSubmatch(text); m != nil {
		if answer := cleanExtracted(m[1]); answer != "" {
			return answer, true
		}
	}

	for _, re := range valueMarkerRes {
		if m := re.FindStringSubmatch(text); m != nil {
			if answer := cleanExtracted(m[1]); answer != "" {
				return answer, true
			}
		}
	}

	if problemType == ProblemMath {
		pairs := numberUnitRe.FindAllStringSubmatch(text, -1)
		if len(pairs) > 0 {
			last := pairs[len(pairs)-1]
			return last[1] + " " + last[2], true
		}
	}

	numbers := numberRe.FindAllString(text, -1)
	if len(numbers) > 0 {
		return numbers[len(numbers)-1], true
	}

	return "", false
}

func cleanExtracted(s string) string {
	s = strings.TrimSpace(s)
	s = trailingPunctRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// NormalizeChoice maps a raw multiple-choice answer onto its option letter:
// numeric indices become letters (0 -> A, 3 -> D) and letters embedded in
// longer text are pulled out. Values with no recognizable option are returned
// upper-cased as-is.
func NormalizeChoice(answer string) string {
	s := strings.ToUpper(strings.TrimSpace(answer))
	if s == "" {
		return ""
	}

	if isDigits(s) {
		if idx, err := strconv.Atoi(s); err == nil && idx >= 0 && idx <= 3 {
			return indexToLetter(idx)
		}
	}

	if m := standaloneLetterRe.FindStringSubmatch(s); m != nil {
		return m[1]
	}

	return s
}

func indexToLetter(idx int) string {
	return string(rune('A' + idx))
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
