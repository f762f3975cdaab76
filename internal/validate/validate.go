// Package validate reconciles the structured answer field of an agent
// response against its free-text explanation. Models frequently back-fill the
// structured field with a stale or unrelated value while the explanation
// carries the real answer, so on mismatch the explanation wins by default.
package validate

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// Validator cross-checks structured answers against explanation text.
// The zero value prefers the explanation on mismatch.
type Validator struct {
	// PreferStructured flips the mismatch precedence so the structured
	// field wins over the value extracted from the explanation.
	PreferStructured bool
}

// Consistency is the outcome of comparing a structured answer with its
// explanation text.
type Consistency struct {
	IsConsistent   bool
	ResolvedAnswer string
	Reason         string
}

// CrossValidation augments a decider response with the validation outcome,
// keeping the original answer for the audit trail.
type CrossValidation struct {
	Consistent     bool    `json:"consistent"`
	Applied        bool    `json:"applied"`
	Answer         string  `json:"answer"`
	OriginalAnswer string  `json:"original_answer,omitempty"`
	Reason         string  `json:"reason,omitempty"`
	Confidence     float64 `json:"confidence,omitempty"`
}

var answerPrefixRe = regexp.MustCompile(`^(?:the\s+)?(?:answer|final\s+answer|solution|result)\s+is\s*:?\s*`)

var mathNormRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*([a-z]+)?`)

// ValidateConsistency compares a structured answer field with the answer
// extracted from the explanation text. On mismatch the extracted answer takes
// precedence unless PreferStructured is set. When the explanation yields
// nothing, the structured field is kept and reported consistent: absence of
// evidence is not evidence of inconsistency.
func (v Validator) ValidateConsistency(structured, explanation string, problemType ProblemType) Consistency {
	if structured == "" && explanation == "" {
		return Consistency{IsConsistent: false, ResolvedAnswer: "", Reason: "no answer found"}
	}

	extracted, _ := ExtractAnswer(explanation, problemType)

	normStructured := normalizeAnswer(structured, problemType)
	normExtracted := normalizeAnswer(extracted, problemType)

	if normStructured != "" && normExtracted != "" {
		if normStructured == normExtracted {
			return Consistency{IsConsistent: true, ResolvedAnswer: structured, Reason: "consistent"}
		}

		if strings.Contains(normStructured, normExtracted) || strings.Contains(normExtracted, normStructured) {
			if len(normExtracted) > len(normStructured) {
				return Consistency{IsConsistent: false, ResolvedAnswer: extracted, Reason: "mismatch: explanation is more specific"}
			}
			return Consistency{IsConsistent: false, ResolvedAnswer: structured, Reason: "mismatch: structured field is more specific"}
		}

		resolved := extracted
		if v.PreferStructured {
			resolved = structured
		}
		return Consistency{
			IsConsistent:   false,
			ResolvedAnswer: resolved,
			Reason:         fmt.Sprintf("mismatch: structured=%q explanation=%q", structured, extracted),
		}
	}

	if extracted != "" && normStructured == "" {
		return Consistency{IsConsistent: false, ResolvedAnswer: extracted, Reason: "no structured answer, using explanation"}
	}

	if structured != "" && normExtracted == "" {
		return Consistency{IsConsistent: true, ResolvedAnswer: structured, Reason: "only structured answer available"}
	}

	return Consistency{IsConsistent: false, ResolvedAnswer: "", Reason: "no answer found"}
}

// CrossValidate wraps ValidateConsistency for a decider response. When a
// correction is applied, the original answer is preserved and any reported
// confidence is damped, never below 0.5. A confidence of zero or less means
// none was reported and passes through untouched.
func (v Validator) CrossValidate(structured, explanation string, confidence float64, problemType ProblemType) CrossValidation {
	c := v.ValidateConsistency(structured, explanation, problemType)

	out := CrossValidation{
		Consistent: c.IsConsistent,
		Answer:     c.ResolvedAnswer,
		Reason:     c.Reason,
		Confidence: confidence,
	}

	if !c.IsConsistent && c.ResolvedAnswer != "" {
		out.Applied = true
		out.OriginalAnswer = structured
		if confidence > 0 {
			out.Confidence = math.Max(0.5, confidence*0.8)
		}
	}

	return out
}

// normalizeAnswer lowers and strips an answer down to its comparable core:
// the option letter for multiple choice, "number unit" for math, the
// prefix-stripped text otherwise.
func normalizeAnswer(s string, problemType ProblemType) string {
	if s == "" {
		return ""
	}

	s = strings.ToLower(strings.TrimSpace(s))
	s = answerPrefixRe.ReplaceAllString(s, "")

	switch problemType {
	case ProblemMultipleChoice:
		letters := standaloneLetterRe.FindAllString(strings.ToUpper(s), -1)
		if len(letters) > 0 {
			return letters[len(letters)-1]
		}
		return s
	case ProblemMath:
		if m := mathNormRe.FindStringSubmatch(s); m != nil {
			return strings.TrimSpace(m[1] + " " + m[2])
		}
	}

	return s
}
