package llm

import (
	"encoding/json"
	"strings"
)

// Model output arrives as free text that usually, but not always, contains a
// JSON object - sometimes wrapped in a markdown fence, sometimes surrounded by
// prose. ParseModelJSON is the single place that deals with that mess: every
// caller receives one fixed record shape and never inspects raw JSON again.

const (
	// RawResponseKey holds the original text when no JSON object could be parsed.
	RawResponseKey = "raw_response"

	// ParseErrorKey is set to true when no JSON object could be parsed.
	ParseErrorKey = "parse_error"
)

// ParseModelJSON extracts a JSON object from model output.
// It strips markdown code fences, then takes the outermost {...} span.
// When nothing parses, it returns {"raw_response": text, "parse_error": true}
// rather than an error - unparseable output is a normal model behaviour.
func ParseModelJSON(text string) map[string]interface{} {
	cleaned := strings.TrimSpace(text)

	// Strip markdown code fences
	if i := strings.Index(cleaned, "```json"); i >= 0 {
		start := i + len("```json")
		if end := strings.Index(cleaned[start:], "```"); end >= 0 {
			cleaned = strings.TrimSpace(cleaned[start : start+end])
		}
	} else if i := strings.Index(cleaned, "```"); i >= 0 {
		start := i + len("```")
		if end := strings.Index(cleaned[start:], "```"); end >= 0 {
			cleaned = strings.TrimSpace(cleaned[start : start+end])
		}
	}

	// Take the outermost JSON object boundaries
	if open := strings.Index(cleaned, "{"); open >= 0 {
		if close := strings.LastIndex(cleaned, "}"); close > open {
			cleaned = cleaned[open : close+1]
		}
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return map[string]interface{}{
			RawResponseKey: strings.TrimSpace(text),
			ParseErrorKey:  true,
		}
	}

	return parsed
}

// IsParseError reports whether a parsed record is the unparseable-output
// fallback produced by ParseModelJSON.
func IsParseError(parsed map[string]interface{}) bool {
	v, ok := parsed[ParseErrorKey].(bool)
	return ok && v
}

// StringValues flattens a parsed record into its string representation,
// used for substring checks against marker phrases like
// "continue, waiting for more information".
func StringValues(parsed map[string]interface{}) string {
	var b strings.Builder
	for k, v := range parsed {
		b.WriteString(k)
		b.WriteString(" ")
		if s, ok := v.(string); ok {
			b.WriteString(s)
		} else {
			raw, err := json.Marshal(v)
			if err == nil {
				b.Write(raw)
			}
		}
		b.WriteString(" ")
	}
	return b.String()
}
