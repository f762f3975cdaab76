package blackboard

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Serialization helpers for converting between Go structs and Redis hashes
//
// Redis stores data as string-to-string maps (hashes). The structured field is
// JSON-encoded into a single hash field. This provides a balance between
// queryability (individual fields) and flexibility (arbitrary model output).

// MessageToHash converts a Message struct to a Redis hash format.
// The structured map is JSON-encoded.
func MessageToHash(m *Message) (map[string]interface{}, error) {
	structuredJSON, err := json.Marshal(m.Structured)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal structured field: %w", err)
	}

	hash := map[string]interface{}{
		"id":            m.ID,
		"author":        m.Author,
		"round":         m.Round,
		"scope":         m.Scope,
		"kind":          string(m.Kind),
		"structured":    string(structuredJSON),
		"freeform":      m.Freeform,
		"created_at_ms": m.CreatedAtMs,
	}

	return hash, nil
}

// HashToMessage converts a Redis hash to a Message struct.
// JSON fields are decoded back to Go types.
func HashToMessage(hash map[string]string) (*Message, error) {
	round, err := strconv.Atoi(hash["round"])
	if err != nil {
		return nil, fmt.Errorf("invalid round field: %w", err)
	}

	var structured map[string]interface{}
	if structuredJSON := hash["structured"]; structuredJSON != "" && structuredJSON != "null" {
		if err := json.Unmarshal([]byte(structuredJSON), &structured); err != nil {
			return nil, fmt.Errorf("failed to unmarshal structured field: %w", err)
		}
	}

	// Ensure we have an empty map instead of nil for consistency
	if structured == nil {
		structured = map[string]interface{}{}
	}

	createdAtMs, _ := strconv.ParseInt(hash["created_at_ms"], 10, 64)

	msg := &Message{
		ID:          hash["id"],
		Author:      hash["author"],
		Round:       round,
		Scope:       hash["scope"],
		Kind:        Kind(hash["kind"]),
		Structured:  structured,
		Freeform:    hash["freeform"],
		CreatedAtMs: createdAtMs,
	}

	return msg, nil
}

// MetaToHash converts SessionMeta to a Redis hash format.
func MetaToHash(meta *SessionMeta) map[string]interface{} {
	return map[string]interface{}{
		"problem":       meta.Problem,
		"created_at_ms": meta.CreatedAtMs,
	}
}

// HashToMeta converts a Redis hash to SessionMeta.
func HashToMeta(hash map[string]string) *SessionMeta {
	createdAtMs, _ := strconv.ParseInt(hash["created_at_ms"], 10, 64)
	return &SessionMeta{
		Problem:     hash["problem"],
		CreatedAtMs: createdAtMs,
	}
}
