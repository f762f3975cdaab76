package blackboard

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ScopePublic is the scope name of the public log, readable by every agent.
// Any other scope value names a private space (see spaces.go).
const ScopePublic = "public"

// Message represents one immutable contribution to the deliberation.
// Messages are the fundamental unit of state in Moot - every plan, critique,
// decision and expert analysis is a message with complete provenance.
type Message struct {
	ID          string                 `json:"id"`           // UUID - unique identifier for this message
	Author      string                 `json:"author"`       // Agent name or "user"
	Round       int                    `json:"round"`        // Round the message was written in (starts at 1)
	Scope       string                 `json:"scope"`        // ScopePublic or a private space key
	Kind        Kind                   `json:"kind"`         // Role of the message in the deliberation
	Structured  map[string]interface{} `json:"structured"`   // Parsed structured output from the model
	Freeform    string                 `json:"freeform"`     // Natural-language content
	CreatedAtMs int64                  `json:"created_at_ms"` // Unix timestamp in milliseconds when message was appended
}

// Kind classifies the role a message plays in the deliberation.
// The set is closed: agents are selected by role tag at runtime and every
// role writes exactly one kind of message.
type Kind string

const (
	// KindPlan represents a planner's decomposition of the problem
	KindPlan Kind = "plan"

	// KindCritique represents a critic's assessment of prior messages
	KindCritique Kind = "critique"

	// KindCleanup represents a cleaner's annotation of redundant messages
	KindCleanup Kind = "cleanup"

	// KindConflict represents a conflict resolver's report of contradictory statements
	KindConflict Kind = "conflict"

	// KindExpert represents a generated expert's domain contribution
	KindExpert Kind = "expert"

	// KindDecision represents a decider's answer proposal or continuation marker
	KindDecision Kind = "decision"

	// KindNote represents any other contribution (problem statements, manual notes)
	KindNote Kind = "note"
)

// SessionMeta holds descriptive metadata about a session, stored once at
// session start. It exists for inspection tooling; the deliberation itself
// only reads messages.
type SessionMeta struct {
	Problem     string `json:"problem"`
	CreatedAtMs int64  `json:"created_at_ms"`
}

// Validate checks if the Message has valid field values.
// Returns an error if any validation fails.
func (m *Message) Validate() error {
	if !isValidUUID(m.ID) {
		return fmt.Errorf("invalid message ID: not a valid UUID")
	}

	if m.Author == "" {
		return fmt.Errorf("message author cannot be empty")
	}

	if m.Round < 1 {
		return fmt.Errorf("invalid round: must be >= 1, got %d", m.Round)
	}

	if err := ValidateScope(m.Scope); err != nil {
		return fmt.Errorf("invalid scope: %w", err)
	}

	if err := m.Kind.Validate(); err != nil {
		return fmt.Errorf("invalid kind: %w", err)
	}

	return nil
}

// Validate checks if the Kind is a valid enum value.
func (k Kind) Validate() error {
	switch k {
	case KindPlan, KindCritique, KindCleanup, KindConflict,
		KindExpert, KindDecision, KindNote:
		return nil
	default:
		return fmt.Errorf("unknown message kind: %q", k)
	}
}

// ValidateScope checks that a scope name is usable as a Redis key segment.
// ScopePublic is always valid; private space keys must be non-empty and
// must not contain characters that would break the key schema.
func ValidateScope(scope string) error {
	if scope == "" {
		return fmt.Errorf("scope cannot be empty")
	}

	if strings.ContainsAny(scope, ": \t\n") {
		return fmt.Errorf("scope %q contains invalid characters", scope)
	}

	return nil
}

// isValidUUID checks if a string is a valid UUID format.
func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
