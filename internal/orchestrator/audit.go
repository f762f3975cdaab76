package orchestrator

import "time"

// Audit event types.
const (
	AuditStateTransition = "state_transition"
	AuditAgentSelection  = "agent_selection"
	AuditAgentError      = "agent_error"
	AuditValidation      = "validation"
	AuditDecision        = "decision"
	AuditFallbackAnswer  = "fallback_answer"
)

// AuditEvent is one entry in the ordered audit trail. Agent errors, state
// transitions, selections, validation corrections and fallback extractions
// all land here so a run can be reconstructed after the fact.
type AuditEvent struct {
	Round     int                    `json:"round"`
	Type      string                 `json:"type"`
	Agent     string                 `json:"agent,omitempty"`
	Detail    string                 `json:"detail,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (s *ExecutionState) audit(eventType, agentName, detail string, data map[string]interface{}) {
	s.ValidationAudit = append(s.ValidationAudit, AuditEvent{
		Round:     s.Round,
		Type:      eventType,
		Agent:     agentName,
		Detail:    detail,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}
