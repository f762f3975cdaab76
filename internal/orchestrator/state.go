package orchestrator

import "fmt"

// Phase names the orchestrator's position in the deliberation state machine.
type Phase string

const (
	// PhaseInit covers session setup before the first round starts.
	PhaseInit Phase = "INIT"
	// PhaseRoundActive means selected agents are acting concurrently.
	PhaseRoundActive Phase = "ROUND_ACTIVE"
	// PhaseAwaitingCritic means the decider signalled readiness in a round
	// where no critic acted, so the next round must include one.
	PhaseAwaitingCritic Phase = "AWAITING_CRITIC"
	// PhaseTerminatedSuccess means a critic-validated answer was accepted.
	PhaseTerminatedSuccess Phase = "TERMINATED_SUCCESS"
	// PhaseTerminatedMaxRounds means the round budget ran out and the answer
	// (if any) came from the fallback extraction chain.
	PhaseTerminatedMaxRounds Phase = "TERMINATED_MAXROUNDS"
)

// Terminal reports whether the phase ends the deliberation.
func (p Phase) Terminal() bool {
	return p == PhaseTerminatedSuccess || p == PhaseTerminatedMaxRounds
}

// Answer provenance labels. The fallback chain labels where the answer was
// recovered from; a validated decider answer is labelled SourceDecider.
const (
	SourceDecider          = "decider"
	SourcePublicDecision   = "public_decision"
	SourcePublicExtraction = "public_message_extraction"
	SourcePublicLast       = "public_last_message"
	SourceNone             = "none"

	privateSourcePrefix = "private_space_"
)

// RoundSelection records which agents were chosen for one round.
type RoundSelection struct {
	Round int      `json:"round"`
	Names []string `json:"names"`
}

// ExecutionState tracks one deliberation run. It is owned exclusively by the
// engine goroutine; agents never see or mutate it.
type ExecutionState struct {
	Round                   int
	MaxRounds               int
	Phase                   Phase
	IsSolutionReady         bool
	PendingCriticValidation bool

	// Candidate is the cross-validated decider answer waiting on the
	// critic gate. Promoted to FinalAnswer only when a critic acted in
	// the same round the decider signalled readiness.
	Candidate string

	FinalAnswer     *string
	AnswerSource    string
	CriticValidated bool

	SelectedHistory []RoundSelection
	ValidationAudit []AuditEvent
}

func newExecutionState(maxRounds int) *ExecutionState {
	return &ExecutionState{
		MaxRounds:    maxRounds,
		Phase:        PhaseInit,
		AnswerSource: SourceNone,
	}
}

// transition moves the state machine to the given phase and audits the edge.
// Self-edges (consecutive active rounds) are not audited; round boundaries
// already show up as selection events.
func (s *ExecutionState) transition(to Phase) {
	if s.Phase == to {
		return
	}
	from := s.Phase
	s.Phase = to
	s.audit(AuditStateTransition, "", fmt.Sprintf("%s -> %s", from, to), nil)
}

// acceptCandidate promotes the current candidate to the final answer after
// the critic gate passed.
func (s *ExecutionState) acceptCandidate() {
	answer := s.Candidate
	s.FinalAnswer = &answer
	s.AnswerSource = SourceDecider
	s.CriticValidated = true
	s.PendingCriticValidation = false
}

// deferToCritic parks the candidate and forces a critic into the next round.
func (s *ExecutionState) deferToCritic() {
	s.IsSolutionReady = false
	s.PendingCriticValidation = true
}
