// Package orchestrator runs the deliberation loop. Each round it asks the
// scheduler which agents act, fans them out concurrently against one shared
// snapshot, appends their writes, and applies the critic gate to the
// decider's readiness signal. A run terminates when a critic-validated
// answer lands or the round budget runs out, in which case the fallback
// chain recovers whatever answer the blackboard actually holds.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dyluth/moot/internal/agent"
	"github.com/dyluth/moot/internal/scheduler"
	"github.com/dyluth/moot/internal/validate"
	"github.com/dyluth/moot/pkg/blackboard"
)

// DefaultAgentTimeout bounds one agent invocation when Options leaves
// AgentTimeout unset. Local models can be slow, hence the generous value.
const DefaultAgentTimeout = 300 * time.Second

// Options bounds one deliberation run.
type Options struct {
	// MaxRounds caps how many rounds may run before the fallback chain.
	MaxRounds int
	// AgentTimeout bounds each agent invocation within a round.
	AgentTimeout time.Duration
	// PreferStructured flips cross-validation precedence toward the
	// decider's structured answer when it disagrees with its explanation.
	PreferStructured bool
}

// Engine drives one deliberation session end to end.
type Engine struct {
	board     *blackboard.Client
	pool      *agent.Pool
	sched     *scheduler.Scheduler
	validator validate.Validator
	opts      Options
}

// NewEngine wires an engine to a session-scoped blackboard client, an agent
// pool and a scheduler.
func NewEngine(board *blackboard.Client, pool *agent.Pool, sched *scheduler.Scheduler, opts Options) (*Engine, error) {
	if board == nil {
		return nil, fmt.Errorf("blackboard client cannot be nil")
	}
	if pool == nil || pool.Len() == 0 {
		return nil, fmt.Errorf("agent pool cannot be empty")
	}
	if sched == nil {
		return nil, fmt.Errorf("scheduler cannot be nil")
	}
	if opts.MaxRounds < 1 {
		return nil, fmt.Errorf("max rounds must be at least 1, got %d", opts.MaxRounds)
	}
	if opts.AgentTimeout <= 0 {
		opts.AgentTimeout = DefaultAgentTimeout
	}

	return &Engine{
		board:     board,
		pool:      pool,
		sched:     sched,
		validator: validate.Validator{PreferStructured: opts.PreferStructured},
		opts:      opts,
	}, nil
}

// Result is everything a run produced, shaped for traces and the CLI.
type Result struct {
	Session         string               `json:"session"`
	Problem         string               `json:"problem"`
	ProblemType     string               `json:"problem_type"`
	FinalAnswer     string               `json:"final_answer"`
	AnswerSource    string               `json:"answer_source"`
	CriticValidated bool                 `json:"critic_validated"`
	Phase           Phase                `json:"phase"`
	RoundsUsed      int                  `json:"rounds_used"`
	MaxRounds       int                  `json:"max_rounds"`
	TotalTokens     int                  `json:"total_tokens"`
	Rounds          []RoundTrace         `json:"rounds"`
	Selections      []scheduler.Decision `json:"scheduling"`
	Audit           []AuditEvent         `json:"validation_audit"`
	StartedAt       time.Time            `json:"started_at"`
	FinishedAt      time.Time            `json:"finished_at"`
}

// RoundTrace records one round for the execution trace.
type RoundTrace struct {
	Round    int           `json:"round"`
	Selected []string      `json:"selected_agents"`
	Actions  []AgentAction `json:"actions"`
	Board    string        `json:"board,omitempty"`
}

// AgentAction records one agent invocation inside a round.
type AgentAction struct {
	Agent         string                    `json:"agent"`
	Role          string                    `json:"role"`
	Error         string                    `json:"error,omitempty"`
	SolutionReady bool                      `json:"solution_ready,omitempty"`
	FinalAnswer   string                    `json:"final_answer,omitempty"`
	Tokens        int                       `json:"tokens,omitempty"`
	Raw           string                    `json:"raw_response,omitempty"`
	Validation    *validate.CrossValidation `json:"validation,omitempty"`
}

// Run executes the full deliberation for one problem. It returns an error
// only for infrastructure failures (Redis unreachable, bad arguments);
// agent failures, timeouts and malformed model output are absorbed into the
// round loop and the audit trail.
func (e *Engine) Run(ctx context.Context, problem string) (*Result, error) {
	if strings.TrimSpace(problem) == "" {
		return nil, fmt.Errorf("problem cannot be empty")
	}

	startedAt := time.Now().UTC()
	state := newExecutionState(e.opts.MaxRounds)
	problemType := validate.DetectProblemType(problem)

	log.Printf("[Orchestrator] Starting deliberation for session '%s' (max %d rounds, problem type %s)",
		e.board.SessionName(), e.opts.MaxRounds, problemType)
	e.logEvent("deliberation_started", map[string]interface{}{
		"max_rounds":   e.opts.MaxRounds,
		"problem_type": string(problemType),
		"agents":       e.pool.Names(),
	})

	if err := e.board.InitSession(ctx, problem); err != nil {
		return nil, fmt.Errorf("failed to initialise session: %w", err)
	}
	if err := e.seedProblem(ctx, problem); err != nil {
		return nil, err
	}

	result := &Result{
		Session:     e.board.SessionName(),
		Problem:     problem,
		ProblemType: string(problemType),
		MaxRounds:   e.opts.MaxRounds,
		StartedAt:   startedAt,
	}

	for state.Round < state.MaxRounds && !state.Phase.Terminal() {
		round, err := e.board.IncrementRound(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to advance round: %w", err)
		}
		state.Round = round
		state.transition(PhaseRoundActive)

		snapshot, err := e.board.GetSnapshot(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to snapshot blackboard: %w", err)
		}

		requireCritic := state.PendingCriticValidation
		names := e.sched.Select(ctx, problem, snapshot, e.pool, requireCritic)
		state.SelectedHistory = append(state.SelectedHistory, RoundSelection{Round: round, Names: names})
		state.audit(AuditAgentSelection, "", strings.Join(names, ", "), map[string]interface{}{
			"require_critic": requireCritic,
		})
		log.Printf("[Orchestrator] Round %d/%d: %s", round, state.MaxRounds, strings.Join(names, ", "))

		outcomes := e.runRound(ctx, state, problem, names, snapshot)
		trace, criticActed := e.processOutcomes(state, problemType, names, outcomes)

		endSnap, err := e.board.GetSnapshot(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to snapshot blackboard: %w", err)
		}
		trace.Board = endSnap.FormatTranscript()
		result.Rounds = append(result.Rounds, trace)
		for _, a := range trace.Actions {
			result.TotalTokens += a.Tokens
		}

		// Critic gate: a ready signal only terminates the run if a critic
		// acted in the same round. Otherwise the candidate waits and the
		// next round is forced to include a critic.
		if state.IsSolutionReady {
			if criticActed {
				state.acceptCandidate()
				state.transition(PhaseTerminatedSuccess)
				log.Printf("[Orchestrator] Solution validated in round %d: %s", round, *state.FinalAnswer)
				e.logEvent("deliberation_succeeded", map[string]interface{}{
					"round":  round,
					"answer": *state.FinalAnswer,
				})
			} else {
				state.deferToCritic()
				state.transition(PhaseAwaitingCritic)
				log.Printf("[Orchestrator] Decider ready in round %d but no critic acted, forcing critic review next round", round)
			}
		}
	}

	if !state.Phase.Terminal() {
		snapshot, err := e.board.GetSnapshot(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to snapshot blackboard: %w", err)
		}
		answer, source := fallbackAnswer(snapshot, problemType)
		state.AnswerSource = source
		if source != SourceNone {
			state.FinalAnswer = &answer
		}
		state.audit(AuditFallbackAnswer, "", source, map[string]interface{}{"answer": answer})
		state.transition(PhaseTerminatedMaxRounds)
		log.Printf("[Orchestrator] Max rounds reached, fallback answer %q (source %s)", answer, source)
		e.logEvent("deliberation_exhausted", map[string]interface{}{
			"rounds":        state.Round,
			"answer":        answer,
			"answer_source": source,
		})
	}

	result.Phase = state.Phase
	result.RoundsUsed = state.Round
	result.CriticValidated = state.CriticValidated
	result.AnswerSource = state.AnswerSource
	if state.FinalAnswer != nil {
		result.FinalAnswer = *state.FinalAnswer
	}
	result.Audit = state.ValidationAudit
	result.Selections = e.sched.History()
	result.FinishedAt = time.Now().UTC()
	return result, nil
}

// seedProblem posts the problem statement as the first public message so the
// round-1 transcript is never empty.
func (e *Engine) seedProblem(ctx context.Context, problem string) error {
	msg := &blackboard.Message{
		ID:       uuid.New().String(),
		Author:   "user",
		Round:    1,
		Scope:    blackboard.ScopePublic,
		Kind:     blackboard.KindNote,
		Freeform: problem,
	}
	if err := e.board.AppendMessage(ctx, msg); err != nil {
		return fmt.Errorf("failed to seed problem statement: %w", err)
	}
	return nil
}

// processOutcomes turns the round's outcomes into a trace, feeds decider
// readiness through cross-validation, and reports whether a critic acted.
func (e *Engine) processOutcomes(state *ExecutionState, problemType validate.ProblemType, selected []string, outcomes []agentOutcome) (RoundTrace, bool) {
	trace := RoundTrace{Round: state.Round, Selected: selected}
	criticActed := false

	for _, o := range outcomes {
		action := AgentAction{Agent: o.name, Role: string(o.role)}
		if o.err != nil {
			action.Error = o.err.Error()
			trace.Actions = append(trace.Actions, action)
			continue
		}

		action.Tokens = o.result.Usage.Total()
		action.Raw = o.result.Raw
		if o.role == agent.RoleCritic {
			criticActed = true
		}

		if o.role == agent.RoleDecider && o.result.SolutionReady {
			cv := e.validator.CrossValidate(o.result.FinalAnswer, o.result.Raw, o.result.Confidence, problemType)
			if cv.Applied {
				log.Printf("[Orchestrator] Cross-validation corrected decider answer %q to %q", cv.OriginalAnswer, cv.Answer)
			}
			state.audit(AuditValidation, o.name, cv.Reason, map[string]interface{}{
				"consistent": cv.Consistent,
				"applied":    cv.Applied,
				"answer":     cv.Answer,
			})
			state.Candidate = cv.Answer
			state.IsSolutionReady = true
			state.audit(AuditDecision, o.name, "solution ready", map[string]interface{}{
				"candidate":  cv.Answer,
				"confidence": o.result.Confidence,
			})

			action.SolutionReady = true
			action.FinalAnswer = cv.Answer
			action.Validation = &cv
		}

		trace.Actions = append(trace.Actions, action)
	}

	return trace, criticActed
}

// logEvent logs a structured event in JSON format.
func (e *Engine) logEvent(eventType string, data map[string]interface{}) {
	data["timestamp"] = time.Now().UTC().Format(time.RFC3339)
	data["level"] = "info"
	data["component"] = "orchestrator"
	data["event_type"] = eventType
	data["session"] = e.board.SessionName()

	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Printf("[Orchestrator] Failed to marshal log event: %v", err)
		return
	}
	log.Println(string(jsonData))
}
