// Package scheduler picks which agents act in each deliberation round.
//
// Selection is model-driven: the control model sees the agent roster and the
// public board and suggests a set of names. The scheduler then enforces the
// rules the model cannot be trusted with: suggested names must exist in the
// pool, a critic must be present when a proposed answer is awaiting
// validation, and an unusable suggestion degrades to a deterministic default
// instead of stalling the round.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/dyluth/moot/internal/agent"
	"github.com/dyluth/moot/internal/llm"
	"github.com/dyluth/moot/pkg/blackboard"
)

// Selector is the model capability the scheduler calls once per round.
// *llm.Client satisfies it.
type Selector interface {
	SelectAgents(ctx context.Context, params llm.SelectParams) (*llm.Selection, error)
}

// Decision records one scheduling outcome for the execution trace.
type Decision struct {
	Round          int      `json:"round"`
	SelectedAgents []string `json:"selected_agents"`
	Reasoning      string   `json:"reasoning,omitempty"`
	RawResponse    string   `json:"raw_response,omitempty"`
	Fallback       bool     `json:"fallback,omitempty"`
}

// Scheduler holds the control model settings and the decision history for one
// session. It is driven by the orchestrator's round loop and is not safe for
// concurrent use.
type Scheduler struct {
	selector    Selector
	model       string
	temperature float64
	history     []Decision
}

// New returns a scheduler that asks the given model for round selections.
func New(selector Selector, model string, temperature float64) *Scheduler {
	return &Scheduler{
		selector:    selector,
		model:       model,
		temperature: temperature,
	}
}

// criticGateNote is appended to the board shown to the control model when a
// proposed answer is awaiting critic validation.
const criticGateNote = "IMPORTANT: The decider has marked the solution as ready. You MUST include the critic agent in your selection to validate the proposed solution."

// Select returns the names of the agents that should act this round, in
// execution order. It never fails the round: a selection call error or an
// unusable suggestion falls back to the pool's core roles.
func (s *Scheduler) Select(ctx context.Context, problem string, snapshot *blackboard.Snapshot, pool *agent.Pool, requireCritic bool) []string {
	board := snapshot.FormatTranscript()
	if requireCritic {
		board += "\n\n" + criticGateNote
	}

	decision := Decision{Round: snapshot.Round}

	var names []string
	selection, err := s.selector.SelectAgents(ctx, llm.SelectParams{
		Model:             s.model,
		Problem:           problem,
		AgentDescriptions: formatDescriptions(pool),
		Board:             board,
		Temperature:       s.temperature,
	})
	if err != nil {
		log.Printf("[Scheduler] Agent selection call failed for round %d: %v", snapshot.Round, err)
		decision.Fallback = true
	} else {
		decision.Reasoning = selection.Reasoning
		decision.RawResponse = selection.Raw
		names = validNames(selection.Names, pool)
	}

	if requireCritic && !containsCritic(names, pool) {
		if critics := pool.Critics(); len(critics) > 0 {
			names = append(names, critics[0])
		}
	}

	if len(names) == 0 {
		log.Printf("[Scheduler] No usable agent selection for round %d, using default roles", snapshot.Round)
		names = defaultSelection(pool)
		decision.Fallback = true
	}

	decision.SelectedAgents = names
	s.history = append(s.history, decision)
	return names
}

// History returns a copy of every scheduling decision made so far, in round
// order.
func (s *Scheduler) History() []Decision {
	out := make([]Decision, len(s.history))
	copy(out, s.history)
	return out
}

// validNames keeps the suggested names that exist in the pool, preserving
// suggestion order and dropping duplicates. Unknown names are logged; models
// routinely invent agents.
func validNames(suggested []string, pool *agent.Pool) []string {
	var names []string
	seen := make(map[string]bool, len(suggested))
	for _, name := range suggested {
		if seen[name] {
			continue
		}
		if _, ok := pool.Get(name); !ok {
			log.Printf("[Scheduler] Dropping unknown agent %q from selection", name)
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

func containsCritic(names []string, pool *agent.Pool) bool {
	for _, name := range names {
		if a, ok := pool.Get(name); ok {
			if desc := a.Descriptor(); desc.IsCritic() {
				return true
			}
		}
	}
	return false
}

// defaultSelection falls back to the pool's core roles: every planner,
// decider and critic, in pool order. A pool with none of those runs its
// first three agents.
func defaultSelection(pool *agent.Pool) []string {
	var names []string
	for _, desc := range pool.Descriptors() {
		switch desc.Role {
		case agent.RolePlanner, agent.RoleDecider, agent.RoleCritic:
			names = append(names, desc.Name)
		}
	}
	if len(names) == 0 {
		names = pool.Names()
		if len(names) > 3 {
			names = names[:3]
		}
	}
	return names
}

// formatDescriptions renders the roster block of the selection prompt.
func formatDescriptions(pool *agent.Pool) string {
	var b strings.Builder
	for i, desc := range pool.Descriptors() {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "- %s (%s): %s", desc.Name, desc.Role, desc.Description)
	}
	return b.String()
}
