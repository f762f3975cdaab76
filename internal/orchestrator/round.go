package orchestrator

import (
	"context"
	"log"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dyluth/moot/internal/agent"
	"github.com/dyluth/moot/pkg/blackboard"
)

// agentOutcome pairs one selected agent with what came back from its turn.
type agentOutcome struct {
	order  int
	name   string
	role   agent.Role
	result *agent.Result
	err    error
}

// runRound fans the selected agents out concurrently against the same
// snapshot and appends each successful result's writes as they complete.
// The round is a barrier: every invocation has finished, failed or timed out
// before runRound returns, and a single agent failure never fails the round.
// Outcomes come back in selection order for a stable trace.
func (e *Engine) runRound(ctx context.Context, state *ExecutionState, problem string, names []string, snapshot *blackboard.Snapshot) []agentOutcome {
	results := make(chan agentOutcome, len(names))

	g := new(errgroup.Group)
	launched := 0
	for i, name := range names {
		actor, ok := e.pool.Get(name)
		if !ok {
			continue
		}
		i, name, actor := i, name, actor
		g.Go(func() error {
			actCtx, cancel := context.WithTimeout(ctx, e.opts.AgentTimeout)
			defer cancel()

			res, err := actor.Act(actCtx, problem, snapshot)
			results <- agentOutcome{
				order:  i,
				name:   name,
				role:   actor.Descriptor().Role,
				result: res,
				err:    err,
			}
			return nil
		})
		launched++
	}

	go func() {
		_ = g.Wait()
		close(results)
	}()

	// Only this goroutine touches the blackboard and the state, so agents
	// stay pure model calls and writes land in completion order.
	outcomes := make([]agentOutcome, 0, launched)
	for outcome := range results {
		if outcome.err != nil {
			log.Printf("[Orchestrator] Agent %s failed in round %d: %v", outcome.name, state.Round, outcome.err)
			state.audit(AuditAgentError, outcome.name, outcome.err.Error(), nil)
		} else {
			e.appendWrites(ctx, state, outcome)
		}
		outcomes = append(outcomes, outcome)
	}

	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].order < outcomes[j].order })
	return outcomes
}

// appendWrites persists one agent's writes, stamped with the current round.
// A failed append is audited and skipped rather than aborting the round.
func (e *Engine) appendWrites(ctx context.Context, state *ExecutionState, o agentOutcome) {
	for _, w := range o.result.Writes {
		msg := &blackboard.Message{
			ID:         uuid.New().String(),
			Author:     o.name,
			Round:      state.Round,
			Scope:      w.Scope,
			Kind:       w.Kind,
			Structured: w.Structured,
			Freeform:   w.Content,
		}
		if err := e.board.AppendMessage(ctx, msg); err != nil {
			log.Printf("[Orchestrator] Failed to append %s message from %s: %v", w.Kind, o.name, err)
			state.audit(AuditAgentError, o.name, "append failed: "+err.Error(), nil)
		}
	}
}
