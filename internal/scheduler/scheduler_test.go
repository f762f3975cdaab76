package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/moot/internal/agent"
	"github.com/dyluth/moot/internal/llm"
	"github.com/dyluth/moot/pkg/blackboard"
)

type fakeSelector struct {
	selection  *llm.Selection
	err        error
	lastParams llm.SelectParams
}

func (f *fakeSelector) SelectAgents(_ context.Context, params llm.SelectParams) (*llm.Selection, error) {
	f.lastParams = params
	if f.err != nil {
		return nil, f.err
	}
	return f.selection, nil
}

type stubGenerator struct{}

func (stubGenerator) Generate(_ context.Context, params llm.GenerateParams) (*llm.Completion, error) {
	return &llm.Completion{Content: "{}", Model: params.Model}, nil
}

func fullPool(t *testing.T) *agent.Pool {
	t.Helper()
	gen := stubGenerator{}
	pool, err := agent.NewPool(
		agent.NewPlanner("planner", "llama3.1:8b", gen, 0.7),
		agent.NewDecider("decider", "llama3.1:8b", gen, 0.7),
		agent.NewCritic("critic", "llama3.1:8b", gen, 0.7),
		agent.NewExpert("chemist", "Knows stoichiometry", "llama3.1:8b", gen, 0.7),
	)
	require.NoError(t, err)
	return pool
}

func snapshotAtRound(round int) *blackboard.Snapshot {
	s := blackboard.EmptySnapshot()
	s.Round = round
	return s
}

func TestSelect_UsesModelSuggestion(t *testing.T) {
	sel := &fakeSelector{selection: &llm.Selection{
		Names:     []string{"planner", "expert_chemist"},
		Reasoning: "start with a plan",
		Raw:       `{"chosen agents": ["planner", "expert_chemist"]}`,
	}}
	sched := New(sel, "llama3.1:8b", 0.7)

	names := sched.Select(context.Background(), "problem", snapshotAtRound(1), fullPool(t), false)
	assert.Equal(t, []string{"planner", "expert_chemist"}, names)

	history := sched.History()
	require.Len(t, history, 1)
	assert.Equal(t, 1, history[0].Round)
	assert.Equal(t, []string{"planner", "expert_chemist"}, history[0].SelectedAgents)
	assert.Equal(t, "start with a plan", history[0].Reasoning)
	assert.False(t, history[0].Fallback)
}

func TestSelect_DropsUnknownAndDuplicateNames(t *testing.T) {
	sel := &fakeSelector{selection: &llm.Selection{
		Names: []string{"planner", "ghost", "planner", "decider"},
	}}
	sched := New(sel, "llama3.1:8b", 0.7)

	names := sched.Select(context.Background(), "problem", snapshotAtRound(1), fullPool(t), false)
	assert.Equal(t, []string{"planner", "decider"}, names)
}

func TestSelect_CriticGateAppendsCritic(t *testing.T) {
	sel := &fakeSelector{selection: &llm.Selection{
		Names: []string{"planner", "decider"},
	}}
	sched := New(sel, "llama3.1:8b", 0.7)

	names := sched.Select(context.Background(), "problem", snapshotAtRound(2), fullPool(t), true)
	assert.Equal(t, []string{"planner", "decider", "critic"}, names)
	assert.Contains(t, sel.lastParams.Board, "MUST include the critic agent")
}

func TestSelect_CriticGateKeepsExistingCritic(t *testing.T) {
	sel := &fakeSelector{selection: &llm.Selection{
		Names: []string{"critic", "decider"},
	}}
	sched := New(sel, "llama3.1:8b", 0.7)

	names := sched.Select(context.Background(), "problem", snapshotAtRound(2), fullPool(t), true)
	assert.Equal(t, []string{"critic", "decider"}, names, "no duplicate critic appended")
}

func TestSelect_NoGateNoteWithoutRequireCritic(t *testing.T) {
	sel := &fakeSelector{selection: &llm.Selection{Names: []string{"planner"}}}
	sched := New(sel, "llama3.1:8b", 0.7)

	sched.Select(context.Background(), "problem", snapshotAtRound(1), fullPool(t), false)
	assert.NotContains(t, sel.lastParams.Board, "MUST include the critic agent")
}

func TestSelect_SelectorErrorFallsBack(t *testing.T) {
	sel := &fakeSelector{err: errors.New("model unreachable")}
	sched := New(sel, "llama3.1:8b", 0.7)

	names := sched.Select(context.Background(), "problem", snapshotAtRound(1), fullPool(t), false)
	assert.Equal(t, []string{"planner", "decider", "critic"}, names)

	history := sched.History()
	require.Len(t, history, 1)
	assert.True(t, history[0].Fallback)
}

func TestSelect_EmptySuggestionFallsBack(t *testing.T) {
	sel := &fakeSelector{selection: &llm.Selection{Names: []string{"ghost", "phantom"}}}
	sched := New(sel, "llama3.1:8b", 0.7)

	names := sched.Select(context.Background(), "problem", snapshotAtRound(1), fullPool(t), false)
	assert.Equal(t, []string{"planner", "decider", "critic"}, names)
	assert.True(t, sched.History()[0].Fallback)
}

func TestSelect_FallbackWithoutCoreRolesTakesFirstThree(t *testing.T) {
	gen := stubGenerator{}
	pool, err := agent.NewPool(
		agent.NewExpert("chemist", "Stoichiometry", "llama3.1:8b", gen, 0.7),
		agent.NewExpert("physicist", "Mechanics", "llama3.1:8b", gen, 0.7),
		agent.NewExpert("biologist", "Cells", "llama3.1:8b", gen, 0.7),
		agent.NewExpert("geologist", "Rocks", "llama3.1:8b", gen, 0.7),
	)
	require.NoError(t, err)

	sel := &fakeSelector{err: errors.New("down")}
	sched := New(sel, "llama3.1:8b", 0.7)

	names := sched.Select(context.Background(), "problem", snapshotAtRound(1), pool, false)
	assert.Equal(t, []string{"expert_chemist", "expert_physicist", "expert_biologist"}, names)
}

func TestSelect_PromptCarriesRosterAndProblem(t *testing.T) {
	sel := &fakeSelector{selection: &llm.Selection{Names: []string{"planner"}}}
	sched := New(sel, "llama3.1:8b", 0.7)

	sched.Select(context.Background(), "how many trinkets?", snapshotAtRound(1), fullPool(t), false)

	assert.Equal(t, "how many trinkets?", sel.lastParams.Problem)
	assert.Contains(t, sel.lastParams.AgentDescriptions, "- planner (planner):")
	assert.Contains(t, sel.lastParams.AgentDescriptions, "- expert_chemist (expert): Knows stoichiometry")
	assert.Equal(t, "llama3.1:8b", sel.lastParams.Model)
}

func TestSelect_HistoryAccumulatesAcrossRounds(t *testing.T) {
	sel := &fakeSelector{selection: &llm.Selection{Names: []string{"planner"}}}
	sched := New(sel, "llama3.1:8b", 0.7)

	pool := fullPool(t)
	sched.Select(context.Background(), "problem", snapshotAtRound(1), pool, false)
	sched.Select(context.Background(), "problem", snapshotAtRound(2), pool, false)

	history := sched.History()
	require.Len(t, history, 2)
	assert.Equal(t, 1, history[0].Round)
	assert.Equal(t, 2, history[1].Round)
}
