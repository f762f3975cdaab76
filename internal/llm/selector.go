package llm

import (
	"context"
	"fmt"
)

const controlUnitTpl = `Your task is to schedule other agents to cooperate and solve the given problem. The agent names and descriptions are listed below:
%s. The given problem is:%s. Agents are sharing information on the blackboard. Based on the contents existed on the blackboard, you need to choose suitable agents from agent list to write on the blackboard. Remember Output the agent names in the json form: {"chosen agents":[list of agent name]}

Current blackboard state:
%s`

// SelectParams carries one scheduling request.
type SelectParams struct {
	Model             string
	Problem           string
	AgentDescriptions string
	Board             string
	Temperature       float64
}

// Selection is the model's scheduling suggestion, before any validity
// filtering. Names may contain unknown agents; the scheduler deals with
// that.
type Selection struct {
	Names     []string
	Reasoning string
	Raw       string
}

// SelectAgents asks the model which agents should act next. The prompt asks
// for {"chosen agents": [...]}; "selected_agents" is accepted too since
// models drift between the two spellings.
func (c *Client) SelectAgents(ctx context.Context, params SelectParams) (*Selection, error) {
	prompt := fmt.Sprintf(controlUnitTpl, params.AgentDescriptions, params.Problem, params.Board)
	completion, err := c.Generate(ctx, GenerateParams{
		Model:       params.Model,
		Prompt:      prompt,
		Temperature: params.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("selecting agents: %w", err)
	}

	parsed := ParseModelJSON(completion.Content)
	selection := &Selection{Raw: completion.Content}

	names, ok := parsed["chosen agents"].([]interface{})
	if !ok {
		names, _ = parsed["selected_agents"].([]interface{})
	}
	for _, v := range names {
		if s, isString := v.(string); isString {
			selection.Names = append(selection.Names, s)
		}
	}
	if reasoning, isString := parsed["reasoning"].(string); isString {
		selection.Reasoning = reasoning
	}
	return selection, nil
}
