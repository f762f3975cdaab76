package agent

import (
	"context"
	"fmt"

	"github.com/dyluth/moot/pkg/blackboard"
)

// Expert is a generated, domain-specific contributor. Experts are produced
// once at session start from a domain analysis of the problem; their role
// string and description are immutable afterwards.
type Expert struct {
	base
	role string
}

// NewExpert builds an expert actor for a generated role. The role is
// expected to be a slug (see llm.GenerateExpertRoles); the agent name becomes
// "expert_<role>".
func NewExpert(role, description, model string, gen Generator, temperature float64) *Expert {
	return &Expert{
		base: base{
			desc: Descriptor{
				Name:        "expert_" + role,
				Role:        RoleExpert,
				Description: description,
				Model:       model,
			},
			gen:          gen,
			temperature:  temperature,
			systemPrompt: fmt.Sprintf("You are an expert %s with the following expertise: %s", role, description),
		},
		role: role,
	}
}

func (e *Expert) Act(ctx context.Context, problem string, snapshot *blackboard.Snapshot) (*Result, error) {
	prompt := expertPrompt(e.desc.Name, e.role, e.desc.Description, problem, snapshot.FormatTranscript())
	parsed, raw, usage, err := e.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var content string
	if v, ok := parsed["output"]; ok {
		content = stringify(v)
	} else {
		content = firstString(parsed, raw, "expert_analysis", "contribution")
	}

	return &Result{
		Agent:      e.desc.Name,
		Role:       RoleExpert,
		Structured: parsed,
		Raw:        raw,
		Writes:     []Write{publicWrite(blackboard.KindExpert, content, parsed)},
		Usage:      usage,
	}, nil
}
