// Package agent implements the participants of a deliberation: the five
// predefined roles (planner, decider, critic, cleaner, conflict resolver)
// plus generated domain experts. All variants expose one capability, Act,
// which reads a blackboard snapshot and returns the writes it wants made.
// Actors never touch the blackboard themselves; the orchestrator performs
// every append.
package agent

import (
	"context"
	"fmt"

	"github.com/dyluth/moot/internal/llm"
	"github.com/dyluth/moot/pkg/blackboard"
)

// Generator is the model capability an actor calls once per turn.
// *llm.Client satisfies it.
type Generator interface {
	Generate(ctx context.Context, params llm.GenerateParams) (*llm.Completion, error)
}

// Write is one blackboard append requested by an actor.
type Write struct {
	Scope      string
	Kind       blackboard.Kind
	Content    string
	Structured map[string]interface{}
}

// Result is the outcome of a single agent turn. SolutionReady, FinalAnswer
// and Confidence are only meaningful for the decider; everyone else leaves
// them zero.
type Result struct {
	Agent         string
	Role          Role
	Structured    map[string]interface{}
	Raw           string
	Writes        []Write
	SolutionReady bool
	FinalAnswer   string
	Confidence    float64
	Usage         llm.Usage
}

// Actor is the single capability the orchestrator invokes. Implementations
// must be safe to call from the round fan-out goroutines: an actor reads the
// snapshot it is given, calls its model, and returns; it holds no shared
// mutable state.
type Actor interface {
	Descriptor() Descriptor
	Act(ctx context.Context, problem string, snapshot *blackboard.Snapshot) (*Result, error)
}

// base carries what every actor variant needs for one model call.
type base struct {
	desc         Descriptor
	gen          Generator
	temperature  float64
	systemPrompt string
}

func (b *base) Descriptor() Descriptor {
	return b.desc
}

// complete performs the model call and parses the response into a JSON
// object, falling back to the raw-response wrapper when the model did not
// produce one.
func (b *base) complete(ctx context.Context, prompt string) (map[string]interface{}, string, llm.Usage, error) {
	completion, err := b.gen.Generate(ctx, llm.GenerateParams{
		Model:        b.desc.Model,
		Prompt:       prompt,
		SystemPrompt: b.systemPrompt,
		Temperature:  b.temperature,
	})
	if err != nil {
		return nil, "", llm.Usage{}, fmt.Errorf("agent %s: %w", b.desc.Name, err)
	}
	return llm.ParseModelJSON(completion.Content), completion.Content, completion.Usage, nil
}

// publicWrite builds the single public append most actors produce.
func publicWrite(kind blackboard.Kind, content string, structured map[string]interface{}) Write {
	return Write{
		Scope:      blackboard.ScopePublic,
		Kind:       kind,
		Content:    content,
		Structured: structured,
	}
}

// stringify renders a parsed JSON value the way it should appear in
// blackboard content.
func stringify(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// firstString returns the first of the given keys present in parsed,
// stringified, or raw when none is.
func firstString(parsed map[string]interface{}, raw string, keys ...string) string {
	for _, k := range keys {
		if v, ok := parsed[k]; ok {
			return stringify(v)
		}
	}
	return raw
}
