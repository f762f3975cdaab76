package agent

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/dyluth/moot/internal/llm"
	"github.com/dyluth/moot/internal/validate"
	"github.com/dyluth/moot/pkg/blackboard"
)

// Marker phrases the role prompts instruct models to emit. Parsing matches
// on these, so they must stay aligned with the templates in prompts.go.
const (
	noDecompositionMarker = "there is no need to decompose tasks"
	continueMarker        = "continue, waiting for more information"
	noProblemMarker       = "no problem, waiting for more information"
	noUselessMarker       = "no useless messages, waiting for more information"
	noConflictsMarker     = "no conflicts, waiting for more information"
)

var (
	boxedAnswerRe    = regexp.MustCompile(`(?i)boxed\[(.*?)\]`)
	boxedAnswerAltRe = regexp.MustCompile(`(?i)boxed\s*[\[\(]?\s*([A-D0-9]+)\s*[\]\)]?`)
)

// Planner decomposes the problem into a plan, or signals that no
// decomposition is needed.
type Planner struct {
	base
}

func NewPlanner(name, model string, gen Generator, temperature float64) *Planner {
	return &Planner{base{
		desc: Descriptor{
			Name:        name,
			Role:        RolePlanner,
			Description: "Breaks down complex problems into manageable steps",
			Model:       model,
		},
		gen:          gen,
		temperature:  temperature,
		systemPrompt: "You are a strategic planner who breaks down complex problems into manageable steps.",
	}}
}

func (p *Planner) Act(ctx context.Context, problem string, snapshot *blackboard.Snapshot) (*Result, error) {
	parsed, raw, usage, err := p.complete(ctx, plannerPrompt(problem, snapshot.FormatTranscript()))
	if err != nil {
		return nil, err
	}

	var content string
	_, hasProblem := parsed["[problem]"]
	_, hasPlanning := parsed["[planning]"]
	switch {
	case hasProblem && hasPlanning:
		content = fmt.Sprintf("Problem: %s\nPlanning: %s", stringify(parsed["[problem]"]), stringify(parsed["[planning]"]))
	case strings.Contains(llm.StringValues(parsed), noDecompositionMarker):
		content = "No need to decompose tasks, waiting for more information"
	default:
		content = firstString(parsed, raw, "plan", "[planning]")
	}

	return &Result{
		Agent:      p.desc.Name,
		Role:       RolePlanner,
		Structured: parsed,
		Raw:        raw,
		Writes:     []Write{publicWrite(blackboard.KindPlan, content, parsed)},
		Usage:      usage,
	}, nil
}

// Decider judges whether the blackboard holds enough to answer, and if so
// proposes the final answer.
type Decider struct {
	base
}

func NewDecider(name, model string, gen Generator, temperature float64) *Decider {
	return &Decider{base{
		desc: Descriptor{
			Name:        name,
			Role:        RoleDecider,
			Description: "Evaluates when solutions are complete and proposes the final answer",
			Model:       model,
		},
		gen:          gen,
		temperature:  temperature,
		systemPrompt: "You are a decision-maker who evaluates when solutions are complete and ready.",
	}}
}

func (d *Decider) Act(ctx context.Context, problem string, snapshot *blackboard.Snapshot) (*Result, error) {
	multipleChoice := validate.DetectProblemType(problem) == validate.ProblemMultipleChoice

	parsed, raw, usage, err := d.complete(ctx, deciderPrompt(problem, snapshot.FormatTranscript(), multipleChoice))
	if err != nil {
		return nil, err
	}

	answer, ready := parseDecision(parsed, multipleChoice)

	display := answer
	if display == "" {
		display = "N/A"
	}
	content := fmt.Sprintf("Solution ready: %v\nFinal answer: %s", ready, display)

	writes := []Write{publicWrite(blackboard.KindDecision, content, parsed)}
	if !ready && raw != "" {
		// Working reasoning goes to the decider's reflection space so the
		// max-rounds fallback can mine it even when no decision landed.
		writes = append(writes, Write{
			Scope:   blackboard.ReflectionSpaceKey(d.desc.Name),
			Kind:    blackboard.KindNote,
			Content: raw,
		})
	}

	result := &Result{
		Agent:         d.desc.Name,
		Role:          RoleDecider,
		Structured:    parsed,
		Raw:           raw,
		Writes:        writes,
		SolutionReady: ready,
		FinalAnswer:   answer,
		Usage:         usage,
	}
	if c, ok := parsed["confidence"].(float64); ok {
		result.Confidence = c
	}
	return result, nil
}

// parseDecision interprets the decider's output. The paper wire format is
// "the final answer is boxed[X]" to commit, or the continue marker to wait;
// a structured {"is_solution_ready": ..., "final_answer": ...} object is
// accepted as a fallback.
func parseDecision(parsed map[string]interface{}, multipleChoice bool) (answer string, ready bool) {
	flat := llm.StringValues(parsed)

	if strings.Contains(strings.ToLower(flat), "boxed") {
		// Map iteration order is random; scan keys sorted so the same
		// response always yields the same extraction.
		keys := make([]string, 0, len(parsed))
		for k := range parsed {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			value := stringify(parsed[k])
			if !strings.Contains(strings.ToLower(value), "boxed") {
				continue
			}
			answer = extractBoxed(value)
			if multipleChoice && answer != "" {
				answer = validate.NormalizeChoice(answer)
			}
			return answer, true
		}
	}

	if strings.Contains(flat, continueMarker) {
		return "", false
	}

	if b, ok := parsed["is_solution_ready"].(bool); ok && b {
		ready = true
	}
	if v, ok := parsed["final_answer"]; ok && v != nil {
		answer = stringify(v)
		if multipleChoice && answer != "" {
			answer = validate.NormalizeChoice(answer)
		}
	}
	return answer, ready
}

// extractBoxed pulls the committed answer out of a "the final answer is
// boxed[X]" value, tolerating bracket and parenthesis variants.
func extractBoxed(value string) string {
	if m := boxedAnswerRe.FindStringSubmatch(value); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := boxedAnswerAltRe.FindStringSubmatch(value); m != nil {
		return strings.TrimSpace(m[1])
	}
	stripped := strings.ReplaceAll(value, "the final answer is boxed", "")
	return strings.Trim(stripped, "[]() ")
}

// Critic flags wrong or misleading blackboard messages.
type Critic struct {
	base
}

func NewCritic(name, model string, gen Generator, temperature float64) *Critic {
	return &Critic{base{
		desc: Descriptor{
			Name:        name,
			Role:        RoleCritic,
			Description: "Identifies wrong or misleading messages and explains why",
			Model:       model,
		},
		gen:          gen,
		temperature:  temperature,
		systemPrompt: "You are a critical evaluator who identifies issues and suggests improvements.",
	}}
}

func (c *Critic) Act(ctx context.Context, problem string, snapshot *blackboard.Snapshot) (*Result, error) {
	parsed, raw, usage, err := c.complete(ctx, criticPrompt(problem, snapshot.FormatTranscript()))
	if err != nil {
		return nil, err
	}

	var content string
	switch {
	case hasKey(parsed, "critic list"):
		content = fmt.Sprintf("Critic list: %v", parsed["critic list"])
	case strings.Contains(llm.StringValues(parsed), noProblemMarker):
		content = "No problem, waiting for more information"
	default:
		content = firstString(parsed, raw, "explanation")
	}

	return &Result{
		Agent:      c.desc.Name,
		Role:       RoleCritic,
		Structured: parsed,
		Raw:        raw,
		Writes:     []Write{publicWrite(blackboard.KindCritique, content, parsed)},
		Usage:      usage,
	}, nil
}

// Cleaner flags redundant messages. It only ever annotates: nothing is
// removed from the blackboard.
type Cleaner struct {
	base
}

func NewCleaner(name, model string, gen Generator, temperature float64) *Cleaner {
	return &Cleaner{base{
		desc: Descriptor{
			Name:        name,
			Role:        RoleCleaner,
			Description: "Flags useless or redundant messages to keep the board readable",
			Model:       model,
		},
		gen:          gen,
		temperature:  temperature,
		systemPrompt: "You are an organizer who cleans up and structures information effectively.",
	}}
}

func (c *Cleaner) Act(ctx context.Context, problem string, snapshot *blackboard.Snapshot) (*Result, error) {
	parsed, raw, usage, err := c.complete(ctx, cleanerPrompt(problem, snapshot.FormatTranscript()))
	if err != nil {
		return nil, err
	}

	var content string
	switch {
	case hasKey(parsed, "clean list"):
		content = fmt.Sprintf("Clean list: %v", parsed["clean list"])
	case strings.Contains(llm.StringValues(parsed), noUselessMarker):
		content = "No useless messages, waiting for more information"
	default:
		content = firstString(parsed, raw, "cleaned_content", "summary")
	}

	return &Result{
		Agent:      c.desc.Name,
		Role:       RoleCleaner,
		Structured: parsed,
		Raw:        raw,
		Writes:     []Write{publicWrite(blackboard.KindCleanup, content, parsed)},
		Usage:      usage,
	}, nil
}

// ConflictResolver flags contradictory agent statements.
type ConflictResolver struct {
	base
}

func NewConflictResolver(name, model string, gen Generator, temperature float64) *ConflictResolver {
	return &ConflictResolver{base{
		desc: Descriptor{
			Name:        name,
			Role:        RoleConflictResolver,
			Description: "Surfaces contradictions between agent messages",
			Model:       model,
		},
		gen:          gen,
		temperature:  temperature,
		systemPrompt: "You are a mediator who resolves conflicts and finds common ground.",
	}}
}

func (c *ConflictResolver) Act(ctx context.Context, problem string, snapshot *blackboard.Snapshot) (*Result, error) {
	parsed, raw, usage, err := c.complete(ctx, conflictResolverPrompt(problem, snapshot.FormatTranscript()))
	if err != nil {
		return nil, err
	}

	var content string
	switch {
	case hasKey(parsed, "conflict list"):
		content = fmt.Sprintf("Conflict list: %v", parsed["conflict list"])
	case strings.Contains(llm.StringValues(parsed), noConflictsMarker):
		content = "No conflicts, waiting for more information"
	default:
		content = firstString(parsed, raw, "explanation")
	}

	return &Result{
		Agent:      c.desc.Name,
		Role:       RoleConflictResolver,
		Structured: parsed,
		Raw:        raw,
		Writes:     []Write{publicWrite(blackboard.KindConflict, content, parsed)},
		Usage:      usage,
	}, nil
}

func hasKey(parsed map[string]interface{}, key string) bool {
	_, ok := parsed[key]
	return ok
}
