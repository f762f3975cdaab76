package trace

import (
	"fmt"
	"strings"
	"time"

	"github.com/dyluth/moot/internal/orchestrator"
)

const reportWidth = 80

// FormatReport renders a run as a text report: a banner, the problem, the
// agent roster, the round-by-round trace, and the final verdict.
func FormatReport(run *Run) string {
	res := run.Result
	banner := strings.Repeat("=", reportWidth)
	rule := strings.Repeat("-", reportWidth)

	var b strings.Builder
	b.WriteString(banner + "\n")
	b.WriteString(" MOOT DELIBERATION REPORT\n")
	b.WriteString(banner + "\n")
	fmt.Fprintf(&b, "Session:      %s\n", res.Session)
	fmt.Fprintf(&b, "Started:      %s\n", formatTime(res.StartedAt))
	fmt.Fprintf(&b, "Finished:     %s\n", formatTime(res.FinishedAt))
	fmt.Fprintf(&b, "Rounds:       %d of %d\n", res.RoundsUsed, res.MaxRounds)
	fmt.Fprintf(&b, "Phase:        %s\n", res.Phase)
	fmt.Fprintf(&b, "Total tokens: %d\n", res.TotalTokens)

	b.WriteString("\nPROBLEM\n" + rule + "\n")
	b.WriteString(res.Problem + "\n")
	fmt.Fprintf(&b, "Problem type: %s\n", res.ProblemType)
	if run.GroundTruth != "" {
		fmt.Fprintf(&b, "Ground truth: %s\n", run.GroundTruth)
	}

	if len(run.Agents) > 0 {
		b.WriteString("\nAGENT POOL\n" + rule + "\n")
		for _, d := range run.Agents {
			fmt.Fprintf(&b, "- %s (%s): %s [%s]\n", d.Name, d.Role, d.Description, d.Model)
		}
	}

	b.WriteString("\nEXECUTION TRACE\n" + rule + "\n")
	for _, round := range res.Rounds {
		fmt.Fprintf(&b, "Round %d: %s\n", round.Round, strings.Join(round.Selected, ", "))
		for _, a := range round.Actions {
			b.WriteString(formatAction(a))
		}
	}

	b.WriteString("\nFINAL\n" + rule + "\n")
	answer := res.FinalAnswer
	if answer == "" {
		answer = "(no answer produced)"
	}
	fmt.Fprintf(&b, "Answer:           %s\n", answer)
	fmt.Fprintf(&b, "Source:           %s\n", res.AnswerSource)
	fmt.Fprintf(&b, "Critic validated: %t\n", res.CriticValidated)
	if run.Correct != nil {
		fmt.Fprintf(&b, "Correct:          %t\n", *run.Correct)
	}
	b.WriteString(banner + "\n")
	return b.String()
}

func formatAction(a orchestrator.AgentAction) string {
	switch {
	case a.Error != "":
		return fmt.Sprintf("  [%s] ERROR: %s\n", a.Agent, a.Error)
	case a.SolutionReady && a.Validation != nil && a.Validation.Applied:
		return fmt.Sprintf("  [%s] solution ready: %s (corrected from %s, %d tokens)\n",
			a.Agent, a.FinalAnswer, a.Validation.OriginalAnswer, a.Tokens)
	case a.SolutionReady:
		return fmt.Sprintf("  [%s] solution ready: %s (%d tokens)\n", a.Agent, a.FinalAnswer, a.Tokens)
	default:
		return fmt.Sprintf("  [%s] ok (%d tokens)\n", a.Agent, a.Tokens)
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.RFC3339)
}
