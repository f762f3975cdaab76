package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/dyluth/moot/internal/agent"
	"github.com/dyluth/moot/internal/config"
	"github.com/dyluth/moot/internal/dataset"
	"github.com/dyluth/moot/internal/llm"
	"github.com/dyluth/moot/internal/orchestrator"
	"github.com/dyluth/moot/internal/printer"
	"github.com/dyluth/moot/internal/scheduler"
	"github.com/dyluth/moot/internal/session"
	"github.com/dyluth/moot/internal/trace"
)

var (
	solveConfigPath  string
	solveSessionName string
	solveMaxRounds   int
	solveGroundTruth string
	solveTraceDir    string
	solveNoExperts   bool
)

var solveCmd = &cobra.Command{
	Use:   "solve \"PROBLEM\"",
	Short: "Run one deliberation over a problem",
	Long: `Run one full deliberation: the agent panel reads and writes a shared
blackboard over a bounded number of rounds until a critic-validated answer
emerges (or the round budget runs out and the fallback chain recovers
whatever answer the board holds).

Every message is persisted in a named Redis session, so the run can be
inspected afterwards with 'moot board' and 'moot watch'. A JSON trace and a
text report are written per run.

Prerequisites:
  • Redis reachable at redis.url (default localhost:6379)
  • An Ollama-compatible model server at model.url (default localhost:11434)

Examples:
  # Solve with the default panel and config
  moot solve "A merchant has 14 trinkets and sells 8. How many remain?"

  # Pin the session name and round budget
  moot solve "Which option is correct? a) ... b) ..." --session quiz1 --max-rounds 6

  # Score against a known answer and keep the trace elsewhere
  moot solve "..." --ground-truth "6" --trace-dir runs/`,
	Args: cobra.ExactArgs(1),
	RunE: runSolve,
}

func init() {
	solveCmd.Flags().StringVarP(&solveConfigPath, "config", "c", defaultConfigPath, "Path to moot.yml")
	solveCmd.Flags().StringVarP(&solveSessionName, "session", "s", "", "Session name (generated if omitted)")
	solveCmd.Flags().IntVar(&solveMaxRounds, "max-rounds", 0, "Override orchestrator.max_rounds")
	solveCmd.Flags().StringVar(&solveGroundTruth, "ground-truth", "", "Known answer to score the run against")
	solveCmd.Flags().StringVar(&solveTraceDir, "trace-dir", "traces", "Directory for trace JSON and text reports")
	solveCmd.Flags().BoolVar(&solveNoExperts, "no-experts", false, "Skip expert role generation")
	rootCmd.AddCommand(solveCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	problem := strings.TrimSpace(args[0])
	if problem == "" {
		return printer.Error(
			"empty problem",
			"The problem statement cannot be blank.",
			[]string{"Provide the problem as one quoted argument:\n  moot solve \"your problem here\""},
		)
	}

	cfg, err := loadConfig(solveConfigPath)
	if err != nil {
		return err
	}
	if solveMaxRounds > 0 {
		cfg.Orchestrator.MaxRounds = solveMaxRounds
	}

	// Phase 1: session naming
	sessionName, err := pickSessionName(ctx, cfg, solveSessionName)
	if err != nil {
		return err
	}

	// Phase 2: infrastructure checks
	board, err := dialBoard(ctx, cfg, sessionName)
	if err != nil {
		return err
	}
	defer board.Close()

	model := llm.NewClient(cfg.Model.URL, llm.WithTimeout(cfg.AgentTimeout()))
	if err := model.Ping(ctx); err != nil {
		return printer.ErrorWithContext(
			"model server unreachable",
			fmt.Sprintf("Could not reach the model server at %s", cfg.Model.URL),
			nil,
			[]string{
				"Start Ollama locally:\n  ollama serve",
				"Or point model.url in moot.yml at a running server",
			},
		)
	}

	// Phase 3: assemble the panel
	pool, err := assemblePool(ctx, cfg, model, problem, solveNoExperts)
	if err != nil {
		return err
	}
	printer.Step("Agent panel: %s", strings.Join(pool.Names(), ", "))

	// Phase 4: deliberate
	sched := scheduler.New(model, cfg.Model.Models[0], cfg.Temperature())
	engine, err := orchestrator.NewEngine(board, pool, sched, orchestrator.Options{
		MaxRounds:        cfg.Orchestrator.MaxRounds,
		AgentTimeout:     cfg.AgentTimeout(),
		PreferStructured: cfg.Validation.PreferStructured,
	})
	if err != nil {
		return fmt.Errorf("failed to build orchestrator: %w", err)
	}

	printer.Step("Deliberating over %d round(s) in session '%s'...", cfg.Orchestrator.MaxRounds, sessionName)
	result, err := engine.Run(ctx, problem)
	if err != nil {
		return fmt.Errorf("deliberation failed: %w", err)
	}

	// Phase 5: report
	run := &trace.Run{
		Result:      result,
		Agents:      pool.Descriptors(),
		GroundTruth: solveGroundTruth,
	}
	if solveGroundTruth != "" {
		correct := dataset.Evaluate(result.FinalAnswer, solveGroundTruth)
		run.Correct = &correct
	}
	printRunSummary(run)

	recorder := trace.NewRecorder(solveTraceDir)
	jsonPath, err := recorder.Save(run)
	if err != nil {
		return fmt.Errorf("failed to save trace: %w", err)
	}
	textPath, err := recorder.SaveTextReport(run)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	printer.Info("Trace written to %s (report: %s)", jsonPath, textPath)

	return nil
}

// pickSessionName validates an explicit --session value or generates a fresh
// unique name. Reusing an existing session would interleave two runs' logs,
// so collisions are rejected rather than merged.
func pickSessionName(ctx context.Context, cfg *config.MootConfig, flagValue string) (string, error) {
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.URL})
	defer rdb.Close()

	if flagValue == "" {
		name, err := session.GenerateDefaultName(ctx, rdb)
		if err != nil {
			return "", fmt.Errorf("failed to generate session name: %w", err)
		}
		return name, nil
	}

	if err := session.ValidateName(flagValue); err != nil {
		return "", printer.Error(
			"invalid session name",
			err.Error(),
			[]string{"Use lowercase letters, digits and hyphens, e.g. --session quiz-1"},
		)
	}
	exists, err := session.CheckNameCollision(ctx, rdb, flagValue)
	if err != nil {
		return "", fmt.Errorf("failed to check session name: %w", err)
	}
	if exists {
		return "", printer.Error(
			fmt.Sprintf("session '%s' already exists", flagValue),
			"Each deliberation needs a fresh session so its message log stays coherent.",
			[]string{
				"Pick another name, or omit --session to auto-generate one",
				fmt.Sprintf("Remove the old session:\n  moot purge --session %s", flagValue),
			},
		)
	}
	return flagValue, nil
}

// assemblePool builds the full panel for one problem: configured (or
// default) agents plus generated experts. Expert generation failing is a
// warning, never fatal: the predefined panel can deliberate on its own.
func assemblePool(ctx context.Context, cfg *config.MootConfig, model *llm.Client, problem string, skipExperts bool) (*agent.Pool, error) {
	var experts []llm.ExpertRole
	if cfg.GenerateExperts() && !skipExperts {
		expertModel := cfg.Experts.Model
		if expertModel == "" {
			expertModel = cfg.Model.Models[0]
		}
		roles, err := model.GenerateExpertRoles(ctx, expertModel, problem)
		if err != nil {
			printer.Warning("Expert generation failed (%v), continuing with the predefined panel", err)
		} else {
			experts = roles
		}
	}

	pool, err := buildPool(cfg, model, experts)
	if err != nil {
		return nil, fmt.Errorf("failed to build agent pool: %w", err)
	}
	return pool, nil
}

// printRunSummary prints the human-readable outcome of one run.
func printRunSummary(run *trace.Run) {
	result := run.Result

	printer.Println()
	if result.FinalAnswer == "" {
		printer.Warning("No answer produced after %d round(s)", result.RoundsUsed)
	} else if result.CriticValidated {
		printer.Success("Answer: %s", result.FinalAnswer)
		printer.Info("Critic-validated in %d round(s)", result.RoundsUsed)
	} else {
		printer.Success("Answer: %s", result.FinalAnswer)
		printer.Warning("Not critic-validated (recovered via %s after %d round(s))", result.AnswerSource, result.RoundsUsed)
	}

	if run.Correct != nil {
		if *run.Correct {
			printer.Success("Matches ground truth '%s'", run.GroundTruth)
		} else {
			printer.Warning("Does not match ground truth '%s'", run.GroundTruth)
		}
	}

	printer.Info("Session: %s  |  Tokens: %d", result.Session, result.TotalTokens)
}
