package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dyluth/moot/internal/agent"
	"github.com/dyluth/moot/internal/config"
	"github.com/dyluth/moot/internal/dataset"
	"github.com/dyluth/moot/internal/llm"
	"github.com/dyluth/moot/internal/orchestrator"
	"github.com/dyluth/moot/internal/printer"
	"github.com/dyluth/moot/internal/scheduler"
	"github.com/dyluth/moot/internal/trace"
)

var (
	batchConfigPath string
	batchOutputDir  string
	batchMaxRounds  int
	batchLimit      int
	batchKeep       bool
)

var batchCmd = &cobra.Command{
	Use:   "batch TASKS_FILE",
	Short: "Run a benchmark task file through the panel",
	Long: `Run every task in a JSON benchmark file through one deliberation each
and score the answers against the ground truth.

The file may be a bare JSON array of {question, answer, dataset, task_id}
objects or an object wrapping that array under tasks/data/questions/items.

Per task a trace JSON is written into the output directory, plus one
summary.json with accuracy and token totals. Each task runs in its own
Redis session; sessions are purged after scoring unless --keep-sessions.

Examples:
  # Run a dataset with the configured panel
  moot batch testdata/gsm8k.json

  # Quick smoke run of the first 5 tasks
  moot batch tasks.json --limit 5 --max-rounds 3`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchConfigPath, "config", "c", defaultConfigPath, "Path to moot.yml")
	batchCmd.Flags().StringVarP(&batchOutputDir, "output-dir", "o", "results", "Directory for per-task traces and summary.json")
	batchCmd.Flags().IntVar(&batchMaxRounds, "max-rounds", 0, "Override orchestrator.max_rounds")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "Run only the first N tasks (0 = all)")
	batchCmd.Flags().BoolVar(&batchKeep, "keep-sessions", false, "Keep per-task Redis sessions after scoring")
	rootCmd.AddCommand(batchCmd)
}

// taskOutcome is one row of summary.json.
type taskOutcome struct {
	TaskID          string `json:"task_id"`
	Session         string `json:"session"`
	Answer          string `json:"answer"`
	GroundTruth     string `json:"ground_truth"`
	Correct         bool   `json:"correct"`
	CriticValidated bool   `json:"critic_validated"`
	Rounds          int    `json:"rounds"`
	Tokens          int    `json:"tokens"`
	Error           string `json:"error,omitempty"`
}

// batchSummary is the shape of summary.json.
type batchSummary struct {
	Dataset     string        `json:"dataset"`
	Tasks       int           `json:"tasks"`
	Completed   int           `json:"completed"`
	Correct     int           `json:"correct"`
	Accuracy    float64       `json:"accuracy"`
	TotalTokens int           `json:"total_tokens"`
	StartedAt   time.Time     `json:"started_at"`
	FinishedAt  time.Time     `json:"finished_at"`
	Outcomes    []taskOutcome `json:"outcomes"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig(batchConfigPath)
	if err != nil {
		return err
	}
	if batchMaxRounds > 0 {
		cfg.Orchestrator.MaxRounds = batchMaxRounds
	}

	tasks, err := dataset.Load(args[0])
	if err != nil {
		return printer.Error(
			"could not load task file",
			err.Error(),
			[]string{"Expected a JSON array of {question, answer, ...} objects,\nor an object wrapping one under 'tasks', 'data', 'questions' or 'items'"},
		)
	}
	if batchLimit > 0 && batchLimit < len(tasks) {
		tasks = tasks[:batchLimit]
	}

	// Tasks in one batch often share prompt prefixes and reruns repeat whole
	// tasks; the response cache spares the model server the duplicates.
	cache, err := llm.NewResponseCache(64<<20, time.Hour)
	if err != nil {
		return fmt.Errorf("failed to create response cache: %w", err)
	}
	defer cache.Close()

	model := llm.NewClient(cfg.Model.URL, llm.WithTimeout(cfg.AgentTimeout()), llm.WithCache(cache))
	if err := model.Ping(ctx); err != nil {
		return printer.ErrorWithContext(
			"model server unreachable",
			fmt.Sprintf("Could not reach the model server at %s", cfg.Model.URL),
			nil,
			[]string{"Start Ollama locally:\n  ollama serve"},
		)
	}

	recorder := trace.NewRecorder(batchOutputDir)
	summary := batchSummary{
		Dataset:   tasks[0].Dataset,
		Tasks:     len(tasks),
		StartedAt: time.Now().UTC(),
	}
	batchStamp := summary.StartedAt.Format("20060102-150405")

	printer.Step("Running %d task(s), max %d round(s) each", len(tasks), cfg.Orchestrator.MaxRounds)

	for i, task := range tasks {
		sessionName := batchSessionName(batchStamp, i, task.TaskID)
		printer.Info("[%d/%d] %s (session %s)", i+1, len(tasks), task.TaskID, sessionName)

		outcome := taskOutcome{
			TaskID:      task.TaskID,
			Session:     sessionName,
			GroundTruth: task.Answer,
		}

		result, pool, runErr := runBatchTask(ctx, cfg, model, sessionName, task.Question)
		if runErr != nil {
			printer.Warning("Task %s failed: %v", task.TaskID, runErr)
			outcome.Error = runErr.Error()
			summary.Outcomes = append(summary.Outcomes, outcome)
			continue
		}

		outcome.Answer = result.FinalAnswer
		outcome.Correct = dataset.Evaluate(result.FinalAnswer, task.Answer)
		outcome.CriticValidated = result.CriticValidated
		outcome.Rounds = result.RoundsUsed
		outcome.Tokens = result.TotalTokens
		summary.Completed++
		if outcome.Correct {
			summary.Correct++
		}
		summary.TotalTokens += result.TotalTokens
		summary.Outcomes = append(summary.Outcomes, outcome)

		run := &trace.Run{Result: result, Agents: pool, GroundTruth: task.Answer, Correct: &outcome.Correct}
		if _, err := recorder.Save(run); err != nil {
			printer.Warning("Failed to save trace for %s: %v", task.TaskID, err)
		}
	}

	summary.FinishedAt = time.Now().UTC()
	if summary.Completed > 0 {
		summary.Accuracy = float64(summary.Correct) / float64(summary.Completed)
	}

	summaryPath := filepath.Join(batchOutputDir, "summary.json")
	if err := writeSummary(summaryPath, &summary); err != nil {
		return err
	}

	printer.Println()
	printer.Success("Completed %d/%d task(s), %d correct (accuracy %.1f%%)",
		summary.Completed, summary.Tasks, summary.Correct, summary.Accuracy*100)
	printer.Info("Summary written to %s", summaryPath)
	return nil
}

// runBatchTask executes one deliberation in a dedicated session and returns
// the result plus the panel roster for the trace. The session is purged
// afterwards unless --keep-sessions was given.
func runBatchTask(ctx context.Context, cfg *config.MootConfig, model *llm.Client, sessionName, question string) (*orchestrator.Result, []agent.Descriptor, error) {
	board, err := dialBoard(ctx, cfg, sessionName)
	if err != nil {
		return nil, nil, err
	}
	defer board.Close()
	if !batchKeep {
		defer func() {
			if _, err := board.PurgeSession(context.Background()); err != nil {
				printer.Warning("Failed to purge session %s: %v", sessionName, err)
			}
		}()
	}

	pool, err := assemblePool(ctx, cfg, model, question, false)
	if err != nil {
		return nil, nil, err
	}

	sched := scheduler.New(model, cfg.Model.Models[0], cfg.Temperature())
	engine, err := orchestrator.NewEngine(board, pool, sched, orchestrator.Options{
		MaxRounds:        cfg.Orchestrator.MaxRounds,
		AgentTimeout:     cfg.AgentTimeout(),
		PreferStructured: cfg.Validation.PreferStructured,
	})
	if err != nil {
		return nil, nil, err
	}

	result, err := engine.Run(ctx, question)
	if err != nil {
		return nil, nil, err
	}
	return result, pool.Descriptors(), nil
}

// batchSessionName builds a collision-free session name from the batch
// timestamp and the task id, sanitized to the session-name charset.
func batchSessionName(stamp string, index int, taskID string) string {
	slug := strings.ToLower(taskID)
	slug = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}, slug)
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = fmt.Sprintf("task-%d", index+1)
	}
	return fmt.Sprintf("batch-%s-%s", stamp, slug)
}

func writeSummary(path string, summary *batchSummary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}
