package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/dyluth/moot/internal/printer"
	"github.com/dyluth/moot/internal/session"
)

var (
	listConfigPath string
	listJSONOutput bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List deliberation sessions",
	Long: `List every moot session found on the Redis server.

For each session, displays:
  • Session name
  • Problem (truncated)
  • Rounds run and public message count
  • Last activity time

Use --json for machine-readable output.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVarP(&listConfigPath, "config", "c", defaultConfigPath, "Path to moot.yml")
	listCmd.Flags().BoolVar(&listJSONOutput, "json", false, "Output in JSON format")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig(listConfigPath)
	if err != nil {
		return err
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.URL})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return printer.Error(
			"Redis connection failed",
			fmt.Sprintf("Could not connect to Redis at %s", cfg.Redis.URL),
			[]string{"Start a local Redis:\n  docker run -d -p 6379:6379 redis:7-alpine"},
		)
	}

	infos, err := session.Discover(ctx, rdb)
	if err != nil {
		return fmt.Errorf("failed to discover sessions: %w", err)
	}

	if listJSONOutput {
		data, err := json.MarshalIndent(infos, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal sessions: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if len(infos) == 0 {
		printer.Info("No moot sessions found.")
		printer.Info("Start one:\n  moot solve \"your problem\"")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SESSION\tPROBLEM\tROUNDS\tMESSAGES\tLAST ACTIVITY")
	for _, info := range infos {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
			info.Name,
			truncateProblem(info.Problem, 48),
			info.Round,
			info.PublicMessages,
			formatActivity(info.LastActivityMs),
		)
	}
	return w.Flush()
}

func truncateProblem(problem string, max int) string {
	if problem == "" {
		return "-"
	}
	if len(problem) <= max {
		return problem
	}
	return problem[:max-3] + "..."
}

func formatActivity(unixMs int64) string {
	if unixMs == 0 {
		return "-"
	}
	elapsed := time.Since(time.UnixMilli(unixMs))
	switch {
	case elapsed < time.Minute:
		return "just now"
	case elapsed < time.Hour:
		return fmt.Sprintf("%dm ago", int(elapsed.Minutes()))
	case elapsed < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(elapsed.Hours()))
	default:
		return time.UnixMilli(unixMs).Format("2006-01-02 15:04")
	}
}
