package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dyluth/moot/internal/printer"
	"github.com/dyluth/moot/internal/timespec"
	"github.com/dyluth/moot/internal/watch"
)

var (
	watchConfigPath   string
	watchSessionName  string
	watchOutputFormat string
	watchSince        string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream blackboard activity in real time",
	Long: `Stream a session's blackboard messages as they are appended.

Useful alongside a running 'moot solve' to follow the deliberation live:
plans, critiques, conflicts and decisions appear the moment agents write
them. With --since, recent history is replayed first, then the live
stream continues. Stop with Ctrl+C.

Output Formats:
  default - Human-readable output with timestamps and emojis
  json    - Line-delimited JSON for programmatic processing

Examples:
  # Watch the only session
  moot watch

  # Watch a named session including the last 10 minutes of history
  moot watch --session quiz1 --since 10m

  # Export events as JSON
  moot watch --output=json > events.jsonl`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchConfigPath, "config", "c", defaultConfigPath, "Path to moot.yml")
	watchCmd.Flags().StringVarP(&watchSessionName, "session", "s", "", "Target session name (auto-inferred if omitted)")
	watchCmd.Flags().StringVarP(&watchOutputFormat, "output", "o", "default", "Output format (default or json)")
	watchCmd.Flags().StringVar(&watchSince, "since", "", "Replay history from this time first (duration like '10m' or RFC3339)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	var outputFormat watch.OutputFormat
	switch watchOutputFormat {
	case "default":
		outputFormat = watch.OutputFormatDefault
	case "json":
		outputFormat = watch.OutputFormatJSON
	default:
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", watchOutputFormat),
			[]string{"Valid formats: default, json"},
		)
	}

	var sinceMs int64
	if watchSince != "" {
		var err error
		sinceMs, err = timespec.Parse(watchSince)
		if err != nil {
			return printer.Error(
				"invalid time specification",
				err.Error(),
				[]string{"Use a duration like '10m' or an RFC3339 timestamp like '2026-08-21T13:00:00Z'"},
			)
		}
	}

	// Ctrl+C cancels the stream cleanly.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig(watchConfigPath)
	if err != nil {
		return err
	}
	sessionName, err := resolveSession(ctx, cfg, watchSessionName)
	if err != nil {
		return err
	}
	bbClient, err := dialBoard(ctx, cfg, sessionName)
	if err != nil {
		return err
	}
	defer bbClient.Close()

	if outputFormat == watch.OutputFormatDefault {
		printer.Info("Watching session '%s' (Ctrl+C to stop)", sessionName)
	}
	if err := watch.StreamActivity(ctx, bbClient, outputFormat, sinceMs, os.Stdout); err != nil && ctx.Err() == nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	return nil
}
