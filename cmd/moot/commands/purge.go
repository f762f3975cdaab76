package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dyluth/moot/internal/printer"
)

var (
	purgeConfigPath  string
	purgeSessionName string
	purgeForce       bool
)

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete a finished session from Redis",
	Long: `Delete every Redis key belonging to one session: its message logs,
private spaces and metadata.

This is operator cleanup for finished sessions. During a run the blackboard
is strictly append-only; purge removes a whole session at once, never
individual messages. Traces already written to disk are not touched.

The command prompts for confirmation unless --force is given.

Examples:
  # Remove one session interactively
  moot purge --session quiz1

  # Non-interactive cleanup (scripts)
  moot purge --session batch-20260829-120000-task-1 --force`,
	RunE: runPurge,
}

func init() {
	purgeCmd.Flags().StringVarP(&purgeConfigPath, "config", "c", defaultConfigPath, "Path to moot.yml")
	purgeCmd.Flags().StringVarP(&purgeSessionName, "session", "s", "", "Session to delete (required)")
	purgeCmd.Flags().BoolVarP(&purgeForce, "force", "f", false, "Skip the confirmation prompt")
	purgeCmd.MarkFlagRequired("session")
	rootCmd.AddCommand(purgeCmd)
}

func runPurge(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig(purgeConfigPath)
	if err != nil {
		return err
	}

	bbClient, err := dialBoard(ctx, cfg, purgeSessionName)
	if err != nil {
		return err
	}
	defer bbClient.Close()

	meta, err := bbClient.GetSessionMeta(ctx)
	if err != nil {
		return printer.Error(
			fmt.Sprintf("session '%s' not found", purgeSessionName),
			"No session with that name exists on this Redis server.",
			[]string{"List sessions:\n  moot list"},
		)
	}

	if !purgeForce {
		printer.Warning("This permanently deletes session '%s' and its full message log.", purgeSessionName)
		if meta.Problem != "" {
			printer.Info("Problem: %s", truncateProblem(meta.Problem, 72))
		}
		fmt.Print("Type the session name to confirm: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		if strings.TrimSpace(line) != purgeSessionName {
			printer.Info("Aborted, nothing deleted.")
			return nil
		}
	}

	deleted, err := bbClient.PurgeSession(ctx)
	if err != nil {
		return fmt.Errorf("failed to purge session: %w", err)
	}

	printer.Success("Deleted session '%s' (%d keys removed)", purgeSessionName, deleted)
	return nil
}
