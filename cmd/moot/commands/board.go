package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dyluth/moot/internal/board"
	"github.com/dyluth/moot/internal/filter"
	"github.com/dyluth/moot/internal/printer"
	"github.com/dyluth/moot/internal/resolver"
	"github.com/dyluth/moot/internal/timespec"
)

var (
	boardConfigPath   string
	boardSessionName  string
	boardOutputFormat string
	boardScope        string
	boardKind         string
	boardAuthor       string
	boardRound        int
	boardSince        string
	boardUntil        string
)

var boardCmd = &cobra.Command{
	Use:   "board [MESSAGE_ID]",
	Short: "Inspect blackboard messages",
	Long: `Inspect a session's blackboard in list or get mode.

List Mode (no MESSAGE_ID):
  Displays messages from the public log and every private space as a table
  or line-delimited JSON, chronologically across scopes. Narrow the output
  with --scope, --kind, --author, --round, --since and --until.

Get Mode (with MESSAGE_ID):
  Displays one message as pretty-printed JSON. A unique ID prefix is
  enough; ambiguous prefixes list the candidates.

Output Formats (list mode only):
  default - Human-readable table with ID, round, kind, author and content
  jsonl   - Line-delimited JSON of complete message objects

Examples:
  # All messages of the only session
  moot board

  # Decisions on a named session
  moot board --session quiz1 --kind decision

  # One agent's messages from the last half hour
  moot board --author critic --since 30m

  # A private reflection space
  moot board --scope reflection_decider

  # Full detail of one message by ID prefix
  moot board 3fa8

  # Message objects for scripting
  moot board --output=jsonl | jq -r .author`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBoard,
}

func init() {
	boardCmd.Flags().StringVarP(&boardConfigPath, "config", "c", defaultConfigPath, "Path to moot.yml")
	boardCmd.Flags().StringVarP(&boardSessionName, "session", "s", "", "Target session name (auto-inferred if omitted)")
	boardCmd.Flags().StringVarP(&boardOutputFormat, "output", "o", "default", "Output format: default or jsonl (ignored in get mode)")
	boardCmd.Flags().StringVar(&boardScope, "scope", "", "Only one scope: 'public' or a private space key")
	boardCmd.Flags().StringVar(&boardKind, "kind", "", "Filter by message kind (glob, e.g. 'dec*')")
	boardCmd.Flags().StringVar(&boardAuthor, "author", "", "Filter by author name")
	boardCmd.Flags().IntVar(&boardRound, "round", 0, "Filter by round number")
	boardCmd.Flags().StringVar(&boardSince, "since", "", "Only messages after this time (duration like '1h' or RFC3339)")
	boardCmd.Flags().StringVar(&boardUntil, "until", "", "Only messages before this time (duration like '1h' or RFC3339)")
	rootCmd.AddCommand(boardCmd)
}

func runBoard(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	isGetMode := len(args) > 0

	var outputFormat board.OutputFormat
	if !isGetMode {
		switch boardOutputFormat {
		case "default":
			outputFormat = board.OutputFormatDefault
		case "jsonl":
			outputFormat = board.OutputFormatJSONL
		default:
			return printer.Error(
				"invalid output format",
				fmt.Sprintf("Unknown format: %s", boardOutputFormat),
				[]string{"Valid formats: default, jsonl"},
			)
		}
	}

	sinceMs, untilMs, err := timespec.ParseRange(boardSince, boardUntil)
	if err != nil {
		return printer.Error(
			"invalid time specification",
			err.Error(),
			[]string{"Use a duration like '30m' or an RFC3339 timestamp like '2026-08-21T13:00:00Z'"},
		)
	}

	cfg, err := loadConfig(boardConfigPath)
	if err != nil {
		return err
	}
	sessionName, err := resolveSession(ctx, cfg, boardSessionName)
	if err != nil {
		return err
	}
	bbClient, err := dialBoard(ctx, cfg, sessionName)
	if err != nil {
		return err
	}
	defer bbClient.Close()

	if isGetMode {
		messageID, err := resolver.ResolveMessageID(ctx, bbClient, args[0])
		if err != nil {
			if ambiguous, ok := err.(*resolver.AmbiguousError); ok {
				fmt.Fprint(os.Stderr, resolver.FormatAmbiguousError(ambiguous))
				return fmt.Errorf("ambiguous message ID")
			}
			if resolver.IsNotFoundError(err) {
				return printer.Error(
					fmt.Sprintf("message '%s' not found", args[0]),
					"No message on this session's blackboard matches that ID prefix.",
					[]string{
						"List all messages:\n  moot board",
						fmt.Sprintf("Check the session:\n  moot board --session %s", sessionName),
					},
				)
			}
			return fmt.Errorf("failed to resolve message ID: %w", err)
		}
		return board.GetMessage(ctx, bbClient, messageID, os.Stdout)
	}

	criteria := &filter.Criteria{
		SinceTimestampMs: sinceMs,
		UntilTimestampMs: untilMs,
		KindGlob:         boardKind,
		Author:           boardAuthor,
		Round:            boardRound,
	}
	if err := board.ListMessages(ctx, bbClient, boardScope, outputFormat, criteria, os.Stdout); err != nil {
		return fmt.Errorf("failed to list messages: %w", err)
	}
	return nil
}
