package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version string
	commit  string
	date    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "moot",
	Short: "Moot - multi-agent LLM deliberation engine",
	Long: `Moot runs a panel of specialized LLM agents (planner, decider, critic,
cleaner, conflict resolver and generated experts) that deliberate over a
shared Redis blackboard until a critic-validated answer emerges.

Every message the agents exchange is persisted, so each run produces a
complete, auditable trace of how the answer was reached.`,
	Version: version,
	// Prevent silent success when unknown flags are passed to root command
	// e.g., "moot --session test" instead of "moot watch --session test"
	RunE: func(cmd *cobra.Command, args []string) error {
		// If no subcommand is specified, show help
		return cmd.Help()
	},
	// Enable strict flag parsing - unknown flags will cause an error
	FParseErrWhitelist: cobra.FParseErrWhitelist{},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	// Silence Cobra's default error and usage printing
	// We print formatted colored errors directly in the printer package
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	// Global flags can be added here
}
