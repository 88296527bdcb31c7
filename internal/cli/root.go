// Package cli provides the command-line interface for logseek.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/logseek/internal/cli/commands"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	rootCmd := NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		// Print error to stderr (SilenceErrors prevents Cobra from doing this)
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2 // Configuration or runtime error
	}
	return commands.ExitCode
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "logseek",
		Short: "Jump to a point in time in large, timestamp ordered log files",
		Long: `logseek finds the first line at or after a given time in a large append-only
log file without reading everything before it, then prints forward.

Two seek strategies are available:
  jump    Skip ahead in fixed size blocks and scan only the block holding
          the target (default)
  linear  Read every line from the start of the file

Built-in support for EverQuest client logs (logseek eq), and automatic
timestamp detection for other formats (logseek detect).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewReadCommand())
	rootCmd.AddCommand(commands.NewEQCommand())
	rootCmd.AddCommand(commands.NewBenchCommand())
	rootCmd.AddCommand(commands.NewDetectCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
