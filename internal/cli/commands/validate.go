package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/logseek/pkg/config"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a logseek configuration file without reading any logs.

Checks:
  - YAML syntax
  - Timestamp pattern, layout and timezone
  - Seek strategy and sizes
  - Filter expression
  - Log file resolution (warning only)`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Validating %s...\n", configPath)

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Fprintf(w, "\nConfiguration valid!\n")
	fmt.Fprintf(w, "  Timestamp layout: %s (%s)\n", cfg.TimestampFormat.Layout, cfg.TimestampFormat.Location())
	fmt.Fprintf(w, "  Seek strategy:    %s\n", cfg.Seek.Strategy)
	fmt.Fprintf(w, "  Block size:       %s\n", cfg.Seek.BlockSize)
	fmt.Fprintf(w, "  Max line length:  %s\n", cfg.Seek.MaxLineLength)
	if cfg.Filter != "" {
		fmt.Fprintf(w, "  Filter:           %s\n", cfg.Filter)
	}

	// Log file existence is a warning only
	path, err := cfg.ResolveLogFile()
	if err != nil {
		fmt.Fprintf(w, "\nWarning: %v\n", err)
	} else if _, statErr := os.Stat(path); statErr != nil {
		fmt.Fprintf(w, "\nWarning: log file %s: %v\n", path, statErr)
	} else {
		fmt.Fprintf(w, "\nLog file: %s\n", path)
	}

	return nil
}
