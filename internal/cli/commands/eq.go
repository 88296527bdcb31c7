package commands

import (
	"context"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ccollicutt/logseek/pkg/eqlog"
)

// NewEQCommand creates the eq command.
func NewEQCommand() *cobra.Command {
	opts := &ReadOptions{}
	var list bool

	cmd := &cobra.Command{
		Use:   "eq <install-dir> [<server> <character>]",
		Short: "Read an EverQuest character log",
		Long: `Read a character's log from an EverQuest install directory.

The log is <install-dir>/Logs/eqlog_<character>_<suffix>.txt where the suffix
is project1999 (blue), P1999Green (green) or P1999PVP (red). Timestamps are
read in --timezone, which must be the zone of the machine running the client.

With --list, print the character logs found in the install directory.

Example:
  logseek eq "/opt/everquest/EverQuest Project 1999" green Stanvern --from 5m --follow
  logseek eq --list "/opt/everquest/EverQuest Project 1999"`,
		Args: func(cmd *cobra.Command, args []string) error {
			if list {
				return cobra.ExactArgs(1)(cmd, args)
			}
			return cobra.ExactArgs(3)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				return runEQList(cmd, args[0])
			}
			return runEQ(cmd, args, opts)
		},
	}

	addReadFlags(cmd, opts)
	cmd.Flags().BoolVarP(&list, "list", "l", false, "List character logs in the install directory")
	return cmd
}

func runEQ(cmd *cobra.Command, args []string, opts *ReadOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(ctx, cmd, opts)
	if err != nil {
		return err
	}

	path, err := eqlog.ResolvePath(args[0], args[1], args[2])
	if err != nil {
		return err
	}

	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	loc := cfg.TimestampFormat.Location()
	from, until, err := resolveWindow(opts, loc)
	if err != nil {
		return err
	}

	run := &readRun{
		cfg:       cfg,
		path:      path,
		extractor: eqlog.NewExtractor(loc),
		from:      from,
		until:     until,
		logger:    logger.With(zap.String("character", args[2]), zap.String("server", args[1])),
	}
	return run.execute(ctx, cmd, opts.Output)
}

func runEQList(cmd *cobra.Command, installDir string) error {
	characters, err := eqlog.Discover(installDir)
	if err != nil {
		return err
	}
	if len(characters) == 0 {
		return fmt.Errorf("no character logs found in %s", installDir)
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Character", "Server", "Log file"})
	for _, c := range characters {
		tw.AppendRow(table.Row{c.Name, c.Server, c.Path})
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), tw.Render())
	return err
}
