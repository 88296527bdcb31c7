package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ccollicutt/logseek/pkg/parser"
)

// NewReadCommand creates the read command.
func NewReadCommand() *cobra.Command {
	opts := &ReadOptions{}

	cmd := &cobra.Command{
		Use:   "read [log-file]",
		Short: "Print the lines of a log between two times",
		Long: `Seek to the first line at or after --from and print lines until the first
line after --until.

The log file may be given as an argument (a glob matching exactly one file) or
through log_file / eq in the configuration file. Without --config the
timestamp format is detected from the head of the file.

--until end, or --follow, keeps reading as the file grows until interrupted.

Example:
  logseek read /var/log/app.log --from 2h
  logseek read app.log --from "2024-01-15 10:00:00" --until "2024-01-15 11:00:00"
  logseek read -c logseek.yaml --from 10m --follow --metrics-addr :9109`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRead(cmd, args, opts)
		},
	}

	addReadFlags(cmd, opts)
	return cmd
}

func runRead(cmd *cobra.Command, args []string, opts *ReadOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(ctx, cmd, opts)
	if err != nil {
		return err
	}

	var path string
	if len(args) == 1 {
		path, err = parser.ResolveSingle(args[0])
	} else {
		path, err = cfg.ResolveLogFile()
	}
	if err != nil {
		return fmt.Errorf("resolving log file: %w", err)
	}

	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	from, until, err := resolveWindow(opts, cfg.TimestampFormat.Location())
	if err != nil {
		return err
	}

	run := &readRun{
		cfg:       cfg,
		path:      path,
		extractor: detectExtractor(ctx, cfg, opts.ConfigPath, path, logger),
		from:      from,
		until:     until,
		logger:    logger.With(zap.String("path", path)),
	}
	return run.execute(ctx, cmd, opts.Output)
}
