package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/logseek/pkg/bench"
	"github.com/ccollicutt/logseek/pkg/config"
	"github.com/ccollicutt/logseek/pkg/output"
	"github.com/ccollicutt/logseek/pkg/parser"
)

// BenchOptions holds command-line options for the bench command.
type BenchOptions struct {
	ConfigPath    string
	Targets       []string
	BlockSizes    []string
	MaxLineLength string
	Timezone      string
	Repeat        int
	Output        string
	Verbose       bool
	Quiet         bool
	WebhookURL    string
	WebhookToken  string
}

// NewBenchCommand creates the bench command.
func NewBenchCommand() *cobra.Command {
	opts := &BenchOptions{}

	cmd := &cobra.Command{
		Use:   "bench [log-file]",
		Short: "Compare seek strategies on a log file",
		Long: `Time how long each seek strategy takes to find a target in a log file.

By default the targets are the start of the file and five minutes before now,
the usual case of catching up on a live log. The jump strategy is run once
per --block-size.

Every strategy must land on the same line for a target; if they disagree the
command exits with code 1.

Exit codes:
  0 - All strategies agree
  1 - Strategies disagree or a seek failed
  2 - Configuration or runtime error

Example:
  logseek bench /var/log/app.log
  logseek bench app.log --block-size 64KiB --block-size 1MiB --block-size 8MiB
  logseek bench app.log --target "2024-01-15 10:00:00" --repeat 5 -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Configuration file")
	cmd.Flags().StringArrayVar(&opts.Targets, "target", nil, "Seek target, replaces the defaults (can be repeated)")
	cmd.Flags().StringArrayVar(&opts.BlockSizes, "block-size", nil, "Jump block size to try (can be repeated)")
	cmd.Flags().StringVar(&opts.MaxLineLength, "max-line-length", "", "Bytes a jump may read to reach the end of a timestamped line")
	cmd.Flags().StringVar(&opts.Timezone, "timezone", "", "Zone of timestamps written without an offset")
	cmd.Flags().IntVarP(&opts.Repeat, "repeat", "r", 1, "Seeks per case; the fastest is reported")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show seek statistics")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Only show the fastest strategy per target")
	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "Post the report to this URL")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for --webhook-url")

	return cmd
}

func runBench(cmd *cobra.Command, args []string, opts *BenchOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.LoadOrDefault(ctx, opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cmd.Flags().Changed("timezone") || opts.WebhookURL != "" {
		if cmd.Flags().Changed("timezone") {
			cfg.TimestampFormat.Timezone = opts.Timezone
		}
		addCLIWebhook(cfg, opts.WebhookURL, opts.WebhookToken, config.WebhookTriggerBench)
		if err := config.Validate(cfg); err != nil {
			return fmt.Errorf("invalid options: %w", err)
		}
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

	formatter, err := output.NewFormatter(opts.Output, output.FormatOptions{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
	})
	if err != nil {
		return err
	}

	benchOpts, err := benchOptions(opts, cfg)
	if err != nil {
		return err
	}

	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	benchOpts = append(benchOpts, bench.WithLogger(logger))

	extractor := detectExtractor(ctx, cfg, opts.ConfigPath, path, logger)
	report, err := bench.Run(ctx, path, extractor, benchOpts...)
	if err != nil {
		return fmt.Errorf("benchmark failed: %w", err)
	}

	if err := formatter.Format(ctx, report, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}
	sendBenchWebhooks(ctx, cfg, report, cmd.ErrOrStderr())

	if err := report.Check(); err != nil {
		if !errors.Is(err, bench.ErrInconsistent) {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "WARNING: %v\n", err)
		ExitCode = 1
	}
	if report.Failed() {
		ExitCode = 1
	}
	return nil
}

func benchOptions(opts *BenchOptions, cfg *config.Config) ([]bench.Option, error) {
	var out []bench.Option

	if len(opts.Targets) > 0 {
		now := time.Now()
		targets := make([]bench.Target, 0, len(opts.Targets))
		for _, s := range opts.Targets {
			t, err := ParseTime(s, now, cfg.TimestampFormat.Location())
			if err != nil {
				return nil, fmt.Errorf("--target: %w", err)
			}
			targets = append(targets, bench.Target{Label: s, Time: t})
		}
		out = append(out, bench.WithTargets(targets...))
	}

	sizes := []int64{int64(cfg.Seek.BlockSize)}
	if len(opts.BlockSizes) > 0 {
		sizes = sizes[:0]
		for _, s := range opts.BlockSizes {
			n, err := config.ParseByteSize(s)
			if err != nil {
				return nil, fmt.Errorf("--block-size: %w", err)
			}
			if n < 1 {
				return nil, fmt.Errorf("--block-size must be positive, got %q", s)
			}
			sizes = append(sizes, int64(n))
		}
	}
	out = append(out, bench.WithBlockSizes(sizes...))

	maxLineLength := int64(cfg.Seek.MaxLineLength)
	if opts.MaxLineLength != "" {
		n, err := config.ParseByteSize(opts.MaxLineLength)
		if err != nil {
			return nil, fmt.Errorf("--max-line-length: %w", err)
		}
		maxLineLength = int64(n)
	}
	out = append(out,
		bench.WithMaxLineLength(maxLineLength),
		bench.WithRepeat(opts.Repeat))

	if maxLineLength < 1 {
		return nil, fmt.Errorf("max line length must be positive")
	}
	return out, nil
}
