package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ccollicutt/logseek/internal/logging"
	"github.com/ccollicutt/logseek/internal/metrics"
	"github.com/ccollicutt/logseek/pkg/config"
	"github.com/ccollicutt/logseek/pkg/detector"
	"github.com/ccollicutt/logseek/pkg/eqlog"
	"github.com/ccollicutt/logseek/pkg/output"
	"github.com/ccollicutt/logseek/pkg/reader"
	"github.com/ccollicutt/logseek/pkg/seek"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// ReadOptions holds the flags shared by read and eq.
type ReadOptions struct {
	ConfigPath    string
	From          string
	Until         string
	Strategy      string
	BlockSize     string
	MaxLineLength string
	Timezone      string
	Follow        bool
	Filter        string
	Output        string
	MetricsAddr   string
	WebhookURL    string
	WebhookToken  string
	Debug         bool
}

func addReadFlags(cmd *cobra.Command, opts *ReadOptions) {
	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Configuration file")
	cmd.Flags().StringVar(&opts.From, "from", "start", "Print lines at or after this time (start, end, now, a duration like 2h, or a timestamp)")
	cmd.Flags().StringVar(&opts.Until, "until", "now", "Stop at the first line after this time")
	cmd.Flags().StringVar(&opts.Strategy, "strategy", "", "Seek strategy (linear|jump)")
	cmd.Flags().StringVar(&opts.BlockSize, "block-size", "", "Jump block size (e.g. 1MiB)")
	cmd.Flags().StringVar(&opts.MaxLineLength, "max-line-length", "", "Bytes a jump may read to reach the end of a timestamped line (e.g. 4KiB)")
	cmd.Flags().StringVar(&opts.Timezone, "timezone", "", "Zone of timestamps written without an offset (default Local)")
	cmd.Flags().BoolVarP(&opts.Follow, "follow", "f", false, "Keep reading as the log grows")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", `Only print lines matching this expression (e.g. 'Payload contains "tells you"')`)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while reading")
	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "Post every printed line to this URL")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for --webhook-url")
	cmd.Flags().BoolVar(&opts.Debug, "debug", false, "Log seek progress to stderr")
}

// loadConfig loads the configuration and applies any flags the user set.
func loadConfig(ctx context.Context, cmd *cobra.Command, opts *ReadOptions) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(ctx, opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("strategy") {
		cfg.Seek.Strategy = opts.Strategy
	}
	if flags.Changed("block-size") {
		if cfg.Seek.BlockSize, err = config.ParseByteSize(opts.BlockSize); err != nil {
			return nil, fmt.Errorf("--block-size: %w", err)
		}
	}
	if flags.Changed("max-line-length") {
		if cfg.Seek.MaxLineLength, err = config.ParseByteSize(opts.MaxLineLength); err != nil {
			return nil, fmt.Errorf("--max-line-length: %w", err)
		}
	}
	if flags.Changed("timezone") {
		cfg.TimestampFormat.Timezone = opts.Timezone
	}
	if flags.Changed("filter") {
		cfg.Filter = opts.Filter
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.Address = opts.MetricsAddr
	}
	if opts.Debug {
		cfg.Logging.Level = "debug"
	}
	addCLIWebhook(cfg, opts.WebhookURL, opts.WebhookToken, config.WebhookTriggerLines)

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return cfg, nil
}

// detectExtractor uses the configured format when a config file was given,
// otherwise the format detected from the head of path, falling back to the
// EverQuest format.
func detectExtractor(ctx context.Context, cfg *config.Config, configPath, path string, logger *zap.Logger) reader.Extractor {
	if configPath != "" {
		return cfg.TimestampFormat.Extractor()
	}

	result, err := detector.New().DetectFromFile(ctx, path)
	if err != nil || !result.HasMatch() {
		logger.Debug("no timestamp format detected, assuming EverQuest", zap.String("path", path))
		return cfg.TimestampFormat.Extractor()
	}

	best := result.BestMatch()
	logger.Debug("detected timestamp format",
		zap.String("format", best.Format.Name),
		zap.Float64("confidence", best.Confidence))
	return best.Extractor(cfg.TimestampFormat.Location())
}

// readRun is one read of a log file from the command line.
type readRun struct {
	cfg       *config.Config
	path      string
	extractor reader.Extractor
	from      time.Time
	until     time.Time
	logger    *zap.Logger
}

func (r *readRun) execute(ctx context.Context, cmd *cobra.Command, format string) error {
	var collector *metrics.Collector
	if r.cfg.Metrics.Address != "" {
		collector = metrics.New()
		metricsCtx, stop := context.WithCancel(ctx)
		done := make(chan struct{})
		defer func() {
			stop()
			<-done
		}()
		go func() {
			defer close(done)
			if err := collector.Serve(metricsCtx, r.cfg.Metrics.Address, r.logger); err != nil {
				r.logger.Error("metrics server failed", zap.Error(err))
			}
		}()
	}

	strategy := seek.Strategy(r.cfg.Seek.Strategy)
	seeker, err := seek.New(strategy, r.path, r.extractor,
		append(r.cfg.Seek.Options(), seek.WithLogger(r.logger))...)
	if err != nil {
		return err
	}
	if collector != nil {
		seeker = collector.Instrument(seeker, string(strategy))
	}

	rd := reader.New(seeker, r.extractor,
		reader.WithStart(r.from),
		reader.WithEnd(r.until),
		reader.WithFilter(r.cfg.CompiledFilter()),
		reader.WithLogger(r.logger))

	writer, err := output.NewLineWriter(cmd.OutOrStdout(), format)
	if err != nil {
		return err
	}
	rd.AddListener(writer)
	if collector != nil {
		rd.AddListener(collector.Listener())
	}
	notifiers := addWebhookListeners(rd, r.cfg, r.logger)
	defer func() {
		for _, n := range notifiers {
			r.logger.Debug("webhook summary", zap.Int64("sent", n.Sent()), zap.Int64("failed", n.Failed()))
		}
	}()

	if rd.Following() {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
	}

	err = rd.Run(ctx)
	if rd.Following() && ctx.Err() != nil {
		// Interrupted while following is the normal way out.
		return nil
	}
	return err
}

// newLogger builds the diagnostic logger writing to the command's stderr.
func newLogger(cmd *cobra.Command, cfg *config.Config) (*zap.Logger, error) {
	logger, err := logging.New(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	return logger, nil
}

// timeLayouts are tried in order by ParseTime after the keywords and
// durations.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	eqlog.TimestampLayout,
}

// ParseTime interprets a --from, --until or --target value. "start" and
// "end" map to the seek sentinels, "now" to now, and a Go duration to that
// long before now. Timestamps without an offset are read in loc.
func ParseTime(s string, now time.Time, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "start", "beginning":
		return seek.Beginning, nil
	case "end":
		return seek.End, nil
	case "now", "":
		return now, nil
	}

	if d, err := time.ParseDuration(s); err == nil {
		return now.Add(-d), nil
	}

	if loc == nil {
		loc = time.Local
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time %q (use start, end, now, a duration like 2h, or a timestamp like 2006-01-02 15:04:05)", s)
}

// resolveWindow parses --from and --until. With follow set the end is
// unbounded.
func resolveWindow(opts *ReadOptions, loc *time.Location) (from, until time.Time, err error) {
	now := time.Now()
	if from, err = ParseTime(opts.From, now, loc); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("--from: %w", err)
	}
	if opts.Follow {
		return from, seek.End, nil
	}
	if until, err = ParseTime(opts.Until, now, loc); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("--until: %w", err)
	}
	if until.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("--until %s is before --from %s", opts.Until, opts.From)
	}
	return from, until, nil
}
