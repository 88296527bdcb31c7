package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/ccollicutt/logseek/pkg/eqlog"
	"github.com/ccollicutt/logseek/pkg/filter"
	"github.com/ccollicutt/logseek/pkg/parser"
	"github.com/ccollicutt/logseek/pkg/seek"
)

// Load reads and validates a configuration file.
func Load(_ context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvironmentOverrides()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads path, or validates the defaults plus environment
// overrides when path is empty.
func LoadOrDefault(ctx context.Context, path string) (*Config, error) {
	if path != "" {
		return Load(ctx, path)
	}
	cfg := DefaultConfig()
	cfg.applyEnvironmentOverrides()
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Validate checks a configuration for errors, compiles the timestamp pattern
// and filter, and loads the timezone.
func Validate(cfg *Config) error {
	cfg.LogFile = expandEnvVar(cfg.LogFile)

	if cfg.LogFile != "" && cfg.EQ != nil {
		return errors.New("log_file and eq are mutually exclusive")
	}

	if cfg.EQ != nil {
		if err := validateEQ(cfg.EQ); err != nil {
			return fmt.Errorf("eq: %w", err)
		}
	}

	if err := validateTimestampFormat(&cfg.TimestampFormat); err != nil {
		return fmt.Errorf("timestamp_format: %w", err)
	}

	if err := validateSeek(&cfg.Seek); err != nil {
		return fmt.Errorf("seek: %w", err)
	}

	if cfg.Filter != "" {
		f, err := filter.Compile(cfg.Filter)
		if err != nil {
			return fmt.Errorf("filter: %w", err)
		}
		cfg.compiledFilter = f
	}

	if err := validateLogging(&cfg.Logging); err != nil {
		return fmt.Errorf("logging: %w", err)
	}

	// Webhooks are optional, but validate if present
	for i := range cfg.Webhooks {
		if err := validateWebhook(&cfg.Webhooks[i]); err != nil {
			return fmt.Errorf("webhooks[%d] (%s): %w", i, cfg.Webhooks[i].DisplayName(), err)
		}
	}

	return nil
}

func validateWebhook(wh *WebhookConfig) error {
	if wh.URL == "" {
		return errors.New("url is required")
	}

	u, err := url.Parse(wh.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("url must have a host")
	}

	wh.Token = expandEnvVar(wh.Token)

	switch wh.Trigger {
	case "":
		wh.Trigger = WebhookTriggerLines
	case WebhookTriggerLines, WebhookTriggerBench, WebhookTriggerNever:
	default:
		return fmt.Errorf("invalid trigger %q (must be lines, bench, or never)", wh.Trigger)
	}

	if wh.Filter != "" {
		f, err := filter.Compile(wh.Filter)
		if err != nil {
			return fmt.Errorf("filter: %w", err)
		}
		wh.compiledFilter = f
	}

	if wh.Timeout <= 0 {
		wh.Timeout = DefaultWebhookTimeout
	}
	return nil
}

// WebhooksFor returns the webhooks with the given trigger.
func (c *Config) WebhooksFor(trigger WebhookTrigger) []WebhookConfig {
	var out []WebhookConfig
	for _, wh := range c.Webhooks {
		if wh.Trigger == trigger {
			out = append(out, wh)
		}
	}
	return out
}

func validateEQ(eq *EQConfig) error {
	eq.InstallDir = expandEnvVar(eq.InstallDir)
	if eq.InstallDir == "" {
		return errors.New("install_dir is required")
	}
	if _, err := eqlog.LogFileName(eq.Server, eq.Character); err != nil {
		return err
	}
	return nil
}

func validateTimestampFormat(tf *TimestampConfig) error {
	if tf.Pattern == "" {
		return errors.New("pattern is required")
	}

	re, err := regexp.Compile(tf.Pattern)
	if err != nil {
		return fmt.Errorf("invalid pattern: %w", err)
	}

	if re.NumSubexp() < 1 {
		return errors.New("pattern must have at least one capture group for the timestamp")
	}

	tf.compiledPattern = re

	if tf.Layout == "" {
		return errors.New("layout is required")
	}

	tz := tf.Timezone
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", tf.Timezone, err)
	}
	tf.location = loc

	return nil
}

func validateSeek(sc *SeekConfig) error {
	if sc.Strategy == "" {
		sc.Strategy = DefaultStrategy
	}
	switch seek.Strategy(sc.Strategy) {
	case seek.StrategyLinear, seek.StrategyJump:
	default:
		return fmt.Errorf("invalid strategy %q (must be linear or jump)", sc.Strategy)
	}

	if sc.BlockSize < 0 {
		return fmt.Errorf("block_size must be positive, got %d", sc.BlockSize)
	}
	if sc.BlockSize == 0 {
		sc.BlockSize = DefaultBlockSize
	}

	if sc.MaxLineLength < 0 {
		return fmt.Errorf("max_line_length must be positive, got %d", sc.MaxLineLength)
	}
	if sc.MaxLineLength == 0 {
		sc.MaxLineLength = DefaultMaxLineLength
	}

	return nil
}

func validateLogging(lc *LoggingConfig) error {
	if lc.Level == "" {
		lc.Level = DefaultLogLevel
	}
	if _, err := zapcore.ParseLevel(lc.Level); err != nil {
		return fmt.Errorf("invalid level %q (must be debug, info, warn, or error)", lc.Level)
	}
	lc.Path = expandEnvVar(lc.Path)
	if lc.MaxSize < 0 || lc.MaxBackups < 0 || lc.MaxAge < 0 {
		return errors.New("max_size, max_backups and max_age must not be negative")
	}
	return nil
}

// ResolveLogFile returns the single log file the configuration names, either
// through log_file (which may be a glob) or through eq.
func (c *Config) ResolveLogFile() (string, error) {
	switch {
	case c.LogFile != "":
		return parser.ResolveSingle(c.LogFile)
	case c.EQ != nil:
		return eqlog.ResolvePath(c.EQ.InstallDir, c.EQ.Server, c.EQ.Character)
	default:
		return "", errors.New("no log file configured (set log_file or eq)")
	}
}

// Extractor builds the timestamp extractor for the validated format.
func (t *TimestampConfig) Extractor() *parser.TimestampExtractor {
	return parser.NewTimestampExtractor(t.compiledPattern, t.Layout, parser.WithLocation(t.location))
}

// Options converts the seek settings into seek options.
func (s *SeekConfig) Options() []seek.Option {
	return []seek.Option{
		seek.WithBlockSize(int64(s.BlockSize)),
		seek.WithMaxLineLength(int64(s.MaxLineLength)),
	}
}

// expandEnvVar expands environment variable references in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	if s == "" {
		return s
	}

	// Handle ${VAR} format
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		varName := s[2 : len(s)-1]
		return os.Getenv(varName)
	}

	// Handle $VAR format (no braces)
	if strings.HasPrefix(s, "$") && !strings.HasPrefix(s, "${") {
		varName := s[1:]
		return os.Getenv(varName)
	}

	return s
}
