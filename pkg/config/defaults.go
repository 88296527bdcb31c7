package config

import (
	"os"
	"time"

	"github.com/ccollicutt/logseek/pkg/eqlog"
	"github.com/ccollicutt/logseek/pkg/seek"
)

// Default values for configuration.
const (
	DefaultStrategy        = string(seek.StrategyJump)
	DefaultBlockSize       = ByteSize(seek.DefaultBlockSize)
	DefaultMaxLineLength   = ByteSize(seek.DefaultMaxLineLength)
	DefaultTimestampLayout = eqlog.TimestampLayout
	DefaultTimezone        = "Local"
	DefaultLogLevel        = "info"
	DefaultLogMaxSize      = 10
	DefaultLogMaxBackups   = 3
	DefaultLogMaxAge       = 28
	DefaultWebhookTimeout  = 10 * time.Second
)

// DefaultTimestampPattern matches EverQuest client log lines.
var DefaultTimestampPattern = eqlog.LinePattern.String()

// Environment variable names.
const (
	EnvLogFile         = "LOGSEEK_LOG_FILE"
	EnvTimestampLayout = "LOGSEEK_TIMESTAMP_LAYOUT"
	EnvTimezone        = "LOGSEEK_TIMEZONE"
	EnvLogLevel        = "LOGSEEK_LOG_LEVEL"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		TimestampFormat: TimestampConfig{
			Pattern:  DefaultTimestampPattern,
			Layout:   DefaultTimestampLayout,
			Timezone: DefaultTimezone,
		},
		Seek: SeekConfig{
			Strategy:      DefaultStrategy,
			BlockSize:     DefaultBlockSize,
			MaxLineLength: DefaultMaxLineLength,
		},
		Logging: LoggingConfig{
			Level:      DefaultLogLevel,
			MaxSize:    DefaultLogMaxSize,
			MaxBackups: DefaultLogMaxBackups,
			MaxAge:     DefaultLogMaxAge,
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	if path := os.Getenv(EnvLogFile); path != "" {
		c.LogFile = path
	}
	if layout := os.Getenv(EnvTimestampLayout); layout != "" {
		c.TimestampFormat.Layout = layout
	}
	if tz := os.Getenv(EnvTimezone); tz != "" {
		c.TimestampFormat.Timezone = tz
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Logging.Level = level
	}
}
