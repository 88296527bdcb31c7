// Package config provides configuration loading and validation for logseek.
package config

import (
	"fmt"
	"regexp"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/ccollicutt/logseek/pkg/filter"
)

// Config is the root configuration structure loaded from YAML.
type Config struct {
	// LogFile is the log to read. It may be a glob matching one file.
	LogFile string `yaml:"log_file,omitempty"`

	// EQ locates the log through an EverQuest install instead of LogFile.
	EQ *EQConfig `yaml:"eq,omitempty"`

	TimestampFormat TimestampConfig `yaml:"timestamp_format"`
	Seek            SeekConfig      `yaml:"seek"`

	// Filter is an optional expression lines must match to be printed.
	Filter string `yaml:"filter,omitempty"`

	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics,omitempty"`

	// Webhooks receive emitted lines or benchmark reports.
	Webhooks []WebhookConfig `yaml:"webhooks,omitempty"`

	compiledFilter *filter.Filter
}

// CompiledFilter returns the compiled filter, or nil when none is set.
func (c *Config) CompiledFilter() *filter.Filter {
	return c.compiledFilter
}

// EQConfig names a character log in an EverQuest install.
type EQConfig struct {
	InstallDir string `yaml:"install_dir"`
	Server     string `yaml:"server"` // blue, green, red
	Character  string `yaml:"character"`
}

// TimestampConfig defines how to extract timestamps from log lines.
type TimestampConfig struct {
	// Pattern is a regex that captures the timestamp portion of a log line.
	// Must contain at least one capture group; a second group, if present,
	// captures the payload.
	Pattern string `yaml:"pattern"`

	// Layout is the Go time layout string for parsing the captured timestamp,
	// or UNIX_SECONDS / UNIX_MILLIS.
	// See https://pkg.go.dev/time#pkg-constants for format.
	Layout string `yaml:"layout"`

	// Timezone is the IANA zone for timestamps written without an offset.
	// "Local" uses the machine's zone.
	Timezone string `yaml:"timezone,omitempty"`

	// compiledPattern is the pre-compiled regex (populated during validation).
	compiledPattern *regexp.Regexp
	location        *time.Location
}

// CompiledPattern returns the pre-compiled regex pattern.
func (t *TimestampConfig) CompiledPattern() *regexp.Regexp {
	return t.compiledPattern
}

// Location returns the loaded timezone (populated during validation).
func (t *TimestampConfig) Location() *time.Location {
	return t.location
}

// SeekConfig tunes how the start of the read is located.
type SeekConfig struct {
	// Strategy is "jump" (default) or "linear".
	Strategy string `yaml:"strategy,omitempty"`

	// BlockSize is the jump stride.
	BlockSize ByteSize `yaml:"block_size,omitempty"`

	// MaxLineLength must exceed the longest stretch from any byte of the log
	// to the end of the next line with a timestamp.
	MaxLineLength ByteSize `yaml:"max_line_length,omitempty"`
}

// LoggingConfig controls diagnostic logging.
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`       // debug, info, warn, error
	Path       string `yaml:"path,omitempty"`        // empty logs to stderr
	MaxSize    int    `yaml:"max_size,omitempty"`    // megabytes before rotation
	MaxBackups int    `yaml:"max_backups,omitempty"` // rotated files to keep
	MaxAge     int    `yaml:"max_age,omitempty"`     // days to keep rotated files
	Compress   bool   `yaml:"compress,omitempty"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	// Address to serve /metrics on while following, e.g. ":9109".
	// Empty disables the endpoint.
	Address string `yaml:"address,omitempty"`
}

// WebhookTrigger determines what a webhook is sent.
type WebhookTrigger string

const (
	// WebhookTriggerLines posts every line read and printed (default).
	WebhookTriggerLines WebhookTrigger = "lines"
	// WebhookTriggerBench posts the report of each benchmark run.
	WebhookTriggerBench WebhookTrigger = "bench"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines an endpoint that emitted lines or benchmark reports
// are posted to.
type WebhookConfig struct {
	// Name is an optional identifier for the webhook.
	Name string `yaml:"name,omitempty"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url"`

	// Token is an optional bearer token. ${VAR} and $VAR are expanded.
	Token string `yaml:"token,omitempty"`

	// Trigger determines what is posted. Defaults to "lines".
	Trigger WebhookTrigger `yaml:"trigger,omitempty"`

	// Filter narrows the lines posted to this webhook, on top of the
	// top-level filter.
	Filter string `yaml:"filter,omitempty"`

	// Timeout is the HTTP request timeout. Defaults to 10s.
	Timeout time.Duration `yaml:"timeout,omitempty"`

	compiledFilter *filter.Filter
}

// CompiledFilter returns the webhook's compiled filter, or nil.
func (w *WebhookConfig) CompiledFilter() *filter.Filter {
	return w.compiledFilter
}

// DisplayName returns Name, or the URL when no name is set.
func (w *WebhookConfig) DisplayName() string {
	if w.Name != "" {
		return w.Name
	}
	return w.URL
}

// ByteSize is a size in bytes that can be written as a number or as a human
// readable string such as "1MiB" or "64KB".
type ByteSize int64

// ParseByteSize parses "4096", "4KiB", "1 MB" and similar.
func ParseByteSize(s string) (ByteSize, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	return ByteSize(n), nil
}

// UnmarshalYAML accepts either an integer or a humanized string.
func (b *ByteSize) UnmarshalYAML(value *yaml.Node) error {
	var n int64
	if err := value.Decode(&n); err == nil {
		*b = ByteSize(n)
		return nil
	}

	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("size must be a number or a string like 1MiB")
	}
	parsed, err := ParseByteSize(s)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// MarshalYAML writes the size in IEC units.
func (b ByteSize) MarshalYAML() (interface{}, error) {
	return b.String(), nil
}

func (b ByteSize) String() string {
	if b < 0 {
		return fmt.Sprintf("%d B", int64(b))
	}
	return humanize.IBytes(uint64(b))
}
