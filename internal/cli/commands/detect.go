package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ccollicutt/logseek/pkg/config"
	"github.com/ccollicutt/logseek/pkg/detector"
)

// DetectOptions holds command-line options for the detect command.
type DetectOptions struct {
	Output      string
	SampleSize  int
	ShowAll     bool
	WriteConfig string
	Timezone    string
}

// NewDetectCommand creates the detect command.
func NewDetectCommand() *cobra.Command {
	opts := &DetectOptions{}

	cmd := &cobra.Command{
		Use:   "detect <log-file>",
		Short: "Detect timestamp format in a log file",
		Long: `Analyze a log file to automatically detect its timestamp format.

Samples lines from the head of the file and tests them against known
timestamp patterns. Reports the detected format with a confidence score and a
ready-to-use YAML configuration snippet.

Optionally generates a starter config file with --write-config.

Supports:
  - EverQuest client logs
  - ISO 8601 variants (with/without timezone, milliseconds)
  - Syslog with year
  - Apache/NGINX common log format
  - Unix timestamps (seconds and milliseconds)
  - Python/Java logging formats
  - Bracketed datetime formats

Example:
  logseek detect /var/log/myapp.log
  logseek detect --sample 500 /var/log/large.log
  logseek detect -w logseek.yaml --timezone America/New_York eqlog_Stanvern_P1999Green.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().IntVarP(&opts.SampleSize, "sample", "n", 100, "Number of lines to sample")
	cmd.Flags().BoolVar(&opts.ShowAll, "all", false, "Show all detected formats, not just the best match")
	cmd.Flags().StringVarP(&opts.WriteConfig, "write-config", "w", "", "Write starter config to file (will not overwrite)")
	cmd.Flags().StringVar(&opts.Timezone, "timezone", config.DefaultTimezone, "Timezone to record in the starter config")

	return cmd
}

func runDetect(cmd *cobra.Command, args []string, opts *DetectOptions) error {
	logFile := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Check file exists
	if _, err := os.Stat(logFile); os.IsNotExist(err) {
		return fmt.Errorf("log file not found: %s", logFile)
	}

	d := detector.New(detector.WithSampleSize(opts.SampleSize))

	result, err := d.DetectFromFile(ctx, logFile)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	out := cmd.OutOrStdout()

	// Write config file if requested
	if opts.WriteConfig != "" {
		if err := writeStarterConfig(result, logFile, opts.WriteConfig, opts.Timezone, out); err != nil {
			return err
		}
	}

	switch opts.Output {
	case "json":
		return outputDetectJSON(out, result, logFile, opts)
	default:
		return outputDetectText(out, result, logFile, opts)
	}
}

func outputDetectText(w io.Writer, result *detector.DetectionResult, logFile string, opts *DetectOptions) error {
	fmt.Fprintln(w, "=== Timestamp Format Detection ===")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "File: %s\n", logFile)
	fmt.Fprintf(w, "Lines sampled: %d\n", result.SampledLines)
	fmt.Fprintf(w, "Lines with timestamps: %d\n", result.ParsedLines)
	fmt.Fprintln(w)

	if !result.HasMatch() {
		fmt.Fprintln(w, "No timestamp format detected.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Tip: The file may use an uncommon format.")
		fmt.Fprintln(w, "Check the first few lines manually and set timestamp_format in a config file.")
		return nil
	}

	best := result.BestMatch()
	fmt.Fprintf(w, "Detected Format: %s\n", best.Format.Name)
	fmt.Fprintf(w, "Confidence: %.1f%% (%d/%d lines matched)\n",
		best.Confidence*100, best.MatchCount, result.SampledLines)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Sample match:\n  %s\n", best.SampleLine)
	fmt.Fprintf(w, "Parsed as: %s\n", best.ParsedTime.Format("2006-01-02 15:04:05"))
	fmt.Fprintln(w)

	if result.AmbiguityNote != "" {
		fmt.Fprintln(w, "WARNING: This format has date ordering ambiguity (MM/DD vs DD/MM).")
		fmt.Fprintf(w, "Note: %s\n", result.AmbiguityNote)
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "--- Configuration snippet (copy to your config file) ---")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "timestamp_format:")
	fmt.Fprintf(w, "  pattern: '%s'\n", best.Format.PatternStr)
	fmt.Fprintf(w, "  layout: \"%s\"\n", best.Format.Layout)
	fmt.Fprintln(w)

	if opts.ShowAll && len(result.Matches) > 1 {
		fmt.Fprintln(w, "--- Alternative formats detected ---")
		for i, m := range result.Matches[1:] {
			fmt.Fprintf(w, "%d. %s (%.1f%% confidence)\n", i+2, m.Format.Name, m.Confidence*100)
			fmt.Fprintf(w, "   pattern: '%s'\n", m.Format.PatternStr)
			fmt.Fprintf(w, "   layout: \"%s\"\n", m.Format.Layout)
		}
		fmt.Fprintln(w)
	}

	return nil
}

// JSONMatch represents a format match in JSON output.
type JSONMatch struct {
	Name       string  `json:"name"`
	Pattern    string  `json:"pattern"`
	Layout     string  `json:"layout"`
	Confidence float64 `json:"confidence"`
	MatchCount int     `json:"match_count"`
	SampleLine string  `json:"sample_line"`
	Ambiguous  bool    `json:"ambiguous,omitempty"`
}

// JSONOutput represents the full JSON output.
type JSONOutput struct {
	File          string      `json:"file"`
	Matches       []JSONMatch `json:"matches"`
	SampledLines  int         `json:"sampled_lines"`
	ParsedLines   int         `json:"parsed_lines"`
	AmbiguityNote string      `json:"ambiguity_note,omitempty"`
}

func outputDetectJSON(w io.Writer, result *detector.DetectionResult, logFile string, opts *DetectOptions) error {
	output := JSONOutput{
		File:          logFile,
		SampledLines:  result.SampledLines,
		ParsedLines:   result.ParsedLines,
		AmbiguityNote: result.AmbiguityNote,
		Matches:       make([]JSONMatch, 0),
	}

	matches := result.Matches
	if !opts.ShowAll && len(matches) > 1 {
		matches = matches[:1] // Only show best match
	}

	for _, m := range matches {
		output.Matches = append(output.Matches, JSONMatch{
			Name:       m.Format.Name,
			Pattern:    m.Format.PatternStr,
			Layout:     m.Format.Layout,
			Confidence: m.Confidence,
			MatchCount: m.MatchCount,
			SampleLine: m.SampleLine,
			Ambiguous:  m.Format.Ambiguous,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// writeStarterConfig generates a starter config file with the detected format.
func writeStarterConfig(result *detector.DetectionResult, logFile, configPath, timezone string, w io.Writer) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s (will not overwrite)", configPath)
	}

	if !result.HasMatch() {
		return fmt.Errorf("cannot generate config: no timestamp format detected")
	}

	data, err := generateStarterConfig(logFile, timezone, result.BestMatch())
	if err != nil {
		return err
	}

	// #nosec G306 - config file doesn't need restrictive permissions
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(w, "Wrote starter config to: %s\n\n", configPath)
	return nil
}

// generateStarterConfig renders a config that reads logFile with the
// detected format and default seek settings.
func generateStarterConfig(logFile, timezone string, match *detector.FormatMatch) ([]byte, error) {
	absLogFile := logFile
	if abs, err := filepath.Abs(logFile); err == nil {
		absLogFile = abs
	}

	cfg := config.DefaultConfig()
	cfg.LogFile = absLogFile
	cfg.TimestampFormat.Pattern = match.Format.PatternStr
	cfg.TimestampFormat.Layout = match.Format.Layout
	if timezone != "" {
		cfg.TimestampFormat.Timezone = timezone
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("generated config is invalid: %w", err)
	}

	body, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}

	header := fmt.Sprintf("# logseek configuration\n# Generated by: logseek detect\n# Detected format: %s (%.0f%% confidence)\n\n",
		match.Format.Name, match.Confidence*100)
	return append([]byte(header), body...), nil
}
