// Package detector provides automatic timestamp format detection for log files.
package detector

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/ccollicutt/logseek/pkg/parser"
)

// Epoch timestamps outside 1970..2100 are treated as plain numbers.
var (
	minEpoch = time.Unix(0, 0)
	maxEpoch = time.Unix(4102444800, 0)
)

// DetectionResult holds the result of analyzing a log file.
type DetectionResult struct {
	Matches       []FormatMatch // Formats that matched, sorted by confidence descending
	SampledLines  int           // Number of lines sampled
	ParsedLines   int           // Number of lines with detected timestamps
	AmbiguityNote string        // Warning about date ordering if applicable
}

// FormatMatch represents a format that matched with its confidence score.
type FormatMatch struct {
	Format     *TimestampFormat
	Confidence float64   // 0.0 to 1.0 (percentage of lines matched)
	MatchCount int       // Number of lines that matched
	SampleLine string    // Example line that matched
	ParsedTime time.Time // Parsed timestamp from sample
}

// Extractor returns an extractor for the matched format in loc.
func (m *FormatMatch) Extractor(loc *time.Location) *parser.TimestampExtractor {
	return parser.NewTimestampExtractor(m.Format.Pattern, m.Format.Layout, parser.WithLocation(loc))
}

// Detector analyzes log files to identify timestamp formats.
type Detector struct {
	formats    []*TimestampFormat
	sampleSize int
}

// Option configures the Detector.
type Option func(*Detector)

// WithSampleSize sets the number of lines to sample (default 100).
func WithSampleSize(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.sampleSize = n
		}
	}
}

// New creates a new Detector with default formats.
func New(opts ...Option) *Detector {
	d := &Detector{
		formats:    DefaultFormats(),
		sampleSize: 100,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetectFromFile analyzes the head of a log file and returns detected formats.
func (d *Detector) DetectFromFile(ctx context.Context, path string) (*DetectionResult, error) {
	lines, err := d.sampleFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return d.DetectFromLines(lines), nil
}

// DetectFromLines analyzes a slice of log lines. Blank lines are ignored.
func (d *Detector) DetectFromLines(lines []string) *DetectionResult {
	type formatStats struct {
		format     *TimestampFormat
		order      int
		matchCount int
		sampleLine string
		parsedTime time.Time
	}

	stats := make(map[string]*formatStats)
	sampled := 0

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		sampled++

		for i, format := range d.formats {
			matches := format.Pattern.FindStringSubmatch(line)
			if len(matches) < 2 {
				continue
			}

			ts, ok := parse(matches[1], format.Layout)
			if !ok {
				continue
			}

			s := stats[format.Name]
			if s == nil {
				s = &formatStats{format: format, order: i, sampleLine: line, parsedTime: ts}
				stats[format.Name] = s
			}
			s.matchCount++
		}
	}

	result := &DetectionResult{SampledLines: sampled}
	if sampled == 0 {
		return result
	}

	order := make(map[string]int, len(stats))
	for _, s := range stats {
		order[s.format.Name] = s.order
		result.Matches = append(result.Matches, FormatMatch{
			Format:     s.format,
			Confidence: float64(s.matchCount) / float64(sampled),
			MatchCount: s.matchCount,
			SampleLine: s.sampleLine,
			ParsedTime: s.parsedTime,
		})
	}

	// Highest confidence first; ties go to the format listed first.
	sort.Slice(result.Matches, func(i, j int) bool {
		a, b := result.Matches[i], result.Matches[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		return order[a.Format.Name] < order[b.Format.Name]
	})

	if best := result.BestMatch(); best != nil {
		result.ParsedLines = best.MatchCount
		if best.Format.Ambiguous {
			result.AmbiguityNote = "This format has date ordering ambiguity (MM/DD vs DD/MM). " +
				"Verify the layout matches your log format. " +
				"For European format (DD/MM/YYYY), use layout: \"02/01/2006 15:04:05\""
		}
	}

	return result
}

func parse(tsStr, layout string) (time.Time, bool) {
	ts, err := parser.ParseTimestamp(tsStr, layout, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	if layout == parser.LayoutUnixSeconds || layout == parser.LayoutUnixMillis {
		if ts.Before(minEpoch) || ts.After(maxEpoch) {
			return time.Time{}, false
		}
	}
	return ts, true
}

// sampleFile reads up to sampleSize non-blank lines from the start of a file.
func (d *Detector) sampleFile(ctx context.Context, path string) ([]string, error) {
	file, err := os.Open(path) // #nosec G304 -- path is provided by user via CLI
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for len(lines) < d.sampleSize && scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if line := scanner.Text(); strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return lines, nil
}

// BestMatch returns the highest confidence match, or nil if none found.
func (r *DetectionResult) BestMatch() *FormatMatch {
	if len(r.Matches) == 0 {
		return nil
	}
	return &r.Matches[0]
}

// HasMatch returns true if at least one format matched.
func (r *DetectionResult) HasMatch() bool {
	return len(r.Matches) > 0
}
