package output

import (
	"context"
	"encoding/json"
	"io"

	"github.com/ccollicutt/logseek/pkg/bench"
)

// JSONFormatter formats reports as JSON.
type JSONFormatter struct {
	opts FormatOptions
}

// NewJSONFormatter creates a new JSON formatter with the given options.
func NewJSONFormatter(opts FormatOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Name returns the format name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// Format renders the report as JSON.
func (f *JSONFormatter) Format(ctx context.Context, report *bench.Report, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if f.opts.Quiet {
		// Quiet mode: just the winners
		return encoder.Encode(fastest(report))
	}

	return encoder.Encode(report)
}

// fastest returns the quickest successful result for each target, in the
// order targets first appear.
func fastest(report *bench.Report) []bench.Result {
	var order []string
	best := make(map[string]bench.Result)
	for _, res := range report.Results {
		if res.Error != "" {
			continue
		}
		cur, ok := best[res.Target]
		if !ok {
			order = append(order, res.Target)
		}
		if !ok || res.Duration < cur.Duration {
			best[res.Target] = res
		}
	}

	out := make([]bench.Result, 0, len(order))
	for _, target := range order {
		out = append(out, best[target])
	}
	return out
}
