// Package output renders benchmark reports and the lines a read emits.
package output

import (
	"context"
	"fmt"
	"io"

	"github.com/ccollicutt/logseek/pkg/bench"
)

// Formatter renders benchmark reports in a specific format.
type Formatter interface {
	// Format renders the report to the given writer.
	Format(ctx context.Context, report *bench.Report, w io.Writer) error

	// Name returns the format name (text, json).
	Name() string
}

// FormatOptions controls formatter behavior.
type FormatOptions struct {
	// Verbose adds the seek statistics columns.
	Verbose bool

	// Quiet prints only the fastest strategy per target.
	Quiet bool
}

// NewFormatter returns the formatter registered under name.
func NewFormatter(name string, opts FormatOptions) (Formatter, error) {
	switch name {
	case "text", "":
		return NewTextFormatter(opts), nil
	case "json":
		return NewJSONFormatter(opts), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (must be text or json)", name)
	}
}
