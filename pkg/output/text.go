package output

import (
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ccollicutt/logseek/pkg/bench"
)

// TextFormatter formats reports as a human-readable table.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(ctx context.Context, report *bench.Report, w io.Writer) error {
	if f.opts.Quiet {
		return f.formatQuiet(report, w)
	}
	return f.formatFull(report, w)
}

func (f *TextFormatter) formatQuiet(report *bench.Report, w io.Writer) error {
	for _, res := range fastest(report) {
		if _, err := fmt.Fprintf(w, "%s - [%s] fastest: %s\n",
			res.Duration, res.Target, res.Description); err != nil {
			return err
		}
	}
	return nil
}

func (f *TextFormatter) formatFull(report *bench.Report, w io.Writer) error {
	fmt.Fprintf(w, "Seek benchmark: %s (%s)\n", report.Path, humanize.IBytes(uint64(report.Size)))

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault

	header := table.Row{"Target", "Strategy", "Block size", "Duration", "Offset"}
	if f.opts.Verbose {
		header = append(header, "Lines read", "Jumps", "Skipped")
	}
	tw.AppendHeader(header)

	for _, res := range report.Results {
		block := "-"
		if res.BlockSize > 0 {
			block = humanize.IBytes(uint64(res.BlockSize))
		}

		row := table.Row{res.Target, string(res.Strategy), block}
		if res.Error != "" {
			row = append(row, "error: "+res.Error, "-")
		} else {
			row = append(row, res.Duration.String(), humanize.Comma(res.Offset))
		}
		if f.opts.Verbose {
			row = append(row,
				humanize.Comma(res.Stats.LinesRead),
				humanize.Comma(res.Stats.Jumps),
				humanize.IBytes(uint64(res.Stats.BytesSkipped)))
		}
		tw.AppendRow(row)
	}

	configs := []table.ColumnConfig{
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	}
	if f.opts.Verbose {
		for n := 6; n <= 8; n++ {
			configs = append(configs, table.ColumnConfig{Number: n, Align: text.AlignRight, AlignHeader: text.AlignLeft})
		}
	}
	tw.SetColumnConfigs(configs)

	_, err := fmt.Fprintln(w, tw.Render())
	return err
}
