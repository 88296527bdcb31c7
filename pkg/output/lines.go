package output

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ccollicutt/logseek/pkg/parser"
)

// LineWriter is a reader.Listener that prints each emitted line.
type LineWriter struct {
	mu     sync.Mutex
	w      io.Writer
	format string
	enc    *json.Encoder
}

type lineRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Payload   string    `json:"payload"`
	Line      string    `json:"line"`
	Offset    int64     `json:"offset"`
}

// NewLineWriter returns a LineWriter printing raw lines ("text") or one JSON
// object per line ("json").
func NewLineWriter(w io.Writer, format string) (*LineWriter, error) {
	switch format {
	case "text", "":
		return &LineWriter{w: w, format: "text"}, nil
	case "json":
		return &LineWriter{w: w, format: format, enc: json.NewEncoder(w)}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (must be text or json)", format)
	}
}

// OnLine writes line.
func (l *LineWriter) OnLine(_ context.Context, line *parser.ParsedLine) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.enc == nil {
		_, err := fmt.Fprintln(l.w, line.Raw)
		return err
	}
	return l.enc.Encode(lineRecord{
		Timestamp: line.Timestamp,
		Payload:   line.Payload,
		Line:      line.Raw,
		Offset:    line.Offset,
	})
}
