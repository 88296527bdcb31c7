// Package eqlog reads EverQuest client logs: it knows the line format, how
// timestamps are written, and where the client keeps its log files.
package eqlog

import (
	"regexp"
	"time"

	"github.com/ccollicutt/logseek/pkg/parser"
)

// LinePattern matches a whole log line, capturing the timestamp and payload.
// Example: "[Fri Oct 25 18:58:06 2019] Stanvern says out of character, 'hi'"
var LinePattern = regexp.MustCompile(`^\[(.+?)\] (.+)$`)

// TimestampLayout is the Go layout of the bracketed timestamp.
const TimestampLayout = "Mon Jan 02 15:04:05 2006"

// Event is a single parsed log line.
type Event struct {
	// Line is the full line as written.
	Line string `json:"line"`

	// Timestamp is when the client wrote the line, in the zone it was parsed in.
	Timestamp time.Time `json:"timestamp"`

	// Payload is the text after the timestamp.
	Payload string `json:"payload"`
}

func (e *Event) String() string {
	return e.Line
}

// NewExtractor returns the timestamp extractor for client logs. The client
// writes local wall-clock time with no zone, so loc must be the zone of the
// machine that wrote the log.
func NewExtractor(loc *time.Location) *parser.TimestampExtractor {
	return parser.NewTimestampExtractor(LinePattern, TimestampLayout, parser.WithLocation(loc))
}

// ParseLine parses a single log line. It returns false for blank, truncated or
// otherwise malformed lines.
func ParseLine(line string, loc *time.Location) (*Event, bool) {
	ts, payload, ok := NewExtractor(loc).Split(line)
	if !ok {
		return nil, false
	}
	return &Event{Line: line, Timestamp: ts, Payload: payload}, true
}

// FromParsedLine converts a parsed line read through a source built with
// NewExtractor.
func FromParsedLine(pl *parser.ParsedLine) (*Event, bool) {
	if pl == nil || !pl.Parsed {
		return nil, false
	}
	return &Event{Line: pl.Raw, Timestamp: pl.Timestamp, Payload: pl.Payload}, true
}
