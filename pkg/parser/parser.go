package parser

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ccollicutt/logseek/pkg/seek"
)

// Splitter extracts a timestamp and payload from a line.
// TimestampExtractor implements it.
type Splitter interface {
	Split(line string) (ts time.Time, payload string, ok bool)
}

// CursorSource implements LogSource over a seek.Cursor, reading forward from
// the position the seek established.
type CursorSource struct {
	cursor   *seek.Cursor
	splitter Splitter
	lineNum  int
}

// NewCursorSource creates a LogSource that reads lines from cursor. The
// source takes ownership of the cursor and closes it on Close.
func NewCursorSource(cursor *seek.Cursor, splitter Splitter) *CursorSource {
	return &CursorSource{
		cursor:   cursor,
		splitter: splitter,
	}
}

// Next returns the next line from the cursor.
// Lines without a timestamp are returned with Parsed set to false.
// Returns io.EOF at the end of the file.
func (s *CursorSource) Next(ctx context.Context) (*ParsedLine, error) {
	// Check for context cancellation
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	offset := s.cursor.Offset()
	line, err := s.cursor.ReadLine()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.cursor.Path(), err)
	}
	s.lineNum++

	return newParsedLine(s.splitter, line, s.cursor.Path(), s.lineNum, offset), nil
}

// Partial reports whether the line last returned by Next had no trailing
// newline.
func (s *CursorSource) Partial() bool {
	return s.cursor.Partial()
}

// Offset returns the byte offset of the next unread line.
func (s *CursorSource) Offset() int64 {
	return s.cursor.Offset()
}

// Close releases resources.
func (s *CursorSource) Close() error {
	return s.cursor.Close()
}

func newParsedLine(splitter Splitter, line, source string, lineNum int, offset int64) *ParsedLine {
	pl := &ParsedLine{
		Raw:     line,
		Payload: line,
		Source:  source,
		LineNum: lineNum,
		Offset:  offset,
	}
	if ts, payload, ok := splitter.Split(line); ok {
		pl.Timestamp = ts
		pl.Payload = payload
		pl.Parsed = true
	}
	return pl
}
