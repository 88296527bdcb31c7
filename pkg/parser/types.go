// Package parser provides timestamp extraction and line sources that read a
// log forward from a seek cursor.
package parser

import "time"

// ParsedLine represents a single log line with extracted metadata.
type ParsedLine struct {
	// Raw is the original line content.
	Raw string

	// Timestamp is the parsed timestamp from the log line. It is the zero
	// time when Parsed is false.
	Timestamp time.Time

	// Parsed reports whether a timestamp could be extracted.
	Parsed bool

	// Payload is the line with its timestamp portion removed.
	Payload string

	// Source is the file path this line came from.
	Source string

	// LineNum is the 1-based line number counted from where reading began.
	LineNum int

	// Offset is the byte offset of the line in the file, or -1 if unknown.
	Offset int64
}
