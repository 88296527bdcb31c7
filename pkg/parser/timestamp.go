package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Special layouts for numeric epoch timestamps.
const (
	LayoutUnixSeconds = "UNIX_SECONDS"
	LayoutUnixMillis  = "UNIX_MILLIS"
)

// errNoMatch is returned by Parse when the pattern does not match.
var errNoMatch = errors.New("timestamp pattern did not match")

// TimestampExtractor extracts and parses timestamps from log lines.
// It satisfies seek.Extractor.
type TimestampExtractor struct {
	pattern  *regexp.Regexp
	layout   string
	location *time.Location
}

// ExtractorOption configures a TimestampExtractor.
type ExtractorOption func(*TimestampExtractor)

// WithLocation interprets timestamps without a zone in loc instead of UTC.
func WithLocation(loc *time.Location) ExtractorOption {
	return func(e *TimestampExtractor) {
		if loc != nil {
			e.location = loc
		}
	}
}

// NewTimestampExtractor creates a new timestamp extractor. The first capture
// group of pattern holds the timestamp; an optional second group holds the
// payload.
func NewTimestampExtractor(pattern *regexp.Regexp, layout string, opts ...ExtractorOption) *TimestampExtractor {
	e := &TimestampExtractor{
		pattern:  pattern,
		layout:   layout,
		location: time.UTC,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Layout returns the time layout the extractor parses with.
func (e *TimestampExtractor) Layout() string {
	return e.layout
}

// Location returns the zone timestamps are interpreted in.
func (e *TimestampExtractor) Location() *time.Location {
	return e.location
}

// Extract returns the line's timestamp, or false if the line has none.
func (e *TimestampExtractor) Extract(line string) (time.Time, bool) {
	ts, err := e.Parse(line)
	return ts, err == nil
}

// Parse is Extract with the reason for a miss. It is meant for diagnostics;
// seeking only needs Extract.
func (e *TimestampExtractor) Parse(line string) (time.Time, error) {
	ts, _, err := e.split(line)
	return ts, err
}

// Split returns the timestamp and the payload of a line. The payload is the
// second capture group when the pattern has one, otherwise whatever follows
// the match.
func (e *TimestampExtractor) Split(line string) (time.Time, string, bool) {
	ts, payload, err := e.split(line)
	return ts, payload, err == nil
}

func (e *TimestampExtractor) split(line string) (time.Time, string, error) {
	loc := e.pattern.FindStringSubmatchIndex(line)
	if len(loc) < 4 || loc[2] < 0 {
		return time.Time{}, "", errNoMatch
	}

	// Use the first capture group as the timestamp string
	tsStr := line[loc[2]:loc[3]]

	ts, err := ParseTimestamp(tsStr, e.layout, e.location)
	if err != nil {
		return time.Time{}, "", err
	}

	payload := line[loc[1]:]
	if len(loc) >= 6 && loc[4] >= 0 {
		payload = line[loc[4]:loc[5]]
	}
	return ts, payload, nil
}

// ParseTimestamp parses tsStr with layout in loc, handling the epoch layouts.
// Layouts ending in a literal Z are parsed in UTC.
func ParseTimestamp(tsStr, layout string, loc *time.Location) (time.Time, error) {
	switch layout {
	case LayoutUnixSeconds:
		secs, err := strconv.ParseInt(tsStr, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", tsStr, err)
		}
		return time.Unix(secs, 0).UTC(), nil

	case LayoutUnixMillis:
		millis, err := strconv.ParseInt(tsStr, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", tsStr, err)
		}
		return time.UnixMilli(millis).UTC(), nil

	default:
		// A literal Z means UTC whatever zone unzoned timestamps are read in.
		if loc == nil || strings.HasSuffix(layout, "Z") {
			loc = time.UTC
		}
		ts, err := time.ParseInLocation(layout, tsStr, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", tsStr, err)
		}
		return ts, nil
	}
}
