package detector

import (
	"regexp"

	"github.com/ccollicutt/logseek/pkg/eqlog"
	"github.com/ccollicutt/logseek/pkg/parser"
)

// TimestampFormat represents a known timestamp format for detection.
type TimestampFormat struct {
	Name       string         // Human-readable name
	Pattern    *regexp.Regexp // Compiled regex (set during init)
	PatternStr string         // Pattern string for config output
	Layout     string         // Go time layout for parsing
	Example    string         // Example line prefix
	Ambiguous  bool           // True if format has date ordering ambiguity (MM/DD vs DD/MM)
}

// EverQuestFormat is the client log format. It is tried first.
const EverQuestFormat = "EverQuest client log"

// DefaultFormats returns the built-in timestamp formats to detect.
// Formats are ordered roughly by specificity (more specific patterns first).
func DefaultFormats() []*TimestampFormat {
	formats := []*TimestampFormat{
		{Name: EverQuestFormat, PatternStr: eqlog.LinePattern.String(), Layout: eqlog.TimestampLayout,
			Example: "[Fri Oct 25 18:58:06 2019] Stanvern says out of character, 'hi'"},

		// ISO 8601 family, most specific first
		{Name: "ISO 8601 with milliseconds and timezone", PatternStr: `^(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}[+-]\d{2}:\d{2})\s*(.*)$`,
			Layout: "2006-01-02T15:04:05.000-07:00", Example: "2024-01-15T10:30:00.123+00:00"},
		{Name: "ISO 8601 with milliseconds and Z", PatternStr: `^(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z)\s*(.*)$`,
			Layout: "2006-01-02T15:04:05.000Z07:00", Example: "2024-01-15T10:30:00.123Z"},
		{Name: "ISO 8601 with timezone", PatternStr: `^(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}[+-]\d{2}:\d{2})\s*(.*)$`,
			Layout: "2006-01-02T15:04:05-07:00", Example: "2024-01-15T10:30:00-05:00"},
		{Name: "ISO 8601 with Z (UTC)", PatternStr: `^(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z)\s*(.*)$`,
			Layout: "2006-01-02T15:04:05Z07:00", Example: "2024-01-15T10:30:00Z"},
		{Name: "ISO 8601 with milliseconds", PatternStr: `^(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3})\s*(.*)$`,
			Layout: "2006-01-02T15:04:05.000", Example: "2024-01-15T10:30:00.123"},
		{Name: "ISO 8601", PatternStr: `^(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2})\s*(.*)$`,
			Layout: "2006-01-02T15:04:05", Example: "2024-01-15T10:30:00"},

		{Name: "Bracketed datetime", PatternStr: `^\[(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})\]\s*(.*)$`,
			Layout: "2006-01-02 15:04:05", Example: "[2024-01-15 10:30:00]"},
		{Name: "Python logging", PatternStr: `^(\d{4}-\d{2}-\d{2}\s+\d{2}:\d{2}:\d{2},\d{3})\s*(.*)$`,
			Layout: "2006-01-02 15:04:05,000", Example: "2024-01-15 10:30:00,123"},
		{Name: "Log4j/Java logging", PatternStr: `^(\d{4}-\d{2}-\d{2}\s+\d{2}:\d{2}:\d{2}\.\d{3})\s*(.*)$`,
			Layout: "2006-01-02 15:04:05.000", Example: "2024-01-15 10:30:00.123"},
		{Name: "Datetime (space-separated)", PatternStr: `^(\d{4}-\d{2}-\d{2}\s+\d{2}:\d{2}:\d{2})\s*(.*)$`,
			Layout: "2006-01-02 15:04:05", Example: "2024-01-15 10:30:00"},

		{Name: "Syslog with year", PatternStr: `^(\w{3}\s+\d{1,2}\s+\d{4}\s+\d{2}:\d{2}:\d{2})\s*(.*)$`,
			Layout: "Jan 2 2006 15:04:05", Example: "Jun 14 2024 15:16:01"},
		{Name: "Apache/NGINX CLF", PatternStr: `\[(\d{2}/\w{3}/\d{4}:\d{2}:\d{2}:\d{2}\s+[+-]\d{4})\]`,
			Layout: "02/Jan/2006:15:04:05 -0700", Example: "[15/Jun/2024:10:30:00 +0000]"},

		// Epoch formats, anchored at line start
		{Name: "Unix timestamp (seconds)", PatternStr: `^(\d{10})(?:\s+|$)(.*)$`,
			Layout: parser.LayoutUnixSeconds, Example: "1705315800"},
		{Name: "Unix timestamp (milliseconds)", PatternStr: `^(\d{13})(?:\s+|$)(.*)$`,
			Layout: parser.LayoutUnixMillis, Example: "1705315800000"},

		{Name: "US date format (MM/DD/YYYY)", PatternStr: `^(\d{2}/\d{2}/\d{4}\s+\d{2}:\d{2}:\d{2})\s*(.*)$`,
			Layout: "01/02/2006 15:04:05", Example: "01/15/2024 10:30:00", Ambiguous: true},
	}

	// Compile all patterns
	for _, f := range formats {
		f.Pattern = regexp.MustCompile(f.PatternStr)
	}

	return formats
}
