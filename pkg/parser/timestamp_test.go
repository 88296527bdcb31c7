package parser

import (
	"regexp"
	"testing"
	"time"
	_ "time/tzdata"
)

func TestTimestampExtractor_Extract(t *testing.T) {
	pattern := regexp.MustCompile(`^\[(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})\]`)
	layout := "2006-01-02 15:04:05"
	extractor := NewTimestampExtractor(pattern, layout)

	tests := []struct {
		name   string
		line   string
		want   time.Time
		wantOK bool
	}{
		{
			name:   "valid timestamp",
			line:   "[2024-01-15 10:30:00] Some log message",
			want:   time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name: "no match",
			line: "No timestamp here",
		},
		{
			name: "empty line",
			line: "",
		},
		{
			name: "partial match",
			line: "[2024-01-15",
		},
		{
			name: "matches but does not parse",
			line: "[2024-13-45 10:30:00] month out of range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractor.Extract(tt.line)
			if ok != tt.wantOK {
				t.Errorf("Extract() ok = %v, want %v", ok, tt.wantOK)
				return
			}
			if tt.wantOK && !got.Equal(tt.want) {
				t.Errorf("Extract() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTimestampExtractor_DifferentFormats(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		layout  string
		line    string
		want    time.Time
	}{
		{
			name:    "ISO format",
			pattern: `^(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2})`,
			layout:  "2006-01-02T15:04:05",
			line:    "2024-01-15T10:30:00 message",
			want:    time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			name:    "Unix-style syslog",
			pattern: `^(\w{3}\s+\d+\s+\d{2}:\d{2}:\d{2})`,
			layout:  "Jan  2 15:04:05",
			line:    "Jan 15 10:30:00 hostname message",
			want:    time.Date(0, 1, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			name:    "Unix seconds",
			pattern: `^(\d{10})\s`,
			layout:  LayoutUnixSeconds,
			line:    "1705314600 message",
			want:    time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			name:    "Unix millis",
			pattern: `^(\d{13})\s`,
			layout:  LayoutUnixMillis,
			line:    "1705314600123 message",
			want:    time.Date(2024, 1, 15, 10, 30, 0, 123000000, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pattern := regexp.MustCompile(tt.pattern)
			extractor := NewTimestampExtractor(pattern, tt.layout)
			got, err := extractor.Parse(tt.line)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Parse() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTimestampExtractor_WithLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("LoadLocation() error = %v", err)
	}

	pattern := regexp.MustCompile(`^\[(.+?)\] (.+)$`)
	extractor := NewTimestampExtractor(pattern, "Mon Jan 02 15:04:05 2006", WithLocation(loc))

	got, ok := extractor.Extract("[Fri Oct 25 18:58:06 2019] Stanvern says out of character, 'hi'")
	if !ok {
		t.Fatal("Extract() ok = false")
	}
	want := time.Date(2019, 10, 25, 22, 58, 6, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Extract() = %v, want %v", got, want)
	}
	if extractor.Location() != loc {
		t.Errorf("Location() = %v, want %v", extractor.Location(), loc)
	}
}

func TestTimestampExtractor_ZuluIgnoresLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("LoadLocation() error = %v", err)
	}
	want := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		pattern string
		layout  string
		line    string
		want    time.Time
	}{
		{
			name:    "literal Z",
			pattern: `^(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z)\s*(.*)$`,
			layout:  "2006-01-02T15:04:05Z",
			line:    "2024-01-15T10:30:00Z worker-1 processed request",
			want:    want,
		},
		{
			name:    "literal Z with milliseconds",
			pattern: `^(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z)\s*(.*)$`,
			layout:  "2006-01-02T15:04:05.000Z",
			line:    "2024-01-15T10:30:00.250Z worker-1 processed request",
			want:    want.Add(250 * time.Millisecond),
		},
		{
			name:    "zone layout",
			pattern: `^(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z)\s*(.*)$`,
			layout:  "2006-01-02T15:04:05Z07:00",
			line:    "2024-01-15T10:30:00Z worker-1 processed request",
			want:    want,
		},
		{
			name:    "no zone uses location",
			pattern: `^(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2})\s*(.*)$`,
			layout:  "2006-01-02T15:04:05",
			line:    "2024-01-15T05:30:00 worker-1 processed request",
			want:    want,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extractor := NewTimestampExtractor(regexp.MustCompile(tt.pattern), tt.layout, WithLocation(loc))
			got, ok := extractor.Extract(tt.line)
			if !ok {
				t.Fatal("Extract() ok = false")
			}
			if !got.Equal(tt.want) {
				t.Errorf("Extract() = %v, want %v", got.UTC(), tt.want)
			}
		})
	}
}

func TestTimestampExtractor_Split(t *testing.T) {
	tests := []struct {
		name        string
		pattern     string
		line        string
		wantPayload string
	}{
		{
			name:        "second capture group",
			pattern:     `^\[(\d{4})\] (.+)$`,
			line:        "[2024] hello world",
			wantPayload: "hello world",
		},
		{
			name:        "remainder after match",
			pattern:     `^\[(\d{4})\] `,
			line:        "[2024] hello world",
			wantPayload: "hello world",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extractor := NewTimestampExtractor(regexp.MustCompile(tt.pattern), "2006")
			_, payload, ok := extractor.Split(tt.line)
			if !ok {
				t.Fatal("Split() ok = false")
			}
			if payload != tt.wantPayload {
				t.Errorf("Split() payload = %q, want %q", payload, tt.wantPayload)
			}
		})
	}
}

func TestNewTimestampExtractor(t *testing.T) {
	pattern := regexp.MustCompile(`^(\d+)`)
	layout := "2006"
	extractor := NewTimestampExtractor(pattern, layout)

	if extractor == nil {
		t.Fatal("NewTimestampExtractor() returned nil")
	}
	if extractor.Layout() != layout {
		t.Errorf("Layout() = %q, want %q", extractor.Layout(), layout)
	}
	if extractor.Location() != time.UTC {
		t.Errorf("Location() = %v, want UTC", extractor.Location())
	}
}
