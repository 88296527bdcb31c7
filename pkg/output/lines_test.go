package output

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ccollicutt/logseek/pkg/parser"
)

func testLine() *parser.ParsedLine {
	return &parser.ParsedLine{
		Raw:       "[Fri Oct 25 18:58:06 2019] Stanvern says out of character, 'line 1'",
		Timestamp: time.Date(2019, 10, 25, 18, 58, 6, 0, time.UTC),
		Parsed:    true,
		Payload:   "Stanvern says out of character, 'line 1'",
		Offset:    42,
	}
}

func TestLineWriter_Text(t *testing.T) {
	var buf bytes.Buffer
	lw, err := NewLineWriter(&buf, "text")
	if err != nil {
		t.Fatalf("NewLineWriter() error = %v", err)
	}
	if err := lw.OnLine(context.Background(), testLine()); err != nil {
		t.Fatalf("OnLine() error = %v", err)
	}

	want := testLine().Raw + "\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestLineWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	lw, err := NewLineWriter(&buf, "json")
	if err != nil {
		t.Fatalf("NewLineWriter() error = %v", err)
	}
	if err := lw.OnLine(context.Background(), testLine()); err != nil {
		t.Fatalf("OnLine() error = %v", err)
	}

	var got lineRecord
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if got.Payload != testLine().Payload {
		t.Errorf("Payload = %q, want %q", got.Payload, testLine().Payload)
	}
	if !got.Timestamp.Equal(testLine().Timestamp) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, testLine().Timestamp)
	}
	if got.Offset != 42 {
		t.Errorf("Offset = %d, want 42", got.Offset)
	}
}

func TestLineWriter_UnknownFormat(t *testing.T) {
	if _, err := NewLineWriter(&bytes.Buffer{}, "xml"); err == nil {
		t.Error("NewLineWriter() expected error for unknown format")
	}
}
