// Package filter selects log lines with expr-lang boolean expressions such as
//
//	Payload contains "tells you" && Timestamp.Hour() >= 20
package filter

import (
	"fmt"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ccollicutt/logseek/pkg/parser"
)

// Env is the set of names an expression can refer to.
type Env struct {
	Line      string    `expr:"Line"`
	Payload   string    `expr:"Payload"`
	Timestamp time.Time `expr:"Timestamp"`
	Parsed    bool      `expr:"Parsed"`
	Source    string    `expr:"Source"`
	LineNum   int       `expr:"LineNum"`
}

// Filter is a compiled expression. A nil *Filter matches every line.
type Filter struct {
	source  string
	program *vm.Program
}

// Compile checks src against Env and requires it to evaluate to a bool.
func Compile(src string) (*Filter, error) {
	program, err := expr.Compile(src, expr.Env(Env{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compiling filter %q: %w", src, err)
	}
	return &Filter{source: src, program: program}, nil
}

// Match reports whether line satisfies the expression.
func (f *Filter) Match(line *parser.ParsedLine) (bool, error) {
	if f == nil {
		return true, nil
	}

	out, err := expr.Run(f.program, Env{
		Line:      line.Raw,
		Payload:   line.Payload,
		Timestamp: line.Timestamp,
		Parsed:    line.Parsed,
		Source:    line.Source,
		LineNum:   line.LineNum,
	})
	if err != nil {
		return false, fmt.Errorf("evaluating filter %q: %w", f.source, err)
	}

	matched, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("filter %q returned %T, want bool", f.source, out)
	}
	return matched, nil
}

func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.source
}
