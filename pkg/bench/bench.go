// Package bench times seek strategies against one log file.
package bench

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/ccollicutt/logseek/pkg/seek"
)

// Target is a named seek target.
type Target struct {
	Label string    `json:"label"`
	Time  time.Time `json:"time"`
}

// DefaultTargets returns the start of the file and five minutes before now.
// The second is the usual case of catching up on a live log.
func DefaultTargets(now time.Time) []Target {
	return []Target{
		{Label: "start of file", Time: seek.Beginning},
		{Label: "5 minutes before now", Time: now.Add(-5 * time.Minute)},
	}
}

// Result is the timing of one strategy against one target.
type Result struct {
	Target      string        `json:"target"`
	Strategy    seek.Strategy `json:"strategy"`
	Description string        `json:"description"`
	BlockSize   int64         `json:"block_size,omitempty"`
	Duration    time.Duration `json:"duration_ns"`
	Offset      int64         `json:"offset"`
	Stats       seek.Stats    `json:"stats"`
	Error       string        `json:"error,omitempty"`
}

// Report holds every result of a benchmark run.
type Report struct {
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	Repeat  int       `json:"repeat"`
	Started time.Time `json:"started"`
	Results []Result  `json:"results"`
}

// ErrInconsistent is returned by Check when strategies disagree on where a
// target lies.
var ErrInconsistent = errors.New("strategies disagree")

// Check verifies that every successful result for a target landed on the
// same offset.
func (r *Report) Check() error {
	offsets := make(map[string]Result)
	for _, res := range r.Results {
		if res.Error != "" {
			continue
		}
		first, ok := offsets[res.Target]
		if !ok {
			offsets[res.Target] = res
			continue
		}
		if first.Offset != res.Offset {
			return fmt.Errorf("%w on %q: %s found offset %d, %s found offset %d",
				ErrInconsistent, res.Target, first.Description, first.Offset, res.Description, res.Offset)
		}
	}
	return nil
}

// Failed reports whether any seek returned an error.
func (r *Report) Failed() bool {
	for _, res := range r.Results {
		if res.Error != "" {
			return true
		}
	}
	return false
}

// Instrument wraps a seeker before it is timed.
type Instrument func(s seek.Seeker, strategy string) seek.Seeker

type options struct {
	targets       []Target
	blockSizes    []int64
	maxLineLength int64
	repeat        int
	instrument    Instrument
	logger        *zap.Logger
}

// Option configures Run.
type Option func(*options)

// WithTargets replaces the default targets.
func WithTargets(targets ...Target) Option {
	return func(o *options) {
		if len(targets) > 0 {
			o.targets = targets
		}
	}
}

// WithBlockSizes runs the jump strategy once per block size.
func WithBlockSizes(sizes ...int64) Option {
	return func(o *options) {
		if len(sizes) > 0 {
			o.blockSizes = sizes
		}
	}
}

// WithMaxLineLength sets the jump strategy's max line length.
func WithMaxLineLength(n int64) Option {
	return func(o *options) {
		o.maxLineLength = n
	}
}

// WithRepeat seeks n times per case and keeps the fastest time.
func WithRepeat(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.repeat = n
		}
	}
}

// WithInstrument wraps each seeker, e.g. to record metrics.
func WithInstrument(fn Instrument) Option {
	return func(o *options) {
		o.instrument = fn
	}
}

// WithLogger sets the logger for per-case progress.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Run times the linear strategy and the jump strategy at every block size for
// every target. A failed seek is recorded in its Result, not returned; Run
// only fails when the file cannot be inspected or ctx is cancelled.
func Run(ctx context.Context, path string, extract seek.Extractor, opts ...Option) (*Report, error) {
	o := options{
		targets:    DefaultTargets(time.Now()),
		blockSizes: []int64{seek.DefaultBlockSize},
		repeat:     1,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", seek.ErrIO, err)
	}

	report := &Report{
		Path:    path,
		Size:    info.Size(),
		Repeat:  o.repeat,
		Started: time.Now(),
	}

	for _, target := range o.targets {
		seekers := []seek.Seeker{seek.NewSequential(path, extract, seek.WithLogger(o.logger))}
		for _, size := range o.blockSizes {
			seekers = append(seekers, seek.NewBlockJump(path, extract,
				seek.WithBlockSize(size),
				seek.WithMaxLineLength(o.maxLineLength),
				seek.WithLogger(o.logger)))
		}

		for _, s := range seekers {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			report.Results = append(report.Results, o.measure(s, target))
		}
	}

	return report, nil
}

func (o *options) measure(s seek.Seeker, target Target) Result {
	res := Result{
		Target:      target.Label,
		Strategy:    seek.StrategyLinear,
		Description: s.String(),
	}
	if bj, ok := s.(*seek.BlockJump); ok {
		res.Strategy = seek.StrategyJump
		res.BlockSize = bj.BlockSize()
	}
	if o.instrument != nil {
		s = o.instrument(s, string(res.Strategy))
	}

	for i := 0; i < o.repeat; i++ {
		start := time.Now()
		cur, err := s.Seek(target.Time)
		elapsed := time.Since(start)
		if err != nil {
			res.Error = err.Error()
			o.logger.Warn("seek failed",
				zap.String("strategy", res.Description),
				zap.String("target", target.Label),
				zap.Error(err))
			return res
		}

		if i == 0 || elapsed < res.Duration {
			res.Duration = elapsed
		}
		res.Offset = cur.Start()
		res.Stats = cur.Stats()
		_ = cur.Close()
	}

	o.logger.Debug("benchmark case complete",
		zap.String("strategy", res.Description),
		zap.String("target", target.Label),
		zap.Duration("duration", res.Duration))
	return res
}
