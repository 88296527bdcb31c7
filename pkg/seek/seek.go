// Package seek positions a reader inside a large, append-only, timestamp
// ordered log file at the earliest line whose timestamp is not before a
// requested instant.
//
// Two strategies implement Seeker: Sequential scans every line from the start
// of the file and is the reference behaviour, BlockJump skips ahead in fixed
// size byte blocks and only scans linearly inside the block that brackets the
// target. Both return a Cursor from which the caller reads forward.
package seek

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"go.uber.org/zap"
)

// Extractor pulls a timestamp out of a single log line. It returns false for
// blank, malformed or otherwise unrecognised lines and must not have side
// effects.
type Extractor interface {
	Extract(line string) (time.Time, bool)
}

// ExtractorFunc adapts a plain function to the Extractor interface.
type ExtractorFunc func(line string) (time.Time, bool)

// Extract calls f(line).
func (f ExtractorFunc) Extract(line string) (time.Time, bool) {
	return f(line)
}

// Seeker finds the first line at or after a target instant.
type Seeker interface {
	// Seek opens the file and returns a Cursor positioned at the first line
	// whose timestamp is not before target, or at end of file when there is
	// no such line. The caller owns the returned Cursor and must close it.
	Seek(target time.Time) (*Cursor, error)

	// String describes the strategy and its tuning parameters.
	String() string
}

// Sentinel seek targets.
var (
	// Beginning is earlier than any timestamp; seeking to it positions the
	// cursor at the first parseable line.
	Beginning = time.Unix(math.MinInt64, 0)

	// End is later than any timestamp; seeking to it positions the cursor at
	// end of file.
	End = time.Unix(math.MaxInt64-unixToInternal, 999999999)
)

// unixToInternal is the number of seconds between year 1 and 1970, which
// time.Unix adds to its argument.
const unixToInternal int64 = (1969*365 + 1969/4 - 1969/100 + 1969/400) * 24 * 60 * 60

var (
	// ErrIO marks failures to open or read the log file.
	ErrIO = errors.New("log i/o failure")

	// ErrMarkInvalid is returned when a restore point is rewound to after
	// more bytes were read than it was taken for. For BlockJump this means
	// the file violates the max line length contract.
	ErrMarkInvalid = errors.New("restore mark invalidated")
)

// Default tuning values.
const (
	// DefaultBlockSize trades jump count against the final linear scan.
	DefaultBlockSize = 1024 * 1024

	// DefaultMaxLineLength must be larger than the longest stretch from any
	// byte of the file to the end of the next parseable line.
	DefaultMaxLineLength = 4096
)

// OpenFunc opens the log file at path for reading.
type OpenFunc func(path string) (io.ReadSeekCloser, error)

type options struct {
	blockSize     int64
	maxLineLength int64
	open          OpenFunc
	logger        *zap.Logger
}

func defaultOptions() options {
	return options{
		blockSize:     DefaultBlockSize,
		maxLineLength: DefaultMaxLineLength,
		open:          openFile,
		logger:        zap.NewNop(),
	}
}

func openFile(path string) (io.ReadSeekCloser, error) {
	return os.Open(path) // #nosec G304 -- user-provided paths are expected
}

// Option configures a Seeker.
type Option func(*options)

// WithBlockSize sets the BlockJump stride in bytes. Values below 1 are
// ignored. Sequential ignores this option.
func WithBlockSize(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.blockSize = n
		}
	}
}

// WithMaxLineLength sets how many bytes BlockJump may read after a jump lands
// before it reaches the end of a parseable line. Values below 1 are ignored.
// Sequential ignores this option.
func WithMaxLineLength(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxLineLength = n
		}
	}
}

// WithOpener replaces os.Open as the way the log file is opened.
func WithOpener(open OpenFunc) Option {
	return func(o *options) {
		if open != nil {
			o.open = open
		}
	}
}

// WithLogger sets the logger used for debug tracing of the search.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Strategy names a Seeker implementation.
type Strategy string

const (
	StrategyLinear Strategy = "linear"
	StrategyJump   Strategy = "jump"
)

// New builds the Seeker for the named strategy.
func New(strategy Strategy, path string, extract Extractor, opts ...Option) (Seeker, error) {
	switch strategy {
	case StrategyLinear:
		return NewSequential(path, extract, opts...), nil
	case StrategyJump, "":
		return NewBlockJump(path, extract, opts...), nil
	default:
		return nil, fmt.Errorf("unknown seek strategy %q (use linear or jump)", strategy)
	}
}

// openReader opens path and wraps it in a lineReader. Errors are wrapped in ErrIO.
func (o *options) openReader(path string) (io.ReadSeekCloser, *lineReader, error) {
	f, err := o.open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: opening %s: %w", ErrIO, path, err)
	}
	r, err := newLineReader(f)
	if err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("%w: opening %s: %w", ErrIO, path, err)
	}
	return f, r, nil
}

// wrapReadErr tags read failures with ErrIO. ErrMarkInvalid is left as is.
func wrapReadErr(path string, err error) error {
	if errors.Is(err, ErrMarkInvalid) {
		return fmt.Errorf("seeking %s: %w", path, err)
	}
	return fmt.Errorf("%w: reading %s: %w", ErrIO, path, err)
}
