package seek

import (
	"io"
	"time"

	"go.uber.org/zap"
)

// Sequential finds the target by reading every line from the start of the
// file. It is the reference every other strategy must agree with.
type Sequential struct {
	path    string
	extract Extractor
	opts    options
}

// NewSequential creates a linear-scan Seeker over the file at path.
func NewSequential(path string, extract Extractor, opts ...Option) *Sequential {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Sequential{path: path, extract: extract, opts: o}
}

// Seek implements Seeker.
func (s *Sequential) Seek(target time.Time) (*Cursor, error) {
	f, r, err := s.opts.openReader(s.path)
	if err != nil {
		return nil, err
	}
	if err := scan(r, s.extract, target, s.opts.logger); err != nil {
		_ = f.Close()
		return nil, wrapReadErr(s.path, err)
	}
	return newCursor(s.path, f, r), nil
}

// String implements Seeker.
func (s *Sequential) String() string {
	return "Linear search"
}

// scan reads forward from the current position until it finds a line whose
// timestamp is not before target, then rewinds so that line is the next one
// read. Lines without a timestamp are passed over. At end of file the reader
// is left at end of file.
func scan(r *lineReader, extract Extractor, target time.Time, logger *zap.Logger) error {
	for {
		m := r.mark(unbounded)
		line, err := r.readLine()
		if err == io.EOF {
			logger.Debug("reached end of file without a match", zap.Int64("offset", r.off))
			return nil
		}
		if err != nil {
			return err
		}

		ts, ok := extract.Extract(line)
		if !ok {
			continue
		}
		if !target.After(ts) {
			logger.Debug("found first line at or after target",
				zap.Int64("offset", m.Offset()),
				zap.Time("timestamp", ts))
			return r.restore(m)
		}
	}
}
