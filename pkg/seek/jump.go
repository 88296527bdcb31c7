package seek

import (
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
)

// BlockJump finds the target by jumping forward blockSize bytes at a time and
// sampling the first parseable line after each jump. Once a sample is at or
// after the target, or the file runs out, it rewinds to the start of that
// block and scans linearly.
//
// Sampling may read past any number of unparseable lines. Rewinding is only
// valid while the bytes read after the jump lands stay within maxLineLength.
// Those bytes are the rest of the line the jump lands in, any unparseable
// lines after it, and the next parseable line, so maxLineLength must exceed
// the longest stretch from any byte of the file to the end of the next
// parseable line. Files that break this fail with ErrMarkInvalid.
type BlockJump struct {
	path    string
	extract Extractor
	opts    options
}

// NewBlockJump creates a jump-search Seeker over the file at path.
func NewBlockJump(path string, extract Extractor, opts ...Option) *BlockJump {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &BlockJump{path: path, extract: extract, opts: o}
}

// BlockSize returns the jump stride in bytes.
func (b *BlockJump) BlockSize() int64 {
	return b.opts.blockSize
}

// Seek implements Seeker.
func (b *BlockJump) Seek(target time.Time) (*Cursor, error) {
	f, r, err := b.opts.openReader(b.path)
	if err != nil {
		return nil, err
	}
	if err := b.search(r, target); err != nil {
		_ = f.Close()
		return nil, wrapReadErr(b.path, err)
	}
	return newCursor(b.path, f, r), nil
}

// String implements Seeker.
func (b *BlockJump) String() string {
	return fmt.Sprintf("Jump search with blockSize=%d maxLineLength=%d",
		b.opts.blockSize, b.opts.maxLineLength)
}

func (b *BlockJump) search(r *lineReader, target time.Time) error {
	logger := b.opts.logger

	for {
		origin := r.mark(unbounded)
		if _, err := r.readLine(); err != nil {
			if err == io.EOF {
				logger.Debug("reached end of file", zap.Int64("offset", r.off))
				return nil
			}
			return err
		}
		// The line at the origin is read in full, so only the jump and the
		// sample count against the limit.
		origin.limit = r.off - origin.offset + b.opts.blockSize + b.opts.maxLineLength

		if err := r.skip(b.opts.blockSize); err != nil {
			return err
		}
		// Drop the rest of the line the jump landed in.
		if _, err := r.readLine(); err != nil && err != io.EOF {
			return err
		}

		sample, found, err := b.nextTimestamp(r)
		if err != nil {
			return err
		}

		if !found || !target.After(sample) {
			logger.Debug("target is in jump range, scanning linearly",
				zap.Int64("from", origin.Offset()),
				zap.Int64("to", r.off),
				zap.Bool("eof", !found))
			if err := r.restore(origin); err != nil {
				return err
			}
			return scan(r, b.extract, target, logger)
		}

		r.stats.Jumps++
		logger.Debug("jumping past block",
			zap.Int64("offset", r.off),
			zap.Time("sample", sample))
	}
}

// nextTimestamp reads until a line yields a timestamp. found is false at end
// of file.
func (b *BlockJump) nextTimestamp(r *lineReader) (ts time.Time, found bool, err error) {
	for {
		line, err := r.readLine()
		if err == io.EOF {
			return time.Time{}, false, nil
		}
		if err != nil {
			return time.Time{}, false, err
		}
		if ts, ok := b.extract.Extract(line); ok {
			return ts, true, nil
		}
	}
}
