package seek

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const readBufferSize = 64 * 1024

// unbounded is the Mark limit for restore points that may be rewound to from
// any distance.
const unbounded = -1

// Mark is a restore point in a lineReader. A mark taken with a non-negative
// limit can only be restored while no more than limit bytes have been read
// past it.
type Mark struct {
	offset int64
	limit  int64
}

// Offset returns the byte offset the mark rewinds to.
func (m Mark) Offset() int64 {
	return m.offset
}

// Stats counts the work done by a seek.
type Stats struct {
	LinesRead    int64 `json:"lines_read"`
	BytesSkipped int64 `json:"bytes_skipped"`
	Jumps        int64 `json:"jumps"`
	Restores     int64 `json:"restores"`
}

// lineReader reads newline terminated lines while tracking the byte offset of
// the next unread byte, so that the position can be marked and restored.
type lineReader struct {
	src   io.ReadSeeker
	br    *bufio.Reader
	off   int64
	size  int64
	stats Stats

	// partial is set when the last line read ended at end of file without
	// a newline.
	partial bool
}

func newLineReader(src io.ReadSeeker) (*lineReader, error) {
	size, err := src.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("sizing file: %w", err)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewinding file: %w", err)
	}
	return &lineReader{
		src:  src,
		br:   bufio.NewReaderSize(src, readBufferSize),
		size: size,
	}, nil
}

// readLine returns the next line without its terminator. A final line with no
// trailing newline is still returned; io.EOF is only returned once nothing is
// left.
func (r *lineReader) readLine() (string, error) {
	raw, err := r.br.ReadString('\n')
	r.off += int64(len(raw))
	r.partial = false
	if err != nil {
		if err != io.EOF {
			return "", err
		}
		if raw == "" {
			return "", io.EOF
		}
		r.partial = true
	}
	r.stats.LinesRead++
	return trimEOL(raw), nil
}

func trimEOL(raw string) string {
	raw = strings.TrimSuffix(raw, "\n")
	return strings.TrimSuffix(raw, "\r")
}

// mark records the current offset. Pass unbounded for a mark that never
// expires.
func (r *lineReader) mark(limit int64) Mark {
	return Mark{offset: r.off, limit: limit}
}

// restore rewinds to m. It fails with ErrMarkInvalid if more than m's limit
// bytes were read since the mark was taken.
func (r *lineReader) restore(m Mark) error {
	if read := r.off - m.offset; m.limit >= 0 && read > m.limit {
		return fmt.Errorf("%w: read %d bytes past offset %d, limit is %d",
			ErrMarkInvalid, read, m.offset, m.limit)
	}
	r.stats.Restores++
	return r.seekTo(m.offset)
}

// skip advances the raw position by n bytes, stopping at the end of the file
// as it was sized when opened.
func (r *lineReader) skip(n int64) error {
	target := r.off + n
	if target > r.size {
		target = max(r.size, r.off)
	}
	delta := target - r.off
	r.stats.BytesSkipped += delta

	if delta <= int64(r.br.Buffered()) {
		discarded, err := r.br.Discard(int(delta))
		r.off += int64(discarded)
		return err
	}
	return r.seekTo(target)
}

func (r *lineReader) seekTo(off int64) error {
	if _, err := r.src.Seek(off, io.SeekStart); err != nil {
		return fmt.Errorf("seeking to offset %d: %w", off, err)
	}
	r.br.Reset(r.src)
	r.off = off
	return nil
}
