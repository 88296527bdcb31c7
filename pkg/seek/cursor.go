package seek

import (
	"io"
)

// Cursor is a read position in a log file established by a Seeker. Reading
// forward yields every line in file order, parseable or not, starting at the
// seek result.
//
// A Cursor is not safe for concurrent use.
type Cursor struct {
	path  string
	file  io.ReadSeekCloser
	r     *lineReader
	start int64
	stats Stats
}

func newCursor(path string, file io.ReadSeekCloser, r *lineReader) *Cursor {
	return &Cursor{
		path:  path,
		file:  file,
		r:     r,
		start: r.off,
		stats: r.stats,
	}
}

// ReadLine returns the next line without its terminator, or io.EOF when the
// end of the file has been reached.
func (c *Cursor) ReadLine() (string, error) {
	line, err := c.r.readLine()
	if err != nil && err != io.EOF {
		return "", wrapReadErr(c.path, err)
	}
	return line, err
}

// Partial reports whether the line last returned by ReadLine ran to the end
// of the file without a newline, as a line still being written does.
func (c *Cursor) Partial() bool {
	return c.r.partial
}

// Offset returns the byte offset of the next unread line.
func (c *Cursor) Offset() int64 {
	return c.r.off
}

// Start returns the byte offset the seek settled on.
func (c *Cursor) Start() int64 {
	return c.start
}

// Restart rewinds the cursor to where the seek left it.
func (c *Cursor) Restart() error {
	if err := c.r.seekTo(c.start); err != nil {
		return wrapReadErr(c.path, err)
	}
	return nil
}

// Path returns the file the cursor reads from.
func (c *Cursor) Path() string {
	return c.path
}

// Stats reports the work the seek did to establish the cursor.
func (c *Cursor) Stats() Stats {
	return c.stats
}

// Close releases the underlying file.
func (c *Cursor) Close() error {
	return c.file.Close()
}
