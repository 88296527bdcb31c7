package parser

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/nxadm/tail"
	"go.uber.org/zap"
)

// TailOptions controls how a TailSource follows its file.
type TailOptions struct {
	// Offset is the byte offset to start reading from.
	Offset int64

	// Poll uses polling instead of inotify to detect changes.
	Poll bool

	// ReOpen reopens the file when it is recreated, following rotation.
	ReOpen bool

	// Logger receives tail diagnostics. Nil discards them.
	Logger *zap.Logger
}

// TailSource implements LogSource for a file that keeps growing. Next blocks
// until a new line is appended or the context is cancelled; it never returns
// io.EOF until the source is closed. A line is only returned once its
// newline has been written.
type TailSource struct {
	path     string
	splitter Splitter
	tail     *tail.Tail
	lineNum  int
}

// NewTailSource starts following path from opts.Offset.
func NewTailSource(path string, splitter Splitter, opts TailOptions) (*TailSource, error) {
	cfg := tail.Config{
		Location:  &tail.SeekInfo{Offset: opts.Offset, Whence: io.SeekStart},
		Follow:    true,
		ReOpen:    opts.ReOpen,
		MustExist: true,
		Poll:      opts.Poll,
		Logger:    tail.DiscardingLogger,
		// Hold back a line until its newline is written.
		CompleteLines: true,
	}
	if opts.Logger != nil {
		cfg.Logger = zap.NewStdLog(opts.Logger.Named("tail"))
	}

	t, err := tail.TailFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("following %s: %w", path, err)
	}

	return &TailSource{
		path:     path,
		splitter: splitter,
		tail:     t,
	}, nil
}

// Next returns the next line appended to the file.
func (s *TailSource) Next(ctx context.Context) (*ParsedLine, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case line, ok := <-s.tail.Lines:
		if !ok {
			if err := s.tail.Err(); err != nil {
				return nil, fmt.Errorf("following %s: %w", s.path, err)
			}
			return nil, io.EOF
		}
		if line.Err != nil {
			return nil, fmt.Errorf("following %s: %w", s.path, line.Err)
		}
		s.lineNum++
		text := strings.TrimSuffix(line.Text, "\r")
		return newParsedLine(s.splitter, text, s.path, s.lineNum, -1), nil
	}
}

// Close stops following the file.
func (s *TailSource) Close() error {
	err := s.tail.Stop()
	s.tail.Cleanup()
	return err
}
