// Package reader runs the read loop around a seek: it positions a cursor at a
// start time once, then reads forward and hands each timestamped line to a
// set of listeners until an end time, optionally following the file as it
// grows.
package reader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/ccollicutt/logseek/pkg/filter"
	"github.com/ccollicutt/logseek/pkg/parser"
	"github.com/ccollicutt/logseek/pkg/seek"
)

// Listener receives every timestamped line the reader dispatches.
type Listener interface {
	OnLine(ctx context.Context, line *parser.ParsedLine) error
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(ctx context.Context, line *parser.ParsedLine) error

// OnLine calls f(ctx, line).
func (f ListenerFunc) OnLine(ctx context.Context, line *parser.ParsedLine) error {
	return f(ctx, line)
}

// Extractor is what the reader needs to both seek and split lines.
type Extractor interface {
	seek.Extractor
	parser.Splitter
}

// FollowFunc opens a source that continues reading path from offset once the
// cursor reaches the end of the file.
type FollowFunc func(path string, offset int64) (parser.LogSource, error)

// Reader reads a log from Start to End and dispatches lines to listeners.
type Reader struct {
	seeker    seek.Seeker
	extractor Extractor
	start     time.Time
	end       time.Time
	filter    *filter.Filter
	follow    FollowFunc
	logger    *zap.Logger
	listeners []Listener
}

// Option configures a Reader.
type Option func(*Reader)

// WithStart sets the first instant to read from. Defaults to seek.Beginning.
func WithStart(start time.Time) Option {
	return func(r *Reader) {
		r.start = start
	}
}

// WithEnd sets the last instant to dispatch. A line stamped after end stops
// the reader. seek.End keeps reading after end of file, following the file.
// Defaults to time.Now at the moment Run is called.
func WithEnd(end time.Time) Option {
	return func(r *Reader) {
		r.end = end
	}
}

// WithFilter drops lines the filter does not match.
func WithFilter(f *filter.Filter) Option {
	return func(r *Reader) {
		r.filter = f
	}
}

// WithFollow replaces how the file is followed past end of file.
func WithFollow(follow FollowFunc) Option {
	return func(r *Reader) {
		if follow != nil {
			r.follow = follow
		}
	}
}

// WithLogger sets the reader's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Reader) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a Reader that seeks with seeker and splits lines with extractor.
func New(seeker seek.Seeker, extractor Extractor, opts ...Option) *Reader {
	r := &Reader{
		seeker:    seeker,
		extractor: extractor,
		start:     seek.Beginning,
		logger:    zap.NewNop(),
	}
	r.follow = r.tailFrom
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AddListener registers a listener. Listeners are called in the order added.
func (r *Reader) AddListener(l Listener) {
	r.listeners = append(r.listeners, l)
}

// Following reports whether Run keeps reading past end of file.
func (r *Reader) Following() bool {
	return r.end.Equal(seek.End)
}

// Run seeks once and then reads until a line after the end time, the end of
// the file, or, when following, until ctx is cancelled. Lines without a
// timestamp are not dispatched.
func (r *Reader) Run(ctx context.Context) error {
	end := r.end
	if end.IsZero() {
		end = time.Now()
	}

	cursor, err := r.seeker.Seek(r.start)
	if err != nil {
		return fmt.Errorf("seeking to %s: %w", formatTarget(r.start), err)
	}
	r.logger.Debug("seek complete",
		zap.String("strategy", r.seeker.String()),
		zap.String("path", cursor.Path()),
		zap.Int64("offset", cursor.Start()),
		zap.Int64("lines_read", cursor.Stats().LinesRead),
		zap.Int64("jumps", cursor.Stats().Jumps))

	path := cursor.Path()
	var source parser.LogSource = parser.NewCursorSource(cursor, r.extractor)
	defer func() { _ = source.Close() }()

	following := end.Equal(seek.End)
	startFollowing := func(offset int64) error {
		follow, err := r.follow(path, offset)
		if err != nil {
			return err
		}
		_ = source.Close()
		source = follow
		r.logger.Info("reached end of file, following", zap.String("path", path), zap.Int64("offset", offset))
		return nil
	}

	for {
		line, err := source.Next(ctx)
		if errors.Is(err, io.EOF) {
			if !following {
				return nil
			}
			cs, ok := source.(*parser.CursorSource)
			if !ok {
				return nil
			}
			if err := startFollowing(cs.Offset()); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}

		// An unterminated last line may still be being written. Tail it
		// from its start so it is read once complete.
		if following {
			if cs, ok := source.(*parser.CursorSource); ok && cs.Partial() {
				if err := startFollowing(line.Offset); err != nil {
					return err
				}
				continue
			}
		}

		if !line.Parsed {
			continue
		}
		if line.Timestamp.After(end) {
			return nil
		}
		if ok, err := r.filter.Match(line); err != nil {
			return err
		} else if !ok {
			continue
		}

		for _, l := range r.listeners {
			if err := l.OnLine(ctx, line); err != nil {
				return err
			}
		}
	}
}

func (r *Reader) tailFrom(path string, offset int64) (parser.LogSource, error) {
	return parser.NewTailSource(path, r.extractor, parser.TailOptions{
		Offset: offset,
		ReOpen: true,
		Logger: r.logger,
	})
}

func formatTarget(t time.Time) string {
	switch {
	case t.Equal(seek.Beginning):
		return "start of file"
	case t.Equal(seek.End):
		return "end of file"
	default:
		return t.Format(time.RFC3339)
	}
}
