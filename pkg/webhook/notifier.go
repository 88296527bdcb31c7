package webhook

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ccollicutt/logseek/pkg/filter"
	"github.com/ccollicutt/logseek/pkg/parser"
)

// LineEvent is the JSON body posted for each line.
type LineEvent struct {
	Webhook   string    `json:"webhook,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   string    `json:"payload"`
	Line      string    `json:"line"`
	Source    string    `json:"source,omitempty"`
	Offset    int64     `json:"offset"`
}

// LineNotifier is a reader.Listener that posts each line it receives.
// Delivery failures are logged and counted but never stop the read.
type LineNotifier struct {
	client *Client
	name   string
	opts   SendOptions
	filter *filter.Filter
	logger *zap.Logger

	sent   atomic.Int64
	failed atomic.Int64
}

// NotifierOption configures a LineNotifier.
type NotifierOption func(*LineNotifier)

// WithFilter only posts lines f matches.
func WithFilter(f *filter.Filter) NotifierOption {
	return func(n *LineNotifier) {
		n.filter = f
	}
}

// WithLogger sets the logger delivery results are reported to.
func WithLogger(logger *zap.Logger) NotifierOption {
	return func(n *LineNotifier) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// NewLineNotifier returns a notifier posting lines through client.
func NewLineNotifier(client *Client, name string, opts SendOptions, options ...NotifierOption) *LineNotifier {
	n := &LineNotifier{
		client: client,
		name:   name,
		opts:   opts,
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		opt(n)
	}
	return n
}

// OnLine posts line unless the notifier's filter rejects it. Only a filter
// evaluation error is returned.
func (n *LineNotifier) OnLine(ctx context.Context, line *parser.ParsedLine) error {
	ok, err := n.filter.Match(line)
	if err != nil || !ok {
		return err
	}

	resp := n.client.Send(ctx, LineEvent{
		Webhook:   n.name,
		Timestamp: line.Timestamp,
		Payload:   line.Payload,
		Line:      line.Raw,
		Source:    line.Source,
		Offset:    line.Offset,
	}, n.opts)

	if !resp.Success() {
		n.failed.Add(1)
		n.logger.Warn("webhook delivery failed",
			zap.String("webhook", n.name),
			zap.Int("status", resp.StatusCode),
			zap.Error(resp.Error))
		return nil
	}
	n.sent.Add(1)
	n.logger.Debug("webhook delivered",
		zap.String("webhook", n.name),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", resp.Duration))
	return nil
}

// Sent returns how many lines were delivered.
func (n *LineNotifier) Sent() int64 {
	return n.sent.Load()
}

// Failed returns how many deliveries failed.
func (n *LineNotifier) Failed() int64 {
	return n.failed.Load()
}
