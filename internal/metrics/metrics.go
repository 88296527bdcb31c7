// Package metrics exposes Prometheus counters for seeks and emitted lines.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ccollicutt/logseek/pkg/parser"
	"github.com/ccollicutt/logseek/pkg/reader"
	"github.com/ccollicutt/logseek/pkg/seek"
)

// Collector holds the logseek metrics registered on one registry.
type Collector struct {
	registry *prometheus.Registry

	SeeksTotal   *prometheus.CounterVec
	SeekDuration *prometheus.HistogramVec
	LinesScanned *prometheus.CounterVec
	Jumps        *prometheus.CounterVec
	LinesEmitted prometheus.Counter
}

// New registers the logseek metrics on a fresh registry.
func New() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		SeeksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logseek_seeks_total",
				Help: "Seeks performed, by strategy and result",
			},
			[]string{"strategy", "result"},
		),
		SeekDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "logseek_seek_duration_seconds",
				Help:    "Time taken to position the cursor",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
			[]string{"strategy"},
		),
		LinesScanned: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logseek_seek_lines_read_total",
				Help: "Lines read while seeking",
			},
			[]string{"strategy"},
		),
		Jumps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logseek_seek_jumps_total",
				Help: "Block jumps taken while seeking",
			},
			[]string{"strategy"},
		),
		LinesEmitted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "logseek_lines_emitted_total",
				Help: "Lines delivered to output after filtering",
			},
		),
	}
}

// Registry returns the registry the collector's metrics live on.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Instrument wraps s so every Seek is counted and timed under strategy.
func (c *Collector) Instrument(s seek.Seeker, strategy string) seek.Seeker {
	return &instrumented{Seeker: s, strategy: strategy, c: c}
}

type instrumented struct {
	seek.Seeker
	strategy string
	c        *Collector
}

func (i *instrumented) Seek(target time.Time) (*seek.Cursor, error) {
	start := time.Now()
	cur, err := i.Seeker.Seek(target)
	i.c.SeekDuration.WithLabelValues(i.strategy).Observe(time.Since(start).Seconds())
	if err != nil {
		i.c.SeeksTotal.WithLabelValues(i.strategy, "error").Inc()
		return nil, err
	}
	i.c.SeeksTotal.WithLabelValues(i.strategy, "ok").Inc()

	stats := cur.Stats()
	i.c.LinesScanned.WithLabelValues(i.strategy).Add(float64(stats.LinesRead))
	i.c.Jumps.WithLabelValues(i.strategy).Add(float64(stats.Jumps))
	return cur, nil
}

// Listener counts every line the reader emits.
func (c *Collector) Listener() reader.Listener {
	return reader.ListenerFunc(func(_ context.Context, _ *parser.ParsedLine) error {
		c.LinesEmitted.Inc()
		return nil
	})
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (c *Collector) Serve(ctx context.Context, addr string, logger *zap.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("metrics server starting", zap.String("address", ln.Addr().String()))
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("stopping metrics server: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	}
}
