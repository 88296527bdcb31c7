package metrics

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ccollicutt/logseek/pkg/eqlog"
	"github.com/ccollicutt/logseek/pkg/reader"
	"github.com/ccollicutt/logseek/pkg/seek"
)

const testLog = `[Sat Jan 01 10:00:00 2022] Stanvern says out of character, 'one'
[Sat Jan 01 10:00:05 2022] Daox tells you, 'two'
[Sat Jan 01 10:00:10 2022] Stanvern says out of character, 'three'
`

func writeLog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "eqlog_Stanvern_P1999Green.txt")
	require.NoError(t, os.WriteFile(path, []byte(testLog), 0644))
	return path
}

func TestInstrument_CountsSeeks(t *testing.T) {
	c := New()
	extractor := eqlog.NewExtractor(time.UTC)
	s := c.Instrument(seek.NewSequential(writeLog(t), extractor), "linear")

	cur, err := s.Seek(time.Date(2022, 1, 1, 10, 0, 5, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, cur.Close())

	assert.Equal(t, 1.0, testutil.ToFloat64(c.SeeksTotal.WithLabelValues("linear", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.LinesScanned.WithLabelValues("linear")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.SeekDuration))
	assert.Equal(t, "Linear search", s.String())
}

func TestInstrument_CountsErrors(t *testing.T) {
	c := New()
	extractor := eqlog.NewExtractor(time.UTC)
	s := c.Instrument(seek.NewBlockJump(filepath.Join(t.TempDir(), "missing.txt"), extractor), "jump")

	_, err := s.Seek(seek.Beginning)
	require.ErrorIs(t, err, seek.ErrIO)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.SeeksTotal.WithLabelValues("jump", "error")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.SeeksTotal.WithLabelValues("jump", "ok")))
}

func TestListener_CountsEmittedLines(t *testing.T) {
	c := New()
	extractor := eqlog.NewExtractor(time.UTC)
	r := reader.New(seek.NewBlockJump(writeLog(t), extractor), extractor,
		reader.WithEnd(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)))
	r.AddListener(c.Listener())

	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.LinesEmitted))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	c := New()
	c.LinesEmitted.Add(7)

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "logseek_lines_emitted_total 7")
}

func TestServe_StopsOnCancel(t *testing.T) {
	c := New()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- c.Serve(ctx, "127.0.0.1:0", zap.NewNop()) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestServe_BadAddress(t *testing.T) {
	err := New().Serve(context.Background(), "not-an-address", zap.NewNop())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "listening"), "error = %v", err)
	assert.False(t, errors.Is(err, context.Canceled))
}
