package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ccollicutt/logseek/pkg/bench"
	"github.com/ccollicutt/logseek/pkg/seek"
)

func newTestReport() *bench.Report {
	return &bench.Report{
		Path:    "eqlog_Stanvern_P1999Green.txt",
		Size:    4096,
		Repeat:  1,
		Started: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		Results: []bench.Result{
			{
				Target:      "start of file",
				Strategy:    seek.StrategyLinear,
				Description: "Linear search",
				Duration:    time.Millisecond,
				Offset:      0,
			},
			{
				Target:      "start of file",
				Strategy:    seek.StrategyJump,
				Description: "Jump search with blockSize=1048576 maxLineLength=4096",
				BlockSize:   1048576,
				Duration:    time.Millisecond,
				Offset:      0,
			},
		},
	}
}

func TestClient_Send_Success(t *testing.T) {
	var receivedBody []byte
	var receivedContentType string
	var receivedAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedContentType = r.Header.Get("Content-Type")
		receivedAuth = r.Header.Get("Authorization")
		receivedBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	resp := NewClient().Send(context.Background(), newTestReport(), SendOptions{
		URL: server.URL,
	})

	if !resp.Success() {
		t.Errorf("expected success, got error: %v", resp.Error)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
	if resp.Body != `{"status":"ok"}` {
		t.Errorf("unexpected body: %s", resp.Body)
	}
	if receivedContentType != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", receivedContentType)
	}
	if receivedAuth != "" {
		t.Errorf("expected no auth header, got %s", receivedAuth)
	}

	var payload bench.Report
	if err := json.Unmarshal(receivedBody, &payload); err != nil {
		t.Fatalf("failed to parse received payload: %v", err)
	}
	if len(payload.Results) != 2 || payload.Path != "eqlog_Stanvern_P1999Green.txt" {
		t.Errorf("payload = %+v, want the report", payload)
	}
}

func TestClient_Send_WithBearerToken(t *testing.T) {
	var receivedAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	resp := NewClient().Send(context.Background(), newTestReport(), SendOptions{
		URL:   server.URL,
		Token: "secret-token-123",
	})

	if !resp.Success() {
		t.Errorf("expected success, got error: %v", resp.Error)
	}
	if receivedAuth != "Bearer secret-token-123" {
		t.Errorf("expected Bearer token, got %s", receivedAuth)
	}
}

func TestClient_Send_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal error"}`))
	}))
	defer server.Close()

	resp := NewClient().Send(context.Background(), newTestReport(), SendOptions{
		URL: server.URL,
	})

	if resp.Success() {
		t.Error("expected failure, got success")
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", resp.StatusCode)
	}
	if resp.Error == nil {
		t.Error("expected error to be set")
	}
}

func TestClient_Send_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	resp := NewClient().Send(context.Background(), newTestReport(), SendOptions{
		URL:     server.URL,
		Timeout: 50 * time.Millisecond,
	})

	if resp.Success() {
		t.Error("expected failure due to timeout")
	}
	if resp.Error == nil {
		t.Error("expected error to be set")
	}
}

func TestClient_Send_Unencodable(t *testing.T) {
	resp := NewClient().Send(context.Background(), make(chan int), SendOptions{
		URL: "http://127.0.0.1:1",
	})
	if resp.Success() || resp.Error == nil {
		t.Errorf("expected marshal failure, got %+v", resp)
	}
}

func TestClient_Send_InvalidURL(t *testing.T) {
	resp := NewClient().Send(context.Background(), newTestReport(), SendOptions{
		URL: "://invalid-url",
	})

	if resp.Success() {
		t.Error("expected failure for invalid URL")
	}
	if resp.Error == nil {
		t.Error("expected error to be set")
	}
}

func TestClient_Send_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	resp := NewClient().Send(context.Background(), newTestReport(), SendOptions{
		URL:     url,
		Timeout: time.Second,
	})

	if resp.Success() {
		t.Error("expected failure for connection refused")
	}
	if resp.Error == nil {
		t.Error("expected error to be set")
	}
}

func TestResponse_Success(t *testing.T) {
	tests := []struct {
		name        string
		resp        Response
		wantSuccess bool
	}{
		{"200 OK", Response{StatusCode: 200}, true},
		{"201 Created", Response{StatusCode: 201}, true},
		{"204 No Content", Response{StatusCode: 204}, true},
		{"400 Bad Request", Response{StatusCode: 400}, false},
		{"500 Server Error", Response{StatusCode: 500}, false},
		{"With Error", Response{StatusCode: 200, Error: io.EOF}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.resp.Success(); got != tt.wantSuccess {
				t.Errorf("Success() = %v, want %v", got, tt.wantSuccess)
			}
		})
	}
}
