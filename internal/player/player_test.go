package player

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func statusJSON(state, filename string) string {
	type payload struct {
		State       string `json:"state"`
		Information any    `json:"information,omitempty"`
		Position    float64 `json:"position"`
		Length      float64 `json:"length"`
	}
	p := payload{State: state, Position: 0.1, Length: 120}
	if filename != "" {
		p.Information = map[string]any{
			"category": map[string]any{
				"meta": map[string]any{"filename": filename},
			},
		}
	}
	b, _ := json.Marshal(p)
	return string(b)
}

func testMonitor(t *testing.T, url, expected string) *monitor {
	t.Helper()
	return &monitor{
		client:       http.DefaultClient,
		statusURL:    url,
		expectedName: expected,
		opts: Options{
			StartupTimeout: 2 * time.Second,
			PollInterval:   5 * time.Millisecond,
		}.withDefaults(),
	}
}

func TestStatusDecodesFilename(t *testing.T) {
	var status Status
	if err := json.Unmarshal([]byte(statusJSON("playing", "hero.mp4")), &status); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if status.State != "playing" {
		t.Fatalf("state = %q", status.State)
	}
	if status.FileName() != "hero.mp4" {
		t.Fatalf("filename = %q", status.FileName())
	}
}

func TestStatusWithoutInformationHasNoFilename(t *testing.T) {
	var status Status
	if err := json.Unmarshal([]byte(statusJSON("playing", "")), &status); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if status.FileName() != "" {
		t.Fatalf("expected empty filename, got %q", status.FileName())
	}
}

func TestWaitReadyVerifiesFilename(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// First poll has no metadata yet, mimicking startup.
		if calls.Add(1) == 1 {
			_, _ = w.Write([]byte(statusJSON("playing", "")))
			return
		}
		_, _ = w.Write([]byte(statusJSON("playing", "hero.mp4")))
	}))
	defer srv.Close()

	m := testMonitor(t, srv.URL, "hero.mp4")
	if err := m.waitReady(context.Background()); err != nil {
		t.Fatalf("waitReady: %v", err)
	}
	if calls.Load() < 2 {
		t.Fatal("expected the startup poll to retry")
	}
}

func TestWaitReadyRejectsWrongFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(statusJSON("playing", "other.mp4")))
	}))
	defer srv.Close()

	m := testMonitor(t, srv.URL, "hero.mp4")
	if err := m.waitReady(context.Background()); !errors.Is(err, ErrFilenameMismatch) {
		t.Fatalf("expected ErrFilenameMismatch, got %v", err)
	}
}

func TestWaitReadyTimesOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(statusJSON("playing", "")))
	}))
	defer srv.Close()

	m := testMonitor(t, srv.URL, "hero.mp4")
	m.opts.StartupTimeout = 30 * time.Millisecond
	if err := m.waitReady(context.Background()); !errors.Is(err, ErrStartupTimeout) {
		t.Fatalf("expected ErrStartupTimeout, got %v", err)
	}
}

func TestAwaitStoppedIsPositive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(statusJSON("stopped", "hero.mp4")))
	}))
	defer srv.Close()

	outcome, err := testMonitor(t, srv.URL, "").await(context.Background())
	if err != nil {
		t.Fatalf("await: %v", err)
	}
	if outcome != OutcomePositive {
		t.Fatalf("outcome = %v", outcome)
	}
}

func TestAwaitPausedIsNegative(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			_, _ = w.Write([]byte(statusJSON("playing", "hero.mp4")))
			return
		}
		_, _ = w.Write([]byte(statusJSON("paused", "hero.mp4")))
	}))
	defer srv.Close()

	outcome, err := testMonitor(t, srv.URL, "").await(context.Background())
	if err != nil {
		t.Fatalf("await: %v", err)
	}
	if outcome != OutcomeNegative {
		t.Fatalf("outcome = %v", outcome)
	}
}

func TestAwaitPlayerGoneIsSkipped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(statusJSON("playing", "hero.mp4")))
	}))
	srv.Close()

	outcome, err := testMonitor(t, srv.URL, "").await(context.Background())
	if err != nil {
		t.Fatalf("await: %v", err)
	}
	if outcome != OutcomeSkipped {
		t.Fatalf("outcome = %v", outcome)
	}
}

func TestAwaitHonorsCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(statusJSON("playing", "hero.mp4")))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := testMonitor(t, srv.URL, "").await(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}
