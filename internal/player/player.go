package player

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Outcome is the result of presenting one candidate to the user.
type Outcome int

const (
	// OutcomeSkipped means the player vanished or stopped responding. It is
	// not a decision and must not be recorded.
	OutcomeSkipped Outcome = iota
	// OutcomePositive means the user stopped playback.
	OutcomePositive
	// OutcomeNegative means the user paused playback.
	OutcomeNegative
)

func (o Outcome) String() string {
	switch o {
	case OutcomePositive:
		return "positive"
	case OutcomeNegative:
		return "negative"
	default:
		return "skipped"
	}
}

// Options configures VLC launch and polling behavior.
type Options struct {
	// Binary is the player executable. Defaults to "vlc".
	Binary string
	// StartupTimeout bounds how long to wait for VLC to report the loaded
	// file before giving up on the candidate.
	StartupTimeout time.Duration
	// PollInterval is the delay between status requests.
	PollInterval time.Duration
	// Port pins the HTTP interface to a fixed port. Zero allocates a free
	// port per launch.
	Port int
	// Fullscreen passes --fullscreen to VLC.
	Fullscreen bool
	Logger     *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Binary == "" {
		o.Binary = "vlc"
	}
	if o.StartupTimeout <= 0 {
		o.StartupTimeout = 60 * time.Second
	}
	if o.PollInterval <= 0 {
		o.PollInterval = 100 * time.Millisecond
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o
}

// HTTPDoer describes the HTTP client used to poll the VLC status endpoint.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Status is the subset of VLC's status.json the session cares about.
type Status struct {
	State       string       `json:"state"`
	Information *Information `json:"information"`
	Position    float64      `json:"position"`
	Length      float64      `json:"length"`
}

// Information carries the metadata block of status.json.
type Information struct {
	Category Category `json:"category"`
}

// Category holds the meta group within the information block.
type Category struct {
	Meta Meta `json:"meta"`
}

// Meta names the currently loaded file.
type Meta struct {
	Filename string `json:"filename"`
}

// FileName returns the loaded file's name, or "" when VLC has not reported
// one yet.
func (s *Status) FileName() string {
	if s == nil || s.Information == nil {
		return ""
	}
	return s.Information.Category.Meta.Filename
}

// ErrFilenameMismatch indicates VLC is playing a different file than the
// session asked for.
var ErrFilenameMismatch = errors.New("player loaded an unexpected file")

// ErrStartupTimeout indicates VLC never reported a loaded file within the
// configured startup bound.
var ErrStartupTimeout = errors.New("player did not become ready in time")

// monitor polls one status endpoint. Split from the process handle so the
// poll loop is testable against a plain HTTP server.
type monitor struct {
	client       HTTPDoer
	statusURL    string
	expectedName string
	opts         Options
}

func (m *monitor) fetch(ctx context.Context) (*Status, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.statusURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build status request: %w", err)
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query player status: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read player status: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("player status returned %d", resp.StatusCode)
	}
	var status Status
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("decode player status: %w", err)
	}
	return &status, nil
}

// waitReady polls until VLC reports a loaded file, verifying the filename
// when one is expected. Status errors during startup are retried until the
// startup timeout elapses.
func (m *monitor) waitReady(ctx context.Context) error {
	deadline := time.Now().Add(m.opts.StartupTimeout)
	ticker := time.NewTicker(m.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: waited %s", ErrStartupTimeout, m.opts.StartupTimeout)
		}
		status, err := m.fetch(ctx)
		if err != nil {
			m.opts.Logger.Debug("player not ready yet", "error", err)
			continue
		}
		name := status.FileName()
		if name == "" {
			continue
		}
		if m.expectedName != "" && name != m.expectedName {
			return fmt.Errorf("%w: expected %q, got %q", ErrFilenameMismatch, m.expectedName, name)
		}
		return nil
	}
}

// await blocks until the user signals a decision through playback controls
// or the player stops responding.
func (m *monitor) await(ctx context.Context) (Outcome, error) {
	ticker := time.NewTicker(m.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return OutcomeSkipped, ctx.Err()
		case <-ticker.C:
		}
		status, err := m.fetch(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return OutcomeSkipped, ctxErr
			}
			// After a successful startup any failure means the user closed
			// the window or the player died. Treat it as a skip.
			m.opts.Logger.Debug("player went away", "error", err)
			return OutcomeSkipped, nil
		}
		switch status.State {
		case "stopped":
			return OutcomePositive, nil
		case "paused":
			return OutcomeNegative, nil
		}
	}
}

// Process is one VLC invocation presenting a single candidate.
type Process struct {
	cmd     *exec.Cmd
	monitor monitor
	logger  *slog.Logger
	done    bool
}

// Launch starts VLC playing path with the HTTP control interface bound to a
// free localhost port. Callers must Close the returned process.
func Launch(ctx context.Context, opts Options, path string) (*Process, error) {
	opts = opts.withDefaults()

	port := opts.Port
	if port <= 0 {
		var err error
		port, err = freePort()
		if err != nil {
			return nil, fmt.Errorf("allocate player port: %w", err)
		}
	}
	password := strings.ReplaceAll(uuid.NewString(), "-", "")

	args := []string{
		"-I", "http",
		"--no-random",
		"--no-loop",
		"--repeat",
		"--no-play-and-exit",
		"--http-host", "localhost",
		"--http-password", password,
		"--http-port", strconv.Itoa(port),
	}
	if opts.Fullscreen {
		args = append(args, "--fullscreen")
	}
	args = append(args, path)

	cmd := exec.CommandContext(ctx, opts.Binary, args...) //nolint:gosec
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start player: %w", err)
	}
	opts.Logger.Debug("player started", "pid", cmd.Process.Pid, "port", port, "path", path)

	return &Process{
		cmd: cmd,
		monitor: monitor{
			client:       &http.Client{Timeout: 2 * time.Second},
			statusURL:    fmt.Sprintf("http://:%s@localhost:%d/requests/status.json", password, port),
			expectedName: filepath.Base(path),
			opts:         opts,
		},
		logger: opts.Logger,
	}, nil
}

// freePort binds an ephemeral localhost port and releases it for VLC.
func freePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	port := l.Addr().(*net.TCPAddr).Port
	if err := l.Close(); err != nil {
		return 0, err
	}
	return port, nil
}

// WaitReady blocks until VLC reports the candidate file loaded.
func (p *Process) WaitReady(ctx context.Context) error {
	return p.monitor.waitReady(ctx)
}

// Await blocks until the user stops (Positive) or pauses (Negative) the
// player, or the player goes away (Skipped).
func (p *Process) Await(ctx context.Context) (Outcome, error) {
	return p.monitor.await(ctx)
}

// Close kills the player process and reaps it. Safe to call more than once.
func (p *Process) Close() error {
	if p == nil || p.cmd == nil || p.done {
		return nil
	}
	p.done = true
	if p.cmd.Process != nil {
		if err := p.cmd.Process.Kill(); err != nil {
			p.logger.Debug("player kill", "error", err)
		}
	}
	err := p.cmd.Wait()
	// Kill makes Wait report an exit error; that is the expected path.
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return fmt.Errorf("reap player: %w", err)
	}
	return nil
}
