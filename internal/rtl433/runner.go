// Package rtl433 runs the rtl_433 decoder as a child process and turns its
// JSON output into remote codes.
package rtl433

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/xlab/closer"
)

// ErrNotFound is returned when the rtl_433 executable can't be located.
var ErrNotFound = errors.New("rtl_433 executable not found")

// DefaultArgs disable all built-in protocols, switch output to JSON and add
// a decoder for EV1527 remotes.
var DefaultArgs = []string{
	"-R", "0",
	"-F", "json",
	"-X", "n=EV1527-Remote,m=OOK_PWM,s=369,l=1072,g=1400,r=12840,bits=25,repeats>=3,invert,unique",
}

type output struct {
	Data string `json:"data"`
}

// Runner owns the rtl_433 process.
type Runner struct {
	Path string
	Args []string
	Log  *log.Logger

	mu     sync.Mutex
	cmd    *exec.Cmd
	cancel context.CancelFunc
	done   chan struct{}
	hooked bool
}

// NewRunner creates a runner; empty args use DefaultArgs.
func NewRunner(path string, args []string, logger *log.Logger) *Runner {
	if len(args) == 0 {
		args = DefaultArgs
	}
	return &Runner{Path: path, Args: args, Log: logger}
}

// Start launches the process and calls onCode for every decoded remote
// code, in output order. The process is killed when ctx is done, on Close,
// and on application exit.
func (r *Runner) Start(ctx context.Context, onCode func(string)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cmd != nil {
		return nil
	}
	path, err := exec.LookPath(r.Path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNotFound, r.Path, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(ctx, path, r.Args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("rtl_433 stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("failed to start rtl_433: %w", err)
	}

	r.cmd, r.cancel, r.done = cmd, cancel, make(chan struct{})
	if !r.hooked {
		closer.Bind(func() { r.Close() })
		r.hooked = true
	}
	r.Log.Info("started", "pid", cmd.Process.Pid)

	go func(done chan struct{}) {
		defer close(done)
		Scan(stdout, r.Log, onCode)
		if err := cmd.Wait(); err != nil && ctx.Err() == nil {
			r.Log.Warn("rtl_433 exited", "err", err)
		}

		// An exit on its own leaves the runner ready for the next Start.
		r.mu.Lock()
		if r.cmd == cmd {
			r.cmd, r.cancel, r.done = nil, nil, nil
			cancel()
		}
		r.mu.Unlock()
	}(r.done)
	return nil
}

// running reports whether the process is alive.
func (r *Runner) running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done == nil {
		return false
	}
	select {
	case <-r.done:
		return false
	default:
		return true
	}
}

// Close kills the process and waits for the reader to finish.
func (r *Runner) Close() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cmd, r.cancel, r.done = nil, nil, nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	r.Log.Info("stopped")
}

// Scan reads newline-delimited JSON objects from rd and passes each
// non-empty "data" field to onCode. Lines that don't parse are skipped.
func Scan(rd io.Reader, logger *log.Logger, onCode func(string)) {
	sc := bufio.NewScanner(rd)
	for sc.Scan() {
		line := sc.Bytes()
		var out output
		if err := json.Unmarshal(line, &out); err != nil {
			logger.Debug("ignoring unparsable rtl_433 output", "line", string(line))
			continue
		}
		if out.Data == "" {
			logger.Debug("ignoring rtl_433 output without data", "line", string(line))
			continue
		}
		logger.Debug("received", "data", out.Data)
		onCode(out.Data)
	}
	if err := sc.Err(); err != nil {
		logger.Warn("reading rtl_433 output", "err", err)
	}
}
