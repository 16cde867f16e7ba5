package executil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/shllg/mcp-agents/internal/protocol"
)

// waitDelay bounds how long Wait keeps draining pipes after the child is killed.
const waitDelay = 2 * time.Second

var (
	// ErrEmptyCommand is returned when no command is given.
	ErrEmptyCommand = errors.New("command is empty")
	// ErrTimeout classifies invocations killed at their deadline.
	ErrTimeout = errors.New("command timed out")
	// ErrOutputLimit classifies invocations whose output exceeded the cap.
	ErrOutputLimit = errors.New("output limit exceeded")
)

// StartError reports a command that could not be spawned.
type StartError struct {
	// Command is the executable name.
	Command string
	// Err is the underlying spawn error.
	Err error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("failed to start %q: %v", e.Command, e.Err)
}

func (e *StartError) Unwrap() error { return e.Err }

// ExitError reports a command that exited with a non-zero status.
type ExitError struct {
	// Command is the executable name.
	Command string
	// Code is the exit status, -1 when killed by a signal.
	Code int
	// Stderr is the trimmed standard error text.
	Stderr string
	// Err is the underlying wait error.
	Err error
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Command, e.Code)
	if e.Code < 0 && e.Err != nil {
		msg = fmt.Sprintf("%s failed: %v", e.Command, e.Err)
	}
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *ExitError) Unwrap() error { return e.Err }

// Options controls a single invocation.
type Options struct {
	// Timeout is the wall-clock limit; zero means protocol.DefaultTimeout.
	Timeout time.Duration
	// MaxOutputBytes caps stdout and stderr combined; zero means protocol.DefaultMaxOutputBytes.
	MaxOutputBytes int64
	// Env adds KEY=VALUE entries after the inherited environment.
	Env []string
}

// Run spawns command with args, waits for it and returns its output.
// Arguments go straight to the process; no shell is involved.
func Run(ctx context.Context, command string, args []string, opts Options) (string, error) {
	if strings.TrimSpace(command) == "" {
		return "", ErrEmptyCommand
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = protocol.DefaultTimeout
	}
	limit := opts.MaxOutputBytes
	if limit <= 0 {
		limit = protocol.DefaultMaxOutputBytes
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, command, args...)
	cmd.Env = Environ(opts.Env)
	cmd.WaitDelay = waitDelay
	// Stdin stays nil: the child reads from the null device and sees EOF at once.

	out := &capture{limit: limit, onExceed: cancel}
	cmd.Stdout = out.stream(&out.stdout)
	cmd.Stderr = out.stream(&out.stderr)

	if err := cmd.Start(); err != nil {
		return "", &StartError{Command: command, Err: err}
	}
	waitErr := cmd.Wait()

	stdout, stderr, exceeded := out.result()
	switch {
	case exceeded:
		return "", fmt.Errorf("%s: %w (%d bytes)", command, ErrOutputLimit, limit)
	case timedOut(waitErr, runCtx.Err()):
		return "", fmt.Errorf("%s: %w after %s", command, ErrTimeout, timeout)
	case waitErr != nil:
		code := -1
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			code = exitErr.ExitCode()
		}
		return "", &ExitError{Command: command, Code: code, Stderr: trimTrailing(stderr), Err: waitErr}
	}

	if text := trimTrailing(stdout); text != "" {
		return text, nil
	}
	return trimTrailing(stderr), nil
}

// timedOut reports whether the child was stopped by the deadline. A child that
// exited cleanly before the deadline was observed did not time out.
func timedOut(waitErr, ctxErr error) bool {
	return waitErr != nil && errors.Is(ctxErr, context.DeadlineExceeded)
}

// Environ returns the parent environment with color output disabled plus extra.
func Environ(extra []string) []string {
	env := os.Environ()
	env = append(env, "NO_COLOR=1", "FORCE_COLOR=0", "TERM=dumb")
	return append(env, extra...)
}

func trimTrailing(b []byte) string {
	return strings.TrimRight(string(b), " \t\r\n")
}

// capture collects stdout and stderr under one shared byte budget.
type capture struct {
	mu       sync.Mutex
	stdout   bytes.Buffer
	stderr   bytes.Buffer
	total    int64
	limit    int64
	exceeded bool
	onExceed func()
}

func (c *capture) stream(buf *bytes.Buffer) *captureWriter {
	return &captureWriter{c: c, buf: buf}
}

func (c *capture) result() ([]byte, []byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stdout.Bytes(), c.stderr.Bytes(), c.exceeded
}

type captureWriter struct {
	c   *capture
	buf *bytes.Buffer
}

// Write keeps accepting data after the cap so the child never blocks on a full pipe
// while it is being killed.
func (w *captureWriter) Write(p []byte) (int, error) {
	c := w.c
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.exceeded {
		return len(p), nil
	}
	room := c.limit - c.total
	if int64(len(p)) > room {
		c.exceeded = true
		if c.onExceed != nil {
			c.onExceed()
		}
		return len(p), nil
	}
	w.buf.Write(p)
	c.total += int64(len(p))
	return len(p), nil
}
