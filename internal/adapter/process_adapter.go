package adapter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	m "langtest.dev/pkg/langtest/internal/model"
)

// ProcessSpec describes one child process run.
type ProcessSpec struct {
	Command m.Command

	// Stdin is written to the child and then closed. Nil closes stdin
	// straight away.
	Stdin *string

	// EchoStdout and EchoStderr, when set, receive a copy of the output as
	// it is produced.
	EchoStdout io.Writer
	EchoStderr io.Writer

	// OnSlow is called every WarnAfter while the child is still running.
	WarnAfter time.Duration
	OnSlow    func(elapsed time.Duration)

	// Timeout kills the child after the given duration. Zero never kills.
	Timeout time.Duration
}

// ProcessResult is everything observed about a finished child.
type ProcessResult struct {
	Exit           m.ExitStatus
	Stdout         []byte
	Stderr         []byte
	StdinRemaining int
	TimedOut       bool
	Duration       time.Duration
}

// PumpError reports a failure to spawn, feed or reap a child. It is never a
// test outcome.
type PumpError struct {
	Op      string
	Command string
	Err     error
}

func (e *PumpError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Command, e.Err)
}

func (e *PumpError) Unwrap() error {
	return e.Err
}

// ProcessAdapter runs child processes with all three standard streams
// redirected.
type ProcessAdapter interface {
	Run(ctx context.Context, spec ProcessSpec) (ProcessResult, error)
}

// LocalProcessAdapter runs children on the local machine.
type LocalProcessAdapter struct{}

// NewLocalProcessAdapter constructs a LocalProcessAdapter.
func NewLocalProcessAdapter() *LocalProcessAdapter {
	return &LocalProcessAdapter{}
}

// Run spawns the command, feeds stdin and drains stdout and stderr
// concurrently until all three streams are closed, then reaps the child.
// Cancelling ctx kills the child.
func (a *LocalProcessAdapter) Run(ctx context.Context, spec ProcessSpec) (ProcessResult, error) {
	name := describe(spec.Command)

	// #nosec G204 - commands come from the user's configuration
	cmd := exec.Command(spec.Command.Path, spec.Command.Args...)
	cmd.Dir = spec.Command.Dir
	cmd.Env = mergeEnv(os.Environ(), spec.Command.Env)
	ownProcessGroup(cmd)

	p, err := openPipes()
	if err != nil {
		return ProcessResult{}, &PumpError{Op: "pipe", Command: name, Err: err}
	}

	cmd.Stdin, cmd.Stdout, cmd.Stderr = p.childIn, p.childOut, p.childErr

	start := time.Now()

	if err := cmd.Start(); err != nil {
		p.closeChild()
		p.closeParent()

		return ProcessResult{}, &PumpError{Op: "spawn", Command: name, Err: err}
	}

	p.closeChild()
	slog.Debug("spawned child", "command", name, "pid", cmd.Process.Pid)

	wd := startWatchdog(ctx, cmd.Process, spec, start, p.expireReads)

	var (
		stdout, stderr bytes.Buffer
		written        int
		group          errgroup.Group
	)

	group.Go(func() error {
		n, err := feed(p.parentIn, spec.Stdin)
		written = n

		return err
	})
	group.Go(func() error {
		return drain(p.parentOut, &stdout, spec.EchoStdout)
	})
	group.Go(func() error {
		return drain(p.parentErr, &stderr, spec.EchoStderr)
	})

	ioErr := group.Wait()
	p.closeParent()

	exit, waitErr := waitExit(cmd.Process, wd)
	timedOut := wd.finish()
	_ = cmd.Process.Release()

	if ioErr != nil {
		return ProcessResult{}, &PumpError{Op: "stdio", Command: name, Err: ioErr}
	}

	if waitErr != nil {
		return ProcessResult{}, &PumpError{Op: "wait", Command: name, Err: waitErr}
	}

	remaining := 0
	if spec.Stdin != nil {
		remaining = len(*spec.Stdin) - written
	}

	res := ProcessResult{
		Exit:           exit,
		Stdout:         stdout.Bytes(),
		Stderr:         stderr.Bytes(),
		StdinRemaining: remaining,
		TimedOut:       timedOut,
		Duration:       time.Since(start),
	}

	slog.Debug("child finished", "command", name, "exit", exit.String(), "duration", res.Duration)

	return res, nil
}

// feed writes payload and closes w. A broken pipe means the child stopped
// reading; the caller sees it as unconsumed input rather than an error.
func feed(w *os.File, payload *string) (int, error) {
	defer func() { _ = w.Close() }()

	if payload == nil || *payload == "" {
		return 0, nil
	}

	n, err := io.WriteString(w, *payload)
	if err != nil {
		if isBrokenPipe(err) {
			return n, nil
		}

		return n, fmt.Errorf("write stdin: %w", err)
	}

	return n, nil
}

func drain(r *os.File, buf *bytes.Buffer, echo io.Writer) error {
	var dst io.Writer = buf
	if echo != nil {
		dst = io.MultiWriter(buf, quietWriter{echo})
	}

	if _, err := io.Copy(dst, r); err != nil {
		// Set after a kill: whatever still holds the pipe open is abandoned.
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return nil
		}

		return fmt.Errorf("read output: %w", err)
	}

	return nil
}

// quietWriter never fails so a broken console can't stop capture.
type quietWriter struct {
	w io.Writer
}

func (q quietWriter) Write(p []byte) (int, error) {
	_, _ = q.w.Write(p)
	return len(p), nil
}

type pipes struct {
	childIn, parentIn   *os.File
	parentOut, childOut *os.File
	parentErr, childErr *os.File
}

func openPipes() (*pipes, error) {
	p := &pipes{}

	var err error

	if p.childIn, p.parentIn, err = os.Pipe(); err != nil {
		return nil, err
	}

	if p.parentOut, p.childOut, err = os.Pipe(); err != nil {
		p.closeAll()
		return nil, err
	}

	if p.parentErr, p.childErr, err = os.Pipe(); err != nil {
		p.closeAll()
		return nil, err
	}

	return p, nil
}

func (p *pipes) closeChild() {
	closeFiles(p.childIn, p.childOut, p.childErr)
}

func (p *pipes) closeParent() {
	closeFiles(p.parentIn, p.parentOut, p.parentErr)
}

// expireReads stops the output drains once killGrace has passed. Pipes that
// can't take a deadline are left to reach EOF.
func (p *pipes) expireReads() {
	deadline := time.Now().Add(killGrace)

	for _, f := range []*os.File{p.parentOut, p.parentErr} {
		if err := f.SetReadDeadline(deadline); err != nil && !errors.Is(err, os.ErrNoDeadline) {
			slog.Debug("failed to set read deadline", "error", err)
		}
	}
}

func (p *pipes) closeAll() {
	p.closeChild()
	p.closeParent()
}

func closeFiles(files ...*os.File) {
	for _, f := range files {
		if f != nil {
			_ = f.Close()
		}
	}
}

// mergeEnv appends extra to base in key order; later entries win.
func mergeEnv(base []string, extra map[string]string) []string {
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	env := make([]string, 0, len(base)+len(keys))
	env = append(env, base...)

	for _, k := range keys {
		env = append(env, k+"="+extra[k])
	}

	return env
}

func describe(c m.Command) string {
	return strings.TrimSpace(c.Path + " " + strings.Join(c.Args, " "))
}

// killGrace is how long output is still collected after a kill.
const killGrace = 250 * time.Millisecond

// watchdog reports slow children and kills them on timeout or cancellation.
// Once the child is reaped it never signals it again.
type watchdog struct {
	mu       sync.Mutex
	reaped   bool
	timedOut bool
	stop     chan struct{}
	stopped  chan struct{}
	onKill   func()
}

func startWatchdog(ctx context.Context, proc *os.Process, spec ProcessSpec, start time.Time, onKill func()) *watchdog {
	w := &watchdog{stop: make(chan struct{}), stopped: make(chan struct{}), onKill: onKill}

	go func() {
		defer close(w.stopped)

		var warn <-chan time.Time

		if spec.WarnAfter > 0 && spec.OnSlow != nil {
			ticker := time.NewTicker(spec.WarnAfter)
			defer ticker.Stop()

			warn = ticker.C
		}

		var deadline <-chan time.Time

		if spec.Timeout > 0 {
			timer := time.NewTimer(spec.Timeout)
			defer timer.Stop()

			deadline = timer.C
		}

		done := ctx.Done()

		for {
			select {
			case <-w.stop:
				return
			case <-warn:
				spec.OnSlow(time.Since(start))
			case <-deadline:
				deadline = nil

				w.kill(proc, true)
			case <-done:
				done = nil

				w.kill(proc, false)
			}
		}
	}()

	return w
}

func (w *watchdog) kill(proc *os.Process, timeout bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.reaped {
		return
	}

	if timeout {
		w.timedOut = true
	}

	if err := killProcess(proc); err != nil {
		slog.Warn("failed to kill child", "pid", proc.Pid, "error", err)
	}

	if w.onKill != nil {
		w.onKill()
	}
}

// guard runs fn with signalling blocked and marks the child reaped if fn
// reports so.
func (w *watchdog) guard(fn func() bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if fn() {
		w.reaped = true
	}
}

func (w *watchdog) finish() bool {
	close(w.stop)
	<-w.stopped

	w.mu.Lock()
	defer w.mu.Unlock()

	return w.timedOut
}
