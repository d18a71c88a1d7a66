//go:build unix

package adapter

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
	"time"

	m "langtest.dev/pkg/langtest/internal/model"
)

// SignalsSupported reports whether exit by signal can be observed.
const SignalsSupported = true

const (
	minBackoff = 50 * time.Microsecond
	maxBackoff = 50 * time.Millisecond
)

// ShellCommand runs script through the platform shell in dir.
func ShellCommand(script, dir string) m.Command {
	return m.Command{Path: "/bin/sh", Args: []string{"-c", script}, Dir: dir}
}

// ownProcessGroup puts the child in a new process group so a kill reaches
// everything it spawned.
func ownProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func killProcess(proc *os.Process) error {
	err := syscall.Kill(-proc.Pid, syscall.SIGKILL)
	if errors.Is(err, syscall.ESRCH) {
		return proc.Kill()
	}

	return err
}

// waitExit polls for the child's exit with an exponential backoff instead of
// parking a thread in a blocking wait.
func waitExit(proc *os.Process, w *watchdog) (m.ExitStatus, error) {
	delay := minBackoff

	for {
		var (
			ws  syscall.WaitStatus
			pid int
			err error
		)

		w.guard(func() bool {
			pid, err = syscall.Wait4(proc.Pid, &ws, syscall.WNOHANG, nil)
			return err == nil && pid == proc.Pid
		})

		switch {
		case errors.Is(err, syscall.EINTR):
			continue
		case err != nil:
			return m.ExitStatus{}, err
		case pid == proc.Pid:
			return exitStatus(ws), nil
		}

		time.Sleep(delay)

		delay = min(delay*2, maxBackoff)
	}
}

func exitStatus(ws syscall.WaitStatus) m.ExitStatus {
	if ws.Signaled() {
		return m.ExitStatus{Code: -1, Signaled: true, Signal: int(ws.Signal())}
	}

	return m.ExitStatus{Code: ws.ExitStatus()}
}

func isBrokenPipe(err error) bool {
	return errors.Is(err, syscall.EPIPE)
}
