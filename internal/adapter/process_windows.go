//go:build windows

package adapter

import (
	"errors"
	"os"
	"os/exec"
	"syscall"

	m "langtest.dev/pkg/langtest/internal/model"
)

// SignalsSupported reports whether exit by signal can be observed.
const SignalsSupported = false

// errNoData is ERROR_NO_DATA, returned when writing to a pipe whose reader
// has gone away.
const errNoData = syscall.Errno(232)

// ShellCommand runs script through the platform shell in dir.
func ShellCommand(script, dir string) m.Command {
	return m.Command{Path: "cmd", Args: []string{"/C", script}, Dir: dir}
}

func ownProcessGroup(*exec.Cmd) {}

func killProcess(proc *os.Process) error {
	return proc.Kill()
}

func waitExit(proc *os.Process, w *watchdog) (m.ExitStatus, error) {
	state, err := proc.Wait()
	w.guard(func() bool { return err == nil })

	if err != nil {
		return m.ExitStatus{}, err
	}

	return m.ExitStatus{Code: state.ExitCode()}, nil
}

func isBrokenPipe(err error) bool {
	return errors.Is(err, syscall.ERROR_BROKEN_PIPE) || errors.Is(err, errNoData)
}
