//go:build !unix && !windows

package adapter

import (
	"os"
	"os/exec"

	m "langtest.dev/pkg/langtest/internal/model"
)

// SignalsSupported reports whether exit by signal can be observed.
const SignalsSupported = false

// ShellCommand runs script through the platform shell in dir.
func ShellCommand(script, dir string) m.Command {
	return m.Command{Path: "sh", Args: []string{"-c", script}, Dir: dir}
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

func isBrokenPipe(error) bool {
	return false
}
