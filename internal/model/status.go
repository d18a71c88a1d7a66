package model

import (
	"fmt"
	"strconv"
)

// StatusKind enumerates the forms an expected exit status can take.
type StatusKind int

// Available StatusKind values.
const (
	StatusSuccess StatusKind = iota
	StatusError
	StatusSignal
	StatusCode
)

// Status is the exit status a stage expects. Code is only meaningful when
// Kind is StatusCode.
type Status struct {
	Kind StatusKind
	Code int
}

// Success is the default expectation for every stage.
var Success = Status{Kind: StatusSuccess}

// ExitCode returns a Status expecting exactly code.
func ExitCode(code int) Status {
	return Status{Kind: StatusCode, Code: code}
}

// Matches reports whether the observed exit satisfies the expectation.
func (s Status) Matches(exit ExitStatus) bool {
	switch s.Kind {
	case StatusSuccess:
		return exit.Success()
	case StatusError:
		return !exit.Success()
	case StatusSignal:
		return exit.Signaled
	case StatusCode:
		return !exit.Signaled && exit.Code == s.Code
	default:
		return false
	}
}

func (s Status) String() string {
	switch s.Kind {
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	case StatusSignal:
		return "signal"
	case StatusCode:
		return strconv.Itoa(s.Code)
	default:
		return "unknown"
	}
}

// ExitStatus is what a child process actually ended with.
type ExitStatus struct {
	Code     int
	Signaled bool
	Signal   int
}

// Success reports a normal exit with code zero.
func (e ExitStatus) Success() bool {
	return !e.Signaled && e.Code == 0
}

func (e ExitStatus) String() string {
	if e.Signaled {
		return fmt.Sprintf("terminated by signal %d", e.Signal)
	}

	if e.Code == 0 {
		return "success"
	}

	return fmt.Sprintf("error (exit code %d)", e.Code)
}
