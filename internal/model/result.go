package model

import "time"

// Verdict is the terminal state of one test file.
type Verdict int

// Available Verdict values.
const (
	Passed Verdict = iota
	Failed
	Ignored
)

func (v Verdict) String() string {
	switch v {
	case Passed:
		return "ok"
	case Failed:
		return "FAILED"
	case Ignored:
		return "ignored"
	default:
		return "unknown"
	}
}

// StageResult is what one execution of a stage produced. Attempts counts
// reruns as well as the first run.
type StageResult struct {
	Stage          string
	Attempts       int
	Exit           ExitStatus
	Stdout         string
	Stderr         string
	StdinRemaining int
	TimedOut       bool
	Duration       time.Duration
}

// Mismatch describes a stream that did not satisfy its pattern. PatternLine
// and ActualLine are zero based; -1 means the side was exhausted.
type Mismatch struct {
	Expected    []string
	Actual      string
	PatternLine int
	ActualLine  int
}

// Failure carries only the checks that diverged. Note is used for failures
// that come from a callback rather than from a check.
type Failure struct {
	Stage          string
	Status         *string
	StdinRemaining *int
	Stderr         *Mismatch
	Stdout         *Mismatch
	Note           string
}

// Empty reports whether no check has been recorded.
func (f *Failure) Empty() bool {
	return f == nil || (f.Status == nil && f.StdinRemaining == nil && f.Stderr == nil && f.Stdout == nil && f.Note == "")
}

// FileResult is the outcome of one test file.
type FileResult struct {
	File     TestFile
	Verdict  Verdict
	Note     string
	Failure  *Failure
	Stages   []StageResult
	Duration time.Duration
}
