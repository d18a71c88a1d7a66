// Package controller renders run progress and results to the console.
package controller

import (
	"context"
	"io"
	"time"

	m "langtest.dev/pkg/langtest/internal/model"
)

// RunInfo describes a run that is about to start.
type RunInfo struct {
	RunID       string
	Total       int
	Filtered    int
	Parallel    int
	IgnoredOnly bool
}

// UI defines how a run is reported. Implementations must be safe for
// concurrent use; every result line is written atomically.
type UI interface {
	Start(ctx context.Context, info RunInfo) error
	Close(ctx context.Context)
	DisplayResult(ctx context.Context, res m.FileResult)
	DisplaySlow(ctx context.Context, file m.TestFile, stage string, elapsed time.Duration)
	DisplayFailures(ctx context.Context, failures []m.FileResult)
	DisplaySummary(ctx context.Context, summary m.Summary)
	DisplayTestList(ctx context.Context, tests []m.TestListing)
	// Echo returns the writer child output is copied to when capture is
	// disabled.
	Echo(stream m.Stream) io.Writer
}

// NewUI returns the interactive TUI when asked for and out is a terminal,
// and the line oriented SimpleUI otherwise.
func NewUI(out, errOut io.Writer, interactive bool) UI {
	if interactive && IsTTY(out) {
		return NewTUI(out, errOut)
	}

	return NewSimpleUI(out, errOut)
}
