// Package langtest embeds the test harness in Go programs. A Tester is told
// where tests live, how to pull the test text out of a file and which
// commands make up the pipeline; Run does the rest and prints cargo test
// style output.
package langtest

import (
	"context"
	"io"
	"os"
	"time"

	"langtest.dev/pkg/langtest/internal/adapter"
	"langtest.dev/pkg/langtest/internal/controller"
	"langtest.dev/pkg/langtest/internal/domain"
	"langtest.dev/pkg/langtest/internal/fuzzy"
	m "langtest.dev/pkg/langtest/internal/model"
)

// Re-exported types so callers never import internal packages.
type (
	Command      = m.Command
	StageCommand = m.StageCommand
	Stream       = m.Stream
	Summary      = m.Summary
	MatchOptions = fuzzy.Options
	NameMatcher  = fuzzy.NameMatcher
)

// Streams.
const (
	Stdout = m.Stdout
	Stderr = m.Stderr
)

// Tester describes a suite. TestDir, Extract and Commands are required.
type Tester struct {
	TestDir string

	// Filter selects test files among everything under TestDir. Nil keeps
	// every regular file.
	Filter func(path string) bool
	// Extract returns the test text of a file; an empty string ignores it.
	Extract func(path string) (string, error)
	// Commands returns the ordered stage commands for a file.
	Commands func(path string) ([]StageCommand, error)
	// MatchOptions, when set, picks matcher options per file and stream.
	// The returned value replaces the defaults outright: a zero MatchOptions
	// compares leading whitespace, so start from DefaultMatchOptions and
	// change only what differs.
	MatchOptions func(path string, stream Stream) MatchOptions

	CommentPrefix string
	Parallel      int
	RerunAtMost   int
	IgnoredOnly   bool
	NoCapture     bool
	Filters       []string

	WarnAfter time.Duration
	Timeout   time.Duration

	// Output defaults to os.Stdout and os.Stderr.
	Stdout io.Writer
	Stderr io.Writer
}

// New returns a Tester for the tests under dir.
func New(dir string) *Tester {
	return &Tester{TestDir: dir, WarnAfter: domain.DefaultWarnAfter}
}

// Run runs the suite. The error is only set for problems that stopped the
// run; failing tests are reported through Summary.OK.
func (t *Tester) Run(ctx context.Context) (Summary, error) {
	stdout, stderr := t.Stdout, t.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}

	if stderr == nil {
		stderr = os.Stderr
	}

	ui := controller.NewSimpleUI(stdout, stderr)
	wf := domain.NewWorkflow(
		adapter.NewLocalSourceFSAdapter(),
		adapter.NewYAMLReportStore(),
		adapter.NewLocalProcessAdapter(),
		ui,
	)

	return wf.Run(ctx, t.config())
}

func (t *Tester) config() domain.Config {
	cfg := domain.Config{
		TestDir:       m.Path(t.TestDir),
		CommentPrefix: t.CommentPrefix,
		Parallel:      t.Parallel,
		RerunAtMost:   t.RerunAtMost,
		IgnoredOnly:   t.IgnoredOnly,
		NoCapture:     t.NoCapture,
		Filters:       t.Filters,
		WarnAfter:     t.WarnAfter,
		Timeout:       t.Timeout,
	}

	if t.Filter != nil {
		cfg.Filter = func(path m.Path) bool { return t.Filter(string(path)) }
	}

	if t.Extract != nil {
		cfg.Extract = func(path m.Path) (string, error) { return t.Extract(string(path)) }
	}

	if t.Commands != nil {
		cfg.Commands = func(path m.Path) ([]m.StageCommand, error) { return t.Commands(string(path)) }
	}

	if t.MatchOptions != nil {
		cfg.MatchOptions = func(path m.Path, stream m.Stream) fuzzy.Options {
			return t.MatchOptions(string(path), stream)
		}
	}

	return cfg
}

// CommentExtractor returns an Extract function that reads the file and
// keeps its first block of lines starting with prefix.
func CommentExtractor(prefix string) func(path string) (string, error) {
	fs := adapter.NewLocalSourceFSAdapter()

	return func(path string) (string, error) {
		data, err := fs.ReadFile(m.Path(path))
		if err != nil {
			return "", err
		}

		return domain.ExtractLeadingComments(string(data), prefix), nil
	}
}

// DefaultMatchOptions returns the matcher options used when none are set.
func DefaultMatchOptions() MatchOptions {
	return fuzzy.DefaultOptions()
}

// Match reports whether text satisfies a fuzzy pattern.
func Match(pattern []string, text string) (bool, error) {
	out, err := fuzzy.Match(pattern, text)
	if err != nil {
		return false, err
	}

	return out.Matched, nil
}
