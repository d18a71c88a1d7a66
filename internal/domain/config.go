package domain

import (
	"errors"
	"runtime"
	"strings"
	"time"

	"langtest.dev/pkg/langtest/internal/fuzzy"
	m "langtest.dev/pkg/langtest/internal/model"
)

// DefaultWarnAfter is how long a command may run before it is reported slow.
const DefaultWarnAfter = 60 * time.Second

// TestFilter decides whether a discovered path is a test file.
type TestFilter func(path m.Path) bool

// Extractor returns the embedded test text of a file. An empty string marks
// the file as ignored.
type Extractor func(path m.Path) (string, error)

// StageCommands returns the ordered commands that make up a file's pipeline.
type StageCommands func(path m.Path) ([]m.StageCommand, error)

// MatchOptions returns matcher options for one file and stream.
type MatchOptions func(path m.Path, stream m.Stream) fuzzy.Options

// Config is assembled once before a run and never changed afterwards.
type Config struct {
	TestDir      m.Path
	Filter       TestFilter
	Extract      Extractor
	Commands     StageCommands
	MatchOptions MatchOptions

	CommentPrefix string
	Parallel      int
	RerunAtMost   int
	IgnoredOnly   bool
	NoCapture     bool

	// Filters keeps tests whose name contains any of the substrings.
	Filters []string
	// OnlyNames, when non-nil, keeps only the named tests.
	OnlyNames []string
	// FailedOnly keeps the tests that failed in the last saved report.
	FailedOnly bool

	WarnAfter time.Duration
	Timeout   time.Duration

	ReportDir m.Path
	SpillDir  string
}

// Validate checks that every required collaborator is present.
func (c Config) Validate() error {
	var errs []error

	if c.TestDir == "" {
		errs = append(errs, errors.New("test directory is not set"))
	}

	if c.Extract == nil {
		errs = append(errs, errors.New("extractor is not set"))
	}

	if c.Commands == nil {
		errs = append(errs, errors.New("stage commands are not set"))
	}

	if c.Parallel < 0 {
		errs = append(errs, errors.New("parallelism can't be negative"))
	}

	if c.RerunAtMost < 0 {
		errs = append(errs, errors.New("rerun budget can't be negative"))
	}

	return errors.Join(errs...)
}

func (c Config) parallelism() int {
	if c.Parallel > 0 {
		return c.Parallel
	}

	return runtime.NumCPU()
}

func (c Config) matchOptions(path m.Path, stream m.Stream) fuzzy.Options {
	if c.MatchOptions == nil {
		return fuzzy.DefaultOptions()
	}

	return c.MatchOptions(path, stream)
}

// selected applies the name filters. only, when non-nil, restricts the run
// to the given names.
func (c Config) selected(name string, only map[string]bool) bool {
	if only != nil && !only[name] {
		return false
	}

	if len(c.Filters) == 0 {
		return true
	}

	for _, f := range c.Filters {
		if strings.Contains(name, f) {
			return true
		}
	}

	return false
}

// ExtractLeadingComments returns the first run of consecutive lines that
// start with prefix, with the prefix removed.
func ExtractLeadingComments(text, prefix string) string {
	var (
		out     []string
		started bool
	)

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")

		if strings.HasPrefix(line, prefix) {
			started = true

			out = append(out, strings.TrimPrefix(line, prefix))

			continue
		}

		if started {
			break
		}
	}

	return strings.Join(out, "\n")
}
