package domain

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"langtest.dev/pkg/langtest/internal/adapter"
	"langtest.dev/pkg/langtest/internal/fuzzy"
	m "langtest.dev/pkg/langtest/internal/model"
	"langtest.dev/pkg/langtest/internal/parser"
)

// Notes attached to ignored or failed results.
const (
	NoteEmptyTest         = "test string is empty"
	NoteSignalUnsupported = "signal termination is not supported on this platform"
	NoteExtractFailed     = "couldn't extract test text"
	NoteCommandsFailed    = "couldn't build stage commands"
)

// Orchestrator drives one test file through its stages.
type Orchestrator interface {
	TestFile(ctx context.Context, file m.TestFile) (m.FileResult, error)
}

// Hooks lets the caller observe a running file.
type Hooks struct {
	// Echo returns where a stream should be copied to, or nil.
	Echo func(stream m.Stream) io.Writer
	// OnSlow is called periodically while a stage is still running.
	OnSlow func(file m.TestFile, stage string, elapsed time.Duration)
}

type orchestrator struct {
	process adapter.ProcessAdapter
	cfg     Config
	hooks   Hooks
}

// NewOrchestrator constructs an Orchestrator running stages through process.
func NewOrchestrator(process adapter.ProcessAdapter, cfg Config, hooks Hooks) Orchestrator {
	return &orchestrator{
		process: process,
		cfg:     cfg,
		hooks:   hooks,
	}
}

// TestFile returns the file's verdict. Errors are configuration or
// environment problems that must stop the whole run.
func (o *orchestrator) TestFile(ctx context.Context, file m.TestFile) (m.FileResult, error) {
	start := time.Now()
	res := m.FileResult{File: file}

	finish := func(v m.Verdict, note string) (m.FileResult, error) {
		res.Verdict = v
		res.Note = note
		res.Duration = time.Since(start)

		return res, nil
	}

	text, err := o.cfg.Extract(file.Path)
	if err != nil {
		slog.Error("Failed to extract test text", "file", file.Path, "error", err)
		res.Failure = &m.Failure{Note: NoteExtractFailed}

		return finish(m.Failed, "")
	}

	if strings.TrimSpace(text) == "" {
		return finish(m.Ignored, NoteEmptyTest)
	}

	doc, err := parser.Parse(text, parser.Options{CommentPrefix: o.cfg.CommentPrefix})
	if err != nil {
		return res, fmt.Errorf("%s: %w", file.Path, err)
	}

	ignored, err := o.markedIgnored(ctx, file, doc)
	if err != nil {
		return res, err
	}

	if ignored != o.cfg.IgnoredOnly {
		return finish(m.Ignored, "")
	}

	cmds, err := o.cfg.Commands(file.Path)
	if err != nil {
		slog.Error("Failed to build stage commands", "file", file.Path, "error", err)
		res.Failure = &m.Failure{Note: NoteCommandsFailed}

		return finish(m.Failed, "")
	}

	for i := range cmds {
		cmds[i].Name = strings.ToLower(cmds[i].Name)
	}

	if err := checkNames(file.Path, doc, cmds); err != nil {
		return res, err
	}

	if doc.ExpectsSignal() && !adapter.SignalsSupported {
		return finish(m.Ignored, NoteSignalUnsupported)
	}

	budget := o.cfg.RerunAtMost

	for _, sc := range cmds {
		stage := doc.Stage(sc.Name)

		sr, failure, err := o.runStage(ctx, file, stage, sc.Command, &budget)
		if err != nil {
			return res, err
		}

		res.Stages = append(res.Stages, sr)

		if failure != nil {
			res.Failure = failure
			return finish(m.Failed, "")
		}

		// Only a stage meant to error ends the pipeline early.
		if stage.Status.Kind == m.StatusError && !sr.Exit.Success() {
			break
		}
	}

	return finish(m.Passed, "")
}

// markedIgnored runs the document's ignore-if predicate in the file's
// directory. A file without one is never marked.
func (o *orchestrator) markedIgnored(ctx context.Context, file m.TestFile, doc *m.Document) (bool, error) {
	if doc.IgnoreIf == "" {
		return false, nil
	}

	res, err := o.process.Run(ctx, adapter.ProcessSpec{
		Command: adapter.ShellCommand(doc.IgnoreIf, filepath.Dir(string(file.Path))),
	})
	if err != nil {
		return false, fmt.Errorf("%s: ignore-if: %w", file.Path, err)
	}

	slog.Debug("Evaluated ignore-if", "file", file.Path, "predicate", doc.IgnoreIf, "exit", res.Exit.String())

	return res.Exit.Success(), nil
}

func checkNames(path m.Path, doc *m.Document, cmds []m.StageCommand) error {
	known := make(map[string]bool, len(cmds))
	for _, sc := range cmds {
		known[sc.Name] = true
	}

	var missing []string

	for name := range doc.Stages {
		if !known[name] {
			missing = append(missing, name)
		}
	}

	if len(missing) == 0 {
		return nil
	}

	sort.Strings(missing)

	return &NameMismatchError{File: path, Names: missing}
}

// runStage runs one stage, rerunning it while a rerun-if clause matches and
// the file's budget lasts. The returned failure is nil when the stage passed.
func (o *orchestrator) runStage(
	ctx context.Context,
	file m.TestFile,
	stage m.Stage,
	base m.Command,
	budget *int,
) (m.StageResult, *m.Failure, error) {
	cmd := base.With(stage.Args, stage.Env)
	attempt := 0

	for {
		attempt++

		pr, err := o.process.Run(ctx, o.processSpec(file, stage, cmd))
		if err != nil {
			return m.StageResult{}, nil, fmt.Errorf("%s: stage %s: %w", file.Path, stage.Name, err)
		}

		sr, err := stageResult(stage.Name, attempt, pr)
		if err != nil {
			return sr, nil, fmt.Errorf("%s: stage %s: %w", file.Path, stage.Name, err)
		}

		failure, err := o.evaluate(file, stage, sr)
		if err != nil {
			return sr, nil, fmt.Errorf("%s: stage %s: %w", file.Path, stage.Name, err)
		}

		if failure == nil {
			return sr, nil, nil
		}

		if *budget > 0 {
			rerun, err := o.rerunMatches(file, stage, sr)
			if err != nil {
				return sr, nil, fmt.Errorf("%s: stage %s: %w", file.Path, stage.Name, err)
			}

			if rerun {
				*budget--

				slog.Info("Rerunning stage", "file", file.Path, "stage", stage.Name, "attempt", attempt+1)

				continue
			}
		}

		return sr, failure, nil
	}
}

func (o *orchestrator) processSpec(file m.TestFile, stage m.Stage, cmd m.Command) adapter.ProcessSpec {
	spec := adapter.ProcessSpec{
		Command:   cmd,
		Stdin:     stage.Stdin,
		WarnAfter: o.cfg.WarnAfter,
		Timeout:   o.cfg.Timeout,
	}

	if o.cfg.NoCapture && o.hooks.Echo != nil {
		spec.EchoStdout = o.hooks.Echo(m.Stdout)
		spec.EchoStderr = o.hooks.Echo(m.Stderr)
	}

	if o.hooks.OnSlow != nil {
		spec.OnSlow = func(elapsed time.Duration) {
			o.hooks.OnSlow(file, stage.Name, elapsed)
		}
	}

	return spec
}

func stageResult(name string, attempt int, pr adapter.ProcessResult) (m.StageResult, error) {
	sr := m.StageResult{
		Stage:          name,
		Attempts:       attempt,
		Exit:           pr.Exit,
		StdinRemaining: pr.StdinRemaining,
		TimedOut:       pr.TimedOut,
		Duration:       pr.Duration,
	}

	if !utf8.Valid(pr.Stdout) {
		return sr, fmt.Errorf("stdout: %w", ErrInvalidUTF8)
	}

	if !utf8.Valid(pr.Stderr) {
		return sr, fmt.Errorf("stderr: %w", ErrInvalidUTF8)
	}

	sr.Stdout = string(pr.Stdout)
	sr.Stderr = string(pr.Stderr)

	return sr, nil
}

// evaluate checks status, stdin consumption, stderr and stdout in that
// order and records only the checks that failed.
func (o *orchestrator) evaluate(file m.TestFile, stage m.Stage, sr m.StageResult) (*m.Failure, error) {
	failure := &m.Failure{Stage: stage.Name}

	if sr.TimedOut || !stage.Status.Matches(sr.Exit) {
		msg := fmt.Sprintf("expected %s, got %s", stage.Status, sr.Exit)
		if sr.TimedOut {
			msg += fmt.Sprintf(" (timed out after %s)", o.cfg.Timeout)
		}

		failure.Status = &msg
	}

	if sr.StdinRemaining > 0 {
		remaining := sr.StdinRemaining
		failure.StdinRemaining = &remaining
	}

	mismatch, err := o.match(file, m.Stderr, stage.Stderr, sr.Stderr)
	if err != nil {
		return nil, err
	}

	failure.Stderr = mismatch

	mismatch, err = o.match(file, m.Stdout, stage.Stdout, sr.Stdout)
	if err != nil {
		return nil, err
	}

	failure.Stdout = mismatch

	if failure.Empty() {
		return nil, nil
	}

	return failure, nil
}

func (o *orchestrator) match(file m.TestFile, stream m.Stream, pattern m.Pattern, text string) (*m.Mismatch, error) {
	out, err := fuzzy.New(o.cfg.matchOptions(file.Path, stream)).Match(pattern, text)
	if err != nil {
		return nil, fmt.Errorf("%s pattern: %w", stream, err)
	}

	if out.Matched {
		return nil, nil
	}

	return &m.Mismatch{
		Expected:    pattern,
		Actual:      text,
		PatternLine: out.PatternLine,
		ActualLine:  out.ActualLine,
	}, nil
}

// rerunMatches reports whether any configured rerun-if clause matches.
func (o *orchestrator) rerunMatches(file m.TestFile, stage m.Stage, sr m.StageResult) (bool, error) {
	if stage.RerunIfStatus != nil && stage.RerunIfStatus.Matches(sr.Exit) {
		return true, nil
	}

	clauses := []struct {
		stream  m.Stream
		pattern m.Pattern
		text    string
	}{
		{m.Stderr, stage.RerunIfStderr, sr.Stderr},
		{m.Stdout, stage.RerunIfStdout, sr.Stdout},
	}

	for _, c := range clauses {
		if c.pattern == nil {
			continue
		}

		mismatch, err := o.match(file, c.stream, c.pattern, c.text)
		if err != nil {
			return false, err
		}

		if mismatch == nil {
			return true, nil
		}
	}

	return false, nil
}
