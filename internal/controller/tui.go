package controller

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	m "langtest.dev/pkg/langtest/internal/model"
)

const progressWidth = 40

// TUI shows a live progress bar while tests run and prints result lines
// above it. Failures and the summary are printed by a SimpleUI once the
// program has stopped.
type TUI struct {
	out     io.Writer
	simple  *SimpleUI
	program *tea.Program
	done    chan struct{}
	stop    sync.Once
}

// NewTUI creates a new TUI.
func NewTUI(out, errOut io.Writer) *TUI {
	return &TUI{out: out, simple: NewSimpleUI(out, errOut)}
}

// Start launches the bubbletea program. It does not read the keyboard so
// Ctrl+C still interrupts the run.
func (t *TUI) Start(ctx context.Context, info RunInfo) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.program = tea.NewProgram(
		newProgressModel(info, t.simple.styles),
		tea.WithOutput(t.out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	t.done = make(chan struct{})

	go func() {
		defer close(t.done)

		if _, err := t.program.Run(); err != nil {
			slog.Error("TUI stopped", "error", err)
		}
	}()

	t.program.Println(fmt.Sprintf("\nrunning %d %s", info.Total, plural(info.Total, "test", "tests")))

	return nil
}

// Close stops the program if it is still running.
func (t *TUI) Close(context.Context) {
	t.finish()
}

func (t *TUI) finish() {
	t.stop.Do(func() {
		if !t.running() {
			return
		}

		t.program.Send(finishedMsg{})
		<-t.done
	})
}

// running reports whether the program is still accepting messages.
func (t *TUI) running() bool {
	if t.program == nil {
		return false
	}

	select {
	case <-t.done:
		return false
	default:
		return true
	}
}

// DisplayResult advances the progress bar and prints the result line.
func (t *TUI) DisplayResult(ctx context.Context, res m.FileResult) {
	if !t.running() {
		t.simple.DisplayResult(ctx, res)
		return
	}

	t.program.Println(t.simple.resultLine(res))
	t.program.Send(resultMsg(res.Verdict))
}

// DisplaySlow prints a slow command warning above the progress bar.
func (t *TUI) DisplaySlow(ctx context.Context, file m.TestFile, stage string, elapsed time.Duration) {
	if !t.running() {
		t.simple.DisplaySlow(ctx, file, stage, elapsed)
		return
	}

	t.program.Println(t.simple.slowLine(file, stage, elapsed))
}

// DisplayFailures stops the program and prints the failures.
func (t *TUI) DisplayFailures(ctx context.Context, failures []m.FileResult) {
	t.finish()
	t.simple.DisplayFailures(ctx, failures)
}

// DisplaySummary stops the program and prints the summary.
func (t *TUI) DisplaySummary(ctx context.Context, summary m.Summary) {
	t.finish()
	t.simple.DisplaySummary(ctx, summary)
}

// DisplayTestList prints the test table.
func (t *TUI) DisplayTestList(ctx context.Context, tests []m.TestListing) {
	t.simple.DisplayTestList(ctx, tests)
}

// Echo returns the console writers of the underlying SimpleUI.
func (t *TUI) Echo(stream m.Stream) io.Writer {
	return t.simple.Echo(stream)
}

type resultMsg m.Verdict

type finishedMsg struct{}

type progressModel struct {
	info     RunInfo
	styles   styles
	spinner  spinner.Model
	progress progress.Model
	done     int
	passed   int
	failed   int
	ignored  int
	quitting bool
}

func newProgressModel(info RunInfo, st styles) progressModel {
	return progressModel{
		info:     info,
		styles:   st,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(progressWidth)),
	}
}

func (pm progressModel) Init() tea.Cmd {
	return pm.spinner.Tick
}

func (pm progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg:
		pm.done++

		switch m.Verdict(msg) {
		case m.Passed:
			pm.passed++
		case m.Failed:
			pm.failed++
		case m.Ignored:
			pm.ignored++
		}

		return pm, nil

	case finishedMsg:
		pm.quitting = true
		return pm, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd

		pm.spinner, cmd = pm.spinner.Update(msg)

		return pm, cmd
	}

	return pm, nil
}

func (pm progressModel) View() string {
	if pm.quitting {
		return ""
	}

	percent := 1.0
	if pm.info.Total > 0 {
		percent = float64(pm.done) / float64(pm.info.Total)
	}

	var b strings.Builder

	fmt.Fprintf(&b, "%s %s %d/%d  %s  %s  %s\n",
		pm.spinner.View(),
		pm.progress.ViewAs(percent),
		pm.done, pm.info.Total,
		pm.styles.ok.Render(fmt.Sprintf("%d passed", pm.passed)),
		pm.styles.failed.Render(fmt.Sprintf("%d failed", pm.failed)),
		pm.styles.ignored.Render(fmt.Sprintf("%d ignored", pm.ignored)),
	)

	return b.String()
}
