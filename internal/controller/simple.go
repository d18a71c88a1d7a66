package controller

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	m "langtest.dev/pkg/langtest/internal/model"
)

type styles struct {
	ok      lipgloss.Style
	failed  lipgloss.Style
	ignored lipgloss.Style
	faint   lipgloss.Style
	header  lipgloss.Style
}

func newStyles(out io.Writer) styles {
	r := lipgloss.NewRenderer(out)

	return styles{
		ok:      r.NewStyle().Foreground(lipgloss.Color("2")),
		failed:  r.NewStyle().Foreground(lipgloss.Color("1")),
		ignored: r.NewStyle().Foreground(lipgloss.Color("3")),
		faint:   r.NewStyle().Faint(true),
		header:  r.NewStyle().Bold(true),
	}
}

func (s styles) verdict(v m.Verdict) string {
	switch v {
	case m.Passed:
		return s.ok.Render(v.String())
	case m.Failed:
		return s.failed.Render(v.String())
	default:
		return s.ignored.Render(v.String())
	}
}

// SimpleUI prints cargo test style lines.
type SimpleUI struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer
	styles styles
}

// NewSimpleUI creates a SimpleUI writing results to out and echoed child
// stderr to errOut.
func NewSimpleUI(out, errOut io.Writer) *SimpleUI {
	return &SimpleUI{out: out, errOut: errOut, styles: newStyles(out)}
}

// Start prints the number of tests about to run.
func (s *SimpleUI) Start(ctx context.Context, info RunInfo) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("\nrunning %d %s\n", info.Total, plural(info.Total, "test", "tests"))

	return nil
}

// Close finalizes the UI.
func (s *SimpleUI) Close(context.Context) {}

// DisplayResult prints one result line.
func (s *SimpleUI) DisplayResult(ctx context.Context, res m.FileResult) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("%s\n", s.resultLine(res))
}

func (s *SimpleUI) resultLine(res m.FileResult) string {
	line := fmt.Sprintf("test %s ... %s", res.File.Name, s.styles.verdict(res.Verdict))
	if res.Note != "" {
		line += fmt.Sprintf(" (%s)", res.Note)
	}

	return line
}

// DisplaySlow reports a command that is still running.
func (s *SimpleUI) DisplaySlow(ctx context.Context, file m.TestFile, stage string, elapsed time.Duration) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("%s\n", s.slowLine(file, stage, elapsed))
}

func (s *SimpleUI) slowLine(file m.TestFile, stage string, elapsed time.Duration) string {
	return s.styles.faint.Render(fmt.Sprintf("test %s ... %s has been running for over %s",
		file.Name, stage, elapsed.Truncate(time.Second)))
}

// DisplayFailures prints the diverging checks of every failed test followed
// by the list of their names.
func (s *SimpleUI) DisplayFailures(ctx context.Context, failures []m.FileResult) {
	if err := ctx.Err(); err != nil || len(failures) == 0 {
		return
	}

	var b strings.Builder

	b.WriteString("\nfailures:\n")

	for _, res := range failures {
		s.writeFailure(&b, res)
	}

	b.WriteString("\nfailures:\n")

	for _, res := range failures {
		fmt.Fprintf(&b, "    %s\n", res.File.Name)
	}

	s.printf("%s", b.String())
}

func (s *SimpleUI) writeFailure(b *strings.Builder, res m.FileResult) {
	f := res.Failure
	if f == nil {
		return
	}

	name := res.File.Name
	if f.Stage != "" {
		name = fmt.Sprintf("%s (%s)", name, f.Stage)
	}

	section := func(check string) {
		fmt.Fprintf(b, "\n%s\n", s.styles.header.Render(fmt.Sprintf("---- %s %s ----", name, check)))
	}

	if f.Note != "" {
		section("note")
		fmt.Fprintf(b, "%s\n", f.Note)
	}

	if f.Status != nil {
		section("status")
		fmt.Fprintf(b, "%s\n", *f.Status)
	}

	if f.StdinRemaining != nil {
		section("stdin")
		fmt.Fprintf(b, "%d %s of stdin were not consumed\n", *f.StdinRemaining, plural(*f.StdinRemaining, "byte", "bytes"))
	}

	s.writeMismatch(b, f.Stderr, section, "stderr")
	s.writeMismatch(b, f.Stdout, section, "stdout")
}

func (s *SimpleUI) writeMismatch(b *strings.Builder, mm *m.Mismatch, section func(string), check string) {
	if mm == nil {
		return
	}

	section(check)

	if mm.Actual == "" {
		b.WriteString(s.styles.faint.Render("(empty)") + "\n")
	} else {
		b.WriteString(strings.TrimRight(mm.Actual, "\n") + "\n")
	}

	if where := divergence(mm); where != "" {
		fmt.Fprintf(b, "\n%s\n", s.styles.faint.Render(where))
	}

	if diff := unifiedDiff(mm); diff != "" {
		fmt.Fprintf(b, "\n%s", diff)
	}
}

// DisplaySummary prints the final tally line.
func (s *SimpleUI) DisplaySummary(ctx context.Context, summary m.Summary) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("\n%s\n", s.summaryLine(summary))
}

func (s *SimpleUI) summaryLine(summary m.Summary) string {
	result := s.styles.ok.Render("ok")
	if !summary.OK() {
		result = s.styles.failed.Render("FAILED")
	}

	return fmt.Sprintf("test result: %s. %d passed; %d failed; %d ignored; 0 measured; %d filtered out",
		result, summary.Passed, summary.Failed, summary.Ignored, summary.Filtered)
}

// DisplayTestList prints a table of tests and their declared stages.
func (s *SimpleUI) DisplayTestList(ctx context.Context, tests []m.TestListing) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("\n%s", renderTestTable(tests))
}

func renderTestTable(tests []m.TestListing) string {
	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Test", "Stages", "Ignore-If"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT})

	for _, t := range tests {
		stages := strings.Join(t.Stages, ", ")
		if t.Err != "" {
			stages = "error: " + t.Err
		}

		table.Append([]string{t.Name, stages, t.IgnoreIf})
	}

	table.SetFooter([]string{fmt.Sprintf("%d %s", len(tests), plural(len(tests), "test", "tests")), "", ""})
	table.Render()

	return buf.String()
}

// Echo returns a writer that copies child output to the console without
// splitting other lines.
func (s *SimpleUI) Echo(stream m.Stream) io.Writer {
	if stream == m.Stderr {
		return &lockedWriter{mu: &s.mu, w: s.errOut}
	}

	return &lockedWriter{mu: &s.mu, w: s.out}
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = fmt.Fprintf(s.out, format, args...)
}

type lockedWriter struct {
	mu *sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.w.Write(p)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}

	return many
}
