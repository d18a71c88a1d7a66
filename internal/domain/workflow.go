package domain

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"langtest.dev/pkg/langtest/internal/adapter"
	"langtest.dev/pkg/langtest/internal/controller"
	m "langtest.dev/pkg/langtest/internal/model"
	"langtest.dev/pkg/langtest/internal/parser"
	"langtest.dev/pkg/langtest/pkg"
)

// NameSeparator joins the path components of a test's display name.
const NameSeparator = "::"

// Workflow runs or lists the tests under a directory.
type Workflow interface {
	Run(ctx context.Context, cfg Config) (m.Summary, error)
	List(ctx context.Context, cfg Config) ([]m.TestListing, error)
	View(ctx context.Context, reportDir m.Path) (*m.RunReport, error)
}

type workflow struct {
	adapter.SourceFSAdapter
	adapter.ReportStore
	adapter.ProcessAdapter
	controller.UI
}

// NewWorkflow creates a Workflow with the provided dependencies.
func NewWorkflow(
	fsAdapter adapter.SourceFSAdapter,
	reportStore adapter.ReportStore,
	processAdapter adapter.ProcessAdapter,
	ui controller.UI,
) Workflow {
	return &workflow{
		SourceFSAdapter: fsAdapter,
		ReportStore:     reportStore,
		ProcessAdapter:  processAdapter,
		UI:              ui,
	}
}

// Run discovers, filters and runs tests on a bounded worker pool. Workers
// send results to a single collector; the first fatal error cancels the
// remaining work and is returned.
func (w *workflow) Run(ctx context.Context, cfg Config) (m.Summary, error) {
	summary := m.Summary{RunID: uuid.NewString(), Started: time.Now()}

	if err := cfg.Validate(); err != nil {
		return summary, fmt.Errorf("invalid configuration: %w", err)
	}

	files, filtered, err := w.selectFiles(cfg)
	if err != nil {
		return summary, err
	}

	summary.Total = len(files)
	summary.Filtered = filtered

	slog.Info("Starting run", "run", summary.RunID, "tests", len(files), "filtered", filtered, "parallel", cfg.parallelism())

	if err := w.Start(ctx, controller.RunInfo{
		RunID:       summary.RunID,
		Total:       len(files),
		Filtered:    filtered,
		Parallel:    cfg.parallelism(),
		IgnoredOnly: cfg.IgnoredOnly,
	}); err != nil {
		return summary, fmt.Errorf("start ui: %w", err)
	}
	defer w.Close(ctx)

	failures, err := pkg.NewFileSpill[m.FileResult](cfg.SpillDir)
	if err != nil {
		return summary, err
	}

	defer func() {
		if err := failures.Discard(); err != nil {
			slog.Warn("Failed to discard failure spill", "path", failures.Path(), "error", err)
		}
	}()

	orch := NewOrchestrator(w.ProcessAdapter, cfg, Hooks{
		Echo: w.Echo,
		OnSlow: func(file m.TestFile, stage string, elapsed time.Duration) {
			slog.Warn("Command is slow", "file", file.Path, "stage", stage, "elapsed", elapsed)
			w.DisplaySlow(ctx, file, stage, elapsed)
		},
	})

	results := make(chan m.FileResult)
	collected := make(chan error, 1)

	go func() {
		collected <- w.collect(ctx, results, failures, &summary)
	}()

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(cfg.parallelism())

	for _, file := range files {
		file := file
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			res, err := orch.TestFile(groupCtx, file)
			if err != nil {
				slog.Error("Fatal error while testing file", "file", file.Path, "error", err)
				return err
			}

			results <- res

			return nil
		})
	}

	runErr := group.Wait()
	close(results)

	collectErr := <-collected
	summary.Duration = time.Since(summary.Started)

	if runErr != nil {
		return summary, runErr
	}

	if collectErr != nil {
		return summary, collectErr
	}

	var failed []m.FileResult

	if err := failures.Range(func(_ uint64, res m.FileResult) error {
		failed = append(failed, res)
		return nil
	}); err != nil {
		return summary, fmt.Errorf("read failures: %w", err)
	}

	sort.Slice(failed, func(i, j int) bool { return failed[i].File.Name < failed[j].File.Name })
	sort.Strings(summary.FailedNames)

	w.DisplayFailures(ctx, failed)
	w.DisplaySummary(ctx, summary)

	if cfg.ReportDir != "" {
		if err := w.SaveReport(cfg.ReportDir, summary.Report()); err != nil {
			slog.Error("Failed to save report", "dir", cfg.ReportDir, "error", err)
		}
	}

	slog.Info("Finished run", "run", summary.RunID, "passed", summary.Passed, "failed", summary.Failed,
		"ignored", summary.Ignored, "duration", summary.Duration)

	return summary, nil
}

// collect is the only reader of results and the only writer of summary.
func (w *workflow) collect(
	ctx context.Context,
	results <-chan m.FileResult,
	failures pkg.FileSpill[m.FileResult],
	summary *m.Summary,
) error {
	var firstErr error

	for res := range results {
		switch res.Verdict {
		case m.Passed:
			summary.Passed++
		case m.Ignored:
			summary.Ignored++
		case m.Failed:
			summary.Failed++
			summary.FailedNames = append(summary.FailedNames, res.File.Name)

			if err := failures.Append(res); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("record failure: %w", err)
			}
		}

		w.DisplayResult(ctx, res)
	}

	return firstErr
}

// List describes the selected tests without running them.
func (w *workflow) List(ctx context.Context, cfg Config) ([]m.TestListing, error) {
	if cfg.TestDir == "" || cfg.Extract == nil {
		return nil, fmt.Errorf("invalid configuration: test directory and extractor are required")
	}

	files, _, err := w.selectFiles(cfg)
	if err != nil {
		return nil, err
	}

	listings := make([]m.TestListing, 0, len(files))

	for _, file := range files {
		listings = append(listings, describeFile(cfg, file))
	}

	w.DisplayTestList(ctx, listings)

	return listings, nil
}

func describeFile(cfg Config, file m.TestFile) m.TestListing {
	listing := m.TestListing{Name: file.Name, Path: file.Path}

	text, err := cfg.Extract(file.Path)
	if err != nil {
		listing.Err = err.Error()
		return listing
	}

	if strings.TrimSpace(text) == "" {
		listing.Err = NoteEmptyTest
		return listing
	}

	doc, err := parser.Parse(text, parser.Options{CommentPrefix: cfg.CommentPrefix})
	if err != nil {
		listing.Err = err.Error()
		return listing
	}

	for name := range doc.Stages {
		listing.Stages = append(listing.Stages, name)
	}

	sort.Strings(listing.Stages)
	listing.IgnoreIf = doc.IgnoreIf

	return listing
}

// View prints the tally and failed names of the last saved run.
func (w *workflow) View(ctx context.Context, reportDir m.Path) (*m.RunReport, error) {
	report, err := w.LoadReport(reportDir)
	if err != nil {
		return nil, fmt.Errorf("load last report: %w", err)
	}

	if report == nil {
		return nil, fmt.Errorf("%w in %s", ErrNoReport, reportDir)
	}

	failed := make([]m.FileResult, 0, len(report.Failures))
	for _, name := range report.Failures {
		failed = append(failed, m.FileResult{File: m.TestFile{Name: name}, Verdict: m.Failed})
	}

	w.DisplayFailures(ctx, failed)
	w.DisplaySummary(ctx, report.Summary())

	return report, nil
}

// selectFiles discovers test files and applies the name filters. It
// returns the kept files and how many were filtered out.
func (w *workflow) selectFiles(cfg Config) ([]m.TestFile, int, error) {
	files, err := w.discover(cfg)
	if err != nil {
		return nil, 0, err
	}

	only, err := w.onlyNames(cfg)
	if err != nil {
		return nil, 0, err
	}

	kept := files[:0]

	for _, file := range files {
		if cfg.selected(file.Name, only) {
			kept = append(kept, file)
		}
	}

	return kept, len(files) - len(kept), nil
}

func (w *workflow) onlyNames(cfg Config) (map[string]bool, error) {
	var names []string

	switch {
	case cfg.FailedOnly:
		report, err := w.LoadReport(cfg.ReportDir)
		if err != nil {
			return nil, fmt.Errorf("load last report: %w", err)
		}

		if report == nil {
			slog.Info("No previous report, running every test", "dir", cfg.ReportDir)
			return nil, nil
		}

		names = report.Failures
	case cfg.OnlyNames != nil:
		names = cfg.OnlyNames
	default:
		return nil, nil
	}

	only := make(map[string]bool, len(names))
	for _, n := range names {
		only[n] = true
	}

	return only, nil
}

// discover walks the test directory and returns the accepted files sorted
// by display name.
func (w *workflow) discover(cfg Config) ([]m.TestFile, error) {
	root, err := w.Canonical(cfg.TestDir)
	if err != nil {
		return nil, fmt.Errorf("test directory %s: %w", cfg.TestDir, err)
	}

	var files []m.TestFile

	err = w.Walk(root, func(path m.Path) error {
		if cfg.Filter != nil && !cfg.Filter(path) {
			return nil
		}

		rel, err := w.RelPath(root, path)
		if err != nil {
			return err
		}

		canonical, err := w.Canonical(path)
		if err != nil {
			return fmt.Errorf("canonicalise %s: %w", path, err)
		}

		files = append(files, m.TestFile{Path: canonical, Name: DisplayName(rel)})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover tests: %w", err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	return files, nil
}

// DisplayName turns a path relative to the test root into a test name:
// the extension is dropped and separators become "::".
func DisplayName(rel m.Path) string {
	p := filepath.ToSlash(string(rel))
	p = strings.TrimSuffix(p, filepath.Ext(p))

	return strings.ReplaceAll(p, "/", NameSeparator)
}
