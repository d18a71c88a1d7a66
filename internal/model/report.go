package model

import "time"

// Summary aggregates a whole run.
type Summary struct {
	RunID       string
	Started     time.Time
	Duration    time.Duration
	Total       int
	Passed      int
	Failed      int
	Ignored     int
	Filtered    int
	FailedNames []string
}

// OK reports whether every non-ignored test passed.
func (s Summary) OK() bool {
	return s.Failed == 0
}

// RunReport is the persisted form of a Summary.
type RunReport struct {
	RunID    string        `yaml:"run_id"`
	Started  time.Time     `yaml:"started"`
	Duration time.Duration `yaml:"duration"`
	Passed   int           `yaml:"passed"`
	Failed   int           `yaml:"failed"`
	Ignored  int           `yaml:"ignored"`
	Filtered int           `yaml:"filtered"`
	Failures []string      `yaml:"failures,omitempty"`
}

// Report converts a Summary into its persisted form.
func (s Summary) Report() RunReport {
	return RunReport{
		RunID:    s.RunID,
		Started:  s.Started,
		Duration: s.Duration,
		Passed:   s.Passed,
		Failed:   s.Failed,
		Ignored:  s.Ignored,
		Filtered: s.Filtered,
		Failures: s.FailedNames,
	}
}

// Summary converts a persisted report back into a Summary.
func (r RunReport) Summary() Summary {
	return Summary{
		RunID:       r.RunID,
		Started:     r.Started,
		Duration:    r.Duration,
		Total:       r.Passed + r.Failed + r.Ignored,
		Passed:      r.Passed,
		Failed:      r.Failed,
		Ignored:     r.Ignored,
		Filtered:    r.Filtered,
		FailedNames: r.Failures,
	}
}

// TestListing describes a test without running it.
type TestListing struct {
	Name     string
	Path     Path
	Stages   []string
	IgnoreIf string
	Err      string
}
