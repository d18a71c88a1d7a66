package adapter

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
	m "langtest.dev/pkg/langtest/internal/model"
)

// LastReportFile is the name of the report written after every run.
const LastReportFile = "last.yaml"

// ReportStore persists the outcome of the last run.
type ReportStore interface {
	SaveReport(dir m.Path, report m.RunReport) error
	// LoadReport returns nil and no error when no report has been saved.
	LoadReport(dir m.Path) (*m.RunReport, error)
}

// YAMLReportStore keeps reports as YAML files.
type YAMLReportStore struct{}

// NewYAMLReportStore constructs a YAMLReportStore.
func NewYAMLReportStore() *YAMLReportStore {
	return &YAMLReportStore{}
}

// SaveReport writes report to dir/last.yaml, creating dir if needed.
func (s *YAMLReportStore) SaveReport(dir m.Path, report m.RunReport) error {
	if err := os.MkdirAll(string(dir), 0o750); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	path := filepath.Join(string(dir), LastReportFile)
	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}

// LoadReport reads dir/last.yaml.
func (s *YAMLReportStore) LoadReport(dir m.Path) (*m.RunReport, error) {
	data, err := os.ReadFile(filepath.Join(string(dir), LastReportFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}

	var report m.RunReport
	if err := yaml.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}

	return &report, nil
}
