package adapter

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	m "langtest.dev/pkg/langtest/internal/model"
)

func TestYAMLReportStore(t *testing.T) {
	t.Run("missing report is not an error", func(t *testing.T) {
		store := NewYAMLReportStore()

		report, err := store.LoadReport(m.Path(t.TempDir()))
		require.NoError(t, err)
		assert.Nil(t, report)
	})

	t.Run("saves into a new directory and loads back", func(t *testing.T) {
		store := NewYAMLReportStore()
		dir := m.Path(filepath.Join(t.TempDir(), "reports"))

		want := m.RunReport{
			RunID:    "0b7c",
			Started:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
			Duration: 1500 * time.Millisecond,
			Passed:   3,
			Failed:   1,
			Ignored:  2,
			Failures: []string{"parser::bad"},
		}

		require.NoError(t, store.SaveReport(dir, want))

		raw, err := os.ReadFile(filepath.Join(string(dir), LastReportFile))
		require.NoError(t, err)
		assert.Contains(t, string(raw), "run_id: 0b7c")
		assert.Contains(t, string(raw), "- parser::bad")

		got, err := store.LoadReport(dir)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, want.Started.Equal(got.Started))

		got.Started = want.Started
		assert.Equal(t, want, *got)
	})

	t.Run("corrupt report is an error", func(t *testing.T) {
		store := NewYAMLReportStore()
		dir := t.TempDir()

		require.NoError(t, os.WriteFile(filepath.Join(dir, LastReportFile), []byte("passed: [oops"), 0o600))

		_, err := store.LoadReport(m.Path(dir))
		assert.Error(t, err)
	})
}
