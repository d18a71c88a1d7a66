package cmd

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setConfig overrides a config key for the duration of the test. Keys bound
// to flags must not be set this way, an override beats the flag.
func setConfig(t *testing.T, key string, value any) {
	t.Helper()

	old := viper.Get(key)
	viper.Set(key, value)
	t.Cleanup(func() { viper.Set(key, old) })
}

func TestConfigConstants(t *testing.T) {
	assert.Equal(t, "langtest", configBaseName)
	assert.Equal(t, "langtest.yaml", configFileName)
	assert.Equal(t, ".", configFolderPath)
	assert.Equal(t, "report-dir", reportDirFlagName)
	assert.Equal(t, "test-threads", testThreadsFlagName)
	assert.Equal(t, "run.parallel", runParallelKey)
	assert.Equal(t, "run.rerun_at_most", runRerunAtMostKey)
	assert.Equal(t, ".langtest-reports", defaultReportDir)
	assert.Equal(t, "LANGTEST", envPrefix)
}

func TestConfigVersionConstants(t *testing.T) {
	assert.Equal(t, "version", configVersionKey)
	assert.Equal(t, 1, currentConfigVersion)
}

func TestConfigDefaults(t *testing.T) {
	assert.Equal(t, defaultTestDir, viper.GetString(testDirKey))
	assert.Equal(t, defaultExtractPrefix, viper.GetString(extractPrefixKey))
	assert.Equal(t, defaultCommentPrefix, viper.GetString(commentPrefixKey))
	assert.Equal(t, 60, viper.GetInt(runWarnAfterKey))
	assert.True(t, viper.GetBool(matcherIgnoreLeadingWhitespaceKey))
}

func TestParseSlogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelWarn},
		{"debug", slog.LevelDebug},
		{" INFO ", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"-4", slog.LevelDebug},
		{"loud", slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSlogLevel(tt.in, slog.LevelWarn))
		})
	}
}

func TestConfigureLogger(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	logPath := filepath.Join(t.TempDir(), "langtest.log")
	configureLogger(logPath, true)

	require.NotNil(t, globalLogger)
	assert.True(t, globalLogger.Enabled(context.Background(), slog.LevelDebug))

	slog.Debug("hello from the test", "key", "value")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from the test")
	assert.Contains(t, string(data), "key=value")
}
