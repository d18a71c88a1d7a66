package cmd

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"langtest.dev/pkg/langtest/internal/domain"
	domainmocks "langtest.dev/pkg/langtest/internal/domain/mocks"
	m "langtest.dev/pkg/langtest/internal/model"
)

// useHarness points the configuration at an empty test directory with one
// interpreter stage.
func useHarness(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	setConfig(t, testDirKey, root)
	setConfig(t, commandsKey, []map[string]any{
		{"name": "run", "cmd": "interp", "args": []string{"{{.Path}}"}},
	})

	return root
}

func TestRunCmd_PassesFlags(t *testing.T) {
	root := useHarness(t)
	mockWorkflow := domainmocks.NewMockWorkflow(t)
	useWorkflow(t, mockWorkflow)

	mockWorkflow.On("Run", mock.Anything, mock.MatchedBy(func(cfg domain.Config) bool {
		if cfg.Commands == nil {
			return false
		}

		cmds, err := cfg.Commands("/t/a.lang")

		return err == nil &&
			len(cmds) == 1 &&
			cmds[0].Name == "run" &&
			cmds[0].Command.Path == "interp" &&
			len(cmds[0].Command.Args) == 1 && cmds[0].Command.Args[0] == "/t/a.lang" &&
			cfg.TestDir == m.Path(root) &&
			cfg.Parallel == 2 &&
			cfg.RerunAtMost == 3 &&
			cfg.Timeout == 7*time.Second &&
			cfg.IgnoredOnly &&
			cfg.NoCapture &&
			cfg.FailedOnly &&
			len(cfg.Filters) == 2 && cfg.Filters[0] == "parser" && cfg.Filters[1] == "lexer"
	})).Return(m.Summary{Passed: 1}, nil).Once()

	_, err := execute(t, newRunCmd(), "run",
		"--ignored", "--nocapture", "--failed",
		"-j", "2", "--rerun-at-most", "3", "--timeout", "7",
		"parser", "lexer")
	require.NoError(t, err)
}

func TestRunCmd_Defaults(t *testing.T) {
	useHarness(t)
	mockWorkflow := domainmocks.NewMockWorkflow(t)
	useWorkflow(t, mockWorkflow)

	mockWorkflow.On("Run", mock.Anything, mock.MatchedBy(func(cfg domain.Config) bool {
		return cfg.Parallel == defaultRunParallel &&
			cfg.RerunAtMost == defaultRerunAtMost &&
			cfg.Timeout == 0 &&
			cfg.WarnAfter == domain.DefaultWarnAfter &&
			cfg.ReportDir == m.Path(defaultReportDir) &&
			cfg.CommentPrefix == defaultCommentPrefix &&
			!cfg.IgnoredOnly &&
			len(cfg.Filters) == 0
	})).Return(m.Summary{}, nil).Once()

	_, err := execute(t, newRunCmd(), "run")
	require.NoError(t, err)
}

func TestRunCmd_FailingTestsExitNonZero(t *testing.T) {
	useHarness(t)
	mockWorkflow := domainmocks.NewMockWorkflow(t)
	useWorkflow(t, mockWorkflow)

	mockWorkflow.On("Run", mock.Anything, mock.Anything).
		Return(m.Summary{Passed: 2, Failed: 1}, nil).Once()

	_, err := execute(t, newRunCmd(), "run")
	require.ErrorIs(t, err, errTestsFailed)
}

func TestRunCmd_FatalErrorIsReturned(t *testing.T) {
	useHarness(t)
	mockWorkflow := domainmocks.NewMockWorkflow(t)
	useWorkflow(t, mockWorkflow)

	fatal := &domain.NameMismatchError{File: "a.lang", Names: []string{"linker"}}
	mockWorkflow.On("Run", mock.Anything, mock.Anything).Return(m.Summary{}, fatal).Once()

	_, err := execute(t, newRunCmd(), "run")

	var mismatch *domain.NameMismatchError

	require.True(t, errors.As(err, &mismatch))
	assert.NotErrorIs(t, err, errTestsFailed)
}

func TestRunCmd_InvalidConfiguration(t *testing.T) {
	setConfig(t, commandsKey, []map[string]any{})
	useWorkflow(t, domainmocks.NewMockWorkflow(t))

	_, err := execute(t, newRunCmd(), "run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one command is required")
}
