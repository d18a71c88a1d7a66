package cmd

import (
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"langtest.dev/pkg/langtest/internal/domain"
	domainmocks "langtest.dev/pkg/langtest/internal/domain/mocks"
	m "langtest.dev/pkg/langtest/internal/model"
)

func TestViewCmd_UsesRootReportDirByDefault(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)
	useWorkflow(t, mockWorkflow)

	mockWorkflow.On("View", mock.Anything, m.Path(defaultReportDir)).Return(&m.RunReport{}, nil).Once()

	_, err := execute(t, newViewCmd(), "view")
	require.NoError(t, err)
}

func TestViewCmd_RootReportDirFlagIsPassedThrough(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)
	useWorkflow(t, mockWorkflow)

	mockWorkflow.On("View", mock.Anything, m.Path("./reports-dir")).Return(&m.RunReport{}, nil).Once()

	_, err := execute(t, newViewCmd(), "view", "--report-dir", "./reports-dir")
	require.NoError(t, err)
}

func TestViewCmd_MissingReport(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)
	useWorkflow(t, mockWorkflow)

	mockWorkflow.On("View", mock.Anything, mock.Anything).Return(nil, domain.ErrNoReport).Once()

	_, err := execute(t, newViewCmd(), "view")
	require.ErrorIs(t, err, domain.ErrNoReport)
}

func TestViewCmd_PositionalArgsAreRejected(t *testing.T) {
	useWorkflow(t, domainmocks.NewMockWorkflow(t))

	_, err := execute(t, newViewCmd(), "view", "./custom-reports")
	require.Error(t, err)
}
