package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"langtest.dev/pkg/langtest/internal/domain"
	domainmocks "langtest.dev/pkg/langtest/internal/domain/mocks"
	m "langtest.dev/pkg/langtest/internal/model"
)

func TestListCmd_PassesFilters(t *testing.T) {
	root := useHarness(t)
	mockWorkflow := domainmocks.NewMockWorkflow(t)
	useWorkflow(t, mockWorkflow)

	mockWorkflow.On("List", mock.Anything, mock.MatchedBy(func(cfg domain.Config) bool {
		return cfg.TestDir == m.Path(root) &&
			cfg.Extract != nil &&
			len(cfg.Filters) == 1 && cfg.Filters[0] == "parser"
	})).Return([]m.TestListing{{Name: "parser::ok"}}, nil).Once()

	_, err := execute(t, newListCmd(), "list", "parser")
	require.NoError(t, err)
}

func TestListCmd_ListsRealFiles(t *testing.T) {
	root := useHarness(t)
	setConfig(t, extensionsKey, []string{"lang"})
	setConfig(t, extractPrefixKey, "// ")
	writeFile(t, root, "parser/ok.lang", "// run:\n//   stdout: ok\nprint ok\n")
	writeFile(t, root, "README.md", "not a test\n")

	out, err := execute(t, newListCmd(), "list")
	require.NoError(t, err)
	assert.Contains(t, out, "parser::ok")
	assert.Contains(t, out, "run")
	assert.NotContains(t, out, "README")
}
