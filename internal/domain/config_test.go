package domain

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"langtest.dev/pkg/langtest/internal/fuzzy"
	m "langtest.dev/pkg/langtest/internal/model"
)

func TestExtractLeadingComments(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		prefix string
		want   string
	}{
		{
			name:   "leading block",
			text:   "// Compiler:\n//   status: error\nfn main() {}\n",
			prefix: "// ",
			want:   "Compiler:\n  status: error",
		},
		{
			name:   "block after code",
			text:   "#!/bin/sh\n# run:\n#   stdout: x\necho x\n# trailing\n",
			prefix: "# ",
			want:   "run:\n  stdout: x",
		},
		{
			name:   "crlf",
			text:   "# a:\r\n#   b: c\r\n",
			prefix: "# ",
			want:   "a:\n  b: c",
		},
		{
			name:   "none",
			text:   "print 1\n",
			prefix: "# ",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractLeadingComments(tt.text, tt.prefix))
		})
	}
}

func TestConfigValidate(t *testing.T) {
	valid := Config{
		TestDir:  "tests",
		Extract:  func(m.Path) (string, error) { return "", nil },
		Commands: func(m.Path) ([]m.StageCommand, error) { return nil, nil },
	}
	require.NoError(t, valid.Validate())

	bad := valid
	bad.Parallel = -1
	bad.RerunAtMost = -2

	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parallelism can't be negative")
	assert.Contains(t, err.Error(), "rerun budget can't be negative")
}

func TestConfigParallelism(t *testing.T) {
	assert.Equal(t, runtime.NumCPU(), Config{}.parallelism())
	assert.Equal(t, 3, Config{Parallel: 3}.parallelism())
}

func TestConfigSelected(t *testing.T) {
	cfg := Config{Filters: []string{"parser::", "lexer"}}

	assert.True(t, cfg.selected("parser::ok", nil))
	assert.True(t, cfg.selected("lexer_error", nil))
	assert.False(t, cfg.selected("codegen::ok", nil))

	only := map[string]bool{"parser::ok": true}
	assert.True(t, cfg.selected("parser::ok", only))
	assert.False(t, cfg.selected("parser::bad", only))
	assert.True(t, Config{}.selected("anything", nil))
}

func TestConfigMatchOptions(t *testing.T) {
	assert.Equal(t, fuzzy.DefaultOptions(), Config{}.matchOptions("x", m.Stdout))

	cfg := Config{MatchOptions: func(_ m.Path, stream m.Stream) fuzzy.Options {
		return fuzzy.Options{IgnoreLeadingWhitespace: stream == m.Stderr}
	}}
	assert.False(t, cfg.matchOptions("x", m.Stdout).IgnoreLeadingWhitespace)
	assert.True(t, cfg.matchOptions("x", m.Stderr).IgnoreLeadingWhitespace)
}
