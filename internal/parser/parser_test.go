package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	m "langtest.dev/pkg/langtest/internal/model"
)

func TestParse(t *testing.T) {
	t.Run("parses stages with defaults", func(t *testing.T) {
		doc, err := Parse("Compiler:\n  status: error\n\nRun-time:\n  stdout: hello\n", Options{})
		require.NoError(t, err)
		require.Len(t, doc.Stages, 2)

		compiler := doc.Stages["compiler"]
		assert.Equal(t, m.StatusError, compiler.Status.Kind)
		assert.Equal(t, m.Pattern{"..."}, compiler.Stdout)
		assert.Equal(t, m.Pattern{"..."}, compiler.Stderr)
		assert.Nil(t, compiler.Stdin)
		assert.Empty(t, compiler.Args)
		assert.Empty(t, compiler.Env)

		run := doc.Stages["run-time"]
		assert.Equal(t, m.Success, run.Status)
		assert.Equal(t, m.Pattern{"hello"}, run.Stdout)
	})

	t.Run("dedented line starts a new outer block", func(t *testing.T) {
		doc, err := Parse("x:\n  stdout:\n    z\na:\n", Options{})
		require.NoError(t, err)
		assert.Equal(t, m.Pattern{"z"}, doc.Stages["x"].Stdout)
		assert.Contains(t, doc.Stages, "a")
	})

	t.Run("multi-line values keep interior indentation and blank lines", func(t *testing.T) {
		text := "Run:\n" +
			"  stdout:\n" +
			"\n" +
			"    a\n" +
			"      b  \n" +
			"\n" +
			"    c\n" +
			"\n" +
			"  status: 0\n"

		doc, err := Parse(text, Options{})
		require.NoError(t, err)

		run := doc.Stages["run"]
		assert.Equal(t, m.Pattern{"a", "  b  ", "", "c"}, run.Stdout)
		assert.Equal(t, m.ExitCode(0), run.Status)
	})

	t.Run("value on the key line joins continuation lines", func(t *testing.T) {
		doc, err := Parse("Run:\n  stderr: first\n    second\n", Options{})
		require.NoError(t, err)
		assert.Equal(t, m.Pattern{"first", "second"}, doc.Stages["run"].Stderr)
	})

	t.Run("stdin joined verbatim", func(t *testing.T) {
		doc, err := Parse("Run:\n  stdin:\n    one \n    two\n", Options{})
		require.NoError(t, err)
		require.NotNil(t, doc.Stages["run"].Stdin)
		assert.Equal(t, "one \ntwo", *doc.Stages["run"].Stdin)
	})

	t.Run("env and env-var last write wins", func(t *testing.T) {
		doc, err := Parse("Run:\n  env: A = 1\n  env-var: B=x=y\n  env: A=2\n", Options{})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"A": "2", "B": "x=y"}, doc.Stages["run"].Env)
	})

	t.Run("exec-arg appends whole values", func(t *testing.T) {
		doc, err := Parse("Run:\n  exec-arg: a b\n  exec-arg: c\n", Options{})
		require.NoError(t, err)
		assert.Equal(t, []string{"a b", "c"}, doc.Stages["run"].Args)
	})

	t.Run("rerun-if clauses", func(t *testing.T) {
		doc, err := Parse("Run:\n  rerun-if-status: 3\n  rerun-if-stderr:\n    ...flaky...\n", Options{})
		require.NoError(t, err)

		run := doc.Stages["run"]
		require.NotNil(t, run.RerunIfStatus)
		assert.Equal(t, m.ExitCode(3), *run.RerunIfStatus)
		assert.Equal(t, m.Pattern{"...flaky..."}, run.RerunIfStderr)
		assert.Nil(t, run.RerunIfStdout)
		assert.True(t, run.HasRerun())
	})

	t.Run("ignore-if is last wins", func(t *testing.T) {
		doc, err := Parse("ignore-if: false\nRun:\n  status: success\nIgnore-If: test -f x  \n", Options{})
		require.NoError(t, err)
		assert.Equal(t, "test -f x", doc.IgnoreIf)
		assert.Len(t, doc.Stages, 1)
	})

	t.Run("comment prefix lines are skipped", func(t *testing.T) {
		doc, err := Parse("# leading\nRun:\n  # inside\n  status: error\n", Options{CommentPrefix: "#"})
		require.NoError(t, err)
		assert.Equal(t, m.StatusError, doc.Stages["run"].Status.Kind)
	})

	t.Run("empty text yields no stages", func(t *testing.T) {
		doc, err := Parse("", Options{})
		require.NoError(t, err)
		assert.Empty(t, doc.Stages)
		assert.Empty(t, doc.IgnoreIf)
	})

	t.Run("windows line endings", func(t *testing.T) {
		doc, err := Parse("Run:\r\n  stdout: x\r\n", Options{})
		require.NoError(t, err)
		assert.Equal(t, m.Pattern{"x"}, doc.Stages["run"].Stdout)
	})
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		line int
		msg  string
	}{
		{"stage header with value", "Run: x\n", 1, "can't have a value"},
		{"duplicate stage", "Run:\n  status: error\nrun:\n", 3, "more than once"},
		{"missing terminator", "Run:\n  status error\n", 2, "invalid key terminator"},
		{"missing header terminator", "Run\n", 1, "invalid key terminator"},
		{"bad status", "Run:\n  status: sometimes\n", 2, "unknown status"},
		{"status without value", "Run:\n  status:\n", 2, "without value"},
		{"env without equals", "Run:\n  env: FOO\n", 2, "key=value"},
		{"env with empty key", "Run:\n  env: =1\n", 2, "empty key"},
		{"exec-arg without value", "Run:\n  exec-arg:\n\n", 2, "without value"},
		{"stdout without value", "Run:\n  stdout:\n  status: success\n", 2, "key 'stdout' without value"},
		{"stderr without value", "Run:\n  status: error\n  stderr:\n", 3, "key 'stderr' without value"},
		{"stdin without value", "Run:\n  stdin:\n", 2, "key 'stdin' without value"},
		{"rerun-if-stdout without value", "Run:\n  rerun-if-stdout:\n", 2, "without value"},
		{"rerun-if-stderr without value", "Run:\n  rerun-if-stderr:\n\n", 2, "without value"},
		{"unknown key", "Run:\n  stdot: x\n", 2, "unknown key 'stdot'"},
		{"unknown key without value", "Run:\n  stdot:\n", 2, "unknown key 'stdot'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text, Options{})
			require.Error(t, err)

			var perr *Error
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.line, perr.Line)
			assert.Contains(t, perr.Msg, tt.msg)
		})
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want m.Status
	}{
		{"Success", m.Success},
		{"ERROR", m.Status{Kind: m.StatusError}},
		{"signal", m.Status{Kind: m.StatusSignal}},
		{"42", m.ExitCode(42)},
		{"-1", m.ExitCode(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStatus(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseStatus("1.5")
	assert.Error(t, err)
}
