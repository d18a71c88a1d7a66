package cmd

import (
	"bytes"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd_Output(t *testing.T) {
	cmd := newVersionCmd()

	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())

	version, _ := buildVersion()
	assert.Contains(t, out.String(), "langtest "+version+"\n")
	assert.Contains(t, out.String(), runtime.Version()+" "+runtime.GOOS+"/"+runtime.GOARCH)
}

func TestVersionCmd_RejectsArgs(t *testing.T) {
	cmd := newVersionCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"extra"})

	assert.Error(t, cmd.Execute())
}

func TestBuildVersion_NeverEmpty(t *testing.T) {
	version, _ := buildVersion()
	assert.NotEmpty(t, version)
}
