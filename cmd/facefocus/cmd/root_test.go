package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandShowsHelp(t *testing.T) {
	cmd := GetRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "facefocus")
	assert.Contains(t, out.String(), "image")
	assert.Contains(t, out.String(), "serve")
}

func TestVersionCommand(t *testing.T) {
	cmd := GetRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "facefocus")
}

func TestImageCommandRequiresArgs(t *testing.T) {
	cmd := GetRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"image"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no input files")
}

func TestBatchCommandRequiresDirectory(t *testing.T) {
	cmd := GetRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"batch"})

	assert.Error(t, cmd.Execute())
}
