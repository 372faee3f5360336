package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/varoOP/malmirror/internal/jikan"
)

func runVersion(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append([]string{"version"}, args...))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		_ = versionCmd.Flags().Set("short", "false")
	})

	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestVersionCommand(t *testing.T) {
	out := runVersion(t)
	assert.Contains(t, out, "malmirror dev (")
	assert.Contains(t, out, jikan.DefaultBaseURL)
	assert.NotContains(t, out, "commit:")
}

func TestVersionCommand_Short(t *testing.T) {
	assert.Equal(t, "dev\n", runVersion(t, "--short"))
}
