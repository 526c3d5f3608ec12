package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// plainAfterTest leaves the colour globals as piped output would see them.
func plainAfterTest(t *testing.T) {
	t.Helper()
	t.Cleanup(func() { applyColorMode(io.Discard) })
}

func TestColorFlag_AlwaysColorsPipedOutput(t *testing.T) {
	isolateEnv(t)
	plainAfterTest(t)

	out, _, err := execRoot(t, "--color", "always", "config", "server.project")
	require.NoError(t, err)
	assert.Equal(t, "\033[2m(not set)\033[0m\n", out)
}

func TestColorFlag_NeverStripsCodes(t *testing.T) {
	isolateEnv(t)
	plainAfterTest(t)
	enableColors()

	out, _, err := execRoot(t, "--color", "never", "config", "server.project")
	require.NoError(t, err)
	assert.Equal(t, "(not set)\n", out)
}

func TestColorFlag_AutoIsPlainWhenPiped(t *testing.T) {
	isolateEnv(t)
	plainAfterTest(t)
	enableColors()

	out, _, err := execRoot(t, "config", "server.project")
	require.NoError(t, err)
	assert.NotContains(t, out, "\033[")
}

func TestColorFlag_AlwaysMarksAddedRows(t *testing.T) {
	isolateEnv(t)
	plainAfterTest(t)
	srv, _ := newAPIServer(t, widgetRoutes())

	out, _, err := execRoot(t, "widgets", "--plain", "--color", "always",
		"--endpoint", srv.URL, "--project", "demo", "--dashboard", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "\033[0;33m(added)\033[0m")
}

func TestShouldDisableColors(t *testing.T) {
	tests := []struct {
		name    string
		noColor string
		term    string
		want    bool
	}{
		{name: "NO_COLOR set", noColor: "1", term: "xterm-256color", want: true},
		{name: "dumb terminal", term: "dumb", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", tt.noColor)
			t.Setenv("TERM", tt.term)
			assert.Equal(t, tt.want, shouldDisableColors())
		})
	}
}

func TestTerminalWidth_PipedOutput(t *testing.T) {
	tests := []struct {
		columns string
		want    int
	}{
		{columns: "", want: 80},
		{columns: "120", want: 120},
		{columns: "wide", want: 80},
		{columns: "0", want: 80},
	}
	for _, tt := range tests {
		t.Run("COLUMNS="+tt.columns, func(t *testing.T) {
			t.Setenv("COLUMNS", tt.columns)
			assert.Equal(t, tt.want, terminalWidth(&bytes.Buffer{}))
		})
	}
}

func TestTerminalWidth_RegularFileIsNotATerminal(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out.txt"))
	require.NoError(t, err)
	defer f.Close()

	_, err = ttyColumns(f)
	assert.Error(t, err)

	t.Setenv("COLUMNS", "100")
	assert.Equal(t, 100, terminalWidth(f))
}

func TestPlainRows_TruncateToColumns(t *testing.T) {
	isolateEnv(t)
	srv, _ := newAPIServer(t, widgetRoutes())
	t.Setenv("COLUMNS", "44")

	out, _, err := execRoot(t, "widgets", "--plain", "--endpoint", srv.URL, "--project", "demo")
	require.NoError(t, err)
	assert.Contains(t, out, "Launch stat")
	assert.NotContains(t, out, "Launch statistics")
	assert.Contains(t, out, "Defect trend")
}
