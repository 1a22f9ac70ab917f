package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

// writeTemp writes content to a file under a test temp dir
func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)

	os.Stdout = w
	fnErr := fn()
	w.Close()
	os.Stdout = origStdout

	var buf bytes.Buffer
	_, err = buf.ReadFrom(r)
	require.NoError(t, err)

	return buf.String(), fnErr
}

func TestDetectCommand(t *testing.T) {
	tests := []struct {
		name       string
		file       string
		content    string
		wantFormat string
		wantErr    bool
	}{
		{
			name:       "json object",
			file:       "a.json",
			content:    `{"a": 1}`,
			wantFormat: "json",
		},
		{
			name:       "yaml mapping",
			file:       "a.yaml",
			content:    "a: 1\nb: two\n",
			wantFormat: "yaml",
		},
		{
			name:       "xml element",
			file:       "a.xml",
			content:    `<root><a>1</a></root>`,
			wantFormat: "xml",
		},
		{
			name:       "markdown headings",
			file:       "a.md",
			content:    "# Title\n\nbody\n",
			wantFormat: "markdown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTemp(t, tt.file, tt.content)
			out, err := captureOutput(t, func() error {
				return runDetect([]string{path})
			})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, out, tt.wantFormat)
		})
	}
}

func TestConvertCommand(t *testing.T) {
	path := writeTemp(t, "config.json", `{"name": "demo", "port": 8080}`)

	out, err := captureOutput(t, func() error {
		return runConvert([]string{path}, "yaml", 2, "")
	})
	require.NoError(t, err)
	assert.Contains(t, out, "name: demo")
	assert.Contains(t, out, "port: 8080")
}

func TestConvertCommandUnknownFormat(t *testing.T) {
	path := writeTemp(t, "a.json", `{}`)

	_, err := captureOutput(t, func() error {
		return runConvert([]string{path}, "csv", 2, "")
	})
	assert.Error(t, err)
}

func TestConvertCommandOutputFile(t *testing.T) {
	path := writeTemp(t, "a.json", `{"a": 1}`)
	dest := filepath.Join(t.TempDir(), "a.yaml")

	_, err := captureOutput(t, func() error {
		return runConvert([]string{path}, "yaml", 2, dest)
	})
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(data), "a: 1")
}

func TestFmtCommandInPlace(t *testing.T) {
	path := writeTemp(t, "messy.json", `{"a":1,"b":{"c":2}}`)

	_, err := captureOutput(t, func() error {
		return runFmt([]string{path}, 2, true)
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "  \"a\": 1")
}

func TestDiffCommandIdentical(t *testing.T) {
	// Same document in two syntaxes compares equal.
	a := writeTemp(t, "a.json", `{"name": "demo", "port": 8080}`)
	b := writeTemp(t, "b.yaml", "name: demo\nport: 8080\n")

	out, err := captureOutput(t, func() error {
		return runDiff([]string{a, b}, "json")
	})
	require.NoError(t, err)
	assert.Contains(t, out, "identical")
}

func TestDiffCommandDifferences(t *testing.T) {
	a := writeTemp(t, "a.json", `{"port": 8080}`)
	b := writeTemp(t, "b.json", `{"port": 9090}`)

	out, err := captureOutput(t, func() error {
		return runDiff([]string{a, b}, "json")
	})
	assert.ErrorIs(t, err, errDifferences)
	assert.Contains(t, out, "8080")
	assert.Contains(t, out, "9090")
}
