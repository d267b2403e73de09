package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/wisegam/codesleuth/internal/testutil"
)

const complexSource = `def simple():
    return 1


def branchy(a, b):
    if a and b:
        return 1
    for i in range(3):
        if i:
            continue
    return 0
`

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errBuf bytes.Buffer
	app := newApp(&out, &errBuf)
	err := app.Run(append([]string{"codesleuth", "--quiet", "--no-color"}, args...))
	return out.String(), errBuf.String(), err
}

func project(t *testing.T) string {
	t.Helper()
	return testutil.ProjectDir(t, map[string]string{
		"big.py":      testutil.PythonLines(20),
		"logic.py":    complexSource,
		"module_a.py": "import module_b\n",
		"module_b.py": "import module_a\n",
	})
}

func TestAnalyze_Text(t *testing.T) {
	root := project(t)
	out, _, err := run(t, "analyze", "--max-lines", "10", root)
	require.NoError(t, err)

	assert.Contains(t, out, "Large files (over 10 lines):")
	assert.Contains(t, out, filepath.Join(root, "big.py")+" (20 lines)")
	assert.Contains(t, out, "simple: Complexity = 1 (Low Complexity - OK)")
	assert.Contains(t, out, "branchy: Complexity = 5 (Low Complexity - OK)")
	assert.Contains(t, out, "Average cyclomatic complexity for the project: 3.00")
	assert.Contains(t, out, "No circular dependencies detected.")
}

func TestAnalyze_RootAction(t *testing.T) {
	root := project(t)
	viaRoot, _, err := run(t, "--max_lines", "10", root)
	require.NoError(t, err)
	viaCmd, _, err := run(t, "analyze", "--max_lines", "10", root)
	require.NoError(t, err)
	assert.Equal(t, viaCmd, viaRoot)
}

func TestAnalyze_JSON(t *testing.T) {
	root := project(t)
	out, _, err := run(t, "analyze", "--format", "json", "--complexity-low", "2", root)
	require.NoError(t, err)

	var payload struct {
		Root   string `json:"root"`
		Report struct {
			Total  int `json:"total"`
			Counts struct {
				OK        int `json:"ok"`
				Suggested int `json:"refactor_suggested"`
			} `json:"counts"`
		} `json:"report"`
		LargeFiles []any `json:"large_files"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, root, payload.Root)
	assert.Equal(t, 2, payload.Report.Total)
	assert.Equal(t, 1, payload.Report.Counts.OK)
	assert.Equal(t, 1, payload.Report.Counts.Suggested)
	assert.Empty(t, payload.LargeFiles)
}

func TestAnalyze_OutputFile(t *testing.T) {
	root := project(t)
	dest := filepath.Join(t.TempDir(), "report.md")
	out, _, err := run(t, "analyze", "--format", "markdown", "--output", dest, root)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# CodeSleuth report")
}

func TestAnalyze_BadFileExitsOne(t *testing.T) {
	root := testutil.ProjectDir(t, map[string]string{
		"good.py":   "def ok():\n    return 1\n",
		"broken.py": "def broken(:\n",
	})
	out, _, err := run(t, "analyze", root)
	require.Error(t, err)

	var coder cli.ExitCoder
	require.ErrorAs(t, err, &coder)
	assert.Equal(t, 1, coder.ExitCode())
	assert.Contains(t, out, "ok: Complexity = 1")
	assert.Contains(t, out, "Errors (1 files):")
}

func TestAnalyze_Python2FileExitsOne(t *testing.T) {
	root := testutil.ProjectDir(t, map[string]string{
		"legacy.py": "def g():\n    print \"hi\"\n",
	})
	out, _, err := run(t, "analyze", root)

	var coder cli.ExitCoder
	require.ErrorAs(t, err, &coder)
	assert.Equal(t, 1, coder.ExitCode())
	assert.Contains(t, out, "print statement")
	assert.Contains(t, out, "No functions found to analyze.")
}

func TestAnalyze_FailFast(t *testing.T) {
	root := testutil.ProjectDir(t, map[string]string{
		"broken.py": "def broken(:\n",
	})
	out, _, err := run(t, "analyze", "--fail-fast", root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "analysis failed")
	assert.Empty(t, out)
}

func TestAnalyze_TooManyArgs(t *testing.T) {
	_, _, err := run(t, "analyze", "a", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected one directory")
}

func TestAnalyze_InvalidThresholds(t *testing.T) {
	_, _, err := run(t, "analyze", "--max-lines", "-1", project(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestAnalyze_ConfigFile(t *testing.T) {
	root := project(t)
	cfgPath := filepath.Join(t.TempDir(), "codesleuth.toml")
	testutil.WriteFile(t, cfgPath, "[thresholds]\nmax_lines = 10\n")

	out, _, err := run(t, "--config", cfgPath, "analyze", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Large files (over 10 lines):")

	// Flags win over the file.
	out, _, err = run(t, "--config", cfgPath, "analyze", "--max-lines", "100", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Large files (over 100 lines):")
	assert.NotContains(t, out, "big.py")
}

func TestGraph_Dot(t *testing.T) {
	out, _, err := run(t, "graph", project(t))
	require.NoError(t, err)
	assert.Contains(t, out, "strict digraph dependencies {")
}

func TestGraph_Mermaid(t *testing.T) {
	out, _, err := run(t, "graph", "--render", "mermaid", "--direction", "TD", project(t))
	require.NoError(t, err)
	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, `["module_b"]`)
}

func TestGraph_JSON(t *testing.T) {
	out, _, err := run(t, "graph", "-r", "json", project(t))
	require.NoError(t, err)

	var payload struct {
		Summary struct {
			TotalNodes int `json:"total_nodes"`
		} `json:"summary"`
		Cycles []any `json:"cycles"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Positive(t, payload.Summary.TotalNodes)
	assert.Empty(t, payload.Cycles)
}

func TestGraph_InvalidRender(t *testing.T) {
	_, _, err := run(t, "graph", "--render", "png", project(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown --render")
}

func TestConfigShow(t *testing.T) {
	out, _, err := run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "# Default configuration (no config file found)")
	assert.Contains(t, out, "max_lines = 500")

	out, _, err = run(t, "config", "show", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "max_lines: 500")

	_, _, err = run(t, "config", "show", "--format", "ini")
	require.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "codesleuth.yaml")
	testutil.WriteFile(t, cfgPath, "thresholds:\n  max_lines: 300\n")

	out, _, err := run(t, "--config", cfgPath, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration valid: "+cfgPath)

	bad := filepath.Join(t.TempDir(), "codesleuth.yaml")
	testutil.WriteFile(t, bad, "thresholds:\n  max_lines: -5\n")
	out, _, err = run(t, "--config", bad, "config", "validate")
	require.Error(t, err)
	assert.Contains(t, out, "Configuration validation failed:")
}

func TestMCPManifest(t *testing.T) {
	out, _, err := run(t, "mcp", "manifest")
	require.NoError(t, err)
	assert.Contains(t, out, `"io.github.wisegam/codesleuth"`)
}
