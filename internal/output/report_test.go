package output

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wisegam/codesleuth/internal/service/analysis"
	"github.com/wisegam/codesleuth/pkg/analyzer/graph"
	"github.com/wisegam/codesleuth/pkg/source"
)

func analyze(t *testing.T, files map[string]string, paths ...string) *analysis.Result {
	t.Helper()
	svc := analysis.New(analysis.WithSource(source.NewMemory(files)))
	res, err := svc.AnalyzeFiles(context.Background(), paths)
	require.NoError(t, err)
	return res
}

func renderText(t *testing.T, res *analysis.Result) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, NewAnalysisReport(res).RenderText(&buf, false))
	return buf.String()
}

func TestAnalysisReport_Text(t *testing.T) {
	res := analyze(t, map[string]string{
		"module_a": "import module_b\n\ndef simple():\n    return 1\n",
		"module_b": "import module_a\n\ndef busy(x):\n" +
			"    if x > 1 and x < 9:\n        return 1\n    for i in range(x):\n        if i:\n            x -= 1\n    return x\n",
	}, "module_a", "module_b")

	out := renderText(t, res)
	assert.Contains(t, out, "Large files (over 500 lines):\n")
	assert.Contains(t, out, "Complexity report for module_a:\n  - simple: Complexity = 1 (Low Complexity - OK)\n")
	assert.Contains(t, out, "  - busy: Complexity = 5 (Low Complexity - OK)\n")
	assert.Contains(t, out, "Average cyclomatic complexity for the project: 3.00\n")
	assert.Contains(t, out, "Circular dependencies detected:\n  module_a -> module_b -> module_a\n")
	assert.NotContains(t, out, noCyclesLine)
	assert.NotContains(t, out, "Errors")

	// Sections appear in a fixed order.
	large := strings.Index(out, "Large files")
	complexity := strings.Index(out, "Cyclomatic complexity of functions")
	average := strings.Index(out, "Average cyclomatic")
	cycles := strings.Index(out, "Circular dependencies")
	assert.True(t, large < complexity && complexity < average && average < cycles)
}

func TestAnalysisReport_TextEmpty(t *testing.T) {
	res := analyze(t, map[string]string{"c.py": "X = 1\n"}, "c.py")

	out := renderText(t, res)
	assert.Contains(t, out, noFunctionsLine)
	assert.Contains(t, out, noCyclesLine)
	assert.NotContains(t, out, "Average")
}

func TestAnalysisReport_TextErrors(t *testing.T) {
	res := analyze(t, map[string]string{
		"ok.py":  "def f():\n    pass\n",
		"bad.py": "def broken(:\n",
	}, "bad.py", "missing.py", "ok.py")

	out := renderText(t, res)
	assert.Contains(t, out, "Errors (2 files):\n")
	assert.Contains(t, out, "  bad.py: ")
	assert.Contains(t, out, "  missing.py: ")
}

func TestAnalysisReport_TextTruncatedCycles(t *testing.T) {
	res := &analysis.Result{
		MaxLines:        500,
		Cycles:          []graph.Cycle{{"a", "b"}},
		CyclesTruncated: true,
	}
	res.Report.Empty = true

	out := renderText(t, res)
	assert.Contains(t, out, "(stopped after 1 cycles)")
}

func TestAnalysisReport_Markdown(t *testing.T) {
	res := analyze(t, map[string]string{
		"a.py": "def f(x):\n    if x:\n        return 1\n    return 0\n",
	}, "a.py")

	var buf bytes.Buffer
	require.NoError(t, NewAnalysisReport(res).RenderMarkdown(&buf))
	out := buf.String()

	assert.Contains(t, out, "# CodeSleuth report\n")
	assert.Contains(t, out, "| File | Function | Line | Complexity | Classification |\n")
	assert.Contains(t, out, "| a.py | f | 1 | 2 | Low Complexity - OK |\n")
	assert.Contains(t, out, "Average cyclomatic complexity for the project: **2.00**")
	assert.Contains(t, out, noCyclesLine)
}

func TestAnalysisReport_JSON(t *testing.T) {
	res := analyze(t, map[string]string{
		"module_a": "import module_b\n",
		"module_b": "import module_a\n",
		"bad.py":   "def broken(:\n",
	}, "bad.py", "module_a", "module_b")

	var buf bytes.Buffer
	require.NoError(t, NewWriterFormatter(FormatJSON, &buf, false).Output(NewAnalysisReport(res)))

	var decoded struct {
		Cycles [][]string `json:"cycles"`
		Errors []struct {
			Path string `json:"path"`
		} `json:"errors"`
		Report struct {
			Empty bool `json:"empty"`
		} `json:"report"`
		MaxLines int `json:"max_lines"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, [][]string{{"module_a", "module_b"}}, decoded.Cycles)
	require.Len(t, decoded.Errors, 1)
	assert.Equal(t, "bad.py", decoded.Errors[0].Path)
	assert.True(t, decoded.Report.Empty)
	assert.Equal(t, 500, decoded.MaxLines)
}

func TestAnalysisReport_TOON(t *testing.T) {
	res := analyze(t, map[string]string{"a.py": "def f():\n    pass\n"}, "a.py")

	var buf bytes.Buffer
	require.NoError(t, NewWriterFormatter(FormatTOON, &buf, false).Output(NewAnalysisReport(res)))
	assert.Contains(t, buf.String(), "max_lines: 500")
}

func TestGraphSummaryTable(t *testing.T) {
	g := graph.New()
	g.AddUnit("a", []string{"b"})
	g.AddUnit("b", []string{"a"})
	s := g.Summarize(g.Cycles())

	tbl := GraphSummaryTable(s)
	assert.Equal(t, s, tbl.RenderData())

	var buf bytes.Buffer
	require.NoError(t, tbl.RenderMarkdown(&buf))
	assert.Contains(t, buf.String(), "| Cycles | 1 |")
	assert.Contains(t, buf.String(), "| Nodes | 2 |")
}
