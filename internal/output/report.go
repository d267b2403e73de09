package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"

	"github.com/wisegam/codesleuth/internal/service/analysis"
	"github.com/wisegam/codesleuth/pkg/analyzer/graph"
	"github.com/wisegam/codesleuth/pkg/analyzer/report"
)

const (
	noFunctionsLine = "No functions found to analyze."
	noCyclesLine    = "No circular dependencies detected."
)

// AnalysisReport renders a full analysis run.
type AnalysisReport struct {
	Result *analysis.Result
}

// NewAnalysisReport wraps res for rendering.
func NewAnalysisReport(res *analysis.Result) *AnalysisReport {
	return &AnalysisReport{Result: res}
}

func (r *AnalysisReport) RenderData() any {
	return r.Result
}

// bandText colors a band description by severity.
func bandText(b report.Band, colored bool) string {
	text := b.Description()
	if !colored {
		return text
	}
	switch b {
	case report.BandRequired:
		return color.RedString(text)
	case report.BandSuggested:
		return color.YellowString(text)
	default:
		return color.GreenString(text)
	}
}

func (r *AnalysisReport) RenderText(w io.Writer, colored bool) error {
	res := r.Result

	heading(w, fmt.Sprintf("Large files (over %d lines):", res.MaxLines), colored)
	for _, u := range res.LargeFiles {
		fmt.Fprintf(w, "  %s (%d lines)\n", u.Path, u.Lines)
	}

	fmt.Fprintln(w)
	heading(w, "Cyclomatic complexity of functions:", colored)
	for _, group := range res.Report.ByFile() {
		fmt.Fprintf(w, "\nComplexity report for %s:\n", group.Path)
		for _, c := range group.Functions {
			fmt.Fprintf(w, "  - %s: Complexity = %d (%s)\n",
				c.Function.QualifiedName, c.Function.Score, bandText(c.Band, colored))
		}
	}

	fmt.Fprintln(w)
	if res.Report.Empty {
		fmt.Fprintln(w, noFunctionsLine)
	} else {
		fmt.Fprintf(w, "Average cyclomatic complexity for the project: %.2f\n", res.Report.Mean)
		fmt.Fprintln(w)
		if err := bandTable(res.Report).RenderText(w, colored); err != nil {
			return err
		}
	}

	fmt.Fprintln(w)
	renderCyclesText(w, res.Cycles, res.CyclesTruncated, colored)

	if len(res.Errors) > 0 {
		fmt.Fprintln(w)
		heading(w, fmt.Sprintf("Errors (%d files):", len(res.Errors)), colored)
		for _, e := range res.Errors {
			line := "  " + e.Error()
			if colored {
				line = color.RedString(line)
			}
			fmt.Fprintln(w, line)
		}
	}
	return nil
}

func renderCyclesText(w io.Writer, cycles []graph.Cycle, truncated, colored bool) {
	if len(cycles) == 0 {
		fmt.Fprintln(w, noCyclesLine)
		return
	}
	title := "Circular dependencies detected:"
	if colored {
		title = color.New(color.Bold, color.FgRed).Sprint(title)
	}
	fmt.Fprintln(w, title)
	for _, c := range cycles {
		fmt.Fprintf(w, "  %s\n", c)
	}
	if truncated {
		fmt.Fprintf(w, "  (stopped after %d cycles)\n", len(cycles))
	}
}

func bandTable(s report.Summary) *Table {
	return &Table{
		Headers: []string{"Band", "Functions"},
		Rows: [][]string{
			{report.BandOK.Description(), strconv.Itoa(s.Counts.OK)},
			{report.BandSuggested.Description(), strconv.Itoa(s.Counts.Suggested)},
			{report.BandRequired.Description(), strconv.Itoa(s.Counts.Required)},
		},
		Footer: []string{"Total", strconv.Itoa(s.Total)},
	}
}

func (r *AnalysisReport) RenderMarkdown(w io.Writer) error {
	res := r.Result

	fmt.Fprintf(w, "# CodeSleuth report\n\n")

	fmt.Fprintf(w, "## Large files (over %d lines)\n\n", res.MaxLines)
	if len(res.LargeFiles) == 0 {
		fmt.Fprintln(w, "None.")
	}
	for _, u := range res.LargeFiles {
		fmt.Fprintf(w, "- `%s` (%d lines)\n", u.Path, u.Lines)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "## Cyclomatic complexity\n\n")
	if res.Report.Empty {
		fmt.Fprintf(w, "%s\n\n", noFunctionsLine)
	} else {
		rows := make([][]string, 0, len(res.Report.Functions))
		for _, c := range res.Report.Functions {
			rows = append(rows, []string{
				c.Function.Path,
				c.Function.QualifiedName,
				strconv.Itoa(int(c.Function.Line)),
				strconv.Itoa(c.Function.Score),
				c.Band.Description(),
			})
		}
		writeMarkdownTable(w, []string{"File", "Function", "Line", "Complexity", "Classification"}, rows)
		fmt.Fprintf(w, "\nAverage cyclomatic complexity for the project: **%.2f**\n\n", res.Report.Mean)
	}

	fmt.Fprintf(w, "## Circular dependencies\n\n")
	if len(res.Cycles) == 0 {
		fmt.Fprintf(w, "%s\n\n", noCyclesLine)
	} else {
		for _, c := range res.Cycles {
			fmt.Fprintf(w, "- `%s`\n", c)
		}
		fmt.Fprintln(w)
	}

	if len(res.Errors) > 0 {
		fmt.Fprintf(w, "## Errors\n\n")
		for _, e := range res.Errors {
			fmt.Fprintf(w, "- `%s`: %v\n", e.Path, e.Err)
		}
		fmt.Fprintln(w)
	}
	return nil
}

// GraphSummaryTable renders the headline numbers of a dependency graph.
func GraphSummaryTable(s graph.Summary) *Table {
	return &Table{
		Title:   "Dependency graph",
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Nodes", strconv.Itoa(s.TotalNodes)},
			{"File nodes", strconv.Itoa(s.FileNodes)},
			{"Edges", strconv.Itoa(s.TotalEdges)},
			{"Self-imports", strconv.Itoa(s.SelfLoops)},
			{"Strongly connected components", strconv.Itoa(s.StronglyConnectedComponents)},
			{"Weak components", strconv.Itoa(s.Components)},
			{"Cycles", strconv.Itoa(s.CycleCount)},
		},
		Data: s,
	}
}
