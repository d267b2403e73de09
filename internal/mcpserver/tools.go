package mcpserver

import (
	"bytes"
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wisegam/codesleuth/internal/output"
	"github.com/wisegam/codesleuth/internal/service/analysis"
	"github.com/wisegam/codesleuth/pkg/analyzer/graph"
	"github.com/wisegam/codesleuth/pkg/config"
)

// AnalyzeInput is shared by every tool.
type AnalyzeInput struct {
	Path   string `json:"path,omitempty" jsonschema:"Directory to analyze. Defaults to the current directory."`
	Format string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

// ProjectInput configures analyze_project. Zero values keep the server's
// configured defaults.
type ProjectInput struct {
	AnalyzeInput
	MaxLines         int  `json:"max_lines,omitempty" jsonschema:"Files with more lines than this are reported as large. Default 500."`
	ComplexityLow    int  `json:"complexity_low,omitempty" jsonschema:"Highest score still classified ok. Default 5."`
	ComplexityMedium int  `json:"complexity_medium,omitempty" jsonschema:"Highest score classified refactor-suggested. Default 10."`
	FailFast         bool `json:"fail_fast,omitempty" jsonschema:"Abort on the first unreadable or unparsable file instead of reporting it."`
}

// GraphInput configures dependency_graph.
type GraphInput struct {
	AnalyzeInput
	Graph     string `json:"graph,omitempty" jsonschema:"Graph rendering: dot (default), mermaid, or json."`
	MaxCycles int    `json:"max_cycles,omitempty" jsonschema:"Stop enumerating cycles after this many. Default unlimited."`
}

func getPath(input AnalyzeInput) string {
	if input.Path == "" {
		return "."
	}
	return input.Path
}

func getFormat(input AnalyzeInput) output.Format {
	switch input.Format {
	case "json":
		return output.FormatJSON
	case "markdown", "md":
		return output.FormatMarkdown
	default:
		return output.FormatTOON
	}
}

func formatOutput(data any, format output.Format) (string, error) {
	var buf bytes.Buffer
	if err := output.NewWriterFormatter(format, &buf, false).Output(data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func toolResult(data any, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(data, format)
	if err != nil {
		return nil, nil, err
	}
	return textResult(text), nil, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

// withOverrides copies the server config and applies non-zero inputs.
func (s *Server) withOverrides(input ProjectInput) *config.Config {
	cfg := *s.config
	if input.MaxLines > 0 {
		cfg.Thresholds.MaxLines = input.MaxLines
	}
	if input.ComplexityLow > 0 {
		cfg.Thresholds.ComplexityLow = input.ComplexityLow
	}
	if input.ComplexityMedium > 0 {
		cfg.Thresholds.ComplexityMedium = input.ComplexityMedium
	}
	if input.FailFast {
		cfg.Run.FailFast = true
	}
	return &cfg
}

func (s *Server) handleAnalyzeProject(ctx context.Context, req *mcp.CallToolRequest, input ProjectInput) (*mcp.CallToolResult, any, error) {
	cfg := s.withOverrides(input)
	if err := cfg.Validate(); err != nil {
		return toolError(err.Error())
	}

	res, err := analysis.New(analysis.WithConfig(cfg)).Analyze(ctx, getPath(input.AnalyzeInput))
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(output.NewAnalysisReport(res), getFormat(input.AnalyzeInput))
}

func (s *Server) handleDependencyGraph(ctx context.Context, req *mcp.CallToolRequest, input GraphInput) (*mcp.CallToolResult, any, error) {
	svc := analysis.New(analysis.WithConfig(s.config), analysis.WithCycleLimit(input.MaxCycles))
	res, err := svc.Analyze(ctx, getPath(input.AnalyzeInput))
	if err != nil {
		return toolError(err.Error())
	}

	summary, err := formatOutput(output.GraphSummaryTable(res.GraphSummary), getFormat(input.AnalyzeInput))
	if err != nil {
		return nil, nil, err
	}

	switch input.Graph {
	case "", "dot":
		dot, err := res.Graph.DOT("dependencies", res.Cycles)
		if err != nil {
			return toolError(err.Error())
		}
		return textResult(string(dot) + "\n" + summary), nil, nil
	case "mermaid":
		return textResult(res.Graph.Mermaid(graph.DefaultMermaidOptions(), res.Cycles) + "\n" + summary), nil, nil
	case "json":
		return toolResult(struct {
			Graph   *graph.DependencyGraph `json:"graph" toon:"graph"`
			Summary graph.Summary          `json:"summary" toon:"summary"`
			Cycles  []graph.Cycle          `json:"cycles" toon:"cycles"`
		}{res.Graph.Snapshot(), res.GraphSummary, res.Cycles}, output.FormatJSON)
	default:
		return toolError(fmt.Sprintf("unknown graph rendering %q (want dot, mermaid or json)", input.Graph))
	}
}
