package main

import (
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/wisegam/codesleuth/internal/output"
	"github.com/wisegam/codesleuth/internal/service/analysis"
	"github.com/wisegam/codesleuth/pkg/analyzer/graph"
	"github.com/wisegam/codesleuth/pkg/diag"
)

func graphCmd() *cli.Command {
	return &cli.Command{
		Name:      "graph",
		Aliases:   []string{"dag"},
		Usage:     "Export the import dependency graph",
		ArgsUsage: "[dir]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "render",
				Aliases: []string{"r"},
				Value:   "dot",
				Usage:   "Graph rendering: dot, mermaid, json",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the graph to a file",
			},
			&cli.StringFlag{
				Name:  "direction",
				Value: string(graph.DirectionLR),
				Usage: "Mermaid layout direction: TD, LR, BT, RL",
			},
			&cli.IntFlag{
				Name:  "max-cycles",
				Usage: "Stop enumerating cycles after this many (0 = all)",
			},
			&cli.IntFlag{
				Name:    "jobs",
				Aliases: []string{"j"},
				Value:   1,
				Usage:   "Files analyzed concurrently",
			},
		},
		Action: runGraphCmd,
	}
}

func runGraphCmd(c *cli.Context) error {
	root, err := getRoot(c)
	if err != nil {
		return err
	}
	render := c.String("render")
	switch render {
	case "dot", "mermaid", "json":
	default:
		return fmt.Errorf("unknown --render %q (want dot, mermaid or json)", render)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	applyColor(cfg)

	logger := newLogger(c.App.ErrWriter, c.Bool("verbose"), c.Bool("quiet"))
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := signalContext(c.Context)
	defer cancel()
	ctx, finish := withProgress(ctx, c, "Building dependency graph")

	svc := analysis.New(analysis.WithConfig(cfg), analysis.WithCycleLimit(c.Int("max-cycles")))
	res, err := svc.Analyze(ctx, root)
	finish()
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	diag.ReplayEntries(logger, res.Diagnostics)

	formatter, err := newFormatter(c, "json", false)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if err := writeGraph(formatter, res, render, graph.MermaidDirection(c.String("direction"))); err != nil {
		return err
	}

	if !c.Bool("quiet") {
		if err := output.GraphSummaryTable(res.GraphSummary).RenderText(c.App.ErrWriter, cfg.Output.Color); err != nil {
			return err
		}
	}
	if res.HasErrors() {
		return exitFilesFailed(len(res.Errors))
	}
	return nil
}

func writeGraph(f *output.Formatter, res *analysis.Result, render string, direction graph.MermaidDirection) error {
	switch render {
	case "mermaid":
		opts := graph.DefaultMermaidOptions()
		opts.Direction = direction
		_, err := io.WriteString(f.Writer(), res.Graph.Mermaid(opts, res.Cycles))
		return err
	case "json":
		return f.Output(struct {
			Graph   *graph.DependencyGraph `json:"graph" toon:"graph"`
			Summary graph.Summary          `json:"summary" toon:"summary"`
			Cycles  []graph.Cycle          `json:"cycles" toon:"cycles"`
		}{res.Graph.Snapshot(), res.GraphSummary, res.Cycles})
	default:
		dot, err := res.Graph.DOT("dependencies", res.Cycles)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(f.Writer(), string(dot))
		return err
	}
}
