package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/wisegam/codesleuth/internal/output"
	"github.com/wisegam/codesleuth/internal/service/analysis"
	"github.com/wisegam/codesleuth/pkg/diag"
)

func analyzeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "max-lines",
			Aliases: []string{"max_lines"},
			Value:   500,
			Usage:   "Report files with more lines than this",
		},
		&cli.IntFlag{
			Name:    "complexity-low",
			Aliases: []string{"complexity_low"},
			Value:   5,
			Usage:   "Highest complexity classified as OK",
		},
		&cli.IntFlag{
			Name:    "complexity-medium",
			Aliases: []string{"complexity_medium"},
			Value:   10,
			Usage:   "Highest complexity classified as 'consider refactoring'",
		},
		&cli.BoolFlag{
			Name:  "fail-fast",
			Usage: "Abort on the first unreadable or unparsable file",
		},
		&cli.IntFlag{
			Name:    "jobs",
			Aliases: []string{"j"},
			Value:   1,
			Usage:   "Files analyzed concurrently",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Value:   "text",
			Usage:   "Output format: text, json, markdown, toon",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write the report to a file",
		},
	}
}

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"a"},
		Usage:     "Report large files, function complexity, and import cycles",
		ArgsUsage: "[dir]",
		Flags:     analyzeFlags(),
		Action:    runAnalyzeCmd,
	}
}

func runAnalyzeCmd(c *cli.Context) error {
	root, err := getRoot(c)
	if err != nil {
		return err
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
	ctx, finish := withProgress(ctx, c, "Analyzing")

	res, err := analysis.New(analysis.WithConfig(cfg)).Analyze(ctx, root)
	finish()
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	diag.ReplayEntries(logger, res.Diagnostics)

	formatter, err := newFormatter(c, cfg.Output.Format, cfg.Output.Color)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if err := formatter.Output(output.NewAnalysisReport(res)); err != nil {
		return err
	}
	if res.HasErrors() {
		return exitFilesFailed(len(res.Errors))
	}
	return nil
}
