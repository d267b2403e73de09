package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to config file (TOML, YAML, or JSON)",
			EnvVars: []string{"CODESLEUTH_CONFIG"},
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Log debug diagnostics to stderr",
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "Only log errors; hide the progress bar",
		},
		&cli.BoolFlag{
			Name:  "no-color",
			Usage: "Disable colored output",
		},
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "codesleuth",
		Usage:     "Find large files, complex functions, and import cycles in Python code",
		Version:   version,
		ArgsUsage: "[dir]",
		Writer:    stdout,
		ErrWriter: stderr,
		Description: `CodeSleuth walks a Python project and reports:
  - files longer than --max-lines
  - the cyclomatic complexity of every function, classified against
    --complexity-low and --complexity-medium
  - circular import dependencies

Running "codesleuth <dir>" is the same as "codesleuth analyze <dir>".`,
		Flags:  append(globalFlags(), analyzeFlags()...),
		Action: runAnalyzeCmd,
		// main owns exiting so tests can observe exit codes.
		ExitErrHandler: func(*cli.Context, error) {},
		Commands: []*cli.Command{
			analyzeCmd(),
			graphCmd(),
			configCmd(),
			mcpCmd(),
		},
	}
}

func main() {
	app := newApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		if msg := err.Error(); msg != "" {
			color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", msg)
		}
		if coder, ok := err.(cli.ExitCoder); ok {
			os.Exit(coder.ExitCode())
		}
		os.Exit(1)
	}
}

// exitFilesFailed is returned when the report was produced but some files
// could not be read or parsed.
func exitFilesFailed(n int) cli.ExitCoder {
	return cli.Exit(fmt.Sprintf("%d file(s) failed to read or parse", n), 1)
}
