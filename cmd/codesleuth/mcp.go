package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/wisegam/codesleuth/internal/mcpserver"
	"github.com/wisegam/codesleuth/pkg/config"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start an MCP (Model Context Protocol) server over stdio",
		Description: `Exposes CodeSleuth as tools an LLM client can call.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "codesleuth": {
        "command": "codesleuth",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - analyze_project    Large files, function complexity, and import cycles
  - dependency_graph   Import graph as DOT, Mermaid, or JSON`,
		Action: runMCPCmd,
		Subcommands: []*cli.Command{
			{
				Name:   "manifest",
				Usage:  "Print the server.json registry manifest",
				Action: runMCPManifestCmd,
			},
		},
	}
}

func runMCPCmd(c *cli.Context) error {
	result, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(c.Context)
	defer cancel()
	return mcpserver.NewServer(version, result.Config).Run(ctx)
}

func runMCPManifestCmd(c *cli.Context) error {
	data, err := mcpserver.GenerateManifest(version)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, string(data))
	return err
}
