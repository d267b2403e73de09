package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/pelletier/go-toml"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/wisegam/codesleuth/pkg/config"
)

func configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show the effective configuration",
				Description: `Shows the configuration file layered over the defaults.

Examples:
  codesleuth config show
  codesleuth -c codesleuth.yaml config show --format yaml`,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "toml",
						Usage:   "Output format: toml, yaml",
					},
				},
				Action: runConfigShow,
			},
			{
				Name:  "validate",
				Usage: "Validate a configuration file",
				Description: `Validates a CodeSleuth configuration file for syntax errors and invalid values.

Examples:
  codesleuth config validate
  codesleuth -c .codesleuth/codesleuth.toml config validate`,
				Action: runConfigValidate,
			},
		},
	}
}

func runConfigValidate(c *cli.Context) error {
	result, err := config.LoadConfig(c.String("config"))
	w := c.App.Writer
	if err != nil {
		color.New(color.FgRed).Fprintln(w, "Configuration validation failed:")
		fmt.Fprintf(w, "  - %s\n", err)
		return cli.Exit("", 1)
	}

	if result.Source != "" {
		color.New(color.FgGreen).Fprintf(w, "Configuration valid: %s\n", result.Source)
	} else {
		color.New(color.FgYellow).Fprintln(w, "No config file found. Default configuration is valid.")
	}
	return nil
}

func runConfigShow(c *cli.Context) error {
	result, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}

	var content []byte
	switch c.String("format") {
	case "toml":
		content, err = toml.Marshal(result.Config)
	case "yaml", "yml":
		content, err = yaml.Marshal(result.Config)
	default:
		return fmt.Errorf("unknown config format %q (want toml or yaml)", c.String("format"))
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	w := c.App.Writer
	if result.Source != "" {
		fmt.Fprintf(w, "# Configuration from: %s\n\n", result.Source)
	} else {
		fmt.Fprintln(w, "# Default configuration (no config file found)")
	}
	fmt.Fprint(w, string(content))
	return nil
}
