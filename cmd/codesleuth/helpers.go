package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wisegam/codesleuth/internal/output"
	"github.com/wisegam/codesleuth/internal/progress"
	"github.com/wisegam/codesleuth/pkg/analyzer"
	"github.com/wisegam/codesleuth/pkg/config"
)

// getRoot returns the directory argument, defaulting to ".".
func getRoot(c *cli.Context) (string, error) {
	switch c.Args().Len() {
	case 0:
		return ".", nil
	case 1:
		return c.Args().First(), nil
	default:
		return "", fmt.Errorf("expected one directory, got %d arguments", c.Args().Len())
	}
}

// loadConfig loads the config file (explicit or discovered) and applies
// only the flags the user actually set.
func loadConfig(c *cli.Context) (*config.Config, error) {
	result, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}
	cfg := result.Config

	if c.IsSet("max-lines") {
		cfg.Thresholds.MaxLines = c.Int("max-lines")
	}
	if c.IsSet("complexity-low") {
		cfg.Thresholds.ComplexityLow = c.Int("complexity-low")
	}
	if c.IsSet("complexity-medium") {
		cfg.Thresholds.ComplexityMedium = c.Int("complexity-medium")
	}
	if c.IsSet("fail-fast") {
		cfg.Run.FailFast = c.Bool("fail-fast")
	}
	if c.IsSet("jobs") {
		cfg.Run.Workers = c.Int("jobs")
	}
	if c.IsSet("format") {
		cfg.Output.Format = c.String("format")
	}
	if c.Bool("no-color") {
		cfg.Output.Color = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the stderr logger that diagnostics are replayed into.
func newLogger(w io.Writer, verbose, quiet bool) *zap.Logger {
	level := zapcore.WarnLevel
	switch {
	case quiet:
		level = zapcore.ErrorLevel
	case verbose:
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = ""
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), level)
	return zap.New(core)
}

// signalContext cancels on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// newFormatter writes to --output when given, otherwise to the app writer.
func newFormatter(c *cli.Context, format string, colored bool) (*output.Formatter, error) {
	if path := c.String("output"); path != "" {
		return output.NewFormatter(output.ParseFormat(format), path, false)
	}
	return output.NewWriterFormatter(output.ParseFormat(format), c.App.Writer, colored), nil
}

// withProgress attaches a progress bar to ctx unless quiet. The returned
// func clears the bar.
func withProgress(ctx context.Context, c *cli.Context, label string) (context.Context, func()) {
	if c.Bool("quiet") {
		return ctx, func() {}
	}
	bar := progress.NewWithWriter(label, c.App.ErrWriter)
	return analyzer.WithTracker(ctx, bar.Tracker()), bar.Finish
}

func applyColor(cfg *config.Config) {
	if !cfg.Output.Color {
		color.NoColor = true
	}
}
