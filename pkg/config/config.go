package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for codesleuth.
type Config struct {
	// Thresholds for large files and complexity bands
	Thresholds ThresholdConfig `koanf:"thresholds" toml:"thresholds" yaml:"thresholds"`

	// Which files are analyzed
	Scan ScanConfig `koanf:"scan" toml:"scan" yaml:"scan"`

	// Error policy and parallelism
	Run RunConfig `koanf:"run" toml:"run" yaml:"run"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output" yaml:"output"`
}

// ThresholdConfig defines metric thresholds.
type ThresholdConfig struct {
	MaxLines         int `koanf:"max_lines" toml:"max_lines" yaml:"max_lines"`
	ComplexityLow    int `koanf:"complexity_low" toml:"complexity_low" yaml:"complexity_low"`
	ComplexityMedium int `koanf:"complexity_medium" toml:"complexity_medium" yaml:"complexity_medium"`
}

// ScanConfig selects source files.
type ScanConfig struct {
	Extensions []string      `koanf:"extensions" toml:"extensions" yaml:"extensions"`
	Exclude    ExcludeConfig `koanf:"exclude" toml:"exclude" yaml:"exclude"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns" toml:"patterns" yaml:"patterns"`
	Dirs      []string `koanf:"dirs" toml:"dirs" yaml:"dirs"`
	Gitignore bool     `koanf:"gitignore" toml:"gitignore" yaml:"gitignore"`
}

// RunConfig controls how a run treats failures and schedules work.
type RunConfig struct {
	// FailFast aborts the run on the first unreadable or unparsable file.
	FailFast bool `koanf:"fail_fast" toml:"fail_fast" yaml:"fail_fast"`
	// Workers is the number of files processed concurrently (1 = sequential).
	Workers int `koanf:"workers" toml:"workers" yaml:"workers"`
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `koanf:"format" toml:"format" yaml:"format"` // text, json, markdown, toon
	Color  bool   `koanf:"color" toml:"color" yaml:"color"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Thresholds: ThresholdConfig{
			MaxLines:         500,
			ComplexityLow:    5,
			ComplexityMedium: 10,
		},
		Scan: ScanConfig{
			Extensions: []string{".py"},
			Exclude: ExcludeConfig{
				Patterns: []string{},
				// Only .git is skipped by default. Other exclusions are opt-in.
				Dirs:      []string{".git"},
				Gitignore: false,
			},
		},
		Run: RunConfig{
			FailFast: false,
			Workers:  1,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

// ConfigNames lists the file names searched by LoadOrDefault, in order.
var ConfigNames = []string{
	"codesleuth.toml",
	"codesleuth.yaml",
	"codesleuth.yml",
	"codesleuth.json",
	".codesleuth.toml",
	".codesleuth.yaml",
	".codesleuth.yml",
	".codesleuth.json",
}

// LoadResult carries a loaded config and the file it came from.
// Source is empty when defaults were used.
type LoadResult struct {
	Config *Config
	Source string
}

// Load loads configuration from a file, layered over the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Find returns the first config file found in the standard locations,
// or "" if there is none.
func Find(dir string) string {
	searchDirs := []string{dir, filepath.Join(dir, ".codesleuth")}
	for _, d := range searchDirs {
		for _, name := range ConfigNames {
			path := filepath.Join(d, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path
			}
		}
	}
	return ""
}

// LoadConfig loads an explicit path when given, otherwise searches the
// working directory. Unlike LoadOrDefault it reports invalid files.
func LoadConfig(path string) (*LoadResult, error) {
	if path == "" {
		path = Find(".")
	}
	if path == "" {
		return &LoadResult{Config: DefaultConfig()}, nil
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &LoadResult{Config: cfg, Source: path}, nil
}

// LoadOrDefault tries to load config from standard locations or returns defaults.
func LoadOrDefault() *Config {
	if path := Find("."); path != "" {
		if cfg, err := Load(path); err == nil {
			return cfg
		}
	}
	return DefaultConfig()
}

// ValidFormats lists the accepted output formats.
var ValidFormats = []string{"text", "json", "markdown", "md", "toon"}

// Validate checks the config for values no run can use.
// ComplexityLow < ComplexityMedium is a convention and is not enforced.
func (c *Config) Validate() error {
	var errs []error

	if c.Thresholds.MaxLines < 0 {
		errs = append(errs, fmt.Errorf("thresholds.max_lines must be >= 0 (got %d)", c.Thresholds.MaxLines))
	}
	if c.Thresholds.ComplexityLow < 0 {
		errs = append(errs, fmt.Errorf("thresholds.complexity_low must be >= 0 (got %d)", c.Thresholds.ComplexityLow))
	}
	if c.Thresholds.ComplexityMedium < 0 {
		errs = append(errs, fmt.Errorf("thresholds.complexity_medium must be >= 0 (got %d)", c.Thresholds.ComplexityMedium))
	}
	if len(c.Scan.Extensions) == 0 {
		errs = append(errs, errors.New("scan.extensions must not be empty"))
	}
	for _, ext := range c.Scan.Extensions {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, fmt.Errorf("scan.extensions entry %q must start with a dot", ext))
		}
	}
	if c.Run.Workers < 0 {
		errs = append(errs, fmt.Errorf("run.workers must be >= 0 (got %d)", c.Run.Workers))
	}
	if c.Output.Format != "" && !isValidFormat(c.Output.Format) {
		errs = append(errs, fmt.Errorf("output.format %q is not one of %s", c.Output.Format, strings.Join(ValidFormats, ", ")))
	}

	return errors.Join(errs...)
}

func isValidFormat(f string) bool {
	f = strings.ToLower(f)
	for _, v := range ValidFormats {
		if f == v {
			return true
		}
	}
	return false
}

// HasExtension reports whether path has one of the configured source extensions.
func (c *Config) HasExtension(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range c.Scan.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// IsExcludedDir reports whether a directory name is in the exclusion list.
func (c *Config) IsExcludedDir(name string) bool {
	for _, dir := range c.Scan.Exclude.Dirs {
		if name == dir {
			return true
		}
	}
	return false
}
