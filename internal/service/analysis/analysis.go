// Package analysis runs the full CodeSleuth pipeline over a directory:
// scan, per-file scoring and import extraction, then cycle detection and
// aggregation once every file has been folded into the graph.
package analysis

import (
	"context"
	"fmt"

	"github.com/wisegam/codesleuth/internal/fileproc"
	"github.com/wisegam/codesleuth/pkg/analyzer"
	"github.com/wisegam/codesleuth/pkg/analyzer/complexity"
	"github.com/wisegam/codesleuth/pkg/analyzer/graph"
	"github.com/wisegam/codesleuth/pkg/analyzer/imports"
	"github.com/wisegam/codesleuth/pkg/analyzer/report"
	"github.com/wisegam/codesleuth/pkg/config"
	"github.com/wisegam/codesleuth/pkg/diag"
	"github.com/wisegam/codesleuth/pkg/parser"
	"github.com/wisegam/codesleuth/pkg/scanner"
	"github.com/wisegam/codesleuth/pkg/source"
)

// Service orchestrates an analysis run.
type Service struct {
	config     *config.Config
	source     source.ContentSource
	cycleLimit int

	// Both run over the same parse tree of each unit.
	scorer    analyzer.ParsedAnalyzer[[]complexity.FunctionRecord]
	extractor analyzer.ParsedAnalyzer[[]string]
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// WithSource replaces the filesystem as the content source.
func WithSource(src source.ContentSource) Option {
	return func(s *Service) {
		s.source = src
	}
}

// WithCycleLimit caps the number of cycles enumerated. Zero means no cap.
func WithCycleLimit(n int) Option {
	return func(s *Service) {
		s.cycleLimit = n
	}
}

// New creates an analysis service with default configuration reading from
// the filesystem.
func New(opts ...Option) *Service {
	s := &Service{
		config:    config.DefaultConfig(),
		source:    source.NewFilesystem(),
		scorer:    complexity.New(),
		extractor: imports.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Result is everything a run produced.
type Result struct {
	Root string `json:"root" toon:"root"`
	// Files holds one entry per successfully parsed file, in scan order.
	Files           []complexity.FileResult    `json:"files" toon:"files"`
	LargeFiles      []*source.Unit             `json:"large_files" toon:"large_files"`
	MaxLines        int                        `json:"max_lines" toon:"max_lines"`
	Report          report.Summary             `json:"report" toon:"report"`
	Graph           *graph.Graph               `json:"-" toon:"-"`
	GraphSummary    graph.Summary              `json:"graph" toon:"graph"`
	Cycles          []graph.Cycle              `json:"cycles" toon:"cycles"`
	CyclesTruncated bool                       `json:"cycles_truncated,omitempty" toon:"cycles_truncated,omitempty"`
	Errors          []fileproc.ProcessingError `json:"-" toon:"-"`
	FileErrors      []FileError                `json:"errors" toon:"errors"`
	Diagnostics     []diag.Entry               `json:"-" toon:"-"`
}

// FileError is the serializable form of a per-file failure.
type FileError struct {
	Path    string `json:"path" toon:"path"`
	Message string `json:"message" toon:"message"`
}

// HasErrors reports whether any file failed to read or parse.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// ScanError indicates the root could not be walked.
type ScanError struct {
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return "failed to scan directory " + e.Path + ": " + e.Err.Error()
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// Analyze scans root and analyzes every matching file.
func (s *Service) Analyze(ctx context.Context, root string) (*Result, error) {
	collector := diag.New()
	sc := scanner.New(s.config, scanner.WithDiagnostics(collector))
	paths, err := sc.ScanDir(root)
	if err != nil {
		return nil, &ScanError{Path: root, Err: err}
	}
	collector.Debug("", "scanned %s: %d files", root, len(paths))

	result, err := s.run(ctx, paths, collector)
	if err != nil {
		return nil, err
	}
	result.Root = root
	return result, nil
}

// AnalyzeFiles analyzes exactly paths, in the order given, without
// scanning. Paths are read through the service's content source.
func (s *Service) AnalyzeFiles(ctx context.Context, paths []string) (*Result, error) {
	return s.run(ctx, paths, diag.New())
}

type fileOutcome struct {
	unit      *source.Unit
	functions []complexity.FunctionRecord
}

func (s *Service) run(ctx context.Context, paths []string, collector *diag.Collector) (*Result, error) {
	analyzer.TrackerFromContext(ctx).SetTotal(len(paths))

	builder := graph.NewBuilder()
	process := func(ctx context.Context, psr *parser.Parser, path string) (fileOutcome, error) {
		unit, err := source.Load(s.source, path)
		if err != nil {
			return fileOutcome{}, err
		}
		content := unit.Content
		unit.Content = nil
		out := fileOutcome{unit: unit}

		parsed, err := psr.Parse(ctx, content, path)
		if err != nil {
			return out, err
		}
		defer parsed.Close()

		out.functions = s.scorer.AnalyzeParsed(parsed)
		builder.AddUnit(path, s.extractor.AnalyzeParsed(parsed))
		return out, nil
	}

	results, err := fileproc.Map(ctx, paths, fileproc.Options{
		Workers:  s.config.Run.Workers,
		FailFast: s.config.Run.FailFast,
	}, process)
	if err != nil {
		return nil, fmt.Errorf("analysis aborted: %w", err)
	}

	res := &Result{
		Files:      make([]complexity.FileResult, 0, len(results)),
		LargeFiles: make([]*source.Unit, 0),
		MaxLines:   s.config.Thresholds.MaxLines,
	}
	var records []complexity.FunctionRecord
	for _, r := range results {
		if unit := r.Value.unit; unit != nil && unit.IsLarge(s.config.Thresholds.MaxLines) {
			res.LargeFiles = append(res.LargeFiles, unit)
		}
		if r.Err != nil {
			collector.Error(r.Path, "%v", r.Err)
			continue
		}
		res.Files = append(res.Files, complexity.FileResult{Path: r.Path, Functions: r.Value.functions})
		records = append(records, r.Value.functions...)
	}

	res.Errors = fileproc.Errors(results)
	res.FileErrors = make([]FileError, 0, len(res.Errors))
	for _, e := range res.Errors {
		res.FileErrors = append(res.FileErrors, FileError{Path: e.Path, Message: e.Err.Error()})
	}

	// Every file has been folded in; the graph is complete.
	g := builder.Graph()
	res.Graph = g
	res.Cycles, res.CyclesTruncated = g.CyclesWithLimit(s.cycleLimit)
	if res.CyclesTruncated {
		collector.Warn("", "cycle enumeration stopped after %d cycles", s.cycleLimit)
	}
	res.GraphSummary = g.Summarize(res.Cycles)

	res.Report = report.Aggregate(records, report.Thresholds{
		Low:    s.config.Thresholds.ComplexityLow,
		Medium: s.config.Thresholds.ComplexityMedium,
	})
	res.Diagnostics = collector.Entries()
	return res, nil
}
