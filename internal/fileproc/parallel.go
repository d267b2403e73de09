// Package fileproc runs per-file work sequentially or over a bounded pool.
package fileproc

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/wisegam/codesleuth/pkg/analyzer"
	"github.com/wisegam/codesleuth/pkg/parser"
)

// ProcessingError is a failure tied to one file.
type ProcessingError struct {
	Path string `json:"path" toon:"path"`
	Err  error  `json:"-" toon:"-"`
}

func (e ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e ProcessingError) Unwrap() error {
	return e.Err
}

// ProcessingErrors collects per-file failures. Safe for concurrent use.
type ProcessingErrors struct {
	mu     sync.Mutex
	errors []ProcessingError
}

// Add records err for path.
func (e *ProcessingErrors) Add(path string, err error) {
	e.mu.Lock()
	e.errors = append(e.errors, ProcessingError{Path: path, Err: err})
	e.mu.Unlock()
}

// HasErrors reports whether anything was recorded.
func (e *ProcessingErrors) HasErrors() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.errors) > 0
}

// Sorted returns the recorded errors ordered by path.
func (e *ProcessingErrors) Sorted() []ProcessingError {
	e.mu.Lock()
	out := make([]ProcessingError, len(e.errors))
	copy(out, e.errors)
	e.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func (e *ProcessingErrors) Error() string {
	errs := e.Sorted()
	switch len(errs) {
	case 0:
		return "no errors"
	case 1:
		return errs[0].Error()
	default:
		return fmt.Sprintf("%d files failed to process (first: %v)", len(errs), errs[0])
	}
}

// Options controls scheduling.
type Options struct {
	// Workers above 1 enables the pool; anything else runs in order.
	Workers int
	// FailFast stops scheduling after the first failure and returns it.
	FailFast bool
}

// Func processes one path with a parser owned by the calling task.
type Func[T any] func(ctx context.Context, p *parser.Parser, path string) (T, error)

// Result is the outcome for the path at the same index of the input.
type Result[T any] struct {
	Path string
	// Value may be partial when Err is set.
	Value T
	Err   error
	// Done is false for paths never processed because the run stopped.
	Done bool
}

// Map applies fn to every path. Results are indexed by input position, so
// the output order does not depend on scheduling.
//
// Without FailFast every path is processed and failures are reported in
// Result.Err; the returned error is non-nil only when ctx is cancelled.
// With FailFast the first failure is returned as a ProcessingError. When
// Workers <= 1 "first" means first in input order.
//
// A tracker carried in ctx is ticked once per processed path.
func Map[T any](ctx context.Context, paths []string, opts Options, fn Func[T]) ([]Result[T], error) {
	results := make([]Result[T], len(paths))
	for i, path := range paths {
		results[i].Path = path
	}
	if len(paths) == 0 {
		return results, nil
	}
	if opts.Workers <= 1 {
		return results, mapSequential(ctx, results, opts.FailFast, fn)
	}
	return results, mapPooled(ctx, results, opts, fn)
}

func mapSequential[T any](ctx context.Context, results []Result[T], failFast bool, fn Func[T]) error {
	tracker := analyzer.TrackerFromContext(ctx)
	psr := parser.New()
	defer psr.Close()

	for i := range results {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := run(ctx, psr, &results[i], fn, tracker); err != nil && failFast {
			return err
		}
	}
	return nil
}

func mapPooled[T any](ctx context.Context, results []Result[T], opts Options, fn Func[T]) error {
	tracker := analyzer.TrackerFromContext(ctx)

	p := pool.New().WithMaxGoroutines(opts.Workers).WithContext(ctx)
	if opts.FailFast {
		p = p.WithCancelOnError().WithFirstError()
	}
	for i := range results {
		p.Go(func(ctx context.Context) error {
			if ctx.Err() != nil {
				return nil
			}
			psr := parser.New()
			defer psr.Close()

			err := run(ctx, psr, &results[i], fn, tracker)
			if opts.FailFast {
				return err
			}
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func run[T any](ctx context.Context, psr *parser.Parser, r *Result[T], fn Func[T], tracker *analyzer.Tracker) error {
	v, err := fn(ctx, psr, r.Path)
	r.Value = v
	r.Done = true
	if err != nil {
		r.Err = err
		tracker.Fail(r.Path)
		return ProcessingError{Path: r.Path, Err: err}
	}
	tracker.Tick(r.Path)
	return nil
}

// Errors gathers the failed results, ordered by path.
func Errors[T any](results []Result[T]) []ProcessingError {
	var errs ProcessingErrors
	for _, r := range results {
		if r.Err != nil {
			errs.Add(r.Path, r.Err)
		}
	}
	return errs.Sorted()
}
