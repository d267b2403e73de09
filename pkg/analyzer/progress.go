package analyzer

import (
	"context"
	"sync/atomic"
)

// ProgressFunc receives one event per processed unit.
type ProgressFunc func(ev ProgressEvent)

// ProgressEvent describes a single completed unit of work.
type ProgressEvent struct {
	Stage string
	Done  int
	Total int
	Path  string
	// Failed is set when the unit produced an error; it still counts as done.
	Failed bool
}

// Tracker counts completed units for a named stage. All methods are safe
// for concurrent use and are no-ops on a nil *Tracker.
type Tracker struct {
	stage    string
	total    atomic.Int64
	done     atomic.Int64
	failed   atomic.Int64
	callback ProgressFunc
}

// NewTracker creates a tracker for stage. callback may be nil.
func NewTracker(stage string, callback ProgressFunc) *Tracker {
	return &Tracker{stage: stage, callback: callback}
}

// Stage returns the label given to NewTracker.
func (t *Tracker) Stage() string {
	if t == nil {
		return ""
	}
	return t.stage
}

// Add grows the expected total by n.
func (t *Tracker) Add(n int) {
	if t == nil {
		return
	}
	t.total.Add(int64(n))
}

// SetTotal replaces the expected total.
func (t *Tracker) SetTotal(n int) {
	if t == nil {
		return
	}
	t.total.Store(int64(n))
}

// Tick records path as done.
func (t *Tracker) Tick(path string) {
	t.record(path, false)
}

// Fail records path as done with an error.
func (t *Tracker) Fail(path string) {
	t.record(path, true)
}

func (t *Tracker) record(path string, failed bool) {
	if t == nil {
		return
	}
	done := int(t.done.Add(1))
	if failed {
		t.failed.Add(1)
	}
	if t.callback != nil {
		t.callback(ProgressEvent{
			Stage:  t.stage,
			Done:   done,
			Total:  int(t.total.Load()),
			Path:   path,
			Failed: failed,
		})
	}
}

// Done returns the number of units recorded so far.
func (t *Tracker) Done() int {
	if t == nil {
		return 0
	}
	return int(t.done.Load())
}

// Failed returns how many recorded units failed.
func (t *Tracker) Failed() int {
	if t == nil {
		return 0
	}
	return int(t.failed.Load())
}

// Total returns the expected total.
func (t *Tracker) Total() int {
	if t == nil {
		return 0
	}
	return int(t.total.Load())
}

type trackerKey struct{}

// WithTracker attaches t to ctx.
func WithTracker(ctx context.Context, t *Tracker) context.Context {
	return context.WithValue(ctx, trackerKey{}, t)
}

// TrackerFromContext returns the tracker attached to ctx, or nil. The nil
// tracker is usable.
func TrackerFromContext(ctx context.Context) *Tracker {
	if t, ok := ctx.Value(trackerKey{}).(*Tracker); ok {
		return t
	}
	return nil
}
