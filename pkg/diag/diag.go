// Package diag collects diagnostics produced during an analysis run.
//
// Analysis code records entries into a Collector it was handed; the caller
// decides where they go. Nothing here writes to a process-wide logger.
package diag

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Entry is one diagnostic message.
type Entry struct {
	Level   zapcore.Level `json:"level" toon:"level"`
	Path    string        `json:"path,omitempty" toon:"path,omitempty"`
	Message string        `json:"message" toon:"message"`
}

func (e Entry) String() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", e.Level, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Level, e.Path, e.Message)
}

// Collector accumulates entries. It is safe for concurrent use.
// A nil *Collector discards everything.
type Collector struct {
	mu      sync.Mutex
	entries []Entry
}

// New returns an empty collector.
func New() *Collector {
	return &Collector{}
}

// Add records an entry.
func (c *Collector) Add(level zapcore.Level, path, format string, args ...any) {
	if c == nil {
		return
	}
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	c.mu.Lock()
	c.entries = append(c.entries, Entry{Level: level, Path: path, Message: msg})
	c.mu.Unlock()
}

func (c *Collector) Debug(path, format string, args ...any) {
	c.Add(zapcore.DebugLevel, path, format, args...)
}

func (c *Collector) Info(path, format string, args ...any) {
	c.Add(zapcore.InfoLevel, path, format, args...)
}

func (c *Collector) Warn(path, format string, args ...any) {
	c.Add(zapcore.WarnLevel, path, format, args...)
}

func (c *Collector) Error(path, format string, args ...any) {
	c.Add(zapcore.ErrorLevel, path, format, args...)
}

// Entries returns a copy of the recorded entries, stable-sorted by path.
// Entries without a path keep their recording order and come first.
func (c *Collector) Entries() []Entry {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	c.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Path < out[j].Path
	})
	return out
}

// Len returns the number of recorded entries.
func (c *Collector) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// AtLeast returns the entries whose level is lvl or higher.
func (c *Collector) AtLeast(lvl zapcore.Level) []Entry {
	var out []Entry
	for _, e := range c.Entries() {
		if e.Level >= lvl {
			out = append(out, e)
		}
	}
	return out
}

// Replay writes every entry to logger at its recorded level.
func (c *Collector) Replay(logger *zap.Logger) {
	ReplayEntries(logger, c.Entries())
}

// ReplayEntries writes entries to logger at their recorded levels.
func ReplayEntries(logger *zap.Logger, entries []Entry) {
	if logger == nil {
		return
	}
	for _, e := range entries {
		fields := []zap.Field{}
		if e.Path != "" {
			fields = append(fields, zap.String("path", e.Path))
		}
		if ce := logger.Check(e.Level, e.Message); ce != nil {
			ce.Write(fields...)
		}
	}
}
