package diag

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestCollector_Add(t *testing.T) {
	c := New()
	c.Debug("b.py", "skipped: %s", "permission denied")
	c.Warn("", "no files found")
	c.Error("a.py", "invalid syntax")

	entries := c.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, Entry{Level: zapcore.WarnLevel, Message: "no files found"}, entries[0])
	assert.Equal(t, "a.py", entries[1].Path)
	assert.Equal(t, "skipped: permission denied", entries[2].Message)
	assert.Equal(t, 3, c.Len())
}

func TestCollector_FormatWithoutArgs(t *testing.T) {
	c := New()
	c.Info("x.py", "100% done")
	assert.Equal(t, "100% done", c.Entries()[0].Message)
}

func TestCollector_Nil(t *testing.T) {
	var c *Collector
	c.Error("a.py", "ignored")
	assert.Nil(t, c.Entries())
	assert.Zero(t, c.Len())
	c.Replay(zap.NewNop())
}

func TestCollector_Concurrent(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Debug("f.py", "entry %d", i)
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, c.Len())
}

func TestCollector_AtLeast(t *testing.T) {
	c := New()
	c.Debug("a.py", "d")
	c.Info("a.py", "i")
	c.Warn("a.py", "w")
	c.Error("a.py", "e")

	got := c.AtLeast(zapcore.WarnLevel)
	require.Len(t, got, 2)
	assert.Equal(t, "w", got[0].Message)
	assert.Equal(t, "e", got[1].Message)
}

func TestEntry_String(t *testing.T) {
	assert.Equal(t, "warn: a.py: slow", Entry{Level: zapcore.WarnLevel, Path: "a.py", Message: "slow"}.String())
	assert.Equal(t, "info: done", Entry{Level: zapcore.InfoLevel, Message: "done"}.String())
}

func TestCollector_Replay(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	c := New()
	c.Debug("a.py", "below level")
	c.Warn("b.py", "unreadable directory")
	c.Info("", "scan finished")
	c.Replay(logger)

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, "scan finished", entries[0].Message)
	assert.Equal(t, "unreadable directory", entries[1].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "b.py", entries[1].ContextMap()["path"])
}
