package source

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilesystemSource(t *testing.T) {
	src := NewFilesystem()

	content, err := src.Read("../../go.mod")
	require.NoError(t, err)
	assert.Contains(t, string(content), "module github.com/wisegam/codesleuth")

	_, err = src.Read("nonexistent.txt")
	assert.Error(t, err)
}

func TestMemorySource(t *testing.T) {
	src := NewMemory(map[string]string{"a.py": "import b\n"})

	content, err := src.Read("a.py")
	require.NoError(t, err)
	assert.Equal(t, "import b\n", string(content))

	_, err = src.Read("missing.py")
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestCountLines(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"empty", "", 0},
		{"single newline", "\n", 1},
		{"one line terminated", "x = 1\n", 1},
		{"one line unterminated", "x = 1", 1},
		{"two lines unterminated", "a\nb", 2},
		{"blank lines count", "a\n\n\nb\n", 4},
		{"crlf", "a\r\nb\r\n", 2},
		{"lone cr", "a\rb\rc", 3},
		{"lone cr terminated", "a\rb\r", 2},
		{"mixed endings", "a\r\nb\rc\nd", 4},
		{"blank cr lines", "\r\r", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountLines([]byte(tt.content)))
		})
	}
}

func TestCountLines_JoinedLines(t *testing.T) {
	content := strings.Join(slicesRepeat("line", 600), "\n")
	assert.Equal(t, 600, CountLines([]byte(content)))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mod.py")
	require.NoError(t, os.WriteFile(path, []byte("import os\nimport sys\n"), 0644))

	unit, err := Load(NewFilesystem(), path)
	require.NoError(t, err)

	assert.Equal(t, path, unit.Path)
	assert.Equal(t, 2, unit.Lines)
	assert.Len(t, unit.Digest, 16)
	assert.Equal(t, "import os\nimport sys\n", string(unit.Content))
}

func TestLoad_DigestIsContentAddressed(t *testing.T) {
	src := NewMemory(map[string]string{
		"a.py": "x = 1\n",
		"b.py": "x = 1\n",
		"c.py": "x = 2\n",
	})

	a, err := Load(src, "a.py")
	require.NoError(t, err)
	b, err := Load(src, "b.py")
	require.NoError(t, err)
	c, err := Load(src, "c.py")
	require.NoError(t, err)

	assert.Equal(t, a.Digest, b.Digest)
	assert.NotEqual(t, a.Digest, c.Digest)
}

func TestLoad_ReadError(t *testing.T) {
	_, err := Load(NewFilesystem(), filepath.Join(t.TempDir(), "missing.py"))
	require.Error(t, err)

	var rerr *ReadError
	require.True(t, errors.As(err, &rerr))
	assert.True(t, strings.HasSuffix(rerr.Path, "missing.py"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestUnitIsLarge(t *testing.T) {
	tests := []struct {
		lines    int
		maxLines int
		want     bool
	}{
		{600, 500, true},
		{501, 500, true},
		{500, 500, false},
		{499, 500, false},
		{0, 0, false},
		{1, 0, true},
	}

	for _, tt := range tests {
		u := &Unit{Lines: tt.lines}
		assert.Equal(t, tt.want, u.IsLarge(tt.maxLines), "lines=%d max=%d", tt.lines, tt.maxLines)
	}
}

func slicesRepeat(s string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = s
	}
	return out
}
