// Package source loads source units: file content, line count and digest.
package source

import (
	"fmt"
	"os"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// ContentSource provides file content from a specific source.
type ContentSource interface {
	// Read returns the content of the file at path.
	Read(path string) ([]byte, error)
}

// FilesystemSource reads files from the local filesystem.
type FilesystemSource struct{}

// NewFilesystem creates a source that reads from the filesystem.
func NewFilesystem() *FilesystemSource {
	return &FilesystemSource{}
}

// Read implements ContentSource.
func (f *FilesystemSource) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// MemorySource serves content from an in-memory map keyed by path.
// It is safe for concurrent use by multiple goroutines.
type MemorySource struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemory creates a source backed by the given files.
func NewMemory(files map[string]string) *MemorySource {
	m := &MemorySource{files: make(map[string][]byte, len(files))}
	for path, content := range files {
		m.files[path] = []byte(content)
	}
	return m
}

// Read implements ContentSource.
func (m *MemorySource) Read(path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	content, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", path, os.ErrNotExist)
	}
	return content, nil
}

// ReadError reports a source unit that could not be read.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("%s: read failed: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// Unit is one discovered source file.
type Unit struct {
	Path    string `json:"path" toon:"path"`
	Lines   int    `json:"lines" toon:"lines"`
	Digest  string `json:"digest" toon:"digest"`
	Content []byte `json:"-" toon:"-"`
}

// IsLarge reports whether the unit exceeds maxLines. A unit at exactly
// maxLines is not large.
func (u *Unit) IsLarge(maxLines int) bool {
	return u.Lines > maxLines
}

// Load reads path from src and measures it.
func Load(src ContentSource, path string) (*Unit, error) {
	content, err := src.Read(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	return &Unit{
		Path:    path,
		Lines:   CountLines(content),
		Digest:  fmt.Sprintf("%016x", xxhash.Sum64(content)),
		Content: content,
	}, nil
}

// CountLines counts lines the way a universal-newline reader does: "\n",
// "\r\n" and a lone "\r" each end a line, and trailing text without a line
// ending is one more line.
func CountLines(content []byte) int {
	n := 0
	for i := 0; i < len(content); i++ {
		switch content[i] {
		case '\r':
			if i+1 < len(content) && content[i+1] == '\n' {
				i++
			}
			n++
		case '\n':
			n++
		}
	}
	if len(content) > 0 {
		if last := content[len(content)-1]; last != '\n' && last != '\r' {
			n++
		}
	}
	return n
}
