// Package scanner discovers Python source files under a root directory.
package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/wisegam/codesleuth/pkg/config"
	"github.com/wisegam/codesleuth/pkg/diag"
)

// Scanner finds source files in a directory.
type Scanner struct {
	config *config.Config
	diag   *diag.Collector

	// patterns from config, matched relative to the scan root
	patterns gitignore.Matcher
	// .gitignore files, matched relative to the git root
	gitignore gitignore.Matcher
	gitRoot   string
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithDiagnostics records skipped directories into c.
func WithDiagnostics(c *diag.Collector) Option {
	return func(s *Scanner) {
		s.diag = c
	}
}

// New creates a new file scanner. A nil config selects the defaults.
func New(cfg *config.Config, opts ...Option) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s := &Scanner{config: cfg}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// findGitRoot finds the root of the git repository by looking for .git directory.
// Returns empty string if not in a git repository.
func findGitRoot(start string) string {
	dir := start
	for {
		gitDir := filepath.Join(dir, ".git")
		if info, err := os.Stat(gitDir); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadExcludePatterns builds the config and .gitignore matchers for absRoot.
func (s *Scanner) loadExcludePatterns(absRoot string) {
	s.patterns, s.gitignore, s.gitRoot = nil, nil, ""

	if len(s.config.Scan.Exclude.Patterns) > 0 {
		patterns := make([]gitignore.Pattern, 0, len(s.config.Scan.Exclude.Patterns))
		for _, p := range s.config.Scan.Exclude.Patterns {
			patterns = append(patterns, gitignore.ParsePattern(p, nil))
		}
		s.patterns = gitignore.NewMatcher(patterns)
	}

	if !s.config.Scan.Exclude.Gitignore {
		return
	}
	gitRoot := findGitRoot(absRoot)
	if gitRoot == "" {
		return
	}
	// ReadPatterns walks every .gitignore below the git root.
	gitPatterns, err := gitignore.ReadPatterns(osfs.New(gitRoot), nil)
	if err != nil {
		s.diag.Debug(gitRoot, "reading .gitignore files: %v", err)
		return
	}
	if len(gitPatterns) > 0 {
		s.gitignore = gitignore.NewMatcher(gitPatterns)
		s.gitRoot = gitRoot
	}
}

// isExcluded checks if a path matches any exclusion rule. absPath is
// used for .gitignore matching, relPath for config patterns.
func (s *Scanner) isExcluded(absPath, relPath string, isDir bool) bool {
	if isDir && s.config.IsExcludedDir(filepath.Base(absPath)) {
		return true
	}
	if s.patterns != nil && relPath != "." {
		if s.patterns.Match(splitPath(relPath), isDir) {
			return true
		}
	}
	if s.gitignore != nil {
		rel, err := filepath.Rel(s.gitRoot, absPath)
		if err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
			if s.gitignore.Match(splitPath(rel), isDir) {
				return true
			}
		}
	}
	return false
}

func splitPath(p string) []string {
	return strings.Split(filepath.ToSlash(p), "/")
}

// ScanDir recursively scans root for source files, in lexical order.
// root may also name a single file. Directories that cannot be opened are
// skipped and recorded as debug diagnostics. Symlinks that resolve
// outside root are skipped.
func (s *Scanner) ScanDir(root string) ([]string, error) {
	files := make([]string, 0, 256)

	// Resolve root to absolute path for symlink validation
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	absRoot, err = filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, err
	}

	s.loadExcludePatterns(absRoot)

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable directory: skip it and keep walking.
			s.diag.Debug(path, "skipping unreadable path: %v", err)
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}

		relPath, _ := filepath.Rel(root, path)
		absPath := filepath.Join(absRoot, relPath)

		if d.Type()&fs.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil {
				s.diag.Debug(path, "skipping unresolvable symlink: %v", err)
				return nil
			}
			if !isWithinRoot(resolved, absRoot) {
				s.diag.Debug(path, "skipping symlink outside scan root")
				return nil
			}
			info, err := os.Stat(resolved)
			if err != nil || !info.Mode().IsRegular() {
				return nil
			}
		} else if d.IsDir() {
			if path != root && s.isExcluded(absPath, relPath, true) {
				return filepath.SkipDir
			}
			return nil
		} else if !d.Type().IsRegular() {
			return nil
		}

		if !s.config.HasExtension(path) {
			return nil
		}
		if s.isExcluded(absPath, relPath, false) {
			return nil
		}
		files = append(files, path)
		return nil
	})

	return files, walkErr
}

// isWithinRoot checks if a path is contained within the root directory.
// Returns false if the path escapes via symlinks or relative paths.
func isWithinRoot(path, root string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	absPath = filepath.Clean(absPath)
	root = filepath.Clean(root)

	// Add separator to prevent "/root2" matching "/root"
	return absPath == root || strings.HasPrefix(absPath, root+string(filepath.Separator))
}
