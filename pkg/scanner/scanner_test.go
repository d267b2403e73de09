package scanner

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wisegam/codesleuth/internal/testutil"
	"github.com/wisegam/codesleuth/pkg/config"
	"github.com/wisegam/codesleuth/pkg/diag"
)

func relAll(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(root, p)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestNew(t *testing.T) {
	// With nil config
	s := New(nil)
	if s == nil {
		t.Fatal("New(nil) returned nil")
	}
	if s.config == nil {
		t.Error("scanner.config should not be nil when passing nil")
	}

	// With explicit config
	cfg := config.DefaultConfig()
	c := diag.New()
	s = New(cfg, WithDiagnostics(c))
	if s.config != cfg {
		t.Error("scanner.config should be the provided config")
	}
	assert.Same(t, c, s.diag)
}

func TestScanDir(t *testing.T) {
	root := testutil.ProjectDir(t, map[string]string{
		"main.py":         "print('hi')\n",
		"lib.py":          "x = 1\n",
		"util/helper.py":  "def f():\n    pass\n",
		"util/README.md":  "# docs\n",
		"util/notes.txt":  "",
		"pkg/sub/deep.py": "",
	})

	s := New(nil)
	result, err := s.ScanDir(root)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"lib.py",
		"main.py",
		"pkg/sub/deep.py",
		"util/helper.py",
	}, relAll(t, root, result), "lexical walk order")
}

func TestScanDir_DefaultVisitsEverySource(t *testing.T) {
	root := testutil.ProjectDir(t, map[string]string{
		".gitignore":              "ignored.py\nbuild/\n",
		"app.py":                  "",
		"ignored.py":              "",
		"build/out.py":            "",
		"venv/lib/site.py":        "",
		".venv/lib/site.py":       "",
		"__pycache__/app.py":      "",
		"node_modules/x/index.py": "",
		".git/hooks/hook.py":      "",
	})

	result, err := New(nil).ScanDir(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		".venv/lib/site.py",
		"__pycache__/app.py",
		"app.py",
		"build/out.py",
		"ignored.py",
		"node_modules/x/index.py",
		"venv/lib/site.py",
	}, relAll(t, root, result), "only .git is skipped by default")
}

func TestScanDir_ExcludedDirs(t *testing.T) {
	root := testutil.ProjectDir(t, map[string]string{
		"app.py":              "",
		"venv/lib/site.py":    "",
		"__pycache__/app.py":  "",
		"src/venv/nested.py":  "",
		"src/module/venvs.py": "",
	})

	cfg := config.DefaultConfig()
	cfg.Scan.Exclude.Dirs = []string{"venv", "__pycache__"}
	result, err := New(cfg).ScanDir(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"app.py", "src/module/venvs.py"}, relAll(t, root, result))
}

func TestScanDir_Extensions(t *testing.T) {
	root := testutil.ProjectDir(t, map[string]string{
		"a.py":  "",
		"b.pyi": "",
		"c.go":  "",
	})

	cfg := config.DefaultConfig()
	cfg.Scan.Extensions = []string{".py", ".pyi"}
	result, err := New(cfg).ScanDir(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.py", "b.pyi"}, relAll(t, root, result))
}

func TestScanDir_ConfigPatterns(t *testing.T) {
	root := testutil.ProjectDir(t, map[string]string{
		"app.py":              "",
		"proto/msg_pb2.py":    "",
		"migrations/0001.py":  "",
		"src/migrations.py":   "",
		"tests/test_thing.py": "",
	})

	cfg := config.DefaultConfig()
	cfg.Scan.Exclude.Patterns = []string{"*_pb2.py", "migrations/", "/tests"}
	result, err := New(cfg).ScanDir(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"app.py", "src/migrations.py"}, relAll(t, root, result))
}

func TestScanDir_Gitignore(t *testing.T) {
	repo := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(repo, ".git"), 0755))
	testutil.CreateFileTree(t, repo, map[string]string{
		".gitignore":         "generated/\n*_gen.py\n",
		"src/app.py":         "",
		"src/model_gen.py":   "",
		"src/generated/x.py": "",
		"src/sub/.gitignore": "local.py\n",
		"src/sub/local.py":   "",
		"src/sub/kept.py":    "",
	})

	// Scan a subdirectory: .gitignore rules are relative to the repo root.
	root := filepath.Join(repo, "src")
	cfg := config.DefaultConfig()
	cfg.Scan.Exclude.Gitignore = true
	result, err := New(cfg).ScanDir(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"app.py", "sub/kept.py"}, relAll(t, root, result))

	result, err = New(nil).ScanDir(root)
	require.NoError(t, err)
	assert.Len(t, result, 5, ".gitignore is not consulted by default")
}

func TestScanDir_SingleFile(t *testing.T) {
	root := testutil.ProjectDir(t, map[string]string{"only.py": "x = 1\n"})
	path := filepath.Join(root, "only.py")

	result, err := New(nil).ScanDir(path)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, result)
}

func TestScanDir_MissingRoot(t *testing.T) {
	_, err := New(nil).ScanDir(filepath.Join(t.TempDir(), "does-not-exist"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestScanDir_Empty(t *testing.T) {
	result, err := New(nil).ScanDir(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestScanDir_UnreadableDirectory(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits not supported")
	}
	if os.Geteuid() == 0 {
		t.Skip("root can read any directory")
	}

	root := testutil.ProjectDir(t, map[string]string{
		"ok.py":          "",
		"locked/gone.py": "",
	})
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Chmod(locked, 0))
	t.Cleanup(func() { _ = os.Chmod(locked, 0755) })

	c := diag.New()
	result, err := New(nil, WithDiagnostics(c)).ScanDir(root)
	require.NoError(t, err, "unreadable directories are skipped, not errors")
	assert.Equal(t, []string{"ok.py"}, relAll(t, root, result))

	entries := c.Entries()
	require.NotEmpty(t, entries)
	assert.Equal(t, locked, entries[0].Path)
}

func TestScanDir_SymlinkOutsideRoot(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require privileges on windows")
	}

	outside := testutil.ProjectDir(t, map[string]string{"secret.py": ""})
	root := testutil.ProjectDir(t, map[string]string{"inside.py": ""})

	require.NoError(t, os.Symlink(filepath.Join(outside, "secret.py"), filepath.Join(root, "escape.py")))
	require.NoError(t, os.Symlink(filepath.Join(root, "inside.py"), filepath.Join(root, "alias.py")))

	result, err := New(nil).ScanDir(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"alias.py", "inside.py"}, relAll(t, root, result))
}

func TestIsWithinRoot(t *testing.T) {
	tests := []struct {
		path string
		root string
		want bool
	}{
		{"/a/b/c.py", "/a/b", true},
		{"/a/b", "/a/b", true},
		{"/a/b2/c.py", "/a/b", false},
		{"/a/c.py", "/a/b", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, isWithinRoot(tt.path, tt.root))
		})
	}
}
