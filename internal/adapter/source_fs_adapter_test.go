package adapter

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	m "langtest.dev/pkg/langtest/internal/model"
)

func TestLocalSourceFSAdapter_Walk(t *testing.T) {
	t.Run("visits nested regular files only", func(t *testing.T) {
		adapter := NewLocalSourceFSAdapter()

		root := t.TempDir()
		writeTestFile(t, filepath.Join(root, "a.lang"), "x\n")

		nestedDir := filepath.Join(root, "nested")
		mustMkdir(t, nestedDir)
		child := filepath.Join(nestedDir, "b.lang")
		writeTestFile(t, child, "y\n")

		var visited []string
		err := adapter.Walk(m.Path(root), func(path m.Path) error {
			visited = append(visited, string(path))
			return nil
		})
		if err != nil {
			t.Fatalf("Walk() error = %v", err)
		}

		if !containsPath(visited, child) {
			t.Fatalf("Walk() did not visit nested file")
		}

		if containsPath(visited, nestedDir) || containsPath(visited, root) {
			t.Fatalf("Walk() visited a directory: %v", visited)
		}
	})

	t.Run("follows symlinks to files", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("symlinks need privileges on windows")
		}

		adapter := NewLocalSourceFSAdapter()

		root := t.TempDir()
		target := filepath.Join(t.TempDir(), "real.lang")
		writeTestFile(t, target, "z\n")

		link := filepath.Join(root, "link.lang")
		if err := os.Symlink(target, link); err != nil {
			t.Fatalf("symlink: %v", err)
		}

		var visited []string
		if err := adapter.Walk(m.Path(root), func(path m.Path) error {
			visited = append(visited, string(path))
			return nil
		}); err != nil {
			t.Fatalf("Walk() error = %v", err)
		}

		if !containsPath(visited, link) {
			t.Fatalf("Walk() skipped symlinked file: %v", visited)
		}
	})

	t.Run("missing root is an error", func(t *testing.T) {
		adapter := NewLocalSourceFSAdapter()

		err := adapter.Walk(m.Path(filepath.Join(t.TempDir(), "missing")), func(m.Path) error { return nil })
		if err == nil {
			t.Fatalf("Walk() expected error for missing root")
		}
	})
}

func TestLocalSourceFSAdapter_ReadFile(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	path := filepath.Join(t.TempDir(), "a.lang")
	writeTestFile(t, path, "contents")

	got, err := adapter.ReadFile(m.Path(path))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	if string(got) != "contents" {
		t.Fatalf("ReadFile() = %q", got)
	}
}

func TestLocalSourceFSAdapter_Canonical(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "a.lang"), "")

	if _, err := adapter.Canonical(m.Path(filepath.Join(root, "missing.lang"))); err == nil {
		t.Fatalf("Canonical() expected error for missing file")
	}

	got, err := adapter.Canonical(m.Path(filepath.Join(root, ".", "a.lang")))
	if err != nil {
		t.Fatalf("Canonical() error = %v", err)
	}

	want, _ := filepath.EvalSymlinks(filepath.Join(root, "a.lang"))
	if string(got) != want {
		t.Fatalf("Canonical() = %s, want %s", got, want)
	}

	if !filepath.IsAbs(string(got)) {
		t.Fatalf("Canonical() returned relative path %s", got)
	}
}

func TestLocalSourceFSAdapter_CreateTempDirAndRemoveAll(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	dir, err := adapter.CreateTempDir("langtest-test-*")
	if err != nil {
		t.Fatalf("CreateTempDir() error = %v", err)
	}

	if info, err := os.Stat(string(dir)); err != nil || !info.IsDir() {
		t.Fatalf("CreateTempDir() did not create a directory: %v", err)
	}

	writeTestFile(t, filepath.Join(string(dir), "x"), "x")

	if err := adapter.RemoveAll(dir); err != nil {
		t.Fatalf("RemoveAll() error = %v", err)
	}

	if _, err := os.Stat(string(dir)); !os.IsNotExist(err) {
		t.Fatalf("RemoveAll() left %s behind", dir)
	}
}

func TestLocalSourceFSAdapter_RelPath(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	rel, err := adapter.RelPath(m.Path("/a/b"), m.Path("/a/b/c/d.lang"))
	if err != nil {
		t.Fatalf("RelPath() error = %v", err)
	}

	if rel != m.Path(filepath.Join("c", "d.lang")) {
		t.Fatalf("RelPath() = %s", rel)
	}
}

func writeTestFile(t *testing.T, path, contents string) {
	t.Helper()

	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func mustMkdir(t *testing.T, path string) {
	t.Helper()

	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatalf("failed to create dir %s: %v", path, err)
	}
}

func containsPath(paths []string, target string) bool {
	for _, p := range paths {
		if p == target {
			return true
		}
	}

	return false
}
