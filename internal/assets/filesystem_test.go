package assets

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"
)

// writeTemplate creates {dir}/templates/{name}.html.
func writeTemplate(t *testing.T, dir, name, content string) {
	t.Helper()
	tplDir := filepath.Join(dir, "templates")
	if err := os.MkdirAll(tplDir, 0o755); err != nil {
		t.Fatalf("failed to create templates dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(tplDir, name+".html"), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write template: %v", err)
	}
}

func TestNewFilesystemLoader(t *testing.T) {
	t.Parallel()

	t.Run("valid directory", func(t *testing.T) {
		t.Parallel()

		if _, err := NewFilesystemLoader(t.TempDir()); err != nil {
			t.Fatalf("NewFilesystemLoader() error = %v", err)
		}
	})

	t.Run("invalid paths", func(t *testing.T) {
		t.Parallel()

		file := filepath.Join(t.TempDir(), "file.txt")
		if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
			t.Fatalf("failed to create test file: %v", err)
		}

		for _, p := range []string{"", "/nonexistent/path/abc123xyz", file} {
			if _, err := NewFilesystemLoader(p); !errors.Is(err, ErrInvalidBasePath) {
				t.Errorf("NewFilesystemLoader(%q) error = %v, want %v", p, err, ErrInvalidBasePath)
			}
		}
	})
}

func TestFilesystemLoader_LoadTemplate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTemplate(t, dir, "brand", "<body>{{body}}</body>")

	loader, err := NewFilesystemLoader(dir)
	if err != nil {
		t.Fatalf("NewFilesystemLoader() error = %v", err)
	}

	got, err := loader.LoadTemplate("brand")
	if err != nil {
		t.Fatalf("LoadTemplate() unexpected error: %v", err)
	}
	if got != "<body>{{body}}</body>" {
		t.Errorf("LoadTemplate() = %q", got)
	}

	if _, err := loader.LoadTemplate("missing"); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("LoadTemplate(missing) error = %v, want %v", err, ErrTemplateNotFound)
	}
	if _, err := loader.LoadTemplate("../brand"); !errors.Is(err, ErrInvalidAssetName) {
		t.Errorf("LoadTemplate(traversal) error = %v, want %v", err, ErrInvalidAssetName)
	}
}

func TestFilesystemLoader_ListTemplates(t *testing.T) {
	t.Parallel()

	t.Run("lists html files only", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeTemplate(t, dir, "zeta", "{{body}}")
		writeTemplate(t, dir, "alpha", "{{body}}")
		if err := os.WriteFile(filepath.Join(dir, "templates", "notes.txt"), []byte("x"), 0o644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}

		loader, err := NewFilesystemLoader(dir)
		if err != nil {
			t.Fatalf("NewFilesystemLoader() error = %v", err)
		}
		got, err := loader.ListTemplates()
		if err != nil {
			t.Fatalf("ListTemplates() unexpected error: %v", err)
		}
		if want := []string{"alpha", "zeta"}; !slices.Equal(got, want) {
			t.Errorf("ListTemplates() = %v, want %v", got, want)
		}
	})

	t.Run("missing templates dir is empty", func(t *testing.T) {
		t.Parallel()

		loader, err := NewFilesystemLoader(t.TempDir())
		if err != nil {
			t.Fatalf("NewFilesystemLoader() error = %v", err)
		}
		got, err := loader.ListTemplates()
		if err != nil || len(got) != 0 {
			t.Errorf("ListTemplates() = %v, %v; want empty, nil", got, err)
		}
	})
}

func TestFilesystemLoader_SymlinkEscape(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("symlinks require privileges on Windows")
	}

	outside := t.TempDir()
	secret := filepath.Join(outside, "secret.html")
	if err := os.WriteFile(secret, []byte("{{body}}"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "templates"), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.Symlink(secret, filepath.Join(dir, "templates", "leak.html")); err != nil {
		t.Fatalf("failed to create symlink: %v", err)
	}

	loader, err := NewFilesystemLoader(dir)
	if err != nil {
		t.Fatalf("NewFilesystemLoader() error = %v", err)
	}
	if _, err := loader.LoadTemplate("leak"); !errors.Is(err, ErrPathTraversal) {
		t.Errorf("LoadTemplate() error = %v, want %v", err, ErrPathTraversal)
	}
}
