package filesystem

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/jessifoo/rayzgyproc/pkg/models"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

func newTestTree(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	files := map[string]string{
		"/site/uploads/a.jpg":            "A",
		"/site/uploads/2024/b.jpg":       "B",
		"/site/wp-admin/admin.php":       "<?php",
		"/site/wp-includes/load.php":     "<?php",
		"/site/.git/config":              "[core]",
		"/site/uploads/.hidden":          "x",
		"/site/uploads/sub/wp-admin/x.js": "y",
	}
	for path, content := range files {
		if err := afero.WriteFile(fs, path, []byte(content), 0644); err != nil {
			t.Fatalf("WriteFile(%s): %v", path, err)
		}
	}
	return fs
}

func collectRel(t *testing.T, w *Walker, root string) []string {
	t.Helper()
	files, err := w.Collect(context.Background(), root)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	var rel []string
	for _, f := range files {
		rel = append(rel, filepath.ToSlash(f.RelativePath))
	}
	sort.Strings(rel)
	return rel
}

func TestWalker_ExcludesNamedComponents(t *testing.T) {
	fs := newTestTree(t)
	w := NewWalker(fs, []string{"wp-admin", "wp-includes", ".git"}, zap.NewNop())

	got := collectRel(t, w, "/site")
	want := []string{"uploads/.hidden", "uploads/2024/b.jpg", "uploads/a.jpg"}

	if len(got) != len(want) {
		t.Fatalf("Walk() files = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("file[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestWalker_FileInfo(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/site/.env", []byte("SECRET=1"), 0666); err != nil {
		t.Fatal(err)
	}
	if err := fs.Chmod("/site/.env", 0666); err != nil {
		t.Fatal(err)
	}

	w := NewWalker(fs, nil, zap.NewNop())
	files, err := w.Collect(context.Background(), "/site")
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("Collect() returned %d files, want 1", len(files))
	}

	fi := files[0]
	if !fi.IsHidden {
		t.Error("IsHidden = false, want true")
	}
	if fi.Size != 8 {
		t.Errorf("Size = %d, want 8", fi.Size)
	}
	if fi.Perm() != 0666 {
		t.Errorf("Perm() = %o, want %o", fi.Perm(), 0666)
	}
}

func TestWalker_CheckRoot(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/file.txt", []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := fs.MkdirAll("/empty", 0755); err != nil {
		t.Fatal(err)
	}
	w := NewWalker(fs, nil, zap.NewNop())

	if err := w.CheckRoot("/missing"); !errors.Is(err, ErrRootNotFound) {
		t.Errorf("CheckRoot(missing) = %v, want ErrRootNotFound", err)
	}
	if err := w.CheckRoot("/file.txt"); !errors.Is(err, ErrRootNotDirectory) {
		t.Errorf("CheckRoot(file) = %v, want ErrRootNotDirectory", err)
	}
	if err := w.CheckRoot("/empty"); err != nil {
		t.Errorf("CheckRoot(empty dir) = %v, want nil", err)
	}
}

func TestWalker_MissingRootFailsBeforeCallback(t *testing.T) {
	w := NewWalker(afero.NewMemMapFs(), nil, zap.NewNop())
	called := false
	err := w.Walk(context.Background(), "/nope", func(*models.FileInfo) error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrRootNotFound) {
		t.Errorf("Walk() error = %v, want ErrRootNotFound", err)
	}
	if called {
		t.Error("callback invoked for missing root")
	}
}

func TestWalker_Cancelled(t *testing.T) {
	fs := newTestTree(t)
	w := NewWalker(fs, nil, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := w.Walk(ctx, "/site", func(*models.FileInfo) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Walk() error = %v, want context.Canceled", err)
	}
}

func TestWalker_DoesNotFollowSymlinks(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "real")
	if err := os.MkdirAll(target, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(target, "a.txt"), []byte("a"), 0644); err != nil {
		t.Fatal(err)
	}
	// Link back to the root would loop forever if followed
	if err := os.Symlink(root, filepath.Join(target, "loop")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	if err := os.Symlink(filepath.Join(target, "a.txt"), filepath.Join(root, "link.txt")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	w := NewWalker(afero.NewOsFs(), nil, zap.NewNop())
	got := collectRel(t, w, root)

	if len(got) != 1 || got[0] != "real/a.txt" {
		t.Errorf("Walk() files = %v, want [real/a.txt]", got)
	}
}

func TestWalker_SymlinkedRoot(t *testing.T) {
	dir := t.TempDir()
	realDir := filepath.Join(dir, "real")
	if err := os.MkdirAll(filepath.Join(realDir, "uploads"), 0755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"a.php", "uploads/b.php"} {
		if err := os.WriteFile(filepath.Join(realDir, name), []byte("<?php"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	relative := filepath.Join(dir, "public_html")
	if err := os.Symlink("real", relative); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	// A link to a link is resolved to the end of the chain
	chained := filepath.Join(dir, "www")
	if err := os.Symlink(relative, chained); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	tests := []struct {
		name string
		root string
	}{
		{"Direct", realDir},
		{"RelativeLink", relative},
		{"ChainedLink", chained},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWalker(afero.NewOsFs(), nil, zap.NewNop())
			files, err := w.Collect(context.Background(), tt.root)
			if err != nil {
				t.Fatalf("Collect() error = %v", err)
			}
			if len(files) != 2 {
				t.Fatalf("Collect() found %d files, want 2", len(files))
			}

			var rel []string
			for _, f := range files {
				rel = append(rel, filepath.ToSlash(f.RelativePath))
				if want := filepath.Join(tt.root, f.RelativePath); f.Path != want {
					t.Errorf("Path = %s, want %s", f.Path, want)
				}
			}
			sort.Strings(rel)
			if rel[0] != "a.php" || rel[1] != "uploads/b.php" {
				t.Errorf("RelativePath = %v, want [a.php uploads/b.php]", rel)
			}
		})
	}
}
