package pipeline

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// TestDiscover tests input file discovery.
func TestDiscover(t *testing.T) {
	t.Parallel()

	t.Run("lists matching files sorted", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		for _, name := range []string{"b.svg", "a.SVG", "notes.txt", "c.svgz"} {
			writeFile(t, dir, name, "<svg/>")
		}
		if err := os.Mkdir(filepath.Join(dir, "sub.svg"), 0o750); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}

		files, created, err := Discover(dir, ".svg")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if created {
			t.Error("existing directory must not be reported as created")
		}
		want := []string{"a.SVG", "b.svg"}
		if !reflect.DeepEqual(files, want) {
			t.Errorf("Discover() = %v, want %v", files, want)
		}
	})

	t.Run("extension without dot", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFile(t, dir, "a.svg", "<svg/>")

		files, _, err := Discover(dir, "svg")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(files) != 1 {
			t.Errorf("expected 1 file, got %v", files)
		}
	})

	t.Run("empty directory yields no files", func(t *testing.T) {
		t.Parallel()

		files, created, err := Discover(t.TempDir(), ".svg")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if created || len(files) != 0 {
			t.Errorf("expected no files, got %v (created=%v)", files, created)
		}
	})

	t.Run("missing directory is created", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "svg")

		files, created, err := Discover(dir, ".svg")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !created {
			t.Error("expected created to be true")
		}
		if len(files) != 0 {
			t.Errorf("expected no files, got %v", files)
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("expected directory to exist, got %v", err)
		}
	})

	t.Run("fails when directory cannot be created", func(t *testing.T) {
		t.Parallel()

		parent := writeFile(t, t.TempDir(), "file", "x")

		if _, _, err := Discover(filepath.Join(parent, "svg"), ".svg"); err == nil {
			t.Error("expected error when parent is a file")
		}
	})
}

// TestPrepareOutput tests output directory creation.
func TestPrepareOutput(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "svg-min", "nested")
	if err := PrepareOutput(dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("expected directory to exist, got %v", err)
	}
}
