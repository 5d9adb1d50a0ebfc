package fsutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSafeWrite_AtomicRename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	if err := SafeWrite(path, []byte("hello world"), 0644); err != nil {
		t.Fatalf("SafeWrite: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "hello world" {
		t.Fatalf("got %q, want %q", got, "hello world")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Mode().Perm() != 0644 {
		t.Fatalf("perm = %o, want 0644", info.Mode().Perm())
	}
}

func TestSafeWrite_OverwriteExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a")

	if err := SafeWrite(path, []byte("first"), 0644); err != nil {
		t.Fatalf("SafeWrite first: %v", err)
	}
	if err := SafeWrite(path, []byte("second"), 0644); err != nil {
		t.Fatalf("SafeWrite second: %v", err)
	}

	got, _ := os.ReadFile(path)
	if string(got) != "second" {
		t.Fatalf("got %q, want %q", got, "second")
	}
}

func TestSafeWrite_NoPartialFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a")
	if err := SafeWrite(path, []byte("original"), 0644); err != nil {
		t.Fatalf("SafeWrite: %v", err)
	}

	if err := SafeWrite(filepath.Join(dir, "nodir", "a"), []byte("bad"), 0644); err == nil {
		t.Fatal("expected error writing to nonexistent dir")
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if e.Name() != "a" {
			t.Fatalf("unexpected file left behind: %s", e.Name())
		}
	}
	if !Exists(path) {
		t.Fatal("original file disappeared")
	}
}
