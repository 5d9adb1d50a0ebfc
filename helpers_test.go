package twig

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// stepClock returns a clock that advances one minute per call.
func stepClock() func() time.Time {
	t := epoch
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func newRepo(t *testing.T, opts ...Option) (*Repository, string) {
	t.Helper()
	dir := t.TempDir()
	r, err := Init(dir, append([]Option{WithClock(stepClock())}, opts...)...)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r, dir
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func readFile(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return string(data)
}

func fileExists(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}

// commitFile writes, stages and commits one file.
func commitFile(t *testing.T, r *Repository, dir, name, content, message string) *Commit {
	t.Helper()
	writeFile(t, dir, name, content)
	if err := r.Add(name); err != nil {
		t.Fatalf("Add(%s): %v", name, err)
	}
	c, err := r.Commit(message)
	if err != nil {
		t.Fatalf("Commit(%q): %v", message, err)
	}
	return c
}

func checkout(t *testing.T, r *Repository, branch string) {
	t.Helper()
	if err := r.CheckoutBranch(branch); err != nil {
		t.Fatalf("CheckoutBranch(%s): %v", branch, err)
	}
}

func branch(t *testing.T, r *Repository, name string) {
	t.Helper()
	if err := r.CreateBranch(name); err != nil {
		t.Fatalf("CreateBranch(%s): %v", name, err)
	}
}
