// Package worktree reads and writes the files a repository tracks.
//
// The working tree is flat: only regular, non-hidden files directly inside
// the root are visible. Subdirectories (including the repository's own
// storage directory) are ignored.
package worktree

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aweris/twig/internal/fsutil"
)

// ErrInvalidName is returned for names that would escape the flat tree.
var ErrInvalidName = errors.New("worktree: invalid file name")

// Dir is a working directory.
type Dir struct {
	root string
}

// Open returns the working tree rooted at root.
func Open(root string) *Dir {
	return &Dir{root: root}
}

// Root returns the working directory path.
func (d *Dir) Root() string { return d.root }

// Read returns the content of name. A missing file yields an error
// matching fs.ErrNotExist.
func (d *Dir) Read(name string) ([]byte, error) {
	path, err := d.path(name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// Write creates or overwrites name.
func (d *Dir) Write(name string, data []byte) error {
	path, err := d.path(name)
	if err != nil {
		return err
	}
	return fsutil.SafeWrite(path, data, 0644)
}

// Remove deletes name. Removing a missing file is not an error.
func (d *Dir) Remove(name string) error {
	path, err := d.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Exists reports whether name is a regular file in the tree.
func (d *Dir) Exists(name string) bool {
	path, err := d.path(name)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// List returns the visible file names in sorted order.
func (d *Dir) List() ([]string, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", d.root, err)
	}
	var names []string
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (d *Dir) path(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(d.root, name), nil
}
