package twig

import (
	"fmt"
	"io/fs"
	"sort"
	"sync"
)

// Snapshot is a read-only fs.FS view of one commit. The tree is flat: the
// root directory holds every file of the manifest. Blob contents are
// loaded on first access and kept for the snapshot's lifetime.
type Snapshot struct {
	repo   *Repository
	commit *Commit

	mu    sync.Mutex
	cache map[string][]byte
}

var (
	_ fs.ReadFileFS = (*Snapshot)(nil)
	_ fs.ReadDirFS  = (*Snapshot)(nil)
	_ fs.StatFS     = (*Snapshot)(nil)
)

// Snapshot returns a view of the commit identified by ref.
func (r *Repository) Snapshot(ref string) (*Snapshot, error) {
	c, err := r.Resolve(ref)
	if err != nil {
		return nil, err
	}
	return &Snapshot{repo: r, commit: c, cache: make(map[string][]byte)}, nil
}

// Commit returns the commit the snapshot shows.
func (s *Snapshot) Commit() *Commit { return s.commit }

func (s *Snapshot) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	if name == "." {
		entries, err := s.ReadDir(".")
		if err != nil {
			return nil, err
		}
		return &dirFile{info: s.rootInfo(), entries: entries}, nil
	}
	info, data, err := s.load("open", name)
	if err != nil {
		return nil, err
	}
	return newFile(info, data), nil
}

func (s *Snapshot) ReadFile(name string) ([]byte, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrInvalid}
	}
	if name == "." {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fmt.Errorf("is a directory")}
	}
	_, data, err := s.load("read", name)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), data...), nil
}

func (s *Snapshot) ReadDir(name string) ([]fs.DirEntry, error) {
	if name != "." {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrNotExist}
	}
	names := make([]string, 0, len(s.commit.Manifest))
	for n := range s.commit.Manifest {
		names = append(names, n)
	}
	sort.Strings(names)

	entries := make([]fs.DirEntry, 0, len(names))
	for _, n := range names {
		info, _, err := s.load("readdir", n)
		if err != nil {
			return nil, err
		}
		entries = append(entries, info)
	}
	return entries, nil
}

func (s *Snapshot) Stat(name string) (fs.FileInfo, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrInvalid}
	}
	if name == "." {
		return s.rootInfo(), nil
	}
	info, _, err := s.load("stat", name)
	if err != nil {
		return nil, err
	}
	return info, nil
}

func (s *Snapshot) rootInfo() *fileInfo {
	return &fileInfo{name: ".", mode: fs.ModeDir | 0755, modTime: s.commit.Time}
}

func (s *Snapshot) load(op, name string) (*fileInfo, []byte, error) {
	blob, ok := s.commit.Manifest[name]
	if !ok {
		return nil, nil, &fs.PathError{Op: op, Path: name, Err: fs.ErrNotExist}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.cache[blob]
	if !ok {
		var err error
		data, err = s.repo.Blob(blob)
		if err != nil {
			return nil, nil, &fs.PathError{Op: op, Path: name, Err: err}
		}
		s.cache[blob] = data
	}
	return &fileInfo{name: name, size: int64(len(data)), mode: 0644, modTime: s.commit.Time}, data, nil
}
