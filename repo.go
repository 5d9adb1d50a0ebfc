package twig

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/aweris/twig/internal/fsutil"
	"github.com/aweris/twig/internal/store"
	"github.com/aweris/twig/internal/worktree"
)

const (
	// DirName is the storage directory inside a working directory.
	DirName = ".twig"

	stateFile  = "state.json"
	objectsDir = "objects"
)

// Repository is one working directory with its storage directory loaded.
// Operations mutate the in-memory state; Save persists it.
type Repository struct {
	dir     string
	state   *State
	objects *store.LocalStore
	tree    *worktree.Dir
	opts    *Options
	log     *log.Logger
}

// Init creates a repository in workDir with the initial commit on master.
func Init(workDir string, opts ...Option) (*Repository, error) {
	dir := filepath.Join(workDir, DirName)
	if fsutil.Exists(dir) {
		return nil, ErrAlreadyInitialized
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: create %s: %w", ErrIO, dir, err)
	}

	r, err := open(workDir, NewState(), opts)
	if err != nil {
		return nil, err
	}
	if err := r.Save(); err != nil {
		r.Close()
		return nil, err
	}
	r.log.Printf("[init] %s", dir)
	return r, nil
}

// Open loads the repository in workDir.
func Open(workDir string, opts ...Option) (*Repository, error) {
	dir := filepath.Join(workDir, DirName)
	data, err := os.ReadFile(filepath.Join(dir, stateFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotInitialized
		}
		return nil, fmt.Errorf("%w: read state: %w", ErrIO, err)
	}
	st, err := DecodeState(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	return open(workDir, st, opts)
}

func open(workDir string, st *State, opts []Option) (*Repository, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	switch options.SplitStrategy {
	case SplitLCA, SplitLockstep:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidStrategy, options.SplitStrategy)
	}

	dir := filepath.Join(workDir, DirName)
	objects, err := store.NewLocalStore(filepath.Join(dir, objectsDir), options.storeOptions())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}

	return &Repository{
		dir:     dir,
		state:   st,
		objects: objects,
		tree:    worktree.Open(workDir),
		opts:    options,
		log:     options.Logger,
	}, nil
}

// State returns the in-memory snapshot. Callers must not modify it.
func (r *Repository) State() *State { return r.state }

// WorkDir returns the working directory.
func (r *Repository) WorkDir() string { return r.tree.Root() }

// Save writes the snapshot to the storage directory.
func (r *Repository) Save() error {
	data, err := r.state.Encode()
	if err != nil {
		return err
	}
	if err := fsutil.SafeWrite(filepath.Join(r.dir, stateFile), data, 0644); err != nil {
		return fmt.Errorf("%w: write state: %w", ErrIO, err)
	}
	return nil
}

// Close releases the content store. It does not save.
func (r *Repository) Close() error {
	return r.objects.Close()
}

func (r *Repository) putBlob(data []byte) (string, error) {
	h, err := r.objects.Put(context.Background(), data)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrIO, err)
	}
	return h, nil
}

// Blob returns the content stored at address.
func (r *Repository) Blob(address string) ([]byte, error) {
	data, err := r.objects.Get(context.Background(), address)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: blob %s", ErrNotFound, address)
		}
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	return data, nil
}

func (r *Repository) readFile(name string) ([]byte, error) {
	data, err := r.tree.Read(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, name)
		}
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	return data, nil
}

func (r *Repository) writeFile(name string, data []byte) error {
	if err := r.tree.Write(name, data); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrIO, name, err)
	}
	return nil
}

func (r *Repository) removeFile(name string) error {
	if err := r.tree.Remove(name); err != nil {
		return fmt.Errorf("%w: remove %s: %w", ErrIO, name, err)
	}
	return nil
}

// restore writes the blob at address into the working file name.
func (r *Repository) restore(name, address string) error {
	data, err := r.Blob(address)
	if err != nil {
		return err
	}
	return r.writeFile(name, data)
}
