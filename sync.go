package twig

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aweris/twig/internal/fsutil"
	"github.com/aweris/twig/internal/remote"
	"github.com/aweris/twig/internal/store"
)

// LayoutScheme prefixes remote locations kept as OCI image layouts.
const LayoutScheme = "oci:"

// Remotes returns the configured remotes by name.
func (r *Repository) Remotes() map[string]string {
	return cloneManifest(r.state.Remotes)
}

// AddRemote records a remote location. A location is either the storage
// directory of another repository or "oci:<path>" for a layout directory.
func (r *Repository) AddRemote(name, location string) error {
	if _, ok := r.state.Remotes[name]; ok {
		return fmt.Errorf("%w: %s", ErrRemoteExists, name)
	}
	if !strings.HasPrefix(location, LayoutScheme) {
		location = filepath.FromSlash(location)
	}
	r.state.Remotes[name] = location
	r.log.Printf("[remote] added %s -> %s", name, location)
	return nil
}

// RemoveRemote forgets a remote. Its remote-tracking branches stay.
func (r *Repository) RemoveRemote(name string) error {
	if _, ok := r.state.Remotes[name]; !ok {
		return fmt.Errorf("%w: %s", ErrNoSuchRemote, name)
	}
	delete(r.state.Remotes, name)
	r.log.Printf("[remote] removed %s", name)
	return nil
}

// Fetch copies the remote's graph and blobs and points the local branch
// "<name>/<branch>" at the remote branch's head.
func (r *Repository) Fetch(ctx context.Context, name, branch string) error {
	ep, closeFn, err := r.endpoint(name)
	if err != nil {
		return err
	}
	defer closeFn()

	rs, err := r.loadRemoteState(ctx, ep)
	if err != nil {
		return err
	}
	head, ok := rs.Branches[branch]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRemoteNoBranch, branch)
	}

	r.log.Printf("[fetch] %s %s from %s", name, branch, ep)
	missing, err := missingObjects(ctx, ep.List, r.objects.Has)
	if err != nil {
		return err
	}
	objects := make(map[string][]byte, len(missing))
	for _, h := range missing {
		data, err := ep.Get(ctx, h)
		if err != nil {
			return fmt.Errorf("%w: fetch %s: %w", ErrIO, h, err)
		}
		objects[h] = data
	}
	if err := r.objects.PutMulti(ctx, objects); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	r.state.union(rs)
	tracking := name + "/" + branch
	r.state.Branches[tracking] = head
	r.log.Printf("[fetch] %s at %s, %d objects", tracking, head[:7], len(objects))
	return nil
}

// Push sends the current head to the remote's branch. The remote head must
// be the local head or one of its ancestors; a branch the remote lacks is
// created.
func (r *Repository) Push(ctx context.Context, name, branch string) error {
	ep, closeFn, err := r.endpoint(name)
	if err != nil {
		return err
	}
	defer closeFn()

	rs, err := r.loadRemoteState(ctx, ep)
	if err != nil {
		return err
	}
	local := r.Head()
	remoteHead, ok := rs.Branches[branch]
	if ok && remoteHead == local.Hash {
		r.log.Printf("[push] %s %s up to date", name, branch)
		return nil
	}
	if ok && !r.state.isAncestor(remoteHead, local) {
		return fmt.Errorf("%w: %s %s", ErrPushNeedsPull, name, branch)
	}

	r.log.Printf("[push] %s %s to %s", name, branch, ep)
	have, err := ep.List(ctx)
	if err != nil {
		return fmt.Errorf("%w: list remote objects: %w", ErrIO, err)
	}
	present := make(map[string]bool, len(have))
	for _, h := range have {
		present[h] = true
	}
	missing, err := missingObjects(ctx, r.objects.List, func(_ context.Context, h string) (bool, error) {
		return present[h], nil
	})
	if err != nil {
		return err
	}
	objects, err := r.objects.GetMulti(ctx, missing)
	if err != nil {
		return fmt.Errorf("%w: read objects: %w", ErrIO, err)
	}

	rs.union(r.state)
	rs.Branches[branch] = local.Hash
	data, err := rs.Encode()
	if err != nil {
		return err
	}
	if err := ep.Store(ctx, data, objects); err != nil {
		return fmt.Errorf("%w: push to %s: %w", ErrIO, ep, err)
	}
	r.log.Printf("[push] %s %s at %s, %d objects", name, branch, local.Short(), len(objects))
	return nil
}

// Pull fetches the remote branch and merges its remote-tracking branch.
func (r *Repository) Pull(ctx context.Context, name, branch string) (*MergeResult, error) {
	if err := r.Fetch(ctx, name, branch); err != nil {
		return nil, err
	}
	return r.Merge(name + "/" + branch)
}

// endpoint opens the remote called name.
func (r *Repository) endpoint(name string) (remote.Endpoint, func(), error) {
	loc, ok := r.state.Remotes[name]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrRemoteNotFound, name)
	}

	if path, ok := strings.CutPrefix(loc, LayoutScheme); ok {
		return remote.NewLayoutEndpoint(r.absPath(path), r.opts.TransferConcurrency), func() {}, nil
	}

	dir := r.absPath(loc)
	statePath := filepath.Join(dir, stateFile)
	if !fsutil.Exists(statePath) {
		return nil, nil, fmt.Errorf("%w: %s", ErrRemoteNotFound, loc)
	}
	objects, err := store.NewLocalStore(filepath.Join(dir, objectsDir), r.opts.storeOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	return remote.NewDirEndpoint(loc, statePath, objects), func() { objects.Close() }, nil
}

func (r *Repository) absPath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(r.tree.Root(), p)
}

func (r *Repository) loadRemoteState(ctx context.Context, ep remote.Endpoint) (*State, error) {
	data, err := ep.LoadState(ctx)
	switch {
	case errors.Is(err, remote.ErrEmpty):
		return NewState(), nil
	case errors.Is(err, remote.ErrNoRepository):
		return nil, fmt.Errorf("%w: %s", ErrRemoteNotFound, ep)
	case err != nil:
		return nil, fmt.Errorf("%w: load remote state: %w", ErrIO, err)
	}
	st, err := DecodeState(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	return st, nil
}

// missingObjects lists the addresses from list that has reports absent.
func missingObjects(ctx context.Context, list func(context.Context) ([]string, error), has func(context.Context, string) (bool, error)) ([]string, error) {
	all, err := list(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list objects: %w", ErrIO, err)
	}
	var missing []string
	for _, h := range all {
		ok, err := has(ctx, h)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrIO, err)
		}
		if !ok {
			missing = append(missing, h)
		}
	}
	return missing, nil
}
