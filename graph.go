package twig

import (
	"iter"
	"sort"
	"strings"
	"time"
)

// Head returns the commit the current branch points at.
func (r *Repository) Head() *Commit { return r.state.head() }

// Commit records the staged changes as a new commit on the current branch.
func (r *Repository) Commit(message string) (*Commit, error) {
	if message == "" {
		return nil, ErrEmptyMessage
	}
	if len(r.state.Staged) == 0 && len(r.state.Removed) == 0 {
		return nil, ErrNothingToCommit
	}

	c := r.state.createCommit(r.Head(), message, r.now())
	r.state.Branches[r.state.Current] = c.Hash
	r.state.clearStaging()
	clear(r.state.Conflicts)

	r.log.Printf("[commit] %s %s %q", r.state.Current, c.Short(), message)
	return c, nil
}

// createCommit builds a child of parent from the staging index. Staged
// blobs are applied first, then removals.
func (s *State) createCommit(parent *Commit, message string, t time.Time) *Commit {
	manifest := map[string]string{}
	var parents []string
	if parent != nil {
		manifest = cloneManifest(parent.Manifest)
		parents = []string{parent.Hash}
	}
	for name, blob := range s.Staged {
		if blob != "" {
			manifest[name] = blob
		}
	}
	for name := range s.Removed {
		delete(manifest, name)
	}
	return s.register(newCommit(message, t, manifest, parents...))
}

// createMergeCommit builds a commit with parents (head, other) whose
// manifest is head's with additions applied, then removals.
func (s *State) createMergeCommit(head, other *Commit, message string, t time.Time, additions map[string]string, removals map[string]bool) *Commit {
	manifest := cloneManifest(head.Manifest)
	for name, blob := range additions {
		manifest[name] = blob
	}
	for name := range removals {
		delete(manifest, name)
	}
	return s.register(newCommit(message, t, manifest, head.Hash, other.Hash))
}

// Resolve finds the commit whose hash starts with prefix. A full hash
// always matches exactly; a prefix shared by several commits is rejected.
func (r *Repository) Resolve(prefix string) (*Commit, error) {
	return r.state.resolve(prefix)
}

func (s *State) resolve(prefix string) (*Commit, error) {
	if prefix == "" {
		return nil, ErrNoSuchCommit
	}
	if c, ok := s.Commits[prefix]; ok {
		return c, nil
	}
	var found *Commit
	for h, c := range s.Commits {
		if !strings.HasPrefix(h, prefix) {
			continue
		}
		if found != nil {
			return nil, ErrAmbiguousCommit
		}
		found = c
	}
	if found == nil {
		return nil, ErrNoSuchCommit
	}
	return found, nil
}

// FindByMessage returns every commit whose message equals message, oldest
// first.
func (r *Repository) FindByMessage(message string) ([]*Commit, error) {
	var res []*Commit
	for c := range r.Commits() {
		if c.Message == message {
			res = append(res, c)
		}
	}
	if len(res) == 0 {
		return nil, ErrNoCommitMessage
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].Time.Before(res[j].Time) })
	return res, nil
}

// History yields c and its first-parent ancestors down to the initial
// commit.
func (r *Repository) History(c *Commit) iter.Seq[*Commit] {
	return func(yield func(*Commit) bool) {
		for n := c; n != nil; {
			if !yield(n) || len(n.Parents) == 0 {
				return
			}
			n = r.state.Commits[n.Parents[0]]
		}
	}
}

// Commits yields every commit in the graph, newest first.
func (r *Repository) Commits() iter.Seq[*Commit] {
	all := make([]*Commit, 0, len(r.state.Commits))
	for _, c := range r.state.Commits {
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].Time.Equal(all[j].Time) {
			return all[i].Time.After(all[j].Time)
		}
		return all[i].Hash < all[j].Hash
	})
	return func(yield func(*Commit) bool) {
		for _, c := range all {
			if !yield(c) {
				return
			}
		}
	}
}

func (r *Repository) now() time.Time {
	return r.opts.Clock().Round(0)
}
