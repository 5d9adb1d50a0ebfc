package twig

import (
	"fmt"
	"sort"
)

// CurrentBranch returns the name of the checked-out branch.
func (r *Repository) CurrentBranch() string { return r.state.Current }

// Branches returns every branch name in lexicographic order.
func (r *Repository) Branches() []string {
	names := make([]string, 0, len(r.state.Branches))
	for name := range r.state.Branches {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BranchHead returns the commit a branch points at.
func (r *Repository) BranchHead(name string) (*Commit, error) {
	h, ok := r.state.Branches[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchBranch, name)
	}
	return r.state.Commits[h], nil
}

// CreateBranch adds a branch pointing at the current head. The current
// branch does not change.
func (r *Repository) CreateBranch(name string) error {
	if _, ok := r.state.Branches[name]; ok {
		return fmt.Errorf("%w: %s", ErrBranchExists, name)
	}
	r.state.Branches[name] = r.Head().Hash
	r.log.Printf("[branch] %s at %s", name, r.Head().Short())
	return nil
}

// RemoveBranch deletes the pointer only; commits stay in the graph.
func (r *Repository) RemoveBranch(name string) error {
	if _, ok := r.state.Branches[name]; !ok {
		return fmt.Errorf("%w: %s", ErrNoSuchBranch, name)
	}
	if name == r.state.Current {
		return ErrRemoveCurrent
	}
	delete(r.state.Branches, name)
	r.log.Printf("[branch] removed %s", name)
	return nil
}
