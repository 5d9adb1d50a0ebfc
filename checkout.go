package twig

import "fmt"

// CheckoutFile overwrites the working file name with its version in the
// commit identified by ref. The staging index is untouched.
func (r *Repository) CheckoutFile(ref, name string) error {
	c, err := r.Resolve(ref)
	if err != nil {
		return err
	}
	blob, ok := c.Manifest[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrFileNotInCommit, name)
	}
	return r.restore(name, blob)
}

// CheckoutHeadFile restores name from the current head.
func (r *Repository) CheckoutHeadFile(name string) error {
	return r.CheckoutFile(r.Head().Hash, name)
}

// CheckoutBranch makes name the current branch and replaces the working
// tree with its head's snapshot.
func (r *Repository) CheckoutBranch(name string) error {
	target, err := r.BranchHead(name)
	if err != nil {
		return err
	}
	if name == r.state.Current {
		return ErrCheckoutCurrent
	}
	if err := r.checkoutNode(target); err != nil {
		return err
	}

	r.state.Current = name
	r.state.clearStaging()
	clear(r.state.Conflicts)
	r.log.Printf("[checkout] %s at %s", name, target.Short())
	return nil
}

// Reset checks out the commit identified by ref and moves the current
// branch to it.
func (r *Repository) Reset(ref string) error {
	target, err := r.Resolve(ref)
	if err != nil {
		return err
	}
	if err := r.checkoutNode(target); err != nil {
		return err
	}

	r.state.Branches[r.state.Current] = target.Hash
	r.state.clearStaging()
	clear(r.state.Conflicts)
	r.log.Printf("[reset] %s to %s", r.state.Current, target.Short())
	return nil
}

// checkoutNode replaces the working tree with target's snapshot. Untracked
// files that would be overwritten abort the checkout before anything is
// written.
func (r *Repository) checkoutNode(target *Commit) error {
	current := r.Head()

	names := sortedKeys(target.Manifest)
	for _, name := range names {
		if _, tracked := current.Manifest[name]; tracked || r.state.Removed[name] {
			continue
		}
		if r.tree.Exists(name) {
			return fmt.Errorf("%w: %s", ErrUntrackedFile, name)
		}
	}

	for _, name := range names {
		if err := r.restore(name, target.Manifest[name]); err != nil {
			return err
		}
	}
	for _, name := range sortedKeys(current.Manifest) {
		if _, ok := target.Manifest[name]; ok {
			continue
		}
		if err := r.removeFile(name); err != nil {
			return err
		}
	}
	return nil
}
