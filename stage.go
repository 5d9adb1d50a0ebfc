package twig

import (
	"github.com/aweris/twig/internal/digest"
)

// Add stages the working file name against the current head.
//
// A pending removal of a file whose content matches the head is cancelled.
// A file matching the head is otherwise left alone, as is a file that
// already has a staged entry. Anything else is stored and staged.
func (r *Repository) Add(name string) error {
	data, err := r.readFile(name)
	if err != nil {
		return err
	}
	h := digest.MustSum(data)
	committed, tracked := r.Head().Manifest[name]
	st := r.state
	_, staged := st.Staged[name]

	switch {
	case st.Removed[name] && tracked && h == committed:
		delete(st.Removed, name)
		st.Staged[name] = ""
		r.log.Printf("[add] %s restored", name)
		return nil
	case tracked && h == committed && !st.Removed[name]:
		return nil
	case staged:
		return nil
	}

	if _, err := r.putBlob(data); err != nil {
		return err
	}
	delete(st.Removed, name)
	st.Staged[name] = h
	r.log.Printf("[add] %s %s", name, h[:7])
	return nil
}

// Remove unstages name, or marks it for removal when it is not staged. A
// file tracked by the head is also deleted from the working tree.
func (r *Repository) Remove(name string) error {
	_, tracked := r.Head().Manifest[name]
	_, staged := r.state.Staged[name]
	if !tracked && !staged {
		return ErrNothingToRemove
	}

	if tracked {
		if err := r.removeFile(name); err != nil {
			return err
		}
	}
	if staged {
		delete(r.state.Staged, name)
	} else {
		r.state.Removed[name] = true
	}
	r.log.Printf("[rm] %s", name)
	return nil
}

// Staged returns the names with a pending blob, sorted.
func (r *Repository) Staged() []string {
	var names []string
	for name, blob := range r.state.Staged {
		if blob != "" {
			names = append(names, name)
		}
	}
	return sortStrings(names)
}

// Removed returns the names pending removal, sorted.
func (r *Repository) Removed() []string {
	return sortedKeys(r.state.Removed)
}

// Conflicts returns the names holding unresolved conflict content, sorted.
func (r *Repository) Conflicts() []string {
	return sortedKeys(r.state.Conflicts)
}
