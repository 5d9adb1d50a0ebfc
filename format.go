package twig

import (
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/aweris/twig/internal/digest"
)

// DateLayout is the commit date format used by logs.
const DateLayout = "Mon Jan 02 15:04:05 2006 -0700"

// FormatCommit renders one log entry.
func FormatCommit(c *Commit) string {
	var b strings.Builder
	b.WriteString("===\n")
	fmt.Fprintf(&b, "commit %s\n", c.Hash)
	if c.IsMerge() {
		fmt.Fprintf(&b, "Merge: %s %s\n", c.Parents[0][:7], c.Parents[1][:7])
	}
	fmt.Fprintf(&b, "Date: %s\n", c.Time.Format(DateLayout))
	b.WriteString(c.Message)
	b.WriteString("\n")
	return b.String()
}

// WriteLog writes the first-parent history of the current head.
func (r *Repository) WriteLog(w io.Writer) error {
	return r.writeEntries(w, r.History(r.Head()))
}

// WriteGlobalLog writes every commit ever made.
func (r *Repository) WriteGlobalLog(w io.Writer) error {
	return r.writeEntries(w, r.Commits())
}

func (r *Repository) writeEntries(w io.Writer, commits iter.Seq[*Commit]) error {
	first := true
	for c := range commits {
		if !first {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		first = false
		if _, err := io.WriteString(w, FormatCommit(c)); err != nil {
			return err
		}
	}
	return nil
}

// Status is the classification of the working tree against the head and
// the staging index.
type Status struct {
	Current   string
	Branches  []string
	Staged    []string
	Removed   []string
	Modified  []string // "name (modified)" or "name (deleted)"
	Untracked []string
}

// Status compares the working tree with the head and the staging index.
// Conflicted files are left out of the modifications.
func (r *Repository) Status() (*Status, error) {
	st := r.state
	head := r.Head()
	files, err := r.tree.List()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}

	present := make(map[string]bool, len(files))
	changes := make(map[string]string)
	var untracked []string

	for _, name := range files {
		present[name] = true
		staged, isStaged := st.Staged[name]
		committed, tracked := head.Manifest[name]
		if st.Removed[name] || (!isStaged && !tracked) {
			untracked = append(untracked, name)
			continue
		}

		data, err := r.readFile(name)
		if err != nil {
			return nil, err
		}
		h := digest.MustSum(data)
		switch {
		case staged != "":
			if h != staged {
				changes[name] = "modified"
			}
		case tracked:
			if h != committed {
				changes[name] = "modified"
			}
		}
	}
	for name, blob := range st.Staged {
		if blob != "" && !present[name] {
			changes[name] = "deleted"
		}
	}
	for name := range head.Manifest {
		if !present[name] && !st.Removed[name] {
			changes[name] = "deleted"
		}
	}

	var modified []string
	for _, name := range sortedKeys(changes) {
		if st.Conflicts[name] {
			continue
		}
		modified = append(modified, fmt.Sprintf("%s (%s)", name, changes[name]))
	}

	return &Status{
		Current:   st.Current,
		Branches:  r.Branches(),
		Staged:    r.Staged(),
		Removed:   r.Removed(),
		Modified:  modified,
		Untracked: untracked,
	}, nil
}

// WriteStatus renders Status as five sections, each followed by a blank
// line. Empty sections still print their header.
func (r *Repository) WriteStatus(w io.Writer) error {
	s, err := r.Status()
	if err != nil {
		return err
	}

	branches := make([]string, len(s.Branches))
	for i, name := range s.Branches {
		if name == s.Current {
			name = "*" + name
		}
		branches[i] = name
	}

	var b strings.Builder
	for _, sec := range []struct {
		title string
		lines []string
	}{
		{"Branches", branches},
		{"Staged Files", s.Staged},
		{"Removed Files", s.Removed},
		{"Modifications Not Staged For Commit", s.Modified},
		{"Untracked Files", s.Untracked},
	} {
		fmt.Fprintf(&b, "=== %s ===\n", sec.title)
		for _, line := range sec.lines {
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	_, err = io.WriteString(w, b.String())
	return err
}
