package twig

import (
	"fmt"
	"sort"
	"strings"
)

// MergeResult describes the outcome of a successful Merge.
type MergeResult struct {
	// Commit is the new merge commit, or the new head after a fast-forward.
	Commit *Commit
	// FastForward is set when the merge checked out the given branch
	// instead of creating a commit.
	FastForward bool
	// Conflicts lists files written with conflict markers, sorted.
	Conflicts []string
	// ConflictNotice is set when conflicts occurred while merging a local
	// branch. Merges of remote-tracking branches stay quiet.
	ConflictNotice bool
}

// Merge merges branch into the current branch. When the current head is
// behind branch, Merge checks branch out and makes it the current branch.
func (r *Repository) Merge(branch string) (*MergeResult, error) {
	st := r.state
	if len(st.Staged) > 0 || len(st.Removed) > 0 {
		return nil, ErrUncommitted
	}
	other, err := r.BranchHead(branch)
	if err != nil {
		return nil, err
	}
	if branch == st.Current {
		return nil, ErrSelfMerge
	}
	current := r.Head()
	if current.Hash == other.Hash {
		return nil, fmt.Errorf("%w: %s", ErrNothingToMerge, branch)
	}

	if st.isAncestor(current.Hash, other) {
		from := st.Current
		if err := r.CheckoutBranch(branch); err != nil {
			return nil, err
		}
		r.log.Printf("[merge] %s fast-forwarded to %s at %s", from, branch, other.Short())
		return &MergeResult{Commit: other, FastForward: true}, nil
	}
	if st.isAncestor(other.Hash, current) {
		return nil, fmt.Errorf("%w: %s", ErrAncestorMerge, branch)
	}

	split := st.splitPoint(current, other, r.opts.SplitStrategy)
	if other.Hash == split.Hash {
		return nil, fmt.Errorf("%w: %s", ErrNothingToMerge, branch)
	}
	r.log.Printf("[merge] %s into %s, split %s (%s)", branch, st.Current, split.Short(), r.opts.SplitStrategy)

	names := unionNames(current.Manifest, other.Manifest, split.Manifest)
	for _, name := range names {
		if _, tracked := current.Manifest[name]; !tracked && r.tree.Exists(name) {
			st.Conflicts[name] = true
			if err := r.Save(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %s", ErrUntrackedFile, name)
		}
	}

	additions := make(map[string]string)
	removals := make(map[string]bool)
	var conflicts []string

	for _, name := range names {
		s, c, o := split.Manifest[name], current.Manifest[name], other.Manifest[name]
		switch {
		case s == "" && c != "" && o == "":
			// added on current only
		case s == "" && c == "" && o != "":
			if err := r.restore(name, o); err != nil {
				return nil, err
			}
			additions[name] = o
		case s != "" && c == s && o == "":
			if err := r.removeFile(name); err != nil {
				return nil, err
			}
			removals[name] = true
		case s != "" && c == "" && o == s:
			// deleted on current, unchanged on other
		case c == o:
			// unchanged, or changed the same way on both sides
		case c == s:
			if err := r.restore(name, o); err != nil {
				return nil, err
			}
			additions[name] = o
		case o == s:
			// changed on current only
		default:
			blob, err := r.writeConflict(name, c, o)
			if err != nil {
				return nil, err
			}
			additions[name] = blob
			st.Conflicts[name] = true
			conflicts = append(conflicts, name)
		}
	}

	message := fmt.Sprintf("Merged %s into %s.", branch, st.Current)
	mc := st.createMergeCommit(current, other, message, r.now(), additions, removals)
	st.Branches[st.Current] = mc.Hash
	st.clearStaging()

	r.log.Printf("[merge] %s created, %d added, %d removed, %d conflicts",
		mc.Short(), len(additions), len(removals), len(conflicts))
	return &MergeResult{
		Commit:         mc,
		Conflicts:      conflicts,
		ConflictNotice: len(conflicts) > 0 && !strings.Contains(branch, "/"),
	}, nil
}

// writeConflict writes both versions of name, delimited by conflict
// markers, to the working tree and stores the result. An empty address
// stands for an absent file.
func (r *Repository) writeConflict(name, current, other string) (string, error) {
	var cur, oth []byte
	var err error
	if current != "" {
		if cur, err = r.Blob(current); err != nil {
			return "", err
		}
	}
	if other != "" {
		if oth, err = r.Blob(other); err != nil {
			return "", err
		}
	}

	content := conflictContent(cur, oth)
	if err := r.writeFile(name, content); err != nil {
		return "", err
	}
	return r.putBlob(content)
}

func conflictContent(current, other []byte) []byte {
	var b strings.Builder
	b.WriteString("<<<<<<< HEAD\n")
	b.Write(current)
	b.WriteString("=======\n")
	b.Write(other)
	b.WriteString(">>>>>>>\n")
	return []byte(b.String())
}

// AllAncestors returns the strict ancestors of the commit identified by
// ref in the order used by the lockstep split strategy.
func (r *Repository) AllAncestors(ref string) ([]*Commit, error) {
	c, err := r.Resolve(ref)
	if err != nil {
		return nil, err
	}
	return r.state.allAncestors(c), nil
}

// SplitPoint returns the merge base of two commits under the configured
// strategy.
func (r *Repository) SplitPoint(a, b string) (*Commit, error) {
	ca, err := r.Resolve(a)
	if err != nil {
		return nil, err
	}
	cb, err := r.Resolve(b)
	if err != nil {
		return nil, err
	}
	return r.state.splitPoint(ca, cb, r.opts.SplitStrategy), nil
}

// allAncestors walks parent edges breadth-first from c's parents. The
// result runs from the last discovered ancestor to the first; sets larger
// than four are then ordered by commit time.
func (s *State) allAncestors(c *Commit) []*Commit {
	seen := make(map[string]bool)
	var order []*Commit
	queue := append([]string(nil), c.Parents...)
	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]
		n, ok := s.Commits[h]
		if !ok {
			continue
		}
		if !seen[h] {
			seen[h] = true
			order = append(order, n)
		}
		queue = append(queue, n.Parents...)
	}

	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	if len(order) > 4 {
		sort.SliceStable(order, func(i, j int) bool { return order[i].Time.Before(order[j].Time) })
	}
	return order
}

// ancestorSet returns the hashes of c's strict ancestors.
func (s *State) ancestorSet(c *Commit) map[string]bool {
	set := make(map[string]bool)
	stack := append([]string(nil), c.Parents...)
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if set[h] {
			continue
		}
		n, ok := s.Commits[h]
		if !ok {
			continue
		}
		set[h] = true
		stack = append(stack, n.Parents...)
	}
	return set
}

// isAncestor reports whether hash is a strict ancestor of c.
func (s *State) isAncestor(hash string, c *Commit) bool {
	return s.ancestorSet(c)[hash]
}

func (s *State) splitPoint(a, b *Commit, strategy SplitStrategy) *Commit {
	if strategy == SplitLockstep {
		return s.lockstepSplit(a, b)
	}
	return s.lcaSplit(a, b)
}

// lockstepSplit compares both time-ordered ancestor lists index by index
// and returns the last agreeing entry. Lists that disagree from the start
// fall back to the initial commit.
func (s *State) lockstepSplit(a, b *Commit) *Commit {
	pa, pb := s.allAncestors(a), s.allAncestors(b)
	i := 0
	for i < len(pa) && i < len(pb) && pa[i].Hash == pb[i].Hash {
		i++
	}
	if i == 0 {
		return s.root(a)
	}
	return pa[i-1]
}

// lcaSplit returns the best common ancestor of a and b, both counted as
// their own ancestors: a common ancestor no other common ancestor
// descends from. Ties go to the latest commit time, then the larger hash.
func (s *State) lcaSplit(a, b *Commit) *Commit {
	inA := s.ancestorSet(a)
	inA[a.Hash] = true
	inB := s.ancestorSet(b)
	inB[b.Hash] = true

	common := make(map[string]bool)
	for h := range inA {
		if inB[h] {
			common[h] = true
		}
	}

	// drop every common ancestor that is a strict ancestor of another one
	dominated := make(map[string]bool)
	for h := range common {
		for anc := range s.ancestorSet(s.Commits[h]) {
			dominated[anc] = true
		}
	}

	var best *Commit
	for h := range common {
		if dominated[h] {
			continue
		}
		c := s.Commits[h]
		if best == nil || c.Time.After(best.Time) || (c.Time.Equal(best.Time) && c.Hash > best.Hash) {
			best = c
		}
	}
	if best == nil {
		return s.root(a)
	}
	return best
}

// root follows first parents from c to the initial commit.
func (s *State) root(c *Commit) *Commit {
	for len(c.Parents) > 0 {
		p, ok := s.Commits[c.Parents[0]]
		if !ok {
			break
		}
		c = p
	}
	return c
}

func unionNames(manifests ...map[string]string) []string {
	set := make(map[string]bool)
	for _, m := range manifests {
		for name := range m {
			set[name] = true
		}
	}
	return sortedKeys(set)
}
