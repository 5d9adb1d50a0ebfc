package twig

import (
	"errors"
	"io/fs"
	"slices"
	"testing"
)

func TestMerge_FastForward(t *testing.T) {
	r, dir := newRepo(t)
	master := commitFile(t, r, dir, "a", "1", "first")
	branch(t, r, "b")
	checkout(t, r, "b")
	commitFile(t, r, dir, "a", "2", "second")
	bHead := commitFile(t, r, dir, "c", "3", "third")
	checkout(t, r, "master")
	commits := len(r.State().Commits)

	res, err := r.Merge("b")
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if !res.FastForward {
		t.Fatal("expected a fast-forward")
	}
	if len(r.State().Commits) != commits {
		t.Errorf("fast-forward created %d commits", len(r.State().Commits)-commits)
	}
	if r.Head() != bHead {
		t.Errorf("head = %s, want %s", r.Head().Short(), bHead.Short())
	}
	if r.CurrentBranch() != "b" {
		t.Errorf("current = %q, want b", r.CurrentBranch())
	}
	if m, _ := r.BranchHead("master"); m != master {
		t.Errorf("master = %s, want %s", m.Short(), master.Short())
	}

	snap, err := r.Snapshot(bHead.Hash)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	entries, _ := fs.ReadDir(snap, ".")
	for _, e := range entries {
		want, _ := fs.ReadFile(snap, e.Name())
		if got := readFile(t, dir, e.Name()); got != string(want) {
			t.Errorf("%s = %q, want %q", e.Name(), got, want)
		}
	}
}

// Both branches move after the split; b only changes a.
func TestMerge_TakesOtherChange(t *testing.T) {
	r, dir := newRepo(t)
	commitFile(t, r, dir, "a", "1", "first")
	branch(t, r, "b")
	checkout(t, r, "b")
	bHead := commitFile(t, r, dir, "a", "2", "second")
	checkout(t, r, "master")
	mHead := commitFile(t, r, dir, "m", "m", "master work")

	res, err := r.Merge("b")
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if res.FastForward || len(res.Conflicts) != 0 {
		t.Fatalf("result = %+v, want a clean merge commit", res)
	}
	mc := res.Commit
	if !slices.Equal(mc.Parents, []string{mHead.Hash, bHead.Hash}) {
		t.Errorf("parents = %v, want [%s %s]", mc.Parents, mHead.Short(), bHead.Short())
	}
	if mc.Message != "Merged b into master." {
		t.Errorf("message = %q", mc.Message)
	}
	if got := readFile(t, dir, "a"); got != "2" {
		t.Errorf("a = %q, want %q", got, "2")
	}
	if mc.Manifest["a"] != bHead.Manifest["a"] || mc.Manifest["m"] != mHead.Manifest["m"] {
		t.Errorf("manifest = %v", mc.Manifest)
	}
	if r.Head() != mc {
		t.Errorf("head not moved to merge commit")
	}
}

func TestMerge_Conflict(t *testing.T) {
	r, dir := newRepo(t)
	commitFile(t, r, dir, "a", "base\n", "base")
	branch(t, r, "b")
	commitFile(t, r, dir, "a", "X\n", "master sets X")
	checkout(t, r, "b")
	commitFile(t, r, dir, "a", "Y\n", "b sets Y")
	checkout(t, r, "master")

	res, err := r.Merge("b")
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	want := "<<<<<<< HEAD\nX\n=======\nY\n>>>>>>>\n"
	if got := readFile(t, dir, "a"); got != want {
		t.Errorf("a = %q, want %q", got, want)
	}
	if !slices.Equal(res.Conflicts, []string{"a"}) || !res.ConflictNotice {
		t.Errorf("result = %+v, want conflict on a with notice", res)
	}
	if !slices.Equal(r.Conflicts(), []string{"a"}) {
		t.Errorf("conflict set = %v, want [a]", r.Conflicts())
	}
	blob, err := r.Blob(res.Commit.Manifest["a"])
	if err != nil || string(blob) != want {
		t.Errorf("committed a = %q, %v", blob, err)
	}
}

func TestMerge_ConflictWithDeletion(t *testing.T) {
	r, dir := newRepo(t)
	commitFile(t, r, dir, "a", "base\n", "base")
	branch(t, r, "b")
	r.Remove("a")
	r.Commit("master drops a")
	checkout(t, r, "b")
	commitFile(t, r, dir, "a", "Y\n", "b sets Y")
	checkout(t, r, "master")

	if _, err := r.Merge("b"); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	want := "<<<<<<< HEAD\n=======\nY\n>>>>>>>\n"
	if got := readFile(t, dir, "a"); got != want {
		t.Errorf("a = %q, want %q", got, want)
	}
}

func TestMerge_FileRules(t *testing.T) {
	r, dir := newRepo(t)
	commitFile(t, r, dir, "keep", "k", "base keep")
	commitFile(t, r, dir, "gone", "g", "base gone")
	commitFile(t, r, dir, "dropped", "d", "base dropped")
	branch(t, r, "b")

	// master: drop "dropped", add "mine"
	r.Remove("dropped")
	r.Commit("master drops")
	commitFile(t, r, dir, "mine", "m", "master adds")

	// b: drop "gone", add "theirs"
	checkout(t, r, "b")
	r.Remove("gone")
	r.Commit("b drops")
	commitFile(t, r, dir, "theirs", "t", "b adds")
	checkout(t, r, "master")

	res, err := r.Merge("b")
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	m := res.Commit.Manifest
	for _, name := range []string{"keep", "mine", "theirs"} {
		if _, ok := m[name]; !ok {
			t.Errorf("%s missing from merge manifest", name)
		}
		if !fileExists(dir, name) {
			t.Errorf("%s missing from working tree", name)
		}
	}
	for _, name := range []string{"gone", "dropped"} {
		if _, ok := m[name]; ok {
			t.Errorf("%s still in merge manifest", name)
		}
		if fileExists(dir, name) {
			t.Errorf("%s still in working tree", name)
		}
	}
	if len(res.Conflicts) != 0 {
		t.Errorf("conflicts = %v, want none", res.Conflicts)
	}
}

func TestMerge_Rejections(t *testing.T) {
	r, dir := newRepo(t)
	commitFile(t, r, dir, "a", "1", "first")
	branch(t, r, "old")
	commitFile(t, r, dir, "a", "2", "second")

	before, _ := r.State().Encode()
	if _, err := r.Merge("old"); !errors.Is(err, ErrAncestorMerge) {
		t.Errorf("merge ancestor err = %v, want ErrAncestorMerge", err)
	}
	if after, _ := r.State().Encode(); string(after) != string(before) {
		t.Error("state changed by rejected merge")
	}
	if got := readFile(t, dir, "a"); got != "2" {
		t.Errorf("a = %q, want %q", got, "2")
	}

	if _, err := r.Merge("master"); !errors.Is(err, ErrSelfMerge) {
		t.Errorf("self merge err = %v, want ErrSelfMerge", err)
	}
	if _, err := r.Merge("nope"); !errors.Is(err, ErrNoSuchBranch) {
		t.Errorf("unknown branch err = %v, want ErrNoSuchBranch", err)
	}

	branch(t, r, "same")
	if _, err := r.Merge("same"); !errors.Is(err, ErrNothingToMerge) {
		t.Errorf("merge same commit err = %v, want ErrNothingToMerge", err)
	}

	writeFile(t, dir, "a", "3")
	r.Add("a")
	if _, err := r.Merge("old"); !errors.Is(err, ErrUncommitted) {
		t.Errorf("merge with staged changes err = %v, want ErrUncommitted", err)
	}
}

func TestMerge_SameHead(t *testing.T) {
	for _, strategy := range []SplitStrategy{SplitLCA, SplitLockstep} {
		t.Run(string(strategy), func(t *testing.T) {
			r, dir := newRepo(t, WithSplitStrategy(strategy))
			commitFile(t, r, dir, "a", "1", "first")
			commitFile(t, r, dir, "a", "2", "second")
			branch(t, r, "twin")
			commits := len(r.State().Commits)

			if _, err := r.Merge("twin"); !errors.Is(err, ErrNothingToMerge) {
				t.Errorf("err = %v, want ErrNothingToMerge", err)
			}
			if len(r.State().Commits) != commits {
				t.Errorf("merge of an identical head created %d commits", len(r.State().Commits)-commits)
			}
		})
	}
}

func TestMerge_UntrackedInTheWay(t *testing.T) {
	r, dir := newRepo(t)
	commitFile(t, r, dir, "a", "1", "first")
	branch(t, r, "b")
	checkout(t, r, "b")
	commitFile(t, r, dir, "new", "theirs", "b adds new")
	checkout(t, r, "master")
	commitFile(t, r, dir, "a", "2", "master moves")
	writeFile(t, dir, "new", "mine")
	head := r.Head()

	_, err := r.Merge("b")
	if !errors.Is(err, ErrUntrackedFile) {
		t.Fatalf("err = %v, want ErrUntrackedFile", err)
	}
	if r.Head() != head {
		t.Error("head moved on aborted merge")
	}
	if got := readFile(t, dir, "new"); got != "mine" {
		t.Errorf("new = %q, want %q", got, "mine")
	}

	// the conflict set was persisted before aborting
	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reopened.Close()
	if !slices.Equal(reopened.Conflicts(), []string{"new"}) {
		t.Errorf("persisted conflicts = %v, want [new]", reopened.Conflicts())
	}
}

// crissCross builds a graph where branch b has merged master and branch c
// forked from b before that merge:
//
//	init - A - M1 ------.
//	        \            \
//	         B1 -------- MM   (b)
//	           \
//	            B2            (c)
//
// A sets f=base. B1 sets f=b1, M1 adds g, B2 sets f=b2.
func crissCross(t *testing.T, opts ...Option) (*Repository, string) {
	t.Helper()
	r, dir := newRepo(t, opts...)
	commitFile(t, r, dir, "f", "base\n", "A")
	branch(t, r, "b")
	checkout(t, r, "b")
	commitFile(t, r, dir, "f", "b1\n", "B1")
	branch(t, r, "c")
	checkout(t, r, "master")
	commitFile(t, r, dir, "g", "m1\n", "M1")
	checkout(t, r, "b")
	if _, err := r.Merge("master"); err != nil {
		t.Fatalf("Merge(master): %v", err)
	}
	checkout(t, r, "c")
	commitFile(t, r, dir, "f", "b2\n", "B2")
	checkout(t, r, "b")
	return r, dir
}

func TestMerge_SplitStrategies(t *testing.T) {
	t.Run("lca", func(t *testing.T) {
		r, dir := crissCross(t)
		c, _ := r.BranchHead("c")
		split, err := r.SplitPoint(r.Head().Hash, c.Hash)
		if err != nil {
			t.Fatalf("SplitPoint: %v", err)
		}
		if split.Message != "B1" {
			t.Errorf("split = %q, want B1", split.Message)
		}

		res, err := r.Merge("c")
		if err != nil {
			t.Fatalf("Merge: %v", err)
		}
		if len(res.Conflicts) != 0 {
			t.Errorf("conflicts = %v, want none", res.Conflicts)
		}
		if got := readFile(t, dir, "f"); got != "b2\n" {
			t.Errorf("f = %q, want %q", got, "b2\n")
		}
	})

	t.Run("lockstep", func(t *testing.T) {
		r, dir := crissCross(t, WithSplitStrategy(SplitLockstep))
		c, _ := r.BranchHead("c")
		split, err := r.SplitPoint(r.Head().Hash, c.Hash)
		if err != nil {
			t.Fatalf("SplitPoint: %v", err)
		}
		if split.Message != "A" {
			t.Errorf("split = %q, want A", split.Message)
		}

		res, err := r.Merge("c")
		if err != nil {
			t.Fatalf("Merge: %v", err)
		}
		if !slices.Equal(res.Conflicts, []string{"f"}) {
			t.Errorf("conflicts = %v, want [f]", res.Conflicts)
		}
		want := "<<<<<<< HEAD\nb1\n=======\nb2\n>>>>>>>\n"
		if got := readFile(t, dir, "f"); got != want {
			t.Errorf("f = %q, want %q", got, want)
		}
	})
}

func TestAllAncestors(t *testing.T) {
	r, dir := newRepo(t)
	for _, m := range []string{"1", "2", "3", "4", "5"} {
		commitFile(t, r, dir, "a", m, "c"+m)
	}

	anc, err := r.AllAncestors(r.Head().Hash)
	if err != nil {
		t.Fatalf("AllAncestors: %v", err)
	}
	var got []string
	for _, c := range anc {
		got = append(got, c.Message)
	}
	want := []string{"initial commit", "c1", "c2", "c3", "c4"}
	if !slices.Equal(got, want) {
		t.Errorf("ancestors = %v, want %v", got, want)
	}

	root, _ := r.AllAncestors(anc[0].Hash)
	if len(root) != 0 {
		t.Errorf("initial commit has ancestors %v", root)
	}
}
