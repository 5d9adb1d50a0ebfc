package twig

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestRemotes(t *testing.T) {
	r, _ := newRepo(t)
	if err := r.AddRemote("origin", "../up/.twig"); err != nil {
		t.Fatalf("AddRemote: %v", err)
	}
	if err := r.AddRemote("origin", "elsewhere"); !errors.Is(err, ErrRemoteExists) {
		t.Errorf("dup AddRemote err = %v, want ErrRemoteExists", err)
	}
	if err := r.RemoveRemote("upstream"); !errors.Is(err, ErrNoSuchRemote) {
		t.Errorf("RemoveRemote(unknown) err = %v, want ErrNoSuchRemote", err)
	}
	if err := r.RemoveRemote("origin"); err != nil {
		t.Fatalf("RemoveRemote: %v", err)
	}
	if len(r.Remotes()) != 0 {
		t.Errorf("remotes = %v, want none", r.Remotes())
	}
}

func TestFetch_DirRemote(t *testing.T) {
	ctx := context.Background()
	up, upDir := newRepo(t)
	upHead := commitFile(t, up, upDir, "a", "upstream", "upstream work")
	if err := up.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	r, _ := newRepo(t)
	if err := r.AddRemote("origin", filepath.Join(upDir, DirName)); err != nil {
		t.Fatalf("AddRemote: %v", err)
	}
	if err := r.Fetch(ctx, "origin", "master"); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	head, err := r.BranchHead("origin/master")
	if err != nil {
		t.Fatalf("BranchHead: %v", err)
	}
	if head.Hash != upHead.Hash {
		t.Errorf("origin/master = %s, want %s", head.Short(), upHead.Short())
	}
	data, err := r.Blob(head.Manifest["a"])
	if err != nil || string(data) != "upstream" {
		t.Errorf("fetched blob = %q, %v", data, err)
	}

	if err := r.Fetch(ctx, "origin", "nope"); !errors.Is(err, ErrRemoteNoBranch) {
		t.Errorf("Fetch(nope) err = %v, want ErrRemoteNoBranch", err)
	}
	if err := r.Fetch(ctx, "upstream", "master"); !errors.Is(err, ErrRemoteNotFound) {
		t.Errorf("Fetch(unknown remote) err = %v, want ErrRemoteNotFound", err)
	}
}

func TestFetch_MissingDirectory(t *testing.T) {
	r, dir := newRepo(t)
	r.AddRemote("gone", filepath.Join(dir, "nowhere", DirName))
	if err := r.Fetch(context.Background(), "gone", "master"); !errors.Is(err, ErrRemoteNotFound) {
		t.Errorf("err = %v, want ErrRemoteNotFound", err)
	}
}

// Fetching and pushing back with no local commits in between changes
// nothing on the remote.
func TestPush_AfterFetchIsNoop(t *testing.T) {
	ctx := context.Background()
	up, upDir := newRepo(t)
	if err := up.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	statePath := filepath.Join(upDir, DirName, "state.json")
	before, _ := os.ReadFile(statePath)

	r, _ := newRepo(t)
	r.AddRemote("origin", filepath.Join(upDir, DirName))
	if err := r.Fetch(ctx, "origin", "master"); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if err := r.Push(ctx, "origin", "master"); err != nil {
		t.Fatalf("Push: %v", err)
	}
	after, _ := os.ReadFile(statePath)
	if string(after) != string(before) {
		t.Error("remote state rewritten by a no-op push")
	}
}

func TestPullThenPush(t *testing.T) {
	ctx := context.Background()
	up, upDir := newRepo(t)
	commitFile(t, up, upDir, "a", "1", "upstream")
	up.Save()

	r, dir := newRepo(t)
	r.AddRemote("origin", filepath.Join(upDir, DirName))
	res, err := r.Pull(ctx, "origin", "master")
	if err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if !res.FastForward {
		t.Errorf("pull onto the initial commit should fast-forward")
	}
	if got := r.CurrentBranch(); got != "origin/master" {
		t.Errorf("current = %q, want origin/master", got)
	}
	if got := readFile(t, dir, "a"); got != "1" {
		t.Errorf("a = %q, want %q", got, "1")
	}

	local := commitFile(t, r, dir, "b", "2", "local")
	if err := r.Push(ctx, "origin", "master"); err != nil {
		t.Fatalf("Push: %v", err)
	}

	reopened, err := Open(upDir)
	if err != nil {
		t.Fatalf("Open upstream: %v", err)
	}
	defer reopened.Close()
	head, _ := reopened.BranchHead("master")
	if head.Hash != local.Hash {
		t.Errorf("remote master = %s, want %s", head.Short(), local.Short())
	}
	if data, err := reopened.Blob(local.Manifest["b"]); err != nil || string(data) != "2" {
		t.Errorf("pushed blob = %q, %v", data, err)
	}
}

func TestPush_CopiesEveryMissingObject(t *testing.T) {
	ctx := context.Background()
	up, upDir := newRepo(t)
	commitFile(t, up, upDir, "a", "1", "upstream")
	up.Save()

	r, dir := newRepo(t)
	r.AddRemote("origin", filepath.Join(upDir, DirName))
	if _, err := r.Pull(ctx, "origin", "master"); err != nil {
		t.Fatalf("Pull: %v", err)
	}
	commitFile(t, r, dir, "b", "2", "local b")
	commitFile(t, r, dir, "c", "3", "local c")
	if err := r.Push(ctx, "origin", "master"); err != nil {
		t.Fatalf("Push: %v", err)
	}

	reopened, err := Open(upDir)
	if err != nil {
		t.Fatalf("Open upstream: %v", err)
	}
	defer reopened.Close()
	for name, content := range map[string]string{"a": "1", "b": "2", "c": "3"} {
		data, err := reopened.Blob(r.Head().Manifest[name])
		if err != nil || string(data) != content {
			t.Errorf("remote blob for %s = %q, %v; want %q", name, data, err, content)
		}
	}
}

func TestPush_NeedsPull(t *testing.T) {
	ctx := context.Background()
	up, upDir := newRepo(t)
	commitFile(t, up, upDir, "a", "1", "upstream")
	up.Save()

	r, dir := newRepo(t)
	commitFile(t, r, dir, "b", "2", "diverged")
	r.AddRemote("origin", filepath.Join(upDir, DirName))
	if err := r.Push(ctx, "origin", "master"); !errors.Is(err, ErrPushNeedsPull) {
		t.Errorf("Push err = %v, want ErrPushNeedsPull", err)
	}
}

func TestPush_CreatesBranch(t *testing.T) {
	ctx := context.Background()
	up, upDir := newRepo(t)
	up.Save()

	r, dir := newRepo(t)
	c := commitFile(t, r, dir, "a", "1", "feature")
	r.AddRemote("origin", filepath.Join(upDir, DirName))
	if err := r.Push(ctx, "origin", "feature"); err != nil {
		t.Fatalf("Push: %v", err)
	}

	reopened, err := Open(upDir)
	if err != nil {
		t.Fatalf("Open upstream: %v", err)
	}
	defer reopened.Close()
	head, err := reopened.BranchHead("feature")
	if err != nil || head.Hash != c.Hash {
		t.Errorf("remote feature = %v, %v; want %s", head, err, c.Short())
	}
}

func TestLayoutRemote_PushFetch(t *testing.T) {
	ctx := context.Background()
	loc := LayoutScheme + filepath.Join(t.TempDir(), "bare")

	a, aDir := newRepo(t)
	a.AddRemote("hub", loc)
	c1 := commitFile(t, a, aDir, "a", "from a", "a1")
	if err := a.Push(ctx, "hub", "master"); err != nil {
		t.Fatalf("first push: %v", err)
	}
	c2 := commitFile(t, a, aDir, "b", "more from a", "a2")
	if err := a.Push(ctx, "hub", "master"); err != nil {
		t.Fatalf("second push: %v", err)
	}

	b, bDir := newRepo(t)
	b.AddRemote("hub", loc)
	if err := b.Fetch(ctx, "hub", "master"); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	head, err := b.BranchHead("hub/master")
	if err != nil || head.Hash != c2.Hash {
		t.Fatalf("hub/master = %v, %v; want %s", head, err, c2.Short())
	}
	if _, err := b.Resolve(c1.Hash); err != nil {
		t.Errorf("history not fetched: %v", err)
	}
	if err := b.CheckoutFile(c2.Hash, "b"); err != nil {
		t.Fatalf("CheckoutFile: %v", err)
	}
	if got := readFile(t, bDir, "b"); got != "more from a" {
		t.Errorf("b = %q, want %q", got, "more from a")
	}

	commitFile(t, b, bDir, "x", "b side", "b1")
	if err := b.Push(ctx, "hub", "master"); !errors.Is(err, ErrPushNeedsPull) {
		t.Errorf("diverged push err = %v, want ErrPushNeedsPull", err)
	}
}

func TestLayoutRemote_FetchEmpty(t *testing.T) {
	r, _ := newRepo(t)
	r.AddRemote("hub", LayoutScheme+filepath.Join(t.TempDir(), "bare"))
	if err := r.Fetch(context.Background(), "hub", "master"); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	head, _ := r.BranchHead("hub/master")
	if head.Hash != r.Head().Hash {
		t.Errorf("empty remote master = %s, want the initial commit", head.Short())
	}
}
