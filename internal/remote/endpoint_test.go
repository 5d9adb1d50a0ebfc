package remote

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/aweris/twig/internal/digest"
	"github.com/aweris/twig/internal/store"
)

func objectsOf(contents ...string) map[string][]byte {
	m := make(map[string][]byte, len(contents))
	for _, c := range contents {
		m[digest.MustSum([]byte(c))] = []byte(c)
	}
	return m
}

func TestDirEndpoint_StoreAndLoad(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	st, err := store.NewLocalStore(filepath.Join(dir, "objects"), store.DefaultOptions())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	defer st.Close()

	ep := NewDirEndpoint(dir, filepath.Join(dir, "state.json"), st)
	if _, err := ep.LoadState(ctx); !errors.Is(err, ErrNoRepository) {
		t.Fatalf("LoadState on empty dir err = %v, want ErrNoRepository", err)
	}

	objs := objectsOf("one", "two")
	if err := ep.Store(ctx, []byte(`{"current":"master"}`), objs); err != nil {
		t.Fatalf("Store: %v", err)
	}

	state, err := ep.LoadState(ctx)
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if string(state) != `{"current":"master"}` {
		t.Errorf("state = %s", state)
	}

	list, _ := ep.List(ctx)
	if len(list) != 2 {
		t.Errorf("List len = %d, want 2", len(list))
	}
	for h, want := range objs {
		got, err := ep.Get(ctx, h)
		if err != nil || string(got) != string(want) {
			t.Errorf("Get(%s) = %q, %v; want %q", h[:7], got, err, want)
		}
	}
	if _, err := ep.Get(ctx, digest.MustSum([]byte("missing"))); !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("Get(missing) err = %v, want ErrObjectNotFound", err)
	}
}

func TestLayoutEndpoint_EmptyLocation(t *testing.T) {
	ep := NewLayoutEndpoint(filepath.Join(t.TempDir(), "bare"), 0)
	if _, err := ep.LoadState(context.Background()); !errors.Is(err, ErrEmpty) {
		t.Fatalf("LoadState err = %v, want ErrEmpty", err)
	}
	list, err := ep.List(context.Background())
	if err != nil || len(list) != 0 {
		t.Errorf("List = %v, %v; want empty", list, err)
	}
}

func TestLayoutEndpoint_IncrementalStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "bare")

	first := NewLayoutEndpoint(path, 2)
	if err := first.Store(ctx, []byte("state-1"), objectsOf("a", "b")); err != nil {
		t.Fatalf("Store 1: %v", err)
	}
	if err := first.Store(ctx, []byte("state-2"), objectsOf("c")); err != nil {
		t.Fatalf("Store 2: %v", err)
	}

	// a fresh endpoint reads everything back from disk
	second := NewLayoutEndpoint(path, 1)
	state, err := second.LoadState(ctx)
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if string(state) != "state-2" {
		t.Errorf("state = %q, want %q", state, "state-2")
	}

	list, err := second.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := make([]string, 0, 3)
	for h := range objectsOf("a", "b", "c") {
		want = append(want, h)
	}
	slices.Sort(want)
	if !slices.Equal(list, want) {
		t.Errorf("List = %v, want %v", list, want)
	}

	got, err := second.Get(ctx, digest.MustSum([]byte("c")))
	if err != nil || string(got) != "c" {
		t.Errorf("Get(c) = %q, %v", got, err)
	}

	img := second.img
	layers, err := img.Layers()
	if err != nil {
		t.Fatalf("Layers: %v", err)
	}
	if len(layers) != 2 {
		t.Errorf("layers = %d, want 2 (one per store)", len(layers))
	}
}
