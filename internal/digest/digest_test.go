package digest

import "testing"

func TestSum_KnownVector(t *testing.T) {
	got, err := Sum([]byte("abc"))
	if err != nil {
		t.Fatalf("Sum: %v", err)
	}
	want := "a9993e364706816aba3e25717850c26c9cd0d89d"
	if got != want {
		t.Errorf("Sum(abc) = %q, want %q", got, want)
	}
}

func TestSum_Deterministic(t *testing.T) {
	a := MustSum([]byte("hello"))
	b := MustSum([]byte("hello"))
	if a != b {
		t.Errorf("same input hashed differently: %q vs %q", a, b)
	}
	if c := MustSum([]byte("hello!")); c == a {
		t.Errorf("different inputs share address %q", a)
	}
}

func TestValid(t *testing.T) {
	if !Valid(MustSum(nil)) {
		t.Error("address of empty input should be valid")
	}
	for _, s := range []string{"", "abc", "zz" + MustSum(nil)[2:]} {
		if Valid(s) {
			t.Errorf("Valid(%q) = true, want false", s)
		}
	}
}
