package aliased

import "testing"

type releaseCounter struct {
	n *int
}

func (r releaseCounter) Release() {
	*r.n++
}

func TestAliasedGet(t *testing.T) {
	a := New(42)
	if a.Get() != 42 {
		t.Fatalf("Get() = %d, want 42", a.Get())
	}
}

func TestAliasedNonOwningDoesNotRelease(t *testing.T) {
	n := 0
	a := New(releaseCounter{n: &n})
	a.Discard()
	if n != 0 {
		t.Fatalf("non-owning alias released, want untouched")
	}
}

func TestAliasedOwningReleasesOnce(t *testing.T) {
	n := 0
	a := New(releaseCounter{n: &n})
	owning := a.Dropping()
	owning.Discard()
	if n != 1 {
		t.Fatalf("Release called %d times, want 1", n)
	}
}

func TestAliasDoesNotFlipOwnership(t *testing.T) {
	n := 0
	a := New(releaseCounter{n: &n})
	b := a.Alias()
	b.Discard()
	a.Discard()
	if n != 0 {
		t.Fatalf("Release called %d times on non-owning aliases, want 0", n)
	}
}

func TestValueWithoutReleaserIsNoop(t *testing.T) {
	a := New(7).Dropping()
	a.Discard() // must not panic
}
