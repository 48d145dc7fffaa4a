// Package shallowcopy implements the value capability a left-right map needs
// in order to store a value once while referencing it from both of its
// internal copies.
//
// In languages with an explicit ownership model, producing a second handle to
// the same backing storage without double-freeing it requires an unsafe
// escape hatch (see the "shallow copy" trait in the original evmap
// implementation this package is modeled on). Go's garbage collector already
// makes that safe for the overwhelming majority of values: copying a slice,
// map, channel, string, or pointer by assignment already shares the backing
// storage, and the GC reclaims it once nothing references it anymore, with
// no notion of "the last copy" required.
//
// The capability still matters for values that hold a resource the GC does
// not manage, such as a pooled buffer or an open file with a Release method
// (see package aliased), where exactly one of the copies must trigger that
// release. Those types implement Copier to customize what happens when a
// second alias is produced (for example, bumping an internal refcount).
package shallowcopy

// Copier is implemented by values that want to customize what happens when a
// second alias sharing their backing storage is produced. Most Go types
// never need to implement this: plain assignment already does the right
// thing. Implement it when producing an alias has a side effect, such as
// incrementing a manually managed reference count.
type Copier[V any] interface {
	// ShallowCopy returns a second alias of the receiver that shares the same
	// backing storage. The caller guarantees that, of all the aliases
	// eventually produced this way, at most one will ever be released
	// normally; the type is responsible for making sure a second release
	// (e.g. closing a handle twice) is harmless, or for relying on the
	// aliased.Releaser discipline to guarantee it's called exactly once.
	ShallowCopy() V
}

// ShallowCopy produces a second alias of v. If V implements Copier, its
// ShallowCopy method is used. Otherwise v is returned as-is: an ordinary Go
// value copy, which for reference types (slices, maps, strings, pointers,
// channels) is already a shallow alias of the same backing storage, and for
// plain value types is already an independent copy, neither of which needs
// any further ceremony.
func ShallowCopy[V any](v V) V {
	if c, ok := any(v).(Copier[V]); ok {
		return c.ShallowCopy()
	}
	return v
}

// CopyValue wraps a T that should always be independently duplicated into
// both copies of a left-right structure instead of aliased. Use it to opt a
// value out of the ShallowCopy optimization entirely, for example when T is
// a small value type where the overhead of an aliasing discipline outweighs
// the cost of a real copy, or when T must never be shared between the two
// copies for correctness reasons of its own.
type CopyValue[T any] struct {
	Value T
}

// NewCopyValue wraps t.
func NewCopyValue[T any](t T) CopyValue[T] {
	return CopyValue[T]{Value: t}
}

// ShallowCopy returns a plain Go copy of the wrapped value, satisfying
// Copier by construction rather than by aliasing. The copy is independent
// when T is a plain value type; slices, maps, pointers or channels inside T
// still share their backing storage.
func (c CopyValue[T]) ShallowCopy() CopyValue[T] {
	return CopyValue[T]{Value: c.Value}
}
