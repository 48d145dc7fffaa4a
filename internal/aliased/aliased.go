// Package aliased implements the drop-behavior type-state discipline that
// lets a value be stored once but referenced from both copies a left-right
// structure keeps internally.
//
// It is intentionally never exported outside this module. The distinction
// between a non-owning and an owning alias of the same physical value is an
// implementation detail of how the engine decides which copy is responsible
// for releasing a value's resources; letting it leak into a public API would
// let external code construct an Aliased whose owning flag doesn't match
// reality, which is exactly the class of bug this package exists to prevent.
package aliased

// Releaser is implemented by values that hold a resource which must be
// released exactly once no matter how many aliases of the value exist across
// the two copies of a left-right structure (a file handle, a pooled buffer,
// a manually refcounted handle). Values that don't implement Releaser are
// assumed to need no cleanup beyond what the garbage collector already does
// for them, which covers the overwhelming majority of Go value and pointer
// types.
type Releaser interface {
	Release()
}

// Aliased wraps a V that may be one of several live aliases sharing the same
// backing storage, as produced by a shallow copy. At any point in time,
// exactly one alias of a given physical V should be "owning"; only an owning
// alias runs Release when discarded.
type Aliased[V any] struct {
	value  V
	owning bool
}

// New wraps v as a fresh, non-owning alias.
func New[V any](v V) Aliased[V] {
	return Aliased[V]{value: v}
}

// Alias produces a second, non-owning alias of the same logical value.
// The caller must ensure that, of all the aliases ultimately produced this
// way, at most one is ever converted to owning (via Dropping) and discarded.
func (a Aliased[V]) Alias() Aliased[V] {
	return Aliased[V]{value: a.value}
}

// Dropping is the privileged, unchecked transition from non-owning to
// owning. It is safe to call only when the caller knows this is the last
// live alias of the underlying V, meaning the value is leaving both copies
// of the structure for good.
func (a Aliased[V]) Dropping() Aliased[V] {
	return Aliased[V]{value: a.value, owning: true}
}

// Get returns the aliased value. Access through an Aliased is always
// read-only; nothing in this package ever hands out a mutable reference,
// since doing so across aliases would defeat the whole scheme.
func (a Aliased[V]) Get() V {
	return a.value
}

// Discard releases this alias. If it is owning and V implements Releaser,
// Release is invoked exactly once; otherwise Discard is a no-op and the
// garbage collector reclaims the value normally once nothing else aliases
// it.
func (a Aliased[V]) Discard() {
	if !a.owning {
		return
	}
	if r, ok := any(a.value).(Releaser); ok {
		r.Release()
	}
}
