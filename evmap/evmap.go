// Package evmap implements a lock-free, eventually-consistent concurrent
// multi-value map: many readers and a single writer share a keyed collection
// in which every key maps to a bag (multiset) of values. Readers never take
// locks or perform atomic read-modify-writes on the critical path; the
// writer batches mutations and makes them visible to readers atomically via
// an explicit Publish.
//
// The map is built on package leftright, specialized to an Inner data
// structure (a map[K]*values.Values[V] plus a user meta value) and an
// Operation log describing every mutation. See WriteHandle and ReadHandle.
package evmap

import "github.com/go-leftright/evmap/internal/aliased"

type opKind uint8

const (
	opAdd opKind = iota
	opReplace
	opRemoveValue
	opRemoveEntry
	opEmptyAt
	opClear
	opPurge
	opRetain
	opFit
	opReserve
	opMarkReady
	opSetMeta
	opJustCloneRHandle
)

// Predicate decides whether a value should be retained by a Retain call.
// firstReplay is true on the first of the two internal replays the engine
// applies (one per copy) and false on the second. A Predicate whose decision
// depends on anything beyond v's own content, such as randomness or an
// external counter, must memoize its answer across the two calls (for
// example in a closure-captured map keyed by v) so both copies converge to
// the same result; see Values.Retain in package values for the same
// discipline at the container level. A Retain appended before the map's
// first Publish is applied only once, directly to the first copy, and its
// Predicate then sees firstReplay false for every value.
type Predicate[V any] func(v V, firstReplay bool) bool

// Operation is a single recorded mutation against a Map's Inner, produced by
// WriteHandle's methods. It is exported only because Inner's Absorb
// implementation switches on it; callers never construct one directly.
type Operation[K comparable, V comparable, M any] struct {
	kind opKind
	key  K

	// value carries the payload for Add/Replace (the value being installed)
	// and the comparison target for RemoveValue. It is always a fresh,
	// non-owning alias; apply() is responsible for producing the aliases
	// that actually get installed into a bag.
	value aliased.Aliased[V]

	hasKey    bool // for Fit: whether key names a single bag or "all bags"
	positions []int
	predicate Predicate[V]
	n         int
	meta      M
}
