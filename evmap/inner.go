package evmap

import (
	"github.com/go-leftright/evmap/internal/aliased"
	"github.com/go-leftright/evmap/shallowcopy"
	"github.com/go-leftright/evmap/values"
)

// Inner is the actual data structure the left-right engine keeps two copies
// of: a key to value-bag map, a user meta value, and a readiness flag. It
// implements leftright.Absorb so that a *Inner drives a
// leftright.WriteHandle/ReadHandle pair.
//
// Inner is never exposed directly; callers interact with it only through
// WriteHandle and ReadHandle/MapGuard.
type Inner[K comparable, V comparable, M any] struct {
	data  map[K]*values.Values[V]
	meta  M
	ready bool

	threshold int

	// hasher is stored for API compatibility with evmap.WithHasher but never
	// consulted: Go's built-in map type has no pluggable-hasher hook the way
	// Rust's HashMap<K, V, S> does, so key hashing here is always whatever
	// the runtime's map implementation does internally.
	hasher func(K) uint64
}

func (n *Inner[K, V, M]) bag(key K) *values.Values[V] {
	b, ok := n.data[key]
	if !ok {
		b = values.NewWithThreshold[V](n.threshold)
		n.data[key] = b
	}
	return b
}

// AbsorbFirst implements leftright.Absorb.
func (n *Inner[K, V, M]) AbsorbFirst(op *Operation[K, V, M], other *Inner[K, V, M]) {
	n.apply(op, false, other)
}

// AbsorbSecond implements leftright.Absorb.
func (n *Inner[K, V, M]) AbsorbSecond(op Operation[K, V, M], other *Inner[K, V, M]) {
	n.apply(&op, true, other)
}

// SyncWith implements leftright.Absorb. It runs exactly once, the first time
// the second (until-now zero-value) copy is published, and brings it up to
// date with the first copy by rebuilding every bag from fresh aliases.
func (n *Inner[K, V, M]) SyncWith(other *Inner[K, V, M]) {
	n.threshold = other.threshold
	n.hasher = other.hasher
	n.cloneFrom(other)
}

// cloneFrom rebuilds n's entire key space from other, giving every resident
// value a fresh alias of its own rather than sharing other's Aliased
// wrappers (which belong to the other copy's bookkeeping).
func (n *Inner[K, V, M]) cloneFrom(other *Inner[K, V, M]) {
	data := make(map[K]*values.Values[V], len(other.data))
	for k, b := range other.data {
		fresh := values.NewWithThreshold[V](n.threshold)
		b.ForEach(func(v V) {
			fresh.Push(aliased.New(shallowcopy.ShallowCopy(v)))
		})
		data[k] = fresh
	}
	n.data = data
	n.meta = other.meta
	n.ready = other.ready
}

// DropFirst implements leftright.FirstDropper. The copy handed to DropFirst
// is never walked for cleanup: every value it still aliases is also
// resident in the copy handed to DropSecond, which is responsible for
// releasing it exactly once.
func (n *Inner[K, V, M]) DropFirst() {}

// DropSecond implements leftright.SecondDropper. It is the copy responsible,
// at map destruction, for releasing every value still resident in the map,
// the values that were never removed by an explicit RemoveValue, Clear, or
// similar operation during the map's lifetime.
func (n *Inner[K, V, M]) DropSecond() {
	for _, b := range n.data {
		b.Clear(true)
	}
}

// apply executes op against the receiver. discard is true on the
// absorb_second replay (the one responsible for running any side effects a
// removed value's Release needs) and false on the absorb_first replay.
func (n *Inner[K, V, M]) apply(op *Operation[K, V, M], discard bool, other *Inner[K, V, M]) {
	switch op.kind {
	case opAdd:
		n.bag(op.key).Push(aliased.New(shallowcopy.ShallowCopy(op.value.Get())))

	case opReplace:
		n.bag(op.key).Replace(aliased.New(shallowcopy.ShallowCopy(op.value.Get())), discard)

	case opRemoveValue:
		if b, ok := n.data[op.key]; ok {
			b.RemoveOne(op.value.Get(), discard)
		}

	case opRemoveEntry:
		if b, ok := n.data[op.key]; ok {
			b.Clear(discard)
			delete(n.data, op.key)
		}

	case opEmptyAt:
		if b, ok := n.data[op.key]; ok {
			b.EmptyAt(op.positions, discard)
		}

	case opClear:
		if b, ok := n.data[op.key]; ok {
			b.Clear(discard)
		}

	case opPurge:
		for _, b := range n.data {
			b.Clear(discard)
		}

	case opRetain:
		if b, ok := n.data[op.key]; ok {
			b.Retain(op.predicate, !discard, discard)
		}

	case opFit:
		if op.hasKey {
			if b, ok := n.data[op.key]; ok {
				b.Fit()
			}
		} else {
			for _, b := range n.data {
				b.Fit()
			}
		}

	case opReserve:
		n.bag(op.key).Reserve(op.n)

	case opMarkReady:
		n.ready = true

	case opSetMeta:
		n.meta = op.meta

	case opJustCloneRHandle:
		if discard {
			n.cloneFrom(other)
		}
	}
}
