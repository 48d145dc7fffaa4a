package evmap

import (
	"github.com/go-leftright/evmap/internal/aliased"
	"github.com/go-leftright/evmap/leftright"
)

// WriteHandle is the single writer endpoint over a Map. There is never more
// than one WriteHandle per map; it is not safe for concurrent use by
// multiple goroutines without external mutual exclusion. Every mutating
// method returns the receiver so calls can be chained, and every mutation
// goes through the engine's Append (see leftright.WriteHandle.Append);
// nothing is visible to readers until Publish (or Refresh) is called.
type WriteHandle[K comparable, V comparable, M any] struct {
	engine *leftright.WriteHandle[Inner[K, V, M], Operation[K, V, M], *Inner[K, V, M]]
	reader *ReadHandle[K, V, M]
}

// Insert appends value to the bag resident at key (creating the bag if
// key is new), supporting duplicate values under the same key.
func (w *WriteHandle[K, V, M]) Insert(key K, value V) *WriteHandle[K, V, M] {
	w.engine.Append(Operation[K, V, M]{kind: opAdd, key: key, value: aliased.New(value)})
	return w
}

// Update replaces the entire bag at key with a single-element bag holding
// value, discarding whatever was there before.
func (w *WriteHandle[K, V, M]) Update(key K, value V) *WriteHandle[K, V, M] {
	w.engine.Append(Operation[K, V, M]{kind: opReplace, key: key, value: aliased.New(value)})
	return w
}

// RemoveValue removes a single occurrence of value from key's bag, if
// present. It is a no-op if key is absent or value does not occur.
func (w *WriteHandle[K, V, M]) RemoveValue(key K, value V) *WriteHandle[K, V, M] {
	w.engine.Append(Operation[K, V, M]{kind: opRemoveValue, key: key, value: aliased.New(value)})
	return w
}

// RemoveEntry removes key's entire bag, including the key itself. It is a
// no-op if key is absent.
func (w *WriteHandle[K, V, M]) RemoveEntry(key K) *WriteHandle[K, V, M] {
	w.engine.Append(Operation[K, V, M]{kind: opRemoveEntry, key: key})
	return w
}

// EmptyAt drops the entries at the given zero-based, strictly ascending
// insertion-order positions within key's bag. It is a no-op if key is
// absent.
func (w *WriteHandle[K, V, M]) EmptyAt(key K, positions []int) *WriteHandle[K, V, M] {
	w.engine.Append(Operation[K, V, M]{kind: opEmptyAt, key: key, positions: positions})
	return w
}

// Clear empties key's bag but keeps the key present with an empty bag. It is
// a no-op if key is absent.
func (w *WriteHandle[K, V, M]) Clear(key K) *WriteHandle[K, V, M] {
	w.engine.Append(Operation[K, V, M]{kind: opClear, key: key})
	return w
}

// Purge empties every bag in the map while keeping every key present.
func (w *WriteHandle[K, V, M]) Purge() *WriteHandle[K, V, M] {
	w.engine.Append(Operation[K, V, M]{kind: opPurge})
	return w
}

// Retain keeps only the values in key's bag for which pred returns true. It
// is a no-op if key is absent.
func (w *WriteHandle[K, V, M]) Retain(key K, pred Predicate[V]) *WriteHandle[K, V, M] {
	w.engine.Append(Operation[K, V, M]{kind: opRetain, key: key, predicate: pred})
	return w
}

// Fit compacts key's bag and demotes it out of its hashed representation if
// it now fits inline. It is a no-op if key is absent.
func (w *WriteHandle[K, V, M]) Fit(key K) *WriteHandle[K, V, M] {
	w.engine.Append(Operation[K, V, M]{kind: opFit, key: key, hasKey: true})
	return w
}

// FitAll compacts every bag in the map.
func (w *WriteHandle[K, V, M]) FitAll() *WriteHandle[K, V, M] {
	w.engine.Append(Operation[K, V, M]{kind: opFit})
	return w
}

// Reserve ensures key is present and hints that its bag should have room for
// at least n additional values without reallocating.
func (w *WriteHandle[K, V, M]) Reserve(key K, n int) *WriteHandle[K, V, M] {
	w.engine.Append(Operation[K, V, M]{kind: opReserve, key: key, n: n})
	return w
}

// SetMeta replaces the map's user-opaque meta value.
func (w *WriteHandle[K, V, M]) SetMeta(meta M) *WriteHandle[K, V, M] {
	w.engine.Append(Operation[K, V, M]{kind: opSetMeta, meta: meta})
	return w
}

// MarkReady flips the map's ready flag, a convention for signaling to
// readers (via MapGuard.IsReady) that initial population has finished. The
// engine attaches no other behavior to it.
func (w *WriteHandle[K, V, M]) MarkReady() *WriteHandle[K, V, M] {
	w.engine.Append(Operation[K, V, M]{kind: opMarkReady})
	return w
}

// CloneFromReader records an operation that rebuilds the copy not visible to
// readers entirely from the copy that is. The first Publish after it leaves
// both copies as they are; the rebuild happens during the second Publish,
// when the operation is replayed onto the other copy. This is rarely needed
// directly; it exists for callers building their own constructs on top of a
// WriteHandle (for example, a snapshot-then-fork utility).
func (w *WriteHandle[K, V, M]) CloneFromReader() *WriteHandle[K, V, M] {
	w.engine.Append(Operation[K, V, M]{kind: opJustCloneRHandle})
	return w
}

// Publish makes every operation appended since the last Publish visible to
// new readers.
func (w *WriteHandle[K, V, M]) Publish() *WriteHandle[K, V, M] {
	w.engine.Publish()
	return w
}

// Refresh publishes only if an operation has been appended since the last
// Publish, avoiding an unnecessary reader-wait otherwise.
func (w *WriteHandle[K, V, M]) Refresh() *WriteHandle[K, V, M] {
	w.engine.Refresh()
	return w
}

// Pending reports whether any appended operation has not yet reached both
// copies.
func (w *WriteHandle[K, V, M]) Pending() bool {
	return w.engine.HasPendingOperations()
}

// Raw returns the copy currently being mutated directly. It must only be
// used by the single writer goroutine. Before the first Publish it holds
// every appended operation; after that it lags behind, as described on
// leftright.WriteHandle.Raw.
func (w *WriteHandle[K, V, M]) Raw() *Inner[K, V, M] {
	return w.engine.Raw()
}

// Reader returns a new, independent reader endpoint over the same map.
func (w *WriteHandle[K, V, M]) Reader() *ReadHandle[K, V, M] {
	return w.reader.Clone()
}

// Get is a convenience read, equivalent to w.Reader().Get(key) against the
// writer's own bundled reader endpoint. See ReadHandle.Get.
func (w *WriteHandle[K, V, M]) Get(key K) ([]V, bool) {
	return w.reader.Get(key)
}

// Len is a convenience read; see ReadHandle.Len.
func (w *WriteHandle[K, V, M]) Len() int { return w.reader.Len() }

// Close publishes any remaining operations to completion, stops admitting
// new readers, waits for readers still present to depart, and releases
// resources. The writer's own bundled reader endpoint is closed too.
func (w *WriteHandle[K, V, M]) Close() {
	w.engine.Close()
	w.reader.Close()
}
