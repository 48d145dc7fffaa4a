package evmap

import (
	"github.com/go-leftright/evmap/leftright"
	"github.com/go-leftright/evmap/values"
)

// ReadHandle is a cloneable reader endpoint over a Map. Like the underlying
// leftright.ReadHandle it wraps, it is not safe to share across goroutines;
// each goroutine should hold its own clone, obtained via Clone or
// ReadHandleFactory.
type ReadHandle[K comparable, V comparable, M any] struct {
	inner *leftright.ReadHandle[Inner[K, V, M]]
}

// Clone returns a new, independent reader endpoint over the same map.
func (r *ReadHandle[K, V, M]) Clone() *ReadHandle[K, V, M] {
	return &ReadHandle[K, V, M]{inner: r.inner.Clone()}
}

// Close releases the reader's epoch slot. A ReadHandle must not be used
// after Close.
func (r *ReadHandle[K, V, M]) Close() { r.inner.Close() }

// Factory returns a ReadHandleFactory that can produce further independent
// ReadHandles without itself pinning an epoch on every call.
func (r *ReadHandle[K, V, M]) Factory() ReadHandleFactory[K, V, M] {
	return ReadHandleFactory[K, V, M]{template: r}
}

// Enter pins the reader and returns a guard over the map as of the last
// Publish. It returns false if the map's WriteHandle has been closed.
func (r *ReadHandle[K, V, M]) Enter() (MapGuard[K, V, M], bool) {
	g, ok := r.inner.Enter()
	if !ok {
		return MapGuard[K, V, M]{}, false
	}
	return MapGuard[K, V, M]{guard: g}, true
}

// Get is a convenience wrapper around Enter for callers that just want a
// one-shot snapshot of key's bag. It returns false if the map is closed, key
// is absent, or the bag is empty.
func (r *ReadHandle[K, V, M]) Get(key K) ([]V, bool) {
	g, ok := r.Enter()
	if !ok {
		return nil, false
	}
	defer g.Close()
	vg, ok := g.Get(key)
	if !ok || vg.IsEmpty() {
		return nil, false
	}
	return vg.Snapshot(), true
}

// Len is a convenience wrapper around Enter; see MapGuard.Len.
func (r *ReadHandle[K, V, M]) Len() int {
	g, ok := r.Enter()
	if !ok {
		return 0
	}
	defer g.Close()
	return g.Len()
}

// IsEmpty is a convenience wrapper around Enter; see MapGuard.IsEmpty.
func (r *ReadHandle[K, V, M]) IsEmpty() bool {
	g, ok := r.Enter()
	if !ok {
		return true
	}
	defer g.Close()
	return g.IsEmpty()
}

// ContainsKey is a convenience wrapper around Enter; see MapGuard.ContainsKey.
func (r *ReadHandle[K, V, M]) ContainsKey(key K) bool {
	g, ok := r.Enter()
	if !ok {
		return false
	}
	defer g.Close()
	return g.ContainsKey(key)
}

// Meta is a convenience wrapper around Enter; see MapGuard.Meta.
func (r *ReadHandle[K, V, M]) Meta() (M, bool) {
	g, ok := r.Enter()
	if !ok {
		var zero M
		return zero, false
	}
	defer g.Close()
	return g.Meta(), true
}

// ForEach calls f once for every (key, value) pair resident in the map as of
// a single guard taken for the duration of the call. It is a no-op if the
// map is closed.
func (r *ReadHandle[K, V, M]) ForEach(f func(key K, value V)) {
	g, ok := r.Enter()
	if !ok {
		return
	}
	defer g.Close()
	for k, b := range g.guard.Get().data {
		b.ForEach(func(v V) { f(k, v) })
	}
}

// ReadHandleFactory produces independent ReadHandles on demand without
// holding an epoch slot of its own between calls, beyond the one reserved by
// its template handle. It is safe to share across goroutines, unlike
// ReadHandle itself.
type ReadHandleFactory[K comparable, V comparable, M any] struct {
	template *ReadHandle[K, V, M]
}

// NewReadHandle returns a fresh, independent reader endpoint.
func (f ReadHandleFactory[K, V, M]) NewReadHandle() *ReadHandle[K, V, M] {
	return f.template.Clone()
}

// MapGuard is a pinned, read-only view of the map as of the last Publish
// that happened before the guard was obtained. It must be closed once the
// caller is done with it.
type MapGuard[K comparable, V comparable, M any] struct {
	guard leftright.ReadGuard[Inner[K, V, M]]
}

// Close releases the guard, unpinning the reader's epoch.
func (g MapGuard[K, V, M]) Close() { g.guard.Close() }

// Len reports the number of keys currently resident in the map.
func (g MapGuard[K, V, M]) Len() int { return len(g.guard.Get().data) }

// IsEmpty reports whether the map holds no keys.
func (g MapGuard[K, V, M]) IsEmpty() bool { return len(g.guard.Get().data) == 0 }

// ContainsKey reports whether key is resident, regardless of whether its bag
// is empty.
func (g MapGuard[K, V, M]) ContainsKey(key K) bool {
	_, ok := g.guard.Get().data[key]
	return ok
}

// Meta returns the map's current user-opaque meta value.
func (g MapGuard[K, V, M]) Meta() M { return g.guard.Get().meta }

// IsReady reports whether MarkReady has been published.
func (g MapGuard[K, V, M]) IsReady() bool { return g.guard.Get().ready }

// Get returns a guard over the bag resident at key, or false if key is
// absent.
func (g MapGuard[K, V, M]) Get(key K) (ValuesGuard[V], bool) {
	b, ok := g.guard.Get().data[key]
	if !ok {
		return ValuesGuard[V]{}, false
	}
	return ValuesGuard[V]{bag: b}, true
}

// ValuesGuard is a read-only view of a single key's value bag, valid for as
// long as the MapGuard it was obtained from is open.
type ValuesGuard[V comparable] struct {
	bag *values.Values[V]
}

// Len reports the number of values in the bag, counting duplicates.
func (vg ValuesGuard[V]) Len() int { return vg.bag.Len() }

// IsEmpty reports whether the bag holds no values.
func (vg ValuesGuard[V]) IsEmpty() bool { return vg.bag.IsEmpty() }

// Contains reports whether v occurs at least once in the bag.
func (vg ValuesGuard[V]) Contains(v V) bool { return vg.bag.Contains(v) }

// ForEach calls f once for every value in the bag, in insertion order.
func (vg ValuesGuard[V]) ForEach(f func(V)) { vg.bag.ForEach(f) }

// Snapshot copies the bag's values, in insertion order, into a new slice.
func (vg ValuesGuard[V]) Snapshot() []V { return vg.bag.Snapshot() }
