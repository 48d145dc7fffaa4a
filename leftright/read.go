package leftright

import "sync/atomic"

// ReadHandle is a cloneable reader endpoint over a left-right T. Reading
// through a ReadHandle never blocks on the writer and never blocks other
// readers; the only contention a ReadHandle ever causes is the epoch-table
// mutex it briefly takes when it is created or closed.
type ReadHandle[T any] struct {
	ptr   *atomic.Pointer[T]
	table *epochTable
	slot  int
	epoch *epoch
}

func newReadHandle[T any](ptr *atomic.Pointer[T], table *epochTable) *ReadHandle[T] {
	slot, e := table.allocate()
	return &ReadHandle[T]{ptr: ptr, table: table, slot: slot, epoch: e}
}

// Clone returns a new, independent reader endpoint over the same underlying
// data. Each clone owns its own epoch slot and must be closed separately.
func (r *ReadHandle[T]) Clone() *ReadHandle[T] {
	return newReadHandle[T](r.ptr, r.table)
}

// Close releases the reader's epoch slot. A ReadHandle must not be used
// after Close; any guard already obtained from it via Enter remains valid
// until that guard is itself closed.
func (r *ReadHandle[T]) Close() {
	r.table.release(r.slot)
}

// ReadGuard is a pinned, read-only view of whichever copy of T is currently
// published. For as long as a guard is held, the writer will not mutate the
// copy it points at: a Publish that would write to that copy waits until the
// guard is closed. A ReadGuard must be closed once the caller is done with
// it; holding one open indefinitely starves the writer's Publish.
type ReadGuard[T any] struct {
	t *T
	e *epoch
}

// Get returns the guarded copy. The returned pointer must not be retained
// past Close.
func (g ReadGuard[T]) Get() *T { return g.t }

// Close unpins the reader's epoch, making the guarded copy eligible for
// reclamation by a subsequent Publish once every other reader has also left
// it.
func (g ReadGuard[T]) Close() {
	if g.e != nil {
		g.e.unpin()
	}
}

// Enter pins the reader and returns a guard over the currently published
// copy. It returns false if the WriteHandle has been closed, in which case
// there is nothing left to read and no guard needs closing.
func (r *ReadHandle[T]) Enter() (ReadGuard[T], bool) {
	r.epoch.pin()
	t := r.ptr.Load()
	if t == nil {
		r.epoch.unpin()
		return ReadGuard[T]{}, false
	}
	return ReadGuard[T]{t: t, e: r.epoch}, true
}
