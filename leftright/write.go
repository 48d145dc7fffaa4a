package leftright

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// WriteHandle is the single writer endpoint over a left-right T. There is
// never more than one WriteHandle per underlying data structure; it is not
// safe for concurrent use by multiple goroutines (the same way a single
// writer in the original engine is only ever driven from one thread at a
// time), though readers obtained from it may be used from as many goroutines
// as needed.
//
// PT is the pointer-receiver type that implements Absorb[T, O], in
// practice always *T. Spelling it out as its own type parameter is the
// standard way to let Go generic code call pointer-receiver methods on a
// type parameter: see New's doc comment for how it's supplied.
type WriteHandle[T any, O any, PT interface {
	*T
	Absorb[T, O]
}] struct {
	table *epochTable
	ptr   *atomic.Pointer[T]

	// w is the copy currently being mutated directly, invisible to readers
	// until the next Publish.
	w *T

	oplog     []O
	swapIndex int

	first  bool
	second bool

	lastEpochs []uint64

	// r is the writer's own reader endpoint, used both to give callers easy
	// read-your-writes access via Reader, and internally during the
	// pre-first-publish fast path.
	r *ReadHandle[T]

	logger *logrus.Logger
}

// New constructs a WriteHandle/ReadHandle pair over initial, which becomes
// the engine's first copy. The second copy starts out as T's zero value and
// is brought up to date by Absorb.SyncWith the first time it is published.
//
// Callers supply PT explicitly, since Go cannot infer a type parameter that
// appears only as a constraint:
//
//	w, r := leftright.New[Inner, Operation, *Inner](initial)
func New[T any, O any, PT interface {
	*T
	Absorb[T, O]
}](initial T) (*WriteHandle[T, O, PT], *ReadHandle[T]) {
	table := newEpochTable()
	ptr := new(atomic.Pointer[T])

	var second T
	ptr.Store(&second)

	w := &WriteHandle[T, O, PT]{
		table:  table,
		ptr:    ptr,
		w:      &initial,
		first:  true,
		second: true,
	}
	w.r = newReadHandle[T](ptr, table)
	return w, w.r.Clone()
}

// WithLogger attaches a structured logger the engine uses to record, at
// debug level, the number of unpublished operations at the start of each
// Publish. Publish timing and reader-wait stalls are not logged. Without a
// logger, the engine logs nothing.
func (w *WriteHandle[T, O, PT]) WithLogger(logger *logrus.Logger) *WriteHandle[T, O, PT] {
	w.logger = logger
	return w
}

// Reader returns a new, independent reader endpoint over the same
// underlying data. It is equivalent to cloning any other ReadHandle obtained
// from this WriteHandle.
func (w *WriteHandle[T, O, PT]) Reader() *ReadHandle[T] {
	return w.r.Clone()
}

// Raw returns the copy currently being mutated directly, for callers that
// need to inspect write-side-only state. It must only be used by the single
// writer goroutine. Before the first Publish it reflects every appended
// operation; after that, operations appended since the last Publish, and
// those made visible by the last Publish, reach it only during the next
// Publish.
func (w *WriteHandle[T, O, PT]) Raw() *T { return w.w }

// HasPendingOperations reports whether any appended operation has not yet
// been applied to both copies. Before the first Publish, Append and Extend
// apply operations directly and leave nothing pending.
func (w *WriteHandle[T, O, PT]) HasPendingOperations() bool {
	return len(w.oplog) > 0
}

// Append records op. Before the very first Publish, there is no stale
// reader-visible copy to protect, so op is instead applied immediately,
// directly and fully (with AbsorbSecond, which is allowed to run drop side
// effects, since nothing has ever been duplicated into a second copy yet).
// After the first Publish, op is only recorded; it takes effect on Raw no
// earlier than the next Publish.
func (w *WriteHandle[T, O, PT]) Append(op O) *WriteHandle[T, O, PT] {
	return w.Extend([]O{op})
}

// Extend records ops in order. See Append.
func (w *WriteHandle[T, O, PT]) Extend(ops []O) *WriteHandle[T, O, PT] {
	if len(ops) == 0 {
		return w
	}
	if w.first {
		wt := PT(w.w)
		guard, ok := w.r.Enter()
		var other *T
		if ok {
			other = guard.Get()
		}
		for _, op := range ops {
			wt.AbsorbSecond(op, other)
		}
		if ok {
			guard.Close()
		}
		return w
	}
	w.oplog = append(w.oplog, ops...)
	return w
}

// Publish makes every operation appended since the last Publish visible to
// new readers. It blocks until every reader that might still observe the
// copy about to be overwritten has left it: a reader that was inside a
// ReadGuard when the previous Publish swapped the copies, and has not closed
// that guard since, is waited for; a reader that entered after that swap
// holds the other copy and is not waited for. Publish never blocks a reader
// from entering.
func (w *WriteHandle[T, O, PT]) Publish() {
	w.table.mu.Lock()
	defer w.table.mu.Unlock()

	w.lastEpochs = w.table.wait(w.lastEpochs)

	if w.logger != nil {
		w.logger.WithField("pending", len(w.oplog)-w.swapIndex).Debug("leftright: publishing")
	}

	if w.first {
		w.first = false
	} else {
		wt := PT(w.w)
		current := w.ptr.Load()

		if w.second {
			wt.SyncWith(current)
			w.second = false
		}

		if w.swapIndex > 0 {
			for _, op := range w.oplog[:w.swapIndex] {
				wt.AbsorbSecond(op, current)
			}
			remaining := len(w.oplog) - w.swapIndex
			copy(w.oplog, w.oplog[w.swapIndex:])
			w.oplog = w.oplog[:remaining]
		}

		for i := range w.oplog {
			wt.AbsorbFirst(&w.oplog[i], current)
		}
		w.swapIndex = len(w.oplog)
	}

	old := w.ptr.Swap(w.w)
	w.w = old

	w.lastEpochs = w.table.snapshot(w.lastEpochs)
}

// Refresh publishes pending operations only if there are any, avoiding an
// unnecessary reader-wait when nothing has changed since the last Publish.
func (w *WriteHandle[T, O, PT]) Refresh() {
	if w.swapIndex < len(w.oplog) {
		w.Publish()
	}
}

// Close publishes any remaining operations to completion (draining the
// oplog into both copies), stops admitting new readers, waits for every
// reader still present to leave, and runs DropFirst/DropSecond on the two
// copies if T implements them.
func (w *WriteHandle[T, O, PT]) Close() {
	if len(w.oplog) > 0 {
		w.Publish()
	}
	if len(w.oplog) > 0 {
		w.Publish()
	}

	w.table.mu.Lock()
	old := w.ptr.Swap(nil)
	w.lastEpochs = w.table.snapshot(w.lastEpochs)
	w.lastEpochs = w.table.wait(w.lastEpochs)
	w.table.mu.Unlock()

	if d, ok := any(w.w).(FirstDropper); ok {
		d.DropFirst()
	}
	if d, ok := any(old).(SecondDropper); ok {
		d.DropSecond()
	}
}
