package leftright

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// spinLimit bounds how many hot-spin iterations wait performs on a reader's
// epoch before yielding the scheduler, matching the original left-right
// engine's bounded hot-spin before falling back to thread::yield_now.
const spinLimit = 20

// epoch is a single reader's pin counter. It is even while the reader is
// idle (not inside a read guard) and odd while pinned inside one. A reader
// never reuses an odd value: every pin/unpin strictly increments the
// counter by one.
type epoch struct {
	counter atomic.Uint64
}

func (e *epoch) load() uint64 { return e.counter.Load() }

// pin transitions the epoch from even (idle) to odd (inside a guard) and
// returns the new value.
func (e *epoch) pin() uint64 { return e.counter.Add(1) }

// unpin transitions the epoch from odd back to even.
func (e *epoch) unpin() { e.counter.Add(1) }

// epochTable is the writer-owned, mutex-guarded slab of reader epoch slots.
// It is contended only when a reader endpoint is created or closed, and
// while the writer is publishing, never on an individual read.
type epochTable struct {
	mu    sync.Mutex
	slots []*epoch
	free  []int
}

func newEpochTable() *epochTable {
	return &epochTable{}
}

// allocate reserves a fresh epoch slot for a new reader endpoint.
func (t *epochTable) allocate() (int, *epoch) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e := &epoch{}
	if n := len(t.free); n > 0 {
		idx := t.free[n-1]
		t.free = t.free[:n-1]
		t.slots[idx] = e
		return idx, e
	}
	t.slots = append(t.slots, e)
	return len(t.slots) - 1, e
}

// release returns a reader's epoch slot to the free list once the reader
// endpoint is closed. The slot's index may be handed out again by a later
// allocate; that is safe, since a reused slot's epoch necessarily advances
// no earlier than the moment the new reader first pins it, which is always
// after whichever swap the writer was waiting on.
func (t *epochTable) release(idx int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.slots[idx] = nil
	t.free = append(t.free, idx)
}

// snapshot records the current epoch of every occupied slot. Must be called
// with t.mu held.
func (t *epochTable) snapshot(into []uint64) []uint64 {
	if cap(into) < len(t.slots) {
		into = make([]uint64, len(t.slots))
	} else {
		into = into[:len(t.slots)]
	}
	for i, s := range t.slots {
		if s == nil {
			into[i] = 0
			continue
		}
		into[i] = s.load()
	}
	return into
}

// wait blocks until every occupied epoch slot is either idle, or has
// advanced since the value recorded in last (which was snapshotted
// immediately after the previous swap). Must be called with t.mu held.
//
// For each reader slot r with last[r] = e:
//   - if e is even, the reader was idle when we snapshotted, and cannot be
//     inside the now-stale copy: entering it would require taking a new
//     (odd) epoch strictly after our swap, which would already observe the
//     new pointer.
//   - if e is odd and the slot's current epoch has since changed, the
//     reader has departed and (if it re-entered) re-entered at least once
//     since our swap, observing the new pointer on re-entry.
//   - otherwise the reader may still be inside the stale copy, and we spin.
func (t *epochTable) wait(last []uint64) []uint64 {
	if cap(last) < len(t.slots) {
		grown := make([]uint64, len(t.slots))
		copy(grown, last)
		last = grown
	} else {
		last = last[:len(t.slots)]
	}

	iter := 0
	starti := 0
retry:
	for i := starti; i < len(t.slots); i++ {
		slot := t.slots[i]
		if slot == nil {
			continue
		}
		if last[i]%2 == 0 {
			continue
		}
		if now := slot.load(); now != last[i] {
			continue
		}
		starti = i
		if iter != spinLimit {
			iter++
		} else {
			runtime.Gosched()
		}
		goto retry
	}
	return last
}
