// Package leftright implements the left-right concurrency primitive: a
// generic engine that lets a single writer mutate a data structure of type T
// while any number of readers observe a consistent, never-blocked snapshot
// of it, by keeping two independently owned copies of T and replaying every
// write against both through a small recorded operation log.
//
// This is the generic engine underneath package evmap; most callers should
// use evmap directly rather than this package. leftright is split out on its
// own, the way the original Rust implementation splits its left_right crate
// from the evmap crate built on top of it, because the technique is useful
// for data structures other than multi-value maps.
package leftright

// Absorb is the contract a data structure T must satisfy to be driven by a
// WriteHandle/ReadHandle pair, for a recorded operation type O.
//
// Exactly two copies of T ever exist: the "first" copy, supplied to New, and
// the "second" copy, which starts as T's zero value and is brought up to
// date by SyncWith the first time it is needed. An operation appended before
// the first Publish is absorbed once, into the first copy, through
// AbsorbSecond, and reaches the second copy through SyncWith. Every operation
// appended after that is, over the lifetime of the two copies, absorbed into each of
// them exactly once: once through AbsorbFirst (while the copy is not yet
// visible to readers, so nothing needs to be dropped, since the copy simply
// hasn't seen this operation before) and once through AbsorbSecond (while
// the copy was, until a moment ago, the one readers were observing, so this
// is the replay responsible for releasing anything the operation discards).
//
// The implementing type is expected to satisfy this interface through its
// pointer type; see the PT type parameter on WriteHandle and ReadHandle's
// constructors.
type Absorb[T any, O any] interface {
	// AbsorbFirst applies op to the receiver, which is not currently visible
	// to any reader. op is passed by pointer so an implementation can mutate
	// it in place (for example, to memoize a decision that AbsorbSecond must
	// reproduce identically on replay). other is the copy currently visible
	// to readers, provided for read-only reference.
	AbsorbFirst(op *O, other *T)

	// AbsorbSecond applies op to the receiver, which was, until the writer's
	// most recent swap, the copy visible to readers. This is the replay
	// responsible for running any side effects op's outcome requires (most
	// notably, discarding values AbsorbFirst's replay already decided to
	// drop). other is the copy now visible to readers.
	AbsorbSecond(op O, other *T)

	// SyncWith brings the receiver (the second copy, seeing data for the
	// first time) up to date with other, the first copy. Called exactly
	// once, the first time the second copy is published.
	SyncWith(other *T)
}

// FirstDropper is implemented optionally by a T whose first copy needs to
// run cleanup beyond what ordinary garbage collection provides when the
// WriteHandle managing it is closed.
type FirstDropper interface {
	// DropFirst releases resources held only by the first copy, the one
	// that was, at the moment of closing, the copy the writer was mutating
	// directly and had not yet mirrored into the second copy.
	DropFirst()
}

// SecondDropper is implemented optionally by a T whose second copy needs to
// run cleanup beyond what ordinary garbage collection provides when the
// WriteHandle managing it is closed.
type SecondDropper interface {
	// DropSecond releases resources held only by the second copy, the one
	// that was, at the moment of closing, visible to readers.
	DropSecond()
}
