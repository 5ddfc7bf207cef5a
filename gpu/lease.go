// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package gpu

// Lease grants scoped exclusive ownership of one pooled item. Releasing
// the lease pushes the item back onto its origin queue instead of
// destroying it; at most one lease wraps a given item at a time.
type Lease[T any] struct {
	item  T
	queue *idleQueue[T]
	clock *uint64
	held  bool
}

func newLease[T any](item T, queue *idleQueue[T], clock *uint64) *Lease[T] {
	return &Lease[T]{
		item:  item,
		queue: queue,
		clock: clock,
		held:  true,
	}
}

// Item returns the leased object. Using a lease after Release is a
// programming error.
func (l *Lease[T]) Item() T {
	if !l.held {
		panic("gpu: use of released lease")
	}
	return l.item
}

// Release returns the item to the back of its idle queue, stamped with
// the pool's current frame. Releasing twice is a no-op, the item is
// never double-returned.
func (l *Lease[T]) Release() {
	if !l.held {
		return
	}
	l.held = false
	l.queue.push(l.item, *l.clock)
	var zero T
	l.item = zero
}
