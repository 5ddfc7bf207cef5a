// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package gpu

// entry is one idle item together with the frame it was last released on.
type entry[T any] struct {
	item     T
	released uint64
}

// idleQueue holds constructed but currently unleased objects of one
// resource kind and key. The back is the most recently released end.
// An idle queue is shared between the Pool and every Lease borrowing
// from it; all access happens on the frame-building thread.
type idleQueue[T any] struct {
	entries []entry[T]
}

func (q *idleQueue[T]) push(item T, frame uint64) {
	q.entries = append(q.entries, entry[T]{item: item, released: frame})
}

func (q *idleQueue[T]) pushFront(item T, frame uint64) {
	q.entries = append([]entry[T]{{item: item, released: frame}}, q.entries...)
}

// popBack removes and returns the most recently released item.
func (q *idleQueue[T]) popBack() (T, bool) {
	if len(q.entries) == 0 {
		var zero T
		return zero, false
	}
	last := len(q.entries) - 1
	item := q.entries[last].item
	q.entries = q.entries[:last]
	return item, true
}

// removeLastBy scans from the most recently released end and removes
// the first item satisfying fit. Recently released items are the most
// likely to still be resident and warm.
func (q *idleQueue[T]) removeLastBy(fit func(T) bool) (T, bool) {
	for idx := len(q.entries) - 1; idx >= 0; idx-- {
		if fit(q.entries[idx].item) {
			item := q.entries[idx].item
			q.entries = append(q.entries[:idx], q.entries[idx+1:]...)
			return item, true
		}
	}
	var zero T
	return zero, false
}

// drainStale removes and returns items idle for more than threshold
// frames.
func (q *idleQueue[T]) drainStale(frame, threshold uint64) []T {
	var stale []T
	kept := q.entries[:0]
	for _, e := range q.entries {
		if frame-e.released > threshold {
			stale = append(stale, e.item)
		} else {
			kept = append(kept, e)
		}
	}
	q.entries = kept
	return stale
}

// drainAll removes and returns every idle item.
func (q *idleQueue[T]) drainAll() []T {
	items := make([]T, 0, len(q.entries))
	for _, e := range q.entries {
		items = append(items, e.item)
	}
	q.entries = q.entries[:0]
	return items
}

func (q *idleQueue[T]) len() int {
	return len(q.entries)
}
