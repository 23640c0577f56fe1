// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package clock

import "container/heap"

// Callback is invoked when a timer's deadline has arrived. Callbacks run
// on the timer goroutine and may reschedule themselves or other timers.
type Callback func(arg any)

// entry is one scheduled callback, keyed on absolute deadline.
// seq breaks ties between entries sharing a deadline (FIFO ordering).
type entry struct {
	deadline int64
	seq      uint64
	cb       Callback
	arg      any
	index    int // heap index, maintained by container/heap
}

// timerHeap is a min-heap ordered on deadline, then seq.
// Timer invariant (spec §8): for all t in heap, heap root <= t.
type timerHeap []*entry

func (h timerHeap) Len() int { return len(h) }
func (h timerHeap) Less(i, j int) bool {
	if h[i].deadline == h[j].deadline {
		return h[i].seq < h[j].seq
	}
	return h[i].deadline < h[j].deadline
}
func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index, h[j].index = i, j
}
func (h *timerHeap) Push(x any) {
	e := x.(*entry)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// remove deletes the entry at the given heap index. It never shrinks the
// underlying slice's capacity: the heap only grows, per the teacher's
// observed never-shrink behavior (spec §9 design notes) which is
// acceptable for this runtime's bounded-timer workloads.
func (h *timerHeap) remove(e *entry) {
	if e.index < 0 || e.index >= h.Len() {
		return
	}
	heap.Remove(h, e.index)
}

var _ = heap.Interface(&timerHeap{})
