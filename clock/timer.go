// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package clock

import (
	"container/heap"
	"sync"
	"time"

	"github.com/veproj/ve/stats"
)

// DefaultBusyLimit is the platform sleep-granularity threshold below which
// the wait loop busy-waits instead of blocking on a timed condvar wait.
// Configurable via Heap.SetBusyLimit; default matches spec §4.1 (30ms).
const DefaultBusyLimit = 30 * time.Millisecond

// Heap is a min-heap timer scheduler: Schedule inserts a (deadline,
// callback, arg) tuple and the Run loop fires callbacks as they come due,
// using a hybrid busy-wait/condvar sleep to hide coarse OS scheduler
// granularity (spec §4.1).
type Heap struct {
	clock *Clock

	mu   sync.Mutex
	cond *sync.Cond
	h    timerHeap
	seq  uint64

	busyLimit time.Duration
	busyWait  bool
	stopped   bool

	latency *stats.Counter // rolling average of (fire time - deadline), samples of 20.
	samples []float64
}

// NewHeap creates a timer heap driven by clk. If reg is non-nil, a
// "timer.latency" rolling-average counter is published through it
// (spec §4.1 "aggregated in samples of 20 and published as a statistic").
func NewHeap(clk *Clock, reg *stats.Registry) *Heap {
	h := &Heap{
		clock:     clk,
		busyLimit: DefaultBusyLimit,
		busyWait:  true,
	}
	h.cond = sync.NewCond(&h.mu)
	if reg != nil {
		h.latency = reg.Counter("timer.latency")
	}
	return h
}

// SetBusyLimit overrides the busy-wait threshold. Mirrors VE_TIMER_LIMIT.
func (h *Heap) SetBusyLimit(d time.Duration) {
	h.mu.Lock()
	h.busyLimit = d
	h.mu.Unlock()
}

// SetBusyWait enables or disables busy-wait mode. Mirrors VE_TIMER_BUSY.
func (h *Heap) SetBusyWait(enabled bool) {
	h.mu.Lock()
	h.busyWait = enabled
	h.mu.Unlock()
}

// Schedule inserts (clock.Now()+msecsFromNow, cb, arg) into the heap and
// wakes the wait loop. Returns a handle that Cancel can use to remove an
// unfired timer by identity.
func (h *Heap) Schedule(msecsFromNow int64, cb Callback, arg any) *Handle {
	h.mu.Lock()
	h.seq++
	e := &entry{deadline: h.clock.Now() + msecsFromNow, seq: h.seq, cb: cb, arg: arg}
	heap.Push(&h.h, e)
	h.cond.Broadcast()
	h.mu.Unlock()
	return &Handle{e: e}
}

// Handle identifies a scheduled-but-not-yet-fired timer.
type Handle struct{ e *entry }

// Cancel removes an unfired timer by identity. Fired timers cannot be
// cancelled (spec §5 cancellation/timeouts). Returns false if the timer
// already fired or was already cancelled.
func (h *Heap) Cancel(handle *Handle) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if handle == nil || handle.e == nil || handle.e.index < 0 {
		return false
	}
	h.h.remove(handle.e)
	return true
}

// EventsPending returns true iff the heap is non-empty and its root
// deadline is at or before now.
func (h *Heap) EventsPending() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pendingLocked()
}

func (h *Heap) pendingLocked() bool {
	if h.h.Len() == 0 {
		return false
	}
	return h.h[0].deadline <= h.clock.Now()
}

// Stop releases the wait loop permanently.
func (h *Heap) Stop() {
	h.mu.Lock()
	h.stopped = true
	h.cond.Broadcast()
	h.mu.Unlock()
}

// Run blocks processing due timers until Stop is called. It is intended
// to be run on a dedicated timer goroutine (spec §5 concurrency model).
func (h *Heap) Run() {
	for {
		e := h.waitForDue()
		if e == nil {
			return // stopped
		}
		fired := h.clock.Now()
		h.recordLatency(fired - e.deadline)
		e.cb(e.arg) // callback may reschedule; runs without the heap mutex held.
	}
}

// waitForDue blocks, using the hybrid busy-wait/condvar strategy, until a
// timer is due and pops+returns it, or returns nil if stopped.
func (h *Heap) waitForDue() *entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	for {
		if h.stopped {
			return nil
		}
		if h.h.Len() == 0 {
			h.cond.Wait() // empty heap: wait for an insertion.
			continue
		}
		now := h.clock.Now()
		delta := h.h[0].deadline - now
		if delta <= 0 {
			return heap.Pop(&h.h).(*entry)
		}

		d := time.Duration(delta) * time.Millisecond
		if h.busyWait && h.busyLimit > d {
			// Sleep granularity is coarser than the remaining wait: spin
			// instead of risking oversleeping past the deadline. Capture
			// the deadline before releasing the mutex; the outer loop
			// re-evaluates the live heap root once re-locked.
			deadline := h.h[0].deadline
			h.mu.Unlock()
			for h.clock.Now() < deadline {
				time.Sleep(time.Millisecond)
			}
			h.mu.Lock()
			continue
		}

		// Timed wait on the condvar for up to delta/2, so a concurrent
		// Schedule() of an earlier timer is noticed promptly.
		wait := d / 2
		if wait <= 0 {
			wait = time.Millisecond
		}
		timedCondWait(h.cond, wait)
	}
}

// timedCondWait performs a bounded wait on cond. sync.Cond has no native
// timed wait, so a timer goroutine nudges it awake after the timeout;
// the cond's mutex must be held on entry and is held again on return.
// A real Schedule()/Stop() broadcast wakes it early, which is fine: the
// caller always re-evaluates the heap root after waking.
func timedCondWait(cond *sync.Cond, d time.Duration) {
	timer := time.AfterFunc(d, func() {
		cond.L.Lock()
		cond.Broadcast()
		cond.L.Unlock()
	})
	defer timer.Stop()
	cond.Wait()
}

func (h *Heap) recordLatency(sampleMs int64) {
	if h.latency == nil {
		return
	}
	h.samples = append(h.samples, float64(sampleMs))
	if len(h.samples) < 20 {
		return
	}
	sum := 0.0
	for _, s := range h.samples {
		sum += s
	}
	h.latency.Set(sum / float64(len(h.samples)))
	h.samples = h.samples[:0]
}

