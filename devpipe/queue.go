// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package devpipe

import (
	"sync"

	"github.com/veproj/ve/device"
)

// Disposition controls how much processing a queued event receives
// (spec §4.4 "Event queue").
type Disposition int

const (
	DispContinue Disposition = iota // full filter processing.
	DispDeliver                     // skip filters; dispatch only.
)

// BlockPolicy controls what happens to pending events while the queue
// is blocked (spec §4.4 "Blocking").
type BlockPolicy int

const (
	BlockQueue   BlockPolicy = iota // queue events, resume on unblock.
	BlockDiscard                    // drop events while blocked.
)

type queued struct {
	event device.Event
	disp  Disposition
}

// Queue is a thread-safe FIFO of pending events with push-at-head or
// push-at-tail and a per-entry disposition flag.
type Queue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	entries []queued
	blocked bool
	policy  BlockPolicy
	closed  bool
}

// NewQueue returns an empty event queue.
func NewQueue() *Queue {
	q := &Queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// PushTail enqueues an event at the tail (the common case: arrival
// order is preserved per device, per spec §5 ordering guarantees).
func (q *Queue) PushTail(e device.Event, disp Disposition) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.blocked && q.policy == BlockDiscard {
		return
	}
	q.entries = append(q.entries, queued{event: e, disp: disp})
	q.cond.Signal()
}

// PushHead enqueues an event at the head, for high-priority redelivery.
func (q *Queue) PushHead(e device.Event, disp Disposition) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.blocked && q.policy == BlockDiscard {
		return
	}
	q.entries = append([]queued{{event: e, disp: disp}}, q.entries...)
	q.cond.Signal()
}

// Empty reports whether the queue currently holds no events.
func (q *Queue) Empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries) == 0
}

// Pop blocks until an event is available and the queue is not blocked
// (or the queue is closed via Close) and removes it from the head.
func (q *Queue) Pop() (device.Event, Disposition, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.entries) == 0 || q.blocked {
		q.cond.Wait()
		if q.closed {
			return device.Event{}, DispContinue, false
		}
	}
	e := q.entries[0]
	q.entries = q.entries[1:]
	return e.event, e.disp, true
}

// Block prevents dispatch; pending events are queued or discarded per
// policy (spec §4.4 "Blocking").
func (q *Queue) Block(policy BlockPolicy) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.blocked = true
	q.policy = policy
	if policy == BlockDiscard {
		q.entries = nil
	}
}

// Unblock resumes dispatch of any queued events.
func (q *Queue) Unblock() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.blocked = false
	q.cond.Broadcast()
}

// Blocked reports whether the queue is currently blocked.
func (q *Queue) Blocked() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.blocked
}

// Close wakes any goroutine blocked in Pop, which then returns ok=false.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}
