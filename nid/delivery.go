// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package nid

import (
	"io"
	"strconv"
	"sync"
)

// Streaming is the default delivery mode: after LISTEN_ELEMENTS, the
// server pushes ELEMENT_EVENTS packets asynchronously whenever listened
// elements change; the client drains them with NextEvent (spec §4.5
// "Delivery modes"). RefreshHz records a requested push rate; NextEvent
// does not read it and applies no rate limit.
type Streaming struct {
	RefreshHz int
}

// NextEvent reads one ELEMENT_EVENTS packet, blocking if wait is true.
// A non-blocking caller that finds nothing buffered gets (ElementState{},
// false, nil); a blocking caller gets false with a nil error on
// connection close, or when the packet read is not ELEMENT_EVENTS (that
// packet is consumed and dropped).
func (s *Streaming) NextEvent(r io.Reader, wait bool) (ElementState, bool, error) {
	if !wait && !hasBuffered(r) {
		return ElementState{}, false, nil
	}
	h, payload, err := ReadPacket(r)
	if err != nil {
		if err == io.EOF {
			return ElementState{}, false, nil
		}
		return ElementState{}, false, err
	}
	if h.Type != TypeElementEvents {
		return ElementState{}, false, nil
	}
	es, err := UnmarshalElementState(payload)
	if err != nil {
		return ElementState{}, false, err
	}
	return es, true, nil
}

// peeker is implemented by readers that can report buffered-but-unread
// bytes without blocking (e.g. a bufio.Reader); used to implement
// wait=false's "return immediately if no data buffered" (spec §4.5).
type peeker interface {
	Buffered() int
}

func hasBuffered(r io.Reader) bool {
	p, ok := r.(peeker)
	if !ok {
		// No way to tell without blocking; treat as "nothing buffered"
		// rather than risk blocking a caller who asked not to wait.
		return false
	}
	return p.Buffered() > 0
}

// CompressedBuffer implements spec §4.5's compressed delivery mode: the
// server buffers and merges adjacent valuator updates to the same
// element, keeping only the latest value per (device, element, index),
// and notifies the client with a zero-payload EVENTS_AVAIL rather than
// streaming every change.
type CompressedBuffer struct {
	mu      sync.Mutex
	order   []string
	latest  map[string]ElementState
	notify  func()
}

type compressKey = string

func key(es ElementState) compressKey {
	return es.Device + "\x00" + es.Element + "\x00" + strconv.Itoa(int(es.Index))
}

// NewCompressedBuffer returns an empty buffer. notify, if non-nil, is
// called (without blocking) the first time a buffer transitions from
// empty to non-empty, the trigger for sending EVENTS_AVAIL.
func NewCompressedBuffer(notify func()) *CompressedBuffer {
	return &CompressedBuffer{latest: map[string]ElementState{}, notify: notify}
}

// Merge folds es into the buffer, replacing any prior update for the
// same (device, element, index) — spec's example: "3.1 then 3.2" merges
// to a single buffered "3.2".
func (c *CompressedBuffer) Merge(es ElementState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := key(es)
	wasEmpty := len(c.latest) == 0
	if _, exists := c.latest[k]; !exists {
		c.order = append(c.order, k)
	}
	c.latest[k] = es
	if wasEmpty && c.notify != nil {
		c.notify()
	}
}

// Dump returns the buffered states in first-touched order and clears the
// buffer, implementing DUMP_EVENTS's response to ELEMENT_STATES.
func (c *CompressedBuffer) Dump() []ElementState {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ElementState, 0, len(c.order))
	for _, k := range c.order {
		if es, ok := c.latest[k]; ok {
			out = append(out, es)
		}
	}
	c.order = nil
	c.latest = map[string]ElementState{}
	return out
}
