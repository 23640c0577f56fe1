// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package devpipe implements the device event pipeline: a filter table,
// a thread-safe event queue, and frame-serialized callback dispatch
// (spec §4.4).
package devpipe

import (
	"sync"

	"github.com/veproj/ve/device"
)

// FilterCode is the result of running one filter against an event
// (spec §4.4 "Processing one event").
type FilterCode int

const (
	Continue FilterCode = iota
	Restart
	Discard
	Deliver
	FilterError
)

// Position selects which end of the filter table an entry is added to.
type Position int

const (
	Head Position = iota
	Tail
)

// Filter inspects or transforms an event, returning a disposition code.
// If it returns a modified event, that event replaces e for subsequent
// processing.
type Filter func(e device.Event, cdata any) (device.Event, FilterCode)

type filterEntry struct {
	spec   device.Spec
	filter Filter
	cdata  any
}

// FilterTable is an ordered list of (spec, filter) entries (spec §4.4
// "Filter table is a linked list").
type FilterTable struct {
	mu      sync.Mutex
	entries []*filterEntry

	// Reprocess re-enters the pipeline for a vector-slot filter's result
	// that renamed or retyped the event, so it is handled as an event
	// independent of the vector it was synthesized from (spec §4.4
	// step 2). Set by Pipeline; nil is a silent no-op, useful in tests
	// that exercise FilterTable alone.
	Reprocess func(device.Event)
}

// NewFilterTable returns an empty filter table.
func NewFilterTable() *FilterTable { return &FilterTable{} }

// Add inserts a filter at the head or tail of the table.
func (t *FilterTable) Add(spec device.Spec, f Filter, cdata any, pos Position) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e := &filterEntry{spec: spec, filter: f, cdata: cdata}
	if pos == Head {
		t.entries = append([]*filterEntry{e}, t.entries...)
	} else {
		t.entries = append(t.entries, e)
	}
}

// Remove drops every entry registered for spec (by value equality).
func (t *FilterTable) Remove(spec device.Spec) {
	t.mu.Lock()
	defer t.mu.Unlock()
	kept := t.entries[:0]
	for _, e := range t.entries {
		if e.spec != spec {
			kept = append(kept, e)
		}
	}
	t.entries = kept
}

// maxRestarts bounds "RESTART: re-enter the table from the head"
// against runaway filters that restart forever; spec §4.4 calls
// infinite loops "caller error" — this simply keeps a buggy filter from
// hanging the pipeline goroutine.
const maxRestarts = 1000

// run walks the table from the head, applying matching filters in
// order per spec §4.4 step 1.
func (t *FilterTable) run(e device.Event) (device.Event, FilterCode) {
	t.mu.Lock()
	entries := append([]*filterEntry(nil), t.entries...)
	t.mu.Unlock()

	restarts := 0
restart:
	for _, fe := range entries {
		vec, isVector := e.Content.(device.Vector)
		if isVector && fe.spec.Index >= 0 {
			slotMatch, ok := vectorSlotMatch(fe.spec, e, vec)
			if !ok {
				continue
			}
			next, code := fe.filter(slotMatch, fe.cdata)
			switch code {
			case Discard:
				return e, Discard
			case FilterError:
				return e, Discard // spec §4.4: "ERROR: log; treat as DISCARD."
			}
			if next.Device == slotMatch.Device && next.Element == slotMatch.Element &&
				next.Content.Kind() == slotMatch.Content.Kind() {
				if val, ok := next.Content.(device.Valuator); ok {
					e.Content = vec.WithValue(int(fe.spec.Index), val)
				}
			} else if t.Reprocess != nil {
				t.Reprocess(next)
			}
			switch code {
			case Deliver:
				return e, Deliver
			case Restart:
				restarts++
				if restarts > maxRestarts {
					return e, FilterError
				}
				goto restart
			}
			continue
		}

		if !fe.spec.Match(e) {
			continue
		}
		next, code := fe.filter(e, fe.cdata)
		switch code {
		case Continue:
			e = next
			continue
		case Restart:
			restarts++
			if restarts > maxRestarts {
				return e, FilterError
			}
			e = next
			goto restart
		case Discard:
			return e, Discard
		case Deliver:
			return next, Deliver
		case FilterError:
			return e, Discard // spec §4.4: "ERROR: log; treat as DISCARD."
		}
	}
	return e, Deliver
}

// vectorSlotMatch checks a vector-targeting filter entry against e
// ignoring the index (which addresses a slot, not the whole vector) and
// synthesizes the Valuator event the filter actually runs against (spec
// §4.4 step 2).
func vectorSlotMatch(spec device.Spec, e device.Event, vec device.Vector) (device.Event, bool) {
	if int(spec.Index) >= vec.Size() {
		return device.Event{}, false
	}
	whole := spec
	whole.Index = device.NoIndex
	if !whole.Match(e) {
		return device.Event{}, false
	}
	return device.Event{
		TimestampMs: e.TimestampMs,
		Device:      e.Device,
		Element:     e.Element,
		Index:       spec.Index,
		Content:     vec.At(int(spec.Index)),
	}, true
}
