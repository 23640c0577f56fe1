// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package devpipe

import (
	"sync"

	"github.com/veproj/ve/device"
)

// Callback is dispatched for events matching its spec; returning true
// stops dispatch to subsequent callbacks (spec §4.4 step 4).
type Callback func(e device.Event) (stop bool)

type callbackEntry struct {
	spec  device.Spec
	index int32 // device.NoIndex unless this callback consumes one vector slot.
	fn    Callback
}

// Pipeline wires a FilterTable, a device Registry, and a callback list
// into the four-step event-processing algorithm of spec §4.4, plus the
// frame lock that serializes dispatch against a rendering traversal.
type Pipeline struct {
	Filters  *FilterTable
	Registry *device.Registry

	mu        sync.Mutex
	callbacks []*callbackEntry

	frameMu sync.Mutex // held by ProcessEvent for the duration of step 4.
}

// NewPipeline returns a pipeline with a fresh filter table, wired to
// reg for model application and spec matching.
func NewPipeline(reg *device.Registry) *Pipeline {
	p := &Pipeline{Filters: NewFilterTable(), Registry: reg}
	p.Filters.Reprocess = p.ProcessEvent
	return p
}

// AddCallback registers a callback for events matching spec. index, if
// not device.NoIndex, restricts the callback to a single vector slot
// (spec §4.4 step 4).
func (p *Pipeline) AddCallback(spec device.Spec, index int32, fn Callback) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.callbacks = append(p.callbacks, &callbackEntry{spec: spec, index: index, fn: fn})
}

// ProcessEvent implements spec §4.4's "Processing one event": filters
// (including per-slot vector filter synthesis and merge-back, step 2),
// then model application, then callback dispatch under the frame lock.
func (p *Pipeline) ProcessEvent(e device.Event) {
	e, code := p.Filters.run(e)
	if code == Discard {
		return
	}

	if p.Registry != nil {
		p.Registry.Apply(e)
	}

	p.dispatch(e)
}

// dispatch implements step 4: walk the callback list in registration
// order, calling every callback whose spec matches, stopping at the
// first callback that returns true. Vector events with an index-bound
// callback consume one valuator slot and processing continues; an
// unindexed callback consumes the whole event.
func (p *Pipeline) dispatch(e device.Event) {
	p.frameMu.Lock()
	defer p.frameMu.Unlock()

	p.mu.Lock()
	entries := append([]*callbackEntry(nil), p.callbacks...)
	p.mu.Unlock()

	vec, isVector := e.Content.(device.Vector)
	for _, ce := range entries {
		if !ce.spec.Match(e) {
			continue
		}
		if isVector && ce.index >= 0 {
			if int(ce.index) >= vec.Size() {
				continue
			}
			slot := e
			slot.Index = ce.index
			slot.Content = vec.At(int(ce.index))
			if ce.fn(slot) {
				return
			}
			continue
		}
		if ce.fn(e) {
			return
		}
	}
}

// LockFrame acquires the frame lock for the duration of a rendering
// traversal, so ProcessEvent's dispatch step cannot interleave with it
// (spec §4.4 "Frame-serialized dispatch", §5 "frame_lock").
func (p *Pipeline) LockFrame()   { p.frameMu.Lock() }
func (p *Pipeline) UnlockFrame() { p.frameMu.Unlock() }
