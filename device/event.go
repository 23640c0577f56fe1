// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package device

// Event is a timestamped element-content update bearing the device and
// element names that produced it (spec §3). Index selects one valuator
// of a Vector event when >= 0; it is ignored otherwise.
type Event struct {
	TimestampMs int64
	Device      string
	Element     string
	Index       int32
	Content     Content
}

// Copy returns a value copy of the event. Vector content is deep-copied
// (via Vector.Values/WithValue semantics) so mutating the copy's slots
// never aliases the original, matching the ownership invariant that a
// filter borrows an event during processing and must not outlive the call
// by retaining shared mutable state (spec §3 Ownership and lifecycle).
func (e Event) Copy() Event {
	cp := e
	if v, ok := e.Content.(Vector); ok {
		cp.Content = Vector{slots: v.Values()}
	}
	return cp
}

// NoIndex is the sentinel Index value meaning "not a vector sub-address".
const NoIndex = -1
