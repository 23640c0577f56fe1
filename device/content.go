// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package device models virtual-environment input devices: typed element
// content, events, and the per-device model that tracks current element
// state. Package device only describes the shape of a device; sampling
// hardware or network transports into device.Event values is left to
// driver plug-ins conforming to the Driver contract below (spec §1 Non-goals:
// individual device drivers are plug-ins, not re-specified here).
//
// Package device is provided as part of the ve (virtual environment) runtime.
package device

// Content is a type-tagged union of element payloads: Trigger (no
// payload), Switch, Valuator, Vector, or Keyboard. Kind names the variant
// the way a device spec (see Spec) names it for type-based matching.
type Content interface {
	Kind() string
}

// Trigger is a momentary, payload-less element (e.g. a button tap).
type Trigger struct{}

// Kind implements Content.
func (Trigger) Kind() string { return "trigger" }

// Switch is a boolean element (e.g. a toggle or held button).
type Switch struct {
	State bool
}

// Kind implements Content.
func (Switch) Kind() string { return "switch" }

// Valuator is a bounded or unbounded scalar element. Min==Max==0 means
// unbounded (spec §3).
type Valuator struct {
	Min, Max, Value float32
}

// Kind implements Content.
func (Valuator) Kind() string { return "valuator" }

// Unbounded reports whether this valuator has no min/max range.
func (v Valuator) Unbounded() bool { return v.Min == 0 && v.Max == 0 }

// Vector is a fixed-size array of valuators (e.g. a 3-axis joystick or a
// 6-DOF tracker). Individual slots may be bounded or unbounded
// independently of each other. Size is fixed once the Vector is
// constructed; see NewVector.
type Vector struct {
	slots []Valuator
}

// NewVector creates a vector element with the given fixed size. size
// must be between 0 and MaxVectorSize (16, spec §6).
func NewVector(size int) Vector {
	if size < 0 {
		size = 0
	}
	if size > MaxVectorSize {
		size = MaxVectorSize
	}
	return Vector{slots: make([]Valuator, size)}
}

// MaxVectorSize is the largest vector an NID payload can carry (spec §6).
const MaxVectorSize = 16

// Kind implements Content.
func (Vector) Kind() string { return "vector" }

// Size returns the number of valuator slots.
func (v Vector) Size() int { return len(v.slots) }

// At returns the valuator at index i, or the zero Valuator if out of range.
func (v Vector) At(i int) Valuator {
	if i < 0 || i >= len(v.slots) {
		return Valuator{}
	}
	return v.slots[i]
}

// WithValue returns a copy of v with slot i set to val. Out-of-range
// indices are a no-op, returning v unchanged.
func (v Vector) WithValue(i int, val Valuator) Vector {
	if i < 0 || i >= len(v.slots) {
		return v
	}
	cp := make([]Valuator, len(v.slots))
	copy(cp, v.slots)
	cp[i] = val
	return Vector{slots: cp}
}

// Values returns a copy of all slot values in order.
func (v Vector) Values() []Valuator {
	cp := make([]Valuator, len(v.slots))
	copy(cp, v.slots)
	return cp
}

// Keyboard is a discrete key-code element with a pressed/released state.
type Keyboard struct {
	Key   int32
	State bool
}

// Kind implements Content.
func (Keyboard) Kind() string { return "keyboard" }
