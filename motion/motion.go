// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package motion gates mutations to the two protected frames — eye and
// origin — behind an application-supplied policy (spec §4.8). Drivers
// that want to move either frame submit a proposed frame through
// CheckMotion; the registered Callback decides whether the move takes
// effect.
package motion

import "sync"

// Which identifies the protected frame a motion proposal targets.
type Which int

const (
	Eye Which = iota
	Origin
)

func (w Which) String() string {
	if w == Origin {
		return "origin"
	}
	return "eye"
}

// Decision is a Callback's verdict on a proposed frame.
type Decision int

const (
	Reject Decision = iota
	Accept
)

// Frame is the proposed location/orientation submitted for approval.
// Loc, Dir and Up are in the same convention as glue's frame_origin and
// frame_eye accessors.
type Frame struct {
	Loc, Dir, Up [3]float64
}

// Callback is consulted before eye or origin is modified (spec §4.8
// "check_motion(which, &proposed)"). It returns Accept to let the move
// proceed or Reject to veto it.
type Callback func(which Which, proposed *Frame) Decision

// AcceptAll is the sentinel callback that approves every motion.
func AcceptAll(Which, *Frame) Decision { return Accept }

// RejectAll is the sentinel callback that vetoes every motion.
func RejectAll(Which, *Frame) Decision { return Reject }

// Gate holds the currently registered motion callback and arbitrates
// proposed eye/origin moves against it.
type Gate struct {
	mu sync.Mutex
	cb Callback
}

// NewGate returns a Gate with no callback registered; CheckMotion
// defaults to Accept until one is set (spec §4.8 "Absence of a
// callback defaults to ACCEPT").
func NewGate() *Gate { return &Gate{} }

// SetCallback installs cb as the application's motion policy. A nil cb
// reverts to the no-callback default (Accept).
func (g *Gate) SetCallback(cb Callback) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cb = cb
}

// CheckMotion submits proposed to the registered callback and reports
// whether the move is allowed. A nil callback defaults to ACCEPT; a
// callback result other than Accept or Reject defaults to REJECT (spec
// §4.8 "Invalid returns default to REJECT").
func (g *Gate) CheckMotion(which Which, proposed *Frame) bool {
	g.mu.Lock()
	cb := g.cb
	g.mu.Unlock()

	if cb == nil {
		return true
	}
	switch cb(which, proposed) {
	case Accept:
		return true
	case Reject:
		return false
	default:
		return false
	}
}
