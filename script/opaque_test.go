// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package script

import "testing"

type countingDriver struct{ destroyed *int }

func (d countingDriver) MakeRep(data any) string { return "opaque" }
func (d countingDriver) Destroy(data any)        { *d.destroyed++ }

func TestUnrefCollectsUnlinkedOpaque(t *testing.T) {
	destroyed := 0
	a := NewArena()
	o := a.New(countingDriver{destroyed: &destroyed}, nil)
	a.Unref(o)
	if destroyed != 1 {
		t.Errorf("expected opaque with no links to be destroyed, got %d destroys", destroyed)
	}
	if a.Len() != 0 {
		t.Errorf("expected arena to drop the collected opaque")
	}
}

func TestLinkedOpaqueSurvivesRefDrop(t *testing.T) {
	destroyed := 0
	a := NewArena()
	parent := a.New(countingDriver{destroyed: &destroyed}, nil)
	child := a.New(countingDriver{destroyed: &destroyed}, nil)
	a.Link(parent, child)
	a.Unref(child) // child now has refCount 0 but linkCount 1 from parent.
	if destroyed != 0 {
		t.Errorf("expected linked child to survive, got %d destroys", destroyed)
	}
	a.Unref(parent)
	if destroyed != 2 {
		t.Errorf("expected both parent and child destroyed once parent drops, got %d", destroyed)
	}
}

func TestCycleOfTwoCollectedWhenExternalRefsDrop(t *testing.T) {
	destroyed := 0
	a := NewArena()
	x := a.New(countingDriver{destroyed: &destroyed}, nil)
	y := a.New(countingDriver{destroyed: &destroyed}, nil)
	a.Link(x, y)
	a.Link(y, x)
	// Each carries its own top-level reference; dropping both should
	// collect the cycle since no external reference remains.
	a.Unref(x)
	a.Unref(y)
	if destroyed != 2 {
		t.Errorf("expected both cycle members destroyed, got %d", destroyed)
	}
	if a.Len() != 0 {
		t.Errorf("expected arena emptied of the collected cycle")
	}
}

func TestOpaqueWithExternalRefNotCollected(t *testing.T) {
	destroyed := 0
	a := NewArena()
	x := a.New(countingDriver{destroyed: &destroyed}, nil)
	y := a.New(countingDriver{destroyed: &destroyed}, nil)
	a.Link(x, y)
	a.Ref(y) // y now also held externally; y must survive x's collection.
	a.Unref(x)
	if destroyed != 1 {
		t.Errorf("expected only x destroyed, got %d", destroyed)
	}
	if a.Len() != 1 {
		t.Errorf("expected y to remain live")
	}
}
