// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package device

import "testing"

func TestModelApplyCreatesElement(t *testing.T) {
	m := NewModel()
	m.Apply(Event{Element: "axis0", Index: NoIndex, Content: Valuator{Value: 0.5}})
	c, ok := m.Get("axis0")
	if !ok {
		t.Fatalf("expected axis0 to exist after Apply")
	}
	if v, ok := c.(Valuator); !ok || v.Value != 0.5 {
		t.Errorf("expected valuator 0.5, got %+v", c)
	}
}

func TestModelApplyVectorSlot(t *testing.T) {
	m := NewModel()
	m.Set("stick", Vector{slots: []Valuator{{Value: 0.1}, {Value: 0.2}, {Value: 0.3}}})
	m.Apply(Event{Element: "stick", Index: 1, Content: Valuator{Value: -0.2}})
	c, _ := m.Get("stick")
	vec := c.(Vector)
	if vec.At(0).Value != 0.1 || vec.At(1).Value != -0.2 || vec.At(2).Value != 0.3 {
		t.Errorf("expected vector {0.1 -0.2 0.3}, got %+v", vec.Values())
	}
}

func TestVectorFixedSize(t *testing.T) {
	v := NewVector(3)
	if v.Size() != 3 {
		t.Errorf("expected fixed size 3, got %d", v.Size())
	}
	v2 := v.WithValue(5, Valuator{Value: 1})
	if v2.Size() != 3 {
		t.Errorf("out of range WithValue must not change size")
	}
}

func TestVectorBoundarySizes(t *testing.T) {
	if NewVector(0).Size() != 0 {
		t.Errorf("expected size 0 vector to be valid")
	}
	if NewVector(MaxVectorSize).Size() != MaxVectorSize {
		t.Errorf("expected max size vector to be valid")
	}
	if NewVector(MaxVectorSize + 1).Size() != MaxVectorSize {
		t.Errorf("expected oversized vector to clamp to max")
	}
}

func TestEventCopyDeepCopiesVector(t *testing.T) {
	v := NewVector(2).WithValue(0, Valuator{Value: 1})
	e := Event{Element: "v", Content: v}
	cp := e.Copy()
	cpVec := cp.Content.(Vector)
	cpVec2 := cpVec.WithValue(1, Valuator{Value: 9})
	origVec := e.Content.(Vector)
	if origVec.At(1).Value == 9 {
		t.Errorf("Copy must not alias the original vector's backing slice")
	}
	_ = cpVec2
}
