// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package devpipe

import (
	"testing"

	"github.com/veproj/ve/device"
)

func TestPipelineProcessEventFiltersThenAppliesThenDispatches(t *testing.T) {
	reg := device.NewRegistry()
	d := device.New("pad").WithModel(device.NewModel())
	reg.Add(d)

	p := NewPipeline(reg)
	p.Filters.Add(device.Spec{Index: device.NoIndex}, func(e device.Event, cdata any) (device.Event, FilterCode) {
		sw := e.Content.(device.Switch)
		sw.State = !sw.State
		e.Content = sw
		return e, Continue
	}, nil, Tail)

	var dispatched device.Event
	p.AddCallback(device.Spec{Index: device.NoIndex}, device.NoIndex, func(e device.Event) bool {
		dispatched = e
		return false
	})

	p.ProcessEvent(device.Event{Device: "pad", Element: "fire", Index: device.NoIndex, Content: device.Switch{State: false}})

	content, ok := d.Model.Get("fire")
	if !ok {
		t.Fatalf("expected model to be updated by ProcessEvent")
	}
	if sw := content.(device.Switch); !sw.State {
		t.Errorf("expected filter's flip to be applied to the model, got %+v", sw)
	}
	if dispatched.Element != "fire" {
		t.Errorf("expected callback to be dispatched with the filtered event, got %+v", dispatched)
	}
}

func TestPipelineDiscardedEventNeverReachesModelOrCallback(t *testing.T) {
	reg := device.NewRegistry()
	d := device.New("pad").WithModel(device.NewModel())
	reg.Add(d)

	p := NewPipeline(reg)
	p.Filters.Add(device.Spec{Index: device.NoIndex}, func(e device.Event, cdata any) (device.Event, FilterCode) {
		return e, Discard
	}, nil, Tail)

	called := false
	p.AddCallback(device.Spec{Index: device.NoIndex}, device.NoIndex, func(e device.Event) bool {
		called = true
		return false
	})

	p.ProcessEvent(device.Event{Device: "pad", Element: "fire", Index: device.NoIndex, Content: device.Trigger{}})

	if _, ok := d.Model.Get("fire"); ok {
		t.Errorf("expected discarded event to never reach the model")
	}
	if called {
		t.Errorf("expected discarded event to never reach a callback")
	}
}

func TestPipelineDispatchStopsAtFirstCallbackReturningTrue(t *testing.T) {
	p := NewPipeline(nil)
	var order []string
	p.AddCallback(device.Spec{Index: device.NoIndex}, device.NoIndex, func(e device.Event) bool {
		order = append(order, "first")
		return true
	})
	p.AddCallback(device.Spec{Index: device.NoIndex}, device.NoIndex, func(e device.Event) bool {
		order = append(order, "second")
		return false
	})
	p.ProcessEvent(device.Event{Device: "d", Element: "e", Index: device.NoIndex, Content: device.Trigger{}})
	if len(order) != 1 || order[0] != "first" {
		t.Errorf("expected dispatch to stop after the first callback returns true, got %v", order)
	}
}

func TestPipelineVectorIndexedCallbackConsumesOneSlot(t *testing.T) {
	p := NewPipeline(nil)
	var slots []int32
	p.AddCallback(device.Spec{Device: "stick", Element: "axis", Index: device.NoIndex}, 1, func(e device.Event) bool {
		slots = append(slots, e.Index)
		return false
	})
	vec := device.NewVector(3).WithValue(1, device.Valuator{Value: 0.5})
	p.ProcessEvent(device.Event{Device: "stick", Element: "axis", Index: device.NoIndex, Content: vec})
	if len(slots) != 1 || slots[0] != 1 {
		t.Errorf("expected the index-bound callback to fire once for slot 1, got %v", slots)
	}
}

func TestPipelineVectorIndexedCallbackSkipsOutOfRangeSlot(t *testing.T) {
	p := NewPipeline(nil)
	called := false
	p.AddCallback(device.Spec{Device: "stick", Element: "axis", Index: device.NoIndex}, 5, func(e device.Event) bool {
		called = true
		return false
	})
	vec := device.NewVector(3)
	p.ProcessEvent(device.Event{Device: "stick", Element: "axis", Index: device.NoIndex, Content: vec})
	if called {
		t.Errorf("expected callback bound to an out-of-range slot to be skipped")
	}
}

func TestPipelineReprocessRoutesRetypedVectorFilterResult(t *testing.T) {
	p := NewPipeline(nil)
	p.Filters.Add(device.Spec{Device: "stick", Element: "axis", Index: 0}, func(e device.Event, cdata any) (device.Event, FilterCode) {
		e.Element = "button"
		e.Content = device.Switch{State: true}
		return e, Continue
	}, nil, Tail)

	var reprocessed device.Event
	p.AddCallback(device.Spec{Device: "stick", Element: "button"}, device.NoIndex, func(e device.Event) bool {
		reprocessed = e
		return false
	})

	vec := device.NewVector(1).WithValue(0, device.Valuator{Value: 1})
	p.ProcessEvent(device.Event{Device: "stick", Element: "axis", Index: device.NoIndex, Content: vec})

	if reprocessed.Element != "button" {
		t.Errorf("expected the retyped filter result to be reprocessed as its own event and dispatched, got %+v", reprocessed)
	}
}
