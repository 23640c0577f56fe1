// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package devpipe

import (
	"testing"

	"github.com/veproj/ve/device"
)

func TestFilterTableContinueFallsThrough(t *testing.T) {
	ft := NewFilterTable()
	var order []string
	ft.Add(device.Spec{Index: device.NoIndex}, func(e device.Event, cdata any) (device.Event, FilterCode) {
		order = append(order, "first")
		return e, Continue
	}, nil, Tail)
	ft.Add(device.Spec{Index: device.NoIndex}, func(e device.Event, cdata any) (device.Event, FilterCode) {
		order = append(order, "second")
		return e, Continue
	}, nil, Tail)
	_, code := ft.run(device.Event{Device: "d", Element: "e", Index: device.NoIndex, Content: device.Trigger{}})
	if code != Deliver {
		t.Errorf("expected Deliver after exhausting filters, got %v", code)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("expected both filters to run in order, got %v", order)
	}
}

func TestFilterTableDiscardStopsProcessing(t *testing.T) {
	ft := NewFilterTable()
	reached := false
	ft.Add(device.Spec{Index: device.NoIndex}, func(e device.Event, cdata any) (device.Event, FilterCode) {
		return e, Discard
	}, nil, Tail)
	ft.Add(device.Spec{Index: device.NoIndex}, func(e device.Event, cdata any) (device.Event, FilterCode) {
		reached = true
		return e, Continue
	}, nil, Tail)
	_, code := ft.run(device.Event{Device: "d", Element: "e", Content: device.Trigger{}})
	if code != Discard {
		t.Errorf("expected Discard, got %v", code)
	}
	if reached {
		t.Errorf("expected remaining filters to be skipped on Discard")
	}
}

func TestFilterTableDeliverSkipsRemaining(t *testing.T) {
	ft := NewFilterTable()
	reached := false
	ft.Add(device.Spec{Index: device.NoIndex}, func(e device.Event, cdata any) (device.Event, FilterCode) {
		return e, Deliver
	}, nil, Tail)
	ft.Add(device.Spec{Index: device.NoIndex}, func(e device.Event, cdata any) (device.Event, FilterCode) {
		reached = true
		return e, Continue
	}, nil, Tail)
	_, code := ft.run(device.Event{Device: "d", Element: "e", Content: device.Trigger{}})
	if code != Deliver || reached {
		t.Errorf("expected immediate Deliver with remaining filters skipped")
	}
}

func TestFilterTableRestartReentersFromHead(t *testing.T) {
	ft := NewFilterTable()
	calls := 0
	ft.Add(device.Spec{Index: device.NoIndex}, func(e device.Event, cdata any) (device.Event, FilterCode) {
		calls++
		if calls < 2 {
			return e, Restart
		}
		return e, Continue
	}, nil, Tail)
	_, code := ft.run(device.Event{Device: "d", Element: "e", Content: device.Trigger{}})
	if code != Deliver {
		t.Errorf("expected Deliver, got %v", code)
	}
	if calls != 2 {
		t.Errorf("expected the table to re-enter from the head once, got %d calls", calls)
	}
}

func TestFilterTableErrorTreatedAsDiscard(t *testing.T) {
	ft := NewFilterTable()
	ft.Add(device.Spec{Index: device.NoIndex}, func(e device.Event, cdata any) (device.Event, FilterCode) {
		return e, FilterError
	}, nil, Tail)
	_, code := ft.run(device.Event{Device: "d", Element: "e", Content: device.Trigger{}})
	if code != Discard {
		t.Errorf("expected ERROR to be treated as Discard, got %v", code)
	}
}

func TestFilterTableVectorSlotMergeBack(t *testing.T) {
	ft := NewFilterTable()
	ft.Add(device.Spec{Device: "stick", Element: "axis", Index: 1}, func(e device.Event, cdata any) (device.Event, FilterCode) {
		v := e.Content.(device.Valuator)
		v.Value *= 2
		e.Content = v
		return e, Continue
	}, nil, Tail)
	vec := device.NewVector(3).WithValue(0, device.Valuator{Value: 1}).WithValue(1, device.Valuator{Value: 2}).WithValue(2, device.Valuator{Value: 3})
	e, code := ft.run(device.Event{Device: "stick", Element: "axis", Index: device.NoIndex, Content: vec})
	if code != Deliver {
		t.Fatalf("expected Deliver, got %v", code)
	}
	result := e.Content.(device.Vector)
	if result.At(1).Value != 4 {
		t.Errorf("expected slot 1 doubled to 4, got %+v", result.Values())
	}
	if result.At(0).Value != 1 || result.At(2).Value != 3 {
		t.Errorf("expected other slots untouched, got %+v", result.Values())
	}
}

func TestFilterTableVectorSlotRetypeIsReprocessed(t *testing.T) {
	ft := NewFilterTable()
	ft.Add(device.Spec{Device: "stick", Element: "axis", Index: 0}, func(e device.Event, cdata any) (device.Event, FilterCode) {
		e.Element = "button"
		e.Content = device.Switch{State: true}
		return e, Continue
	}, nil, Tail)
	var reprocessed device.Event
	ft.Reprocess = func(e device.Event) { reprocessed = e }
	vec := device.NewVector(1).WithValue(0, device.Valuator{Value: 1})
	e, _ := ft.run(device.Event{Device: "stick", Element: "axis", Index: device.NoIndex, Content: vec})
	if reprocessed.Element != "button" {
		t.Errorf("expected retyped filter result to be reprocessed independently, got %+v", reprocessed)
	}
	result := e.Content.(device.Vector)
	if result.At(0).Value != 1 {
		t.Errorf("expected original vector slot untouched by the retyped filter, got %+v", result.Values())
	}
}

func TestFilterTableVectorSlotRestartReentersFromHead(t *testing.T) {
	ft := NewFilterTable()
	calls := 0
	ft.Add(device.Spec{Device: "stick", Element: "axis", Index: 1}, func(e device.Event, cdata any) (device.Event, FilterCode) {
		calls++
		v := e.Content.(device.Valuator)
		v.Value++
		e.Content = v
		if calls < 2 {
			return e, Restart
		}
		return e, Continue
	}, nil, Tail)
	vec := device.NewVector(2).WithValue(0, device.Valuator{Value: 1}).WithValue(1, device.Valuator{Value: 10})
	e, code := ft.run(device.Event{Device: "stick", Element: "axis", Index: device.NoIndex, Content: vec})
	if code != Deliver {
		t.Fatalf("expected Deliver, got %v", code)
	}
	if calls != 2 {
		t.Errorf("expected the table to re-enter from the head once, got %d calls", calls)
	}
	result := e.Content.(device.Vector)
	if result.At(1).Value != 12 {
		t.Errorf("expected slot 1 incremented across both restart passes, got %+v", result.Values())
	}
}
