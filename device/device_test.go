// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package device

import "testing"

type fakeDriver struct {
	openErr error
	events  chan Event
	closed  bool
}

func (f *fakeDriver) Open() error        { return f.openErr }
func (f *fakeDriver) Close() error       { f.closed = true; close(f.events); return nil }
func (f *fakeDriver) Events() <-chan Event { return f.events }

func TestDeviceVirtualByDefault(t *testing.T) {
	d := New("joystick")
	if !d.IsVirtual() {
		t.Errorf("expected a freshly created device to be virtual")
	}
	if d.Events() != nil {
		t.Errorf("expected nil event channel for a virtual device")
	}
}

func TestDeviceAttachOptionalDowngradesFailure(t *testing.T) {
	d := New("tracker")
	err := d.Attach(&fakeDriver{openErr: errBoom}, true)
	if err != nil {
		t.Errorf("expected optional attach failure to be downgraded, got %v", err)
	}
	if !d.IsVirtual() {
		t.Errorf("expected device to remain virtual after downgraded failure")
	}
}

func TestDeviceAttachRequiredPropagatesFailure(t *testing.T) {
	d := New("tracker")
	err := d.Attach(&fakeDriver{openErr: errBoom}, false)
	if err == nil {
		t.Errorf("expected required attach failure to propagate")
	}
}

func TestRegistryApplyRoutesToDevice(t *testing.T) {
	r := NewRegistry()
	d := New("joystick").WithModel(NewModel())
	r.Add(d)
	r.Apply(Event{Device: "joystick", Element: "axis0", Index: NoIndex, Content: Switch{State: true}})
	c, ok := d.Model.Get("axis0")
	if !ok {
		t.Fatalf("expected element applied via registry")
	}
	if sw, ok := c.(Switch); !ok || !sw.State {
		t.Errorf("expected switch true, got %+v", c)
	}
}

var errBoom = fakeErr("boom")

type fakeErr string

func (e fakeErr) Error() string { return string(e) }
