// Copyright © 2013-2015, 2026 Galvanized Logic Inc., VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package device

// Driver is the contract a device plug-in (joystick, tracker, NID client,
// ...) implements to become a live input source. Package device does not
// implement any driver; drivers are out-of-tree plug-ins (spec §1
// Non-goals). The expected usage mirrors the teacher engine's device
// lifecycle:
//
//	d := mydriver.New(...)
//	if err := d.Open(); err != nil { ... }
//	defer d.Close()
//	for ev := range d.Events() { ... }
type Driver interface {
	// Open acquires whatever OS or network resource the driver samples.
	Open() error
	// Close releases driver resources. Events is drained and closed.
	Close() error
	// Events returns the channel of events sampled by the driver. The
	// channel is closed after Close returns.
	Events() <-chan Event
}

// Device is (name, optional model, optional instance) per spec §3. A
// virtual device has no instance: it still owns a Model and still emits
// events (e.g. script-generated ones), it is simply never polled.
type Device struct {
	Name     string
	Model    *Model // nil if the device carries no model.
	instance Driver // nil for a virtual device.
}

// New creates a named device with no model and no instance.
func New(name string) *Device { return &Device{Name: name} }

// WithModel attaches a model to the device and returns it for chaining.
func (d *Device) WithModel(m *Model) *Device {
	d.Model = m
	return d
}

// IsVirtual reports whether the device has no live driver instance.
func (d *Device) IsVirtual() bool { return d.instance == nil }

// Attach binds a live driver instance to the device, opening it. optional
// downgrades an Open failure to a warning per spec §7 ("Optional devices
// downgrade instantiation failures to warnings"), returning a nil error
// and leaving the device virtual; a non-optional device's Open failure is
// returned to the caller.
func (d *Device) Attach(instance Driver, optional bool) error {
	if err := instance.Open(); err != nil {
		if optional {
			return nil // downgraded: device stays virtual.
		}
		return err
	}
	d.instance = instance
	return nil
}

// Detach closes and removes the device's live instance, if any.
func (d *Device) Detach() error {
	if d.instance == nil {
		return nil
	}
	err := d.instance.Close()
	d.instance = nil
	return err
}

// Events returns the device's raw event channel, or nil for a virtual
// device (a nil channel blocks forever in a select, which is the
// conventional "no source" behavior).
func (d *Device) Events() <-chan Event {
	if d.instance == nil {
		return nil
	}
	return d.instance.Events()
}

// Apply updates the device's model (if any) to reflect e.
func (d *Device) Apply(e Event) {
	if d.Model != nil {
		d.Model.Apply(e)
	}
}
