// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package device

import "sync"

// Registry is the process-wide device manifest: all devices known to the
// runtime, keyed by name (spec §5: "Device manifest... process-wide and
// guarded by their own mutexes").
type Registry struct {
	mu      sync.RWMutex
	devices map[string]*Device
}

// NewRegistry creates an empty device registry.
func NewRegistry() *Registry { return &Registry{devices: map[string]*Device{}} }

// Add registers d under its name, replacing any existing device of the
// same name.
func (r *Registry) Add(d *Device) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.devices[d.Name] = d
}

// Find returns the named device and whether it was present.
func (r *Registry) Find(name string) (*Device, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.devices[name]
	return d, ok
}

// Remove detaches and forgets the named device.
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	d, ok := r.devices[name]
	if !ok {
		r.mu.Unlock()
		return nil
	}
	delete(r.devices, name)
	r.mu.Unlock()
	return d.Detach()
}

// All returns a snapshot slice of every registered device.
func (r *Registry) All() []*Device {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]*Device, 0, len(r.devices))
	for _, d := range r.devices {
		all = append(all, d)
	}
	return all
}

// Apply routes e to its named device's Apply, a no-op if unknown.
func (r *Registry) Apply(e Event) {
	if d, ok := r.Find(e.Device); ok {
		d.Apply(e)
	}
}
