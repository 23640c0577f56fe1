// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package device

import "sync"

// Element is a single named channel of a device, paired with its current
// content (spec §3).
type Element struct {
	Name    string
	Content Content
}

// Model is a device's mapping of element name to current content.
// Models are optional; a device without one still emits events (spec §3).
// Model is safe for concurrent use since it is mutated by the filter
// pipeline's worker goroutine while application code may read it.
type Model struct {
	mu       sync.RWMutex
	elements map[string]*Element
}

// NewModel creates an empty device model.
func NewModel() *Model { return &Model{elements: map[string]*Element{}} }

// Set creates or replaces an element's content by name.
func (m *Model) Set(name string, content Content) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.elements[name] = &Element{Name: name, Content: content}
}

// Get returns the named element's content and whether it was present.
func (m *Model) Get(name string) (Content, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.elements[name]
	if !ok {
		return nil, false
	}
	return e.Content, true
}

// Names returns all element names currently in the model.
func (m *Model) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.elements))
	for name := range m.elements {
		names = append(names, name)
	}
	return names
}

// Apply updates the model's element content to reflect e, applying to a
// single Vector slot when e.Index >= 0 and the existing content is a
// Vector (spec §4.4 step 3). Unknown elements are created.
func (m *Model) Apply(e Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.Index >= 0 {
		if existing, ok := m.elements[e.Element]; ok {
			if vec, ok := existing.Content.(Vector); ok {
				if val, ok := e.Content.(Valuator); ok {
					existing.Content = vec.WithValue(int(e.Index), val)
					return
				}
			}
		}
	}
	m.elements[e.Element] = &Element{Name: e.Element, Content: e.Content}
}
