// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package device

import (
	"strconv"
	"strings"
)

// Wildcard matches any value for a Spec field.
const Wildcard = "*"

// Spec is a pattern (device, element, index) used to match events (spec
// §3). An empty Device or Element field matches anything, same as "*".
// Element may also match an event by its content's type name (e.g.
// "trigger", "switch") rather than by literal element name.
type Spec struct {
	Device  string
	Element string
	Index   int32 // NoIndex means "any index".
}

// ParseSpec parses "device.element.index" into a Spec. Trailing parts may
// be omitted: "device", "device.element", or "device.element.index" are
// all accepted. "*" or "" mean wildcard for Device/Element; an omitted or
// "*" index means NoIndex (any index).
func ParseSpec(s string) Spec {
	spec := Spec{Index: NoIndex}
	parts := strings.SplitN(s, ".", 3)
	if len(parts) > 0 {
		spec.Device = parts[0]
	}
	if len(parts) > 1 {
		spec.Element = parts[1]
	}
	if len(parts) > 2 && parts[2] != "" && parts[2] != Wildcard {
		if idx, err := strconv.Atoi(parts[2]); err == nil {
			spec.Index = int32(idx)
		}
	}
	return spec
}

// String renders the spec back into "device.element.index" form.
func (s Spec) String() string {
	device, element := s.Device, s.Element
	if device == "" {
		device = Wildcard
	}
	if element == "" {
		element = Wildcard
	}
	index := Wildcard
	if s.Index != NoIndex {
		index = strconv.Itoa(int(s.Index))
	}
	return device + "." + element + "." + index
}

// Match reports whether e satisfies the spec: device and element fields
// match (element may also match the event's content Kind), and the index
// field, if given, equals the event's Index (spec §3).
func (s Spec) Match(e Event) bool {
	if !matchField(s.Device, e.Device) {
		return false
	}
	if !matchField(s.Element, e.Element) && !matchField(s.Element, e.Content.Kind()) {
		return false
	}
	if s.Index != NoIndex && s.Index != e.Index {
		return false
	}
	return true
}

func matchField(pattern, value string) bool {
	return pattern == "" || pattern == Wildcard || pattern == value
}
