// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package nid

import (
	"encoding/binary"
	"fmt"
)

// Core requests (spec §4.5): ENUM_DEVICES, ENUM_ELEMENTS, QUERY_ELEMENTS,
// LISTEN_ELEMENTS, IGNORE_ELEMENTS, SET_VALUE/GET_VALUE, FIND_DEVICE,
// DEVICE_FUNC. Each payload is a count-prefixed list of fixed-width
// string fields, or a single ElementState, per the framing in packet.go.

func putStringList(items []string) []byte {
	buf := make([]byte, 4+len(items)*StringFieldLen)
	binary.BigEndian.PutUint32(buf[0:4], uint32(len(items)))
	for i, s := range items {
		off := 4 + i*StringFieldLen
		PutString(buf[off:off+StringFieldLen], s)
	}
	return buf
}

func getStringList(buf []byte) ([]string, error) {
	if len(buf) < 4 {
		return nil, fmt.Errorf("nid: short string-list payload")
	}
	n := int(binary.BigEndian.Uint32(buf[0:4]))
	want := 4 + n*StringFieldLen
	if n < 0 || len(buf) < want {
		return nil, fmt.Errorf("nid: malformed string-list payload (n=%d, len=%d)", n, len(buf))
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		off := 4 + i*StringFieldLen
		out[i] = GetString(buf[off : off+StringFieldLen])
	}
	return out, nil
}

// EnumDevicesPayload builds the zero-argument ENUM_DEVICES request body.
func EnumDevicesPayload() []byte { return nil }

// EnumDevicesResponse builds an ENUM_DEVICES response listing device names.
func EnumDevicesResponse(names []string) []byte { return putStringList(names) }

// DecodeEnumDevicesResponse parses an ENUM_DEVICES response.
func DecodeEnumDevicesResponse(payload []byte) ([]string, error) { return getStringList(payload) }

// EnumElementsPayload builds an ENUM_ELEMENTS request for one device.
func EnumElementsPayload(device string) []byte { return putStringList([]string{device}) }

// DecodeEnumElementsPayload parses the device name back out.
func DecodeEnumElementsPayload(payload []byte) (string, error) {
	names, err := getStringList(payload)
	if err != nil {
		return "", err
	}
	if len(names) != 1 {
		return "", fmt.Errorf("nid: ENUM_ELEMENTS expects exactly one device name")
	}
	return names[0], nil
}

// EnumElementsResponse lists element names for the queried device.
func EnumElementsResponse(names []string) []byte { return putStringList(names) }

// SpecListPayload encodes device specs ("device.element.index") for
// QUERY_ELEMENTS, LISTEN_ELEMENTS, and IGNORE_ELEMENTS.
func SpecListPayload(specs []string) []byte { return putStringList(specs) }

// DecodeSpecListPayload parses a spec-list payload back into strings.
func DecodeSpecListPayload(payload []byte) ([]string, error) { return getStringList(payload) }

// QueryElementsResponse carries one ElementState per queried spec.
func QueryElementsResponse(states []ElementState) ([]byte, error) {
	return marshalElementStates(states)
}

// DecodeQueryElementsResponse parses a QUERY_ELEMENTS response.
func DecodeQueryElementsResponse(payload []byte) ([]ElementState, error) {
	return unmarshalElementStates(payload)
}

func marshalElementStates(states []ElementState) ([]byte, error) {
	encoded := make([][]byte, len(states))
	total := 4
	for i, s := range states {
		b, err := MarshalElementState(s)
		if err != nil {
			return nil, err
		}
		encoded[i] = b
		total += 4 + len(b)
	}
	buf := make([]byte, total)
	binary.BigEndian.PutUint32(buf[0:4], uint32(len(states)))
	off := 4
	for _, b := range encoded {
		binary.BigEndian.PutUint32(buf[off:off+4], uint32(len(b)))
		off += 4
		copy(buf[off:], b)
		off += len(b)
	}
	return buf, nil
}

func unmarshalElementStates(buf []byte) ([]ElementState, error) {
	if len(buf) < 4 {
		return nil, fmt.Errorf("nid: short element-state list payload")
	}
	n := int(binary.BigEndian.Uint32(buf[0:4]))
	off := 4
	out := make([]ElementState, 0, n)
	for i := 0; i < n; i++ {
		if off+4 > len(buf) {
			return nil, fmt.Errorf("nid: truncated element-state list")
		}
		l := int(binary.BigEndian.Uint32(buf[off : off+4]))
		off += 4
		if off+l > len(buf) {
			return nil, fmt.Errorf("nid: truncated element-state entry")
		}
		es, err := UnmarshalElementState(buf[off : off+l])
		if err != nil {
			return nil, err
		}
		out = append(out, es)
		off += l
	}
	return out, nil
}

// SetValuePayload builds a SET_VALUE request body.
func SetValuePayload(es ElementState) ([]byte, error) { return MarshalElementState(es) }

// DecodeSetValuePayload parses a SET_VALUE request body.
func DecodeSetValuePayload(payload []byte) (ElementState, error) {
	return UnmarshalElementState(payload)
}

// GetValuePayload builds a GET_VALUE request for one spec.
func GetValuePayload(spec string) []byte { return putStringList([]string{spec}) }

// DecodeGetValuePayload parses the queried spec back out.
func DecodeGetValuePayload(payload []byte) (string, error) {
	specs, err := getStringList(payload)
	if err != nil {
		return "", err
	}
	if len(specs) != 1 {
		return "", fmt.Errorf("nid: GET_VALUE expects exactly one spec")
	}
	return specs[0], nil
}

// GetValueResponse wraps the queried ElementState.
func GetValueResponse(es ElementState) ([]byte, error) { return MarshalElementState(es) }

// FindDevicePayload builds a FIND_DEVICE request.
func FindDevicePayload(name string) []byte { return putStringList([]string{name}) }

// FindDeviceResponse reports whether name was found, and its device type
// if so.
func FindDeviceResponse(found bool, kind string) []byte {
	buf := make([]byte, 4+StringFieldLen)
	f := int32(0)
	if found {
		f = 1
	}
	binary.BigEndian.PutUint32(buf[0:4], uint32(f))
	PutString(buf[4:4+StringFieldLen], kind)
	return buf
}

// DecodeFindDeviceResponse parses a FIND_DEVICE response.
func DecodeFindDeviceResponse(payload []byte) (found bool, kind string, err error) {
	if len(payload) < 4+StringFieldLen {
		return false, "", fmt.Errorf("nid: short FIND_DEVICE response")
	}
	found = binary.BigEndian.Uint32(payload[0:4]) != 0
	kind = GetString(payload[4 : 4+StringFieldLen])
	return found, kind, nil
}

// DeviceFuncPayload builds a DEVICE_FUNC request: device name, function
// name, and a single free-form string argument.
func DeviceFuncPayload(device, fn, arg string) []byte {
	return putStringList([]string{device, fn, arg})
}

// DecodeDeviceFuncPayload parses a DEVICE_FUNC request.
func DecodeDeviceFuncPayload(payload []byte) (device, fn, arg string, err error) {
	parts, err := getStringList(payload)
	if err != nil {
		return "", "", "", err
	}
	if len(parts) != 3 {
		return "", "", "", fmt.Errorf("nid: DEVICE_FUNC expects 3 string fields, got %d", len(parts))
	}
	return parts[0], parts[1], parts[2], nil
}

// DeviceFuncResponse wraps a DEVICE_FUNC result string.
func DeviceFuncResponse(result string) []byte { return putStringList([]string{result}) }
