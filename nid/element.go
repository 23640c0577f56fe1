// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package nid

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/veproj/ve/device"
)

// contentType is the wire discriminant for device.Content's payload
// union (spec §3 "NID element state... identical payload union to local
// element content").
type contentType int32

const (
	contentTrigger contentType = iota
	contentSwitch
	contentValuator
	contentVector
	contentKeyboard
)

func typeOf(c device.Content) (contentType, error) {
	switch c.(type) {
	case device.Trigger:
		return contentTrigger, nil
	case device.Switch:
		return contentSwitch, nil
	case device.Valuator:
		return contentValuator, nil
	case device.Vector:
		return contentVector, nil
	case device.Keyboard:
		return contentKeyboard, nil
	default:
		return 0, fmt.Errorf("nid: unsupported content kind %q", c.Kind())
	}
}

// ElementState is the NID wire form of one device.Event (spec §3 "NID
// element state"): fixed-width device/element name fields plus a
// timestamp, slot index, and typed payload, all big-endian.
type ElementState struct {
	TimestampMs int64
	Device      string
	Element     string
	Index       int32
	Content     device.Content
}

// elementHeaderLen is timestamp(8) + device(128) + element(128) + index(4) + type(4).
const elementHeaderLen = 8 + StringFieldLen + StringFieldLen + 4 + 4

func putFloat32(buf []byte, off int, f float32) {
	binary.BigEndian.PutUint32(buf[off:off+4], math.Float32bits(f))
}

func getFloat32(buf []byte, off int) float32 {
	return math.Float32frombits(binary.BigEndian.Uint32(buf[off : off+4]))
}

// MarshalElementState encodes es in NID wire form.
func MarshalElementState(es ElementState) ([]byte, error) {
	ct, err := typeOf(es.Content)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch c := es.Content.(type) {
	case device.Trigger:
		payload = nil
	case device.Switch:
		payload = make([]byte, 4)
		state := int32(0)
		if c.State {
			state = 1
		}
		binary.BigEndian.PutUint32(payload, uint32(state))
	case device.Valuator:
		payload = make([]byte, 12)
		putFloat32(payload, 0, c.Min)
		putFloat32(payload, 4, c.Max)
		putFloat32(payload, 8, c.Value)
	case device.Vector:
		n := c.Size()
		if n > MaxVectorSize {
			return nil, fmt.Errorf("nid: vector size %d exceeds MaxVectorSize", n)
		}
		payload = make([]byte, 4+n*12)
		binary.BigEndian.PutUint32(payload[0:4], uint32(n))
		for i, v := range c.Values() {
			off := 4 + i*12
			putFloat32(payload, off, v.Min)
			putFloat32(payload, off+4, v.Max)
			putFloat32(payload, off+8, v.Value)
		}
	case device.Keyboard:
		payload = make([]byte, 8)
		binary.BigEndian.PutUint32(payload[0:4], uint32(c.Key))
		state := int32(0)
		if c.State {
			state = 1
		}
		binary.BigEndian.PutUint32(payload[4:8], uint32(state))
	}

	buf := make([]byte, elementHeaderLen+len(payload))
	binary.BigEndian.PutUint64(buf[0:8], uint64(es.TimestampMs))
	if err := PutString(buf[8:8+StringFieldLen], es.Device); err != nil {
		return nil, err
	}
	off := 8 + StringFieldLen
	if err := PutString(buf[off:off+StringFieldLen], es.Element); err != nil {
		return nil, err
	}
	off += StringFieldLen
	binary.BigEndian.PutUint32(buf[off:off+4], uint32(es.Index))
	off += 4
	binary.BigEndian.PutUint32(buf[off:off+4], uint32(ct))
	off += 4
	copy(buf[off:], payload)
	return buf, nil
}

// UnmarshalElementState decodes an ElementState from its wire form.
func UnmarshalElementState(buf []byte) (ElementState, error) {
	if len(buf) < elementHeaderLen {
		return ElementState{}, fmt.Errorf("nid: short element state (%d bytes)", len(buf))
	}
	es := ElementState{}
	es.TimestampMs = int64(binary.BigEndian.Uint64(buf[0:8]))
	es.Device = GetString(buf[8 : 8+StringFieldLen])
	off := 8 + StringFieldLen
	es.Element = GetString(buf[off : off+StringFieldLen])
	off += StringFieldLen
	es.Index = int32(binary.BigEndian.Uint32(buf[off : off+4]))
	off += 4
	ct := contentType(binary.BigEndian.Uint32(buf[off : off+4]))
	off += 4
	payload := buf[off:]

	switch ct {
	case contentTrigger:
		es.Content = device.Trigger{}
	case contentSwitch:
		if len(payload) < 4 {
			return ElementState{}, fmt.Errorf("nid: short switch payload")
		}
		es.Content = device.Switch{State: binary.BigEndian.Uint32(payload[0:4]) != 0}
	case contentValuator:
		if len(payload) < 12 {
			return ElementState{}, fmt.Errorf("nid: short valuator payload")
		}
		es.Content = device.Valuator{
			Min:   getFloat32(payload, 0),
			Max:   getFloat32(payload, 4),
			Value: getFloat32(payload, 8),
		}
	case contentVector:
		if len(payload) < 4 {
			return ElementState{}, fmt.Errorf("nid: short vector payload")
		}
		n := int(binary.BigEndian.Uint32(payload[0:4]))
		if n < 0 || n > MaxVectorSize || len(payload) < 4+n*12 {
			return ElementState{}, fmt.Errorf("nid: malformed vector payload, size %d", n)
		}
		vec := device.NewVector(n)
		for i := 0; i < n; i++ {
			off := 4 + i*12
			vec = vec.WithValue(i, device.Valuator{
				Min:   getFloat32(payload, off),
				Max:   getFloat32(payload, off+4),
				Value: getFloat32(payload, off+8),
			})
		}
		es.Content = vec
	case contentKeyboard:
		if len(payload) < 8 {
			return ElementState{}, fmt.Errorf("nid: short keyboard payload")
		}
		es.Content = device.Keyboard{
			Key:   int32(binary.BigEndian.Uint32(payload[0:4])),
			State: binary.BigEndian.Uint32(payload[4:8]) != 0,
		}
	default:
		return ElementState{}, fmt.Errorf("nid: unknown content type %d", ct)
	}
	return es, nil
}

// ToEvent converts a decoded ElementState into a device.Event, copying
// its fields unchanged; no time-synch offset is applied here (see Apply).
func (es ElementState) ToEvent() device.Event {
	return device.Event{
		TimestampMs: es.TimestampMs,
		Device:      es.Device,
		Element:     es.Element,
		Index:       es.Index,
		Content:     es.Content,
	}
}

// FromEvent builds the wire form of a local event.
func FromEvent(e device.Event) ElementState {
	return ElementState{
		TimestampMs: e.TimestampMs,
		Device:      e.Device,
		Element:     e.Element,
		Index:       e.Index,
		Content:     e.Content,
	}
}
