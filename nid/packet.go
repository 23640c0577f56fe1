// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package nid implements the NID wire protocol (spec §4.5): a binary,
// versioned, packetized protocol for remote input devices, carrying
// handshake, request/response, and streaming/compressed event delivery
// over TCP or UDP. Marshaling follows the teacher pack's manual
// fixed-layout binary encoding style (see go-ublk's internal/uapi), not
// reflection or gob: every packet is a fixed 12-byte header plus a
// payload whose shape is determined by Type.
package nid

import (
	"encoding/binary"
	"errors"
	"io"
)

// HeaderSize is the fixed packet header: size, request, type, each a
// big-endian 32-bit field (spec §4.5).
const HeaderSize = 12

// DefaultPort is NID's registered port and service name (spec §6).
const (
	DefaultPort    = 1138
	ServiceName    = "nid"
	ProtoMajor     = 1
	ProtoMinor     = 4
	MaxVectorSize  = 16
	StringFieldLen = 128
	SinkFieldLen   = 256
	MaxPayload     = 65536
)

// Type identifies a packet's payload shape and purpose.
type Type int32

const (
	TypeHandshake Type = iota + 1
	TypeAck
	TypeNak
	TypeEnumDevices
	TypeEnumElements
	TypeQueryElements
	TypeListenElements
	TypeIgnoreElements
	TypeSetValue
	TypeGetValue
	TypeFindDevice
	TypeTimeSynch
	TypeTimePingPong
	TypeCompressEvents
	TypeUncompressEvents
	TypeDumpEvents
	TypeSetEventSink
	TypeQueryCap
	TypeDeviceFunc
	TypeElementEvents // async streaming push.
	TypeEventsAvail   // zero-payload compressed-mode notice.
	TypeElementStates // DUMP_EVENTS response.
	TypeReconnect     // mp control message, carried over the rsh pipe (spec §4.6).
)

// Header is the 12-byte frame preceding every packet's payload.
type Header struct {
	Size    int32 // bytes following the header.
	Request int32 // correlator; 0 is reserved for async pushes.
	Type    Type
}

var ErrShortHeader = errors.New("nid: short header read")
var ErrPayloadTooLarge = errors.New("nid: payload exceeds MaxPayload")

// WriteHeader writes h in the wire's fixed big-endian layout.
func WriteHeader(w io.Writer, h Header) error {
	var buf [HeaderSize]byte
	binary.BigEndian.PutUint32(buf[0:4], uint32(h.Size))
	binary.BigEndian.PutUint32(buf[4:8], uint32(h.Request))
	binary.BigEndian.PutUint32(buf[8:12], uint32(h.Type))
	_, err := w.Write(buf[:])
	return err
}

// ReadHeader reads a 12-byte header from r.
func ReadHeader(r io.Reader) (Header, error) {
	var buf [HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return Header{}, ErrShortHeader
		}
		return Header{}, err
	}
	return Header{
		Size:    int32(binary.BigEndian.Uint32(buf[0:4])),
		Request: int32(binary.BigEndian.Uint32(buf[4:8])),
		Type:    Type(binary.BigEndian.Uint32(buf[8:12])),
	}, nil
}

// WritePacket frames and writes a full packet: header followed by payload.
func WritePacket(w io.Writer, request int32, t Type, payload []byte) error {
	if len(payload) > MaxPayload {
		return ErrPayloadTooLarge
	}
	if err := WriteHeader(w, Header{Size: int32(len(payload)), Request: request, Type: t}); err != nil {
		return err
	}
	if len(payload) == 0 {
		return nil
	}
	_, err := w.Write(payload)
	return err
}

// ReadPacket reads a header and its payload.
func ReadPacket(r io.Reader) (Header, []byte, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return Header{}, nil, err
	}
	if h.Size < 0 || h.Size > MaxPayload {
		return h, nil, ErrPayloadTooLarge
	}
	if h.Size == 0 {
		return h, nil, nil
	}
	payload := make([]byte, h.Size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return h, nil, err
	}
	return h, payload, nil
}
