// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package nid

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Version is a NID protocol revision. Minor revisions preserve
// compatibility with all earlier same-major revisions and may add new
// packet types; a server NAKs unrecognized types from an older client
// rather than refusing the connection (spec §4.5 Handshake).
type Version struct {
	Major, Minor int32
}

func (v Version) String() string { return fmt.Sprintf("%d.%d", v.Major, v.Minor) }

// Compatible reports whether v can talk to other: same major, and v's
// minor is high enough to understand whatever other sends, i.e. either
// direction that meets a common denominator is fine since unknown types
// are NAKed at the call site, not at handshake time.
func (v Version) Compatible(other Version) bool { return v.Major == other.Major }

func marshalVersion(v Version) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint32(buf[0:4], uint32(v.Major))
	binary.BigEndian.PutUint32(buf[4:8], uint32(v.Minor))
	return buf
}

func unmarshalVersion(buf []byte) (Version, error) {
	if len(buf) < 8 {
		return Version{}, fmt.Errorf("nid: short handshake payload (%d bytes)", len(buf))
	}
	return Version{
		Major: int32(binary.BigEndian.Uint32(buf[0:4])),
		Minor: int32(binary.BigEndian.Uint32(buf[4:8])),
	}, nil
}

// Handshake exchanges (proto_major, proto_minor) over rw and ACK/NAKs the
// peer's offer based on major-version compatibility, implementing spec
// §4.5: "upon connect, each side sends a HANDSHAKE payload... each side
// replies ACK or NAK; if either side NAKs, both close."
func Handshake(rw io.ReadWriter) (Version, error) {
	local := Version{Major: ProtoMajor, Minor: ProtoMinor}
	if err := WritePacket(rw, 0, TypeHandshake, marshalVersion(local)); err != nil {
		return Version{}, err
	}
	h, payload, err := ReadPacket(rw)
	if err != nil {
		return Version{}, err
	}
	if h.Type != TypeHandshake {
		return Version{}, fmt.Errorf("nid: expected HANDSHAKE, got type %d", h.Type)
	}
	peer, err := unmarshalVersion(payload)
	if err != nil {
		return Version{}, err
	}
	if !local.Compatible(peer) {
		WritePacket(rw, 0, TypeNak, nil)
		return Version{}, fmt.Errorf("nid: incompatible protocol major versions: local %s, peer %s", local, peer)
	}
	if err := WritePacket(rw, 0, TypeAck, nil); err != nil {
		return Version{}, err
	}
	ah, _, err := ReadPacket(rw)
	if err != nil {
		return Version{}, err
	}
	if ah.Type == TypeNak {
		return Version{}, fmt.Errorf("nid: peer NAKed handshake")
	}
	if ah.Type != TypeAck {
		return Version{}, fmt.Errorf("nid: expected ACK/NAK, got type %d", ah.Type)
	}
	if peer.Minor < local.Minor {
		return peer, nil
	}
	return local, nil
}

// QueryCap probes whether the peer supports packet type t, for a client
// that wants to use a minor-revision feature without assuming the peer's
// exact version (spec §4.5: "clients probe via QUERY_CAP").
func QueryCap(rw io.ReadWriter, request int32, t Type) (bool, error) {
	payload := make([]byte, 4)
	binary.BigEndian.PutUint32(payload, uint32(t))
	if err := WritePacket(rw, request, TypeQueryCap, payload); err != nil {
		return false, err
	}
	h, resp, err := ReadPacket(rw)
	if err != nil {
		return false, err
	}
	if h.Type == TypeNak {
		return false, nil
	}
	if h.Type != TypeAck || len(resp) < 1 {
		return false, fmt.Errorf("nid: malformed QUERY_CAP response, type %d", h.Type)
	}
	return resp[0] != 0, nil
}
