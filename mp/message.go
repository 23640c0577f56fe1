// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package mp implements multi-process orchestration (spec §4.6): slave
// spawn over in-process workers, local fork+exec, or remote shell with
// transport renegotiation, plus fragmented message transport over
// TCP/UDP/pipes.
package mp

import (
	"encoding/binary"
	"fmt"
)

// MaxFragmentBytes is the fragmentation threshold: payloads larger than
// this are split across multiple fragments (spec §4.6).
const MaxFragmentBytes = 30000

// messageHeaderLen is serial(4) + fragid(4) + fragcnt(4) + fraglen(4) +
// src(4) + tag(4) + dlen(4), all big-endian, preceding the fragment's msg
// bytes.
const messageHeaderLen = 4 * 7

// Fragment is one wire unit of a (possibly multi-fragment) message (spec
// §4.6 "Message framing").
type Fragment struct {
	Serial  uint32
	FragID  uint32
	FragCnt uint32
	FragLen uint32 // length of Msg in this fragment.
	Src     uint32 // sender id.
	Tag     uint32 // application-defined correlator.
	Dlen    uint32 // total message length across all fragments.
	Msg     []byte
}

// Marshal encodes f as header + payload bytes.
func (f Fragment) Marshal() []byte {
	buf := make([]byte, messageHeaderLen+len(f.Msg))
	binary.BigEndian.PutUint32(buf[0:4], f.Serial)
	binary.BigEndian.PutUint32(buf[4:8], f.FragID)
	binary.BigEndian.PutUint32(buf[8:12], f.FragCnt)
	binary.BigEndian.PutUint32(buf[12:16], f.FragLen)
	binary.BigEndian.PutUint32(buf[16:20], f.Src)
	binary.BigEndian.PutUint32(buf[20:24], f.Tag)
	binary.BigEndian.PutUint32(buf[24:28], f.Dlen)
	copy(buf[messageHeaderLen:], f.Msg)
	return buf
}

// UnmarshalFragment decodes one fragment from buf.
func UnmarshalFragment(buf []byte) (Fragment, error) {
	if len(buf) < messageHeaderLen {
		return Fragment{}, fmt.Errorf("mp: short fragment header (%d bytes)", len(buf))
	}
	f := Fragment{
		Serial:  binary.BigEndian.Uint32(buf[0:4]),
		FragID:  binary.BigEndian.Uint32(buf[4:8]),
		FragCnt: binary.BigEndian.Uint32(buf[8:12]),
		FragLen: binary.BigEndian.Uint32(buf[12:16]),
		Src:     binary.BigEndian.Uint32(buf[16:20]),
		Tag:     binary.BigEndian.Uint32(buf[20:24]),
		Dlen:    binary.BigEndian.Uint32(buf[24:28]),
	}
	if uint32(len(buf)-messageHeaderLen) < f.FragLen {
		return Fragment{}, fmt.Errorf("mp: fragment truncated, want %d have %d", f.FragLen, len(buf)-messageHeaderLen)
	}
	if f.FragLen > MaxFragmentBytes {
		return Fragment{}, fmt.Errorf("mp: fragment exceeds MaxFragmentBytes (%d)", f.FragLen)
	}
	f.Msg = buf[messageHeaderLen : messageHeaderLen+int(f.FragLen)]
	return f, nil
}

// Fragments splits msg into wire fragments no larger than
// MaxFragmentBytes each, all sharing serial/src/tag.
func Fragments(serial, src, tag uint32, msg []byte) []Fragment {
	n := (len(msg) + MaxFragmentBytes - 1) / MaxFragmentBytes
	if n == 0 {
		n = 1
	}
	frags := make([]Fragment, 0, n)
	for i := 0; i < n; i++ {
		start := i * MaxFragmentBytes
		end := start + MaxFragmentBytes
		if end > len(msg) {
			end = len(msg)
		}
		frags = append(frags, Fragment{
			Serial:  serial,
			FragID:  uint32(i),
			FragCnt: uint32(n),
			FragLen: uint32(end - start),
			Src:     src,
			Tag:     tag,
			Dlen:    uint32(len(msg)),
			Msg:     msg[start:end],
		})
	}
	return frags
}

// Reassembler accumulates fragments by serial into complete messages,
// detecting the "new serial mid-assembly" protocol error (spec §4.6:
// "fragmenting out-of-order is detected (new serial mid-assembly →
// error)"). One Reassembler handles one logical stream (a TCP connection
// or pipe); UDP senders instead rely on per-packet atomicity and can
// reassemble with a fresh Reassembler per serial since each datagram
// carries a whole fragment (spec: "UDP preserves packet atomicity").
type Reassembler struct {
	serial  uint32
	active  bool
	fragcnt uint32
	dlen    uint32
	have    map[uint32][]byte
}

// NewReassembler returns an empty stream reassembler.
func NewReassembler() *Reassembler { return &Reassembler{have: map[uint32][]byte{}} }

// ErrSerialMidAssembly is returned by Add when a fragment for a new
// serial arrives before the current serial's assembly has completed.
var ErrSerialMidAssembly = fmt.Errorf("mp: new serial arrived mid-assembly")

// Add feeds one fragment into the reassembler. When the fragment
// completes its message, the full payload is returned with done=true and
// the reassembler resets for the next serial.
func (r *Reassembler) Add(f Fragment) (msg []byte, done bool, err error) {
	if r.active && f.Serial != r.serial {
		return nil, false, ErrSerialMidAssembly
	}
	if !r.active {
		r.active = true
		r.serial = f.Serial
		r.fragcnt = f.FragCnt
		r.dlen = f.Dlen
		r.have = map[uint32][]byte{}
	}
	r.have[f.FragID] = f.Msg

	if uint32(len(r.have)) < r.fragcnt {
		return nil, false, nil
	}
	out := make([]byte, 0, r.dlen)
	for i := uint32(0); i < r.fragcnt; i++ {
		part, ok := r.have[i]
		if !ok {
			return nil, false, nil // shouldn't happen given the count check above.
		}
		out = append(out, part...)
	}
	r.active = false
	r.have = map[uint32][]byte{}
	return out, true, nil
}
