// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package nid

import (
	"encoding/binary"
	"fmt"
)

// PingPongSample is one round trip of TIME_PING_PONG: the client's send
// timestamp and the server's echoed timestamp, both milliseconds since
// an arbitrary local reference.
type PingPongSample struct {
	ClientSendMs int64
	ServerEchoMs int64
	ClientRecvMs int64
}

// EstimateOffset derives a clock offset and round-trip estimate from k
// PING_PONG samples (spec §4.5 "a client may issue TIME_PING_PONG (k
// round-trips; estimate offset and round-trip time)"). The offset is the
// median of (serverEcho - (clientSend+clientRecv)/2) across samples,
// which is robust to one slow round trip skewing a mean.
func EstimateOffset(samples []PingPongSample) (offsetMs, rttMs int64, err error) {
	if len(samples) == 0 {
		return 0, 0, fmt.Errorf("nid: EstimateOffset requires at least one sample")
	}
	offsets := make([]int64, len(samples))
	rtts := make([]int64, len(samples))
	for i, s := range samples {
		mid := (s.ClientSendMs + s.ClientRecvMs) / 2
		offsets[i] = s.ServerEchoMs - mid
		rtts[i] = s.ClientRecvMs - s.ClientSendMs
	}
	return median(offsets), median(rtts), nil
}

func median(vals []int64) int64 {
	sorted := append([]int64(nil), vals...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1] > sorted[j]; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	return sorted[len(sorted)/2]
}

// TimeSynch is the (client_clock_ref, absolute_time_string) pair a
// client sends the server after estimating its offset (spec §4.5 "Time
// synch"); the server applies the offset to all outgoing event
// timestamps thereafter.
type TimeSynch struct {
	ClientClockRefMs int64
	AbsoluteTime     string
}

// TimeSynchPayload builds a TIME_SYNCH request body.
func TimeSynchPayload(ts TimeSynch) []byte {
	buf := make([]byte, 8+StringFieldLen)
	binary.BigEndian.PutUint64(buf[0:8], uint64(ts.ClientClockRefMs))
	PutString(buf[8:], ts.AbsoluteTime)
	return buf
}

// DecodeTimeSynchPayload parses a TIME_SYNCH request body.
func DecodeTimeSynchPayload(payload []byte) (TimeSynch, error) {
	if len(payload) < 8+StringFieldLen {
		return TimeSynch{}, fmt.Errorf("nid: short TIME_SYNCH payload")
	}
	return TimeSynch{
		ClientClockRefMs: int64(binary.BigEndian.Uint64(payload[0:8])),
		AbsoluteTime:     GetString(payload[8:]),
	}, nil
}

// Apply shifts a raw timestamp by the synchronized offset, for a server
// applying a client's negotiated clock offset to outgoing events.
func Apply(offsetMs, rawMs int64) int64 { return rawMs + offsetMs }
