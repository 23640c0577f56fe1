// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package nid

import (
	"fmt"
	"strconv"
	"strings"
)

// Sink describes an alternate delivery channel set by SET_EVENT_SINK
// (spec §4.5): "default", or an explicit "tcp host port"/"udp host port"
// redirect. Subsequent async updates travel on the sink channel while
// control (requests/responses) stays on the original connection.
type Sink struct {
	Default bool
	Network string // "tcp" or "udp"
	Host    string
	Port    int
}

// ParseSink parses a SET_EVENT_SINK payload string.
func ParseSink(s string) (Sink, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "default" {
		return Sink{Default: true}, nil
	}
	fields := strings.Fields(s)
	if len(fields) != 3 {
		return Sink{}, fmt.Errorf("nid: malformed event sink %q", s)
	}
	network := fields[0]
	if network != "tcp" && network != "udp" {
		return Sink{}, fmt.Errorf("nid: unknown sink network %q", network)
	}
	port, err := strconv.Atoi(fields[2])
	if err != nil {
		return Sink{}, fmt.Errorf("nid: invalid sink port %q: %w", fields[2], err)
	}
	return Sink{Network: network, Host: fields[1], Port: port}, nil
}

// String renders the sink back into its wire form.
func (s Sink) String() string {
	if s.Default {
		return "default"
	}
	return fmt.Sprintf("%s %s %d", s.Network, s.Host, s.Port)
}

// SetEventSinkPayload builds a SET_EVENT_SINK request body.
func SetEventSinkPayload(s Sink) []byte {
	buf := make([]byte, SinkFieldLen)
	PutString(buf, s.String())
	return buf
}

// DecodeSetEventSinkPayload parses a SET_EVENT_SINK request body.
func DecodeSetEventSinkPayload(payload []byte) (Sink, error) {
	if len(payload) < SinkFieldLen {
		return Sink{}, fmt.Errorf("nid: short SET_EVENT_SINK payload")
	}
	return ParseSink(GetString(payload[:SinkFieldLen]))
}
