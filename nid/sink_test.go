// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package nid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSinkDefault(t *testing.T) {
	s, err := ParseSink("default")
	require.NoError(t, err)
	require.True(t, s.Default)
	require.Equal(t, "default", s.String())
}

func TestParseSinkTCP(t *testing.T) {
	s, err := ParseSink("tcp 10.0.0.5 9000")
	require.NoError(t, err)
	require.Equal(t, Sink{Network: "tcp", Host: "10.0.0.5", Port: 9000}, s)
	require.Equal(t, "tcp 10.0.0.5 9000", s.String())
}

func TestParseSinkRejectsUnknownNetwork(t *testing.T) {
	_, err := ParseSink("sctp 10.0.0.5 9000")
	require.Error(t, err)
}

func TestSetEventSinkPayloadRoundTrip(t *testing.T) {
	s := Sink{Network: "udp", Host: "host", Port: 1138}
	payload := SetEventSinkPayload(s)
	got, err := DecodeSetEventSinkPayload(payload)
	require.NoError(t, err)
	require.Equal(t, s, got)
}
