// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package nid

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteReadPacketRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte("hello nid")
	require.NoError(t, WritePacket(&buf, 42, TypeGetValue, payload))

	h, got, err := ReadPacket(&buf)
	require.NoError(t, err)
	require.Equal(t, int32(42), h.Request)
	require.Equal(t, TypeGetValue, h.Type)
	require.Equal(t, payload, got)
}

func TestReadPacketZeroPayload(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePacket(&buf, 0, TypeAck, nil))

	h, payload, err := ReadPacket(&buf)
	require.NoError(t, err)
	require.Equal(t, TypeAck, h.Type)
	require.Empty(t, payload)
}

func TestWritePacketRejectsOversizePayload(t *testing.T) {
	var buf bytes.Buffer
	err := WritePacket(&buf, 0, TypeSetValue, make([]byte, MaxPayload+1))
	require.ErrorIs(t, err, ErrPayloadTooLarge)
}

func TestReadHeaderShortReadIsError(t *testing.T) {
	_, err := ReadHeader(bytes.NewReader([]byte{1, 2, 3}))
	require.ErrorIs(t, err, ErrShortHeader)
}
