// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package nid

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

// tcpPair returns both ends of a loopback TCP connection. Unlike
// net.Pipe, its writes are buffered, so both peers can send HANDSHAKE
// before either one reads.
func tcpPair(t *testing.T) (net.Conn, net.Conn) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	accepted := make(chan net.Conn, 1)
	go func() {
		c, _ := ln.Accept()
		accepted <- c
	}()
	client, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	server := <-accepted
	require.NotNil(t, server)
	return client, server
}

func TestHandshakeSucceedsBetweenCompatiblePeers(t *testing.T) {
	client, server := tcpPair(t)
	defer client.Close()
	defer server.Close()

	errc := make(chan error, 1)
	go func() {
		_, err := Handshake(server)
		errc <- err
	}()

	v, err := Handshake(client)
	require.NoError(t, err)
	require.NoError(t, <-errc)
	require.Equal(t, Version{Major: ProtoMajor, Minor: ProtoMinor}, v)
}

func TestHandshakeRejectsIncompatibleMajor(t *testing.T) {
	client, server := tcpPair(t)
	defer client.Close()
	defer server.Close()

	go func() {
		WritePacket(server, 0, TypeHandshake, marshalVersion(Version{Major: 2, Minor: 0}))
		ReadPacket(server) // read the client's HANDSHAKE.
	}()

	_, err := Handshake(client)
	require.Error(t, err)
}

func TestQueryCapReportsUnsupportedType(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		h, _, err := ReadPacket(server)
		if err != nil {
			return
		}
		_ = h
		WritePacket(server, h.Request, TypeNak, nil)
	}()

	ok, err := QueryCap(client, 7, TypeDeviceFunc)
	require.NoError(t, err)
	require.False(t, ok)
}
