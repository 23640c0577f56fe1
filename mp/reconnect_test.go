// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package mp

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// freePort finds an unused TCP or UDP port on loopback by briefly
// binding to it and releasing it again.
func freePort(t *testing.T, network string) int {
	t.Helper()
	switch network {
	case "tcp":
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		defer ln.Close()
		return ln.Addr().(*net.TCPAddr).Port
	case "udp":
		pc, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1")})
		require.NoError(t, err)
		defer pc.Close()
		return pc.LocalAddr().(*net.UDPAddr).Port
	default:
		t.Fatalf("unknown network %q", network)
		return 0
	}
}

func TestNewReconnectGeneratesDistinctKeyAndCheck(t *testing.T) {
	r, err := NewReconnect("tcp", "10.0.0.1", 9000)
	require.NoError(t, err)
	require.Len(t, r.Key, KeyLen)
	require.Len(t, r.Check, KeyLen)
	require.NotEqual(t, r.Key, r.Check)
	for _, c := range r.Key {
		require.True(t, c >= 'a' && c <= 'z')
	}
}

func TestReconnectStringRoundTrips(t *testing.T) {
	r, err := NewReconnect("udp", "host.example", 1138)
	require.NoError(t, err)
	got, err := ParseReconnect(r.String())
	require.NoError(t, err)
	require.Equal(t, r, got)
}

func TestParseReconnectRejectsUnknownNetwork(t *testing.T) {
	r, err := NewReconnect("tcp", "h", 1)
	require.NoError(t, err)
	bad := "sctp " + r.String()[4:]
	_, err = ParseReconnect(bad)
	require.Error(t, err)
}

func TestReconnectTCPHandshakeEstablishesConnection(t *testing.T) {
	port := freePort(t, "tcp")
	r, err := NewReconnect("tcp", "127.0.0.1", port)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	masterConn := make(chan net.Conn, 1)
	masterErr := make(chan error, 1)
	go func() {
		conn, err := r.Listen(ctx)
		masterConn <- conn
		masterErr <- err
	}()
	// give the listener a moment to bind before the slave dials.
	time.Sleep(20 * time.Millisecond)

	slave, err := r.Dial(ctx)
	require.NoError(t, err)
	defer slave.Close()

	require.NoError(t, <-masterErr)
	master := <-masterConn
	defer master.Close()

	_, err = master.Write([]byte("ping-from-master"))
	require.NoError(t, err)
	buf := make([]byte, len("ping-from-master"))
	_, err = io.ReadFull(slave, buf)
	require.NoError(t, err)
	require.Equal(t, "ping-from-master", string(buf))
}

func TestReconnectTCPHandshakeRejectsWrongKey(t *testing.T) {
	port := freePort(t, "tcp")
	r, err := NewReconnect("tcp", "127.0.0.1", port)
	require.NoError(t, err)
	bogus := r
	bogus.Key = "zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz"

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	masterErr := make(chan error, 1)
	go func() {
		conn, err := r.Listen(ctx)
		if conn != nil {
			conn.Close()
		}
		masterErr <- err
	}()
	time.Sleep(20 * time.Millisecond)

	_, dialErr := bogus.Dial(ctx)
	require.Error(t, dialErr)
	require.Error(t, <-masterErr)
}

func TestReconnectUDPHandshakeEstablishesConnection(t *testing.T) {
	port := freePort(t, "udp")
	r, err := NewReconnect("udp", "127.0.0.1", port)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	masterConn := make(chan net.Conn, 1)
	masterErr := make(chan error, 1)
	go func() {
		conn, err := r.Listen(ctx)
		masterConn <- conn
		masterErr <- err
	}()
	time.Sleep(20 * time.Millisecond)

	slave, err := r.Dial(ctx)
	require.NoError(t, err)
	defer slave.Close()

	require.NoError(t, <-masterErr)
	master := <-masterConn
	defer master.Close()

	_, err = master.Write([]byte("ping-from-master"))
	require.NoError(t, err)
	buf := make([]byte, len("ping-from-master"))
	_, err = io.ReadFull(slave, buf)
	require.NoError(t, err)
	require.Equal(t, "ping-from-master", string(buf))
}
