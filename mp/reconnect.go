// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package mp

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"net"
	"strconv"
)

// KeyLen is the fixed length of the reconnect key and check strings: 32
// lowercase ASCII letters (spec §6 "Slave reconnect string").
const KeyLen = 32

const keyAlphabet = "abcdefghijklmnopqrstuvwxyz"

// randomKey returns a KeyLen-byte string of lowercase ASCII letters.
func randomKey() (string, error) {
	buf := make([]byte, KeyLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("mp: generating reconnect key: %w", err)
	}
	out := make([]byte, KeyLen)
	for i, b := range buf {
		out[i] = keyAlphabet[int(b)%len(keyAlphabet)]
	}
	return string(out), nil
}

// Reconnect is the authenticator the master hands a newly spawned slave
// over the (possibly slow) rsh pipe, telling it to dial back on a direct
// socket (spec §4.6): a random key the slave presents, and a check the
// master echoes back to prove it is the same master that issued the key.
type Reconnect struct {
	Network string // "tcp" or "udp"
	Host    string
	Port    int
	Key     string
	Check   string
}

// NewReconnect builds a reconnect descriptor for host:port with freshly
// generated key/check strings.
func NewReconnect(network, host string, port int) (Reconnect, error) {
	key, err := randomKey()
	if err != nil {
		return Reconnect{}, err
	}
	check, err := randomKey()
	if err != nil {
		return Reconnect{}, err
	}
	return Reconnect{Network: network, Host: host, Port: port, Key: key, Check: check}, nil
}

// String renders the reconnect descriptor in the wire form sent to the
// slave: "tcp host port key check" or "udp host port key check" (spec §6).
func (r Reconnect) String() string {
	return fmt.Sprintf("%s %s %d %s %s", r.Network, r.Host, r.Port, r.Key, r.Check)
}

// ParseReconnect parses the wire form back into a Reconnect.
func ParseReconnect(s string) (Reconnect, error) {
	var r Reconnect
	var port int
	n, err := fmt.Sscanf(s, "%s %s %d %s %s", &r.Network, &r.Host, &port, &r.Key, &r.Check)
	if err != nil || n != 5 {
		return Reconnect{}, fmt.Errorf("mp: malformed reconnect string %q", s)
	}
	r.Port = port
	if r.Network != "tcp" && r.Network != "udp" {
		return Reconnect{}, fmt.Errorf("mp: unknown reconnect network %q", r.Network)
	}
	if len(r.Key) != KeyLen || len(r.Check) != KeyLen {
		return Reconnect{}, fmt.Errorf("mp: reconnect key/check must be %d characters", KeyLen)
	}
	return r, nil
}

// Dial performs the slave side of the reconnect handshake (spec §4.6):
// open a socket to the master's host:port, send the key, then read back
// and verify the check. The returned connection carries subsequent
// message traffic and is the caller's to close.
func (r Reconnect) Dial(ctx context.Context) (net.Conn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, r.Network, net.JoinHostPort(r.Host, strconv.Itoa(r.Port)))
	if err != nil {
		return nil, fmt.Errorf("mp: reconnect dial: %w", err)
	}
	if _, err := conn.Write([]byte(r.Key)); err != nil {
		conn.Close()
		return nil, fmt.Errorf("mp: reconnect send key: %w", err)
	}
	check := make([]byte, KeyLen)
	if _, err := io.ReadFull(conn, check); err != nil {
		conn.Close()
		return nil, fmt.Errorf("mp: reconnect read check: %w", err)
	}
	if string(check) != r.Check {
		conn.Close()
		return nil, fmt.Errorf("mp: reconnect check mismatch")
	}
	return conn, nil
}

// Listen performs the master side of the reconnect handshake (spec
// §4.6): wait for the slave to connect (TCP) or send its first datagram
// (UDP), verify the key, and reply with the check. The returned
// connection carries subsequent message traffic and is the caller's to
// close.
func (r Reconnect) Listen(ctx context.Context) (net.Conn, error) {
	addr := net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
	switch r.Network {
	case "tcp":
		return r.listenTCP(ctx, addr)
	case "udp":
		return r.listenUDP(ctx, addr)
	default:
		return nil, fmt.Errorf("mp: reconnect listen: unknown network %q", r.Network)
	}
}

func (r Reconnect) listenTCP(ctx context.Context, addr string) (net.Conn, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("mp: reconnect listen: %w", err)
	}
	defer ln.Close()
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			ln.Close()
		case <-done:
		}
	}()
	conn, err := ln.Accept()
	if err != nil {
		return nil, fmt.Errorf("mp: reconnect accept: %w", err)
	}
	key := make([]byte, KeyLen)
	if _, err := io.ReadFull(conn, key); err != nil {
		conn.Close()
		return nil, fmt.Errorf("mp: reconnect read key: %w", err)
	}
	if string(key) != r.Key {
		conn.Close()
		return nil, fmt.Errorf("mp: reconnect key mismatch")
	}
	if _, err := conn.Write([]byte(r.Check)); err != nil {
		conn.Close()
		return nil, fmt.Errorf("mp: reconnect send check: %w", err)
	}
	return conn, nil
}

// listenUDP implements the master side of the UDP reconnect (spec §4.6:
// "the initial recvfrom provides a peer address used in a subsequent
// connect so the socket is fully established"). The listening socket is
// closed and re-dialed, bound to the same local port but now connected
// to the peer address learned from the slave's first datagram, so that
// later traffic can use plain Read/Write instead of ReadFrom/WriteTo.
func (r Reconnect) listenUDP(ctx context.Context, addr string) (net.Conn, error) {
	laddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("mp: reconnect resolve: %w", err)
	}
	pc, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, fmt.Errorf("mp: reconnect listen: %w", err)
	}
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			pc.Close()
		case <-done:
		}
	}()
	buf := make([]byte, KeyLen)
	n, raddr, err := pc.ReadFromUDP(buf)
	pc.Close()
	if err != nil {
		return nil, fmt.Errorf("mp: reconnect read key: %w", err)
	}
	if n != KeyLen || string(buf[:n]) != r.Key {
		return nil, fmt.Errorf("mp: reconnect key mismatch")
	}
	conn, err := net.DialUDP("udp", laddr, raddr)
	if err != nil {
		return nil, fmt.Errorf("mp: reconnect connect: %w", err)
	}
	if _, err := conn.Write([]byte(r.Check)); err != nil {
		conn.Close()
		return nil, fmt.Errorf("mp: reconnect send check: %w", err)
	}
	return conn, nil
}
