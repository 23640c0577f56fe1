// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package nid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPutGetStringRoundTrips(t *testing.T) {
	buf := make([]byte, StringFieldLen)
	require.NoError(t, PutString(buf, "joystick0"))
	require.Equal(t, "joystick0", GetString(buf))
}

func TestPutStringZeroPadsRemainder(t *testing.T) {
	buf := make([]byte, 16)
	for i := range buf {
		buf[i] = 0xff
	}
	require.NoError(t, PutString(buf, "ab"))
	for i := 3; i < len(buf); i++ {
		require.Equalf(t, byte(0), buf[i], "byte %d not zeroed", i)
	}
}

func TestPutStringTruncatesOversizeValue(t *testing.T) {
	buf := make([]byte, 8)
	long := "0123456789"
	require.NoError(t, PutString(buf, long))
	got := GetString(buf)
	require.LessOrEqual(t, len(got), 7)
	require.Equal(t, long[:len(got)], got)
}

func TestPutStringTruncatesAtRuneBoundary(t *testing.T) {
	buf := make([]byte, 5) // 4 usable bytes.
	// "a" + three 3-byte runes; only "a" plus one more rune's worth can
	// possibly fit depending on boundary, but truncation must never
	// split a rune's bytes.
	require.NoError(t, PutString(buf, "a漢漢"))
	got := GetString(buf)
	for _, r := range got {
		require.NotEqual(t, rune(0xFFFD), r)
	}
}
