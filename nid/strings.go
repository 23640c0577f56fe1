// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package nid

import (
	"bytes"
	"errors"
	"unicode/utf8"

	"golang.org/x/text/width"
)

// ErrStringFieldTooLong is returned by PutString when buf has no room
// for even a trailing NUL. An oversize s is not an error: it is folded
// to its canonical width and then truncated at a rune boundary to fit.
var ErrStringFieldTooLong = errors.New("nid: string field too long")

// PutString encodes s into a size-byte null-terminated field (spec §4.5:
// 128-byte string fields, 256 for sink strings). Fullwidth/halfwidth
// forms are folded to their canonical width first (golang.org/x/text/width)
// so a truncation boundary never lands inside a multi-byte rune — folding
// a fullwidth Latin letter to its single-byte halfwidth form can be the
// difference between a string fitting the field and silently corrupting
// the trailing bytes of a wider rune.
func PutString(buf []byte, s string) error {
	if len(buf) == 0 {
		return ErrStringFieldTooLong
	}
	folded := width.Fold.String(s)
	max := len(buf) - 1 // room for the trailing NUL.
	if len(folded) > max {
		folded = truncateAtRuneBoundary(folded, max)
	}
	n := copy(buf, folded)
	for i := n; i < len(buf); i++ {
		buf[i] = 0
	}
	return nil
}

// GetString decodes a null-terminated field back into a string.
func GetString(buf []byte) string {
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		return string(buf[:i])
	}
	return string(buf)
}

// truncateAtRuneBoundary returns the longest prefix of s, of at most max
// bytes, that ends on a full rune.
func truncateAtRuneBoundary(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
