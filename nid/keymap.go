// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package nid

// KeyCode is the 32-bit numeric key code carried on the wire (spec §4.5
// "Keymap"). Clients translate KeyCode to a local keysym via Lookup.
//
// The keysym table's actual content is an out-of-scope external
// collaborator (spec §1 Non-goals: "the keysym table content"); this
// file defines the mechanism — a fixed numeric code space and a
// table-lookup translation function — with a representative subset of
// entries covering the ranges a real table would populate (Latin,
// function keys, modifiers).
type KeyCode int32

// Latin letter and space codes follow ASCII for the unshifted lowercase
// range.
const (
	KeySpace KeyCode = 32
	KeyA     KeyCode = 'a'
	KeyB     KeyCode = 'b'
	KeyC     KeyCode = 'c'
)

const (
	KeyF1 KeyCode = 0x1000 + iota
	KeyF2
	KeyF3
	KeyF4
)

const (
	KeyShift KeyCode = 0x2000 + iota
	KeyControl
	KeyAlt
	KeyMeta
)

// Keysym is the local-platform key symbol a KeyCode translates to.
// Drivers define their own concrete keysym space; Keysym is left
// abstract here (an int32) since that space is the out-of-scope keysym
// table's concern, not NID's.
type Keysym int32

// table is the representative subset described above, not a complete
// keysym table (see the type doc).
var table = map[KeyCode]Keysym{
	KeySpace:   32,
	KeyA:       'a',
	KeyB:       'b',
	KeyC:       'c',
	KeyF1:      0xffbe,
	KeyF2:      0xffbf,
	KeyF3:      0xffc0,
	KeyF4:      0xffc1,
	KeyShift:   0xffe1,
	KeyControl: 0xffe3,
	KeyAlt:     0xffe9,
	KeyMeta:    0xffe7,
}

// Lookup translates a wire KeyCode to a local Keysym. ok is false for a
// code outside the representative subset above; a real deployment
// supplies its own complete table via RegisterKeysym.
func Lookup(k KeyCode) (Keysym, bool) {
	sym, ok := table[k]
	return sym, ok
}

// RegisterKeysym lets a driver extend or override the keymap at runtime,
// since the full table is supplied externally (spec §1 Non-goals).
func RegisterKeysym(k KeyCode, sym Keysym) { table[k] = sym }
