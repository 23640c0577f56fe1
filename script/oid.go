// Copyright © 2013-2015, 2026 Galvanized Logic Inc., VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package script

import "log"

// oid identifies an opaque object living in an interpreter's arena: an
// index used as a live reference into the arena's object slice, and an
// edition used to detect stale references after the slot is reused
// (spec §4.3 "place all opaques behind a per-interpreter arena").
type oid uint32

const idBits = 20                     // arena slot index : 1048575 live opaques.
const edBits = 12                     // edition          :    4096 reuses before wraparound.
const maxOpaqueID = (1 << idBits) - 1 // mask and max live opaques.
const maxEdition = (1 << edBits) - 1  // mask and max dispose/reuse count.

// slot is the value used for arena array lookups.
func (o oid) slot() uint32 { return uint32(o & maxOpaqueID) }

// edition tracks whether the oid still refers to a live object.
func (o oid) edition() uint16 { return uint16((o >> idBits) & maxEdition) }

// maxFree starts recycling slots once the free list holds more than this
// many.
const maxFree = (1 << (edBits - 1)) // recycling once free exceeds 2048.

// oidArena allocates and recycles oids for a script interpreter's opaque
// object table. It keeps identifiers dense enough to index directly into
// a slice of opaques (spec §4.3).
type oidArena struct {
	editions []uint16 // current edition per slot.
	free     []uint32 // slots queued for reuse.
}

// create returns a fresh oid. Zero is returned once every identifier has
// been allocated and none are free; callers treat zero as "no object".
func (a *oidArena) create() oid {
	id := uint32(0)
	if len(a.free) > maxFree {
		id = a.free[0]
		a.free = append(a.free[:0], a.free[1:]...)
	} else {
		a.editions = append(a.editions, 0)
		if id = uint32(len(a.editions) - 1); id > maxOpaqueID {
			if len(a.free) == 0 {
				log.Printf("all %d opaque identifiers in use", maxOpaqueID+1)
				return 0
			}
			id = a.free[0]
			a.free = append(a.free[:0], a.free[1:]...)
		}
	}
	return oid(id | uint32(a.editions[id])<<idBits)
}

// valid reports whether o refers to a currently live slot.
func (a *oidArena) valid(o oid) bool {
	id := o.slot()
	if id >= uint32(len(a.editions)) {
		return false
	}
	return a.editions[o.slot()] == o.edition()
}

// dispose invalidates o and queues its slot for reuse. A slot can be
// reallocated maxEdition times before an oid value repeats.
func (a *oidArena) dispose(o oid) {
	id := o.slot()
	a.editions[id]++
	a.free = append(a.free, id)
}

// reset discards all allocation state.
func (a *oidArena) reset() {
	a.editions = []uint16{}
	a.free = []uint32{}
}
