// Copyright © 2013-2014 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package lin

import "testing"

func TestEqM4(t *testing.T) {
	a := &M4{11, 12, 13, 14, 21, 22, 23, 24, 31, 32, 33, 34, 41, 42, 43, 44}
	b := &M4{11, 12, 13, 14, 21, 22, 23, 24, 31, 32, 33, 34, 41, 42, 43, 44}
	if !a.Eq(b) {
		t.Errorf(format, a.Dump(), b.Dump())
	}
}

func TestMultiplyM4(t *testing.T) {
	m, want :=
		&M4{1, 2, 3, 4,
			5, 6, 7, 8,
			9, 10, 11, 12,
			13, 14, 15, 16},
		&M4{90, 100, 110, 120,
			202, 228, 254, 280,
			314, 356, 398, 440,
			426, 484, 542, 600}
	if !m.Mult(m, m).Eq(want) {
		t.Errorf(format, m.Dump(), want.Dump())
	}
}

func TestTranslateMT(t *testing.T) {
	m, want :=
		&M4{1, 2, 3, 4,
			1, 2, 3, 4,
			1, 2, 3, 4,
			1, 2, 3, 4},
		&M4{5, 10, 15, 4,
			5, 10, 15, 4,
			5, 10, 15, 4,
			5, 10, 15, 4}
	if !m.TranslateMT(1, 2, 3).Eq(want) {
		t.Errorf(format, m.Dump(), want.Dump())
	}
}

func TestSetQM4(t *testing.T) {
	m, q, want := &M4{}, &Q{0, 0, 0, 1},
		&M4{1, 0, 0, 0,
			0, 1, 0, 0,
			0, 0, 1, 0,
			0, 0, 0, 1}
	if !m.SetQ(q).Eq(want) {
		t.Errorf(format, m.Dump(), want.Dump())
	}

	// a 90 degree rotation around X matches the equivalent quaternion.
	q = NewQ().SetAa(1, 0, 0, Rad(90))
	want = &M4{1, 0, 0, 0,
		0, 0, -1, 0,
		0, 1, 0, 0,
		0, 0, 0, 1}
	if !m.SetQ(q).Aeq(want) {
		t.Errorf(format, m.Dump(), want.Dump())
	}
}

func TestInvM4UndoesTranslateAndRotate(t *testing.T) {
	a := NewM4I().SetQ(NewQ().SetAa(0, 1, 0, Rad(30))).TranslateMT(2, -3, 5)
	inv := NewM4().Inv(a)
	got := NewM4().Mult(a, inv)
	if !got.Aeq(NewM4I()) {
		t.Errorf(format, got.Dump(), NewM4I().Dump())
	}
}

func TestInvM4LeavesMUnchangedOnSingularMatrix(t *testing.T) {
	singular := &M4{} // the all-zero matrix has no inverse.
	m := &M4{Xx: 9, Yy: 9, Zz: 9, Ww: 9}
	before := *m
	m.Inv(singular)
	if *m != before {
		t.Errorf(format, m.Dump(), (&before).Dump())
	}
}

// unit tests
// ============================================================================
// benchmarking.

// Check the time is saved by using the reference identity matrix instead of
// creating a new one each time.
func BenchmarkNewMI(b *testing.B) {
	var m *M4
	for cnt := 0; cnt < b.N; cnt++ {
		m = &M4{Xx: 1, Yy: 1, Zz: 1, Ww: 1}
	}
	m.Xx = 0 // make the compiler happy.
}
