// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package lin provides the vector, quaternion, and matrix math behind
// the BlueScript v3*/q*/m4* procedures (spec §4.7): addition, scaling,
// dot/cross products, quaternion composition and axis-angle conversion,
// and 4x4 matrix composition/inversion for frame and window transforms.
package lin

import "math"

// Epsilon is used to distinguish when a float is close enough to a
// number to treat the two as equal.
const Epsilon float64 = 0.000001

// DegRad converts degrees to radians when multiplied against a degree
// value; RadDeg is its inverse.
const (
	DegRad float64 = math.Pi * 2 / 360.0
	RadDeg float64 = 360.0 / (math.Pi * 2)
)

// Rad converts degrees to radians.
func Rad(deg float64) float64 { return deg * DegRad }

// Deg converts radians to degrees.
func Deg(rad float64) float64 { return rad * RadDeg }

// AeqZ (~=) almost-equals returns true if x is close enough to zero
// that it doesn't matter.
func AeqZ(x float64) bool { return math.Abs(x) < Epsilon }

// Aeq (~=) almost-equals returns true if the difference between a and b
// is so small that it doesn't matter.
func Aeq(a, b float64) bool { return math.Abs(a-b) < Epsilon }
