// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package glue exposes VE's runtime — math, env/wall/window/profile/
// audio/device/filter builders, the event object, frame access, and
// control procs — as BlueScript procedures (spec §4.7).
package glue

import (
	"fmt"
	"math"

	"github.com/veproj/ve/math/lin"
	"github.com/veproj/ve/script"
)

// Cache IDs for the parsed-vector/quaternion/matrix representations
// glue caches on their source Value, so a second math op against the
// same literal skips re-parsing its list form (spec §4.7 "Results are
// cached on their source value").
var (
	v3CacheID = script.NextCacheID()
	qCacheID  = script.NextCacheID()
	m4CacheID = script.NextCacheID()
)

func v3Of(v *script.Value) (*lin.V3, error) {
	if cached, ok := v.CacheGet(v3CacheID); ok {
		return cached.(*lin.V3), nil
	}
	items, err := v.GetList()
	if err != nil {
		return nil, err
	}
	if len(items) != 3 {
		return nil, fmt.Errorf("glue: expected a 3-element vector, got %d elements", len(items))
	}
	x, err := items[0].GetFloat()
	if err != nil {
		return nil, err
	}
	y, err := items[1].GetFloat()
	if err != nil {
		return nil, err
	}
	z, err := items[2].GetFloat()
	if err != nil {
		return nil, err
	}
	vec := lin.NewV3S(x, y, z)
	v.CacheSet(v3CacheID, vec, nil, func(a any) any { c := *a.(*lin.V3); return &c })
	return vec, nil
}

func v3Value(vec *lin.V3) script.Value {
	val := script.NewList([]script.Value{
		script.NewFloat(vec.X),
		script.NewFloat(vec.Y),
		script.NewFloat(vec.Z),
	})
	val.CacheSet(v3CacheID, vec, nil, func(a any) any { c := *a.(*lin.V3); return &c })
	return val
}

func qOf(v *script.Value) (*lin.Q, error) {
	if cached, ok := v.CacheGet(qCacheID); ok {
		return cached.(*lin.Q), nil
	}
	items, err := v.GetList()
	if err != nil {
		return nil, err
	}
	if len(items) != 4 {
		return nil, fmt.Errorf("glue: expected a 4-element quaternion, got %d elements", len(items))
	}
	vals := make([]float64, 4)
	for i := range items {
		f, err := items[i].GetFloat()
		if err != nil {
			return nil, err
		}
		vals[i] = f
	}
	q := lin.NewQ().SetS(vals[0], vals[1], vals[2], vals[3])
	v.CacheSet(qCacheID, q, nil, func(a any) any { c := *a.(*lin.Q); return &c })
	return q, nil
}

func qValue(q *lin.Q) script.Value {
	val := script.NewList([]script.Value{
		script.NewFloat(q.X), script.NewFloat(q.Y), script.NewFloat(q.Z), script.NewFloat(q.W),
	})
	val.CacheSet(qCacheID, q, nil, func(a any) any { c := *a.(*lin.Q); return &c })
	return val
}

func m4Of(v *script.Value) (*lin.M4, error) {
	if cached, ok := v.CacheGet(m4CacheID); ok {
		return cached.(*lin.M4), nil
	}
	items, err := v.GetList()
	if err != nil {
		return nil, err
	}
	if len(items) != 16 {
		return nil, fmt.Errorf("glue: expected a 16-element 4x4 matrix, got %d elements", len(items))
	}
	vals := make([]float64, 16)
	for i := range items {
		f, err := items[i].GetFloat()
		if err != nil {
			return nil, err
		}
		vals[i] = f
	}
	m := lin.NewM4()
	m.Xx, m.Xy, m.Xz, m.Xw = vals[0], vals[1], vals[2], vals[3]
	m.Yx, m.Yy, m.Yz, m.Yw = vals[4], vals[5], vals[6], vals[7]
	m.Zx, m.Zy, m.Zz, m.Zw = vals[8], vals[9], vals[10], vals[11]
	m.Wx, m.Wy, m.Wz, m.Ww = vals[12], vals[13], vals[14], vals[15]
	v.CacheSet(m4CacheID, m, nil, func(a any) any { c := *a.(*lin.M4); return &c })
	return m, nil
}

func m4Value(m *lin.M4) script.Value {
	val := script.NewList([]script.Value{
		script.NewFloat(m.Xx), script.NewFloat(m.Xy), script.NewFloat(m.Xz), script.NewFloat(m.Xw),
		script.NewFloat(m.Yx), script.NewFloat(m.Yy), script.NewFloat(m.Yz), script.NewFloat(m.Yw),
		script.NewFloat(m.Zx), script.NewFloat(m.Zy), script.NewFloat(m.Zz), script.NewFloat(m.Zw),
		script.NewFloat(m.Wx), script.NewFloat(m.Wy), script.NewFloat(m.Wz), script.NewFloat(m.Ww),
	})
	val.CacheSet(m4CacheID, m, nil, func(a any) any { c := *a.(*lin.M4); return &c })
	return val
}

// lin3 copies a raw [3]float64 (as used by frame_origin/frame_eye) into a
// new lin.V3, for reuse of the v3Value cache-installing constructor.
func lin3(a *[3]float64) *lin.V3 { return lin.NewV3S(a[0], a[1], a[2]) }

func fail(in *script.Interp, err error) script.Code {
	in.SetResult(err.Error())
	return script.Error
}

// RegisterMath installs the math procedures of spec §4.7 into in's
// global table: v3*, q*, m4*, and the scalar trig/utility procs.
func RegisterMath(in *script.Interp) {
	def := in.DefProc

	def("v3add", script.External(v3Binary(func(r, a, b *lin.V3) *lin.V3 { return r.Add(a, b) })))
	def("v3sub", script.External(v3Binary(func(r, a, b *lin.V3) *lin.V3 { return r.Sub(a, b) })))
	def("v3cross", script.External(v3Binary(func(r, a, b *lin.V3) *lin.V3 { return r.Cross(a, b) })))
	def("v3scale", script.External(func(in *script.Interp, ctx *script.Context, args []script.Value) script.Code {
		if len(args) != 2 {
			return fail(in, fmt.Errorf("v3scale: expected vector and scale"))
		}
		a, err := v3Of(&args[0])
		if err != nil {
			return fail(in, err)
		}
		s, err := args[1].GetFloat()
		if err != nil {
			return fail(in, err)
		}
		r := lin.NewV3().Scale(a, s)
		in.SetValue(v3Value(r))
		return script.OK
	}))
	def("v3dot", script.External(func(in *script.Interp, ctx *script.Context, args []script.Value) script.Code {
		if len(args) != 2 {
			return fail(in, fmt.Errorf("v3dot: expected two vectors"))
		}
		a, err := v3Of(&args[0])
		if err != nil {
			return fail(in, err)
		}
		b, err := v3Of(&args[1])
		if err != nil {
			return fail(in, err)
		}
		in.SetFloatResult(a.Dot(b))
		return script.OK
	}))
	def("v3mag", script.External(v3Scalar(func(a *lin.V3) float64 { return a.Len() })))
	def("v3norm", script.External(func(in *script.Interp, ctx *script.Context, args []script.Value) script.Code {
		if len(args) != 1 {
			return fail(in, fmt.Errorf("v3norm: expected one vector"))
		}
		a, err := v3Of(&args[0])
		if err != nil {
			return fail(in, err)
		}
		r := lin.NewV3().Set(a).Unit()
		in.SetValue(v3Value(r))
		return script.OK
	}))
	def("v3ind", script.External(func(in *script.Interp, ctx *script.Context, args []script.Value) script.Code {
		if len(args) != 2 {
			return fail(in, fmt.Errorf("v3ind: expected vector and index"))
		}
		a, err := v3Of(&args[0])
		if err != nil {
			return fail(in, err)
		}
		idx, err := args[1].GetInt()
		if err != nil {
			return fail(in, err)
		}
		switch idx {
		case 0:
			in.SetFloatResult(a.X)
		case 1:
			in.SetFloatResult(a.Y)
		case 2:
			in.SetFloatResult(a.Z)
		default:
			return fail(in, fmt.Errorf("v3ind: index out of range: %d", idx))
		}
		return script.OK
	}))

	def("qnorm", script.External(func(in *script.Interp, ctx *script.Context, args []script.Value) script.Code {
		if len(args) != 1 {
			return fail(in, fmt.Errorf("qnorm: expected one quaternion"))
		}
		a, err := qOf(&args[0])
		if err != nil {
			return fail(in, err)
		}
		r := lin.NewQ().Set(a).Unit()
		in.SetValue(qValue(r))
		return script.OK
	}))
	def("qmult", script.External(func(in *script.Interp, ctx *script.Context, args []script.Value) script.Code {
		if len(args) != 2 {
			return fail(in, fmt.Errorf("qmult: expected two quaternions"))
		}
		a, err := qOf(&args[0])
		if err != nil {
			return fail(in, err)
		}
		b, err := qOf(&args[1])
		if err != nil {
			return fail(in, err)
		}
		r := lin.NewQ().Mult(a, b)
		in.SetValue(qValue(r))
		return script.OK
	}))
	def("qarb", script.External(func(in *script.Interp, ctx *script.Context, args []script.Value) script.Code {
		if len(args) != 2 {
			return fail(in, fmt.Errorf("qarb: expected an axis vector and an angle"))
		}
		axis, err := v3Of(&args[0])
		if err != nil {
			return fail(in, err)
		}
		ang, err := args[1].GetFloat()
		if err != nil {
			return fail(in, err)
		}
		r := lin.NewQ().SetAa(axis.X, axis.Y, axis.Z, ang)
		in.SetValue(qValue(r))
		return script.OK
	}))
	def("qaxis", script.External(func(in *script.Interp, ctx *script.Context, args []script.Value) script.Code {
		if len(args) != 1 {
			return fail(in, fmt.Errorf("qaxis: expected one quaternion"))
		}
		a, err := qOf(&args[0])
		if err != nil {
			return fail(in, err)
		}
		ax, ay, az, _ := a.Aa()
		in.SetValue(v3Value(lin.NewV3S(ax, ay, az)))
		return script.OK
	}))
	def("qang", script.External(func(in *script.Interp, ctx *script.Context, args []script.Value) script.Code {
		if len(args) != 1 {
			return fail(in, fmt.Errorf("qang: expected one quaternion"))
		}
		a, err := qOf(&args[0])
		if err != nil {
			return fail(in, err)
		}
		_, _, _, angle := a.Aa()
		in.SetFloatResult(angle)
		return script.OK
	}))
	def("qind", script.External(func(in *script.Interp, ctx *script.Context, args []script.Value) script.Code {
		if len(args) != 2 {
			return fail(in, fmt.Errorf("qind: expected quaternion and index"))
		}
		a, err := qOf(&args[0])
		if err != nil {
			return fail(in, err)
		}
		idx, err := args[1].GetInt()
		if err != nil {
			return fail(in, err)
		}
		vals := []float64{a.X, a.Y, a.Z, a.W}
		if idx < 0 || int(idx) >= len(vals) {
			return fail(in, fmt.Errorf("qind: index out of range: %d", idx))
		}
		in.SetFloatResult(vals[idx])
		return script.OK
	}))

	def("m4ident", script.External(func(in *script.Interp, ctx *script.Context, args []script.Value) script.Code {
		in.SetValue(m4Value(lin.NewM4I()))
		return script.OK
	}))
	def("m4rotate", script.External(func(in *script.Interp, ctx *script.Context, args []script.Value) script.Code {
		if len(args) != 1 {
			return fail(in, fmt.Errorf("m4rotate: expected one quaternion"))
		}
		q, err := qOf(&args[0])
		if err != nil {
			return fail(in, err)
		}
		r := lin.NewM4I().SetQ(q)
		in.SetValue(m4Value(r))
		return script.OK
	}))
	def("m4trans", script.External(func(in *script.Interp, ctx *script.Context, args []script.Value) script.Code {
		if len(args) != 1 {
			return fail(in, fmt.Errorf("m4trans: expected one vector"))
		}
		v, err := v3Of(&args[0])
		if err != nil {
			return fail(in, err)
		}
		r := lin.NewM4I().TranslateMT(v.X, v.Y, v.Z)
		in.SetValue(m4Value(r))
		return script.OK
	}))
	def("m4mult", script.External(func(in *script.Interp, ctx *script.Context, args []script.Value) script.Code {
		if len(args) != 2 {
			return fail(in, fmt.Errorf("m4mult: expected two matrices"))
		}
		a, err := m4Of(&args[0])
		if err != nil {
			return fail(in, err)
		}
		b, err := m4Of(&args[1])
		if err != nil {
			return fail(in, err)
		}
		r := lin.NewM4().Mult(a, b)
		in.SetValue(m4Value(r))
		return script.OK
	}))
	def("m4multv", script.External(func(in *script.Interp, ctx *script.Context, args []script.Value) script.Code {
		if len(args) != 2 {
			return fail(in, fmt.Errorf("m4multv: expected a matrix and a vector"))
		}
		m, err := m4Of(&args[0])
		if err != nil {
			return fail(in, err)
		}
		v, err := v3Of(&args[1])
		if err != nil {
			return fail(in, err)
		}
		v4 := lin.NewV4S(v.X, v.Y, v.Z, 1)
		r4 := lin.NewV4().MultvM(v4, m)
		in.SetValue(v3Value(lin.NewV3S(r4.X, r4.Y, r4.Z)))
		return script.OK
	}))
	def("m4invert", script.External(func(in *script.Interp, ctx *script.Context, args []script.Value) script.Code {
		if len(args) != 1 {
			return fail(in, fmt.Errorf("m4invert: expected one matrix"))
		}
		a, err := m4Of(&args[0])
		if err != nil {
			return fail(in, err)
		}
		r := lin.NewM4()
		if r.Inv(a).Eq(lin.NewM4()) {
			return fail(in, fmt.Errorf("m4invert: matrix is singular"))
		}
		in.SetValue(m4Value(r))
		return script.OK
	}))
	def("m4ind", script.External(func(in *script.Interp, ctx *script.Context, args []script.Value) script.Code {
		if len(args) != 2 {
			return fail(in, fmt.Errorf("m4ind: expected matrix and index"))
		}
		m, err := m4Of(&args[0])
		if err != nil {
			return fail(in, err)
		}
		idx, err := args[1].GetInt()
		if err != nil {
			return fail(in, err)
		}
		vals := []float64{
			m.Xx, m.Xy, m.Xz, m.Xw,
			m.Yx, m.Yy, m.Yz, m.Yw,
			m.Zx, m.Zy, m.Zz, m.Zw,
			m.Wx, m.Wy, m.Wz, m.Ww,
		}
		if idx < 0 || int(idx) >= len(vals) {
			return fail(in, fmt.Errorf("m4ind: index out of range: %d", idx))
		}
		in.SetFloatResult(vals[idx])
		return script.OK
	}))

	def("deg2rad", script.External(scalar1(lin.Rad)))
	def("rad2deg", script.External(scalar1(lin.Deg)))
	def("sin", script.External(scalar1(math.Sin)))
	def("cos", script.External(scalar1(math.Cos)))
	def("tan", script.External(scalar1(math.Tan)))
	def("sqrt", script.External(scalar1(math.Sqrt)))
	def("abs", script.External(scalar1(math.Abs)))
	def("asin", script.External(domainChecked("asin", math.Asin)))
	def("acos", script.External(domainChecked("acos", math.Acos)))
	def("atan", script.External(func(in *script.Interp, ctx *script.Context, args []script.Value) script.Code {
		switch len(args) {
		case 1:
			x, err := args[0].GetFloat()
			if err != nil {
				return fail(in, err)
			}
			in.SetFloatResult(math.Atan(x))
			return script.OK
		case 2:
			y, err := args[0].GetFloat()
			if err != nil {
				return fail(in, err)
			}
			x, err := args[1].GetFloat()
			if err != nil {
				return fail(in, err)
			}
			in.SetFloatResult(math.Atan2(y, x))
			return script.OK
		default:
			return fail(in, fmt.Errorf("atan: expected 1 or 2 arguments"))
		}
	}))
}

func v3Binary(op func(r, a, b *lin.V3) *lin.V3) script.External {
	return func(in *script.Interp, ctx *script.Context, args []script.Value) script.Code {
		if len(args) != 2 {
			return fail(in, fmt.Errorf("expected two vectors"))
		}
		a, err := v3Of(&args[0])
		if err != nil {
			return fail(in, err)
		}
		b, err := v3Of(&args[1])
		if err != nil {
			return fail(in, err)
		}
		r := op(lin.NewV3(), a, b)
		in.SetValue(v3Value(r))
		return script.OK
	}
}

func v3Scalar(op func(a *lin.V3) float64) script.External {
	return func(in *script.Interp, ctx *script.Context, args []script.Value) script.Code {
		if len(args) != 1 {
			return fail(in, fmt.Errorf("expected one vector"))
		}
		a, err := v3Of(&args[0])
		if err != nil {
			return fail(in, err)
		}
		in.SetFloatResult(op(a))
		return script.OK
	}
}

func scalar1(op func(float64) float64) script.External {
	return func(in *script.Interp, ctx *script.Context, args []script.Value) script.Code {
		if len(args) != 1 {
			return fail(in, fmt.Errorf("expected one argument"))
		}
		x, err := args[0].GetFloat()
		if err != nil {
			return fail(in, err)
		}
		in.SetFloatResult(op(x))
		return script.OK
	}
}

// domainChecked wraps asin/acos with the spec's "domain-checked"
// requirement: inputs outside [-1, 1] are a BlueScript error rather than
// propagating a silent NaN.
func domainChecked(name string, op func(float64) float64) script.External {
	return func(in *script.Interp, ctx *script.Context, args []script.Value) script.Code {
		if len(args) != 1 {
			return fail(in, fmt.Errorf("%s: expected one argument", name))
		}
		x, err := args[0].GetFloat()
		if err != nil {
			return fail(in, err)
		}
		if x < -1 || x > 1 {
			return fail(in, fmt.Errorf("%s: argument %g out of domain [-1, 1]", name, x))
		}
		in.SetFloatResult(op(x))
		return script.OK
	}
}
