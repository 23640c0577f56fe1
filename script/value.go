// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package script implements the BlueScript value model and interpreter:
// multi-representation values with cached derived representations,
// cycle-collected opaque objects, lexically-nested contexts, and a
// small procedure-call evaluator (spec §4.2-§4.3).
package script

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
)

// Kind names a Value's primary representation.
type Kind int

const (
	KindNone Kind = iota
	KindString
	KindList
	KindInt
	KindFloat
	KindOpaque
)

// Value is a BlueScript value: exactly one primary representation, plus
// representations synthesized and cached on demand, plus a table of
// driver-owned cached representations keyed by a monotonic id (spec
// §4.2 "Value representations and coercion", "Cached representations").
type Value struct {
	kind Kind
	str  string
	list []Value
	i    int64
	f    float64
	op   *Opaque

	strOK   bool
	strC    string
	listOK  bool
	listC   []Value
	intOK   bool
	intC    int64
	floatOK bool
	floatC  float64

	reps map[uint64]cacheEntry
}

type cacheEntry struct {
	data any
	free func(any)
	copy func(any) any
}

var cacheCounter uint64

// NextCacheID returns a process-unique id for a cached representation,
// never zero (spec §4.2).
func NextCacheID() uint64 { return atomic.AddUint64(&cacheCounter, 1) }

// None returns the unset value.
func None() Value { return Value{kind: KindNone} }

// NewString returns a value primarily represented as a string.
func NewString(s string) Value { return Value{kind: KindString, str: s} }

// NewInt returns a value primarily represented as an integer.
func NewInt(i int64) Value { return Value{kind: KindInt, i: i} }

// NewFloat returns a value primarily represented as a float.
func NewFloat(f float64) Value { return Value{kind: KindFloat, f: f} }

// NewList returns a value primarily represented as a list.
func NewList(items []Value) Value { return Value{kind: KindList, list: items} }

// NewOpaque returns a value primarily represented as an opaque reference.
func NewOpaque(o *Opaque) Value { return Value{kind: KindOpaque, op: o} }

// Kind reports the value's primary representation.
func (v Value) Kind() Kind { return v.kind }

// Opaque returns the underlying opaque object, if the value's primary
// representation is opaque.
func (v Value) Opaque() (*Opaque, bool) {
	if v.kind == KindOpaque {
		return v.op, true
	}
	return nil, false
}

// GetString always succeeds, synthesizing from whatever representation
// is present (spec §4.2).
func (v *Value) GetString() string {
	if v.kind == KindString {
		return v.str
	}
	if v.strOK {
		return v.strC
	}
	switch v.kind {
	case KindInt:
		v.strC = strconv.FormatInt(v.i, 10)
	case KindFloat:
		v.strC = strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindList:
		v.strC = joinList(v.list)
	case KindOpaque:
		if v.op != nil && v.op.driver != nil {
			v.strC = v.op.driver.MakeRep(v.op.data)
		}
	default:
		v.strC = ""
	}
	v.strOK = true
	return v.strC
}

func joinList(items []Value) string {
	parts := make([]string, len(items))
	for i := range items {
		s := items[i].GetString()
		if items[i].Kind() == KindList || strings.ContainsAny(s, " \t\n{}") {
			s = "{" + s + "}"
		}
		parts[i] = s
	}
	return strings.Join(parts, " ")
}

// GetList forces a string representation and parses it as a
// whitespace-separated list (spec §4.2).
func (v *Value) GetList() ([]Value, error) {
	if v.kind == KindList {
		return v.list, nil
	}
	if v.listOK {
		return v.listC, nil
	}
	items, err := parseListString(v.GetString())
	if err != nil {
		return nil, err
	}
	v.listC = items
	v.listOK = true
	return items, nil
}

func parseListString(s string) ([]Value, error) {
	var out []Value
	i := 0
	for i < len(s) {
		for i < len(s) && isListSpace(s[i]) {
			i++
		}
		if i >= len(s) {
			break
		}
		if s[i] == '{' {
			depth := 1
			j := i + 1
			for j < len(s) && depth > 0 {
				switch s[j] {
				case '{':
					depth++
				case '}':
					depth--
				}
				j++
			}
			if depth != 0 {
				return nil, fmt.Errorf("script: unbalanced list element")
			}
			out = append(out, NewString(s[i+1:j-1]))
			i = j
			continue
		}
		j := i
		for j < len(s) && !isListSpace(s[j]) {
			j++
		}
		out = append(out, NewString(s[i:j]))
		i = j
	}
	return out, nil
}

func isListSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }

// GetInt forces a string representation and parses it as an integer. A
// blank string or trailing non-numeric content fails (spec §4.2).
func (v *Value) GetInt() (int64, error) {
	if v.kind == KindInt {
		return v.i, nil
	}
	if v.intOK {
		return v.intC, nil
	}
	s := strings.TrimSpace(v.GetString())
	if s == "" {
		return 0, fmt.Errorf("script: empty value has no integer representation")
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("script: %q is not an integer", s)
	}
	v.intC = n
	v.intOK = true
	return n, nil
}

// GetFloat forces a string representation and parses it as a float.
func (v *Value) GetFloat() (float64, error) {
	if v.kind == KindFloat {
		return v.f, nil
	}
	if v.floatOK {
		return v.floatC, nil
	}
	s := strings.TrimSpace(v.GetString())
	if s == "" {
		return 0, fmt.Errorf("script: empty value has no float representation")
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("script: %q is not a float", s)
	}
	v.floatC = n
	v.floatOK = true
	return n, nil
}

// Set installs a new primary string representation, invalidating every
// other primary and cached representation (spec §4.2).
func (v *Value) Set(s string) { v.reset(); v.kind = KindString; v.str = s }

// SetList installs a new primary list representation.
func (v *Value) SetList(items []Value) { v.reset(); v.kind = KindList; v.list = items }

// SetInt installs a new primary integer representation.
func (v *Value) SetInt(i int64) { v.reset(); v.kind = KindInt; v.i = i }

// SetFloat installs a new primary float representation.
func (v *Value) SetFloat(f float64) { v.reset(); v.kind = KindFloat; v.f = f }

// SetOpaque installs a new primary opaque representation.
func (v *Value) SetOpaque(o *Opaque) { v.reset(); v.kind = KindOpaque; v.op = o }

func (v *Value) reset() {
	v.strOK, v.listOK, v.intOK, v.floatOK = false, false, false, false
	v.strC, v.listC, v.intC, v.floatC = "", nil, 0, 0
	v.Invalidate()
}

// CacheSet stores a driver-owned cached representation under id.
func (v *Value) CacheSet(id uint64, data any, free func(any), cp func(any) any) {
	if v.reps == nil {
		v.reps = map[uint64]cacheEntry{}
	}
	v.reps[id] = cacheEntry{data: data, free: free, copy: cp}
}

// CacheGet retrieves a previously stored cached representation.
func (v *Value) CacheGet(id uint64) (any, bool) {
	e, ok := v.reps[id]
	if !ok {
		return nil, false
	}
	return e.data, true
}

// Invalidate drops every cached representation (spec §4.2).
func (v *Value) Invalidate() {
	for _, e := range v.reps {
		if e.free != nil {
			e.free(e.data)
		}
	}
	v.reps = nil
}

// Copy returns a value that shares no cache state with v; primary
// representations of immutable kinds are copied by value, opaque refs
// are re-referenced through the caller (callers of Copy on an opaque
// value must Ref it explicitly if they intend to hold it).
func (v Value) Copy() Value {
	cp := Value{kind: v.kind, str: v.str, i: v.i, f: v.f, op: v.op}
	if v.list != nil {
		cp.list = make([]Value, len(v.list))
		for i := range v.list {
			cp.list[i] = v.list[i].Copy()
		}
	}
	return cp
}
