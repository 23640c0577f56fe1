// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package script

import (
	"fmt"
	"strings"
)

// Code is a BlueScript evaluation result code (spec §4.2).
type Code int

const (
	OK Code = iota
	Error
	Continue
	Break
	Return
)

// Proc is a callable procedure, either native (External) or script
// (ScriptProc); both are invoked through the same Call signature so the
// evaluator does not need to know which kind it holds.
type Proc interface {
	Call(in *Interp, ctx *Context, args []Value) Code
}

// External wraps a native Go function as a Proc (spec §4.2 "either
// external (native function pointer + cdata) or script").
type External func(in *Interp, ctx *Context, args []Value) Code

// Call implements Proc.
func (f External) Call(in *Interp, ctx *Context, args []Value) Code { return f(in, ctx, args) }

// Formal is one formal parameter of a script procedure: a name and an
// optional default value expression, evaluated if the caller omits the
// actual argument.
type Formal struct {
	Name    string
	Default *Value
}

// ScriptProc is a user-defined procedure: a formal argument list with
// per-argument optional defaults, an optional trailing catch-all
// parameter named "args", and a body value evaluated as a script body
// (spec §4.2 "Procedures").
type ScriptProc struct {
	Formals  []Formal
	CatchAll bool // true if the last formal is the catch-all "args".
	Body     string
	Closure  *Context // the context the proc was defined within, for lexical access.
}

// Call pushes a new call-stack frame, binds formals from actuals,
// evaluates the body, and pops. RETURN is converted to OK at the call
// boundary, with the return value delivered as the call's result (spec
// §4.2).
func (p *ScriptProc) Call(in *Interp, _ *Context, args []Value) Code {
	frame := p.Closure.PushCall()
	n := len(p.Formals)
	for i, f := range p.Formals {
		switch {
		case p.CatchAll && i == n-1:
			rest := args[i:]
			if i > len(args) {
				rest = nil
			}
			frame.Set(f.Name, NewList(rest))
		case i < len(args):
			frame.Set(f.Name, args[i])
		case f.Default != nil:
			frame.Set(f.Name, *f.Default)
		default:
			in.SetResult(fmt.Sprintf("missing argument %q", f.Name))
			return Error
		}
	}
	code := in.EvalScript(frame, p.Body)
	if code == Return {
		return OK
	}
	return code
}

// Interp is one BlueScript interpreter: a global procedure table, the
// opaque arena, and a single result value used as implicit return (spec
// §4.2 "Result channel").
type Interp struct {
	Global *Context
	Arena  *Arena
	result Value
	plans  map[string]*Plan
}

// New returns a fresh interpreter with an empty global context.
func New() *Interp {
	return &Interp{Global: NewContext(), Arena: NewArena()}
}

// ClearResult empties the result value.
func (in *Interp) ClearResult() { in.result = None() }

// SetResult installs a string result.
func (in *Interp) SetResult(s string) { in.result = NewString(s) }

// SetIntResult installs an integer result.
func (in *Interp) SetIntResult(i int64) { in.result = NewInt(i) }

// SetFloatResult installs a float result.
func (in *Interp) SetFloatResult(f float64) { in.result = NewFloat(f) }

// SetValue installs v directly as the result, for procs (e.g. glue's
// math builtins) that produce a composite value — a list or an opaque —
// rather than a single scalar.
func (in *Interp) SetValue(v Value) { in.result = v }

// AppendResult appends space-joined strings to the current string
// result (spec §4.2 "append_result(strings…)").
func (in *Interp) AppendResult(parts ...string) {
	cur := in.result.GetString()
	if cur != "" {
		parts = append([]string{cur}, parts...)
	}
	in.result = NewString(strings.Join(parts, " "))
}

// Result returns the current result value. It returns a pointer into
// in so callers can chain the value's cache-populating accessors
// (GetString, GetList, GetInt, GetFloat) directly.
func (in *Interp) Result() *Value { return &in.result }

// LookupProc resolves a procedure name following spec §4.2's order:
// context local table, lexical/call-stack chain, interpreter global
// table, then the nearest enclosing "unknown" handler.
func (in *Interp) LookupProc(ctx *Context, name string) (Proc, bool) {
	p, _, ok := in.resolveProc(ctx, name)
	return p, ok
}

// resolveProc is LookupProc plus a flag telling the caller whether the
// match came from the "unknown" fallback, so it can pass the attempted
// name through as the handler's first argument (spec §4.2: an unknown
// handler builds "(name, value) pairs" out of the line it intercepted).
func (in *Interp) resolveProc(ctx *Context, name string) (p Proc, viaUnknown bool, ok bool) {
	if p, ok := ctx.lookupProc(name); ok {
		return p, false, true
	}
	if in.Global.procs != nil {
		if p, ok := in.Global.procs[name]; ok {
			return p, false, true
		}
	}
	if p, ok := ctx.findUnknown(); ok {
		return p, true, true
	}
	return nil, false, false
}

// DefProc installs a procedure in the interpreter's global table.
func (in *Interp) DefProc(name string, p Proc) { in.Global.SetProc(name, p) }
