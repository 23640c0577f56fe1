// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package script

import "fmt"

// VarKind names a Variable's binding state (spec §3 "Unset | Local(value)
// | Link(var_ref)").
type VarKind int

const (
	Unset VarKind = iota
	Local
	LinkVar
)

// Variable is one slot in a Context's variable map.
type Variable struct {
	Kind  VarKind
	Value Value
	link  *Context // the context a Link variable resolves through.
	name  string    // the slot name within link, for a Link variable.
}

// Context is a lexical scope: a variable map, an optional local
// procedure table, and two orthogonal relations with its neighbors — a
// vertical call stack and a horizontal lexical nest (spec §4.2).
type Context struct {
	parent   *Context // call-stack parent: the caller's frame.
	sibling  *Context // lexical-nest parent: the enclosing block.
	vars     map[string]*Variable
	procs    map[string]Proc
	unknown  Proc
	refCount int
}

// NewContext returns a root context with no stack or lexical parent.
func NewContext() *Context {
	return &Context{vars: map[string]*Variable{}}
}

// PushCall returns a new context one level down the call stack from c.
func (c *Context) PushCall() *Context {
	return &Context{parent: c, vars: map[string]*Variable{}}
}

// PushNest returns a new context nested lexically inside c: lookups that
// miss fall through to c, but c's own stack parent is not inherited.
func (c *Context) PushNest() *Context {
	return &Context{sibling: c, vars: map[string]*Variable{}}
}

// chain walks the lexical nest leftward (sibling chain) starting at c.
func (c *Context) chain() []*Context {
	var chain []*Context
	for cur := c; cur != nil; cur = cur.sibling {
		chain = append(chain, cur)
	}
	return chain
}

// Lookup searches the current context and its lexical-nest chain,
// resolving Link variables along the way. Call-stack parents are not
// searched: a caller's variables are reachable only through a Link
// variable (spec §4.2).
func (c *Context) Lookup(name string) (*Variable, bool) {
	for _, n := range c.chain() {
		if v, ok := n.vars[name]; ok {
			return resolveLink(v)
		}
	}
	return nil, false
}

func resolveLink(v *Variable) (*Variable, bool) {
	seen := map[*Variable]bool{}
	for v.Kind == LinkVar {
		if seen[v] {
			return nil, false // cyclic link: caught by construction, defensive only.
		}
		seen[v] = true
		next, ok := v.link.vars[v.name]
		if !ok {
			return nil, false
		}
		v = next
	}
	return v, true
}

// Set installs a Local variable in c's own map (not the lexical chain),
// creating it if necessary.
func (c *Context) Set(name string, val Value) {
	if v, ok := c.vars[name]; ok {
		v.Kind = Local
		v.Value = val
		return
	}
	c.vars[name] = &Variable{Kind: Local, Value: val}
}

// MakeLink binds name in c to the slot named target in an enclosing
// context (spec §4.2: the target "must be in a strictly enclosing
// context to prevent cycles").
func (c *Context) MakeLink(name string, target *Context, targetName string) error {
	if target == c || !c.strictlyEncloses(target) {
		return fmt.Errorf("script: link target must be a strictly enclosing context")
	}
	c.vars[name] = &Variable{Kind: LinkVar, link: target, name: targetName}
	return nil
}

func (c *Context) strictlyEncloses(target *Context) bool {
	for ctx := c.parent; ctx != nil; ctx = ctx.parent {
		if ctx == target {
			return true
		}
		for _, n := range ctx.chain() {
			if n == target {
				return true
			}
		}
	}
	for _, n := range c.chain()[1:] {
		if n == target {
			return true
		}
	}
	return false
}

// SetProc installs a procedure local to this context.
func (c *Context) SetProc(name string, p Proc) {
	if c.procs == nil {
		c.procs = map[string]Proc{}
	}
	c.procs[name] = p
}

// SetUnknown installs the fallback handler invoked when no procedure
// resolves, used to implement option-body parsers (spec §4.2).
func (c *Context) SetUnknown(p Proc) { c.unknown = p }

// RemoveProc drops a procedure previously installed with SetProc, used
// by opaque drivers that register a per-object command name and must
// retire it once the object is collected.
func (c *Context) RemoveProc(name string) { delete(c.procs, name) }

// lookupProc walks the local table, then the lexical chain, then the
// call-stack parent's chain, matching spec §4.2's procedure lookup
// order (global fallback and unknown handler are applied by Interp).
func (c *Context) lookupProc(name string) (Proc, bool) {
	for ctx := c; ctx != nil; ctx = ctx.parent {
		for _, n := range ctx.chain() {
			if p, ok := n.procs[name]; ok {
				return p, true
			}
		}
	}
	return nil, false
}

// findUnknown returns the nearest enclosing "unknown" handler, if any.
func (c *Context) findUnknown() (Proc, bool) {
	for ctx := c; ctx != nil; ctx = ctx.parent {
		for _, n := range ctx.chain() {
			if n.unknown != nil {
				return n.unknown, true
			}
		}
	}
	return nil, false
}
