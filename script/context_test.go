// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package script

import "testing"

func TestContextLookupFindsLocal(t *testing.T) {
	c := NewContext()
	c.Set("x", NewInt(1))
	v, ok := c.Lookup("x")
	if !ok || v.Value.GetString() != "1" {
		t.Errorf("expected to find local x=1, got %+v, %v", v, ok)
	}
}

func TestContextCallStackDoesNotSeeParentLocals(t *testing.T) {
	root := NewContext()
	root.Set("x", NewInt(1))
	call := root.PushCall()
	if _, ok := call.Lookup("x"); ok {
		t.Errorf("expected call-stack frame not to see parent's locals")
	}
}

func TestContextLexicalNestFallsThrough(t *testing.T) {
	root := NewContext()
	root.Set("x", NewInt(1))
	nested := root.PushNest()
	v, ok := nested.Lookup("x")
	if !ok || v.Value.GetString() != "1" {
		t.Errorf("expected nested block to see enclosing x, got %+v, %v", v, ok)
	}
}

func TestContextLinkResolvesToEnclosingSlot(t *testing.T) {
	root := NewContext()
	root.Set("x", NewInt(5))
	call := root.PushCall()
	if err := call.MakeLink("y", root, "x"); err != nil {
		t.Fatalf("unexpected error making link: %v", err)
	}
	v, ok := call.Lookup("y")
	if !ok || v.Value.GetString() != "5" {
		t.Errorf("expected link to resolve to x=5, got %+v, %v", v, ok)
	}
}

func TestContextLinkToNonEnclosingRejected(t *testing.T) {
	root := NewContext()
	sibling := NewContext()
	if err := root.MakeLink("y", sibling, "x"); err == nil {
		t.Errorf("expected link to a non-enclosing context to be rejected")
	}
}

func TestContextProcLookupOrder(t *testing.T) {
	root := NewContext()
	called := ""
	root.SetProc("greet", External(func(in *Interp, ctx *Context, args []Value) Code {
		called = "root"
		return OK
	}))
	call := root.PushCall()
	call.SetProc("greet", External(func(in *Interp, ctx *Context, args []Value) Code {
		called = "call"
		return OK
	}))
	p, ok := call.lookupProc("greet")
	if !ok {
		t.Fatalf("expected to find greet")
	}
	p.Call(nil, call, nil)
	if called != "call" {
		t.Errorf("expected local proc to take priority, got %q", called)
	}
}
