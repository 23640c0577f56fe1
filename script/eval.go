// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package script

import (
	"fmt"
	"strings"

	"github.com/veproj/ve/script/parse"
)

// EvalScript parses src as a script (newline-separated lines, blank and
// "#"-comment lines discarded) and evaluates each line's command in ctx
// in turn, stopping at the first line that does not return OK (spec
// §4.2).
func (in *Interp) EvalScript(ctx *Context, src string) Code {
	lines, err := parse.ParseScript(parse.NewString(src))
	if err != nil {
		in.SetResult(err.Error())
		return Error
	}
	code := OK
	for _, line := range lines {
		code = in.evalLine(ctx, line)
		if code != OK {
			return code
		}
	}
	return code
}

// evalSource parses src's first line as a single command and evaluates
// it, returning the interpreter's result value. Used for eval-lists
// (spec §4.2's "[...]").
func (in *Interp) evalSource(ctx *Context, src string) (Value, error) {
	lines, err := parse.ParseScript(parse.NewString(src))
	if err != nil {
		return Value{}, err
	}
	if len(lines) == 0 {
		return None(), nil
	}
	if in.evalLine(ctx, lines[0]) == Error {
		return Value{}, fmt.Errorf("%s", in.Result().GetString())
	}
	return *in.Result(), nil
}

func (in *Interp) evalLine(ctx *Context, nodes []parse.Node) Code {
	if len(nodes) == 0 {
		return OK
	}
	nameVal, err := in.evalArg(ctx, nodes[0])
	if err != nil {
		in.SetResult(err.Error())
		return Error
	}
	name := nameVal.GetString()
	args := make([]Value, 0, len(nodes)-1)
	for _, n := range nodes[1:] {
		v, err := in.evalArg(ctx, n)
		if err != nil {
			in.SetResult(err.Error())
			return Error
		}
		args = append(args, v)
	}
	proc, viaUnknown, ok := in.resolveProc(ctx, name)
	if !ok {
		in.SetResult(fmt.Sprintf("unknown procedure %q", name))
		return Error
	}
	if viaUnknown {
		args = append([]Value{NewString(name)}, args...)
	}
	return proc.Call(in, ctx, args)
}

// evalArg resolves one parsed object into a Value. A bare "{...}" list
// is passed through unevaluated as its raw text; a bare "$name"/
// "[...]" is resolved to its own typed value; a word or string with no
// embedded "$"/"[" passes through as a plain string; otherwise it is
// compiled into a substitution plan and executed (spec §4.2).
func (in *Interp) evalArg(ctx *Context, n parse.Node) (Value, error) {
	switch n.Kind {
	case parse.List:
		return NewString(n.Text), nil
	case parse.Var:
		v, ok := ctx.Lookup(n.Text)
		if !ok {
			return Value{}, fmt.Errorf("script: unset variable %q", n.Text)
		}
		return v.Value, nil
	case parse.EvalList:
		return in.evalSource(ctx, n.Text)
	default: // Word, String
		if !strings.ContainsAny(n.Text, "$[\\") {
			return NewString(n.Text), nil
		}
		s, err := in.substitute(ctx, n.Text)
		if err != nil {
			return Value{}, err
		}
		return NewString(s), nil
	}
}

// substitute compiles (with caching) and runs a substitution plan over
// text.
func (in *Interp) substitute(ctx *Context, text string) (string, error) {
	p, err := in.compile(text)
	if err != nil {
		return "", err
	}
	return p.Run(in, ctx)
}

func (in *Interp) compile(text string) (*Plan, error) {
	if in.plans == nil {
		in.plans = map[string]*Plan{}
	}
	if p, ok := in.plans[text]; ok {
		return p, nil
	}
	p, err := compilePlan(text)
	if err != nil {
		return nil, err
	}
	in.plans[text] = p
	return p, nil
}
