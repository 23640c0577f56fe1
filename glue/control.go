// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package glue

import (
	"fmt"
	"os"
	"strings"

	"github.com/veproj/ve/motion"
	"github.com/veproj/ve/script"
)

// RegisterControl installs the control procs of spec §4.7: include,
// exit, echo, and the "return" proc filter/module bodies use to select
// their disposition (spec §4.7 "Control").
func (g *Glue) RegisterControl() {
	if g.Echo == nil {
		g.Echo = os.Stdout
	}
	g.In.DefProc("include", script.External(g.include))
	g.In.DefProc("exit", script.External(g.exit))
	g.In.DefProc("echo", script.External(g.echo))
	g.In.DefProc("return", script.External(returnProc))
	g.In.DefProc("frame_origin", script.External(g.frameAccessor(motion.Origin, &g.Origin)))
	g.In.DefProc("frame_eye", script.External(g.frameAccessor(motion.Eye, &g.Eye)))
}

// include reads and evaluates a file in the caller's own context, so
// variables and procs it defines land in the including script's scope
// (spec §4.7 "include <file>").
func (g *Glue) include(in *script.Interp, ctx *script.Context, args []script.Value) script.Code {
	if len(args) != 1 {
		return fail(in, fmt.Errorf("include: expected a file name"))
	}
	path := args[0].GetString()
	src, err := os.ReadFile(path)
	if err != nil {
		return fail(in, fmt.Errorf("include: %w", err))
	}
	return in.EvalScript(ctx, string(src))
}

// exit records the interpreter as wanting to stop and bubbles an Error
// code so every enclosing EvalScript/Call unwinds; callers driving the
// top-level script loop must check Exited before treating that as a
// real failure (spec §4.7 "exit [msg]").
func (g *Glue) exit(in *script.Interp, ctx *script.Context, args []script.Value) script.Code {
	g.Exited = true
	if len(args) > 0 {
		g.ExitMessage = args[0].GetString()
	}
	in.SetResult(g.ExitMessage)
	return script.Error
}

func (g *Glue) echo(in *script.Interp, ctx *script.Context, args []script.Value) script.Code {
	parts := make([]string, len(args))
	for i := range args {
		parts[i] = args[i].GetString()
	}
	fmt.Fprintln(g.Echo, strings.Join(parts, " "))
	return script.OK
}

// returnProc installs its argument as the result and reports Return,
// the code a filter or profile-module body uses to signal its chosen
// disposition word (spec §4.7 "Body return codes... via return").
func returnProc(in *script.Interp, ctx *script.Context, args []script.Value) script.Code {
	if len(args) > 0 {
		in.SetResult(args[0].GetString())
	} else {
		in.ClearResult()
	}
	return script.Return
}

// frameAccessor builds the frame_origin/frame_eye proc: "(loc|dir|up)
// [v]" gets or sets one of the three vectors. A set is first submitted
// to g.Motion as a proposed frame (spec §4.8 "check_motion(which,
// &proposed)"); a rejected proposal leaves fs untouched and the proc
// reports the veto as an error. An accepted set notifies OnRedisplay
// (spec §4.7 "Frame access... updates post a redisplay").
func (g *Glue) frameAccessor(which motion.Which, fs *frameState) script.External {
	return func(in *script.Interp, ctx *script.Context, args []script.Value) script.Code {
		if len(args) < 1 {
			return fail(in, fmt.Errorf("expected loc, dir, or up"))
		}
		var target *[3]float64
		switch args[0].GetString() {
		case "loc":
			target = &fs.Loc
		case "dir":
			target = &fs.Dir
		case "up":
			target = &fs.Up
		default:
			return fail(in, fmt.Errorf("expected loc, dir, or up, got %q", args[0].GetString()))
		}
		if len(args) == 1 {
			in.SetValue(v3Value(lin3(target)))
			return script.OK
		}
		v, err := v3Of(&args[1])
		if err != nil {
			return fail(in, err)
		}
		proposed := fs.toFrame()
		switch args[0].GetString() {
		case "loc":
			proposed.Loc = [3]float64{v.X, v.Y, v.Z}
		case "dir":
			proposed.Dir = [3]float64{v.X, v.Y, v.Z}
		case "up":
			proposed.Up = [3]float64{v.X, v.Y, v.Z}
		}
		if g.Motion != nil && !g.Motion.CheckMotion(which, &proposed) {
			return fail(in, fmt.Errorf("frame_%s: motion rejected", which))
		}
		target[0], target[1], target[2] = v.X, v.Y, v.Z
		if g.OnRedisplay != nil {
			g.OnRedisplay()
		}
		return script.OK
	}
}
