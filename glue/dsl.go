// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package glue

import (
	"fmt"
	"strings"

	"github.com/veproj/ve/device"
	"github.com/veproj/ve/devpipe"
	"github.com/veproj/ve/script"
)

// isBareWord reports whether s looks like a type-name token rather than
// a braced options body (which always contains whitespace once its
// surrounding braces are stripped by the parser).
func isBareWord(s string) bool { return !strings.ContainsAny(s, " \t\n") }

// setter returns a one-argument proc that assigns its string argument
// to target, used for the many single-valued fields the builders below
// accept (desc, size, loc, display, engine, ...).
func setter(target *string) script.Proc {
	return script.External(func(in *script.Interp, ctx *script.Context, args []script.Value) script.Code {
		if len(args) != 1 {
			return fail(in, fmt.Errorf("expected one value"))
		}
		*target = args[0].GetString()
		return script.OK
	})
}

// runKeyValueBody evaluates body in a nested context whose unknown
// handler feeds every (name, value) pair straight to into, used for
// "module <name> { key value… }" where the body has no surrounding
// "option" keyword (spec §4.7).
func (g *Glue) runKeyValueBody(ctx *script.Context, kind string, body script.Value, into func(name, value string)) error {
	g.push(kind)
	defer g.pop()
	nested := ctx.PushNest()
	nested.SetUnknown(script.External(func(in *script.Interp, _ *script.Context, args []script.Value) script.Code {
		if len(args) == 0 {
			return script.OK
		}
		name := args[0].GetString()
		value := ""
		if len(args) > 1 {
			value = args[1].GetString()
		}
		into(name, value)
		return script.OK
	}))
	if code := g.In.EvalScript(nested, body.GetString()); code == script.Error {
		return fmt.Errorf("glue: %s", g.In.Result().GetString())
	}
	return nil
}

// RegisterDSL installs every environment/profile/audio/device builder
// proc of spec §4.7 into g's interpreter.
func (g *Glue) RegisterDSL() {
	g.In.DefProc("driver", script.External(g.buildDriver))
	g.In.DefProc("env", script.External(g.buildEnv))
	g.In.DefProc("profile", script.External(g.buildProfile))
	g.In.DefProc("audiodevice", script.External(g.buildAudioDevice))
	g.In.DefProc("audio", script.External(g.buildAudio))
	g.In.DefProc("device", script.External(g.buildDevice))
	g.In.DefProc("use", script.External(g.buildUse))
	g.In.DefProc("filter", script.External(g.buildFilter))
}

// buildDriver implements the manifest grammar's "driver <type> <name>
// <path>" entry (spec §6 "Manifest file"): it records the plug-in a
// device type resolves to. It carries no body; loading the plug-in
// itself is the device layer's concern (device.Device.Attach), out of
// scope here per §4.2's driver-internals non-goal.
func (g *Glue) buildDriver(in *script.Interp, ctx *script.Context, args []script.Value) script.Code {
	if err := g.requireContext("driver"); err != nil {
		return fail(in, err)
	}
	if len(args) != 3 {
		return fail(in, fmt.Errorf("driver: expected type, name, and path"))
	}
	d := &Driver{Type: args[0].GetString(), Name: args[1].GetString(), Path: args[2].GetString()}
	g.Drivers[d.Name] = d
	in.SetResult(d.Name)
	return script.OK
}

func (g *Glue) buildEnv(in *script.Interp, ctx *script.Context, args []script.Value) script.Code {
	if err := g.requireContext("env"); err != nil {
		return fail(in, err)
	}
	if len(args) < 1 {
		return fail(in, fmt.Errorf("env: expected a name"))
	}
	name := args[0].GetString()
	e := &Env{Name: name}
	g.Envs[name] = e
	if body, ok := bodyText(args, 1); ok {
		children := map[string]script.Proc{
			"desc": setter(&e.Desc),
			"wall": script.External(func(in *script.Interp, ctx *script.Context, args []script.Value) script.Code {
				return g.buildWall(e, in, ctx, args)
			}),
		}
		if err := g.runBody(ctx, body, "env", children, &e.Options); err != nil {
			return fail(in, err)
		}
	}
	in.SetResult(name)
	return script.OK
}

func (g *Glue) buildWall(e *Env, in *script.Interp, ctx *script.Context, args []script.Value) script.Code {
	if err := g.requireContext("wall", "env"); err != nil {
		return fail(in, err)
	}
	if len(args) < 1 {
		return fail(in, fmt.Errorf("wall: expected a name"))
	}
	w := &Wall{Name: args[0].GetString()}
	e.Walls = append(e.Walls, w)
	if body, ok := bodyText(args, 1); ok {
		children := map[string]script.Proc{
			"desc": setter(&w.Desc),
			"size": setter(&w.Size),
			"base": setter(&w.Base),
			"loc":  setter(&w.Loc),
			"dir":  setter(&w.Dir),
			"up":   setter(&w.Up),
			"window": script.External(func(in *script.Interp, ctx *script.Context, args []script.Value) script.Code {
				return g.buildWindow(w, in, ctx, args)
			}),
		}
		if err := g.runBody(ctx, body, "wall", children, &w.Options); err != nil {
			return fail(in, err)
		}
	}
	in.SetResult(w.Name)
	return script.OK
}

func (g *Glue) buildWindow(w *Wall, in *script.Interp, ctx *script.Context, args []script.Value) script.Code {
	if err := g.requireContext("window", "wall"); err != nil {
		return fail(in, err)
	}
	if len(args) < 1 {
		return fail(in, fmt.Errorf("window: expected a name"))
	}
	win := &Window{Name: args[0].GetString()}
	w.Windows = append(w.Windows, win)
	if body, ok := bodyText(args, 1); ok {
		children := map[string]script.Proc{
			"display":  setter(&win.Display),
			"geometry": setter(&win.Geometry),
			"offset":   setter(&win.Offset),
			"err":      setter(&win.Err),
			"slave":    setter(&win.Slave),
			"viewport": setter(&win.Viewport),
			"distort":  setter(&win.Distort),
			"sync":     setter(&win.Sync),
			"async":    setter(&win.Async),
			"eye":      setter(&win.Eye),
		}
		if err := g.runBody(ctx, body, "window", children, &win.Options); err != nil {
			return fail(in, err)
		}
	}
	in.SetResult(win.Name)
	return script.OK
}

func (g *Glue) buildProfile(in *script.Interp, ctx *script.Context, args []script.Value) script.Code {
	if err := g.requireContext("profile"); err != nil {
		return fail(in, err)
	}
	if len(args) < 1 {
		return fail(in, fmt.Errorf("profile: expected a name"))
	}
	p := &Profile{Name: args[0].GetString(), Modules: map[string]*Module{}}
	g.Profiles[p.Name] = p
	if body, ok := bodyText(args, 1); ok {
		children := map[string]script.Proc{
			"fullname": setter(&p.FullName),
			"eyedist":  setter(&p.EyeDist),
			"module": script.External(func(in *script.Interp, ctx *script.Context, args []script.Value) script.Code {
				return g.buildModule(p, in, ctx, args)
			}),
		}
		if err := g.runBody(ctx, body, "profile", children, nil); err != nil {
			return fail(in, err)
		}
	}
	in.SetResult(p.Name)
	return script.OK
}

func (g *Glue) buildModule(p *Profile, in *script.Interp, ctx *script.Context, args []script.Value) script.Code {
	if err := g.requireContext("module", "profile"); err != nil {
		return fail(in, err)
	}
	if len(args) < 1 {
		return fail(in, fmt.Errorf("module: expected a name"))
	}
	m := &Module{Name: args[0].GetString(), Values: map[string]string{}}
	p.Modules[m.Name] = m
	if body, ok := bodyText(args, 1); ok {
		if err := g.runKeyValueBody(ctx, "module", body, func(name, value string) { m.Values[name] = value }); err != nil {
			return fail(in, err)
		}
	}
	in.SetResult(m.Name)
	return script.OK
}

func (g *Glue) buildAudioDevice(in *script.Interp, ctx *script.Context, args []script.Value) script.Code {
	if err := g.requireContext("audiodevice"); err != nil {
		return fail(in, err)
	}
	if len(args) < 2 {
		return fail(in, fmt.Errorf("audiodevice: expected a name and a driver"))
	}
	ad := &AudioDevice{Name: args[0].GetString(), Driver: args[1].GetString()}
	g.AudioDevices[ad.Name] = ad
	if body, ok := bodyText(args, 2); ok {
		if err := g.runKeyValueBody(ctx, "audiodevice", body, func(name, value string) {
			ad.Options = append(ad.Options, Option{Name: name, Value: value})
		}); err != nil {
			return fail(in, err)
		}
	}
	in.SetResult(ad.Name)
	return script.OK
}

func (g *Glue) buildAudio(in *script.Interp, ctx *script.Context, args []script.Value) script.Code {
	if err := g.requireContext("audio"); err != nil {
		return fail(in, err)
	}
	if len(args) < 1 {
		return fail(in, fmt.Errorf("audio: expected a name"))
	}
	a := &Audio{Name: args[0].GetString()}
	g.Audios[a.Name] = a
	if body, ok := bodyText(args, 1); ok {
		children := map[string]script.Proc{
			"engine": setter(&a.Engine),
			"output": script.External(func(in *script.Interp, ctx *script.Context, args []script.Value) script.Code {
				return g.buildOutput(a, in, ctx, args)
			}),
		}
		if err := g.runBody(ctx, body, "audio", children, &a.Options); err != nil {
			return fail(in, err)
		}
	}
	in.SetResult(a.Name)
	return script.OK
}

func (g *Glue) buildOutput(a *Audio, in *script.Interp, ctx *script.Context, args []script.Value) script.Code {
	if err := g.requireContext("output", "audio"); err != nil {
		return fail(in, err)
	}
	if len(args) < 1 {
		return fail(in, fmt.Errorf("output: expected a name"))
	}
	o := &AudioOutput{Name: args[0].GetString()}
	a.Outputs = append(a.Outputs, o)
	if body, ok := bodyText(args, 1); ok {
		children := map[string]script.Proc{
			"device": setter(&o.Device),
			"loc":    setter(&o.Loc),
			"dir":    setter(&o.Dir),
			"up":     setter(&o.Up),
		}
		if err := g.runBody(ctx, body, "output", children, &o.Options); err != nil {
			return fail(in, err)
		}
	}
	in.SetResult(o.Name)
	return script.OK
}

func (g *Glue) buildDevice(in *script.Interp, ctx *script.Context, args []script.Value) script.Code {
	if err := g.requireContext("device"); err != nil {
		return fail(in, err)
	}
	if len(args) < 2 {
		return fail(in, fmt.Errorf("device: expected a name and a type"))
	}
	d := &Device{Name: args[0].GetString(), Type: args[1].GetString()}
	g.Devices[d.Name] = d
	if body, ok := bodyText(args, 2); ok {
		if err := g.runKeyValueBody(ctx, "device", body, func(name, value string) {
			d.Options = append(d.Options, Option{Name: name, Value: value})
		}); err != nil {
			return fail(in, err)
		}
	}
	in.SetResult(d.Name)
	return script.OK
}

// buildUse implements "use <name> [[type] { options }]": it may declare
// and activate a device in one call, or activate a device already
// declared by `device` (spec §4.7 "declare vs. activate").
func (g *Glue) buildUse(in *script.Interp, ctx *script.Context, args []script.Value) script.Code {
	if err := g.requireContext("use"); err != nil {
		return fail(in, err)
	}
	if len(args) < 1 {
		return fail(in, fmt.Errorf("use: expected a name"))
	}
	name := args[0].GetString()
	u := &Use{Name: name}
	if existing, ok := g.Devices[name]; ok {
		u.Type = existing.Type
	}

	bodyIdx := 1
	switch len(args) {
	case 3:
		u.Type = args[1].GetString()
		bodyIdx = 2
	case 2:
		// A braced options body has no use as a bare identifier; a type
		// name does. Distinguish the lone second argument on that basis.
		if isBareWord(args[1].GetString()) {
			u.Type = args[1].GetString()
			bodyIdx = 2 // no body supplied.
		}
	}
	g.Uses[name] = u
	if body, ok := bodyText(args, bodyIdx); ok {
		if err := g.runKeyValueBody(ctx, "use", body, func(name, value string) {
			u.Options = append(u.Options, Option{Name: name, Value: value})
		}); err != nil {
			return fail(in, err)
		}
	}
	in.SetResult(name)
	return script.OK
}

// buildFilter registers a script body as a devpipe filter for devspec
// (spec §4.7 "filter <devspec> { body }"). The body runs with a
// variable "event" bound to the current event's opaque object; its
// final "return continue|deliver|discard|restart" line selects the
// disposition code. A body that errors is treated as FilterError,
// which the pipeline discards (spec §4.4).
func (g *Glue) buildFilter(in *script.Interp, ctx *script.Context, args []script.Value) script.Code {
	if len(args) != 2 {
		return fail(in, fmt.Errorf("filter: expected a device spec and a body"))
	}
	spec := device.ParseSpec(args[0].GetString())
	body := args[1].GetString()
	if g.Pipeline == nil {
		return fail(in, fmt.Errorf("filter: no pipeline wired"))
	}
	nested := ctx.PushNest()
	g.Pipeline.Filters.Add(spec, func(e device.Event, _ any) (device.Event, devpipe.FilterCode) {
		eventVal, data := g.newEvent(e)
		nested.Set("event", eventVal)
		code := g.In.EvalScript(nested, body)
		op, _ := eventVal.Opaque()
		defer g.In.Arena.Unref(op)
		if code == script.Error {
			return e, devpipe.FilterError
		}
		result := g.In.Result().GetString()
		resultEvent := data.ev
		switch result {
		case "discard":
			return resultEvent, devpipe.Discard
		case "deliver":
			return resultEvent, devpipe.Deliver
		case "restart":
			return resultEvent, devpipe.Restart
		default:
			return resultEvent, devpipe.Continue
		}
	}, nil, devpipe.Tail)
	in.SetResult(spec.String())
	return script.OK
}
