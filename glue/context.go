// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package glue

import (
	"fmt"
	"io"

	"github.com/veproj/ve/clock"
	"github.com/veproj/ve/devpipe"
	"github.com/veproj/ve/motion"
	"github.com/veproj/ve/script"
)

// Option is a free-form (name, value) pair collected from an "option"
// body by the glue layer's "unknown" hook (spec §4.7).
type Option struct {
	Name, Value string
}

// Env is a built VE environment: a named collection of walls plus
// free-form options (spec §4.7 "env <name> { desc | wall | option }").
type Env struct {
	Name    string
	Desc    string
	Walls   []*Wall
	Options []Option
}

// Wall is one surface of an environment, carrying the windows rendered
// onto it (spec §4.7 "wall <name> { desc | size | base | loc | dir | up
// | window | option }").
type Wall struct {
	Name    string
	Desc    string
	Size    string
	Base    string
	Loc     string
	Dir     string
	Up      string
	Windows []*Window
	Options []Option
}

// Window is one rendering surface within a wall (spec §4.7 "window
// <name> { display | geometry | offset | err | slave | viewport |
// distort | sync | async | eye | option }").
type Window struct {
	Name     string
	Display  string
	Geometry string
	Offset   string
	Err      string
	Slave    string
	Viewport string
	Distort  string
	Sync     string
	Async    string
	Eye      string
	Options  []Option
}

// Module is one named key/value table nested inside a Profile (spec
// §4.7 "module <name> { key value… }").
type Module struct {
	Name   string
	Values map[string]string
}

// Profile describes one tracked participant (spec §4.7 "profile <name>
// { fullname | eyedist | module <name> { key value… } }").
type Profile struct {
	Name     string
	FullName string
	EyeDist  string
	Modules  map[string]*Module
}

// AudioDevice names a driver-backed audio output device (spec §4.7
// "audiodevice <name> <driver> { options }").
type AudioDevice struct {
	Name    string
	Driver  string
	Options []Option
}

// AudioOutput is one speaker placement within an Audio engine (spec
// §4.7 "output <name> { device | loc | dir | up | option }").
type AudioOutput struct {
	Name    string
	Device  string
	Loc     string
	Dir     string
	Up      string
	Options []Option
}

// Audio is one sound engine instance (spec §4.7 "audio <name> { engine
// | output <name> {...} | option }").
type Audio struct {
	Name    string
	Engine  string
	Outputs []*AudioOutput
	Options []Option
}

// Driver names a plug-in backing a device type, loaded from path (spec
// §6 manifest grammar "driver <type> <name> <path>").
type Driver struct {
	Type string
	Name string
	Path string
}

// Device declares a named device instance of a driver type (spec §4.7
// "device <name> <type> [{ options }]").
type Device struct {
	Name    string
	Type    string
	Options []Option
}

// Use activates a previously (or simultaneously) declared device (spec
// §4.7 "use <name> [[type] { options }]").
type Use struct {
	Name    string
	Type    string
	Options []Option
}

// Glue holds every piece of builder state accumulated while a
// BlueScript environment file is evaluated: the manifest tables the
// DSL builders populate, the nesting stack that rejects misplaced
// builder calls, and the runtime pieces (filter pipeline, clock) the
// math-independent procs need (spec §4.7).
type Glue struct {
	In       *script.Interp
	Pipeline *devpipe.Pipeline
	Queue    *devpipe.Queue
	Clock    *clock.Clock

	// Motion gates mutations to Origin and Eye through the
	// application's policy callback (spec §4.8).
	Motion *motion.Gate

	stack []string

	Envs         map[string]*Env
	Profiles     map[string]*Profile
	AudioDevices map[string]*AudioDevice
	Audios       map[string]*Audio
	Drivers      map[string]*Driver
	Devices      map[string]*Device
	Uses         map[string]*Use

	Origin frameState
	Eye    frameState

	// OnRedisplay, if set, is called after a frame_origin/frame_eye
	// mutation (spec §4.7 "updates post a redisplay").
	OnRedisplay func()

	// Echo receives "echo" proc output; defaults to os.Stdout.
	Echo io.Writer

	// Exited and ExitMessage record an "exit" call; the top-level
	// script-loading loop checks Exited to distinguish a deliberate
	// exit from a real evaluation error.
	Exited      bool
	ExitMessage string
}

type frameState struct {
	Loc, Dir, Up [3]float64
}

func (fs *frameState) toFrame() motion.Frame {
	return motion.Frame{Loc: fs.Loc, Dir: fs.Dir, Up: fs.Up}
}

// New returns a Glue bound to in, dispatching filters through pipe and
// stamping event timestamps from clk.
func New(in *script.Interp, pipe *devpipe.Pipeline, clk *clock.Clock) *Glue {
	g := &Glue{
		In:           in,
		Pipeline:     pipe,
		Clock:        clk,
		Motion:       motion.NewGate(),
		Envs:         map[string]*Env{},
		Profiles:     map[string]*Profile{},
		AudioDevices: map[string]*AudioDevice{},
		Audios:       map[string]*Audio{},
		Drivers:      map[string]*Driver{},
		Devices:      map[string]*Device{},
		Uses:         map[string]*Use{},
	}
	g.Eye.Dir = [3]float64{0, 0, -1}
	g.Eye.Up = [3]float64{0, 1, 0}
	g.Origin.Dir = [3]float64{0, 0, -1}
	g.Origin.Up = [3]float64{0, 1, 0}
	return g
}

// push enters a nesting level; pop must be called (defer) once the
// corresponding body finishes evaluating.
func (g *Glue) push(kind string) { g.stack = append(g.stack, kind) }

func (g *Glue) pop() { g.stack = g.stack[:len(g.stack)-1] }

// current reports the nesting kind the builder call was made within,
// "" at top level.
func (g *Glue) current() string {
	if len(g.stack) == 0 {
		return ""
	}
	return g.stack[len(g.stack)-1]
}

// requireContext rejects a builder call made outside one of the given
// enclosing kinds (spec §4.7 "must be valid only within the correct
// nesting context"). want == nil means "top level only".
func (g *Glue) requireContext(name string, want ...string) error {
	cur := g.current()
	if len(want) == 0 {
		if cur != "" {
			return fmt.Errorf("glue: %q is not valid inside %q", name, cur)
		}
		return nil
	}
	for _, w := range want {
		if cur == w {
			return nil
		}
	}
	return fmt.Errorf("glue: %q is not valid inside %q", name, cur)
}

// runBody evaluates a builder's brace-delimited body in a context
// nested under parent, with child builder procs and an "option"
// sub-block installed; kind is pushed onto the nesting stack for the
// body's extent.
func (g *Glue) runBody(parent *script.Context, body script.Value, kind string, children map[string]script.Proc, options *[]Option) error {
	g.push(kind)
	defer g.pop()

	nested := parent.PushNest()
	for name, p := range children {
		nested.SetProc(name, p)
	}
	if options != nil {
		nested.SetProc("option", script.External(func(in *script.Interp, ctx *script.Context, args []script.Value) script.Code {
			return g.runOptionBody(ctx, args, options)
		}))
	}
	if code := g.In.EvalScript(nested, body.GetString()); code == script.Error {
		return fmt.Errorf("glue: %s", g.In.Result().GetString())
	}
	return nil
}

// runOptionBody implements the "option { ... }" sub-block: every line
// inside it that doesn't name a known proc falls through to the
// unknown hook and becomes a (name, value) Option (spec §4.7 "The
// glue layer's option-body parser uses the 'unknown' hook...").
func (g *Glue) runOptionBody(ctx *script.Context, args []script.Value, options *[]Option) script.Code {
	if len(args) != 1 {
		g.In.SetResult("option: expected a brace-delimited body")
		return script.Error
	}
	nested := ctx.PushNest()
	nested.SetUnknown(script.External(func(in *script.Interp, _ *script.Context, uargs []script.Value) script.Code {
		if len(uargs) == 0 {
			return script.OK
		}
		name := uargs[0].GetString()
		value := ""
		if len(uargs) > 1 {
			value = uargs[1].GetString()
		}
		*options = append(*options, Option{Name: name, Value: value})
		return script.OK
	}))
	if code := g.In.EvalScript(nested, args[0].GetString()); code == script.Error {
		return script.Error
	}
	return script.OK
}

func bodyText(args []script.Value, from int) (script.Value, bool) {
	if len(args) <= from {
		return script.Value{}, false
	}
	return args[from], true
}
