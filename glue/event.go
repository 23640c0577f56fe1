// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package glue

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/veproj/ve/device"
	"github.com/veproj/ve/devpipe"
	"github.com/veproj/ve/script"
)

// eventData is the payload behind an "event" opaque: the event itself
// plus the object-command name it was registered under.
type eventData struct {
	name string
	ev   device.Event
}

// eventDriver implements script.OpaqueDriver for event objects. Its
// MakeRep returns the object's own command name — following the
// teacher's object-command convention, a command-dispatch proc is
// registered under that same name when the object is created, so
// "$e type" resolves $e to its command name and calls through to the
// dispatcher (spec §4.7 "its driver's proc exposes methods").
type eventDriver struct {
	g *Glue
}

func (d *eventDriver) MakeRep(data any) string { return data.(*eventData).name }

func (d *eventDriver) Destroy(data any) {
	d.g.In.Global.RemoveProc(data.(*eventData).name)
}

var eventSeq uint64

// NewEventValue constructs a script Value wrapping ev as an "event"
// object, registering its per-object dispatch command in the
// interpreter's global table (spec §4.7 "event <type>").
func (g *Glue) NewEventValue(ev device.Event) script.Value {
	v, _ := g.newEvent(ev)
	return v
}

// newEvent is NewEventValue plus direct access to the backing
// eventData, for callers (the filter builder) that need to read the
// event back out after running script against it without going through
// the opaque's method dispatch.
func (g *Glue) newEvent(ev device.Event) (script.Value, *eventData) {
	name := fmt.Sprintf("event%d", atomic.AddUint64(&eventSeq, 1))
	data := &eventData{name: name, ev: ev}
	op := g.In.Arena.New(&eventDriver{g: g}, data)
	g.In.Global.SetProc(name, script.External(func(in *script.Interp, ctx *script.Context, args []script.Value) script.Code {
		return g.dispatchEvent(data, in, args)
	}))
	return script.NewOpaque(op), data
}

// RegisterEvent installs the "event <type>" constructor.
func (g *Glue) RegisterEvent() {
	g.In.DefProc("event", script.External(func(in *script.Interp, ctx *script.Context, args []script.Value) script.Code {
		if len(args) != 1 {
			in.SetResult("event: expected a content type")
			return script.Error
		}
		content, err := zeroContent(args[0].GetString())
		if err != nil {
			return fail(in, err)
		}
		ev := device.Event{TimestampMs: g.Clock.Now(), Content: content}
		in.SetValue(g.NewEventValue(ev))
		return script.OK
	}))
}

func zeroContent(kind string) (device.Content, error) {
	switch kind {
	case "trigger":
		return device.Trigger{}, nil
	case "switch":
		return device.Switch{}, nil
	case "valuator":
		return device.Valuator{}, nil
	case "vector":
		return device.NewVector(3), nil
	case "keyboard":
		return device.Keyboard{}, nil
	default:
		return nil, fmt.Errorf("event: unknown content type %q", kind)
	}
}

// dispatchEvent implements the method table spec §4.7 lists on an
// event object's driver proc.
func (g *Glue) dispatchEvent(d *eventData, in *script.Interp, args []script.Value) script.Code {
	if len(args) == 0 {
		in.SetResult("event: expected a method name")
		return script.Error
	}
	method := args[0].GetString()
	rest := args[1:]
	switch method {
	case "type":
		if len(rest) == 0 {
			in.SetResult(d.ev.Content.Kind())
			return script.OK
		}
		content, err := recast(d.ev.Content, rest[0].GetString())
		if err != nil {
			return fail(in, err)
		}
		d.ev.Content = content
		return script.OK
	case "timestamp":
		return getSetInt64(in, rest, &d.ev.TimestampMs)
	case "device":
		return getSetString(in, rest, &d.ev.Device)
	case "elem":
		return getSetString(in, rest, &d.ev.Element)
	case "index":
		return getSetInt32(in, rest, &d.ev.Index)
	case "state":
		sw, ok := d.ev.Content.(device.Switch)
		if !ok {
			return fail(in, fmt.Errorf("event: state is only valid on a switch"))
		}
		if len(rest) == 0 {
			in.SetResult(strconv.FormatBool(sw.State))
			return script.OK
		}
		sw.State = rest[0].GetString() == "true" || rest[0].GetString() == "1"
		d.ev.Content = sw
		return script.OK
	case "key":
		kb, ok := d.ev.Content.(device.Keyboard)
		if !ok {
			return fail(in, fmt.Errorf("event: key is only valid on a keyboard element"))
		}
		if len(rest) == 0 {
			in.SetIntResult(int64(kb.Key))
			return script.OK
		}
		k, err := rest[0].GetInt()
		if err != nil {
			return fail(in, err)
		}
		kb.Key = int32(k)
		d.ev.Content = kb
		return script.OK
	case "min", "max", "value":
		return g.dispatchValuatorField(in, d, method, rest)
	case "vmin", "vmax", "vvalue":
		return g.dispatchVectorField(in, d, method, rest)
	case "copy":
		in.SetValue(g.NewEventValue(d.ev.Copy()))
		return script.OK
	case "push":
		pos := devpipe.Tail
		if len(rest) > 0 && rest[0].GetString() == "head" {
			pos = devpipe.Head
		}
		g.pushEvent(d.ev, pos)
		return script.OK
	case "rename":
		if len(rest) != 1 {
			return fail(in, fmt.Errorf("event: rename expects dev.elem"))
		}
		dev, elem, ok := strings.Cut(rest[0].GetString(), ".")
		if !ok {
			return fail(in, fmt.Errorf("event: rename expects dev.elem"))
		}
		d.ev.Device, d.ev.Element = dev, elem
		return script.OK
	case "dump":
		in.SetResult(fmt.Sprintf("%s.%s[%d] %s@%d", d.ev.Device, d.ev.Element, d.ev.Index, d.ev.Content.Kind(), d.ev.TimestampMs))
		return script.OK
	default:
		return fail(in, fmt.Errorf("event: unknown method %q", method))
	}
}

func (g *Glue) dispatchValuatorField(in *script.Interp, d *eventData, field string, rest []script.Value) script.Code {
	v, ok := d.ev.Content.(device.Valuator)
	if !ok {
		return fail(in, fmt.Errorf("event: %s is only valid on a valuator", field))
	}
	target := map[string]*float32{"min": &v.Min, "max": &v.Max, "value": &v.Value}[field]
	if len(rest) == 0 {
		in.SetFloatResult(float64(*target))
		return script.OK
	}
	f, err := rest[0].GetFloat()
	if err != nil {
		return fail(in, err)
	}
	*target = float32(f)
	d.ev.Content = v
	return script.OK
}

func (g *Glue) dispatchVectorField(in *script.Interp, d *eventData, field string, rest []script.Value) script.Code {
	vec, ok := d.ev.Content.(device.Vector)
	if !ok {
		return fail(in, fmt.Errorf("event: %s is only valid on a vector", field))
	}
	if len(rest) == 0 {
		return fail(in, fmt.Errorf("event: %s expects a slot index", field))
	}
	idx, err := rest[0].GetInt()
	if err != nil {
		return fail(in, err)
	}
	slot := vec.At(int(idx))
	var target *float32
	switch field {
	case "vmin":
		target = &slot.Min
	case "vmax":
		target = &slot.Max
	case "vvalue":
		target = &slot.Value
	}
	if len(rest) == 1 {
		in.SetFloatResult(float64(*target))
		return script.OK
	}
	f, err := rest[1].GetFloat()
	if err != nil {
		return fail(in, err)
	}
	*target = float32(f)
	d.ev.Content = vec.WithValue(int(idx), slot)
	return script.OK
}

// recast rebuilds content as kind, carrying state across switch<->valuator
// via a 0.5 threshold (spec §4.7 "switch<->valuator via threshold/value").
func recast(cur device.Content, kind string) (device.Content, error) {
	switch kind {
	case "trigger":
		return device.Trigger{}, nil
	case "switch":
		switch c := cur.(type) {
		case device.Switch:
			return c, nil
		case device.Valuator:
			return device.Switch{State: c.Value >= 0.5}, nil
		default:
			return device.Switch{}, nil
		}
	case "valuator":
		switch c := cur.(type) {
		case device.Valuator:
			return c, nil
		case device.Switch:
			v := float32(0)
			if c.State {
				v = 1
			}
			return device.Valuator{Value: v}, nil
		default:
			return device.Valuator{}, nil
		}
	case "vector":
		if c, ok := cur.(device.Vector); ok {
			return c, nil
		}
		return device.NewVector(3), nil
	case "keyboard":
		if c, ok := cur.(device.Keyboard); ok {
			return c, nil
		}
		return device.Keyboard{}, nil
	default:
		return nil, fmt.Errorf("event: unknown content type %q", kind)
	}
}

func getSetString(in *script.Interp, rest []script.Value, target *string) script.Code {
	if len(rest) == 0 {
		in.SetResult(*target)
		return script.OK
	}
	*target = rest[0].GetString()
	return script.OK
}

func getSetInt64(in *script.Interp, rest []script.Value, target *int64) script.Code {
	if len(rest) == 0 {
		in.SetIntResult(*target)
		return script.OK
	}
	n, err := rest[0].GetInt()
	if err != nil {
		return fail(in, err)
	}
	*target = n
	return script.OK
}

func getSetInt32(in *script.Interp, rest []script.Value, target *int32) script.Code {
	if len(rest) == 0 {
		in.SetIntResult(int64(*target))
		return script.OK
	}
	n, err := rest[0].GetInt()
	if err != nil {
		return fail(in, err)
	}
	*target = int32(n)
	return script.OK
}

// pushEvent submits ev to the pipeline's queue if one is wired,
// otherwise straight into the pipeline (spec §4.7 "push [head|tail]").
func (g *Glue) pushEvent(ev device.Event, pos devpipe.Position) {
	if g.Queue != nil {
		if pos == devpipe.Head {
			g.Queue.PushHead(ev, devpipe.DispContinue)
		} else {
			g.Queue.PushTail(ev, devpipe.DispContinue)
		}
		return
	}
	if g.Pipeline != nil {
		g.Pipeline.ProcessEvent(ev)
	}
}
