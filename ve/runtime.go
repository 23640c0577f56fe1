// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package ve

import (
	"fmt"
	"strings"
	"sync"

	"github.com/veproj/ve/clock"
	"github.com/veproj/ve/device"
	"github.com/veproj/ve/devpipe"
	"github.com/veproj/ve/glue"
	"github.com/veproj/ve/motion"
	"github.com/veproj/ve/script"
	"github.com/veproj/ve/stats"
	"github.com/veproj/ve/ve/internal/vlog"
)

// Runtime wires the clock, device registry, event pipeline, BlueScript
// interpreter, script-to-VE glue, motion gate, and statistics registry
// into the single process-wide instance spec.md §5 describes: "Device
// manifest, global proc table, statistics list, and current env/profile
// are process-wide and guarded by their own mutexes." New constructs
// this wiring but starts nothing, mirroring the teacher's vu.New
// "construct, do not implicitly start" contract (see eng.go, vu.go).
type Runtime struct {
	Config *Config
	Clock  *clock.Clock
	Stats  *stats.Registry
	Log    *vlog.Logger

	Devices  *device.Registry
	Pipeline *devpipe.Pipeline
	Queue    *devpipe.Queue
	Interp   *script.Interp
	Glue     *glue.Glue
	Motion   *motion.Gate

	mu          sync.Mutex
	manifest    *Manifest
	curEnv      string
	curProfile  string
}

// New constructs a Runtime from cfg without loading a manifest or
// starting any loop. Call LoadManifest, then Run or drive the pipeline
// manually.
func New(cfg *Config) *Runtime {
	devices := device.NewRegistry()
	pipe := devpipe.NewPipeline(devices)
	in := script.New()
	clk := clock.New()
	g := glue.New(in, pipe, clk)
	g.Queue = devpipe.NewQueue()
	g.Register()

	return &Runtime{
		Config:   cfg,
		Clock:    clk,
		Stats:    stats.New(),
		Log:      vlog.New(),
		Devices:  devices,
		Pipeline: pipe,
		Queue:    g.Queue,
		Interp:   in,
		Glue:     g,
		Motion:   g.Motion,
	}
}

// LoadManifestFile loads either a YAML or a BlueScript manifest,
// selecting the format from the file contents: if the first line that is
// neither blank nor a '#' comment starts with "entries:", the source is
// YAML, otherwise it is evaluated as BlueScript against r.Glue (spec §4.10 "BlueScript is primary, YAML is an offered
// sibling").
func (r *Runtime) LoadManifestFile(src []byte) error {
	if looksLikeYAML(src) {
		m, err := LoadManifestYAML(src)
		if err != nil {
			return fmt.Errorf("manifest: %w", err)
		}
		r.mu.Lock()
		r.manifest = m
		r.mu.Unlock()
		return nil
	}
	m, err := LoadManifestScript(r.Glue, string(src))
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.manifest = m
	r.mu.Unlock()
	return nil
}

func looksLikeYAML(src []byte) bool {
	for _, line := range strings.Split(string(src), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line[0] == '#' {
			continue
		}
		return strings.HasPrefix(line, "entries:")
	}
	return false
}

// Manifest returns the most recently loaded manifest, or nil.
func (r *Runtime) Manifest() *Manifest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.manifest
}

// SetCurrentEnv records the active environment name (spec §5 "current
// env/profile are process-wide"). It does not itself apply the
// environment; a caller applies env/wall/window state after recording
// which one is current.
func (r *Runtime) SetCurrentEnv(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.curEnv = name
}

// CurrentEnv returns the active environment name, or "" if none was set.
func (r *Runtime) CurrentEnv() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.curEnv
}

// SetCurrentProfile records the active participant profile name.
func (r *Runtime) SetCurrentProfile(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.curProfile = name
}

// CurrentProfile returns the active participant profile name, or "" if
// none was set.
func (r *Runtime) CurrentProfile() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.curProfile
}

// singleton holds the one process-wide Runtime, matching the teacher's
// single-call-on-startup convention: Start panics on a second call
// rather than silently layering a second runtime over the same global
// tables the spec calls process-wide.
var (
	singletonMu sync.Mutex
	singleton   *Runtime
)

// Start constructs the process-wide Runtime from argv (via Init) and
// installs it as the value Current returns. It is expected to be called
// once on application startup, mirroring vu.New's contract.
func Start(argv []string) (*Runtime, []string) {
	cfg, rest := Init(argv)
	r := New(cfg)

	singletonMu.Lock()
	defer singletonMu.Unlock()
	if singleton != nil {
		panic("ve: Start called more than once")
	}
	singleton = r
	return r, rest
}

// Current returns the process-wide Runtime installed by Start, or nil
// if Start has not been called.
func Current() *Runtime {
	singletonMu.Lock()
	defer singletonMu.Unlock()
	return singleton
}

// resetSingletonForTest clears the process-wide Runtime. Test-only.
func resetSingletonForTest() {
	singletonMu.Lock()
	defer singletonMu.Unlock()
	singleton = nil
}
