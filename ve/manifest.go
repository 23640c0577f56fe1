// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package ve

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/veproj/ve/glue"
	"github.com/veproj/ve/script"
)

// DriverEntry is one "driver <type> <name> <path>" manifest line.
type DriverEntry struct {
	Type string `yaml:"type"`
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// DeviceEntry is one "device <name> <type> [{ options }]" manifest
// line. Options collapses the glue layer's ordered (name, value) pairs
// into a map, which is lossy only if a manifest repeats an option name
// — not a case the declarative (non-script) manifest format needs to
// support.
type DeviceEntry struct {
	Name    string            `yaml:"name"`
	Type    string            `yaml:"type"`
	Options map[string]string `yaml:"options,omitempty"`
}

// UseEntry is one "use <name> [[type] { options }]" manifest line.
type UseEntry struct {
	Name    string            `yaml:"name"`
	Type    string            `yaml:"type,omitempty"`
	Options map[string]string `yaml:"options,omitempty"`
}

// ManifestEntry is a Manifest's Go-native restatement of spec §6's
// "Manifest file: declarative entries — driver type name path, device
// name type [{ opts }], use name [[type] { opts }], filter devspec
// { body }". Exactly one of Driver/Device/Use is set per entry; filter
// entries are not representable here (a filter body is BlueScript, not
// declarative data) and remain BlueScript-only, loaded straight into a
// Glue's pipeline by LoadManifestScript.
type ManifestEntry struct {
	Driver *DriverEntry `yaml:"driver,omitempty"`
	Device *DeviceEntry `yaml:"device,omitempty"`
	Use    *UseEntry    `yaml:"use,omitempty"`
}

// Manifest is an ordered set of manifest entries, however they were
// loaded (§4.10: BlueScript is primary, YAML is an offered sibling for
// tooling that wants a structured, diffable format).
type Manifest struct {
	Entries []ManifestEntry
}

// manifestDoc is the on-disk YAML shape: a top-level "entries" list.
type manifestDoc struct {
	Entries []ManifestEntry `yaml:"entries"`
}

// LoadManifestYAML parses a YAML manifest using gopkg.in/yaml.v3 (spec
// §4.10), following the teacher's load/shd.go convention of reaching
// for that library for structured config rather than hand parsing.
func LoadManifestYAML(data []byte) (*Manifest, error) {
	var doc manifestDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &Manifest{Entries: doc.Entries}, nil
}

// LoadManifestScript evaluates src (the native BlueScript manifest
// format) against g, then reads back g's Drivers/Devices/Uses tables
// into the same ManifestEntry shape LoadManifestYAML produces (spec
// §4.10 "Both populate the same ve.ManifestEntry structs"). Any `filter`
// lines in src are left registered on g.Pipeline directly, since a
// filter body has no declarative representation.
func LoadManifestScript(g *glue.Glue, src string) (*Manifest, error) {
	if code := g.In.EvalScript(g.In.Global, src); code == script.Error {
		return nil, fmt.Errorf("manifest: %s", g.In.Result().GetString())
	}
	return ManifestFromGlue(g), nil
}

// ManifestFromGlue snapshots g's driver/device/use tables into a
// Manifest, independent of how they were populated.
func ManifestFromGlue(g *glue.Glue) *Manifest {
	m := &Manifest{}
	for _, d := range g.Drivers {
		m.Entries = append(m.Entries, ManifestEntry{Driver: &DriverEntry{Type: d.Type, Name: d.Name, Path: d.Path}})
	}
	for _, d := range g.Devices {
		m.Entries = append(m.Entries, ManifestEntry{Device: &DeviceEntry{Name: d.Name, Type: d.Type, Options: optionMap(d.Options)}})
	}
	for _, u := range g.Uses {
		m.Entries = append(m.Entries, ManifestEntry{Use: &UseEntry{Name: u.Name, Type: u.Type, Options: optionMap(u.Options)}})
	}
	return m
}

func optionMap(opts []glue.Option) map[string]string {
	if len(opts) == 0 {
		return nil
	}
	out := make(map[string]string, len(opts))
	for _, o := range opts {
		out[o.Name] = o.Value
	}
	return out
}
