// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package ve

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/veproj/ve/clock"
	"github.com/veproj/ve/devpipe"
	"github.com/veproj/ve/glue"
	"github.com/veproj/ve/script"
)

func newTestGlue() *glue.Glue {
	in := script.New()
	g := glue.New(in, devpipe.NewPipeline(nil), clock.New())
	g.Register()
	return g
}

func TestLoadManifestYAMLParsesDriverDeviceAndUseEntries(t *testing.T) {
	src := `entries:
  - driver:
      type: tracker
      name: polhemus
      path: /opt/ve/drivers/polhemus.so
  - device:
      name: wand
      type: tracker
      options:
        serial: "/dev/ttyS0"
  - use:
      name: wand
`
	m, err := LoadManifestYAML([]byte(src))
	require.NoError(t, err)
	require.Len(t, m.Entries, 3)

	require.NotNil(t, m.Entries[0].Driver)
	require.Equal(t, "polhemus", m.Entries[0].Driver.Name)
	require.Equal(t, "tracker", m.Entries[0].Driver.Type)

	require.NotNil(t, m.Entries[1].Device)
	require.Equal(t, "wand", m.Entries[1].Device.Name)
	require.Equal(t, "/dev/ttyS0", m.Entries[1].Device.Options["serial"])

	require.NotNil(t, m.Entries[2].Use)
	require.Equal(t, "wand", m.Entries[2].Use.Name)
}

func TestLoadManifestScriptPopulatesSameEntryShapeAsYAML(t *testing.T) {
	g := newTestGlue()
	src := "driver tracker polhemus /opt/ve/drivers/polhemus.so\n" +
		"device wand tracker\n" +
		"use wand\n"
	m, err := LoadManifestScript(g, src)
	require.NoError(t, err)
	require.Len(t, m.Entries, 3)

	var sawDriver, sawDevice, sawUse bool
	for _, e := range m.Entries {
		switch {
		case e.Driver != nil:
			sawDriver = true
			require.Equal(t, "polhemus", e.Driver.Name)
		case e.Device != nil:
			sawDevice = true
			require.Equal(t, "wand", e.Device.Name)
		case e.Use != nil:
			sawUse = true
			require.Equal(t, "wand", e.Use.Name)
		}
	}
	require.True(t, sawDriver && sawDevice && sawUse)
}

func TestLoadManifestScriptReturnsErrorOnBadScript(t *testing.T) {
	g := newTestGlue()
	_, err := LoadManifestScript(g, "wall front\n")
	require.Error(t, err)
}

func TestManifestFromGlueCollapsesOptionsIntoMap(t *testing.T) {
	g := newTestGlue()
	src := "device wand tracker { serial wand0 rate 60 }\n"
	require.Equal(t, script.OK, g.In.EvalScript(g.In.Global, src))

	m := ManifestFromGlue(g)
	require.Len(t, m.Entries, 1)
	require.Equal(t, "wand0", m.Entries[0].Device.Options["serial"])
	require.Equal(t, "60", m.Entries[0].Device.Options["rate"])
}
