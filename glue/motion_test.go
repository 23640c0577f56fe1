// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package glue

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/veproj/ve/motion"
	"github.com/veproj/ve/script"
)

func TestFrameEyeDefaultsToAcceptWithNoPolicy(t *testing.T) {
	g := newGlue()
	code := g.In.EvalScript(g.In.Global, "frame_eye loc {1 2 3}\n")
	require.Equal(t, script.OK, code, g.In.Result().GetString())
	require.Equal(t, [3]float64{1, 2, 3}, g.Eye.Loc)
}

func TestFrameOriginRejectedByPolicyLeavesStateUnchanged(t *testing.T) {
	g := newGlue()
	g.Motion.SetCallback(motion.RejectAll)
	before := g.Origin.Loc
	code := g.In.EvalScript(g.In.Global, "frame_origin loc {9 9 9}\n")
	require.Equal(t, script.Error, code)
	require.Equal(t, before, g.Origin.Loc)
}

func TestFrameEyeRedisplayFiresOnAcceptedMotion(t *testing.T) {
	g := newGlue()
	fired := false
	g.OnRedisplay = func() { fired = true }
	code := g.In.EvalScript(g.In.Global, "frame_eye up {0 0 1}\n")
	require.Equal(t, script.OK, code)
	require.True(t, fired)
}
