// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package glue

// Register installs every glue proc — math, DSL builders, the event
// object, and the control procs — into g's interpreter (spec §4.7).
func (g *Glue) Register() {
	RegisterMath(g.In)
	g.RegisterDSL()
	g.RegisterEvent()
	g.RegisterControl()
}
