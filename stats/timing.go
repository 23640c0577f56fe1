// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package stats

import (
	"fmt"
	"io"
	"time"
)

// Timing collects one update cycle's loop numbers — elapsed time,
// update time, and events processed — and publishes each through a
// named Counter so a listener can watch them the same way it watches
// any other statistic. Applications are expected to track and smooth
// these per-update values over a number of updates.
type Timing struct {
	Elapsed time.Duration // Total loop time since last update.
	Update  time.Duration // Time used for previous state update.
	Events  int           // Device events processed since last update.

	elapsed, update, events *Counter
}

// NewTiming creates a Timing that reports into r under the given name
// prefix (e.g. "loop" yields "loop.elapsed_ms", "loop.update_ms",
// "loop.events").
func NewTiming(r *Registry, prefix string) *Timing {
	return &Timing{
		elapsed: r.Counter(prefix + ".elapsed_ms"),
		update:  r.Counter(prefix + ".update_ms"),
		events:  r.Counter(prefix + ".events"),
	}
}

// Zero clears the accumulated values; callers reset at the start of
// each update cycle.
func (t *Timing) Zero() {
	t.Update = 0
	t.Elapsed = 0
	t.Events = 0
}

// Publish sets each wired Counter to this cycle's values.
func (t *Timing) Publish() {
	t.elapsed.Set(float64(t.Elapsed.Milliseconds()))
	t.update.Set(float64(t.Update.Milliseconds()))
	t.events.Set(float64(t.Events))
}

// Dump writes the current cycle's numbers to w in milliseconds.
func (t *Timing) Dump(w io.Writer) {
	e := t.Elapsed.Seconds() * 1000.0
	u := t.Update.Seconds() * 1000.0
	fmt.Fprintf(w, "E:%2.4f U:%2.4f #:%d\n", e, u, t.Events)
}
