// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package clock provides a monotonic millisecond clock and a timer heap
// that schedules callbacks against it. The timer heap drives the
// animation/render loop: insertions wake a waiting goroutine, and a
// hybrid busy-wait/condvar sleep hides coarse OS scheduler granularity.
//
// Package clock is provided as part of the ve (virtual environment) runtime.
package clock

import "time"

// Clock returns elapsed milliseconds from a fixed per-process reference
// point. It is monotonic within a process: repeated calls never decrease.
type Clock struct {
	start time.Time
}

// New creates a clock referenced from the current instant.
func New() *Clock { return &Clock{start: time.Now()} }

// Now returns the current elapsed milliseconds since the clock's reference.
func (c *Clock) Now() int64 { return time.Since(c.start).Milliseconds() }
