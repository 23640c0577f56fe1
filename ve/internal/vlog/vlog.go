// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package vlog is a small level-gated shim around the standard log
// package (spec §4.9). The teacher logs straight through log.Printf at
// points it considers a "design error to be caught during development"
// (see eid.go); this module keeps that convention rather than adopting
// a structured-logging library, adding only the level gate VEDEBUG and
// the abort/exit choice VE_ABORT_ON_FATAL require.
package vlog

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
)

// Level selects which Debug/Warn calls reach the log.
type Level int

const (
	LevelOff Level = iota
	LevelWarn
	LevelDebug
)

// Logger is a level-gated wrapper around *log.Logger.
type Logger struct {
	level        Level
	abortOnFatal bool
	out          *log.Logger
}

// New returns a Logger reading its level from the VEDEBUG environment
// convention (spec §6 "VEDEBUG (int debug level or name=level,...)")
// and its fatal behavior from VE_ABORT_ON_FATAL (spec §7).
func New() *Logger {
	return &Logger{
		level:        levelFromEnv(os.Getenv("VEDEBUG")),
		abortOnFatal: os.Getenv("VE_ABORT_ON_FATAL") != "",
		out:          log.Default(),
	}
}

// levelFromEnv parses VEDEBUG's two accepted forms: a bare integer
// ("0", "1", "2", ...) or a "name=level,..." list, of which only the
// highest level across all names is kept (this package has no named
// subsystems to filter by, so a name=level entry's level still gates
// the single global Logger).
func levelFromEnv(v string) Level {
	if v == "" {
		return LevelOff
	}
	if n, err := strconv.Atoi(v); err == nil {
		return levelFromInt(n)
	}
	best := LevelOff
	for _, pair := range strings.Split(v, ",") {
		_, rhs, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(rhs); err == nil {
			if l := levelFromInt(n); l > best {
				best = l
			}
		}
	}
	return best
}

func levelFromInt(n int) Level {
	switch {
	case n >= 2:
		return LevelDebug
	case n == 1:
		return LevelWarn
	default:
		return LevelOff
	}
}

// Debug logs at the most verbose level.
func (l *Logger) Debug(format string, args ...any) {
	if l.level >= LevelDebug {
		l.out.Printf("debug: "+format, args...)
	}
}

// Warn logs a recoverable problem.
func (l *Logger) Warn(format string, args ...any) {
	if l.level >= LevelWarn {
		l.out.Printf("warning: "+format, args...)
	}
}

// Fatal logs an unrecoverable error and stops the process. With
// VE_ABORT_ON_FATAL set it panics (so a recovered top-level handler, or
// the runtime's own crash handler, can produce a core dump per spec
// §7's "abort() to retain core dumps"); otherwise it prints and calls
// os.Exit(1) directly, matching §7's plain "fatal error: ... and exits".
func (l *Logger) Fatal(format string, args ...any) {
	msg := "fatal error: " + format
	if l.abortOnFatal {
		l.out.Printf(msg, args...)
		panic(fmt.Sprintf(msg, args...))
	}
	l.out.Printf(msg, args...)
	os.Exit(1)
}
