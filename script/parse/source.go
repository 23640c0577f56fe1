// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package parse provides the BlueScript tokenizer's input abstraction: a
// unified string/file source with 2-deep pushback, whitespace skipping,
// and line/column tracking (spec §4.2 "Parse source").
//
// Package parse is provided as part of the ve (virtual environment)
// runtime's script subsystem.
package parse

import (
	"bufio"
	"io"
)

// eof is returned by getc when the source is exhausted.
const eof = rune(-1)

// Source abstracts a string or a file into a rune stream with up-to-2-deep
// ungetc, matching spec §4.2's ParseSource.
type Source struct {
	r       *bufio.Reader
	pushed  [2]rune
	npushed int
	line    int
	col     int
}

// NewString creates a source that reads from an in-memory string.
func NewString(s string) *Source {
	return newSource(bufio.NewReader(stringsReader(s)))
}

// NewReader creates a source that reads from an arbitrary io.Reader
// (typically a file opened by the caller).
func NewReader(r io.Reader) *Source {
	return newSource(bufio.NewReader(r))
}

func newSource(r *bufio.Reader) *Source {
	return &Source{r: r, line: 1, col: 0}
}

// stringsReader avoids importing strings just for NewReader(strings.NewReader(s))
// at every call site.
func stringsReader(s string) io.Reader { return &stringReaderImpl{s: s} }

type stringReaderImpl struct {
	s string
	i int
}

func (sr *stringReaderImpl) Read(p []byte) (int, error) {
	if sr.i >= len(sr.s) {
		return 0, io.EOF
	}
	n := copy(p, sr.s[sr.i:])
	sr.i += n
	return n, nil
}

// Getc returns the next rune, or eof at end of input.
func (s *Source) Getc() rune {
	if s.npushed > 0 {
		s.npushed--
		c := s.pushed[s.npushed]
		s.advance(c)
		return c
	}
	r, _, err := s.r.ReadRune()
	if err != nil {
		return eof
	}
	s.advance(r)
	return r
}

// Ungetc pushes c back onto the stream. At most 2 deep (spec §4.2).
func (s *Source) Ungetc(c rune) {
	if s.npushed >= 2 {
		return // caller error: more than 2-deep pushback requested.
	}
	s.pushed[s.npushed] = c
	s.npushed++
	s.retreat(c)
}

func (s *Source) advance(c rune) {
	if c == '\n' {
		s.line++
		s.col = 0
	} else {
		s.col++
	}
}

func (s *Source) retreat(c rune) {
	if c == '\n' {
		s.line--
	} else if s.col > 0 {
		s.col--
	}
}

// Pos returns the current 1-based line and column.
func (s *Source) Pos() (line, col int) { return s.line, s.col }

// SkipSpace consumes whitespace. A backslash-newline ("\\\n") is treated
// as whitespace even inside names, per spec §4.2; it is NOT treated that
// way inside string literals (escaping is handled by the caller there —
// see spec §9 design notes on this exact ambiguity, resolved here in
// favor of the tokenizer's documented behavior for names).
func (s *Source) SkipSpace() {
	for {
		c := s.Getc()
		switch {
		case c == eof:
			return
		case c == '\\':
			next := s.Getc()
			if next == '\n' {
				continue // backslash-newline is whitespace.
			}
			s.Ungetc(next)
			s.Ungetc(c)
			return
		case isSpace(c):
			continue
		default:
			s.Ungetc(c)
			return
		}
	}
}

// AtEOF reports whether the next Getc would return eof, without
// consuming input it didn't already buffer.
func (s *Source) AtEOF() bool {
	c := s.Getc()
	if c == eof {
		return true
	}
	s.Ungetc(c)
	return false
}

func isSpace(c rune) bool {
	return c == ' ' || c == '\t' || c == '\r'
}
