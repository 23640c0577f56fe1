// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package parse

import (
	"errors"
	"strings"
)

// Kind names the syntactic shape of a parsed Node (spec §4.2 "Tokens and
// quoting").
type Kind int

const (
	Word     Kind = iota // a bareword, possibly embedding $var or [eval] for later substitution.
	String               // a "..." literal; Text has quotes stripped and \" \\ unescaped.
	List                 // a {...} list; Text is the raw, unevaluated inner source.
	EvalList             // a [...] eval-list; Text is the raw inner source, evaluated at use.
	Var                  // a $name or ${name} variable reference; Text is the bare name.
)

// Node is one parsed object within a line.
type Node struct {
	Kind Kind
	Text string
}

// ErrUnterminated is returned for an unclosed list, eval-list, or string,
// or a trailing backslash at EOF (spec §8 boundary behaviors).
var ErrUnterminated = errors.New("parse: unterminated construct")

// ParseLine parses one line's worth of whitespace-separated objects,
// consuming up to and including the line's trailing newline (or EOF).
func ParseLine(s *Source) ([]Node, error) {
	var nodes []Node
	for {
		s.SkipSpace()
		c := s.Getc()
		if c == eof {
			return nodes, nil
		}
		if c == '\n' {
			return nodes, nil
		}
		s.Ungetc(c)
		n, err := readObject(s)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
}

// ParseScript splits src into newline-separated lines of objects,
// discarding blank lines and lines whose first non-whitespace character
// is '#' (spec §4.2).
func ParseScript(s *Source) ([][]Node, error) {
	var lines [][]Node
	for {
		s.SkipSpace()
		c := s.Getc()
		if c == eof {
			return lines, nil
		}
		if c == '\n' {
			continue // blank line.
		}
		if c == '#' {
			for {
				c2 := s.Getc()
				if c2 == '\n' || c2 == eof {
					break
				}
			}
			continue
		}
		s.Ungetc(c)
		nodes, err := ParseLine(s)
		if err != nil {
			return nil, err
		}
		lines = append(lines, nodes)
	}
}

func readObject(s *Source) (Node, error) {
	c := s.Getc()
	switch c {
	case '{':
		body, err := scanBalanced(s, '{', '}')
		if err != nil {
			return Node{}, err
		}
		return Node{Kind: List, Text: body}, nil
	case '[':
		body, err := scanBalanced(s, '[', ']')
		if err != nil {
			return Node{}, err
		}
		return Node{Kind: EvalList, Text: body}, nil
	case '"':
		body, err := readString(s)
		if err != nil {
			return Node{}, err
		}
		return Node{Kind: String, Text: body}, nil
	case '$':
		next := s.Getc()
		if next == '{' {
			name, err := scanBalanced(s, '{', '}')
			if err != nil {
				return Node{}, err
			}
			return Node{Kind: Var, Text: name}, nil
		}
		s.Ungetc(next)
		return Node{Kind: Var, Text: readName(s)}, nil
	default:
		s.Ungetc(c)
		word, err := readWord(s)
		if err != nil {
			return Node{}, err
		}
		return Node{Kind: Word, Text: word}, nil
	}
}

// scanBalanced reads until the matching close rune at depth 0, assuming
// the opening rune was already consumed. Brace/bracket counting ignores
// characters inside "..." strings and characters escaped with \, per
// spec §4.2 ("string contents are not further scanned except for \
// escaping of \" and \", and balanced brace counting tracks nested
// lists/eval-lists/strings/variables).
func scanBalanced(s *Source, open, close rune) (string, error) {
	depth := 1
	var buf strings.Builder
	for {
		c := s.Getc()
		if c == eof {
			return "", ErrUnterminated
		}
		switch {
		case c == '"':
			buf.WriteRune(c)
			str, err := readRawString(s, &buf)
			if err != nil {
				return "", err
			}
			_ = str
		case c == '\\':
			next := s.Getc()
			if next == eof {
				return "", ErrUnterminated
			}
			buf.WriteRune(c)
			buf.WriteRune(next)
		case c == open:
			depth++
			buf.WriteRune(c)
		case c == close:
			depth--
			if depth == 0 {
				return buf.String(), nil
			}
			buf.WriteRune(c)
		default:
			buf.WriteRune(c)
		}
	}
}

// readRawString consumes a string literal's body and closing quote into
// buf verbatim (used while scanning a list/eval-list body, where string
// contents must not affect brace counting but the quotes themselves are
// kept so the surrounding list's raw text round-trips).
func readRawString(s *Source, buf *strings.Builder) (string, error) {
	for {
		c := s.Getc()
		if c == eof {
			return "", ErrUnterminated
		}
		buf.WriteRune(c)
		if c == '\\' {
			next := s.Getc()
			if next == eof {
				return "", ErrUnterminated
			}
			buf.WriteRune(next)
			continue
		}
		if c == '"' {
			return buf.String(), nil
		}
	}
}

// readString reads a string literal's content (opening quote already
// consumed), unescaping \" and \\ only; other backslash sequences are
// kept literally, per spec §4.2.
func readString(s *Source) (string, error) {
	var buf strings.Builder
	for {
		c := s.Getc()
		if c == eof {
			return "", ErrUnterminated
		}
		if c == '\\' {
			next := s.Getc()
			if next == eof {
				return "", ErrUnterminated
			}
			switch next {
			case '"':
				buf.WriteRune('"')
			case '\\':
				buf.WriteRune('\\')
			default:
				buf.WriteRune('\\')
				buf.WriteRune(next)
			}
			continue
		}
		if c == '"' {
			return buf.String(), nil
		}
		buf.WriteRune(c)
	}
}

// readWord reads a bareword: a run of non-whitespace characters. A
// backslash escapes the following character (kept literally, backslash
// included) except a backslash-newline, which terminates the word as
// whitespace (spec §4.2). A trailing backslash at EOF is an error
// (spec §8 boundary behavior).
func readWord(s *Source) (string, error) {
	var buf strings.Builder
	for {
		c := s.Getc()
		if c == eof {
			break
		}
		if c == '\n' {
			s.Ungetc(c)
			break
		}
		if c == '\\' {
			next := s.Getc()
			if next == eof {
				return "", ErrUnterminated
			}
			if next == '\n' {
				break // escaped newline is whitespace: ends the word here.
			}
			buf.WriteRune(c)
			buf.WriteRune(next)
			continue
		}
		if isSpace(c) {
			s.Ungetc(c)
			break
		}
		buf.WriteRune(c)
	}
	return buf.String(), nil
}

// readName reads a bare variable name: letters, digits, and underscore.
func readName(s *Source) string {
	var buf strings.Builder
	for {
		c := s.Getc()
		if c == eof {
			break
		}
		if !isNameChar(c) {
			s.Ungetc(c)
			break
		}
		buf.WriteRune(c)
	}
	return buf.String()
}

func isNameChar(c rune) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}
