// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package parse

import "testing"

func TestParseLineWords(t *testing.T) {
	nodes, err := ParseLine(NewString("set x 3\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"set", "x", "3"}
	if len(nodes) != len(want) {
		t.Fatalf("expected %d nodes, got %d: %+v", len(want), len(nodes), nodes)
	}
	for i, w := range want {
		if nodes[i].Kind != Word || nodes[i].Text != w {
			t.Errorf("node %d: expected Word %q, got %+v", i, w, nodes[i])
		}
	}
}

func TestParseLineList(t *testing.T) {
	nodes, err := ParseLine(NewString("expr {$x + $y}\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d: %+v", len(nodes), nodes)
	}
	if nodes[1].Kind != List || nodes[1].Text != "$x + $y" {
		t.Errorf("expected list body %q, got %+v", "$x + $y", nodes[1])
	}
}

func TestParseLineEmptyList(t *testing.T) {
	nodes, err := ParseLine(NewString("set x {}\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 3 || nodes[2].Kind != List || nodes[2].Text != "" {
		t.Errorf("expected empty list object, got %+v", nodes)
	}
}

func TestParseLineNestedList(t *testing.T) {
	nodes, err := ParseLine(NewString("proc {{a b} {c d}}\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 2 || nodes[1].Kind != List || nodes[1].Text != "{a b} {c d}" {
		t.Errorf("expected nested list body, got %+v", nodes)
	}
}

func TestParseLineEvalList(t *testing.T) {
	nodes, err := ParseLine(NewString("set x [expr 1 + 2]\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 3 || nodes[2].Kind != EvalList || nodes[2].Text != "expr 1 + 2" {
		t.Errorf("expected eval-list body, got %+v", nodes)
	}
}

func TestParseLineString(t *testing.T) {
	nodes, err := ParseLine(NewString(`echo "hello \"there\""` + "\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 2 || nodes[1].Kind != String || nodes[1].Text != `hello "there"` {
		t.Errorf("expected unescaped string, got %+v", nodes)
	}
}

func TestParseLineVarBare(t *testing.T) {
	nodes, err := ParseLine(NewString("echo $name\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 2 || nodes[1].Kind != Var || nodes[1].Text != "name" {
		t.Errorf("expected var name, got %+v", nodes)
	}
}

func TestParseLineVarBraced(t *testing.T) {
	nodes, err := ParseLine(NewString("echo ${full name}\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 2 || nodes[1].Kind != Var || nodes[1].Text != "full name" {
		t.Errorf("expected braced var name, got %+v", nodes)
	}
}

func TestParseLineStringWithEmbeddedBraceNotCounted(t *testing.T) {
	// The quoted "}" must not affect the outer list's brace counting.
	nodes, err := ParseLine(NewString(`wrap {"}" a}` + "\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 2 || nodes[1].Kind != List || nodes[1].Text != `"}" a` {
		t.Errorf("expected list body to ignore quoted brace, got %+v", nodes)
	}
}

func TestParseLineEscapedBraceNotCounted(t *testing.T) {
	nodes, err := ParseLine(NewString(`wrap {\} a}` + "\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 2 || nodes[1].Kind != List || nodes[1].Text != `\} a` {
		t.Errorf("expected list body to keep escaped brace, got %+v", nodes)
	}
}

func TestParseLineUnterminatedListIsError(t *testing.T) {
	_, err := ParseLine(NewString("wrap {a b\n"))
	if err != ErrUnterminated {
		t.Errorf("expected ErrUnterminated, got %v", err)
	}
}

func TestParseLineUnterminatedStringIsError(t *testing.T) {
	_, err := ParseLine(NewString(`echo "unterminated` + "\n"))
	if err != ErrUnterminated {
		t.Errorf("expected ErrUnterminated, got %v", err)
	}
}

func TestParseLineTrailingBackslashAtEOFIsError(t *testing.T) {
	_, err := ParseLine(NewString(`word\`))
	if err != ErrUnterminated {
		t.Errorf("expected ErrUnterminated, got %v", err)
	}
}

func TestParseLineBackslashNewlineIsWhitespaceNotLineEnd(t *testing.T) {
	// An escaped newline ends the current word but does not end the
	// line: "def" is still part of the same logical line.
	nodes, err := ParseLine(NewString("abc\\\ndef\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 2 || nodes[0].Text != "abc" || nodes[1].Text != "def" {
		t.Errorf("expected [abc def] as one line, got %+v", nodes)
	}
}

func TestParseScriptSkipsBlankAndCommentLines(t *testing.T) {
	src := "\n# a comment\nset x 1\n\n#trailing comment\nset y 2\n"
	lines, err := ParseScript(NewString(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %+v", len(lines), lines)
	}
	if lines[0][2].Text != "1" || lines[1][2].Text != "2" {
		t.Errorf("unexpected line contents: %+v", lines)
	}
}

func TestParseScriptNoTrailingNewline(t *testing.T) {
	lines, err := ParseScript(NewString("set x 1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 1 || len(lines[0]) != 3 {
		t.Errorf("expected one 3-object line, got %+v", lines)
	}
}
