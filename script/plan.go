// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package script

import (
	"errors"
	"strings"
)

// ElemKind names one element of a compiled substitution Plan (spec
// §4.2 "Substitution").
type ElemKind int

const (
	ElemLiteral ElemKind = iota
	ElemVar
	ElemEval
)

// PlanElem is one literal span, variable reference, or nested eval-list
// within a compiled substitution plan.
type PlanElem struct {
	Kind ElemKind
	Text string
}

// Plan is a compiled substitution: a sequence of literal spans,
// variable references, and nested eval-lists, compiled once from a
// source string and cached for reuse (spec §4.2).
type Plan struct {
	elems []PlanElem
}

// ErrUnterminatedPlan is returned when a "${" or "[" construct embedded
// in a substitution source is never closed.
var ErrUnterminatedPlan = errors.New("script: unterminated substitution")

// compilePlan scans src for "$name"/"${name}" variable references and
// "[...]" eval-lists, honoring "\" as an escape for the following
// character, and returns the resulting element sequence.
func compilePlan(src string) (*Plan, error) {
	rs := []rune(src)
	var elems []PlanElem
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			elems = append(elems, PlanElem{Kind: ElemLiteral, Text: lit.String()})
			lit.Reset()
		}
	}
	i := 0
	for i < len(rs) {
		c := rs[i]
		switch {
		case c == '\\' && i+1 < len(rs):
			lit.WriteRune(rs[i+1])
			i += 2
		case c == '$' && i+1 < len(rs) && rs[i+1] == '{':
			end := matchBrace(rs, i+2, '{', '}')
			if end < 0 {
				return nil, ErrUnterminatedPlan
			}
			flush()
			elems = append(elems, PlanElem{Kind: ElemVar, Text: string(rs[i+2 : end])})
			i = end + 1
		case c == '$' && i+1 < len(rs) && isNameRune(rs[i+1]):
			j := i + 1
			for j < len(rs) && isNameRune(rs[j]) {
				j++
			}
			flush()
			elems = append(elems, PlanElem{Kind: ElemVar, Text: string(rs[i+1 : j])})
			i = j
		case c == '[':
			end := matchBrace(rs, i+1, '[', ']')
			if end < 0 {
				return nil, ErrUnterminatedPlan
			}
			flush()
			elems = append(elems, PlanElem{Kind: ElemEval, Text: string(rs[i+1 : end])})
			i = end + 1
		default:
			lit.WriteRune(c)
			i++
		}
	}
	flush()
	return &Plan{elems: elems}, nil
}

// matchBrace returns the index of the close rune matching the already-
// consumed open rune, starting the scan at i, or -1 if unterminated.
func matchBrace(rs []rune, i int, open, close rune) int {
	depth := 1
	for i < len(rs) {
		switch rs[i] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i
			}
		}
		i++
	}
	return -1
}

func isNameRune(c rune) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// Run executes the plan against an interpreter and context, concatenating
// literal spans, variable string values, and the string result of each
// evaluated eval-list (spec §4.2).
func (p *Plan) Run(in *Interp, ctx *Context) (string, error) {
	var out strings.Builder
	for _, e := range p.elems {
		switch e.Kind {
		case ElemLiteral:
			out.WriteString(e.Text)
		case ElemVar:
			v, ok := ctx.Lookup(e.Text)
			if !ok {
				return "", variableUnsetError(e.Text)
			}
			out.WriteString(v.Value.GetString())
		case ElemEval:
			res, err := in.evalSource(ctx, e.Text)
			if err != nil {
				return "", err
			}
			out.WriteString(res.GetString())
		}
	}
	return out.String(), nil
}

func variableUnsetError(name string) error {
	return &unsetVarError{name: name}
}

type unsetVarError struct{ name string }

func (e *unsetVarError) Error() string { return "script: unset variable \"" + e.name + "\"" }
