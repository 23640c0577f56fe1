// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package script

import "testing"

func TestGetStringSynthesizesFromInt(t *testing.T) {
	v := NewInt(42)
	if got := v.GetString(); got != "42" {
		t.Errorf("expected \"42\", got %q", got)
	}
}

func TestGetIntParsesString(t *testing.T) {
	v := NewString("17")
	n, err := v.GetInt()
	if err != nil || n != 17 {
		t.Errorf("expected 17, nil; got %d, %v", n, err)
	}
}

func TestGetIntRejectsBlank(t *testing.T) {
	v := NewString("")
	if _, err := v.GetInt(); err == nil {
		t.Errorf("expected error for blank string")
	}
}

func TestGetIntRejectsTrailingGarbage(t *testing.T) {
	v := NewString("17abc")
	if _, err := v.GetInt(); err == nil {
		t.Errorf("expected error for trailing non-numeric content")
	}
}

func TestGetListParsesBraceGroups(t *testing.T) {
	v := NewString("a {b c} d")
	items, err := v.GetList()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 3 || items[1].GetString() != "b c" {
		t.Errorf("expected [a, {b c}, d], got %+v", items)
	}
}

func TestSetInvalidatesCachedRepresentations(t *testing.T) {
	v := NewInt(5)
	_ = v.GetString() // populate strC cache
	v.Set("hello")
	if v.kind != KindString {
		t.Fatalf("expected kind to change to string")
	}
	if _, err := v.GetInt(); err == nil {
		t.Errorf("expected \"hello\" to fail integer parse after Set")
	}
}

func TestListJoinWrapsNestedListsInBraces(t *testing.T) {
	v := NewList([]Value{NewString("a"), NewList([]Value{NewString("b"), NewString("c")})})
	if got := v.GetString(); got != "a {b c}" {
		t.Errorf("expected \"a {b c}\", got %q", got)
	}
}
