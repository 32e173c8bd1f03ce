// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package json

import (
	"strings"
	"testing"

	"github.com/kortschak/parsec/buffer"
)

func parseString(t *testing.T, s string) *Tree {
	t.Helper()
	tree, err := Parse(buffer.Open(strings.NewReader(s)))
	if err != nil {
		t.Fatalf("Parse(%q): %v", s, err)
	}
	return tree
}

func TestEmptyObject(t *testing.T) {
	tree := parseString(t, "{}")
	if tree.Len() != 1 {
		t.Fatalf("got %d tokens, want 1", tree.Len())
	}
	root := tree.Token(tree.Root())
	if root.Type != Object || root.Startpos != 0 || root.Endpos != 1 || root.Nchild != 0 {
		t.Fatalf("root = %+v", root)
	}
}

func TestNestedDocument(t *testing.T) {
	src := `{"a":[1,2.5e-3,true,null]}`
	tree := parseString(t, src)

	root := tree.Root()
	rt := tree.Token(root)
	if rt.Type != Object || rt.Startpos != 0 || rt.Endpos != len(src)-1 {
		t.Fatalf("root = %+v", rt)
	}
	children := tree.Children(root)
	if len(children) != 1 {
		t.Fatalf("root has %d children, want 1", len(children))
	}
	key := tree.Token(children[0])
	if key.Type != Key || string(tree.Slice([]byte(src), children[0])) != "a" {
		t.Fatalf("key = %+v, slice %q", key, tree.Slice([]byte(src), children[0]))
	}

	keyChildren := tree.Children(children[0])
	if len(keyChildren) != 1 {
		t.Fatalf("key has %d children, want 1", len(keyChildren))
	}
	arr := tree.Token(keyChildren[0])
	if arr.Type != Array {
		t.Fatalf("value = %+v, want ARRAY", arr)
	}

	elems := tree.Children(keyChildren[0])
	if len(elems) != 4 {
		t.Fatalf("array has %d elements, want 4", len(elems))
	}
	wantTypes := []Type{Number, Number, Boolean, Null}
	wantText := []string{"1", "2.5e-3", "true", "null"}
	for i, idx := range elems {
		tok := tree.Token(idx)
		if tok.Type != wantTypes[i] {
			t.Errorf("element %d type = %v, want %v", i, tok.Type, wantTypes[i])
		}
		if got := string(tree.Slice([]byte(src), idx)); got != wantText[i] {
			t.Errorf("element %d text = %q, want %q", i, got, wantText[i])
		}
	}
}

func TestChunkedParsingAtEveryBoundary(t *testing.T) {
	src := `{"k":"abc"}`
	for split := 1; split < len(src); split++ {
		st := NewState()
		tree := NewTree(8)
		first, done, err := PartialParse(st, tree, []byte(src[:split]))
		if err != nil {
			t.Fatalf("split %d: first half: %v", split, err)
		}
		if done {
			t.Fatalf("split %d: finished early after %d bytes", split, first)
		}
		if first != split {
			t.Fatalf("split %d: consumed %d of first half, want all of it", split, first)
		}
		second, done, err := PartialParse(st, tree, []byte(src[split:]))
		if err != nil {
			t.Fatalf("split %d: second half: %v", split, err)
		}
		if !done {
			t.Fatalf("split %d: not done after full input", split)
		}
		if split+second != len(src) {
			t.Fatalf("split %d: consumed %d bytes total, want %d", split, split+second, len(src))
		}

		root := tree.Root()
		key := tree.Children(root)[0]
		if got := string(tree.Slice([]byte(src), key)); got != "k" {
			t.Fatalf("split %d: key = %q", split, got)
		}
		val := tree.Children(key)[0]
		if got := string(tree.Slice([]byte(src), val)); got != "abc" {
			t.Fatalf("split %d: value = %q", split, got)
		}
	}
}

func TestZeroLengthStrings(t *testing.T) {
	src := `{"":""}`
	tree := parseString(t, src)
	key := tree.Children(tree.Root())[0]
	ktok := tree.Token(key)
	if ktok.Endpos != ktok.Startpos-1 {
		t.Fatalf("empty key endpos = %d, startpos = %d", ktok.Endpos, ktok.Startpos)
	}
	if got := tree.Slice([]byte(src), key); len(got) != 0 {
		t.Fatalf("empty key slice = %q", got)
	}
	val := tree.Children(key)[0]
	vtok := tree.Token(val)
	if vtok.Endpos != vtok.Startpos-1 {
		t.Fatalf("empty value endpos = %d, startpos = %d", vtok.Endpos, vtok.Startpos)
	}
}

func TestUnicodeEscapeAcrossChunkBoundary(t *testing.T) {
	src := "{\"a\":\"\\u00b5\"}"
	for split := 1; split < len(src); split++ {
		st := NewState()
		tree := NewTree(8)
		n1, done, err := PartialParse(st, tree, []byte(src[:split]))
		if err != nil {
			t.Fatalf("split %d: %v", split, err)
		}
		if done {
			continue
		}
		_, done, err = PartialParse(st, tree, []byte(src[split:]))
		if err != nil {
			t.Fatalf("split %d: second half: %v", split, err)
		}
		if !done {
			t.Fatalf("split %d: never completed", split)
		}
		_ = n1
	}
}

func TestControlCharacterRejected(t *testing.T) {
	_, err := Parse(buffer.Open(strings.NewReader("{\"a\":\"\x01\"}")))
	if err == nil {
		t.Fatal("expected a syntax error for an embedded control character")
	}
}

func TestUnterminatedDocument(t *testing.T) {
	_, err := Parse(buffer.Open(strings.NewReader(`{"a":1`)))
	if err == nil {
		t.Fatal("expected an error for an unterminated document")
	}
}

func TestNonObjectDocumentRejected(t *testing.T) {
	_, err := Parse(buffer.Open(strings.NewReader(`[1,2,3]`)))
	if err == nil {
		t.Fatal("expected an error: document must begin with an object")
	}
}

func TestTrailingCommaRejected(t *testing.T) {
	_, err := Parse(buffer.Open(strings.NewReader(`{"a":1,}`)))
	if err == nil {
		t.Fatal("expected an error for a trailing comma")
	}
}

func TestLeadingZeroRejected(t *testing.T) {
	_, err := Parse(buffer.Open(strings.NewReader(`{"a":01}`)))
	if err == nil {
		t.Fatal("expected an error for a number with a leading zero")
	}
}
