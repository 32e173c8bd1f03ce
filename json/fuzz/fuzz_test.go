// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fuzz_test

import (
	"strings"
	"testing"

	"github.com/kortschak/parsec/buffer"
	"github.com/kortschak/parsec/json"
	"github.com/kortschak/parsec/json/fuzz"
)

// TestGeneratedDocumentsRoundTrip generates random documents and
// checks each one parses cleanly and that every token's byte-range
// slice reparses to a token of the same type, the round-trip law
// from spec.md §8.
func TestGeneratedDocumentsRoundTrip(t *testing.T) {
	g := fuzz.New(1)
	for i := 0; i < 200; i++ {
		doc := g.Document()
		tree, err := json.Parse(buffer.Open(strings.NewReader(doc)))
		if err != nil {
			t.Fatalf("doc %d: parse %q: %v", i, doc, err)
		}
		for j := 0; j < tree.Len(); j++ {
			tok := tree.Token(j)
			slice := tree.Slice([]byte(doc), j)
			reparsed, err := json.Parse(buffer.Open(strings.NewReader(wrapForType(tok.Type, string(slice)))))
			if err != nil {
				t.Fatalf("doc %d token %d (%s) %q: reparse: %v", i, j, tok.Type, slice, err)
			}
			got := reparsed.Token(wrappedIndex(tok.Type))
			if got.Type != tok.Type {
				t.Fatalf("doc %d token %d: got type %s, want %s", i, j, got.Type, tok.Type)
			}
		}
	}
}

// wrapForType embeds a token's literal text into a minimal document
// with an object root, since only an object can stand alone as a
// document root (spec.md §4.2).
func wrapForType(typ json.Type, text string) string {
	switch typ {
	case json.Object:
		return text
	case json.Key:
		return `{"` + text + `":null}`
	case json.String:
		return `{"k":"` + text + `"}`
	default:
		return `{"k":` + text + `}`
	}
}

// wrappedIndex returns the index of the wrapped token in the tree of
// the document wrapForType builds: the root object is token 0, its key
// token 1, and the key's value token 2.
func wrappedIndex(typ json.Type) int {
	switch typ {
	case json.Object:
		return 0
	case json.Key:
		return 1
	default:
		return 2
	}
}
