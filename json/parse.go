// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package json implements a streaming, chunk-resumable JSON parser
// that records tokens into a flat arena (Tree) instead of building
// nested value objects, so that very large documents can be parsed
// without holding the whole decoded structure in memory at once.
package json

import (
	"github.com/kortschak/parsec/buffer"
)

// PartialParse advances st by consuming bytes from data, recording
// tokens into tree as they are recognized. It returns the number of
// bytes consumed. If the document completed within data, done is true
// and nused may be less than len(data); any trailing bytes are left
// for the caller (they belong to whatever follows the document, not
// to it). If data is exhausted before the document completes, done is
// false and nused == len(data); the caller should supply more bytes in
// a subsequent call with the same st and tree.
func PartialParse(st *State, tree *Tree, data []byte) (nused int, done bool, err error) {
	for i, b := range data {
		if err := st.step(tree, b, false); err != nil {
			return i, false, err
		}
		st.advance(b)
		if st.Done() {
			return i + 1, true, nil
		}
	}
	return len(data), false, nil
}

// advance updates the position, line and column counters after b has
// been consumed.
func (s *State) advance(b byte) {
	s.pos++
	if b == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
}

// Parse reads one complete JSON document from buf and returns its
// token tree. It holds an anchor at the buffer's current offset while
// reading, so no byte of the document is discarded mid-parse, and
// raises it before returning, on success and on error alike. The
// document's bytes then stay in the buffer's memory, reachable with
// RewindTo (e.g. to try an alternative decoder), until the buffer next
// loads from its source.
func Parse(buf *buffer.Buffer) (*Tree, error) {
	start := buf.GetOffset()
	buf.SetAnchor(start)
	defer buf.RaiseAnchor()

	st := NewState()
	tree := NewTree(64)
	for {
		if err := buf.LoadBuf(buffer.Block); err != nil {
			if err == buffer.ErrEndOfSource {
				return nil, st.errorf("unexpected end of document")
			}
			return nil, err
		}
		nused, done, err := PartialParse(st, tree, buf.Bytes())
		buf.Advance(nused)
		if err != nil {
			return nil, err
		}
		if done {
			return tree, nil
		}
	}
}
