// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package inmap provides the 256-entry byte classification table shared
// by the sequence format readers in package seq. Each input byte is
// classified before any format-specific state machine logic runs.
package inmap

// Action is the classification of one input byte. Non-negative values
// in [0, 127] are symbol codes, the byte to be emitted as residue
// data, possibly remapped by a digital alphabet. Negative values are
// sentinel actions.
type Action int16

// Sentinel actions. Symbol codes occupy [0, 127].
const (
	// Ignored silently consumes the byte without emitting a residue
	// or counting it as one.
	Ignored Action = -1 - iota
	// Illegal causes a FORMAT error at the current position.
	Illegal
	// EndOfLine marks a line terminator: it does not contribute a
	// residue, but does advance the line counter.
	EndOfLine
	// EndOfData marks the sentinel that ends the current record's
	// residue data (e.g. EMBL/GenBank's terminal "//").
	EndOfData
)

// Table is a byte-indexed classification table.
type Table [256]Action

// NewTable returns a Table with every entry set to Illegal. Callers
// populate the entries relevant to their format.
func NewTable() *Table {
	var t Table
	for i := range t {
		t[i] = Illegal
	}
	return &t
}

// SetSymbols marks every byte in s as a valid symbol, using the byte's
// own value as its symbol code. This is the common case for residue
// alphabets in text mode.
func (t *Table) SetSymbols(s string) {
	for i := 0; i < len(s); i++ {
		t[s[i]] = Action(s[i])
	}
}

// SetIgnored marks every byte in s as Ignored.
func (t *Table) SetIgnored(s string) {
	for i := 0; i < len(s); i++ {
		t[s[i]] = Ignored
	}
}

// SetEOL marks every byte in s as EndOfLine.
func (t *Table) SetEOL(s string) {
	for i := 0; i < len(s); i++ {
		t[s[i]] = EndOfLine
	}
}

// Classify returns the Action for byte b.
func (t *Table) Classify(b byte) Action {
	return t[b]
}

// Digital returns a copy of t with symbol entries remapped through an
// external alphabet inmap, as described in spec.md §4.2: when a
// digital alphabet is active, the sequence reader overwrites symbol
// entries using the alphabet's own symbol table. alphabetInmap must be
// indexed by ASCII byte value and return the digital code for that
// byte, or -1 if the byte is not a member of the alphabet (in which
// case the entry is left as Illegal).
func (t *Table) Digital(alphabetInmap [128]int8) *Table {
	d := *t
	for i := range d {
		if i >= 128 {
			continue
		}
		if d[i] < 0 {
			// Sentinel actions (Ignored/Illegal/EOL/EndOfData) pass through.
			continue
		}
		code := alphabetInmap[i]
		if code < 0 {
			d[i] = Illegal
			continue
		}
		d[i] = Action(code)
	}
	return &d
}
