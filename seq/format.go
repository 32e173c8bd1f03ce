// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package seq

import "github.com/kortschak/parsec/inmap"

// Format supplies the three per-format callbacks of spec.md §4.4. A
// Reader is format-agnostic; all record-structure knowledge lives
// behind this interface.
type Format interface {
	// Name identifies the format, for diagnostics.
	Name() string

	// Detect reports whether line, the first non-blank line of a
	// stream, belongs to this format.
	Detect(line []byte) bool

	// ParseHeader consumes the header line(s) at the reader's current
	// position, populating rec's Name, Accession and Description and
	// recording rec.Doff. rec.Roff is set by the caller before the call.
	ParseHeader(rd *Reader, rec *Record) error

	// EndOfRecordTest reports whether line, the line the reader is
	// currently positioned at, is the record terminator.
	EndOfRecordTest(rd *Reader, line []byte) bool

	// ParseEnd validates the terminator identified by
	// EndOfRecordTest and records rec.Eoff.
	ParseEnd(rd *Reader, rec *Record) error

	// Inmap returns the byte classification table body lines are
	// scanned through.
	Inmap() *inmap.Table

	// EOFTerminatesRecord reports whether reaching end-of-source
	// without seeing an explicit terminator line still ends the
	// current record successfully (true for FASTA, false for
	// EMBL/GenBank, per spec.md §4.4's table).
	EOFTerminatesRecord() bool
}
