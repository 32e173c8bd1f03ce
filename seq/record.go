// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package seq implements a format-agnostic, chunk-resumable reader for
// biological sequence files (FASTA, EMBL/UniProt, GenBank/DDBJ), plus
// windowed and random-access reads over records that may span
// multiple gigabytes.
package seq

// Record is one sequence entry read from a file: a name, optional
// accession and description, its residue data, and the byte offsets
// it occupies in the source, per spec.md §3.
type Record struct {
	Name        string
	Accession   string
	Description string

	// Residues holds the record's sequence data with gaps excluded.
	// In text mode these are the literal ASCII residue bytes; in
	// digital mode they are the alphabet's own residue codes (see the
	// formats' NewDigital constructors).
	Residues []byte

	// Struct optionally holds per-residue secondary-structure
	// annotation, aligned one-to-one with Residues. Nil when the
	// format or record carries none.
	Struct []byte

	// Roff, Doff and Eoff are the absolute byte offsets of the start
	// of the record, the start of its residue data, and its last
	// byte, respectively. Roff <= Doff <= Eoff always holds for a
	// record read without error.
	Roff, Doff, Eoff int64

	// L is the cumulative residue count. During a windowed read it is
	// -1 until the forward sweep over the record completes.
	L int64

	// Start and End are the 1-based, forward-strand-space coordinates
	// of this record's residues, populated by windowed reads (Window,
	// FetchSubseq). They are zero for a whole-record read. On the
	// reverse strand, Start > End, per spec.md §4.5.
	Start, End int64
}

// InfoOnly reports whether rec carries only metadata (name, accession,
// description, L) with no residue payload, as ReadWindow returns at
// the end of a forward sweep (spec.md §4.5).
func (rec *Record) InfoOnly() bool { return len(rec.Residues) == 0 && rec.L >= 0 }
