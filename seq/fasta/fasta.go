// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fasta implements the FASTA seq.Format: records headed by a
// '>' line, with residues free to wrap at any line length, per
// spec.md §4.4's format table.
package fasta

import (
	"bytes"
	"fmt"

	"github.com/kortschak/parsec/inmap"
	"github.com/kortschak/parsec/seq"
)

// residueSymbols covers the IUPAC amino acid and nucleotide alphabets
// plus the stop character FASTA files commonly carry; the gap
// characters '-' and '.' are ignored instead (see New). A digital
// alphabet (see NewDigital) narrows this to whatever the external
// alphabet inmap admits.
const residueSymbols = "ABCDEFGHIKLMNPQRSTUVWYZXabcdefghiklmnpqrstuvwyzx*"

// Format is the FASTA seq.Format.
type Format struct {
	tbl *inmap.Table
}

// New returns a text-mode FASTA Format.
func New() *Format {
	t := inmap.NewTable()
	t.SetSymbols(residueSymbols)
	t.SetIgnored(" \t\r-.")
	t.SetEOL("\n")
	return &Format{tbl: t}
}

// NewDigital returns a FASTA Format whose residue bytes are remapped
// through alphabetInmap, an external digital alphabet's symbol table
// (spec.md §1 treats the alphabet module as exactly this kind of
// map).
func NewDigital(alphabetInmap [128]int8) *Format {
	f := New()
	f.tbl = f.tbl.Digital(alphabetInmap)
	return f
}

func (f *Format) Name() string { return "FASTA" }

func (f *Format) Inmap() *inmap.Table { return f.tbl }

func (f *Format) EOFTerminatesRecord() bool { return true }

func (f *Format) Detect(line []byte) bool {
	line = bytes.TrimLeft(line, " \t")
	return len(line) > 0 && line[0] == '>'
}

func (f *Format) EndOfRecordTest(rd *seq.Reader, line []byte) bool {
	line = bytes.TrimLeft(line, " \t")
	return len(line) > 0 && line[0] == '>'
}

func (f *Format) ParseHeader(rd *seq.Reader, rec *seq.Record) error {
	line, err := rd.NextLine()
	if err != nil {
		return fmt.Errorf("fasta: %w", err)
	}
	line = bytes.TrimLeft(line, " \t")
	if len(line) == 0 || line[0] != '>' {
		return rd.Errorf("expected '>' header")
	}
	hdr := bytes.TrimRight(line[1:], "\r\n")
	rd.ConsumeLine()

	rec.Name, rec.Description = splitNameDesc(hdr)
	rec.Doff = rd.Offset()
	return nil
}

func (f *Format) ParseEnd(rd *seq.Reader, rec *seq.Record) error {
	rec.Eoff = rd.Offset() - 1
	return nil
}

// splitNameDesc splits a FASTA header body (the bytes after '>') into
// its first whitespace-delimited token (the name) and the remainder
// (the description).
func splitNameDesc(hdr []byte) (name, desc string) {
	hdr = bytes.TrimLeft(hdr, " \t")
	i := bytes.IndexAny(hdr, " \t")
	if i < 0 {
		return string(hdr), ""
	}
	return string(hdr[:i]), string(bytes.TrimLeft(hdr[i+1:], " \t"))
}
