// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package genbank implements the GenBank/DDBJ seq.Format: LOCUS/
// VERSION/DEFINITION headers, an ORIGIN-introduced residue body with
// leading position numbers, and a "//" terminator, per spec.md §4.4.
package genbank

import (
	"bytes"
	"fmt"

	"github.com/kortschak/parsec/inmap"
	"github.com/kortschak/parsec/seq"
)

const residueSymbols = "ACGTUNRYSWKMBDHVacgtunryswkmbdhv"

// Format is the GenBank/DDBJ seq.Format.
type Format struct {
	tbl *inmap.Table
}

// New returns a text-mode GenBank Format.
func New() *Format {
	t := inmap.NewTable()
	t.SetSymbols(residueSymbols)
	t.SetIgnored("0123456789 \t\r")
	t.SetEOL("\n")
	return &Format{tbl: t}
}

// NewDigital returns a GenBank Format whose residue bytes are
// remapped through alphabetInmap, an external digital alphabet's
// symbol table.
func NewDigital(alphabetInmap [128]int8) *Format {
	f := New()
	f.tbl = f.tbl.Digital(alphabetInmap)
	return f
}

func (f *Format) Name() string { return "GenBank" }

func (f *Format) Inmap() *inmap.Table { return f.tbl }

func (f *Format) EOFTerminatesRecord() bool { return false }

func (f *Format) Detect(line []byte) bool {
	return bytes.HasPrefix(line, []byte("LOCUS   ")) ||
		bytes.Contains(line, []byte("Genetic Sequence Data Bank"))
}

func (f *Format) EndOfRecordTest(rd *seq.Reader, line []byte) bool {
	return bytes.HasPrefix(line, []byte("//"))
}

func (f *Format) ParseHeader(rd *seq.Reader, rec *seq.Record) error {
	var haveLocus bool
	var desc [][]byte
	for {
		line, err := rd.NextLine()
		if err != nil {
			return fmt.Errorf("genbank: %w", err)
		}
		switch {
		case bytes.HasPrefix(line, []byte("LOCUS   ")):
			fields := bytes.Fields(line[len("LOCUS   "):])
			if len(fields) == 0 {
				return rd.Errorf("malformed LOCUS line")
			}
			rec.Name = string(fields[0])
			haveLocus = true

		case bytes.HasPrefix(line, []byte("VERSION   ")):
			fields := bytes.Fields(line[len("VERSION   "):])
			if len(fields) > 0 {
				rec.Accession = string(fields[0])
			}

		case bytes.HasPrefix(line, []byte("DEFINITION ")):
			desc = append(desc, bytes.TrimRight(line[len("DEFINITION "):], "\r\n"))

		case bytes.HasPrefix(line, []byte("ORIGIN")):
			if !haveLocus {
				return rd.Errorf("missing LOCUS line before ORIGIN")
			}
			rd.ConsumeLine()
			rec.Description = string(bytes.Join(desc, []byte(" ")))
			rec.Doff = rd.Offset()
			return nil
		}
		rd.ConsumeLine()
	}
}

func (f *Format) ParseEnd(rd *seq.Reader, rec *seq.Record) error {
	line, err := rd.NextLine()
	if err != nil {
		return fmt.Errorf("genbank: %w", err)
	}
	if !bytes.HasPrefix(line, []byte("//")) {
		return rd.Errorf("expected '//' terminator")
	}
	// rd.Offset() here is still the start of the "//" line, since
	// NextLine only peeks; the second '/' sits one byte past it.
	rec.Eoff = rd.Offset() + 1
	rd.ConsumeLine()
	return nil
}
