// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package embl implements the EMBL seq.Format. The source library
// distinguished UniProt from EMBL only by filename convention; per
// spec.md §9 they are treated here as one format with identical
// parsing.
package embl

import (
	"bytes"
	"fmt"

	"github.com/kortschak/parsec/inmap"
	"github.com/kortschak/parsec/seq"
)

const residueSymbols = "ABCDEFGHIKLMNPQRSTVWYZXabcdefghiklmnpqrstvwyzx"

// Format is the EMBL/UniProt seq.Format.
type Format struct {
	tbl *inmap.Table
}

// New returns a text-mode EMBL Format.
func New() *Format {
	t := inmap.NewTable()
	t.SetSymbols(residueSymbols)
	t.SetIgnored("0123456789 \t\r")
	t.SetEOL("\n")
	return &Format{tbl: t}
}

// NewDigital returns an EMBL Format whose residue bytes are remapped
// through alphabetInmap, an external digital alphabet's symbol table.
func NewDigital(alphabetInmap [128]int8) *Format {
	f := New()
	f.tbl = f.tbl.Digital(alphabetInmap)
	return f
}

func (f *Format) Name() string { return "EMBL" }

func (f *Format) Inmap() *inmap.Table { return f.tbl }

func (f *Format) EOFTerminatesRecord() bool { return false }

func (f *Format) Detect(line []byte) bool {
	return bytes.HasPrefix(line, []byte("ID   "))
}

func (f *Format) EndOfRecordTest(rd *seq.Reader, line []byte) bool {
	return bytes.HasPrefix(line, []byte("//"))
}

func (f *Format) ParseHeader(rd *seq.Reader, rec *seq.Record) error {
	var haveID bool
	var desc [][]byte
	for {
		line, err := rd.NextLine()
		if err != nil {
			return fmt.Errorf("embl: %w", err)
		}
		switch {
		case bytes.HasPrefix(line, []byte("ID   ")):
			fields := bytes.Fields(line[5:])
			if len(fields) == 0 {
				return rd.Errorf("malformed ID line")
			}
			rec.Name = string(bytes.TrimSuffix(fields[0], []byte(";")))
			haveID = true

		case bytes.HasPrefix(line, []byte("AC   ")):
			if rec.Accession == "" {
				fields := bytes.FieldsFunc(line[5:], func(r rune) bool {
					return r == ';' || r == ' ' || r == '\t' || r == '\r' || r == '\n'
				})
				if len(fields) > 0 {
					rec.Accession = string(fields[0])
				}
			}

		case bytes.HasPrefix(line, []byte("DE   ")):
			desc = append(desc, bytes.TrimRight(line[5:], "\r\n"))

		case bytes.HasPrefix(line, []byte("SQ   ")):
			if !haveID {
				return rd.Errorf("missing ID line before SQ")
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
		return fmt.Errorf("embl: %w", err)
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
