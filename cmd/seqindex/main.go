// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The seqindex command builds an on-disk offset index over a
// sequence file, so later lookups by name or ordinal avoid a linear
// scan.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/kortschak/parsec/buffer"
	"github.com/kortschak/parsec/index"
	"github.com/kortschak/parsec/seq"
	"github.com/kortschak/parsec/seq/embl"
	"github.com/kortschak/parsec/seq/fasta"
	"github.com/kortschak/parsec/seq/genbank"
)

func main() {
	in := flag.String("in", "", "specify sequence file to index (required)")
	out := flag.String("out", "", "specify index database path (required)")
	format := flag.String("format", "auto", "specify format: fasta, embl, genbank, or auto")
	flag.Parse()
	if *in == "" || *out == "" {
		flag.Usage()
		os.Exit(2)
	}

	buf, err := buffer.OpenFile(*in)
	if err != nil {
		log.Fatal(err)
	}
	defer buf.Close()

	f, err := resolveFormat(buf, *format)
	if err != nil {
		log.Fatal(err)
	}

	rd := seq.NewReader(buf, f)

	idx, err := index.Create(*out)
	if err != nil {
		log.Fatal(err)
	}
	defer idx.Close()

	n, err := index.Build(idx, rd)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("indexed %d records from %s into %s", n, *in, *out)
}

func resolveFormat(buf *buffer.Buffer, name string) (seq.Format, error) {
	if name != "auto" {
		switch name {
		case "fasta":
			return fasta.New(), nil
		case "embl":
			return embl.New(), nil
		case "genbank":
			return genbank.New(), nil
		}
		log.Fatalf("unknown format %q", name)
	}
	return seq.DetectFormat(buf, fasta.New(), embl.New(), genbank.New())
}
