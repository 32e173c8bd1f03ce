// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The seqfetch command retrieves a record, or a subseq range within
// it, from a sequence file using a prebuilt offset index (see
// seqindex).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/seq/linear"

	"github.com/kortschak/parsec/buffer"
	"github.com/kortschak/parsec/index"
	"github.com/kortschak/parsec/seq"
	"github.com/kortschak/parsec/seq/embl"
	"github.com/kortschak/parsec/seq/fasta"
	"github.com/kortschak/parsec/seq/genbank"
)

func main() {
	in := flag.String("in", "", "specify sequence file (required)")
	idxPath := flag.String("index", "", "specify index database (required)")
	name := flag.String("name", "", "specify record name to fetch (required)")
	format := flag.String("format", "fasta", "specify format: fasta, embl, or genbank")
	start := flag.Int64("start", 0, "specify 1-based subseq start (0 fetches the whole record)")
	end := flag.Int64("end", 0, "specify 1-based subseq end, inclusive")
	biogoOut := flag.Bool("biogo", false, "print the fetched residues through a biogo linear.Seq (%a verb) instead of the plain FASTA writer")
	flag.Parse()
	if *in == "" || *idxPath == "" || *name == "" {
		flag.Usage()
		os.Exit(2)
	}

	idx, err := index.Open(*idxPath)
	if err != nil {
		log.Fatal(err)
	}
	defer idx.Close()

	entry, err := idx.FindName(*name)
	if err != nil {
		log.Fatal(err)
	}

	buf, err := buffer.OpenFile(*in)
	if err != nil {
		log.Fatal(err)
	}
	defer buf.Close()
	if err := buf.Reposition(entry.Roff); err != nil {
		log.Fatal(err)
	}

	f := formatFor(*format)
	rd := seq.NewReader(buf, f)

	if *start == 0 {
		rec, err := rd.ReadRecord()
		if err != nil {
			log.Fatal(err)
		}
		printRecord(rec, *biogoOut)
		return
	}

	if *start < 1 || *end < *start || *end > entry.L {
		log.Fatalf("subseq range [%d,%d] out of bounds for record of length %d", *start, *end, entry.L)
	}
	rec, err := seq.FetchSubseq(rd, *start, *end)
	if err != nil {
		log.Fatal(err)
	}
	printRecord(rec, *biogoOut)
}

func formatFor(name string) seq.Format {
	switch name {
	case "fasta":
		return fasta.New()
	case "embl":
		return embl.New()
	case "genbank":
		return genbank.New()
	}
	log.Fatalf("unknown format %q", name)
	panic("unreachable")
}

func printRecord(rec *seq.Record, biogoOut bool) {
	if biogoOut {
		// Hand the residues to biogo's own sequence type and let its
		// Format method line-wrap the output, the same %a verb usage
		// cmd/ins drives over linear.Seq when writing fetched ranges.
		s := linear.NewSeq(rec.Name, alphabet.BytesToLetters(rec.Residues), alphabet.DNAredundant)
		s.Desc = rec.Description
		fmt.Printf("%60a\n", s)
		return
	}
	fmt.Printf(">%s %s\n", rec.Name, rec.Description)
	fmt.Printf("%s\n", rec.Residues)
}
