// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The audit-seq-db command inspects a sequence offset index built by
// seqindex: it emits every indexed entry as a JSON-lines stream, and
// reports any pair of records whose byte ranges overlap, which would
// indicate a corrupt index or a malformed source file.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/kortschak/parsec/index"
)

func main() {
	path := flag.String("db", "", "specify index database to audit (required)")
	flag.Parse()
	if *path == "" {
		flag.Usage()
		os.Exit(2)
	}

	idx, err := index.Open(*path)
	if err != nil {
		log.Fatal(err)
	}
	defer idx.Close()

	enc := json.NewEncoder(os.Stdout)
	if err := idx.All(func(e index.Entry) error {
		return enc.Encode(e)
	}); err != nil {
		log.Fatal(err)
	}

	overlaps, err := index.Audit(idx)
	if err != nil {
		log.Fatal(err)
	}
	for _, o := range overlaps {
		if err := enc.Encode(o); err != nil {
			log.Fatal(err)
		}
	}
	if len(overlaps) > 0 {
		log.Printf("audit found %d overlapping record range(s)", len(overlaps))
		os.Exit(1)
	}
}
