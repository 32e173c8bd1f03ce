// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The jsontree command parses a JSON document and prints its token
// tree, either as indented text or, with -dot, as a DOT graph.
package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"strings"

	"github.com/kortschak/parsec/buffer"
	"github.com/kortschak/parsec/json"
	"github.com/kortschak/parsec/json/tokendot"
)

func main() {
	in := flag.String("in", "", "specify input file (default stdin)")
	dot := flag.Bool("dot", false, "emit a DOT graph instead of indented text")
	flag.Parse()

	var r *os.File
	if *in == "" {
		r = os.Stdin
	} else {
		f, err := os.Open(*in)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		r = f
	}

	src, err := ioutil.ReadAll(r)
	if err != nil {
		log.Fatal(err)
	}

	tree, err := json.Parse(buffer.Open(strings.NewReader(string(src))))
	if err != nil {
		log.Fatal(err)
	}

	if *dot {
		b, err := tokendot.Marshal(tree, src, "tokens")
		if err != nil {
			log.Fatal(err)
		}
		os.Stdout.Write(b)
		return
	}

	printTree(tree, src, tree.Root(), 0)
}

func printTree(tree *json.Tree, src []byte, i, depth int) {
	if i == json.None {
		return
	}
	tok := tree.Token(i)
	fmt.Printf("%s%s %q [%d,%d]\n", strings.Repeat("  ", depth), tok.Type, tree.Slice(src, i), tok.Startpos, tok.Endpos)
	for _, c := range tree.Children(i) {
		printTree(tree, src, c, depth+1)
	}
}
