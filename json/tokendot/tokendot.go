// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tokendot renders a json.Tree as a DOT graph, one node per
// token labelled with its type and source text, and one edge per
// parent/child link, in the style of the teacher's cmd/cmpint
// discordance graph (gonum's simple graph plus encoding/dot).
package tokendot

import (
	"fmt"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/kortschak/parsec/json"
)

// Marshal renders tree as a DOT graph. src must be the same byte
// slice the tree was parsed from, used to label each token with its
// source text.
func Marshal(tree *json.Tree, src []byte, name string) ([]byte, error) {
	g := simple.NewDirectedGraph()
	nodes := make([]tokenNode, tree.Len())
	for i := 0; i < tree.Len(); i++ {
		tok := tree.Token(i)
		nodes[i] = tokenNode{id: int64(i), typ: tok.Type.String(), text: string(tree.Slice(src, i))}
		g.AddNode(nodes[i])
	}
	for i := 0; i < tree.Len(); i++ {
		for _, c := range tree.Children(i) {
			g.SetEdge(simple.Edge{F: nodes[i], T: nodes[c]})
		}
	}
	return dot.Marshal(g, name, "", "  ")
}

type tokenNode struct {
	id   int64
	typ  string
	text string
}

func (n tokenNode) ID() int64 { return n.id }

func (n tokenNode) DOTID() string { return fmt.Sprintf("n%d", n.id) }

func (n tokenNode) Attributes() []encoding.Attribute {
	return []encoding.Attribute{
		{Key: "label", Value: fmt.Sprintf("%q", n.typ+": "+truncate(n.text, 24))},
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

var _ graph.Node = tokenNode{}
