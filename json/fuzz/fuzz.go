// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fuzz generates random, valid JSON documents biased toward
// the edge cases spec.md calls out explicitly (empty containers and
// strings, backslash escapes, multi-byte Unicode escapes, and
// arbitrary whitespace between tokens per spec.md §8). It is a
// standalone recursive-descent grammar, not a reuse of json.State;
// callers verify documents by feeding them back through json.Parse.
package fuzz

import (
	"fmt"
	"math/rand"
	"strings"
)

// interestingRunes are code points worth exercising in escaped form:
// a BMP letter requiring no surrogate pair, a BMP symbol, and an
// astral-plane character requiring a surrogate pair when escaped.
var interestingRunes = []rune{0x00B5, 0x221E, 0x10083}

// Generator emits random valid JSON documents.
type Generator struct {
	rnd *rand.Rand
	// MaxDepth bounds container nesting.
	MaxDepth int
}

// New returns a Generator seeded from seed.
func New(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed)), MaxDepth: 4}
}

// Document returns one random, complete JSON document whose root value
// is an object, the only root json.Parse accepts.
func (g *Generator) Document() string {
	var b strings.Builder
	g.object(&b, 0)
	return b.String()
}

func (g *Generator) value(b *strings.Builder, depth int) {
	if depth >= g.MaxDepth {
		g.leaf(b)
		return
	}
	switch g.rnd.Intn(6) {
	case 0:
		g.object(b, depth)
	case 1:
		g.array(b, depth)
	default:
		g.leaf(b)
	}
}

func (g *Generator) leaf(b *strings.Builder) {
	switch g.rnd.Intn(4) {
	case 0:
		g.string(b)
	case 1:
		g.number(b)
	case 2:
		b.WriteString([]string{"true", "false"}[g.rnd.Intn(2)])
	case 3:
		b.WriteString("null")
	}
}

func (g *Generator) object(b *strings.Builder, depth int) {
	b.WriteByte('{')
	g.ws(b)
	n := g.rnd.Intn(4)
	if depth == 0 && g.rnd.Intn(3) == 0 {
		n = 0 // bias toward the empty-object edge case
	}
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte(',')
			g.ws(b)
		}
		g.string(b)
		g.ws(b)
		b.WriteByte(':')
		g.ws(b)
		g.value(b, depth+1)
		g.ws(b)
	}
	b.WriteByte('}')
}

func (g *Generator) array(b *strings.Builder, depth int) {
	b.WriteByte('[')
	g.ws(b)
	n := g.rnd.Intn(4)
	if depth == 0 && g.rnd.Intn(3) == 0 {
		n = 0 // bias toward the empty-array edge case
	}
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte(',')
			g.ws(b)
		}
		g.value(b, depth+1)
		g.ws(b)
	}
	b.WriteByte(']')
}

// ws emits zero or more whitespace bytes drawn from the set JSON
// treats as insignificant, exercising spec.md §8's "any interleaving
// of whitespace between tokens" property.
func (g *Generator) ws(b *strings.Builder) {
	const chars = " \t\n\r"
	n := g.rnd.Intn(3)
	for i := 0; i < n; i++ {
		b.WriteByte(chars[g.rnd.Intn(len(chars))])
	}
}

func (g *Generator) string(b *strings.Builder) {
	b.WriteByte('"')
	if g.rnd.Intn(5) == 0 {
		b.WriteByte('"') // the zero-length-string edge case
		return
	}
	n := 1 + g.rnd.Intn(6)
	for i := 0; i < n; i++ {
		switch g.rnd.Intn(4) {
		case 0:
			b.WriteByte(byte('a' + g.rnd.Intn(26)))
		case 1:
			b.WriteString(`\"`)
		case 2:
			b.WriteString(`\\`)
		case 3:
			writeUnicodeEscape(b, interestingRunes[g.rnd.Intn(len(interestingRunes))])
		}
	}
	b.WriteByte('"')
}

// writeUnicodeEscape writes r as one or two \uXXXX escapes, encoding
// astral-plane code points as a UTF-16 surrogate pair.
func writeUnicodeEscape(b *strings.Builder, r rune) {
	if r <= 0xFFFF {
		fmt.Fprintf(b, `\u%04x`, r)
		return
	}
	r -= 0x10000
	hi := 0xD800 + (r >> 10)
	lo := 0xDC00 + (r & 0x3FF)
	fmt.Fprintf(b, `\u%04x\u%04x`, hi, lo)
}

func (g *Generator) number(b *strings.Builder) {
	if g.rnd.Intn(3) == 0 {
		b.WriteByte('-')
	}
	b.WriteByte(byte('1' + g.rnd.Intn(9)))
	for i := 0; i < g.rnd.Intn(4); i++ {
		b.WriteByte(byte('0' + g.rnd.Intn(10)))
	}
	if g.rnd.Intn(3) == 0 {
		b.WriteByte('.')
		n := 1 + g.rnd.Intn(3)
		for i := 0; i < n; i++ {
			b.WriteByte(byte('0' + g.rnd.Intn(10)))
		}
	}
	if g.rnd.Intn(4) == 0 {
		b.WriteByte([]byte{'e', 'E'}[g.rnd.Intn(2)])
		if g.rnd.Intn(2) == 0 {
			b.WriteByte([]byte{'+', '-'}[g.rnd.Intn(2)])
		}
		b.WriteByte(byte('0' + g.rnd.Intn(10)))
	}
}
