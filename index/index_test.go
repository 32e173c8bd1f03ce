// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package index_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/kortschak/parsec/buffer"
	"github.com/kortschak/parsec/index"
	"github.com/kortschak/parsec/seq"
	"github.com/kortschak/parsec/seq/fasta"
)

func TestBuildAndLookup(t *testing.T) {
	src := ">a desc-a\nACGT\n>b desc-b\nTTTT\n"
	rd := seq.NewReader(buffer.Open(strings.NewReader(src)), fasta.New())

	dbPath := filepath.Join(t.TempDir(), "seq.idx")
	idx, err := index.Create(dbPath)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer idx.Close()

	n, err := index.Build(idx, rd)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if n != 2 {
		t.Fatalf("indexed %d records, want 2", n)
	}

	a, err := idx.FindName("a")
	if err != nil {
		t.Fatalf("FindName(a): %v", err)
	}
	if a.L != 4 || a.Roff != 0 {
		t.Fatalf("entry a = %+v", a)
	}

	b, err := idx.FindNumber(1)
	if err != nil {
		t.Fatalf("FindNumber(1): %v", err)
	}
	if b.Name != "b" || b.L != 4 {
		t.Fatalf("entry at ordinal 1 = %+v", b)
	}

	if _, err := idx.FindName("nope"); err != seq.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAuditFindsNoOverlapInWellFormedIndex(t *testing.T) {
	src := ">a\nACGT\n>b\nTTTT\n"
	rd := seq.NewReader(buffer.Open(strings.NewReader(src)), fasta.New())

	dbPath := filepath.Join(t.TempDir(), "seq.idx")
	idx, err := index.Create(dbPath)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer idx.Close()

	if _, err := index.Build(idx, rd); err != nil {
		t.Fatalf("Build: %v", err)
	}

	overlaps, err := index.Audit(idx)
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}
	if len(overlaps) != 0 {
		t.Fatalf("unexpected overlaps: %+v", overlaps)
	}
}
