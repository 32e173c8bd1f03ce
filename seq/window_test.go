// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package seq_test

import (
	"strings"
	"testing"

	"github.com/kortschak/parsec/buffer"
	"github.com/kortschak/parsec/seq"
	"github.com/kortschak/parsec/seq/fasta"
)

func dnaComplement(b byte) byte {
	switch b {
	case 'A':
		return 'T'
	case 'T':
		return 'A'
	case 'C':
		return 'G'
	case 'G':
		return 'C'
	}
	return b
}

func TestWindowForwardSweep(t *testing.T) {
	src := ">r\nAAAACCCCGGGGTTTT\n"
	rd := seq.NewReader(buffer.Open(strings.NewReader(src)), fasta.New())
	w := rd.Window(dnaComplement)

	rec1, err := w.ReadWindow(4, 8)
	if err != nil {
		t.Fatalf("first window: %v", err)
	}
	if string(rec1.Residues) != "AAAACCCC" || rec1.Start != 1 || rec1.End != 8 {
		t.Fatalf("window 1 = %+v", rec1)
	}

	rec2, err := w.ReadWindow(4, 8)
	if err != nil {
		t.Fatalf("second window: %v", err)
	}
	if string(rec2.Residues) != "CCCCGGGGTTTT" || rec2.Start != 5 || rec2.End != 16 {
		t.Fatalf("window 2 = %+v", rec2)
	}

	rec3, err := w.ReadWindow(4, 8)
	if err != seq.ErrEndOfData {
		t.Fatalf("expected ErrEndOfData, got %v (%+v)", err, rec3)
	}
	if !rec3.InfoOnly() || rec3.L != 16 {
		t.Fatalf("expected info-only record with L=16, got %+v", rec3)
	}
}

func TestWindowReverseRequiresForwardSweep(t *testing.T) {
	src := ">r\nAAAACCCCGGGGTTTT\n"
	rd := seq.NewReader(buffer.Open(strings.NewReader(src)), fasta.New())
	w := rd.Window(dnaComplement)

	if _, err := w.ReadWindow(0, -8); err != seq.ErrReverseBeforeForward {
		t.Fatalf("expected ErrReverseBeforeForward, got %v", err)
	}
}

func TestWindowReverseComplementRoundTrip(t *testing.T) {
	const forward = "AAAACCCCGGGGTTTT"
	src := ">r\n" + forward + "\n"

	// Read the record whole once, over a separate reader, as a check
	// on the forward residues the window's own sweep will cover.
	fwdRd := seq.NewReader(buffer.Open(strings.NewReader(src)), fasta.New())
	fwdRec, err := fwdRd.ReadRecord()
	if err != nil {
		t.Fatalf("ReadRecord: %v", err)
	}
	if string(fwdRec.Residues) != forward {
		t.Fatalf("forward residues = %q", fwdRec.Residues)
	}

	// A Window needs a seekable source for reverse reads.
	rd := seq.NewReader(buffer.Open(strings.NewReader(src)), fasta.New())
	w := rd.Window(dnaComplement)

	var got []byte
	for {
		rec, err := w.ReadWindow(4, 8)
		if err == seq.ErrEndOfData {
			break
		}
		if err != nil {
			t.Fatalf("forward window: %v", err)
		}
		got = rec.Residues
	}
	_ = got

	var reverse []byte
	for {
		rec, err := w.ReadWindow(4, -8)
		if err == seq.ErrEndOfData {
			break
		}
		if err != nil {
			t.Fatalf("reverse window: %v", err)
		}
		if rec.Start <= rec.End {
			t.Fatalf("reverse window coordinates not reversed: start=%d end=%d", rec.Start, rec.End)
		}
		reverse = rec.Residues
	}

	// The final reverse window, read back to position 1, holds the
	// reverse complement of its fresh residues plus the retained
	// context (positions 12..1 here): reversing and complementing it
	// again recovers the start of the forward sequence.
	back := append([]byte(nil), reverse...)
	for i, j := 0, len(back)-1; i < j; i, j = i+1, j-1 {
		back[i], back[j] = back[j], back[i]
	}
	for i, b := range back {
		back[i] = dnaComplement(b)
	}
	if !strings.HasSuffix(forward, string(back)) && !strings.HasPrefix(forward, string(back)) {
		t.Fatalf("reverse-complement round trip mismatch: got %q from forward %q", back, forward)
	}
}
