// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package seq

import (
	"fmt"

	"github.com/kortschak/parsec/buffer"
	"github.com/kortschak/parsec/inmap"
)

// Window performs a bounded-memory walk over one record's residues,
// per spec.md §4.5: a forward sweep that holds the requested
// context-plus-width in memory, plus whatever is left unreturned of the
// line being scanned, optionally followed by a
// reverse, reverse-complemented walk back over the same record once
// the forward sweep has established its length and line geometry.
//
// A Window is single-use: open a new one (Reader.Window) for each
// record.
type Window struct {
	rd  *Reader
	rec *Record

	complement func(byte) byte

	started          bool
	forwardDone      bool
	forwardExhausted bool

	// pos is the 1-based position of the next residue the forward
	// sweep has not yet handed to a caller.
	pos int64
	// ahead holds residues already pulled from the line currently
	// being scanned but not yet returned, because the prior call's
	// width was satisfied mid-line.
	ahead []byte
	// lastWindow holds the full content (context plus fresh) of the
	// most recently returned window, so the next call can peel off
	// its own context from the tail (forward) or head (reverse).
	lastWindow []byte

	reverseStarted bool
	reverseDone    bool
	reversePos     int64
}

// Window returns a new Window over the reader's next record. complement
// maps a residue byte to its complement and is required only for
// reverse-strand reads; it may be nil if the caller never passes a
// negative width to ReadWindow.
func (rd *Reader) Window(complement func(byte) byte) *Window {
	return &Window{rd: rd, pos: 1, complement: complement}
}

// ReadWindow returns the next slice of the record's residues. A
// positive width requests a forward read of up to width fresh
// residues, prefixed with up to context residues retained from the
// previous call. A negative width requests a reverse, reverse-
// complemented read of up to -width fresh residues moving toward the
// start of the record, prefixed with up to context residues retained
// from the previous reverse call; this requires a completed forward
// sweep, a seekable source, and a non-nil complement function.
//
// When a sweep (forward or reverse) has no more residues to give,
// ReadWindow returns a non-nil, InfoOnly Record alongside ErrEndOfData.
func (w *Window) ReadWindow(context, width int) (*Record, error) {
	switch {
	case width > 0:
		return w.readForward(context, width)
	case width < 0:
		return w.readReverse(context, -width)
	default:
		return nil, ErrOutOfRange
	}
}

func (w *Window) readForward(context, width int) (*Record, error) {
	if !w.started {
		w.rec = &Record{Roff: w.rd.buf.GetOffset(), L: -1}
		if err := w.rd.format.ParseHeader(w.rd, w.rec); err != nil {
			return nil, err
		}
		w.rec.L = 0
		w.rd.bpl, w.rd.rpl = -1, -1
		w.rd.havePending = false
		w.started = true
		context = 0
	}
	if w.forwardExhausted {
		return nil, fmt.Errorf("seq: forward sweep already complete")
	}

	leftCtx := w.trailingContext(context)
	fresh := w.ahead
	w.ahead = nil

	for len(fresh) < width && !w.forwardDone {
		line, err := w.rd.NextLine()
		atEOF := err == buffer.ErrEndOfSource
		if err != nil && !atEOF {
			return nil, err
		}

		if !atEOF && w.rd.format.EndOfRecordTest(w.rd, line) {
			if err := w.rd.format.ParseEnd(w.rd, w.rec); err != nil {
				return nil, err
			}
			w.rd.setBookmark()
			w.forwardDone = true
			break
		}
		if atEOF {
			if !w.rd.format.EOFTerminatesRecord() {
				return nil, formatErrorf(w.rd.lineNumber, "unexpected end of source mid-record")
			}
			if err := w.rd.format.ParseEnd(w.rd, w.rec); err != nil {
				return nil, err
			}
			w.rd.setBookmark()
			w.forwardDone = true
			break
		}

		residues, bytesOnLine, residueCount, err := w.rd.classifyLine(line)
		if err != nil {
			return nil, err
		}
		w.rec.L += int64(residueCount)
		fresh = append(fresh, residues...)
		w.rd.deferredBookkeeping(bytesOnLine, residueCount)
		w.rd.ConsumeLine()
	}

	if len(fresh) > width {
		w.ahead = append([]byte(nil), fresh[width:]...)
		fresh = fresh[:width]
	}

	if w.forwardDone && len(fresh) == 0 {
		w.forwardExhausted = true
		return w.infoRecord(), ErrEndOfData
	}

	start := w.pos - int64(len(leftCtx))
	end := w.pos + int64(len(fresh)) - 1
	w.pos = end + 1

	full := append(append([]byte(nil), leftCtx...), fresh...)
	w.lastWindow = full

	return &Record{
		Name:        w.rec.Name,
		Accession:   w.rec.Accession,
		Description: w.rec.Description,
		Residues:    full,
		L:           w.rec.L,
		Roff:        w.rec.Roff,
		Doff:        w.rec.Doff,
		Eoff:        w.rec.Eoff,
		Start:       start,
		End:         end,
	}, nil
}

// trailingContext returns up to n residues from the tail of the most
// recently returned window.
func (w *Window) trailingContext(n int) []byte {
	if n <= 0 || len(w.lastWindow) == 0 {
		return nil
	}
	if n > len(w.lastWindow) {
		n = len(w.lastWindow)
	}
	return append([]byte(nil), w.lastWindow[len(w.lastWindow)-n:]...)
}

func (w *Window) infoRecord() *Record {
	return &Record{
		Name:        w.rec.Name,
		Accession:   w.rec.Accession,
		Description: w.rec.Description,
		L:           w.rec.L,
		Roff:        w.rec.Roff,
		Doff:        w.rec.Doff,
		Eoff:        w.rec.Eoff,
	}
}

func (w *Window) readReverse(context, width int) (*Record, error) {
	if !w.forwardDone {
		return nil, ErrReverseBeforeForward
	}
	if !w.rd.buf.Seekable() {
		return nil, ErrCannotReposition
	}
	if w.complement == nil {
		return nil, fmt.Errorf("seq: reverse read requires a complement function")
	}
	if !w.reverseStarted {
		w.reversePos = w.rec.L
		w.reverseStarted = true
		w.lastWindow = nil
		context = 0
	}
	if w.reverseDone {
		return nil, fmt.Errorf("seq: reverse sweep already complete")
	}

	// The running window string is always ordered from high genomic
	// position to low, so the overlap carried into the next call is
	// the tail of the previous window, its lowest positions, adjacent
	// to where the next call's fresh residues continue. Same
	// trailing-edge rule the forward sweep uses.
	leadCtx := w.trailingContext(context)

	end := w.reversePos
	start := end - int64(width) + 1
	if start < 1 {
		start = 1
	}
	n := end - start + 1
	if n <= 0 {
		w.reverseDone = true
		if w.rd.bookmarkOffset >= 0 {
			if err := w.rd.buf.Reposition(w.rd.bookmarkOffset); err != nil {
				return nil, err
			}
			w.rd.lineNumber = w.rd.bookmarkLine
		}
		return w.infoRecord(), ErrEndOfData
	}

	off, ok := w.residueOffset(start)
	if ok {
		if err := w.rd.buf.Reposition(off); err != nil {
			return nil, err
		}
	} else {
		if err := w.rd.buf.Reposition(w.rec.Doff); err != nil {
			return nil, err
		}
		if err := w.skipResidues(start - 1); err != nil {
			return nil, err
		}
	}
	fresh, err := w.readResidues(n)
	if err != nil {
		return nil, err
	}
	reverseComplement(fresh, w.complement)

	w.reversePos = start - 1

	full := append(append([]byte(nil), leadCtx...), fresh...)
	w.lastWindow = full

	return &Record{
		Name:        w.rec.Name,
		Accession:   w.rec.Accession,
		Description: w.rec.Description,
		Residues:    full,
		L:           w.rec.L,
		Roff:        w.rec.Roff,
		Doff:        w.rec.Doff,
		Eoff:        w.rec.Eoff,
		Start:       end + int64(len(leadCtx)),
		End:         start,
	}, nil
}

// residueOffset computes the absolute file offset of the start'th
// residue (1-based) of the record, using the O(1) formula from
// spec.md §4.5. It requires a consistent bpl/rpl from the forward
// sweep; ok is false when that geometry is unknown or was invalidated,
// in which case the caller must fall back to scanning from Doff.
func (w *Window) residueOffset(start int64) (offset int64, ok bool) {
	if w.rd.bpl <= 0 || w.rd.rpl <= 0 {
		return 0, false
	}
	bpl, rpl := int64(w.rd.bpl), int64(w.rd.rpl)
	p := start - 1
	return w.rec.Doff + (p/rpl)*bpl + p%rpl, true
}

// readResidues pulls n residues from the reader's buffer starting at
// its current position, in block mode, skipping gap and line-ending
// bytes along the way.
func (w *Window) readResidues(n int64) ([]byte, error) {
	out := make([]byte, 0, n)
	tbl := w.rd.format.Inmap()
	for int64(len(out)) < n {
		if w.rd.buf.Len() == 0 {
			if err := w.rd.buf.LoadBuf(buffer.Block); err != nil {
				return nil, fmt.Errorf("seq: reverse read: %w", err)
			}
		}
		data := w.rd.buf.Bytes()
		used := 0
		for _, b := range data {
			used++
			switch a := tbl.Classify(b); {
			case a == inmap.Illegal, a == inmap.EndOfData:
				return nil, formatErrorf(w.rd.lineNumber, "illegal byte %q during reverse read", b)
			case a == inmap.Ignored, a == inmap.EndOfLine:
			default:
				out = append(out, byte(a))
			}
			if int64(len(out)) >= n {
				break
			}
		}
		w.rd.buf.Advance(used)
	}
	return out, nil
}

// skipResidues discards n residues from the reader's current position,
// used as the fallback positioning strategy when bpl/rpl geometry is
// unavailable.
func (w *Window) skipResidues(n int64) error {
	if n <= 0 {
		return nil
	}
	tbl := w.rd.format.Inmap()
	var skipped int64
	for skipped < n {
		if w.rd.buf.Len() == 0 {
			if err := w.rd.buf.LoadBuf(buffer.Block); err != nil {
				return fmt.Errorf("seq: skip residues: %w", err)
			}
		}
		data := w.rd.buf.Bytes()
		used := 0
		for _, b := range data {
			used++
			switch a := tbl.Classify(b); {
			case a == inmap.Illegal, a == inmap.EndOfData:
				return formatErrorf(w.rd.lineNumber, "illegal byte %q while skipping", b)
			case a == inmap.Ignored, a == inmap.EndOfLine:
			default:
				skipped++
			}
			if skipped >= n {
				break
			}
		}
		w.rd.buf.Advance(used)
	}
	return nil
}

// FetchSubseq reads the 1-based, inclusive residue range [start, end]
// from the next record on rd, which must already be positioned at
// that record's start (its Roff), as index lookups leave it per
// spec.md §4.6. It is a thin convenience over Window's forward sweep:
// skip to start, then read the requested span.
func FetchSubseq(rd *Reader, start, end int64) (*Record, error) {
	if start < 1 || end < start {
		return nil, ErrOutOfRange
	}
	w := rd.Window(nil)
	if start > 1 {
		if _, err := w.ReadWindow(0, int(start-1)); err != nil && err != ErrEndOfData {
			return nil, err
		}
	}
	return w.ReadWindow(0, int(end-start+1))
}

// reverseComplement reverses b in place and maps each byte through
// complement, turning a forward-strand slice into its reverse
// complement.
func reverseComplement(b []byte, complement func(byte) byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = complement(b[j]), complement(b[i])
	}
	if len(b)%2 == 1 {
		mid := len(b) / 2
		b[mid] = complement(b[mid])
	}
}
