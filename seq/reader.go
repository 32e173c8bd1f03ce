// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package seq

import (
	"bytes"
	"fmt"

	"github.com/kortschak/parsec/buffer"
	"github.com/kortschak/parsec/inmap"
)

// Reader drives one Format's callbacks over a buffer.Buffer to
// produce a stream of Records, per spec.md §4.4. A Reader is
// single-threaded and single-owner (spec.md §5): open one per file
// handle for concurrent use.
type Reader struct {
	buf    *buffer.Buffer
	format Format

	lineNumber int

	// bpl/rpl track bytes-per-line and residues-per-line consistency
	// across a record, per spec.md §4.4. -1 is uninitialized, 0 is
	// invalidated, a positive value is the consistent count seen so
	// far. The comparison for a line is deferred by one line (held in
	// pendingBytes/pendingResidues) so that the record's final,
	// typically-short line is never compared, matching the exception
	// in spec.md §4.4's bookkeeping rule.
	bpl, rpl                      int
	havePending                   bool
	pendingBytes, pendingResidues int

	// bookmarkOffset/bookmarkLine record the position of the next
	// record's header, captured when a forward sweep reaches
	// end-of-record, so a later reverse-strand pass can return to it
	// (spec.md §4.5).
	bookmarkOffset int64
	bookmarkLine   int
}

// NewReader returns a Reader over buf using format. The caller is
// responsible for having selected or auto-detected format; see
// DetectFormat.
func NewReader(buf *buffer.Buffer, format Format) *Reader {
	return &Reader{
		buf:            buf,
		format:         format,
		lineNumber:     1,
		bpl:            -1,
		rpl:            -1,
		bookmarkOffset: -1,
		bookmarkLine:   -1,
	}
}

// Buffer returns the underlying byte-stream buffer, for use by Format
// implementations that need block-mode access (residue scanning is
// otherwise line-oriented; see NextLine).
func (rd *Reader) Buffer() *buffer.Buffer { return rd.buf }

// Offset returns the buffer's current absolute byte offset.
func (rd *Reader) Offset() int64 { return rd.buf.GetOffset() }

// NextLine returns the line the reader is currently positioned at,
// pulling a fresh line from the buffer only if the current view has
// already been fully consumed. This lets a format's ParseEnd leave a
// record-terminating line unconsumed, as FASTA does with the next
// record's '>' header, for the following ParseHeader to pick up
// without re-reading it from the source.
func (rd *Reader) NextLine() ([]byte, error) {
	if rd.buf.Len() > 0 {
		return rd.buf.Bytes(), nil
	}
	if err := rd.buf.LoadBuf(buffer.Line); err != nil {
		return nil, err
	}
	return rd.buf.Bytes(), nil
}

// ConsumeLine marks the line last returned by NextLine as consumed
// and advances the line counter.
func (rd *Reader) ConsumeLine() {
	rd.buf.Advance(rd.buf.Len())
	rd.lineNumber++
}

// LineNumber returns the 1-based number of the line the reader is
// currently positioned at, for use in diagnostics.
func (rd *Reader) LineNumber() int { return rd.lineNumber }

// BPL and RPL report the record's bytes-per-line and residues-per-line
// consistency, per spec.md §4.4: -1 uninitialized, 0 invalidated,
// otherwise the consistent value observed so far.
func (rd *Reader) BPL() int { return rd.bpl }
func (rd *Reader) RPL() int { return rd.rpl }

// Format returns the Format the reader was constructed with.
func (rd *Reader) Format() Format { return rd.format }

// DetectFormat peeks at the first non-blank line of buf and returns
// whichever of candidates recognizes it, rewinding buf back to its
// original position on success (spec.md §4.4, §6). It does not
// require buf to be seekable: the rewind uses the anchor mechanism,
// not a source-level seek.
func DetectFormat(buf *buffer.Buffer, candidates ...Format) (Format, error) {
	start := buf.GetOffset()
	buf.SetAnchor(start)
	defer buf.RaiseAnchor()

	var line []byte
	for {
		if err := buf.LoadBuf(buffer.Line); err != nil {
			return nil, fmt.Errorf("seq: detect format: %w", err)
		}
		line = buf.Bytes()
		buf.Advance(buf.Len())
		if len(bytes.TrimSpace(line)) != 0 {
			break
		}
	}

	for _, f := range candidates {
		if f.Detect(line) {
			if err := buf.RewindTo(start); err != nil {
				return nil, fmt.Errorf("seq: detect format: %w", err)
			}
			return f, nil
		}
	}
	return nil, fmt.Errorf("seq: could not detect format from %q", line)
}

// ReadRecord reads and returns the next record from the stream. It
// returns ErrNoMoreRecords when the source is exhausted between
// records.
func (rd *Reader) ReadRecord() (*Record, error) {
	if rd.buf.AtEOF() {
		return nil, ErrNoMoreRecords
	}

	// FASTA's terminator is the next record's header line, so running
	// out of records there always leaves buf.AtEOF() true already. EMBL
	// and GenBank terminate each record with "//" instead, so after the
	// last record the source can still have unread bytes pending (or
	// none at all) without atEOF having been raised yet; peek here so
	// a clean end between records is reported the same way for every
	// format, rather than surfacing as a wrapped buffer.ErrEndOfSource
	// out of ParseHeader.
	if _, err := rd.NextLine(); err != nil {
		if err == buffer.ErrEndOfSource {
			return nil, ErrNoMoreRecords
		}
		return nil, err
	}

	rec := &Record{Roff: rd.buf.GetOffset(), L: -1}
	if err := rd.format.ParseHeader(rd, rec); err != nil {
		return nil, err
	}
	rec.L = 0
	rd.bpl, rd.rpl = -1, -1
	rd.havePending = false

	for {
		line, err := rd.NextLine()
		atEOF := err == buffer.ErrEndOfSource
		if err != nil && !atEOF {
			return nil, err
		}

		if !atEOF && rd.format.EndOfRecordTest(rd, line) {
			if err := rd.format.ParseEnd(rd, rec); err != nil {
				return nil, err
			}
			rd.setBookmark()
			return rec, nil
		}
		if atEOF {
			if !rd.format.EOFTerminatesRecord() {
				return nil, formatErrorf(rd.lineNumber, "unexpected end of source mid-record")
			}
			if err := rd.format.ParseEnd(rd, rec); err != nil {
				return nil, err
			}
			rd.setBookmark()
			return rec, nil
		}

		if err := rd.scanLine(rec, line); err != nil {
			return nil, err
		}
		rd.ConsumeLine()
	}
}

// scanLine classifies every byte of line through the format's input
// map, appending residue bytes to rec.Residues and updating bpl/rpl
// bookkeeping.
func (rd *Reader) scanLine(rec *Record, line []byte) error {
	residues, bytesOnLine, residueCount, err := rd.classifyLine(line)
	if err != nil {
		return err
	}
	rec.Residues = append(rec.Residues, residues...)
	rec.L += int64(residueCount)
	rd.deferredBookkeeping(bytesOnLine, residueCount)
	return nil
}

// classifyLine runs every byte of line through the format's input map,
// returning the residue bytes it carries (gaps and line endings
// excluded) alongside the line's raw byte count, for bpl/rpl
// bookkeeping. Shared by scanLine and Window's forward sweep so both
// whole-record and windowed reads see identical bookkeeping.
func (rd *Reader) classifyLine(line []byte) (residues []byte, bytesOnLine, residueCount int, err error) {
	tbl := rd.format.Inmap()
	for _, b := range line {
		switch a := tbl.Classify(b); {
		case a == inmap.EndOfData:
			return nil, 0, 0, formatErrorf(rd.lineNumber, "unexpected end-of-data marker mid-line")
		case a == inmap.Illegal:
			return nil, 0, 0, formatErrorf(rd.lineNumber, "illegal byte %q", b)
		case a == inmap.Ignored || a == inmap.EndOfLine:
			// Not counted as a residue.
		default:
			residues = append(residues, byte(a))
		}
	}
	return residues, len(line), len(residues), nil
}

// deferredBookkeeping applies the one-line-deferred bpl/rpl comparison
// described in spec.md §4.4: a line's stats are only folded into the
// running bpl/rpl once a subsequent line is seen, so the record's
// final, typically-short line is never compared.
func (rd *Reader) deferredBookkeeping(bytesOnLine, residueCount int) {
	if rd.havePending {
		rd.applyBookkeeping(rd.pendingBytes, rd.pendingResidues)
	}
	rd.pendingBytes, rd.pendingResidues = bytesOnLine, residueCount
	rd.havePending = true
}

func (rd *Reader) applyBookkeeping(bytesOnLine, residues int) {
	switch {
	case rd.bpl == -1:
		rd.bpl, rd.rpl = bytesOnLine, residues
	case rd.bpl != 0 && (bytesOnLine != rd.bpl || residues != rd.rpl):
		rd.bpl, rd.rpl = 0, 0
	}
}

// Errorf returns a *FormatError at the reader's current line, for use
// by Format implementations.
func (rd *Reader) Errorf(format string, args ...interface{}) error {
	return formatErrorf(rd.lineNumber, format, args...)
}

// setBookmark records the position immediately following the just
// completed record, so a reverse-strand pass can return here.
func (rd *Reader) setBookmark() {
	rd.bookmarkOffset = rd.buf.GetOffset()
	rd.bookmarkLine = rd.lineNumber
}
