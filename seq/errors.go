// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package seq

import (
	"errors"
	"fmt"
)

// Sentinel errors for the normal-termination and failure signals of
// spec.md §7. FORMAT errors are represented by *FormatError rather
// than a sentinel, since they always carry a line number.
var (
	// ErrNoMoreRecords is returned by Reader.ReadRecord when the
	// source holds no further records.
	ErrNoMoreRecords = errors.New("seq: no more records")
	// ErrNotFound is returned by index lookups for an unknown key.
	ErrNotFound = errors.New("seq: key not found")
	// ErrOutOfRange is returned when requested subseq coordinates
	// fall outside a record, or a window width is zero.
	ErrOutOfRange = errors.New("seq: coordinates out of range")
	// ErrCannotReposition is returned when a reverse-strand or
	// random-access read is attempted on a non-seekable source.
	ErrCannotReposition = errors.New("seq: cannot reposition non-seekable source")
	// ErrReverseBeforeForward is returned when a reverse read is
	// requested before a forward sweep of the record has completed,
	// per spec.md §4.5's documented precondition.
	ErrReverseBeforeForward = errors.New("seq: reverse read requires a completed forward sweep")
	// ErrEndOfData is returned by Window.ReadWindow alongside a final,
	// info-only Record when a forward sweep or reverse sweep has no
	// further residues to give, per spec.md §4.5.
	ErrEndOfData = errors.New("seq: end of windowed data")
)

// FormatError reports a malformed sequence record, with the line
// number at which the problem was detected.
type FormatError struct {
	Msg  string
	Line int
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("seq: %s at line %d", e.Msg, e.Line)
}

func formatErrorf(line int, format string, args ...interface{}) error {
	return &FormatError{Msg: fmt.Sprintf(format, args...), Line: line}
}
