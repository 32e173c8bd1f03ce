// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package index

import (
	"github.com/biogo/store/interval"
)

// Overlap reports that two indexed records claim overlapping byte
// ranges in the source file, which should never happen in a
// well-formed sequence file.
type Overlap struct {
	NameA, NameB string
	AStart, AEnd int64
	BStart, BEnd int64
}

// Audit scans every indexed Entry and reports any pair whose [Roff,
// Eoff] byte ranges overlap, using the same interval.IntTree
// containment-query approach the teacher used to cull contained BLAST
// hits (cmd/ins/main.go:cullContained), here repurposed to check
// non-overlap of record extents instead of culling by score.
func Audit(idx *Index) ([]Overlap, error) {
	var entries []Entry
	if err := idx.All(func(e Entry) error {
		entries = append(entries, e)
		return nil
	}); err != nil {
		return nil, err
	}

	var tree interval.IntTree
	for i, e := range entries {
		iv := recordSpan{uid: uintptr(i), entry: e}
		if err := tree.Insert(iv, true); err != nil {
			return nil, err
		}
	}
	tree.AdjustRanges()

	var overlaps []Overlap
	seen := make(map[[2]uintptr]bool)
	for i, e := range entries {
		q := recordSpan{entry: e}
		for _, h := range tree.Get(q) {
			hit := h.(recordSpan)
			if hit.uid == uintptr(i) {
				continue
			}
			a, b := uintptr(i), hit.uid
			if a > b {
				a, b = b, a
			}
			key := [2]uintptr{a, b}
			if seen[key] {
				continue
			}
			seen[key] = true
			overlaps = append(overlaps, Overlap{
				NameA: e.Name, AStart: e.Roff, AEnd: e.Eoff,
				NameB: hit.entry.Name, BStart: hit.entry.Roff, BEnd: hit.entry.Eoff,
			})
		}
	}
	return overlaps, nil
}

// recordSpan adapts an Entry's byte range to interval.IntTree's
// IntInterface, testing for any overlap (not just containment).
type recordSpan struct {
	uid   uintptr
	entry Entry
}

func (r recordSpan) Overlap(b interval.IntRange) bool {
	start, end := int(r.entry.Roff), int(r.entry.Eoff)
	return start <= b.End && b.Start <= end
}

func (r recordSpan) ID() uintptr { return r.uid }

func (r recordSpan) Range() interval.IntRange {
	return interval.IntRange{Start: int(r.entry.Roff), End: int(r.entry.Eoff)}
}
