// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package index builds and queries an on-disk offset index over a
// sequence file, so random-access lookups by name or ordinal avoid a
// linear scan, per spec.md §4.6. Keys follow the same manually-built
// binary-ordered layout internal/store used for BLAST hit records in
// the teacher repository (a leading tag byte, then either a raw name
// or a big-endian integer), adapted here to two key spaces, by name
// and by read order, sharing one sorted modernc.org/kv store. Values
// under name keys are JSON-encoded Entries, snappy-compressed before
// being committed; values under ordinal keys are the record's name.
package index

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/golang/snappy"
	"modernc.org/kv"

	"github.com/kortschak/parsec/seq"
)

var order = binary.BigEndian

const (
	spaceName   = 'N'
	spaceNumber = 'I'
)

// Entry is the indexed metadata for one sequence record.
type Entry struct {
	Name      string
	Accession string
	Roff      int64
	Doff      int64
	Eoff      int64
	L         int64
}

// Index is an on-disk, sorted offset index over a sequence file's
// records, keyed both by name and by read order.
type Index struct {
	db *kv.DB
}

// Create creates a new index database at path.
func Create(path string) (*Index, error) {
	db, err := kv.Create(path, &kv.Options{Compare: byKeyBytes})
	if err != nil {
		return nil, fmt.Errorf("index: create %s: %w", path, err)
	}
	return &Index{db: db}, nil
}

// Open opens an existing index database at path for lookups.
func Open(path string) (*Index, error) {
	db, err := kv.Open(path, &kv.Options{Compare: byKeyBytes})
	if err != nil {
		return nil, fmt.Errorf("index: open %s: %w", path, err)
	}
	return &Index{db: db}, nil
}

// Close releases the underlying database.
func (idx *Index) Close() error { return idx.db.Close() }

// byKeyBytes orders index keys lexicographically; the leading space
// byte keeps the name and number key spaces from interleaving.
func byKeyBytes(x, y []byte) int { return bytes.Compare(x, y) }

func nameKey(name string) []byte {
	b := make([]byte, 0, 1+len(name))
	b = append(b, spaceName)
	b = append(b, name...)
	return b
}

func numberKey(n int64) []byte {
	b := make([]byte, 9)
	b[0] = spaceNumber
	order.PutUint64(b[1:], uint64(n))
	return b
}

// Build reads every record from rd in order, committing an Entry for
// each under both its name and its ordinal, batching commits every
// 100 records as the teacher's region-merge pass does (cmd/ins/
// fragment.go:merge).
func Build(idx *Index, rd *seq.Reader) (n int64, err error) {
	const batch = 100
	inTx := false
	for n = 0; ; n++ {
		rec, err := rd.ReadRecord()
		if err == seq.ErrNoMoreRecords {
			break
		}
		if err != nil {
			if inTx {
				idx.db.Rollback()
			}
			return n, err
		}

		if n%batch == 0 {
			if err := idx.db.BeginTransaction(); err != nil {
				return n, err
			}
			inTx = true
		}

		entry := Entry{
			Name:      rec.Name,
			Accession: rec.Accession,
			Roff:      rec.Roff,
			Doff:      rec.Doff,
			Eoff:      rec.Eoff,
			L:         rec.L,
		}
		raw, err := json.Marshal(entry)
		if err != nil {
			return n, err
		}
		compressed := snappy.Encode(nil, raw)
		if err := idx.db.Set(nameKey(rec.Name), compressed); err != nil {
			return n, err
		}
		if err := idx.db.Set(numberKey(n), []byte(rec.Name)); err != nil {
			return n, err
		}

		if n%batch == batch-1 {
			log.Printf("index: committing %d records", n+1)
			if err := idx.db.Commit(); err != nil {
				return n, err
			}
			inTx = false
		}
	}
	if inTx {
		if err := idx.db.Commit(); err != nil {
			return n, err
		}
	}
	return n, nil
}

// FindName returns the indexed Entry for the record named name.
func (idx *Index) FindName(name string) (Entry, error) {
	v, err := idx.db.Get(nil, nameKey(name))
	if err != nil {
		return Entry{}, err
	}
	if v == nil {
		return Entry{}, seq.ErrNotFound
	}
	return unmarshalEntry(v)
}

// FindNumber returns the indexed Entry for the n'th record (0-based)
// in read order.
func (idx *Index) FindNumber(n int64) (Entry, error) {
	name, err := idx.db.Get(nil, numberKey(n))
	if err != nil {
		return Entry{}, err
	}
	if name == nil {
		return Entry{}, seq.ErrNotFound
	}
	return idx.FindName(string(name))
}

func unmarshalEntry(compressed []byte) (Entry, error) {
	raw, err := snappy.Decode(nil, compressed)
	if err != nil {
		return Entry{}, fmt.Errorf("index: corrupt entry: %w", err)
	}
	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return Entry{}, fmt.Errorf("index: corrupt entry: %w", err)
	}
	return e, nil
}

// All calls fn for every indexed Entry in name order, stopping and
// returning the first error either fn or the underlying iteration
// returns.
func (idx *Index) All(fn func(Entry) error) error {
	it, err := idx.db.SeekFirst()
	if err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}
	for {
		k, v, err := it.Next()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if len(k) == 0 || k[0] != spaceName {
			continue
		}
		e, err := unmarshalEntry(v)
		if err != nil {
			return err
		}
		if err := fn(e); err != nil {
			return err
		}
	}
}
