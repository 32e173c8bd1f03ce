// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package buffer

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func drainBlocks(t *testing.T, b *Buffer) []byte {
	t.Helper()
	var got []byte
	for {
		err := b.LoadBuf(Block)
		if err == ErrEndOfSource {
			break
		}
		if err != nil {
			t.Fatalf("LoadBuf: %v", err)
		}
		got = append(got, b.Bytes()...)
		b.Advance(b.Len())
	}
	return got
}

func TestBlockModeRoundTrip(t *testing.T) {
	want := strings.Repeat("ACGTACGTAC\n", 1000)
	b := Open(strings.NewReader(want))
	got := drainBlocks(t, b)
	if string(got) != want {
		t.Fatalf("got %d bytes, want %d", len(got), len(want))
	}
}

func TestLineMode(t *testing.T) {
	want := []string{"line one\n", "line two\n", "no newline at end"}
	b := Open(strings.NewReader(strings.Join(want, "")))
	for i, w := range want {
		err := b.LoadBuf(Line)
		if err != nil && err != ErrEndOfSource {
			t.Fatalf("line %d: LoadBuf: %v", i, err)
		}
		if got := string(b.Bytes()); got != w {
			t.Fatalf("line %d: got %q, want %q", i, got, w)
		}
		b.Advance(b.Len())
	}
	err := b.LoadBuf(Line)
	if err != ErrEndOfSource {
		t.Fatalf("expected ErrEndOfSource at end, got %v", err)
	}
}

func TestOffsetTracking(t *testing.T) {
	data := strings.Repeat("x", ChunkSize*3+7)
	b := Open(strings.NewReader(data))
	var total int64
	for {
		err := b.LoadBuf(Block)
		if err == ErrEndOfSource {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		if b.GetOffset() != total {
			t.Fatalf("offset mismatch: got %d want %d", b.GetOffset(), total)
		}
		n := b.Len()
		b.Advance(n)
		total += int64(n)
		if b.GetOffset() != total {
			t.Fatalf("offset after advance mismatch: got %d want %d", b.GetOffset(), total)
		}
	}
	if total != int64(len(data)) {
		t.Fatalf("total consumed %d, want %d", total, len(data))
	}
}

// anchorSource is a minimal io.Reader over data, with no Seek method,
// that fills each Read call's buffer as far as data allows; it is used
// to exercise anchor retention across many LoadMem calls.
type anchorSource struct {
	data []byte
	pos  int
}

func (s *anchorSource) Read(p []byte) (int, error) {
	if s.pos >= len(s.data) {
		return 0, io.EOF
	}
	n := copy(p, s.data[s.pos:])
	s.pos += n
	return n, nil
}

func TestAnchorRetainsBytes(t *testing.T) {
	data := bytes.Repeat([]byte("0123456789"), 2000)
	b := Open(&anchorSource{data: data})

	// Consume a block, then anchor at its start so later compaction
	// can't discard it, then consume several more blocks.
	if err := b.LoadBuf(Block); err != nil {
		t.Fatal(err)
	}
	anchorOff := b.GetOffset()
	b.SetAnchor(anchorOff)
	first := append([]byte(nil), b.Bytes()...)
	b.Advance(b.Len())

	for i := 0; i < 5; i++ {
		if err := b.LoadBuf(Block); err != nil && err != ErrEndOfSource {
			t.Fatal(err)
		}
		b.Advance(b.Len())
	}

	rel := int(anchorOff - b.moff)
	if rel < 0 || rel+len(first) > len(b.mem) {
		t.Fatalf("anchor bytes no longer available in mem: rel=%d len(mem)=%d", rel, len(b.mem))
	}
	if !bytes.Equal(b.mem[rel:rel+len(first)], first) {
		t.Fatalf("anchored bytes corrupted")
	}
	b.RaiseAnchor()
}

func TestRewindToWithinAnchor(t *testing.T) {
	b := Open(&anchorSource{data: bytes.Repeat([]byte("0123456789"), 2000)})

	if err := b.LoadBuf(Block); err != nil {
		t.Fatal(err)
	}
	anchorOff := b.GetOffset()
	b.SetAnchor(anchorOff)
	b.Advance(b.Len())

	for i := 0; i < 3; i++ {
		if err := b.LoadBuf(Block); err != nil && err != ErrEndOfSource {
			t.Fatal(err)
		}
		b.Advance(b.Len())
	}

	if err := b.RewindTo(anchorOff); err != nil {
		t.Fatalf("RewindTo: %v", err)
	}
	if got := b.GetOffset(); got != anchorOff {
		t.Fatalf("offset after rewind = %d, want %d", got, anchorOff)
	}
	if err := b.LoadBuf(Block); err != nil {
		t.Fatal(err)
	}
	if got := string(b.Bytes()[:10]); got != "0123456789" {
		t.Fatalf("bytes after rewind = %q", got)
	}
	b.RaiseAnchor()
}

func TestNonSeekableRepositionFails(t *testing.T) {
	b := Open(&anchorSource{data: []byte("abc")})
	if err := b.Reposition(0); err != ErrCannotReposition {
		t.Fatalf("got %v, want ErrCannotReposition", err)
	}
}

type seekReader struct {
	*bytes.Reader
}

func TestSeekableReposition(t *testing.T) {
	data := []byte("0123456789")
	b := Open(&seekReader{bytes.NewReader(data)})
	if !b.Seekable() {
		t.Fatal("expected seekable source")
	}
	if err := b.LoadBuf(Block); err != nil {
		t.Fatal(err)
	}
	if err := b.Reposition(5); err != nil {
		t.Fatal(err)
	}
	if err := b.LoadBuf(Block); err != nil {
		t.Fatal(err)
	}
	if got := string(b.Bytes()); got != "56789" {
		t.Fatalf("got %q, want %q", got, "56789")
	}
}
