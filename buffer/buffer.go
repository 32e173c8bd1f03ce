// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package buffer implements the chunk-loading input buffer shared by
// the JSON and sequence-format parsers: a byte-stream reader that can
// be consumed incrementally in either fixed-size blocks or single
// lines, that tracks absolute file offsets as it goes, and that can
// hold an anchor so that an earlier position can be rewound to during
// format auto-detection.
package buffer

import (
	"bufio"
	"errors"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"

	"github.com/biogo/external"
)

// ChunkSize is the number of bytes requested from the source on each
// LoadMem call.
const ChunkSize = 4096

var (
	// ErrEndOfSource is returned when the underlying source has no
	// further bytes to offer.
	ErrEndOfSource = errors.New("buffer: end of source")
	// ErrCannotReposition is returned by Reposition when the
	// underlying source is not seekable.
	ErrCannotReposition = errors.New("buffer: cannot reposition non-seekable source")
)

// Mode selects the buffer's current view.
type Mode int

const (
	// Block exposes fixed-size chunks of the source.
	Block Mode = iota
	// Line exposes one newline-terminated line at a time.
	Line
)

// Buffer is a chunk-loading byte-stream reader with anchor support and
// two view modes, as described in spec.md §4.1.
type Buffer struct {
	src    io.Reader
	seeker io.Seeker
	closer io.Closer

	mem  []byte // staged, not-yet-discarded bytes
	moff int64  // absolute offset of mem[0]
	mpos int    // bytes of mem already handed to a view

	recording          bool
	anchorSet          bool
	anchor             int64
	preAnchorRecording bool

	atEOF bool

	mode Mode

	buf  []byte
	nc   int
	bpos int
	boff int64
}

// Open wraps an arbitrary io.Reader as a Buffer. If r implements
// io.Seeker, Reposition is available; if it implements io.Closer,
// Close will close it.
func Open(r io.Reader) *Buffer {
	b := &Buffer{src: r, mode: Block}
	if s, ok := r.(io.Seeker); ok {
		b.seeker = s
	}
	if c, ok := r.(io.Closer); ok {
		b.closer = c
	}
	return b
}

// OpenFile opens name as a Buffer. The name "-" denotes standard
// input, read as a non-seekable source.
func OpenFile(name string) (*Buffer, error) {
	if name == "-" {
		return Open(os.Stdin), nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	return Open(f), nil
}

// OpenMemory maps name into memory and returns a seekable Buffer
// backed by the mapping, the "in-memory byte array" source kind of
// spec.md §4.1. The caller must call Close to unmap the file.
func OpenMemory(name string) (*Buffer, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}
	rs := &memSource{data: m, file: f}
	b := Open(rs)
	b.closer = rs
	return b, nil
}

// memSource adapts an mmap.MMap to io.ReadSeeker and io.Closer.
type memSource struct {
	data mmap.MMap
	file *os.File
	pos  int
}

func (m *memSource) Read(p []byte) (int, error) {
	if m.pos >= len(m.data) {
		return 0, io.EOF
	}
	n := copy(p, m.data[m.pos:])
	m.pos += n
	return n, nil
}

func (m *memSource) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(m.pos) + offset
	case io.SeekEnd:
		abs = int64(len(m.data)) + offset
	default:
		return 0, errors.New("buffer: invalid whence")
	}
	if abs < 0 {
		return 0, errors.New("buffer: negative position")
	}
	m.pos = int(abs)
	return abs, nil
}

func (m *memSource) Close() error {
	err := m.data.Unmap()
	cerr := m.file.Close()
	if err != nil {
		return err
	}
	return cerr
}

// OpenPipe opens a non-seekable external decompression pipe over name,
// the ".gz" source kind of spec.md §6. The caller must call Close to
// release the child process.
func OpenPipe(name string) (*Buffer, error) {
	p := gunzip{In: name}
	cl := external.Must(external.Build(p))
	cmd := newCommand(cl)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	b := Open(stdout)
	b.seeker = nil // pipes are never seekable
	b.closer = waitCloser{cmd: cmd, rc: stdout}
	return b, nil
}

// gunzip builds a "gzip -dc <file>" command line via the teacher's
// external.Build struct-tag convention (see blast.MakeDB).
type gunzip struct {
	Cmd string `buildarg:"{{if .}}{{.}}{{else}}gzip{{end}}"`
	In  string `buildarg:"-dc{{split}}{{.}}"`
}

// Anchor.

// SetAnchor records offset as the earliest byte that must remain
// available in mem, enabling a later RewindTo back to it.
// Setting an anchor implicitly enables recording; RaiseAnchor restores
// whatever recording setting was in effect before this call.
func (b *Buffer) SetAnchor(offset int64) {
	b.preAnchorRecording = b.recording
	b.anchorSet = true
	b.anchor = offset
	b.recording = true
}

// RaiseAnchor clears the active anchor and restores recording to its
// pre-SetAnchor value, so a one-shot peek-and-rewind (DetectFormat,
// json's partial re-parse) doesn't leave mem growing unbounded for
// the rest of the stream.
func (b *Buffer) RaiseAnchor() {
	b.anchorSet = false
	b.recording = b.preAnchorRecording
}

// SetRecording enables or disables unconditional retention of
// consumed bytes, independent of any anchor.
func (b *Buffer) SetRecording(on bool) {
	b.recording = on
}

// LoadMem appends up to ChunkSize bytes from the source into mem,
// compacting already-consumed bytes first unless an anchor or
// recording requires they be retained.
func (b *Buffer) LoadMem() error {
	if !b.recording && !b.anchorSet {
		if b.mpos > 0 {
			b.mem = append(b.mem[:0], b.mem[b.mpos:]...)
			b.moff += int64(b.mpos)
			b.mpos = 0
		}
	} else if b.anchorSet {
		rel := int(b.anchor - b.moff)
		if rel > 0 && rel <= len(b.mem) {
			b.mem = append(b.mem[:0], b.mem[rel:]...)
			b.moff += int64(rel)
			b.mpos -= rel
		}
	}

	chunk := make([]byte, ChunkSize)
	n, err := b.src.Read(chunk)
	if n > 0 {
		b.mem = append(b.mem, chunk[:n]...)
	}
	if err != nil {
		if err == io.EOF {
			b.atEOF = true
			if n == 0 {
				return ErrEndOfSource
			}
			return nil
		}
		return err
	}
	return nil
}

// LoadBuf refills the active view. In Block mode it exposes whatever
// bytes are currently staged past the read head as one block,
// refilling from the source first if nothing is staged. In Line mode
// it copies bytes one at a time into a private line buffer until a
// newline is seen or the source ends.
func (b *Buffer) LoadBuf(mode Mode) error {
	b.mode = mode
	switch mode {
	case Block:
		return b.loadBlock()
	case Line:
		return b.loadLine()
	default:
		panic("buffer: unknown mode")
	}
}

func (b *Buffer) loadBlock() error {
	if b.mpos >= len(b.mem) && !b.atEOF {
		if err := b.LoadMem(); err != nil && err != ErrEndOfSource {
			return err
		}
	}
	b.boff = b.moff + int64(b.mpos)
	b.buf = b.mem[b.mpos:]
	b.nc = len(b.buf)
	b.bpos = 0
	b.mpos = len(b.mem)
	if b.nc == 0 && b.atEOF {
		return ErrEndOfSource
	}
	return nil
}

func (b *Buffer) loadLine() error {
	b.boff = b.moff + int64(b.mpos)
	line := b.buf[:0]
	for {
		if b.mpos >= len(b.mem) {
			if b.atEOF {
				break
			}
			if err := b.LoadMem(); err != nil && err != ErrEndOfSource {
				return err
			}
			if b.mpos >= len(b.mem) {
				break
			}
		}
		c := b.mem[b.mpos]
		b.mpos++
		line = append(line, c)
		if c == '\n' {
			break
		}
	}
	b.buf = line
	b.nc = len(line)
	b.bpos = 0
	if b.nc == 0 && b.atEOF {
		return ErrEndOfSource
	}
	return nil
}

// Bytes returns the currently loaded view.
func (b *Buffer) Bytes() []byte { return b.buf[b.bpos:b.nc] }

// Len returns the number of unconsumed bytes in the current view.
func (b *Buffer) Len() int { return b.nc - b.bpos }

// Advance marks n bytes of the current view as consumed.
func (b *Buffer) Advance(n int) { b.bpos += n }

// AtEOF reports whether the source is known to be exhausted and the
// current view is empty.
func (b *Buffer) AtEOF() bool { return b.atEOF && b.Len() == 0 }

// GetOffset returns the absolute offset of the next byte to consume.
func (b *Buffer) GetOffset() int64 { return b.boff + int64(b.bpos) }

// Reposition seeks the underlying source to offset. It fails with
// ErrCannotReposition if the source is not seekable.
func (b *Buffer) Reposition(offset int64) error {
	if b.seeker == nil {
		return ErrCannotReposition
	}
	_, err := b.seeker.Seek(offset, io.SeekStart)
	if err != nil {
		return err
	}
	b.mem = b.mem[:0]
	b.moff = offset
	b.mpos = 0
	b.atEOF = false
	b.anchorSet = false
	b.buf = nil
	b.nc = 0
	b.bpos = 0
	b.boff = offset
	return nil
}

// RewindTo moves the read position back to offset without touching the
// underlying source, which is possible only if offset is still held
// in mem, typically because an anchor covering it was set earlier and
// has not yet been raised. This is the peek-and-rewind operation format
// auto-detection uses (spec.md §3, §6), and unlike Reposition it works
// on non-seekable sources such as pipes.
func (b *Buffer) RewindTo(offset int64) error {
	rel := offset - b.moff
	if rel < 0 || rel > int64(len(b.mem)) {
		return ErrCannotReposition
	}
	b.mpos = int(rel)
	b.buf = nil
	b.nc = 0
	b.bpos = 0
	b.boff = offset
	return nil
}

// Seekable reports whether Reposition is supported.
func (b *Buffer) Seekable() bool { return b.seeker != nil }

// Close releases any resources (open files, mmaps, child processes)
// held by the Buffer.
func (b *Buffer) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}

// BufferedSource lets Open accept a bufio.Reader for tests that want
// finer control over chunk boundaries than the source itself provides.
func BufferedSource(r io.Reader) io.Reader {
	return bufio.NewReader(r)
}
