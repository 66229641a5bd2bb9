// Copyright 2026 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package indexbuilder produces the BZIX sidecar index that bzseek.Open
// consumes. A block's uncompressed size cannot be recovered from the
// compressed bitstream without decoding it -- bzip2 blocks are variable
// size -- so building an index means decompressing the stream once, start
// to finish, and recording where each block began.
package indexbuilder

import (
	"encoding/binary"
	"io"

	"github.com/cosnicolaou/bzseek"
	"github.com/cosnicolaou/bzseek/internal/bitstream"
	"github.com/cosnicolaou/bzseek/internal/bzip2"
)

const (
	indexFrameHeaderSize = 8
	indexEntrySize       = 16
	indexMaxSize         = 1_600_000 // mirrors bzseek's own cap, 100,000 blocks.
)

var indexMagic = [4]byte{'B', 'Z', 'I', 'X'}

// streamEndMagicBytes is streamEndMagic from the root package, duplicated
// here since it's unexported there; both must track the bzip2 format, not
// each other.
var streamEndMagicBytes = []byte{0x17, 0x72, 0x45, 0x38, 0x50, 0x90}

type placement int

const (
	placementSuffix placement = iota
	placementPrefix
)

type buildConfig struct {
	placement placement
	cat       io.Writer
}

// BuildOption customizes Build.
type BuildOption func(*buildConfig)

// WithPrefixPlacement writes the BZIX frame (header, then entries) at the
// start of w, instead of the default suffix placement (entries, then an
// 8-byte header as the very last bytes of w). Use this when the index is
// destined for its own sidecar file rather than being appended to the data
// file it describes.
func WithPrefixPlacement() BuildOption {
	return func(c *buildConfig) { c.placement = placementPrefix }
}

// WithCatWriter streams the decompressed bytes of the stream being scanned
// to cat, as the same pass that builds the index decodes them, so a caller
// wanting both the index and the plaintext never pays to decompress twice.
func WithCatWriter(cat io.Writer) BuildOption {
	return func(c *buildConfig) { c.cat = cat }
}

type entry struct {
	compBit    uint64
	uncompByte uint64
}

// Build scans r, a complete bzip2 stream, and writes a BZIX sidecar index
// frame describing it to w.
func Build(r io.Reader, w io.Writer, opts ...BuildOption) error {
	cfg := buildConfig{placement: placementSuffix}
	for _, opt := range opts {
		opt(&cfg)
	}

	tail := &tailTracker{max: 16}
	dec := bzip2.NewReaderWithStats(io.TeeReader(r, tail))

	buf := make([]byte, 256*1024)
	for {
		n, err := dec.Read(buf)
		if n > 0 && cfg.cat != nil {
			if _, werr := cfg.cat.Write(buf[:n]); werr != nil {
				return &bzseek.Error{Kind: bzseek.KindIO, Msg: "writing decompressed output", Err: werr}
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			if se, ok := err.(bzip2.StructuralError); ok {
				return &bzseek.Error{Kind: bzseek.KindBadData, Msg: "scanning stream for block boundaries", Err: se}
			}
			return &bzseek.Error{Kind: bzseek.KindIO, Msg: "reading compressed stream", Err: err}
		}
	}

	stats := bzip2.StreamStats(dec)
	if len(stats.Blocks) == 0 {
		return &bzseek.Error{Kind: bzseek.KindBadData, Msg: "stream contains no blocks"}
	}

	// Cross-check the trailing magic independently of the decoder's own CRC
	// verification, using the teacher's bit-level scanner against the raw
	// tail bytes we captured in parallel with decompression.
	if _, _, off := bitstream.FindTrailingMagicAndCRC(tail.bytes(), streamEndMagicBytes); off < 0 {
		return &bzseek.Error{Kind: bzseek.KindBadData, Msg: "trailing stream-end magic not found near end of input; index would be unreliable"}
	}

	entries := make([]entry, 0, len(stats.Blocks)+1)
	for _, b := range stats.Blocks {
		entries = append(entries, entry{compBit: b.BitOffset, uncompByte: b.UncompOffset})
	}
	entries = append(entries, entry{compBit: stats.EOSBitOffset, uncompByte: stats.TotalUncompBytes})

	totalSize := indexFrameHeaderSize + len(entries)*indexEntrySize
	if totalSize > indexMaxSize {
		return &bzseek.Error{Kind: bzseek.KindOutOfMem, Msg: "stream has too many blocks for a single BZIX frame"}
	}

	return writeFrame(w, entries, cfg.placement)
}

func writeFrame(w io.Writer, entries []entry, p placement) error {
	entriesBuf := make([]byte, len(entries)*indexEntrySize)
	for i, e := range entries {
		rec := entriesBuf[i*indexEntrySize : (i+1)*indexEntrySize]
		binary.BigEndian.PutUint64(rec[0:8], e.compBit)
		binary.BigEndian.PutUint64(rec[8:16], e.uncompByte*8)
	}

	var header [indexFrameHeaderSize]byte
	copy(header[:4], indexMagic[:])
	binary.BigEndian.PutUint32(header[4:8], uint32(indexFrameHeaderSize+len(entriesBuf))) //#nosec G115 -- bounded by indexMaxSize above.

	write := func(b []byte) error {
		if _, err := w.Write(b); err != nil {
			return &bzseek.Error{Kind: bzseek.KindIO, Msg: "writing index frame", Err: err}
		}
		return nil
	}

	if p == placementPrefix {
		if err := write(header[:]); err != nil {
			return err
		}
		return write(entriesBuf)
	}
	if err := write(entriesBuf); err != nil {
		return err
	}
	return write(header[:])
}

// tailTracker is an io.Writer that retains only the most recent max bytes
// written to it, used alongside io.TeeReader to keep the trailing window of
// raw input available for a post-hoc sanity check without buffering the
// whole stream.
type tailTracker struct {
	max int
	buf []byte
}

func (t *tailTracker) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if len(t.buf) > t.max {
		t.buf = t.buf[len(t.buf)-t.max:]
	}
	return len(p), nil
}

func (t *tailTracker) bytes() []byte { return t.buf }
