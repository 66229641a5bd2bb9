// Copyright 2026 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bzseek

import (
	"bytes"
	"encoding/binary"
	"io"
)

// indexMagic is the 4-byte magic that opens the sidecar directory frame,
// per spec section 4.3/6.
var indexMagic = [4]byte{'B', 'Z', 'I', 'X'}

const (
	indexFrameHeaderSize = 8  // magic + u32 total size.
	indexEntrySize       = 16 // two u64be fields.
	indexMinSize         = 16
	indexMaxSize         = 1_600_000 // caps the directory to 100,000 blocks.
)

// indexEntry pairs a block's compressed bit offset with its uncompressed
// byte offset. The final entry in an index is a sentinel marking
// end-of-stream on both axes.
type indexEntry struct {
	compBitOff   int64
	uncompByteOff int64
}

// blockIndex is the parsed, validated sidecar directory for one compressed
// stream: N entries describing block starts plus a trailing sentinel.
type blockIndex struct {
	entries []indexEntry
}

// numBlocks returns the number of real (non-sentinel) blocks.
func (idx *blockIndex) numBlocks() int {
	return len(idx.entries) - 1
}

// length returns the total uncompressed length of the stream, i.e. the
// sentinel entry's uncompressed byte offset.
func (idx *blockIndex) length() int64 {
	return idx.entries[len(idx.entries)-1].uncompByteOff
}

// search returns the largest i such that entries[i].uncompByteOff <= pos.
// The caller must already have established pos < idx.length(), so the
// result is always a valid (non-sentinel) block index.
func (idx *blockIndex) search(pos int64) int {
	i, j := 0, len(idx.entries)
	for j-i != 1 {
		x := (i + j) / 2
		if idx.entries[x].uncompByteOff <= pos {
			i = x
		} else {
			j = x
		}
	}
	return i
}

// loadIndex locates and parses the BZIX sidecar frame within src, which
// has the given total length in bytes. The frame may be at byte offset 0
// (prefix placement: header, then entries) or its 8-byte header may be the
// final 8 bytes of the file (suffix placement: entries, then header).
func loadIndex(src io.ReaderAt, srcLen int64) (*blockIndex, error) {
	var head [indexFrameHeaderSize]byte

	if _, err := src.ReadAt(head[:], 0); err != nil && err != io.EOF {
		return nil, wrapErr(KindIO, err, "reading index frame header at offset 0")
	}
	if bytes.Equal(head[:4], indexMagic[:]) {
		totalSize, err := validTotalSize(head[4:8])
		if err != nil {
			return nil, err
		}
		return parseEntries(src, indexFrameHeaderSize, totalSize-indexFrameHeaderSize)
	}

	if srcLen < indexFrameHeaderSize {
		return nil, newErr(KindBadIndex, "no BZIX magic found and file too small for a trailing header")
	}
	tailOffset := srcLen - indexFrameHeaderSize
	if _, err := src.ReadAt(head[:], tailOffset); err != nil && err != io.EOF {
		return nil, wrapErr(KindIO, err, "reading index frame header at offset %d", tailOffset)
	}
	if !bytes.Equal(head[:4], indexMagic[:]) {
		return nil, newErr(KindBadIndex, "BZIX magic not found at start or end of index source")
	}
	totalSize, err := validTotalSize(head[4:8])
	if err != nil {
		return nil, err
	}
	// Known source bug (original bzipseek.c): it computes the frame start
	// with a relative fseeko from the cursor left over by the trailing-
	// header read, which is fragile. Compute it absolutely instead: the
	// frame ends exactly at EOF, entries first and the header last.
	frameStart := srcLen - totalSize
	return parseEntries(src, frameStart, totalSize-indexFrameHeaderSize)
}

// validTotalSize decodes and range-checks the big-endian u32 total_size_bytes
// field of an index frame header.
func validTotalSize(b []byte) (int64, error) {
	totalSize := int64(binary.BigEndian.Uint32(b))
	if totalSize < indexMinSize || totalSize > indexMaxSize {
		return 0, newErr(KindBadIndex, "index total_size_bytes %d out of range [%d, %d]", totalSize, indexMinSize, indexMaxSize)
	}
	return totalSize, nil
}

// parseEntries reads and validates the entriesSize bytes of index entries
// located at entriesOffset.
func parseEntries(src io.ReaderAt, entriesOffset, entriesSize int64) (*blockIndex, error) {
	if entriesSize%indexEntrySize != 0 {
		return nil, newErr(KindBadIndex, "index entries size %d does not divide evenly into %d-byte entries", entriesSize, indexEntrySize)
	}
	n := int(entriesSize / indexEntrySize)

	buf := make([]byte, entriesSize)
	if _, err := src.ReadAt(buf, entriesOffset); err != nil && err != io.EOF {
		return nil, wrapErr(KindIO, err, "reading %d index entries", n)
	}

	entries := make([]indexEntry, n)
	for i := 0; i < n; i++ {
		rec := buf[i*indexEntrySize : (i+1)*indexEntrySize]
		compBits := int64(binary.BigEndian.Uint64(rec[0:8]))
		uncompBits := int64(binary.BigEndian.Uint64(rec[8:16]))
		entries[i] = indexEntry{
			compBitOff:    compBits,
			uncompByteOff: uncompBits / 8,
		}
	}

	for i := 0; i < n-1; i++ {
		if entries[i].compBitOff >= entries[i+1].compBitOff {
			return nil, newErr(KindBadIndex, "compressed offsets not strictly increasing at entry %d", i)
		}
		if entries[i].uncompByteOff >= entries[i+1].uncompByteOff {
			return nil, newErr(KindBadIndex, "uncompressed offsets not strictly increasing at entry %d", i)
		}
	}

	return &blockIndex{entries: entries}, nil
}
