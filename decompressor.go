// Copyright 2026 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bzseek

import (
	"bytes"
	"io"

	"github.com/cosnicolaou/bzseek/internal/bzip2"
)

// blockDecompressor adapts the internal bzip2 decoder to the narrow,
// restartable contract the seek engine needs: feed it a standalone,
// single-block bzip2 stream (as produced by assembleBlock) and pump bytes
// out of it until either the requested amount has been produced or the
// stream is exhausted. It holds no state across distinct blocks -- each
// call to reset starts a fresh underlying decoder, mirroring the
// init/feed/pump/end lifecycle of the original streaming primitive.
type blockDecompressor struct {
	src io.Reader
}

// reset (re-)initializes the decompressor to read the standalone stream in
// buf. buf is retained, not copied, and is read lazily as output is
// pumped, so it must not be modified until the next call to reset.
func (d *blockDecompressor) reset(buf []byte) {
	d.src = bzip2.NewReader(bytes.NewReader(buf))
}

// discard pumps and discards exactly n bytes of decompressed output. It is
// used to fast-forward within a block to the offset the caller actually
// wants, per the seek engine's skip-ahead step.
func (d *blockDecompressor) discard(n int64, scratch []byte) ([]byte, error) {
	if cap(scratch) == 0 {
		scratch = make([]byte, 32*1024)
	}
	for n > 0 {
		want := int64(len(scratch))
		if n < want {
			want = n
		}
		got, err := io.ReadFull(d.src, scratch[:want])
		n -= int64(got)
		if err != nil {
			return scratch, classifyDecompressError(err)
		}
	}
	return scratch, nil
}

// read pumps decompressed bytes into p, exactly as io.Reader.Read would,
// except that bzip2.StructuralError and short reads are translated into
// this package's Kind-tagged *Error so callers never need to know the
// decoder's own error types.
func (d *blockDecompressor) read(p []byte) (int, error) {
	n, err := d.src.Read(p)
	if err != nil && err != io.EOF {
		err = classifyDecompressError(err)
	}
	return n, err
}

// classifyDecompressError maps the underlying decoder's errors onto this
// package's error kinds: any bzip2.StructuralError (bad magic, checksum
// mismatch, malformed Huffman tables, and so on) is data corruption, never
// a usage or resource error. io.ErrUnexpectedEOF arises only when the index
// claims a block is longer than it actually decodes to -- an internal
// consistency failure between index and data, not an I/O fault.
func classifyDecompressError(err error) error {
	if err == nil || err == io.EOF {
		return err
	}
	if err == io.ErrUnexpectedEOF {
		return wrapErr(KindUsage, err, "block produced fewer bytes than the index promised")
	}
	if _, ok := err.(bzip2.StructuralError); ok {
		return wrapErr(KindBadData, err, "decompressing assembled block")
	}
	return wrapErr(KindIO, err, "decompressing assembled block")
}
