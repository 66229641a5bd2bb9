// Copyright 2026 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bzseek

import "io"

// locate ensures the block containing pos is the one currently loaded,
// assembling and (re-)initializing the decompressor only when necessary.
// It returns io.EOF once pos has run off the end of the stream.
func (r *Reader) locate(pos int64) error {
	if r.curBlock != -1 {
		cb := r.idx.entries[r.curBlock]
		cbNext := r.idx.entries[r.curBlock+1]
		if cb.uncompByteOff <= pos && pos < cbNext.uncompByteOff {
			return nil
		}
	}
	if pos >= r.idx.length() {
		return io.EOF
	}

	i := r.idx.search(pos)
	r.curBlock = i

	blk, err := assembleBlock(r.data, r.blockSz, r.idx.entries[i].compBitOff, r.idx.entries[i+1].compBitOff, r.blockBuf)
	if err != nil {
		return err
	}
	r.blockBuf = blk
	r.dec.reset(r.blockBuf)
	r.produced = 0
	return nil
}

// skipTo fast-forwards (or rewinds and replays) the currently loaded
// block's decompressor until its cumulative output reaches pos. The caller
// must have already called locate(pos) so pos falls within the current
// block's uncompressed range.
func (r *Reader) skipTo(pos int64) error {
	blockStart := r.idx.entries[r.curBlock].uncompByteOff
	cur := blockStart + r.produced

	if cur > pos {
		r.dec.reset(r.blockBuf)
		r.produced = 0
		cur = blockStart
	}

	if cur < pos {
		n := pos - cur
		var err error
		r.discard, err = r.dec.discard(n, r.discard)
		if err != nil {
			return err
		}
		r.produced += n
	}
	return nil
}
