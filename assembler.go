// Copyright 2026 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bzseek

import (
	"bytes"
	"io"
)

// blockStartMagic is the 48-bit magic number that introduces every bzip2
// block (see https://en.wikipedia.org/wiki/Bzip2).
var blockStartMagic = [6]byte{0x31, 0x41, 0x59, 0x26, 0x53, 0x59}

// streamEndMagic is the 48-bit magic number that terminates a bzip2
// stream, immediately followed by the 32-bit whole-stream CRC.
var streamEndMagic = [6]byte{0x17, 0x72, 0x45, 0x38, 0x50, 0x90}

// assembleBlockOverhead is the number of extra bytes appended after a
// block's raw payload bytes: 6 for the stream-end magic, 4 for the
// stream-wide CRC, plus one shift-pad sentinel.
const assembleBlockOverhead = 6 + 4 + 1

// assembleBlock extracts the bits [start, end) of src -- the compressed
// payload of a single block, beginning with blockStartMagic -- and wraps
// them in a standalone, single-block bzip2 stream: a 4-byte preamble, the
// block payload, the stream-end magic, and a stream CRC. The stream CRC is
// the block's own CRC, copied verbatim from its header, since that is the
// combined CRC of a stream holding only this block; this is what lets the
// decompressor's final CRC check pass.
//
// scratch is grown as needed and returned (possibly reallocated), sliced
// to the length of the assembled stream; callers should retain and
// reuse the returned slice across calls to amortize allocation, exactly as
// spec section 5's resource policy requires.
func assembleBlock(src io.ReaderAt, blockSize int, start, end int64, scratch []byte) ([]byte, error) {
	r := bitRange{startBit: start, endBit: end}
	nbytes := int(roundUpBytes(r.nbits()))
	nread := int(roundUpBytes(end - r.startByte()*8))

	// Layout while assembling: [0:4) preamble (written last) [4:4+nread)
	// raw bytes read from src [4+nread : 4+nread+10) appended trailer
	// (stream-end magic + CRC) [4+nread+10] shift-pad sentinel.
	needed := 4 + nread + assembleBlockOverhead
	if cap(scratch) < needed {
		scratch = make([]byte, needed)
	}
	scratch = scratch[:needed]

	bitData := scratch[4:]
	if _, err := readBitsInto(src, r, bitData[:nread+1]); err != nil {
		return nil, err
	}

	// Validate the block header against a shifted scratch copy before
	// mutating anything -- a mismatch means the index and data file
	// disagree and must be surfaced, never silently tolerated.
	var header [11]byte
	copy(header[:], bitData[:11])
	startOff := r.startOff()
	shiftLeft(header[:], 10, startOff)
	if !bytes.Equal(header[:6], blockStartMagic[:]) {
		return nil, newErr(KindBadData, "block does not begin with the expected magic number; index and data are inconsistent")
	}
	var streamCRC [4]byte
	copy(streamCRC[:], header[6:10])

	// Append the stream-end magic and the block CRC captured from the
	// header (the stream CRC of a single-block stream) right after the
	// raw bytes that were read, then the shift-pad sentinel.
	copy(bitData[nread:nread+6], streamEndMagic[:])
	copy(bitData[nread+6:nread+10], streamCRC[:])
	bitData[nread+10] = 0

	// The byte at nread-1 straddles the boundary between this block's
	// last bits and whatever follows in the source (the next block, or
	// the source's own trailer), unless the block happens to end exactly
	// on a byte boundary, in which case byte nread-1 is entirely ours and
	// the trailer already starts byte-aligned at bitData[nread] -- touching
	// either would corrupt data rather than merge it.
	endOff := r.endOff()
	if endOff != 0 {
		// Keep only this block's top endOff bits of bitData[nread-1] and OR
		// in the first 8-endOff bits of the (still unshifted) trailer,
		// right-aligned into the vacated low bits.
		origTrailerByte0 := bitData[nread]
		bitData[nread-1] = maskTrailingBits(bitData[nread-1], endOff) | (origTrailerByte0 >> uint(endOff))

		// Now shift the trailer region itself so it sits bit-continuous
		// with the payload that precedes it.
		shiftLeft(bitData[nread:nread+11], 10, 8-endOff)
	}

	// Byte-align the whole payload+trailer region by shifting left by
	// the original start offset.
	shiftLeft(bitData[:nread+11], nread+10, startOff)

	copy(scratch[0:3], "BZh")
	scratch[3] = byte('0' + blockSize)

	buflen := 4 + nbytes + 10
	return scratch[:buflen], nil
}
