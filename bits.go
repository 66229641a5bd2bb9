// Copyright 2026 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bzseek

import "io"

// This file implements the bit-addressed window over a byte-addressed
// source described by the spec's bit buffer component: reading a bit range
// out of a random-access byte source and left-shifting it in place so that
// a sub-byte-aligned run of bits becomes byte-aligned.
//
// NOTE: bzip2 bitstreams pack 8 bits per byte MSB-first, so "shift left"
// here means towards the most significant bit of byte 0, i.e. towards the
// start of the stream.

// roundUpBytes returns the number of whole bytes needed to hold nbits bits.
func roundUpBytes(nbits int64) int64 {
	return (nbits + 7) / 8
}

// bitRange describes a window of bits starting at startBit (inclusive) and
// ending at endBit (exclusive) within a byte-addressed source.
type bitRange struct {
	startBit, endBit int64
}

func (r bitRange) startByte() int64 { return r.startBit / 8 }
func (r bitRange) startOff() int    { return int(r.startBit % 8) }
func (r bitRange) endOff() int      { return int(r.endBit % 8) }
func (r bitRange) nbits() int64     { return r.endBit - r.startBit }

// readBitsInto reads the bytes spanning [r.startBit, r.endBit) from src
// into dst, which must have capacity for at least nread+1 bytes: nread
// bytes of payload plus one trailing shift-pad sentinel byte that
// shiftLeft may read but must never rely on src to have supplied (it is
// always zeroed here). It returns nread, the number of payload bytes
// actually read from src.
func readBitsInto(src io.ReaderAt, r bitRange, dst []byte) (nread int, err error) {
	nread = int(roundUpBytes(r.endBit - r.startByte()*8))
	if len(dst) < nread+1 {
		return 0, newErr(KindUsage, "destination buffer too small: need %d, have %d", nread+1, len(dst))
	}
	n, rerr := src.ReadAt(dst[:nread], r.startByte())
	if rerr != nil && !(rerr == io.EOF && n == nread) {
		return 0, wrapErr(KindIO, rerr, "short read at byte offset %d: got %d of %d bytes", r.startByte(), n, nread)
	}
	dst[nread] = 0 // shift-pad sentinel; shiftLeft below may read but never write past nread-1.
	return nread, nil
}

// shiftLeft left-shifts buf[:n] by k bits (0 <= k < 8) in a single pass,
// consuming one extra trailing byte (buf[n], the shift-pad sentinel) as
// the source of bits shifted in from the right at position n-1. It must
// handle k == 0 without evaluating a shift-by-8, which is undefined for
// Go's fixed-width unsigned shifts exactly as it is in C.
func shiftLeft(buf []byte, n, k int) {
	if k == 0 {
		return
	}
	for i := 0; i < n; i++ {
		buf[i] = buf[i]<<uint(k) | buf[i+1]>>uint(8-k)
	}
}

// maskTrailingBits zeroes the bottom (8-keepBits) bits of b, retaining
// only the top keepBits bits. Used to discard the tail of the final
// bit-data byte that belongs to the next block.
func maskTrailingBits(b byte, keepBits int) byte {
	if keepBits <= 0 {
		return 0
	}
	if keepBits >= 8 {
		return b
	}
	shift := uint(8 - keepBits)
	return (b >> shift) << shift
}
