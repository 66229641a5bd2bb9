// Copyright 2026 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bzseek

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestBlockDecompressorReadAndDiscard(t *testing.T) {
	compressed, plaintext := multiBlockFixture(t)
	stats := statsFor(t, compressed)

	src := bytes.NewReader(compressed)
	blockSize := int(compressed[3] - '0')

	bounds := make([]int64, 0, len(stats.Blocks)+1)
	for _, b := range stats.Blocks {
		bounds = append(bounds, int64(b.BitOffset))
	}
	bounds = append(bounds, int64(stats.EOSBitOffset))

	blk, err := assembleBlock(src, blockSize, bounds[0], bounds[1], nil)
	if err != nil {
		t.Fatalf("assembleBlock: %v", err)
	}

	var dec blockDecompressor
	dec.reset(blk)

	// Discard the first 10 bytes, then read the rest; concatenated they
	// must equal this block's share of the original plaintext.
	const skip = 10
	var scratch []byte
	scratch, err = dec.discard(skip, scratch)
	if err != nil {
		t.Fatalf("discard: %v", err)
	}

	rest, err := io.ReadAll(readerFunc(dec.read))
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	want := plaintext[skip : skip+len(rest)]
	if !bytes.Equal(rest, want) {
		t.Errorf("decompressed tail after discard mismatch: got %d bytes, want %d bytes", len(rest), len(want))
	}
}

// readerFunc adapts a Read-shaped method value to io.Reader.
type readerFunc func([]byte) (int, error)

func (f readerFunc) Read(p []byte) (int, error) { return f(p) }

func TestClassifyDecompressError(t *testing.T) {
	if err := classifyDecompressError(nil); err != nil {
		t.Errorf("classifyDecompressError(nil) = %v, want nil", err)
	}
	if err := classifyDecompressError(io.EOF); err != io.EOF {
		t.Errorf("classifyDecompressError(io.EOF) = %v, want io.EOF", err)
	}
	err := classifyDecompressError(io.ErrUnexpectedEOF)
	if !errors.Is(err, ErrUsage) {
		t.Errorf("classifyDecompressError(io.ErrUnexpectedEOF) = %v, want ErrUsage", err)
	}
}
