// Copyright 2026 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bzseek

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

// buildIndexBytes assembles the raw bytes of a BZIX frame (without any
// surrounding data) for the given (compBit, uncompByte) pairs, in either
// prefix (header first) or suffix (header last) placement.
func buildIndexBytes(t *testing.T, pairs [][2]int64, suffix bool) []byte {
	t.Helper()
	entries := make([]byte, len(pairs)*indexEntrySize)
	for i, p := range pairs {
		rec := entries[i*indexEntrySize : (i+1)*indexEntrySize]
		binary.BigEndian.PutUint64(rec[0:8], uint64(p[0]))
		binary.BigEndian.PutUint64(rec[8:16], uint64(p[1]*8))
	}
	var header [8]byte
	copy(header[:4], indexMagic[:])
	binary.BigEndian.PutUint32(header[4:8], uint32(indexFrameHeaderSize+len(entries)))

	var buf bytes.Buffer
	if suffix {
		buf.Write(entries)
		buf.Write(header[:])
	} else {
		buf.Write(header[:])
		buf.Write(entries)
	}
	return buf.Bytes()
}

func samplePairs() [][2]int64 {
	return [][2]int64{
		{0, 0},
		{7200, 100000},
		{14800, 200000},
		{22000, 250000}, // sentinel
	}
}

func TestLoadIndexPrefix(t *testing.T) {
	data := buildIndexBytes(t, samplePairs(), false)
	idx, err := loadIndex(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("loadIndex: %v", err)
	}
	if got, want := idx.numBlocks(), 3; got != want {
		t.Errorf("numBlocks() = %d, want %d", got, want)
	}
	if got, want := idx.length(), int64(250000); got != want {
		t.Errorf("length() = %d, want %d", got, want)
	}
}

func TestLoadIndexSuffix(t *testing.T) {
	data := buildIndexBytes(t, samplePairs(), true)
	idx, err := loadIndex(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("loadIndex: %v", err)
	}
	if got, want := idx.numBlocks(), 3; got != want {
		t.Errorf("numBlocks() = %d, want %d", got, want)
	}
	if got, want := idx.length(), int64(250000); got != want {
		t.Errorf("length() = %d, want %d", got, want)
	}
	if got, want := idx.entries[1].compBitOff, int64(7200); got != want {
		t.Errorf("entries[1].compBitOff = %d, want %d", got, want)
	}
}

func TestLoadIndexSuffixWithLeadingData(t *testing.T) {
	// The suffix placement must be located relative to the end of the
	// whole source, not relative to the start of the index bytes -- mimic
	// an index appended after real compressed data.
	leading := bytes.Repeat([]byte{0xAA}, 37)
	idxBytes := buildIndexBytes(t, samplePairs(), true)
	data := append(append([]byte(nil), leading...), idxBytes...)

	idx, err := loadIndex(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("loadIndex: %v", err)
	}
	if got, want := idx.numBlocks(), 3; got != want {
		t.Errorf("numBlocks() = %d, want %d", got, want)
	}
}

func TestSearch(t *testing.T) {
	data := buildIndexBytes(t, samplePairs(), false)
	idx, err := loadIndex(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("loadIndex: %v", err)
	}
	for _, tc := range []struct {
		pos  int64
		want int
	}{
		{0, 0},
		{99999, 0},
		{100000, 1},
		{199999, 1},
		{200000, 2},
		{249999, 2},
	} {
		if got := idx.search(tc.pos); got != tc.want {
			t.Errorf("search(%d) = %d, want %d", tc.pos, got, tc.want)
		}
	}
}

func TestLoadIndexBadMagic(t *testing.T) {
	data := bytes.Repeat([]byte{0x00}, 32)
	_, err := loadIndex(bytes.NewReader(data), int64(len(data)))
	if !errors.Is(err, ErrBadIndex) {
		t.Fatalf("got %v, want ErrBadIndex", err)
	}
}

func TestLoadIndexNonMonotonic(t *testing.T) {
	pairs := [][2]int64{{0, 0}, {100, 50}, {50, 200}}
	data := buildIndexBytes(t, pairs, false)
	_, err := loadIndex(bytes.NewReader(data), int64(len(data)))
	if !errors.Is(err, ErrBadIndex) {
		t.Fatalf("got %v, want ErrBadIndex", err)
	}
}
