// Copyright 2026 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bzseek

import (
	"bytes"
	"testing"
)

func TestRoundUpBytes(t *testing.T) {
	for _, tc := range []struct {
		nbits int64
		want  int64
	}{
		{0, 0},
		{1, 1},
		{7, 1},
		{8, 1},
		{9, 2},
		{16, 2},
		{17, 3},
	} {
		if got := roundUpBytes(tc.nbits); got != tc.want {
			t.Errorf("roundUpBytes(%d) = %d, want %d", tc.nbits, got, tc.want)
		}
	}
}

func TestBitRange(t *testing.T) {
	r := bitRange{startBit: 13, endBit: 29}
	if got, want := r.startByte(), int64(1); got != want {
		t.Errorf("startByte() = %d, want %d", got, want)
	}
	if got, want := r.startOff(), 5; got != want {
		t.Errorf("startOff() = %d, want %d", got, want)
	}
	if got, want := r.endOff(), 5; got != want {
		t.Errorf("endOff() = %d, want %d", got, want)
	}
	if got, want := r.nbits(), int64(16); got != want {
		t.Errorf("nbits() = %d, want %d", got, want)
	}
}

func TestShiftLeftZero(t *testing.T) {
	buf := []byte{0xAB, 0xCD, 0x00}
	orig := append([]byte(nil), buf...)
	shiftLeft(buf, 2, 0)
	if !bytes.Equal(buf, orig) {
		t.Errorf("shiftLeft with k=0 modified buf: got %x, want %x", buf, orig)
	}
}

func TestShiftLeft(t *testing.T) {
	// 0xFF 0x00 shifted left by 4 bits should become 0xF0 0x00, pulling in
	// zero bits from the sentinel.
	buf := []byte{0xFF, 0x00, 0x00}
	shiftLeft(buf, 2, 4)
	if want := []byte{0xF0, 0x00}; !bytes.Equal(buf[:2], want) {
		t.Errorf("shiftLeft(0xFF 0x00, k=4) = %x, want %x", buf[:2], want)
	}

	// Shifting in bits from a non-zero sentinel: 0x0F 0x00 with sentinel
	// 0xF0 shifted left by 4 should pull the sentinel's top nibble in.
	buf2 := []byte{0x0F, 0x00, 0xF0}
	shiftLeft(buf2, 2, 4)
	if want := []byte{0xF0, 0x0F}; !bytes.Equal(buf2[:2], want) {
		t.Errorf("shiftLeft with sentinel = %x, want %x", buf2[:2], want)
	}
}

// TestReadBitsExtractionCornerCases exercises the literal start_off = 0
// and start_off = 7 corner cases from spec section 8 directly against the
// bit buffer's read-and-realign path (readBitsInto + shiftLeft), against
// hand-computed expected bytes, independent of any real bzip2 stream.
func TestReadBitsExtractionCornerCases(t *testing.T) {
	src := bytes.NewReader([]byte{0xAB, 0xCD, 0xEF, 0x12})

	for _, tc := range []struct {
		name     string
		startOff int
		r        bitRange
		want     []byte // the first roundUpBytes(nbits) bytes after realignment.
	}{
		{
			name:     "start_off=0",
			startOff: 0,
			r:        bitRange{startBit: 0, endBit: 16},
			want:     []byte{0xAB, 0xCD},
		},
		{
			name:     "start_off=7",
			startOff: 7,
			r:        bitRange{startBit: 7, endBit: 23},
			want:     []byte{0xE6, 0xF7},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.r.startOff(); got != tc.startOff {
				t.Fatalf("startOff() = %d, want %d", got, tc.startOff)
			}
			nread := int(roundUpBytes(tc.r.endBit - tc.r.startByte()*8))
			dst := make([]byte, nread+1)
			n, err := readBitsInto(src, tc.r, dst)
			if err != nil {
				t.Fatalf("readBitsInto: %v", err)
			}
			if got, want := n, nread; got != want {
				t.Fatalf("readBitsInto returned %d bytes, want %d", got, want)
			}
			shiftLeft(dst, nread, tc.startOff)
			nbytes := int(roundUpBytes(tc.r.nbits()))
			if got := dst[:nbytes]; !bytes.Equal(got, tc.want) {
				t.Errorf("realigned bytes = %x, want %x", got, tc.want)
			}
		})
	}
}

func TestMaskTrailingBits(t *testing.T) {
	for _, tc := range []struct {
		b        byte
		keepBits int
		want     byte
	}{
		{0xFF, 0, 0x00},
		{0xFF, 8, 0xFF},
		{0xFF, 4, 0xF0},
		{0xAB, 3, 0xA0},
	} {
		if got := maskTrailingBits(tc.b, tc.keepBits); got != tc.want {
			t.Errorf("maskTrailingBits(%#x, %d) = %#x, want %#x", tc.b, tc.keepBits, got, tc.want)
		}
	}
}
