// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.
package bitstream

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

func TestBitShift(t *testing.T) {
	b := func(b ...byte) []byte {
		return b
	}
	for i, tc := range []struct {
		i, o []byte
	}{
		{b(0x00, 0x00, 0x00, 0x00, 0x00, 0x00), b(0x00, 0x00, 0x00, 0x00, 0x00, 0x00)},
		{b(0x00, 0x00, 0x00, 0x00, 0xFF, 0xFF), b(0x00, 0x00, 0x00, 0x00, 0x7F, 0xFF)},
		{b(0x80, 0x80, 0x80, 0x80, 0x80, 0x80), b(0x40, 0x40, 0x40, 0x40, 0x40, 0x40)},
		{b(0x11, 0x11, 0x11, 0x11, 0x11, 0x11), b(0x08, 0x88, 0x88, 0x88, 0x88, 0x88)},
		{b(0x80, 0x00, 0x00, 0x00, 0x00, 0x00), b(0x40, 0x00, 0x00, 0x00, 0x00, 0x00)},
		{b(0x80, 0x00, 0x00, 0x00, 0x00, 0xFF), b(0x40, 0x00, 0x00, 0x00, 0x00, 0x7F)},
		{b(0b00000000, 0b00110001, 0b10011010, 0b11001010, 0b11111111, 0b11111111),
			b(0b00000000, 0b00011000, 0b11001101, 0b01100101, 0b01111111, 0b11111111)},
	} {
		cpy := make([]byte, len(tc.i))
		copy(cpy, tc.i)
		if got, want := ShiftRight(cpy), tc.o; !bytes.Equal(got, want) {
			t.Logf("got: %v", prbits(got))
			t.Logf("want: %v", prbits(want))
			t.Errorf("%v: got %08b, want %08b", i, got, want)
		}
	}
}

func prbits(in []byte) string {
	var out strings.Builder
	for _, v := range in {
		out.WriteString(fmt.Sprintf("%x ", v))
	}
	return out.String()
}

var eosMagic = []byte{0x17, 0x72, 0x45, 0x38, 0x50, 0x90}

func TestFindTrailingMagicAndCRC(t *testing.T) {
	crc := []byte{0x01, 0x02, 0x03, 0x04}
	end := 10
	for i := 0; i < 8; i++ {
		buf := make([]byte, 6+4+1)
		copy(buf, eosMagic)
		copy(buf[6:], crc)
		for s := 0; s < i; s++ {
			buf = ShiftRight(buf)
		}
		found, length, offset := FindTrailingMagicAndCRC(buf[:end], eosMagic)
		if got, want := found, crc; !bytes.Equal(got, want) {
			t.Errorf("%v: got: %02x, want %02x\n", i, got, want)
		}
		if got, want := length, 10; got != want {
			t.Errorf("%v: got: %02x, want %02x\n", i, got, want)
		}
		if got, want := offset, i; got != want {
			t.Errorf("%v: got: %02x, want %02x\n", i, got, want)
		}
		end = 11
	}
}

func TestFindTrailingMagicAndCRCTooShort(t *testing.T) {
	for _, tc := range [][]byte{
		nil,
		{0x00, 0x01, 0x02},
		bytes.Repeat([]byte{0x00}, 9),
	} {
		if crc, length, offset := FindTrailingMagicAndCRC(tc, eosMagic); crc != nil || length != -1 || offset != -1 {
			t.Errorf("FindTrailingMagicAndCRC(%d bytes) = (%v, %v, %v), want (nil, -1, -1)", len(tc), crc, length, offset)
		}
	}
}

func TestFindTrailingMagicAndCRCNotPresent(t *testing.T) {
	buf := bytes.Repeat([]byte{0xAA}, 11)
	if crc, length, offset := FindTrailingMagicAndCRC(buf, eosMagic); crc != nil || length != -1 || offset != -1 {
		t.Errorf("FindTrailingMagicAndCRC(no magic) = (%v, %v, %v), want (nil, -1, -1)", crc, length, offset)
	}
}
