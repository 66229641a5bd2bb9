// Copyright 2026 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"os"
)

var indexMagic = [4]byte{'B', 'Z', 'I', 'X'}

const (
	indexFrameHeaderSize = 8
	indexEntrySize       = 16
)

// runInspect prints the block directory of a BZIX sidecar index, reading
// the raw frame directly rather than via bzseek.Open, since an index being
// debugged may not be attached to a valid data file at all.
func runInspect(ctx context.Context, values interface{}, args []string) error {
	f, err := os.Open(args[0]) //#nosec G304 -- args[0] is an operator-supplied CLI argument.
	if err != nil {
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}

	var head [indexFrameHeaderSize]byte
	if _, err := f.ReadAt(head[:], 0); err != nil {
		return err
	}

	var entriesOff int64
	if bytes.Equal(head[:4], indexMagic[:]) {
		entriesOff = indexFrameHeaderSize
	} else {
		tailOff := info.Size() - indexFrameHeaderSize
		if _, err := f.ReadAt(head[:], tailOff); err != nil {
			return err
		}
		if !bytes.Equal(head[:4], indexMagic[:]) {
			return fmt.Errorf("%v: BZIX magic not found at start or end of file", args[0])
		}
		totalSize := int64(binary.BigEndian.Uint32(head[4:8]))
		entriesOff = info.Size() - totalSize
	}

	totalSize := int64(binary.BigEndian.Uint32(head[4:8]))
	entriesSize := totalSize - indexFrameHeaderSize
	if entriesSize < 0 || entriesSize%indexEntrySize != 0 {
		return fmt.Errorf("%v: malformed index total_size_bytes %d", args[0], totalSize)
	}
	n := int(entriesSize / indexEntrySize)
	buf := make([]byte, entriesSize)
	if _, err := f.ReadAt(buf, entriesOff); err != nil {
		return err
	}

	fmt.Printf("=== %v ===\n", args[0])
	fmt.Printf("%-8s %-20s %-20s %-12s\n", "block", "comp bit offset", "uncomp byte offset", "uncomp span")
	var prevUncomp int64
	for i := 0; i < n; i++ {
		rec := buf[i*indexEntrySize : (i+1)*indexEntrySize]
		compBit := int64(binary.BigEndian.Uint64(rec[0:8]))
		uncompByte := int64(binary.BigEndian.Uint64(rec[8:16])) / 8
		if i == 0 {
			prevUncomp = uncompByte
			fmt.Printf("%-8s %-20d %-20d %-12s\n", "start", compBit, uncompByte, "-")
			continue
		}
		fmt.Printf("%-8d %-20d %-20d %-12d\n", i-1, compBit, uncompByte, uncompByte-prevUncomp)
		prevUncomp = uncompByte
	}
	return nil
}
