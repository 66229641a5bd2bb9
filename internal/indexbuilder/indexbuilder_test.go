// Copyright 2026 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package indexbuilder_test

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/cosnicolaou/bzseek/internal"
	"github.com/cosnicolaou/bzseek/internal/indexbuilder"
)

func TestBuildSuffixPlacement(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "fixture")
	plaintext := internal.GenPredictableRandomData(250 * 1000)
	if err := internal.CreateBzipFile(name, "-1", plaintext); err != nil {
		t.Skipf("could not create bzip2 fixture: %v", err)
	}
	compressed, err := os.ReadFile(name + ".bz2")
	if err != nil {
		t.Fatalf("reading fixture: %v", err)
	}

	var out bytes.Buffer
	if err := indexbuilder.Build(bytes.NewReader(compressed), &out); err != nil {
		t.Fatalf("Build: %v", err)
	}

	frame := out.Bytes()
	if len(frame) < 24 {
		t.Fatalf("frame too small: %d bytes", len(frame))
	}
	header := frame[len(frame)-8:]
	if string(header[:4]) != "BZIX" {
		t.Fatalf("missing BZIX magic at end of frame, got %q", header[:4])
	}
	totalSize := int(binary.BigEndian.Uint32(header[4:8]))
	if totalSize != len(frame) {
		t.Errorf("total_size_bytes = %d, want %d (frame is self-contained here)", totalSize, len(frame))
	}
	if (totalSize-8)%16 != 0 {
		t.Errorf("entries region %d bytes does not divide evenly by 16", totalSize-8)
	}
}

func TestBuildPrefixPlacement(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "fixture")
	plaintext := internal.GenPredictableRandomData(50 * 1000)
	if err := internal.CreateBzipFile(name, "-1", plaintext); err != nil {
		t.Skipf("could not create bzip2 fixture: %v", err)
	}
	compressed, err := os.ReadFile(name + ".bz2")
	if err != nil {
		t.Fatalf("reading fixture: %v", err)
	}

	var out bytes.Buffer
	if err := indexbuilder.Build(bytes.NewReader(compressed), &out, indexbuilder.WithPrefixPlacement()); err != nil {
		t.Fatalf("Build: %v", err)
	}

	frame := out.Bytes()
	if string(frame[:4]) != "BZIX" {
		t.Fatalf("missing BZIX magic at start of frame, got %q", frame[:4])
	}
}

func TestBuildWithCatWriter(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "fixture")
	plaintext := internal.GenPredictableRandomData(50 * 1000)
	if err := internal.CreateBzipFile(name, "-1", plaintext); err != nil {
		t.Skipf("could not create bzip2 fixture: %v", err)
	}
	compressed, err := os.ReadFile(name + ".bz2")
	if err != nil {
		t.Fatalf("reading fixture: %v", err)
	}

	var cat bytes.Buffer
	if err := indexbuilder.Build(bytes.NewReader(compressed), io.Discard, indexbuilder.WithCatWriter(&cat)); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !bytes.Equal(cat.Bytes(), plaintext) {
		t.Errorf("cat output mismatch: got %d bytes, want %d bytes", cat.Len(), len(plaintext))
	}
}

func TestBuildRejectsNonBzip2Input(t *testing.T) {
	var out bytes.Buffer
	err := indexbuilder.Build(bytes.NewReader([]byte("not bzip2 data")), &out)
	if err == nil {
		t.Fatalf("expected an error for non-bzip2 input")
	}
}
