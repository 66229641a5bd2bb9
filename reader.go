// Copyright 2026 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bzseek

import (
	"errors"
	"io"
)

// Reader provides random-access reading of a bzip2 stream via a sidecar
// index: Open once, then ReadAt any number of times in any order. A Reader
// is not safe for concurrent use; callers needing concurrent access should
// open independent Readers over the same underlying files.
type Reader struct {
	data    io.ReaderAt
	idxSrc  io.ReaderAt
	idx     *blockIndex
	blockSz int // block-size class, 1-9, from the stream preamble.

	dec      blockDecompressor
	blockBuf []byte // assembled standalone stream for curBlock, reused.
	discard  []byte // fixed-size skip-ahead sink, reused.
	curBlock int     // index into idx.entries, or -1 if none loaded.
	produced int64   // bytes emitted by dec since its last reset.

	closed bool
}

type openConfig struct {
	index    io.ReaderAt
	indexLen int64
}

// OpenOption customizes Open.
type OpenOption func(*openConfig)

// WithIndexSource directs Open to load the sidecar index from a source
// distinct from the compressed data (for example a separate ".bzix" file),
// rather than aliasing the data source itself.
func WithIndexSource(src io.ReaderAt, length int64) OpenOption {
	return func(c *openConfig) {
		c.index = src
		c.indexLen = length
	}
}

// Open validates the stream preamble of data, loads the sidecar index (from
// index, if WithIndexSource was given, otherwise from data itself), and
// returns a Reader positioned with no block loaded. dataLen is the total
// byte length of data; it is needed to locate a tail-placed index frame.
func Open(data io.ReaderAt, dataLen int64, opts ...OpenOption) (*Reader, error) {
	cfg := openConfig{index: data, indexLen: dataLen}
	for _, opt := range opts {
		opt(&cfg)
	}

	var preamble [4]byte
	if _, err := data.ReadAt(preamble[:], 0); err != nil && err != io.EOF {
		return nil, wrapErr(KindIO, err, "reading stream preamble")
	}
	if preamble[0] != 'B' || preamble[1] != 'Z' || preamble[2] != 'h' {
		return nil, newErr(KindBadData, "missing BZh stream preamble")
	}
	if preamble[3] < '1' || preamble[3] > '9' {
		return nil, newErr(KindBadData, "invalid block-size digit %q", preamble[3])
	}

	idx, err := loadIndex(cfg.index, cfg.indexLen)
	if err != nil {
		return nil, err
	}

	return &Reader{
		data:     data,
		idxSrc:   cfg.index,
		idx:      idx,
		blockSz:  int(preamble[3] - '0'),
		curBlock: -1,
		discard:  make([]byte, 1024),
	}, nil
}

// Len returns the total uncompressed length of the stream.
func (r *Reader) Len() int64 {
	return r.idx.length()
}

// ReadAt implements io.ReaderAt: it fills p with the uncompressed bytes
// starting at off, transparently spanning block boundaries, and returns
// io.EOF (with a short count) only once off has genuinely run past Len().
// A request entirely within bounds always returns len(p), nil.
func (r *Reader) ReadAt(p []byte, off int64) (int, error) {
	if r.closed {
		return 0, newErr(KindUsage, "ReadAt called on a closed Reader")
	}
	if off < 0 {
		return 0, newErr(KindUsage, "negative offset %d", off)
	}

	total := 0
	for len(p) > 0 {
		if err := r.locate(off); err != nil {
			if err == io.EOF {
				return total, io.EOF
			}
			return total, err
		}
		if err := r.skipTo(off); err != nil {
			return total, err
		}

		blockEnd := r.idx.entries[r.curBlock+1].uncompByteOff
		want := blockEnd - off
		if want > int64(len(p)) {
			want = int64(len(p))
		}

		n, err := r.dec.read(p[:want])
		r.produced += int64(n)
		total += n
		p = p[n:]
		off += int64(n)
		if err != nil && err != io.EOF {
			return total, err
		}
		// A StreamEnd (io.EOF) here is normal termination of this block's
		// decompressor; the next loop iteration re-locates into whatever
		// block follows, or reports true Eof if none does.
	}
	return total, nil
}

// Close releases the scratch buffer and decompressor state and closes the
// data and index sources if they implement io.Closer (the common case when
// Open was given *os.File values). It is safe to call once; the Reader must
// not be used afterwards.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.blockBuf = nil
	r.discard = nil
	r.dec = blockDecompressor{}

	var dataErr, idxErr error
	if c, ok := r.data.(io.Closer); ok {
		dataErr = c.Close()
	}
	if r.idxSrc != r.data {
		if c, ok := r.idxSrc.(io.Closer); ok {
			idxErr = c.Close()
		}
	}
	return errors.Join(dataErr, idxErr)
}
