// Copyright 2026 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bzseek

import "fmt"

// Kind identifies the class of error reported by this package, mirroring
// the bzseek_err enum of the original C implementation. Use errors.Is
// against the package-level sentinels below rather than comparing Kind
// values directly.
type Kind int

const (
	// KindBadData indicates the compressed stream's preamble, block magic
	// or trailer did not match, or the decompressor rejected the bytes it
	// was given.
	KindBadData Kind = iota + 1
	// KindBadIndex indicates the sidecar index is missing, malformed, out
	// of bounds, or not strictly monotone.
	KindBadIndex
	// KindOutOfMem indicates a scratch-buffer grow or decompressor
	// allocation failed.
	KindOutOfMem
	// KindUsage indicates invalid parameters were passed to the
	// decompressor, or an internal consistency check failed.
	KindUsage
	// KindIO indicates a positioned read against the data or index source
	// returned short or failed.
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindBadData:
		return "malformed bzip2 data"
	case KindBadIndex:
		return "error reading index"
	case KindOutOfMem:
		return "out of memory"
	case KindUsage:
		return "usage error"
	case KindIO:
		return "I/O error"
	default:
		return "unknown error"
	}
}

// Error is the concrete error type returned by this package. It carries a
// Kind so callers can use errors.Is/errors.As against the Err* sentinels
// without string matching, plus free-form context.
type Error struct {
	Kind Kind
	Msg  string
	Err  error // optional wrapped cause, e.g. an underlying io error.
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is allows errors.Is(err, bzseek.ErrBadData) (etc.) to match any *Error
// of the same Kind, regardless of Msg/Err.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newErr(k Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...)}
}

func wrapErr(k Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...), Err: err}
}

// Sentinel values for use with errors.Is. Only the Kind field is
// significant for matching purposes.
var (
	ErrBadData  = &Error{Kind: KindBadData}
	ErrBadIndex = &Error{Kind: KindBadIndex}
	ErrOutOfMem = &Error{Kind: KindOutOfMem}
	ErrUsage    = &Error{Kind: KindUsage}
	ErrIO       = &Error{Kind: KindIO}
)
