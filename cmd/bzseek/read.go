// Copyright 2026 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cosnicolaou/bzseek"
)

func runRead(ctx context.Context, values interface{}, args []string) error {
	cl := values.(*readFlags)
	if cl.Length <= 0 {
		return fmt.Errorf("--len must be positive")
	}

	data, err := os.Open(args[0]) //#nosec G304 -- args[0] is an operator-supplied CLI argument.
	if err != nil {
		return err
	}
	defer data.Close()
	info, err := data.Stat()
	if err != nil {
		return err
	}

	var opts []bzseek.OpenOption
	if len(cl.Index) > 0 {
		idxFile, err := os.Open(cl.Index) //#nosec G304 -- cl.Index is an operator-supplied CLI argument.
		if err != nil {
			return err
		}
		defer idxFile.Close()
		idxInfo, err := idxFile.Stat()
		if err != nil {
			return err
		}
		opts = append(opts, bzseek.WithIndexSource(idxFile, idxInfo.Size()))
	}

	r, err := bzseek.Open(data, info.Size(), opts...)
	if err != nil {
		return err
	}
	defer r.Close()

	buf := make([]byte, cl.Length)
	n, err := r.ReadAt(buf, cl.Offset)
	if n > 0 {
		if _, werr := os.Stdout.Write(buf[:n]); werr != nil {
			return werr
		}
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
