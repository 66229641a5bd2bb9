// Copyright 2026 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"cloudeng.io/cmdutil"
	"cloudeng.io/cmdutil/subcmd"
	"cloudeng.io/errors"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/cosnicolaou/bzseek/internal/indexbuilder"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/file/s3file"
	"github.com/schollz/progressbar/v2"
	"golang.org/x/crypto/ssh/terminal"
)

type buildIndexFlags struct {
	Output string `subcmd:"o,,'write the index to this file instead of appending it to the input'"`
	Cat    bool   `subcmd:"cat,false,'also write the decompressed stream to stdout as the index is built'"`
}

type catFlags struct{}

type readFlags struct {
	Offset int64  `subcmd:"offset,0,'uncompressed byte offset to read from'"`
	Length int64  `subcmd:"len,0,'number of uncompressed bytes to read'"`
	Index  string `subcmd:"index,,'sidecar index file, if not appended to the input file'"`
}

type inspectFlags struct{}

var cmdSet *subcmd.CommandSet

func init() {
	buildIndexCmd := subcmd.NewCommand("build-index",
		subcmd.MustRegisterFlagStruct(&buildIndexFlags{}, nil, nil),
		runBuildIndex, subcmd.ExactlyNumArguments(1))
	buildIndexCmd.Document(`scan a bzip2 file and write a BZIX sidecar index for it, enabling random-access reads via the read subcommand.`)

	catCmd := subcmd.NewCommand("cat",
		subcmd.MustRegisterFlagStruct(&catFlags{}, nil, nil),
		runCat, subcmd.AtLeastNArguments(1))
	catCmd.Document(`decompress bzip2 files to stdout. Files may be local, on S3 or a URL.`)

	readCmd := subcmd.NewCommand("read",
		subcmd.MustRegisterFlagStruct(&readFlags{}, nil, nil),
		runRead, subcmd.ExactlyNumArguments(1))
	readCmd.Document(`read a span of uncompressed bytes from a bzip2 file via its sidecar index, writing them to stdout.`)

	inspectCmd := subcmd.NewCommand("inspect",
		subcmd.MustRegisterFlagStruct(&inspectFlags{}, nil, nil),
		runInspect, subcmd.ExactlyNumArguments(1))
	inspectCmd.Document(`print the block directory of a BZIX sidecar index.`)

	cmdSet = subcmd.NewCommandSet(buildIndexCmd, catCmd, readCmd, inspectCmd)
	cmdSet.Document(`build and query BZIX sidecar indexes for random-access reading of bzip2 files. Files may be local, on S3 or a URL.`)

	file.RegisterImplementation("s3", func() file.Implementation {
		return s3file.NewImplementation(
			s3file.NewDefaultProvider(session.Options{}), s3file.Options{})
	})
}

func main() {
	cmdSet.MustDispatch(context.Background())
}

func openFileOrURL(ctx context.Context, name string) (io.ReadCloser, int64, error) {
	if strings.HasPrefix(name, "http") {
		resp, err := http.Get(name) //#nosec G107 -- name is an operator-supplied CLI argument.
		if err != nil {
			return nil, 0, err
		}
		return resp.Body, resp.ContentLength, nil
	}
	info, err := file.Stat(ctx, name)
	if err != nil {
		return nil, 0, err
	}
	f, err := file.Open(ctx, name)
	if err != nil {
		return nil, 0, err
	}
	return readCloser{f.Reader(ctx), func() error { return f.Close(ctx) }}, info.Size(), nil
}

// readCloser adapts a grailbio file.Reader plus its owning file's Close
// into a plain io.ReadCloser.
type readCloser struct {
	io.Reader
	close func() error
}

func (r readCloser) Close() error { return r.close() }

func createFile(ctx context.Context, name string) (io.WriteCloser, error) {
	if len(name) == 0 {
		return nopCloseWriter{os.Stdout}, nil
	}
	f, err := file.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	return writeCloser{f.Writer(ctx), func() error { return f.Close(ctx) }}, nil
}

type writeCloser struct {
	io.Writer
	close func() error
}

func (w writeCloser) Close() error { return w.close() }

type nopCloseWriter struct{ io.Writer }

func (nopCloseWriter) Close() error { return nil }

func progressBar(wr io.Writer, size int64) *progressbar.ProgressBar {
	bar := progressbar.NewOptions64(size,
		progressbar.OptionSetBytes64(size),
		progressbar.OptionSetWriter(wr),
		progressbar.OptionSetPredictTime(true))
	bar.RenderBlank()
	return bar
}

func isTTY() bool {
	return terminal.IsTerminal(int(os.Stderr.Fd()))
}

func runBuildIndex(ctx context.Context, values interface{}, args []string) error {
	cl := values.(*buildIndexFlags)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	cmdutil.HandleSignals(cancel, os.Interrupt)

	in, size, err := openFileOrURL(ctx, args[0])
	if err != nil {
		return err
	}
	defer in.Close()

	var catOut io.Writer
	if cl.Cat {
		catOut = os.Stdout
	}

	var opts []indexbuilder.BuildOption
	if cl.Cat {
		opts = append(opts, indexbuilder.WithCatWriter(catOut))
	}

	var bar *progressbar.ProgressBar
	var src io.Reader = in
	if size > 0 && isTTY() {
		bar = progressBar(os.Stderr, size)
		src = io.TeeReader(in, progressWriter{bar})
	}

	if len(cl.Output) > 0 {
		opts = append(opts, indexbuilder.WithPrefixPlacement())
		out, err := createFile(ctx, cl.Output)
		if err != nil {
			return err
		}
		defer out.Close()
		return indexbuilder.Build(src, out, opts...)
	}

	// Suffix placement: the index is appended to the data file itself, so
	// data and index must be the same underlying file opened for append.
	if strings.HasPrefix(args[0], "http") {
		return fmt.Errorf("build-index without -o requires a local file to append to, not a URL: %v", args[0])
	}
	f, err := os.OpenFile(args[0], os.O_WRONLY|os.O_APPEND, 0) //#nosec G304 -- args[0] is an operator-supplied CLI argument.
	if err != nil {
		return err
	}
	defer f.Close()
	return indexbuilder.Build(src, f, opts...)
}

type progressWriter struct{ bar *progressbar.ProgressBar }

func (p progressWriter) Write(b []byte) (int, error) {
	p.bar.Add(len(b))
	return len(b), nil
}

func runCat(ctx context.Context, values interface{}, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	cmdutil.HandleSignals(cancel, os.Interrupt)

	errs := &errors.M{}
	for _, arg := range args {
		in, _, err := openFileOrURL(ctx, arg)
		if err != nil {
			errs.Append(err)
			continue
		}
		err = indexbuilder.Build(in, io.Discard, indexbuilder.WithCatWriter(os.Stdout))
		errs.Append(err)
		errs.Append(in.Close())
	}
	return errs.Err()
}
