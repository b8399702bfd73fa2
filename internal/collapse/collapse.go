/*
Package collapse converts raw stack-sampling profiler output into the
canonical folded stack format consumed by the flamegraph renderer.

A folded stack is one line per unique stack: frame names joined with ';',
root-first, followed by a space and the aggregated sample count. Each
supported profiler format provides a record parser; the surrounding record
accumulator and folded-key aggregation are shared.
*/
package collapse

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bufio"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spkg/bom"
)

// maxLineSize bounds the scanner's token buffer. Deeply inlined stacks can
// produce very long lines.
const maxLineSize = 1024 * 1024

// Folder collapses one profiler format into folded stacks.
type Folder interface {
	// Collapse reads profiler output from r and writes folded stacks to w.
	Collapse(r io.Reader, w io.Writer) error
	// CollapseFiles reads the named files in order and writes the combined
	// folded stacks to w. A path of "-", or an empty list, reads stdin.
	CollapseFiles(paths []string, w io.Writer) error
}

// recordParser is implemented once per profiler format. Line receives each
// input line in order; Flush is called at end of input to finalize any
// in-progress record and must be safe to call more than once.
type recordParser interface {
	Line(line string)
	Flush()
}

// folder wires a format-specific record parser to the shared aggregator.
type folder struct {
	parser recordParser
	agg    *aggregator
}

func (f *folder) consume(r io.Reader) error {
	scanner := NewScanner(r)
	for scanner.Scan() {
		f.parser.Line(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "reading profiler input")
	}
	// records do not span inputs
	f.parser.Flush()
	return nil
}

func (f *folder) Collapse(r io.Reader, w io.Writer) error {
	if err := f.consume(r); err != nil {
		return err
	}
	return f.agg.WriteTo(w)
}

func (f *folder) CollapseFiles(paths []string, w io.Writer) error {
	if len(paths) == 0 {
		paths = []string{"-"}
	}
	for _, path := range paths {
		if err := f.consumeFile(path); err != nil {
			return err
		}
	}
	return f.agg.WriteTo(w)
}

func (f *folder) consumeFile(path string) error {
	if path == "-" {
		return f.consume(os.Stdin)
	}
	file, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "opening %s", path)
	}
	defer file.Close()
	return f.consume(file)
}

// NewScanner returns a line scanner over r that strips a leading UTF-8 BOM
// and tolerates lines up to maxLineSize.
func NewScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(bom.NewReader(r))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return scanner
}
