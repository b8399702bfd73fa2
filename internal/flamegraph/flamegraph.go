/*
Package flamegraph renders folded stack traces as an interactive,
self-contained SVG flame graph.

Input is the folded format produced by the collapse package: one line per
unique stack, frame names joined with ';' root-first, then a space and the
sample count. The renderer prefix-merges the stacks into a frame tree,
assigns positions and colors, and writes a deterministic SVG document with an
embedded search/zoom script.
*/
package flamegraph

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"

	"stackfire/internal/collapse"
)

// Generate reads folded stacks from r and writes the SVG to w.
func Generate(opts *Options, r io.Reader, w io.Writer) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	root := newNode("all")
	if err := mergeFolded(opts, r, root); err != nil {
		return err
	}
	return render(opts, root, w)
}

// GenerateFromFiles reads folded stacks from the named files, merging them
// into one graph. A path of "-", or an empty list, reads stdin.
func GenerateFromFiles(opts *Options, paths []string, w io.Writer) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	if len(paths) == 0 {
		paths = []string{"-"}
	}
	root := newNode("all")
	for _, path := range paths {
		if err := mergeFoldedFile(opts, path, root); err != nil {
			return err
		}
	}
	return render(opts, root, w)
}

func mergeFoldedFile(opts *Options, path string, root *node) error {
	if path == "-" {
		return mergeFolded(opts, os.Stdin, root)
	}
	file, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "opening %s", path)
	}
	defer file.Close()
	return mergeFolded(opts, file, root)
}

// mergeFolded adds each folded line to the tree. Malformed lines are skipped
// with a warning; a single bad line never aborts rendering.
func mergeFolded(opts *Options, r io.Reader, root *node) error {
	scanner := collapse.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		sample, ok := collapse.ParseFolded(line)
		if !ok {
			slog.Warn("skipping malformed folded line", slog.String("line", line))
			continue
		}
		sample.Count = uint64(float64(sample.Count) * opts.Factor)
		if sample.Count == 0 {
			continue
		}
		root.add(sample)
	}
	return errors.Wrap(scanner.Err(), "reading folded input")
}
