package flamegraph

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"

	"stackfire/internal/collapse"
)

// Attr is one attribute applied to a frame's SVG group.
type Attr struct {
	Key   string
	Value string
}

// FrameAttrsMap maps a frame name to the ordered attributes applied to its
// SVG group. Frames not present contribute nothing.
type FrameAttrsMap map[string][]Attr

// recognized attribute keys, per the name-attribute file format
var recognizedAttrKeys = map[string]bool{
	"href":    true,
	"target":  true,
	"title":   true,
	"class":   true,
	"style":   true,
	"g_extra": true,
}

// LoadFrameAttrs reads a name-attribute sidecar file. Each line is a frame
// name followed by tab-separated KEY=VALUE pairs; values may contain spaces
// but not tabs. Lines that do not match the grammar are skipped with a
// warning.
func LoadFrameAttrs(path string) (FrameAttrsMap, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "loading name-attribute file %s", path)
	}
	defer file.Close()

	attrs := make(FrameAttrsMap)
	scanner := collapse.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			slog.Warn("skipping name-attribute line with no attributes", slog.String("line", line))
			continue
		}
		name := fields[0]
		for _, field := range fields[1:] {
			key, value, found := strings.Cut(field, "=")
			if !found || key == "" {
				slog.Warn("skipping malformed attribute", slog.String("attribute", field))
				continue
			}
			if !recognizedAttrKeys[key] {
				slog.Warn("skipping unrecognized attribute key", slog.String("key", key))
				continue
			}
			attrs[name] = append(attrs[name], Attr{Key: key, Value: value})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "loading name-attribute file %s", path)
	}
	return attrs, nil
}
