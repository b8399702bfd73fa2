package color

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"

	"github.com/pkg/errors"

	"stackfire/internal/util"
)

// PaletteMap is a persistable mapping from frame name to a concrete color,
// used to keep colors consistent across graphs. Entries are additive across
// runs.
type PaletteMap struct {
	colors map[string]RGB
}

var paletteEntryRegex = regexp.MustCompile(`^(.+)->rgb\((\d+),(\d+),(\d+)\)$`)

// NewPaletteMap returns an empty palette map.
func NewPaletteMap() *PaletteMap {
	return &PaletteMap{colors: make(map[string]RGB)}
}

// LoadPaletteMapOrEmpty reads a palette map file, one "NAME->rgb(R,G,B)"
// entry per line. A missing file yields an empty map; lines that do not match
// the entry format are ignored.
func LoadPaletteMapOrEmpty(path string) (*PaletteMap, error) {
	pm := NewPaletteMap()
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return pm, nil
		}
		return nil, errors.Wrapf(err, "loading palette map %s", path)
	}
	defer file.Close()
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		matches := paletteEntryRegex.FindStringSubmatch(scanner.Text())
		if matches == nil {
			continue
		}
		r, errR := strconv.ParseUint(matches[2], 10, 8)
		g, errG := strconv.ParseUint(matches[3], 10, 8)
		b, errB := strconv.ParseUint(matches[4], 10, 8)
		if errR != nil || errG != nil || errB != nil {
			continue
		}
		pm.colors[matches[1]] = RGB{uint8(r), uint8(g), uint8(b)}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "loading palette map %s", path)
	}
	return pm, nil
}

// Color returns the stored color for a frame name.
func (pm *PaletteMap) Color(name string) (RGB, bool) {
	c, ok := pm.colors[name]
	return c, ok
}

// Set records a color for a frame name.
func (pm *PaletteMap) Set(name string, c RGB) {
	pm.colors[name] = c
}

// Len returns the number of entries.
func (pm *PaletteMap) Len() int {
	return len(pm.colors)
}

// Save writes the map atomically, entries sorted by name so saved files diff
// cleanly.
func (pm *PaletteMap) Save(path string) error {
	names := make([]string, 0, len(pm.colors))
	for name := range pm.colors {
		names = append(names, name)
	}
	sort.Strings(names)
	var buf bytes.Buffer
	for _, name := range names {
		fmt.Fprintf(&buf, "%s->%s\n", name, pm.colors[name])
	}
	return errors.Wrapf(util.WriteFileAtomic(path, buf.Bytes(), 0o644), "saving palette map %s", path)
}
