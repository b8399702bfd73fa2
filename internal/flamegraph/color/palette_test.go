package color

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePalette(t *testing.T) {
	for _, p := range Palettes {
		parsed, err := ParsePalette(string(p))
		if err != nil {
			t.Errorf("ParsePalette(%q) failed: %v", p, err)
		}
		if parsed != p {
			t.Errorf("ParsePalette(%q) = %q", p, parsed)
		}
	}
	if _, err := ParsePalette("lava"); err == nil {
		t.Error("expected error for unknown palette")
	}
}

func TestHashColorDependsOnlyOnName(t *testing.T) {
	g1 := NewGenerator(PaletteHot, true, nil)
	g2 := NewGenerator(PaletteHot, true, nil)
	// different indices must not matter when hashing
	if g1.ColorFor("do_work", 3) != g2.ColorFor("do_work", 99) {
		t.Error("hash coloring must depend only on the frame name")
	}
}

func TestPRNGColorDeterministicPerIndex(t *testing.T) {
	g := NewGenerator(PaletteHot, false, nil)
	first := g.ColorFor("do_work", 7)
	second := g.ColorFor("do_work", 7)
	if first != second {
		t.Error("PRNG coloring must be deterministic for a fixed frame index")
	}
}

func TestJavaPaletteBuckets(t *testing.T) {
	tests := []struct {
		name     string
		expected Palette
	}{
		{"sys_write_[k]", PaletteRed},
		{"com/example/Widget.draw", PaletteGreen},
		{"plainCFunction", PaletteYellow},
	}
	for _, test := range tests {
		if got := PaletteJava.bucketFor(test.name); got != test.expected {
			t.Errorf("java bucket for %q = %q, expected %q", test.name, got, test.expected)
		}
	}
}

func TestDiffColor(t *testing.T) {
	zero := DiffColor(0, false)
	if zero != (RGB{255, 255, 255}) {
		t.Errorf("zero delta should be white, got %v", zero)
	}
	grow := DiffColor(1, false)
	if grow != (RGB{255, 0, 0}) {
		t.Errorf("full growth should be red, got %v", grow)
	}
	shrink := DiffColor(-1, false)
	if shrink != (RGB{0, 255, 0}) {
		t.Errorf("full shrinkage should be green, got %v", shrink)
	}
	if DiffColor(0.5, true) != DiffColor(-0.5, false) {
		t.Error("negate must swap the hue mapping")
	}
}

func TestBackgroundColors(t *testing.T) {
	bg, err := ParseBackgroundColor("yellow")
	require.NoError(t, err)
	assert.False(t, bg.Flat)
	assert.Equal(t, "#eeeeee", bg.First.Hex())
	assert.Equal(t, "#eeeeb0", bg.Second.Hex())

	flat, err := ParseBackgroundColor("#102030")
	require.NoError(t, err)
	assert.True(t, flat.Flat)
	assert.Equal(t, RGB{0x10, 0x20, 0x30}, flat.First)

	_, err = ParseBackgroundColor("plaid")
	assert.Error(t, err)
}

func TestPaletteMapRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "palette.map")
	pm := NewPaletteMap()
	pm.Set("main", RGB{10, 20, 30})
	pm.Set("do_work", RGB{200, 100, 0})
	require.NoError(t, pm.Save(path))

	loaded, err := LoadPaletteMapOrEmpty(path)
	require.NoError(t, err)
	assert.Equal(t, pm.colors, loaded.colors)
}

func TestPaletteMapMissingFileIsEmpty(t *testing.T) {
	pm, err := LoadPaletteMapOrEmpty(filepath.Join(t.TempDir(), "nope.map"))
	require.NoError(t, err)
	assert.Equal(t, 0, pm.Len())
}

func TestPaletteMapIgnoresUnknownLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "palette.map")
	content := "garbage line\nmain->rgb(1,2,3)\nother->rgb(300,0,0)\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	pm, err := LoadPaletteMapOrEmpty(path)
	require.NoError(t, err)
	assert.Equal(t, 1, pm.Len())
	c, ok := pm.Color("main")
	assert.True(t, ok)
	assert.Equal(t, RGB{1, 2, 3}, c)
}

func TestGeneratorUsesAndExtendsPaletteMap(t *testing.T) {
	pm := NewPaletteMap()
	stored := RGB{9, 9, 9}
	pm.Set("cached", stored)
	g := NewGenerator(PaletteHot, false, pm)
	assert.Equal(t, stored, g.ColorFor("cached", 0))
	fresh := g.ColorFor("fresh", 1)
	got, ok := pm.Color("fresh")
	assert.True(t, ok)
	assert.Equal(t, fresh, got)
}
