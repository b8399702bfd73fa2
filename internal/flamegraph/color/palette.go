/*
Package color implements the flamegraph palette model: named palettes that
partition frame names into hue buckets, deterministic or pseudorandom
per-frame variation, differential coloring, and a persistable palette map for
cross-graph color consistency.
*/
package color

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/samber/lo"
)

// Palette is a named color scheme for frame rectangles.
type Palette string

const (
	PaletteHot    Palette = "hot"
	PaletteMem    Palette = "mem"
	PaletteIO     Palette = "io"
	PaletteWakeup Palette = "wakeup"
	PaletteJava   Palette = "java"
	PaletteJS     Palette = "js"
	PalettePerl   Palette = "perl"
	PaletteRed    Palette = "red"
	PaletteGreen  Palette = "green"
	PaletteBlue   Palette = "blue"
	PaletteAqua   Palette = "aqua"
	PaletteYellow Palette = "yellow"
	PalettePurple Palette = "purple"
	PaletteOrange Palette = "orange"
)

// Palettes lists the accepted palette names.
var Palettes = []Palette{
	PaletteHot, PaletteMem, PaletteIO, PaletteWakeup,
	PaletteJava, PaletteJS, PalettePerl,
	PaletteRed, PaletteGreen, PaletteBlue, PaletteAqua,
	PaletteYellow, PalettePurple, PaletteOrange,
}

// ParsePalette validates a palette name.
func ParsePalette(s string) (Palette, error) {
	for _, p := range Palettes {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown palette %q", s)
}

// RGB is a concrete frame color.
type RGB struct {
	R, G, B uint8
}

// String renders the color the way it appears in SVG fill attributes and in
// the palette map file.
func (c RGB) String() string {
	return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
}

// Hex renders the color as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func fromColorful(c colorful.Color) RGB {
	r, g, b := c.RGB255()
	return RGB{r, g, b}
}

// Generator assigns colors to frame names. When a palette map is attached,
// previously assigned colors are reused and new assignments are recorded.
type Generator struct {
	palette Palette
	hash    bool
	pm      *PaletteMap
}

// NewGenerator returns a Generator for the given palette. hash selects
// name-hash variation so identical names color identically across graphs;
// otherwise variation is drawn from a PRNG seeded per frame index. pm may be
// nil.
func NewGenerator(palette Palette, hash bool, pm *PaletteMap) *Generator {
	return &Generator{palette: palette, hash: hash, pm: pm}
}

// ColorFor returns the color for a frame name. index is the frame's position
// in layout order; it seeds the PRNG so output is deterministic for identical
// input and options.
func (g *Generator) ColorFor(name string, index int) RGB {
	if g.pm != nil {
		if c, ok := g.pm.Color(name); ok {
			return c
		}
	}
	var v1, v2, v3 float64
	if g.hash {
		v1 = namehash(name)
		v2 = namehash(reverseName(name))
		v3 = v2
	} else {
		rng := rand.New(rand.NewSource(int64(index)))
		v1 = rng.Float64()
		v2 = rng.Float64()
		v3 = rng.Float64()
	}
	c := bucketColor(g.palette.bucketFor(name), v1, v2, v3)
	if g.pm != nil {
		g.pm.Set(name, c)
	}
	return c
}

// bucketFor applies the multi-hue palette rules to a frame name, reducing it
// to a flat bucket palette.
func (p Palette) bucketFor(name string) Palette {
	switch p {
	case PaletteJava:
		switch {
		case strings.HasSuffix(name, "_[k]"):
			return PaletteRed
		case strings.Contains(name, "/"):
			return PaletteGreen
		default:
			return PaletteYellow
		}
	case PaletteJS:
		switch {
		case strings.HasSuffix(name, "_[k]"):
			return PaletteOrange
		case strings.HasSuffix(name, "_[j]"):
			return PaletteAqua
		case strings.Contains(name, "/"):
			return PaletteGreen
		default:
			return PaletteYellow
		}
	case PalettePerl:
		switch {
		case strings.HasSuffix(name, "_[k]"):
			return PaletteOrange
		case strings.Contains(name, "::"):
			return PaletteGreen
		default:
			return PaletteYellow
		}
	case PaletteWakeup:
		return PaletteAqua
	default:
		return p
	}
}

// bucketColor combines a flat bucket with the variation values.
func bucketColor(bucket Palette, v1, v2, v3 float64) RGB {
	c := func(base, vary float64, v float64) uint8 {
		return uint8(base + vary*v)
	}
	switch bucket {
	case PaletteMem:
		return RGB{0, c(190, 50, v2), c(0, 210, v1)}
	case PaletteIO:
		return RGB{c(80, 60, v1), c(80, 60, v1), c(190, 55, v2)}
	case PaletteRed:
		return RGB{c(200, 55, v1), c(50, 80, v1), c(50, 80, v1)}
	case PaletteGreen:
		return RGB{c(50, 60, v1), c(200, 55, v1), c(50, 60, v1)}
	case PaletteBlue:
		return RGB{c(80, 60, v1), c(80, 60, v1), c(205, 50, v1)}
	case PaletteYellow:
		return RGB{c(175, 55, v1), c(175, 55, v1), c(50, 20, v1)}
	case PalettePurple:
		return RGB{c(190, 65, v1), c(80, 60, v1), c(190, 65, v1)}
	case PaletteAqua:
		return RGB{c(50, 60, v1), c(165, 55, v1), c(165, 55, v1)}
	case PaletteOrange:
		return RGB{c(190, 65, v1), c(90, 65, v1), 0}
	default: // hot
		return RGB{c(205, 50, v3), c(0, 230, v1), c(0, 55, v2)}
	}
}

// namehash computes a float in (0, 1] from a function name; only the first
// three characters after any module prefix contribute. Weighting the
// leading characters most heavily keeps related names in nearby shades while
// still separating them.
func namehash(name string) float64 {
	vector := 0.0
	weight := 1.0
	max := 1.0
	mod := 10
	// module prefixes would dominate the hash; drop them
	if idx := strings.Index(name, "`"); idx >= 0 {
		name = name[idx+1:]
	}
	for _, r := range name {
		i := int(r) % mod
		vector += (float64(i) / float64(mod-1)) * weight
		mod++
		max += weight
		weight *= 0.70
		if mod > 12 {
			break
		}
	}
	return 1 - vector/max
}

func reverseName(name string) string {
	runes := []rune(name)
	lo.Reverse(runes)
	return string(runes)
}

// DiffColor colors a frame by its signed differential fraction in [-1, 1]:
// white at zero, saturating red for growth and green for shrinkage. negate
// swaps the hue mapping.
func DiffColor(fraction float64, negate bool) RGB {
	if negate {
		fraction = -fraction
	}
	if fraction > 1 {
		fraction = 1
	} else if fraction < -1 {
		fraction = -1
	}
	white := colorful.Color{R: 1, G: 1, B: 1}
	if fraction >= 0 {
		red := colorful.Color{R: 1, G: 0, B: 0}
		return fromColorful(white.BlendRgb(red, fraction))
	}
	green := colorful.Color{R: 0, G: 1, B: 0}
	return fromColorful(white.BlendRgb(green, -fraction))
}
