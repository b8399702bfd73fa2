package flamegraph

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"

	"stackfire/internal/flamegraph/color"
)

// Direction selects flame (depth grows upward) or icicle (depth grows
// downward) rendering.
type Direction int

const (
	DirectionNormal Direction = iota
	DirectionInverted
)

// DefaultTitle is the title used when none is given. Inverted direction
// overrides it with "Icicle Graph".
const DefaultTitle = "Flame Graph"

// Options carries the renderer configuration.
type Options struct {
	Colors              color.Palette
	BgColors            color.BackgroundColor
	Hash                bool
	PaletteMap          *color.PaletteMap // nil unless consistent coloring requested
	FrameAttrs          FrameAttrsMap
	Direction           Direction
	Title               string
	Subtitle            string
	ImageWidth          int
	FrameHeight         int
	MinWidth            float64
	FontType            string
	FontSize            int
	FontWidth           float64
	CountName           string
	NameType            string
	Notes               string
	NegateDifferentials bool
	Factor              float64
	PrettyXML           bool
	NoJavaScript        bool
}

// DefaultOptions returns the renderer defaults.
func DefaultOptions() Options {
	return Options{
		Colors:      color.PaletteHot,
		BgColors:    color.DefaultBackground(),
		Title:       DefaultTitle,
		ImageWidth:  1200,
		FrameHeight: 16,
		MinWidth:    0.1,
		FontType:    "Verdana",
		FontSize:    12,
		FontWidth:   0.59,
		CountName:   "samples",
		NameType:    "Function:",
		Factor:      1.0,
	}
}

// Validate rejects unusable option combinations before any work starts.
func (o *Options) Validate() error {
	if o.ImageWidth <= 0 {
		return fmt.Errorf("image width must be positive, got %d", o.ImageWidth)
	}
	if o.FrameHeight <= 0 {
		return fmt.Errorf("frame height must be positive, got %d", o.FrameHeight)
	}
	if o.MinWidth < 0 {
		return fmt.Errorf("min width must be >= 0, got %g", o.MinWidth)
	}
	if o.FontSize <= 0 {
		return fmt.Errorf("font size must be positive, got %d", o.FontSize)
	}
	if o.FontWidth <= 0 {
		return fmt.Errorf("font width must be positive, got %g", o.FontWidth)
	}
	if o.Factor <= 0 {
		return fmt.Errorf("factor must be positive, got %g", o.Factor)
	}
	if _, err := color.ParsePalette(string(o.Colors)); err != nil {
		return err
	}
	return nil
}
