package color

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// BackgroundColor is either a named two-stop vertical gradient or a flat
// color.
type BackgroundColor struct {
	First  RGB
	Second RGB
	Flat   bool
}

var gradients = map[string][2]string{
	"yellow": {"#eeeeee", "#eeeeb0"},
	"blue":   {"#eeeeee", "#e0e0ff"},
	"green":  {"#eef2ee", "#e0ffe0"},
	"grey":   {"#f8f8f8", "#e8e8e8"},
}

// DefaultBackground is the yellow gradient.
func DefaultBackground() BackgroundColor {
	bg, _ := ParseBackgroundColor("yellow")
	return bg
}

// ParseBackgroundColor accepts a gradient name (yellow, blue, green, grey) or
// a flat "#rrggbb" color.
func ParseBackgroundColor(s string) (BackgroundColor, error) {
	if stops, ok := gradients[s]; ok {
		first, err := colorful.Hex(stops[0])
		if err != nil {
			return BackgroundColor{}, err
		}
		second, err := colorful.Hex(stops[1])
		if err != nil {
			return BackgroundColor{}, err
		}
		return BackgroundColor{First: fromColorful(first), Second: fromColorful(second)}, nil
	}
	if strings.HasPrefix(s, "#") {
		flat, err := colorful.Hex(s)
		if err != nil {
			return BackgroundColor{}, fmt.Errorf("invalid background color %q", s)
		}
		c := fromColorful(flat)
		return BackgroundColor{First: c, Second: c, Flat: true}, nil
	}
	return BackgroundColor{}, fmt.Errorf("unknown background color %q, expected a gradient name or #rrggbb", s)
}
