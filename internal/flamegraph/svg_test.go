package flamegraph

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stackfire/internal/flamegraph/color"
)

func testOptions() Options {
	opts := DefaultOptions()
	opts.NoJavaScript = true
	return opts
}

func renderString(t *testing.T, opts Options, folded string) string {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, Generate(&opts, strings.NewReader(folded), &out))
	return out.String()
}

// frame rects carry fractional x coordinates; the background rect does not
var rectRegex = regexp.MustCompile(`<rect x="([0-9]+\.[0-9]+)" y="([0-9.]+)" width="([0-9.]+)"`)
var titleRegex = regexp.MustCompile(`<title>([^<(]+) \(`)

func TestRenderDeterministic(t *testing.T) {
	folded := "a;b 5\na;c 3\nd 2\n"
	first := renderString(t, testOptions(), folded)
	second := renderString(t, testOptions(), folded)
	if first != second {
		t.Error("identical input and options must produce identical bytes")
	}
}

func TestRenderTrivialGraph(t *testing.T) {
	svg := renderString(t, testOptions(), "a;foo 1\n")
	// exactly two rectangles: the top-level frame "a" and its child "foo";
	// the synthetic tree root is not drawn
	matches := titleRegex.FindAllStringSubmatch(svg, -1)
	var names []string
	for _, m := range matches {
		names = append(names, m[1])
	}
	assert.Equal(t, []string{"a", "foo"}, names)
}

func TestRenderRootWidthInvariant(t *testing.T) {
	opts := testOptions()
	svg := renderString(t, opts, "a 100\nb 900\n")
	matches := rectRegex.FindAllStringSubmatch(svg, -1)
	require.Len(t, matches, 2)
	// the top-level frames together span the full frame area
	var total float64
	for _, m := range matches {
		width, err := strconv.ParseFloat(m[3], 64)
		require.NoError(t, err)
		total += width
	}
	assert.InDelta(t, float64(opts.ImageWidth-2*xpad), total, 1.0)
}

func TestRenderMinWidthPruning(t *testing.T) {
	opts := testOptions()
	opts.ImageWidth = 1000
	opts.MinWidth = 2
	svg := renderString(t, opts, "a 999\nb 1\n")
	assert.Contains(t, svg, "<title>a (")
	assert.NotContains(t, svg, "<title>b (")
}

func TestRenderInvertedTitle(t *testing.T) {
	opts := testOptions()
	opts.Direction = DirectionInverted
	svg := renderString(t, opts, "a 1\n")
	assert.Contains(t, svg, ">Icicle Graph</text>")

	opts.Title = "My Profile"
	svg = renderString(t, opts, "a 1\n")
	assert.Contains(t, svg, ">My Profile</text>")
}

func TestRenderInversionReflectsY(t *testing.T) {
	folded := "a;b 5\na;c 3\n"
	normal := renderString(t, testOptions(), folded)
	opts := testOptions()
	opts.Direction = DirectionInverted
	inverted := renderString(t, opts, folded)

	normRects := rectRegex.FindAllStringSubmatch(normal, -1)
	invRects := rectRegex.FindAllStringSubmatch(inverted, -1)
	require.Equal(t, len(normRects), len(invRects))
	// same set of rectangles: x and width agree pairwise
	for i := range normRects {
		assert.Equal(t, normRects[i][1], invRects[i][1], "x of rect %d", i)
		assert.Equal(t, normRects[i][3], invRects[i][3], "width of rect %d", i)
	}
	// y order is reflected: in a flame graph depth 0 is at the bottom
	normY0, _ := strconv.ParseFloat(normRects[0][2], 64)
	normY1, _ := strconv.ParseFloat(normRects[1][2], 64)
	invY0, _ := strconv.ParseFloat(invRects[0][2], 64)
	invY1, _ := strconv.ParseFloat(invRects[1][2], 64)
	assert.Greater(t, normY0, normY1)
	assert.Less(t, invY0, invY1)
}

func TestRenderConsistentPalette(t *testing.T) {
	fillRegex := regexp.MustCompile(`<title>foo \([^<]*</title>\s*<rect[^>]*fill="(rgb\(\d+,\d+,\d+\))"`)

	pm := color.NewPaletteMap()
	opts1 := testOptions()
	opts1.PaletteMap = pm
	svg1 := renderString(t, opts1, "foo 1\nbar 2\n")

	opts2 := testOptions()
	opts2.PaletteMap = pm
	svg2 := renderString(t, opts2, "other;foo 5\n")

	m1 := fillRegex.FindStringSubmatch(svg1)
	m2 := fillRegex.FindStringSubmatch(svg2)
	require.NotNil(t, m1)
	require.NotNil(t, m2)
	assert.Equal(t, m1[1], m2[1], "frame foo must keep its color across graphs")
}

func TestRenderHashColorsStable(t *testing.T) {
	opts := testOptions()
	opts.Hash = true
	fillRegex := regexp.MustCompile(`<title>foo \([^<]*</title>\s*<rect[^>]*fill="(rgb\(\d+,\d+,\d+\))"`)
	m1 := fillRegex.FindStringSubmatch(renderString(t, opts, "foo 1\nbar 2\n"))
	m2 := fillRegex.FindStringSubmatch(renderString(t, opts, "x;y;foo 9\n"))
	require.NotNil(t, m1)
	require.NotNil(t, m2)
	assert.Equal(t, m1[1], m2[1], "hash coloring depends only on the frame name")
}

func TestRenderEmptyInput(t *testing.T) {
	svg := renderString(t, testOptions(), "")
	assert.Contains(t, svg, "<svg")
	assert.Contains(t, svg, "ERROR: no valid input provided.")
	assert.Contains(t, svg, "</svg>")
}

func TestRenderMalformedLinesSkipped(t *testing.T) {
	svg := renderString(t, testOptions(), "not a folded line\na;foo 2\n")
	assert.Contains(t, svg, "<title>foo (2 samples, 100.00%)</title>")
}

func TestRenderDifferential(t *testing.T) {
	opts := testOptions()
	svg := renderString(t, opts, "grow 5 10\n")
	// positive delta renders red-ish: full red at the graph's max delta
	assert.Contains(t, svg, `fill="rgb(255,0,0)"`)

	opts.NegateDifferentials = true
	svg = renderString(t, opts, "grow 5 10\n")
	assert.Contains(t, svg, `fill="rgb(0,255,0)"`)
}

func TestRenderNoJavaScript(t *testing.T) {
	svg := renderString(t, testOptions(), "a 1\n")
	assert.NotContains(t, svg, "<script")
	assert.NotContains(t, svg, "onclick")

	opts := DefaultOptions()
	withJS := renderString(t, opts, "a 1\n")
	assert.Contains(t, withJS, "<script")
	assert.Contains(t, withJS, "CDATA")
	assert.Contains(t, withJS, `onclick="zoom(this)"`)
}

func TestRenderPrettyXML(t *testing.T) {
	opts := testOptions()
	opts.PrettyXML = true
	svg := renderString(t, opts, "a 1\n")
	assert.Contains(t, svg, "\n  <")
	// text content stays on one line with its element
	assert.Regexp(t, `<title>[^\n]*</title>`, svg)
}

func TestRenderFactorScalesCounts(t *testing.T) {
	opts := testOptions()
	opts.Factor = 2.0
	svg := renderString(t, opts, "a 3\n")
	assert.Contains(t, svg, "<title>a (6 samples, 100.00%)</title>")
}

func TestRenderSubtitle(t *testing.T) {
	opts := testOptions()
	opts.Subtitle = "second line"
	svg := renderString(t, opts, "a 1\n")
	assert.Contains(t, svg, ">second line</text>")
}

func TestRenderFrameAttrs(t *testing.T) {
	opts := testOptions()
	opts.FrameAttrs = FrameAttrsMap{
		"foo": {
			{Key: "href", Value: "https://example.com/foo"},
			{Key: "target", Value: "_blank"},
			{Key: "class", Value: "special"},
		},
	}
	svg := renderString(t, opts, "foo 1\n")
	assert.Contains(t, svg, `href="https://example.com/foo"`)
	assert.Contains(t, svg, `target="_blank"`)
	assert.Contains(t, svg, `class="special"`)
}

func TestRenderEscapesNames(t *testing.T) {
	svg := renderString(t, testOptions(), "a<b>&c 1\n")
	assert.Contains(t, svg, "a&lt;b&gt;&amp;c")
	assert.NotContains(t, svg, "<title>a<b>")
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"zero width", func(o *Options) { o.ImageWidth = 0 }},
		{"negative min width", func(o *Options) { o.MinWidth = -1 }},
		{"zero frame height", func(o *Options) { o.FrameHeight = 0 }},
		{"zero font size", func(o *Options) { o.FontSize = 0 }},
		{"zero factor", func(o *Options) { o.Factor = 0 }},
		{"bad palette", func(o *Options) { o.Colors = "lava" }},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			opts := DefaultOptions()
			test.mutate(&opts)
			if err := opts.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
	opts := DefaultOptions()
	if err := opts.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}
