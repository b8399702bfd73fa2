package flamegraph

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"strings"

	"stackfire/internal/flamegraph/color"
)

// interactionScript is the embedded interactivity script: click-to-zoom,
// search-highlight, and detail-on-hover. It is a fixed asset; no data is
// interpolated into it.
//
//go:embed flamegraph.js
var interactionScript string

// horizontal padding on each side of the frame area, in pixels
const xpad = 10

type xmlAttr struct {
	key   string
	value string
}

func attr(key, value string) xmlAttr {
	return xmlAttr{key, value}
}

func attrInt(key string, value int) xmlAttr {
	return xmlAttr{key, fmt.Sprintf("%d", value)}
}

func attrFloat(key string, value float64) xmlAttr {
	return xmlAttr{key, fmt.Sprintf("%.2f", value)}
}

var attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// xmlWriter emits elements one per line; pretty mode adds two-space
// indentation between element boundaries but never inside text content.
type xmlWriter struct {
	w      *bufio.Writer
	pretty bool
	depth  int
}

func (x *xmlWriter) indent() {
	if x.pretty {
		for range x.depth {
			x.w.WriteString("  ")
		}
	}
}

func (x *xmlWriter) startTag(tag string, attrs []xmlAttr) {
	x.w.WriteByte('<')
	x.w.WriteString(tag)
	for _, a := range attrs {
		x.w.WriteByte(' ')
		x.w.WriteString(a.key)
		x.w.WriteString(`="`)
		attrEscaper.WriteString(x.w, a.value)
		x.w.WriteByte('"')
	}
}

// open writes an element start tag and increases the nesting depth.
func (x *xmlWriter) open(tag string, attrs ...xmlAttr) {
	x.indent()
	x.startTag(tag, attrs)
	x.w.WriteString(">\n")
	x.depth++
}

// close writes an element end tag.
func (x *xmlWriter) close(tag string) {
	x.depth--
	x.indent()
	x.w.WriteString("</")
	x.w.WriteString(tag)
	x.w.WriteString(">\n")
}

// selfClose writes an empty element.
func (x *xmlWriter) selfClose(tag string, attrs ...xmlAttr) {
	x.indent()
	x.startTag(tag, attrs)
	x.w.WriteString("/>\n")
}

// element writes an element with escaped text content on a single line.
func (x *xmlWriter) element(tag string, text string, attrs ...xmlAttr) {
	x.indent()
	x.startTag(tag, attrs)
	x.w.WriteByte('>')
	textEscaper.WriteString(x.w, text)
	x.w.WriteString("</")
	x.w.WriteString(tag)
	x.w.WriteString(">\n")
}

// raw writes preformatted content verbatim.
func (x *xmlWriter) raw(s string) {
	x.w.WriteString(s)
}

// render emits the complete SVG document for a merged frame tree.
func render(opts *Options, root *node, w io.Writer) error {
	x := &xmlWriter{w: bufio.NewWriter(w), pretty: opts.PrettyXML}

	frames, maxDepth := []frame{}, 0
	pixelsPerSample := 0.0
	if root.count > 0 {
		pixelsPerSample = float64(opts.ImageWidth-2*xpad) / float64(root.count)
		frames, maxDepth = layout(root, pixelsPerSample, opts.MinWidth)
	}

	fontSize := opts.FontSize
	ypad1 := fontSize * 3
	if opts.Subtitle != "" {
		ypad1 += fontSize * 2
	}
	ypad2 := fontSize*2 + 10
	imageHeight := (maxDepth+1)*opts.FrameHeight + ypad1 + ypad2

	title := opts.Title
	if opts.Direction == DirectionInverted && title == DefaultTitle {
		title = "Icicle Graph"
	}

	x.raw(`<?xml version="1.0" standalone="no"?>` + "\n")
	x.raw(`<!DOCTYPE svg PUBLIC "-//W3C//DTD SVG 1.1//EN" "http://www.w3.org/Graphics/SVG/1.1/DTD/svg1.1.dtd">` + "\n")
	svgAttrs := []xmlAttr{
		attr("version", "1.1"),
		attrInt("width", opts.ImageWidth),
		attrInt("height", imageHeight),
		attr("viewBox", fmt.Sprintf("0 0 %d %d", opts.ImageWidth, imageHeight)),
		attr("xmlns", "http://www.w3.org/2000/svg"),
		attr("xmlns:xlink", "http://www.w3.org/1999/xlink"),
	}
	if !opts.NoJavaScript {
		svgAttrs = append(svgAttrs, attr("onload", "init(evt)"))
	}
	x.open("svg", svgAttrs...)
	x.raw("<!-- Flame graph stack visualization. -->\n")
	if opts.Notes != "" {
		x.raw("<!-- NOTES: " + sanitizeNotes(opts.Notes) + " -->\n")
	}

	if !opts.BgColors.Flat {
		x.open("defs")
		x.open("linearGradient", attr("id", "background"), attr("y1", "0"), attr("y2", "1"), attr("x1", "0"), attr("x2", "0"))
		x.selfClose("stop", attr("stop-color", opts.BgColors.First.Hex()), attr("offset", "5%"))
		x.selfClose("stop", attr("stop-color", opts.BgColors.Second.Hex()), attr("offset", "95%"))
		x.close("linearGradient")
		x.close("defs")
	}

	x.open("style", attr("type", "text/css"))
	x.raw(fmt.Sprintf("text { font-family:%s; font-size:%dpx; fill:rgb(0,0,0); }\n", opts.FontType, fontSize))
	x.raw("#title, #subtitle { text-anchor:middle; }\n")
	x.raw("#search { text-anchor:end; opacity:0.1; cursor:pointer; }\n")
	x.raw("#search:hover, #search.show { opacity:1; }\n")
	x.raw("#matched { text-anchor:end; }\n")
	x.raw(".hide { display:none; }\n")
	x.raw(".func_g:hover { stroke:black; stroke-width:0.5; cursor:pointer; }\n")
	x.close("style")

	if !opts.NoJavaScript {
		x.open("script", attr("type", "text/ecmascript"))
		x.raw("<![CDATA[\n")
		x.raw(interactionScript)
		x.raw("]]>\n")
		x.close("script")
	}

	bgFill := "url(#background)"
	if opts.BgColors.Flat {
		bgFill = opts.BgColors.First.String()
	}
	x.selfClose("rect",
		attr("x", "0"), attr("y", "0"),
		attrInt("width", opts.ImageWidth), attrInt("height", imageHeight),
		attr("fill", bgFill))

	x.element("text", title, attr("id", "title"), attrInt("x", opts.ImageWidth/2), attrInt("y", fontSize*2))
	if opts.Subtitle != "" {
		x.element("text", opts.Subtitle, attr("id", "subtitle"), attrInt("x", opts.ImageWidth/2), attrInt("y", fontSize*4))
	}
	x.element("text", " ", attr("id", "details"), attrInt("x", xpad), attrInt("y", imageHeight-(ypad2/2)))
	x.element("text", "Reset Zoom", attr("id", "unzoom"), attr("class", "hide"), attrInt("x", xpad), attrInt("y", fontSize*2))
	x.element("text", "Search", attr("id", "search"), attrInt("x", opts.ImageWidth-xpad), attrInt("y", fontSize*2))
	x.element("text", " ", attr("id", "matched"), attrInt("x", opts.ImageWidth-xpad), attrInt("y", imageHeight-(ypad2/2)))

	x.open("g", attr("id", "frames"),
		attr("data-totalsamples", fmt.Sprintf("%d", root.count)),
		attr("data-countname", opts.CountName),
		attr("data-nametype", opts.NameType))
	if root.count == 0 {
		x.element("text", "ERROR: no valid input provided.",
			attr("id", "nodata"), attrInt("x", opts.ImageWidth/2), attrInt("y", ypad1))
	} else {
		emitFrames(x, opts, frames, root.count, pixelsPerSample, maxDepth, ypad1, imageHeight, ypad2)
	}
	x.close("g")
	x.close("svg")
	return x.w.Flush()
}

func emitFrames(x *xmlWriter, opts *Options, frames []frame, total uint64, pixelsPerSample float64, maxDepth, ypad1, imageHeight, ypad2 int) {
	gen := color.NewGenerator(opts.Colors, opts.Hash, opts.PaletteMap)

	// differential coloring scales by the largest delta in the graph
	var maxDelta int64
	for _, f := range frames {
		if f.hasDelta {
			d := f.delta
			if d < 0 {
				d = -d
			}
			if d > maxDelta {
				maxDelta = d
			}
		}
	}

	for i, f := range frames {
		rectX := float64(xpad) + float64(f.x0)*pixelsPerSample
		rectW := float64(f.x1-f.x0) * pixelsPerSample
		var rectY int
		if opts.Direction == DirectionInverted {
			rectY = ypad1 + f.depth*opts.FrameHeight
		} else {
			rectY = imageHeight - ypad2 - (f.depth+1)*opts.FrameHeight
		}

		var fill color.RGB
		if f.hasDelta && maxDelta > 0 {
			fill = color.DiffColor(float64(f.delta)/float64(maxDelta), opts.NegateDifferentials)
		} else {
			fill = gen.ColorFor(f.name, i)
		}

		gAttrs := []xmlAttr{attr("class", "func_g")}
		tooltip := frameTooltip(f, total, opts.CountName)
		for _, fa := range opts.FrameAttrs[f.name] {
			switch fa.Key {
			case "class":
				gAttrs[0] = attr("class", fa.Value)
			case "title":
				tooltip = fa.Value
			case "g_extra":
				if key, value, found := strings.Cut(fa.Value, "="); found {
					gAttrs = append(gAttrs, attr(key, strings.Trim(value, `"`)))
				}
			default: // href, target, style
				gAttrs = append(gAttrs, attr(fa.Key, fa.Value))
			}
		}
		if !opts.NoJavaScript {
			gAttrs = append(gAttrs,
				attr("onmouseover", "s(this)"),
				attr("onmouseout", "c(this)"),
				attr("onclick", "zoom(this)"))
		}
		gAttrs = append(gAttrs, attr("id", fmt.Sprintf("f%d", i)))

		x.open("g", gAttrs...)
		x.element("title", tooltip)
		x.selfClose("rect",
			attrFloat("x", rectX), attrInt("y", rectY),
			attrFloat("width", rectW), attrInt("height", opts.FrameHeight-1),
			attr("fill", fill.String()))
		label := truncateLabel(f.name, rectW, opts)
		textY := float64(rectY) + float64(opts.FrameHeight+opts.FontSize)/2 - 2
		x.element("text", label, attrFloat("x", rectX+3), attrFloat("y", textY))
		x.close("g")
	}
}

func frameTooltip(f frame, total uint64, countName string) string {
	pct := 100 * float64(f.count) / float64(total)
	if f.hasDelta {
		deltaPct := 100 * float64(f.delta) / float64(total)
		return fmt.Sprintf("%s (%d %s, %.2f%%; %+.2f%%)", f.name, f.count, countName, pct, deltaPct)
	}
	return fmt.Sprintf("%s (%d %s, %.2f%%)", f.name, f.count, countName, pct)
}

// truncateLabel fits a frame label into the rectangle, estimating glyph width
// as fontWidth * fontSize. Labels with fewer than three characters of room
// are omitted; the tooltip still carries the full name.
func truncateLabel(name string, rectW float64, opts *Options) string {
	fit := int((rectW - 6) / (opts.FontWidth * float64(opts.FontSize)))
	if fit < 3 {
		return " "
	}
	if len(name) <= fit {
		return name
	}
	return name[:fit-2] + ".."
}

func sanitizeNotes(notes string) string {
	return strings.NewReplacer("<", "", ">", "", "--", "").Replace(notes)
}
