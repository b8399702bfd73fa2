package collapse

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// DTraceOptions holds configuration options for collapsing DTrace ustack()
// output.
type DTraceOptions struct {
	IncludeOffset bool // keep the +0x offset on symbols
}

// NewDTraceFolder returns a Folder that parses DTrace ustack() aggregation
// output: indented frame lines leaf-first, then the aggregation count on its
// own line, then a blank line.
func NewDTraceFolder(opts DTraceOptions) Folder {
	agg := newAggregator()
	return &folder{
		parser: &dtraceParser{opts: opts, agg: agg},
		agg:    agg,
	}
}

var dtraceOffsetRegex = regexp.MustCompile(`\+0x[\da-fA-F]+$`)

type dtraceParser struct {
	opts   DTraceOptions
	agg    *aggregator
	frames []string // leaf first, as printed
}

func (p *dtraceParser) Line(line string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		// blank line delimits records; frames without a count are malformed
		if len(p.frames) > 0 {
			slog.Warn("dropping record with no count line")
			p.frames = nil
		}
		return
	}
	if count, err := strconv.ParseUint(trimmed, 10, 64); err == nil {
		if len(p.frames) == 0 {
			slog.Warn("dropping count with no stack", slog.String("line", trimmed))
			return
		}
		stack := lo.Reverse(p.frames) // leaf last in folded form
		p.agg.add(strings.Join(stack, ";"), count)
		p.frames = nil
		return
	}
	p.frames = append(p.frames, p.frameName(trimmed))
}

// Flush drops any record left unterminated at end of input.
func (p *dtraceParser) Flush() {
	if len(p.frames) > 0 {
		slog.Warn("dropping unterminated record at end of input")
		p.frames = nil
	}
}

// frameName reduces a ustack() frame to a folded frame name. Frames have the
// form MODULE`SYMBOL+0xOFFSET, bare MODULE for unresolved symbols, or a raw
// hex address.
func (p *dtraceParser) frameName(frame string) string {
	if idx := strings.Index(frame, "`"); idx >= 0 {
		frame = frame[idx+1:]
	}
	if !p.opts.IncludeOffset {
		frame = dtraceOffsetRegex.ReplaceAllString(frame, "")
	}
	return frame
}
