package collapse

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/samber/lo"
)

// PerfOptions holds configuration options for collapsing `perf script` output.
type PerfOptions struct {
	IncludePID     bool   // prepend COMM-PID instead of COMM
	IncludeTID     bool   // prepend COMM-PID/TID instead of COMM
	IncludeAddrs   bool   // keep the instruction pointer on unresolved frames
	EventFilter    string // drop records for other events; empty locks onto the first event seen
	AnnotateKernel bool   // append _[k] to kernel frames
	AnnotateJIT    bool   // append _[j] to jitted frames
	ShowInline     bool   // split "a->b" inlined symbols into separate frames
}

// AnnotateAll enables both kernel and JIT annotation.
func (o *PerfOptions) AnnotateAll() {
	o.AnnotateKernel = true
	o.AnnotateJIT = true
}

// NewPerfFolder returns a Folder that parses `perf script` output: repeating
// records separated by blank lines, each a one-line header followed by
// indented frame lines, leaf first.
func NewPerfFolder(opts PerfOptions) Folder {
	agg := newAggregator()
	return &folder{
		parser: &perfParser{
			opts:        opts,
			agg:         agg,
			eventFilter: opts.EventFilter,
			skipped:     mapset.NewSet[string](),
		},
		agg: agg,
	}
}

// Regular expressions for parsing the perf output
var (
	perfHeaderRegex  = regexp.MustCompile(`^(\S.*?)\s+(\d+)/*(\d+)*\s+`)
	perfEventRegex   = regexp.MustCompile(`:\s*(\d+)*\s+(\S+):\s*$`)
	perfFrameRegex   = regexp.MustCompile(`^\s+([0-9a-fA-F]+)\s+(.+?)(?:\s+\((\S*)\))?$`)
	symbolOffsetRegex = regexp.MustCompile(`\+0x[\da-f]+$`)
	jitModuleRegex   = regexp.MustCompile(`/tmp/perf-\d+\.map`)
)

type perfParser struct {
	opts        PerfOptions
	agg         *aggregator
	eventFilter string             // locked onto the first event when no filter given
	skipped     mapset.Set[string] // event names already warned about

	// current record; comm is empty between records
	comm   string
	period uint64
	frames []string // leaf first, as printed
	skip   bool
}

func (p *perfParser) Line(line string) {
	if strings.HasPrefix(line, "#") {
		return
	}
	if strings.TrimSpace(line) == "" {
		p.Flush()
		return
	}
	if perfHeaderRegex.MatchString(line) {
		p.Flush()
		p.header(line)
		return
	}
	if p.comm == "" {
		if !p.skip {
			slog.Warn("discarding line outside record", slog.String("line", line))
		}
		return
	}
	if p.skip {
		return
	}
	if !p.frame(line) {
		slog.Warn("skipping unparsable frame line", slog.String("line", line))
	}
}

// Flush finalizes any in-progress record. Records whose header parsed but
// whose frame list is empty are dropped.
func (p *perfParser) Flush() {
	defer p.reset()
	if p.comm == "" || p.skip || len(p.frames) == 0 {
		return
	}
	stack := lo.Reverse(p.frames) // leaf last in folded form
	key := p.comm + ";" + strings.Join(stack, ";")
	p.agg.add(key, p.period)
}

func (p *perfParser) reset() {
	p.comm = ""
	p.period = 0
	p.frames = nil
	p.skip = false
}

func (p *perfParser) header(line string) {
	matches := perfHeaderRegex.FindStringSubmatch(line)
	comm, pid, tid := matches[1], matches[2], matches[3]
	if tid == "" { // older form where only one id is printed
		tid = pid
		pid = "?"
	}

	p.period = 1
	var event string
	if eventMatches := perfEventRegex.FindStringSubmatch(line); eventMatches != nil {
		if eventMatches[1] != "" {
			period, err := strconv.ParseUint(eventMatches[1], 10, 64)
			if err == nil {
				p.period = period
			}
		}
		event = eventMatches[2]
	}

	// perf may mix events when multiple were recorded; lock onto the first
	// event seen unless a filter was given
	if event != "" {
		if p.eventFilter == "" {
			p.eventFilter = event
		} else if event != p.eventFilter {
			if p.skipped.Add(event) {
				slog.Warn("skipping event", slog.String("event", event), slog.String("filter", p.eventFilter))
			}
			p.skip = true
			return
		}
	}

	switch {
	case p.opts.IncludeTID:
		p.comm = fmt.Sprintf("%s-%s/%s", comm, pid, tid)
	case p.opts.IncludePID:
		p.comm = fmt.Sprintf("%s-%s", comm, pid)
	default:
		p.comm = comm
	}
	p.comm = strings.ReplaceAll(p.comm, " ", "_")
}

func (p *perfParser) frame(line string) bool {
	matches := perfFrameRegex.FindStringSubmatch(line)
	if matches == nil {
		return false
	}
	pc, rawFunc, mod := matches[1], matches[2], matches[3]

	// skip process name placeholders such as "(deleted)"
	if strings.HasPrefix(rawFunc, "(") {
		return true
	}
	rawFunc = symbolOffsetRegex.ReplaceAllString(rawFunc, "")

	symbols := []string{rawFunc}
	if p.opts.ShowInline {
		symbols = strings.Split(rawFunc, "->")
	}
	for _, funcname := range symbols {
		if funcname == "[unknown]" && p.opts.IncludeAddrs {
			funcname = fmt.Sprintf("[unknown <%s>]", pc)
		}
		if p.opts.AnnotateKernel && isKernelModule(mod) && !strings.HasSuffix(funcname, "_[k]") {
			funcname += "_[k]"
		}
		if p.opts.AnnotateJIT && jitModuleRegex.MatchString(mod) && !strings.HasSuffix(funcname, "_[j]") {
			funcname += "_[j]"
		}
		p.frames = append(p.frames, funcname)
	}
	return true
}

func isKernelModule(mod string) bool {
	return (strings.HasPrefix(mod, "[") || strings.HasSuffix(mod, "vmlinux")) &&
		!strings.Contains(mod, "unknown")
}
