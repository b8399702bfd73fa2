package collapse

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Sample is one parsed folded stack line: frame names root-first plus the
// aggregated count. HasDelta is set when the line carried the two-count
// differential form "stack WAS NOW"; Count is then NOW and Delta is NOW-WAS.
type Sample struct {
	Stack    []string
	Count    uint64
	Delta    int64
	HasDelta bool
}

// ParseFolded parses one folded stack line. Frame names are opaque strings
// excluding ';' and newline; they may contain spaces, so only the trailing
// integer field(s) are treated as counts. Returns ok=false for lines that do
// not match the grammar; blank lines are the caller's concern.
func ParseFolded(line string) (sample Sample, ok bool) {
	line = strings.TrimSpace(line)
	idx := strings.LastIndexByte(line, ' ')
	if idx < 0 {
		return
	}
	count, err := strconv.ParseUint(line[idx+1:], 10, 64)
	if err != nil {
		return
	}
	stackPart := line[:idx]
	sample.Count = count

	// two-count differential form: "stack WAS NOW"
	if idx2 := strings.LastIndexByte(stackPart, ' '); idx2 >= 0 {
		if was, err := strconv.ParseUint(stackPart[idx2+1:], 10, 64); err == nil {
			stackPart = stackPart[:idx2]
			sample.Delta = int64(count) - int64(was)
			sample.HasDelta = true
		}
	}
	if stackPart == "" {
		return Sample{}, false
	}
	sample.Stack = strings.Split(stackPart, ";")
	ok = true
	return
}

// aggregator accumulates counts per folded key, remembering the order in
// which keys first appeared so that output is diff-stable across runs.
type aggregator struct {
	counts map[string]uint64
	order  []string
}

func newAggregator() *aggregator {
	return &aggregator{counts: make(map[string]uint64)}
}

func (a *aggregator) add(key string, count uint64) {
	if _, seen := a.counts[key]; !seen {
		a.order = append(a.order, key)
	}
	a.counts[key] += count
}

// WriteTo emits the folded stacks in first-occurrence order.
func (a *aggregator) WriteTo(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, key := range a.order {
		if _, err := fmt.Fprintf(bw, "%s %d\n", key, a.counts[key]); err != nil {
			return err
		}
	}
	return bw.Flush()
}
