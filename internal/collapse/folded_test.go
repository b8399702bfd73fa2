package collapse

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"strings"
	"testing"
)

func TestParseFolded(t *testing.T) {
	tests := []struct {
		line     string
		stack    []string
		count    uint64
		delta    int64
		hasDelta bool
		ok       bool
	}{
		{line: "a;b;c 10", stack: []string{"a", "b", "c"}, count: 10, ok: true},
		{line: "main 1", stack: []string{"main"}, count: 1, ok: true},
		{line: "  a;b 2  ", stack: []string{"a", "b"}, count: 2, ok: true},
		{line: "spaced name;leaf 4", stack: []string{"spaced name", "leaf"}, count: 4, ok: true},
		{line: "a;b 2 3", stack: []string{"a", "b"}, count: 3, delta: 1, hasDelta: true, ok: true},
		{line: "a;b 5 3", stack: []string{"a", "b"}, count: 3, delta: -2, hasDelta: true, ok: true},
		{line: "nocount", ok: false},
		{line: "a;b notanumber", ok: false},
		{line: " 5", ok: false},
		{line: "", ok: false},
	}

	for _, test := range tests {
		sample, ok := ParseFolded(test.line)
		if ok != test.ok {
			t.Errorf("ParseFolded(%q) ok = %v, expected %v", test.line, ok, test.ok)
			continue
		}
		if !ok {
			continue
		}
		if strings.Join(sample.Stack, ";") != strings.Join(test.stack, ";") {
			t.Errorf("ParseFolded(%q) stack = %v, expected %v", test.line, sample.Stack, test.stack)
		}
		if sample.Count != test.count {
			t.Errorf("ParseFolded(%q) count = %d, expected %d", test.line, sample.Count, test.count)
		}
		if sample.HasDelta != test.hasDelta || sample.Delta != test.delta {
			t.Errorf("ParseFolded(%q) delta = (%d,%v), expected (%d,%v)",
				test.line, sample.Delta, sample.HasDelta, test.delta, test.hasDelta)
		}
	}
}

func TestAggregatorOrderStable(t *testing.T) {
	agg := newAggregator()
	agg.add("z 1-key", 1)
	agg.add("a-key", 2)
	agg.add("z 1-key", 3)
	var out strings.Builder
	if err := agg.WriteTo(&out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := "z 1-key 4\na-key 2\n"
	if out.String() != expected {
		t.Errorf("expected %q, got %q", expected, out.String())
	}
}

func TestScannerLongLines(t *testing.T) {
	line := strings.Repeat("x", 100*1024)
	scanner := NewScanner(strings.NewReader(line + "\n"))
	if !scanner.Scan() {
		t.Fatalf("scan failed: %v", scanner.Err())
	}
	if scanner.Text() != line {
		t.Error("long line was truncated")
	}
}
