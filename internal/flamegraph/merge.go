package flamegraph

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"sort"

	"stackfire/internal/collapse"
)

// node is one frame in the prefix-merged tree. The root is the synthetic
// "all" frame. count = sum(child counts) + samples terminating here.
type node struct {
	name     string
	count    uint64
	delta    int64
	hasDelta bool
	children map[string]*node
}

func newNode(name string) *node {
	return &node{name: name, children: make(map[string]*node)}
}

// add merges one sample into the tree, adding its count to every node along
// the stack. Non-positive counts are dropped by the caller.
func (n *node) add(sample collapse.Sample) {
	n.count += sample.Count
	if sample.HasDelta {
		n.delta += sample.Delta
		n.hasDelta = true
	}
	cur := n
	for _, name := range sample.Stack {
		child, ok := cur.children[name]
		if !ok {
			child = newNode(name)
			cur.children[name] = child
		}
		child.count += sample.Count
		if sample.HasDelta {
			child.delta += sample.Delta
			child.hasDelta = true
		}
		cur = child
	}
}

// frame is a tree node positioned for rendering. X0/X1 are in sample units;
// pixel scaling happens in the emitter.
type frame struct {
	name     string
	depth    int
	x0, x1   uint64
	count    uint64
	delta    int64
	hasDelta bool
}

// layout flattens the tree into positioned frames. The synthetic root is
// bookkeeping only and is not drawn; depth 0 is the first real stack frame.
// Children are visited in alphabetical name order so the rendered byte
// stream is reproducible. Nodes narrower than minWidth pixels are pruned
// along with their subtrees. maxDepth is the deepest retained frame.
func layout(root *node, pixelsPerSample float64, minWidth float64) (frames []frame, maxDepth int) {
	var walk func(n *node, depth int, x0 uint64)
	walk = func(n *node, depth int, x0 uint64) {
		if n.count == 0 || float64(n.count)*pixelsPerSample < minWidth {
			return
		}
		frames = append(frames, frame{
			name:     n.name,
			depth:    depth,
			x0:       x0,
			x1:       x0 + n.count,
			count:    n.count,
			delta:    n.delta,
			hasDelta: n.hasDelta,
		})
		if depth > maxDepth {
			maxDepth = depth
		}
		walkChildren(n, depth+1, x0, walk)
	}
	walkChildren(root, 0, 0, walk)
	return
}

func walkChildren(n *node, depth int, x0 uint64, walk func(*node, int, uint64)) {
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)
	x := x0
	for _, name := range names {
		child := n.children[name]
		walk(child, depth, x)
		x += child.count
	}
}
