package chart

import (
	"iter"
	"strings"
)

// PathSeparator separates the segments of a node path.
const PathSeparator = "/"

// FindNode resolves a path of the form "step/action/node[/action/node...]".
// A single segment names a node of this chart.
func (c *Chart) FindNode(path string) (*Node, bool) {
	segments := strings.Split(path, PathSeparator)
	cur := c
	for i := 0; ; i += 2 {
		n, ok := cur.NodeByName(segments[i])
		if !ok {
			return nil, false
		}
		if i == len(segments)-1 {
			return n, true
		}
		if i+2 >= len(segments) {
			return nil, false
		}
		sub, ok := n.Action(segments[i+1])
		if !ok {
			return nil, false
		}
		cur = sub
	}
}

// FindFirst returns the first node in structure order that satisfies match.
func (c *Chart) FindFirst(match func(*Node) bool) (*Node, bool) {
	for _, n := range c.nodeOrder {
		if match(n) {
			return n, true
		}
	}
	return nil, false
}

// FindAll returns every node in structure order that satisfies match.
func (c *Chart) FindAll(match func(*Node) bool) []*Node {
	var found []*Node
	for _, n := range c.nodeOrder {
		if match(n) {
			found = append(found, n)
		}
	}
	return found
}

// DepthFirst iterates the chart depth-first from its start nodes, following
// successor links in sorted order. A step's nested action charts are walked
// right after the step. Nodes unreachable from any start are yielded last.
func (c *Chart) DepthFirst() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		c.walk(yield)
	}
}

func (c *Chart) walk(yield func(*Node) bool) bool {
	seen := make(map[*Node]bool, len(c.nodeOrder))
	var visit func(n *Node) bool
	visit = func(n *Node) bool {
		seen[n] = true
		if !yield(n) {
			return false
		}
		for _, a := range n.actions {
			if !a.chart.walk(yield) {
				return false
			}
		}
		for _, s := range n.Successors() {
			if !seen[s] && !visit(s) {
				return false
			}
		}
		return true
	}
	for _, s := range c.startsBySeq() {
		if !seen[s] && !visit(s) {
			return false
		}
	}
	for _, n := range c.nodeOrder {
		if !seen[n] && !visit(n) {
			return false
		}
	}
	return true
}
