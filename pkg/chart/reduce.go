package chart

// Reduce eliminates null nodes by alternating the series and parallel
// removal rules until neither applies. It returns the number of nodes removed.
func (c *Chart) Reduce() int {
	c.suspend()
	defer c.resume()

	removed := 0
	for {
		progress := false
		for c.reduceSeries() {
			removed += 2
			progress = true
		}
		for c.reduceParallel() {
			removed++
			progress = true
		}
		if !progress {
			break
		}
	}
	for _, n := range c.nodeOrder {
		for _, a := range n.actions {
			removed += a.chart.Reduce()
		}
	}
	if removed > 0 {
		c.logger.Debug("chart reduced", "chart", c.name, "removed", removed)
	}
	return removed
}

// reduceSeries removes the first adjacent null pair A -> B where A has a
// single successor and B a single predecessor, binding A's predecessors to
// B's successors. A pair whose removal would join a node with several
// successors to a node with several predecessors is left alone.
func (c *Chart) reduceSeries() bool {
	for _, a := range c.nodeOrder {
		if !a.IsNullNode() || len(a.out) != 1 || len(a.in) == 0 {
			continue
		}
		b := a.Successors()[0]
		if !b.IsNullNode() || len(b.in) != 1 || len(b.out) == 0 {
			continue
		}
		if !c.seriesRemovable(a, b) {
			continue
		}

		type edge struct {
			from     *Node
			priority int
		}
		var before []edge
		for _, l := range a.PredecessorLinks() {
			before = append(before, edge{from: l.Predecessor(), priority: l.priority})
		}
		after := b.Successors()

		c.removeNode(a)
		c.removeNode(b)
		for _, p := range before {
			for _, q := range after {
				// p has b's kind and q has a's kind, so these are direct links.
				_ = c.Bind(p.from, q, WithPriority(p.priority))
			}
		}
		c.logger.Debug("series pair removed", "chart", c.name, "first", a.name, "second", b.name)
		return true
	}
	return false
}

func (c *Chart) seriesRemovable(a, b *Node) bool {
	preds, succs := a.Predecessors(), b.Successors()
	for _, p := range preds {
		if p == b {
			return false
		}
	}
	for _, q := range succs {
		if q == a {
			return false
		}
	}
	if len(preds) > 1 && len(succs) > 1 {
		return false
	}
	fanOut, fanIn := false, false
	for _, p := range preds {
		if len(p.out) > 1 {
			fanOut = true
		}
	}
	for _, q := range succs {
		if len(q.in) > 1 {
			fanIn = true
		}
	}
	return !(fanOut && fanIn)
}

// reduceParallel removes the first null step that is a redundant leg into a
// convergence: its successor transition has other predecessors and the
// step's predecessor reaches that transition without passing through it.
func (c *Chart) reduceParallel() bool {
	for _, s := range c.nodeOrder {
		if s.kind != KindStep || !s.IsNullNode() || len(s.in) != 1 || len(s.out) != 1 {
			continue
		}
		d, conv := s.Predecessors()[0], s.Successors()[0]
		if len(conv.in) < 2 || d == conv {
			continue
		}
		if !reachesAvoiding(d, conv, s) {
			continue
		}
		c.removeNode(s)
		c.logger.Debug("parallel leg removed", "chart", c.name, "step", s.name, "convergence", conv.name)
		return true
	}
	return false
}

// reachesAvoiding reports whether a forward path from src to dst exists that
// never visits avoid.
func reachesAvoiding(src, dst, avoid *Node) bool {
	seen := map[*Node]bool{src: true, avoid: true}
	stack := []*Node{src}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, s := range n.Successors() {
			if s == dst {
				return true
			}
			if !seen[s] {
				seen[s] = true
				stack = append(stack, s)
			}
		}
	}
	return false
}
