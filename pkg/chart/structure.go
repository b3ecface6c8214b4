package chart

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strconv"
)

// UpdateStructure prunes orphans, refreshes the naming scope, sorts every
// node's outgoing links, detects loopback links and assigns graph ordinals
// (breadth-first or depth-first). Ordinals never precede the ordinal of any
// non-loopback predecessor.
func (c *Chart) UpdateStructure(breadthFirst bool) {
	refreshNames := c.suspended == 0

	// Pruning detaches links; keep those detaches from re-entering here.
	c.suspended++
	pruned := c.pruneOrphaned()
	c.suspended--

	if refreshNames {
		c.refreshScope()
	}
	for _, n := range c.nodeOrder {
		c.sortSuccessorLinks(n)
		n.ordinal = Unassigned
		n.color = White
	}
	for _, l := range c.linkOrder {
		l.loopback = false
	}

	starts := c.startsBySeq()
	c.markLoopbacks(starts)
	assigned := c.assignOrdinals(starts, breadthFirst)
	c.sortContainers()

	c.dirty = false
	for _, n := range c.nodeOrder {
		n.dirty = false
	}
	c.logger.Debug("structure updated",
		"chart", c.name,
		"nodes", len(c.nodeOrder),
		"links", len(c.linkOrder),
		"pruned", pruned,
		"ordered", assigned,
		"starts", len(starts))
}

// Refresh runs UpdateStructure with the chart's configured traversal order.
func (c *Chart) Refresh() {
	c.UpdateStructure(c.breadthFirst)
}

func (c *Chart) pruneOrphaned() int {
	if !c.pruneOrphans {
		return 0
	}
	var orphans []*Node
	for _, n := range c.nodeOrder {
		if n.orphaned && !n.IsConnected() {
			orphans = append(orphans, n)
		}
	}
	for _, n := range orphans {
		c.removeNode(n)
	}
	return len(orphans)
}

func (c *Chart) refreshScope() {
	if renames := c.adoptNames(); len(renames) > 0 {
		c.logger.Info("names renamed to stay unique in parent scope", "chart", c.name, "renamed", len(renames))
	}
	c.scope.clear()
	for _, n := range c.nodeOrder {
		if err := c.scope.Register(n.name, n.id); err != nil {
			c.logger.Error("name left unregistered", "chart", c.name, "name", n.name, "error", err)
		}
	}
	for _, l := range c.linkOrder {
		if err := c.scope.Register(l.name, l.id); err != nil {
			c.logger.Error("name left unregistered", "chart", c.name, "name", l.name, "error", err)
		}
	}
	// Names added here may now shadow names in nested charts.
	for _, n := range c.nodeOrder {
		for _, a := range n.actions {
			a.chart.refreshScope()
		}
	}
}

// adoptNames renames every element of c whose name is taken by an enclosing
// scope or by an earlier element of c. Canonical names are renumbered by c's
// factory; other names are qualified by the owning step. Guards follow the
// renames, which are returned keyed by old name.
func (c *Chart) adoptNames() map[string]string {
	parent := c.scope.parent
	used := make(map[string]int)
	for _, n := range c.nodeOrder {
		used[n.name]++
	}
	for _, l := range c.linkOrder {
		used[l.name]++
	}
	taken := func(name string) bool {
		return used[name] > 0 || (parent != nil && parent.Contains(name))
	}

	renames := make(map[string]string)
	seen := make(map[string]bool)
	adopt := func(e Element, name *string) {
		if !seen[*name] && (parent == nil || !parent.Contains(*name)) {
			seen[*name] = true
			return
		}
		var next string
		if c.factory.IsCanonicallyNamed(e) {
			next = c.factory.nextName(e.ElementType(), taken)
		} else {
			base := *name
			if c.parentStep != nil {
				base = c.parentStep.name + "." + *name
			}
			next = base
			for i := 2; taken(next); i++ {
				next = base + "." + strconv.Itoa(i)
			}
		}
		used[*name]--
		used[next]++
		seen[next] = true
		renames[*name] = next
		*name = next
	}
	for _, n := range c.nodeOrder {
		adopt(n, &n.name)
	}
	for _, l := range c.linkOrder {
		adopt(l, &l.name)
	}

	if len(renames) > 0 {
		for _, n := range c.nodeOrder {
			if n.expr != nil {
				n.expr = n.expr.Relocate(renames)
			}
		}
	}
	return renames
}

// sortSuccessorLinks orders outgoing links by descending priority, then
// successor name, then creation sequence.
func (c *Chart) sortSuccessorLinks(n *Node) {
	links := n.SuccessorLinks()
	slices.SortStableFunc(links, compareSiblingLinks)
	for i, l := range links {
		n.out[i] = l.id
	}
}

func compareSiblingLinks(a, b *Link) int {
	if a.priority != b.priority {
		return cmp.Compare(b.priority, a.priority)
	}
	var an, bn string
	if s := a.Successor(); s != nil {
		an = s.name
	}
	if s := b.Successor(); s != nil {
		bn = s.name
	}
	if an != bn {
		return cmp.Compare(an, bn)
	}
	return cmp.Compare(a.seq, b.seq)
}

func (c *Chart) startsBySeq() []*Node {
	var starts []*Node
	for _, n := range c.nodeOrder {
		if n.IsStart() {
			starts = append(starts, n)
		}
	}
	slices.SortFunc(starts, func(a, b *Node) int { return cmp.Compare(a.seq, b.seq) })
	return starts
}

// markLoopbacks colours the graph depth-first from every start. A link whose
// target is gray (on the active path) is a loopback.
func (c *Chart) markLoopbacks(starts []*Node) {
	var visit func(n *Node)
	visit = func(n *Node) {
		n.color = Gray
		for _, l := range n.SuccessorLinks() {
			s := l.Successor()
			if s == nil {
				continue
			}
			switch s.color {
			case Gray:
				l.loopback = true
			case White:
				visit(s)
			}
		}
		n.color = Black
	}
	for _, s := range starts {
		if s.color == White {
			visit(s)
		}
	}
}

func ordinalReady(n *Node) bool {
	for _, l := range n.PredecessorLinks() {
		if l.loopback {
			continue
		}
		if p := l.Predecessor(); p != nil && p.ordinal == Unassigned {
			return false
		}
	}
	return true
}

func (c *Chart) assignOrdinals(starts []*Node, breadthFirst bool) int {
	next := 0
	if breadthFirst {
		queue := slices.Clone(starts)
		for len(queue) > 0 {
			n := queue[0]
			queue = queue[1:]
			if n.ordinal != Unassigned {
				continue
			}
			n.ordinal = next
			next++
			for _, s := range n.Successors() {
				if s.ordinal == Unassigned && ordinalReady(s) {
					queue = append(queue, s)
				}
			}
		}
		return next
	}

	var visit func(n *Node)
	visit = func(n *Node) {
		n.ordinal = next
		next++
		for _, s := range n.Successors() {
			if s.ordinal == Unassigned && ordinalReady(s) {
				visit(s)
			}
		}
	}
	for _, s := range starts {
		if s.ordinal == Unassigned {
			visit(s)
		}
	}
	return next
}

func compareOrdinals(a, b int) int {
	switch {
	case a == b:
		return 0
	case a == Unassigned:
		return 1
	case b == Unassigned:
		return -1
	default:
		return cmp.Compare(a, b)
	}
}

func (c *Chart) sortContainers() {
	slices.SortStableFunc(c.nodeOrder, func(a, b *Node) int {
		if r := compareOrdinals(a.ordinal, b.ordinal); r != 0 {
			return r
		}
		return cmp.Compare(a.seq, b.seq)
	})
	ordinalOf := func(n *Node) int {
		if n == nil {
			return Unassigned
		}
		return n.ordinal
	}
	slices.SortStableFunc(c.linkOrder, func(a, b *Link) int {
		if r := compareOrdinals(ordinalOf(a.Predecessor()), ordinalOf(b.Predecessor())); r != 0 {
			return r
		}
		if a.priority != b.priority {
			return cmp.Compare(b.priority, a.priority)
		}
		if r := compareOrdinals(ordinalOf(a.Successor()), ordinalOf(b.Successor())); r != 0 {
			return r
		}
		return cmp.Compare(a.seq, b.seq)
	})
}

// StartNodes returns the nodes without predecessors in structure order.
func (c *Chart) StartNodes() []*Node {
	return c.FindAll(func(n *Node) bool { return n.IsStart() })
}

// FinishNodes returns the nodes without successors in structure order.
func (c *Chart) FinishNodes() []*Node {
	return c.FindAll(func(n *Node) bool { return n.IsFinish() })
}

// StartNode returns the start node when there is exactly one.
func (c *Chart) StartNode() (*Node, bool) {
	starts := c.StartNodes()
	if len(starts) != 1 {
		return nil, false
	}
	return starts[0], true
}

// FinishTransition returns the terminal transition when there is exactly one.
func (c *Chart) FinishTransition() (*Node, bool) {
	finishes := c.FindAll(func(n *Node) bool { return n.IsFinish() && n.kind == KindTransition })
	if len(finishes) != 1 {
		return nil, false
	}
	return finishes[0], true
}

// Audit checks the invariants the mutation API is meant to preserve:
// alternation, bound link ends and classifiable aggregate link types. Every
// violation wraps ErrInconsistentStructure. Nested action charts are audited
// too.
func (c *Chart) Audit() error {
	var errs []error
	for _, l := range c.linkOrder {
		p, s := l.Predecessor(), l.Successor()
		switch {
		case p == nil || s == nil:
			errs = append(errs, fmt.Errorf("%s: link %s has an unbound end: %w", c.name, l.name, ErrInconsistentStructure))
		case p.kind == s.kind:
			errs = append(errs, fmt.Errorf("%s: link %s joins %s %s to %s %s: %w",
				c.name, l.name, p.kind, p.name, s.kind, s.name, ErrInconsistentStructure))
		case l.AggregateLinkType() == LinkUnknown:
			errs = append(errs, fmt.Errorf("%s: link %s has no aggregate type: %w", c.name, l.name, ErrInconsistentStructure))
		}
	}
	for _, n := range c.nodeOrder {
		for _, a := range n.actions {
			if err := a.chart.Audit(); err != nil {
				errs = append(errs, fmt.Errorf("%s/%s: %w", n.name, a.name, err))
			}
		}
	}
	return errors.Join(errs...)
}
