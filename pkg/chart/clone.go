package chart

import (
	"maps"
	"slices"

	"github.com/google/uuid"
)

// Clone returns a deep copy of the chart: same ids, names, sequence numbers,
// ordinals and loopback marks, with nested action charts cloned too. The copy
// shares nothing mutable with the source; expressions are immutable and are
// shared.
func (c *Chart) Clone() *Chart {
	return c.cloneUnder(c.scope.parent)
}

func (c *Chart) cloneUnder(parentScope *Scope) *Chart {
	cp := &Chart{
		id:           c.id,
		name:         c.name,
		description:  c.description,
		factory:      c.factory.clone(),
		scope:        c.scope.clone(parentScope),
		logger:       c.logger,
		parser:       c.parser,
		nodes:        make(map[uuid.UUID]*Node, len(c.nodes)),
		links:        make(map[uuid.UUID]*Link, len(c.links)),
		nodeOrder:    make([]*Node, 0, len(c.nodeOrder)),
		linkOrder:    make([]*Link, 0, len(c.linkOrder)),
		macros:       maps.Clone(c.macros),
		pruneOrphans: c.pruneOrphans,
		breadthFirst: c.breadthFirst,
		dirty:        c.dirty,
	}

	for _, n := range c.nodeOrder {
		dup := *n
		dup.chart = cp
		dup.in = slices.Clone(n.in)
		dup.out = slices.Clone(n.out)
		dup.actions = nil
		cp.nodes[dup.id] = &dup
		cp.nodeOrder = append(cp.nodeOrder, &dup)
	}
	for _, l := range c.linkOrder {
		dup := *l
		dup.chart = cp
		cp.links[dup.id] = &dup
		cp.linkOrder = append(cp.linkOrder, &dup)
	}
	for _, n := range c.nodeOrder {
		owner := cp.nodes[n.id]
		for _, a := range n.actions {
			sub := a.chart.cloneUnder(cp.scope)
			sub.parentStep = owner
			owner.actions = append(owner.actions, action{name: a.name, chart: sub})
		}
	}
	return cp
}
