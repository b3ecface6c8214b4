package validator

import (
	"github.com/aretw0/pfc/pkg/chart"
	"github.com/google/uuid"
)

// bitset is a fixed-size set of node indexes.
type bitset []uint64

func newBitset(n int) bitset { return make(bitset, (n+63)/64) }

func (b bitset) set(i int)      { b[i/64] |= 1 << (uint(i) % 64) }
func (b bitset) has(i int) bool { return b[i/64]&(1<<(uint(i)%64)) != 0 }

func (b bitset) fill() {
	for i := range b {
		b[i] = ^uint64(0)
	}
}

func (b bitset) intersect(o bitset) {
	for i := range b {
		b[i] &= o[i]
	}
}

// dependencies is the dependency matrix of one chart: node X depends on node
// Y when Y lies on every non-loopback path from the start to X. Every node
// depends on itself.
type dependencies struct {
	index map[uuid.UUID]int
	dom   []bitset
	nodes []*chart.Node
}

// buildDependencies computes the matrix over the ordered nodes. The chart
// must have been refreshed so that ordinals and loopback marks are current;
// nodes without an ordinal depend on nothing but themselves.
func buildDependencies(c *chart.Chart) *dependencies {
	nodes := c.Nodes()
	d := &dependencies{
		index: make(map[uuid.UUID]int, len(nodes)),
		dom:   make([]bitset, len(nodes)),
		nodes: nodes,
	}
	for i, n := range nodes {
		d.index[n.ID()] = i
	}
	// Nodes are held in ordinal order, so every non-loopback predecessor of
	// an ordered node is finished before the node itself.
	for i, n := range nodes {
		set := newBitset(len(nodes))
		if n.Ordinal() != chart.Unassigned {
			seeded := false
			for _, l := range n.PredecessorLinks() {
				p := l.Predecessor()
				if l.IsLoopback() || p == nil || p.Ordinal() == chart.Unassigned {
					continue
				}
				if !seeded {
					set.fill()
					seeded = true
				}
				set.intersect(d.dom[d.index[p.ID()]])
			}
		}
		set.set(i)
		d.dom[i] = set
	}
	return d
}

// dependsOn reports whether x depends on y.
func (d *dependencies) dependsOn(x, y *chart.Node) bool {
	xi, ok := d.index[x.ID()]
	if !ok {
		return false
	}
	yi, ok := d.index[y.ID()]
	if !ok {
		return false
	}
	return d.dom[xi].has(yi)
}

// ancestors returns the nodes x depends on, nearest first, x excluded.
func (d *dependencies) ancestors(x *chart.Node) []*chart.Node {
	xi, ok := d.index[x.ID()]
	if !ok {
		return nil
	}
	var out []*chart.Node
	for i := xi - 1; i >= 0; i-- {
		if d.dom[xi].has(i) {
			out = append(out, d.nodes[i])
		}
	}
	return out
}
