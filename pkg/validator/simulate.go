package validator

import (
	"cmp"
	"fmt"

	"github.com/aretw0/pfc/pkg/chart"
	"github.com/google/uuid"
)

// token is one flow of control. Tokens live in an arena and point to their
// parent by index; children are found by scanning for that index.
type token struct {
	parent     int
	origin     *chart.Node // first node the token visited
	branchOf   *chart.Node // parallel divergence that created the token
	divergedAt *chart.Node // last parallel divergence the token split at
	open       int         // alternate paths still open
}

// record is the per-node scratch state of one simulation.
type record struct {
	arrived  bool
	executed bool
	token    int               // token the node executed with
	waiting  []int             // tokens collected by a parallel convergence
	arrivals map[uuid.UUID]int // token delivered along each incoming link
}

type item struct {
	node     *chart.Node
	token    int
	loopback bool
	order    int
}

type simulation struct {
	v       *Validator
	chart   *chart.Chart
	path    string
	deps    *dependencies
	tokens  []token
	records map[uuid.UUID]*record
	queue   []item
	pushed  int
	reach   map[uuid.UUID]map[uuid.UUID]int8
}

// simulate walks one root token from the start node and returns the
// findings. The chart must have exactly one start node.
func (v *Validator) simulate(c *chart.Chart, path string) []Finding {
	s := &simulation{
		v:       v,
		chart:   c,
		path:    path,
		deps:    buildDependencies(c),
		records: make(map[uuid.UUID]*record),
		reach:   make(map[uuid.UUID]map[uuid.UUID]int8),
	}
	start, _ := c.StartNode()
	root := s.newToken(-1, start, nil)
	s.push(start, root, nil)

	for len(s.queue) > 0 {
		i := s.pick()
		it := s.queue[i]
		s.queue = append(s.queue[:i], s.queue[i+1:]...)
		s.visit(it)
	}
	return s.findings(start)
}

func (s *simulation) newToken(parent int, origin, branchOf *chart.Node) int {
	s.tokens = append(s.tokens, token{parent: parent, origin: origin, branchOf: branchOf, open: 1})
	return len(s.tokens) - 1
}

func (s *simulation) record(n *chart.Node) *record {
	r, ok := s.records[n.ID()]
	if !ok {
		r = &record{token: -1}
		s.records[n.ID()] = r
	}
	return r
}

// push queues tok for the successor of l, or for n when l is nil.
func (s *simulation) push(n *chart.Node, tok int, l *chart.Link) {
	loopback := false
	if l != nil {
		n, loopback = l.Successor(), l.IsLoopback()
		r := s.record(n)
		if r.arrivals == nil {
			r.arrivals = make(map[uuid.UUID]int)
		}
		r.arrivals[l.ID()] = tok
	}
	s.queue = append(s.queue, item{node: n, token: tok, loopback: loopback, order: s.pushed})
	s.pushed++
}

// forwardPredecessors counts the non-loopback predecessor links of n.
func forwardPredecessors(n *chart.Node) int {
	count := 0
	for _, l := range n.PredecessorLinks() {
		if !l.IsLoopback() {
			count++
		}
	}
	return count
}

func isParallelConvergence(n *chart.Node) bool {
	return n.IsTransition() && forwardPredecessors(n) > 1
}

func isParallelDivergence(n *chart.Node) bool {
	return n.IsTransition() && n.SuccessorCount() > 1
}

// pick chooses the next work item: anything but a parallel convergence
// first, then dependency order, then ascending ordinal and creation order.
func (s *simulation) pick() int {
	best := 0
	for i := 1; i < len(s.queue); i++ {
		if s.before(s.queue[i], s.queue[best]) {
			best = i
		}
	}
	return best
}

func (s *simulation) before(a, b item) bool {
	pa, pb := isParallelConvergence(a.node), isParallelConvergence(b.node)
	if pa != pb {
		return !pa
	}
	if a.node != b.node {
		if s.deps.dependsOn(b.node, a.node) {
			return true
		}
		if s.deps.dependsOn(a.node, b.node) {
			return false
		}
	}
	if r := compareOrdinal(a.node.Ordinal(), b.node.Ordinal()); r != 0 {
		return r < 0
	}
	if r := cmp.Compare(a.node.Seq(), b.node.Seq()); r != 0 {
		return r < 0
	}
	return a.order < b.order
}

func compareOrdinal(a, b int) int {
	switch {
	case a == b:
		return 0
	case a == chart.Unassigned:
		return 1
	case b == chart.Unassigned:
		return -1
	}
	return cmp.Compare(a, b)
}

func (s *simulation) visit(it item) {
	n := it.node
	r := s.record(n)
	r.arrived = true

	// A leg rejoining a node that already ran closes here.
	if r.executed {
		s.tokens[it.token].open--
		return
	}

	tok := it.token
	if isParallelConvergence(n) {
		if it.loopback {
			s.tokens[it.token].open--
			return
		}
		r.waiting = append(r.waiting, it.token)
		if len(r.waiting) < forwardPredecessors(n) {
			return
		}
		tok = s.close(n, r.waiting)
	}
	r.executed = true
	r.token = tok

	links := n.SuccessorLinks()
	switch {
	case len(links) == 0:
		s.tokens[tok].open--
	case len(links) == 1:
		s.push(nil, tok, links[0])
	case n.IsStep():
		s.tokens[tok].open += len(links) - 1
		for _, l := range links {
			s.push(nil, tok, l)
		}
	default:
		s.tokens[tok].divergedAt = n
		for _, l := range links {
			child := s.newToken(tok, l.Successor(), n)
			s.push(nil, child, l)
		}
	}
	s.v.logger.Debug("node executed", "chart", s.path, "node", n.Name(), "token", tok, "open", s.tokens[tok].open)
}

// close completes the parallel convergence c. When a divergence ancestor
// closes over c its token takes over and every arriving branch is released;
// otherwise the first arrival continues and the others stay open.
func (s *simulation) close(c *chart.Node, arrivals []int) int {
	for _, d := range s.deps.ancestors(c) {
		if !isParallelDivergence(d) {
			continue
		}
		rd := s.record(d)
		if !rd.executed || !s.reaches(d, c) {
			continue
		}
		for _, t := range arrivals {
			s.release(t, rd.token)
		}
		return rd.token
	}
	s.v.logger.Debug("convergence without closing divergence", "chart", s.path, "node", c.Name())
	return arrivals[0]
}

// release closes one path of t, then closes every ancestor below stop whose
// branches have all completed.
func (s *simulation) release(t, stop int) {
	if t == stop {
		return
	}
	s.tokens[t].open--
	for p := s.tokens[t].parent; p >= 0 && p != stop; p = s.tokens[p].parent {
		if s.tokens[p].open <= 0 || s.live(p) {
			return
		}
		s.tokens[p].open--
	}
}

// live reports whether any child of t still has an open path.
func (s *simulation) live(t int) bool {
	for i := t + 1; i < len(s.tokens); i++ {
		if s.tokens[i].parent == t && s.tokens[i].open > 0 {
			return true
		}
	}
	return false
}

const (
	reachUnknown int8 = iota
	reachVisiting
	reachYes
	reachNo
)

// reaches reports whether every forward path from n reaches target: all
// successors of a transition, and at least one successor of a step.
func (s *simulation) reaches(n, target *chart.Node) bool {
	memo, ok := s.reach[target.ID()]
	if !ok {
		memo = make(map[uuid.UUID]int8)
		s.reach[target.ID()] = memo
	}
	var walk func(n *chart.Node) bool
	walk = func(n *chart.Node) bool {
		if n == target {
			return true
		}
		switch memo[n.ID()] {
		case reachYes:
			return true
		case reachNo, reachVisiting:
			return false
		}
		memo[n.ID()] = reachVisiting

		result := false
		forward := 0
		for _, l := range n.SuccessorLinks() {
			if l.IsLoopback() {
				continue
			}
			forward++
			ok := walk(l.Successor())
			if n.IsStep() && ok {
				result = true
				break
			}
			if n.IsTransition() && !ok {
				result = false
				break
			}
			result = ok
		}
		if forward == 0 {
			result = false
		}
		if result {
			memo[n.ID()] = reachYes
		} else {
			memo[n.ID()] = reachNo
		}
		return result
	}
	return walk(n)
}

func (s *simulation) findings(start *chart.Node) []Finding {
	var out []Finding
	add := func(kind Kind, n *chart.Node, format string, args ...any) {
		f := Finding{Kind: kind, Narrative: fmt.Sprintf(format, args...), Chart: s.path}
		if n != nil {
			f.Node, f.NodeID = n.Name(), n.ID()
		}
		out = append(out, f)
	}

	for _, n := range s.chart.Nodes() {
		r := s.record(n)
		switch {
		case !r.arrived && n != start:
			add(UnreachableNode, n, "no token reached %s %s", n.Kind(), n.Name())
		case !r.executed:
			add(UnexecutedNode, n, "%s %s was reached but never executed", n.Kind(), n.Name())
		}
	}

	for _, n := range s.chart.Steps() {
		if n.PredecessorCount() < 2 {
			continue
		}
		r := s.record(n)
		lineage := -1
		for _, l := range n.PredecessorLinks() {
			tok, ok := r.arrivals[l.ID()]
			if !ok {
				continue
			}
			if lineage == -1 {
				lineage = tok
				continue
			}
			if tok != lineage {
				add(SerialConvergenceMismatch, n, "predecessor %s arrives with token %d, expected %d", l.Predecessor().Name(), tok, lineage)
				break
			}
		}
	}

	reported := make(map[uuid.UUID]bool)
	for i, t := range s.tokens {
		if t.open <= 0 {
			continue
		}
		at := t.divergedAt
		if at == nil {
			at = t.branchOf
		}
		if at == nil {
			at = t.origin
		}
		if reported[at.ID()] {
			continue
		}
		reported[at.ID()] = true
		add(UncompletedParallelBranches, at, "token %d still has %d open path(s)", i, t.open)
	}
	return out
}
