package chart

import "github.com/google/uuid"

// Link joins a predecessor node to a successor node of the opposite kind.
// Each end holds at most one node.
type Link struct {
	id          uuid.UUID
	seq         uint64
	name        string
	description string

	chart    *Chart
	pred     uuid.UUID
	succ     uuid.UUID
	priority int
	loopback bool
}

func (l *Link) ID() uuid.UUID       { return l.id }
func (l *Link) Seq() uint64         { return l.seq }
func (l *Link) Name() string        { return l.name }
func (l *Link) Description() string { return l.description }
func (l *Link) Chart() *Chart       { return l.chart }

func (l *Link) SetDescription(d string) { l.description = d }

// ElementType implements Element.
func (l *Link) ElementType() ElementType { return ElementLink }

// Rename changes the link's name and its naming-scope entry.
func (l *Link) Rename(name string) error {
	return l.chart.renameElement(l, &l.name, name)
}

func (l *Link) String() string { return l.name }

// Priority orders sibling links; higher fires and sorts first.
func (l *Link) Priority() int { return l.priority }

// SetPriority changes the link priority and marks the structure stale.
func (l *Link) SetPriority(p int) {
	if l.priority == p {
		return
	}
	l.priority = p
	l.chart.structureChanged()
}

// IsLoopback reports whether the last structure update found this link to be
// a back-edge.
func (l *Link) IsLoopback() bool { return l.loopback }

// Predecessor returns the upstream node, or nil.
func (l *Link) Predecessor() *Node {
	return l.chart.nodes[l.pred]
}

// Successor returns the downstream node, or nil.
func (l *Link) Successor() *Node {
	return l.chart.nodes[l.succ]
}

// SetPredecessor binds the upstream end. Replacing a different node that is
// already bound there is a structural violation.
func (l *Link) SetPredecessor(n *Node) error {
	if err := l.checkEnd(l.pred, n); err != nil {
		return err
	}
	if l.pred == n.id {
		return nil
	}
	l.pred = n.id
	n.out = append(n.out, l.id)
	n.orphaned = false
	n.dirty = true
	l.chart.structureChanged()
	return nil
}

// SetSuccessor binds the downstream end under the same rules as SetPredecessor.
func (l *Link) SetSuccessor(n *Node) error {
	if err := l.checkEnd(l.succ, n); err != nil {
		return err
	}
	if l.succ == n.id {
		return nil
	}
	l.succ = n.id
	n.in = append(n.in, l.id)
	n.orphaned = false
	n.dirty = true
	l.chart.structureChanged()
	return nil
}

func (l *Link) checkEnd(current uuid.UUID, n *Node) error {
	if n == nil || n.chart != l.chart {
		return ErrForeignNode
	}
	if current != uuid.Nil && current != n.id {
		return ErrEndpointOccupied
	}
	return nil
}

// AggregateLinkType classifies the link from the fan-out of its predecessor,
// the fan-in of its successor and their kinds.
func (l *Link) AggregateLinkType() AggregateLinkType {
	pred, succ := l.Predecessor(), l.Successor()
	if pred == nil || succ == nil || pred.kind == succ.kind {
		return LinkUnknown
	}
	fanOut, fanIn := len(pred.out), len(succ.in)
	switch {
	case fanOut == 1 && fanIn == 1:
		return LinkSimple
	case fanOut > 1 && pred.kind == KindStep:
		return LinkSeriesDivergent
	case fanOut > 1 && pred.kind == KindTransition:
		return LinkParallelDivergent
	case fanIn > 1 && succ.kind == KindStep:
		return LinkParallelConvergent
	case fanIn > 1 && succ.kind == KindTransition:
		return LinkSeriesConvergent
	default:
		return LinkUnknown
	}
}

// Detach clears both ends and removes the link from both adjacency lists and
// from the owning chart. A node that loses its last link becomes an orphan.
func (l *Link) Detach() {
	c := l.chart
	if _, owned := c.links[l.id]; !owned {
		return
	}
	if p := l.Predecessor(); p != nil {
		p.out = removeID(p.out, l.id)
		p.dirty = true
		p.orphaned = !p.IsConnected()
	}
	if s := l.Successor(); s != nil {
		s.in = removeID(s.in, l.id)
		s.dirty = true
		s.orphaned = !s.IsConnected()
	}
	l.pred, l.succ = uuid.Nil, uuid.Nil
	c.forgetLink(l)
}

func removeID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	for i, cur := range ids {
		if cur == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
