package chart

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Expression is the guard collaborator attached to a transition. The chart
// never evaluates it; it only needs the names it references and a way to
// relocate those references when elements are renamed.
type Expression interface {
	String() string
	References() []string
	// Relocate returns a copy with every referenced name found in renames
	// replaced by its mapped value.
	Relocate(renames map[string]string) Expression
}

// ExpressionParser turns persisted guard text back into an Expression.
type ExpressionParser func(text string) (Expression, error)

// Action is the leaf-level behaviour the execution engine runs for a step.
type Action func(ctx context.Context, step *Node) error

// Precondition gates the start of a step in the execution engine.
type Precondition func(ctx context.Context, step *Node) bool

type action struct {
	name  string
	chart *Chart
}

// Node is a step or a transition. Adjacency is held as link ids and resolved
// through the owning chart.
type Node struct {
	id          uuid.UUID
	seq         uint64
	kind        Kind
	name        string
	description string
	layout      string

	chart *Chart
	in    []uuid.UUID
	out   []uuid.UUID

	ordinal  int
	color    Color
	dirty    bool
	orphaned bool

	// step payload
	null         bool
	actions      []action
	leaf         Action
	precondition Precondition
	unit         string

	// transition payload
	expr Expression
}

func (n *Node) ID() uuid.UUID       { return n.id }
func (n *Node) Seq() uint64         { return n.seq }
func (n *Node) Kind() Kind          { return n.kind }
func (n *Node) IsStep() bool        { return n.kind == KindStep }
func (n *Node) IsTransition() bool  { return n.kind == KindTransition }
func (n *Node) Name() string        { return n.name }
func (n *Node) Description() string { return n.description }
func (n *Node) Chart() *Chart       { return n.chart }
func (n *Node) Ordinal() int        { return n.ordinal }
func (n *Node) Color() Color        { return n.color }

// Layout is opaque presentation data carried through clones and records.
func (n *Node) Layout() string { return n.layout }

func (n *Node) SetLayout(layout string) { n.layout = layout }
func (n *Node) SetDescription(d string) { n.description = d }

// ElementType implements Element.
func (n *Node) ElementType() ElementType {
	return elementTypeOf(n.kind)
}

// Rename changes the node's name and its naming-scope entry.
func (n *Node) Rename(name string) error {
	return n.chart.renameElement(n, &n.name, name)
}

func (n *Node) String() string {
	return n.name
}

// PredecessorLinks returns the incoming links in adjacency order.
func (n *Node) PredecessorLinks() []*Link {
	return n.chart.resolveLinks(n.in)
}

// SuccessorLinks returns the outgoing links in their sorted order.
func (n *Node) SuccessorLinks() []*Link {
	return n.chart.resolveLinks(n.out)
}

// Predecessors returns the nodes feeding this node, one per incoming link.
func (n *Node) Predecessors() []*Node {
	nodes := make([]*Node, 0, len(n.in))
	for _, l := range n.PredecessorLinks() {
		if p := l.Predecessor(); p != nil {
			nodes = append(nodes, p)
		}
	}
	return nodes
}

// Successors returns the nodes fed by this node, one per outgoing link.
func (n *Node) Successors() []*Node {
	nodes := make([]*Node, 0, len(n.out))
	for _, l := range n.SuccessorLinks() {
		if s := l.Successor(); s != nil {
			nodes = append(nodes, s)
		}
	}
	return nodes
}

func (n *Node) PredecessorCount() int { return len(n.in) }
func (n *Node) SuccessorCount() int   { return len(n.out) }

// IsConnected reports whether the node has any predecessor or successor.
func (n *Node) IsConnected() bool {
	return len(n.in) > 0 || len(n.out) > 0
}

// IsStart reports whether the node has no predecessors.
func (n *Node) IsStart() bool { return len(n.in) == 0 }

// IsFinish reports whether the node has no successors.
func (n *Node) IsFinish() bool { return len(n.out) == 0 }

func (n *Node) hasBehavior() bool {
	if n.kind == KindStep {
		return len(n.actions) > 0 || n.leaf != nil
	}
	return n.expr != nil && strings.TrimSpace(n.expr.String()) != ""
}

// IsSimple reports whether the node is a pure pass-through: one predecessor,
// one successor and no behaviour of its own.
func (n *Node) IsSimple() bool {
	return len(n.in) == 1 && len(n.out) == 1 && !n.hasBehavior()
}

// IsNullNode reports whether reduction may eliminate the node. Steps are null
// until they receive behaviour or are explicitly marked; transitions are null
// when they carry no guard expression.
func (n *Node) IsNullNode() bool {
	if n.kind == KindTransition {
		return !n.hasBehavior()
	}
	return n.null && !n.hasBehavior()
}

// SetNullNode marks a step as (non-)eligible for reduction. Transition
// nullness follows the expression, so the call is ignored for transitions.
func (n *Node) SetNullNode(null bool) {
	if n.kind == KindStep {
		n.null = null
	}
}

// StructureDirty reports whether ordinals and sort order are stale, for this
// node or any chart nested under it.
func (n *Node) StructureDirty() bool {
	if n.dirty {
		return true
	}
	for _, a := range n.actions {
		if a.chart.StructureDirty() {
			return true
		}
	}
	return false
}

// Reset clears runtime state. For steps it cascades into nested charts.
func (n *Node) Reset() {
	n.color = White
	if r, ok := n.expr.(interface{ Reset() }); ok {
		r.Reset()
	}
	for _, a := range n.actions {
		a.chart.Reset()
	}
}

// Expression returns the guard of a transition (nil for steps or unguarded
// transitions).
func (n *Node) Expression() Expression {
	return n.expr
}

// SetExpression installs the guard of a transition.
func (n *Node) SetExpression(e Expression) error {
	if n.kind != KindTransition {
		return ErrNotATransition
	}
	n.expr = e
	return nil
}

// Unit returns the unit association of a step.
func (n *Node) Unit() string { return n.unit }

// SetUnit associates a step with a processing unit.
func (n *Node) SetUnit(unit string) error {
	if n.kind != KindStep {
		return ErrNotAStep
	}
	n.unit = unit
	return nil
}

// LeafAction returns the leaf-level action hook of a step.
func (n *Node) LeafAction() Action { return n.leaf }

// SetLeafAction installs the leaf-level action of a step; a step with an
// action is no longer null.
func (n *Node) SetLeafAction(a Action) error {
	if n.kind != KindStep {
		return ErrNotAStep
	}
	n.leaf = a
	return nil
}

// Precondition returns the precondition hook of a step.
func (n *Node) Precondition() Precondition { return n.precondition }

// SetPrecondition installs the precondition hook of a step.
func (n *Node) SetPrecondition(p Precondition) error {
	if n.kind != KindStep {
		return ErrNotAStep
	}
	n.precondition = p
	return nil
}

// Actions returns the names of the nested action charts, in insertion order.
func (n *Node) Actions() []string {
	names := make([]string, len(n.actions))
	for i, a := range n.actions {
		names[i] = a.name
	}
	return names
}

// Action returns the nested chart registered under name.
func (n *Node) Action(name string) (*Chart, bool) {
	for _, a := range n.actions {
		if a.name == name {
			return a.chart, true
		}
	}
	return nil, false
}

// AddAction nests sub under this step. The sub-chart's naming scope becomes a
// child of the owning chart's scope; sub elements whose names are already
// taken there are renamed.
func (n *Node) AddAction(name string, sub *Chart) error {
	if n.kind != KindStep {
		return ErrNotAStep
	}
	if _, exists := n.Action(name); exists {
		return &NameConflictError{Name: name}
	}
	for c := n.chart; ; c = c.parentStep.chart {
		if c == sub {
			return ErrRecursiveAction
		}
		if c.parentStep == nil {
			break
		}
	}
	sub.scope.parent = n.chart.scope
	sub.parentStep = n
	sub.refreshScope()
	n.actions = append(n.actions, action{name: name, chart: sub})
	n.chart.logger.Debug("action added", "step", n.name, "action", name, "chart", sub.name)
	return nil
}

// RemoveAction detaches a nested chart from the step.
func (n *Node) RemoveAction(name string) (*Chart, bool) {
	for i, a := range n.actions {
		if a.name == name {
			n.actions = append(n.actions[:i], n.actions[i+1:]...)
			a.chart.scope.parent = nil
			a.chart.parentStep = nil
			return a.chart, true
		}
	}
	return nil, false
}
