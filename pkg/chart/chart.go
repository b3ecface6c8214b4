package chart

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/aretw0/pfc/internal/logging"
	"github.com/google/uuid"
)

// Chart is a Procedure Function Chart: the container that owns every step,
// transition and link of one graph and implements its structural algorithms.
//
// A Chart is not safe for concurrent use. Callers serialize mutations; the
// validator always works on a private clone.
type Chart struct {
	id          uuid.UUID
	name        string
	description string

	factory *Factory
	scope   *Scope
	logger  *slog.Logger
	parser  ExpressionParser

	nodes     map[uuid.UUID]*Node
	links     map[uuid.UUID]*Link
	nodeOrder []*Node
	linkOrder []*Link
	macros    map[string]Expression

	parentStep *Node

	suspended    int
	pruneOrphans bool
	breadthFirst bool
	dirty        bool
}

// Option configures a Chart.
type Option func(*Chart)

// WithLogger sets the logger used for structural diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Chart) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithFactory installs the element factory (prefixes, id generator).
func WithFactory(f *Factory) Option {
	return func(c *Chart) {
		if f != nil {
			c.factory = f
		}
	}
}

// WithParentScope nests the chart's naming scope under parent.
func WithParentScope(parent *Scope) Option {
	return func(c *Chart) {
		c.scope.parent = parent
	}
}

// WithOrphanPruning controls whether nodes that lose their last link are
// removed on the next structure update. Enabled by default.
func WithOrphanPruning(enabled bool) Option {
	return func(c *Chart) {
		c.pruneOrphans = enabled
	}
}

// WithBreadthFirst selects breadth-first (default) or depth-first ordinal
// assignment for automatic structure updates.
func WithBreadthFirst(enabled bool) Option {
	return func(c *Chart) {
		c.breadthFirst = enabled
	}
}

// WithExpressionParser sets the parser used to rebuild guards from records.
func WithExpressionParser(p ExpressionParser) Option {
	return func(c *Chart) {
		c.parser = p
	}
}

// WithID fixes the chart identifier instead of drawing one from the factory.
func WithID(id uuid.UUID) Option {
	return func(c *Chart) {
		c.id = id
	}
}

// WithDescription sets the chart description.
func WithDescription(d string) Option {
	return func(c *Chart) {
		c.description = d
	}
}

// New creates an empty chart.
func New(name string, opts ...Option) *Chart {
	c := &Chart{
		name:         name,
		scope:        NewScope(nil),
		logger:       logging.NewNop(),
		nodes:        make(map[uuid.UUID]*Node),
		links:        make(map[uuid.UUID]*Link),
		macros:       make(map[string]Expression),
		pruneOrphans: true,
		breadthFirst: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.factory == nil {
		c.factory = NewFactory()
	}
	if c.id == uuid.Nil {
		c.id = c.factory.NewID()
	}
	return c
}

func (c *Chart) ID() uuid.UUID        { return c.id }
func (c *Chart) Name() string         { return c.name }
func (c *Chart) Description() string  { return c.description }
func (c *Chart) Factory() *Factory    { return c.factory }
func (c *Chart) Scope() *Scope        { return c.scope }
func (c *Chart) Logger() *slog.Logger { return c.logger }

// Parser returns the expression parser used when restoring records.
func (c *Chart) Parser() ExpressionParser { return c.parser }

// ParentStep returns the step this chart is nested under as an action, or nil.
func (c *Chart) ParentStep() *Node { return c.parentStep }

func (c *Chart) SetDescription(d string) { c.description = d }

// Nodes returns every node in structure order (ordinal, then creation).
func (c *Chart) Nodes() []*Node {
	return slices.Clone(c.nodeOrder)
}

// Steps returns the steps in structure order.
func (c *Chart) Steps() []*Node {
	return c.FindAll(func(n *Node) bool { return n.kind == KindStep })
}

// Transitions returns the transitions in structure order.
func (c *Chart) Transitions() []*Node {
	return c.FindAll(func(n *Node) bool { return n.kind == KindTransition })
}

// Links returns every link in structure order.
func (c *Chart) Links() []*Link {
	return slices.Clone(c.linkOrder)
}

// Node resolves a node by id.
func (c *Chart) Node(id uuid.UUID) (*Node, bool) {
	n, ok := c.nodes[id]
	return n, ok
}

// Link resolves a link by id.
func (c *Chart) Link(id uuid.UUID) (*Link, bool) {
	l, ok := c.links[id]
	return l, ok
}

// NodeByName resolves a node of this chart by its name.
func (c *Chart) NodeByName(name string) (*Node, bool) {
	id, ok := c.scope.names[name]
	if !ok {
		return nil, false
	}
	n, ok := c.nodes[id]
	return n, ok
}

// LinkByName resolves a link of this chart by its name.
func (c *Chart) LinkByName(name string) (*Link, bool) {
	id, ok := c.scope.names[name]
	if !ok {
		return nil, false
	}
	l, ok := c.links[id]
	return l, ok
}

// CreateStep adds an unconnected step. An empty name gets the next canonical one.
func (c *Chart) CreateStep(name, description string) (*Node, error) {
	return c.createNode(KindStep, name, description)
}

// CreateTransition adds an unconnected transition. An empty name gets the next
// canonical one.
func (c *Chart) CreateTransition(name, description string) (*Node, error) {
	return c.createNode(KindTransition, name, description)
}

func (c *Chart) createNode(kind Kind, name, description string) (*Node, error) {
	if name == "" {
		name = c.factory.nextName(elementTypeOf(kind), c.scope.Contains)
	}
	id := c.factory.NewID()
	if err := c.scope.Register(name, id); err != nil {
		return nil, fmt.Errorf("create %s: %w", kind, err)
	}
	n := &Node{
		id:          id,
		seq:         c.factory.NextSeq(),
		kind:        kind,
		name:        name,
		description: description,
		chart:       c,
		ordinal:     Unassigned,
		dirty:       true,
		null:        kind == KindStep,
	}
	c.nodes[id] = n
	c.nodeOrder = append(c.nodeOrder, n)
	c.logger.Debug("node created", "chart", c.name, "kind", kind.String(), "name", name)
	c.structureChanged()
	return n, nil
}

// CreateLink adds a link with no endpoints. An empty name gets the next
// canonical one.
func (c *Chart) CreateLink(name string) (*Link, error) {
	if name == "" {
		name = c.factory.nextName(ElementLink, c.scope.Contains)
	}
	id := c.factory.NewID()
	if err := c.scope.Register(name, id); err != nil {
		return nil, fmt.Errorf("create link: %w", err)
	}
	l := &Link{
		id:    id,
		seq:   c.factory.NextSeq(),
		name:  name,
		chart: c,
	}
	c.links[id] = l
	c.linkOrder = append(c.linkOrder, l)
	return l, nil
}

// Connect creates a link from a node to a node of the opposite kind. It never
// inserts shims; use Bind for that.
func (c *Chart) Connect(from, to *Node) (*Link, error) {
	if err := c.owns(from, to); err != nil {
		return nil, err
	}
	if from.kind == to.kind {
		return nil, fmt.Errorf("connect %s -> %s: %w", from.name, to.name, ErrAlternation)
	}
	c.suspend()
	defer c.resume()

	l, err := c.CreateLink("")
	if err != nil {
		return nil, err
	}
	// Both ends are empty and owned by c, so neither call can fail.
	_ = l.SetPredecessor(from)
	_ = l.SetSuccessor(to)
	c.logger.Debug("link created", "chart", c.name, "link", l.name, "from", from.name, "to", to.name)
	return l, nil
}

func (c *Chart) owns(nodes ...*Node) error {
	for _, n := range nodes {
		if n == nil || n.chart != c || c.nodes[n.id] != n {
			return ErrForeignNode
		}
	}
	return nil
}

// removeNode detaches every link of n and drops it from the chart.
func (c *Chart) removeNode(n *Node) {
	c.suspend()
	defer c.resume()
	for _, id := range slices.Clone(n.in) {
		c.links[id].Detach()
	}
	for _, id := range slices.Clone(n.out) {
		c.links[id].Detach()
	}
	delete(c.nodes, n.id)
	c.nodeOrder = slices.DeleteFunc(c.nodeOrder, func(cur *Node) bool { return cur == n })
	if c.scope.names[n.name] == n.id {
		c.scope.Unregister(n.name)
	}
	c.logger.Debug("node removed", "chart", c.name, "name", n.name)
	c.dirty = true
}

func (c *Chart) forgetLink(l *Link) {
	delete(c.links, l.id)
	c.linkOrder = slices.DeleteFunc(c.linkOrder, func(cur *Link) bool { return cur == l })
	if c.scope.names[l.name] == l.id {
		c.scope.Unregister(l.name)
	}
	c.structureChanged()
}

func (c *Chart) resolveLinks(ids []uuid.UUID) []*Link {
	links := make([]*Link, 0, len(ids))
	for _, id := range ids {
		if l, ok := c.links[id]; ok {
			links = append(links, l)
		}
	}
	return links
}

func (c *Chart) renameElement(e Element, field *string, name string) error {
	if name == "" {
		name = c.factory.nextName(e.ElementType(), c.scope.Contains)
	}
	old := *field
	if old == name {
		return nil
	}
	if _, registered := c.scope.names[old]; registered {
		if err := c.scope.Rename(old, name); err != nil {
			return fmt.Errorf("rename %s: %w", old, err)
		}
	} else if err := c.scope.Register(name, e.ID()); err != nil {
		return fmt.Errorf("rename %s: %w", old, err)
	}
	*field = name
	c.logger.Debug("element renamed", "chart", c.name, "from", old, "to", name)
	c.structureChanged()
	return nil
}

// Macro returns the chart-level guard fragment registered under name.
func (c *Chart) Macro(name string) (Expression, bool) {
	e, ok := c.macros[name]
	return e, ok
}

// SetMacro registers (or replaces) a chart-level guard fragment.
func (c *Chart) SetMacro(name string, e Expression) {
	c.macros[name] = e
}

// Macros returns the macro names in lexical order.
func (c *Chart) Macros() []string {
	names := make([]string, 0, len(c.macros))
	for name := range c.macros {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Reset clears the runtime state of every node, cascading into action charts.
func (c *Chart) Reset() {
	for _, n := range c.nodeOrder {
		n.Reset()
	}
}

// StructureDirty reports whether a structure update is pending anywhere in
// this chart or its nested charts.
func (c *Chart) StructureDirty() bool {
	if c.dirty {
		return true
	}
	for _, n := range c.nodeOrder {
		if n.StructureDirty() {
			return true
		}
	}
	return false
}

// SuspendNodeSorting defers structure updates until a matching
// ResumeNodeSorting. Calls nest.
func (c *Chart) SuspendNodeSorting() {
	c.suspend()
}

// ResumeNodeSorting balances one SuspendNodeSorting. The outermost resume runs
// the deferred structure update.
func (c *Chart) ResumeNodeSorting() error {
	if c.suspended == 0 {
		return ErrUnbalancedResume
	}
	c.resume()
	return nil
}

// Suspended reports whether node sorting is currently deferred.
func (c *Chart) Suspended() bool {
	return c.suspended > 0
}

func (c *Chart) suspend() {
	c.suspended++
}

func (c *Chart) resume() {
	c.suspended--
	if c.suspended == 0 && c.dirty {
		c.UpdateStructure(c.breadthFirst)
	}
}

func (c *Chart) structureChanged() {
	c.dirty = true
	if c.suspended == 0 {
		c.UpdateStructure(c.breadthFirst)
	}
}
