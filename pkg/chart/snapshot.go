package chart

import (
	"fmt"
	"maps"

	"github.com/aretw0/pfc/pkg/schema"
	"github.com/google/uuid"
)

// opaque keeps guard text that could not be parsed because no parser was
// configured. It references nothing and relocates to itself.
type opaque string

func (o opaque) String() string                        { return string(o) }
func (o opaque) References() []string                  { return nil }
func (o opaque) Relocate(map[string]string) Expression { return o }

// Snapshot produces the persisted record set of the chart, nested action
// charts included.
func (c *Chart) Snapshot() *schema.Chart {
	rec := &schema.Chart{
		ID:          c.id.String(),
		Name:        c.name,
		Description: c.description,
		Steps:       []schema.Step{},
		Transitions: []schema.Transition{},
		Links:       []schema.Link{},
		Cursors: schema.Cursors{
			Step:       c.factory.Cursor(ElementStep),
			Transition: c.factory.Cursor(ElementTransition),
			Link:       c.factory.Cursor(ElementLink),
			Seq:        c.factory.Seq(),
		},
	}
	if len(c.macros) > 0 {
		rec.Macros = make(map[string]string, len(c.macros))
		for name, e := range c.macros {
			rec.Macros[name] = e.String()
		}
	}

	for _, n := range c.nodeOrder {
		if n.kind == KindStep {
			s := schema.Step{
				ID:          n.id.String(),
				Name:        n.name,
				Description: n.description,
				Layout:      n.layout,
				Seq:         n.seq,
				Ordinal:     n.ordinal,
				Null:        n.null,
				Unit:        n.unit,
			}
			for _, a := range n.actions {
				s.Actions = append(s.Actions, schema.Action{Name: a.name, Chart: *a.chart.Snapshot()})
			}
			rec.Steps = append(rec.Steps, s)
			continue
		}
		t := schema.Transition{
			ID:          n.id.String(),
			Name:        n.name,
			Description: n.description,
			Layout:      n.layout,
			Seq:         n.seq,
			Ordinal:     n.ordinal,
		}
		if n.expr != nil {
			t.Expression = n.expr.String()
		}
		rec.Transitions = append(rec.Transitions, t)
	}

	for _, l := range c.linkOrder {
		rec.Links = append(rec.Links, schema.Link{
			ID:          l.id.String(),
			Name:        l.name,
			Description: l.description,
			Seq:         l.seq,
			Predecessor: l.pred.String(),
			Successor:   l.succ.String(),
			Priority:    l.priority,
		})
	}
	return rec
}

// Restore rebuilds a chart from its record set. Guard text is parsed with the
// parser set through WithExpressionParser; without one it is kept verbatim.
// The record is validated first; failures wrap ErrInvalidRecord.
func Restore(rec *schema.Chart, opts ...Option) (*Chart, error) {
	if err := schema.Validate(rec); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	return restore(rec, opts)
}

func restore(rec *schema.Chart, opts []Option) (*Chart, error) {
	if rec.ID != "" {
		opts = append(opts, WithID(uuid.MustParse(rec.ID)))
	}
	c := New(rec.Name, append(opts, WithDescription(rec.Description))...)
	c.suspend()
	defer c.resume()

	parse := func(text string) (Expression, error) {
		if text == "" {
			return nil, nil
		}
		if c.parser == nil {
			return opaque(text), nil
		}
		return c.parser(text)
	}

	for name, text := range rec.Macros {
		e, err := parse(text)
		if err != nil {
			return nil, fmt.Errorf("%w: macro %s: %w", ErrInvalidRecord, name, err)
		}
		c.macros[name] = e
	}

	persisted := make(map[uuid.UUID]int, rec.NodeCount())
	var highest uint64
	for _, s := range rec.Steps {
		n, err := c.adoptNode(KindStep, uuid.MustParse(s.ID), s.Name, s.Seq)
		if err != nil {
			return nil, err
		}
		n.description, n.layout, n.unit, n.null = s.Description, s.Layout, s.Unit, s.Null
		persisted[n.id] = s.Ordinal
		highest = max(highest, s.Seq)
		for _, a := range s.Actions {
			sub, err := restore(&a.Chart, []Option{
				WithLogger(c.logger),
				WithExpressionParser(c.parser),
				WithOrphanPruning(c.pruneOrphans),
				WithBreadthFirst(c.breadthFirst),
			})
			if err != nil {
				return nil, fmt.Errorf("%s/%s: %w", s.Name, a.Name, err)
			}
			if err := n.AddAction(a.Name, sub); err != nil {
				return nil, err
			}
		}
	}
	for _, t := range rec.Transitions {
		n, err := c.adoptNode(KindTransition, uuid.MustParse(t.ID), t.Name, t.Seq)
		if err != nil {
			return nil, err
		}
		n.description, n.layout = t.Description, t.Layout
		if n.expr, err = parse(t.Expression); err != nil {
			return nil, fmt.Errorf("%w: transition %s: %w", ErrInvalidRecord, t.Name, err)
		}
		persisted[n.id] = t.Ordinal
		highest = max(highest, t.Seq)
	}
	for _, lr := range rec.Links {
		l, err := c.adoptLink(uuid.MustParse(lr.ID), lr.Name, lr.Seq)
		if err != nil {
			return nil, err
		}
		l.description, l.priority = lr.Description, lr.Priority
		highest = max(highest, lr.Seq)
		if err := l.SetPredecessor(c.nodes[uuid.MustParse(lr.Predecessor)]); err != nil {
			return nil, fmt.Errorf("%w: link %s: %w", ErrInvalidRecord, lr.Name, err)
		}
		if err := l.SetSuccessor(c.nodes[uuid.MustParse(lr.Successor)]); err != nil {
			return nil, fmt.Errorf("%w: link %s: %w", ErrInvalidRecord, lr.Name, err)
		}
	}

	cur := rec.Cursors
	c.factory.SetState(cur.Step, cur.Transition, cur.Link, max(cur.Seq, highest))

	c.UpdateStructure(c.breadthFirst)
	for id, ordinal := range persisted {
		if n := c.nodes[id]; n != nil && n.ordinal != ordinal {
			c.logger.Warn("restored ordinal differs from record",
				"chart", c.name, "node", n.name, "record", ordinal, "computed", n.ordinal)
		}
	}
	return c, nil
}

func (c *Chart) adoptNode(kind Kind, id uuid.UUID, name string, seq uint64) (*Node, error) {
	if err := c.scope.Register(name, id); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	n := &Node{
		id:      id,
		seq:     seq,
		kind:    kind,
		name:    name,
		chart:   c,
		ordinal: Unassigned,
		dirty:   true,
		null:    kind == KindStep,
	}
	c.nodes[id] = n
	c.nodeOrder = append(c.nodeOrder, n)
	c.dirty = true
	return n, nil
}

func (c *Chart) adoptLink(id uuid.UUID, name string, seq uint64) (*Link, error) {
	if err := c.scope.Register(name, id); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	l := &Link{id: id, seq: seq, name: name, chart: c}
	c.links[id] = l
	c.linkOrder = append(c.linkOrder, l)
	return l, nil
}

// MacroTexts returns the macro table as guard text, for presentation.
func (c *Chart) MacroTexts() map[string]string {
	out := make(map[string]string, len(c.macros))
	for name, e := range maps.All(c.macros) {
		out[name] = e.String()
	}
	return out
}
