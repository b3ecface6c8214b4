package dsl

import (
	"errors"
	"fmt"

	"github.com/aretw0/pfc/pkg/chart"
	"github.com/aretw0/pfc/pkg/expression"
)

var (
	// ErrUnknownTarget is returned when an edge names a node that was never declared.
	ErrUnknownTarget = errors.New("dsl: unknown target node")
	// ErrKindConflict is returned when a name is declared as both a step and a transition.
	ErrKindConflict = errors.New("dsl: node declared with two kinds")
)

// Builder manages the chart construction.
type Builder struct {
	name        string
	description string
	opts        []chart.Option
	nodes       map[string]*NodeBuilder
	order       []*NodeBuilder
	macros      [][2]string
	err         error
}

// New creates a new chart builder. The options are handed to chart.New.
func New(name string, opts ...chart.Option) *Builder {
	return &Builder{
		name:  name,
		opts:  opts,
		nodes: make(map[string]*NodeBuilder),
	}
}

// Describe sets the chart description.
func (b *Builder) Describe(description string) *Builder {
	b.description = description
	return b
}

// Macro adds a named guard fragment to the chart's macro table.
func (b *Builder) Macro(name, text string) *Builder {
	b.macros = append(b.macros, [2]string{name, text})
	return b
}

// Step declares a step. If it already exists, it returns the existing builder.
func (b *Builder) Step(name string) *NodeBuilder {
	return b.add(chart.KindStep, name)
}

// Transition declares a transition. If it already exists, it returns the existing builder.
func (b *Builder) Transition(name string) *NodeBuilder {
	return b.add(chart.KindTransition, name)
}

func (b *Builder) add(kind chart.Kind, name string) *NodeBuilder {
	if nb, ok := b.nodes[name]; ok {
		if nb.kind != kind && b.err == nil {
			b.err = fmt.Errorf("%w: %s", ErrKindConflict, name)
		}
		return nb
	}
	nb := &NodeBuilder{kind: kind, name: name, keep: kind == chart.KindStep, builder: b}
	b.nodes[name] = nb
	b.order = append(b.order, nb)
	return nb
}

// Build creates the nodes in declaration order, then binds every edge.
func (b *Builder) Build() (*chart.Chart, error) {
	if b.err != nil {
		return nil, b.err
	}
	opts := append([]chart.Option{
		chart.WithExpressionParser(expression.Parser),
		chart.WithDescription(b.description),
	}, b.opts...)
	c := chart.New(b.name, opts...)

	for _, m := range b.macros {
		guard, err := expression.Parse(m[1])
		if err != nil {
			return nil, fmt.Errorf("macro %s: %w", m[0], err)
		}
		c.SetMacro(m[0], guard)
	}

	c.SuspendNodeSorting()
	built := make(map[string]*chart.Node, len(b.order))
	for _, nb := range b.order {
		n, err := nb.create(c)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", nb.name, err)
		}
		built[nb.name] = n
	}
	for _, nb := range b.order {
		for _, e := range nb.edges {
			to, ok := built[e.target]
			if !ok {
				return nil, fmt.Errorf("%w: %s -> %s", ErrUnknownTarget, nb.name, e.target)
			}
			var bindOpts []chart.BindOption
			if e.priority != 0 {
				bindOpts = append(bindOpts, chart.WithPriority(e.priority))
			}
			if err := c.Bind(built[nb.name], to, bindOpts...); err != nil {
				return nil, fmt.Errorf("bind %s -> %s: %w", nb.name, e.target, err)
			}
		}
	}
	if err := c.ResumeNodeSorting(); err != nil {
		return nil, err
	}
	return c, nil
}

// MustBuild is like Build but panics on error. Intended for tests and fixtures.
func (b *Builder) MustBuild() *chart.Chart {
	c, err := b.Build()
	if err != nil {
		panic(err)
	}
	return c
}
