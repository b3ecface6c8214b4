package dsl

import (
	"fmt"

	"github.com/aretw0/pfc/pkg/chart"
	"github.com/aretw0/pfc/pkg/expression"
)

type edge struct {
	target   string
	priority int
}

type subchart struct {
	name    string
	builder *Builder
}

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	kind        chart.Kind
	name        string
	description string
	guard       string
	unit        string
	layout      string
	keep        bool
	actions     []subchart
	edges       []edge
	builder     *Builder
}

// Describe sets the node description.
func (n *NodeBuilder) Describe(description string) *NodeBuilder {
	n.description = description
	return n
}

// When sets the guard expression of a transition.
func (n *NodeBuilder) When(guard string) *NodeBuilder {
	n.guard = guard
	return n
}

// Unit associates a step with a processing unit.
func (n *NodeBuilder) Unit(unit string) *NodeBuilder {
	n.unit = unit
	return n
}

// Layout stores opaque layout data for editors.
func (n *NodeBuilder) Layout(layout string) *NodeBuilder {
	n.layout = layout
	return n
}

// Null marks a step as a null step, which reduction may remove.
func (n *NodeBuilder) Null() *NodeBuilder {
	n.keep = false
	return n
}

// Action nests the chart built by sub under this step.
func (n *NodeBuilder) Action(name string, sub *Builder) *NodeBuilder {
	n.actions = append(n.actions, subchart{name: name, builder: sub})
	return n
}

// Go adds an edge to each target, in order.
func (n *NodeBuilder) Go(targets ...string) *NodeBuilder {
	for _, t := range targets {
		n.edges = append(n.edges, edge{target: t})
	}
	return n
}

// Prioritized adds an edge to target with an explicit link priority.
func (n *NodeBuilder) Prioritized(target string, priority int) *NodeBuilder {
	n.edges = append(n.edges, edge{target: target, priority: priority})
	return n
}

// Then returns the owning builder so declarations can be chained.
func (n *NodeBuilder) Then() *Builder {
	return n.builder
}

func (n *NodeBuilder) create(c *chart.Chart) (*chart.Node, error) {
	var (
		node *chart.Node
		err  error
	)
	if n.kind == chart.KindStep {
		node, err = c.CreateStep(n.name, n.description)
	} else {
		node, err = c.CreateTransition(n.name, n.description)
	}
	if err != nil {
		return nil, err
	}
	node.SetLayout(n.layout)

	if n.guard != "" {
		guard, err := expression.Parse(n.guard)
		if err != nil {
			return nil, err
		}
		if err := node.SetExpression(guard); err != nil {
			return nil, err
		}
	}
	if n.unit != "" {
		if err := node.SetUnit(n.unit); err != nil {
			return nil, err
		}
	}
	if node.IsStep() {
		node.SetNullNode(!n.keep)
	}
	for _, a := range n.actions {
		sub, err := a.builder.Build()
		if err != nil {
			return nil, fmt.Errorf("action %s: %w", a.name, err)
		}
		if err := node.AddAction(a.name, sub); err != nil {
			return nil, err
		}
	}
	return node, nil
}
