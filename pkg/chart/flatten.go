package chart

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/google/uuid"
)

// Flatten splices every nested action chart into this chart, bottom-up, and
// removes the steps that owned them. Each step may carry at most one action;
// the check runs over the whole hierarchy before anything is modified. When
// at least one step was spliced the result is reduced once.
func (c *Chart) Flatten() error {
	if err := c.checkFlattenable(); err != nil {
		return err
	}
	spliced, err := c.flatten()
	if err != nil {
		return err
	}
	if spliced > 0 {
		c.Reduce()
	}
	c.logger.Debug("chart flattened", "chart", c.name, "spliced", spliced)
	return nil
}

func (c *Chart) checkFlattenable() error {
	for _, n := range c.nodeOrder {
		if len(n.actions) > 1 {
			return fmt.Errorf("%s: step %s has %d actions: %w", c.name, n.name, len(n.actions), ErrMultipleActions)
		}
		for _, a := range n.actions {
			if err := a.chart.checkFlattenable(); err != nil {
				return fmt.Errorf("%s/%s: %w", n.name, a.name, err)
			}
		}
	}
	return nil
}

func (c *Chart) flatten() (int, error) {
	c.suspend()
	defer c.resume()

	spliced := 0
	for _, step := range slices.Clone(c.nodeOrder) {
		if len(step.actions) == 0 {
			continue
		}
		sub := step.actions[0].chart
		n, err := sub.flatten()
		if err != nil {
			return spliced, err
		}
		spliced += n
		if len(sub.nodes) == 0 {
			step.RemoveAction(step.actions[0].name)
			continue
		}
		if err := c.splice(step, sub); err != nil {
			return spliced, fmt.Errorf("%s: splice %s: %w", c.name, step.name, err)
		}
		spliced++
	}
	return spliced, nil
}

// splice copies sub into c in place of step. Predecessor transitions of step
// feed the start nodes of sub; the exits of sub (predecessors of its null
// finish transitions, or its own terminal nodes) feed the successor
// transitions of step.
func (c *Chart) splice(step *Node, sub *Chart) error {
	renames := make(map[string]string)
	c.migrateMacros(step, sub, renames)

	finals := make(map[uuid.UUID]bool)
	for _, n := range sub.nodeOrder {
		if n.kind == KindTransition && n.IsFinish() && n.IsNullNode() && len(n.in) > 0 {
			finals[n.id] = true
		}
	}

	copies := make(map[uuid.UUID]*Node, len(sub.nodes))
	for _, n := range sub.nodeOrder {
		if finals[n.id] {
			continue
		}
		name := c.spliceName(step, sub.factory, n, n.name)
		if name != n.name {
			renames[n.name] = name
		}
		dup, err := c.createNode(n.kind, name, n.description)
		if err != nil {
			return err
		}
		dup.layout = n.layout
		dup.null = n.null
		dup.leaf = n.leaf
		dup.precondition = n.precondition
		dup.unit = n.unit
		if dup.unit == "" && dup.kind == KindStep {
			dup.unit = step.unit
		}
		dup.expr = n.expr
		copies[n.id] = dup
	}
	for _, dup := range copies {
		if dup.expr != nil && len(renames) > 0 {
			dup.expr = dup.expr.Relocate(renames)
		}
	}

	for _, l := range sub.linkOrder {
		from, to := copies[l.pred], copies[l.succ]
		if from == nil || to == nil {
			continue
		}
		cp, err := c.Connect(from, to)
		if err != nil {
			return err
		}
		cp.priority = l.priority
		cp.description = l.description
	}

	var entries, exits []*Node
	for _, n := range sub.nodeOrder {
		if finals[n.id] {
			for _, p := range n.Predecessors() {
				exits = append(exits, copies[p.id])
			}
			continue
		}
		if n.IsStart() {
			entries = append(entries, copies[n.id])
		}
		if n.IsFinish() {
			exits = append(exits, copies[n.id])
		}
	}

	type edge struct {
		node     *Node
		priority int
	}
	var before, after []edge
	for _, l := range step.PredecessorLinks() {
		before = append(before, edge{l.Predecessor(), l.priority})
	}
	for _, l := range step.SuccessorLinks() {
		after = append(after, edge{l.Successor(), l.priority})
	}

	c.removeNode(step)
	for _, p := range before {
		for _, e := range entries {
			if err := c.Bind(p.node, e, WithPriority(p.priority)); err != nil {
				return err
			}
		}
	}
	for _, x := range exits {
		for _, q := range after {
			if err := c.Bind(x, q.node, WithPriority(q.priority)); err != nil {
				return err
			}
		}
	}
	c.logger.Debug("action spliced", "chart", c.name, "step", step.name, "action_chart", sub.name,
		"nodes", len(copies), "renamed", len(renames))
	return nil
}

// spliceName picks the name a spliced element takes in c. Canonical names are
// renumbered by c's factory; other names keep their text unless it collides,
// in which case they are qualified by the owning step.
func (c *Chart) spliceName(step *Node, origin *Factory, e Element, name string) string {
	if origin.IsCanonicallyNamed(e) {
		return c.factory.nextName(e.ElementType(), c.scope.Contains)
	}
	if !c.scope.Contains(name) {
		return name
	}
	base := step.name + "." + name
	candidate := base
	for i := 2; c.scope.Contains(candidate); i++ {
		candidate = base + "." + strconv.Itoa(i)
	}
	return candidate
}

// migrateMacros moves the macro table of sub into c. An identical macro of
// the same name is reused; a conflicting one is qualified by the step name
// and the rename recorded so guard expressions can be relocated.
func (c *Chart) migrateMacros(step *Node, sub *Chart, renames map[string]string) {
	for _, name := range sub.Macros() {
		e := sub.macros[name]
		existing, ok := c.macros[name]
		switch {
		case !ok:
			c.macros[name] = e
		case existing.String() == e.String():
		default:
			base := step.name + "." + name
			target := base
			for i := 2; ; i++ {
				if _, taken := c.macros[target]; !taken {
					break
				}
				target = base + "." + strconv.Itoa(i)
			}
			c.macros[target] = e
			renames[name] = target
		}
	}
	// Macros may reference each other.
	for from, to := range renames {
		if e, ok := c.macros[to]; ok && from != to {
			c.macros[to] = e.Relocate(renames)
		}
	}
}
