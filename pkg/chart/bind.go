package chart

import (
	"fmt"
	"slices"
)

type bindConfig struct {
	piggyback bool
	priority  int
}

// BindOption tunes a single Bind call.
type BindOption func(*bindConfig)

// WithoutPiggyback forces new links (and shims) even when an equivalent path
// already exists.
func WithoutPiggyback() BindOption {
	return func(cfg *bindConfig) {
		cfg.piggyback = false
	}
}

// WithPriority sets the priority of the link leaving from.
func WithPriority(p int) BindOption {
	return func(cfg *bindConfig) {
		cfg.priority = p
	}
}

// Bind connects from to to. Nodes of different kinds get a direct link; nodes
// of the same kind get a shim of the opposite kind between them. With
// piggybacking (the default) an existing equivalent link or shim path is
// reused and nothing is created.
func (c *Chart) Bind(from, to *Node, opts ...BindOption) error {
	cfg := bindConfig{piggyback: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := c.owns(from, to); err != nil {
		return err
	}
	if cfg.piggyback && c.hasPath(from, to) {
		c.logger.Debug("bind piggybacked", "chart", c.name, "from", from.name, "to", to.name)
		return nil
	}

	c.suspend()
	defer c.resume()

	if from.kind != to.kind {
		l, err := c.Connect(from, to)
		if err != nil {
			return err
		}
		l.priority = cfg.priority
		return nil
	}

	shim, err := c.createNode(from.kind.Opposite(), "", "")
	if err != nil {
		return fmt.Errorf("bind %s -> %s: %w", from.name, to.name, err)
	}
	in, err := c.Connect(from, shim)
	if err != nil {
		return err
	}
	in.priority = cfg.priority
	if _, err := c.Connect(shim, to); err != nil {
		return err
	}
	c.logger.Debug("shim inserted", "chart", c.name, "shim", shim.name, "from", from.name, "to", to.name)
	return nil
}

// hasPath reports whether from already reaches to through a direct link or,
// for same-kind pairs, through a simple node of the opposite kind.
func (c *Chart) hasPath(from, to *Node) bool {
	return c.directLink(from, to) != nil || c.shimLink(from, to) != nil
}

func (c *Chart) directLink(from, to *Node) *Link {
	if from.kind == to.kind {
		return nil
	}
	for _, l := range from.SuccessorLinks() {
		if l.succ == to.id {
			return l
		}
	}
	return nil
}

// shimLink returns the first link of a from -> shim -> to chain.
func (c *Chart) shimLink(from, to *Node) *Link {
	if from.kind != to.kind {
		return nil
	}
	for _, l := range from.SuccessorLinks() {
		mid := l.Successor()
		if mid == nil || !mid.IsSimple() {
			continue
		}
		if slices.ContainsFunc(mid.Successors(), func(n *Node) bool { return n == to }) {
			return l
		}
	}
	return nil
}

// Unbind removes exactly one link connecting from to to, either the direct
// link or the first link of a shim chain. Shim nodes are left in place. It
// reports whether anything was removed.
func (c *Chart) Unbind(from, to *Node) bool {
	if c.owns(from, to) != nil {
		return false
	}
	l := c.directLink(from, to)
	if l == nil {
		l = c.shimLink(from, to)
	}
	if l == nil {
		return false
	}
	c.logger.Debug("unbind", "chart", c.name, "from", from.name, "to", to.name, "link", l.name)
	l.Detach()
	return true
}

// Delete removes n together with its structural pair (the unique successor
// transition of a step, the unique predecessor step of a transition) and
// reconnects the surviving neighbours. Both members of the pair must have
// exactly one predecessor and one successor; otherwise nothing changes and
// Delete reports false. A node already disconnected on either side is pruned
// on its own.
func (c *Chart) Delete(n *Node) bool {
	if c.owns(n) != nil {
		return false
	}
	if len(n.in) == 0 || len(n.out) == 0 {
		c.removeNode(n)
		return true
	}

	var step, trans *Node
	if n.kind == KindStep {
		if len(n.out) != 1 {
			return false
		}
		step, trans = n, n.Successors()[0]
	} else {
		if len(n.in) != 1 {
			return false
		}
		step, trans = n.Predecessors()[0], n
	}
	if len(step.in) != 1 || len(step.out) != 1 || len(trans.in) != 1 || len(trans.out) != 1 {
		return false
	}

	entry := step.PredecessorLinks()[0]
	before := entry.Predecessor()
	after := trans.Successors()[0]
	priority := entry.priority

	c.suspend()
	defer c.resume()

	c.removeNode(step)
	c.removeNode(trans)
	if before != step && before != trans && after != step && after != trans {
		// before is a transition and after a step, so Bind links them directly.
		_ = c.Bind(before, after, WithPriority(priority))
	}
	c.logger.Debug("pair deleted", "chart", c.name, "step", step.name, "transition", trans.name)
	return true
}

// Synchronize creates a synchronizing transition fed by every member of
// inbound and feeding every member of outbound. Each set must be non-empty
// and homogeneous in kind; steps are shimmed where a member is a transition.
func (c *Chart) Synchronize(inbound, outbound []*Node) (*Node, error) {
	if err := c.checkSet(inbound); err != nil {
		return nil, fmt.Errorf("synchronize inbound: %w", err)
	}
	if err := c.checkSet(outbound); err != nil {
		return nil, fmt.Errorf("synchronize outbound: %w", err)
	}

	c.suspend()
	defer c.resume()

	sync, err := c.createNode(KindTransition, "", "")
	if err != nil {
		return nil, err
	}
	for _, n := range inbound {
		if err := c.Bind(n, sync); err != nil {
			return nil, err
		}
	}
	for _, n := range outbound {
		if err := c.Bind(sync, n); err != nil {
			return nil, err
		}
	}
	c.logger.Debug("synchronized", "chart", c.name, "node", sync.name, "in", len(inbound), "out", len(outbound))
	return sync, nil
}

func (c *Chart) checkSet(nodes []*Node) error {
	if len(nodes) == 0 {
		return ErrEmptyNodeSet
	}
	if err := c.owns(nodes...); err != nil {
		return err
	}
	kind := nodes[0].kind
	for _, n := range nodes[1:] {
		if n.kind != kind {
			return ErrHeterogeneousNodes
		}
	}
	return nil
}

// BindParallelDivergent fans from out to every member of to through a
// transition. If from is a step a new split transition is inserted after it.
// It returns the split node.
func (c *Chart) BindParallelDivergent(from *Node, to []*Node) (*Node, error) {
	return c.bindDivergent(KindTransition, from, to)
}

// BindSeriesDivergent fans from out to every member of to through a step. If
// from is a transition a new split step is inserted after it.
func (c *Chart) BindSeriesDivergent(from *Node, to []*Node) (*Node, error) {
	return c.bindDivergent(KindStep, from, to)
}

// BindParallelConvergent joins every member of from into to through a
// transition. If to is a step a new join transition is inserted before it.
// It returns the join node.
func (c *Chart) BindParallelConvergent(from []*Node, to *Node) (*Node, error) {
	return c.bindConvergent(KindTransition, from, to)
}

// BindSeriesConvergent joins every member of from into to through a step.
func (c *Chart) BindSeriesConvergent(from []*Node, to *Node) (*Node, error) {
	return c.bindConvergent(KindStep, from, to)
}

func (c *Chart) bindDivergent(kind Kind, from *Node, to []*Node) (*Node, error) {
	if err := c.checkSet(to); err != nil {
		return nil, err
	}
	if err := c.owns(from); err != nil {
		return nil, err
	}

	c.suspend()
	defer c.resume()

	split := from
	if from.kind != kind {
		var err error
		if split, err = c.createNode(kind, "", ""); err != nil {
			return nil, err
		}
		if err := c.Bind(from, split); err != nil {
			return nil, err
		}
	}
	for _, n := range to {
		if err := c.Bind(split, n); err != nil {
			return nil, err
		}
	}
	return split, nil
}

func (c *Chart) bindConvergent(kind Kind, from []*Node, to *Node) (*Node, error) {
	if err := c.checkSet(from); err != nil {
		return nil, err
	}
	if err := c.owns(to); err != nil {
		return nil, err
	}

	c.suspend()
	defer c.resume()

	join := to
	if to.kind != kind {
		var err error
		if join, err = c.createNode(kind, "", ""); err != nil {
			return nil, err
		}
		if err := c.Bind(join, to); err != nil {
			return nil, err
		}
	}
	for _, n := range from {
		if err := c.Bind(n, join); err != nil {
			return nil, err
		}
	}
	return join, nil
}
