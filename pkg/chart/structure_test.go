package chart_test

import (
	"testing"

	"github.com/aretw0/pfc/pkg/chart"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ordinals(c *chart.Chart) map[string]int {
	out := make(map[string]int)
	for _, n := range c.Nodes() {
		out[n.Name()] = n.Ordinal()
	}
	return out
}

func TestUpdateStructure_LinearOrdinals(t *testing.T) {
	c := linearChart(t)

	assert.Equal(t, []string{"S_start", "T_1", "S_1", "T_fin"}, names(c.Nodes()))
	assert.Equal(t, map[string]int{"S_start": 0, "T_1": 1, "S_1": 2, "T_fin": 3}, ordinals(c))
	assert.False(t, c.StructureDirty())
}

func TestUpdateStructure_Loopback(t *testing.T) {
	c := chart.New("loop")
	s0, t1, s1 := step(t, c, "S_0"), transition(t, c, "T_1"), step(t, c, "S_1")
	t2, t3 := transition(t, c, "T_2"), transition(t, c, "T_3")
	connect(t, c, s0, t1, t1, s1, s1, t2, t2, s1, s1, t3)

	assert.Equal(t, map[string]int{"S_0": 0, "T_1": 1, "S_1": 2, "T_2": 3, "T_3": 4}, ordinals(c))
	for _, l := range c.Links() {
		wantLoop := l.Predecessor() == t2
		assert.Equal(t, wantLoop, l.IsLoopback(), l.Name())
		if !l.IsLoopback() {
			assert.Less(t, l.Predecessor().Ordinal(), l.Successor().Ordinal(), "ordinals grow along %s", l.Name())
		}
	}
}

func TestUpdateStructure_BreadthVersusDepth(t *testing.T) {
	build := func(breadthFirst bool) *chart.Chart {
		c := chart.New("order", chart.WithBreadthFirst(breadthFirst))
		s0, t0 := step(t, c, "S_0"), transition(t, c, "T_0")
		a, b := step(t, c, "S_a"), step(t, c, "S_b")
		ta, tb := transition(t, c, "T_a"), transition(t, c, "T_b")
		connect(t, c, s0, t0, t0, a, t0, b, a, ta, b, tb)
		return c
	}

	assert.Equal(t, []string{"S_0", "T_0", "S_a", "S_b", "T_a", "T_b"}, names(build(true).Nodes()))
	assert.Equal(t, []string{"S_0", "T_0", "S_a", "T_a", "S_b", "T_b"}, names(build(false).Nodes()))

	c := build(true)
	c.UpdateStructure(false)
	assert.Equal(t, []string{"S_0", "T_0", "S_a", "T_a", "S_b", "T_b"}, names(c.Nodes()))
}

func TestUpdateStructure_ConvergenceWaitsForAllPredecessors(t *testing.T) {
	c := parallelChart(t, chart.WithBreadthFirst(false))

	ord := ordinals(c)
	assert.Greater(t, ord["T_conv"], ord["S_a"])
	assert.Greater(t, ord["T_conv"], ord["S_b"])
}

func TestUpdateStructure_SortsSuccessorsByPriority(t *testing.T) {
	c := chart.New("priority")
	t0, a, b := transition(t, c, "T_0"), step(t, c, "S_a"), step(t, c, "S_b")
	require.NoError(t, c.Bind(t0, a))
	require.NoError(t, c.Bind(t0, b, chart.WithPriority(5)))

	assert.Equal(t, []string{"S_b", "S_a"}, names(t0.Successors()))

	t0.SuccessorLinks()[0].SetPriority(-1)
	assert.Equal(t, []string{"S_a", "S_b"}, names(t0.Successors()))
}

func TestSuspendNodeSorting(t *testing.T) {
	c := chart.New("batch")
	c.SuspendNodeSorting()
	c.SuspendNodeSorting()

	s, tr := step(t, c, "S_a"), transition(t, c, "T_a")
	connect(t, c, s, tr)
	assert.True(t, c.StructureDirty())
	assert.Equal(t, chart.Unassigned, s.Ordinal())

	require.NoError(t, c.ResumeNodeSorting())
	assert.Equal(t, chart.Unassigned, s.Ordinal(), "inner resume does not update")
	require.NoError(t, c.ResumeNodeSorting())
	assert.Equal(t, 0, s.Ordinal())
	assert.Equal(t, 1, tr.Ordinal())
	assert.False(t, c.StructureDirty())

	assert.ErrorIs(t, c.ResumeNodeSorting(), chart.ErrUnbalancedResume)
}

func TestStartAndFinishResolvers(t *testing.T) {
	c := linearChart(t)

	start, ok := c.StartNode()
	require.True(t, ok)
	assert.Equal(t, "S_start", start.Name())

	fin, ok := c.FinishTransition()
	require.True(t, ok)
	assert.Equal(t, "T_fin", fin.Name())

	step(t, c, "S_loose")
	_, ok = c.StartNode()
	assert.False(t, ok, "two start nodes")
	assert.Len(t, c.StartNodes(), 2)
}

func TestAudit(t *testing.T) {
	c := linearChart(t)
	require.NoError(t, c.Audit())

	a, b := byName(t, c, "S_start"), byName(t, c, "S_1")
	l, err := c.CreateLink("broken")
	require.NoError(t, err)
	require.NoError(t, l.SetPredecessor(a))
	require.NoError(t, l.SetSuccessor(b))

	err = c.Audit()
	assert.ErrorIs(t, err, chart.ErrInconsistentStructure)
	assert.Contains(t, err.Error(), "broken")
}

func TestRename(t *testing.T) {
	c := linearChart(t)
	s1 := byName(t, c, "S_1")

	err := s1.Rename("S_start")
	require.ErrorIs(t, err, chart.ErrNameConflict)
	assert.Equal(t, "S_1", s1.Name())

	require.NoError(t, s1.Rename("Fill"))
	_, ok := c.NodeByName("S_1")
	assert.False(t, ok)
	assert.Equal(t, s1, byName(t, c, "Fill"))
	id, _ := c.Scope().Lookup("Fill")
	assert.Equal(t, s1.ID(), id)
}

func TestNodeFlags(t *testing.T) {
	c := linearChart(t)
	s1, t1 := byName(t, c, "S_1"), byName(t, c, "T_1")

	assert.True(t, s1.IsSimple())
	assert.True(t, s1.IsNullNode())
	assert.True(t, t1.IsNullNode())

	require.NoError(t, t1.SetExpression(guard{text: "level > 10"}))
	assert.False(t, t1.IsNullNode())
	assert.False(t, t1.IsSimple())

	s1.SetNullNode(false)
	assert.False(t, s1.IsNullNode())
	assert.True(t, s1.IsSimple())

	assert.ErrorIs(t, s1.SetExpression(guard{}), chart.ErrNotATransition)
	assert.ErrorIs(t, t1.SetUnit("reactor"), chart.ErrNotAStep)
	require.NoError(t, s1.SetUnit("reactor"))
	assert.Equal(t, "reactor", s1.Unit())
}
