package chart_test

import (
	"slices"
	"testing"

	"github.com/aretw0/pfc/pkg/chart"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindNode(t *testing.T) {
	parent, _ := buildNested(t)

	tests := []struct {
		path string
		want string
		ok   bool
	}{
		{"S_0", "S_0", true},
		{"S_fill/fill/S_fill.Drain", "S_fill.Drain", true},
		{"S_fill/fill/Drain", "", false},
		{"S_fill/fill", "", false},
		{"S_fill/missing/Open", "", false},
		{"nope", "", false},
	}
	for _, tt := range tests {
		n, ok := parent.FindNode(tt.path)
		assert.Equal(t, tt.ok, ok, tt.path)
		if tt.ok {
			assert.Equal(t, tt.want, n.Name())
		}
	}

	inner, _ := parent.FindNode("S_fill/fill/S_fill.Drain")
	outer := byName(t, parent, "Drain")
	assert.NotEqual(t, outer.ID(), inner.ID())
}

func TestFindFirstAndAll(t *testing.T) {
	c := parallelChart(t)

	first, ok := c.FindFirst(func(n *chart.Node) bool { return n.IsTransition() })
	require.True(t, ok)
	assert.Equal(t, "T_div", first.Name())

	steps := c.FindAll(func(n *chart.Node) bool { return n.IsStep() })
	assert.Equal(t, []string{"S_start", "S_a", "S_b", "S_end"}, names(steps))

	_, ok = c.FindFirst(func(n *chart.Node) bool { return n.Name() == "ghost" })
	assert.False(t, ok)
}

func TestDepthFirst(t *testing.T) {
	c := parallelChart(t)
	assert.Equal(t,
		[]string{"S_start", "T_div", "S_a", "T_conv", "S_end", "T_fin", "S_b"},
		names(slices.Collect(c.DepthFirst())))

	parent, _ := buildNested(t)
	order := names(slices.Collect(parent.DepthFirst()))
	assert.Equal(t,
		[]string{"S_0", "T_1", "S_fill", "Open", "FT1", "S_fill.Drain", "FT_end", "T_2", "Drain", "T_3"},
		order)

	var stopped []string
	for n := range c.DepthFirst() {
		stopped = append(stopped, n.Name())
		if n.Name() == "T_div" {
			break
		}
	}
	assert.Equal(t, []string{"S_start", "T_div"}, stopped)
}

func TestClone(t *testing.T) {
	original := decorated(t)
	cp := original.Clone()

	assert.Equal(t, original.Snapshot(), cp.Snapshot())

	require.True(t, cp.Delete(byName(t, cp, "T_fin")))
	require.NoError(t, byName(t, cp, "S_a").Rename("Renamed"))

	assert.Len(t, original.Nodes(), 7)
	_, ok := original.NodeByName("S_a")
	assert.True(t, ok)
	_, ok = original.NodeByName("Renamed")
	assert.False(t, ok)
}

func TestClone_ActionCharts(t *testing.T) {
	parent, sub := buildNested(t)
	cp := parent.Clone()

	cloned, ok := byName(t, cp, "S_fill").Action("fill")
	require.True(t, ok)
	assert.NotSame(t, sub, cloned)
	assert.Equal(t, sub.Snapshot(), cloned.Snapshot())
	assert.Same(t, cp.Scope(), cloned.Scope().Parent())
}
