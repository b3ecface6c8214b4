package chart_test

import (
	"testing"

	"github.com/aretw0/pfc/pkg/chart"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatten_IdentityWithoutActions(t *testing.T) {
	c := parallelChart(t)
	before := c.Snapshot()

	require.NoError(t, c.Flatten())
	assert.Equal(t, before, c.Snapshot())
}

// buildNested returns a parent S_0 -> T_1 -> S_fill -> T_2 -> Drain -> T_3
// whose S_fill step runs Open -> FT1 -> Drain -> FT_end. Every node except
// FT_end carries behaviour so reduction leaves the result alone.
func buildNested(t *testing.T) (*chart.Chart, *chart.Chart) {
	t.Helper()
	parent := chart.New("parent")
	s0, t1, fill := step(t, parent, "S_0"), transition(t, parent, "T_1"), step(t, parent, "S_fill")
	t2, drain, t3 := transition(t, parent, "T_2"), step(t, parent, "Drain"), transition(t, parent, "T_3")
	connect(t, parent, s0, t1, t1, fill, fill, t2, t2, drain, drain, t3)

	sub := chart.New("fill")
	open, ft1 := step(t, sub, "Open"), transition(t, sub, "FT1")
	subDrain, ftEnd := step(t, sub, "Drain"), transition(t, sub, "FT_end")
	connect(t, sub, open, ft1, ft1, subDrain, subDrain, ftEnd)

	for _, n := range []*chart.Node{s0, drain, open, subDrain} {
		n.SetNullNode(false)
	}
	for _, n := range []*chart.Node{t1, t2, t3} {
		require.NoError(t, n.SetExpression(guard{text: n.Name()}))
	}
	require.NoError(t, ft1.SetExpression(guard{text: "ready", refs: []string{"ready"}}))

	parent.SetMacro("ready", guard{text: "level > 10"})
	parent.SetMacro("shared", guard{text: "pump_on"})
	sub.SetMacro("ready", guard{text: "level > 90"})
	sub.SetMacro("shared", guard{text: "pump_on"})

	require.NoError(t, fill.AddAction("fill", sub))
	return parent, sub
}

func TestFlatten_SplicesActionChart(t *testing.T) {
	parent, _ := buildNested(t)

	require.NoError(t, parent.Flatten())

	_, ok := parent.NodeByName("S_fill")
	assert.False(t, ok, "the owning step is removed")
	_, ok = parent.NodeByName("FT_end")
	assert.False(t, ok, "null finish transitions of the action are dropped")

	assert.Equal(t, []string{"Open"}, names(byName(t, parent, "T_1").Successors()))
	renamed := byName(t, parent, "S_fill.Drain")
	assert.Equal(t, []string{"T_2"}, names(renamed.Successors()))
	assert.Equal(t, []string{"Drain"}, names(byName(t, parent, "T_2").Successors()))

	assert.Len(t, parent.Nodes(), 8)
	assert.Len(t, parent.StartNodes(), 1)
	assert.NoError(t, parent.Audit())
}

func TestFlatten_MigratesMacros(t *testing.T) {
	parent, _ := buildNested(t)

	require.NoError(t, parent.Flatten())

	assert.Equal(t, []string{"S_fill.ready", "ready", "shared"}, parent.Macros())
	moved, ok := parent.Macro("S_fill.ready")
	require.True(t, ok)
	assert.Equal(t, "level > 90", moved.String())

	ft1 := byName(t, parent, "FT1")
	assert.Equal(t, "S_fill.ready", ft1.Expression().String())
}

func TestFlatten_RejectsMultipleActions(t *testing.T) {
	parent, _ := buildNested(t)
	require.NoError(t, byName(t, parent, "S_fill").AddAction("second", chart.New("second")))
	before := parent.Snapshot()

	err := parent.Flatten()
	assert.ErrorIs(t, err, chart.ErrMultipleActions)
	assert.Equal(t, before, parent.Snapshot())
}

func TestFlatten_BottomUp(t *testing.T) {
	parent, sub := buildNested(t)
	inner := chart.New("inner")
	a, ta := step(t, inner, "Inner"), transition(t, inner, "IT_end")
	connect(t, inner, a, ta)
	a.SetNullNode(false)
	require.NoError(t, byName(t, sub, "Open").AddAction("inner", inner))

	require.NoError(t, parent.Flatten())

	_, ok := parent.NodeByName("Open")
	assert.False(t, ok)
	assert.Equal(t, []string{"Inner"}, names(byName(t, parent, "T_1").Successors()))
	assert.Equal(t, []string{"FT1"}, names(byName(t, parent, "Inner").Successors()))
}
