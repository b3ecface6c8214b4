package dsl_test

import (
	"testing"

	"github.com/aretw0/pfc/pkg/chart"
	"github.com/aretw0/pfc/pkg/dsl"
	"github.com/aretw0/pfc/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(nodes []*chart.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name()
	}
	return out
}

func TestBuilder_SimpleFlow(t *testing.T) {
	b := dsl.New("batch").Describe("fill and heat")

	b.Step("S_fill").Unit("R-101").Layout("x=0,y=0").Go("T_full")
	b.Transition("T_full").When("level > 80").Go("S_heat")
	b.Step("S_heat").Go("T_done")
	b.Transition("T_done")

	c, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, "batch", c.Name())
	assert.Equal(t, "fill and heat", c.Description())
	assert.Len(t, c.Steps(), 2)
	assert.Len(t, c.Transitions(), 2)
	assert.Len(t, c.Links(), 3)

	fill, ok := c.NodeByName("S_fill")
	require.True(t, ok)
	assert.Equal(t, "R-101", fill.Unit())
	assert.Equal(t, "x=0,y=0", fill.Layout())
	assert.True(t, fill.IsStart())
	assert.False(t, fill.IsNullNode())

	full, ok := c.NodeByName("T_full")
	require.True(t, ok)
	require.NotNil(t, full.Expression())
	assert.Equal(t, "level > 80", full.Expression().String())
	assert.Equal(t, []string{"level"}, full.Expression().References())

	finish, ok := c.FinishTransition()
	require.True(t, ok)
	assert.Equal(t, "T_done", finish.Name())

	valid, findings := validator.Validate(c)
	assert.True(t, valid, "findings: %v", findings)
}

func TestBuilder_ShimsBetweenSameKinds(t *testing.T) {
	b := dsl.New("shimmed")
	b.Step("S_a").Go("S_b")
	b.Step("S_b").Go("T_end")
	b.Transition("T_end")

	c, err := b.Build()
	require.NoError(t, err)

	a, _ := c.NodeByName("S_a")
	require.Len(t, a.Successors(), 1)
	shim := a.Successors()[0]
	assert.True(t, shim.IsTransition())
	assert.Equal(t, []string{"S_b"}, names(shim.Successors()))
}

func TestBuilder_Parallel(t *testing.T) {
	b := dsl.New("parallel")
	b.Step("S_start").Go("T_split")
	b.Transition("T_split").Go("S_a", "S_b")
	b.Step("S_a").Go("T_join")
	b.Step("S_b").Go("T_join")
	b.Transition("T_join").Go("S_end")
	b.Step("S_end").Go("T_fin")
	b.Transition("T_fin")

	c := b.MustBuild()
	split, _ := c.NodeByName("T_split")
	assert.ElementsMatch(t, []string{"S_a", "S_b"}, names(split.Successors()))
	for _, l := range split.SuccessorLinks() {
		assert.Equal(t, chart.LinkParallelDivergent, l.AggregateLinkType())
	}

	valid, findings := validator.Validate(c)
	assert.True(t, valid, "findings: %v", findings)
}

func TestBuilder_PrioritiesAndNullSteps(t *testing.T) {
	b := dsl.New("choice")
	b.Step("S_start").Prioritized("T_low", 1).Prioritized("T_high", 5)
	b.Transition("T_low").Go("S_join")
	b.Transition("T_high").Go("S_join")
	b.Step("S_join").Null().Go("T_fin")
	b.Transition("T_fin")

	c := b.MustBuild()
	start, _ := c.NodeByName("S_start")
	priorities := map[string]int{}
	for _, l := range start.SuccessorLinks() {
		priorities[l.Successor().Name()] = l.Priority()
	}
	assert.Equal(t, map[string]int{"T_low": 1, "T_high": 5}, priorities)

	join, _ := c.NodeByName("S_join")
	assert.True(t, join.IsNullNode())
}

func TestBuilder_MacrosAndActions(t *testing.T) {
	sub := dsl.New("heat-cycle")
	sub.Step("S_ramp").Go("T_hot")
	sub.Transition("T_hot").When("temp >= setpoint")

	b := dsl.New("recipe").Macro("ready", "valve.open and pump.on")
	b.Step("S_start").Action("cycle", sub).Go("T_go")
	b.Transition("T_go").When("ready")

	c, err := b.Build()
	require.NoError(t, err)

	macro, ok := c.Macro("ready")
	require.True(t, ok)
	assert.Equal(t, []string{"valve.open", "pump.on"}, macro.References())

	start, _ := c.NodeByName("S_start")
	nested, ok := start.Action("cycle")
	require.True(t, ok)
	assert.Equal(t, "heat-cycle", nested.Name())
	assert.Same(t, start, nested.ParentStep())

	found, ok := c.FindNode("S_start/cycle/S_ramp")
	require.True(t, ok)
	assert.Equal(t, "S_ramp", found.Name())
}

func TestBuilder_Errors(t *testing.T) {
	t.Run("unknown target", func(t *testing.T) {
		b := dsl.New("broken")
		b.Step("S_a").Go("T_missing")
		_, err := b.Build()
		assert.ErrorIs(t, err, dsl.ErrUnknownTarget)
	})

	t.Run("kind conflict", func(t *testing.T) {
		b := dsl.New("broken")
		b.Step("X")
		b.Transition("X")
		_, err := b.Build()
		assert.ErrorIs(t, err, dsl.ErrKindConflict)
	})

	t.Run("bad guard", func(t *testing.T) {
		b := dsl.New("broken")
		b.Transition("T_a").When("level >")
		_, err := b.Build()
		assert.Error(t, err)
	})

	t.Run("guard on step", func(t *testing.T) {
		b := dsl.New("broken")
		b.Step("S_a").When("level > 1")
		_, err := b.Build()
		assert.ErrorIs(t, err, chart.ErrNotATransition)
	})

	t.Run("must build panics", func(t *testing.T) {
		b := dsl.New("broken")
		b.Step("S_a").Go("nowhere")
		assert.Panics(t, func() { b.MustBuild() })
	})
}
