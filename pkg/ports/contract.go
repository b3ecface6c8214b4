package ports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/pfc/pkg/chart"
	"github.com/aretw0/pfc/pkg/expression"
	"github.com/aretw0/pfc/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ContractChart builds the record set used by the store contract: a guarded
// linear chart with a macro and one nested action chart.
func ContractChart(t *testing.T, name string) *schema.Chart {
	t.Helper()
	c := chart.New(name, chart.WithFactory(chart.NewFactory(chart.WithRepeatableIDs(42))))
	start, err := c.CreateStep("Start", "charge the reactor")
	require.NoError(t, err)
	heat, err := c.CreateStep("Heat", "")
	require.NoError(t, err)
	require.NoError(t, c.Bind(start, heat))
	fin, err := c.CreateTransition("", "")
	require.NoError(t, err)
	require.NoError(t, c.Bind(heat, fin))

	shim := start.Successors()[0]
	require.NoError(t, shim.SetExpression(expression.MustParse("level > 80 and ready")))
	c.SetMacro("ready", expression.MustParse("valve.open"))
	heat.SetLayout("x=120,y=40")
	require.NoError(t, heat.SetUnit("R-101"))

	sub := chart.New("heat-cycle", chart.WithFactory(chart.NewFactory(chart.WithRepeatableIDs(7))))
	ramp, err := sub.CreateStep("Ramp", "")
	require.NoError(t, err)
	done, err := sub.CreateTransition("", "")
	require.NoError(t, err)
	require.NoError(t, sub.Bind(ramp, done))
	require.NoError(t, heat.AddAction("cycle", sub))

	return c.Snapshot()
}

// RunChartStoreContract runs a suite of tests to verify that a ChartStore
// implementation adheres to the interface contract.
func RunChartStoreContract(t *testing.T, store ChartStore) {
	ctx := context.Background()
	name := "contract-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		rec := ContractChart(t, name)
		require.NoError(t, store.Save(ctx, rec), "Save should not return error")

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, rec, loaded)

		// The loaded record set restores to the same graph.
		back, err := chart.Restore(loaded, chart.WithExpressionParser(expression.Parser))
		require.NoError(t, err)
		assert.Equal(t, rec, back.Snapshot())
	})

	t.Run("Overwrite", func(t *testing.T) {
		rec := ContractChart(t, name)
		rec.Description = "second revision"
		require.NoError(t, store.Save(ctx, rec))

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, "second revision", loaded.Description)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+name)
		assert.ErrorIs(t, err, ErrChartNotFound)
	})

	t.Run("Invalid Name", func(t *testing.T) {
		rec := ContractChart(t, name)
		rec.Name = ""
		assert.ErrorIs(t, store.Save(ctx, rec), ErrInvalidName)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, ContractChart(t, name)))

		require.NoError(t, store.Delete(ctx, name), "Delete should not return error")
		_, err := store.Load(ctx, name)
		assert.ErrorIs(t, err, ErrChartNotFound, "Load after Delete should return ErrChartNotFound")

		assert.NoError(t, store.Delete(ctx, name), "Delete of a missing chart should succeed")
	})

	t.Run("List", func(t *testing.T) {
		names := []string{name + "-b", name + "-a", name + "-c"}
		for _, n := range names {
			require.NoError(t, store.Save(ctx, ContractChart(t, n)))
		}
		defer func() {
			for _, n := range names {
				_ = store.Delete(ctx, n)
			}
		}()

		listed, err := store.List(ctx)
		require.NoError(t, err)
		var ours []string
		for _, n := range listed {
			for _, want := range names {
				if n == want {
					ours = append(ours, n)
				}
			}
		}
		assert.Equal(t, []string{name + "-a", name + "-b", name + "-c"}, ours,
			fmt.Sprintf("listed: %v", listed))
	})
}
