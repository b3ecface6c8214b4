package pfc_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/pfc"
	"github.com/aretw0/pfc/pkg/adapters/memory"
	"github.com/aretw0/pfc/pkg/adapters/redis"
	"github.com/aretw0/pfc/pkg/chart"
	"github.com/aretw0/pfc/pkg/dsl"
	"github.com/aretw0/pfc/pkg/ports"
	"github.com/aretw0/pfc/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linear(name string) *chart.Chart {
	b := dsl.New(name)
	b.Step("S_start").Go("T_1")
	b.Transition("T_1").When("ready").Go("S_1")
	b.Step("S_1").Go("T_fin")
	b.Transition("T_fin")
	return b.MustBuild()
}

func broken(name string) *chart.Chart {
	b := dsl.New(name)
	b.Step("S_start").Go("T_1")
	b.Transition("T_1").Go("S_end")
	b.Step("S_end")
	return b.MustBuild()
}

func nested(name string) *chart.Chart {
	sub := dsl.New("inner")
	sub.Step("S_in").Go("T_out")
	sub.Transition("T_out").When("done")

	b := dsl.New(name)
	b.Step("S_start").Go("T_1")
	b.Transition("T_1").Go("S_work")
	b.Step("S_work").Action("job", sub).Go("T_fin")
	b.Transition("T_fin")
	return b.MustBuild()
}

func TestEngine_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	eng := pfc.New()
	original := linear("batch")
	require.NoError(t, eng.Save(ctx, original))

	loaded, err := eng.Load(ctx, "batch")
	require.NoError(t, err)
	assert.Equal(t, original.Snapshot(), loaded.Snapshot())

	guard, ok := loaded.NodeByName("T_1")
	require.True(t, ok)
	assert.Equal(t, []string{"ready"}, guard.Expression().References(), "guards are parsed on load")

	names, err := eng.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"batch"}, names)

	require.NoError(t, eng.Delete(ctx, "batch"))
	_, err = eng.Load(ctx, "batch")
	assert.ErrorIs(t, err, ports.ErrChartNotFound)
}

func TestEngine_Validate(t *testing.T) {
	ctx := context.Background()
	var completed []string
	var mu sync.Mutex
	eng := pfc.New(pfc.WithValidatorOptions(validator.WithHooks(validator.Hooks{
		OnComplete: func(_ context.Context, r *validator.Report) {
			mu.Lock()
			defer mu.Unlock()
			completed = append(completed, r.Chart)
		},
	})))
	require.NoError(t, eng.Save(ctx, linear("good")))
	require.NoError(t, eng.Save(ctx, broken("bad")))

	report, err := eng.Validate(ctx, "good")
	require.NoError(t, err)
	assert.True(t, report.Valid)

	report, err = eng.Validate(ctx, "bad")
	require.NoError(t, err)
	assert.False(t, report.Valid)
	assert.Equal(t, 1, report.Count(validator.NoFinishTransition))

	_, err = eng.Validate(ctx, "missing")
	assert.ErrorIs(t, err, ports.ErrChartNotFound)

	assert.Equal(t, []string{"good", "bad"}, completed)
}

func TestEngine_ValidateAll(t *testing.T) {
	ctx := context.Background()
	eng := pfc.New(pfc.WithWorkers(2))
	for _, c := range []*chart.Chart{linear("a"), broken("b"), linear("c"), nested("d")} {
		require.NoError(t, eng.Save(ctx, c))
	}

	reports, err := eng.ValidateAll(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 4)
	verdicts := map[string]bool{}
	for _, r := range reports {
		verdicts[r.Chart] = r.Valid
	}
	assert.Equal(t, map[string]bool{"a": true, "b": false, "c": true, "d": true}, verdicts)
	assert.Equal(t, "a", reports[0].Chart, "reports follow the listing order")

	reports, err = eng.ValidateAll(ctx, "c", "a")
	require.NoError(t, err)
	assert.Equal(t, "c", reports[0].Chart)
	assert.Equal(t, "a", reports[1].Chart)

	_, err = eng.ValidateAll(ctx, "a", "nope")
	assert.ErrorIs(t, err, ports.ErrChartNotFound)
}

func TestEngine_ReduceWithoutChanges(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	eng := pfc.New(pfc.WithStore(store))
	require.NoError(t, eng.Save(ctx, linear("tight")))

	removed, err := eng.Reduce(ctx, "tight")
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestEngine_Flatten(t *testing.T) {
	ctx := context.Background()
	eng := pfc.New()
	require.NoError(t, eng.Save(ctx, nested("outer")))

	require.NoError(t, eng.Flatten(ctx, "outer"))

	c, err := eng.Load(ctx, "outer")
	require.NoError(t, err)
	_, hasWork := c.NodeByName("S_work")
	assert.False(t, hasWork, "the owning step is replaced by its action chart")
	for _, n := range c.Steps() {
		assert.Empty(t, n.Actions())
	}
	report := eng.ValidateChart(ctx, c)
	assert.True(t, report.Valid, "findings: %v", report.Findings)
}

func TestEngine_FlattenRejectsMultipleActions(t *testing.T) {
	ctx := context.Background()
	c := nested("crowded")
	work, _ := c.NodeByName("S_work")
	extra := dsl.New("extra")
	extra.Step("S_x").Go("T_x")
	extra.Transition("T_x")
	require.NoError(t, work.AddAction("second", extra.MustBuild()))

	eng := pfc.New()
	require.NoError(t, eng.Save(ctx, c))
	err := eng.Flatten(ctx, "crowded")
	assert.ErrorIs(t, err, chart.ErrMultipleActions)
}

func TestEngine_Locking(t *testing.T) {
	mr := miniredis.RunT(t)
	store := redis.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = store.Close() })
	locker := redis.NewLocker(store.Client(), "pfc:")

	ctx := context.Background()
	eng := pfc.New(pfc.WithStore(store), pfc.WithLocker(locker), pfc.WithLockTTL(time.Second))
	require.NoError(t, eng.Save(ctx, nested("shared")))

	// Another replica holds the chart.
	unlock, err := locker.Lock(ctx, "chart:shared", 5*time.Second)
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	err = eng.Flatten(waitCtx, "shared")
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)

	require.NoError(t, unlock(ctx))
	require.NoError(t, eng.Flatten(ctx, "shared"))
	assert.False(t, mr.Exists("pfc:lock:chart:shared"), "lock is released after the edit")
}
