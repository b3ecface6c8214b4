package observability

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/pfc/pkg/dsl"
	"github.com/aretw0/pfc/pkg/validator"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	m := NewMetrics(reg)
	v := validator.New(validator.WithHooks(m.Hooks()))
	ctx := context.Background()

	good := dsl.New("good")
	good.Step("S_start").Go("T_1")
	good.Transition("T_1").Go("S_1")
	good.Step("S_1").Null().Go("T_fin")
	good.Transition("T_fin")

	deadEnd := dsl.New("dead-end")
	deadEnd.Step("S_start").Go("T_div")
	deadEnd.Transition("T_div").Go("S_a", "S_b")
	deadEnd.Step("S_a").Go("T_conv")
	deadEnd.Step("S_b")
	deadEnd.Transition("T_conv").Go("S_end")
	deadEnd.Step("S_end").Go("T_fin")
	deadEnd.Transition("T_fin")

	require.True(t, v.Validate(ctx, good.MustBuild()).Valid)
	require.False(t, v.Validate(ctx, deadEnd.MustBuild()).Valid)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.validations.WithLabelValues("valid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.validations.WithLabelValues("invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.findings.WithLabelValues(string(validator.UncompletedParallelBranches))))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.reduced))
	assert.Equal(t, 2, testutil.CollectAndCount(m.duration))

	expected := `
# HELP pfc_validations_total Total number of chart validations by verdict.
# TYPE pfc_validations_total counter
pfc_validations_total{result="invalid"} 1
pfc_validations_total{result="valid"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "pfc_validations_total"))
}

func TestMetrics_Unregistered(t *testing.T) {
	m := NewMetrics(nil)
	m.Hooks().OnComplete(context.Background(), &validator.Report{Valid: true})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.validations.WithLabelValues("valid")))
}
