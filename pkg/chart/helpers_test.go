package chart_test

import (
	"strings"
	"testing"

	"github.com/aretw0/pfc/pkg/chart"
	"github.com/stretchr/testify/require"
)

// guard is a minimal expression whose references are declared up front.
type guard struct {
	text string
	refs []string
}

func (g guard) String() string       { return g.text }
func (g guard) References() []string { return g.refs }

func (g guard) Relocate(renames map[string]string) chart.Expression {
	out := guard{text: g.text}
	for _, ref := range g.refs {
		if to, ok := renames[ref]; ok {
			out.text = strings.ReplaceAll(out.text, ref, to)
			ref = to
		}
		out.refs = append(out.refs, ref)
	}
	return out
}

func step(t *testing.T, c *chart.Chart, name string) *chart.Node {
	t.Helper()
	n, err := c.CreateStep(name, "")
	require.NoError(t, err)
	return n
}

func transition(t *testing.T, c *chart.Chart, name string) *chart.Node {
	t.Helper()
	n, err := c.CreateTransition(name, "")
	require.NoError(t, err)
	return n
}

func connect(t *testing.T, c *chart.Chart, pairs ...*chart.Node) {
	t.Helper()
	require.True(t, len(pairs)%2 == 0, "connect takes node pairs")
	for i := 0; i < len(pairs); i += 2 {
		_, err := c.Connect(pairs[i], pairs[i+1])
		require.NoError(t, err)
	}
}

func names(nodes []*chart.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name()
	}
	return out
}

func byName(t *testing.T, c *chart.Chart, name string) *chart.Node {
	t.Helper()
	n, ok := c.NodeByName(name)
	require.True(t, ok, "node %s not found", name)
	return n
}

// linearChart builds S_start -> T_1 -> S_1 -> T_fin.
func linearChart(t *testing.T, opts ...chart.Option) *chart.Chart {
	t.Helper()
	c := chart.New("linear", opts...)
	start, t1 := step(t, c, "S_start"), transition(t, c, "T_1")
	s1, fin := step(t, c, "S_1"), transition(t, c, "T_fin")
	connect(t, c, start, t1, t1, s1, s1, fin)
	return c
}

// parallelChart builds S_start -> T_div -> {S_a, S_b} -> T_conv -> S_end -> T_fin.
func parallelChart(t *testing.T, opts ...chart.Option) *chart.Chart {
	t.Helper()
	c := chart.New("parallel", opts...)
	start, div := step(t, c, "S_start"), transition(t, c, "T_div")
	a, b := step(t, c, "S_a"), step(t, c, "S_b")
	conv, end, fin := transition(t, c, "T_conv"), step(t, c, "S_end"), transition(t, c, "T_fin")
	connect(t, c,
		start, div,
		div, a, div, b,
		a, conv, b, conv,
		conv, end,
		end, fin,
	)
	return c
}
