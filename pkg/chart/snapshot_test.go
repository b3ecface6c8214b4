package chart_test

import (
	"testing"

	"github.com/aretw0/pfc/pkg/chart"
	"github.com/aretw0/pfc/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decorated(t *testing.T) *chart.Chart {
	t.Helper()
	c := parallelChart(t)
	div := byName(t, c, "T_div")
	require.NoError(t, div.SetExpression(guard{text: "start_pressed"}))
	div.SuccessorLinks()[1].SetPriority(3)
	a := byName(t, c, "S_a")
	a.SetNullNode(false)
	a.SetLayout("x=10,y=40")
	a.SetDescription("open inlet")
	require.NoError(t, a.SetUnit("reactor-1"))
	c.SetMacro("hot", guard{text: "temp > 80"})
	return c
}

func TestSnapshot_RoundTrip(t *testing.T) {
	for _, codec := range []schema.Codec{schema.JSON, schema.YAML, schema.Msgpack} {
		t.Run(codec.Name(), func(t *testing.T) {
			original := decorated(t)
			rec := original.Snapshot()

			data, err := schema.Encode(codec, rec)
			require.NoError(t, err)
			decoded, err := schema.Decode(codec, data)
			require.NoError(t, err)

			restored, err := chart.Restore(decoded)
			require.NoError(t, err)

			assert.Equal(t, rec, restored.Snapshot())
			assert.Equal(t, original.ID(), restored.ID())
			require.Len(t, restored.Nodes(), len(original.Nodes()))
			require.Len(t, restored.Links(), len(original.Links()))
			for _, n := range original.Nodes() {
				got, ok := restored.Node(n.ID())
				require.True(t, ok, n.Name())
				assert.Equal(t, n.Name(), got.Name())
				assert.Equal(t, n.Ordinal(), got.Ordinal())
				assert.Equal(t, n.IsNullNode(), got.IsNullNode())
				assert.Equal(t, ids(n.Successors()), ids(got.Successors()))
			}
		})
	}
}

func ids(nodes []*chart.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID().String()
	}
	return out
}

func TestSnapshot_NestedActions(t *testing.T) {
	parent, _ := buildNested(t)

	restored, err := chart.Restore(parent.Snapshot())
	require.NoError(t, err)

	n, ok := restored.FindNode("S_fill/fill/Open")
	require.True(t, ok)
	assert.Equal(t, "fill", n.Chart().Name())
	assert.Equal(t, parent.Snapshot(), restored.Snapshot())
}

func TestRestore_UsesParser(t *testing.T) {
	rec := decorated(t).Snapshot()
	var parsed []string
	parser := func(text string) (chart.Expression, error) {
		parsed = append(parsed, text)
		return guard{text: text}, nil
	}

	_, err := chart.Restore(rec, chart.WithExpressionParser(parser))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"start_pressed", "temp > 80"}, parsed)
}

func TestRestore_InvalidRecord(t *testing.T) {
	rec := linearChart(t).Snapshot()
	rec.Links[0].Successor = rec.Links[0].ID

	_, err := chart.Restore(rec)
	assert.ErrorIs(t, err, chart.ErrInvalidRecord)
}
