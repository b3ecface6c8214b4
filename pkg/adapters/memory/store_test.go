package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/pfc/pkg/adapters/memory"
	"github.com/aretw0/pfc/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunChartStoreContract(t, store)
}

func TestMemoryStore_Isolation(t *testing.T) {
	ctx := context.Background()
	rec := ports.ContractChart(t, "isolated")
	store := memory.NewStore(rec)

	rec.Steps[0].Name = "mutated after seeding"
	loaded, err := store.Load(ctx, "isolated")
	require.NoError(t, err)
	assert.NotEqual(t, "mutated after seeding", loaded.Steps[0].Name)

	loaded.Steps[1].Actions[0].Chart.Steps[0].Name = "mutated after load"
	again, err := store.Load(ctx, "isolated")
	require.NoError(t, err)
	assert.NotEqual(t, "mutated after load", again.Steps[1].Actions[0].Chart.Steps[0].Name)
}
