package ports_test

import (
	"context"
	"slices"
	"sync"
	"testing"

	"github.com/aretw0/pfc/pkg/ports"
	"github.com/aretw0/pfc/pkg/schema"
	"github.com/stretchr/testify/require"
)

// mapStore keeps encoded record sets in a map, so every Load returns a
// fresh copy as a real backend would.
type mapStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *mapStore) Save(_ context.Context, rec *schema.Chart) error {
	if rec.Name == "" {
		return ports.ErrInvalidName
	}
	data, err := schema.Encode(schema.Msgpack, rec)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[rec.Name] = data
	return nil
}

func (m *mapStore) Load(_ context.Context, name string) (*schema.Chart, error) {
	m.mu.Lock()
	data, ok := m.data[name]
	m.mu.Unlock()
	if !ok {
		return nil, ports.ErrChartNotFound
	}
	return schema.Decode(schema.Msgpack, data)
}

func (m *mapStore) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, name)
	return nil
}

func (m *mapStore) List(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.data))
	for n := range m.data {
		names = append(names, n)
	}
	slices.Sort(names)
	return names, nil
}

func TestChartStore_Contract(t *testing.T) {
	ports.RunChartStoreContract(t, &mapStore{data: make(map[string][]byte)})
}

func TestContractChart_IsValidRecord(t *testing.T) {
	rec := ports.ContractChart(t, "fixture")
	require.NoError(t, schema.Validate(rec))
	require.Len(t, rec.Steps, 2)
	require.Len(t, rec.Steps[1].Actions, 1)
	require.NotEmpty(t, rec.Macros)
}
