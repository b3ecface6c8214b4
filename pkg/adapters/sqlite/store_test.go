package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/pfc/pkg/adapters/sqlite"
	"github.com/aretw0/pfc/pkg/ports"
	"github.com/aretw0/pfc/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T, path string, opts ...sqlite.Option) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(path, opts...)
	require.NoError(t, err, "failed to open store")
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_Contract(t *testing.T) {
	tests := []struct {
		name  string
		codec schema.Codec
	}{
		{"json", schema.JSON},
		{"yaml", schema.YAML},
		{"msgpack", schema.Msgpack},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ports.RunChartStoreContract(t, openStore(t, ":memory:", sqlite.WithCodec(tt.codec)))
		})
	}
}

func TestSQLiteStore_Migrations(t *testing.T) {
	store := openStore(t, ":memory:")

	version, err := sqlite.Version(store.DB())
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	// Re-running is a no-op.
	require.NoError(t, sqlite.Migrate(store.DB()))
}

func TestSQLiteStore_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "charts.db")
	ctx := context.Background()

	first, err := sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Save(ctx, ports.ContractChart(t, "durable")))
	require.NoError(t, first.Close())

	second := openStore(t, path)
	loaded, err := second.Load(ctx, "durable")
	require.NoError(t, err)
	assert.Equal(t, ports.ContractChart(t, "durable"), loaded)
}

func TestSQLiteStore_MixedCodecs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "charts.db")
	ctx := context.Background()

	writer := openStore(t, path, sqlite.WithCodec(schema.Msgpack))
	require.NoError(t, writer.Save(ctx, ports.ContractChart(t, "packed")))

	reader := sqlite.NewFromDB(writer.DB())
	loaded, err := reader.Load(ctx, "packed")
	require.NoError(t, err)
	assert.Equal(t, "packed", loaded.Name)
}

func TestSQLiteStore_CorruptPayload(t *testing.T) {
	store := openStore(t, ":memory:")
	_, err := store.DB().Exec(
		`INSERT INTO pfc_charts (name, codec, payload, updated_at) VALUES ('broken', 'json', '{not json', CURRENT_TIMESTAMP)`)
	require.NoError(t, err)

	_, err = store.Load(context.Background(), "broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ports.ErrChartNotFound)
}
