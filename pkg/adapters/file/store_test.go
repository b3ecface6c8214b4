package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/pfc/pkg/adapters/file"
	"github.com/aretw0/pfc/pkg/ports"
	"github.com/aretw0/pfc/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Contract(t *testing.T) {
	for _, codec := range []schema.Codec{schema.YAML, schema.JSON, schema.Msgpack} {
		t.Run(codec.Name(), func(t *testing.T) {
			ports.RunChartStoreContract(t, file.New(t.TempDir(), file.WithCodec(codec)))
		})
	}
}

func TestFileStore_Layout(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := file.New(dir)

	require.NoError(t, store.Save(ctx, ports.ContractChart(t, "reactor")))

	data, err := os.ReadFile(filepath.Join(dir, "reactor.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: reactor")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not survive a save")

	// Foreign files are ignored by List.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"reactor"}, names)
}

func TestFileStore_RejectsPathNames(t *testing.T) {
	ctx := context.Background()
	store := file.New(t.TempDir())

	for _, name := range []string{"../escape", "nested/chart", ".hidden"} {
		rec := ports.ContractChart(t, "ok")
		rec.Name = name
		assert.ErrorIs(t, store.Save(ctx, rec), ports.ErrInvalidName, name)
		_, err := store.Load(ctx, name)
		assert.ErrorIs(t, err, ports.ErrInvalidName, name)
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("steps: [\n"), 0o644))

	_, err := file.New(dir).Load(context.Background(), "broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ports.ErrChartNotFound)
}

func TestFileStore_MissingDirectory(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "absent"))
	names, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}
