package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/pfc/pkg/dsl"
	"github.com/aretw0/pfc/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeRecord(t *testing.T, dir string, b *dsl.Builder) string {
	t.Helper()
	c := b.MustBuild()
	data, err := schema.Encode(schema.YAML, c.Snapshot())
	require.NoError(t, err)
	path := filepath.Join(dir, c.Name()+".yml")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestCommands_EndToEnd(t *testing.T) {
	t.Chdir(t.TempDir())
	store := filepath.Join(t.TempDir(), "charts")

	padded := dsl.New("padded")
	padded.Step("S_start").Go("T_1")
	padded.Transition("T_1").Go("S_mid")
	padded.Step("S_mid").Null().Go("T_2")
	padded.Transition("T_2").Go("S_end")
	padded.Step("S_end").Go("T_fin")
	padded.Transition("T_fin")

	split := dsl.New("split")
	split.Step("S_start").Go("T_split")
	split.Transition("T_split").Go("S_a", "S_b")
	split.Step("S_a").Go("T_join")
	split.Step("S_b")
	split.Transition("T_join").Go("S_end")
	split.Step("S_end").Go("T_fin")
	split.Transition("T_fin")

	files := t.TempDir()
	out, err := run(t, "import", "--dir", store,
		writeRecord(t, files, padded), writeRecord(t, files, split))
	require.NoError(t, err, out)
	assert.Contains(t, out, "imported padded")
	assert.Contains(t, out, "imported split")

	out, err = run(t, "validate", "--dir", store, "padded")
	require.NoError(t, err, out)
	assert.Contains(t, out, "padded is valid")

	out, err = run(t, "validate", "--dir", store, "--format", "json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 chart(s) invalid")
	assert.Contains(t, out, `"UncompletedParallelBranches"`)

	out, err = run(t, "graph", "--dir", store, "--overlay", "split")
	require.NoError(t, err)
	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, "class T_split flagged;")

	out, err = run(t, "reduce", "--dir", store, "padded")
	require.NoError(t, err)
	assert.Contains(t, out, "padded: removed 2 node(s)")

	out, err = run(t, "inspect", "--dir", store, "--format", "json", "padded")
	require.NoError(t, err)
	assert.NotContains(t, out, "S_mid")
	assert.Contains(t, out, "S_end")

	out, err = run(t, "flatten", "--dir", store, "padded")
	require.NoError(t, err)
	assert.Contains(t, out, "padded: flattened")

	_, err = run(t, "inspect", "--dir", store, "missing")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Regexp(t, `^pfc version \d+\.\d+\.\d+\n$`, out)
}
