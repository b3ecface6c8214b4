package schema_test

import (
	"testing"

	"github.com/aretw0/pfc/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecs_PreserveRecords(t *testing.T) {
	original := linear()
	original.Macros = map[string]string{"ready": "level > 10"}
	original.Cursors = schema.Cursors{Step: 2, Transition: 2, Link: 2, Seq: 3}

	for _, codec := range []schema.Codec{schema.JSON, schema.YAML, schema.Msgpack} {
		t.Run(codec.Name(), func(t *testing.T) {
			data, err := schema.Encode(codec, original)
			require.NoError(t, err)

			decoded, err := schema.Decode(codec, data)
			require.NoError(t, err)
			assert.Equal(t, original, decoded)
		})
	}
}

func TestDecode_RejectsInvalidRecords(t *testing.T) {
	bad := linear()
	bad.Links[0].Predecessor = "missing"

	data, err := schema.Encode(schema.JSON, bad)
	require.NoError(t, err)

	_, err = schema.Decode(schema.JSON, data)
	assert.Error(t, err)
}

func TestCodecFor(t *testing.T) {
	for name, want := range map[string]string{"json": "json", ".yml": "yaml", "yaml": "yaml", "msgpack": "msgpack"} {
		codec, err := schema.CodecFor(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, codec.Name())
	}
	_, err := schema.CodecFor("xml")
	assert.Error(t, err)
}
