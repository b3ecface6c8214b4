package schema

import (
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Codec encodes and decodes record sets.
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
	Name() string
}

type jsonCodec struct{}

func (jsonCodec) Encode(v any) ([]byte, error)    { return json.MarshalIndent(v, "", "  ") }
func (jsonCodec) Decode(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                    { return "json" }

type yamlCodec struct{}

func (yamlCodec) Encode(v any) ([]byte, error)    { return yaml.Marshal(v) }
func (yamlCodec) Decode(data []byte, v any) error { return yaml.Unmarshal(data, v) }
func (yamlCodec) Name() string                    { return "yaml" }

type msgpackCodec struct{}

func (msgpackCodec) Encode(v any) ([]byte, error)    { return msgpack.Marshal(v) }
func (msgpackCodec) Decode(data []byte, v any) error { return msgpack.Unmarshal(data, v) }
func (msgpackCodec) Name() string                    { return "msgpack" }

// Built-in codecs.
var (
	JSON    Codec = jsonCodec{}
	YAML    Codec = yamlCodec{}
	Msgpack Codec = msgpackCodec{}
)

// CodecFor resolves a codec by name or file extension ("yml" is accepted).
func CodecFor(name string) (Codec, error) {
	switch name {
	case "json", ".json":
		return JSON, nil
	case "yaml", "yml", ".yaml", ".yml":
		return YAML, nil
	case "msgpack", "mp", ".msgpack", ".mp":
		return Msgpack, nil
	default:
		return nil, fmt.Errorf("schema: unknown codec %q", name)
	}
}

// Encode serializes a record set with codec.
func Encode(codec Codec, c *Chart) ([]byte, error) {
	data, err := codec.Encode(c)
	if err != nil {
		return nil, fmt.Errorf("schema: %s encode %s: %w", codec.Name(), c.Name, err)
	}
	return data, nil
}

// Decode parses and validates a record set.
func Decode(codec Codec, data []byte) (*Chart, error) {
	var c Chart
	if err := codec.Decode(data, &c); err != nil {
		return nil, fmt.Errorf("schema: %s decode: %w", codec.Name(), err)
	}
	if err := Validate(&c); err != nil {
		return nil, err
	}
	return &c, nil
}
