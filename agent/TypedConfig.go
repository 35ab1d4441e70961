package agent

import (
	"encoding/json"
	"fmt"
	"reflect"

	"gopkg.in/yaml.v3"
)

// TypedConfig implements functionality for typing a Config. In this
// way, a Config can explicitly have its type stored so that when
// deserializing the Config, we can deserialize it into its concrete
// type without declaring beforehand a variable of its concrete type.
type TypedConfig struct {
	Type
	Config
}

// NewTypedConfig types the argument Config and returns it as a
// TypedConfig which explicitly holds its Type.
func NewTypedConfig(c Config) TypedConfig {
	return TypedConfig{Type: c.Type(), Config: c}
}

// UnmarshalJSON implements the json.Unmarshaller interface
func (t *TypedConfig) UnmarshalJSON(data []byte) error {
	m := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}

	var typeName Type
	if err := json.Unmarshal(m["Type"], &typeName); err != nil {
		return fmt.Errorf("unmarshalJSON: invalid agent type: %w", err)
	}

	return t.decode(typeName, func(config interface{}) error {
		return json.Unmarshal(m["Config"], config)
	})
}

// UnmarshalYAML implements the yaml.Unmarshaler interface. The YAML
// form uses the same keys as the JSON form:
//
//	Type: DoubleDQN
//	Config:
//	  memory: 10000
//	  batch_size: 32
func (t *TypedConfig) UnmarshalYAML(value *yaml.Node) error {
	var typed struct {
		Type   Type      `yaml:"Type"`
		Config yaml.Node `yaml:"Config"`
	}
	if err := value.Decode(&typed); err != nil {
		return err
	}

	return t.decode(typed.Type, typed.Config.Decode)
}

// decode uses reflection to decode a Config registered under typeName
// into its concrete type with decodeConfig
func (t *TypedConfig) decode(typeName Type,
	decodeConfig func(interface{}) error) error {
	ty, found := lookup(typeName)
	if !found {
		return fmt.Errorf("decode: unregistered agent type %q", typeName)
	}

	// Decode into a pointer so that concrete types can customise their
	// decoding, e.g. by applying defaults first
	value := reflect.New(ty)
	if err := decodeConfig(value.Interface()); err != nil {
		return err
	}

	config, ok := value.Elem().Interface().(Config)
	if !ok {
		return fmt.Errorf("decode: %v does not implement Config", ty)
	}

	t.Type = typeName
	t.Config = config
	return nil
}
