// Package solver implements functionality to wrap Gorgonia Solvers
// so that they can be serialized into configuration files.
package solver

import (
	"encoding/json"
	"fmt"
	"reflect"

	"gopkg.in/yaml.v3"
	G "gorgonia.org/gorgonia"
)

// Type describes different types of solvers that are available
type Type string

// Available solver types
const (
	Adam    Type = "Adam"
	RMSProp Type = "RMSProp"
	Vanilla Type = "Vanilla"
)

// defaultConfigs maps each solver Type to the concrete Config
// describing it. Decoded configurations start from these values, so
// only the step size and batch size need to be given.
var defaultConfigs = map[Type]Config{
	Adam:    AdamConfig{Epsilon: 1e-8, Beta1: 0.9, Beta2: 0.999},
	RMSProp: RMSPropConfig{Epsilon: 1e-8, Rho: 0.999, Clip: -1},
	Vanilla: VanillaConfig{Clip: -1},
}

// Solver wraps Gorgonia Solvers so that they can be marshalled into
// and unmarshalled from JSON and YAML configuration files.
type Solver struct {
	G.Solver `json:"-"`
	Type
	Config
}

// newSolver returns a new solver with the given type and configuration.
func newSolver(t Type, c Config) (*Solver, error) {
	if !c.ValidType(t) {
		return nil, fmt.Errorf("newSolver: invalid solver type %v for "+
			"configuration %T", t, c)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("newSolver: %w", err)
	}
	solver := Solver{Type: t, Config: c}
	solver.Solver = solver.Config.Create()

	return &solver, nil
}

// StepSize returns the learning rate of the solver
func (s *Solver) StepSize() float64 {
	return s.Config.StepSizeOf()
}

// UnmarshalJSON implements the json.Unmarshaller interface
func (s *Solver) UnmarshalJSON(data []byte) error {
	m := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}

	var typeName Type
	if err := json.Unmarshal(m["Type"], &typeName); err != nil {
		return fmt.Errorf("unmarshalJSON: invalid solver type: %w", err)
	}

	return s.decode(typeName, func(config interface{}) error {
		return json.Unmarshal(m["Config"], config)
	})
}

// UnmarshalYAML implements the yaml.Unmarshaler interface. In YAML,
// a Solver is written with lower case keys:
//
//	type: Adam
//	config:
//	  step_size: 0.001
//	  batch: 32
func (s *Solver) UnmarshalYAML(value *yaml.Node) error {
	var typed struct {
		Type   Type      `yaml:"type"`
		Config yaml.Node `yaml:"config"`
	}
	if err := value.Decode(&typed); err != nil {
		return err
	}

	return s.decode(typed.Type, typed.Config.Decode)
}

// decode uses reflection to decode a Config of the argument type into
// its concrete type with decodeConfig, then creates the Solver it
// describes
func (s *Solver) decode(typeName Type,
	decodeConfig func(interface{}) error) error {
	def, found := defaultConfigs[typeName]
	if !found {
		return fmt.Errorf("decode: unknown solver type %q", typeName)
	}

	value := reflect.New(reflect.TypeOf(def))
	value.Elem().Set(reflect.ValueOf(def))
	if err := decodeConfig(value.Interface()); err != nil {
		return err
	}

	solver, err := newSolver(typeName, value.Elem().Interface().(Config))
	if err != nil {
		return err
	}
	*s = *solver

	return nil
}

// Config implements a Gorgonia Solver configuration and can be used to
// create Gorgonia Solvers they describe.
type Config interface {
	Create() G.Solver

	// ValidType returns whether a specific Solver type can be created
	// with the Config
	ValidType(Type) bool

	// Validate returns an error describing whether the hyperparameters
	// are valid
	Validate() error

	// StepSizeOf returns the learning rate described by the Config
	StepSizeOf() float64
}

func validateStep(stepSize float64, batch int) error {
	if stepSize <= 0 {
		return fmt.Errorf("step size must be positive \n\twant(>0)"+
			"\n\thave(%v)", stepSize)
	}
	if batch < 1 {
		return fmt.Errorf("batch size must be positive \n\twant(>0)"+
			"\n\thave(%v)", batch)
	}
	return nil
}
