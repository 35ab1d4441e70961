// Package ddqn implements the configuration and experience handling
// of the Double DQN agent (https://arxiv.org/abs/1509.06461): the
// replay memory, the n-step reward estimation of update targets and
// the schedule of updates and target network synchronizations.
package ddqn

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samuelfneumann/goforce/agent"
	"github.com/samuelfneumann/goforce/memory"
	"github.com/samuelfneumann/goforce/solver"
	"gopkg.in/yaml.v3"
)

func init() {
	// Register Config type so that it can be typed using
	// agent.TypedConfig to help with serialization/deserialization.
	agent.Register(agent.DoubleDQN, Config{})
}

// Config implements a configuration for a Double DQN agent. Zero
// values of the optional fields UpdateFrequency and StartUpdating
// default to the batch size.
type Config struct {
	// Replay memory capacity, which has to fit at least
	// BatchSize + Horizon + 1 timesteps
	Memory    int `json:"memory" yaml:"memory"`
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	MaxEpisodeTimesteps int `json:"max_episode_timesteps,omitempty" yaml:"max_episode_timesteps,omitempty"`

	Network string `json:"network" yaml:"network"`

	// Optimization
	UpdateFrequency int     `json:"update_frequency,omitempty" yaml:"update_frequency,omitempty"`
	StartUpdating   int     `json:"start_updating,omitempty" yaml:"start_updating,omitempty"`
	LearningRate    float64 `json:"learning_rate" yaml:"learning_rate"`
	HuberLoss       float64 `json:"huber_loss" yaml:"huber_loss"`

	// Solver replaces the default Adam optimizer built from
	// LearningRate when set
	Solver *solver.Solver `json:"optimizer,omitempty" yaml:"optimizer,omitempty"`

	// Reward estimation
	Horizon               int     `json:"horizon" yaml:"horizon"`
	Discount              float64 `json:"discount" yaml:"discount"`
	PredictTerminalValues bool    `json:"predict_terminal_values" yaml:"predict_terminal_values"`

	// Target network
	TargetSyncFrequency int     `json:"target_sync_frequency" yaml:"target_sync_frequency"`
	TargetUpdateWeight  float64 `json:"target_update_weight" yaml:"target_update_weight"`

	// Exploration
	Exploration   float64 `json:"exploration" yaml:"exploration"`
	VariableNoise float64 `json:"variable_noise" yaml:"variable_noise"`

	// Regularization
	L2Regularization      float64 `json:"l2_regularization" yaml:"l2_regularization"`
	EntropyRegularization float64 `json:"entropy_regularization" yaml:"entropy_regularization"`

	ParallelInteractions int `json:"parallel_interactions" yaml:"parallel_interactions"`

	// Seed seeds sampling from the replay memory
	Seed uint64 `json:"seed" yaml:"seed"`

	// Deprecated: replaced by PredictTerminalValues. Setting it is an
	// error.
	EstimateTerminal *bool `json:"estimate_terminal,omitempty" yaml:"estimate_terminal,omitempty"`
}

// DefaultConfig returns a Config with every optional field set to its
// default. Memory and BatchSize must still be set.
func DefaultConfig() Config {
	return Config{
		Network:              "auto",
		LearningRate:         3e-4,
		Horizon:              1,
		Discount:             0.99,
		TargetSyncFrequency:  1,
		TargetUpdateWeight:   1.0,
		ParallelInteractions: 1,
	}
}

// UnmarshalJSON implements the json.Unmarshaler interface. Fields
// missing from data keep their defaults.
func (c *Config) UnmarshalJSON(data []byte) error {
	type plain Config
	p := plain(DefaultConfig())
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = Config(p)
	return nil
}

// UnmarshalYAML implements the yaml.Unmarshaler interface. Fields
// missing from the node keep their defaults.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	type plain Config
	p := plain(DefaultConfig())
	if err := value.Decode(&p); err != nil {
		return err
	}
	*c = Config(p)
	return nil
}

// Load reads a Config from a YAML (.yaml, .yml) or JSON (.json) file
// and validates it. The file holds either a bare Config or a Config
// typed with its agent.Type, as written by agent.NewTypedConfig:
//
//	Type: DoubleDQN
//	Config:
//	  memory: 10000
//	  batch_size: 32
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load: %w", err)
	}

	var unmarshal func([]byte, interface{}) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		unmarshal = yaml.Unmarshal
	case ".json":
		unmarshal = json.Unmarshal
	default:
		return Config{}, fmt.Errorf("load: unsupported config file %v", path)
	}

	c, err := decode(data, unmarshal)
	if err != nil {
		return Config{}, fmt.Errorf("load: could not decode %v: %w", path, err)
	}

	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("load: %w", err)
	}
	return c, nil
}

// decode decodes data into a Config, going through agent.TypedConfig
// when data names its agent Type
func decode(data []byte, unmarshal func([]byte, interface{}) error) (Config,
	error) {
	var header struct {
		Type agent.Type `json:"Type" yaml:"Type"`
	}
	if err := unmarshal(data, &header); err != nil {
		return Config{}, err
	}

	if header.Type == "" {
		var c Config
		err := unmarshal(data, &c)
		return c, err
	}

	var typed agent.TypedConfig
	if err := unmarshal(data, &typed); err != nil {
		return Config{}, err
	}
	c, ok := typed.Config.(Config)
	if !ok {
		return Config{}, fmt.Errorf("decode: cannot load %v agent as %v",
			typed.Type, agent.DoubleDQN)
	}
	return c, nil
}

// Type returns the type of the configuration
func (c Config) Type() agent.Type {
	return agent.DoubleDQN
}

// UpdateEvery returns the number of timesteps between updates
func (c Config) UpdateEvery() int {
	if c.UpdateFrequency == 0 {
		return c.BatchSize
	}
	return c.UpdateFrequency
}

// StartAt returns the number of timesteps before the first update
func (c Config) StartAt() int {
	if c.StartUpdating == 0 {
		return c.BatchSize
	}
	return c.StartUpdating
}

// Validate checks a Config to ensure it is a valid configuration of a
// Double DQN agent.
func (c Config) Validate() error {
	if c.EstimateTerminal != nil {
		return fmt.Errorf("validate: estimate_terminal is deprecated, " +
			"use predict_terminal_values")
	}

	if c.BatchSize < 1 {
		return fmt.Errorf("validate: batch size must be positive "+
			"\n\twant(>0) \n\thave(%v)", c.BatchSize)
	}
	if c.Horizon < 1 {
		return fmt.Errorf("validate: horizon must be positive "+
			"\n\twant(>0) \n\thave(%v)", c.Horizon)
	}
	if need := c.BatchSize + c.Horizon + 1; c.Memory < need {
		return fmt.Errorf("validate: memory must fit batch size + horizon "+
			"+ 1 timesteps \n\twant(>=%v) \n\thave(%v)", need, c.Memory)
	}
	if c.MaxEpisodeTimesteps < 0 {
		return fmt.Errorf("validate: max episode timesteps must be "+
			"non-negative \n\thave(%v)", c.MaxEpisodeTimesteps)
	}

	if c.UpdateFrequency < 0 {
		return fmt.Errorf("validate: update frequency must be positive "+
			"\n\twant(>0) \n\thave(%v)", c.UpdateFrequency)
	}
	if c.StartUpdating != 0 && c.StartUpdating < c.BatchSize {
		return fmt.Errorf("validate: cannot start updating before a batch "+
			"is stored \n\twant(>=%v) \n\thave(%v)", c.BatchSize,
			c.StartUpdating)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("validate: learning rate must be positive "+
			"\n\twant(>0) \n\thave(%v)", c.LearningRate)
	}
	if c.Solver != nil {
		if c.Solver.Config == nil {
			return fmt.Errorf("validate: optimizer has no configuration")
		}
		if err := c.Solver.Config.Validate(); err != nil {
			return fmt.Errorf("validate: optimizer: %w", err)
		}
	}

	if c.Discount < 0 || c.Discount > 1 {
		return fmt.Errorf("validate: discount must be in [0, 1] "+
			"\n\thave(%v)", c.Discount)
	}
	if c.TargetSyncFrequency < 1 {
		return fmt.Errorf("validate: target networks must be synchronized "+
			"at positive update intervals \n\twant(>0) \n\thave(%v)",
			c.TargetSyncFrequency)
	}
	if c.TargetUpdateWeight <= 0 || c.TargetUpdateWeight > 1 {
		return fmt.Errorf("validate: target update weight must be in "+
			"(0, 1] \n\thave(%v)", c.TargetUpdateWeight)
	}

	nonNegative := map[string]float64{
		"huber loss":             c.HuberLoss,
		"exploration":            c.Exploration,
		"variable noise":         c.VariableNoise,
		"l2 regularization":      c.L2Regularization,
		"entropy regularization": c.EntropyRegularization,
	}
	for name, value := range nonNegative {
		if value < 0 {
			return fmt.Errorf("validate: %v must be non-negative "+
				"\n\thave(%v)", name, value)
		}
	}

	if c.ParallelInteractions < 1 {
		return fmt.Errorf("validate: parallel interactions must be "+
			"positive \n\twant(>0) \n\thave(%v)", c.ParallelInteractions)
	}

	return nil
}

// MemoryConfig returns the configuration of the replay memory
func (c Config) MemoryConfig() memory.Config {
	return memory.Config{Type: memory.ReplayType, Capacity: c.Memory}
}

// Optimizer returns the solver which updates the network weights: the
// configured Solver if one is set and an Adam solver with step size
// LearningRate otherwise
func (c Config) Optimizer() (*solver.Solver, error) {
	if c.Solver != nil {
		return c.Solver, nil
	}
	return solver.NewDefaultAdam(c.LearningRate, c.BatchSize)
}
