package ddqn

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/samuelfneumann/goforce/agent"
	"github.com/samuelfneumann/goforce/memory"
	"github.com/samuelfneumann/goforce/solver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	c := DefaultConfig()
	c.Memory = 100
	c.BatchSize = 8
	return c
}

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	assert.Equal(t, "auto", c.Network)
	assert.Equal(t, 3e-4, c.LearningRate)
	assert.Equal(t, 1, c.Horizon)
	assert.Equal(t, 0.99, c.Discount)
	assert.Equal(t, 1, c.TargetSyncFrequency)
	assert.Equal(t, 1.0, c.TargetUpdateWeight)
	assert.Equal(t, 1, c.ParallelInteractions)

	// Memory and batch size have no defaults
	assert.Error(t, c.Validate())
	assert.NoError(t, validConfig().Validate())
}

func TestConfigValidate(t *testing.T) {
	deprecated := false

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero batch size", func(c *Config) { c.BatchSize = 0 }},
		{"zero horizon", func(c *Config) { c.Horizon = 0 }},
		{"memory too small", func(c *Config) { c.Memory = c.BatchSize + c.Horizon }},
		{"negative max episode timesteps", func(c *Config) { c.MaxEpisodeTimesteps = -1 }},
		{"negative update frequency", func(c *Config) { c.UpdateFrequency = -2 }},
		{"start before batch", func(c *Config) { c.StartUpdating = c.BatchSize - 1 }},
		{"zero learning rate", func(c *Config) { c.LearningRate = 0 }},
		{"discount above one", func(c *Config) { c.Discount = 1.01 }},
		{"negative discount", func(c *Config) { c.Discount = -0.5 }},
		{"zero sync frequency", func(c *Config) { c.TargetSyncFrequency = 0 }},
		{"zero update weight", func(c *Config) { c.TargetUpdateWeight = 0 }},
		{"update weight above one", func(c *Config) { c.TargetUpdateWeight = 1.5 }},
		{"negative huber loss", func(c *Config) { c.HuberLoss = -1 }},
		{"negative exploration", func(c *Config) { c.Exploration = -0.1 }},
		{"negative l2", func(c *Config) { c.L2Regularization = -1e-3 }},
		{"zero parallel interactions", func(c *Config) { c.ParallelInteractions = 0 }},
		{"estimate terminal", func(c *Config) { c.EstimateTerminal = &deprecated }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.modify(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestConfigSmallestMemory(t *testing.T) {
	c := validConfig()
	c.Horizon = 3
	c.Memory = c.BatchSize + c.Horizon + 1
	assert.NoError(t, c.Validate())
}

func TestUpdateDefaults(t *testing.T) {
	c := validConfig()
	assert.Equal(t, c.BatchSize, c.UpdateEvery())
	assert.Equal(t, c.BatchSize, c.StartAt())

	c.UpdateFrequency = 4
	c.StartUpdating = 50
	assert.Equal(t, 4, c.UpdateEvery())
	assert.Equal(t, 50, c.StartAt())
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ddqn.yaml")
	data := []byte("memory: 1000\nbatch_size: 32\nhorizon: 3\nseed: 7\n")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	c, err := Load(path)
	require.NoError(t, err)

	want := DefaultConfig()
	want.Memory = 1000
	want.BatchSize = 32
	want.Horizon = 3
	want.Seed = 7
	assert.Equal(t, want, c)
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ddqn.json")
	data := []byte(`{"memory": 64, "batch_size": 4, "discount": 0.5}`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 64, c.Memory)
	assert.Equal(t, 4, c.BatchSize)
	assert.Equal(t, 0.5, c.Discount)
	assert.Equal(t, 3e-4, c.LearningRate)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	unsupported := filepath.Join(dir, "ddqn.toml")
	require.NoError(t, os.WriteFile(unsupported, []byte("memory = 10"), 0o600))
	_, err = Load(unsupported)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("memory: 10\n"), 0o600))
	_, err = Load(invalid)
	assert.Error(t, err)

	deprecated := filepath.Join(dir, "deprecated.json")
	require.NoError(t, os.WriteFile(deprecated, []byte(`{"memory": 100, `+
		`"batch_size": 8, "estimate_terminal": true}`), 0o600))
	_, err = Load(deprecated)
	assert.ErrorContains(t, err, "predict_terminal_values")
}

func TestTypedConfig(t *testing.T) {
	assert.Contains(t, agent.Registered(), agent.DoubleDQN)

	c := validConfig()
	c.Horizon = 5
	c.PredictTerminalValues = true

	data, err := json.Marshal(agent.NewTypedConfig(c))
	require.NoError(t, err)

	var typed agent.TypedConfig
	require.NoError(t, json.Unmarshal(data, &typed))
	assert.Equal(t, agent.DoubleDQN, typed.Type)
	assert.Equal(t, c, typed.Config)
}

func TestOptimizer(t *testing.T) {
	c := validConfig()
	c.LearningRate = 1e-3

	opt, err := c.Optimizer()
	require.NoError(t, err)
	assert.Equal(t, solver.Adam, opt.Type)
	assert.Equal(t, 1e-3, opt.StepSize())
}

func TestComponents(t *testing.T) {
	c := validConfig()
	c.Horizon = 3
	c.TargetSyncFrequency = 10
	c.HuberLoss = 1

	comp := c.Components()
	assert.Equal(t, memory.Config{Type: memory.ReplayType, Capacity: 100},
		comp.Memory)
	assert.Equal(t, UpdateSpec{Unit: "timesteps", BatchSize: 8, Frequency: 8,
		Start: 8}, comp.Update)
	assert.Equal(t, "adam", comp.Optimizer.Type)
	assert.Equal(t, "synchronization", comp.BaselineOptimizer.Type)
	assert.Equal(t, 10, comp.BaselineOptimizer.SyncFrequency)
	assert.Equal(t, comp.Policy, comp.BaselinePolicy)
	assert.Equal(t, 0.0, comp.Policy.Temperature)

	r := comp.RewardEstimation
	assert.Equal(t, 3, r.Horizon)
	assert.Equal(t, "late", r.PredictHorizonValues)
	assert.False(t, r.EstimateAdvantage)
	assert.True(t, r.PredictActionValues)
	assert.Equal(t, 1.0, comp.Objective.HuberLoss)
}

func TestLoadOptimizer(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "ddqn.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`memory: 100
batch_size: 8
optimizer:
  type: RMSProp
  config:
    step_size: 0.01
    batch: 8
`), 0o600))

	c, err := Load(yamlPath)
	require.NoError(t, err)
	opt, err := c.Optimizer()
	require.NoError(t, err)
	assert.Equal(t, solver.RMSProp, opt.Type)
	assert.Equal(t, 0.01, opt.StepSize())
	assert.Equal(t, solver.RMSPropConfig{StepSize: 0.01, Epsilon: 1e-8,
		Rho: 0.999, Batch: 8, Clip: -1}, opt.Config)
	assert.Equal(t, OptimizerSpec{Type: "rmsprop", LearningRate: 0.01},
		c.Components().Optimizer)

	jsonPath := filepath.Join(dir, "ddqn.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"memory": 100, `+
		`"batch_size": 8, "optimizer": {"Type": "Vanilla", `+
		`"Config": {"StepSize": 0.1, "Batch": 8, "Clip": 5}}}`), 0o600))

	c, err = Load(jsonPath)
	require.NoError(t, err)
	opt, err = c.Optimizer()
	require.NoError(t, err)
	assert.Equal(t, solver.Vanilla, opt.Type)
	assert.Equal(t, 0.1, opt.StepSize())

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte(`memory: 100
batch_size: 8
optimizer:
  type: Adam
  config:
    step_size: 0
    batch: 8
`), 0o600))
	_, err = Load(invalid)
	assert.Error(t, err)
}

type otherAgentConfig struct{}

func (otherAgentConfig) Type() agent.Type { return "OtherAgent" }
func (otherAgentConfig) Validate() error  { return nil }

func TestLoadTypedConfig(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "typed.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`Type: DoubleDQN
Config:
  memory: 100
  batch_size: 8
  horizon: 3
`), 0o600))

	c, err := Load(yamlPath)
	require.NoError(t, err)
	want := validConfig()
	want.Horizon = 3
	assert.Equal(t, want, c)

	typed := validConfig()
	typed.Discount = 0.5
	data, err := json.Marshal(agent.NewTypedConfig(typed))
	require.NoError(t, err)
	jsonPath := filepath.Join(dir, "typed.json")
	require.NoError(t, os.WriteFile(jsonPath, data, 0o600))

	c, err = Load(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, typed, c)

	unregistered := filepath.Join(dir, "unregistered.yaml")
	require.NoError(t, os.WriteFile(unregistered,
		[]byte("Type: Missing\nConfig: {}\n"), 0o600))
	_, err = Load(unregistered)
	assert.ErrorContains(t, err, "unregistered")

	agent.Register("OtherAgent", otherAgentConfig{})
	other := filepath.Join(dir, "other.json")
	require.NoError(t, os.WriteFile(other,
		[]byte(`{"Type": "OtherAgent", "Config": {}}`), 0o600))
	_, err = Load(other)
	assert.ErrorContains(t, err, "cannot load OtherAgent")
}
