package ddqn

import (
	"strings"

	"github.com/samuelfneumann/goforce/memory"
)

// PolicySpec describes the policy network of the agent
type PolicySpec struct {
	Network     string  `json:"network" yaml:"network"`
	Temperature float64 `json:"temperature" yaml:"temperature"`
}

// UpdateSpec describes when updates happen and on how much data
type UpdateSpec struct {
	Unit      string `json:"unit" yaml:"unit"`
	BatchSize int    `json:"batch_size" yaml:"batch_size"`
	Frequency int    `json:"frequency" yaml:"frequency"`
	Start     int    `json:"start" yaml:"start"`
}

// OptimizerSpec describes the optimizer of the policy network
type OptimizerSpec struct {
	Type          string  `json:"type" yaml:"type"`
	LearningRate  float64 `json:"learning_rate,omitempty" yaml:"learning_rate,omitempty"`
	SyncFrequency int     `json:"sync_frequency,omitempty" yaml:"sync_frequency,omitempty"`
	UpdateWeight  float64 `json:"update_weight,omitempty" yaml:"update_weight,omitempty"`
}

// ObjectiveSpec describes the loss the policy network minimises
type ObjectiveSpec struct {
	Type      string  `json:"type" yaml:"type"`
	Value     string  `json:"value" yaml:"value"`
	HuberLoss float64 `json:"huber_loss" yaml:"huber_loss"`
}

// RewardEstimationSpec describes how update targets are estimated
type RewardEstimationSpec struct {
	Horizon               int     `json:"horizon" yaml:"horizon"`
	Discount              float64 `json:"discount" yaml:"discount"`
	PredictHorizonValues  string  `json:"predict_horizon_values" yaml:"predict_horizon_values"`
	EstimateAdvantage     bool    `json:"estimate_advantage" yaml:"estimate_advantage"`
	PredictActionValues   bool    `json:"predict_action_values" yaml:"predict_action_values"`
	PredictTerminalValues bool    `json:"predict_terminal_values" yaml:"predict_terminal_values"`
}

// ExplorationSpec describes the exploration applied while acting
type ExplorationSpec struct {
	Exploration   float64 `json:"exploration" yaml:"exploration"`
	VariableNoise float64 `json:"variable_noise" yaml:"variable_noise"`
}

// RegularizationSpec describes the regularization losses
type RegularizationSpec struct {
	L2      float64 `json:"l2_regularization" yaml:"l2_regularization"`
	Entropy float64 `json:"entropy_regularization" yaml:"entropy_regularization"`
}

// Components is the Double DQN agent expressed as the generic modules
// it is composed of. The baseline is the target network: a copy of
// the policy which is periodically synchronized with it rather than
// optimized.
type Components struct {
	Policy            PolicySpec           `json:"policy" yaml:"policy"`
	Memory            memory.Config        `json:"memory" yaml:"memory"`
	Update            UpdateSpec           `json:"update" yaml:"update"`
	Optimizer         OptimizerSpec        `json:"optimizer" yaml:"optimizer"`
	Objective         ObjectiveSpec        `json:"objective" yaml:"objective"`
	RewardEstimation  RewardEstimationSpec `json:"reward_estimation" yaml:"reward_estimation"`
	BaselinePolicy    PolicySpec           `json:"baseline_policy" yaml:"baseline_policy"`
	BaselineOptimizer OptimizerSpec        `json:"baseline_optimizer" yaml:"baseline_optimizer"`
	Exploration       ExplorationSpec      `json:"exploration" yaml:"exploration"`
	Regularization    RegularizationSpec   `json:"regularization" yaml:"regularization"`

	MaxEpisodeTimesteps  int `json:"max_episode_timesteps,omitempty" yaml:"max_episode_timesteps,omitempty"`
	ParallelInteractions int `json:"parallel_interactions" yaml:"parallel_interactions"`
}

// Components returns the module specifications derived from the Config
func (c Config) Components() Components {
	policy := PolicySpec{Network: c.Network, Temperature: 0.0}

	optimizer := OptimizerSpec{Type: "adam", LearningRate: c.LearningRate}
	if c.Solver != nil {
		optimizer = OptimizerSpec{
			Type:         strings.ToLower(string(c.Solver.Type)),
			LearningRate: c.Solver.StepSize(),
		}
	}

	return Components{
		Policy: policy,
		Memory: c.MemoryConfig(),
		Update: UpdateSpec{
			Unit:      "timesteps",
			BatchSize: c.BatchSize,
			Frequency: c.UpdateEvery(),
			Start:     c.StartAt(),
		},
		Optimizer: optimizer,
		Objective: ObjectiveSpec{
			Type:      "value",
			Value:     "action",
			HuberLoss: c.HuberLoss,
		},
		RewardEstimation: RewardEstimationSpec{
			Horizon:               c.Horizon,
			Discount:              c.Discount,
			PredictHorizonValues:  "late",
			EstimateAdvantage:     false,
			PredictActionValues:   true,
			PredictTerminalValues: c.PredictTerminalValues,
		},
		BaselinePolicy: policy,
		BaselineOptimizer: OptimizerSpec{
			Type:          "synchronization",
			SyncFrequency: c.TargetSyncFrequency,
			UpdateWeight:  c.TargetUpdateWeight,
		},
		Exploration: ExplorationSpec{
			Exploration:   c.Exploration,
			VariableNoise: c.VariableNoise,
		},
		Regularization: RegularizationSpec{
			L2:      c.L2Regularization,
			Entropy: c.EntropyRegularization,
		},
		MaxEpisodeTimesteps:  c.MaxEpisodeTimesteps,
		ParallelInteractions: c.ParallelInteractions,
	}
}
