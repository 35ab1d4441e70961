package solver

import (
	"fmt"

	G "gorgonia.org/gorgonia"
)

// AdamConfig holds the hyperparameters of the Adam solver
// (https://arxiv.org/abs/1412.6980), the default optimizer of a
// Double DQN agent
type AdamConfig struct {
	StepSize float64 `yaml:"step_size"`
	Epsilon  float64 `yaml:"epsilon"`
	Beta1    float64 `yaml:"beta1"`
	Beta2    float64 `yaml:"beta2"`
	Batch    int     `yaml:"batch"`
}

// NewDefaultAdam returns an Adam Solver with the given step size and
// the default moment decay rates
func NewDefaultAdam(stepSize float64, batchSize int) (*Solver, error) {
	def := defaultConfigs[Adam].(AdamConfig)
	return NewAdam(stepSize, def.Epsilon, def.Beta1, def.Beta2, batchSize)
}

// NewAdam returns an Adam Solver averaging gradients over batchSize
// samples
func NewAdam(stepSize, epsilon, beta1, beta2 float64,
	batchSize int) (*Solver, error) {
	return newSolver(Adam, AdamConfig{
		StepSize: stepSize,
		Epsilon:  epsilon,
		Beta1:    beta1,
		Beta2:    beta2,
		Batch:    batchSize,
	})
}

// Create implements the Config interface
func (a AdamConfig) Create() G.Solver {
	return G.NewAdamSolver(
		G.WithLearnRate(a.StepSize),
		G.WithEps(a.Epsilon),
		G.WithBeta1(a.Beta1),
		G.WithBeta2(a.Beta2),
		G.WithBatchSize(float64(a.Batch)),
	)
}

// ValidType implements the Config interface
func (a AdamConfig) ValidType(t Type) bool {
	return t == Adam
}

// Validate implements the Config interface. Both decay rates must lie
// in [0, 1).
func (a AdamConfig) Validate() error {
	for _, beta := range []float64{a.Beta1, a.Beta2} {
		if beta < 0 || beta >= 1 {
			return fmt.Errorf("adam decay rates must be in [0, 1) "+
				"\n\thave(%v)", beta)
		}
	}
	return validateStep(a.StepSize, a.Batch)
}

// StepSizeOf implements the Config interface
func (a AdamConfig) StepSizeOf() float64 {
	return a.StepSize
}
