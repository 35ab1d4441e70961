package main

import (
	"flag"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samuelfneumann/goforce/agent/ddqn"
	"github.com/samuelfneumann/goforce/memory"
	"github.com/samuelfneumann/goforce/timestep"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

const (
	featureSize = 4
	numActions  = 2
)

func main() {
	configPath := flag.String("config", "", "Double DQN config file "+
		"(.yaml, .yml or .json)")
	timesteps := flag.Int("timesteps", 5000, "number of timesteps to generate")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck

	// Load the agent configuration, given either bare or typed as
	// {"Type": "DoubleDQN", "Config": {...}}
	config := ddqn.DefaultConfig()
	config.Memory = 1000
	config.BatchSize = 32
	config.Horizon = 3
	config.MaxEpisodeTimesteps = 200
	config.TargetSyncFrequency = 10
	config.Seed = 192382
	if *configPath != "" {
		config, err = ddqn.Load(*configPath)
		if err != nil {
			logger.Fatal("could not load config", zap.Error(err))
		}
	}

	batcher, err := ddqn.NewBatcher(config, featureSize, 1, logger)
	if err != nil {
		logger.Fatal("could not create batcher", zap.Error(err))
	}
	optimizer := batcher.Optimizer()
	logger.Info("optimizer", zap.String("type", string(optimizer.Type)),
		zap.Float64("stepSize", optimizer.StepSize()))

	registry := prometheus.NewRegistry()
	registry.MustRegister(memory.NewCollector("goforce", batcher.Memory()))

	// Generate random episodes in place of an environment. Episodes end
	// in a terminal state with probability 0.02 per timestep, or are
	// aborted at the timestep limit.
	rng := rand.New(rand.NewSource(config.Seed))
	step := timestep.New(timestep.First, 0, config.Discount,
		randomState(rng), 0)

	for t := 0; t < *timesteps; t++ {
		action := mat.NewVecDense(1, []float64{float64(rng.Intn(numActions))})

		stepType, discount := timestep.Mid, config.Discount
		if rng.Float64() < 0.02 {
			stepType, discount = timestep.Last, 0
		} else if config.MaxEpisodeTimesteps > 0 &&
			step.Number+1 >= config.MaxEpisodeTimesteps {
			stepType = timestep.Last
		}
		next := timestep.New(stepType, rng.NormFloat64(), discount,
			randomState(rng), step.Number+1)

		transition := timestep.NewTransition(step, action, next, nil)
		if err := batcher.Enqueue(memory.FromTransition(transition)); err != nil {
			logger.Fatal("could not store transition", zap.Error(err))
		}

		step = next
		if next.Last() {
			step = timestep.New(timestep.First, 0, config.Discount,
				randomState(rng), 0)
		}

		for batcher.Pending() > 0 {
			batch, err := batcher.Batch()
			if memory.IsInsufficientData(err) {
				break
			} else if err != nil {
				logger.Fatal("could not sample batch", zap.Error(err))
			}

			in := batch.Inputs()
			logger.Debug("update",
				zap.Int("timestep", batcher.Timesteps()),
				zap.Int("update", batcher.Updates()),
				zap.Float64("meanReturn", mat.Sum(mat.NewVecDense(
					batch.Len(), batch.Returns.Values))/float64(batch.Len())),
				zap.Ints("stateShape", in.States.Shape()),
				zap.Bool("syncTarget", batch.SyncTarget),
			)
		}
	}

	families, err := registry.Gather()
	if err != nil {
		logger.Fatal("could not gather metrics", zap.Error(err))
	}
	for _, family := range families {
		for _, m := range family.GetMetric() {
			logger.Info("memory", zap.String("metric", family.GetName()),
				zap.Float64("value", m.GetGauge().GetValue()))
		}
	}
	logger.Info("done", zap.Int("timesteps", batcher.Timesteps()),
		zap.Int("updates", batcher.Updates()))
}

func randomState(rng *rand.Rand) *mat.VecDense {
	state := make([]float64, featureSize)
	for i := range state {
		state[i] = rng.NormFloat64()
	}
	return mat.NewVecDense(featureSize, state)
}
