package ddqn

import (
	"fmt"
	"sync"

	"github.com/samuelfneumann/goforce/estimator"
	"github.com/samuelfneumann/goforce/memory"
	"github.com/samuelfneumann/goforce/solver"
	"go.uber.org/zap"
	"gorgonia.org/tensor"
)

// Batch is the data of a single Double DQN update
type Batch struct {
	// Records holds the centre timesteps whose action values are
	// updated
	Records memory.Batch

	// Returns holds the n-step return of each centre timestep
	Returns estimator.Returns

	// NextStates holds, for each centre, the state the target network
	// evaluates, in row major order. Centres which are not
	// bootstrapped repeat their own state; their bootstrap discount
	// is 0.
	NextStates []float64

	// SyncTarget is true when the target network should be
	// synchronized after this update
	SyncTarget bool
}

// Len returns the number of timesteps in the batch
func (b Batch) Len() int {
	return b.Returns.Len()
}

// Inputs holds the data of a Batch as the tensors fed to the update
// graph of the agent. Row i of each tensor belongs to the same centre
// timestep.
type Inputs struct {
	States     *tensor.Dense // (batch, features)
	Actions    *tensor.Dense // (batch, actions)
	Returns    *tensor.Dense // (batch)
	NextStates *tensor.Dense // (batch, features)
	Discounts  *tensor.Dense // (batch)
}

// Inputs returns the batch as tensors. The batch must hold at least
// one record with non-empty states and actions.
func (b Batch) Inputs() Inputs {
	n := b.Len()
	features := len(b.Records.States) / n
	actions := len(b.Records.Actions) / n

	return Inputs{
		States: tensor.New(
			tensor.WithShape(n, features),
			tensor.WithBacking(b.Records.States),
		),
		Actions: tensor.New(
			tensor.WithShape(n, actions),
			tensor.WithBacking(b.Records.Actions),
		),
		Returns: tensor.New(
			tensor.WithShape(n),
			tensor.WithBacking(b.Returns.Values),
		),
		NextStates: tensor.New(
			tensor.WithShape(n, features),
			tensor.WithBacking(b.NextStates),
		),
		Discounts: tensor.New(
			tensor.WithShape(n),
			tensor.WithBacking(b.Returns.BootstrapDiscounts),
		),
	}
}

// Batcher stores the experience of a Double DQN agent and prepares
// batches of data for its updates
type Batcher struct {
	lock sync.Mutex // Guards the counters below

	memory    memory.Memory
	estimator *estimator.NStep
	optimizer *solver.Solver
	schedule  Schedule
	batchSize int

	timesteps int
	updates   int
	pending   int

	logger *zap.Logger
}

// NewBatcher returns a new Batcher for an agent described by c, which
// observes states of size featureSize and takes actions of size
// actionSize
func NewBatcher(c Config, featureSize, actionSize int,
	logger *zap.Logger) (*Batcher, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("newBatcher: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("agent", string(c.Type())))

	mem, err := c.MemoryConfig().Create(featureSize, actionSize, c.Seed,
		logger)
	if err != nil {
		return nil, fmt.Errorf("newBatcher: %w", err)
	}

	est, err := estimator.New(c.Horizon, c.Discount)
	if err != nil {
		return nil, fmt.Errorf("newBatcher: %w", err)
	}

	optimizer, err := c.Optimizer()
	if err != nil {
		return nil, fmt.Errorf("newBatcher: %w", err)
	}
	logger.Debug("created optimizer", zap.String("type",
		string(optimizer.Type)), zap.Float64("stepSize", optimizer.StepSize()))

	return &Batcher{
		memory:    mem,
		estimator: est,
		optimizer: optimizer,
		schedule:  c.Schedule(),
		batchSize: c.BatchSize,
		logger:    logger,
	}, nil
}

// Enqueue stores records and counts the updates which become due
func (b *Batcher) Enqueue(records ...memory.Record) error {
	if err := b.memory.Enqueue(records...); err != nil {
		return fmt.Errorf("enqueue: %w", err)
	}

	b.lock.Lock()
	defer b.lock.Unlock()
	for range records {
		b.timesteps++
		if b.schedule.ShouldUpdate(b.timesteps) {
			b.pending++
		}
	}
	return nil
}

// Pending returns the number of updates which are due
func (b *Batcher) Pending() int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.pending
}

// Timesteps returns the number of timesteps observed
func (b *Batcher) Timesteps() int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.timesteps
}

// Updates returns the number of batches returned
func (b *Batcher) Updates() int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.updates
}

// Memory returns the replay memory of the Batcher
func (b *Batcher) Memory() memory.Memory {
	return b.memory
}

// Optimizer returns the solver which updates the policy network
func (b *Batcher) Optimizer() *solver.Solver {
	return b.optimizer
}

// Batch samples the data of a single update. Sampling does not
// require an update to be pending, but every returned Batch consumes
// a pending update if there is one.
//
// All data of a Batch is read from the memory under a single lock, so
// Batch may be called concurrently with Enqueue.
func (b *Batcher) Batch() (Batch, error) {
	returns, err := b.estimator.Retrieve(b.memory, b.batchSize)
	if err != nil {
		return Batch{}, fmt.Errorf("batch: %w", err)
	}

	b.lock.Lock()
	b.updates++
	if b.pending > 0 {
		b.pending--
	}
	syncTarget := b.schedule.ShouldSync(b.updates)
	updates := b.updates
	b.lock.Unlock()

	if syncTarget {
		b.logger.Debug("synchronizing target network",
			zap.Int("update", updates))
	}

	return Batch{
		Records:    returns.Records(),
		Returns:    returns,
		NextStates: returns.BootstrapStates(),
		SyncTarget: syncTarget,
	}, nil
}
