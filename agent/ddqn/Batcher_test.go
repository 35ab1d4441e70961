package ddqn

import (
	"sync"
	"testing"

	"github.com/samuelfneumann/goforce/estimator"
	"github.com/samuelfneumann/goforce/memory"
	"github.com/samuelfneumann/goforce/solver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestBatcher(t *testing.T) *Batcher {
	c := DefaultConfig()
	c.Memory = 16
	c.BatchSize = 4
	c.Horizon = 2
	c.Discount = 0.5
	c.TargetSyncFrequency = 2
	c.Seed = 1

	b, err := NewBatcher(c, 2, 1, zaptest.NewLogger(t))
	require.NoError(t, err)
	return b
}

// step returns the record of timestep i, whose reward is i
func step(i int, terminal memory.TerminalKind) memory.Record {
	return memory.Record{
		State:    []float64{float64(i), 1},
		Action:   []float64{0},
		Reward:   float64(i),
		Terminal: terminal,
	}
}

func TestNewBatcherValidates(t *testing.T) {
	_, err := NewBatcher(DefaultConfig(), 2, 1, nil)
	assert.Error(t, err)

	c := validConfig()
	_, err = NewBatcher(c, -1, 1, nil)
	assert.True(t, memory.IsConfiguration(err), "have %v", err)

	b, err := NewBatcher(c, 2, 1, nil)
	require.NoError(t, err)
	assert.IsType(t, &memory.Replay{}, b.Memory())
	assert.Equal(t, 100, b.Memory().Capacity())
	assert.Equal(t, solver.Adam, b.Optimizer().Type)
	assert.Equal(t, c.LearningRate, b.Optimizer().StepSize())

	c.Solver, err = solver.NewVanilla(0.05, c.BatchSize, -1)
	require.NoError(t, err)
	b, err = NewBatcher(c, 2, 1, nil)
	require.NoError(t, err)
	assert.Same(t, c.Solver, b.Optimizer())
}

func TestBatcherPending(t *testing.T) {
	b := newTestBatcher(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, b.Enqueue(step(i, memory.NotTerminal)))
	}
	assert.Equal(t, 0, b.Pending())

	require.NoError(t, b.Enqueue(step(3, memory.NotTerminal)))
	assert.Equal(t, 1, b.Pending())

	for i := 4; i < 12; i++ {
		require.NoError(t, b.Enqueue(step(i, memory.NotTerminal)))
	}
	assert.Equal(t, 3, b.Pending())
	assert.Equal(t, 12, b.Timesteps())

	// Invalid records are not counted
	assert.Error(t, b.Enqueue(memory.Record{State: []float64{0}}))
	assert.Equal(t, 12, b.Timesteps())
}

func TestBatcherInsufficientData(t *testing.T) {
	b := newTestBatcher(t)
	require.NoError(t, b.Enqueue(step(0, memory.NotTerminal),
		step(1, memory.NotTerminal)))

	_, err := b.Batch()
	assert.True(t, memory.IsInsufficientData(err), "have %v", err)
	assert.Equal(t, 0, b.Updates())
}

func TestBatcherBatch(t *testing.T) {
	b := newTestBatcher(t)

	records := make([]memory.Record, 12)
	for i := range records {
		term := memory.NotTerminal
		if i == 5 {
			term = memory.Terminal
		}
		records[i] = step(i, term)
	}
	require.NoError(t, b.Enqueue(records...))

	// Updates are due at timesteps 4, 8 and 12
	require.Equal(t, 3, b.Pending())

	batch, err := b.Batch()
	require.NoError(t, err)
	assert.Equal(t, 4, batch.Len())
	assert.False(t, batch.SyncTarget)
	assert.Equal(t, 2, b.Pending())

	ret := batch.Returns
	assert.Equal(t, ret.Centres, batch.Records.Slots)
	require.Len(t, batch.NextStates, 2*batch.Len())
	for i, centre := range ret.Centres {
		// Centres need two stored timesteps after them
		assert.Less(t, centre, 10)
		assert.Equal(t, float64(centre), batch.Records.State(i)[0])

		// Slots equal timesteps since the memory never wrapped
		want := ret.BootstrapSlots[i]
		if want == estimator.NoBootstrap {
			want = centre
			assert.Equal(t, 0.0, ret.BootstrapDiscounts[i])
		}
		assert.Equal(t, float64(want), batch.NextStates[2*i])
	}

	in := batch.Inputs()
	assert.Equal(t, []int{4, 2}, []int(in.States.Shape()))
	assert.Equal(t, []int{4, 1}, []int(in.Actions.Shape()))
	assert.Equal(t, []int{4}, []int(in.Returns.Shape()))
	assert.Equal(t, []int{4, 2}, []int(in.NextStates.Shape()))
	assert.Equal(t, batch.Returns.Values, in.Returns.Data())
	assert.Equal(t, batch.NextStates, in.NextStates.Data())

	batch, err = b.Batch()
	require.NoError(t, err)
	assert.True(t, batch.SyncTarget)
	assert.Equal(t, 1, b.Pending())
	assert.Equal(t, 2, b.Updates())
}

func TestBatcherConcurrentEnqueue(t *testing.T) {
	b := newTestBatcher(t)
	for i := 0; i < 12; i++ {
		require.NoError(t, b.Enqueue(step(i, memory.NotTerminal)))
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 12; i < 500; i++ {
			assert.NoError(t, b.Enqueue(step(i, memory.NotTerminal)))
		}
	}()

	for n := 0; n < 100; n++ {
		batch, err := b.Batch()
		require.NoError(t, err)

		// Every window holds consecutive timesteps, even while the
		// memory is being overwritten
		windows := batch.Returns.Windows
		for i := 0; i < batch.Len(); i++ {
			first := windows.State(3 * i)[0]
			for k := 1; k < 3; k++ {
				assert.Equal(t, first+float64(k), windows.State(3*i + k)[0])
			}
			assert.Equal(t, first, batch.Records.State(i)[0])
			assert.InDelta(t, first+0.5*(first+1), batch.Returns.Values[i],
				1e-9)
			assert.Equal(t, first+2, batch.NextStates[2*i])
		}
	}
	wg.Wait()
}
