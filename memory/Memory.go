// Package memory implements experience replay memories backed by a
// fixed capacity circular buffer.
//
// Experience is stored one timestep at a time. Every stored timestep
// receives a logical index, a counter which starts at 0 and is never
// reset, and is written to the physical slot logical mod capacity.
// Retrievals return slots, which are then passed to Gather to obtain
// the stored records.
package memory

import (
	"fmt"
	"sync"

	"github.com/samuelfneumann/goforce/utils/intutils"
	"go.uber.org/zap"
)

// Memory implements an experience replay memory
type Memory interface {
	// Enqueue appends records to the memory in order. Either all
	// records are stored or none are.
	Enqueue(records ...Record) error

	// RetrieveTimesteps returns the slots of n timesteps, each of
	// which can be used as the centre of a window with pastHorizon
	// timesteps before it and futureHorizon timesteps after it.
	RetrieveTimesteps(n, pastHorizon, futureHorizon int) ([]int, error)

	// RetrieveEpisodes returns the slots of the timesteps of n
	// completed episodes, each episode in chronological order.
	RetrieveEpisodes(n int) ([]int, error)

	// RetrieveWindows retrieves n centres as RetrieveTimesteps does and
	// gathers, under the same lock, the records of the window
	// [centre-pastHorizon, centre+futureHorizon] of each centre. The
	// returned Batch holds pastHorizon+futureHorizon+1 consecutive rows
	// per centre, oldest first.
	RetrieveWindows(n, pastHorizon, futureHorizon int) ([]int, Batch, error)

	// Gather returns the records stored at the argument slots
	Gather(slots []int) (Batch, error)

	// Snapshot returns a consistent view of the memory's counters
	Snapshot() State

	// Capacity returns the maximum number of timesteps stored
	Capacity() int

	// Size returns the number of timesteps holding valid data
	Size() int

	FeatureSize() int
	ActionSize() int
}

// queue implements the storage shared by all memories: a ringBuffer
// tracking logical indices and episodes, and caches holding the
// records themselves.
type queue struct {
	lock sync.RWMutex // Guards all fields below
	ring *ringBuffer

	stateCache     []float64
	actionCache    []float64
	rewardCache    []float64
	terminalCache  []TerminalKind
	nextStateCache []float64 // Only written for Abort records

	featureSize int
	actionSize  int

	logger *zap.Logger
}

// newQueue returns a new queue storing capacity timesteps with states
// of size featureSize and actions of size actionSize
func newQueue(capacity, featureSize, actionSize int,
	logger *zap.Logger) (*queue, error) {
	if featureSize < 0 || actionSize < 0 {
		return nil, misconfigured("new", "feature and action sizes must be >= 0")
	}
	ring, err := newRingBuffer(capacity)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &queue{
		ring:           ring,
		stateCache:     make([]float64, capacity*featureSize),
		actionCache:    make([]float64, capacity*actionSize),
		rewardCache:    make([]float64, capacity),
		terminalCache:  make([]TerminalKind, capacity),
		nextStateCache: make([]float64, capacity*featureSize),
		featureSize:    featureSize,
		actionSize:     actionSize,
		logger:         logger,
	}, nil
}

// String returns the string representation of the queue
func (q *queue) String() string {
	s := q.Snapshot()
	return fmt.Sprintf("Memory | Capacity: %v  |  Size: %v  |  Buffer "+
		"Index: %v  |  Episodes: %v", s.Capacity, s.Size(), s.BufferIndex,
		s.EpisodeCount)
}

// Enqueue implements the Memory interface
func (q *queue) Enqueue(records ...Record) error {
	for i, r := range records {
		if len(r.State) != q.featureSize {
			return fmt.Errorf("enqueue: invalid state size for record %v"+
				"\n\twant(%v)\n\thave(%v)", i, q.featureSize, len(r.State))
		}
		if len(r.Action) != q.actionSize {
			return fmt.Errorf("enqueue: invalid action size for record %v"+
				"\n\twant(%v)\n\thave(%v)", i, q.actionSize, len(r.Action))
		}
		if r.Terminal == Abort && len(r.NextState) != q.featureSize {
			return fmt.Errorf("enqueue: invalid next state size for aborted "+
				"record %v\n\twant(%v)\n\thave(%v)", i, q.featureSize,
				len(r.NextState))
		}
	}

	q.lock.Lock()
	defer q.lock.Unlock()

	for _, r := range records {
		slot := q.ring.append(r.Terminal.EndsEpisode())

		stateInd := slot * q.featureSize
		copy(q.stateCache[stateInd:stateInd+q.featureSize], r.State)

		next := q.nextStateCache[stateInd : stateInd+q.featureSize]
		if r.Terminal == Abort {
			copy(next, r.NextState)
		} else {
			for j := range next {
				next[j] = 0
			}
		}

		actionInd := slot * q.actionSize
		copy(q.actionCache[actionInd:actionInd+q.actionSize], r.Action)

		q.rewardCache[slot] = r.Reward
		q.terminalCache[slot] = r.Terminal

		if r.Terminal.EndsEpisode() {
			q.logger.Debug("episode completed",
				zap.Int("episode", q.ring.episodes.Count()),
				zap.Int("terminal", q.ring.bufferIndex-1),
				zap.Stringer("type", r.Terminal),
			)
		}
	}
	return nil
}

// Gather implements the Memory interface
func (q *queue) Gather(slots []int) (Batch, error) {
	q.lock.RLock()
	defer q.lock.RUnlock()

	return q.gather(slots)
}

// gatherWindows gathers the window [c-pastHorizon, c+futureHorizon] of
// each centre slot c. The caller must hold the lock.
func (q *queue) gatherWindows(centres []int, pastHorizon,
	futureHorizon int) (Batch, error) {
	width := pastHorizon + futureHorizon + 1

	slots := make([]int, 0, len(centres)*width)
	for _, c := range centres {
		slots = append(slots, intutils.ModRange(c-pastHorizon,
			c+futureHorizon+1, q.ring.capacity)...)
	}
	return q.gather(slots)
}

// gather returns the records stored at the argument slots. The caller
// must hold the lock.
func (q *queue) gather(slots []int) (Batch, error) {
	size := q.ring.state().Size()
	for _, slot := range slots {
		if slot < 0 || slot >= q.ring.capacity {
			return Batch{}, misconfigured("gather",
				fmt.Sprintf("slot %v out of range [0, %v)", slot,
					q.ring.capacity))
		}
		// Until the buffer wraps, only slots [0, size) were written
		if slot >= size {
			return Batch{}, insufficient("gather",
				fmt.Sprintf("slot %v not yet written", slot))
		}
	}

	b := Batch{
		Slots:       append([]int(nil), slots...),
		States:      make([]float64, len(slots)*q.featureSize),
		Actions:     make([]float64, len(slots)*q.actionSize),
		Rewards:     make([]float64, len(slots)),
		Terminals:   make([]TerminalKind, len(slots)),
		NextStates:  make([]float64, len(slots)*q.featureSize),
		featureSize: q.featureSize,
		actionSize:  q.actionSize,
	}

	for i, slot := range slots {
		batchInd := i * q.featureSize
		expInd := slot * q.featureSize
		copy(b.States[batchInd:batchInd+q.featureSize],
			q.stateCache[expInd:expInd+q.featureSize])
		copy(b.NextStates[batchInd:batchInd+q.featureSize],
			q.nextStateCache[expInd:expInd+q.featureSize])

		batchInd = i * q.actionSize
		expInd = slot * q.actionSize
		copy(b.Actions[batchInd:batchInd+q.actionSize],
			q.actionCache[expInd:expInd+q.actionSize])

		b.Rewards[i] = q.rewardCache[slot]
		b.Terminals[i] = q.terminalCache[slot]
	}

	return b, nil
}

// Snapshot implements the Memory interface
func (q *queue) Snapshot() State {
	q.lock.RLock()
	defer q.lock.RUnlock()

	return q.ring.state()
}

// PhysicalSlot returns the slot at which the timestep with the given
// logical index is stored
func (q *queue) PhysicalSlot(logical int) int {
	return q.ring.PhysicalSlot(logical)
}

// Capacity implements the Memory interface
func (q *queue) Capacity() int {
	return q.ring.capacity
}

// Size implements the Memory interface
func (q *queue) Size() int {
	return q.Snapshot().Size()
}

// FeatureSize returns the size of stored states
func (q *queue) FeatureSize() int {
	return q.featureSize
}

// ActionSize returns the size of stored actions
func (q *queue) ActionSize() int {
	return q.actionSize
}
