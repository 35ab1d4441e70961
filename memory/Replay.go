package memory

import (
	"sync"

	"github.com/samuelfneumann/goforce/utils/intutils"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"
)

// Replay is a Memory which retrieves experience sampled uniformly at
// random, with replacement, from the valid data it holds.
type Replay struct {
	*queue

	rngLock sync.Mutex // Guards rng
	rng     *rand.Rand
}

// NewReplay returns a new Replay memory holding capacity timesteps.
// The featureSize and actionSize parameters define the size of the
// state and action vectors stored. All sampling is seeded by seed.
func NewReplay(capacity, featureSize, actionSize int, seed uint64,
	logger *zap.Logger) (*Replay, error) {
	q, err := newQueue(capacity, featureSize, actionSize, logger)
	if err != nil {
		return nil, err
	}
	q.logger = q.logger.With(zap.String("memory", string(ReplayType)))

	return &Replay{
		queue: q,
		rng:   rand.New(rand.NewSource(seed)),
	}, nil
}

func (r *Replay) intn(n int) int {
	r.rngLock.Lock()
	defer r.rngLock.Unlock()
	return r.rng.Intn(n)
}

// RetrieveTimesteps returns the slots of n timesteps sampled uniformly
// from those with pastHorizon valid timesteps before them and
// futureHorizon valid timesteps after them. The same
// IsInsufficientData condition as Recent applies.
func (r *Replay) RetrieveTimesteps(n, pastHorizon,
	futureHorizon int) ([]int, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return r.sampleTimesteps(n, pastHorizon, futureHorizon)
}

// RetrieveWindows implements the Memory interface
func (r *Replay) RetrieveWindows(n, pastHorizon,
	futureHorizon int) ([]int, Batch, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	centres, err := r.sampleTimesteps(n, pastHorizon, futureHorizon)
	if err != nil {
		return nil, Batch{}, err
	}
	b, err := r.gatherWindows(centres, pastHorizon, futureHorizon)
	if err != nil {
		return nil, Batch{}, err
	}
	return centres, b, nil
}

// sampleTimesteps samples n centre slots. The caller must hold the
// read lock.
func (r *Replay) sampleTimesteps(n, pastHorizon,
	futureHorizon int) ([]int, error) {
	const op = "retrieveTimesteps"
	if n < 1 {
		return nil, misconfigured(op, "n must be > 0")
	}
	if pastHorizon < 0 || futureHorizon < 0 {
		return nil, misconfigured(op, "horizons must be >= 0")
	}

	state := r.ring.state()
	available := state.Size() - pastHorizon - futureHorizon
	if available < 1 {
		return nil, insufficient(op, "no timestep with full horizons")
	}

	first := state.Oldest() + pastHorizon
	slots := make([]int, n)
	for i := range slots {
		slots[i] = r.ring.PhysicalSlot(first + r.intn(available))
	}
	return slots, nil
}

// RetrieveEpisodes returns the slots of n episodes sampled uniformly
// from the completed episodes which have not been overwritten. Each
// episode's slots are in chronological order.
func (r *Replay) RetrieveEpisodes(n int) ([]int, error) {
	const op = "retrieveEpisodes"
	if n < 1 {
		return nil, misconfigured(op, "n must be > 0")
	}

	r.lock.RLock()
	defer r.lock.RUnlock()

	count := r.ring.episodes.Count()
	if count < 1 {
		return nil, insufficient(op, "no completed episodes")
	}

	// Episodes (first, count] are fully held in the buffer
	oldest := r.ring.state().Oldest()
	first := count
	for first >= 1 {
		prev, err := r.ring.episodes.terminal(first - 1)
		if err != nil || prev+1 < oldest {
			break
		}
		first--
	}
	resident := count - first
	if resident < 1 {
		return nil, &Error{Op: op, Err: ErrOverwritten}
	}

	var slots []int
	for i := 0; i < n; i++ {
		episode := first + 1 + r.intn(resident)
		start, limit, err := r.ring.episodeSpan(op, episode-1, episode)
		if err != nil {
			return nil, err
		}
		slots = append(slots, intutils.ModRange(start, limit,
			r.ring.capacity)...)
	}
	return slots, nil
}
