package memory

import (
	"github.com/samuelfneumann/goforce/utils/intutils"
)

// State is a consistent snapshot of the counters of a memory
type State struct {
	// BufferIndex is the number of timesteps ever written. The next
	// timestep is written at logical index BufferIndex.
	BufferIndex int

	// EpisodeCount is the number of episodes ever completed
	EpisodeCount int

	Capacity int
}

// Size returns the number of timesteps holding valid data
func (s State) Size() int {
	return intutils.Min(s.BufferIndex, s.Capacity)
}

// Oldest returns the logical index of the oldest timestep still
// holding valid data
func (s State) Oldest() int {
	return s.BufferIndex - s.Size()
}

// ringBuffer maps the unbounded logical timestep counter onto the
// slots of a fixed capacity store and tracks episode boundaries.
//
// ringBuffer is not safe for concurrent use; the owning memory
// serializes access to it.
type ringBuffer struct {
	capacity    int
	bufferIndex int
	episodes    *episodeIndex
}

// newRingBuffer returns a new ringBuffer with the given capacity. At
// most capacity episodes can be held in capacity slots, so the episode
// table retains capacity episodes plus the boundary before them.
func newRingBuffer(capacity int) (*ringBuffer, error) {
	if capacity < 1 {
		return nil, misconfigured("new", "capacity must be > 0")
	}

	return &ringBuffer{
		capacity: capacity,
		episodes: newEpisodeIndex(capacity + 1),
	}, nil
}

// PhysicalSlot returns the slot at which the timestep with the given
// logical index is stored. Negative logical indices are mapped with
// true modulo, so PhysicalSlot(-1) == capacity-1.
func (r *ringBuffer) PhysicalSlot(logical int) int {
	return intutils.Mod(logical, r.capacity)
}

// append advances the write cursor by one timestep and returns the
// slot the timestep should be written to. Terminal timesteps complete
// an episode.
func (r *ringBuffer) append(terminal bool) int {
	slot := r.PhysicalSlot(r.bufferIndex)
	if terminal {
		r.episodes.record(r.bufferIndex)
	}
	r.bufferIndex++

	return slot
}

func (r *ringBuffer) state() State {
	return State{
		BufferIndex:  r.bufferIndex,
		EpisodeCount: r.episodes.Count(),
		Capacity:     r.capacity,
	}
}

// episodeSpan returns the logical range [start, limit) covering the
// episodes after episode first up to and including episode last
func (r *ringBuffer) episodeSpan(op string, first, last int) (int, int,
	error) {
	start, err := r.episodes.terminal(first)
	if err != nil {
		return 0, 0, &Error{Op: op, Err: ErrOverwritten}
	}
	limit, err := r.episodes.terminal(last)
	if err != nil {
		return 0, 0, &Error{Op: op, Err: ErrOverwritten}
	}

	// The first timestep follows the terminal of the previous episode
	start++
	limit++

	// Only possible if the episode table itself wrapped
	if limit < start {
		limit += r.capacity
	}

	if start < r.state().Oldest() {
		return 0, 0, &Error{Op: op, Err: ErrOverwritten}
	}
	return start, limit, nil
}

// retrieveTimesteps returns the slots of the n most recent timesteps
// which leave room for futureHorizon timesteps after them, oldest
// first.
//
// Only the aggregate amount of valid data is checked: there must be at
// least one timestep with pastHorizon valid timesteps before it and
// futureHorizon after it. Individual returned slots are not checked
// against the horizons.
func (r *ringBuffer) retrieveTimesteps(n, pastHorizon,
	futureHorizon int) ([]int, error) {
	const op = "retrieveTimesteps"
	if n < 1 {
		return nil, misconfigured(op, "n must be > 0")
	}
	if pastHorizon < 0 || futureHorizon < 0 {
		return nil, misconfigured(op, "horizons must be >= 0")
	}

	available := r.state().Size() - pastHorizon - futureHorizon
	if available < 1 {
		return nil, insufficient(op, "no timestep with full horizons")
	}

	start := r.bufferIndex - n - futureHorizon
	limit := r.bufferIndex - futureHorizon
	return intutils.ModRange(start, limit, r.capacity), nil
}

// retrieveEpisodes returns the slots of the n most recently completed
// episodes in chronological order
func (r *ringBuffer) retrieveEpisodes(n int) ([]int, error) {
	const op = "retrieveEpisodes"
	if n < 1 {
		return nil, misconfigured(op, "n must be > 0")
	}

	count := r.episodes.Count()
	if count < 1 {
		return nil, insufficient(op, "no completed episodes")
	}
	if count < n {
		return nil, insufficient(op, "fewer completed episodes than requested")
	}

	start, limit, err := r.episodeSpan(op, count-n, count)
	if err != nil {
		return nil, err
	}
	return intutils.ModRange(start, limit, r.capacity), nil
}
