package memory

import "go.uber.org/zap"

// Recent is a Memory which always retrieves the most recent
// experience: the most recent timesteps or the most recently
// completed episodes.
type Recent struct {
	*queue
}

// NewRecent returns a new Recent memory holding capacity timesteps.
// The featureSize and actionSize parameters define the size of the
// state and action vectors stored. A nil logger discards all logs.
func NewRecent(capacity, featureSize, actionSize int,
	logger *zap.Logger) (*Recent, error) {
	q, err := newQueue(capacity, featureSize, actionSize, logger)
	if err != nil {
		return nil, err
	}
	q.logger = q.logger.With(zap.String("memory", string(RecentType)))

	return &Recent{queue: q}, nil
}

// RetrieveTimesteps returns the slots of the n most recent timesteps
// which still have futureHorizon timesteps stored after them, oldest
// first. An error satisfying IsInsufficientData is returned if, after
// reserving both horizons, not even one valid timestep remains.
//
// For example, with capacity 8 after 20 writes, RetrieveTimesteps(3,
// 0, 0) returns the slots of logical indices 17, 18 and 19, which are
// 1, 2 and 3.
func (r *Recent) RetrieveTimesteps(n, pastHorizon,
	futureHorizon int) ([]int, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return r.ring.retrieveTimesteps(n, pastHorizon, futureHorizon)
}

// RetrieveWindows implements the Memory interface
func (r *Recent) RetrieveWindows(n, pastHorizon,
	futureHorizon int) ([]int, Batch, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	centres, err := r.ring.retrieveTimesteps(n, pastHorizon, futureHorizon)
	if err != nil {
		return nil, Batch{}, err
	}
	b, err := r.gatherWindows(centres, pastHorizon, futureHorizon)
	if err != nil {
		return nil, Batch{}, err
	}
	return centres, b, nil
}

// RetrieveEpisodes returns the slots of the n most recently completed
// episodes, oldest episode first. An error satisfying
// IsInsufficientData is returned if fewer than n episodes have been
// completed or if the oldest of them has already been overwritten.
func (r *Recent) RetrieveEpisodes(n int) ([]int, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return r.ring.retrieveEpisodes(n)
}
