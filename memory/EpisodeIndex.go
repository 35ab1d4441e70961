package memory

import "fmt"

// noEpisode is the terminal index recorded for episode 0, the boundary
// before any episode began. The first episode therefore starts at
// logical index noEpisode + 1 == 0.
const noEpisode = -1

// episodeIndex records, for each completed episode, the logical index
// at which its terminal timestep was written. Entry e holds the
// terminal of episode e, with entry 0 being the noEpisode sentinel.
//
// The table is itself a ring: only the most recent len(terminals)
// entries are retained. Logical indices are stored unwrapped, so the
// retained entries are strictly increasing.
type episodeIndex struct {
	terminals []int
	count     int // Number of completed episodes
}

// newEpisodeIndex returns an episodeIndex retaining the terminals of
// the most recent size-1 episodes along with the boundary before them
func newEpisodeIndex(size int) *episodeIndex {
	terminals := make([]int, size)
	terminals[0] = noEpisode

	return &episodeIndex{terminals: terminals}
}

// record stores the logical index of a newly written terminal timestep
func (e *episodeIndex) record(logical int) {
	e.count++
	e.terminals[e.count%len(e.terminals)] = logical
}

// Count returns the number of episodes completed so far
func (e *episodeIndex) Count() int {
	return e.count
}

// retained returns whether the terminal of the argument episode is
// still held in the table
func (e *episodeIndex) retained(episode int) bool {
	return episode >= 0 && episode <= e.count &&
		e.count-episode < len(e.terminals)
}

// terminal returns the logical index of the terminal timestep of the
// argument episode. Episode 0 returns the noEpisode sentinel.
func (e *episodeIndex) terminal(episode int) (int, error) {
	if !e.retained(episode) {
		return 0, fmt.Errorf("episode %v not in table of %v episodes "+
			"(retaining %v)", episode, e.count, len(e.terminals)-1)
	}
	return e.terminals[episode%len(e.terminals)], nil
}
