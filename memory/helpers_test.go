package memory

import (
	"github.com/stretchr/testify/require"
)

const (
	testFeatureSize = 2
	testActionSize  = 1
)

// record returns the record written at the given logical index. Its
// reward equals the logical index so that gathered batches can be
// mapped back to logical indices.
func record(logical int, terminal TerminalKind) Record {
	return Record{
		State:    []float64{float64(logical), -float64(logical)},
		Action:   []float64{float64(logical % 3)},
		Reward:   float64(logical),
		Terminal: terminal,
	}
}

// fill writes timesteps up to, but not including, logical index limit.
// Timesteps at the argument terminal logical indices end an episode.
func fill(t require.TestingT, m Memory, limit int, terminals ...int) {
	isTerminal := make(map[int]bool, len(terminals))
	for _, i := range terminals {
		isTerminal[i] = true
	}

	for i := m.Snapshot().BufferIndex; i < limit; i++ {
		term := NotTerminal
		if isTerminal[i] {
			term = Terminal
		}
		require.NoError(t, m.Enqueue(record(i, term)))
	}
}

// logicals returns the rewards, i.e. the logical indices, stored at
// the argument slots
func logicals(t require.TestingT, m Memory, slots []int) []int {
	b, err := m.Gather(slots)
	require.NoError(t, err)

	out := make([]int, b.Len())
	for i, r := range b.Rewards {
		out[i] = int(r)
	}
	return out
}
