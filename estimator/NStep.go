// Package estimator implements reward estimation over experience
// stored in a replay memory
package estimator

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/goforce/memory"
	"github.com/samuelfneumann/goforce/utils/intutils"
	"gonum.org/v1/gonum/floats"
)

// NoBootstrap is the bootstrap slot of a return whose window reached
// the terminal state of its episode
const NoBootstrap = -1

// NStep implements the n-step discounted return estimate
//
//	G = r_t + γ r_{t+1} + ... + γ^(n-1) r_{t+n-1} + γ^n v(s_{t+n})
//
// where the bootstrapped value v(s_{t+n}) is supplied later by the
// caller for the state returned by Returns.BootstrapStates.
//
// A window which reaches the last timestep of its episode includes
// that timestep's reward and stops there. After a Terminal timestep
// nothing is bootstrapped. After an Abort timestep at offset k the
// return is bootstrapped with γ^(k+1) from the next state stored with
// the aborted record.
type NStep struct {
	horizon   int
	discount  float64
	discounts []float64 // discounts[i] = discount^i
}

// New returns a new NStep estimator
func New(horizon int, discount float64) (*NStep, error) {
	if horizon < 1 {
		return nil, fmt.Errorf("new: horizon must be positive \n\twant(>0)"+
			"\n\thave(%v)", horizon)
	}
	if discount < 0 || discount > 1 {
		return nil, fmt.Errorf("new: discount must be in [0, 1] \n\thave(%v)",
			discount)
	}

	discounts := make([]float64, horizon+1)
	for i := range discounts {
		discounts[i] = math.Pow(discount, float64(i))
	}

	return &NStep{
		horizon:   horizon,
		discount:  discount,
		discounts: discounts,
	}, nil
}

// Horizon returns the number of rewards summed before bootstrapping
func (n *NStep) Horizon() int {
	return n.horizon
}

// Discount returns the discount factor
func (n *NStep) Discount() float64 {
	return n.discount
}

// Returns holds the n-step returns of a batch of centre timesteps
type Returns struct {
	Centres []int

	// Values holds the discounted sums of rewards
	Values []float64

	// BootstrapSlots holds the slot of the record to bootstrap from,
	// or NoBootstrap
	BootstrapSlots []int

	// BootstrapFromNext is true where the bootstrap state is the next
	// state stored with an Abort record rather than the state at the
	// bootstrap slot
	BootstrapFromNext []bool

	// BootstrapDiscounts holds the factor of each bootstrapped value,
	// 0 for returns that are not bootstrapped
	BootstrapDiscounts []float64

	// Windows holds the horizon+1 records following and including
	// each centre, one window after the other
	Windows memory.Batch

	width         int
	bootstrapRows []int // Row of Windows holding the bootstrap state
}

// Len returns the number of returns
func (r Returns) Len() int {
	return len(r.Centres)
}

// Records returns the records of the centre timesteps
func (r Returns) Records() memory.Batch {
	rows := make([]int, r.Len())
	for i := range rows {
		rows[i] = i * r.width
	}
	return r.Windows.Select(rows)
}

// BootstrapStates returns the states whose values are bootstrapped,
// one row per return in row major order. Returns which are not
// bootstrapped get the state of their centre, which is discounted by
// 0.
func (r Returns) BootstrapStates() []float64 {
	states := make([]float64, 0, r.Len()*r.Windows.FeatureSize())
	for i, row := range r.bootstrapRows {
		if r.BootstrapFromNext[i] {
			states = append(states, r.Windows.NextState(row)...)
		} else {
			states = append(states, r.Windows.State(row)...)
		}
	}
	return states
}

// Retrieve retrieves n centre timesteps from m which have a full
// horizon stored after them, and estimates their returns. Centres and
// windows are read from a single view of the memory.
func (n *NStep) Retrieve(m memory.Memory, batchSize int) (Returns, error) {
	centres, windows, err := m.RetrieveWindows(batchSize, 0, n.horizon)
	if err != nil {
		return Returns{}, fmt.Errorf("retrieve: %w", err)
	}
	return n.estimate(centres, windows), nil
}

// Estimate computes the n-step returns of the argument centre slots.
// Each centre must have horizon timesteps stored after it, as
// guaranteed by retrieving the centres with a future horizon of at
// least Horizon().
func (n *NStep) Estimate(m memory.Memory, centres []int) (Returns, error) {
	width := n.horizon + 1
	capacity := m.Capacity()

	slots := make([]int, 0, len(centres)*width)
	for _, c := range centres {
		slots = append(slots, intutils.ModRange(c, c+width, capacity)...)
	}

	windows, err := m.Gather(slots)
	if err != nil {
		return Returns{}, fmt.Errorf("estimate: %w", err)
	}
	return n.estimate(centres, windows), nil
}

// estimate computes returns over windows of horizon+1 records, one
// window per centre
func (n *NStep) estimate(centres []int, windows memory.Batch) Returns {
	width := n.horizon + 1

	r := Returns{
		Centres:            append([]int(nil), centres...),
		Values:             make([]float64, len(centres)),
		BootstrapSlots:     make([]int, len(centres)),
		BootstrapFromNext:  make([]bool, len(centres)),
		BootstrapDiscounts: make([]float64, len(centres)),
		Windows:            windows,
		width:              width,
		bootstrapRows:      make([]int, len(centres)),
	}

	for i := range centres {
		first := i * width
		rewards := windows.Rewards[first : first+width]
		terminals := windows.Terminals[first : first+width]

		steps, row, ended := n.horizon, first+n.horizon, memory.NotTerminal
		for k := 0; k < n.horizon; k++ {
			if terminals[k].EndsEpisode() {
				steps, row, ended = k+1, first+k, terminals[k]
				break
			}
		}

		r.Values[i] = floats.Dot(n.discounts[:steps], rewards[:steps])

		if ended == memory.Terminal {
			r.BootstrapSlots[i] = NoBootstrap
			r.bootstrapRows[i] = first
			continue
		}
		r.BootstrapSlots[i] = windows.Slots[row]
		r.BootstrapFromNext[i] = ended == memory.Abort
		r.BootstrapDiscounts[i] = n.discounts[steps]
		r.bootstrapRows[i] = row
	}

	return r
}
