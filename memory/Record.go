package memory

import (
	"fmt"

	"github.com/samuelfneumann/goforce/timestep"
	"gonum.org/v1/gonum/mat"
)

// TerminalKind denotes whether a stored timestep ends an episode and
// how
type TerminalKind int

const (
	// NotTerminal marks a timestep in the middle of an episode
	NotTerminal TerminalKind = iota

	// Terminal marks the last timestep of an episode that ended in a
	// terminal state. Nothing is bootstrapped past it.
	Terminal

	// Abort marks the last timestep of an episode that was cut off,
	// for example by a timestep limit. The episode is complete as far
	// as the memory is concerned, but its return is bootstrapped from
	// the next state stored with the record.
	Abort
)

// EndsEpisode returns whether the timestep is the last of its episode
func (t TerminalKind) EndsEpisode() bool {
	return t == Terminal || t == Abort
}

func (t TerminalKind) String() string {
	switch t {
	case Terminal:
		return "Terminal"
	case Abort:
		return "Abort"
	default:
		return "NotTerminal"
	}
}

// Record is a single timestep of experience stored in a memory: the
// state observed, the action taken in it, the reward that followed and
// whether the episode ended.
//
// The next state of a timestep is the state of the record after it,
// except at the end of an episode. Abort records therefore carry
// their NextState, which must have the size of State. NextState is
// ignored for all other records.
type Record struct {
	State     []float64
	Action    []float64
	Reward    float64
	Terminal  TerminalKind
	NextState []float64
}

// FromTransition converts a transition into a Record. A transition
// into the last step of an episode is Terminal when the environment
// discounts the next state to zero and Abort otherwise.
func FromTransition(t timestep.Transition) Record {
	terminal := NotTerminal
	switch {
	case t.Terminal():
		terminal = Terminal
	case t.Truncated():
		terminal = Abort
	}

	r := Record{
		State:    vecData(t.State),
		Action:   vecData(t.Action),
		Reward:   t.Reward,
		Terminal: terminal,
	}
	if terminal == Abort {
		r.NextState = vecData(t.NextState)
	}
	return r
}

func vecData(v mat.Vector) []float64 {
	if v == nil {
		return nil
	}
	data := make([]float64, v.Len())
	for i := range data {
		data[i] = v.AtVec(i)
	}
	return data
}

// Batch is a batch of records gathered from a memory. States, Actions
// and NextStates are stored in row major order, one row per slot. The
// NextStates row of a record which is not an Abort is zero.
type Batch struct {
	Slots      []int
	States     []float64
	Actions    []float64
	Rewards    []float64
	Terminals  []TerminalKind
	NextStates []float64

	featureSize int
	actionSize  int
}

// Len returns the number of records in the batch
func (b Batch) Len() int {
	return len(b.Slots)
}

// FeatureSize returns the size of each state in the batch
func (b Batch) FeatureSize() int {
	return b.featureSize
}

// ActionSize returns the size of each action in the batch
func (b Batch) ActionSize() int {
	return b.actionSize
}

// State returns the state of the record at row i
func (b Batch) State(i int) []float64 {
	return b.States[i*b.featureSize : (i+1)*b.featureSize]
}

// NextState returns the stored next state of the record at row i
func (b Batch) NextState(i int) []float64 {
	return b.NextStates[i*b.featureSize : (i+1)*b.featureSize]
}

// Select returns a new Batch holding copies of the argument rows, in
// the order given
func (b Batch) Select(rows []int) Batch {
	out := Batch{
		Slots:       make([]int, len(rows)),
		States:      make([]float64, 0, len(rows)*b.featureSize),
		Actions:     make([]float64, 0, len(rows)*b.actionSize),
		Rewards:     make([]float64, len(rows)),
		Terminals:   make([]TerminalKind, len(rows)),
		NextStates:  make([]float64, 0, len(rows)*b.featureSize),
		featureSize: b.featureSize,
		actionSize:  b.actionSize,
	}

	for i, row := range rows {
		out.Slots[i] = b.Slots[row]
		out.Rewards[i] = b.Rewards[row]
		out.Terminals[i] = b.Terminals[row]
		out.States = append(out.States, b.State(row)...)
		out.NextStates = append(out.NextStates, b.NextState(row)...)
		out.Actions = append(out.Actions,
			b.Actions[row*b.actionSize:(row+1)*b.actionSize]...)
	}
	return out
}

// StateMatrix returns the batch of states as a matrix with one row
// per record
func (b Batch) StateMatrix() *mat.Dense {
	if b.Len() == 0 || b.featureSize == 0 {
		return nil
	}
	return mat.NewDense(b.Len(), b.featureSize, b.States)
}

// ActionMatrix returns the batch of actions as a matrix with one row
// per record
func (b Batch) ActionMatrix() *mat.Dense {
	if b.Len() == 0 || b.actionSize == 0 {
		return nil
	}
	return mat.NewDense(b.Len(), b.actionSize, b.Actions)
}

func (b Batch) String() string {
	return fmt.Sprintf("Batch | Slots: %v  |  Rewards: %v  |  Terminals: %v",
		b.Slots, b.Rewards, b.Terminals)
}
