// Package timestep holds the observations an environment emits and the
// transitions between them which are stored in replay memory.
package timestep

import "gonum.org/v1/gonum/mat"

// StepType tells where in its episode a TimeStep lies
type StepType int

const (
	First StepType = iota
	Mid
	Last
)

func (s StepType) String() string {
	switch s {
	case First:
		return "First"
	case Last:
		return "Last"
	default:
		return "Mid"
	}
}

// TimeStep is the observation of an environment after an action,
// together with the reward received for reaching it and the discount
// applied to what follows. Number counts the steps of the episode.
type TimeStep struct {
	stepType    StepType
	Reward      float64
	Discount    float64
	Observation mat.Vector
	Number      int
}

// New returns the TimeStep numbered n of an episode
func New(t StepType, reward, discount float64, obs mat.Vector,
	n int) TimeStep {
	return TimeStep{
		stepType:    t,
		Reward:      reward,
		Discount:    discount,
		Observation: obs,
		Number:      n,
	}
}

// StepType returns where in its episode the TimeStep lies
func (t TimeStep) StepType() StepType { return t.stepType }

// First reports whether the TimeStep starts an episode
func (t TimeStep) First() bool { return t.stepType == First }

// Mid reports whether the TimeStep neither starts nor ends an episode
func (t TimeStep) Mid() bool { return t.stepType == Mid }

// Last reports whether the TimeStep ends an episode
func (t TimeStep) Last() bool { return t.stepType == Last }

// Transition is the experience of one action: the state it was taken
// in, the reward and discount it led to and the next state. NextAction
// is nil until the action in the next state is chosen.
type Transition struct {
	State      mat.Vector
	Action     mat.Vector
	Reward     float64
	Discount   float64
	NextState  mat.Vector
	NextAction mat.Vector
	Last       bool
}

// NewTransition joins the TimeStep an action was taken in with the
// TimeStep the action led to
func NewTransition(step TimeStep, action mat.Vector, next TimeStep,
	nextAction mat.Vector) Transition {
	return Transition{
		State:      step.Observation,
		Action:     action,
		Reward:     next.Reward,
		Discount:   next.Discount,
		NextState:  next.Observation,
		NextAction: nextAction,
		Last:       next.Last(),
	}
}

// Terminal reports whether the episode ended in a terminal state,
// whose value is zero
func (t Transition) Terminal() bool {
	return t.Last && t.Discount == 0
}

// Truncated reports whether the episode was cut short, for example by
// a timestep limit, so the value of NextState is still defined
func (t Transition) Truncated() bool {
	return t.Last && t.Discount != 0
}
