// Package environment outlines the interfaces and structs needed to
// implement concrete gridworld environments
package environment

import (
	"gonum.org/v1/gonum/mat"

	ts "github.com/samuelfneumann/griddqn/timestep"
)

// Starter implements a distribution of starting states and samples
// starting states for environments
type Starter interface {
	Start() *mat.VecDense
}

// Ender determines when episodes should end. If an Ender ends an
// episode, it sets the StepType of the argument TimeStep to Last.
type Ender interface {
	End(*ts.TimeStep) bool
}

// Environment implements a simulated discrete gridworld. Observations
// are raw states: the index of a cell for single-agent environments,
// and per-agent features for multi-agent environments. Actions hold
// one discrete action per agent.
type Environment interface {
	// Reset starts a new episode and returns its first step
	Reset() (ts.TimeStep, error)

	// Step takes one action per agent and returns the next step and
	// whether the episode is done
	Step(action *mat.VecDense) (ts.TimeStep, bool, error)

	// Render draws the current state of the environment. If animation
	// is true, successive frames overwrite each other.
	Render(animation bool) error

	// NumStates returns the number of discrete states (nS)
	NumStates() int

	// NumActions returns the number of actions available to each
	// agent (nA)
	NumActions() int

	// Agents returns the number of agents acting in the environment
	Agents() int

	ObservationSpec() Spec
	ActionSpec() Spec
}
