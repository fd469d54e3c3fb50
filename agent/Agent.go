// Package agent defines the agent interfaces shared by the learners
package agent

import (
	"github.com/samuelfneumann/griddqn/timestep"
)

// Agent determines the implementation details of an agent or algorithm
//
// An Agent is composed of a Learner, which learns weights, and a Policy
// which chooses actions in each state. The Policy chooses which actions
// are taken, and the Learner uses these actions to update the Policy.
type Agent interface {
	Learner
	Policy

	// Close releases the resources held by the agent's machines
	Close() error
}

// Learner implements a learning algorithm that defines how weights are
// updated.
type Learner interface {
	// Observe records a transition produced by the policy's action
	Observe(t timestep.Transition) error

	// Step performs a single update to the learner if enough data has
	// been observed. It returns the loss of the update and whether an
	// update was made.
	Step() (float64, bool, error)

	// EndEpisode performs cleanup at the end of an episode
	EndEpisode() error
}

// Policy represents a policy that an agent can have.
//
// The step counter t is owned by the caller. SelectAction returns the
// actions for each agent and the counter to use on the next call.
type Policy interface {
	SelectAction(state []float64, t int) ([]int, int, error)

	// Greedy returns the highest-valued actions without exploration
	Greedy(state []float64) ([]int, error)
}

// Config represents a configuration for creating an agent
type Config interface {
	// Validate returns an error describing whether or not the
	// configuration is valid or not.
	Validate() error
}
