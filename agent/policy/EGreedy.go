package policy

import (
	"golang.org/x/exp/rand"
)

// Source is a source of uniform random numbers
type Source interface {
	// Float64 returns a number in [0, 1)
	Float64() float64

	// Intn returns an integer in [0, n)
	Intn(n int) int
}

// EGreedy selects the greedy action with probability 1 - Epsilon(t)
// and a uniformly random action otherwise
type EGreedy struct {
	Schedule
	src Source
}

// NewEGreedy returns a new EGreedy selector drawing from src
func NewEGreedy(s Schedule, src Source) (*EGreedy, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &EGreedy{Schedule: s, src: src}, nil
}

// NewSeededEGreedy returns a new EGreedy selector with a seeded source
func NewSeededEGreedy(s Schedule, seed uint64) (*EGreedy, error) {
	return NewEGreedy(s, rand.New(rand.NewSource(seed)))
}

// SelectAction selects an action given the action values of a single
// agent at step t. It returns the action and t+1.
func (e *EGreedy) SelectAction(values []float64, t int) (int, int) {
	if e.src.Float64() > e.Epsilon(t) {
		return Argmax(values), t + 1
	}
	return e.src.Intn(len(values)), t + 1
}

// SelectActions selects one action per agent at step t. A single draw
// decides whether every agent acts greedily or every agent acts
// uniformly randomly. It returns the actions and t+1.
func (e *EGreedy) SelectActions(values [][]float64, t int) ([]int, int) {
	actions := make([]int, len(values))
	greedy := e.src.Float64() > e.Epsilon(t)
	for i := range values {
		if greedy {
			actions[i] = Argmax(values[i])
		} else {
			actions[i] = e.src.Intn(len(values[i]))
		}
	}
	return actions, t + 1
}

// Argmax returns the first index of the maximum of values
func Argmax(values []float64) int {
	max := 0
	for i := range values {
		if values[i] > values[max] {
			max = i
		}
	}
	return max
}
