package expreplay

import (
	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/griddqn/rlerror"
)

// SelectorType names a Selector
type SelectorType string

const (
	Uniform SelectorType = "uniform"
	Fifo    SelectorType = "fifo"
)

// NewSelector returns the Selector of the given type. The seed is
// only used by random selectors. An empty type selects Uniform.
func NewSelector(t SelectorType, seed uint64) (Selector, error) {
	switch t {
	case Uniform, "":
		return NewUniformSelector(seed), nil
	case Fifo:
		return NewFifoSelector(), nil
	}
	return nil, rlerror.Newf("newSelector", rlerror.ErrInvalidConfiguration,
		"unknown selector %q", t)
}

// Selector implements functionality for choosing which slots of a
// ReplayMemory should be sampled
type Selector interface {
	// choose selects n distinct slot indices of r
	choose(r *ReplayMemory, n int) []int
}

// uniformSelector is a Selector which selects slots uniformly
// randomly without replacement
type uniformSelector struct {
	rng     *rand.Rand
	scratch []int
}

// NewUniformSelector returns a new Selector which selects data uniformly
// randomly, without replacement, from a replay memory
func NewUniformSelector(seed uint64) Selector {
	source := rand.NewSource(seed)
	return &uniformSelector{rng: rand.New(source)}
}

// choose performs a partial Fisher-Yates shuffle over the stored
// slots and returns the first n
func (u *uniformSelector) choose(r *ReplayMemory, n int) []int {
	size := r.Len()
	if cap(u.scratch) < size {
		u.scratch = make([]int, size)
	}
	u.scratch = u.scratch[:size]
	for i := range u.scratch {
		u.scratch[i] = i
	}

	for i := 0; i < n; i++ {
		j := i + u.rng.Intn(size-i)
		u.scratch[i], u.scratch[j] = u.scratch[j], u.scratch[i]
	}

	selected := make([]int, n)
	copy(selected, u.scratch[:n])
	return selected
}

// fifoSelector is a Selector which selects the oldest stored slots
type fifoSelector struct{}

// NewFifoSelector returns a new Selector which draws the oldest data
// from a replay memory, in insertion order. Batches drawn this way are
// deterministic and strongly correlated.
func NewFifoSelector() Selector {
	return fifoSelector{}
}

// choose selects the n oldest slots
func (fifoSelector) choose(r *ReplayMemory, n int) []int {
	return r.insertOrder()[:n]
}
