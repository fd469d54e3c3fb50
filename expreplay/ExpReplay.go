// Package expreplay implements a fixed-capacity experience replay
// memory from which batches of transitions can be sampled
package expreplay

import (
	"fmt"
	"unsafe"

	"github.com/c2h5oh/datasize"
	"github.com/samuelfneumann/griddqn/rlerror"
	"github.com/samuelfneumann/griddqn/timestep"
)

// ReplayMemory is a ring buffer of transitions. Once the memory is at
// capacity, each Push overwrites the oldest transition.
//
// A ReplayMemory is not safe for concurrent use.
type ReplayMemory struct {
	transitions     []timestep.Transition
	capacity        int
	currentInUsePos int
	isFull          bool

	// Outlines how data is sampled
	sampler Selector
}

// New returns a new ReplayMemory that holds at most capacity
// transitions and samples them with sampler. If sampler is nil, a
// uniform selector seeded with 0 is used.
func New(capacity int, sampler Selector) (*ReplayMemory, error) {
	if capacity <= 0 {
		return nil, rlerror.Newf("new", rlerror.ErrInvalidConfiguration,
			"capacity must be > 0, have(%v)", capacity)
	}
	if sampler == nil {
		sampler = NewUniformSelector(0)
	}

	return &ReplayMemory{
		transitions: make([]timestep.Transition, 0, capacity),
		capacity:    capacity,
		sampler:     sampler,
	}, nil
}

// Push stores a deep copy of t, overwriting the oldest transition if
// the memory is full
func (r *ReplayMemory) Push(t timestep.Transition) {
	t = t.Clone()
	if !r.isFull {
		r.transitions = append(r.transitions, t)
	} else {
		r.transitions[r.currentInUsePos] = t
	}

	r.currentInUsePos = (r.currentInUsePos + 1) % r.capacity
	if !r.isFull && r.currentInUsePos == 0 {
		r.isFull = true
	}
}

// Sample returns copies of batchSize distinct stored transitions. The
// contents and order of the memory are not changed.
func (r *ReplayMemory) Sample(batchSize int) ([]timestep.Transition, error) {
	if batchSize <= 0 {
		return nil, rlerror.Newf("sample", rlerror.ErrInvalidConfiguration,
			"batch size must be > 0, have(%v)", batchSize)
	}
	if batchSize > r.Len() {
		return nil, rlerror.Newf("sample", rlerror.ErrInsufficientData,
			"cannot sample %v transitions from a memory holding %v",
			batchSize, r.Len())
	}

	indices := r.sampler.choose(r, batchSize)
	batch := make([]timestep.Transition, len(indices))
	for i, index := range indices {
		batch[i] = r.transitions[index].Clone()
	}
	return batch, nil
}

// Len returns the number of transitions currently stored
func (r *ReplayMemory) Len() int {
	return len(r.transitions)
}

// Capacity returns the maximum number of transitions stored
func (r *ReplayMemory) Capacity() int {
	return r.capacity
}

// insertOrder returns the slot indices ordered from the oldest
// insertion to the newest
func (r *ReplayMemory) insertOrder() []int {
	order := make([]int, r.Len())
	start := 0
	if r.isFull {
		start = r.currentInUsePos
	}
	for i := range order {
		order[i] = (start + i) % r.Len()
	}
	return order
}

// Footprint approximates the memory held by the stored transitions
func (r *ReplayMemory) Footprint() datasize.ByteSize {
	var bytes uintptr
	for _, t := range r.transitions {
		bytes += unsafe.Sizeof(t)
		bytes += uintptr(len(t.State)) * unsafe.Sizeof(float64(0))
		bytes += uintptr(len(t.Action)) * unsafe.Sizeof(int(0))
		if next, ok := t.Next.State(); ok {
			bytes += uintptr(len(next)) * unsafe.Sizeof(float64(0))
		}
	}
	return datasize.ByteSize(bytes)
}

// String returns the string representation of the ReplayMemory
func (r *ReplayMemory) String() string {
	return fmt.Sprintf("ReplayMemory | Len: %v  |  Capacity: %v  |  "+
		"Cursor: %v  |  Footprint: %v", r.Len(), r.capacity,
		r.currentInUsePos, r.Footprint().HumanReadable())
}
