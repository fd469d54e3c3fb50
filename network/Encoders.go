package network

import (
	"fmt"
	"math"
)

// Encoder turns a raw environment state into the features a network
// takes as input
type Encoder interface {
	// Features returns the number of encoded features per state
	Features() int

	// Encode writes the features of state into dst, which must have
	// length Features()
	Encode(state []float64, dst []float64) error
}

// cellIndex returns the cell index held in a single-element state
func cellIndex(state []float64, cells int) (int, error) {
	if len(state) != 1 {
		return 0, fmt.Errorf("encode: expected a state of 1 cell index, "+
			"have(%v)", len(state))
	}
	index := int(state[0])
	if float64(index) != state[0] || index < 0 || index >= cells {
		return 0, fmt.Errorf("encode: cell index %v not in [0, %v)",
			state[0], cells)
	}
	return index, nil
}

// OneHot encodes a cell index as a one-hot vector over all cells.
// Cell i sets feature i.
type OneHot struct {
	States int
}

func (o OneHot) Features() int {
	return o.States
}

func (o OneHot) Encode(state []float64, dst []float64) error {
	index, err := cellIndex(state, o.States)
	if err != nil {
		return err
	}
	for i := range dst {
		dst[i] = 0
	}
	dst[index] = 1
	return nil
}

// Coordinates encodes a cell index as its (row, col) on a grid, each
// scaled to [0, 1]
type Coordinates struct {
	Rows, Cols int
}

func (c Coordinates) Features() int {
	return 2
}

func (c Coordinates) Encode(state []float64, dst []float64) error {
	index, err := cellIndex(state, c.Rows*c.Cols)
	if err != nil {
		return err
	}
	dst[0] = float64(index/c.Cols) / math.Max(float64(c.Rows-1), 1)
	dst[1] = float64(index%c.Cols) / math.Max(float64(c.Cols-1), 1)
	return nil
}

// Raw passes a state of fixed length through unchanged
type Raw struct {
	Size int
}

func (i Raw) Features() int {
	return i.Size
}

func (i Raw) Encode(state []float64, dst []float64) error {
	if len(state) != i.Size {
		return fmt.Errorf("encode: expected a state of length %v, have(%v)",
			i.Size, len(state))
	}
	copy(dst, state)
	return nil
}

// encodeBatch encodes each state of a batch into a single row-major
// backing slice
func encodeBatch(e Encoder, states [][]float64) ([]float64, error) {
	features := e.Features()
	backing := make([]float64, len(states)*features)
	for i, state := range states {
		if err := e.Encode(state, backing[i*features:(i+1)*features]); err != nil {
			return nil, err
		}
	}
	return backing, nil
}
