package environment

import (
	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/samuelfneumann/griddqn/rlerror"
)

// CellStarter places a number of agents on distinct cells of a grid,
// with every placement equally likely. The starting state holds the
// (row, col) of each agent in turn.
type CellStarter struct {
	rows, cols int
	agents     int
	cells      distuv.Categorical
}

// NewCellStarter returns a new CellStarter placing agents on a grid
// of the given rows and columns
func NewCellStarter(rows, cols, agents int, seed uint64) (*CellStarter,
	error) {
	if rows <= 0 || cols <= 0 {
		return nil, rlerror.Newf("newCellStarter",
			rlerror.ErrInvalidConfiguration,
			"grid must be non-empty, have(%d, %d)", rows, cols)
	}
	if agents <= 0 || agents > rows*cols {
		return nil, rlerror.Newf("newCellStarter",
			rlerror.ErrInvalidConfiguration,
			"cannot place %d agents on %d cells", agents, rows*cols)
	}

	weights := make([]float64, rows*cols)
	for i := range weights {
		weights[i] = 1
	}
	cells := distuv.NewCategorical(weights, rand.NewSource(seed))

	return &CellStarter{rows: rows, cols: cols, agents: agents, cells: cells}, nil
}

// Start returns a starting state vector of length 2 * agents
func (c *CellStarter) Start() *mat.VecDense {
	start := make([]float64, 2*c.agents)
	taken := make([]int, c.agents)
	for i := range taken {
		taken[i] = int(c.cells.Rand())
		c.cells.Reweight(taken[i], 0)
		start[2*i] = float64(taken[i] / c.cols)
		start[2*i+1] = float64(taken[i] % c.cols)
	}

	for _, cell := range taken {
		c.cells.Reweight(cell, 1)
	}
	return mat.NewVecDense(len(start), start)
}
