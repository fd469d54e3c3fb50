// Package gridworld implements the cliff walking gridworld and the
// board rendering shared by all gridworld environments
package gridworld

import (
	"fmt"
	"io"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/griddqn/environment"
	"github.com/samuelfneumann/griddqn/rlerror"
	ts "github.com/samuelfneumann/griddqn/timestep"
)

// Direction is a move in a gridworld
type Direction int

const (
	Up Direction = iota
	Right
	Down
	Left
	Stay
)

// Move returns the cell reached by moving from (row, col) in direction
// d on a grid of r rows and c columns. Moves off the grid leave the
// position unchanged.
func Move(row, col int, d Direction, r, c int) (int, int) {
	switch d {
	case Up:
		if row > 0 {
			row--
		}
	case Right:
		if col < c-1 {
			col++
		}
	case Down:
		if row < r-1 {
			row++
		}
	case Left:
		if col > 0 {
			col--
		}
	}
	return row, col
}

// CliffWalking is a gridworld where the agent must walk from the
// bottom-left cell to the bottom-right cell without stepping into the
// cliff between them. Stepping into the cliff gives a large negative
// reward and returns the agent to the start without ending the
// episode.
//
// The state is the index row*cols + col of the agent's cell. Actions
// are 0 (up), 1 (right), 2 (down), and 3 (left).
type CliffWalking struct {
	*Cliff
	r, c        int
	position    int
	currentStep ts.TimeStep
	renderer    *Renderer
}

// New creates a new CliffWalking environment of r rows and c columns,
// rendering to out (stdout if nil)
func New(r, c int, out io.Writer) (*CliffWalking, error) {
	if r < 2 || c < 2 {
		return nil, rlerror.Newf("new", rlerror.ErrInvalidConfiguration,
			"gridworld must have at least 2 rows and 2 columns, have(%d, %d)",
			r, c)
	}

	g := &CliffWalking{
		Cliff:    NewCliff(r, c),
		r:        r,
		c:        c,
		renderer: NewRenderer(out, true),
	}
	if _, err := g.Reset(); err != nil {
		return nil, err
	}
	return g, nil
}

// Dims gets the rows and columns of the gridworld
func (g *CliffWalking) Dims() (r, c int) {
	return g.r, g.c
}

// Coordinates returns the (row, col) of the agent
func (g *CliffWalking) Coordinates() (int, int) {
	return g.position / g.c, g.position % g.c
}

// Position returns the state index of the agent
func (g *CliffWalking) Position() int {
	return g.position
}

// Reset moves the agent to the start and begins a new episode
func (g *CliffWalking) Reset() (ts.TimeStep, error) {
	row, col := g.Cliff.Start()
	g.position = row*g.c + col

	g.currentStep = ts.New(ts.First, 0, g.observation(), 0)
	return g.currentStep, nil
}

// Step takes one action in the environment
func (g *CliffWalking) Step(action *mat.VecDense) (ts.TimeStep, bool, error) {
	if action.Len() != 1 {
		return ts.TimeStep{}, false, rlerror.Newf("step",
			rlerror.ErrEnvironmentFailure, "expected 1 action, have(%d)",
			action.Len())
	}
	a := int(action.AtVec(0))
	if a < 0 || a >= g.NumActions() {
		return ts.TimeStep{}, false, rlerror.Newf("step",
			rlerror.ErrEnvironmentFailure, "action %d not in [0, %d)", a,
			g.NumActions())
	}

	row, col := g.Coordinates()
	row, col = Move(row, col, Direction(a), g.r, g.c)
	reward := g.GetReward(row, col)

	if g.IsCliff(row, col) {
		row, col = g.Cliff.Start()
	}
	g.position = row*g.c + col

	stepType := ts.Mid
	if g.AtGoal(row, col) {
		stepType = ts.Last
	}

	step := ts.New(stepType, reward, g.observation(), g.currentStep.Number+1)
	g.currentStep = step

	return step, stepType == ts.Last, nil
}

// Board returns the current frame of the environment
func (g *CliffWalking) Board() *Board {
	b := NewBoard(g.r, g.c)
	for col := 0; col < g.c; col++ {
		if g.IsCliff(g.r-1, col) {
			b.SetTerrain(g.r-1, col, CliffCell)
		}
	}
	startRow, startCol := g.Cliff.Start()
	b.SetTerrain(startRow, startCol, Start)
	b.SetTerrain(g.r-1, g.c-1, Goal)

	row, col := g.Coordinates()
	b.Place(row, col, Agent)
	return b
}

// Render draws the gridworld to the terminal
func (g *CliffWalking) Render(animation bool) error {
	return g.renderer.Render(g.Board(), animation)
}

// SavePNG saves the current frame as a PNG image
func (g *CliffWalking) SavePNG(path string, cellSize int) error {
	return g.Board().SavePNG(path, cellSize)
}

// NumStates returns the number of cells
func (g *CliffWalking) NumStates() int {
	return g.r * g.c
}

// NumActions returns the number of moves
func (g *CliffWalking) NumActions() int {
	return 4
}

// Agents returns 1
func (g *CliffWalking) Agents() int {
	return 1
}

// ObservationSpec returns the observation specification of the
// environment
func (g *CliffWalking) ObservationSpec() environment.Spec {
	return environment.NewDiscreteSpec(1, environment.Observation, 0,
		float64(g.NumStates()-1))
}

// ActionSpec returns the action specification of the environment
func (g *CliffWalking) ActionSpec() environment.Spec {
	return environment.NewDiscreteSpec(1, environment.Action, 0,
		float64(g.NumActions()-1))
}

func (g *CliffWalking) String() string {
	row, col := g.Coordinates()
	str := "CliffWalking | At: (%d, %d)  |  Bounds: (%d, %d)"

	return fmt.Sprintf(str, row, col, g.r, g.c)
}

func (g *CliffWalking) observation() *mat.VecDense {
	return mat.NewVecDense(1, []float64{float64(g.position)})
}
