// Package pursuit implements a multi-agent gridworld where a team of
// hunters chases a randomly moving prey
package pursuit

import (
	"fmt"
	"io"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/samuelfneumann/griddqn/environment"
	"github.com/samuelfneumann/griddqn/environment/gridworld"
	"github.com/samuelfneumann/griddqn/rlerror"
	ts "github.com/samuelfneumann/griddqn/timestep"
)

const (
	captureReward  = 1.0
	timeStepReward = -0.01
)

type cell struct {
	row, col int
}

// Pursuit is a gridworld of r rows and c columns containing several
// hunters and a single prey. Each step, every hunter takes an action
// and the prey then moves uniformly randomly. The episode ends when a
// hunter shares a cell with the prey.
//
// The observation holds, for each hunter, the row and column offsets
// from the hunter to the prey. Actions are 0 (stay), 1 (up), 2 (right),
// 3 (down), and 4 (left).
type Pursuit struct {
	r, c    int
	hunters []cell
	prey    cell

	starter     environment.Starter
	preyMoves   distuv.Categorical
	capture     environment.Ender
	currentStep ts.TimeStep
	renderer    *gridworld.Renderer
}

// New returns a new Pursuit environment with the given number of
// hunters, rendering to out (stdout if nil)
func New(r, c, hunters int, seed uint64, out io.Writer) (*Pursuit, error) {
	if r < 2 || c < 2 {
		return nil, rlerror.Newf("new", rlerror.ErrInvalidConfiguration,
			"grid must have at least 2 rows and 2 columns, have(%d, %d)", r, c)
	}
	if hunters < 1 {
		return nil, rlerror.Newf("new", rlerror.ErrInvalidConfiguration,
			"must have at least 1 hunter, have(%d)", hunters)
	}

	// Hunters first, then the prey
	starter, err := environment.NewCellStarter(r, c, hunters+1, seed)
	if err != nil {
		return nil, err
	}

	moves := make([]float64, 5)
	for i := range moves {
		moves[i] = 1.0 / float64(len(moves))
	}

	p := &Pursuit{
		r:         r,
		c:         c,
		hunters:   make([]cell, hunters),
		starter:   starter,
		preyMoves: distuv.NewCategorical(moves, rand.NewSource(seed+1)),
		capture:   environment.NewFunctionEnder(captured),
		renderer:  gridworld.NewRenderer(out, true),
	}
	if _, err := p.Reset(); err != nil {
		return nil, err
	}
	return p, nil
}

// captured returns whether any hunter's offset to the prey is zero
func captured(obs *mat.VecDense) bool {
	for i := 0; i+1 < obs.Len(); i += 2 {
		if obs.AtVec(i) == 0 && obs.AtVec(i+1) == 0 {
			return true
		}
	}
	return false
}

// Reset places the hunters and the prey on distinct random cells
func (p *Pursuit) Reset() (ts.TimeStep, error) {
	start := p.starter.Start()
	for i := range p.hunters {
		p.hunters[i] = cell{int(start.AtVec(2 * i)), int(start.AtVec(2*i + 1))}
	}
	n := len(p.hunters)
	p.prey = cell{int(start.AtVec(2 * n)), int(start.AtVec(2*n + 1))}

	p.currentStep = ts.New(ts.First, 0, p.observation(), 0)
	return p.currentStep, nil
}

// Step moves each hunter by its action, then moves the prey
func (p *Pursuit) Step(action *mat.VecDense) (ts.TimeStep, bool, error) {
	if action.Len() != len(p.hunters) {
		return ts.TimeStep{}, false, rlerror.Newf("step",
			rlerror.ErrEnvironmentFailure, "expected %d actions, have(%d)",
			len(p.hunters), action.Len())
	}

	for i := range p.hunters {
		a := int(action.AtVec(i))
		if a < 0 || a >= p.NumActions() {
			return ts.TimeStep{}, false, rlerror.Newf("step",
				rlerror.ErrEnvironmentFailure, "action %d of hunter %d not in "+
					"[0, %d)", a, i, p.NumActions())
		}
		h := &p.hunters[i]
		h.row, h.col = gridworld.Move(h.row, h.col, direction(a), p.r, p.c)
	}

	step := ts.New(ts.Mid, timeStepReward, p.observation(),
		p.currentStep.Number+1)
	if !p.capture.End(&step) {
		preyMove := direction(int(p.preyMoves.Rand()))
		p.prey.row, p.prey.col = gridworld.Move(p.prey.row, p.prey.col,
			preyMove, p.r, p.c)
		step.Observation = p.observation()
		p.capture.End(&step)
	}

	if step.Last() {
		step.Reward = captureReward
	}
	p.currentStep = step

	return step, step.Last(), nil
}

// direction maps an action to a gridworld move, with action 0 being
// no move
func direction(a int) gridworld.Direction {
	if a == 0 {
		return gridworld.Stay
	}
	return gridworld.Direction(a - 1)
}

// Board returns the current frame of the environment
func (p *Pursuit) Board() *gridworld.Board {
	b := gridworld.NewBoard(p.r, p.c)
	b.Place(p.prey.row, p.prey.col, gridworld.Prey)
	for _, h := range p.hunters {
		b.Place(h.row, h.col, gridworld.Hunter)
	}
	return b
}

// Render draws the gridworld to the terminal
func (p *Pursuit) Render(animation bool) error {
	return p.renderer.Render(p.Board(), animation)
}

// SavePNG saves the current frame as a PNG image
func (p *Pursuit) SavePNG(path string, cellSize int) error {
	return p.Board().SavePNG(path, cellSize)
}

// NumStates returns the number of cells
func (p *Pursuit) NumStates() int {
	return p.r * p.c
}

// NumActions returns the number of moves available to each hunter
func (p *Pursuit) NumActions() int {
	return 5
}

// Agents returns the number of hunters
func (p *Pursuit) Agents() int {
	return len(p.hunters)
}

// ObservationSpec returns the observation specification of the
// environment
func (p *Pursuit) ObservationSpec() environment.Spec {
	bound := float64(p.r)
	if p.c > p.r {
		bound = float64(p.c)
	}
	return environment.NewDiscreteSpec(2*len(p.hunters),
		environment.Observation, -(bound - 1), bound-1)
}

// ActionSpec returns the action specification of the environment
func (p *Pursuit) ActionSpec() environment.Spec {
	return environment.NewDiscreteSpec(len(p.hunters), environment.Action, 0,
		float64(p.NumActions()-1))
}

// Hunter returns the (row, col) of hunter i
func (p *Pursuit) Hunter(i int) (int, int) {
	return p.hunters[i].row, p.hunters[i].col
}

// Prey returns the (row, col) of the prey
func (p *Pursuit) Prey() (int, int) {
	return p.prey.row, p.prey.col
}

// place moves the hunters and the prey to the argument cells
func (p *Pursuit) place(hunters []cell, prey cell) {
	copy(p.hunters, hunters)
	p.prey = prey
	p.currentStep = ts.New(ts.First, 0, p.observation(), 0)
}

func (p *Pursuit) String() string {
	return fmt.Sprintf("Pursuit | Hunters: %v  |  Prey: %v  |  Bounds: (%d, %d)",
		p.hunters, p.prey, p.r, p.c)
}

func (p *Pursuit) observation() *mat.VecDense {
	obs := make([]float64, 2*len(p.hunters))
	for i, h := range p.hunters {
		obs[2*i] = float64(p.prey.row - h.row)
		obs[2*i+1] = float64(p.prey.col - h.col)
	}
	return mat.NewVecDense(len(obs), obs)
}
