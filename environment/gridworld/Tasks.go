package gridworld

import "fmt"

// Cliff represents the task of walking along the bottom row of a
// gridworld without falling off the cliff between the start and the
// goal. The start is the bottom-left cell, the goal is the
// bottom-right cell, and every bottom-row cell between them is cliff.
type Cliff struct {
	r, c           int
	timeStepReward float64
	cliffReward    float64
}

// NewCliff returns a new Cliff task for a gridworld of r rows and c
// columns
func NewCliff(r, c int) *Cliff {
	return &Cliff{r: r, c: c, timeStepReward: -1.0, cliffReward: -100.0}
}

// Start returns the (row, col) of the starting cell
func (t *Cliff) Start() (int, int) {
	return t.r - 1, 0
}

// IsCliff returns whether (row, col) is a cliff cell
func (t *Cliff) IsCliff(row, col int) bool {
	return row == t.r-1 && col > 0 && col < t.c-1
}

// AtGoal returns whether (row, col) is the goal cell
func (t *Cliff) AtGoal(row, col int) bool {
	return row == t.r-1 && col == t.c-1
}

// GetReward returns the reward for entering (row, col)
func (t *Cliff) GetReward(row, col int) float64 {
	if t.IsCliff(row, col) {
		return t.cliffReward
	}
	return t.timeStepReward
}

func (t *Cliff) String() string {
	return fmt.Sprintf("Cliff | Start: (%d, 0)  |  Goal: (%d, %d)  |  "+
		"Step Reward: %v  |  Cliff Reward: %v", t.r-1, t.r-1, t.c-1,
		t.timeStepReward, t.cliffReward)
}
