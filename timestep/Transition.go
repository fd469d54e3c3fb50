package timestep

import "fmt"

// Next holds what followed an action: either the next state or the
// end of the episode. The zero value is Terminal.
type Next struct {
	state    []float64
	terminal bool
	set      bool
}

// Continue returns a Next holding state. The slice is not copied.
func Continue(state []float64) Next {
	return Next{state: state, set: true}
}

// Terminal returns a Next that marks the end of an episode
func Terminal() Next {
	return Next{terminal: true, set: true}
}

// IsTerminal returns whether the transition ended the episode
func (n Next) IsTerminal() bool {
	return n.terminal || !n.set
}

// State returns the next state and true, or nil and false if n is
// terminal
func (n Next) State() ([]float64, bool) {
	if n.IsTerminal() {
		return nil, false
	}
	return n.state, true
}

func (n Next) clone() Next {
	if n.IsTerminal() {
		return Terminal()
	}
	return Continue(append([]float64(nil), n.state...))
}

func (n Next) String() string {
	if n.IsTerminal() {
		return "Terminal"
	}
	return fmt.Sprintf("%v", n.state)
}

// Transition is a single (state, action, next, reward) experience.
// Action holds one discrete action per agent.
type Transition struct {
	State  []float64
	Action []int
	Next   Next
	Reward float64
}

// NewTransition returns a Transition built from deep copies of its
// arguments
func NewTransition(state []float64, action []int, next Next,
	reward float64) Transition {
	return Transition{
		State:  append([]float64(nil), state...),
		Action: append([]int(nil), action...),
		Next:   next.clone(),
		Reward: reward,
	}
}

// Clone returns a deep copy of t
func (t Transition) Clone() Transition {
	return NewTransition(t.State, t.Action, t.Next, t.Reward)
}

func (t Transition) String() string {
	return fmt.Sprintf("Transition | State: %v  |  Action: %v  |  Next: %v  "+
		"|  Reward: %.2f", t.State, t.Action, t.Next, t.Reward)
}
