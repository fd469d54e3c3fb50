package timestep

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestNext(t *testing.T) {
	var zero Next
	require.True(t, zero.IsTerminal())
	require.True(t, Terminal().IsTerminal())

	next := Continue([]float64{1, 2})
	require.False(t, next.IsTerminal())
	state, ok := next.State()
	require.True(t, ok)
	require.Equal(t, []float64{1, 2}, state)

	_, ok = Terminal().State()
	require.False(t, ok)
}

func TestNewTransitionCopies(t *testing.T) {
	state := []float64{3}
	action := []int{1}
	next := []float64{4}
	tr := NewTransition(state, action, Continue(next), -1)

	state[0], action[0], next[0] = 0, 0, 0
	require.Equal(t, []float64{3}, tr.State)
	require.Equal(t, []int{1}, tr.Action)
	s, _ := tr.Next.State()
	require.Equal(t, []float64{4}, s)
}

func TestTimeStepState(t *testing.T) {
	step := New(First, 0, mat.NewVecDense(2, []float64{5, 6}), 0)
	require.True(t, step.First())
	require.False(t, step.Last())

	state := step.State()
	state[0] = 1
	require.Equal(t, 5.0, step.Observation.AtVec(0))
}
