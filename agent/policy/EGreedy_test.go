package policy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/samuelfneumann/griddqn/rlerror"
)

// fixedSource returns fixed draws
type fixedSource struct {
	u     float64
	index int
	calls int
}

func (f *fixedSource) Float64() float64 {
	f.calls++
	return f.u
}

func (f *fixedSource) Intn(n int) int {
	return f.index % n
}

func TestScheduleEpsilon(t *testing.T) {
	s := Schedule{Start: 0.9, End: 0.05, Decay: 200}
	require.InDelta(t, 0.9, s.Epsilon(0), 1e-12)
	require.InDelta(t, 0.05+0.85*math.Exp(-1), s.Epsilon(200), 1e-12)

	prev := s.Epsilon(0)
	for step := 1; step < 5000; step += 7 {
		eps := s.Epsilon(step)
		require.LessOrEqual(t, eps, prev)
		require.GreaterOrEqual(t, eps, s.End)
		prev = eps
	}
	require.InDelta(t, 0.05, s.Epsilon(100000), 1e-9)
}

func TestScheduleValidate(t *testing.T) {
	require.NoError(t, Schedule{0.9, 0.05, 200}.Validate())
	require.True(t, rlerror.IsInvalidConfiguration(Schedule{0.9, 0.05, 0}.Validate()))
	require.True(t, rlerror.IsInvalidConfiguration(Schedule{1.5, 0.05, 1}.Validate()))
	require.True(t, rlerror.IsInvalidConfiguration(Schedule{0.5, -1, 1}.Validate()))
}

func TestSelectActionGreedy(t *testing.T) {
	src := &fixedSource{u: 0.99, index: 3}
	e, err := NewEGreedy(Schedule{0.9, 0.05, 200}, src)
	require.NoError(t, err)

	action, next := e.SelectAction([]float64{0.1, 0.5, 0.2, 0.0}, 0)
	require.Equal(t, 1, action)
	require.Equal(t, 1, next)
}

func TestSelectActionExplore(t *testing.T) {
	src := &fixedSource{u: 0.5, index: 3}
	e, err := NewEGreedy(Schedule{0.9, 0.05, 200}, src)
	require.NoError(t, err)

	// eps(0) = 0.9 > 0.5
	action, next := e.SelectAction([]float64{0.1, 0.5, 0.2, 0.0}, 0)
	require.Equal(t, 3, action)
	require.Equal(t, 1, next)

	// eps(100000) ~ 0.05 < 0.5
	action, next = e.SelectAction([]float64{0.1, 0.5, 0.2, 0.0}, 100000)
	require.Equal(t, 1, action)
	require.Equal(t, 100001, next)
}

func TestCounterAdvancesEveryCall(t *testing.T) {
	e, err := NewSeededEGreedy(Schedule{0.9, 0.05, 200}, 1)
	require.NoError(t, err)

	step := 0
	for i := 0; i < 50; i++ {
		_, step = e.SelectAction([]float64{1, 2}, step)
	}
	require.Equal(t, 50, step)

	_, step = e.SelectActions([][]float64{{1, 2}, {3, 4}}, step)
	require.Equal(t, 51, step)
}

func TestArgmaxTies(t *testing.T) {
	require.Equal(t, 1, Argmax([]float64{0, 2, 2, 1}))
	require.Equal(t, 0, Argmax([]float64{3, 3, 3}))
	require.Equal(t, 2, Argmax([]float64{-5, -4, -1}))
}

func TestSelectActionsMultiAgent(t *testing.T) {
	values := [][]float64{{0, 1, 0}, {2, 0, 0}}

	greedy := &fixedSource{u: 0.99, index: 2}
	e, err := NewEGreedy(Schedule{0.5, 0.5, 1}, greedy)
	require.NoError(t, err)
	actions, _ := e.SelectActions(values, 0)
	require.Equal(t, []int{1, 0}, actions)
	require.Equal(t, 1, greedy.calls)

	explore := &fixedSource{u: 0.1, index: 2}
	e, err = NewEGreedy(Schedule{0.5, 0.5, 1}, explore)
	require.NoError(t, err)
	actions, _ = e.SelectActions(values, 0)
	require.Equal(t, []int{2, 2}, actions)
}

func TestExplorationIsUniform(t *testing.T) {
	e, err := NewSeededEGreedy(Schedule{1, 1, 1}, 7)
	require.NoError(t, err)

	const n = 40000
	counts := make([]int, 4)
	for i := 0; i < n; i++ {
		action, _ := e.SelectAction([]float64{0, 0, 9, 0}, i)
		counts[action]++
	}
	for _, c := range counts {
		require.InDelta(t, n/4, c, n*0.02)
	}
}
