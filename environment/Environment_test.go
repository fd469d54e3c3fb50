package environment

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/griddqn/rlerror"
	ts "github.com/samuelfneumann/griddqn/timestep"
)

func TestStepLimit(t *testing.T) {
	limit := NewStepLimit(3)

	step := ts.New(ts.Mid, 0, nil, 2)
	require.False(t, limit.End(&step))
	require.True(t, step.Mid())

	step.Number = 3
	require.True(t, limit.End(&step))
	require.True(t, step.Last())

	unlimited := NewStepLimit(0)
	step = ts.New(ts.Mid, 0, nil, 1_000_000)
	require.False(t, unlimited.End(&step))
}

func TestCellStarter(t *testing.T) {
	starter, err := NewCellStarter(2, 3, 6, 42)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		start := starter.Start()
		require.Equal(t, 12, start.Len())

		seen := make(map[[2]float64]bool)
		for a := 0; a < 6; a++ {
			row, col := start.AtVec(2*a), start.AtVec(2*a+1)
			require.True(t, row >= 0 && row < 2)
			require.True(t, col >= 0 && col < 3)
			require.False(t, seen[[2]float64{row, col}], "shared cell")
			seen[[2]float64{row, col}] = true
		}
	}

	_, err = NewCellStarter(2, 2, 5, 1)
	require.True(t, rlerror.IsInvalidConfiguration(err))
	_, err = NewCellStarter(0, 2, 1, 1)
	require.True(t, rlerror.IsInvalidConfiguration(err))
}

func TestFunctionEnder(t *testing.T) {
	ender := NewFunctionEnder(func(v *mat.VecDense) bool {
		return v.AtVec(0) > 1
	})

	step := ts.New(ts.Mid, 0, mat.NewVecDense(1, []float64{1}), 1)
	require.False(t, ender.End(&step))

	step.Observation = mat.NewVecDense(1, []float64{2})
	require.True(t, ender.End(&step))
	require.True(t, step.Last())
}

func TestDiscreteSpec(t *testing.T) {
	spec := NewDiscreteSpec(2, Action, 0, 4)
	require.Equal(t, 2, spec.Len())
	require.Equal(t, Discrete, spec.Cardinality)
	require.Equal(t, 4.0, spec.UpperBound.AtVec(1))
	require.Equal(t, 5, spec.Values(1))

	spec = NewDiscreteSpec(1, Observation, 0, 9)
	require.Equal(t, 1, spec.Len())
	require.Equal(t, 10, spec.Values(0))
}
