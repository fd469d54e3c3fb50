package trackers

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/griddqn/experiment/tracker"
	ts "github.com/samuelfneumann/griddqn/timestep"
)

func episode(rewards ...float64) []ts.TimeStep {
	obs := mat.NewVecDense(1, nil)
	steps := []ts.TimeStep{ts.New(ts.First, 0, obs, 0)}
	for i, r := range rewards {
		kind := ts.Mid
		if i == len(rewards)-1 {
			kind = ts.Last
		}
		steps = append(steps, ts.New(kind, r, obs, i+1))
	}
	return steps
}

func TestReturnAndLength(t *testing.T) {
	dir := t.TempDir()
	ret := NewReturn(filepath.Join(dir, "returns.bin"))
	length := NewEpisodeLength(filepath.Join(dir, "lengths.bin"))

	for _, steps := range [][]ts.TimeStep{episode(-1, -1, -1),
		episode(-100, -1)} {
		for _, s := range steps {
			ret.Track(s)
			length.Track(s)
		}
	}
	// An unfinished episode is not recorded
	for _, s := range episode(-1, -1)[:2] {
		ret.Track(s)
		length.Track(s)
	}

	require.Equal(t, []float64{-3, -101}, ret.Returns())
	require.Equal(t, []float64{3, 2}, length.Lengths())

	require.NoError(t, ret.Save())
	saved, err := tracker.LoadData(filepath.Join(dir, "returns.bin"))
	require.NoError(t, err)
	require.Equal(t, []float64{-3, -101}, saved)

	require.NoError(t, length.Save())
}
