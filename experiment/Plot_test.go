package experiment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/samuelfneumann/griddqn/rlerror"
)

func TestMovingAverage(t *testing.T) {
	avg := MovingAverage([]float64{2, 4, 6, 8}, 2)
	require.Equal(t, []float64{2, 3, 5, 7}, avg)
}

func TestPlotReturns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "curve.png")
	require.NoError(t, PlotReturns([]float64{-100, -50, -20, -13}, 2, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))

	err = PlotReturns(nil, 2, path)
	require.True(t, rlerror.IsInsufficientData(err))
}
