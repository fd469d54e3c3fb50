package gridworld

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/logrusorgru/aurora"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/griddqn/rlerror"
)

func act(a int) *mat.VecDense {
	return mat.NewVecDense(1, []float64{float64(a)})
}

func TestCliffWalkingStart(t *testing.T) {
	g, err := New(4, 6, &bytes.Buffer{})
	require.NoError(t, err)

	step, err := g.Reset()
	require.NoError(t, err)
	require.True(t, step.First())
	require.Equal(t, []float64{18}, step.State())
	require.Equal(t, 24, g.NumStates())
	require.Equal(t, 4, g.NumActions())
	require.Equal(t, 1, g.Agents())
	require.Equal(t, 1, g.ActionSpec().Len())
	require.Equal(t, 4, g.ActionSpec().Values(0))
	require.Equal(t, 24, g.ObservationSpec().Values(0))
}

func TestCliffWalkingFall(t *testing.T) {
	g, err := New(4, 6, &bytes.Buffer{})
	require.NoError(t, err)

	step, done, err := g.Step(act(int(Right)))
	require.NoError(t, err)
	require.False(t, done)
	require.Equal(t, -100.0, step.Reward)
	require.Equal(t, []float64{18}, step.State())
	require.Equal(t, 1, step.Number)
}

func TestCliffWalkingGoal(t *testing.T) {
	g, err := New(4, 6, &bytes.Buffer{})
	require.NoError(t, err)

	moves := []Direction{Up, Right, Right, Right, Right, Right, Down}
	var total float64
	var done bool
	for i, m := range moves {
		step, d, err := g.Step(act(int(m)))
		require.NoError(t, err)
		total += step.Reward
		done = d
		if i < len(moves)-1 {
			require.False(t, done)
		} else {
			require.True(t, step.Last())
		}
	}
	require.True(t, done)
	require.Equal(t, -7.0, total)
	require.Equal(t, 23, g.Position())
}

func TestCliffWalkingWalls(t *testing.T) {
	g, err := New(3, 3, &bytes.Buffer{})
	require.NoError(t, err)

	step, _, err := g.Step(act(int(Left)))
	require.NoError(t, err)
	require.Equal(t, -1.0, step.Reward)
	require.Equal(t, []float64{6}, step.State())

	step, _, err = g.Step(act(int(Down)))
	require.NoError(t, err)
	require.Equal(t, []float64{6}, step.State())
}

func TestCliffWalkingInvalid(t *testing.T) {
	_, err := New(1, 5, nil)
	require.True(t, rlerror.IsInvalidConfiguration(err))

	g, err := New(3, 3, &bytes.Buffer{})
	require.NoError(t, err)
	_, _, err = g.Step(act(7))
	require.True(t, rlerror.IsEnvironmentFailure(err))
	_, _, err = g.Step(mat.NewVecDense(2, nil))
	require.True(t, rlerror.IsEnvironmentFailure(err))
}

func TestBoardText(t *testing.T) {
	g, err := New(3, 4, &bytes.Buffer{})
	require.NoError(t, err)

	text := g.Board().Text(aurora.NewAurora(false))
	require.Equal(t, "o o o o\no o o o\nx C C T\n", text)
}

func TestRender(t *testing.T) {
	var out bytes.Buffer
	g, err := New(3, 3, &out)
	require.NoError(t, err)

	require.NoError(t, g.Render(false))
	require.Contains(t, out.String(), "T")

	out.Reset()
	require.NoError(t, g.Render(true))
	require.NotEmpty(t, out.String())
}

func TestSavePNG(t *testing.T) {
	g, err := New(4, 5, &bytes.Buffer{})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "frame.png")
	require.NoError(t, g.SavePNG(path, 10))
	require.FileExists(t, path)

	img := g.Board().Draw(10).Image()
	require.Equal(t, 50, img.Bounds().Dx())
	require.Equal(t, 40, img.Bounds().Dy())
}
