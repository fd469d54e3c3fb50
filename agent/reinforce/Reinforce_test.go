package reinforce

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	G "gorgonia.org/gorgonia"

	"github.com/samuelfneumann/griddqn/network"
	"github.com/samuelfneumann/griddqn/rlerror"
	"github.com/samuelfneumann/griddqn/solver"
	"github.com/samuelfneumann/griddqn/timestep"
)

func newAgent(t *testing.T, states, actions int) *Reinforce {
	net, err := network.NewActorCritic(G.NewGraph(), states, 8, actions, 1,
		G.GlorotU(1), 5)
	require.NoError(t, err)
	s, err := solver.NewVanilla(0.1, 0, -1)
	require.NoError(t, err)

	r, err := New(net, Config{Gamma: 0.9, Solver: s}, zerolog.Nop())
	require.NoError(t, err)
	return r
}

func TestReturns(t *testing.T) {
	require.Equal(t, []float64{1.75, 1.5, 1}, Returns([]float64{1, 1, 1}, 0.5))
	require.Empty(t, Returns(nil, 0.5))
}

func TestConfigValidate(t *testing.T) {
	s, err := solver.NewVanilla(0.1, 0, -1)
	require.NoError(t, err)

	require.NoError(t, Config{Gamma: 0.99, Solver: s}.Validate())
	require.True(t, rlerror.IsInvalidConfiguration(
		Config{Gamma: -1, Solver: s}.Validate()))
	require.True(t, rlerror.IsInvalidConfiguration(
		Config{Gamma: 0.5}.Validate()))
}

func TestUpdateAtTermination(t *testing.T) {
	r := newAgent(t, 4, 3)
	defer r.Close()

	state := []float64{0}
	for i := 0; i < 3; i++ {
		actions, _, err := r.SelectAction(state, i)
		require.NoError(t, err)
		next := timestep.Continue([]float64{float64(i + 1)})
		if i == 2 {
			next = timestep.Terminal()
		}
		require.NoError(t, r.Observe(timestep.NewTransition(state, actions,
			next, -1)))
		state, _ = next.State()

		_, updated, err := r.Step()
		require.NoError(t, err)
		require.Equal(t, i == 2, updated)
	}
	require.Equal(t, 1, r.Updates())

	// Nothing left to learn from
	require.NoError(t, r.EndEpisode())
	require.Equal(t, 1, r.Updates())
}

func TestUpdateTruncatedEpisode(t *testing.T) {
	r := newAgent(t, 4, 3)
	defer r.Close()

	actions, next, err := r.SelectAction([]float64{1}, 7)
	require.NoError(t, err)
	require.Equal(t, 8, next)
	require.NoError(t, r.Observe(timestep.NewTransition([]float64{1},
		actions, timestep.Continue([]float64{2}), -1)))

	_, updated, err := r.Step()
	require.NoError(t, err)
	require.False(t, updated)

	require.NoError(t, r.EndEpisode())
	require.Equal(t, 1, r.Updates())
}

func TestObserveRejectsMultipleActions(t *testing.T) {
	r := newAgent(t, 4, 3)
	defer r.Close()

	err := r.Observe(timestep.NewTransition([]float64{0}, []int{0, 1},
		timestep.Terminal(), 0))
	require.True(t, rlerror.IsInvalidConfiguration(err))
}

func TestLearnsBandit(t *testing.T) {
	r := newAgent(t, 1, 2)
	defer r.Close()

	state := []float64{0}
	for episode := 0; episode < 500; episode++ {
		actions, _, err := r.SelectAction(state, episode)
		require.NoError(t, err)
		reward := float64(actions[0])
		require.NoError(t, r.Observe(timestep.NewTransition(state, actions,
			timestep.Terminal(), reward)))
		_, updated, err := r.Step()
		require.NoError(t, err)
		require.True(t, updated)
	}

	probs, _, err := r.Network().Forward(state)
	require.NoError(t, err)
	require.Greater(t, probs[1], 0.6)

	greedy, err := r.Greedy(state)
	require.NoError(t, err)
	require.Equal(t, []int{1}, greedy)
}
