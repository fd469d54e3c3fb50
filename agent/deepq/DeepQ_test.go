package deepq

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/samuelfneumann/griddqn/agent/policy"
	"github.com/samuelfneumann/griddqn/expreplay"
	"github.com/samuelfneumann/griddqn/network"
	"github.com/samuelfneumann/griddqn/rlerror"
	"github.com/samuelfneumann/griddqn/solver"
	"github.com/samuelfneumann/griddqn/timestep"
)

func config(t testing.TB, batch int) Config {
	s, err := solver.NewVanilla(0.1, 0, -1)
	require.NoError(t, err)
	return Config{
		Gamma:                0.99,
		BatchSize:            batch,
		Capacity:             100,
		Epsilon:              policy.Schedule{Start: 0.9, End: 0.05, Decay: 200},
		TargetUpdateInterval: 1,
		Tau:                  1,
		Solver:               s,
		Seed:                 3,
	}
}

func linear(t testing.TB, states, actions int) network.QNetwork {
	net, err := network.NewLinear(G.NewGraph(), states, actions, 1,
		G.GlorotU(1))
	require.NoError(t, err)
	return net
}

func vector(g *G.ExprGraph, name string, data ...float64) *G.Node {
	return G.NewVector(g, tensor.Float64, G.WithShape(len(data)),
		G.WithName(name), G.WithValue(tensor.New(tensor.WithBacking(data))))
}

func TestTargetsTerminal(t *testing.T) {
	batch := []timestep.Transition{
		timestep.NewTransition([]float64{0}, []int{1}, timestep.Terminal(), -1),
		timestep.NewTransition([]float64{1}, []int{0}, timestep.Terminal(), 5),
	}
	next := mat.NewDense(2, 3, []float64{10, 20, 30, 40, 50, 60})

	targets, err := Targets(batch, next, 1, 3, 0.99)
	require.NoError(t, err)
	require.Equal(t, []float64{-1, 5}, targets)
}

func TestTargetsBootstrap(t *testing.T) {
	batch := []timestep.Transition{
		timestep.NewTransition([]float64{0}, []int{0},
			timestep.Continue([]float64{1}), 1),
		timestep.NewTransition([]float64{1}, []int{0}, timestep.Terminal(), 1),
	}
	next := mat.NewDense(2, 3, []float64{0, 2, 1, 7, 7, 7})

	targets, err := Targets(batch, next, 1, 3, 0.99)
	require.NoError(t, err)
	require.InDelta(t, 2.98, targets[0], 1e-12)
	require.Equal(t, 1.0, targets[1])
}

func TestTargetsMultiAgent(t *testing.T) {
	batch := []timestep.Transition{
		timestep.NewTransition([]float64{0, 0, 0, 0}, []int{0, 1},
			timestep.Continue([]float64{1, 1, 1, 1}), -0.5),
	}
	next := mat.NewDense(1, 4, []float64{1, 3, 4, 2})

	targets, err := Targets(batch, next, 2, 2, 0.5)
	require.NoError(t, err)
	require.Equal(t, []float64{1, 1.5}, targets)

	_, err = Targets(batch, mat.NewDense(1, 3, nil), 2, 2, 0.5)
	require.Error(t, err)
}

func TestActionMask(t *testing.T) {
	batch := []timestep.Transition{
		timestep.NewTransition([]float64{0, 0}, []int{2, 0},
			timestep.Terminal(), 0),
	}
	mask, err := ActionMask(batch, 2, 3)
	require.NoError(t, err)
	require.Equal(t, []int{2, 3}, []int(mask.Shape()))
	require.Equal(t, []float64{0, 0, 1, 1, 0, 0}, mask.Data())

	_, err = ActionMask(batch, 2, 2)
	require.Error(t, err)
	_, err = ActionMask(batch, 1, 3)
	require.Error(t, err)
}

func TestGather(t *testing.T) {
	g := G.NewGraph()
	pred := G.NewMatrix(g, tensor.Float64, G.WithShape(2, 4),
		G.WithName("pred"), G.WithValue(tensor.New(tensor.WithShape(2, 4),
			tensor.WithBacking([]float64{1, 2, 3, 4, 5, 6, 7, 8}))))
	mask := G.NewMatrix(g, tensor.Float64, G.WithShape(4, 2),
		G.WithName("mask"), G.WithValue(tensor.New(tensor.WithShape(4, 2),
			tensor.WithBacking([]float64{0, 1, 1, 0, 1, 0, 0, 1}))))

	gathered, err := Gather(pred, mask)
	require.NoError(t, err)
	var out G.Value
	G.Read(gathered, &out)

	vm := G.NewTapeMachine(g)
	defer vm.Close()
	require.NoError(t, vm.RunAll())
	require.Equal(t, []float64{2, 3, 5, 8}, out.Data())
}

func TestHuberLoss(t *testing.T) {
	g := G.NewGraph()
	pred := vector(g, "pred", 0, 0.5, -3, 1)
	target := vector(g, "target", 0, 0, 0, 0)

	loss, err := HuberLoss(pred, target)
	require.NoError(t, err)
	var out G.Value
	G.Read(loss, &out)

	vm := G.NewTapeMachine(g)
	defer vm.Close()
	require.NoError(t, vm.RunAll())

	// 0, 0.5*0.25, 3-0.5, 0.5
	want := (0 + 0.125 + 2.5 + 0.5) / 4
	got, err := scalar(out)
	require.NoError(t, err)
	require.InDelta(t, want, got, 1e-12)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, config(t, 4).Validate())

	for _, modify := range []func(*Config){
		func(c *Config) { c.BatchSize = 0 },
		func(c *Config) { c.Capacity = -1 },
		func(c *Config) { c.Gamma = 1.5 },
		func(c *Config) { c.Tau = 0 },
		func(c *Config) { c.TargetUpdateInterval = 0 },
		func(c *Config) { c.Solver = nil },
		func(c *Config) { c.Epsilon.Decay = 0 },
		func(c *Config) { c.Sampler = "prioritised" },
	} {
		c := config(t, 4)
		modify(&c)
		err := c.Validate()
		require.Error(t, err)
		require.True(t, rlerror.IsInvalidConfiguration(err))
	}
}

func TestNewRequiresBatchOne(t *testing.T) {
	net, err := network.NewLinear(G.NewGraph(), 4, 2, 2, G.GlorotU(1))
	require.NoError(t, err)
	_, err = New(net, config(t, 4), zerolog.Nop())
	require.True(t, rlerror.IsInvalidConfiguration(err))
}

func TestStepWaitsForBatch(t *testing.T) {
	d, err := New(linear(t, 4, 2), config(t, 4), zerolog.Nop())
	require.NoError(t, err)
	defer d.Close()

	for i := 0; i < 3; i++ {
		require.NoError(t, d.Observe(timestep.NewTransition([]float64{0},
			[]int{0}, timestep.Terminal(), 1)))
		_, updated, err := d.Step()
		require.NoError(t, err)
		require.False(t, updated)
	}
	require.Equal(t, 0, d.GradientSteps())

	require.Error(t, d.Observe(timestep.NewTransition([]float64{0},
		[]int{0, 1}, timestep.Terminal(), 1)))
}

func TestFifoSampler(t *testing.T) {
	c := config(t, 2)
	c.Capacity = 3
	c.Sampler = expreplay.Fifo
	d, err := New(linear(t, 5, 2), c, zerolog.Nop())
	require.NoError(t, err)
	defer d.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, d.Observe(timestep.NewTransition(
			[]float64{float64(i)}, []int{0}, timestep.Terminal(), 1)))
	}
	_, updated, err := d.Step()
	require.NoError(t, err)
	require.True(t, updated)

	batch, err := d.Replay().Sample(3)
	require.NoError(t, err)
	for i, tr := range batch {
		require.Equal(t, float64(i+2), tr.State[0])
	}
}

func TestStepReducesLoss(t *testing.T) {
	d, err := New(linear(t, 4, 2), config(t, 4), zerolog.Nop())
	require.NoError(t, err)
	defer d.Close()

	for i := 0; i < 4; i++ {
		require.NoError(t, d.Observe(timestep.NewTransition([]float64{0},
			[]int{0}, timestep.Terminal(), 1)))
	}

	first, updated, err := d.Step()
	require.NoError(t, err)
	require.True(t, updated)

	var last float64
	for i := 0; i < 30; i++ {
		last, updated, err = d.Step()
		require.NoError(t, err)
		require.True(t, updated)
	}
	require.Less(t, last, first)
	require.Equal(t, 31, d.GradientSteps())

	// The behaviour network follows the learned weights
	values, err := d.values([]float64{0})
	require.NoError(t, err)
	require.InDelta(t, 1.0, values[0][0], 0.5)
}

func TestSelectAction(t *testing.T) {
	d, err := New(linear(t, 4, 3), config(t, 4), zerolog.Nop())
	require.NoError(t, err)
	defer d.Close()

	step := 0
	for i := 0; i < 10; i++ {
		var actions []int
		actions, step, err = d.SelectAction([]float64{2}, step)
		require.NoError(t, err)
		require.Len(t, actions, 1)
		require.GreaterOrEqual(t, actions[0], 0)
		require.Less(t, actions[0], 3)
	}
	require.Equal(t, 10, step)

	greedy, err := d.Greedy([]float64{2})
	require.NoError(t, err)
	values, err := d.values([]float64{2})
	require.NoError(t, err)
	require.Equal(t, []int{policy.Argmax(values[0])}, greedy)

	_, _, err = d.SelectAction([]float64{9}, step)
	require.Error(t, err)
}

func TestMultiAgentStep(t *testing.T) {
	net, err := network.NewMultiAgent(G.NewGraph(), 2, 8, 5, 1,
		G.GlorotU(1))
	require.NoError(t, err)

	c := config(t, 2)
	c.TargetUpdateInterval = 2
	c.Tau = 0.5
	d, err := New(net, c, zerolog.Nop())
	require.NoError(t, err)
	defer d.Close()

	state := []float64{1, 0, 0, -1}
	actions, _, err := d.SelectAction(state, 0)
	require.NoError(t, err)
	require.Len(t, actions, 2)

	require.NoError(t, d.Observe(timestep.NewTransition(state, actions,
		timestep.Continue([]float64{1, 1, 0, 0}), -0.01)))
	require.NoError(t, d.Observe(timestep.NewTransition(state, []int{0, 4},
		timestep.Terminal(), 1)))

	for i := 0; i < 3; i++ {
		_, updated, err := d.Step()
		require.NoError(t, err)
		require.True(t, updated)
	}
	require.NoError(t, d.EndEpisode())
}

func BenchmarkStep(b *testing.B) {
	d, err := New(linear(b, 100, 4), config(b, 32), zerolog.Nop())
	if err != nil {
		b.Fatal(err)
	}
	defer d.Close()

	for i := 0; i < 100; i++ {
		next := timestep.Continue([]float64{float64((i + 1) % 100)})
		if err := d.Observe(timestep.NewTransition([]float64{float64(i)},
			[]int{i % 4}, next, -1)); err != nil {
			b.Fatal(err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := d.Step(); err != nil {
			b.Fatal(err)
		}
	}
}
