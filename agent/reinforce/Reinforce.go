// Package reinforce implements the REINFORCE policy gradient algorithm
// with a learned state-value baseline for the actor-critic network.
package reinforce

import (
	"fmt"

	"github.com/gammazero/deque"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/samuelfneumann/griddqn/agent/policy"
	"github.com/samuelfneumann/griddqn/network"
	"github.com/samuelfneumann/griddqn/rlerror"
	"github.com/samuelfneumann/griddqn/timestep"
)

// step is a single buffered step of an episode
type step struct {
	state  []float64
	action int
	reward float64
	value  float64
}

// Reinforce implements REINFORCE with baseline. Actions are sampled
// from the policy network; at the end of each episode the discounted
// returns are computed and a single gradient step is taken on
//
//	-mean(log π(a|s) * (G - v(s))) + mean((G - v(s))^2)
//
// where the advantage G - v(s) of the first term is held constant.
type Reinforce struct {
	policy *network.ActorCritic
	solver G.Solver
	gamma  float64

	buffer    deque.Deque[step]
	lastValue float64
	terminal  bool
	updates   int

	logger zerolog.Logger
}

// New returns a new Reinforce agent which adapts the weights of net.
// The network must have batch size 1.
func New(net *network.ActorCritic, c Config,
	logger zerolog.Logger) (*Reinforce, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if net.BatchSize() != 1 {
		return nil, rlerror.Newf("new", rlerror.ErrInvalidConfiguration,
			"policy network must have batch size 1, have(%v)",
			net.BatchSize())
	}

	return &Reinforce{
		policy: net,
		solver: c.Solver,
		gamma:  c.Gamma,
		logger: logger.With().Str("component", "reinforce").Logger(),
	}, nil
}

// SelectAction samples an action from the policy. It returns the
// action and t+1.
func (r *Reinforce) SelectAction(state []float64, t int) ([]int, int,
	error) {
	_, action, value, err := r.policy.Act(state)
	if err != nil {
		return nil, t, errors.Wrap(err, "selectAction")
	}
	r.lastValue = value
	return []int{action}, t + 1, nil
}

// Greedy returns the most probable action under the policy
func (r *Reinforce) Greedy(state []float64) ([]int, error) {
	probs, _, err := r.policy.Forward(state)
	if err != nil {
		return nil, errors.Wrap(err, "greedy")
	}
	return []int{policy.Argmax(probs)}, nil
}

// Observe buffers a transition. Transitions must be observed in the
// order they occur, each directly after the SelectAction call which
// chose its action.
func (r *Reinforce) Observe(t timestep.Transition) error {
	if len(t.Action) != 1 {
		return rlerror.Newf("observe", rlerror.ErrInvalidConfiguration,
			"transition has %v actions, want 1", len(t.Action))
	}
	r.buffer.PushBack(step{
		state:  append([]float64(nil), t.State...),
		action: t.Action[0],
		reward: t.Reward,
		value:  r.lastValue,
	})
	r.terminal = t.Next.IsTerminal()
	return nil
}

// Step updates the policy once the episode has terminated. Before
// that, Step makes no update and returns false.
func (r *Reinforce) Step() (float64, bool, error) {
	if !r.terminal || r.buffer.Len() == 0 {
		return 0, false, nil
	}
	return r.update()
}

// EndEpisode updates the policy on any steps not yet learned from,
// such as those of an episode cut off before termination
func (r *Reinforce) EndEpisode() error {
	if r.buffer.Len() > 0 {
		if _, _, err := r.update(); err != nil {
			return errors.Wrap(err, "endEpisode")
		}
	}
	r.terminal = false
	return nil
}

// Returns computes the discounted return from each step of an episode
// with the given rewards
func Returns(rewards []float64, gamma float64) []float64 {
	returns := make([]float64, len(rewards))
	var g float64
	for i := len(rewards) - 1; i >= 0; i-- {
		g = rewards[i] + gamma*g
		returns[i] = g
	}
	return returns
}

// update takes one gradient step on the buffered episode and clears
// the buffer
func (r *Reinforce) update() (float64, bool, error) {
	n := r.buffer.Len()
	actions := r.policy.Actions()

	states := make([][]float64, n)
	rewards := make([]float64, n)
	mask := make([]float64, n*actions)
	for i := 0; i < n; i++ {
		s := r.buffer.At(i)
		states[i] = s.state
		rewards[i] = s.reward
		mask[i*actions+s.action] = 1
	}
	returns := Returns(rewards, r.gamma)
	advantages := make([]float64, n)
	for i := range advantages {
		advantages[i] = returns[i] - r.buffer.At(i).value
	}
	r.buffer.Clear()
	r.terminal = false

	train, err := newTrainGraph(r.policy, n)
	if err != nil {
		return 0, false, errors.Wrap(err, "update")
	}
	defer train.vm.Close()

	if err := train.net.SetInput(states); err != nil {
		return 0, false, errors.Wrap(err, "update")
	}
	inputs := []struct {
		node *G.Node
		data []float64
	}{
		{train.actions, mask},
		{train.returns, returns},
		{train.advantages, advantages},
	}
	for _, in := range inputs {
		t := tensor.New(tensor.WithBacking(in.data),
			tensor.WithShape(in.node.Shape()...))
		if err := G.Let(in.node, t); err != nil {
			return 0, false, errors.Wrap(err, "update")
		}
	}

	if err := train.vm.RunAll(); err != nil {
		return 0, false, errors.Wrap(err, "update")
	}
	if err := r.solver.Step(train.net.Model()); err != nil {
		return 0, false, errors.Wrap(err, "update: solver")
	}
	if err := r.policy.Set(train.net); err != nil {
		return 0, false, errors.Wrap(err, "update")
	}
	r.updates++

	var loss float64
	switch data := train.lossVal.Data().(type) {
	case float64:
		loss = data
	case []float64:
		loss = data[0]
	default:
		return 0, false, fmt.Errorf("update: loss %v is not a scalar",
			train.lossVal)
	}
	r.logger.Debug().
		Int("steps", n).
		Float64("return", returns[0]).
		Float64("loss", loss).
		Msg("policy update")
	return loss, true, nil
}

// Updates returns the number of updates made so far
func (r *Reinforce) Updates() int {
	return r.updates
}

// Network returns the policy network
func (r *Reinforce) Network() *network.ActorCritic {
	return r.policy
}

// Close releases the resources of the policy network
func (r *Reinforce) Close() error {
	return r.policy.Close()
}
