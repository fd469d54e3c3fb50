package experiment

import (
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	G "gorgonia.org/gorgonia"

	"github.com/samuelfneumann/griddqn/agent/policy"
	env "github.com/samuelfneumann/griddqn/environment"
	"github.com/samuelfneumann/griddqn/network"
)

// Greedy selects the highest-valued action of each agent
type Greedy interface {
	Greedy(state []float64) ([]int, error)
}

// qGreedy acts greedily with respect to a QNetwork
type qGreedy struct {
	net network.QNetwork
	vm  G.VM
}

// NewQGreedy returns a Greedy policy over the values of net, which
// must have batch size 1
func NewQGreedy(net network.QNetwork) Greedy {
	return &qGreedy{net: net, vm: G.NewTapeMachine(net.Graph())}
}

func (q *qGreedy) Greedy(state []float64) ([]int, error) {
	values, err := network.Forward(q.net, q.vm, [][]float64{state})
	if err != nil {
		return nil, errors.Wrap(err, "greedy")
	}

	actions := make([]int, q.net.Agents())
	for i := range actions {
		actions[i] = policy.Argmax(network.AgentValues(values, 0, i,
			q.net.Actions()))
	}
	return actions, nil
}

// acGreedy takes the most probable action of an ActorCritic
type acGreedy struct {
	net *network.ActorCritic
}

// NewActorCriticGreedy returns a Greedy policy taking the most probable
// action of net, which must have batch size 1
func NewActorCriticGreedy(net *network.ActorCritic) Greedy {
	return acGreedy{net}
}

func (a acGreedy) Greedy(state []float64) ([]int, error) {
	probs, _, err := a.net.Forward(state)
	if err != nil {
		return nil, errors.Wrap(err, "greedy")
	}
	return []int{policy.Argmax(probs)}, nil
}

// Frames configures the rendering of a greedy run
type Frames struct {
	Render  bool
	Animate bool
	Delay   time.Duration
}

// RunGreedy runs a single episode of e, cut off after maxSteps steps,
// in which every action is chosen by p. The return of the episode is
// appended to rewardLog as "Episode_reward: <return>".
func RunGreedy(e env.Environment, p Greedy, maxSteps int, rewardLog io.Writer,
	frames Frames) (float64, error) {
	step, err := e.Reset()
	if err != nil {
		return 0, errors.Wrap(err, "runGreedy")
	}
	limit := env.NewStepLimit(maxSteps)

	var episodeReward float64
	for !step.Last() {
		if err := render(e, frames); err != nil {
			return 0, err
		}

		actions, err := p.Greedy(step.State())
		if err != nil {
			return 0, errors.Wrap(err, "runGreedy")
		}
		if step, _, err = e.Step(actionVector(actions)); err != nil {
			return 0, errors.Wrap(err, "runGreedy")
		}
		episodeReward += step.Reward
		limit.End(&step)
	}
	if err := render(e, frames); err != nil {
		return 0, err
	}

	_, err = fmt.Fprintf(rewardLog, "Episode_reward: %s\n",
		FormatFloat(episodeReward))
	return episodeReward, errors.Wrap(err, "runGreedy")
}

func render(e env.Environment, frames Frames) error {
	if !frames.Render {
		return nil
	}
	if err := e.Render(frames.Animate); err != nil {
		return errors.Wrap(err, "runGreedy: render")
	}
	time.Sleep(frames.Delay)
	return nil
}
