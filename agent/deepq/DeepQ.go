// Package deepq implements the deep Q-learning (DQN) learner with
// experience replay, a bootstrapped target computed from a lagged copy
// of the network, and the smooth L1 loss.
package deepq

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/samuelfneumann/griddqn/agent/policy"
	"github.com/samuelfneumann/griddqn/expreplay"
	"github.com/samuelfneumann/griddqn/network"
	"github.com/samuelfneumann/griddqn/rlerror"
	"github.com/samuelfneumann/griddqn/timestep"
)

// DeepQ implements the deep Q-learning algorithm with the Huber loss.
//
// Three copies of the same network are kept. The behaviour network
// (batch size 1) selects actions, the train network (batch size
// BatchSize) has its weights adapted, and the target network (batch
// size BatchSize) provides the bootstrapped update target.
type DeepQ struct {
	// Action selection
	behaviourNet   network.QNetwork
	behaviourNetVM G.VM
	egreedy        *policy.EGreedy

	// Network whose weights are adapted
	trainNet   network.QNetwork
	trainNetVM G.VM
	solver     G.Solver

	// Network providing the update target
	targetNet   network.QNetwork
	targetNetVM G.VM

	// Variables to track target network updates
	tau                  float64
	targetUpdateInterval int
	gradientSteps        int

	// Inputs to the loss in the train graph: the one-hot actions taken
	// and the update target of each (transition, agent) pair
	selectedActions *G.Node
	targets         *G.Node
	loss            *G.Node
	lossVal         G.Value

	replay    *expreplay.ReplayMemory
	gamma     float64
	batchSize int

	logger zerolog.Logger
}

// New creates and returns a new DeepQ agent. The behaviour network
// must have batch size 1; the train and target networks are cloned
// from it, weights included.
func New(behaviour network.QNetwork, c Config,
	logger zerolog.Logger) (*DeepQ, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if behaviour.BatchSize() != 1 {
		return nil, rlerror.Newf("new", rlerror.ErrInvalidConfiguration,
			"behaviour network must have batch size 1, have(%v)",
			behaviour.BatchSize())
	}

	egreedy, err := policy.NewSeededEGreedy(c.Epsilon, c.Seed)
	if err != nil {
		return nil, err
	}
	sampler, err := expreplay.NewSelector(c.Sampler, c.Seed+1)
	if err != nil {
		return nil, err
	}
	replay, err := expreplay.New(c.Capacity, sampler)
	if err != nil {
		return nil, err
	}

	targetNet, err := behaviour.CloneWithBatch(c.BatchSize)
	if err != nil {
		return nil, errors.Wrap(err, "new: could not create target network")
	}
	trainNet, err := behaviour.CloneWithBatch(c.BatchSize)
	if err != nil {
		return nil, errors.Wrap(err, "new: could not create train network")
	}

	// Loss nodes in the train graph
	gTrain := trainNet.Graph()
	agents, actions := trainNet.Agents(), trainNet.Actions()
	selectedActions := G.NewMatrix(gTrain, tensor.Float64,
		G.WithShape(c.BatchSize*agents, actions),
		G.WithName("actionSelected"), G.WithInit(G.Zeroes()))
	targets := G.NewVector(gTrain, tensor.Float64,
		G.WithShape(c.BatchSize*agents), G.WithName("updateTarget"),
		G.WithInit(G.Zeroes()))

	selectedActionsValue, err := Gather(trainNet.Prediction(),
		selectedActions)
	if err != nil {
		return nil, errors.Wrap(err, "new")
	}
	loss, err := HuberLoss(selectedActionsValue, targets)
	if err != nil {
		return nil, errors.Wrap(err, "new")
	}

	d := &DeepQ{
		behaviourNet:         behaviour,
		egreedy:              egreedy,
		trainNet:             trainNet,
		solver:               c.Solver,
		targetNet:            targetNet,
		tau:                  c.Tau,
		targetUpdateInterval: c.TargetUpdateInterval,
		selectedActions:      selectedActions,
		targets:              targets,
		loss:                 loss,
		replay:               replay,
		gamma:                c.Gamma,
		batchSize:            c.BatchSize,
		logger:               logger.With().Str("component", "deepq").Logger(),
	}
	G.Read(loss, &d.lossVal)

	if _, err := G.Grad(loss, trainNet.Learnables()...); err != nil {
		return nil, errors.Wrap(err, "new: could not compute gradient")
	}

	d.behaviourNetVM = G.NewTapeMachine(behaviour.Graph())
	d.targetNetVM = G.NewTapeMachine(targetNet.Graph())
	d.trainNetVM = G.NewTapeMachine(gTrain,
		G.BindDualValues(trainNet.Learnables()...))

	d.logger.Debug().
		Int("agents", agents).
		Int("actions", actions).
		Int("features", trainNet.Features()).
		Stringer("config", c).
		Msg("created learner")
	return d, nil
}

// Observe adds a transition to the replay memory
func (d *DeepQ) Observe(t timestep.Transition) error {
	if len(t.Action) != d.trainNet.Agents() {
		return rlerror.Newf("observe", rlerror.ErrInvalidConfiguration,
			"transition has %v actions, want %v", len(t.Action),
			d.trainNet.Agents())
	}
	d.replay.Push(t)
	return nil
}

// Step takes one gradient step on a batch sampled from the replay
// memory. If the memory holds fewer than BatchSize transitions, no
// update is made and Step returns false.
func (d *DeepQ) Step() (float64, bool, error) {
	if d.replay.Len() < d.batchSize {
		return 0, false, nil
	}

	batch, err := d.replay.Sample(d.batchSize)
	if err != nil {
		return 0, false, errors.Wrap(err, "step")
	}

	// Lag the target network behind the train network. Every update
	// target in this step then comes from the weights as they were
	// at the start of the step.
	if d.gradientSteps%d.targetUpdateInterval == 0 {
		if d.tau == 1.0 {
			err = d.targetNet.Set(d.trainNet)
		} else {
			err = d.targetNet.Polyak(d.trainNet, d.tau)
		}
		if err != nil {
			return 0, false, errors.Wrap(err, "step: target update")
		}
	}

	states := make([][]float64, len(batch))
	nextStates := make([][]float64, len(batch))
	for i, t := range batch {
		states[i] = t.State
		if next, ok := t.Next.State(); ok {
			nextStates[i] = next
		} else {
			// Masked out of the target; any valid state will do
			nextStates[i] = t.State
		}
	}

	nextValues, err := network.Forward(d.targetNet, d.targetNetVM,
		nextStates)
	if err != nil {
		return 0, false, errors.Wrap(err, "step: next state values")
	}

	agents, actions := d.trainNet.Agents(), d.trainNet.Actions()
	targets, err := Targets(batch, nextValues, agents, actions, d.gamma)
	if err != nil {
		return 0, false, errors.Wrap(err, "step")
	}
	err = G.Let(d.targets, tensor.New(tensor.WithBacking(targets),
		tensor.WithShape(d.targets.Shape()...)))
	if err != nil {
		return 0, false, errors.Wrap(err, "step: could not set targets")
	}

	mask, err := ActionMask(batch, agents, actions)
	if err != nil {
		return 0, false, errors.Wrap(err, "step")
	}
	if err := G.Let(d.selectedActions, mask); err != nil {
		return 0, false, errors.Wrap(err, "step: could not set actions")
	}

	if err := d.trainNet.SetInput(states); err != nil {
		return 0, false, errors.Wrap(err, "step")
	}

	// Run the learning step
	if err := d.trainNetVM.RunAll(); err != nil {
		d.trainNetVM.Reset()
		return 0, false, errors.Wrap(err, "step")
	}
	loss, err := scalar(d.lossVal)
	if err != nil {
		d.trainNetVM.Reset()
		return 0, false, errors.Wrap(err, "step")
	}
	if err := d.solver.Step(d.trainNet.Model()); err != nil {
		d.trainNetVM.Reset()
		return 0, false, errors.Wrap(err, "step: solver")
	}
	d.trainNetVM.Reset()
	d.gradientSteps++

	if err := d.behaviourNet.Set(d.trainNet); err != nil {
		return 0, false, errors.Wrap(err, "step: behaviour update")
	}
	return loss, true, nil
}

// scalar returns the single float64 held by v
func scalar(v G.Value) (float64, error) {
	if v == nil {
		return 0, fmt.Errorf("scalar: value was not computed")
	}
	switch data := v.Data().(type) {
	case float64:
		return data, nil
	case []float64:
		if len(data) == 1 {
			return data[0], nil
		}
	}
	return 0, fmt.Errorf("scalar: expected a single float64, have(%v)", v)
}

// values returns the action values of each agent in state as predicted
// by the behaviour network
func (d *DeepQ) values(state []float64) ([][]float64, error) {
	out, err := network.Forward(d.behaviourNet, d.behaviourNetVM,
		[][]float64{state})
	if err != nil {
		return nil, err
	}

	agents, actions := d.behaviourNet.Agents(), d.behaviourNet.Actions()
	values := make([][]float64, agents)
	for i := range values {
		values[i] = network.AgentValues(out, 0, i, actions)
	}
	return values, nil
}

// SelectAction selects one action per agent with the epsilon-greedy
// behaviour policy at step t. It returns the actions and t+1.
func (d *DeepQ) SelectAction(state []float64, t int) ([]int, int, error) {
	values, err := d.values(state)
	if err != nil {
		return nil, t, errors.Wrap(err, "selectAction")
	}

	if len(values) == 1 {
		action, next := d.egreedy.SelectAction(values[0], t)
		return []int{action}, next, nil
	}
	actions, next := d.egreedy.SelectActions(values, t)
	return actions, next, nil
}

// Greedy returns the greedy action of each agent in state
func (d *DeepQ) Greedy(state []float64) ([]int, error) {
	values, err := d.values(state)
	if err != nil {
		return nil, errors.Wrap(err, "greedy")
	}

	actions := make([]int, len(values))
	for i := range values {
		actions[i] = policy.Argmax(values[i])
	}
	return actions, nil
}

// EndEpisode performs cleanup at the end of an episode
func (d *DeepQ) EndEpisode() error {
	d.logger.Debug().
		Int("gradientSteps", d.gradientSteps).
		Str("replay", d.replay.Footprint().HumanReadable()).
		Msg("end of episode")
	return nil
}

// Network returns the behaviour network, which holds the most recently
// learned weights
func (d *DeepQ) Network() network.QNetwork {
	return d.behaviourNet
}

// Replay returns the replay memory of the agent
func (d *DeepQ) Replay() *expreplay.ReplayMemory {
	return d.replay
}

// GradientSteps returns the number of updates made so far
func (d *DeepQ) GradientSteps() int {
	return d.gradientSteps
}

// Close releases the resources of the agent's machines
func (d *DeepQ) Close() error {
	var errs []error
	for _, vm := range []G.VM{d.behaviourNetVM, d.trainNetVM, d.targetNetVM} {
		if err := vm.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close: %v", errs)
	}
	return nil
}
