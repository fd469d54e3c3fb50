// Package network implements the action-value networks and the
// actor-critic policy network used by the learners, built as Gorgonia
// computational graphs.
package network

import (
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// QNetwork maps a batch of raw states to one vector of action values
// per agent. The prediction has shape (BatchSize(), Agents()*Actions()),
// where columns [i*Actions(), (i+1)*Actions()) hold the values of
// agent i.
type QNetwork interface {
	Graph() *G.ExprGraph
	BatchSize() int
	Agents() int
	Actions() int

	// Features returns the number of encoded features per state
	Features() int
	Encoder() Encoder

	// SetInput encodes a batch of raw states and sets the input node
	SetInput(states [][]float64) error

	Prediction() *G.Node
	Output() G.Value

	Learnables() G.Nodes
	Model() []G.ValueGrad

	// CloneWithBatch clones the network, including its weights, into a
	// new graph with a new input batch size
	CloneWithBatch(batch int) (QNetwork, error)

	// Set sets the weights of the network to those of another network
	// of the same architecture
	Set(QNetwork) error

	// Polyak sets the weights of the network to tau*source +
	// (1-tau)*current
	Polyak(source QNetwork, tau float64) error
}

// qNet implements a QNetwork as a stack of layers over an encoded
// input matrix
type qNet struct {
	g       *G.ExprGraph
	layers  []Layer
	input   *G.Node
	encoder Encoder

	batchSize int
	agents    int
	actions   int

	learnables G.Nodes
	model      []G.ValueGrad

	prediction *G.Node
	predVal    G.Value
}

// newQNet creates the input node of a network in g and runs the
// forward pass of layers on it
func newQNet(g *G.ExprGraph, layers []Layer, encoder Encoder, batch, agents,
	actions int) (*qNet, error) {
	if batch <= 0 {
		return nil, fmt.Errorf("newQNet: batch size must be > 0, have(%v)",
			batch)
	}

	input := G.NewMatrix(g, tensor.Float64,
		G.WithShape(batch, encoder.Features()), G.WithName("input"),
		G.WithInit(G.Zeroes()))

	net := &qNet{
		g:         g,
		layers:    layers,
		input:     input,
		encoder:   encoder,
		batchSize: batch,
		agents:    agents,
		actions:   actions,
	}
	if err := net.fwd(); err != nil {
		return nil, errors.Wrap(err, "newQNet")
	}

	want := tensor.Shape{batch, agents * actions}
	if !net.prediction.Shape().Eq(want) {
		return nil, fmt.Errorf("newQNet: prediction shape %v, want %v",
			net.prediction.Shape(), want)
	}
	return net, nil
}

// fwd performs the forward pass of the network on its input node
func (q *qNet) fwd() error {
	pred := q.input
	var err error
	for i, l := range q.layers {
		if pred, err = l.fwd(pred); err != nil {
			return fmt.Errorf("fwd: could not compute forward pass of "+
				"layer %v: %v", i, err)
		}
	}

	q.prediction = pred
	G.Read(q.prediction, &q.predVal)
	return nil
}

// Graph returns the computational graph of the network
func (q *qNet) Graph() *G.ExprGraph { return q.g }

// BatchSize returns the number of states in an input batch
func (q *qNet) BatchSize() int { return q.batchSize }

// Agents returns the number of agents the network predicts values for
func (q *qNet) Agents() int { return q.agents }

// Actions returns the number of actions per agent
func (q *qNet) Actions() int { return q.actions }

// Features returns the number of encoded features per state
func (q *qNet) Features() int { return q.encoder.Features() }

// Encoder returns the encoder of raw states
func (q *qNet) Encoder() Encoder { return q.encoder }

// Prediction returns the node holding the action values
func (q *qNet) Prediction() *G.Node { return q.prediction }

// Output returns the value of the prediction after the graph is run
func (q *qNet) Output() G.Value { return q.predVal }

// SetInput encodes states and sets the value of the input node before
// running the forward pass
func (q *qNet) SetInput(states [][]float64) error {
	if len(states) != q.batchSize {
		return fmt.Errorf("setInput: invalid number of states \n\twant(%v)"+
			"\n\thave(%v)", q.batchSize, len(states))
	}

	backing, err := encodeBatch(q.encoder, states)
	if err != nil {
		return errors.Wrap(err, "setInput")
	}

	inputTensor := tensor.New(
		tensor.WithBacking(backing),
		tensor.WithShape(q.input.Shape()...),
	)
	return G.Let(q.input, inputTensor)
}

// CloneWithBatch clones the network with a new input batch size
func (q *qNet) CloneWithBatch(batch int) (QNetwork, error) {
	graph := G.NewGraph()

	layers := make([]Layer, len(q.layers))
	for i := range q.layers {
		layers[i] = q.layers[i].CloneTo(graph)
	}

	net, err := newQNet(graph, layers, q.encoder, batch, q.agents, q.actions)
	if err != nil {
		return nil, errors.Wrap(err, "cloneWithBatch")
	}
	if err := net.Set(q); err != nil {
		return nil, errors.Wrap(err, "cloneWithBatch")
	}
	return net, nil
}

// Learnables returns the learnable nodes of the network
func (q *qNet) Learnables() G.Nodes {
	// Lazy instantiation
	if q.learnables == nil {
		for _, l := range q.layers {
			q.learnables = append(q.learnables, l.Learnables()...)
		}
	}
	return q.learnables
}

// Model returns the learnable nodes with their gradients
func (q *qNet) Model() []G.ValueGrad {
	if q.model == nil {
		for _, node := range q.Learnables() {
			q.model = append(q.model, node)
		}
	}
	return q.model
}

// Set sets the weights of q to be equal to the weights of source
func (q *qNet) Set(source QNetwork) error {
	return setWeights(q.Learnables(), source.Learnables())
}

// Polyak sets the weights of q to a Polyak average between its
// existing weights and the weights of source
func (q *qNet) Polyak(source QNetwork, tau float64) error {
	return polyakWeights(q.Learnables(), source.Learnables(), tau)
}

// setWeights copies the values of source into dest
func setWeights(dest, source G.Nodes) error {
	if len(dest) != len(source) {
		return fmt.Errorf("set: incompatible networks, %v != %v learnables",
			len(dest), len(source))
	}
	for i := range dest {
		if !dest[i].Shape().Eq(source[i].Shape()) {
			return fmt.Errorf("set: learnable %v has shape %v, source has %v",
				i, dest[i].Shape(), source[i].Shape())
		}
		weights := source[i].Value().(*tensor.Dense).Clone().(*tensor.Dense)
		if err := G.Let(dest[i], weights); err != nil {
			return errors.Wrapf(err, "set: learnable %v", i)
		}
	}
	return nil
}

// polyakWeights sets dest to tau*source + (1-tau)*dest
func polyakWeights(dest, source G.Nodes, tau float64) error {
	if len(dest) != len(source) {
		return fmt.Errorf("polyak: incompatible networks, %v != %v learnables",
			len(dest), len(source))
	}
	for i := range dest {
		weights := dest[i].Value().(*tensor.Dense)
		sourceWeights := source[i].Value().(*tensor.Dense)

		weights, err := weights.MulScalar(1-tau, true)
		if err != nil {
			return errors.Wrap(err, "polyak")
		}

		sourceWeights, err = sourceWeights.MulScalar(tau, true)
		if err != nil {
			return errors.Wrap(err, "polyak")
		}

		newWeights, err := weights.Add(sourceWeights)
		if err != nil {
			return errors.Wrap(err, "polyak")
		}

		if err := G.Let(dest[i], newWeights); err != nil {
			return errors.Wrap(err, "polyak")
		}
	}
	return nil
}

// Forward runs net on a batch of raw states with vm, which must be a
// machine over net's graph, and returns the action values with shape
// (len(states), Agents()*Actions())
func Forward(net QNetwork, vm G.VM, states [][]float64) (*mat.Dense, error) {
	if err := net.SetInput(states); err != nil {
		return nil, errors.Wrap(err, "forward")
	}
	defer vm.Reset()
	if err := vm.RunAll(); err != nil {
		return nil, errors.Wrap(err, "forward")
	}

	out := net.Output()
	if out == nil {
		return nil, fmt.Errorf("forward: prediction was not computed")
	}
	data := floatData(out)

	values := make([]float64, len(data))
	copy(values, data)
	return mat.NewDense(net.BatchSize(), net.Agents()*net.Actions(), values),
		nil
}

// AgentValues returns the action values of agent i from row r of the
// output of Forward
func AgentValues(values *mat.Dense, r, i, actions int) []float64 {
	row := values.RawRowView(r)
	return row[i*actions : (i+1)*actions]
}
