package network

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// ActorCritic is a policy network with separate score and value heads
// over one-hot encoded cell indices. The score head computes softmax
// logits over actions and the value head estimates the state value.
// Each head has a single tanh hidden layer.
type ActorCritic struct {
	g       *G.ExprGraph
	input   *G.Node
	encoder Encoder
	score   []Layer
	value   []Layer

	batchSize int
	actions   int
	hidden    int

	logits    *G.Node
	logitsVal G.Value
	values    *G.Node
	valuesVal G.Value

	learnables G.Nodes
	model      []G.ValueGrad

	// Used only by Forward
	vm  G.VM
	rng *rand.Rand
}

// NewActorCritic returns a new ActorCritic network in g. The seed
// determines the actions sampled by Act.
func NewActorCritic(g *G.ExprGraph, states, hidden, actions, batch int,
	init G.InitWFn, seed uint64) (*ActorCritic, error) {
	if states <= 0 || hidden <= 0 || actions <= 0 {
		return nil, fmt.Errorf("newActorCritic: states, hidden, and actions " +
			"must be > 0")
	}

	score := []Layer{
		newFCLayer(g, states, hidden, true, TanH(), init, "S0"),
		newFCLayer(g, hidden, actions, true, nil, init, "S1"),
	}
	value := []Layer{
		newFCLayer(g, states, hidden, true, TanH(), init, "V0"),
		newFCLayer(g, hidden, 1, true, nil, init, "V1"),
	}

	return newActorCritic(g, score, value, OneHot{States: states}, hidden,
		actions, batch, rand.New(rand.NewSource(seed)))
}

func newActorCritic(g *G.ExprGraph, score, value []Layer, encoder Encoder,
	hidden, actions, batch int, rng *rand.Rand) (*ActorCritic, error) {
	if batch <= 0 {
		return nil, fmt.Errorf("newActorCritic: batch size must be > 0, "+
			"have(%v)", batch)
	}

	input := G.NewMatrix(g, tensor.Float64,
		G.WithShape(batch, encoder.Features()), G.WithName("input"),
		G.WithInit(G.Zeroes()))

	a := &ActorCritic{
		g:         g,
		input:     input,
		encoder:   encoder,
		score:     score,
		value:     value,
		batchSize: batch,
		actions:   actions,
		hidden:    hidden,
		rng:       rng,
	}

	var err error
	if a.logits, err = fwdLayers(input, score); err != nil {
		return nil, errors.Wrap(err, "newActorCritic: score head")
	}
	values, err := fwdLayers(input, value)
	if err != nil {
		return nil, errors.Wrap(err, "newActorCritic: value head")
	}
	if a.values, err = G.Reshape(values, tensor.Shape{batch}); err != nil {
		return nil, errors.Wrap(err, "newActorCritic: value head")
	}

	G.Read(a.logits, &a.logitsVal)
	G.Read(a.values, &a.valuesVal)
	return a, nil
}

func fwdLayers(x *G.Node, layers []Layer) (*G.Node, error) {
	var err error
	for i, l := range layers {
		if x, err = l.fwd(x); err != nil {
			return nil, fmt.Errorf("fwd: layer %v: %v", i, err)
		}
	}
	return x, nil
}

// CloneWithBatch clones the network, including its weights, into a new
// graph with a new input batch size
func (a *ActorCritic) CloneWithBatch(batch int) (*ActorCritic, error) {
	graph := G.NewGraph()
	clone := func(layers []Layer) []Layer {
		out := make([]Layer, len(layers))
		for i := range layers {
			out[i] = layers[i].CloneTo(graph)
		}
		return out
	}

	net, err := newActorCritic(graph, clone(a.score), clone(a.value),
		a.encoder, a.hidden, a.actions, batch, a.rng)
	if err != nil {
		return nil, errors.Wrap(err, "cloneWithBatch")
	}
	if err := net.Set(a); err != nil {
		return nil, errors.Wrap(err, "cloneWithBatch")
	}
	return net, nil
}

// Graph returns the computational graph of the network
func (a *ActorCritic) Graph() *G.ExprGraph { return a.g }

// BatchSize returns the number of states in an input batch
func (a *ActorCritic) BatchSize() int { return a.batchSize }

// Actions returns the number of actions
func (a *ActorCritic) Actions() int { return a.actions }

// Logits returns the node of action logits, of shape (batch, actions)
func (a *ActorCritic) Logits() *G.Node { return a.logits }

// Values returns the node of state values, of shape (batch)
func (a *ActorCritic) Values() *G.Node { return a.values }

// LogProbs returns a node of the log-probabilities of each action,
// of shape (batch, actions)
func (a *ActorCritic) LogProbs() (*G.Node, error) {
	lse := LogSumExp(a.logits, 1)
	return G.BroadcastSub(a.logits, lse, nil, []byte{1})
}

// SetInput encodes states and sets the value of the input node
func (a *ActorCritic) SetInput(states [][]float64) error {
	if len(states) != a.batchSize {
		return fmt.Errorf("setInput: invalid number of states \n\twant(%v)"+
			"\n\thave(%v)", a.batchSize, len(states))
	}
	backing, err := encodeBatch(a.encoder, states)
	if err != nil {
		return errors.Wrap(err, "setInput")
	}
	return G.Let(a.input, tensor.New(tensor.WithBacking(backing),
		tensor.WithShape(a.input.Shape()...)))
}

// Learnables returns the learnable nodes of both heads
func (a *ActorCritic) Learnables() G.Nodes {
	if a.learnables == nil {
		for _, l := range append(append([]Layer{}, a.score...), a.value...) {
			a.learnables = append(a.learnables, l.Learnables()...)
		}
	}
	return a.learnables
}

// Model returns the learnable nodes with their gradients
func (a *ActorCritic) Model() []G.ValueGrad {
	if a.model == nil {
		for _, node := range a.Learnables() {
			a.model = append(a.model, node)
		}
	}
	return a.model
}

// Set sets the weights of a to be equal to the weights of source
func (a *ActorCritic) Set(source *ActorCritic) error {
	return setWeights(a.Learnables(), source.Learnables())
}

// Forward returns the action probabilities and the estimated value of
// a single raw state. Forward may only be called on a network with
// batch size 1.
func (a *ActorCritic) Forward(state []float64) ([]float64, float64, error) {
	if a.batchSize != 1 {
		return nil, 0, fmt.Errorf("forward: batch size must be 1, have(%v)",
			a.batchSize)
	}
	if a.vm == nil {
		a.vm = G.NewTapeMachine(a.g)
	}

	if err := a.SetInput([][]float64{state}); err != nil {
		return nil, 0, errors.Wrap(err, "forward")
	}
	defer a.vm.Reset()
	if err := a.vm.RunAll(); err != nil {
		return nil, 0, errors.Wrap(err, "forward")
	}

	probs := Softmax(floatData(a.logitsVal))
	return probs, floatData(a.valuesVal)[0], nil
}

// floatData returns the data of a float64 value, which may be a scalar
func floatData(v G.Value) []float64 {
	switch data := v.Data().(type) {
	case float64:
		return []float64{data}
	case []float64:
		return data
	}
	panic(fmt.Sprintf("floatData: unexpected value %v", v))
}

// Act samples an action for a single raw state from the softmax
// distribution over the score head. It returns the log-probability of
// the action, the action, and the estimated value of the state.
func (a *ActorCritic) Act(state []float64) (float64, int, float64, error) {
	probs, value, err := a.Forward(state)
	if err != nil {
		return 0, 0, 0, errors.Wrap(err, "act")
	}
	action := int(distuv.NewCategorical(probs, a.rng).Rand())

	return math.Log(probs[action]), action, value, nil
}

// Close releases the resources of the machine used by Act
func (a *ActorCritic) Close() error {
	if a.vm == nil {
		return nil
	}
	return a.vm.Close()
}

// Softmax returns the softmax of logits
func Softmax(logits []float64) []float64 {
	probs := make([]float64, len(logits))
	max := floats.Max(logits)
	for i, l := range logits {
		probs[i] = math.Exp(l - max)
	}
	floats.Scale(1/floats.Sum(probs), probs)
	return probs
}

// LogSumExp calculates the log of the summation of exponentials of
// all logits along the given axis.
func LogSumExp(logits *G.Node, along int) *G.Node {
	// Calculate the max logit per row
	max := G.Must(G.Max(logits, along))

	exponent := G.Must(G.BroadcastSub(logits, max, nil, []byte{1}))
	exponent = G.Must(G.Exp(exponent))

	// Sum along rows
	sum := G.Must(G.Sum(exponent, along))

	log := G.Must(G.Log(sum))

	return G.Must(G.Add(max, log))
}
