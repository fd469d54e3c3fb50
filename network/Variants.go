package network

import (
	"fmt"

	G "gorgonia.org/gorgonia"
)

// NewLinear returns a bias-free linear approximator over one-hot
// encoded cell indices, mapping each of states cells to actions
// action values.
func NewLinear(g *G.ExprGraph, states, actions, batch int,
	init G.InitWFn) (QNetwork, error) {
	if states <= 0 || actions <= 0 {
		return nil, fmt.Errorf("newLinear: states and actions must be > 0")
	}
	layers := []Layer{newFCLayer(g, states, actions, false, nil, init, "L0")}

	return newQNet(g, layers, OneHot{States: states}, batch, 1, actions)
}

// NewCoordMLP returns a bias-free two-layer approximator over the
// (row, col) coordinates of cell indices on a rows x cols grid. The
// hidden layer uses a ReLU activation.
func NewCoordMLP(g *G.ExprGraph, rows, cols, hidden, actions, batch int,
	init G.InitWFn) (QNetwork, error) {
	if hidden <= 0 || actions <= 0 {
		return nil, fmt.Errorf("newCoordMLP: hidden and actions must be > 0")
	}
	layers := []Layer{
		newFCLayer(g, 2, hidden, false, ReLU(), init, "L0"),
		newFCLayer(g, hidden, actions, false, nil, init, "L1"),
	}

	return newQNet(g, layers, Coordinates{Rows: rows, Cols: cols}, batch, 1,
		actions)
}

// NewConvTabular returns a convolutional approximator over cell
// indices encoded as one-hot images of a rows x cols grid. Two 3x3
// convolutions with 4 channels are followed by a linear output layer
// with a bias.
func NewConvTabular(g *G.ExprGraph, rows, cols, actions, batch int,
	init G.InitWFn) (QNetwork, error) {
	if rows < 5 || cols < 5 {
		return nil, fmt.Errorf("newConvTabular: grid must be at least 5x5, "+
			"have(%dx%d)", rows, cols)
	}

	const channels, kernel = 4, 3
	flat := channels * (rows - 2*(kernel-1)) * (cols - 2*(kernel-1))
	layers := []Layer{
		&reshapeLayer{dims: []int{1, rows, cols}},
		newConvLayer(g, 1, channels, kernel, nil, init, "C0"),
		newConvLayer(g, channels, channels, kernel, nil, init, "C1"),
		&reshapeLayer{dims: []int{flat}},
		newFCLayer(g, flat, actions, true, nil, init, "L0"),
	}

	return newQNet(g, layers, OneHot{States: rows * cols}, batch, 1, actions)
}

// NewMultiAgent returns a bias-free two-layer approximator over the
// concatenated (row, col) offsets of agents agents, predicting actions
// action values for each agent. The hidden layer has hidden units per
// agent and a ReLU activation.
func NewMultiAgent(g *G.ExprGraph, agents, hidden, actions, batch int,
	init G.InitWFn) (QNetwork, error) {
	if agents <= 0 || hidden <= 0 || actions <= 0 {
		return nil, fmt.Errorf("newMultiAgent: agents, hidden, and actions " +
			"must be > 0")
	}
	layers := []Layer{
		newFCLayer(g, 2*agents, hidden*agents, false, ReLU(), init, "L0"),
		newFCLayer(g, hidden*agents, actions*agents, false, nil, init, "L1"),
	}

	return newQNet(g, layers, Raw{Size: 2 * agents}, batch, agents, actions)
}
