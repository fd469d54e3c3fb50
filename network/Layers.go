package network

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Layer is a single differentiable stage of a network
type Layer interface {
	// fwd adds the forward pass of the layer to the graph of x
	fwd(x *G.Node) (*G.Node, error)

	// CloneTo clones the layer, including its weights, to graph g
	CloneTo(g *G.ExprGraph) Layer

	// Learnables returns the weights of the layer
	Learnables() G.Nodes
}

// fcLayer implements a fully connected layer of a feed forward neural
// network
type fcLayer struct {
	weights *G.Node
	bias    *G.Node
	act     *Activation
}

// newFCLayer adds a new fully connected layer of shape in x out to g
func newFCLayer(g *G.ExprGraph, in, out int, bias bool, act *Activation,
	init G.InitWFn, name string) *fcLayer {
	weights := G.NewMatrix(g, tensor.Float64, G.WithShape(in, out),
		G.WithName(name+"W"), G.WithInit(init))

	var b *G.Node
	if bias {
		b = G.NewMatrix(g, tensor.Float64, G.WithShape(1, out),
			G.WithName(name+"B"), G.WithInit(G.Zeroes()))
	}

	return &fcLayer{weights: weights, bias: b, act: act}
}

// fwd adds the forward pass of the fcLayer to the computational graph
func (f *fcLayer) fwd(x *G.Node) (*G.Node, error) {
	x, err := G.Mul(x, f.weights)
	if err != nil {
		return nil, err
	}
	if f.bias != nil {
		// Broadcast the bias weights to all samples along the batch
		// dimension
		if x, err = G.BroadcastAdd(x, f.bias, nil, []byte{0}); err != nil {
			return nil, err
		}
	}
	if f.act == nil {
		return x, nil
	}
	return f.act.fwd(x)
}

// CloneTo clones an fcLayer to a new computational graph
func (f *fcLayer) CloneTo(g *G.ExprGraph) Layer {
	var newBias *G.Node
	if f.bias != nil {
		newBias = f.bias.CloneTo(g)
	}

	return &fcLayer{
		weights: f.weights.CloneTo(g),
		bias:    newBias,
		act:     f.act,
	}
}

// Learnables returns the weights and bias of the layer
func (f *fcLayer) Learnables() G.Nodes {
	if f.bias == nil {
		return G.Nodes{f.weights}
	}
	return G.Nodes{f.weights, f.bias}
}

// convLayer is a bias-free 2D convolution with stride 1 and no padding
type convLayer struct {
	filter *G.Node
	act    *Activation
}

// newConvLayer adds a convolution of in channels to out channels with
// a square kernel of the given size to g
func newConvLayer(g *G.ExprGraph, in, out, kernel int, act *Activation,
	init G.InitWFn, name string) *convLayer {
	filter := G.NewTensor(g, tensor.Float64, 4,
		G.WithShape(out, in, kernel, kernel), G.WithName(name+"F"),
		G.WithInit(init))

	return &convLayer{filter: filter, act: act}
}

func (c *convLayer) fwd(x *G.Node) (*G.Node, error) {
	if x.Dims() != 4 {
		return nil, fmt.Errorf("fwd: convolution input must have 4 "+
			"dimensions, have(%v)", x.Dims())
	}

	kernel := c.filter.Shape()[2:]
	x, err := G.Conv2d(x, c.filter, tensor.Shape{kernel[0], kernel[1]},
		[]int{0, 0}, []int{1, 1}, []int{1, 1})
	if err != nil {
		return nil, err
	}
	if c.act == nil {
		return x, nil
	}
	return c.act.fwd(x)
}

func (c *convLayer) CloneTo(g *G.ExprGraph) Layer {
	return &convLayer{filter: c.filter.CloneTo(g), act: c.act}
}

func (c *convLayer) Learnables() G.Nodes {
	return G.Nodes{c.filter}
}

// reshapeLayer reshapes each sample of a batch to dims, keeping the
// batch dimension
type reshapeLayer struct {
	dims []int
}

func (r *reshapeLayer) fwd(x *G.Node) (*G.Node, error) {
	shape := append(tensor.Shape{x.Shape()[0]}, r.dims...)
	return G.Reshape(x, shape)
}

func (r *reshapeLayer) CloneTo(*G.ExprGraph) Layer {
	return &reshapeLayer{dims: append([]int(nil), r.dims...)}
}

func (r *reshapeLayer) Learnables() G.Nodes {
	return nil
}
