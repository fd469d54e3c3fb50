package network

import (
	"encoding/gob"
	"fmt"
	"io"

	"github.com/pkg/errors"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Weighted is anything holding learnable weights
type Weighted interface {
	Learnables() G.Nodes
}

// weights is the gob representation of a single learnable node
type weights struct {
	Name  string
	Shape []int
	Data  []float64
}

// Save gob-encodes the values of the learnables of net to w
func Save(w io.Writer, net Weighted) error {
	learnables := net.Learnables()
	out := make([]weights, len(learnables))
	for i, node := range learnables {
		if node.Dtype() != tensor.Float64 {
			return fmt.Errorf("save: learnable %v is not float64", node.Name())
		}
		data := floatData(node.Value())
		out[i] = weights{
			Name:  node.Name(),
			Shape: append([]int(nil), node.Shape()...),
			Data:  append([]float64(nil), data...),
		}
	}

	return errors.Wrap(gob.NewEncoder(w).Encode(out), "save")
}

// Load decodes weights written by Save from r into the learnables of
// net, which must have the same architecture as the saved network
func Load(r io.Reader, net Weighted) error {
	var in []weights
	if err := gob.NewDecoder(r).Decode(&in); err != nil {
		return errors.Wrap(err, "load")
	}

	learnables := net.Learnables()
	if len(in) != len(learnables) {
		return fmt.Errorf("load: have %v saved learnables, network has %v",
			len(in), len(learnables))
	}
	for i, node := range learnables {
		shape := tensor.Shape(in[i].Shape)
		if !shape.Eq(node.Shape()) {
			return fmt.Errorf("load: learnable %v has shape %v, saved %v",
				node.Name(), node.Shape(), shape)
		}
		value := tensor.New(tensor.WithShape(shape...),
			tensor.WithBacking(in[i].Data))
		if err := G.Let(node, value); err != nil {
			return errors.Wrapf(err, "load: learnable %v", node.Name())
		}
	}
	return nil
}
