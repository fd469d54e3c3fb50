// Package checkpointer implements periodic saving of network weights
// during an experiment
package checkpointer

import (
	"io"

	"github.com/samuelfneumann/griddqn/network"
)

// Serializable is an object that can be saved/serialized
type Serializable interface {
	Save(w io.Writer) error
}

// Checkpointer checkpoints/saves serializable objects at the end of
// episodes
type Checkpointer interface {
	Checkpoint(episode int) error
}

// weights serializes the learnable values of a network
type weights struct {
	net network.Weighted
}

// Weights returns a Serializable which gob-encodes the weights of net
func Weights(net network.Weighted) Serializable {
	return weights{net}
}

func (w weights) Save(out io.Writer) error {
	return network.Save(out, w.net)
}
