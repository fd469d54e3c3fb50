package deepq

import (
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/samuelfneumann/griddqn/timestep"
)

// Targets computes the TD update target of each agent in each
// transition of batch:
//
//	target[b*agents + i] = reward[b] + gamma * max_a next[b, i*actions + a]
//
// The bootstrapped term is masked out for terminal transitions, whose
// target is the reward alone. Rows of next belonging to terminal
// transitions are ignored.
func Targets(batch []timestep.Transition, next *mat.Dense, agents,
	actions int, gamma float64) ([]float64, error) {
	rows, cols := next.Dims()
	if rows != len(batch) || cols != agents*actions {
		return nil, fmt.Errorf("targets: next state values have shape "+
			"(%v, %v), want (%v, %v)", rows, cols, len(batch), agents*actions)
	}

	targets := make([]float64, len(batch)*agents)
	for b, t := range batch {
		row := next.RawRowView(b)
		for i := 0; i < agents; i++ {
			var value float64
			if !t.Next.IsTerminal() {
				value = floats.Max(row[i*actions : (i+1)*actions])
			}
			targets[b*agents+i] = value*gamma + t.Reward
		}
	}
	return targets, nil
}

// ActionMask returns the one-hot encoding of the actions taken in each
// transition of batch, with shape (len(batch)*agents, actions)
func ActionMask(batch []timestep.Transition, agents,
	actions int) (*tensor.Dense, error) {
	mask := make([]float64, len(batch)*agents*actions)
	for b, t := range batch {
		if len(t.Action) != agents {
			return nil, fmt.Errorf("actionMask: transition %v has %v actions,"+
				" want %v", b, len(t.Action), agents)
		}
		for i, a := range t.Action {
			if a < 0 || a >= actions {
				return nil, fmt.Errorf("actionMask: action %v out of range "+
					"[0, %v)", a, actions)
			}
			mask[(b*agents+i)*actions+a] = 1.0
		}
	}
	return tensor.New(
		tensor.WithShape(len(batch)*agents, actions),
		tensor.WithBacking(mask),
	), nil
}

// Gather selects, from a prediction of shape (batch, agents*actions),
// the value of the action marked by the one-hot mask of shape
// (batch*agents, actions). The result has shape (batch*agents).
func Gather(prediction, mask *G.Node) (*G.Node, error) {
	shape := mask.Shape()
	values, err := G.Reshape(prediction, tensor.Shape{shape[0], shape[1]})
	if err != nil {
		return nil, errors.Wrap(err, "gather")
	}
	if values, err = G.HadamardProd(values, mask); err != nil {
		return nil, errors.Wrap(err, "gather")
	}
	return G.Sum(values, 1)
}

// HuberLoss adds to the graph of pred the mean smooth L1 loss between
// pred and target with a threshold of 1:
//
//	l(d) = 0.5 * d^2     if |d| < 1
//	l(d) = |d| - 0.5     otherwise
func HuberLoss(pred, target *G.Node) (*G.Node, error) {
	one := G.NewConstant(1.0)
	half := G.NewConstant(0.5)

	diff, err := G.Sub(pred, target)
	if err != nil {
		return nil, errors.Wrap(err, "huberLoss")
	}
	abs := G.Must(G.Abs(diff))

	// quadratic = min(|d|, 1), linear = |d| - min(|d|, 1)
	over := G.Must(G.Rectify(G.Must(G.Sub(abs, one))))
	quadratic := G.Must(G.Sub(abs, over))
	linear := G.Must(G.Sub(abs, quadratic))

	losses := G.Must(G.Mul(half, G.Must(G.Square(quadratic))))
	losses = G.Must(G.Add(losses, linear))

	return G.Mean(losses)
}
