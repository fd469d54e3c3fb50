package reinforce

import (
	"github.com/pkg/errors"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/samuelfneumann/griddqn/network"
)

// trainGraph is a clone of the policy network over one episode's
// worth of states, together with its loss
type trainGraph struct {
	net *network.ActorCritic
	vm  G.VM

	actions    *G.Node // one-hot actions taken, (n, actions)
	returns    *G.Node // discounted returns, (n)
	advantages *G.Node // returns less the baseline, (n)

	loss    *G.Node
	lossVal G.Value
}

// newTrainGraph clones policy with batch size n and builds the
// REINFORCE with baseline loss in the new graph
func newTrainGraph(policy *network.ActorCritic, n int) (*trainGraph, error) {
	net, err := policy.CloneWithBatch(n)
	if err != nil {
		return nil, errors.Wrap(err, "newTrainGraph")
	}
	g := net.Graph()

	t := &trainGraph{
		net: net,
		actions: G.NewMatrix(g, tensor.Float64,
			G.WithShape(n, policy.Actions()), G.WithName("actions"),
			G.WithInit(G.Zeroes())),
		returns: G.NewVector(g, tensor.Float64, G.WithShape(n),
			G.WithName("returns"), G.WithInit(G.Zeroes())),
		advantages: G.NewVector(g, tensor.Float64, G.WithShape(n),
			G.WithName("advantages"), G.WithInit(G.Zeroes())),
	}

	logProbs, err := net.LogProbs()
	if err != nil {
		return nil, errors.Wrap(err, "newTrainGraph")
	}
	selected := G.Must(G.HadamardProd(logProbs, t.actions))
	selected = G.Must(G.Sum(selected, 1))

	policyLoss := G.Must(G.HadamardProd(selected, t.advantages))
	policyLoss = G.Must(G.Neg(G.Must(G.Mean(policyLoss))))

	valueLoss := G.Must(G.Sub(t.returns, net.Values()))
	valueLoss = G.Must(G.Mean(G.Must(G.Square(valueLoss))))

	t.loss = G.Must(G.Add(policyLoss, valueLoss))
	G.Read(t.loss, &t.lossVal)

	if _, err := G.Grad(t.loss, net.Learnables()...); err != nil {
		return nil, errors.Wrap(err, "newTrainGraph: could not compute "+
			"gradient")
	}
	t.vm = G.NewTapeMachine(g, G.BindDualValues(net.Learnables()...))
	return t, nil
}
