package experiment

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/samuelfneumann/griddqn/agent"
	"github.com/samuelfneumann/griddqn/agent/deepq"
	"github.com/samuelfneumann/griddqn/agent/reinforce"
	env "github.com/samuelfneumann/griddqn/environment"
	"github.com/samuelfneumann/griddqn/experiment/checkpointer"
	"github.com/samuelfneumann/griddqn/experiment/trackers"
	"github.com/samuelfneumann/griddqn/network"
	"github.com/samuelfneumann/griddqn/utils/progressbar"
)

// Options configures the outputs of Train
type Options struct {
	// Out receives rendered frames, Progress the progress bar. A nil
	// Progress disables the bar.
	Out      io.Writer
	Progress io.Writer

	// Frames configures the greedy run after training
	Frames Frames
}

// Result is the outcome of a training run
type Result struct {
	Returns      []float64
	Lengths      []float64
	GreedyReturn float64
}

// learner is an agent together with the network it trains
type learner struct {
	agent.Agent
	weights network.Weighted
	greedy  Greedy
}

// newLearner creates the agent described by c for environment e
func newLearner(c Config, e env.Environment,
	logger zerolog.Logger) (*learner, error) {
	if c.Model == ActorCritic {
		net, err := c.PolicyNetwork(e)
		if err != nil {
			return nil, err
		}
		r, err := reinforce.New(net, c.ReinforceConfig(), logger)
		if err != nil {
			return nil, err
		}
		return &learner{Agent: r, weights: net, greedy: r}, nil
	}

	net, err := c.QNetwork(e)
	if err != nil {
		return nil, err
	}
	d, err := deepq.New(net, c.DeepQConfig(), logger)
	if err != nil {
		return nil, err
	}
	return &learner{Agent: d, weights: d.Network(), greedy: d}, nil
}

// Train runs the training run described by c. The loss log is
// truncated at the start of the run. After training, one greedy
// episode is run and its return appended to the reward log.
func Train(c Config, opts Options, logger zerolog.Logger) (Result, error) {
	if err := c.Validate(); err != nil {
		return Result{}, err
	}

	e, err := c.Environment(opts.Out)
	if err != nil {
		return Result{}, errors.Wrap(err, "train")
	}
	l, err := newLearner(c, e, logger)
	if err != nil {
		return Result{}, errors.Wrap(err, "train")
	}
	defer l.Close()

	lossLog, err := os.Create(c.LossLog)
	if err != nil {
		return Result{}, errors.Wrap(err, "train: loss log")
	}
	defer lossLog.Close()

	returns := trackers.NewReturn(c.ReturnsFile)
	o := NewOnline(e, l, c.MaxEpisodeSteps, c.LogEvery, lossLog, logger,
		returns)
	var lengths *trackers.EpisodeLength
	if c.LengthsFile != "" {
		lengths = trackers.NewEpisodeLength(c.LengthsFile)
		o.Register(lengths)
	}
	if c.Checkpoint != "" && c.CheckpointEvery > 0 {
		check, err := checkpointer.NewNStep(c.CheckpointEvery,
			checkpointer.Weights(l.weights),
			checkpointer.EpisodeFilename(c.Checkpoint))
		if err != nil {
			return Result{}, errors.Wrap(err, "train")
		}
		o.RegisterCheckpointer(check)
	}
	if opts.Progress != nil {
		o.ShowProgress(progressbar.NewManualProgressBar(opts.Progress, 40,
			c.NumEpisodes))
	}

	logger.Info().
		Str("model", string(c.Model)).
		Int("episodes", c.NumEpisodes).
		Int("grid", c.GridShape).
		Str("solver", c.Solver).
		Msg("training")
	if err := o.Run(c.NumEpisodes); err != nil {
		return Result{}, errors.Wrap(err, "train")
	}
	if err := o.Save(); err != nil {
		return Result{}, errors.Wrap(err, "train")
	}
	if c.Checkpoint != "" {
		err := checkpointer.Save(c.Checkpoint, checkpointer.Weights(l.weights))
		if err != nil {
			return Result{}, errors.Wrap(err, "train")
		}
	}

	rewardLog, err := os.OpenFile(c.RewardLog,
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return Result{}, errors.Wrap(err, "train: reward log")
	}
	defer rewardLog.Close()

	greedy, err := RunGreedy(e, l.greedy, c.MaxEpisodeSteps, rewardLog,
		opts.Frames)
	if err != nil {
		return Result{}, errors.Wrap(err, "train")
	}
	logger.Info().Float64("return", greedy).Msg("greedy episode")

	result := Result{Returns: returns.Returns(), GreedyReturn: greedy}
	if lengths != nil {
		result.Lengths = lengths.Lengths()
	}
	return result, nil
}

// Render loads the weights checkpointed by a run described by c and
// runs one greedy episode, appending its return to the reward log
func Render(c Config, opts Options, logger zerolog.Logger) (float64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	if c.Checkpoint == "" {
		return 0, errors.New("render: no checkpoint given")
	}

	e, err := c.Environment(opts.Out)
	if err != nil {
		return 0, errors.Wrap(err, "render")
	}

	var (
		weights network.Weighted
		greedy  func() Greedy
	)
	if c.Model == ActorCritic {
		net, err := c.PolicyNetwork(e)
		if err != nil {
			return 0, errors.Wrap(err, "render")
		}
		defer net.Close()
		weights = net
		greedy = func() Greedy { return NewActorCriticGreedy(net) }
	} else {
		net, err := c.QNetwork(e)
		if err != nil {
			return 0, errors.Wrap(err, "render")
		}
		weights = net
		greedy = func() Greedy { return NewQGreedy(net) }
	}

	f, err := os.Open(c.Checkpoint)
	if err != nil {
		return 0, errors.Wrap(err, "render")
	}
	defer f.Close()
	if err := network.Load(f, weights); err != nil {
		return 0, errors.Wrap(err, "render")
	}
	logger.Info().Str("checkpoint", c.Checkpoint).Msg("loaded weights")

	rewardLog, err := os.OpenFile(c.RewardLog,
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, errors.Wrap(err, "render: reward log")
	}
	defer rewardLog.Close()

	return RunGreedy(e, greedy(), c.MaxEpisodeSteps, rewardLog, opts.Frames)
}
