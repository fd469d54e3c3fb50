// Package experiment implements functionality for running an experiment
package experiment

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/griddqn/agent"
	env "github.com/samuelfneumann/griddqn/environment"
	"github.com/samuelfneumann/griddqn/experiment/checkpointer"
	"github.com/samuelfneumann/griddqn/experiment/tracker"
	ts "github.com/samuelfneumann/griddqn/timestep"
	"github.com/samuelfneumann/griddqn/utils/progressbar"
)

// Online is an experiment that runs an agent online only. No offline
// evaluation is performed.
//
// Each episode resets the environment and then repeatedly selects an
// action, steps the environment, stores the transition with the agent,
// and lets the agent learn, until the episode ends or the step limit
// is reached.
type Online struct {
	env.Environment
	agent.Agent
	limit    env.StepLimit
	logEvery int

	// exploration step counter, carried across episodes
	counter  int
	episodes int

	lossLog       io.Writer
	trackers      []tracker.Tracker
	checkpointers []checkpointer.Checkpointer
	progress      *progressbar.ManualProgressBar

	logger zerolog.Logger
}

// Episode summarises a finished episode
type Episode struct {
	Steps  int
	Return float64
}

// NewOnline creates and returns a new online experiment on a given
// environment with a given agent. Episodes are cut off after
// maxEpisodeSteps steps. Every logEvery episode steps on which the
// agent learned, the loss is written to lossLog.
func NewOnline(e env.Environment, a agent.Agent, maxEpisodeSteps,
	logEvery int, lossLog io.Writer, logger zerolog.Logger,
	t ...tracker.Tracker) *Online {
	return &Online{
		Environment: e,
		Agent:       a,
		limit:       env.NewStepLimit(maxEpisodeSteps),
		logEvery:    logEvery,
		lossLog:     lossLog,
		trackers:    t,
		logger:      logger.With().Str("component", "online").Logger(),
	}
}

// Register registers a tracker.Tracker with the experiment so that
// data generated during the experiment can be tracked and saved
func (o *Online) Register(t tracker.Tracker) {
	o.trackers = append(o.trackers, t)
}

// RegisterCheckpointer registers a checkpointer which is called at the
// end of each episode
func (o *Online) RegisterCheckpointer(c checkpointer.Checkpointer) {
	o.checkpointers = append(o.checkpointers, c)
}

// ShowProgress displays a progress bar over the episodes of Run
func (o *Online) ShowProgress(p *progressbar.ManualProgressBar) {
	o.progress = p
}

// Steps returns the exploration step counter
func (o *Online) Steps() int {
	return o.counter
}

// RunEpisode runs a single episode of the experiment
func (o *Online) RunEpisode() (Episode, error) {
	var episode Episode

	step, err := o.Environment.Reset()
	if err != nil {
		return episode, errors.Wrap(err, "runEpisode: reset")
	}
	o.track(step)
	state := step.State()

	for !step.Last() {
		var actions []int
		actions, o.counter, err = o.Agent.SelectAction(state, o.counter)
		if err != nil {
			return episode, errors.Wrap(err, "runEpisode")
		}

		var done bool
		step, done, err = o.Environment.Step(actionVector(actions))
		if err != nil {
			return episode, errors.Wrap(err, "runEpisode")
		}
		episode.Steps++
		episode.Return += step.Reward

		next := ts.Terminal()
		if !done {
			next = ts.Continue(step.State())
		}
		err = o.Agent.Observe(ts.NewTransition(state, actions, next,
			step.Reward))
		if err != nil {
			return episode, errors.Wrap(err, "runEpisode")
		}

		loss, updated, err := o.Agent.Step()
		if err != nil {
			return episode, errors.Wrap(err, "runEpisode")
		}
		if updated && episode.Steps%o.logEvery == 0 {
			o.logLoss(episode.Steps, loss)
		}

		// The cutoff ends the episode but the stored transition is not
		// terminal
		o.limit.End(&step)
		o.track(step)
		state = step.State()
	}

	if err := o.Agent.EndEpisode(); err != nil {
		return episode, errors.Wrap(err, "runEpisode")
	}
	o.episodes++

	fmt.Fprintf(o.lossLog, "Finished at: %d\n", episode.Steps)
	fmt.Fprintf(o.lossLog, "Reward: %s\n", FormatFloat(episode.Return))
	o.logger.Info().
		Int("episode", o.episodes).
		Int("steps", episode.Steps).
		Float64("return", episode.Return).
		Int("exploration_steps", o.counter).
		Msg("episode finished")

	for _, c := range o.checkpointers {
		if err := c.Checkpoint(o.episodes); err != nil {
			return episode, errors.Wrap(err, "runEpisode")
		}
	}
	return episode, nil
}

// Run runs n episodes of the experiment
func (o *Online) Run(n int) error {
	for i := 0; i < n; i++ {
		if _, err := o.RunEpisode(); err != nil {
			return errors.Wrapf(err, "run: episode %v", o.episodes+1)
		}
		if o.progress != nil {
			o.progress.Increment()
			o.progress.Display()
		}
	}
	if o.progress != nil {
		o.progress.Close()
	}
	return nil
}

// Save saves all the data cached by the trackers to disk
func (o *Online) Save() error {
	for _, t := range o.trackers {
		if err := t.Save(); err != nil {
			return errors.Wrap(err, "save")
		}
	}
	return nil
}

// track tracks the current timestep by caching its data in each tracker
func (o *Online) track(t ts.TimeStep) {
	for _, tr := range o.trackers {
		tr.Track(t)
	}
}

func (o *Online) logLoss(step int, loss float64) {
	fmt.Fprintf(o.lossLog, "Step: %d Loss: %s\n", step, FormatFloat(loss))
	o.logger.Info().Int("step", step).Float64("loss", loss).Msg("loss")
}

// actionVector converts the actions of each agent into the action
// vector taken by environments
func actionVector(actions []int) *mat.VecDense {
	data := make([]float64, len(actions))
	for i, a := range actions {
		data[i] = float64(a)
	}
	return mat.NewVecDense(len(data), data)
}

// FormatFloat formats f with the shortest representation that keeps
// at least one decimal place, so that -13 is written as -13.0
func FormatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if math.IsNaN(f) || math.IsInf(f, 0) || strings.Contains(s, ".") {
		return s
	}
	return s + ".0"
}
