package experiment

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
	G "gorgonia.org/gorgonia"

	"github.com/samuelfneumann/griddqn/agent/deepq"
	"github.com/samuelfneumann/griddqn/agent/policy"
	"github.com/samuelfneumann/griddqn/agent/reinforce"
	env "github.com/samuelfneumann/griddqn/environment"
	"github.com/samuelfneumann/griddqn/environment/envconfig"
	"github.com/samuelfneumann/griddqn/expreplay"
	"github.com/samuelfneumann/griddqn/initwfn"
	"github.com/samuelfneumann/griddqn/network"
	"github.com/samuelfneumann/griddqn/rlerror"
	"github.com/samuelfneumann/griddqn/solver"
)

// Model names the function approximator of an experiment
type Model string

// Available models
const (
	Linear      Model = "linear"
	Coord       Model = "coord"
	Conv        Model = "conv"
	MultiAgent  Model = "multiagent"
	ActorCritic Model = "actorcritic"
)

// Config is the flat configuration of a training run
type Config struct {
	NumEpisodes int     `json:"num_episodes"`
	Gamma       float64 `json:"gamma"`
	LR          float64 `json:"lr"`

	EpsStart float64 `json:"eps_start"`
	EpsEnd   float64 `json:"eps_end"`
	EpsDecay float64 `json:"eps_decay"`

	MemoCapacity int                    `json:"memo_capacity"`
	Sampler      expreplay.SelectorType `json:"sampler"`
	GridShape    int                    `json:"grid_shape"`
	BatchSize    int                    `json:"batch_size"`

	Model     Model  `json:"model"`
	HiddenDim int    `json:"hidden_dim"`
	Hunters   int    `json:"hunters"`
	Solver    string `json:"solver"`
	Seed      uint64 `json:"seed"`

	// Weight initialiser of the networks, nil for the model's default
	InitWFn *initwfn.InitWFn `json:"init,omitempty"`

	MaxEpisodeSteps int `json:"max_episode_steps"`
	LogEvery        int `json:"log_every"`

	TargetUpdateInterval int     `json:"target_update_interval"`
	Tau                  float64 `json:"tau"`

	LossLog         string `json:"loss_log"`
	RewardLog       string `json:"reward_log"`
	ReturnsFile     string `json:"returns_file"`
	LengthsFile     string `json:"lengths_file"`
	Checkpoint      string `json:"checkpoint"`
	CheckpointEvery int    `json:"checkpoint_every"`
}

// Default returns the default configuration: a linear model on a
// 10 x 10 cliff walking grid
func Default() Config {
	return Config{
		NumEpisodes:          1,
		Gamma:                0.99,
		LR:                   0.1,
		EpsStart:             0.9,
		EpsEnd:               0.05,
		EpsDecay:             200,
		MemoCapacity:         1000,
		Sampler:              expreplay.Uniform,
		GridShape:            10,
		BatchSize:            128,
		Model:                Linear,
		HiddenDim:            16,
		Hunters:              2,
		Solver:               string(solver.RMSProp),
		MaxEpisodeSteps:      2500,
		LogEvery:             500,
		TargetUpdateInterval: 1,
		Tau:                  1,
		LossLog:              "loss.txt",
		RewardLog:            "output.txt",
		ReturnsFile:          "returns.bin",
	}
}

// Load reads a JSON configuration from r on top of the defaults, so
// that missing keys keep their default values
func Load(r io.Reader) (Config, error) {
	c := Default()
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return Config{}, rlerror.New("load", rlerror.ErrInvalidConfiguration,
			err)
	}
	return c, nil
}

// LoadFile reads a JSON configuration file
func LoadFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "loadFile")
	}
	defer f.Close()
	return Load(f)
}

// Validate returns an error if the configuration cannot describe a run
func (c Config) Validate() error {
	invalid := func(format string, args ...interface{}) error {
		return rlerror.Newf("validate", rlerror.ErrInvalidConfiguration,
			format, args...)
	}

	switch {
	case c.NumEpisodes <= 0:
		return invalid("num_episodes must be > 0, have(%v)", c.NumEpisodes)
	case c.LR <= 0:
		return invalid("lr must be > 0, have(%v)", c.LR)
	case c.MemoCapacity <= 0:
		return invalid("memo_capacity must be > 0, have(%v)", c.MemoCapacity)
	case c.BatchSize <= 0:
		return invalid("batch_size must be > 0, have(%v)", c.BatchSize)
	case c.GridShape < 2:
		return invalid("grid_shape must be >= 2, have(%v)", c.GridShape)
	case c.HiddenDim <= 0:
		return invalid("hidden_dim must be > 0, have(%v)", c.HiddenDim)
	case c.MaxEpisodeSteps <= 0:
		return invalid("max_episode_steps must be > 0, have(%v)",
			c.MaxEpisodeSteps)
	case c.LogEvery <= 0:
		return invalid("log_every must be > 0, have(%v)", c.LogEvery)
	case c.CheckpointEvery < 0:
		return invalid("checkpoint_every must be >= 0, have(%v)",
			c.CheckpointEvery)
	case c.Model == Conv && c.GridShape < 5:
		return invalid("conv model needs grid_shape >= 5, have(%v)",
			c.GridShape)
	case c.Model == MultiAgent && c.Hunters <= 0:
		return invalid("hunters must be > 0, have(%v)", c.Hunters)
	}

	switch c.Model {
	case Linear, Coord, Conv, MultiAgent, ActorCritic:
	default:
		return invalid("unknown model %q", c.Model)
	}

	if _, err := c.solver(); err != nil {
		return err
	}
	if c.Model == ActorCritic {
		return c.ReinforceConfig().Validate()
	}
	return c.DeepQConfig().Validate()
}

// Schedule returns the exploration schedule of the run
func (c Config) Schedule() policy.Schedule {
	return policy.Schedule{Start: c.EpsStart, End: c.EpsEnd, Decay: c.EpsDecay}
}

// solver returns a new solver of the configured type. The losses are
// means over the batch, so the solver does not rescale gradients.
func (c Config) solver() (*solver.Solver, error) {
	return solver.FromName(c.Solver, c.LR, 0)
}

// DeepQConfig returns the configuration of the DeepQ learner
func (c Config) DeepQConfig() deepq.Config {
	s, _ := c.solver()
	return deepq.Config{
		Gamma:                c.Gamma,
		BatchSize:            c.BatchSize,
		Capacity:             c.MemoCapacity,
		Sampler:              c.Sampler,
		Epsilon:              c.Schedule(),
		TargetUpdateInterval: c.TargetUpdateInterval,
		Tau:                  c.Tau,
		Solver:               s,
		Seed:                 c.Seed,
	}
}

// ReinforceConfig returns the configuration of the Reinforce learner
func (c Config) ReinforceConfig() reinforce.Config {
	s, _ := c.solver()
	return reinforce.Config{Gamma: c.Gamma, Solver: s}
}

// EnvConfig returns the configuration of the environment: pursuit for
// the multi-agent model and cliff walking otherwise
func (c Config) EnvConfig() envconfig.Config {
	if c.Model == MultiAgent {
		return envconfig.NewConfig(envconfig.Pursuit, c.GridShape, c.Hunters,
			c.Seed)
	}
	return envconfig.NewConfig(envconfig.CliffWalking, c.GridShape, 0, c.Seed)
}

// Environment creates the environment of the run, rendering to out
func (c Config) Environment(out io.Writer) (env.Environment, error) {
	return c.EnvConfig().Create(out)
}

// weightInit returns the weight initialiser of the configured model
func (c Config) weightInit() G.InitWFn {
	if c.InitWFn != nil {
		return c.InitWFn.InitWFn()
	}
	if c.Model == Linear || c.Model == ActorCritic {
		return initwfn.NewGlorotU(1.0).InitWFn()
	}
	return initwfn.NewHeU(1.0).InitWFn()
}

// actionSpace returns the number of agents acting in e and the number
// of actions available to each of them. Only the multi-agent model
// accepts more than one agent.
func (c Config) actionSpace(e env.Environment) (agents, actions int,
	err error) {
	spec := e.ActionSpec()
	agents, actions = spec.Len(), spec.Values(0)
	if agents != 1 && c.Model != MultiAgent {
		return 0, 0, rlerror.Newf("actionSpace",
			rlerror.ErrInvalidConfiguration,
			"model %q acts for a single agent, environment has %d",
			c.Model, agents)
	}
	return agents, actions, nil
}

// states returns the number of states of the single discrete
// observation of e, as needed by one-hot encoded models
func (c Config) states(e env.Environment) (int, error) {
	spec := e.ObservationSpec()
	if spec.Len() != 1 || spec.Cardinality != env.Discrete {
		return 0, rlerror.Newf("states", rlerror.ErrInvalidConfiguration,
			"model %q needs a single discrete observation, environment "+
				"has %d %v values", c.Model, spec.Len(), spec.Cardinality)
	}
	return spec.Values(0), nil
}

// QNetwork creates the action-value network of the run, with batch
// size 1, for environment e
func (c Config) QNetwork(e env.Environment) (network.QNetwork, error) {
	agents, actions, err := c.actionSpace(e)
	if err != nil {
		return nil, err
	}
	g := G.NewGraph()
	init := c.weightInit()

	switch c.Model {
	case Linear:
		states, err := c.states(e)
		if err != nil {
			return nil, err
		}
		return network.NewLinear(g, states, actions, 1, init)
	case Coord:
		return network.NewCoordMLP(g, c.GridShape, c.GridShape, c.HiddenDim,
			actions, 1, init)
	case Conv:
		return network.NewConvTabular(g, c.GridShape, c.GridShape, actions, 1,
			init)
	case MultiAgent:
		return network.NewMultiAgent(g, agents, c.HiddenDim, actions, 1,
			init)
	}
	return nil, rlerror.Newf("qNetwork", rlerror.ErrInvalidConfiguration,
		"model %q is not an action-value model", c.Model)
}

// PolicyNetwork creates the actor-critic network of the run, with
// batch size 1, for environment e
func (c Config) PolicyNetwork(e env.Environment) (*network.ActorCritic,
	error) {
	if c.Model != ActorCritic {
		return nil, rlerror.Newf("policyNetwork",
			rlerror.ErrInvalidConfiguration,
			"model %q is not a policy model", c.Model)
	}
	_, actions, err := c.actionSpace(e)
	if err != nil {
		return nil, err
	}
	states, err := c.states(e)
	if err != nil {
		return nil, err
	}
	return network.NewActorCritic(G.NewGraph(), states, c.HiddenDim,
		actions, 1, c.weightInit(), c.Seed)
}
