package deepq

import (
	"fmt"

	"github.com/samuelfneumann/griddqn/agent"
	"github.com/samuelfneumann/griddqn/agent/policy"
	"github.com/samuelfneumann/griddqn/expreplay"
	"github.com/samuelfneumann/griddqn/rlerror"
	"github.com/samuelfneumann/griddqn/solver"
)

var _ agent.Config = Config{}

// Config implements a configuration for a DeepQ agent
type Config struct {
	Gamma     float64 `json:"gamma"`
	BatchSize int     `json:"batch_size"`
	Capacity  int     `json:"memo_capacity"`

	// How batches are drawn from the replay memory
	Sampler expreplay.SelectorType `json:"sampler"`

	// Behaviour policy exploration schedule
	Epsilon policy.Schedule `json:"epsilon"`

	// Target net updates
	TargetUpdateInterval int     `json:"target_update_interval"`
	Tau                  float64 `json:"tau"`

	Solver *solver.Solver `json:"solver"`

	// Seed seeds both the replay memory sampler and the behaviour
	// policy
	Seed uint64 `json:"seed"`
}

// Validate checks a Config to ensure it is a valid configuration
func (c Config) Validate() error {
	if c.Gamma < 0 || c.Gamma > 1 {
		return rlerror.Newf("validate", rlerror.ErrInvalidConfiguration,
			"gamma must be in [0, 1], have(%v)", c.Gamma)
	}
	if c.BatchSize <= 0 {
		return rlerror.Newf("validate", rlerror.ErrInvalidConfiguration,
			"batch size must be > 0, have(%v)", c.BatchSize)
	}
	if c.Capacity <= 0 {
		return rlerror.Newf("validate", rlerror.ErrInvalidConfiguration,
			"memory capacity must be > 0, have(%v)", c.Capacity)
	}
	if _, err := expreplay.NewSelector(c.Sampler, c.Seed); err != nil {
		return err
	}
	if c.TargetUpdateInterval < 1 {
		return rlerror.Newf("validate", rlerror.ErrInvalidConfiguration,
			"target update interval must be >= 1, have(%v)",
			c.TargetUpdateInterval)
	}
	if c.Tau <= 0 || c.Tau > 1 {
		return rlerror.Newf("validate", rlerror.ErrInvalidConfiguration,
			"tau must be in (0, 1], have(%v)", c.Tau)
	}
	if c.Solver == nil {
		return rlerror.Newf("validate", rlerror.ErrInvalidConfiguration,
			"no solver specified")
	}
	return c.Epsilon.Validate()
}

func (c Config) String() string {
	return fmt.Sprintf("DeepQ Config | Gamma: %v  |  Batch: %v  |  "+
		"Capacity: %v  |  Sampler: %v  |  Epsilon: %+v  |  Target Interval: "+
		"%v  |  Tau: %v  |  Solver: %v", c.Gamma, c.BatchSize, c.Capacity,
		c.Sampler, c.Epsilon,
		c.TargetUpdateInterval, c.Tau, c.Solver)
}
