package reinforce

import (
	"github.com/samuelfneumann/griddqn/agent"
	"github.com/samuelfneumann/griddqn/rlerror"
	"github.com/samuelfneumann/griddqn/solver"
)

var _ agent.Config = Config{}

// Config implements a configuration for a Reinforce agent
type Config struct {
	Gamma  float64        `json:"gamma"`
	Solver *solver.Solver `json:"solver"`
}

// Validate checks a Config to ensure it is a valid configuration
func (c Config) Validate() error {
	if c.Gamma < 0 || c.Gamma > 1 {
		return rlerror.Newf("validate", rlerror.ErrInvalidConfiguration,
			"gamma must be in [0, 1], have(%v)", c.Gamma)
	}
	if c.Solver == nil {
		return rlerror.Newf("validate", rlerror.ErrInvalidConfiguration,
			"no solver specified")
	}
	return nil
}
