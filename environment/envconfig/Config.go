// Package envconfig provides configuration structs for configuring
// gridworld environments. Environment configurations in this package
// are JSON serializable.
package envconfig

import (
	"io"

	env "github.com/samuelfneumann/griddqn/environment"
	"github.com/samuelfneumann/griddqn/environment/gridworld"
	"github.com/samuelfneumann/griddqn/environment/pursuit"
	"github.com/samuelfneumann/griddqn/rlerror"
)

// EnvName stores the name of environments that can be configured with
// this package
type EnvName string

// Environments available for configuration
const (
	CliffWalking EnvName = "CliffWalking"
	Pursuit      EnvName = "Pursuit"
)

// Config implements a specific configuration of a specific environment.
// Hunters is only used by Pursuit.
type Config struct {
	Environment EnvName
	Rows        int
	Cols        int
	Hunters     int
	Seed        uint64
}

// NewConfig returns a new environment Config for a square grid
func NewConfig(envName EnvName, gridShape, hunters int, seed uint64) Config {
	return Config{
		Environment: envName,
		Rows:        gridShape,
		Cols:        gridShape,
		Hunters:     hunters,
		Seed:        seed,
	}
}

// Create creates the environment described by the Config. Rendered
// frames are written to out, or to stdout if out is nil.
func (c Config) Create(out io.Writer) (env.Environment, error) {
	switch c.Environment {
	case CliffWalking:
		g, err := gridworld.New(c.Rows, c.Cols, out)
		if err != nil {
			return nil, err
		}
		return g, nil

	case Pursuit:
		p, err := pursuit.New(c.Rows, c.Cols, c.Hunters, c.Seed, out)
		if err != nil {
			return nil, err
		}
		return p, nil
	}

	return nil, rlerror.Newf("create", rlerror.ErrInvalidConfiguration,
		"unknown environment %q", c.Environment)
}
