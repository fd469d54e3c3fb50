// Package solver wraps Gorgonia Solvers so that they can be JSON
// serialized into configuration files.
package solver

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/pkg/errors"
	G "gorgonia.org/gorgonia"

	"github.com/samuelfneumann/griddqn/rlerror"
)

// Type describes different types of solvers that are available
type Type string

// Available solver types
const (
	RMSProp Type = "RMSProp"
	Adam    Type = "Adam"
	Vanilla Type = "Vanilla"
)

var registry = map[Type]reflect.Type{
	RMSProp: reflect.TypeOf(RMSPropConfig{}),
	Adam:    reflect.TypeOf(AdamConfig{}),
	Vanilla: reflect.TypeOf(VanillaConfig{}),
}

// Config implements a Gorgonia Solver configuration and can be used to
// create the Gorgonia Solvers they describe.
type Config interface {
	Create() G.Solver

	// ValidType returns whether a specific Solver type can be created
	// with the Config
	ValidType(Type) bool
}

// Solver wraps Gorgonia Solvers so that they can be JSON marshalled and
// unmarshalled.
type Solver struct {
	G.Solver `json:"-"`
	Type
	Config
}

// newSolver returns a new solver with the given type and configuration.
func newSolver(t Type, c Config) (*Solver, error) {
	if !c.ValidType(t) {
		return nil, rlerror.Newf("newSolver", rlerror.ErrInvalidConfiguration,
			"invalid solver type %v for configuration %T", t, c)
	}
	solver := Solver{Type: t, Config: c}
	solver.Solver = solver.Config.Create()

	return &solver, nil
}

// FromName returns a solver of the named type with default
// hyperparameters and the given step size
func FromName(name string, stepSize float64, batchSize int) (*Solver, error) {
	if stepSize <= 0 {
		return nil, rlerror.Newf("fromName", rlerror.ErrInvalidConfiguration,
			"step size must be > 0, have(%v)", stepSize)
	}

	switch Type(name) {
	case RMSProp:
		return NewDefaultRMSProp(stepSize, batchSize)
	case Adam:
		return NewDefaultAdam(stepSize, batchSize)
	case Vanilla:
		return NewVanilla(stepSize, batchSize, -1)
	}

	return nil, rlerror.Newf("fromName", rlerror.ErrInvalidConfiguration,
		"unknown solver %q", name)
}

// Reset returns a fresh Gorgonia Solver from the configuration,
// discarding any accumulated optimiser state
func (s *Solver) Reset() {
	s.Solver = s.Config.Create()
}

// String implements the fmt.Stringer interface
func (s *Solver) String() string {
	return fmt.Sprintf("{%v Solver: %v}", s.Type, s.Config)
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (s *Solver) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type   Type
		Config json.RawMessage
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "unmarshalJSON")
	}

	ty, ok := registry[raw.Type]
	if !ok {
		return rlerror.Newf("unmarshalJSON", rlerror.ErrInvalidConfiguration,
			"unknown solver %q", raw.Type)
	}

	value := reflect.New(ty)
	if err := json.Unmarshal(raw.Config, value.Interface()); err != nil {
		return errors.Wrapf(err, "unmarshalJSON: %v config", raw.Type)
	}

	solver, err := newSolver(raw.Type, value.Elem().Interface().(Config))
	if err != nil {
		return err
	}
	*s = *solver
	return nil
}
