package environment

import (
	"gonum.org/v1/gonum/mat"

	ts "github.com/samuelfneumann/griddqn/timestep"
)

// FunctionEnder ends an episode whenever a function of the observation
// returns true.
type FunctionEnder struct {
	end func(*mat.VecDense) bool
}

// NewFunctionEnder returns a new FunctionEnder which ends episodes when
// f returns true.
func NewFunctionEnder(f func(*mat.VecDense) bool) Ender {
	return &FunctionEnder{f}
}

// End determines whether or not the current episode should be ended.
// If so, End() sets the StepType of t to timestep.Last.
func (f *FunctionEnder) End(t *ts.TimeStep) bool {
	if f.end(t.Observation) {
		t.StepType = ts.Last
		return true
	}
	return false
}
