// Package policy implements epsilon-greedy action selection with an
// exponentially decaying exploration rate
package policy

import (
	"math"

	"github.com/samuelfneumann/griddqn/rlerror"
)

// Schedule is an exponentially decaying exploration rate:
//
//	Epsilon(t) = End + (Start - End) * exp(-t / Decay)
type Schedule struct {
	Start float64
	End   float64
	Decay float64
}

// Epsilon returns the exploration rate at step t
func (s Schedule) Epsilon(t int) float64 {
	return s.End + (s.Start-s.End)*math.Exp(-float64(t)/s.Decay)
}

// Validate returns an error if the schedule is not a valid
// probability schedule
func (s Schedule) Validate() error {
	if s.Start < 0 || s.Start > 1 || s.End < 0 || s.End > 1 {
		return rlerror.Newf("validate", rlerror.ErrInvalidConfiguration,
			"epsilon bounds must be in [0, 1], have(%v, %v)", s.Start, s.End)
	}
	if s.Decay <= 0 {
		return rlerror.Newf("validate", rlerror.ErrInvalidConfiguration,
			"epsilon decay must be > 0, have(%v)", s.Decay)
	}
	return nil
}
