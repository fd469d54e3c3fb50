package environment

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// SpecType determines what kind of specification a Spec is. A Spec can
// specify the layout of an action or an observation.
type SpecType int

const (
	Action SpecType = iota
	Observation
)

func (s SpecType) String() string {
	if s == Action {
		return "Action"
	}
	return "Observation"
}

// Cardinality determines the cardinality of a number (discrete or continuous)
type Cardinality string

const (
	Continuous Cardinality = "Continuous"
	Discrete   Cardinality = "Discrete"
)

// Spec implements an environment specification, which tells the type,
// shape, and bounds of an action or observation in an environment
type Spec struct {
	Shape      mat.Vector
	Type       SpecType
	LowerBound mat.Vector
	UpperBound mat.Vector
	Cardinality
}

// NewSpec constructs a new environment specification.
// The shape argument outlines the shape of the data described by the
// specification. The argument t outlines what the specification is
// describing (e.g. actions or observations). The cardinality
// argument describes whether the values that the spec describes are
// continuous or discrete.
func NewSpec(shape mat.Vector, t SpecType, lowerBound,
	upperBound mat.Vector, cardinality Cardinality) Spec {
	if shape.Len() != lowerBound.Len() {
		panic(fmt.Sprintf("shape length %v must match lower bounds length %v",
			shape.Len(), lowerBound.Len()))
	}
	if shape.Len() != upperBound.Len() {
		panic(fmt.Sprintf("shape length %v must match upper bounds length %v",
			shape.Len(), upperBound.Len()))
	}
	return Spec{shape, t, lowerBound, upperBound, cardinality}
}

// NewDiscreteSpec returns a Spec of n scalar discrete values, each in
// [lower, upper]
func NewDiscreteSpec(n int, t SpecType, lower, upper float64) Spec {
	shape := make([]float64, n)
	low := make([]float64, n)
	high := make([]float64, n)
	for i := range low {
		shape[i] = 1
		low[i] = lower
		high[i] = upper
	}
	return NewSpec(mat.NewVecDense(n, shape), t, mat.NewVecDense(n, low),
		mat.NewVecDense(n, high), Discrete)
}

// Len returns the number of values described by the Spec
func (s Spec) Len() int {
	return s.Shape.Len()
}

// Values returns the number of distinct values the i-th entry of a
// discrete Spec can take
func (s Spec) Values(i int) int {
	return int(s.UpperBound.AtVec(i)-s.LowerBound.AtVec(i)) + 1
}
