package motion

import (
	"gonum.org/v1/gonum/mat"

	"github.com/xlrobotics/towr/math2d"
)

// Parametrization is what the solver needs from anything built out of a
// vector of optimization parameters.
type Parametrization interface {
	GetOptimizationParameters() *mat.VecDense
	SetOptimizationParameters(x mat.Vector) error
	GetJacobianWrtOptParams(t float64, ee EndeffectorID, a math2d.Axis) (JacobianRow, error)
}

var _ Parametrization = (*EndeffectorsMotion)(nil)
