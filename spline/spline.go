// Package spline holds the fixed-degree polynomial segments that make up an
// effector trajectory, and the phases (stance or swing) that wrap them.
package spline

import (
	"fmt"

	"github.com/xlrobotics/towr/math2d"
)

// CoeffCount is the number of polynomial coefficients per axis.
const CoeffCount = 6

// Coeff labels a polynomial coefficient. A multiplies the highest power:
//
//	p(t) = A t^5 + B t^4 + C t^3 + D t^2 + E t + F
type Coeff int

const (
	A Coeff = iota
	B
	C
	D
	E
	F
)

// PosVelAcc selects which time derivative of the polynomial to evaluate.
type PosVelAcc int

const (
	Position PosVelAcc = iota
	Velocity
	Acceleration
)

func (d PosVelAcc) Valid() bool {
	return d >= Position && d <= Acceleration
}

func (d PosVelAcc) String() string {
	switch d {
	case Position:
		return "pos"
	case Velocity:
		return "vel"
	case Acceleration:
		return "acc"
	default:
		return fmt.Sprintf("PosVelAcc(%d)", int(d))
	}
}

// Coefficients is one axis worth of polynomial coefficients, indexed by Coeff.
type Coefficients [CoeffCount]float64

// CoeffValues holds the coefficients of both planar axes.
type CoeffValues struct {
	X Coefficients
	Y Coefficients
}

// Axis returns the coefficients of the given axis.
func (cv CoeffValues) Axis(a math2d.Axis) Coefficients {
	switch a {
	case math2d.X:
		return cv.X
	case math2d.Y:
		return cv.Y
	default:
		panic("invalid axis")
	}
}

// ConstantCoeffs returns the coefficients of a polynomial which stays at p.
func ConstantCoeffs(p math2d.Vector2) CoeffValues {
	cv := CoeffValues{}
	cv.X[F] = p.X
	cv.Y[F] = p.Y
	return cv
}

// Spline is a planar polynomial of fixed degree. It knows nothing about the
// interval it is valid on; callers keep t inside it.
type Spline struct {
	coeff CoeffValues
}

func NewSpline(cv CoeffValues) Spline {
	return Spline{coeff: cv}
}

// SetCoefficients replaces the coefficients of both axes at once.
func (s *Spline) SetCoefficients(cv CoeffValues) {
	s.coeff = cv
}

func (s *Spline) Coefficients() CoeffValues {
	return s.coeff
}

// Evaluate returns the position, velocity or acceleration at time t.
func (s *Spline) Evaluate(d PosVelAcc, t float64) math2d.Vector2 {
	return math2d.Vector2{
		X: evaluate(&s.coeff.X, d, t),
		Y: evaluate(&s.coeff.Y, d, t),
	}
}

func evaluate(c *Coefficients, d PosVelAcc, t float64) float64 {
	switch d {
	case Position:
		return ((((c[A]*t+c[B])*t+c[C])*t+c[D])*t+c[E])*t + c[F]
	case Velocity:
		return (((5*c[A]*t+4*c[B])*t+3*c[C])*t+2*c[D])*t + c[E]
	case Acceleration:
		return ((20*c[A]*t+12*c[B])*t+6*c[C])*t + 2*c[D]
	default:
		panic("invalid derivative order")
	}
}

// Basis returns the partial derivatives of the d-th derivative at time t with
// respect to each coefficient. Since the polynomial is linear in its
// coefficients, Evaluate(d, t) on one axis equals the dot product of Basis(d, t)
// with that axis' coefficients.
func Basis(d PosVelAcc, t float64) Coefficients {
	t2 := t * t
	t3 := t2 * t

	switch d {
	case Position:
		return Coefficients{A: t3 * t2, B: t2 * t2, C: t3, D: t2, E: t, F: 1}
	case Velocity:
		return Coefficients{A: 5 * t2 * t2, B: 4 * t3, C: 3 * t2, D: 2 * t, E: 1}
	case Acceleration:
		return Coefficients{A: 20 * t3, B: 12 * t2, C: 6 * t, D: 2}
	default:
		panic("invalid derivative order")
	}
}

// Dot returns the sum of the products of matching coefficients.
func (c Coefficients) Dot(cc Coefficients) float64 {
	sum := 0.0
	for i := range c {
		sum += c[i] * cc[i]
	}
	return sum
}
