package math2d

import (
	"fmt"
	"math"
)

type Vector2 struct {
	X float64
	Y float64
}

type Axis int

const (
	X Axis = iota
	Y
)

// AxisCount is the number of planar coordinates.
const AxisCount = 2

var (
	ZeroVector2 = Vector2{}
	Axes        = [AxisCount]Axis{X, Y}
)

func (a Axis) Valid() bool {
	return a == X || a == Y
}

func (a Axis) String() string {
	switch a {
	case X:
		return "X"
	case Y:
		return "Y"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

func (v Vector2) String() string {
	return fmt.Sprintf("&Vec2{x=%0.3f y=%0.3f}", v.X, v.Y)
}

// At returns the coordinate selected by the axis.
func (v Vector2) At(a Axis) float64 {
	switch a {
	case X:
		return v.X
	case Y:
		return v.Y
	default:
		panic("invalid axis")
	}
}

// Subtract returns the vector from vv to v.
func (v Vector2) Subtract(vv Vector2) Vector2 {
	return Vector2{
		(v.X - vv.X),
		(v.Y - vv.Y),
	}
}

func (v Vector2) Magnitude() float64 {
	return math.Sqrt((v.X * v.X) + (v.Y * v.Y))
}

// Distance calculates and returns the distance between this vector and another,
// as a float64.
func (v Vector2) Distance(vv Vector2) float64 {
	return v.Subtract(vv).Magnitude()
}

// Finite returns false if either coordinate is NaN or infinite.
func (v Vector2) Finite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) && !math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}
