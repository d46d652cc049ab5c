package math2d

import (
	"fmt"
)

// StateLin2d is the linear state (position and its first two time derivatives)
// of a point moving in the plane.
type StateLin2d struct {
	Pos Vector2
	Vel Vector2
	Acc Vector2
}

func (s StateLin2d) String() string {
	return fmt.Sprintf("State{p=%s v=%s a=%s}", s.Pos, s.Vel, s.Acc)
}
