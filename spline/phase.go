package spline

import (
	"errors"
	"fmt"
	"math"

	"github.com/xlrobotics/towr/math2d"
)

var (
	// ErrInvalidPhaseQuery is returned by the kind-specific accessors of Phase
	// when called on a phase of the other kind.
	ErrInvalidPhaseQuery = errors.New("spline: invalid phase query")

	// ErrInvalidPhase is returned by NewPhase for a non-positive or non-finite
	// duration, or an unknown kind.
	ErrInvalidPhase = errors.New("spline: invalid phase")
)

// Kind says whether an effector is in contact or swinging during a phase, and
// where the phase sits in the timeline.
type Kind int

const (
	LeadingSupport Kind = iota
	Swing
	IntermediateSupport
	TrailingSupport
)

var kindNames = map[Kind]string{
	LeadingSupport:      "leading_support",
	Swing:               "swing",
	IntermediateSupport: "intermediate_support",
	TrailingSupport:     "trailing_support",
}

func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown kind %q", ErrInvalidPhase, s)
}

// Phase is a Spline which is active for a fixed duration.
type Phase struct {
	id       int
	duration float64
	kind     Kind

	// current foot if swinging, otherwise the foot planned to swing next.
	foot int

	spline Spline
}

func NewPhase(id int, duration float64, kind Kind, foot int) (*Phase, error) {
	if !(duration > 0) || math.IsInf(duration, 0) {
		return nil, fmt.Errorf("%w: phase %d has duration %v", ErrInvalidPhase, id, duration)
	}

	if !kind.Valid() {
		return nil, fmt.Errorf("%w: phase %d has %v", ErrInvalidPhase, id, kind)
	}

	return &Phase{
		id:       id,
		duration: duration,
		kind:     kind,
		foot:     foot,
	}, nil
}

func (p *Phase) Id() int { return p.id }
func (p *Phase) Duration() float64 { return p.duration }
func (p *Phase) Kind() Kind { return p.kind }
func (p *Phase) IsFullSupport() bool { return p.kind != Swing }

// CurrentSwingFoot returns the foot being moved. Only valid during a swing; if
// this fails, the effector is in contact, so call PlannedNextFoot instead.
func (p *Phase) CurrentSwingFoot() (int, error) {
	if p.kind != Swing {
		return 0, fmt.Errorf("%w: phase %d is %v, not swing", ErrInvalidPhaseQuery, p.id, p.kind)
	}
	return p.foot, nil
}

// PlannedNextFoot returns the foot planned to swing once this support phase
// is complete.
func (p *Phase) PlannedNextFoot() (int, error) {
	if p.kind == Swing {
		return 0, fmt.Errorf("%w: phase %d is swing, not support", ErrInvalidPhaseQuery, p.id)
	}
	return p.foot, nil
}

// NodeCount returns how many whole samples of length dt fit in the phase, or
// 0 if dt isn't a positive finite number.
func (p *Phase) NodeCount(dt float64) int {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return 0
	}

	n := math.Floor(p.duration / dt)
	if n >= math.MaxInt32 {
		return math.MaxInt32
	}
	return int(n)
}

func (p *Phase) SetCoefficients(cv CoeffValues) {
	p.spline.SetCoefficients(cv)
}

func (p *Phase) Coefficients() CoeffValues {
	return p.spline.Coefficients()
}

// Evaluate returns the d-th derivative at the phase-relative time t. Times
// outside [0, duration] are clamped, since callers locating a phase from a
// global time may overshoot the boundary by a rounding error.
func (p *Phase) Evaluate(d PosVelAcc, t float64) math2d.Vector2 {
	return p.spline.Evaluate(d, p.Clamp(t))
}

// Clamp limits the phase-relative time t to [0, duration].
func (p *Phase) Clamp(t float64) float64 {
	return math.Max(0, math.Min(t, p.duration))
}

func (p Phase) String() string {
	return fmt.Sprintf("&Phase{id=%d %v T=%.3f foot=%d}", p.id, p.kind, p.duration, p.foot)
}
