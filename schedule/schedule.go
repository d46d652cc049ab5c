// Package schedule describes when each end effector is in contact and when it
// swings. Schedules are produced by a planner outside this module and are
// never modified once handed over.
package schedule

import (
	"errors"
	"fmt"
	"math"

	"github.com/xlrobotics/towr/spline"
)

// ErrMalformedSchedule is returned by Validate, and by anything constructed
// from a schedule which fails it.
var ErrMalformedSchedule = errors.New("schedule: malformed contact schedule")

// DurationTolerance is the largest relative difference between two effectors'
// total durations which is still considered equal. Totals are sums of floats,
// so they rarely match exactly. Totals shorter than a second are compared with
// an absolute tolerance of the same size.
const DurationTolerance = 1e-9

// PhaseSpec is one entry of an effector's timeline. For swing phases Foot is
// the foot being moved, otherwise it's the foot planned to move next.
type PhaseSpec struct {
	Kind     spline.Kind
	Duration float64
	Foot     int
}

func (ps PhaseSpec) String() string {
	return fmt.Sprintf("%v(%.3fs, foot=%d)", ps.Kind, ps.Duration, ps.Foot)
}

// EffectorSchedule is the ordered timeline of a single effector.
type EffectorSchedule []PhaseSpec

// TotalDuration returns the sum of the phase durations.
func (es EffectorSchedule) TotalDuration() float64 {
	total := 0.0
	for _, ps := range es {
		total += ps.Duration
	}
	return total
}

// SwingCount returns the number of swing phases.
func (es EffectorSchedule) SwingCount() int {
	n := 0
	for _, ps := range es {
		if ps.Kind == spline.Swing {
			n += 1
		}
	}
	return n
}

// ContactSchedule holds one timeline per end effector, indexed by effector id.
type ContactSchedule []EffectorSchedule

func (cs ContactSchedule) NumEndeffectors() int {
	return len(cs)
}

// TotalDuration returns the duration shared by every effector. Only meaningful
// for a schedule which passes Validate.
func (cs ContactSchedule) TotalDuration() float64 {
	if len(cs) == 0 {
		return 0
	}
	return cs[0].TotalDuration()
}

// Validate checks that every effector has at least one phase, every phase has a
// known kind and a positive finite duration, and that all effectors end at the
// same time.
func (cs ContactSchedule) Validate() error {
	if len(cs) == 0 {
		return fmt.Errorf("%w: no endeffectors", ErrMalformedSchedule)
	}

	for ee, es := range cs {
		if len(es) == 0 {
			return fmt.Errorf("%w: endeffector %d has no phases", ErrMalformedSchedule, ee)
		}

		for i, ps := range es {
			if !ps.Kind.Valid() {
				return fmt.Errorf("%w: endeffector %d phase %d has %v", ErrMalformedSchedule, ee, i, ps.Kind)
			}

			if !(ps.Duration > 0) || math.IsInf(ps.Duration, 0) {
				return fmt.Errorf("%w: endeffector %d phase %d has duration %v", ErrMalformedSchedule, ee, i, ps.Duration)
			}
		}
	}

	total := cs[0].TotalDuration()
	tol := DurationTolerance * math.Max(1, total)

	for ee, es := range cs[1:] {
		if d := es.TotalDuration(); math.Abs(d-total) > tol {
			return fmt.Errorf("%w: endeffector %d lasts %vs, but endeffector 0 lasts %vs", ErrMalformedSchedule, ee+1, d, total)
		}
	}

	return nil
}
