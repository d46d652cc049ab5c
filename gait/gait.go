// Package gait builds contact schedules for simple periodic walks, where the
// legs are split into groups which take turns to swing. It stands in for a
// real contact planner when there isn't one.
package gait

import (
	"fmt"

	"github.com/xlrobotics/towr/schedule"
	"github.com/xlrobotics/towr/spline"
)

type Gait struct {
	Legs int

	// How many groups the legs are split into. Leg i belongs to group
	// i % Groups, and exactly one group is in the air at a time.
	Groups int

	// How many times every leg steps.
	Cycles int

	// Time (in seconds) a group spends in the air per step.
	SwingDuration float64

	// Time (in seconds) all the feet are on the ground between two swings,
	// and at either end of the walk.
	SupportDuration float64
}

// TheGait returns a walk which moves two legs at a time, or one at a time for
// fewer than four legs. For six legs that's:
//
//	|-2-|---4---|---4---|-2-|
//	    0,3     1,4     2,5
func TheGait(legs int, stepDuration float64) Gait {
	groups := legs / 2
	if legs < 4 {
		groups = legs
	}

	return Gait{
		Legs:            legs,
		Groups:          groups,
		Cycles:          1,
		SwingDuration:   stepDuration,
		SupportDuration: stepDuration / 4,
	}
}

func (g Gait) Validate() error {
	if g.Legs < 1 {
		return fmt.Errorf("%w: gait needs at least one leg, got %d", schedule.ErrMalformedSchedule, g.Legs)
	}

	if g.Groups < 1 || g.Groups > g.Legs {
		return fmt.Errorf("%w: gait can't split %d legs into %d groups", schedule.ErrMalformedSchedule, g.Legs, g.Groups)
	}

	if g.Cycles < 1 {
		return fmt.Errorf("%w: gait needs at least one cycle, got %d", schedule.ErrMalformedSchedule, g.Cycles)
	}

	if !(g.SwingDuration > 0) || !(g.SupportDuration > 0) {
		return fmt.Errorf("%w: gait durations must be positive, got swing=%v support=%v", schedule.ErrMalformedSchedule, g.SwingDuration, g.SupportDuration)
	}

	return nil
}

// Length returns the duration of the whole walk.
func (g Gait) Length() float64 {
	return float64(g.steps())*g.slot() + g.SupportDuration
}

// Schedule returns the contact schedule of every leg, indexed by leg.
func (g Gait) Schedule() (schedule.ContactSchedule, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	cs := make(schedule.ContactSchedule, g.Legs)
	for leg := range cs {
		cs[leg] = g.singleLegSchedule(leg)
	}

	return cs, cs.Validate()
}

// slot is the time between the start of two consecutive swings.
func (g Gait) slot() float64 {
	return g.SupportDuration + g.SwingDuration
}

func (g Gait) steps() int {
	return g.Groups * g.Cycles
}

func (g Gait) singleLegSchedule(leg int) schedule.EffectorSchedule {
	es := schedule.EffectorSchedule{}
	kind := spline.LeadingSupport
	cursor := 0.0

	for k := leg % g.Groups; k < g.steps(); k += g.Groups {
		liftOff := float64(k)*g.slot() + g.SupportDuration
		touchDown := float64(k+1) * g.slot()

		es = append(es,
			schedule.PhaseSpec{Kind: kind, Duration: liftOff - cursor, Foot: leg},
			schedule.PhaseSpec{Kind: spline.Swing, Duration: touchDown - liftOff, Foot: leg},
		)

		kind = spline.IntermediateSupport
		cursor = touchDown
	}

	return append(es, schedule.PhaseSpec{Kind: spline.TrailingSupport, Duration: g.Length() - cursor, Foot: leg})
}
