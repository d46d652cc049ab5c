package motion

import (
	"github.com/xlrobotics/towr/math2d"
	"github.com/xlrobotics/towr/schedule"
	"github.com/xlrobotics/towr/spline"
)

func step(lead, swing, trail float64, foot int) schedule.EffectorSchedule {
	return schedule.EffectorSchedule{
		{Kind: spline.LeadingSupport, Duration: lead, Foot: foot},
		{Kind: spline.Swing, Duration: swing, Foot: foot},
		{Kind: spline.TrailingSupport, Duration: trail, Foot: foot},
	}
}

// twoSteps swings twice, with a stance in between.
func twoSteps(foot int) schedule.EffectorSchedule {
	return schedule.EffectorSchedule{
		{Kind: spline.LeadingSupport, Duration: 0.2, Foot: foot},
		{Kind: spline.Swing, Duration: 0.3, Foot: foot},
		{Kind: spline.IntermediateSupport, Duration: 0.1, Foot: foot},
		{Kind: spline.Swing, Duration: 0.25, Foot: foot},
		{Kind: spline.TrailingSupport, Duration: 0.15, Foot: foot},
	}
}

var (
	initialLeft  = math2d.Vector2{X: 0.3, Y: 0.2}
	initialRight = math2d.Vector2{X: 0.3, Y: -0.2}
)

func biped() ([]math2d.Vector2, schedule.ContactSchedule) {
	return []math2d.Vector2{initialLeft, initialRight},
		schedule.ContactSchedule{step(0.3, 0.4, 0.3, 0), step(0.5, 0.3, 0.2, 1)}
}

// sampleTimes covers the whole motion, including both ends, every boundary of
// the biped schedules, and a little beyond either end.
func sampleTimes(total float64) []float64 {
	ts := []float64{-0.01, 0, 0.2, 0.3, 0.5, 0.6, 0.7, 0.8, 0.85, total, total + 0.01}
	for t := 0.013; t < total; t += 0.047 {
		ts = append(ts, t)
	}
	return ts
}
