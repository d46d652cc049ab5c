package schedule

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xlrobotics/towr/spline"
)

func walk(lead, swing, trail float64, foot int) EffectorSchedule {
	return EffectorSchedule{
		{Kind: spline.LeadingSupport, Duration: lead, Foot: foot},
		{Kind: spline.Swing, Duration: swing, Foot: foot},
		{Kind: spline.TrailingSupport, Duration: trail, Foot: foot},
	}
}

func TestValidate(t *testing.T) {
	type eg struct {
		name string
		cs   ContactSchedule
		ok   bool
	}

	examples := []eg{
		{"two feet", ContactSchedule{walk(0.3, 0.4, 0.3, 0), walk(0.5, 0.3, 0.2, 1)}, true},
		{"single stance", ContactSchedule{{{Kind: spline.LeadingSupport, Duration: 1}}}, true},
		{"empty", ContactSchedule{}, false},
		{"no phases", ContactSchedule{walk(0.3, 0.4, 0.3, 0), {}}, false},
		{"zero duration", ContactSchedule{walk(0.3, 0, 0.7, 0)}, false},
		{"negative duration", ContactSchedule{walk(-0.3, 0.6, 0.7, 0)}, false},
		{"nan duration", ContactSchedule{walk(math.NaN(), 0.6, 0.7, 0)}, false},
		{"unknown kind", ContactSchedule{{{Kind: spline.Kind(42), Duration: 1}}}, false},
		{"mismatched totals", ContactSchedule{walk(0.3, 0.4, 0.3, 0), walk(0.5, 0.4, 0.3, 1)}, false},
	}

	for _, x := range examples {
		err := x.cs.Validate()
		if x.ok {
			assert.NoError(t, err, x.name)
		} else {
			assert.ErrorIs(t, err, ErrMalformedSchedule, x.name)
		}
	}
}

func TestDurations(t *testing.T) {
	cs := ContactSchedule{walk(0.3, 0.4, 0.3, 0), walk(0.5, 0.3, 0.2, 1)}

	assert.InDelta(t, 1.0, cs.TotalDuration(), 1e-12)
	assert.Equal(t, 2, cs.NumEndeffectors())
	assert.Equal(t, 1, cs[1].SwingCount())
	assert.Equal(t, 0.0, ContactSchedule{}.TotalDuration())
}

func TestValidateToleranceScalesWithDuration(t *testing.T) {
	long := EffectorSchedule{{Kind: spline.LeadingSupport, Duration: 5000}}
	drifted := EffectorSchedule{{Kind: spline.LeadingSupport, Duration: 5000 + 2e-9}}
	assert.NoError(t, ContactSchedule{long, drifted}.Validate())

	short := EffectorSchedule{{Kind: spline.LeadingSupport, Duration: 0.5}}
	off := EffectorSchedule{{Kind: spline.LeadingSupport, Duration: 0.5 + 2e-9}}
	assert.ErrorIs(t, ContactSchedule{short, off}.Validate(), ErrMalformedSchedule)

	far := EffectorSchedule{{Kind: spline.LeadingSupport, Duration: 5000.1}}
	assert.ErrorIs(t, ContactSchedule{long, far}.Validate(), ErrMalformedSchedule)
}
