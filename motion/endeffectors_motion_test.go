package motion

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"

	"github.com/xlrobotics/towr/math2d"
	"github.com/xlrobotics/towr/schedule"
	"github.com/xlrobotics/towr/spline"
)

func newBiped(t *testing.T) *EndeffectorsMotion {
	pos, cs := biped()
	m, err := NewEndeffectorsMotion(pos, cs)
	require.NoError(t, err)
	return m
}

func TestBipedScenario(t *testing.T) {
	m := newBiped(t)

	assert.Equal(t, 2, m.GetNumberOfEndeffectors())
	assert.InDelta(t, 1.0, m.GetTotalTime(), 1e-12)
	assert.Equal(t, 4, m.NumParameters())

	start := m.GetEndeffectors(0)
	assert.Equal(t, initialLeft, start.At(0).Pos)
	assert.Equal(t, initialRight, start.At(1).Pos)

	for _, tt := range []float64{1.0, m.GetTotalTime(), 1.0 + 1e-9} {
		for _, s := range m.GetEndeffectorsVec(tt) {
			assert.True(t, s.Pos.Finite())
			assert.True(t, s.Vel.Finite())
			assert.True(t, s.Acc.Finite())
		}
	}
}

func TestNewEndeffectorsMotionRejectsMalformed(t *testing.T) {
	pos, _ := biped()

	_, err := NewEndeffectorsMotion(pos, schedule.ContactSchedule{step(0.3, 0.4, 0.3, 0), step(0.5, 0.4, 0.3, 1)})
	assert.ErrorIs(t, err, schedule.ErrMalformedSchedule)

	_, err = NewEndeffectorsMotion(pos, schedule.ContactSchedule{})
	assert.ErrorIs(t, err, schedule.ErrMalformedSchedule)

	_, err = NewEndeffectorsMotion(pos[:1], schedule.ContactSchedule{step(0.3, 0.4, 0.3, 0), step(0.5, 0.3, 0.2, 1)})
	assert.ErrorIs(t, err, schedule.ErrMalformedSchedule)
}

func TestIndexStart(t *testing.T) {
	pos := []math2d.Vector2{initialLeft, initialRight, {X: -0.3, Y: 0.2}}
	cs := schedule.ContactSchedule{
		twoSteps(0),
		{{Kind: spline.LeadingSupport, Duration: 1}},
		step(0.5, 0.3, 0.2, 2),
	}

	m, err := NewEndeffectorsMotion(pos, cs)
	require.NoError(t, err)

	assert.Equal(t, 0, m.IndexStart(0))
	assert.Equal(t, 4, m.ParameterCount(0))
	assert.Equal(t, 4, m.IndexStart(1))
	assert.Equal(t, 0, m.ParameterCount(1))
	assert.Equal(t, 4, m.IndexStart(2))
	assert.Equal(t, 2, m.ParameterCount(2))
	assert.Equal(t, 6, m.GetOptimizationParameters().Len())
	assert.Panics(t, func() { m.IndexStart(3) })
}

func TestParametersRoundTrip(t *testing.T) {
	m := newBiped(t)

	require.NoError(t, m.SetOptimizationParameters(mat.NewVecDense(4, []float64{0.5, 0.25, 0.45, -0.15})))
	x := m.GetOptimizationParameters()
	assert.Equal(t, []float64{0.5, 0.25, 0.45, -0.15}, x.RawVector().Data)

	var before []EEState
	for _, tt := range sampleTimes(m.GetTotalTime()) {
		before = append(before, m.GetEndeffectors(tt))
	}

	require.NoError(t, m.SetOptimizationParameters(x))

	for i, tt := range sampleTimes(m.GetTotalTime()) {
		assert.Equal(t, before[i], m.GetEndeffectors(tt), "t=%v", tt)
	}
}

func TestGetOptimizationParametersIsACopy(t *testing.T) {
	m := newBiped(t)

	x := m.GetOptimizationParameters()
	x.SetVec(0, 99)

	assert.Equal(t, initialLeft.X, m.GetOptimizationParameters().AtVec(0))
}

func TestDimensionMismatch(t *testing.T) {
	m := newBiped(t)
	require.NoError(t, m.SetOptimizationParameters(mat.NewVecDense(4, []float64{0.5, 0.25, 0.45, -0.15})))

	prior := m.GetOptimizationParameters()
	state := m.GetEndeffectors(0.9)

	for _, n := range []int{3, 5} {
		err := m.SetOptimizationParameters(mat.NewVecDense(n, nil))
		assert.ErrorIs(t, err, ErrDimensionMismatch)
	}

	assert.Equal(t, prior, m.GetOptimizationParameters())
	assert.Equal(t, state, m.GetEndeffectors(0.9))
}

func TestNoParameters(t *testing.T) {
	m, err := NewEndeffectorsMotion(
		[]math2d.Vector2{initialLeft},
		schedule.ContactSchedule{{{Kind: spline.LeadingSupport, Duration: 0.5}}},
	)
	require.NoError(t, err)

	x := m.GetOptimizationParameters()
	assert.Equal(t, 0, x.Len())
	assert.NoError(t, m.SetOptimizationParameters(x))

	row, err := m.GetJacobianWrtOptParams(0.2, 0, math2d.X)
	require.NoError(t, err)
	assert.Equal(t, 0, row.Len())
	assert.Equal(t, 0, row.Dense().Len())
}

func TestJacobianSparsity(t *testing.T) {
	m := newBiped(t)
	require.NoError(t, m.SetOptimizationParameters(mat.NewVecDense(4, []float64{0.5, 0.25, 0.45, -0.15})))

	for ee := EndeffectorID(0); int(ee) < m.GetNumberOfEndeffectors(); ee++ {
		lo := m.IndexStart(ee)
		hi := lo + m.ParameterCount(ee)

		for _, tt := range sampleTimes(m.GetTotalTime()) {
			for _, a := range math2d.Axes {
				for _, d := range []spline.PosVelAcc{spline.Position, spline.Velocity, spline.Acceleration} {
					row, err := m.GetJacobianWrtOptParamsAt(d, tt, ee, a)
					require.NoError(t, err)
					assert.Equal(t, m.NumParameters(), row.Len())

					row.Do(func(i int, v float64) {
						assert.True(t, i >= lo && i < hi, "%v t=%v %v: entry %d outside [%d, %d)", ee, tt, a, i, lo, hi)
					})

					dense := row.Dense()
					for i := 0; i < dense.Len(); i++ {
						if i < lo || i >= hi {
							assert.Equal(t, 0.0, dense.AtVec(i))
						}
					}
				}
			}
		}
	}
}

func TestGradientCheck(t *testing.T) {
	m := newBiped(t)
	x0 := []float64{0.5, 0.25, 0.45, -0.15}
	settings := &fd.Settings{Formula: fd.Central, Step: 1e-6}

	for ee := EndeffectorID(0); int(ee) < m.GetNumberOfEndeffectors(); ee++ {
		for _, tt := range sampleTimes(m.GetTotalTime()) {
			for _, a := range math2d.Axes {
				require.NoError(t, m.SetOptimizationParameters(mat.NewVecDense(4, append([]float64(nil), x0...))))
				row, err := m.GetJacobianWrtOptParams(tt, ee, a)
				require.NoError(t, err)

				f := func(x []float64) float64 {
					v := mat.NewVecDense(len(x), append([]float64(nil), x...))
					if err := m.SetOptimizationParameters(v); err != nil {
						panic(err)
					}
					return m.GetEndeffectors(tt).At(ee).Pos.At(a)
				}
				grad := fd.Gradient(nil, f, x0, settings)

				for k := range grad {
					assert.InDelta(t, grad[k], row.At(k), 1e-6, "%v t=%v %v param %d", ee, tt, a, k)
				}
			}
		}
	}
}

func TestPerturbationMatchesJacobian(t *testing.T) {
	m := newBiped(t)
	x0 := []float64{0.5, 0.25, 0.45, -0.15}
	eps := 1e-4

	for k := range x0 {
		for _, tt := range []float64{0.45, 0.65, 0.72, 0.95} {
			require.NoError(t, m.SetOptimizationParameters(mat.NewVecDense(4, append([]float64(nil), x0...))))
			base := m.GetEndeffectors(tt)

			x := append([]float64(nil), x0...)
			x[k] += eps
			require.NoError(t, m.SetOptimizationParameters(mat.NewVecDense(4, x)))
			moved := m.GetEndeffectors(tt)

			for ee := EndeffectorID(0); ee < 2; ee++ {
				for _, a := range math2d.Axes {
					row, err := m.GetJacobianWrtOptParams(tt, ee, a)
					require.NoError(t, err)

					delta := moved.At(ee).Pos.At(a) - base.At(ee).Pos.At(a)
					assert.InDelta(t, row.At(k)*eps, delta, 1e-10, "param %d t=%v %v %v", k, tt, ee, a)
				}
			}
		}
	}
}

func TestJacobianQueryErrors(t *testing.T) {
	m := newBiped(t)

	_, err := m.GetJacobianWrtOptParams(0.5, 2, math2d.X)
	assert.ErrorIs(t, err, ErrUnknownEndeffector)

	_, err = m.GetJacobianWrtOptParams(0.5, -1, math2d.X)
	assert.ErrorIs(t, err, ErrUnknownEndeffector)

	_, err = m.GetJacobianWrtOptParams(0.5, 0, math2d.Axis(7))
	assert.ErrorIs(t, err, ErrInvalidAxis)

	_, err = m.GetJacobianWrtOptParamsAt(spline.PosVelAcc(5), 0.5, 0, math2d.X)
	assert.ErrorIs(t, err, ErrInvalidAxis)
}

func TestPositionsStayAtInitialUntilMoved(t *testing.T) {
	m := newBiped(t)

	for _, tt := range sampleTimes(m.GetTotalTime()) {
		s := m.GetEndeffectors(tt)
		assert.InDelta(t, 0, s.At(0).Pos.Distance(initialLeft), 1e-12)
		assert.InDelta(t, 0, s.At(1).Pos.Distance(initialRight), 1e-12)
		assert.False(t, math.IsNaN(s.At(1).Acc.X))
	}
}
