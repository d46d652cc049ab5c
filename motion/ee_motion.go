package motion

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/xlrobotics/towr/math2d"
	"github.com/xlrobotics/towr/schedule"
	"github.com/xlrobotics/towr/spline"
)

// EffectorMotion is the trajectory of a single endeffector, made of one phase
// per entry of its schedule.
//
// The motion is parametrized by the footholds it steps onto. The initial
// contact is fixed. Every swing moves the foot from the current contact onto a
// new one, and the new contact's x and y are the only free parameters the
// swing adds. Support phases hold the current contact and add nothing. So
// contact j (j >= 1) owns local parameters 2(j-1) and 2(j-1)+1.
//
// A swing from c to c' over duration T follows the quintic with zero velocity
// and acceleration at both ends:
//
//	p(t) = c + (c' - c) * (10u^3 - 15u^4 + 6u^5), u = t/T
//
// which makes the endpoint positions the only thing a swing shares with its
// neighbours.
type EffectorMotion struct {
	phases []*spline.Phase

	// cumulative end time of each phase
	ends []float64

	// contacts[0] is the initial contact; the rest are parameters.
	contacts []math2d.Vector2

	// indices into contacts, per phase. from == to for support phases.
	from []int
	to   []int
}

// NewEffectorMotion builds the phases for one effector's schedule. Every
// contact starts out at the initial position.
func NewEffectorMotion(initial math2d.Vector2, es schedule.EffectorSchedule) (*EffectorMotion, error) {
	if err := (schedule.ContactSchedule{es}).Validate(); err != nil {
		return nil, err
	}

	if !initial.Finite() {
		return nil, fmt.Errorf("%w: initial contact %v", schedule.ErrMalformedSchedule, initial)
	}

	m := &EffectorMotion{
		phases: make([]*spline.Phase, len(es)),
		ends:   make([]float64, len(es)),
		from:   make([]int, len(es)),
		to:     make([]int, len(es)),
	}

	durations := make([]float64, len(es))
	contact := 0

	for i, ps := range es {
		p, err := spline.NewPhase(i, ps.Duration, ps.Kind, ps.Foot)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", schedule.ErrMalformedSchedule, err)
		}

		m.from[i] = contact
		if ps.Kind == spline.Swing {
			contact += 1
		}
		m.to[i] = contact

		m.phases[i] = p
		durations[i] = ps.Duration
	}

	floats.CumSum(m.ends, durations)

	m.contacts = make([]math2d.Vector2, contact+1)
	for j := range m.contacts {
		m.contacts[j] = initial
	}

	m.updateCoefficients()
	return m, nil
}

// TotalDuration returns the sum of the phase durations.
func (m *EffectorMotion) TotalDuration() float64 {
	return m.ends[len(m.ends)-1]
}

// NumParameters returns the number of local optimization parameters.
func (m *EffectorMotion) NumParameters() int {
	return math2d.AxisCount * (len(m.contacts) - 1)
}

// Phases returns copies of the phases in timeline order. Setting their
// coefficients doesn't affect the motion.
func (m *EffectorMotion) Phases() []spline.Phase {
	out := make([]spline.Phase, len(m.phases))
	for i, p := range m.phases {
		out[i] = *p
	}
	return out
}

// Contacts returns a copy of the contact positions, starting with the initial
// one.
func (m *EffectorMotion) Contacts() []math2d.Vector2 {
	out := make([]math2d.Vector2, len(m.contacts))
	copy(out, m.contacts)
	return out
}

// PhaseStart returns the global time at which phase i begins.
func (m *EffectorMotion) PhaseStart(i int) float64 {
	if i == 0 {
		return 0
	}
	return m.ends[i-1]
}

// GetLocalParameters returns the free contact positions, flattened x then y.
func (m *EffectorMotion) GetLocalParameters() []float64 {
	x := make([]float64, m.NumParameters())
	for j := 1; j < len(m.contacts); j++ {
		for _, a := range math2d.Axes {
			x[paramIndex(j, a)] = m.contacts[j].At(a)
		}
	}
	return x
}

// SetLocalParameters is the inverse of GetLocalParameters. The motion is left
// untouched if x has the wrong length.
func (m *EffectorMotion) SetLocalParameters(x []float64) error {
	if len(x) != m.NumParameters() {
		return fmt.Errorf("%w: got %d local parameters, want %d", ErrDimensionMismatch, len(x), m.NumParameters())
	}

	for j := 1; j < len(m.contacts); j++ {
		m.contacts[j] = math2d.Vector2{
			X: x[paramIndex(j, math2d.X)],
			Y: x[paramIndex(j, math2d.Y)],
		}
	}

	m.updateCoefficients()
	return nil
}

// LocateActivePhase returns the index of the phase which is active at global
// time t, and the time relative to the start of that phase. Phases cover
// [start, end), except the last one which also includes its end. Times outside
// the motion are clamped to its first or last instant.
func (m *EffectorMotion) LocateActivePhase(t float64) (int, float64) {
	if !(t > 0) {
		return 0, 0
	}

	last := len(m.phases) - 1
	if t >= m.ends[last] {
		return last, m.phases[last].Duration()
	}

	for i, end := range m.ends {
		if t < end {
			return i, t - m.PhaseStart(i)
		}
	}

	// unreachable, t < m.ends[last]
	return last, m.phases[last].Duration()
}

// Evaluate returns the d-th derivative of the position at global time t.
func (m *EffectorMotion) Evaluate(d spline.PosVelAcc, t float64) math2d.Vector2 {
	i, tl := m.LocateActivePhase(t)
	return m.phases[i].Evaluate(d, tl)
}

func (m *EffectorMotion) EvaluatePosition(t float64) math2d.Vector2 {
	return m.Evaluate(spline.Position, t)
}

func (m *EffectorMotion) EvaluateVelocity(t float64) math2d.Vector2 {
	return m.Evaluate(spline.Velocity, t)
}

func (m *EffectorMotion) EvaluateAcceleration(t float64) math2d.Vector2 {
	return m.Evaluate(spline.Acceleration, t)
}

// State returns position, velocity and acceleration at global time t.
func (m *EffectorMotion) State(t float64) math2d.StateLin2d {
	i, tl := m.LocateActivePhase(t)
	p := m.phases[i]

	return math2d.StateLin2d{
		Pos: p.Evaluate(spline.Position, tl),
		Vel: p.Evaluate(spline.Velocity, tl),
		Acc: p.Evaluate(spline.Acceleration, tl),
	}
}

// JacobianRow returns the derivative of the position on the given axis at
// global time t with respect to each local parameter.
func (m *EffectorMotion) JacobianRow(t float64, a math2d.Axis) JacobianRow {
	return m.JacobianRowAt(spline.Position, t, a)
}

// JacobianRowAt is JacobianRow for any derivative order. Only the contacts
// the active phase starts and ends at are structural entries.
func (m *EffectorMotion) JacobianRowAt(d spline.PosVelAcc, t float64, a math2d.Axis) JacobianRow {
	if !a.Valid() {
		panic("invalid axis")
	}

	row := NewJacobianRow(m.NumParameters())

	i, tl := m.LocateActivePhase(t)
	p := m.phases[i]
	basis := spline.Basis(d, p.Clamp(tl))

	if p.Kind() != spline.Swing {
		if j := m.from[i]; j > 0 {
			row.add(paramIndex(j, a), basis[spline.F])
		}
		return row
	}

	// The coefficients are linear in both contacts: F follows the start
	// contact, A..C follow the difference between them.
	wTo := basis.Dot(swingSensitivity(p.Duration()))
	wFrom := basis[spline.F] - wTo

	if j := m.from[i]; j > 0 {
		row.add(paramIndex(j, a), wFrom)
	}
	if j := m.to[i]; j > 0 {
		row.add(paramIndex(j, a), wTo)
	}

	return row
}

func (m *EffectorMotion) updateCoefficients() {
	for i, p := range m.phases {
		c := m.contacts[m.from[i]]

		if p.Kind() != spline.Swing {
			p.SetCoefficients(spline.ConstantCoeffs(c))
			continue
		}

		p.SetCoefficients(swingCoeffs(c, m.contacts[m.to[i]], p.Duration()))
	}
}

// swingSensitivity returns the derivative of each coefficient of a swing
// polynomial with respect to its end contact, on one axis.
func swingSensitivity(T float64) spline.Coefficients {
	T3 := T * T * T
	return spline.Coefficients{
		spline.A: 6 / (T3 * T * T),
		spline.B: -15 / (T3 * T),
		spline.C: 10 / T3,
	}
}

func swingCoeffs(from, to math2d.Vector2, T float64) spline.CoeffValues {
	sens := swingSensitivity(T)
	d := to.Subtract(from)

	cv := spline.CoeffValues{}
	for _, c := range []spline.Coeff{spline.A, spline.B, spline.C} {
		cv.X[c] = sens[c] * d.X
		cv.Y[c] = sens[c] * d.Y
	}
	cv.X[spline.F] = from.X
	cv.Y[spline.F] = from.Y

	return cv
}

// paramIndex returns the local index of the given axis of contact j.
func paramIndex(j int, a math2d.Axis) int {
	return math2d.AxisCount*(j-1) + int(a)
}
