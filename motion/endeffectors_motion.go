// Package motion turns a vector of optimization parameters into the
// trajectories of a robot's endeffectors (feet, hands), and provides the exact
// derivatives of those trajectories with respect to the parameters.
package motion

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/xlrobotics/towr/math2d"
	"github.com/xlrobotics/towr/schedule"
	"github.com/xlrobotics/towr/spline"
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "motion",
})

type EndeffectorID int

func (ee EndeffectorID) String() string {
	return fmt.Sprintf("E%d", int(ee))
}

// EEState holds one state per endeffector, indexed by EndeffectorID.
type EEState []math2d.StateLin2d

func (s EEState) At(ee EndeffectorID) math2d.StateLin2d {
	return s[ee]
}

// EndeffectorsMotion is the motion of all the endeffectors of a robot. The
// global parameter vector is each endeffector's local parameters, one after
// the other in ascending id order. The layout is fixed at construction; only
// the values change.
type EndeffectorsMotion struct {
	endeffectors []*EffectorMotion

	// indexStart[ee] is the offset of ee's block in the global vector. The
	// extra last entry is the total number of parameters.
	indexStart []int
}

// NewEndeffectorsMotion lays out one EffectorMotion per entry of the schedule,
// starting at the matching initial contact position.
func NewEndeffectorsMotion(initialPos []math2d.Vector2, cs schedule.ContactSchedule) (*EndeffectorsMotion, error) {
	if err := cs.Validate(); err != nil {
		return nil, err
	}

	if len(initialPos) != len(cs) {
		return nil, fmt.Errorf("%w: %d initial positions for %d endeffectors", schedule.ErrMalformedSchedule, len(initialPos), len(cs))
	}

	m := &EndeffectorsMotion{
		endeffectors: make([]*EffectorMotion, len(cs)),
		indexStart:   make([]int, len(cs)+1),
	}

	for i, es := range cs {
		ee := EndeffectorID(i)

		em, err := NewEffectorMotion(initialPos[i], es)
		if err != nil {
			return nil, fmt.Errorf("endeffector %v: %w", ee, err)
		}

		m.endeffectors[i] = em
		m.indexStart[i+1] = m.indexStart[i] + em.NumParameters()

		log.Debugf("%v: %d phases, %d swings, params=[%d, %d)", ee, len(es), es.SwingCount(), m.indexStart[i], m.indexStart[i+1])
	}

	return m, nil
}

// GetNumberOfEndeffectors returns the fixed endeffector count.
func (m *EndeffectorsMotion) GetNumberOfEndeffectors() int {
	return len(m.endeffectors)
}

// NumParameters returns the length of the global parameter vector.
func (m *EndeffectorsMotion) NumParameters() int {
	return m.indexStart[len(m.endeffectors)]
}

// GetTotalTime returns the duration of the motion, which is shared by all of
// the endeffectors.
func (m *EndeffectorsMotion) GetTotalTime() float64 {
	return m.endeffectors[0].TotalDuration()
}

// Endeffector returns the motion of a single endeffector. Panics if ee is out
// of range.
func (m *EndeffectorsMotion) Endeffector(ee EndeffectorID) *EffectorMotion {
	return m.endeffectors[ee]
}

// IndexStart returns the offset of ee's parameters in the global vector.
// Panics if ee is out of range.
func (m *EndeffectorsMotion) IndexStart(ee EndeffectorID) int {
	m.mustBeValid(ee)
	return m.indexStart[ee]
}

// ParameterCount returns how many parameters ee owns. Panics if ee is out of
// range.
func (m *EndeffectorsMotion) ParameterCount(ee EndeffectorID) int {
	m.mustBeValid(ee)
	return m.indexStart[ee+1] - m.indexStart[ee]
}

// GetOptimizationParameters returns a fresh copy of the global parameter
// vector.
func (m *EndeffectorsMotion) GetOptimizationParameters() *mat.VecDense {
	n := m.NumParameters()
	if n == 0 {
		return &mat.VecDense{}
	}

	x := make([]float64, 0, n)
	for _, em := range m.endeffectors {
		x = append(x, em.GetLocalParameters()...)
	}

	return mat.NewVecDense(n, x)
}

// SetOptimizationParameters replaces every parameter. If x has the wrong length
// nothing is changed.
func (m *EndeffectorsMotion) SetOptimizationParameters(x mat.Vector) error {
	if x.Len() != m.NumParameters() {
		return fmt.Errorf("%w: got %d parameters, want %d", ErrDimensionMismatch, x.Len(), m.NumParameters())
	}

	for i, em := range m.endeffectors {
		local := make([]float64, em.NumParameters())
		for k := range local {
			local[k] = x.AtVec(m.indexStart[i] + k)
		}

		// can't fail, since the total length matches.
		if err := em.SetLocalParameters(local); err != nil {
			return err
		}
	}

	return nil
}

// GetJacobianWrtOptParams returns the derivative of ee's position on the
// given axis at time t, with respect to every entry of the global parameter
// vector. Entries outside ee's own block are always zero.
func (m *EndeffectorsMotion) GetJacobianWrtOptParams(t float64, ee EndeffectorID, a math2d.Axis) (JacobianRow, error) {
	return m.GetJacobianWrtOptParamsAt(spline.Position, t, ee, a)
}

// GetJacobianWrtOptParamsAt is GetJacobianWrtOptParams for velocity or
// acceleration.
func (m *EndeffectorsMotion) GetJacobianWrtOptParamsAt(d spline.PosVelAcc, t float64, ee EndeffectorID, a math2d.Axis) (JacobianRow, error) {
	if !m.valid(ee) {
		return JacobianRow{}, fmt.Errorf("%w: %v", ErrUnknownEndeffector, ee)
	}

	if !a.Valid() || !d.Valid() {
		return JacobianRow{}, fmt.Errorf("%w: %v %v", ErrInvalidAxis, d, a)
	}

	local := m.endeffectors[ee].JacobianRowAt(d, t, a)
	return local.embed(m.indexStart[ee], m.NumParameters()), nil
}

// GetEndeffectors returns the state of every endeffector at time t.
func (m *EndeffectorsMotion) GetEndeffectors(t float64) EEState {
	s := make(EEState, len(m.endeffectors))
	for i, em := range m.endeffectors {
		s[i] = em.State(t)
	}
	return s
}

// GetEndeffectorsVec is GetEndeffectors as a plain slice.
func (m *EndeffectorsMotion) GetEndeffectorsVec(t float64) []math2d.StateLin2d {
	return []math2d.StateLin2d(m.GetEndeffectors(t))
}

func (m *EndeffectorsMotion) valid(ee EndeffectorID) bool {
	return ee >= 0 && int(ee) < len(m.endeffectors)
}

func (m *EndeffectorsMotion) mustBeValid(ee EndeffectorID) {
	if !m.valid(ee) {
		panic(fmt.Sprintf("invalid endeffector: %v", ee))
	}
}
