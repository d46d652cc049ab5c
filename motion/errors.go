package motion

import "errors"

var (
	// ErrDimensionMismatch is returned when a parameter vector doesn't have
	// exactly as many entries as the motion has optimization parameters.
	// Nothing is modified when it's returned.
	ErrDimensionMismatch = errors.New("motion: dimension mismatch")

	// ErrUnknownEndeffector is returned when an endeffector id is outside
	// [0, GetNumberOfEndeffectors()).
	ErrUnknownEndeffector = errors.New("motion: unknown endeffector")

	// ErrInvalidAxis is returned when a Jacobian row is requested for an axis
	// other than X or Y, or for an unknown derivative order.
	ErrInvalidAxis = errors.New("motion: invalid axis or derivative")
)
