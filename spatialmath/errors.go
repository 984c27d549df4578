package spatialmath

import "github.com/pkg/errors"

func newRotationMatrixInputError(m []float64) error {
	return errors.Errorf("input slice has %d elements, need exactly 9", len(m))
}

func newRotationMatrixDimsError(rows, cols int) error {
	return errors.Errorf("rotation matrix must be 3x3, got %dx%d", rows, cols)
}

// NewPoseVectorLengthError is returned when a flat pose vector does not hold exactly six values.
func NewPoseVectorLengthError(n int) error {
	return errors.Errorf("pose vector must have 6 elements (x, y, z, roll, pitch, yaw), got %d", n)
}
