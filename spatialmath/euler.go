package spatialmath

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// gimbalEpsilon is the threshold on cos(pitch) below which roll and yaw are no longer independent.
const gimbalEpsilon = 1e-9

// EulerAngles are three angles (in radians) used to represent the rotation of an object in 3D Euclidean space.
// The angles are extrinsic rotations about the fixed X, Y and Z axes, applied in that order, so that
// R = Rz(Yaw) * Ry(Pitch) * Rx(Roll). This matches the rpy convention used by URDF.
type EulerAngles struct {
	Roll  float64 `json:"roll" yaml:"roll"`   // phi
	Pitch float64 `json:"pitch" yaml:"pitch"` // theta
	Yaw   float64 `json:"yaw" yaml:"yaw"`     // psi
}

// NewEulerAngles creates an empty EulerAngles struct.
func NewEulerAngles() *EulerAngles {
	return &EulerAngles{Roll: 0, Pitch: 0, Yaw: 0}
}

// EulerAngles returns orientation in Euler angle representation.
func (ea *EulerAngles) EulerAngles() *EulerAngles {
	return ea
}

// Quaternion returns orientation in quaternion representation.
func (ea *EulerAngles) Quaternion() quat.Number {
	cr, sr := math.Cos(ea.Roll*0.5), math.Sin(ea.Roll*0.5)
	cp, sp := math.Cos(ea.Pitch*0.5), math.Sin(ea.Pitch*0.5)
	cy, sy := math.Cos(ea.Yaw*0.5), math.Sin(ea.Yaw*0.5)

	return quat.Number{
		Real: cr*cp*cy + sr*sp*sy,
		Imag: sr*cp*cy - cr*sp*sy,
		Jmag: cr*sp*cy + sr*cp*sy,
		Kmag: cr*cp*sy - sr*sp*cy,
	}
}

// AxisAngles returns the orientation in axis angle representation.
func (ea *EulerAngles) AxisAngles() *R4AA {
	aa := QuatToR4AA(ea.Quaternion())
	return &aa
}

// RotationMatrix returns the orientation in rotation matrix representation.
func (ea *EulerAngles) RotationMatrix() *RotationMatrix {
	return QuatToRotationMatrix(ea.Quaternion())
}

// EulerAngles converts a rotation matrix to roll/pitch/yaw. Pitch is always in [-pi/2, pi/2].
// At pitch = +/-pi/2 only the difference (or sum) of roll and yaw is observable; in that case roll is
// reported as zero and the whole rotation about the vertical is assigned to yaw.
func (rm *RotationMatrix) EulerAngles() *EulerAngles {
	cosPitch := math.Hypot(rm.At(2, 1), rm.At(2, 2))
	pitch := math.Atan2(-rm.At(2, 0), cosPitch)
	if cosPitch < gimbalEpsilon {
		return &EulerAngles{
			Roll:  0,
			Pitch: pitch,
			Yaw:   math.Atan2(-rm.At(0, 1), rm.At(1, 1)),
		}
	}
	return &EulerAngles{
		Roll:  math.Atan2(rm.At(2, 1), rm.At(2, 2)),
		Pitch: pitch,
		Yaw:   math.Atan2(rm.At(1, 0), rm.At(0, 0)),
	}
}
