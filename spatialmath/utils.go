package spatialmath

import (
	"github.com/golang/geo/r3"
)

// PoseToVector flattens a pose into (x, y, z, roll, pitch, yaw), with roll/pitch/yaw as defined by EulerAngles.
func PoseToVector(p Pose) []float64 {
	pt := p.Point()
	ea := p.Orientation().EulerAngles()
	return []float64{pt.X, pt.Y, pt.Z, ea.Roll, ea.Pitch, ea.Yaw}
}

// PoseFromVector builds a pose from (x, y, z, roll, pitch, yaw).
func PoseFromVector(v []float64) (Pose, error) {
	if len(v) != 6 {
		return nil, NewPoseVectorLengthError(len(v))
	}
	return NewPose(
		r3.Vector{X: v[0], Y: v[1], Z: v[2]},
		&EulerAngles{Roll: v[3], Pitch: v[4], Yaw: v[5]},
	), nil
}

// NewPoseFromAxisAngle returns a pose at the origin rotated by angle radians about the given axis.
func NewPoseFromAxisAngle(point, axis r3.Vector, angle float64) Pose {
	aa := &R4AA{Theta: angle, RX: axis.X, RY: axis.Y, RZ: axis.Z}
	return NewPose(point, aa)
}
