package referenceframe

import (
	"math"

	"github.com/golang/geo/r3"

	spatial "github.com/vassarrobotics/arxr5/spatialmath"
)

// JointType names the kind of motion a joint allows.
type JointType string

// RevoluteJoint is the only supported joint type: a rotation about a fixed axis.
const RevoluteJoint JointType = "revolute"

// Joint is the immutable geometry of one link of a serial arm. The transform from the previous link to the next
// one is Origin followed by a rotation of (angle + Offset) about Axis, expressed in the Origin frame.
type Joint struct {
	Name   string
	Origin spatial.Pose
	Axis   r3.Vector
	Offset float64
	Limit  Limit
}

// NewJoint validates and returns a revolute joint. A nil origin is the identity. The axis is normalized.
func NewJoint(name string, origin spatial.Pose, axis r3.Vector, offset float64, limit Limit) (Joint, error) {
	if origin == nil {
		origin = spatial.NewZeroPose()
	}
	if spatial.R3VectorAlmostEqual(r3.Vector{}, axis, 1e-8) {
		return Joint{}, NewZeroAxisError(name)
	}
	if math.IsNaN(limit.Min) || math.IsNaN(limit.Max) || limit.Min > limit.Max {
		return Joint{}, NewInvalidLimitError(name, limit)
	}
	return Joint{
		Name:   name,
		Origin: origin,
		Axis:   axis.Normalize(),
		Offset: offset,
		Limit:  limit,
	}, nil
}

// Transform returns the local transform of the joint at the given angle. Limits are not applied.
func (j Joint) Transform(angle float64) spatial.Pose {
	return spatial.Compose(j.Origin, spatial.NewPoseFromOrientation(&spatial.R4AA{
		Theta: angle + j.Offset,
		RX:    j.Axis.X,
		RY:    j.Axis.Y,
		RZ:    j.Axis.Z,
	}))
}

// frames returns the joint as a chain of frames: the static origin, a static rotation for a nonzero offset, and
// the rotational frame driven by the joint input.
func (j Joint) frames() ([]Frame, error) {
	origin, err := NewStaticFrame(j.Name+"_origin", j.Origin)
	if err != nil {
		return nil, err
	}
	chain := []Frame{origin}
	if j.Offset != 0 {
		offset, err := NewStaticFrame(j.Name+"_offset", spatial.NewPoseFromOrientation(&spatial.R4AA{
			Theta: j.Offset,
			RX:    j.Axis.X,
			RY:    j.Axis.Y,
			RZ:    j.Axis.Z,
		}))
		if err != nil {
			return nil, err
		}
		chain = append(chain, offset)
	}
	rot, err := NewRotationalFrame(j.Name, j.Axis, j.Limit)
	if err != nil {
		return nil, err
	}
	return append(chain, rot), nil
}
