package kinematics

import (
	"github.com/vassarrobotics/arxr5/referenceframe"
	spatial "github.com/vassarrobotics/arxr5/spatialmath"
	"github.com/vassarrobotics/arxr5/utils"
)

const orientationDistanceScaling = 10.

// State contains the end effector pose produced by a joint configuration, and the model it refers to.
type State struct {
	Position      spatial.Pose
	Configuration []referenceframe.Input
	Model         *referenceframe.SerialModel
}

// Segment contains a motion between two joint configurations, with their corresponding poses.
// Pose fields may be empty.
type Segment struct {
	StartPosition      spatial.Pose
	EndPosition        spatial.Pose
	StartConfiguration []referenceframe.Input
	EndConfiguration   []referenceframe.Input
}

// StateMetric are functions which, given a State, produces some score. Lower is better.
type StateMetric func(*State) float64

// SegmentMetric are functions which produce some score given a Segment. Lower is better.
// This is used to sort produced IK solutions by goodness.
type SegmentMetric func(*Segment) float64

// NewSquaredNormMetric returns a metric which will return the cartesian distance between the state and the goal,
// plus the scaled orientation distance.
func NewSquaredNormMetric(goal spatial.Pose) StateMetric {
	return func(state *State) float64 {
		if state.Position == nil {
			return 0
		}
		delta := spatial.PoseDelta(goal, state.Position)
		orient := spatial.QuatToR3AA(delta.Orientation().Quaternion()).Mul(orientationDistanceScaling)
		return delta.Point().Norm2() + orient.Norm2()
	}
}

// NewPositionOnlyMetric returns a metric which only scores the squared cartesian distance to the goal.
func NewPositionOnlyMetric(goal spatial.Pose) StateMetric {
	return func(state *State) float64 {
		if state.Position == nil {
			return 0
		}
		return spatial.PoseDelta(goal, state.Position).Point().Norm2()
	}
}

// OrientDist returns the arclength between two orientations in degrees.
func OrientDist(o1, o2 spatial.Orientation) float64 {
	return utils.RadToDeg(spatial.QuatToR3AA(spatial.OrientationBetween(o1, o2).Quaternion()).Norm())
}

// SquaredJointMetric is the sum of squared joint deltas across a segment.
func SquaredJointMetric(segment *Segment) float64 {
	return referenceframe.InputsSquaredDistance(segment.StartConfiguration, segment.EndConfiguration)
}

// L2InputMetric is the euclidean distance between the joint configurations of a segment.
func L2InputMetric(segment *Segment) float64 {
	return referenceframe.InputsL2Distance(segment.StartConfiguration, segment.EndConfiguration)
}
