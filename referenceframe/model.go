package referenceframe

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"

	"github.com/golang/geo/r3"
	"go.uber.org/multierr"

	spatial "github.com/vassarrobotics/arxr5/spatialmath"
)

// World is the name of the fixed base frame that every model chain starts from.
const World = "world"

// ModelFramer has a method that returns the kinematics information needed to build a dynamic referenceframe.
type ModelFramer interface {
	ModelFrame() *SerialModel
}

// SerialModel is an unbranched chain of revolute joints ending in a fixed tool frame.
// It is never mutated after construction, so concurrent readers need no locking.
type SerialModel struct {
	name   string
	joints []Joint
	tool   spatial.Pose
	home   []Input
	limits []Limit
	// ordTransforms is the list of transforms ordered from base to end effector
	ordTransforms []Frame
	maxReach      float64
	reachInputs   []Input
}

const (
	// reachStarts random starts are searched besides home when finding the farthest reachable point.
	reachStarts = 16
	reachSweeps = 200
)

// NewSerialModel builds a model from ordered joints and a tool pose relative to the last joint. A nil tool is the
// identity. A nil home places every joint at zero, moved into its limits where zero is not allowed.
func NewSerialModel(name string, joints []Joint, tool spatial.Pose, home []Input) (*SerialModel, error) {
	if len(joints) == 0 {
		return nil, ErrNoJoints
	}
	if tool == nil {
		tool = spatial.NewZeroPose()
	}
	m := &SerialModel{name: name, tool: tool}

	seen := map[string]bool{}
	for _, j := range joints {
		if j.Name == World {
			return nil, NewReservedWordError("joint", World)
		}
		if seen[j.Name] {
			return nil, NewDuplicateFrameError(j.Name)
		}
		seen[j.Name] = true

		validated, err := NewJoint(j.Name, j.Origin, j.Axis, j.Offset, j.Limit)
		if err != nil {
			return nil, err
		}
		chain, err := validated.frames()
		if err != nil {
			return nil, err
		}
		m.joints = append(m.joints, validated)
		m.limits = append(m.limits, validated.Limit)
		m.ordTransforms = append(m.ordTransforms, chain...)
	}
	toolFrame, err := NewStaticFrame("tool", tool)
	if err != nil {
		return nil, err
	}
	m.ordTransforms = append(m.ordTransforms, toolFrame)

	if home == nil {
		home = make([]Input, len(m.joints))
		for i, j := range m.joints {
			home[i] = Input{j.Limit.Clamp(0)}
		}
	}
	if len(home) != len(m.joints) {
		return nil, NewIncorrectDoFError(len(home), len(m.joints))
	}
	for i, j := range m.joints {
		if !j.Limit.Contains(home[i].Value) {
			return nil, NewHomeOutOfBoundsError(j.Name, home[i].Value, j.Limit)
		}
	}
	m.home = append([]Input{}, home...)

	m.reachInputs, m.maxReach, err = m.farthestInputs()
	if err != nil {
		return nil, err
	}
	return m, nil
}

// farthestInputs finds the joint positions within limits that place the end effector furthest from ReachCenter,
// and that distance. Each start is improved one joint at a time until a sweep over the joints stops helping, and
// the best result over all starts is kept.
func (m *SerialModel) farthestInputs() ([]Input, float64, error) {
	//nolint:gosec
	rSeed := rand.New(rand.NewSource(1))
	var best []Input
	bestDist := -1.
	for i := 0; i <= reachStarts; i++ {
		start := m.home
		if i > 0 {
			start = RandomFrameInputs(m, rSeed)
		}
		inputs, dist, err := m.ascendReach(start)
		if err != nil {
			return nil, 0, err
		}
		if dist > bestDist {
			best, bestDist = inputs, dist
		}
	}
	return best, math.Sqrt(bestDist), nil
}

// ascendReach returns the inputs reached from start by coordinate ascent on the squared distance between the end
// effector and ReachCenter, and that squared distance. With the other joints fixed, turning joint j by d moves the
// end effector on a circle about its axis, so the squared distance is a constant plus b*cos(d) + c*sin(d) and the
// best turn within the limit is found exactly.
func (m *SerialModel) ascendReach(start []Input) ([]Input, float64, error) {
	center := m.ReachCenter()
	q := InputsToFloats(start)
	dist := -1.
	for sweep := 0; sweep < reachSweeps; sweep++ {
		for j, joint := range m.joints {
			frames, pose, err := m.JointFrames(FloatsToInputs(q))
			if pose == nil {
				return nil, 0, err
			}
			origin := frames[j].Point()
			axis := spatial.RotateVector(frames[j].Orientation().Quaternion(), joint.Axis)
			lever := pose.Point().Sub(origin)
			lever = lever.Sub(axis.Mul(axis.Dot(lever)))
			w := origin.Sub(center)
			turn := bestTurn(w.Dot(lever), w.Dot(axis.Cross(lever)), joint.Limit.Min-q[j], joint.Limit.Max-q[j])
			q[j] = joint.Limit.Clamp(q[j] + turn)
		}
		_, pose, err := m.JointFrames(FloatsToInputs(q))
		if pose == nil {
			return nil, 0, err
		}
		next := pose.Point().Sub(center).Norm2()
		done := next-dist <= 1e-15
		dist = math.Max(dist, next)
		if done {
			break
		}
	}
	return FloatsToInputs(q), dist, nil
}

// bestTurn returns the d in [lo, hi] maximizing b*cos(d) + c*sin(d), or 0 if no d improves on it.
func bestTurn(b, c, lo, hi float64) float64 {
	gain := func(d float64) float64 {
		return b*math.Cos(d) + c*math.Sin(d)
	}
	peak := math.Atan2(c, b)
	best := 0.
	for _, d := range []float64{lo, hi, peak - 2*math.Pi, peak, peak + 2*math.Pi} {
		if math.IsInf(d, 0) || d < lo || d > hi {
			continue
		}
		if gain(d) > gain(best) {
			best = d
		}
	}
	return best
}

// Name returns the name of the model.
func (m *SerialModel) Name() string {
	return m.name
}

// DoF returns the limits of each joint, in order from the base.
func (m *SerialModel) DoF() []Limit {
	return append([]Limit{}, m.limits...)
}

// Joints returns the joint geometry, in order from the base.
func (m *SerialModel) Joints() []Joint {
	return append([]Joint{}, m.joints...)
}

// Tool returns the fixed transform from the last joint to the end effector.
func (m *SerialModel) Tool() spatial.Pose {
	return m.tool
}

// Home returns the configured home position.
func (m *SerialModel) Home() []Input {
	return append([]Input{}, m.home...)
}

// MaxReach returns the largest distance between ReachCenter and the end effector over joint values within limits.
func (m *SerialModel) MaxReach() float64 {
	return m.maxReach
}

// MaxReachInputs returns the joint values at which the end effector is MaxReach from ReachCenter.
func (m *SerialModel) MaxReachInputs() []Input {
	return append([]Input{}, m.reachInputs...)
}

// ReachCenter returns the point, fixed in the world frame, from which MaxReach is measured.
func (m *SerialModel) ReachCenter() r3.Vector {
	return m.joints[0].Origin.Point()
}

// TransformForJoint returns the transform from link index to link index+1 with the joint at the given angle. The
// tool transform is included for the last joint. An index outside the model panics.
func (m *SerialModel) TransformForJoint(index int, angle float64) spatial.Pose {
	m.checkIndex(index)
	pose := m.joints[index].Transform(angle)
	if index == len(m.joints)-1 {
		pose = spatial.Compose(pose, m.tool)
	}
	return pose
}

// JointLimits returns the limits of the joint at index. An index outside the model panics.
func (m *SerialModel) JointLimits(index int) Limit {
	m.checkIndex(index)
	return m.limits[index]
}

func (m *SerialModel) checkIndex(index int) {
	if index < 0 || index >= len(m.joints) {
		panic(newJointIndexError(index, len(m.joints)))
	}
}

// Transform takes a model and a list of joint angles in radians and computes the pose of the end effector.
// Out of bounds inputs are still computed, and reported through a non-nil error alongside the pose.
func (m *SerialModel) Transform(inputs []Input) (spatial.Pose, error) {
	_, pose, err := m.JointFrames(inputs)
	return pose, err
}

// JointFrames returns the world pose of each joint frame, taken just before that joint rotates, and the pose of the
// end effector. As with Transform, out of bounds inputs are reported through the error but still computed.
func (m *SerialModel) JointFrames(inputs []Input) ([]spatial.Pose, spatial.Pose, error) {
	if len(inputs) != len(m.joints) {
		return nil, nil, NewIncorrectDoFError(len(inputs), len(m.joints))
	}
	var err error
	frames := make([]spatial.Pose, 0, len(m.joints))
	// Start at ((1+0i+0j+0k)+(+0+0i+0j+0k)ϵ)
	composedTransformation := spatial.NewZeroPose()
	posIdx := 0
	// get quaternions from the base outwards.
	for _, transform := range m.ordTransforms {
		dof := len(transform.DoF()) + posIdx
		if dof > posIdx {
			frames = append(frames, composedTransformation)
		}
		input := inputs[posIdx:dof]
		posIdx = dof

		pose, errNew := transform.Transform(input)
		// Fail if inputs are incorrect and pose is nil, but allow querying out-of-bounds positions
		if pose == nil {
			return nil, nil, errNew
		}
		multierr.AppendInto(&err, errNew)
		composedTransformation = spatial.Compose(composedTransformation, pose)
	}
	return frames, composedTransformation, err
}

// AreJointPositionsValid checks whether the given array of joint positions violates any joint limits.
func (m *SerialModel) AreJointPositionsValid(pos []float64) bool {
	if len(pos) != len(m.limits) {
		return false
	}
	for i, limit := range m.limits {
		if !limit.Contains(pos[i]) {
			return false
		}
	}
	return true
}

// ValidInputs returns an error describing every input that is out of bounds, or nil if all are valid.
func (m *SerialModel) ValidInputs(inputs []Input) error {
	if len(inputs) != len(m.limits) {
		return NewIncorrectDoFError(len(inputs), len(m.limits))
	}
	var errAll error
	for i, limit := range m.limits {
		if !limit.Contains(inputs[i].Value) {
			multierr.AppendInto(&errAll, fmt.Errorf("joint %d input %.5f %s [%.5f, %.5f]",
				i, inputs[i].Value, OOBErrString, limit.Min, limit.Max))
		}
	}
	return errAll
}

// Config returns the model in its explicit SVA file form.
func (m *SerialModel) Config() *ModelConfig {
	cfg := &ModelConfig{
		Name:         m.name,
		KinParamType: "SVA",
		Tool:         linkConfigFromPose(m.tool),
		Home:         InputsToFloats(m.home),
	}
	parent := World
	for _, j := range m.joints {
		origin := linkConfigFromPose(j.Origin)
		cfg.Joints = append(cfg.Joints, JointConfig{
			ID:          j.Name,
			Type:        string(RevoluteJoint),
			Parent:      parent,
			Translation: origin.Translation,
			Orientation: origin.Orientation,
			Axis:        AxisConfig{j.Axis.X, j.Axis.Y, j.Axis.Z},
			Offset:      j.Offset,
			Min:         j.Limit.Min,
			Max:         j.Limit.Max,
		})
		parent = j.Name
	}
	return cfg
}

// MarshalJSON serializes a Model.
func (m *SerialModel) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Config())
}

// AlmostEquals returns true if the only difference between this model and another is floating point inprecision.
func (m *SerialModel) AlmostEquals(other *SerialModel) bool {
	if other == nil || m.name != other.name || len(m.joints) != len(other.joints) {
		return false
	}
	if !limitsAlmostEqual(m.limits, other.limits) {
		return false
	}
	for idx, j := range m.joints {
		o := other.joints[idx]
		if j.Name != o.Name ||
			!spatial.PoseAlmostEqual(j.Origin, o.Origin) ||
			!spatial.R3VectorAlmostEqual(j.Axis, o.Axis, 1e-8) ||
			!spatial.OrientationAlmostEqual(&spatial.R4AA{Theta: j.Offset, RZ: 1}, &spatial.R4AA{Theta: o.Offset, RZ: 1}) {
			return false
		}
	}
	return spatial.PoseAlmostEqual(m.tool, other.tool)
}
