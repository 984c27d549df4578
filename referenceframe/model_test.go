package referenceframe

import (
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	spatial "github.com/vassarrobotics/arxr5/spatialmath"
	"github.com/vassarrobotics/arxr5/utils"
)

func loadSixDoF(t *testing.T) *SerialModel {
	t.Helper()
	m, err := KinematicModelFromFile(utils.ResolveFile("referenceframe/testdata/sixdof.yaml"), "")
	test.That(t, err, test.ShouldBeNil)
	return m
}

func TestModelLoading(t *testing.T) {
	m := loadSixDoF(t)
	test.That(t, m.Name(), test.ShouldEqual, "sixdof")
	test.That(t, len(m.DoF()), test.ShouldEqual, 6)
	test.That(t, m.Home(), test.ShouldResemble, make([]Input, 6))
	test.That(t, m.ReachCenter(), test.ShouldResemble, r3.Vector{Z: 0.1})
	test.That(t, m.MaxReach(), test.ShouldAlmostEqual, 0.7098926258, 1e-8)
	test.That(t, spatial.R3VectorAlmostEqual(m.Tool().Point(), r3.Vector{X: 0.02}, 1e-12), test.ShouldBeTrue)

	test.That(t, m.ValidInputs(FloatsToInputs([]float64{0.1, 0.1, 0.1, 0.1, 0.1, 0.1})), test.ShouldBeNil)
	err := m.ValidInputs(FloatsToInputs([]float64{0.1, 0.1, 0.1, 0.1, 0.1, 99.1}))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, OOBErrString)
	test.That(t, m.ValidInputs(make([]Input, 5)).Error(), test.ShouldEqual, NewIncorrectDoFError(5, 6).Error())

	test.That(t, m.AreJointPositionsValid([]float64{0, 0, 0, 0, 0, 0}), test.ShouldBeTrue)
	test.That(t, m.AreJointPositionsValid([]float64{0, 1.6, 0, 0, 0, 0}), test.ShouldBeFalse)
	test.That(t, m.AreJointPositionsValid([]float64{0, 0}), test.ShouldBeFalse)

	randpos := RandomFrameInputs(m, rand.New(rand.NewSource(1)))
	test.That(t, m.ValidInputs(randpos), test.ShouldBeNil)
}

func TestModelTransform(t *testing.T) {
	m := loadSixDoF(t)

	pose, err := m.Transform(make([]Input, 6))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatial.R3VectorAlmostEqual(pose.Point(), r3.Vector{X: 0.66, Z: 0.15}, 1e-9), test.ShouldBeTrue)
	test.That(t, spatial.OrientationAlmostEqual(pose.Orientation(), spatial.NewZeroOrientation()), test.ShouldBeTrue)

	// base yaw swings the whole arm about z
	pose, err = m.Transform(FloatsToInputs([]float64{math.Pi / 2, 0, 0, 0, 0, 0}))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatial.R3VectorAlmostEqual(pose.Point(), r3.Vector{Y: 0.66, Z: 0.15}, 1e-9), test.ShouldBeTrue)

	// positive pitch about +y tips the forearm down
	pose, err = m.Transform(FloatsToInputs([]float64{0, 0, math.Pi / 2, 0, 0, 0}))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatial.R3VectorAlmostEqual(pose.Point(), r3.Vector{X: 0.3, Z: 0.15 - 0.36}, 1e-9), test.ShouldBeTrue)

	// out of bounds inputs are still computed
	pose, err = m.Transform(FloatsToInputs([]float64{0, 0, 0, 0, 0, 4}))
	test.That(t, pose, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, OOBErrString)

	// incorrect number of inputs
	pose, err = m.Transform(make([]Input, 7))
	test.That(t, pose, test.ShouldBeNil)
	test.That(t, err.Error(), test.ShouldEqual, NewIncorrectDoFError(7, 6).Error())
}

func TestTransformForJoint(t *testing.T) {
	m := loadSixDoF(t)
	inputs := RestrictedRandomFrameInputs(m, rand.New(rand.NewSource(3)), 0.8)

	composed := spatial.NewZeroPose()
	for i, in := range inputs {
		composed = spatial.Compose(composed, m.TransformForJoint(i, in.Value))
	}
	pose, err := m.Transform(inputs)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatial.PoseAlmostEqual(composed, pose), test.ShouldBeTrue)

	test.That(t, m.JointLimits(1), test.ShouldResemble, Limit{-1.5, 1.5})
	test.That(t, func() { m.TransformForJoint(6, 0) }, test.ShouldPanic)
	test.That(t, func() { m.TransformForJoint(-1, 0) }, test.ShouldPanic)
	test.That(t, func() { m.JointLimits(6) }, test.ShouldPanic)
}

func TestJointFrames(t *testing.T) {
	m := loadSixDoF(t)
	inputs := FloatsToInputs([]float64{0.3, -0.2, 0.5, 0.1, -0.4, 1})
	frames, end, err := m.JointFrames(inputs)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(frames), test.ShouldEqual, 6)

	// the frame of joint i is the chain of transforms before it, plus its own origin
	partial := spatial.NewZeroPose()
	for i, j := range m.Joints() {
		test.That(t, spatial.PoseAlmostEqual(frames[i], spatial.Compose(partial, j.Origin)), test.ShouldBeTrue)
		partial = spatial.Compose(partial, m.TransformForJoint(i, inputs[i].Value))
	}
	test.That(t, spatial.PoseAlmostEqual(end, partial), test.ShouldBeTrue)
}

func TestMaxReachBound(t *testing.T) {
	m := loadSixDoF(t)
	rnd := rand.New(rand.NewSource(5))
	for i := 0; i < 500; i++ {
		pose, err := m.Transform(RandomFrameInputs(m, rnd))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, pose.Point().Sub(m.ReachCenter()).Norm(), test.ShouldBeLessThanOrEqualTo, m.MaxReach()+1e-9)
	}

	far := m.MaxReachInputs()
	test.That(t, m.ValidInputs(far), test.ShouldBeNil)
	pose, err := m.Transform(far)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pose.Point().Sub(m.ReachCenter()).Norm(), test.ShouldAlmostEqual, m.MaxReach(), 1e-12)

	// the shoulder limit keeps the arm from standing straight up
	test.That(t, m.MaxReach(), test.ShouldBeLessThan, 0.71)
	far[0].Value = 99
	test.That(t, m.MaxReachInputs()[0].Value, test.ShouldNotEqual, 99)
}

func TestBestTurn(t *testing.T) {
	test.That(t, bestTurn(0, 1, -math.Pi, math.Pi), test.ShouldAlmostEqual, math.Pi/2)
	test.That(t, bestTurn(0, 1, -1, 1), test.ShouldAlmostEqual, 1)
	test.That(t, bestTurn(1, 0, -1, 1), test.ShouldEqual, 0)
	test.That(t, math.Abs(bestTurn(-1, 0, math.Inf(-1), math.Inf(1))), test.ShouldAlmostEqual, math.Pi)
	// the peak is a whole turn away from the current angle
	test.That(t, bestTurn(0, -1, 0, 5), test.ShouldAlmostEqual, 3*math.Pi/2)
}

func TestJointOffset(t *testing.T) {
	j, err := NewJoint("j", nil, r3.Vector{Z: 2}, math.Pi/2, Limit{-1, 1})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, j.Axis, test.ShouldResemble, r3.Vector{Z: 1})

	m, err := NewSerialModel("offset", []Joint{j}, spatial.NewPoseFromPoint(r3.Vector{X: 1}), nil)
	test.That(t, err, test.ShouldBeNil)
	pose, err := m.Transform([]Input{{0}})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatial.R3VectorAlmostEqual(pose.Point(), r3.Vector{Y: 1}, 1e-9), test.ShouldBeTrue)
	test.That(t, spatial.PoseAlmostEqual(pose, m.TransformForJoint(0, 0)), test.ShouldBeTrue)
}

func TestNewSerialModelErrors(t *testing.T) {
	j, err := NewJoint("j", nil, r3.Vector{Z: 1}, 0, Limit{0.5, 1})
	test.That(t, err, test.ShouldBeNil)

	_, err = NewSerialModel("empty", nil, nil, nil)
	test.That(t, err, test.ShouldEqual, ErrNoJoints)

	_, err = NewSerialModel("dup", []Joint{j, j}, nil, nil)
	test.That(t, err.Error(), test.ShouldEqual, NewDuplicateFrameError("j").Error())

	_, err = NewSerialModel("home", []Joint{j}, nil, []Input{{0}, {0}})
	test.That(t, err.Error(), test.ShouldEqual, NewIncorrectDoFError(2, 1).Error())

	// zero is outside the limits, so the default home is moved onto the nearest limit
	m, err := NewSerialModel("clamped", []Joint{j}, nil, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.Home(), test.ShouldResemble, []Input{{0.5}})

	_, err = NewJoint("bad", nil, r3.Vector{}, 0, Limit{-1, 1})
	test.That(t, err.Error(), test.ShouldEqual, NewZeroAxisError("bad").Error())
	_, err = NewJoint("bad", nil, r3.Vector{X: 1}, 0, Limit{math.NaN(), 1})
	test.That(t, err, test.ShouldNotBeNil)
}
