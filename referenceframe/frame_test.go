package referenceframe

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	spatial "github.com/vassarrobotics/arxr5/spatialmath"
)

func TestStaticFrame(t *testing.T) {
	// define a static transform
	expPose := spatial.NewPose(r3.Vector{X: 1, Y: 2, Z: 3}, &spatial.R4AA{Theta: math.Pi / 2, RX: 0., RY: 1., RZ: 0.})
	frame, err := NewStaticFrame("test", expPose)
	test.That(t, err, test.ShouldBeNil)
	// get expected transform back
	emptyInput := []Input{}
	pose, err := frame.Transform(emptyInput)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pose, test.ShouldResemble, expPose)
	// if you feed in non-empty input, should get err back
	nonEmptyInput := FloatsToInputs([]float64{0, 0, 0})
	_, err = frame.Transform(nonEmptyInput)
	test.That(t, err, test.ShouldNotBeNil)
	// check that there are no limits on the static frame
	limits := frame.DoF()
	test.That(t, limits, test.ShouldResemble, []Limit{})

	_, err = NewStaticFrame("nil", nil)
	test.That(t, err, test.ShouldNotBeNil)

	zero := NewZeroStaticFrame("zero")
	test.That(t, zero.Name(), test.ShouldEqual, "zero")
}

func TestRevoluteFrame(t *testing.T) {
	// rotation around x, with limits
	axis := r3.Vector{X: 1, Y: 0, Z: 0}
	frame, err := NewRotationalFrame("test", axis, Limit{Min: -math.Pi / 2, Max: math.Pi / 2})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, frame.Name(), test.ShouldEqual, "test")
	// expected output
	expPose := spatial.NewPoseFromOrientation(&spatial.R4AA{Theta: math.Pi / 4, RX: 1, RY: 0, RZ: 0})
	// get expected transform back
	input := FloatsToInputs([]float64{math.Pi / 4})
	pose, err := frame.Transform(input)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatial.PoseAlmostEqual(pose, expPose), test.ShouldBeTrue)
	// if you feed in too many inputs, should get an error back
	input = FloatsToInputs([]float64{0, 0, 0})
	_, err = frame.Transform(input)
	test.That(t, err, test.ShouldNotBeNil)
	// if you feed in empty input, should get an errr back
	input = FloatsToInputs([]float64{})
	_, err = frame.Transform(input)
	test.That(t, err, test.ShouldNotBeNil)
	// if you try to move beyond set limits, should get an error back
	input = FloatsToInputs([]float64{3.14})
	pose, err = frame.Transform(input)
	test.That(t, pose, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, OOBErrString)
	// gets the correct limits back
	limit := frame.DoF()
	expLimit := []Limit{{Min: -math.Pi / 2, Max: math.Pi / 2}}
	test.That(t, limit, test.ShouldHaveLength, 1)
	test.That(t, limit[0], test.ShouldResemble, expLimit[0])

	_, err = NewRotationalFrame("zero", r3.Vector{}, Limit{-1, 1})
	test.That(t, err, test.ShouldNotBeNil)
}
