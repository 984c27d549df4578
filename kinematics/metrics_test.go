package kinematics

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"

	"github.com/vassarrobotics/arxr5/referenceframe"
	spatial "github.com/vassarrobotics/arxr5/spatialmath"
)

func TestSquaredNormMetric(t *testing.T) {
	goal := spatial.NewPose(r3.Vector{X: 0.1, Y: 0.2, Z: 0.3}, &spatial.R4AA{Theta: 0.5, RZ: 1})
	metric := NewSquaredNormMetric(goal)
	test.That(t, metric(&State{Position: goal}), test.ShouldAlmostEqual, 0)

	moved := spatial.NewPose(r3.Vector{X: 0.1, Y: 0.2, Z: 0.4}, &spatial.R4AA{Theta: 0.5, RZ: 1})
	test.That(t, metric(&State{Position: moved}), test.ShouldAlmostEqual, 0.01)

	turned := spatial.NewPose(goal.Point(), &spatial.R4AA{Theta: 0.6, RZ: 1})
	test.That(t, metric(&State{Position: turned}), test.ShouldAlmostEqual, 1.0)

	positionOnly := NewPositionOnlyMetric(goal)
	test.That(t, positionOnly(&State{Position: turned}), test.ShouldAlmostEqual, 0)
	test.That(t, positionOnly(&State{Position: moved}), test.ShouldAlmostEqual, 0.01)
}

func TestOrientDist(t *testing.T) {
	o1 := &spatial.R4AA{Theta: 0.1, RX: 1}
	o2 := &spatial.R4AA{Theta: 0.1 + math.Pi/2, RX: 1}
	test.That(t, OrientDist(o1, o2), test.ShouldAlmostEqual, 90)
	test.That(t, OrientDist(o1, o1), test.ShouldAlmostEqual, 0)

	// the short way around
	o3 := &spatial.R4AA{Theta: 1.5 * math.Pi, RZ: 1}
	test.That(t, OrientDist(spatial.NewZeroOrientation(), o3), test.ShouldAlmostEqual, 90)
}

func TestJointMetrics(t *testing.T) {
	seg := &Segment{
		StartConfiguration: referenceframe.FloatsToInputs([]float64{0, 0, 0}),
		EndConfiguration:   referenceframe.FloatsToInputs([]float64{1, 2, 2}),
	}
	test.That(t, SquaredJointMetric(seg), test.ShouldAlmostEqual, 9)
	test.That(t, L2InputMetric(seg), test.ShouldAlmostEqual, 3)
	test.That(t, SquaredNorm([]float64{1, 2, 2}), test.ShouldAlmostEqual, 9)
}

func TestBestSolution(t *testing.T) {
	seed := referenceframe.FloatsToInputs([]float64{0, 0})
	solutions := [][]referenceframe.Input{
		referenceframe.FloatsToInputs([]float64{1, 1}),
		referenceframe.FloatsToInputs([]float64{0.1, -0.2}),
		referenceframe.FloatsToInputs([]float64{-0.2, 0.1}),
	}
	idx, best := bestSolution(seed, solutions, SquaredJointMetric)
	test.That(t, idx, test.ShouldEqual, 1)
	test.That(t, best, test.ShouldResemble, solutions[1])

	idx, best = bestSolution(seed, nil, SquaredJointMetric)
	test.That(t, idx, test.ShouldEqual, -1)
	test.That(t, best, test.ShouldBeNil)
}

func TestWrapIntoLimit(t *testing.T) {
	wide := referenceframe.Limit{Min: -2 * math.Pi, Max: 2 * math.Pi}
	v, ok := wrapIntoLimit(3*math.Pi/2, wide)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, v, test.ShouldAlmostEqual, -math.Pi/2)

	// normalizing would leave the limits, so the angle is kept
	upper := referenceframe.Limit{Min: 0, Max: 5}
	v, ok = wrapIntoLimit(4, upper)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, v, test.ShouldAlmostEqual, 4)

	// a whole turn brings it back in
	v, ok = wrapIntoLimit(4-2*math.Pi, upper)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, v, test.ShouldAlmostEqual, 4)

	_, ok = wrapIntoLimit(2.5, referenceframe.Limit{Min: -1, Max: 1})
	test.That(t, ok, test.ShouldBeFalse)

	normalized, ok := normalizeSolution(
		referenceframe.FloatsToInputs([]float64{2 * math.Pi, 0.5}),
		[]referenceframe.Limit{wide, {Min: -1, Max: 1}},
	)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, normalized[0].Value, test.ShouldAlmostEqual, 0)
	test.That(t, normalized[1].Value, test.ShouldAlmostEqual, 0.5)
}

func TestDampedLeastSquaresStep(t *testing.T) {
	// a jacobian of two orthogonal unit columns: the step is the error projected onto them, shrunk by the damping
	jac := mat.NewDense(6, 2, nil)
	jac.Set(0, 0, 1)
	jac.Set(1, 1, 1)
	dx := []float64{0.5, -0.25, 0, 0, 0, 0.3}

	dq, err := dampedLeastSquaresStep(jac, dx, 0.1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(dq), test.ShouldEqual, 2)
	test.That(t, dq[0], test.ShouldAlmostEqual, 0.5/1.01)
	test.That(t, dq[1], test.ShouldAlmostEqual, -0.25/1.01)

	// without damping the singular product cannot be factorized
	_, err = dampedLeastSquaresStep(jac, dx, 0)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestPoseError(t *testing.T) {
	current := spatial.NewPoseFromPoint(r3.Vector{X: 1})
	goal := spatial.NewPose(r3.Vector{X: 1, Y: 0.5}, &spatial.R4AA{Theta: 0.2, RZ: 1})
	dx := poseError(goal, current)
	test.That(t, dx[0], test.ShouldAlmostEqual, 0)
	test.That(t, dx[1], test.ShouldAlmostEqual, 0.5)
	test.That(t, dx[5], test.ShouldAlmostEqual, 0.2)
	posErr, rotErr := errorMagnitudes(dx)
	test.That(t, posErr, test.ShouldAlmostEqual, 0.5)
	test.That(t, rotErr, test.ShouldAlmostEqual, 0.2)
}
