package kinematics

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/vassarrobotics/arxr5/referenceframe"
	spatial "github.com/vassarrobotics/arxr5/spatialmath"
	"github.com/vassarrobotics/arxr5/utils"
)

// SquaredNorm returns the dot product of a vector with itself.
func SquaredNorm(vec []float64) float64 {
	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	return norm
}

// poseError returns the 6-vector from current to goal: the translation followed by the world frame rotation vector.
func poseError(goal, current spatial.Pose) []float64 {
	dp := goal.Point().Sub(current.Point())
	dr := spatial.QuatToR3AA(spatial.OrientationBetween(current.Orientation(), goal.Orientation()).Quaternion())
	return []float64{dp.X, dp.Y, dp.Z, dr.X, dr.Y, dr.Z}
}

// errorMagnitudes splits a pose error into its positional (meters) and rotational (radians) magnitudes.
func errorMagnitudes(dx []float64) (float64, float64) {
	return r3.Vector{X: dx[0], Y: dx[1], Z: dx[2]}.Norm(), r3.Vector{X: dx[3], Y: dx[4], Z: dx[5]}.Norm()
}

// wrapIntoLimit moves an angle by whole turns so that it lies in (-pi, pi] if that is within the limit, or
// otherwise anywhere within the limit. The second return is false if no whole turn shift fits.
func wrapIntoLimit(angle float64, limit referenceframe.Limit) (float64, bool) {
	normalized := utils.NormalizeAngle(angle)
	for _, candidate := range []float64{normalized, angle, normalized + 2*math.Pi, normalized - 2*math.Pi} {
		if limit.Contains(candidate) {
			return candidate, true
		}
	}
	return angle, false
}

// normalizeSolution wraps every joint of a solution into its limit, reporting whether all of them fit.
func normalizeSolution(solution []referenceframe.Input, limits []referenceframe.Limit) ([]referenceframe.Input, bool) {
	out := make([]referenceframe.Input, len(solution))
	valid := true
	for i, in := range solution {
		v, ok := wrapIntoLimit(in.Value, limits[i])
		out[i] = referenceframe.Input{Value: v}
		valid = valid && ok
	}
	return out, valid
}

// bestSolution selects the solution which scores lowest against the seed with the given metric. Ties keep the
// earliest solution, so results are deterministic for a fixed solution order.
func bestSolution(seed []referenceframe.Input, solutions [][]referenceframe.Input, metric SegmentMetric) (int, []referenceframe.Input) {
	bestIdx := -1
	bestDist := math.Inf(1)
	for i, solution := range solutions {
		dist := metric(&Segment{StartConfiguration: seed, EndConfiguration: solution})
		if dist < bestDist {
			bestDist = dist
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return -1, nil
	}
	return bestIdx, solutions[bestIdx]
}

// alternateConfigurations returns configurations reaching the same pose as solution. Wherever three consecutive
// joints have parallel axes they act as a planar chain, and reflecting the middle joint's origin across the line
// between the outer two leaves the last joint's frame unchanged. One configuration is returned per such run.
func alternateConfigurations(model *referenceframe.SerialModel, solution []referenceframe.Input) [][]referenceframe.Input {
	frames, pose, _ := model.JointFrames(solution)
	if pose == nil {
		return nil
	}
	joints := model.Joints()
	axes := make([]r3.Vector, len(frames))
	for i, f := range frames {
		axes[i] = spatial.RotateVector(f.Orientation().Quaternion(), joints[i].Axis)
	}

	var alternates [][]referenceframe.Input
	for i := 0; i+2 < len(frames); i++ {
		axis := axes[i]
		if axis.Cross(axes[i+1]).Norm() > parallelTolerance || axis.Cross(axes[i+2]).Norm() > parallelTolerance {
			continue
		}
		upper := projectOut(frames[i+1].Point().Sub(frames[i].Point()), axis)
		lower := projectOut(frames[i+2].Point().Sub(frames[i+1].Point()), axis)
		span := upper.Add(lower)
		if upper.Norm2() < degenerateLength || span.Norm2() < degenerateLength {
			continue
		}
		alpha := signedAngle(upper, span, axis)
		beta := signedAngle(span, lower, axis)

		alt := append([]referenceframe.Input{}, solution...)
		alt[i].Value += 2 * alpha
		alt[i+1].Value += axisSign(axis, axes[i+1]) * -2 * (alpha + beta)
		alt[i+2].Value += axisSign(axis, axes[i+2]) * 2 * beta
		alternates = append(alternates, alt)
	}
	return alternates
}

const (
	parallelTolerance = 1e-9
	degenerateLength  = 1e-18
)

// projectOut removes the component of v along the unit vector axis.
func projectOut(v, axis r3.Vector) r3.Vector {
	return v.Sub(axis.Mul(axis.Dot(v)))
}

// signedAngle returns the angle turning u onto v about axis.
func signedAngle(u, v, axis r3.Vector) float64 {
	return math.Atan2(axis.Dot(u.Cross(v)), u.Dot(v))
}

func axisSign(axis, other r3.Vector) float64 {
	if axis.Dot(other) < 0 {
		return -1
	}
	return 1
}
