package kinematics

import (
	"context"
	"math"
	"math/rand"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/vassarrobotics/arxr5/logging"
	"github.com/vassarrobotics/arxr5/referenceframe"
	spatial "github.com/vassarrobotics/arxr5/spatialmath"
	"github.com/vassarrobotics/arxr5/utils"
)

const (
	// Restarts before this many tries start near the seed, in a window that grows with each try.
	// Later restarts are drawn from anywhere within the joint limits.
	constrainedTries = 8
	rangeStep        = 0.1

	// A constrained step which moves no joint by more than this is pinned against the limits.
	stallStep = 1e-12

	// Squared damping is never less than this, so the damped product stays positive definite at a singularity.
	minDamping = 1e-9
)

// Solution is a joint configuration that reaches the goal, and how it was found.
type Solution struct {
	Configuration []referenceframe.Input
	Score         float64
	Attempt       int
	Iterations    int
}

// JacobianIK solves for joint configurations with damped least squares on the geometric jacobian,
// restarting from perturbed and then random seeds.
type JacobianIK struct {
	model      *referenceframe.SerialModel
	axes       []r3.Vector
	lowerBound []float64
	upperBound []float64
	cfg        Config
	logger     logging.Logger
}

// CreateJacobianIKSolver creates a solver for the given model. The config should already have defaults applied.
func CreateJacobianIKSolver(model *referenceframe.SerialModel, cfg Config, logger logging.Logger) *JacobianIK {
	ik := &JacobianIK{model: model, cfg: cfg, logger: logger}
	for _, j := range model.Joints() {
		ik.axes = append(ik.axes, j.Axis)
	}
	ik.lowerBound, ik.upperBound = limitsToArrays(model.DoF())
	return ik
}

// Solve runs damped least squares from the seed, then from generated restart seeds, until maxSolutions
// configurations converge or the restarts run out. When constrained is false the joints may leave their limits.
// The only error returned is the context's.
func (ik *JacobianIK) Solve(
	ctx context.Context,
	goal spatial.Pose,
	seed []referenceframe.Input,
	constrained bool,
	maxSolutions int,
) ([]*Solution, *SolveMetaData, error) {
	//nolint: gosec
	randSeed := rand.New(rand.NewSource(ik.cfg.RandomSeed))
	solveMetric := NewSquaredNormMetric(goal)
	meta := &SolveMetaData{Constrained: constrained}

	var solutions []*Solution
	startingPos := seed
	for tries := 0; tries <= ik.cfg.Restarts; tries++ {
		select {
		case <-ctx.Done():
			return solutions, meta, ctx.Err()
		default:
		}

		if tries > 0 {
			if tries < constrainedTries {
				startingPos = ik.perturbedPositions(seed, tries, randSeed)
			} else {
				startingPos = ik.GenerateRandomPositions(randSeed)
			}
		}

		meta.Attempts++
		solution, pose, iterations, converged := ik.descend(goal, startingPos, constrained)
		meta.Iterations += iterations
		if !converged {
			continue
		}
		solutions = append(solutions, &Solution{
			Configuration: solution,
			Score:         solveMetric(&State{Position: pose, Configuration: solution, Model: ik.model}),
			Attempt:       tries,
			Iterations:    iterations,
		})
		if len(solutions) >= maxSolutions {
			break
		}
	}
	meta.Solutions = len(solutions)
	return solutions, meta, nil
}

// Refine runs one constrained descent from each start. Joints outside their limits are first moved back in by whole
// turns where that fits, and clamped otherwise.
func (ik *JacobianIK) Refine(
	ctx context.Context,
	goal spatial.Pose,
	starts [][]referenceframe.Input,
) ([]*Solution, *SolveMetaData, error) {
	solveMetric := NewSquaredNormMetric(goal)
	meta := &SolveMetaData{Constrained: true}
	limits := ik.model.DoF()

	var solutions []*Solution
	for attempt, start := range starts {
		select {
		case <-ctx.Done():
			return solutions, meta, ctx.Err()
		default:
		}

		folded := make([]referenceframe.Input, len(start))
		for i, in := range start {
			v, ok := wrapIntoLimit(in.Value, limits[i])
			if !ok {
				v = limits[i].Clamp(utils.NormalizeAngle(in.Value))
			}
			folded[i] = referenceframe.Input{Value: v}
		}

		meta.Attempts++
		solution, pose, iterations, converged := ik.descend(goal, folded, true)
		meta.Iterations += iterations
		if !converged {
			continue
		}
		solutions = append(solutions, &Solution{
			Configuration: solution,
			Score:         solveMetric(&State{Position: pose, Configuration: solution, Model: ik.model}),
			Attempt:       attempt,
			Iterations:    iterations,
		})
	}
	meta.Solutions = len(solutions)
	return solutions, meta, nil
}

// descend iterates damped least squares steps from start until the goal is within tolerance or the iteration budget
// runs out. It returns the final configuration, its pose, the number of steps taken and whether it converged.
func (ik *JacobianIK) descend(
	goal spatial.Pose,
	start []referenceframe.Input,
	constrained bool,
) ([]referenceframe.Input, spatial.Pose, int, bool) {
	q := referenceframe.InputsToFloats(start)
	if constrained {
		ik.clamp(q)
	}

	for iteration := 0; ; iteration++ {
		inputs := referenceframe.FloatsToInputs(q)
		frames, pose, _ := ik.model.JointFrames(inputs)
		if pose == nil {
			return inputs, nil, iteration, false
		}
		dx := poseError(goal, pose)
		posErr, rotErr := errorMagnitudes(dx)
		if posErr <= ik.cfg.PositionTolerance && rotErr <= ik.cfg.OrientationTolerance {
			return inputs, pose, iteration, true
		}
		if iteration >= ik.cfg.MaxIterations {
			return inputs, pose, iteration, false
		}

		dq, err := ik.step(q, ik.jacobian(frames, pose), dx, constrained)
		if err != nil {
			ik.logger.Debugw("abandoning attempt", "error", err)
			return inputs, pose, iteration, false
		}

		moved := 0.
		for i := range q {
			next := q[i] + dq[i]
			if constrained {
				next = math.Max(ik.lowerBound[i], math.Min(ik.upperBound[i], next))
			}
			moved = math.Max(moved, math.Abs(next-q[i]))
			q[i] = next
		}
		if moved < stallStep {
			return referenceframe.FloatsToInputs(q), pose, iteration + 1, false
		}
	}
}

// step returns the damped least squares step toward dx, limited to the maximum step. The damping shrinks with the
// error so that the last steps are not slowed by it. When constrained, a joint resting on a limit which the step
// would push further out is dropped from the jacobian and the step is solved again with the remaining joints.
func (ik *JacobianIK) step(q []float64, jac *mat.Dense, dx []float64, constrained bool) ([]float64, error) {
	damping := math.Sqrt(math.Min(ik.cfg.Damping*ik.cfg.Damping, SquaredNorm(dx)) + minDamping)
	_, cols := jac.Dims()
	free := cols
	for {
		dq, err := dampedLeastSquaresStep(jac, dx, damping)
		if err != nil {
			return nil, err
		}
		ik.limitStep(dq)
		if !constrained {
			return dq, nil
		}
		blocked := false
		for i, v := range dq {
			if v == 0 {
				continue
			}
			if (q[i] <= ik.lowerBound[i] && v < 0) || (q[i] >= ik.upperBound[i] && v > 0) {
				jac.SetCol(i, make([]float64, 6))
				free--
				blocked = true
			}
		}
		if !blocked || free == 0 {
			return dq, nil
		}
	}
}

// jacobian builds the 6xN geometric jacobian from the world frame of each joint and the end effector pose.
// Each column is the linear velocity of the end effector followed by the angular velocity, per unit joint rotation.
func (ik *JacobianIK) jacobian(frames []spatial.Pose, ee spatial.Pose) *mat.Dense {
	jac := mat.NewDense(6, len(frames), nil)
	pe := ee.Point()
	for i, f := range frames {
		z := spatial.RotateVector(f.Orientation().Quaternion(), ik.axes[i])
		lin := z.Cross(pe.Sub(f.Point()))
		jac.SetCol(i, []float64{lin.X, lin.Y, lin.Z, z.X, z.Y, z.Z})
	}
	return jac
}

// limitStep scales a step so that no joint moves by more than the configured maximum.
func (ik *JacobianIK) limitStep(dq []float64) {
	largest := 0.
	for _, v := range dq {
		largest = math.Max(largest, math.Abs(v))
	}
	if largest <= ik.cfg.MaxStep {
		return
	}
	scale := ik.cfg.MaxStep / largest
	for i := range dq {
		dq[i] *= scale
	}
}

func (ik *JacobianIK) clamp(q []float64) {
	for i := range q {
		q[i] = math.Max(ik.lowerBound[i], math.Min(ik.upperBound[i], q[i]))
	}
}

// perturbedPositions returns the seed with each joint moved randomly within a window that widens with each try, so
// that small swings are tried before large ones. The window is wider for more distal joints.
func (ik *JacobianIK) perturbedPositions(seed []referenceframe.Input, tries int, randSeed *rand.Rand) []referenceframe.Input {
	pos := make([]referenceframe.Input, len(seed))
	for i, in := range seed {
		window := rangeStep * float64(tries*(i+1))
		lower := math.Max(ik.lowerBound[i], in.Value-window)
		upper := math.Min(ik.upperBound[i], in.Value+window)
		pos[i] = referenceframe.Input{Value: lower + randSeed.Float64()*(upper-lower)}
	}
	return pos
}

// GenerateRandomPositions generates a random set of positions within the limits of this solver.
func (ik *JacobianIK) GenerateRandomPositions(randSeed *rand.Rand) []referenceframe.Input {
	return referenceframe.RandomFrameInputs(ik.model, randSeed)
}

// dampedLeastSquaresStep returns dq = Jᵀ(JJᵀ + λ²I)⁻¹dx.
func dampedLeastSquaresStep(jac *mat.Dense, dx []float64, damping float64) ([]float64, error) {
	rows, cols := jac.Dims()
	jjt := mat.NewSymDense(rows, nil)
	jjt.SymOuterK(1, jac)
	for i := 0; i < rows; i++ {
		jjt.SetSym(i, i, jjt.At(i, i)+damping*damping)
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(jjt); !ok {
		return nil, errors.New("damped jacobian product is not positive definite")
	}
	var y mat.VecDense
	if err := chol.SolveVecTo(&y, mat.NewVecDense(rows, dx)); err != nil {
		var condErr mat.Condition
		if !errors.As(err, &condErr) {
			return nil, err
		}
	}
	dq := mat.NewVecDense(cols, nil)
	dq.MulVec(jac.T(), &y)
	return dq.RawVector().Data, nil
}

func limitsToArrays(limits []referenceframe.Limit) ([]float64, []float64) {
	var lower, upper []float64
	for _, limit := range limits {
		lower = append(lower, limit.Min)
		upper = append(upper, limit.Max)
	}
	return lower, upper
}
