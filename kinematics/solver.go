// Package kinematics solves forward and inverse kinematics for serial revolute arms.
package kinematics

import (
	"context"

	"github.com/pkg/errors"

	"github.com/vassarrobotics/arxr5/logging"
	"github.com/vassarrobotics/arxr5/referenceframe"
	spatial "github.com/vassarrobotics/arxr5/spatialmath"
	"github.com/vassarrobotics/arxr5/utils"
)

// SolveMetaData describes the work done by one inverse kinematics search.
type SolveMetaData struct {
	Constrained bool
	Attempts    int
	Iterations  int
	Solutions   int
}

// Solver computes forward and inverse kinematics for a single model. It holds no mutable state, so one solver may
// be shared between goroutines.
type Solver struct {
	model  *referenceframe.SerialModel
	cfg    Config
	ik     *JacobianIK
	logger logging.Logger
}

// LoadModel returns the model named by cfg.ModelPath, or the fallback model if no path is set.
func LoadModel(cfg *Config, fallback func() (*referenceframe.SerialModel, error)) (*referenceframe.SerialModel, error) {
	if cfg != nil && cfg.ModelPath != "" {
		model, err := referenceframe.KinematicModelFromFile(cfg.ModelPath, "")
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load kinematic model from %q", cfg.ModelPath)
		}
		return model, nil
	}
	if fallback == nil {
		return nil, referenceframe.ErrNoModelInformation
	}
	return fallback()
}

// NewSolver returns a solver for the given model. A nil config uses the defaults.
func NewSolver(model *referenceframe.SerialModel, cfg *Config, logger logging.Logger) (*Solver, error) {
	if model == nil {
		return nil, referenceframe.ErrNoModelInformation
	}
	if cfg == nil {
		cfg = NewDefaultConfig()
	}
	if err := cfg.Validate("kinematics"); err != nil {
		return nil, err
	}
	resolved := cfg.withDefaults()
	logger.Debugw("created kinematics solver",
		"model", model.Name(),
		"dof", len(model.DoF()),
		"max_reach", model.MaxReach(),
		"restarts", resolved.Restarts,
		"max_iterations", resolved.MaxIterations,
	)
	return &Solver{
		model:  model,
		cfg:    resolved,
		ik:     CreateJacobianIKSolver(model, resolved, logger),
		logger: logger,
	}, nil
}

// Model returns the kinematic model the solver was built with.
func (s *Solver) Model() *referenceframe.SerialModel {
	return s.model
}

// Config returns the solver's config with defaults applied.
func (s *Solver) Config() Config {
	return s.cfg
}

func (s *Solver) validateInputs(inputs []referenceframe.Input) error {
	if len(inputs) != len(s.model.DoF()) {
		return newIncorrectLengthError(len(inputs), len(s.model.DoF()))
	}
	for i, in := range inputs {
		if !utils.IsFinite(in.Value) {
			return newNonFiniteInputError(i, in.Value)
		}
	}
	return nil
}

func validatePose(p spatial.Pose) error {
	if p == nil {
		return errors.Wrap(ErrInvalidInput, "pose is nil")
	}
	pt := p.Point()
	q := p.Orientation().Quaternion()
	if !utils.IsFinite(pt.X, pt.Y, pt.Z, q.Real, q.Imag, q.Jmag, q.Kmag) {
		return errors.Wrap(ErrInvalidInput, "pose has non-finite values")
	}
	return nil
}

// ForwardKinematics returns the pose of the end effector for the given joint angles in radians. Joint limits are not
// applied, so any finite input produces a pose.
func (s *Solver) ForwardKinematics(joints []referenceframe.Input) (spatial.Pose, error) {
	if err := s.validateInputs(joints); err != nil {
		return nil, err
	}
	pose, err := s.model.Transform(joints)
	if pose == nil {
		return nil, err
	}
	return pose, nil
}

// ForwardKinematicsVector is ForwardKinematics on plain floats, returning (x, y, z, roll, pitch, yaw).
func (s *Solver) ForwardKinematicsVector(joints []float64) ([]float64, error) {
	pose, err := s.ForwardKinematics(referenceframe.FloatsToInputs(joints))
	if err != nil {
		return nil, err
	}
	return spatial.PoseToVector(pose), nil
}

// InverseKinematics returns joint angles, within the joint limits, that place the end effector at the goal pose.
// A nil seed starts from the model's home position. When several solutions are found the one nearest the seed is
// returned, so nearby goals solved from the previous result give nearby solutions.
func (s *Solver) InverseKinematics(
	ctx context.Context,
	goal spatial.Pose,
	seed []referenceframe.Input,
) ([]referenceframe.Input, error) {
	if err := validatePose(goal); err != nil {
		return nil, err
	}
	if seed == nil {
		seed = s.model.Home()
	} else if err := s.validateInputs(seed); err != nil {
		return nil, err
	}

	center := s.model.ReachCenter()
	if dist := goal.Point().Sub(center).Norm(); dist > s.model.MaxReach()+s.cfg.PositionTolerance {
		return nil, newUnreachableError(dist, s.model.MaxReach())
	}

	s.logger.CDebugf(ctx, "starting inverse kinematics from %v toward %v",
		referenceframe.InputsToFloats(seed), spatial.PoseToVector(goal))

	solutions, meta, err := s.ik.Solve(ctx, goal, seed, true, s.cfg.MaxSolutions)
	if err != nil {
		return nil, err
	}
	if candidates := s.verifiedSolutions(goal, solutions); len(candidates) > 0 {
		idx, best := bestSolution(seed, candidates, SquaredJointMetric)
		s.logger.CDebugw(ctx, "inverse kinematics solved",
			"attempts", meta.Attempts,
			"iterations", meta.Iterations,
			"solutions", meta.Solutions,
			"chosen", idx,
			"joint_distance", L2InputMetric(&Segment{StartConfiguration: seed, EndConfiguration: best}),
		)
		return best, nil
	}

	// Nothing within limits, so look for any solution to tell the two failures apart.
	free, freeMeta, err := s.ik.Solve(ctx, goal, seed, false, s.cfg.MaxSolutions)
	if err != nil {
		return nil, err
	}
	attempts, iterations := meta.Attempts+freeMeta.Attempts, meta.Iterations+freeMeta.Iterations
	if len(free) == 0 {
		s.logger.CDebugw(ctx, "inverse kinematics did not converge", "attempts", attempts, "iterations", iterations)
		return nil, newNoConvergenceError(attempts, iterations)
	}

	// A whole turn, or an elbow flipped to its other side, may still bring every joint inside its limits.
	var alternates [][]referenceframe.Input
	for _, solution := range free {
		alternates = append(alternates, solution.Configuration)
		alternates = append(alternates, alternateConfigurations(s.model, solution.Configuration)...)
	}
	if candidates := s.verifiedConfigurations(goal, alternates); len(candidates) > 0 {
		_, best := bestSolution(seed, candidates, SquaredJointMetric)
		return best, nil
	}

	// Otherwise descend within the limits from each of them.
	refined, refineMeta, err := s.ik.Refine(ctx, goal, alternates)
	if err != nil {
		return nil, err
	}
	if candidates := s.verifiedSolutions(goal, refined); len(candidates) > 0 {
		_, best := bestSolution(seed, candidates, SquaredJointMetric)
		return best, nil
	}
	s.logger.CDebugw(ctx, "constrained inverse kinematics failed",
		"attempts", attempts+refineMeta.Attempts,
		"iterations", iterations+refineMeta.Iterations,
		"unconstrained_solutions", freeMeta.Solutions,
	)
	return nil, errors.Wrapf(ErrJointLimitViolation, "nearest solution is %v",
		referenceframe.InputsToFloats(free[0].Configuration))
}

// InverseKinematicsVector is InverseKinematics on a (x, y, z, roll, pitch, yaw) goal, seeded from home.
func (s *Solver) InverseKinematicsVector(goal []float64) ([]float64, error) {
	if len(goal) != 6 {
		return nil, newIncorrectLengthError(len(goal), 6)
	}
	for i, v := range goal {
		if !utils.IsFinite(v) {
			return nil, newNonFiniteInputError(i, v)
		}
	}
	pose, err := spatial.PoseFromVector(goal)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidInput, err.Error())
	}
	solution, err := s.InverseKinematics(context.Background(), pose, nil)
	if err != nil {
		return nil, err
	}
	return referenceframe.InputsToFloats(solution), nil
}

// verifiedSolutions wraps each solution's joints into (-pi, pi] where the limits allow and keeps those which are
// within limits and still reach the goal.
func (s *Solver) verifiedSolutions(goal spatial.Pose, solutions []*Solution) [][]referenceframe.Input {
	configurations := make([][]referenceframe.Input, 0, len(solutions))
	for _, solution := range solutions {
		configurations = append(configurations, solution.Configuration)
	}
	return s.verifiedConfigurations(goal, configurations)
}

func (s *Solver) verifiedConfigurations(goal spatial.Pose, configurations [][]referenceframe.Input) [][]referenceframe.Input {
	var verified [][]referenceframe.Input
	for _, configuration := range configurations {
		normalized, ok := normalizeSolution(configuration, s.model.DoF())
		if !ok {
			continue
		}
		pose, err := s.model.Transform(normalized)
		if err != nil {
			continue
		}
		posErr, rotErr := errorMagnitudes(poseError(goal, pose))
		if posErr <= s.cfg.PositionTolerance && rotErr <= s.cfg.OrientationTolerance {
			verified = append(verified, normalized)
		}
	}
	return verified
}
