// Package arxr5 contains the kinematic model of the ARX R5 arm and a simulated arm session that moves it.
package arxr5

import (
	"context"
	// for embedding model file.
	_ "embed"
	"sync"

	"github.com/pkg/errors"

	"github.com/vassarrobotics/arxr5/kinematics"
	"github.com/vassarrobotics/arxr5/logging"
	"github.com/vassarrobotics/arxr5/referenceframe"
	"github.com/vassarrobotics/arxr5/spatialmath"
)

// ModelName is the name of the built-in ARX R5 model.
const ModelName = "arx_r5"

//go:embed arxr5_kinematics.json
var modeljson []byte

// MakeModelFrame returns the kinematics model of the ARX R5 arm. An empty name keeps the name from the model file.
func MakeModelFrame(name string) (*referenceframe.SerialModel, error) {
	return referenceframe.UnmarshalModelJSON(modeljson, name)
}

// NewSolver returns a solver for the model file named in the config, or for the ARX R5 if none is named.
func NewSolver(cfg *kinematics.Config, logger logging.Logger) (*kinematics.Solver, error) {
	model, err := kinematics.LoadModel(cfg, func() (*referenceframe.SerialModel, error) {
		return MakeModelFrame("")
	})
	if err != nil {
		return nil, err
	}
	return kinematics.NewSolver(model, cfg, logger)
}

// Arm is a simulated ARX R5 which moves instantly to whatever joint positions it is given. Pose moves are solved
// from the current joint positions, so successive nearby moves follow a continuous path.
type Arm struct {
	logger logging.Logger
	solver *kinematics.Solver

	mu     sync.RWMutex
	joints []referenceframe.Input
}

// NewArm returns a new simulated arm at its home position.
func NewArm(cfg *kinematics.Config, logger logging.Logger) (*Arm, error) {
	solver, err := NewSolver(cfg, logger.Sublogger("kinematics"))
	if err != nil {
		return nil, err
	}
	return &Arm{
		logger: logger,
		solver: solver,
		joints: solver.Model().Home(),
	}, nil
}

// ModelFrame returns the kinematic model the arm moves with.
func (a *Arm) ModelFrame() *referenceframe.SerialModel {
	return a.solver.Model()
}

// Solver returns the solver the arm moves with.
func (a *Arm) Solver() *kinematics.Solver {
	return a.solver
}

// JointPositions returns the current joint positions in radians.
func (a *Arm) JointPositions(ctx context.Context) ([]referenceframe.Input, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]referenceframe.Input{}, a.joints...), nil
}

// CurrentInputs returns the current inputs of the arm.
func (a *Arm) CurrentInputs(ctx context.Context) ([]referenceframe.Input, error) {
	return a.JointPositions(ctx)
}

// EndPosition returns the pose of the end effector at the current joint positions.
func (a *Arm) EndPosition(ctx context.Context) (spatialmath.Pose, error) {
	joints, err := a.JointPositions(ctx)
	if err != nil {
		return nil, err
	}
	return a.solver.ForwardKinematics(joints)
}

// MoveToJointPositions sets the joints, after checking them against the joint limits.
func (a *Arm) MoveToJointPositions(ctx context.Context, joints []referenceframe.Input) error {
	if _, err := a.solver.ForwardKinematics(joints); err != nil {
		return err
	}
	if err := CheckDesiredJointPositions(a.ModelFrame(), joints); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.joints = append(a.joints[:0], joints...)
	return nil
}

// MoveThroughJointPositions moves the arm through the given inputs, stopping at the first invalid one.
func (a *Arm) MoveThroughJointPositions(ctx context.Context, positions [][]referenceframe.Input) error {
	for _, goal := range positions {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := a.MoveToJointPositions(ctx, goal); err != nil {
			return err
		}
	}
	return nil
}

// GoToInputs moves the arm to the given inputs.
func (a *Arm) GoToInputs(ctx context.Context, inputSteps ...[]referenceframe.Input) error {
	return a.MoveThroughJointPositions(ctx, inputSteps)
}

// MoveToPosition solves for joint positions reaching the pose, seeded from the current joints, and moves there.
// The arm does not move if no solution is found.
func (a *Arm) MoveToPosition(ctx context.Context, pose spatialmath.Pose) error {
	seed, err := a.JointPositions(ctx)
	if err != nil {
		return err
	}
	solution, err := a.solver.InverseKinematics(ctx, pose, seed)
	if err != nil {
		return errors.Wrap(err, "cannot move arm")
	}
	a.logger.CDebugw(ctx, "moving to position", "from", referenceframe.InputsToFloats(seed),
		"to", referenceframe.InputsToFloats(solution))
	return a.MoveToJointPositions(ctx, solution)
}

// CheckDesiredJointPositions validates that the desired joint positions are within the model's limits.
func CheckDesiredJointPositions(model *referenceframe.SerialModel, desired []referenceframe.Input) error {
	limits := model.DoF()
	if len(desired) != len(limits) {
		return referenceframe.NewIncorrectDoFError(len(desired), len(limits))
	}
	for i, val := range desired {
		if !limits[i].Contains(val.Value) {
			return errors.Errorf("joint %d needs to be within range [%v, %v] and desired position %v is not",
				i, limits[i].Min, limits[i].Max, val.Value)
		}
	}
	return nil
}
