package referenceframe

import (
	"github.com/pkg/errors"
)

// ErrCircularReference is returned when the parent chain of a model never reaches the world frame.
var ErrCircularReference = errors.New("infinite loop finding path from end effector to world")

// ErrNeedOneEndEffector is returned when a model does not form a single unbranched chain.
var ErrNeedOneEndEffector = errors.New("need exactly one end effector")

// ErrNoJoints is returned when a model has nothing to move.
var ErrNoJoints = errors.New("model must have at least one joint")

// NewIncorrectDoFError returns an error indicating that the length of an input slice does not match the DoF of the frame.
func NewIncorrectDoFError(actual, expected int) error {
	return errors.Errorf("given input length %d does not match frame DoF %d", actual, expected)
}

// NewReservedWordError returns an error indicating that a frame in a model config is named with a reserved word.
func NewReservedWordError(configType, reservedWord string) error {
	return errors.Errorf("reserved word: cannot name a %s '%s'", configType, reservedWord)
}

// NewFrameNotInListOfTransformsError returns an error indicating that a frame referenced as a parent does not exist.
func NewFrameNotInListOfTransformsError(frameName string) error {
	return errors.Errorf("frame named '%s' not in the list of transforms", frameName)
}

// NewDuplicateFrameError returns an error indicating that two frames of a model share a name.
func NewDuplicateFrameError(frameName string) error {
	return errors.Errorf("frame named '%s' is defined more than once", frameName)
}

// NewUnsupportedJointTypeError returns an error indicating that a joint type other than revolute was configured.
func NewUnsupportedJointTypeError(jointType string) error {
	return errors.Errorf("unsupported joint type detected: %q, only %q joints are supported", jointType, RevoluteJoint)
}

// NewUnsupportedParamTypeError returns an error for an unknown kinematic_param_type.
func NewUnsupportedParamTypeError(paramType string) error {
	return errors.Errorf("unsupported param type: %s, supported params are SVA and DH", paramType)
}

// NewUnsupportedFileExtensionError returns an error for a model file that is neither json nor yaml.
func NewUnsupportedFileExtensionError(ext string) error {
	return errors.Errorf("unsupported kinematics file extension %q, expected .json, .yaml or .yml", ext)
}

// NewZeroAxisError returns an error indicating a joint was configured without a rotation axis.
func NewZeroAxisError(jointName string) error {
	return errors.Errorf("joint %q cannot use zero vector as rotation axis", jointName)
}

// NewInvalidLimitError returns an error for a joint whose limits are empty or not finite numbers.
func NewInvalidLimitError(jointName string, limit Limit) error {
	return errors.Errorf("joint %q has invalid limits [%v, %v]", jointName, limit.Min, limit.Max)
}

// NewHomeOutOfBoundsError returns an error indicating the configured home position violates a joint limit.
func NewHomeOutOfBoundsError(jointName string, value float64, limit Limit) error {
	return errors.Errorf("home position %.5f of joint %q is %s [%.5f, %.5f]", value, jointName, OOBErrString, limit.Min, limit.Max)
}

func newJointIndexError(index, dof int) error {
	return errors.Errorf("joint index %d out of range [0, %d]", index, dof-1)
}
