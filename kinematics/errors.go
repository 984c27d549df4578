package kinematics

import (
	"github.com/pkg/errors"
)

var (
	// ErrInvalidInput is returned for joint vectors or poses of the wrong length or with non-finite values.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnreachable is returned when the goal is further from the base than the arm can reach.
	ErrUnreachable = errors.New("goal is outside the reachable workspace")

	// ErrNoConvergence is returned when the search budget is exhausted without reaching the goal.
	ErrNoConvergence = errors.New("kinematics could not solve for position")

	// ErrJointLimitViolation is returned when the goal can only be reached with joints outside their limits.
	ErrJointLimitViolation = errors.New("goal can only be reached outside of joint limits")
)

func newIncorrectLengthError(actual, expected int) error {
	return errors.Wrapf(ErrInvalidInput, "expected %d values but got %d", expected, actual)
}

func newNonFiniteInputError(index int, value float64) error {
	return errors.Wrapf(ErrInvalidInput, "value %d is not finite (%v)", index, value)
}

func newUnreachableError(distance, reach float64) error {
	return errors.Wrapf(ErrUnreachable, "goal is %.5f m from the base, max reach is %.5f m", distance, reach)
}

func newNoConvergenceError(attempts, iterations int) error {
	return errors.Wrapf(ErrNoConvergence, "no solution after %d attempts and %d iterations", attempts, iterations)
}
