package utils

import (
	"errors"
	"testing"

	"go.viam.com/test"
)

func TestConfigValidationErrors(t *testing.T) {
	cause := errors.New("must be positive")
	err := NewConfigValidationError("solver", cause)
	test.That(t, err.Error(), test.ShouldEqual, `error validating "solver": must be positive`)
	test.That(t, errors.Is(err, cause), test.ShouldBeTrue)

	err = NewConfigValidationFieldRequiredError("solver", "model_path")
	test.That(t, err.Error(), test.ShouldEqual, `error validating "solver": "model_path" is required`)
}
