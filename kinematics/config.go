package kinematics

import (
	"math"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/vassarrobotics/arxr5/utils"
)

// default values for inverse kinematics.
const (
	// Meters between the solved and goal end effector positions that still count as reaching the goal.
	defaultPositionTolerance = 1e-5

	// Radians between the solved and goal end effector orientations that still count as reaching the goal.
	defaultOrientationTolerance = 1e-4

	// Damped least squares steps per attempt.
	defaultMaxIterations = 300

	// Attempts from generated seeds after the first attempt from the caller's seed.
	defaultRestarts = 32

	// Number of converged solutions to collect before picking the one closest to the seed.
	defaultMaxSolutions = 4

	// Damping factor lambda. Larger values trade convergence speed for stability near singularities.
	defaultDamping = 0.01

	// Largest change in radians of any single joint in one step.
	defaultMaxStep = 0.5

	defaultRandomSeed = 1
)

// Config describes how the solver is built and how hard inverse kinematics searches. Zero values take defaults.
// For Restarts, a negative value disables restarts.
type Config struct {
	ModelPath            string  `json:"model_path,omitempty"`
	PositionTolerance    float64 `json:"position_tolerance,omitempty"`
	OrientationTolerance float64 `json:"orientation_tolerance,omitempty"`
	MaxIterations        int     `json:"max_iterations,omitempty"`
	Restarts             int     `json:"restarts,omitempty"`
	MaxSolutions         int     `json:"max_solutions,omitempty"`
	Damping              float64 `json:"damping,omitempty"`
	MaxStep              float64 `json:"max_step,omitempty"`
	RandomSeed           int64   `json:"random_seed,omitempty"`
}

// NewDefaultConfig returns a config with every field set to its default.
func NewDefaultConfig() *Config {
	return &Config{
		PositionTolerance:    defaultPositionTolerance,
		OrientationTolerance: defaultOrientationTolerance,
		MaxIterations:        defaultMaxIterations,
		Restarts:             defaultRestarts,
		MaxSolutions:         defaultMaxSolutions,
		Damping:              defaultDamping,
		MaxStep:              defaultMaxStep,
		RandomSeed:           defaultRandomSeed,
	}
}

// DecodeConfig builds a config from an attribute map, such as one read from a larger JSON or YAML document.
// Unknown attributes are rejected.
func DecodeConfig(attributes map[string]interface{}) (*Config, error) {
	var conf Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		Result:      &conf,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(attributes); err != nil {
		return nil, errors.Wrap(err, "failed to decode kinematics config")
	}
	return &conf, nil
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	var errAll error
	nonNegative := func(field string, v float64) {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			multierr.AppendInto(&errAll, utils.NewConfigValidationError(path,
				errors.Errorf("%q must be a finite non-negative number, got %v", field, v)))
		}
	}
	nonNegative("position_tolerance", cfg.PositionTolerance)
	nonNegative("orientation_tolerance", cfg.OrientationTolerance)
	nonNegative("max_iterations", float64(cfg.MaxIterations))
	nonNegative("max_solutions", float64(cfg.MaxSolutions))
	nonNegative("damping", cfg.Damping)
	nonNegative("max_step", cfg.MaxStep)

	if cfg.ModelPath != "" {
		switch strings.ToLower(filepath.Ext(cfg.ModelPath)) {
		case ".json", ".yaml", ".yml":
		default:
			multierr.AppendInto(&errAll, utils.NewConfigValidationError(path,
				errors.Errorf("model_path %q must be a .json, .yaml or .yml file", cfg.ModelPath)))
		}
	}
	return errAll
}

// withDefaults returns a copy of the config with unset fields filled in.
func (cfg *Config) withDefaults() Config {
	def := NewDefaultConfig()
	out := *cfg
	if out.PositionTolerance == 0 {
		out.PositionTolerance = def.PositionTolerance
	}
	if out.OrientationTolerance == 0 {
		out.OrientationTolerance = def.OrientationTolerance
	}
	if out.MaxIterations == 0 {
		out.MaxIterations = def.MaxIterations
	}
	switch {
	case out.Restarts == 0:
		out.Restarts = def.Restarts
	case out.Restarts < 0:
		out.Restarts = 0
	}
	if out.MaxSolutions == 0 {
		out.MaxSolutions = def.MaxSolutions
	}
	if out.Damping == 0 {
		out.Damping = def.Damping
	}
	if out.MaxStep == 0 {
		out.MaxStep = def.MaxStep
	}
	if out.RandomSeed == 0 {
		out.RandomSeed = def.RandomSeed
	}
	return out
}
