package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/vassarrobotics/arxr5/kinematics"
	"github.com/vassarrobotics/arxr5/logging"
)

// printf prints a message with no prefix.
func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}

const (
	loggerKey    = "logger"
	logCloserKey = "log_closer"
)

// setupLogging builds the command's logger, writing to the app's error writer so that logs never mix with
// the tables printed on its writer.
func setupLogging(c *cli.Context) error {
	logger := logging.NewBlankLogger("arxkin")
	logger.SetLevel(logging.INFO)
	if c.Bool(debugFlag) {
		logger.SetLevel(logging.DEBUG)
	}
	logger.AddAppender(logging.NewWriterAppender(c.App.ErrWriter))
	if path := c.String(logFileFlag); path != "" {
		appender, closer := logging.NewFileAppender(path)
		logger.AddAppender(appender)
		c.App.Metadata[logCloserKey] = closer
	}
	c.App.Metadata[loggerKey] = logger
	return nil
}

func closeLogging(c *cli.Context) error {
	if closer, ok := c.App.Metadata[logCloserKey].(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func newLogger(c *cli.Context) logging.Logger {
	if logger, ok := c.App.Metadata[loggerKey].(logging.Logger); ok {
		return logger
	}
	return logging.NewLogger("arxkin")
}

// readSolverConfig reads a solver config file. YAML is a superset of JSON, so one decoder reads both.
func readSolverConfig(path string) (*kinematics.Config, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %q", path)
	}
	attributes := map[string]interface{}{}
	if err := yaml.Unmarshal(data, &attributes); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config file %q", path)
	}
	return kinematics.DecodeConfig(attributes)
}

// readPoses reads a list of (x, y, z, roll, pitch, yaw) goals.
func readPoses(path string) ([][]float64, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read poses file %q", path)
	}
	var poses [][]float64
	if err := yaml.Unmarshal(data, &poses); err != nil {
		return nil, errors.Wrapf(err, "failed to parse poses file %q", path)
	}
	if len(poses) == 0 {
		return nil, errors.Errorf("poses file %q has no goals", path)
	}
	return poses, nil
}

func solverConfig(c *cli.Context) (*kinematics.Config, error) {
	cfg := &kinematics.Config{}
	if path := c.String(configFlag); path != "" {
		var err error
		if cfg, err = readSolverConfig(path); err != nil {
			return nil, err
		}
	}
	if modelPath := c.String(modelPathFlag); modelPath != "" {
		cfg.ModelPath = modelPath
	}
	return cfg, nil
}

func formatFloats(values []float64) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, fmt.Sprintf("%.4f", v))
	}
	return strings.Join(parts, ", ")
}
