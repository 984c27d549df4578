// Package cli contains the arxkin command line interface.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
)

const (
	configFlag    = "config"
	modelPathFlag = "model-path"
	debugFlag     = "debug"
	logFileFlag   = "log-file"
	degreesFlag   = "degrees"
	jointsFlag    = "joints"
	poseFlag      = "pose"
	seedFlag      = "seed"
	posesFlag     = "poses"
	parallelFlag  = "parallel"
)

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:            "arxkin",
		Usage:           "solve forward and inverse kinematics for the ARX R5 arm",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Metadata:        map[string]interface{}{},
		Before:          setupLogging,
		After:           closeLogging,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    configFlag,
				Aliases: []string{"c"},
				Usage:   "load solver configuration from a JSON or YAML `FILE`",
			},
			&cli.StringFlag{
				Name:  modelPathFlag,
				Usage: "kinematics `FILE` to use instead of the built-in ARX R5 model",
			},
			&cli.BoolFlag{
				Name:    debugFlag,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
			&cli.StringFlag{
				Name:  logFileFlag,
				Usage: "also write logs to `FILE`, rotating it as it grows",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "fk",
				Usage:     "print the end effector pose for a set of joint angles",
				UsageText: "arxkin fk --joints 0.6,0,0,0,0,0",
				Flags: []cli.Flag{
					&cli.Float64SliceFlag{
						Name:     jointsFlag,
						Aliases:  []string{"j"},
						Required: true,
						Usage:    "comma separated joint angles, base first",
					},
					&cli.BoolFlag{
						Name:  degreesFlag,
						Usage: "read and print angles in degrees instead of radians",
					},
				},
				Action: ForwardKinematicsAction,
			},
			{
				Name:      "ik",
				Usage:     "print joint angles that reach an end effector pose",
				UsageText: "arxkin ik --pose x,y,z,roll,pitch,yaw [--seed j1,...,j6]",
				Flags: []cli.Flag{
					&cli.Float64SliceFlag{
						Name:     poseFlag,
						Aliases:  []string{"p"},
						Required: true,
						Usage:    "goal position in meters and roll, pitch, yaw",
					},
					&cli.Float64SliceFlag{
						Name:  seedFlag,
						Usage: "joint angles to search from, defaults to the home position",
					},
					&cli.BoolFlag{
						Name:  degreesFlag,
						Usage: "read and print angles in degrees instead of radians",
					},
				},
				Action: InverseKinematicsAction,
			},
			{
				Name:      "ik-batch",
				Usage:     "solve a file of end effector poses concurrently",
				UsageText: "arxkin ik-batch --poses poses.yaml [--parallel 4]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     posesFlag,
						Required: true,
						Usage:    "YAML or JSON `FILE` holding a list of [x, y, z, roll, pitch, yaw] goals",
					},
					&cli.IntFlag{
						Name:  parallelFlag,
						Value: 4,
						Usage: "number of goals to solve at once",
					},
					&cli.BoolFlag{
						Name:  degreesFlag,
						Usage: "read goal angles and print joint angles in degrees",
					},
				},
				Action: InverseKinematicsBatchAction,
			},
			{
				Name:   "model",
				Usage:  "print the joints of the kinematic model",
				Action: ModelAction,
			},
		},
	}
}
