// Package main is the arxkin command itself.
package main

import (
	"fmt"
	"os"

	"github.com/vassarrobotics/arxr5/cli"
)

func main() {
	app := cli.NewApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		//nolint:errcheck
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
