package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/vassarrobotics/arxr5/components/arm/arxr5"
	"github.com/vassarrobotics/arxr5/kinematics"
	"github.com/vassarrobotics/arxr5/referenceframe"
	"github.com/vassarrobotics/arxr5/spatialmath"
	"github.com/vassarrobotics/arxr5/utils"
)

func newSolver(c *cli.Context) (*kinematics.Solver, error) {
	cfg, err := solverConfig(c)
	if err != nil {
		return nil, err
	}
	return arxr5.NewSolver(cfg, newLogger(c))
}

// convertAngles converts the given indices of values between degrees and radians in place.
func convertAngles(values []float64, indices []int, convert func(float64) float64) {
	for _, i := range indices {
		if i < len(values) {
			values[i] = convert(values[i])
		}
	}
}

func allIndices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

var orientationIndices = []int{3, 4, 5}

// ForwardKinematicsAction is the corresponding Action for 'fk'.
func ForwardKinematicsAction(c *cli.Context) error {
	solver, err := newSolver(c)
	if err != nil {
		return err
	}
	joints := append([]float64{}, c.Float64Slice(jointsFlag)...)
	degrees := c.Bool(degreesFlag)
	if degrees {
		convertAngles(joints, allIndices(len(joints)), utils.DegToRad)
	}

	pose, err := solver.ForwardKinematicsVector(joints)
	if err != nil {
		return err
	}
	if degrees {
		convertAngles(pose, orientationIndices, utils.RadToDeg)
	}
	printf(c.App.Writer, "%s", poseTable(pose, degrees))
	return nil
}

// InverseKinematicsAction is the corresponding Action for 'ik'.
func InverseKinematicsAction(c *cli.Context) error {
	solver, err := newSolver(c)
	if err != nil {
		return err
	}
	goal := append([]float64{}, c.Float64Slice(poseFlag)...)
	seedVals := append([]float64{}, c.Float64Slice(seedFlag)...)
	degrees := c.Bool(degreesFlag)
	if degrees {
		convertAngles(goal, orientationIndices, utils.DegToRad)
		convertAngles(seedVals, allIndices(len(seedVals)), utils.DegToRad)
	}

	var solution []float64
	if len(seedVals) == 0 {
		if solution, err = solver.InverseKinematicsVector(goal); err != nil {
			return err
		}
	} else {
		pose, err := spatialmath.PoseFromVector(goal)
		if err != nil {
			return err
		}
		inputs, err := solver.InverseKinematics(c.Context, pose, referenceframe.FloatsToInputs(seedVals))
		if err != nil {
			return err
		}
		solution = referenceframe.InputsToFloats(inputs)
	}
	if degrees {
		convertAngles(solution, allIndices(len(solution)), utils.RadToDeg)
	}
	printf(c.App.Writer, "%s", jointTable(solver.Model(), solution, degrees))
	return nil
}

// InverseKinematicsBatchAction is the corresponding Action for 'ik-batch'. Each goal is solved from the home
// position, several at a time on the one solver. A goal that cannot be solved is reported in the table and does
// not stop the others.
func InverseKinematicsBatchAction(c *cli.Context) error {
	solver, err := newSolver(c)
	if err != nil {
		return err
	}
	goals, err := readPoses(c.String(posesFlag))
	if err != nil {
		return err
	}
	degrees := c.Bool(degreesFlag)

	solutions := make([][]float64, len(goals))
	failures := make([]error, len(goals))
	g, ctx := errgroup.WithContext(c.Context)
	g.SetLimit(max(1, c.Int(parallelFlag)))
	for i, goal := range goals {
		g.Go(func() error {
			vec := append([]float64{}, goal...)
			if degrees {
				convertAngles(vec, orientationIndices, utils.DegToRad)
			}
			pose, err := spatialmath.PoseFromVector(vec)
			if err != nil {
				failures[i] = err
				return nil
			}
			inputs, err := solver.InverseKinematics(ctx, pose, nil)
			if err != nil {
				if ctx.Err() != nil {
					return err
				}
				failures[i] = err
				return nil
			}
			solutions[i] = referenceframe.InputsToFloats(inputs)
			if degrees {
				convertAngles(solutions[i], allIndices(len(solutions[i])), utils.RadToDeg)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	t := table.NewWriter()
	header := table.Row{"#", "Goal"}
	for _, j := range solver.Model().Joints() {
		header = append(header, j.Name)
	}
	t.AppendHeader(append(header, "Status"))
	failed := 0
	for i, goal := range goals {
		row := table.Row{fmt.Sprintf("%d", i+1), formatFloats(goal)}
		for j := range solver.Model().Joints() {
			if failures[i] != nil {
				row = append(row, "")
				continue
			}
			row = append(row, fmt.Sprintf("%.4f", solutions[i][j]))
		}
		status := "ok"
		if failures[i] != nil {
			failed++
			status = failures[i].Error()
		}
		t.AppendRow(append(row, status))
	}
	printf(c.App.Writer, "%s", t.Render())
	if failed > 0 {
		return errors.Errorf("%d of %d goals could not be solved", failed, len(goals))
	}
	return nil
}

// ModelAction is the corresponding Action for 'model'.
func ModelAction(c *cli.Context) error {
	solver, err := newSolver(c)
	if err != nil {
		return err
	}
	model := solver.Model()
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "Joint", "Translation", "Axis", "Offset", "Min", "Max"})
	for i, j := range model.Joints() {
		tra := j.Origin.Point()
		t.AppendRow(table.Row{
			fmt.Sprintf("%d", i+1),
			j.Name,
			fmt.Sprintf("X:%.5f, Y:%.5f, Z:%.5f", tra.X, tra.Y, tra.Z),
			fmt.Sprintf("X:%.2f, Y:%.2f, Z:%.2f", j.Axis.X, j.Axis.Y, j.Axis.Z),
			fmt.Sprintf("%.4f", j.Offset),
			fmt.Sprintf("%.4f", j.Limit.Min),
			fmt.Sprintf("%.4f", j.Limit.Max),
		})
	}
	tool := model.Tool().Point()
	t.AppendRow(table.Row{"", "tool", fmt.Sprintf("X:%.5f, Y:%.5f, Z:%.5f", tool.X, tool.Y, tool.Z), "", "", "", ""})
	printf(c.App.Writer, "model %q", model.Name())
	printf(c.App.Writer, "%s", t.Render())
	printf(c.App.Writer, "max reach: %.4f m", model.MaxReach())
	printf(c.App.Writer, "home: [%s]", formatFloats(referenceframe.InputsToFloats(model.Home())))
	return nil
}

func poseTable(pose []float64, degrees bool) string {
	unit := "rad"
	if degrees {
		unit = "deg"
	}
	t := table.NewWriter()
	t.AppendHeader(table.Row{"X (m)", "Y (m)", "Z (m)", "Roll (" + unit + ")", "Pitch (" + unit + ")", "Yaw (" + unit + ")"})
	row := table.Row{}
	for _, v := range pose {
		row = append(row, fmt.Sprintf("%.4f", v))
	}
	t.AppendRow(row)
	return t.Render()
}

func jointTable(model *referenceframe.SerialModel, solution []float64, degrees bool) string {
	unit := "rad"
	if degrees {
		unit = "deg"
	}
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "Joint", "Position (" + unit + ")"})
	for i, j := range model.Joints() {
		t.AppendRow(table.Row{fmt.Sprintf("%d", i+1), j.Name, fmt.Sprintf("%.4f", solution[i])})
	}
	return t.Render()
}
