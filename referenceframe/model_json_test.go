package referenceframe

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/google/go-cmp/cmp"
	"go.viam.com/test"

	spatial "github.com/vassarrobotics/arxr5/spatialmath"
	"github.com/vassarrobotics/arxr5/utils"
)

// Tests that kinematics files are properly parsed and correctly loaded into the model.
func TestParseModelFiles(t *testing.T) {
	goodFiles := []string{
		"referenceframe/testdata/sixdof.yaml",
		"referenceframe/testdata/sixdof_unordered.json",
		"referenceframe/testdata/planar_dh.json",
	}

	for _, f := range goodFiles {
		t.Run(f, func(t *testing.T) {
			model, err := KinematicModelFromFile(utils.ResolveFile(f), "")
			test.That(t, err, test.ShouldBeNil)

			data, err := model.MarshalJSON()
			test.That(t, err, test.ShouldBeNil)

			model2, err := UnmarshalModelJSON(data, "")
			test.That(t, err, test.ShouldBeNil)
			test.That(t, model.AlmostEquals(model2), test.ShouldBeTrue)
		})
	}

	badFiles := []struct {
		file string
		err  error
	}{
		{"referenceframe/testdata/prismatic.json", NewUnsupportedJointTypeError("prismatic")},
		{"referenceframe/testdata/loop.json", ErrCircularReference},
		{"referenceframe/testdata/worldjoint.json", NewReservedWordError("joint", World)},
		{"referenceframe/testdata/missingparent.json", NewFrameNotInListOfTransformsError("base")},
	}
	for _, tc := range badFiles {
		t.Run(tc.file, func(t *testing.T) {
			_, err := KinematicModelFromFile(utils.ResolveFile(tc.file), "")
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, err.Error(), test.ShouldEqual, tc.err.Error())
		})
	}

	_, err := KinematicModelFromFile(utils.ResolveFile("referenceframe/testdata/branch.json"), "")
	test.That(t, errors.Is(err, ErrNeedOneEndEffector), test.ShouldBeTrue)

	_, err = KinematicModelFromFile(utils.ResolveFile("referenceframe/testdata/missing.json"), "")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestOrderingDoesNotMatter(t *testing.T) {
	fromYAML, err := KinematicModelFromFile(utils.ResolveFile("referenceframe/testdata/sixdof.yaml"), "")
	test.That(t, err, test.ShouldBeNil)
	fromJSON, err := KinematicModelFromFile(utils.ResolveFile("referenceframe/testdata/sixdof_unordered.json"), "")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, fromYAML.AlmostEquals(fromJSON), test.ShouldBeTrue)

	names := []string{}
	for _, j := range fromJSON.Joints() {
		names = append(names, j.Name)
	}
	test.That(t, names, test.ShouldResemble, []string{"base", "shoulder", "elbow", "wrist_pitch", "wrist_yaw", "wrist_roll"})
}

func TestModelNameOverride(t *testing.T) {
	m, err := KinematicModelFromFile(utils.ResolveFile("referenceframe/testdata/sixdof.yaml"), "foo")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.Name(), test.ShouldEqual, "foo")
}

func TestDHModel(t *testing.T) {
	m, err := KinematicModelFromFile(utils.ResolveFile("referenceframe/testdata/planar_dh.json"), "")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.Name(), test.ShouldEqual, "planar")
	test.That(t, len(m.DoF()), test.ShouldEqual, 2)

	pose, err := m.Transform([]Input{{0}, {0}})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatial.R3VectorAlmostEqual(pose.Point(), r3.Vector{X: 0.5, Z: 0.1}, 1e-9), test.ShouldBeTrue)
	test.That(t, pose.Orientation().EulerAngles().Roll, test.ShouldAlmostEqual, math.Pi/2)

	pose, err = m.Transform([]Input{{math.Pi / 2}, {0}})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatial.R3VectorAlmostEqual(pose.Point(), r3.Vector{Y: 0.5, Z: 0.1}, 1e-9), test.ShouldBeTrue)

	pose, err = m.Transform([]Input{{0}, {math.Pi / 2}})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatial.R3VectorAlmostEqual(pose.Point(), r3.Vector{X: 0.3, Y: 0.2, Z: 0.1}, 1e-9), test.ShouldBeTrue)

	test.That(t, m.MaxReach(), test.ShouldAlmostEqual, math.Hypot(0.5, 0.1))
}

func TestUnmarshalErrors(t *testing.T) {
	_, err := UnmarshalModelJSON(nil, "")
	test.That(t, err, test.ShouldEqual, ErrNoModelInformation)
	_, err = UnmarshalModelYAML([]byte{}, "")
	test.That(t, err, test.ShouldEqual, ErrNoModelInformation)

	_, err = UnmarshalModelJSON([]byte(`{"name": `), "")
	test.That(t, err.Error(), test.ShouldContainSubstring, "failed to unmarshal json file")

	_, err = UnmarshalModelJSON([]byte(`{"name": "x", "kinematic_param_type": "URDF"}`), "")
	test.That(t, err.Error(), test.ShouldEqual, NewUnsupportedParamTypeError("URDF").Error())

	_, err = UnmarshalModelJSON([]byte(`{"name": "x", "joints": []}`), "")
	test.That(t, err, test.ShouldEqual, ErrNoJoints)

	_, err = UnmarshalModelJSON([]byte(`{"name": "x", "joints": [{"id": "a", "min": -1, "max": 1}]}`), "")
	test.That(t, err.Error(), test.ShouldEqual, NewZeroAxisError("a").Error())

	_, err = UnmarshalModelJSON([]byte(`{"name": "x", "joints": [{"id": "a", "axis": {"z": 1}, "min": 1, "max": -1}]}`), "")
	test.That(t, err.Error(), test.ShouldEqual, NewInvalidLimitError("a", Limit{1, -1}).Error())

	_, err = UnmarshalModelJSON([]byte(`{"name": "x", "joints": [{"id": "a", "axis": {"z": 1}, "min": -1, "max": 1}], "home": [2]}`), "")
	test.That(t, err.Error(), test.ShouldContainSubstring, OOBErrString)

	dir := t.TempDir()
	path := filepath.Join(dir, "model.urdf")
	test.That(t, os.WriteFile(path, []byte("<robot/>"), 0o600), test.ShouldBeNil)
	_, err = KinematicModelFromFile(path, "")
	test.That(t, err.Error(), test.ShouldEqual, NewUnsupportedFileExtensionError(".urdf").Error())
}

func TestImplicitParents(t *testing.T) {
	yml := []byte(`
name: chain
joints:
  - id: a
    axis: {z: 1}
    min: -1
    max: 1
  - id: b
    translation: {x: 0.5}
    axis: {y: 1}
    min: -1
    max: 1
`)
	m, err := UnmarshalModelYAML(yml, "")
	test.That(t, err, test.ShouldBeNil)
	cfg := m.Config()
	test.That(t, cfg.Joints[0].Parent, test.ShouldEqual, World)
	test.That(t, cfg.Joints[1].Parent, test.ShouldEqual, "a")

	expected := JointConfig{
		ID:          "b",
		Type:        "revolute",
		Parent:      "a",
		Translation: Translation{X: 0.5},
		Axis:        AxisConfig{Y: 1},
		Min:         -1,
		Max:         1,
	}
	test.That(t, cmp.Diff(expected, cfg.Joints[1]), test.ShouldBeEmpty)
	test.That(t, cfg.Home, test.ShouldResemble, []float64{0, 0})
}
