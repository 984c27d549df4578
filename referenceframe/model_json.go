package referenceframe

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	spatial "github.com/vassarrobotics/arxr5/spatialmath"
)

// ErrNoModelInformation is used when there is no model information.
var ErrNoModelInformation = errors.New("no model information")

// ModelConfig represents all supported fields in a kinematics file. JSON and YAML files share the same field names.
// Lengths are in meters and angles in radians.
type ModelConfig struct {
	Name         string          `json:"name" yaml:"name"`
	KinParamType string          `json:"kinematic_param_type,omitempty" yaml:"kinematic_param_type,omitempty"`
	Joints       []JointConfig   `json:"joints,omitempty" yaml:"joints,omitempty"`
	DHParams     []DHParamConfig `json:"dhParams,omitempty" yaml:"dhParams,omitempty"`
	Tool         *LinkConfig     `json:"tool,omitempty" yaml:"tool,omitempty"`
	Home         []float64       `json:"home,omitempty" yaml:"home,omitempty"`
}

// Translation is the translation between two objects in the grid system, in meters.
type Translation struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// AxisConfig is the direction of a joint's rotation axis in the joint's origin frame.
type AxisConfig struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// LinkConfig is a fixed transform: a translation followed by an optional roll/pitch/yaw rotation.
type LinkConfig struct {
	Translation Translation          `json:"translation" yaml:"translation"`
	Orientation *spatial.EulerAngles `json:"orientation,omitempty" yaml:"orientation,omitempty"`
}

// JointConfig is a revolute joint in SVA form: its origin relative to the parent, its axis and its limits.
type JointConfig struct {
	ID          string               `json:"id" yaml:"id"`
	Type        string               `json:"type" yaml:"type"`
	Parent      string               `json:"parent,omitempty" yaml:"parent,omitempty"`
	Translation Translation          `json:"translation" yaml:"translation"`
	Orientation *spatial.EulerAngles `json:"orientation,omitempty" yaml:"orientation,omitempty"`
	Axis        AxisConfig           `json:"axis" yaml:"axis"`
	Offset      float64              `json:"offset,omitempty" yaml:"offset,omitempty"`
	Min         float64              `json:"min" yaml:"min"`
	Max         float64              `json:"max" yaml:"max"`
}

// Pose returns the transform described by the link.
func (lc *LinkConfig) Pose() spatial.Pose {
	if lc == nil {
		return spatial.NewZeroPose()
	}
	pt := r3.Vector{X: lc.Translation.X, Y: lc.Translation.Y, Z: lc.Translation.Z}
	if lc.Orientation == nil {
		return spatial.NewPoseFromPoint(pt)
	}
	return spatial.NewPose(pt, lc.Orientation)
}

func linkConfigFromPose(p spatial.Pose) *LinkConfig {
	pt := p.Point()
	lc := &LinkConfig{Translation: Translation{pt.X, pt.Y, pt.Z}}
	if !spatial.OrientationAlmostEqual(p.Orientation(), spatial.NewZeroOrientation()) {
		lc.Orientation = p.Orientation().EulerAngles()
	}
	return lc
}

// ToJoint converts the config into a validated Joint.
func (cfg *JointConfig) ToJoint() (Joint, error) {
	switch JointType(cfg.Type) {
	case RevoluteJoint, "":
	default:
		return Joint{}, NewUnsupportedJointTypeError(cfg.Type)
	}
	origin := &LinkConfig{Translation: cfg.Translation, Orientation: cfg.Orientation}
	return NewJoint(
		cfg.ID,
		origin.Pose(),
		r3.Vector{X: cfg.Axis.X, Y: cfg.Axis.Y, Z: cfg.Axis.Z},
		cfg.Offset,
		Limit{Min: cfg.Min, Max: cfg.Max},
	)
}

// UnmarshalModelJSON will parse the given JSON data into a kinematics model. modelName sets the name of the model,
// will use the name from the JSON if string is empty.
func UnmarshalModelJSON(jsonData []byte, modelName string) (*SerialModel, error) {
	// empty data probably means that the robot component has no model information
	if len(jsonData) == 0 {
		return nil, ErrNoModelInformation
	}

	m := &ModelConfig{}
	if err := json.Unmarshal(jsonData, m); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal json file")
	}
	return m.ParseConfig(modelName)
}

// UnmarshalModelYAML will parse the given YAML data into a kinematics model, in the same way as UnmarshalModelJSON.
func UnmarshalModelYAML(yamlData []byte, modelName string) (*SerialModel, error) {
	if len(yamlData) == 0 {
		return nil, ErrNoModelInformation
	}

	m := &ModelConfig{}
	if err := yaml.Unmarshal(yamlData, m); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal yaml file")
	}
	return m.ParseConfig(modelName)
}

// KinematicModelFromFile returns a model frame from a kinematics file. The file is parsed according to its
// extension, which must be .json, .yaml or .yml.
func KinematicModelFromFile(modelPath, name string) (*SerialModel, error) {
	//nolint:gosec
	data, err := os.ReadFile(modelPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read kinematics file")
	}
	switch ext := strings.ToLower(filepath.Ext(modelPath)); ext {
	case ".json":
		return UnmarshalModelJSON(data, name)
	case ".yaml", ".yml":
		return UnmarshalModelYAML(data, name)
	default:
		return nil, NewUnsupportedFileExtensionError(ext)
	}
}

// ParseConfig converts the ModelConfig struct into a full Model with the name modelName.
func (cfg *ModelConfig) ParseConfig(modelName string) (*SerialModel, error) {
	if modelName == "" {
		modelName = cfg.Name
	}

	var joints []Joint
	tool := cfg.Tool.Pose()

	switch cfg.KinParamType {
	case "SVA", "":
		if len(cfg.Joints) == 0 {
			return nil, ErrNoJoints
		}
		byID := map[string]JointConfig{}
		parentMap := map[string]string{}
		for i, jc := range cfg.Joints {
			if jc.ID == World {
				return nil, NewReservedWordError("joint", World)
			}
			if _, ok := byID[jc.ID]; ok {
				return nil, NewDuplicateFrameError(jc.ID)
			}
			byID[jc.ID] = jc
			parentMap[jc.ID] = implicitParent(jc.Parent, i, func(i int) string { return cfg.Joints[i].ID })
		}
		order, err := sortTransforms(parentMap)
		if err != nil {
			return nil, err
		}
		for _, id := range order {
			jc := byID[id]
			j, err := jc.ToJoint()
			if err != nil {
				return nil, err
			}
			joints = append(joints, j)
		}

	case "DH":
		if len(cfg.DHParams) == 0 {
			return nil, ErrNoJoints
		}
		byID := map[string]DHParamConfig{}
		parentMap := map[string]string{}
		for i, dh := range cfg.DHParams {
			if dh.ID == World {
				return nil, NewReservedWordError("joint", World)
			}
			if _, ok := byID[dh.ID]; ok {
				return nil, NewDuplicateFrameError(dh.ID)
			}
			byID[dh.ID] = dh
			parentMap[dh.ID] = implicitParent(dh.Parent, i, func(i int) string { return cfg.DHParams[i].ID })
		}
		order, err := sortTransforms(parentMap)
		if err != nil {
			return nil, err
		}
		ordered := make([]DHParamConfig, 0, len(order))
		for _, id := range order {
			ordered = append(ordered, byID[id])
		}
		var last spatial.Pose
		joints, last, err = dhToJoints(ordered)
		if err != nil {
			return nil, err
		}
		tool = spatial.Compose(last, tool)

	default:
		return nil, NewUnsupportedParamTypeError(cfg.KinParamType)
	}

	var home []Input
	if cfg.Home != nil {
		home = FloatsToInputs(cfg.Home)
	}
	return NewSerialModel(modelName, joints, tool, home)
}

// implicitParent lets a file list its joints in chain order without naming parents.
func implicitParent(parent string, index int, idAt func(int) string) string {
	if parent != "" {
		return parent
	}
	if index == 0 {
		return World
	}
	return idAt(index - 1)
}

// Create an ordered list of frame names, base first, given a mapping of child to parent frames.
func sortTransforms(parents map[string]string) ([]string, error) {
	// find the end effector first - determine which transforms have no children
	// copy the map of children -> parents
	ees := map[string]string{}
	for child, parent := range parents {
		ees[child] = parent
	}
	// now remove all parents
	for _, parent := range parents {
		delete(ees, parent)
	}
	// every frame being somebody's parent means the chain loops
	if len(ees) == 0 {
		return nil, ErrCircularReference
	}
	// ensure there is only on end effector
	if len(ees) != 1 {
		names := make([]string, 0, len(ees))
		for name := range ees {
			names = append(names, name)
		}
		return nil, fmt.Errorf("%w, have %v", ErrNeedOneEndEffector, names)
	}

	// start the search from the end effector
	var curr string
	for name := range ees {
		curr = name
	}
	seen := map[string]bool{curr: true}
	ordered := make([]string, 0, len(parents))
	for curr != World {
		// find the parent of the current transform
		parent, ok := parents[curr]
		if !ok {
			return nil, NewFrameNotInListOfTransformsError(curr)
		}
		ordered = append(ordered, curr)

		// make sure it wasn't seen, mark it seen, then add it to the list
		if seen[parent] {
			return nil, ErrCircularReference
		}
		seen[parent] = true

		// update the frame to add next
		curr = parent
	}
	// frames left over from the walk can only be a loop that never reaches world
	if len(ordered) != len(parents) {
		return nil, ErrCircularReference
	}

	// After the above loop, the transforms are in reverse order, so we reverse the list.
	for i, j := 0, len(ordered)-1; i < j; i, j = i+1, j-1 {
		ordered[i], ordered[j] = ordered[j], ordered[i]
	}

	return ordered, nil
}
