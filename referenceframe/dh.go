package referenceframe

import (
	"github.com/golang/geo/r3"

	spatial "github.com/vassarrobotics/arxr5/spatialmath"
)

// DHParamConfig is a revolute joint given as Denavit-Hartenberg parameters. The link transform is
// Rz(theta + Offset) * Tz(D) * Tx(A) * Rx(Alpha), where theta is the joint input.
type DHParamConfig struct {
	ID     string  `json:"id" yaml:"id"`
	Parent string  `json:"parent,omitempty" yaml:"parent,omitempty"`
	A      float64 `json:"a" yaml:"a"`
	D      float64 `json:"d" yaml:"d"`
	Alpha  float64 `json:"alpha" yaml:"alpha"`
	Offset float64 `json:"offset,omitempty" yaml:"offset,omitempty"`
	Min    float64 `json:"min" yaml:"min"`
	Max    float64 `json:"max" yaml:"max"`
}

// staticPose is the fixed part of the DH transform, Tz(D) * Tx(A) * Rx(Alpha).
func (cfg *DHParamConfig) staticPose() spatial.Pose {
	return spatial.NewPose(
		r3.Vector{X: cfg.A, Y: 0, Z: cfg.D},
		&spatial.R4AA{Theta: cfg.Alpha, RX: 1, RY: 0, RZ: 0},
	)
}

// dhToJoints converts ordered DH parameters to joints rotating about z. The fixed part of each DH transform becomes
// the origin of the following joint, so the fixed part of the last one is returned to be prepended to the tool.
func dhToJoints(params []DHParamConfig) ([]Joint, spatial.Pose, error) {
	joints := make([]Joint, 0, len(params))
	origin := spatial.NewZeroPose()
	for _, dh := range params {
		j, err := NewJoint(dh.ID, origin, r3.Vector{Z: 1}, dh.Offset, Limit{Min: dh.Min, Max: dh.Max})
		if err != nil {
			return nil, nil, err
		}
		joints = append(joints, j)
		origin = dh.staticPose()
	}
	return joints, origin, nil
}
