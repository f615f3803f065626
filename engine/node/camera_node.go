package node

import (
	"github.com/Carmen-Shannon/noded-go/common"
	"github.com/Carmen-Shannon/noded-go/engine/graph"
	"github.com/go-gl/mathgl/mgl32"
)

// CameraNode describes the viewpoint. Angles are in degrees.
type CameraNode struct {
	Position      common.Pin[mgl32.Vec3]    `json:"position"`
	Yaw           common.Pin[float32]       `json:"yaw"`
	Pitch         common.Pin[float32]       `json:"pitch"`
	Vfov          common.Pin[float32]       `json:"vfov_degrees"`
	Aperture      common.Pin[float32]       `json:"aperture"`
	FocusDistance common.Pin[float32]       `json:"focus_distance"`
	Scene         common.Pin[*graph.NodeID] `json:"scene"`
}

func newCameraNode() *CameraNode {
	return &CameraNode{
		Position:      common.NewPin(mgl32.Vec3{0, 1, -5}),
		Vfov:          common.NewPin[float32](45),
		FocusDistance: common.NewPin[float32](5),
	}
}

// Orientation returns the unit forward and up vectors. Pitch is kept short of the poles so
// the basis never degenerates.
//
// Returns:
//   - mgl32.Vec3: forward direction
//   - mgl32.Vec3: up direction, orthogonal to forward
func (c *CameraNode) Orientation() (mgl32.Vec3, mgl32.Vec3) {
	pitch := common.Clamp(c.Pitch.Get(), -89, 89)
	forward := common.DirectionFromYawPitch(common.Radians(c.Yaw.Get()), common.Radians(pitch))
	worldUp := mgl32.Vec3{0, 1, 0}
	right := forward.Cross(worldUp).Normalize()
	up := right.Cross(forward).Normalize()
	return forward, up
}
