// Package camera implements the fly-through controller that moves the Camera node of the
// graph. The controller writes position, yaw, pitch and vfov straight into the node's pins;
// the render params built from the node change with them, which restarts accumulation.
package camera

import "github.com/Carmen-Shannon/noded-go/engine/node"

// Input is one frame of input relevant to the camera.
type Input struct {
	Forward bool
	Back    bool
	Left    bool
	Right   bool
	Up      bool
	Down    bool
	Boost   bool

	// Dragging is true while the look button is held over the viewport.
	Dragging   bool
	MouseDelta [2]float32
	Scroll     float32

	// Dt is the frame time in seconds.
	Dt float32
}

// Idle reports whether the input cannot move the camera.
func (in Input) Idle() bool {
	moving := in.Forward || in.Back || in.Left || in.Right || in.Up || in.Down
	looking := in.Dragging && (in.MouseDelta[0] != 0 || in.MouseDelta[1] != 0)
	return !moving && !looking && in.Scroll == 0
}

// Controller drives a Camera node from keyboard and mouse input. Embeds flyController and
// lensController so translation, look and zoom are handled by one instance.
type Controller interface {
	flyController
	lensController

	// Update applies one frame of input to the camera's pins.
	//
	// Parameters:
	//   - cam: the Camera node payload to modify
	//   - in: the frame's input
	//
	// Returns:
	//   - bool: true if any pin changed
	Update(cam *node.CameraNode, in Input) bool
}

// flyController covers translation and look.
type flyController interface {
	// MoveSpeed returns the translation speed in world units per second.
	//
	// Returns:
	//   - float32: units per second without boost
	MoveSpeed() float32

	// SetMoveSpeed sets the translation speed.
	//
	// Parameters:
	//   - speed: units per second without boost
	SetMoveSpeed(speed float32)

	// BoostMultiplier returns the factor applied to MoveSpeed while boost is held.
	BoostMultiplier() float32

	// MouseSensitivity returns the look speed in degrees per pixel of drag.
	//
	// Returns:
	//   - float32: degrees per pixel
	MouseSensitivity() float32

	// PitchLimit returns the largest absolute pitch in degrees.
	PitchLimit() float32
}

// lensController covers the field of view.
type lensController interface {
	// ZoomSpeed returns the vfov change in degrees per scroll unit.
	//
	// Returns:
	//   - float32: degrees per scroll step
	ZoomSpeed() float32

	// VfovBounds returns the allowed vertical field of view range in degrees.
	//
	// Returns:
	//   - min, max: bounds in degrees
	VfovBounds() (min, max float32)
}
